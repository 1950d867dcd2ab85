package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"loomsales.app/copilot/core/db"
	"loomsales.app/copilot/internal/model"
)

type surveyStore struct {
	conn db.DBTX
}

func newSurveyStore(conn db.DBTX) SurveyStore {
	return &surveyStore{conn: conn}
}

const surveyColumns = `id, company_name, contact_name, contact_phone, contact_email,
	equipment_models, equipment_age, has_data_interface, automation_level,
	is_networked, network_type, existing_collection_system, collection_coverage,
	manual_statistics, production_bottleneck, management_issues,
	erp_integration, mobile_app_needed, custom_reports, process_encryption, ai_equipment_integration, other_requirements,
	budget_range, purchase_timeline, decision_process`

const createSurveySQL = `
INSERT INTO surveys (` + surveyColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
RETURNING created_at`

const getSurveySQL = `SELECT ` + surveyColumns + `, created_at FROM surveys WHERE id = $1`

func (s *surveyStore) Create(ctx context.Context, sv *model.Survey) error {
	return s.conn.QueryRow(ctx, createSurveySQL,
		sv.ID, sv.CompanyName, sv.ContactName, sv.ContactPhone, sv.ContactEmail,
		sv.EquipmentModels, sv.EquipmentAge, sv.HasDataInterface, sv.AutomationLevel,
		sv.IsNetworked, sv.NetworkType, sv.ExistingCollectionSystem, sv.CollectionCoverage,
		sv.ManualStatistics, sv.ProductionBottleneck, sv.ManagementIssues,
		sv.ERPIntegration, sv.MobileAppNeeded, sv.CustomReports, sv.ProcessEncryption, sv.AIEquipmentIntegration, sv.OtherRequirements,
		sv.BudgetRange, sv.PurchaseTimeline, sv.DecisionProcess,
	).Scan(&sv.CreatedAt)
}

func (s *surveyStore) GetByID(ctx context.Context, id int64) (*model.Survey, error) {
	var sv model.Survey
	err := s.conn.QueryRow(ctx, getSurveySQL, id).Scan(
		&sv.ID, &sv.CompanyName, &sv.ContactName, &sv.ContactPhone, &sv.ContactEmail,
		&sv.EquipmentModels, &sv.EquipmentAge, &sv.HasDataInterface, &sv.AutomationLevel,
		&sv.IsNetworked, &sv.NetworkType, &sv.ExistingCollectionSystem, &sv.CollectionCoverage,
		&sv.ManualStatistics, &sv.ProductionBottleneck, &sv.ManagementIssues,
		&sv.ERPIntegration, &sv.MobileAppNeeded, &sv.CustomReports, &sv.ProcessEncryption, &sv.AIEquipmentIntegration, &sv.OtherRequirements,
		&sv.BudgetRange, &sv.PurchaseTimeline, &sv.DecisionProcess,
		&sv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sv, nil
}
