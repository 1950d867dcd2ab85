package dto

import "loomsales.app/copilot/internal/model"

// SurveyRequest is the public survey form, submitted in camelCase.
type SurveyRequest struct {
	CompanyName  string `json:"companyName" binding:"max=255"`
	ContactName  string `json:"contactName" binding:"max=255"`
	ContactPhone string `json:"contactPhone" binding:"max=64"`
	ContactEmail string `json:"contactEmail" binding:"max=255"`

	EquipmentModels  string `json:"equipmentModels"`
	EquipmentAge     string `json:"equipmentAge"`
	HasDataInterface bool   `json:"hasDataInterface"`
	AutomationLevel  string `json:"automationLevel"`

	IsNetworked              bool   `json:"isNetworked"`
	NetworkType              string `json:"networkType"`
	ExistingCollectionSystem string `json:"existingCollectionSystem"`
	CollectionCoverage       string `json:"collectionCoverage"`

	ManualStatistics     string `json:"manualStatistics"`
	ProductionBottleneck string `json:"productionBottleneck"`
	ManagementIssues     string `json:"managementIssues"`

	ERPIntegration         bool   `json:"erpIntegration"`
	MobileAppNeeded        bool   `json:"mobileAppNeeded"`
	CustomReports          bool   `json:"customReports"`
	ProcessEncryption      bool   `json:"processEncryption"`
	AIEquipmentIntegration bool   `json:"aiEquipmentIntegration"`
	OtherRequirements      string `json:"otherRequirements"`

	BudgetRange      string `json:"budgetRange"`
	PurchaseTimeline string `json:"purchaseTimeline"`
	DecisionProcess  string `json:"decisionProcess"`
}

func (r SurveyRequest) ToModel() *model.Survey {
	return &model.Survey{
		CompanyName:              r.CompanyName,
		ContactName:              r.ContactName,
		ContactPhone:             r.ContactPhone,
		ContactEmail:             r.ContactEmail,
		EquipmentModels:          r.EquipmentModels,
		EquipmentAge:             r.EquipmentAge,
		HasDataInterface:         r.HasDataInterface,
		AutomationLevel:          r.AutomationLevel,
		IsNetworked:              r.IsNetworked,
		NetworkType:              r.NetworkType,
		ExistingCollectionSystem: r.ExistingCollectionSystem,
		CollectionCoverage:       r.CollectionCoverage,
		ManualStatistics:         r.ManualStatistics,
		ProductionBottleneck:     r.ProductionBottleneck,
		ManagementIssues:         r.ManagementIssues,
		ERPIntegration:           r.ERPIntegration,
		MobileAppNeeded:          r.MobileAppNeeded,
		CustomReports:            r.CustomReports,
		ProcessEncryption:        r.ProcessEncryption,
		AIEquipmentIntegration:   r.AIEquipmentIntegration,
		OtherRequirements:        r.OtherRequirements,
		BudgetRange:              r.BudgetRange,
		PurchaseTimeline:         r.PurchaseTimeline,
		DecisionProcess:          r.DecisionProcess,
	}
}

type SurveyResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      int64  `json:"id,string"`
}
