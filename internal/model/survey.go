package model

import "time"

// Survey is a lead-qualification questionnaire submitted from the public site.
type Survey struct {
	ID           int64  `json:"id"`
	CompanyName  string `json:"company_name"`
	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone"`
	ContactEmail string `json:"contact_email"`

	EquipmentModels  string `json:"equipment_models"`
	EquipmentAge     string `json:"equipment_age"`
	HasDataInterface bool   `json:"has_data_interface"`
	AutomationLevel  string `json:"automation_level"`

	IsNetworked              bool   `json:"is_networked"`
	NetworkType              string `json:"network_type"`
	ExistingCollectionSystem string `json:"existing_collection_system"`
	CollectionCoverage       string `json:"collection_coverage"`

	ManualStatistics     string `json:"manual_statistics"`
	ProductionBottleneck string `json:"production_bottleneck"`
	ManagementIssues     string `json:"management_issues"`

	ERPIntegration         bool   `json:"erp_integration"`
	MobileAppNeeded        bool   `json:"mobile_app_needed"`
	CustomReports          bool   `json:"custom_reports"`
	ProcessEncryption      bool   `json:"process_encryption"`
	AIEquipmentIntegration bool   `json:"ai_equipment_integration"`
	OtherRequirements      string `json:"other_requirements"`

	BudgetRange      string `json:"budget_range"`
	PurchaseTimeline string `json:"purchase_timeline"`
	DecisionProcess  string `json:"decision_process"`

	CreatedAt time.Time `json:"created_at"`
}

// CrmCompany, CrmContact and CrmDeal are rows read for CRM lookup.
type CrmCompany struct {
	ID          string
	Name        string
	Sector      *string
	Size        *string
	Description *string
}

type CrmContact struct {
	ID        string
	FirstName *string
	LastName  *string
	Title     *string
}

type CrmDeal struct {
	ID     string
	Name   string
	Stage  *string
	Amount *float64
}
