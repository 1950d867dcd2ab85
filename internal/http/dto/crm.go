package dto

import "loomsales.app/copilot/internal/model"

type CrmSearchResponse struct {
	Results []model.CrmContextItem `json:"results"`
}
