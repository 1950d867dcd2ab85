package dto

import (
	"loomsales.app/copilot/internal/copilot"
	"loomsales.app/copilot/internal/model"
)

type CopilotQueryRequest struct {
	Query               string                      `json:"query"`
	CrmContexts         []model.CrmContextItem      `json:"crmContexts"`
	ConversationHistory []model.ConversationMessage `json:"conversationHistory"`
}

func (r CopilotQueryRequest) ToRequest() copilot.Request {
	return copilot.Request{
		Query:               r.Query,
		CrmContexts:         r.CrmContexts,
		ConversationHistory: r.ConversationHistory,
	}
}

type EmbedRequest struct {
	Text string `json:"text"`
	Type string `json:"type" binding:"omitempty,oneof=query document"`
}

type EmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
