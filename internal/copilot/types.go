package copilot

import (
	"strings"

	"loomsales.app/copilot/common/llm"
	"loomsales.app/copilot/internal/model"
)

// Intent is the classified category of a sales question. It selects the
// answer template.
type Intent string

const (
	IntentFunction      Intent = "FUNCTION"
	IntentCompatibility Intent = "COMPATIBILITY"
	IntentImpact        Intent = "IMPACT"
	IntentPrinciple     Intent = "PRINCIPLE"
	IntentGeneral       Intent = "GENERAL"
)

var intents = []Intent{IntentFunction, IntentCompatibility, IntentImpact, IntentPrinciple, IntentGeneral}

// ParseIntent normalizes case and whitespace. Anything outside the five
// known intents becomes IntentGeneral.
func ParseIntent(s string) Intent {
	candidate := Intent(strings.ToUpper(strings.TrimSpace(s)))
	for _, i := range intents {
		if candidate == i {
			return i
		}
	}
	return IntentGeneral
}

type ReasoningResult struct {
	Intent         Intent   `json:"intent"`
	Module         string   `json:"module"`
	Keywords       []string `json:"keywords"`
	RetrievalQuery string   `json:"retrieval_query"`
}

type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

// Request is the input of one copilot query.
type Request struct {
	Query               string
	CrmContexts         []model.CrmContextItem
	ConversationHistory []model.ConversationMessage
}

// MemoryUsage reports the memory digest attached to a response. Tokens is a
// rune-count estimate, not provider-billed usage.
type MemoryUsage struct {
	Tokens int    `json:"tokens"`
	Source string `json:"source"`
}

// UsageSummary aggregates provider-reported usage. TotalTokens covers
// reasoning and generation only; the memory estimate is reported apart.
type UsageSummary struct {
	Reasoning   *llm.Usage   `json:"reasoning"`
	Generation  *llm.Usage   `json:"generation"`
	Memory      *MemoryUsage `json:"memory"`
	TotalTokens int          `json:"total_tokens"`
}

type Response struct {
	Message    string       `json:"message"`
	Images     []string     `json:"images"`
	Intent     Intent       `json:"intent"`
	Confidence Confidence   `json:"confidence"`
	Usage      UsageSummary `json:"usage"`
	Memory     *MemoryUsage `json:"memory"`

	RequestID int64   `json:"-"`
	Module    string  `json:"-"`
	TopScore  float64 `json:"-"`
}
