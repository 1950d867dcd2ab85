package model

import "time"

// KnowledgeRecord is one hit returned by the hybrid ranker.
type KnowledgeRecord struct {
	ID       string  `json:"id"`
	Content  string  `json:"content"`
	Category string  `json:"category,omitempty"`
	Type     string  `json:"type,omitempty"`
	ImageURL string  `json:"image_url,omitempty"`
	Score    float64 `json:"score"`
}

// Label is the bracketed tag shown to the model: category, else type.
func (r KnowledgeRecord) Label() string {
	if r.Category != "" {
		return r.Category
	}
	return r.Type
}

// KnowledgeEntry is a stored knowledge_base row as listed to operators.
type KnowledgeEntry struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	Type       *string   `json:"type"`
	Category   *string   `json:"category"`
	SourceName *string   `json:"source_name"`
	ImageURL   *string   `json:"image_url"`
	CreatedAt  time.Time `json:"created_at"`
}
