package store

import (
	"context"
	"errors"

	"loomsales.app/copilot/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// CrmStore reads the sales CRM tables for name lookups.
type CrmStore interface {
	SearchCompanies(ctx context.Context, term string, limit int) ([]model.CrmCompany, error)
	SearchContacts(ctx context.Context, term string, limit int) ([]model.CrmContact, error)
	SearchDeals(ctx context.Context, term string, limit int) ([]model.CrmDeal, error)
}

// SurveyStore persists lead surveys.
type SurveyStore interface {
	Create(ctx context.Context, survey *model.Survey) error
	GetByID(ctx context.Context, id int64) (*model.Survey, error)
}

// KnowledgeStore administers knowledge_base rows. Rows are written by the
// ingestion tooling, not by this service.
type KnowledgeStore interface {
	List(ctx context.Context, limit int) ([]model.KnowledgeEntry, error)
	Delete(ctx context.Context, id int64) error
}
