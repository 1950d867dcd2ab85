package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"loomsales.app/copilot/core/db"
	"loomsales.app/copilot/internal/model"
)

type knowledgeStore struct {
	conn db.DBTX
}

func newKnowledgeStore(conn db.DBTX) KnowledgeStore {
	return &knowledgeStore{conn: conn}
}

const listKnowledgeSQL = `
SELECT id::text, content, type, category, source_name, image_url, created_at
FROM knowledge_base
ORDER BY created_at DESC
LIMIT $1`

const deleteKnowledgeSQL = `DELETE FROM knowledge_base WHERE id = $1`

func (s *knowledgeStore) List(ctx context.Context, limit int) ([]model.KnowledgeEntry, error) {
	rows, err := s.conn.Query(ctx, listKnowledgeSQL, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.KnowledgeEntry, error) {
		var e model.KnowledgeEntry
		err := row.Scan(&e.ID, &e.Content, &e.Type, &e.Category, &e.SourceName, &e.ImageURL, &e.CreatedAt)
		return e, err
	})
}

func (s *knowledgeStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.conn.Exec(ctx, deleteKnowledgeSQL, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
