package retrieval

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"loomsales.app/copilot/core/db"
	"loomsales.app/copilot/internal/model"
)

// hybrid_search is installed alongside the knowledge_base table and fuses
// full-text and pgvector rankings with reciprocal rank fusion.
const hybridSearchSQL = `
SELECT id::text,
       content,
       coalesce(category, ''),
       coalesce(type, ''),
       coalesce(image_url, ''),
       score::float8
FROM hybrid_search($1, $2::vector, $3)`

type PostgresSearcher struct {
	conn db.DBTX
}

func NewPostgresSearcher(conn db.DBTX) *PostgresSearcher {
	return &PostgresSearcher{conn: conn}
}

func (s *PostgresSearcher) Search(ctx context.Context, queryText string, queryVector []float32, matchCount int) []model.KnowledgeRecord {
	start := time.Now()

	rows, err := s.conn.Query(ctx, hybridSearchSQL, queryText, VectorLiteral(queryVector), matchCount)
	if err != nil {
		slog.WarnContext(ctx, "hybrid search failed, continuing without knowledge",
			"backend", "postgres",
			"error", err)
		return []model.KnowledgeRecord{}
	}
	defer rows.Close()

	records := make([]model.KnowledgeRecord, 0, matchCount)
	for rows.Next() {
		var r model.KnowledgeRecord
		if err := rows.Scan(&r.ID, &r.Content, &r.Category, &r.Type, &r.ImageURL, &r.Score); err != nil {
			slog.WarnContext(ctx, "hybrid search scan failed, continuing without knowledge",
				"backend", "postgres",
				"error", err)
			return []model.KnowledgeRecord{}
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		slog.WarnContext(ctx, "hybrid search rows failed, continuing without knowledge",
			"backend", "postgres",
			"error", err)
		return []model.KnowledgeRecord{}
	}

	slog.DebugContext(ctx, "hybrid search completed",
		"backend", "postgres",
		"results", len(records),
		"duration_ms", time.Since(start).Milliseconds())

	return records
}

// VectorLiteral renders v in pgvector's text input format, e.g. "[0.1,0.2]".
func VectorLiteral(v []float32) string {
	var b strings.Builder
	b.Grow(len(v)*10 + 2)
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
