package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/typesense/typesense-go/v4/typesense"
	"github.com/typesense/typesense-go/v4/typesense/api"
	"github.com/typesense/typesense-go/v4/typesense/api/pointer"

	"loomsales.app/copilot/internal/model"
)

type TypesenseConfig struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// TypesenseSearcher runs Typesense hybrid search over a collection with
// content, category, type, image_url and an "embedding" vector field.
type TypesenseSearcher struct {
	client     *typesense.Client
	collection string
}

func NewTypesenseSearcher(cfg TypesenseConfig) *TypesenseSearcher {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &TypesenseSearcher{
		client: typesense.NewClient(
			typesense.WithServer(cfg.URL),
			typesense.WithAPIKey(cfg.APIKey),
			typesense.WithConnectionTimeout(timeout),
		),
		collection: cfg.Collection,
	}
}

func (s *TypesenseSearcher) Search(ctx context.Context, queryText string, queryVector []float32, matchCount int) []model.KnowledgeRecord {
	start := time.Now()

	// multi_search takes the parameters in a POST body; a 1024-dimension
	// vector_query does not fit in a GET query string.
	searches := api.MultiSearchSearchesParameter{
		Searches: []api.MultiSearchCollectionParameters{{
			Collection:    pointer.String(s.collection),
			Q:             pointer.String(queryText),
			QueryBy:       pointer.String("content"),
			VectorQuery:   pointer.String(vectorQuery(queryVector, matchCount)),
			ExcludeFields: pointer.String("embedding"),
			PerPage:       pointer.Int(matchCount),
		}},
	}

	result, err := s.client.MultiSearch.Perform(ctx, &api.MultiSearchParams{}, searches)
	if err == nil {
		err = searchError(result)
	}
	if err != nil {
		slog.WarnContext(ctx, "hybrid search failed, continuing without knowledge",
			"backend", "typesense",
			"collection", s.collection,
			"error", err)
		return []model.KnowledgeRecord{}
	}
	hits := result.Results[0].Hits

	records := make([]model.KnowledgeRecord, 0, matchCount)
	if hits != nil {
		for _, hit := range *hits {
			records = append(records, recordFromHit(hit))
		}
	}

	slog.DebugContext(ctx, "hybrid search completed",
		"backend", "typesense",
		"results", len(records),
		"duration_ms", time.Since(start).Milliseconds())

	return records
}

// searchError reports a failed or missing result for the single search sent.
func searchError(result *api.MultiSearchResult) error {
	if result == nil || len(result.Results) == 0 {
		return fmt.Errorf("multi_search returned no results")
	}
	item := result.Results[0]
	if item.Error != nil {
		code := int64(0)
		if item.Code != nil {
			code = *item.Code
		}
		return fmt.Errorf("multi_search: status %d: %s", code, *item.Error)
	}
	return nil
}

func vectorQuery(v []float32, k int) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = strconv.FormatFloat(float64(f), 'f', -1, 32)
	}
	return fmt.Sprintf("embedding:([%s], k:%d)", strings.Join(parts, ","), k)
}

func recordFromHit(hit api.SearchResultHit) model.KnowledgeRecord {
	var r model.KnowledgeRecord
	if hit.Document != nil {
		doc := *hit.Document
		r.ID = stringField(doc, "id")
		r.Content = stringField(doc, "content")
		r.Category = stringField(doc, "category")
		r.Type = stringField(doc, "type")
		r.ImageURL = stringField(doc, "image_url")
	}

	switch {
	case hit.HybridSearchInfo != nil && hit.HybridSearchInfo.RankFusionScore != nil:
		r.Score = float64(*hit.HybridSearchInfo.RankFusionScore)
	case hit.VectorDistance != nil:
		r.Score = 1 - float64(*hit.VectorDistance)
	}
	return r
}

func stringField(doc map[string]any, key string) string {
	switch v := doc[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
