package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"loomsales.app/copilot/internal/model"
	"loomsales.app/copilot/internal/store"
)

const knowledgeListLimit = 200

var (
	ErrKnowledgeIDRequired = errors.New("id is required")
	ErrInvalidKnowledgeID  = errors.New("id must be a positive integer")
)

// KnowledgeService lists and removes knowledge_base entries. Adding entries
// belongs to the ingestion tooling.
type KnowledgeService interface {
	List(ctx context.Context) ([]model.KnowledgeEntry, error)
	Delete(ctx context.Context, rawID string) error
}

type knowledgeService struct {
	knowledge store.KnowledgeStore
}

func NewKnowledgeService(knowledge store.KnowledgeStore) KnowledgeService {
	return &knowledgeService{knowledge: knowledge}
}

func (s *knowledgeService) List(ctx context.Context) ([]model.KnowledgeEntry, error) {
	entries, err := s.knowledge.List(ctx, knowledgeListLimit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list knowledge", "error", err)
		return nil, fmt.Errorf("listing knowledge: %w", err)
	}
	return entries, nil
}

func (s *knowledgeService) Delete(ctx context.Context, rawID string) error {
	rawID = strings.TrimSpace(rawID)
	if rawID == "" {
		return ErrKnowledgeIDRequired
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return ErrInvalidKnowledgeID
	}

	if err := s.knowledge.Delete(ctx, id); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.ErrorContext(ctx, "failed to delete knowledge", "error", err, "knowledge_id", id)
		}
		return fmt.Errorf("deleting knowledge %d: %w", id, err)
	}

	slog.InfoContext(ctx, "knowledge deleted", "knowledge_id", id)
	return nil
}
