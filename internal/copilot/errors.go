package copilot

import (
	"errors"
	"fmt"
)

// Pipeline stage names, used in errors, logs, spans and metrics.
const (
	StageValidation = "validation"
	StageReasoning  = "reasoning"
	StageMemory     = "memory"
	StageEmbedding  = "embedding"
	StageRetrieval  = "retrieval"
	StageGeneration = "generation"
	StagePipeline   = "pipeline"
)

var (
	ErrInvalidRequest   = errors.New("query is required")
	ErrNotConfigured    = errors.New("copilot is not configured")
	ErrEmbeddingFailed  = errors.New("embedding failed")
	ErrGenerationFailed = errors.New("generation failed")
	ErrInternal         = errors.New("internal error")
)

// StageError ties a pipeline failure to the stage that raised it.
// errors.Is matches both the sentinel (Kind) and the underlying cause.
type StageError struct {
	Stage string
	Kind  error
	Err   error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newStageError(stage string, kind, err error) *StageError {
	return &StageError{Stage: stage, Kind: kind, Err: err}
}

// IsFatalStage reports whether err is one of the stage failures surfaced to
// callers as "AI service unavailable".
func IsFatalStage(err error) bool {
	return errors.Is(err, ErrEmbeddingFailed) || errors.Is(err, ErrGenerationFailed)
}
