package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// A copilot request enriches its context once with the request ID, and each pipeline
// stage adds its own stage name, so every log line of a request can be correlated.
type LogFields struct {
	RequestID *int64  // Copilot request ID (snowflake)
	Stage     string  // Pipeline stage (reasoning, memory, embedding, retrieval, generation)
	Intent    *string // Classified intent once reasoning has finished
	Component string  // Component name, e.g. "copilot.orchestrator"
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.RequestID != nil {
		result.RequestID = new.RequestID
	}
	if new.Stage != "" {
		result.Stage = new.Stage
	}
	if new.Intent != nil {
		result.Intent = new.Intent
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
func Ptr[T any](v T) *T {
	return &v
}

// Truncate shortens s to maxLen runes, appending "..." if truncated.
// Used for logging user queries and provider payloads.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
