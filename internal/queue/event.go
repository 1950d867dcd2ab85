package queue

import (
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// QueryEvent records one answered copilot query on the analytics stream.
type QueryEvent struct {
	RequestID    int64
	Intent       string
	Module       string
	Confidence   string
	TopScore     float64
	TotalTokens  int64
	MemorySource string
	LatencyMs    int64
	TraceID      string
}

// Message is a QueryEvent read back from the stream.
type Message struct {
	ID    string
	Event QueryEvent
	Raw   redis.XMessage
}

func eventValues(e QueryEvent) map[string]any {
	values := map[string]any{
		"request_id":   e.RequestID,
		"intent":       e.Intent,
		"confidence":   e.Confidence,
		"top_score":    strconv.FormatFloat(e.TopScore, 'f', -1, 64),
		"total_tokens": e.TotalTokens,
		"latency_ms":   e.LatencyMs,
	}
	if e.Module != "" {
		values["module"] = e.Module
	}
	if e.MemorySource != "" {
		values["memory_source"] = e.MemorySource
	}
	if e.TraceID != "" {
		values["trace_id"] = e.TraceID
	}
	return values
}

func ParseMessage(msg redis.XMessage) (Message, error) {
	requestID, err := parseInt64(msg.Values, "request_id")
	if err != nil {
		return Message{}, err
	}
	intent, err := parseString(msg.Values, "intent")
	if err != nil {
		return Message{}, err
	}
	confidence, err := parseString(msg.Values, "confidence")
	if err != nil {
		return Message{}, err
	}
	topScore, err := parseOptionalFloat(msg.Values, "top_score")
	if err != nil {
		return Message{}, err
	}
	totalTokens, err := parseOptionalInt64(msg.Values, "total_tokens")
	if err != nil {
		return Message{}, err
	}
	latency, err := parseOptionalInt64(msg.Values, "latency_ms")
	if err != nil {
		return Message{}, err
	}

	return Message{
		ID: msg.ID,
		Event: QueryEvent{
			RequestID:    requestID,
			Intent:       intent,
			Module:       parseOptionalString(msg.Values, "module"),
			Confidence:   confidence,
			TopScore:     topScore,
			TotalTokens:  totalTokens,
			MemorySource: parseOptionalString(msg.Values, "memory_source"),
			LatencyMs:    latency,
			TraceID:      parseOptionalString(msg.Values, "trace_id"),
		},
		Raw: msg,
	}, nil
}

func parseInt64(values map[string]any, key string) (int64, error) {
	raw, ok := values[key]
	if !ok {
		return 0, fmt.Errorf("missing %s", key)
	}
	num, err := strconv.ParseInt(fmt.Sprint(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return num, nil
}

func parseString(values map[string]any, key string) (string, error) {
	raw, ok := values[key]
	if !ok {
		return "", fmt.Errorf("missing %s", key)
	}
	return fmt.Sprint(raw), nil
}

func parseOptionalInt64(values map[string]any, key string) (int64, error) {
	if _, ok := values[key]; !ok {
		return 0, nil
	}
	return parseInt64(values, key)
}

func parseOptionalFloat(values map[string]any, key string) (float64, error) {
	raw, ok := values[key]
	if !ok {
		return 0, nil
	}
	f, err := strconv.ParseFloat(fmt.Sprint(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return f, nil
}

func parseOptionalString(values map[string]any, key string) string {
	raw, ok := values[key]
	if !ok {
		return ""
	}
	return fmt.Sprint(raw)
}
