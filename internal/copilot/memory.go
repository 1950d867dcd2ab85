package copilot

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"loomsales.app/copilot/common/llm"
	"loomsales.app/copilot/common/logger"
	"loomsales.app/copilot/internal/metrics"
	"loomsales.app/copilot/internal/model"
)

const (
	MemorySourceNoTrigger  = "no-trigger"
	MemorySourceCompressed = "compressed"

	MemoryStrategyVerbatim  = "verbatim"
	MemoryStrategySummary   = "summary"
	MemoryStrategyTruncated = "truncated"
)

const (
	minHistoryForMemory = 4  // two full exchanges
	memoryWindow        = 10 // five exchanges
	shortQueryRunes     = 15
	verbatimRuneLimit   = 400
	summaryMaxTokens    = 150
	truncateMessages    = 2
	truncateRunes       = 150
)

var (
	temporalMarkers = regexp.MustCompile(`(刚才|之前|前面|上次|刚刚)`)
	deicticMarkers  = regexp.MustCompile(`(它|这个|那个|上述|该)`)
)

const summaryPrompt = `
请将以下对话历史压缩为关键信息摘要（100字以内）：

%s

重点保留：
- 客户关注的产品功能
- 重要的技术信息  
- 已确认的方案

摘要：`

// MemoryContext is the digest of prior turns handed to generation.
// Strategy records how Content was produced and is only logged.
type MemoryContext struct {
	HasMemory bool
	Content   string
	Source    string
	Strategy  string
}

// EstimatedTokens approximates the digest's token count as ceil(runes/2).
// It is a heuristic and never part of billed usage.
func (m MemoryContext) EstimatedTokens() int {
	return (utf8.RuneCountInString(m.Content) + 1) / 2
}

// Usage returns the response-level memory report, or nil without memory.
func (m MemoryContext) Usage() *MemoryUsage {
	if !m.HasMemory {
		return nil
	}
	return &MemoryUsage{Tokens: m.EstimatedTokens(), Source: m.Source}
}

func noMemory() MemoryContext {
	return MemoryContext{Source: MemorySourceNoTrigger}
}

// ShouldLoadMemory decides whether a query needs conversational context.
// It never triggers with fewer than four prior messages.
func ShouldLoadMemory(query string, intent Intent, historyLen int) bool {
	if historyLen < minHistoryForMemory {
		return false
	}
	if temporalMarkers.MatchString(query) {
		return true
	}
	if deicticMarkers.MatchString(query) {
		return true
	}
	if intent == IntentPrinciple || intent == IntentImpact {
		return true
	}
	if utf8.RuneCountInString(query) < shortQueryRunes && historyLen > minHistoryForMemory {
		return true
	}
	return false
}

// MemoryManager decides whether to load history and compresses it with the
// cheap model when it is long.
type MemoryManager struct {
	llm llm.Client
}

func NewMemoryManager(client llm.Client) *MemoryManager {
	return &MemoryManager{llm: client}
}

// Process never fails: summarization errors degrade to truncation.
func (m *MemoryManager) Process(ctx context.Context, query string, intent Intent, history []model.ConversationMessage) MemoryContext {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Stage: StageMemory, Component: "copilot.memory"})

	if len(history) == 0 || !ShouldLoadMemory(query, intent, len(history)) {
		metrics.MemoryStrategy.WithLabelValues(MemorySourceNoTrigger).Inc()
		slog.DebugContext(ctx, "memory not triggered", "history_len", len(history))
		return noMemory()
	}

	window := history
	if len(window) > memoryWindow {
		window = window[len(window)-memoryWindow:]
	}

	content, strategy := m.Compress(ctx, window)
	metrics.MemoryStrategy.WithLabelValues(strategy).Inc()

	mem := MemoryContext{
		HasMemory: true,
		Content:   content,
		Source:    MemorySourceCompressed,
		Strategy:  strategy,
	}

	slog.InfoContext(ctx, "memory loaded",
		"history_len", len(history),
		"window_len", len(window),
		"strategy", strategy,
		"estimated_tokens", mem.EstimatedTokens())

	return mem
}

// Compress serializes window verbatim when short, otherwise summarizes it.
// The returned strategy is one of the MemoryStrategy* constants.
func (m *MemoryManager) Compress(ctx context.Context, window []model.ConversationMessage) (string, string) {
	total := 0
	for _, msg := range window {
		total += utf8.RuneCountInString(msg.Content)
	}

	transcript := formatTranscript(window)
	if total < verbatimRuneLimit {
		return transcript, MemoryStrategyVerbatim
	}

	start := time.Now()
	resp, err := m.llm.Complete(ctx, llm.Request{
		Messages:  []llm.Message{llm.UserMessage(fmt.Sprintf(summaryPrompt, transcript))},
		MaxTokens: summaryMaxTokens,
	})
	if err == nil {
		if summary := strings.TrimSpace(resp.Content); summary != "" {
			metrics.TokensUsed.WithLabelValues(StageMemory).Add(float64(resp.Usage.TotalTokens))
			slog.DebugContext(ctx, "history summarized",
				"model", m.llm.Model(),
				"input_runes", total,
				"latency_ms", time.Since(start).Milliseconds())
			return "对话摘要: " + summary, MemoryStrategySummary
		}
		err = fmt.Errorf("empty summary")
	}

	metrics.StageDegraded.WithLabelValues(StageMemory).Inc()
	slog.WarnContext(ctx, "history summarization failed, truncating",
		"model", m.llm.Model(),
		"error", err)

	return truncateTranscript(window), MemoryStrategyTruncated
}

func formatTranscript(msgs []model.ConversationMessage) string {
	lines := make([]string, len(msgs))
	for i, msg := range msgs {
		lines[i] = msg.Role + ": " + msg.Content
	}
	return strings.Join(lines, "\n")
}

func truncateTranscript(window []model.ConversationMessage) string {
	tail := window
	if len(tail) > truncateMessages {
		tail = tail[len(tail)-truncateMessages:]
	}
	lines := make([]string, len(tail))
	for i, msg := range tail {
		lines[i] = msg.Role + ": " + clipRunes(msg.Content, truncateRunes)
	}
	return strings.Join(lines, "\n")
}

// clipRunes keeps the first n runes of s, marking a cut with "...".
func clipRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
