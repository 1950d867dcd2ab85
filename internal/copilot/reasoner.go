package copilot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"loomsales.app/copilot/common/llm"
	"loomsales.app/copilot/common/logger"
	"loomsales.app/copilot/internal/metrics"
)

// reasoningPayload is the JSON object the reasoning model must return.
type reasoningPayload struct {
	Intent         string   `json:"intent" jsonschema:"enum=FUNCTION,enum=COMPATIBILITY,enum=IMPACT,enum=PRINCIPLE,enum=GENERAL" jsonschema_description:"Answer strategy for the question"`
	Module         string   `json:"module" jsonschema_description:"Product module the question is about"`
	Keywords       []string `json:"keywords" jsonschema_description:"2-3 core search keywords"`
	RetrievalQuery string   `json:"retrieval_query" jsonschema_description:"Self-contained rewrite of the question for knowledge-base search"`
}

var reasoningSchema = llm.GenerateSchema[reasoningPayload]()

const reasoningPrompt = `
你是一个专业的销售助理大脑。请分析销售人员输入的客户问题，决定回答策略。

策略分类说明:
- FUNCTION: 询问功能作用、使用流程或业务价值。
- COMPATIBILITY: 询问是否适配某型号、是否有接口、是否需定制。
- IMPACT: 询问效果提升、可量化指标、ROI、行业案例。
- PRINCIPLE: 询问技术原理、底层逻辑、为什么能实现。
- GENERAL: 其他通用咨询。

涉及模块提取(Module): 识别涉及的产品模块，如"数采"、"排产"、"能耗"、"看板"等。
核心关键词提取(Keywords): 提取2-3个核心关键词用于搜索。

检索重写(retrieval_query): 为了提高检索精度，请将原始问题重写为适合知识库搜索的短句。
- 要求：去除语气词，补全省略的主语/公司名（参考当前上下文）。
- 示例：当前上下文是"阿里巴巴"，用户问"怎么推？"，重写为"针对阿里巴巴（大型互联网企业）的MES推行方案与卖点"。

当前交流的CRM背景:
%s

输出格式(严格 JSON):
{
  "intent": "FUNCTION" | "COMPATIBILITY" | "IMPACT" | "PRINCIPLE" | "GENERAL",
  "module": "模块名",
  "keywords": ["关键词1", "关键词2"],
  "retrieval_query": "生成的检索专用查询语句"
}
`

const noCrmBackground = "无特定客户背景"

// ReasoningOutcome is the reasoner's result. Usage is nil when the model
// call or parse failed and the generic fallback was used.
type ReasoningOutcome struct {
	Result ReasoningResult
	Usage  *llm.Usage
}

// Reasoner classifies a query and rewrites it for retrieval using the cheap
// reasoning model.
type Reasoner struct {
	llm    llm.Client
	format llm.ResponseFormat
}

// NewReasoner returns a Reasoner. format selects json_object or json_schema
// output on dialects that support it; empty means json_object.
func NewReasoner(client llm.Client, format llm.ResponseFormat) *Reasoner {
	if format == llm.FormatText {
		format = llm.FormatJSONObject
	}
	return &Reasoner{llm: client, format: format}
}

// BuildReasoningPrompt renders the system prompt for crmSummary.
func BuildReasoningPrompt(crmSummary string) string {
	if crmSummary == "" {
		crmSummary = noCrmBackground
	}
	return fmt.Sprintf(reasoningPrompt, crmSummary)
}

// Reason never fails: any call or parse error yields FallbackReasoning(query).
func (r *Reasoner) Reason(ctx context.Context, query, crmSummary string) ReasoningOutcome {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Stage: StageReasoning, Component: "copilot.reasoner"})

	req := llm.Request{
		Messages: []llm.Message{
			llm.SystemMessage(BuildReasoningPrompt(crmSummary)),
			llm.UserMessage(query),
		},
		Format: r.format,
	}
	if r.format == llm.FormatJSONSchema {
		req.SchemaName = "reasoning_result"
		req.Schema = reasoningSchema
	}

	start := time.Now()
	resp, err := r.llm.Complete(ctx, req)
	if err != nil {
		return r.degrade(ctx, query, "reasoning call failed", err)
	}

	var payload reasoningPayload
	if err := json.Unmarshal([]byte(llm.StripCodeFences(resp.Content)), &payload); err != nil {
		return r.degrade(ctx, query, "reasoning output is not valid JSON", fmt.Errorf("%w: %s", err, logger.Truncate(resp.Content, 200)))
	}

	result := ReasoningResult{
		Intent:         ParseIntent(payload.Intent),
		Module:         strings.TrimSpace(payload.Module),
		Keywords:       payload.Keywords,
		RetrievalQuery: strings.TrimSpace(payload.RetrievalQuery),
	}
	if result.Module == "" {
		result.Module = "unknown"
	}
	if result.RetrievalQuery == "" {
		result.RetrievalQuery = query
	}
	if len(result.Keywords) == 0 {
		result.Keywords = []string{query}
	}

	usage := resp.Usage
	metrics.TokensUsed.WithLabelValues(StageReasoning).Add(float64(usage.TotalTokens))

	slog.InfoContext(ctx, "query reasoned",
		"intent", result.Intent,
		"module", result.Module,
		"retrieval_query", logger.Truncate(result.RetrievalQuery, 120),
		"model", r.llm.Model(),
		"latency_ms", time.Since(start).Milliseconds())

	return ReasoningOutcome{Result: result, Usage: &usage}
}

func (r *Reasoner) degrade(ctx context.Context, query, msg string, err error) ReasoningOutcome {
	metrics.StageDegraded.WithLabelValues(StageReasoning).Inc()
	slog.WarnContext(ctx, msg+", falling back to GENERAL",
		"model", r.llm.Model(),
		"error", err)
	return ReasoningOutcome{Result: FallbackReasoning(query)}
}

// FallbackReasoning is the degraded result used when reasoning fails.
func FallbackReasoning(query string) ReasoningResult {
	return ReasoningResult{
		Intent:         IntentGeneral,
		Module:         "unknown",
		Keywords:       []string{query},
		RetrievalQuery: query,
	}
}
