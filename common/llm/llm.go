package llm

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/invopop/jsonschema"
)

// Dialects of the provider API.
const (
	DialectCompatible = "compatible" // OpenAI-compatible /chat/completions
	DialectDashScope  = "dashscope"  // DashScope native text-generation
)

// Client is a single-shot chat completion client bound to one model.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Model() string
}

// ResponseFormat constrains the shape of the model output.
type ResponseFormat string

const (
	FormatText       ResponseFormat = ""
	FormatJSONObject ResponseFormat = "json_object"
	FormatJSONSchema ResponseFormat = "json_schema"
)

type Message struct {
	Role    string // "system", "user", "assistant"
	Content string
}

func SystemMessage(content string) Message    { return Message{Role: "system", Content: content} }
func UserMessage(content string) Message      { return Message{Role: "user", Content: content} }
func AssistantMessage(content string) Message { return Message{Role: "assistant", Content: content} }

type Request struct {
	Messages    []Message
	MaxTokens   int      // 0 = provider default
	Temperature *float64 // nil = model default
	Format      ResponseFormat
	SchemaName  string // FormatJSONSchema only
	Schema      any    // FormatJSONSchema only
}

// Usage is the provider-reported token accounting of one call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type Response struct {
	Content string
	Usage   Usage
}

type Config struct {
	Dialect    string
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client // optional
}

// New returns a Client for cfg.Dialect. Calls are never retried.
func New(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	switch cfg.Dialect {
	case DialectCompatible:
		return newOpenAIClient(cfg), nil
	case DialectDashScope:
		return newDashScopeClient(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported LLM dialect: %q", cfg.Dialect)
	}
}

func GenerateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

func Temp(t float64) *float64 {
	return &t
}

var codeFence = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// StripCodeFences removes a surrounding ```json ... ``` (or bare ```) fence
// that models commonly wrap JSON output in.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if m := codeFence.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}
