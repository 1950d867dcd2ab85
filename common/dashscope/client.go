// Package dashscope points the openai-go transport at DashScope's native
// (non OpenAI-compatible) REST API, shared by the chat and embedding dialects.
package dashscope

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const DefaultBaseURL = "https://dashscope.aliyuncs.com/api/v1"

// Paths of the native endpoints, relative to the configured base URL.
const (
	GenerationPath = "services/aigc/text-generation/generation"
	EmbeddingPath  = "services/embeddings/text-embedding/text-embedding"
)

// NewClient returns an openai-go client for the native API. Requests are
// never retried; callers bound them through the context.
func NewClient(baseURL, apiKey string, httpClient *http.Client) openai.Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return openai.NewClient(opts...)
}

// APIError is a non-2xx reply. The native API reports code, message and
// request_id at the top level of the body rather than under "error", so they
// are decoded here from the raw body openai-go keeps on the response.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
	RequestID  string `json:"request_id"`
	Body       string `json:"-"`

	cause *openai.Error
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("dashscope: status %d: %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("dashscope: status %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	if e.cause == nil {
		return nil
	}
	return e.cause
}

// WrapError converts an *openai.Error into an *APIError and returns any other
// error (transport failures, context cancellation, decoding) unchanged.
func WrapError(err error) error {
	var src *openai.Error
	if !errors.As(err, &src) {
		return err
	}

	apiErr := &APIError{StatusCode: src.StatusCode, cause: src}
	if src.Response != nil && src.Response.Body != nil {
		raw, readErr := io.ReadAll(src.Response.Body)
		if readErr == nil {
			apiErr.Body = string(raw)
			_ = json.Unmarshal(raw, apiErr)
		}
	}
	return apiErr
}
