package llm_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"loomsales.app/copilot/common/llm"
)

var _ = Describe("StripCodeFences", func() {
	DescribeTable("removes markdown fences around model output",
		func(input, expected string) {
			Expect(llm.StripCodeFences(input)).To(Equal(expected))
		},
		Entry("json fence", "```json\n{\"a\":1}\n```", `{"a":1}`),
		Entry("bare fence", "```\n{\"a\":1}\n```", `{"a":1}`),
		Entry("no fence", `  {"a":1} `, `{"a":1}`),
		Entry("fence on one line", "```json {\"a\":1}```", `{"a":1}`),
		Entry("empty", "", ""),
	)
})

var _ = Describe("New", func() {
	It("requires an API key", func() {
		_, err := llm.New(llm.Config{Dialect: llm.DialectCompatible, Model: "m"})
		Expect(err).To(MatchError(ContainSubstring("API key")))
	})

	It("requires a model", func() {
		_, err := llm.New(llm.Config{Dialect: llm.DialectCompatible, APIKey: "k"})
		Expect(err).To(MatchError(ContainSubstring("model")))
	})

	It("rejects unknown dialects", func() {
		_, err := llm.New(llm.Config{Dialect: "bedrock", APIKey: "k", Model: "m"})
		Expect(err).To(MatchError(ContainSubstring("unsupported")))
	})
})

var _ = Describe("DashScope dialect", func() {
	var (
		server   *httptest.Server
		captured map[string]any
		status   int
		reply    string
		hits     int
		path     string
		auth     string
	)

	BeforeEach(func() {
		captured = nil
		hits = 0
		status = http.StatusOK
		reply = `{
			"output": {"choices": [{"message": {"role": "assistant", "content": "你好"}, "finish_reason": "stop"}]},
			"usage": {"input_tokens": 12, "output_tokens": 4, "total_tokens": 16},
			"request_id": "req-1"
		}`
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			path = r.URL.Path
			auth = r.Header.Get("Authorization")
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &captured)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(reply))
		}))
		DeferCleanup(server.Close)
	})

	newClient := func() llm.Client {
		c, err := llm.New(llm.Config{
			Dialect: llm.DialectDashScope,
			APIKey:  "test-key",
			BaseURL: server.URL + "/api/v1",
			Model:   "qwen-turbo",
		})
		Expect(err).NotTo(HaveOccurred())
		return c
	}

	It("sends native messages and parses content and usage", func() {
		resp, err := newClient().Complete(context.Background(), llm.Request{
			Messages:  []llm.Message{llm.SystemMessage("sys"), llm.UserMessage("hi")},
			MaxTokens: 150,
			Format:    llm.FormatJSONObject,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Content).To(Equal("你好"))
		Expect(resp.Usage).To(Equal(llm.Usage{PromptTokens: 12, CompletionTokens: 4, TotalTokens: 16}))

		Expect(path).To(Equal("/api/v1/services/aigc/text-generation/generation"))
		Expect(auth).To(Equal("Bearer test-key"))
		Expect(captured["model"]).To(Equal("qwen-turbo"))
		input := captured["input"].(map[string]any)
		Expect(input["messages"]).To(HaveLen(2))
		params := captured["parameters"].(map[string]any)
		Expect(params["result_format"]).To(Equal("message"))
		Expect(params["max_tokens"]).To(BeNumerically("==", 150))
		Expect(params["response_format"]).To(Equal(map[string]any{"type": "json_object"}))
	})

	It("returns the provider error without retrying", func() {
		status = http.StatusTooManyRequests
		reply = `{"code": "Throttling", "message": "rate limited", "request_id": "req-2"}`

		_, err := newClient().Complete(context.Background(), llm.Request{
			Messages: []llm.Message{llm.UserMessage("hi")},
		})
		Expect(err).To(MatchError(ContainSubstring("Throttling")))
		Expect(hits).To(Equal(1))
	})

	It("fails when the response has no choices", func() {
		reply = `{"output": {"choices": []}, "usage": {}}`

		_, err := newClient().Complete(context.Background(), llm.Request{
			Messages: []llm.Message{llm.UserMessage("hi")},
		})
		Expect(err).To(MatchError(ContainSubstring("no choices")))
	})
})

var _ = Describe("Compatible dialect", func() {
	var (
		server   *httptest.Server
		captured map[string]any
		status   int
		hits     int
		path     string
	)

	BeforeEach(func() {
		captured = nil
		hits = 0
		status = http.StatusOK
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			path = r.URL.Path
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &captured)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			if status != http.StatusOK {
				_, _ = w.Write([]byte(`{"error": {"message": "upstream down", "type": "server_error"}}`))
				return
			}
			_, _ = w.Write([]byte(`{
				"id": "chatcmpl-1", "object": "chat.completion", "created": 1, "model": "qwen-turbo",
				"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"intent\":\"FUNCTION\"}"}, "finish_reason": "stop"}],
				"usage": {"prompt_tokens": 20, "completion_tokens": 6, "total_tokens": 26}
			}`))
		}))
		DeferCleanup(server.Close)
	})

	newClient := func() llm.Client {
		c, err := llm.New(llm.Config{
			Dialect: llm.DialectCompatible,
			APIKey:  "test-key",
			BaseURL: server.URL + "/compatible-mode/v1",
			Model:   "qwen-turbo",
		})
		Expect(err).NotTo(HaveOccurred())
		return c
	}

	It("requests json_object output and returns usage", func() {
		resp, err := newClient().Complete(context.Background(), llm.Request{
			Messages: []llm.Message{llm.SystemMessage("sys"), llm.UserMessage("q")},
			Format:   llm.FormatJSONObject,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Content).To(Equal(`{"intent":"FUNCTION"}`))
		Expect(resp.Usage.TotalTokens).To(Equal(26))
		Expect(path).To(Equal("/compatible-mode/v1/chat/completions"))
		Expect(captured["response_format"]).To(Equal(map[string]any{"type": "json_object"}))
		Expect(captured["messages"]).To(HaveLen(2))
	})

	It("makes a single attempt on server errors", func() {
		status = http.StatusInternalServerError

		_, err := newClient().Complete(context.Background(), llm.Request{
			Messages: []llm.Message{llm.UserMessage("q")},
		})
		Expect(err).To(HaveOccurred())
		Expect(hits).To(Equal(1))
	})
})
