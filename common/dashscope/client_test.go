package dashscope_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/openai/openai-go"

	"loomsales.app/copilot/common/dashscope"
)

var _ = Describe("NewClient", func() {
	var (
		status   int
		respBody string
		method   string
		path     string
		auth     string
		hits     int
		captured map[string]any
		server   *httptest.Server
	)

	BeforeEach(func() {
		status, respBody, hits = http.StatusOK, `{"output":{"ok":true}}`, 0
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			method = r.Method
			path = r.URL.Path
			auth = r.Header.Get("Authorization")
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &captured)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(respBody))
		}))
		DeferCleanup(server.Close)
	})

	It("posts JSON with bearer auth to native paths and decodes the reply", func() {
		client := dashscope.NewClient(server.URL+"/api/v1", "sk-test", nil)
		var out struct {
			Output struct {
				OK bool `json:"ok"`
			} `json:"output"`
		}

		err := client.Post(context.Background(), dashscope.GenerationPath, map[string]any{"model": "qwen-turbo"}, &out)

		Expect(err).NotTo(HaveOccurred())
		Expect(method).To(Equal(http.MethodPost))
		Expect(path).To(Equal("/api/v1/services/aigc/text-generation/generation"))
		Expect(auth).To(Equal("Bearer sk-test"))
		Expect(captured).To(HaveKeyWithValue("model", "qwen-turbo"))
		Expect(out.Output.OK).To(BeTrue())
	})

	It("does not retry failed requests", func() {
		status = http.StatusServiceUnavailable
		respBody = `{"code":"ServiceUnavailable","message":"busy"}`
		client := dashscope.NewClient(server.URL, "sk", nil)

		err := client.Post(context.Background(), dashscope.EmbeddingPath, map[string]any{}, &struct{}{})

		Expect(err).To(HaveOccurred())
		Expect(hits).To(Equal(1))
	})

	It("honours context deadlines", func() {
		slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		DeferCleanup(slow.Close)
		client := dashscope.NewClient(slow.URL, "sk", nil)
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err := client.Post(ctx, dashscope.GenerationPath, map[string]any{}, &struct{}{})
		Expect(errors.Is(dashscope.WrapError(err), context.DeadlineExceeded)).To(BeTrue())
	})

	Describe("WrapError", func() {
		It("decodes the native top-level error body", func() {
			status = http.StatusBadRequest
			respBody = `{"code":"InvalidParameter","message":"input.texts is required","request_id":"r-1"}`
			client := dashscope.NewClient(server.URL, "sk", nil)

			err := dashscope.WrapError(client.Post(context.Background(), dashscope.EmbeddingPath, map[string]any{}, &struct{}{}))

			var apiErr *dashscope.APIError
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			Expect(apiErr.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(apiErr.Code).To(Equal("InvalidParameter"))
			Expect(apiErr.RequestID).To(Equal("r-1"))
			Expect(apiErr.Body).To(ContainSubstring("input.texts is required"))
			Expect(err.Error()).To(Equal("dashscope: status 400: InvalidParameter: input.texts is required"))

			var sdkErr *openai.Error
			Expect(errors.As(err, &sdkErr)).To(BeTrue())
		})

		It("keeps the raw body when the error has no code", func() {
			status = http.StatusBadGateway
			respBody = `{"detail":"upstream timeout"}`
			client := dashscope.NewClient(server.URL, "sk", nil)

			err := dashscope.WrapError(client.Post(context.Background(), dashscope.GenerationPath, map[string]any{}, &struct{}{}))
			Expect(err).To(MatchError(`dashscope: status 502: {"detail":"upstream timeout"}`))
		})

		It("passes other errors through", func() {
			plain := errors.New("dial tcp: connection refused")
			Expect(dashscope.WrapError(plain)).To(BeIdenticalTo(plain))
			Expect(dashscope.WrapError(nil)).To(BeNil())
		})
	})
})
