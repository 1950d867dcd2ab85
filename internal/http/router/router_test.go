package router_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"loomsales.app/copilot/core/config"
	"loomsales.app/copilot/internal/copilot"
	"loomsales.app/copilot/internal/http/router"
	"loomsales.app/copilot/internal/service"
	"loomsales.app/copilot/internal/store"
)

var _ = Describe("SetupRoutes", func() {
	var engine *gin.Engine

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		engine = gin.New()
		unconfigured := copilot.NewOrchestrator(config.CopilotConfig{}, copilot.Deps{})
		router.SetupRoutes(engine, service.NewServices(store.NewStores(nil), unconfigured, nil, nil))
	})

	serve := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w
	}

	It("serves health", func() {
		w := serve(http.MethodGet, "/health", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`{"status":"ok"}`))
	})

	It("exposes prometheus metrics", func() {
		w := serve(http.MethodGet, "/metrics", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("go_goroutines"))
	})

	It("answers 503 when the copilot is unconfigured", func() {
		w := serve(http.MethodPost, "/api/copilot/query", `{"query":"FA506 支持吗"}`)
		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
	})

	It("answers 400 for a blank query before checking configuration", func() {
		w := serve(http.MethodPost, "/api/copilot/query", `{"query":"   "}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("answers 503 from embed without an embedder", func() {
		w := serve(http.MethodPost, "/api/embed", `{"text":"x"}`)
		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
	})

	It("returns empty CRM results for an empty term without touching the database", func() {
		w := serve(http.MethodGet, "/api/crm/search?q=", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`{"results":[]}`))
	})

	It("rejects knowledge deletes without an id before touching the database", func() {
		w := serve(http.MethodDelete, "/api/knowledge", "")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(MatchJSON(`{"error":"id is required"}`))
	})

	It("validates surveys before touching the database", func() {
		w := serve(http.MethodPost, "/api/survey", `{"companyName":"华纺"}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})
