package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"loomsales.app/copilot/common/logger"
	"loomsales.app/copilot/internal/http/middleware"
)

var _ = Describe("Middleware", func() {
	var (
		router *gin.Engine
		logs   *bytes.Buffer
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		logs = &bytes.Buffer{}
		prev := slog.Default()
		slog.SetDefault(slog.New(slog.NewJSONHandler(logs, nil)))
		DeferCleanup(func() { slog.SetDefault(prev) })

		router = gin.New()
		router.Use(middleware.Recovery(), middleware.Logger("/health"))
	})

	It("turns panics into a 500 JSON error", func() {
		router.GET("/boom", func(*gin.Context) { panic("kaboom") })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Body.String()).To(MatchJSON(`{"error":"Internal server error"}`))
		Expect(logs.String()).To(ContainSubstring("panic recovered"))
	})

	It("logs requests and tags the context with the http component", func() {
		var component string
		router.GET("/api/crm/search", func(c *gin.Context) {
			component = logger.GetLogFields(c.Request.Context()).Component
			c.Status(http.StatusTeapot)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/crm/search?q=x", nil))

		Expect(w.Code).To(Equal(http.StatusTeapot))
		Expect(component).To(Equal("copilot.http"))
		Expect(logs.String()).To(ContainSubstring(`"msg":"request error"`))
		Expect(logs.String()).To(ContainSubstring(`"path":"/api/crm/search?q=x"`))
	})

	It("skips health and metrics paths", func() {
		router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(logs.String()).To(BeEmpty())
	})
})
