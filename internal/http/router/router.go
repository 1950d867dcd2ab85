package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"loomsales.app/copilot/internal/http/handler"
	"loomsales.app/copilot/internal/service"
)

func SetupRoutes(router *gin.Engine, services *service.Services) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		copilotHandler := handler.NewCopilotHandler(services.Copilot())
		CopilotRouter(api, copilotHandler)

		crmHandler := handler.NewCrmHandler(services.Crm())
		CrmRouter(api.Group("/crm"), crmHandler)

		surveyHandler := handler.NewSurveyHandler(services.Surveys())
		SurveyRouter(api.Group("/survey"), surveyHandler)

		knowledgeHandler := handler.NewKnowledgeHandler(services.Knowledge())
		KnowledgeRouter(api.Group("/knowledge"), knowledgeHandler)
	}
}

func CopilotRouter(rg *gin.RouterGroup, h *handler.CopilotHandler) {
	rg.POST("/copilot/query", h.Query)
	rg.POST("/embed", h.Embed)
}

func CrmRouter(rg *gin.RouterGroup, h *handler.CrmHandler) {
	rg.GET("/search", h.Search)
}

func SurveyRouter(rg *gin.RouterGroup, h *handler.SurveyHandler) {
	rg.POST("", h.Submit)
}

func KnowledgeRouter(rg *gin.RouterGroup, h *handler.KnowledgeHandler) {
	rg.GET("", h.List)
	rg.DELETE("", h.Delete)
}
