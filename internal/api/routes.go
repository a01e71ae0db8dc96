package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/YadurajManu/bolonyay-server/internal/bhashini"
	"github.com/YadurajManu/bolonyay-server/internal/cache"
	"github.com/YadurajManu/bolonyay-server/internal/config"
	"github.com/YadurajManu/bolonyay-server/internal/filing"
	"github.com/YadurajManu/bolonyay-server/internal/llm"
	"github.com/YadurajManu/bolonyay-server/internal/reports"
	"github.com/YadurajManu/bolonyay-server/pkg/logger"
)

// SetupRoutes configures all application routes
func SetupRoutes(router *gin.Engine, db *gorm.DB, cache cache.Cache, orchestrator *filing.Orchestrator, speech bhashini.Client, llmClient llm.Client, store *reports.Store, logger *logger.Logger, cfg *config.Config) {
	h := NewHandlers(db, cache, orchestrator, speech, llmClient, store, logger, cfg)

	api := router.Group("/api")
	{
		// Health and stats
		api.GET("/health", h.HealthCheck)
		api.GET("/cache/stats", h.CacheStats)

		// Users
		api.POST("/users", h.CreateUser)
		api.GET("/users/:id/cases", h.ListUserCases)

		// Voice filing pipeline
		api.POST("/filings", h.StartFiling)
		api.GET("/filings/:id", h.GetFiling)
		api.POST("/filings/:id/statement", h.SubmitStatement)
		api.POST("/filings/:id/answers", h.SubmitAnswer)
		api.POST("/filings/:id/skip", h.SkipAnswer)
		api.POST("/filings/:id/finalize", h.FinalizeFiling)

		// Cases
		api.GET("/cases/:id", h.GetCase)
		api.PATCH("/cases/:id/status", h.UpdateCaseStatus)

		// Language detection
		api.POST("/language/detect", h.DetectLanguage)

		// Reports
		api.GET("/reports", h.ListReports)
		api.GET("/reports/:id", h.GetReport)
		api.GET("/reports/:id/file", h.DownloadReport)
		api.DELETE("/reports/:id", h.DeleteReport)
	}
}
