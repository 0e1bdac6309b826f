package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"fisbench/internal/config"
	"fisbench/internal/handler"
	"fisbench/internal/logger"
	"fisbench/internal/middleware"

	_ "fisbench/docs"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Health     *handler.HealthHandler
	Analysis   *handler.AnalysisHandler
	Accounting *handler.AccountingHandler
	Prompt     *handler.PromptHandler
	PromptTest *handler.PromptTestHandler
	Receipt    *handler.ReceiptHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(cfg *config.Config, h Handlers, log *logger.Logger) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = cfg.Upload.MaxBytes()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(&cfg.CORS))

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	v1.POST("/analyze", h.Analysis.Analyze)
	analyses := v1.Group("/analyses")
	analyses.GET("", h.Analysis.List)
	analyses.GET("/:id", h.Analysis.GetByID)
	analyses.POST("/:id/evaluate", h.Analysis.Evaluate)

	v1.POST("/accounting/normalize", h.Accounting.Normalize)

	prompts := v1.Group("/prompts")
	prompts.GET("", h.Prompt.List)
	prompts.GET("/:provider", h.Prompt.GetCurrent)
	prompts.POST("/:provider", h.Prompt.Save)
	prompts.GET("/:provider/history", h.Prompt.History)
	prompts.GET("/:provider/versions", h.Prompt.Versions)
	prompts.GET("/:provider/versions/:version", h.Prompt.GetVersion)
	prompts.DELETE("/:provider/versions/:version", h.Prompt.DeleteVersion)
	prompts.POST("/:provider/restore/:version", h.Prompt.Restore)

	tests := v1.Group("/prompt-tests")
	tests.POST("", h.PromptTest.Create)
	tests.GET("", h.PromptTest.List)
	tests.POST("/run", h.PromptTest.Run)
	tests.GET("/statistics", h.PromptTest.Statistics)
	tests.GET("/export", h.PromptTest.Export)
	tests.GET("/:id", h.PromptTest.GetByID)
	tests.PATCH("/:id/label", h.PromptTest.Label)

	receipts := v1.Group("/receipts")
	receipts.POST("", h.Receipt.Upload)
	receipts.GET("", h.Receipt.List)
	receipts.GET("/:id", h.Receipt.GetByID)
	receipts.GET("/:id/image", h.Receipt.ImageURL)
	receipts.PATCH("/:id", h.Receipt.Update)
	receipts.POST("/:id/crop", h.Receipt.Crop)
	receipts.DELETE("/:id", h.Receipt.Delete)

	return r
}
