package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/pasturelink/pasturelink-backend/internal/handlers"
	"github.com/pasturelink/pasturelink-backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName      string
	AllowOrigins     []string
	AuthHandler      *handlers.AuthHandler
	AuthMiddleware   *middleware.AuthMiddleware
	OrderHandler     *handlers.OrderHandler
	CutSheetHandler  *handlers.CutSheetHandler
	CutConfigHandler *handlers.CutConfigHandler
	HistoryHandler   *handlers.HistoryHandler
	PackageHandler   *handlers.PackageHandler
	SSEHandler       *handlers.SSEHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware(cfg.ServiceName))

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)
	router.POST("/refresh", cfg.AuthHandler.Refresh)

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// Taxonomy
	protected.GET("/taxonomy/animals", cfg.CutConfigHandler.ListAnimals)
	protected.GET("/taxonomy/animals/:animal", cfg.CutConfigHandler.GetTaxonomy)
	// Processor cut config
	protected.GET("/processors/:processorId/cut-config", cfg.CutConfigHandler.GetConfig)
	protected.GET("/processors/:processorId/cut-config/counts/:animal", cfg.CutConfigHandler.CutCounts)
	protected.PUT("/cut-config", cfg.CutConfigHandler.UpsertConfig)
	protected.POST("/cut-config/cuts/:cutId/toggle", cfg.CutConfigHandler.ToggleCut)
	// Processing orders
	protected.POST("/orders", cfg.OrderHandler.Create)
	protected.GET("/orders", cfg.OrderHandler.List)
	protected.GET("/orders/:orderId", cfg.OrderHandler.Get)
	protected.GET("/orders/:orderId/cut-sheets", cfg.CutSheetHandler.ListForOrder)
	// Cut sheets
	protected.POST("/cut-sheets", cfg.CutSheetHandler.Create)
	protected.GET("/cut-sheets/:sheetId", cfg.CutSheetHandler.Get)
	protected.PUT("/cut-sheets/:sheetId/items", cfg.CutSheetHandler.ReplaceItems)
	protected.PUT("/cut-sheets/:sheetId/sausages", cfg.CutSheetHandler.ReplaceSausages)
	protected.POST("/cut-sheets/:sheetId/submit", cfg.CutSheetHandler.Submit)
	// Processor overlay
	protected.PATCH("/cut-sheets/:sheetId/cuts/:cutId", cfg.CutSheetHandler.UpdateCutParameters)
	protected.POST("/cut-sheets/:sheetId/cuts/:cutId/remove", cfg.CutSheetHandler.RemoveCut)
	protected.POST("/cut-sheets/:sheetId/cuts/:cutId/restore", cfg.CutSheetHandler.RestoreCut)
	protected.POST("/cut-sheets/:sheetId/cuts", cfg.CutSheetHandler.AddCut)
	protected.PUT("/cut-sheets/:sheetId/processor-notes", cfg.CutSheetHandler.UpdateProcessorNotes)
	protected.PUT("/cut-sheets/:sheetId/hanging-weight", cfg.CutSheetHandler.UpdateHangingWeight)
	// Templates
	protected.POST("/cut-sheet-templates", cfg.CutSheetHandler.SaveTemplate)
	protected.GET("/cut-sheet-templates", cfg.CutSheetHandler.ListTemplates)
	protected.GET("/cut-sheet-templates/:templateId", cfg.CutSheetHandler.LoadTemplate)
	// History
	protected.GET("/cut-sheets/:sheetId/history", cfg.HistoryHandler.GetHistory)
	protected.GET("/cut-sheets/:sheetId/history/summary", cfg.HistoryHandler.GetSummary)
	protected.GET("/cut-sheets/:sheetId/history/original", cfg.HistoryHandler.GetOriginalState)
	protected.GET("/cut-sheets/:sheetId/history/:entryId/diff", cfg.HistoryHandler.GetDiff)
	// Packages
	protected.POST("/cut-sheets/:sheetId/packages", cfg.PackageHandler.Create)
	protected.GET("/cut-sheets/:sheetId/packages", cfg.PackageHandler.List)
	protected.PUT("/cut-sheets/:sheetId/packages/:packageId/weight", cfg.PackageHandler.UpdateWeight)
	protected.DELETE("/cut-sheets/:sheetId/packages/:packageId", cfg.PackageHandler.Delete)
	// SSE
	protected.GET("/sse/stream", cfg.SSEHandler.Stream)

	return router
}
