// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"autodf/internal/domain/audit"
	"autodf/internal/domain/auth"
	"autodf/internal/domain/catalogs/client"
	"autodf/internal/domain/documents/estimate"
	"autodf/internal/domain/documents/invoice"
	"autodf/internal/domain/reports"
	"autodf/internal/infrastructure/http/v1/handlers"
	"autodf/internal/infrastructure/http/v1/middleware"
	"autodf/internal/infrastructure/storage/postgres"
	"autodf/internal/infrastructure/storage/postgres/catalog_repo"
	"autodf/internal/infrastructure/storage/postgres/document_repo"
	"autodf/internal/infrastructure/storage/postgres/report_repo"
	"autodf/pkg/logger"
	"autodf/pkg/numerator"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool (health checks)
	Pool *postgres.Pool

	// TxManager handles transactions for all repositories
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// AuditRecorder records entity changes. Optional.
	AuditRecorder audit.Recorder

	// InvoiceConfig tunes payment terms and overpayment policy
	InvoiceConfig invoice.Config
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, cfg)

		// Protected endpoints
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		registerCatalogRoutes(protected, cfg)
		registerDocumentRoutes(protected, cfg)
		registerReportRoutes(protected, cfg)
	}

	return router
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

	// Public auth endpoints (no JWT required)
	public := rg.Group("/auth")
	public.POST("/register", authHandler.Register)
	public.POST("/login", authHandler.Login)

	// Protected auth endpoints (JWT required)
	protected := rg.Group("/auth")
	protected.Use(middleware.Auth(cfg.JWTValidator))
	protected.GET("/me", authHandler.Me)
	protected.POST("/change-password", authHandler.ChangePassword)
}

// registerCatalogRoutes registers catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	// --- CLIENTS ---
	{
		repo := catalog_repo.NewClientRepo(cfg.TxManager)
		service := client.NewService(repo, cfg.TxManager, numerator.New(repo))
		handler := handlers.NewClientHandler(baseHandler, service)

		clients := rg.Group("/clients")
		clients.GET("", handler.List)
		clients.POST("", handler.Create)
		clients.GET("/by-siret/:siret", handler.FindBySIRET)
		clients.GET("/:id", handler.Get)
		clients.PUT("/:id", handler.Update)
		clients.POST("/:id/deletion-mark", handler.SetDeletionMark)
	}
}

// registerDocumentRoutes registers document endpoints.
func registerDocumentRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	estimateRepo := document_repo.NewEstimateRepo(cfg.TxManager)
	invoiceRepo := document_repo.NewInvoiceRepo(cfg.TxManager)

	// --- ESTIMATES ---
	{
		service := estimate.NewService(estimateRepo, cfg.TxManager, numerator.New(estimateRepo), cfg.AuditRecorder)
		handler := handlers.NewEstimateHandler(baseHandler, service)

		estimates := rg.Group("/estimates")
		estimates.GET("", handler.List)
		estimates.POST("", handler.Create)
		estimates.GET("/:id", handler.Get)
		estimates.PATCH("/:id", handler.Update)
		estimates.DELETE("/:id", handler.Delete)
		estimates.POST("/:id/status", handler.SetStatus)
		estimates.POST("/:id/lines", handler.AddLine)
		estimates.PUT("/:id/lines/:lineId", handler.UpdateLine)
		estimates.DELETE("/:id/lines/:lineId", handler.RemoveLine)
	}

	// --- INVOICES ---
	{
		service := invoice.NewService(invoiceRepo, estimateRepo, cfg.TxManager, numerator.New(invoiceRepo), cfg.AuditRecorder, cfg.InvoiceConfig)
		handler := handlers.NewInvoiceHandler(baseHandler, service)

		invoices := rg.Group("/invoices")
		invoices.GET("", handler.List)
		invoices.POST("", handler.Create)
		invoices.POST("/from-estimate", handler.ConvertFromEstimate)
		invoices.GET("/:id", handler.Get)
		invoices.PATCH("/:id", handler.Update)
		invoices.DELETE("/:id", handler.Delete)
		invoices.POST("/:id/status", handler.SetStatus)
		invoices.POST("/:id/lines", handler.AddLine)
		invoices.PUT("/:id/lines/:lineId", handler.UpdateLine)
		invoices.DELETE("/:id/lines/:lineId", handler.RemoveLine)
		invoices.POST("/:id/payments", handler.RecordPayment)
	}
}

// registerReportRoutes registers report endpoints.
func registerReportRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	reportRepo := report_repo.NewReportRepo(cfg.TxManager)
	reportService := reports.NewService(reportRepo)
	reportHandler := handlers.NewReportsHandler(baseHandler, reportService)

	reportsGroup := rg.Group("/reports")
	reportsGroup.GET("/revenue", reportHandler.Revenue)
	reportsGroup.GET("/status-summary", reportHandler.StatusSummary)
	reportsGroup.GET("/outstanding", reportHandler.Outstanding)
}
