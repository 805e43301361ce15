// Package v1 provides HTTP API version 1.
package v1

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"saldo/internal/core/numerator"
	"saldo/internal/domain/allocation"
	"saldo/internal/domain/audit"
	"saldo/internal/domain/auth"
	"saldo/internal/domain/catalogs/account"
	"saldo/internal/domain/credit"
	"saldo/internal/domain/documents/invoice"
	"saldo/internal/domain/documents/payment"
	"saldo/internal/domain/documents/purchase_order"
	"saldo/internal/domain/registers/ledger"
	"saldo/internal/domain/reports"
	"saldo/internal/infrastructure/http/v1/handlers"
	"saldo/internal/infrastructure/http/v1/middleware"
	"saldo/internal/infrastructure/storage/postgres"
	"saldo/internal/infrastructure/storage/postgres/catalog_repo"
	"saldo/internal/infrastructure/storage/postgres/document_repo"
	"saldo/internal/infrastructure/storage/postgres/register_repo"
	"saldo/internal/infrastructure/storage/postgres/report_repo"
	"saldo/pkg/logger"
	pkgnumerator "saldo/pkg/numerator"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool (health checks, idempotency store)
	Pool *postgres.Pool

	// TxManager runs transactions and is injected into every request context
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// Numerator generates document numbers
	Numerator numerator.Generator

	// CatalogNumerator generates catalog codes
	CatalogNumerator *pkgnumerator.Service

	// Audit records credit limit overrides; nil disables the audit trail
	Audit *postgres.AuditService

	// IdempotencyEnabled enables idempotency middleware
	IdempotencyEnabled bool
}

// services bundles the domain services the route groups share.
type services struct {
	accounts *account.Service
	invoices *invoice.Service
	orders   *purchase_order.Service
	payments *payment.Service
	engine   *allocation.Engine
	ledger   *ledger.Service
	reports  *reports.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	// Set Gin mode based on environment
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

	svcs := buildServices(cfg)

	// API v1
	v1 := router.Group("/api/v1")
	v1.Use(middleware.Database(cfg.TxManager))
	{
		registerAuthRoutes(v1, cfg)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		// Apply idempotency middleware for mutating operations
		if cfg.IdempotencyEnabled {
			store := postgres.NewIdempotencyStore(cfg.Pool, cfg.TxManager, 10*time.Minute)
			protected.Use(middleware.Idempotency(store))
		}

		registerCatalogRoutes(protected, svcs)
		registerDocumentRoutes(protected, svcs)
		registerRegisterRoutes(protected, svcs)
		registerReportRoutes(protected, svcs)
	}

	return router
}

// buildServices wires repositories and domain services.
// Repos are created once; the TxManager is resolved from context per-request.
func buildServices(cfg RouterConfig) services {
	accountRepo := catalog_repo.NewAccountRepo()
	invoiceRepo := document_repo.NewInvoiceRepo()
	orderRepo := document_repo.NewPurchaseOrderRepo()
	paymentRepo := document_repo.NewPaymentRepo()
	ledgerRepo := register_repo.NewLedgerRepo()
	reportRepo := report_repo.NewReportRepo()

	outbox := postgres.NewOutboxPublisher(cfg.TxManager)
	eventSink := postgres.NewLedgerEventSink(outbox)

	accountService := account.NewService(accountRepo, cfg.TxManager, cfg.CatalogNumerator)
	ledgerService := ledger.NewService(ledgerRepo, accountRepo, cfg.TxManager, eventSink)

	var overrides credit.OverrideRecorder
	if cfg.Audit != nil {
		overrides = cfg.Audit
	}
	invoiceService := invoice.NewService(
		invoiceRepo, accountRepo, ledgerService, overrides, cfg.Numerator, cfg.TxManager)
	invoiceService.Hooks().OnBeforeCreate(func(ctx context.Context, doc *invoice.Invoice) error {
		audit.EnrichCreatedByDirect(ctx, &doc.CreatedBy, &doc.UpdatedBy)
		return nil
	})

	orderService := purchase_order.NewService(
		orderRepo, accountRepo, ledgerService, cfg.Numerator, cfg.TxManager)
	paymentService := payment.NewService(
		paymentRepo, accountRepo, ledgerService, cfg.Numerator, cfg.TxManager)
	engine := allocation.NewEngine(
		paymentRepo, invoiceRepo, orderRepo, accountRepo, cfg.TxManager)
	reportService := reports.NewService(reportRepo, cfg.TxManager)

	return services{
		accounts: accountService,
		invoices: invoiceService,
		orders:   orderService,
		payments: paymentService,
		engine:   engine,
		ledger:   ledgerService,
		reports:  reportService,
	}
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

	// Public auth endpoints (no JWT required)
	publicAuth := rg.Group("/auth")

	// Protected auth endpoints (JWT required)
	protectedAuth := rg.Group("/auth")
	protectedAuth.Use(middleware.Auth(cfg.JWTValidator))

	authHandler.RegisterRoutes(publicAuth, protectedAuth)
}

// registerCatalogRoutes registers catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, svcs services) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()

	// --- ACCOUNTS ---
	{
		handler := handlers.NewAccountHandler(baseHandler, svcs.accounts)
		group := catalogs.Group("/accounts")
		RegisterCatalogRoutes(group, handler, "catalog:account")
		group.GET("/customers", middleware.RequirePermission("catalog:account:read"), handler.ListCustomers)
		group.GET("/suppliers", middleware.RequirePermission("catalog:account:read"), handler.ListSuppliers)
	}
}

// registerDocumentRoutes registers document endpoints.
func registerDocumentRoutes(rg *gin.RouterGroup, svcs services) {
	docsGroup := rg.Group("/document")
	baseHandler := handlers.NewBaseHandler()

	// --- INVOICES ---
	{
		handler := handlers.NewInvoiceHandler(baseHandler, svcs.invoices)
		group := docsGroup.Group("/invoices")
		RegisterDocumentRoutes(group, handler, "document:invoice")
		group.POST("/:id/return", middleware.RequirePermission("document:invoice:confirm"), handler.RegisterReturn)
	}

	// --- PURCHASE ORDERS ---
	{
		handler := handlers.NewPurchaseOrderHandler(baseHandler, svcs.orders)
		RegisterDocumentRoutes(docsGroup.Group("/purchase-orders"), handler, "document:purchase_order")
	}

	// --- PAYMENTS ---
	// Payments post at receipt and are spread over documents by the
	// allocation engine, so they skip the confirm/cancel lifecycle.
	{
		handler := handlers.NewPaymentHandler(baseHandler, svcs.payments, svcs.engine)
		group := docsGroup.Group("/payments")
		group.GET("", middleware.RequirePermission("document:payment:read"), handler.List)
		group.POST("", middleware.RequirePermission("document:payment:create"), handler.Create)
		group.GET("/:id", middleware.RequirePermission("document:payment:read"), handler.Get)
		group.POST("/:id/allocate", middleware.RequirePermission("document:payment:allocate"), handler.Allocate)
	}
}

// registerRegisterRoutes registers ledger register endpoints.
func registerRegisterRoutes(rg *gin.RouterGroup, svcs services) {
	registers := rg.Group("/registers")
	baseHandler := handlers.NewBaseHandler()

	{
		handler := handlers.NewLedgerHandler(baseHandler, svcs.ledger)

		group := registers.Group("/ledger")
		group.GET("/accounts/:id/balance", middleware.RequirePermission("register:ledger:read"), handler.GetBalance)
		group.GET("/accounts/:id/entries", middleware.RequirePermission("register:ledger:read"), handler.GetEntries)
		group.POST("/accounts/:id/recalculate", middleware.RequirePermission("register:ledger:admin"), handler.RecalculateBalance)
	}
}

// registerReportRoutes registers report endpoints.
func registerReportRoutes(rg *gin.RouterGroup, svcs services) {
	reportsGroup := rg.Group("/reports")
	baseHandler := handlers.NewBaseHandler()

	handler := handlers.NewReportsHandler(baseHandler, svcs.reports)

	reportsGroup.GET("/statement/:accountId", middleware.RequirePermission("report:statement:read"), handler.GetStatement)
	reportsGroup.GET("/aging", middleware.RequirePermission("report:aging:read"), handler.GetAging)
	reportsGroup.GET("/document-journal", middleware.RequirePermission("report:documents:read"), handler.GetDocumentJournal)
}
