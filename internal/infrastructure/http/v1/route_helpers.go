// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"saldo/internal/infrastructure/http/v1/middleware"
)

// CatalogRouteHandler defines the interface for catalog handlers.
// All catalog handlers must implement these methods.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	SetDeletionMark(c *gin.Context)
	GetTree(c *gin.Context)
}

// DocumentRouteHandler defines the interface for document handlers.
// Documents are immutable once confirmed: there is no update or delete,
// corrections go through cancel and a new document.
type DocumentRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Confirm(c *gin.Context)
	Cancel(c *gin.Context)
}

// RegisterCatalogRoutes registers standard CRUD routes for a catalog.
// This eliminates the need to manually wire up routes for each catalog.
//
// Usage:
//
//	repo := catalog_repo.NewAccountRepo()
//	service := account.NewService(repo, txManager, num)
//	handler := handlers.NewAccountHandler(baseHandler, service)
//	RegisterCatalogRoutes(catalogs.Group("/accounts"), handler, "catalog:account")
func RegisterCatalogRoutes(group *gin.RouterGroup, handler CatalogRouteHandler, permission string) {
	group.GET("", middleware.RequirePermission(permission+":read"), handler.List)
	group.POST("", middleware.RequirePermission(permission+":create"), handler.Create)
	group.GET("/:id", middleware.RequirePermission(permission+":read"), handler.Get)
	group.PUT("/:id", middleware.RequirePermission(permission+":update"), handler.Update)
	group.DELETE("/:id", middleware.RequirePermission(permission+":delete"), handler.Delete)
	group.POST("/:id/deletion-mark", middleware.RequirePermission(permission+":delete"), handler.SetDeletionMark)
	group.GET("/tree", middleware.RequirePermission(permission+":read"), handler.GetTree)
}

// RegisterDocumentRoutes registers the standard document lifecycle routes.
// Document-specific operations (returns, allocations) are registered by the
// router next to these.
//
// Usage:
//
//	repo := document_repo.NewInvoiceRepo()
//	service := invoice.NewService(repo, accounts, ledgerSvc, overrides, num, txManager)
//	handler := handlers.NewInvoiceHandler(baseHandler, service)
//	RegisterDocumentRoutes(documents.Group("/invoices"), handler, "document:invoice")
func RegisterDocumentRoutes(group *gin.RouterGroup, handler DocumentRouteHandler, permission string) {
	group.GET("", middleware.RequirePermission(permission+":read"), handler.List)
	group.POST("", middleware.RequirePermission(permission+":create"), handler.Create)
	group.GET("/:id", middleware.RequirePermission(permission+":read"), handler.Get)
	group.POST("/:id/confirm", middleware.RequirePermission(permission+":confirm"), handler.Confirm)
	group.POST("/:id/cancel", middleware.RequirePermission(permission+":cancel"), handler.Cancel)
}
