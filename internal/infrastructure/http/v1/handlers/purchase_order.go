package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"saldo/internal/core/apperror"
	"saldo/internal/core/entity"
	"saldo/internal/core/id"
	"saldo/internal/domain"
	"saldo/internal/domain/documents/purchase_order"
	"saldo/internal/infrastructure/http/v1/dto"
)

// PurchaseOrderHandler handles HTTP requests for purchase order documents.
type PurchaseOrderHandler struct {
	*BaseHandler
	service *purchase_order.Service
}

// NewPurchaseOrderHandler creates a new purchase order handler.
func NewPurchaseOrderHandler(base *BaseHandler, service *purchase_order.Service) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /purchase-orders
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := purchase_order.ListFilter{
		ListFilter: domain.ListFilter{
			Search: c.Query("search"),
			Limit:  h.ParseIntQuery(c, "limit", 50),
			Offset: h.ParseIntQuery(c, "offset", 0),
		},
	}

	if accountStr := c.Query("accountId"); accountStr != "" {
		accountID, err := id.Parse(accountStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid accountId format"))
			return
		}
		filter.AccountID = &accountID
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := entity.PaymentStatus(statusStr)
		filter.Status = &status
	}

	if postedStr := c.Query("posted"); postedStr != "" {
		posted := postedStr == "true"
		filter.Posted = &posted
	}

	if fromStr := c.Query("dateFrom"); fromStr != "" {
		if t, err := time.Parse(time.RFC3339, fromStr); err == nil {
			filter.DateFrom = &t
		}
	}
	if toStr := c.Query("dateTo"); toStr != "" {
		if t, err := time.Parse(time.RFC3339, toStr); err == nil {
			filter.DateTo = &t
		}
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.PurchaseOrderResponse, len(result.Items))
	for i, doc := range result.Items {
		items[i] = dto.FromPurchaseOrder(doc)
	}

	c.JSON(http.StatusOK, dto.PurchaseOrderListResponse{
		Items:      items,
		TotalCount: int(result.TotalCount),
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Create handles POST /purchase-orders
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreatePurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	params, err := req.ToParams()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid accountId format"))
		return
	}

	doc, err := h.service.Create(ctx, params)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.FromPurchaseOrder(doc)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", resp)
	c.JSON(http.StatusCreated, resp)
}

// Get handles GET /purchase-orders/:id
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromPurchaseOrder(doc))
}

// Confirm handles POST /purchase-orders/:id/confirm
func (h *PurchaseOrderHandler) Confirm(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, err := h.service.Confirm(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.FromPurchaseOrder(doc)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", resp)
	c.JSON(http.StatusOK, resp)
}

// Cancel handles POST /purchase-orders/:id/cancel
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, err := h.service.Cancel(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.FromPurchaseOrder(doc)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", resp)
	c.JSON(http.StatusOK, resp)
}
