package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"saldo/internal/core/apperror"
	"saldo/internal/core/id"
	"saldo/internal/domain"
	"saldo/internal/domain/allocation"
	"saldo/internal/domain/documents/payment"
	"saldo/internal/infrastructure/http/v1/dto"
)

// PaymentHandler handles HTTP requests for payment documents.
type PaymentHandler struct {
	*BaseHandler
	service *payment.Service
	engine  *allocation.Engine
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(base *BaseHandler, service *payment.Service, engine *allocation.Engine) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler: base,
		service:     service,
		engine:      engine,
	}
}

// List handles GET /payments
func (h *PaymentHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := payment.ListFilter{
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

	if methodStr := c.Query("method"); methodStr != "" {
		method := payment.Method(methodStr)
		filter.Method = &method
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

	items := make([]*dto.PaymentResponse, len(result.Items))
	for i, doc := range result.Items {
		items[i] = dto.FromPayment(doc, nil)
	}

	c.JSON(http.StatusOK, dto.PaymentListResponse{
		Items:      items,
		TotalCount: int(result.TotalCount),
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Create handles POST /payments
func (h *PaymentHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreatePaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	params, err := req.ToParams()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid accountId format"))
		return
	}

	doc, err := h.service.Receive(ctx, params)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.FromPayment(doc, nil)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", resp)
	c.JSON(http.StatusCreated, resp)
}

// Get handles GET /payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, allocations, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromPayment(doc, allocations))
}

// Allocate handles POST /payments/:id/allocate
func (h *PaymentHandler) Allocate(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.AllocatePaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	spec, err := req.ToSpec()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.engine.Allocate(ctx, docID, spec)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.FromAllocationResult(result)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", resp)
	c.JSON(http.StatusOK, resp)
}
