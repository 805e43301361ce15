package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"saldo/internal/core/apperror"
	"saldo/internal/core/entity"
	"saldo/internal/core/id"
	"saldo/internal/domain"
	"saldo/internal/domain/documents/invoice"
	"saldo/internal/infrastructure/http/v1/dto"
)

// InvoiceHandler handles HTTP requests for invoice documents.
type InvoiceHandler struct {
	*BaseHandler
	service *invoice.Service
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(base *BaseHandler, service *invoice.Service) *InvoiceHandler {
	return &InvoiceHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := invoice.ListFilter{
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

	items := make([]*dto.InvoiceResponse, len(result.Items))
	for i, doc := range result.Items {
		items[i] = dto.FromInvoice(doc)
	}

	c.JSON(http.StatusOK, dto.InvoiceListResponse{
		Items:      items,
		TotalCount: int(result.TotalCount),
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Create handles POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateInvoiceRequest
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

	resp := dto.FromInvoice(doc)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", resp)
	c.JSON(http.StatusCreated, resp)
}

// Get handles GET /invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
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

	c.JSON(http.StatusOK, dto.FromInvoice(doc))
}

// Confirm handles POST /invoices/:id/confirm
//
// The body is optional; an override is only needed when the credit check
// blocked a previous attempt.
func (h *InvoiceHandler) Confirm(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var override *invoice.Override
	if c.Request.ContentLength > 0 {
		var req dto.ConfirmInvoiceRequest
		if !h.BindJSON(c, &req) {
			return
		}
		if req.Override != nil {
			override = &invoice.Override{
				Reason:     req.Override.Reason,
				ApprovedBy: req.Override.ApprovedBy,
			}
		}
	}

	doc, err := h.service.Confirm(ctx, docID, override)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.FromInvoice(doc)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", resp)
	c.JSON(http.StatusOK, resp)
}

// Cancel handles POST /invoices/:id/cancel
func (h *InvoiceHandler) Cancel(c *gin.Context) {
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

	resp := dto.FromInvoice(doc)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", resp)
	c.JSON(http.StatusOK, resp)
}

// RegisterReturn handles POST /invoices/:id/return
func (h *InvoiceHandler) RegisterReturn(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.RegisterReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}

	occurredAt := time.Now().UTC()
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	entry, err := h.service.RegisterReturn(ctx, docID, req.Amount, occurredAt)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.FromLedgerEntry(entry)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", resp)
	c.JSON(http.StatusCreated, resp)
}
