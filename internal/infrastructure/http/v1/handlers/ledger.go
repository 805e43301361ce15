package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"saldo/internal/core/apperror"
	"saldo/internal/core/entity"
	"saldo/internal/core/id"
	"saldo/internal/domain/registers/ledger"
	"saldo/internal/infrastructure/http/v1/dto"
)

// LedgerHandler handles HTTP requests for the account ledger register.
type LedgerHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(base *BaseHandler, service *ledger.Service) *LedgerHandler {
	return &LedgerHandler{
		BaseHandler: base,
		service:     service,
	}
}

// GetBalance handles GET /ledger/accounts/:id/balance
func (h *LedgerHandler) GetBalance(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	balance, err := h.service.GetBalance(ctx, accountID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{
		AccountID: accountID.String(),
		Balance:   balance,
	})
}

// GetEntries handles GET /ledger/accounts/:id/entries
func (h *LedgerHandler) GetEntries(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	filter := ledger.EntryFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if entryTypeStr := c.Query("entryType"); entryTypeStr != "" {
		entryType := entity.EntryType(entryTypeStr)
		filter.EntryType = &entryType
	}
	if sourceTypeStr := c.Query("sourceType"); sourceTypeStr != "" {
		sourceType := entity.SourceType(sourceTypeStr)
		filter.SourceType = &sourceType
	}
	if fromStr := c.Query("fromDate"); fromStr != "" {
		if t, err := time.Parse(time.RFC3339, fromStr); err == nil {
			filter.FromDate = &t
		}
	}
	if toStr := c.Query("toDate"); toStr != "" {
		if t, err := time.Parse(time.RFC3339, toStr); err == nil {
			filter.ToDate = &t
		}
	}

	entries, err := h.service.GetEntryHistory(ctx, accountID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.EntryHistoryResponse{
		AccountID: accountID.String(),
		Entries:   make([]*dto.LedgerEntryResponse, len(entries)),
	}
	for i := range entries {
		resp.Entries[i] = dto.FromLedgerEntry(&entries[i])
	}

	c.JSON(http.StatusOK, resp)
}

// RecalculateBalance handles POST /ledger/accounts/:id/recalculate
func (h *LedgerHandler) RecalculateBalance(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.RecalculateBalance(ctx, accountID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "balance recalculated")
}
