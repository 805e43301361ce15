package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"saldo/internal/core/apperror"
	"saldo/internal/core/id"
	"saldo/internal/domain/reports"
	"saldo/internal/infrastructure/http/v1/dto"
)

const dateLayout = "2006-01-02"

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// GetStatement handles GET /reports/statement/:accountId
func (h *ReportsHandler) GetStatement(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, err := id.Parse(c.Param("accountId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid accountId format"))
		return
	}

	var req dto.StatementRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Error(c, apperror.NewValidation(err.Error()))
		return
	}

	fromDate, err := time.Parse(dateLayout, req.FromDate)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid fromDate format, expected YYYY-MM-DD"))
		return
	}
	toDate, err := time.Parse(dateLayout, req.ToDate)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid toDate format, expected YYYY-MM-DD"))
		return
	}

	statement, err := h.service.GetStatement(ctx, reports.StatementFilter{
		AccountID: accountID,
		FromDate:  fromDate,
		ToDate:    toDate,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromStatement(statement))
}

// GetAging handles GET /reports/aging
func (h *ReportsHandler) GetAging(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.AgingRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Error(c, apperror.NewValidation(err.Error()))
		return
	}

	filter := reports.AgingFilter{
		Book: reports.Book(req.Book),
	}

	if req.AsOfDate != nil {
		asOf, err := time.Parse(dateLayout, *req.AsOfDate)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid asOfDate format, expected YYYY-MM-DD"))
			return
		}
		filter.AsOfDate = &asOf
	}

	if req.AccountID != nil {
		accountID, err := id.Parse(*req.AccountID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid accountId format"))
			return
		}
		filter.AccountID = &accountID
	}

	report, err := h.service.GetAging(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromAgingReport(report))
}

// GetDocumentJournal handles GET /reports/document-journal
func (h *ReportsHandler) GetDocumentJournal(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.DocumentJournalRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Error(c, apperror.NewValidation(err.Error()))
		return
	}

	filter := reports.DocumentJournalFilter{
		DocumentTypes:  req.DocumentTypes,
		Posted:         req.Posted,
		Cancelled:      req.Cancelled,
		NumberContains: req.NumberContains,
		SortBy:         req.SortBy,
		SortOrder:      req.SortOrder,
		Limit:          req.Limit,
		Offset:         req.Offset,
	}

	if req.FromDate != nil {
		if t, err := time.Parse(time.RFC3339, *req.FromDate); err == nil {
			filter.FromDate = &t
		}
	}
	if req.ToDate != nil {
		if t, err := time.Parse(time.RFC3339, *req.ToDate); err == nil {
			filter.ToDate = &t
		}
	}

	for _, accountStr := range req.AccountIDs {
		if accountID, err := id.Parse(accountStr); err == nil {
			filter.AccountIDs = append(filter.AccountIDs, accountID)
		}
	}

	journal, err := h.service.GetDocumentJournal(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromDocumentJournal(journal))
}
