package dto

import (
	"time"

	"saldo/internal/core/types"
	"saldo/internal/domain/reports"
)

// --- Account Statement ---

// StatementRequest represents request for an account statement.
type StatementRequest struct {
	FromDate string `form:"fromDate" binding:"required"`
	ToDate   string `form:"toDate" binding:"required"`
}

// StatementLineResponse represents one statement line.
type StatementLineResponse struct {
	Date           string      `json:"date"`
	Sequence       int64       `json:"sequence"`
	EntryType      string      `json:"entryType"`
	SourceType     string      `json:"sourceType"`
	SourceID       string      `json:"sourceId"`
	DocumentNumber string      `json:"documentNumber,omitempty"`
	Amount         types.Money `json:"amount"`
	RunningBalance types.Money `json:"runningBalance"`
}

// StatementResponse represents the full account statement.
type StatementResponse struct {
	AccountID      string                  `json:"accountId"`
	AccountName    string                  `json:"accountName,omitempty"`
	FromDate       string                  `json:"fromDate"`
	ToDate         string                  `json:"toDate"`
	OpeningBalance types.Money             `json:"openingBalance"`
	Lines          []StatementLineResponse `json:"lines"`
	TotalDebits    types.Money             `json:"totalDebits"`
	TotalCredits   types.Money             `json:"totalCredits"`
	ClosingBalance types.Money             `json:"closingBalance"`
}

// FromStatement converts a domain statement to response DTO.
func FromStatement(s *reports.Statement) *StatementResponse {
	resp := &StatementResponse{
		AccountID:      s.AccountID.String(),
		AccountName:    s.AccountName,
		FromDate:       s.FromDate.Format("2006-01-02"),
		ToDate:         s.ToDate.Format("2006-01-02"),
		OpeningBalance: s.OpeningBalance,
		Lines:          make([]StatementLineResponse, len(s.Lines)),
		TotalDebits:    s.TotalDebits,
		TotalCredits:   s.TotalCredits,
		ClosingBalance: s.ClosingBalance,
	}

	for i, line := range s.Lines {
		resp.Lines[i] = StatementLineResponse{
			Date:           line.Date.Format("2006-01-02"),
			Sequence:       line.Sequence,
			EntryType:      string(line.EntryType),
			SourceType:     string(line.SourceType),
			SourceID:       line.SourceID.String(),
			DocumentNumber: line.DocumentNumber,
			Amount:         line.Amount,
			RunningBalance: line.RunningBalance,
		}
	}

	return resp
}

// --- Aging Report ---

// AgingRequest represents request for an aging report.
type AgingRequest struct {
	Book      string  `form:"book" binding:"required,oneof=receivable payable"`
	AsOfDate  *string `form:"asOfDate"`
	AccountID *string `form:"accountId"`
}

// AgingLineResponse represents one open item with its age.
type AgingLineResponse struct {
	DocumentID   string      `json:"documentId"`
	DocumentType string      `json:"documentType"`
	Number       string      `json:"number"`
	AccountID    string      `json:"accountId"`
	AccountName  string      `json:"accountName"`
	Date         string      `json:"date"`
	DueDate      string      `json:"dueDate"`
	Remaining    types.Money `json:"remaining"`
	DaysOverdue  int         `json:"daysOverdue"`
	Bucket       string      `json:"bucket"`
}

// AgingRowResponse aggregates one account across buckets.
type AgingRowResponse struct {
	AccountID   string                 `json:"accountId"`
	AccountName string                 `json:"accountName"`
	Amounts     map[string]types.Money `json:"amounts"`
	Total       types.Money            `json:"total"`
}

// AgingReportResponse represents the full aging analysis.
type AgingReportResponse struct {
	Book     string                 `json:"book"`
	AsOfDate string                 `json:"asOfDate"`
	Lines    []AgingLineResponse    `json:"lines"`
	Rows     []AgingRowResponse     `json:"rows"`
	Totals   map[string]types.Money `json:"totals"`
	Total    types.Money            `json:"total"`
}

// FromAgingReport converts a domain aging report to response DTO.
func FromAgingReport(r *reports.AgingReport) *AgingReportResponse {
	resp := &AgingReportResponse{
		Book:     string(r.Book),
		AsOfDate: r.AsOfDate.Format("2006-01-02"),
		Lines:    make([]AgingLineResponse, len(r.Lines)),
		Rows:     make([]AgingRowResponse, len(r.Rows)),
		Totals:   bucketMap(r.Totals),
		Total:    r.Total,
	}

	for i, line := range r.Lines {
		resp.Lines[i] = AgingLineResponse{
			DocumentID:   line.DocumentID.String(),
			DocumentType: string(line.DocumentType),
			Number:       line.Number,
			AccountID:    line.AccountID.String(),
			AccountName:  line.AccountName,
			Date:         line.Date.Format("2006-01-02"),
			DueDate:      line.DueDate.Format("2006-01-02"),
			Remaining:    line.Remaining,
			DaysOverdue:  line.DaysOverdue,
			Bucket:       string(line.Bucket),
		}
	}

	for i, row := range r.Rows {
		resp.Rows[i] = AgingRowResponse{
			AccountID:   row.AccountID.String(),
			AccountName: row.AccountName,
			Amounts:     bucketMap(row.Amounts),
			Total:       row.Total,
		}
	}

	return resp
}

func bucketMap(m map[reports.Bucket]types.Money) map[string]types.Money {
	out := make(map[string]types.Money, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

// --- Document Journal ---

// DocumentJournalRequest represents request for document journal.
type DocumentJournalRequest struct {
	FromDate       *string  `form:"fromDate"`
	ToDate         *string  `form:"toDate"`
	DocumentTypes  []string `form:"documentType"`
	Posted         *bool    `form:"posted"`
	Cancelled      *bool    `form:"cancelled"`
	NumberContains string   `form:"number"`
	AccountIDs     []string `form:"accountId"`
	SortBy         string   `form:"sortBy"`
	SortOrder      string   `form:"sortOrder"`
	Limit          int      `form:"limit"`
	Offset         int      `form:"offset"`
}

// DocumentJournalResponse represents document journal response.
type DocumentJournalResponse struct {
	Items      []DocumentJournalItemResponse `json:"items"`
	TotalCount int                           `json:"totalCount"`
	Limit      int                           `json:"limit"`
	Offset     int                           `json:"offset"`
	Summary    []DocumentTypeSummaryResponse `json:"summary,omitempty"`
}

// DocumentJournalItemResponse represents a document in journal.
type DocumentJournalItemResponse struct {
	ID           string      `json:"id"`
	DocumentType string      `json:"documentType"`
	Number       string      `json:"number"`
	Date         string      `json:"date"`
	Posted       bool        `json:"posted"`
	Cancelled    bool        `json:"cancelled"`
	AccountID    string      `json:"accountId"`
	AccountName  string      `json:"accountName,omitempty"`
	TotalAmount  types.Money `json:"totalAmount"`
	PaidAmount   types.Money `json:"paidAmount"`
	Comment      string      `json:"comment,omitempty"`
	CreatedAt    string      `json:"createdAt"`
	UpdatedAt    string      `json:"updatedAt"`
}

// DocumentTypeSummaryResponse represents summary by document type.
type DocumentTypeSummaryResponse struct {
	DocumentType string      `json:"documentType"`
	Count        int         `json:"count"`
	PostedCount  int         `json:"postedCount"`
	TotalAmount  types.Money `json:"totalAmount"`
}

// FromDocumentJournal converts domain journal to response DTO.
func FromDocumentJournal(j *reports.DocumentJournal) *DocumentJournalResponse {
	resp := &DocumentJournalResponse{
		Items:      make([]DocumentJournalItemResponse, len(j.Items)),
		TotalCount: j.TotalCount,
		Limit:      j.Limit,
		Offset:     j.Offset,
	}

	for i, item := range j.Items {
		resp.Items[i] = DocumentJournalItemResponse{
			ID:           item.ID.String(),
			DocumentType: item.DocumentType,
			Number:       item.Number,
			Date:         item.Date.Format(time.RFC3339),
			Posted:       item.Posted,
			Cancelled:    item.Cancelled,
			AccountID:    item.AccountID.String(),
			AccountName:  item.AccountName,
			TotalAmount:  item.TotalAmount,
			PaidAmount:   item.PaidAmount,
			Comment:      item.Comment,
			CreatedAt:    item.CreatedAt.Format(time.RFC3339),
			UpdatedAt:    item.UpdatedAt.Format(time.RFC3339),
		}
	}

	if j.Summary != nil {
		resp.Summary = make([]DocumentTypeSummaryResponse, len(j.Summary))
		for i, s := range j.Summary {
			resp.Summary[i] = DocumentTypeSummaryResponse{
				DocumentType: s.DocumentType,
				Count:        s.Count,
				PostedCount:  s.PostedCount,
				TotalAmount:  s.TotalAmount,
			}
		}
	}

	return resp
}
