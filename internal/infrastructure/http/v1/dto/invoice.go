package dto

import (
	"time"

	"saldo/internal/core/entity"
	"saldo/internal/core/id"
	"saldo/internal/core/types"
	"saldo/internal/domain/documents/invoice"
)

// --- Request DTOs ---

// CreateInvoiceRequest is the request body for creating an invoice.
type CreateInvoiceRequest struct {
	AccountID   string      `json:"accountId" binding:"required"`
	Date        time.Time   `json:"date" binding:"required"`
	TotalAmount types.Money `json:"totalAmount" binding:"required"`
	DueDate     *time.Time  `json:"dueDate,omitempty"`
	Comment     string      `json:"comment,omitempty"`
}

// ToParams converts the request into service parameters.
func (r *CreateInvoiceRequest) ToParams() (invoice.CreateParams, error) {
	accountID, err := id.Parse(r.AccountID)
	if err != nil {
		return invoice.CreateParams{}, err
	}
	return invoice.CreateParams{
		AccountID:   accountID,
		Date:        r.Date,
		TotalAmount: r.TotalAmount,
		DueDate:     r.DueDate,
		Comment:     r.Comment,
	}, nil
}

// ConfirmInvoiceRequest optionally carries a credit limit override.
type ConfirmInvoiceRequest struct {
	Override *OverrideRequest `json:"override,omitempty"`
}

// OverrideRequest authorizes posting past a blocked credit decision.
type OverrideRequest struct {
	Reason     string `json:"reason" binding:"required"`
	ApprovedBy string `json:"approvedBy" binding:"required"`
}

// RegisterReturnRequest posts a return credit against a confirmed invoice.
type RegisterReturnRequest struct {
	Amount     types.Money `json:"amount" binding:"required"`
	OccurredAt *time.Time  `json:"occurredAt,omitempty"`
}

// --- Response DTOs ---

// InvoiceResponse represents an invoice in API responses.
type InvoiceResponse struct {
	ID            string               `json:"id"`
	Number        string               `json:"number"`
	Date          time.Time            `json:"date"`
	Posted        bool                 `json:"posted"`
	Cancelled     bool                 `json:"cancelled"`
	AccountID     string               `json:"accountId"`
	TotalAmount   types.Money          `json:"totalAmount"`
	PaidAmount    types.Money          `json:"paidAmount"`
	Remaining     types.Money          `json:"remaining"`
	PaymentStatus entity.PaymentStatus `json:"paymentStatus"`
	DueDate       time.Time            `json:"dueDate"`
	Comment       string               `json:"comment,omitempty"`
	DeletionMark  bool                 `json:"deletionMark,omitempty"`
	Version       int                  `json:"version"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// FromInvoice converts domain entity to response DTO.
func FromInvoice(doc *invoice.Invoice) *InvoiceResponse {
	return &InvoiceResponse{
		ID:            doc.ID.String(),
		Number:        doc.Number,
		Date:          doc.Date,
		Posted:        doc.Posted,
		Cancelled:     doc.Cancelled,
		AccountID:     doc.AccountID.String(),
		TotalAmount:   doc.TotalAmount,
		PaidAmount:    doc.PaidAmount,
		Remaining:     doc.RemainingAmount(),
		PaymentStatus: doc.PaymentStatus(),
		DueDate:       doc.DueDate,
		Comment:       doc.Comment,
		DeletionMark:  doc.DeletionMark,
		Version:       doc.Version,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
}

// InvoiceListResponse represents a list of invoices.
type InvoiceListResponse struct {
	Items      []*InvoiceResponse `json:"items"`
	TotalCount int                `json:"totalCount"`
	Limit      int                `json:"limit"`
	Offset     int                `json:"offset"`
}

// LedgerEntryResponse represents a ledger entry in API responses.
type LedgerEntryResponse struct {
	LineID     string            `json:"lineId"`
	AccountID  string            `json:"accountId"`
	Amount     types.Money       `json:"amount"`
	EntryType  entity.EntryType  `json:"entryType"`
	SourceType entity.SourceType `json:"sourceType"`
	SourceID   string            `json:"sourceId"`
	OccurredAt time.Time         `json:"occurredAt"`
	Sequence   int64             `json:"sequence"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// FromLedgerEntry converts a ledger entry to response DTO.
func FromLedgerEntry(e *entity.LedgerEntry) *LedgerEntryResponse {
	return &LedgerEntryResponse{
		LineID:     e.LineID.String(),
		AccountID:  e.AccountID.String(),
		Amount:     e.Amount,
		EntryType:  e.EntryType,
		SourceType: e.SourceType,
		SourceID:   e.SourceID.String(),
		OccurredAt: e.OccurredAt,
		Sequence:   e.Sequence,
		CreatedAt:  e.CreatedAt,
	}
}
