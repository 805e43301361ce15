package dto

import (
	"time"

	"saldo/internal/core/apperror"
	"saldo/internal/core/entity"
	"saldo/internal/core/id"
	"saldo/internal/core/types"
	"saldo/internal/domain/allocation"
	"saldo/internal/domain/documents/payment"
)

// --- Request DTOs ---

// CreatePaymentRequest is the request body for recording a payment.
type CreatePaymentRequest struct {
	AccountID   string         `json:"accountId" binding:"required"`
	Amount      types.Money    `json:"amount" binding:"required"`
	Method      payment.Method `json:"method" binding:"required"`
	PaymentDate time.Time      `json:"paymentDate" binding:"required"`
	Comment     string         `json:"comment,omitempty"`
}

// ToParams converts the request into service parameters.
func (r *CreatePaymentRequest) ToParams() (payment.CreateParams, error) {
	accountID, err := id.Parse(r.AccountID)
	if err != nil {
		return payment.CreateParams{}, err
	}
	return payment.CreateParams{
		AccountID:   accountID,
		Amount:      r.Amount,
		Method:      r.Method,
		PaymentDate: r.PaymentDate,
		Comment:     r.Comment,
	}, nil
}

// AllocationLineRequest names a document and the amount to put against it.
type AllocationLineRequest struct {
	DocumentID string      `json:"documentId" binding:"required"`
	Amount     types.Money `json:"amount" binding:"required"`
}

// AllocatePaymentRequest selects the allocation mode. Manual mode requires
// lines; auto mode ignores them and spreads oldest-first.
type AllocatePaymentRequest struct {
	Mode  string                  `json:"mode" binding:"required,oneof=manual auto"`
	Lines []AllocationLineRequest `json:"lines,omitempty"`
}

// ToSpec converts the request into an allocation target spec.
func (r *AllocatePaymentRequest) ToSpec() (allocation.TargetSpec, error) {
	if r.Mode == "auto" {
		return allocation.Auto(), nil
	}

	lines := make([]allocation.Line, 0, len(r.Lines))
	for _, l := range r.Lines {
		docID, err := id.Parse(l.DocumentID)
		if err != nil {
			return allocation.TargetSpec{}, apperror.NewValidation("invalid document id").
				WithDetail("documentId", l.DocumentID)
		}
		lines = append(lines, allocation.Line{
			DocumentID: docID,
			Amount:     l.Amount,
		})
	}
	return allocation.Manual(lines), nil
}

// --- Response DTOs ---

// PaymentResponse represents a payment in API responses.
type PaymentResponse struct {
	ID              string         `json:"id"`
	Number          string         `json:"number"`
	Date            time.Time      `json:"date"`
	Posted          bool           `json:"posted"`
	Cancelled       bool           `json:"cancelled"`
	AccountID       string         `json:"accountId"`
	Amount          types.Money    `json:"amount"`
	Method          payment.Method `json:"method"`
	AllocatedAmount types.Money    `json:"allocatedAmount"`
	Unallocated     types.Money    `json:"unallocated"`
	Comment         string         `json:"comment,omitempty"`
	DeletionMark    bool           `json:"deletionMark,omitempty"`
	Version         int            `json:"version"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`

	Allocations []AllocationResponse `json:"allocations,omitempty"`
}

// AllocationResponse represents one allocation record.
type AllocationResponse struct {
	ID           string            `json:"id"`
	PaymentID    string            `json:"paymentId"`
	DocumentID   string            `json:"documentId"`
	DocumentType entity.SourceType `json:"documentType"`
	Amount       types.Money       `json:"amount"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// FromPayment converts domain entity to response DTO.
func FromPayment(doc *payment.Payment, allocations []payment.Allocation) *PaymentResponse {
	resp := &PaymentResponse{
		ID:              doc.ID.String(),
		Number:          doc.Number,
		Date:            doc.Date,
		Posted:          doc.Posted,
		Cancelled:       doc.Cancelled,
		AccountID:       doc.AccountID.String(),
		Amount:          doc.Amount,
		Method:          doc.Method,
		AllocatedAmount: doc.AllocatedAmount,
		Unallocated:     doc.UnallocatedAmount(),
		Comment:         doc.Comment,
		DeletionMark:    doc.DeletionMark,
		Version:         doc.Version,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}

	if len(allocations) > 0 {
		resp.Allocations = make([]AllocationResponse, len(allocations))
		for i, a := range allocations {
			resp.Allocations[i] = FromAllocation(a)
		}
	}

	return resp
}

// FromAllocation converts an allocation record to response DTO.
func FromAllocation(a payment.Allocation) AllocationResponse {
	return AllocationResponse{
		ID:           a.ID.String(),
		PaymentID:    a.PaymentID.String(),
		DocumentID:   a.DocumentID.String(),
		DocumentType: a.DocumentType,
		Amount:       a.Amount,
		CreatedAt:    a.CreatedAt,
	}
}

// PaymentListResponse represents a list of payments.
type PaymentListResponse struct {
	Items      []*PaymentResponse `json:"items"`
	TotalCount int                `json:"totalCount"`
	Limit      int                `json:"limit"`
	Offset     int                `json:"offset"`
}

// AllocationResultLineResponse is one line of an allocation result.
type AllocationResultLineResponse struct {
	DocumentID     string               `json:"documentId"`
	DocumentType   entity.SourceType    `json:"documentType"`
	Amount         types.Money          `json:"amount"`
	DocumentStatus entity.PaymentStatus `json:"documentStatus"`
}

// AllocationResultResponse summarizes an allocation call.
type AllocationResultResponse struct {
	PaymentID      string                         `json:"paymentId"`
	Lines          []AllocationResultLineResponse `json:"lines"`
	TotalAllocated types.Money                    `json:"totalAllocated"`
	Leftover       types.Money                    `json:"leftover"`
}

// FromAllocationResult converts an engine result to response DTO.
func FromAllocationResult(res *allocation.Result) *AllocationResultResponse {
	lines := make([]AllocationResultLineResponse, len(res.Lines))
	for i, l := range res.Lines {
		lines[i] = AllocationResultLineResponse{
			DocumentID:     l.DocumentID.String(),
			DocumentType:   l.DocumentType,
			Amount:         l.Amount,
			DocumentStatus: l.DocumentStatus,
		}
	}
	return &AllocationResultResponse{
		PaymentID:      res.PaymentID.String(),
		Lines:          lines,
		TotalAllocated: res.TotalAllocated,
		Leftover:       res.Leftover,
	}
}
