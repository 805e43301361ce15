package dto

import (
	"time"

	"saldo/internal/core/entity"
	"saldo/internal/core/id"
	"saldo/internal/core/types"
	"saldo/internal/domain/documents/purchase_order"
)

// --- Request DTOs ---

// CreatePurchaseOrderRequest is the request body for creating a purchase order.
type CreatePurchaseOrderRequest struct {
	AccountID   string      `json:"accountId" binding:"required"`
	Date        time.Time   `json:"date" binding:"required"`
	TotalAmount types.Money `json:"totalAmount" binding:"required"`
	DueDate     *time.Time  `json:"dueDate,omitempty"`
	Comment     string      `json:"comment,omitempty"`
}

// ToParams converts the request into service parameters.
func (r *CreatePurchaseOrderRequest) ToParams() (purchase_order.CreateParams, error) {
	accountID, err := id.Parse(r.AccountID)
	if err != nil {
		return purchase_order.CreateParams{}, err
	}
	return purchase_order.CreateParams{
		AccountID:   accountID,
		Date:        r.Date,
		TotalAmount: r.TotalAmount,
		DueDate:     r.DueDate,
		Comment:     r.Comment,
	}, nil
}

// --- Response DTOs ---

// PurchaseOrderResponse represents a purchase order in API responses.
type PurchaseOrderResponse struct {
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

// FromPurchaseOrder converts domain entity to response DTO.
func FromPurchaseOrder(doc *purchase_order.PurchaseOrder) *PurchaseOrderResponse {
	return &PurchaseOrderResponse{
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

// PurchaseOrderListResponse represents a list of purchase orders.
type PurchaseOrderListResponse struct {
	Items      []*PurchaseOrderResponse `json:"items"`
	TotalCount int                      `json:"totalCount"`
	Limit      int                      `json:"limit"`
	Offset     int                      `json:"offset"`
}
