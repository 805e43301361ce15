// Package payment provides the Payment document repository.
package payment

import (
	"context"
	"time"

	"saldo/internal/core/id"
	"saldo/internal/domain"
)

// Repository defines operations for payment documents and allocations.
type Repository interface {
	// CRUD operations
	Create(ctx context.Context, doc *Payment) error
	GetByID(ctx context.Context, docID id.ID) (*Payment, error)
	GetByNumber(ctx context.Context, number string) (*Payment, error)

	// Update persists the document with optimistic locking on Version.
	Update(ctx context.Context, doc *Payment) error

	// List operations
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Payment], error)

	// Locking
	GetForUpdate(ctx context.Context, docID id.ID) (*Payment, error)

	// Allocation records

	// CreateAllocations inserts allocation rows. The (payment_id, document_id)
	// pair is unique; a second allocation against the same document from the
	// same payment is a Duplicate error.
	CreateAllocations(ctx context.Context, allocations []Allocation) error

	// GetAllocations returns all allocations of a payment
	GetAllocations(ctx context.Context, paymentID id.ID) ([]Allocation, error)

	// GetAllocationsByDocument returns all allocations targeting a document
	GetAllocationsByDocument(ctx context.Context, documentID id.ID) ([]Allocation, error)
}

// ListFilter for filtering payments.
type ListFilter struct {
	domain.ListFilter

	AccountID *id.ID
	Method    *Method
	DateFrom  *time.Time
	DateTo    *time.Time
}
