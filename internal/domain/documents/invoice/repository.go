// Package invoice provides the Invoice document repository.
package invoice

import (
	"context"
	"time"

	"saldo/internal/core/entity"
	"saldo/internal/core/id"
	"saldo/internal/domain"
)

// Repository defines operations for invoice documents.
type Repository interface {
	// CRUD operations
	Create(ctx context.Context, doc *Invoice) error
	GetByID(ctx context.Context, docID id.ID) (*Invoice, error)
	GetByNumber(ctx context.Context, number string) (*Invoice, error)

	// Update persists the document with optimistic locking on Version.
	// Returns ConcurrentModification when the stored version moved on.
	Update(ctx context.Context, doc *Invoice) error

	// List operations
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error)

	// ListOpenByAccount returns posted, non-cancelled invoices with
	// status in {unpaid, partial} ordered by (date, id) ascending.
	// This is the deterministic FIFO order for auto allocation.
	ListOpenByAccount(ctx context.Context, accountID id.ID) ([]*Invoice, error)

	// ListOpen returns all open invoices, optionally for one account,
	// used by the aging report.
	ListOpen(ctx context.Context, accountID *id.ID) ([]*Invoice, error)

	// Locking
	GetForUpdate(ctx context.Context, docID id.ID) (*Invoice, error)
}

// ListFilter for filtering invoices.
type ListFilter struct {
	domain.ListFilter

	// Document-specific filters
	AccountID *id.ID
	Status    *entity.PaymentStatus
	Posted    *bool
	DateFrom  *time.Time
	DateTo    *time.Time
}
