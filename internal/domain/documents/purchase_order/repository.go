// Package purchase_order provides the PurchaseOrder document repository.
package purchase_order

import (
	"context"
	"time"

	"saldo/internal/core/entity"
	"saldo/internal/core/id"
	"saldo/internal/domain"
)

// Repository defines operations for purchase order documents.
type Repository interface {
	// CRUD operations
	Create(ctx context.Context, doc *PurchaseOrder) error
	GetByID(ctx context.Context, docID id.ID) (*PurchaseOrder, error)
	GetByNumber(ctx context.Context, number string) (*PurchaseOrder, error)

	// Update persists the document with optimistic locking on Version.
	Update(ctx context.Context, doc *PurchaseOrder) error

	// List operations
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*PurchaseOrder], error)

	// ListOpenByAccount returns open orders ordered by (date, id) ascending
	// for FIFO allocation.
	ListOpenByAccount(ctx context.Context, accountID id.ID) ([]*PurchaseOrder, error)

	// ListOpen returns all open orders, optionally for one account.
	ListOpen(ctx context.Context, accountID *id.ID) ([]*PurchaseOrder, error)

	// Locking
	GetForUpdate(ctx context.Context, docID id.ID) (*PurchaseOrder, error)
}

// ListFilter for filtering purchase orders.
type ListFilter struct {
	domain.ListFilter

	AccountID *id.ID
	Status    *entity.PaymentStatus
	Posted    *bool
	DateFrom  *time.Time
	DateTo    *time.Time
}
