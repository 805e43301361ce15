package account

import (
	"context"

	"saldo/internal/core/id"
	"saldo/internal/domain"
)

// Repository defines the interface for Account persistence.
type Repository interface {
	domain.CatalogRepository[*Account]

	// ListByKind retrieves accounts of one kind (customers or suppliers).
	ListByKind(ctx context.Context, kind Kind, filter domain.ListFilter) (domain.ListResult[*Account], error)

	// GetForUpdate retrieves account with row lock (for transactional updates).
	GetForUpdate(ctx context.Context, id id.ID) (*Account, error)
}
