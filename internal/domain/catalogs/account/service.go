package account

import (
	"context"
	"fmt"
	"time"

	"saldo/internal/core/tx"
	"saldo/internal/domain"
	"saldo/pkg/numerator"
)

// Service provides business logic for the Account catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Account] // Embedded for delegation
	repo                             Repository
	numerator                        *numerator.Service
}

// NewService creates a new Account service.
func NewService(
	repo Repository,
	txManager tx.Manager,
	num *numerator.Service,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Account]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  num,
		EntityName: "account",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      num,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)

	return svc
}

// prepareForCreate handles code generation before create.
func (s *Service) prepareForCreate(ctx context.Context, a *Account) error {
	if a.Code == "" {
		prefix := "CUST"
		if a.IsSupplier() {
			prefix = "SUPP"
		}
		cfg := numerator.DefaultConfig(prefix)
		cfg.IncludeYear = false
		code, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		a.Code = code
	}
	return nil
}

// --- Entity-specific methods (not in base CatalogService) ---

// ListCustomers retrieves customer accounts.
func (s *Service) ListCustomers(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Account], error) {
	return s.repo.ListByKind(ctx, KindCustomer, filter)
}

// ListSuppliers retrieves supplier accounts.
func (s *Service) ListSuppliers(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Account], error) {
	return s.repo.ListByKind(ctx, KindSupplier, filter)
}
