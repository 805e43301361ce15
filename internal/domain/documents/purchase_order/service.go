// Package purchase_order provides the PurchaseOrder document service.
package purchase_order

import (
	"context"
	"fmt"
	"time"

	"saldo/internal/core/apperror"
	"saldo/internal/core/entity"
	"saldo/internal/core/id"
	"saldo/internal/core/numerator"
	"saldo/internal/core/tx"
	"saldo/internal/core/types"
	"saldo/internal/domain"
	"saldo/internal/domain/catalogs/account"
	"saldo/internal/domain/registers/ledger"
	"saldo/pkg/logger"
)

// AccountSource resolves accounts for validation and due-date terms.
type AccountSource interface {
	GetByID(ctx context.Context, accountID id.ID) (*account.Account, error)
}

// LedgerPoster is the slice of the ledger service the order workflow needs.
type LedgerPoster interface {
	Post(ctx context.Context, req ledger.PostRequest) (*entity.LedgerEntry, error)
	ReverseSource(ctx context.Context, sourceID id.ID, occurredAt time.Time) ([]entity.LedgerEntry, error)
}

// Service provides business operations for purchase order documents.
// Payables carry no credit limit check; otherwise the lifecycle mirrors invoices.
type Service struct {
	repo      Repository
	accounts  AccountSource
	ledger    LedgerPoster
	numerator numerator.Generator
	txManager tx.Manager
}

// NewService creates a new purchase order service.
func NewService(
	repo Repository,
	accounts AccountSource,
	ledgerSvc LedgerPoster,
	num numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		accounts:  accounts,
		ledger:    ledgerSvc,
		numerator: num,
		txManager: txManager,
	}
}

// CreateParams describes a new purchase order.
type CreateParams struct {
	AccountID   id.ID
	Date        time.Time
	TotalAmount types.Money
	DueDate     *time.Time
	Comment     string
}

// Create creates a draft purchase order.
func (s *Service) Create(ctx context.Context, params CreateParams) (*PurchaseOrder, error) {
	if params.TotalAmount.IsNegative() {
		return nil, apperror.NewInvalidAmount("totalAmount", params.TotalAmount.String())
	}

	acc, err := s.accounts.GetByID(ctx, params.AccountID)
	if err != nil {
		return nil, err
	}
	if !acc.IsSupplier() {
		return nil, apperror.NewValidation("purchase orders require a supplier account").
			WithDetail("account_id", params.AccountID.String()).
			WithDetail("kind", string(acc.Kind))
	}

	doc := NewPurchaseOrder(params.AccountID, params.Date, params.TotalAmount)
	doc.Comment = params.Comment
	if params.DueDate != nil {
		doc.DueDate = types.TruncateToDay(*params.DueDate)
	} else {
		doc.DueDate = acc.DueDate(doc.Date)
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, err
	}

	if doc.Number == "" {
		cfg := numerator.DefaultConfig(NumeratorPrefix)
		number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: NumeratorStrategy}, time.Now())
		if err != nil {
			return nil, fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase order created",
		"id", doc.ID,
		"number", doc.Number,
		"account_id", doc.AccountID,
		"total", doc.TotalAmount)

	return doc, nil
}

// Confirm posts the order debit to the supplier account.
func (s *Service) Confirm(ctx context.Context, docID id.ID) (*PurchaseOrder, error) {
	var doc *PurchaseOrder
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}

		if err := doc.CanPost(ctx); err != nil {
			return err
		}

		_, err = s.ledger.Post(ctx, ledger.PostRequest{
			AccountID:  doc.AccountID,
			Amount:     doc.TotalAmount,
			EntryType:  entity.EntryTypeDebit,
			SourceType: entity.SourceTypePurchaseOrder,
			SourceID:   doc.ID,
			OccurredAt: doc.Date,
		})
		if err != nil {
			return err
		}

		doc.MarkPosted()
		return s.repo.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase order confirmed",
		"id", doc.ID,
		"number", doc.Number,
		"total", doc.TotalAmount)

	return doc, nil
}

// Cancel voids the order, reversing its posting when confirmed.
func (s *Service) Cancel(ctx context.Context, docID id.ID) (*PurchaseOrder, error) {
	var doc *PurchaseOrder
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}

		if doc.Cancelled {
			return apperror.NewDocumentCancelled("purchase order", doc.ID.String())
		}
		if doc.PaidAmount.IsPositive() {
			return apperror.NewBusinessRule(
				apperror.CodeBusinessRule,
				"cannot cancel order with allocated payments",
			).WithDetail("order_id", doc.ID.String()).
				WithDetail("paid_amount", doc.PaidAmount.String())
		}

		if doc.Posted {
			if _, err := s.ledger.ReverseSource(ctx, doc.ID, time.Now()); err != nil {
				return err
			}
		}

		doc.MarkCancelled()
		return s.repo.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase order cancelled", "id", doc.ID, "number", doc.Number)
	return doc, nil
}

// GetByID retrieves a purchase order.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*PurchaseOrder, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("purchase order", docID.String())
		}
		return nil, err
	}
	return doc, nil
}

// List retrieves purchase orders with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*PurchaseOrder], error) {
	return s.repo.List(ctx, filter)
}
