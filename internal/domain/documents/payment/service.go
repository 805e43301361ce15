// Package payment provides the Payment document service.
package payment

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
	"saldo/internal/domain/registers/ledger"
	"saldo/pkg/logger"
)

// AccountChecker verifies account existence.
type AccountChecker interface {
	Exists(ctx context.Context, accountID id.ID) (bool, error)
}

// LedgerPoster posts the payment credit.
type LedgerPoster interface {
	Post(ctx context.Context, req ledger.PostRequest) (*entity.LedgerEntry, error)
}

// Service provides business operations for payment documents.
//
// Receiving a payment posts one ledger credit for the full amount; the
// payment reduces the account balance whether or not it is allocated yet.
// Spreading the amount over open documents is the allocation engine's job.
type Service struct {
	repo      Repository
	accounts  AccountChecker
	ledger    LedgerPoster
	numerator numerator.Generator
	txManager tx.Manager
}

// NewService creates a new payment service.
func NewService(
	repo Repository,
	accounts AccountChecker,
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

// CreateParams describes an incoming or outgoing payment.
type CreateParams struct {
	AccountID   id.ID
	Amount      types.Money
	Method      Method
	PaymentDate time.Time
	Comment     string
}

// Receive records a payment and posts its credit to the account ledger
// in one transaction.
func (s *Service) Receive(ctx context.Context, params CreateParams) (*Payment, error) {
	if !params.Amount.IsPositive() {
		return nil, apperror.NewInvalidAmount("amount", params.Amount.String())
	}

	exists, err := s.accounts.Exists(ctx, params.AccountID)
	if err != nil {
		return nil, fmt.Errorf("check account: %w", err)
	}
	if !exists {
		return nil, apperror.NewNotFound("account", params.AccountID.String())
	}

	doc := NewPayment(params.AccountID, params.Amount, params.Method, params.PaymentDate)
	doc.Comment = params.Comment

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
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		_, err := s.ledger.Post(ctx, ledger.PostRequest{
			AccountID:  doc.AccountID,
			Amount:     doc.Amount,
			EntryType:  entity.EntryTypeCredit,
			SourceType: entity.SourceTypePayment,
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

	logger.Info(ctx, "payment received",
		"id", doc.ID,
		"number", doc.Number,
		"account_id", doc.AccountID,
		"amount", doc.Amount)

	return doc, nil
}

// GetByID retrieves a payment with its allocations loaded.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Payment, []Allocation, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil, apperror.NewNotFound("payment", docID.String())
		}
		return nil, nil, err
	}

	allocations, err := s.repo.GetAllocations(ctx, docID)
	if err != nil {
		return nil, nil, fmt.Errorf("get allocations: %w", err)
	}

	return doc, allocations, nil
}

// List retrieves payments with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Payment], error) {
	return s.repo.List(ctx, filter)
}
