// Package invoice provides the Invoice document service.
package invoice

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
	"saldo/internal/domain/credit"
	"saldo/internal/domain/registers/ledger"
	"saldo/pkg/logger"
)

// AccountSource resolves accounts for validation and due-date terms.
type AccountSource interface {
	GetByID(ctx context.Context, accountID id.ID) (*account.Account, error)
}

// LedgerPoster is the slice of the ledger service the invoice workflow needs.
type LedgerPoster interface {
	Post(ctx context.Context, req ledger.PostRequest) (*entity.LedgerEntry, error)
	ReverseSource(ctx context.Context, sourceID id.ID, occurredAt time.Time) ([]entity.LedgerEntry, error)
	GetBalanceForUpdate(ctx context.Context, accountID id.ID) (types.Money, error)
}

// Override authorizes confirmation past a blocked credit decision.
// The ledger posts either way; the override is recorded as an audit fact.
type Override struct {
	Reason     string
	ApprovedBy string
}

// Service provides business operations for invoice documents.
type Service struct {
	repo      Repository
	accounts  AccountSource
	ledger    LedgerPoster
	overrides credit.OverrideRecorder
	numerator numerator.Generator
	txManager tx.Manager
	hooks     *domain.HookRegistry[*Invoice]
}

// NewService creates a new invoice service.
func NewService(
	repo Repository,
	accounts AccountSource,
	ledgerSvc LedgerPoster,
	overrides credit.OverrideRecorder,
	num numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		accounts:  accounts,
		ledger:    ledgerSvc,
		overrides: overrides,
		numerator: num,
		txManager: txManager,
		hooks:     domain.NewHookRegistry[*Invoice](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Invoice] {
	return s.hooks
}

// CreateParams describes a new invoice.
type CreateParams struct {
	AccountID   id.ID
	Date        time.Time
	TotalAmount types.Money
	// DueDate overrides the account payment terms when set
	DueDate *time.Time
	Comment string
}

// Create creates a draft invoice. The due date defaults to the document date
// plus the account payment terms.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Invoice, error) {
	if params.TotalAmount.IsNegative() {
		return nil, apperror.NewInvalidAmount("totalAmount", params.TotalAmount.String())
	}

	acc, err := s.accounts.GetByID(ctx, params.AccountID)
	if err != nil {
		return nil, err
	}
	if !acc.IsCustomer() {
		return nil, apperror.NewValidation("invoices require a customer account").
			WithDetail("account_id", params.AccountID.String()).
			WithDetail("kind", string(acc.Kind))
	}

	doc := NewInvoice(params.AccountID, params.Date, params.TotalAmount)
	doc.Comment = params.Comment
	if params.DueDate != nil {
		doc.DueDate = types.TruncateToDay(*params.DueDate)
	} else {
		doc.DueDate = acc.DueDate(doc.Date)
	}

	if err := s.hooks.RunBeforeCreate(ctx, doc); err != nil {
		return nil, err
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, err
	}

	// Generate number if empty
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

	if err := s.hooks.RunAfterCreate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "invoice created",
		"id", doc.ID,
		"number", doc.Number,
		"account_id", doc.AccountID,
		"total", doc.TotalAmount)

	return doc, nil
}

// Confirm posts the invoice debit to the account ledger.
//
// The credit limit is checked first: a blocked decision rejects the
// confirmation unless an explicit override is supplied, in which case the
// override is recorded and posting proceeds. Check and posting run in one
// transaction so a concurrent confirmation cannot slip past the limit
// using a stale balance.
func (s *Service) Confirm(ctx context.Context, docID id.ID, override *Override) (*Invoice, error) {
	var doc *Invoice
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}

		if err := doc.CanPost(ctx); err != nil {
			return err
		}

		acc, err := s.accounts.GetByID(ctx, doc.AccountID)
		if err != nil {
			return err
		}

		if acc.HasCreditLimit() {
			// The balance is read under the account row lock so a
			// concurrent confirmation on the same account cannot pass
			// the check against a balance this transaction is about to
			// change.
			balance, err := s.ledger.GetBalanceForUpdate(ctx, doc.AccountID)
			if err != nil {
				return err
			}

			decision := credit.Validate(balance, acc.CreditLimit, doc.TotalAmount)
			switch decision.Severity {
			case credit.SeverityBlocked:
				if override == nil {
					return apperror.NewCreditLimitBlocked(
						doc.AccountID.String(),
						decision.Projected.String(),
						decision.Limit.String(),
					)
				}
				if s.overrides != nil {
					err := s.overrides.RecordOverride(ctx, credit.Override{
						AccountID:  doc.AccountID,
						DocumentID: doc.ID,
						Projected:  decision.Projected,
						Limit:      decision.Limit,
						Reason:     override.Reason,
						ApprovedBy: override.ApprovedBy,
						OccurredAt: time.Now().UTC(),
					})
					if err != nil {
						return fmt.Errorf("record override: %w", err)
					}
				}
			case credit.SeverityWarning:
				logger.Warn(ctx, "credit limit warning on confirmation",
					"account_id", doc.AccountID,
					"projected", decision.Projected,
					"limit", decision.Limit)
			}
		}

		_, err = s.ledger.Post(ctx, ledger.PostRequest{
			AccountID:  doc.AccountID,
			Amount:     doc.TotalAmount,
			EntryType:  entity.EntryTypeDebit,
			SourceType: entity.SourceTypeInvoice,
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

	logger.Info(ctx, "invoice confirmed",
		"id", doc.ID,
		"number", doc.Number,
		"total", doc.TotalAmount)

	return doc, nil
}

// Cancel voids the invoice. A posted invoice gets its debit reversed with an
// offsetting ledger entry; the original entry stays in history. Invoices with
// allocated payments cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, docID id.ID) (*Invoice, error) {
	var doc *Invoice
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}

		if doc.Cancelled {
			return apperror.NewDocumentCancelled("invoice", doc.ID.String())
		}
		if doc.PaidAmount.IsPositive() {
			return apperror.NewBusinessRule(
				apperror.CodeBusinessRule,
				"cannot cancel invoice with allocated payments",
			).WithDetail("invoice_id", doc.ID.String()).
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

	logger.Info(ctx, "invoice cancelled", "id", doc.ID, "number", doc.Number)
	return doc, nil
}

// RegisterReturn posts a credit for goods returned against this invoice.
// The invoice payment state is untouched; the credit reduces the account
// balance as returned value.
func (s *Service) RegisterReturn(ctx context.Context, docID id.ID, amount types.Money, occurredAt time.Time) (*entity.LedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, apperror.NewInvalidAmount("amount", amount.String())
	}

	var entry *entity.LedgerEntry
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetByID(ctx, docID)
		if err != nil {
			return err
		}
		if !doc.Posted || doc.Cancelled {
			return apperror.NewBusinessRule(
				apperror.CodeBusinessRule,
				"returns require a confirmed invoice",
			).WithDetail("invoice_id", docID.String())
		}
		if amount.GreaterThan(doc.TotalAmount) {
			return apperror.NewValidation("return exceeds invoice total").
				WithDetail("amount", amount.String()).
				WithDetail("total", doc.TotalAmount.String())
		}

		entry, err = s.ledger.Post(ctx, ledger.PostRequest{
			AccountID:  doc.AccountID,
			Amount:     amount,
			EntryType:  entity.EntryTypeCredit,
			SourceType: entity.SourceTypeReturn,
			SourceID:   doc.ID,
			OccurredAt: occurredAt,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "return registered",
		"invoice_id", docID,
		"amount", amount)

	return entry, nil
}

// GetByID retrieves an invoice.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Invoice, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("invoice", docID.String())
		}
		return nil, err
	}
	return doc, nil
}

// List retrieves invoices with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error) {
	return s.repo.List(ctx, filter)
}
