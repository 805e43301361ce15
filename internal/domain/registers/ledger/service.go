// Package ledger provides the account ledger register service.
package ledger

import (
	"context"
	"fmt"
	"time"

	"saldo/internal/core/apperror"
	"saldo/internal/core/entity"
	"saldo/internal/core/id"
	"saldo/internal/core/tx"
	"saldo/internal/core/types"
	"saldo/pkg/logger"
)

// AccountChecker verifies account existence before posting.
// Implemented by the account catalog repository.
type AccountChecker interface {
	Exists(ctx context.Context, accountID id.ID) (bool, error)
}

// EventSink receives ledger events within the posting transaction.
// Implemented by the transactional outbox store; nil disables events.
type EventSink interface {
	Append(ctx context.Context, eventType string, payload any) error
}

// PostRequest describes one posting against an account.
type PostRequest struct {
	AccountID  id.ID
	Amount     types.Money
	EntryType  entity.EntryType
	SourceType entity.SourceType
	SourceID   id.ID
	OccurredAt time.Time
}

// Service provides posting and balance operations for the account ledger.
//
// Posting takes a row lock on the account balance, so two concurrent posts
// against the same account serialize while different accounts proceed in
// parallel. The ledger enforces mechanism only: it never rejects a posting
// for breaching a credit limit, that policy belongs to the credit validator
// called by the document workflow before posting.
type Service struct {
	repo      Repository
	accounts  AccountChecker
	txManager tx.Manager
	events    EventSink
}

// NewService creates a new ledger register service.
func NewService(repo Repository, accounts AccountChecker, txManager tx.Manager, events EventSink) *Service {
	return &Service{
		repo:      repo,
		accounts:  accounts,
		txManager: txManager,
		events:    events,
	}
}

// Post appends one ledger entry and folds it into the account balance.
// Runs in its own transaction, or joins the caller's transaction when one is
// already open on the context (document confirmation, allocation).
func (s *Service) Post(ctx context.Context, req PostRequest) (*entity.LedgerEntry, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.NewInvalidAmount("amount", req.Amount.String())
	}

	exists, err := s.accounts.Exists(ctx, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("check account: %w", err)
	}
	if !exists {
		return nil, apperror.NewNotFound("account", req.AccountID.String())
	}

	var entry entity.LedgerEntry
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		balance, err := s.repo.GetBalanceForUpdate(ctx, req.AccountID)
		if err != nil {
			return fmt.Errorf("lock balance: %w", err)
		}

		entry = entity.NewLedgerEntry(
			req.AccountID, req.Amount, req.EntryType,
			req.SourceType, req.SourceID, req.OccurredAt,
		)
		entry.Sequence = balance.NextSequence()

		if err := s.repo.AppendEntries(ctx, []entity.LedgerEntry{entry}); err != nil {
			return fmt.Errorf("append entry: %w", err)
		}

		balance.Apply(&entry)
		if err := s.repo.UpdateBalance(ctx, balance); err != nil {
			return fmt.Errorf("update balance: %w", err)
		}

		if s.events != nil {
			if err := s.events.Append(ctx, "ledger.entry.posted", entry); err != nil {
				return fmt.Errorf("append event: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "posted ledger entry",
		"account_id", req.AccountID,
		"entry_type", req.EntryType,
		"amount", req.Amount,
		"sequence", entry.Sequence,
	)

	return &entry, nil
}

// ReverseSource appends offsetting entries for everything a document posted.
// Used by cancellation: history is never rewritten, the reversal is new entries.
func (s *Service) ReverseSource(ctx context.Context, sourceID id.ID, occurredAt time.Time) ([]entity.LedgerEntry, error) {
	var reversals []entity.LedgerEntry
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		entries, err := s.repo.GetEntriesBySource(ctx, sourceID)
		if err != nil {
			return fmt.Errorf("get entries: %w", err)
		}

		originals := make([]entity.LedgerEntry, 0, len(entries))
		for _, e := range entries {
			if e.SourceType != entity.SourceTypeReturn {
				originals = append(originals, e)
			}
		}
		if len(originals) == 0 {
			return apperror.NewNotFound("ledger entries for source", sourceID.String())
		}

		for _, original := range originals {
			balance, err := s.repo.GetBalanceForUpdate(ctx, original.AccountID)
			if err != nil {
				return fmt.Errorf("lock balance: %w", err)
			}

			rev := original.Reversal(occurredAt)
			rev.Sequence = balance.NextSequence()

			if err := s.repo.AppendEntries(ctx, []entity.LedgerEntry{rev}); err != nil {
				return fmt.Errorf("append reversal: %w", err)
			}

			balance.Apply(&rev)
			if err := s.repo.UpdateBalance(ctx, balance); err != nil {
				return fmt.Errorf("update balance: %w", err)
			}

			if s.events != nil {
				if err := s.events.Append(ctx, "ledger.entry.reversed", rev); err != nil {
					return fmt.Errorf("append event: %w", err)
				}
			}
			reversals = append(reversals, rev)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "reversed ledger entries",
		"source_id", sourceID,
		"count", len(reversals),
	)

	return reversals, nil
}

// GetBalance returns the current balance for an account.
func (s *Service) GetBalance(ctx context.Context, accountID id.ID) (types.Money, error) {
	exists, err := s.accounts.Exists(ctx, accountID)
	if err != nil {
		return types.Zero(), fmt.Errorf("check account: %w", err)
	}
	if !exists {
		return types.Zero(), apperror.NewNotFound("account", accountID.String())
	}

	balance, err := s.repo.GetBalance(ctx, accountID)
	if err != nil {
		if apperror.IsNotFound(err) {
			// never posted to, balance is zero
			return types.Zero(), nil
		}
		return types.Zero(), err
	}
	return balance.Balance, nil
}

// GetBalanceForUpdate returns the balance under the account row lock.
// Must run inside a caller-managed transaction; the lock holds until it
// commits, so a credit check against this balance cannot be raced by a
// concurrent posting on the same account.
func (s *Service) GetBalanceForUpdate(ctx context.Context, accountID id.ID) (types.Money, error) {
	balance, err := s.repo.GetBalanceForUpdate(ctx, accountID)
	if err != nil {
		return types.Zero(), fmt.Errorf("lock balance: %w", err)
	}
	return balance.Balance, nil
}

// GetEntryHistory returns the entry history for an account.
func (s *Service) GetEntryHistory(ctx context.Context, accountID id.ID, filter EntryFilter) ([]entity.LedgerEntry, error) {
	return s.repo.GetEntryHistory(ctx, accountID, filter)
}

// RecalculateBalance rebuilds the cached balance from the entry stream.
// Maintenance operation; the cached row must always equal the fold.
func (s *Service) RecalculateBalance(ctx context.Context, accountID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.RecalculateBalance(ctx, accountID)
	})
}
