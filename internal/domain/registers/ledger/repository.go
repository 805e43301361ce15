// Package ledger provides the account ledger accumulation register.
package ledger

import (
	"context"
	"time"

	"saldo/internal/core/entity"
	"saldo/internal/core/id"
	"saldo/internal/core/types"
)

// Repository defines operations for the account ledger register.
type Repository interface {
	// Entry operations

	// AppendEntries inserts ledger entries. Entries are append-only and are
	// never updated or deleted afterwards.
	AppendEntries(ctx context.Context, entries []entity.LedgerEntry) error

	// GetEntriesBySource retrieves all entries produced by a document
	GetEntriesBySource(ctx context.Context, sourceID id.ID) ([]entity.LedgerEntry, error)

	// GetEntriesForPeriod retrieves entries for an account with
	// from <= occurred_at <= to, ordered by (occurred_at, sequence)
	GetEntriesForPeriod(ctx context.Context, accountID id.ID, from, to time.Time) ([]entity.LedgerEntry, error)

	// SumEntriesBefore returns the signed sum of entries with occurred_at < before.
	// Used as the opening balance of a statement.
	SumEntriesBefore(ctx context.Context, accountID id.ID, before time.Time) (types.Money, error)

	// Balance operations

	// GetBalance returns the cached balance for an account.
	// Accounts that were never posted to have a zero balance.
	GetBalance(ctx context.Context, accountID id.ID) (entity.AccountBalance, error)

	// GetBalanceForUpdate returns the balance with a row lock, inserting the
	// zero row on first use. The lock serializes all posting against the
	// account for the rest of the transaction.
	GetBalanceForUpdate(ctx context.Context, accountID id.ID) (entity.AccountBalance, error)

	// UpdateBalance writes the folded balance back within the same transaction
	UpdateBalance(ctx context.Context, balance entity.AccountBalance) error

	// Reporting

	// GetEntryHistory returns entry history for an account
	GetEntryHistory(ctx context.Context, accountID id.ID, filter EntryFilter) ([]entity.LedgerEntry, error)

	// Maintenance

	// RecalculateBalance rebuilds the cached balance row from the entry stream
	RecalculateBalance(ctx context.Context, accountID id.ID) error
}

// EntryFilter for filtering entry history.
type EntryFilter struct {
	EntryType  *entity.EntryType
	SourceType *entity.SourceType
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
	Offset     int
}
