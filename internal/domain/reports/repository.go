package reports

import (
	"context"
	"time"

	"saldo/internal/core/id"
	"saldo/internal/core/types"
)

// Repository defines report data access interface.
type Repository interface {
	// Statement queries

	// GetOpeningBalance sums signed ledger entries of the account dated
	// strictly before the given day.
	GetOpeningBalance(ctx context.Context, accountID id.ID, before time.Time) (types.Money, error)

	// GetStatementEntries returns ledger rows of the account within the
	// period, joined with document numbers, ordered by
	// (occurred_at, sequence) ascending.
	GetStatementEntries(ctx context.Context, filter StatementFilter) ([]StatementEntry, error)

	// Aging queries

	// ListOpenItems returns unpaid posted documents of the chosen book,
	// optionally limited to one account.
	ListOpenItems(ctx context.Context, book Book, accountID *id.ID) ([]OpenItem, error)

	// Document journal
	GetDocumentJournal(ctx context.Context, filter DocumentJournalFilter) (*DocumentJournal, error)
	GetDocumentTypeSummary(ctx context.Context, filter DocumentJournalFilter) ([]DocumentTypeSummary, error)

	// AccountName resolves a display name for statement headers.
	AccountName(ctx context.Context, accountID id.ID) (string, error)
}
