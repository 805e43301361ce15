// Package register_repo provides PostgreSQL implementations for register repositories.
// TxManager is obtained from context per-request.
package register_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"saldo/internal/core/entity"
	"saldo/internal/core/id"
	"saldo/internal/core/types"
	"saldo/internal/domain/registers/ledger"
	"saldo/internal/infrastructure/storage/postgres"
)

const (
	ledgerEntriesTable   = "reg_ledger_entries"
	accountBalancesTable = "reg_account_balances"
)

var ledgerEntryColumns = []string{
	"line_id", "account_id", "amount", "entry_type",
	"source_type", "source_id", "occurred_at", "sequence", "created_at",
}

// LedgerRepo implements ledger.Repository.
type LedgerRepo struct {
	builder squirrel.StatementBuilderType
}

// NewLedgerRepo creates a new account ledger repository.
func NewLedgerRepo() *LedgerRepo {
	return &LedgerRepo{
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// getTxManager retrieves TxManager from context.
func (r *LedgerRepo) getTxManager(ctx context.Context) *postgres.TxManager {
	return postgres.MustGetTxManager(ctx)
}

// AppendEntries batch inserts ledger entries. There is no update or delete
// counterpart: corrections post offsetting entries instead.
func (r *LedgerRepo) AppendEntries(ctx context.Context, entries []entity.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}

	// Fast path: COPY when inside a transaction.
	txm := r.getTxManager(ctx)
	if tx := txm.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(txm)
		rows := make([][]any, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []any{
				e.LineID, e.AccountID, e.Amount, e.EntryType,
				e.SourceType, e.SourceID, e.OccurredAt, e.Sequence, e.CreatedAt,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, ledgerEntriesTable, ledgerEntryColumns, rows); err != nil {
			return fmt.Errorf("copy entries: %w", err)
		}
		return nil
	}

	// Fallback: non-transactional insert. Prefer calling AppendEntries within tx.
	q := r.builder.Insert(ledgerEntriesTable).Columns(ledgerEntryColumns...)

	for _, e := range entries {
		q = q.Values(
			e.LineID, e.AccountID, e.Amount, e.EntryType,
			e.SourceType, e.SourceID, e.OccurredAt, e.Sequence, e.CreatedAt,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert entries: %w", err)
	}

	return nil
}

// GetEntriesBySource retrieves all entries produced by a document.
func (r *LedgerRepo) GetEntriesBySource(ctx context.Context, sourceID id.ID) ([]entity.LedgerEntry, error) {
	q := r.builder.Select(ledgerEntryColumns...).
		From(ledgerEntriesTable).
		Where(squirrel.Eq{"source_id": sourceID}).
		OrderBy("occurred_at", "sequence")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []entity.LedgerEntry
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select entries: %w", err)
	}

	return entries, nil
}

// GetEntriesForPeriod retrieves entries for an account within a period.
// Ordered by (occurred_at, sequence), the statement ordering.
func (r *LedgerRepo) GetEntriesForPeriod(ctx context.Context, accountID id.ID, from, to time.Time) ([]entity.LedgerEntry, error) {
	q := r.builder.Select(ledgerEntryColumns...).
		From(ledgerEntriesTable).
		Where(squirrel.Eq{"account_id": accountID}).
		Where(squirrel.GtOrEq{"occurred_at": from}).
		Where(squirrel.LtOrEq{"occurred_at": to}).
		OrderBy("occurred_at", "sequence")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []entity.LedgerEntry
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select entries: %w", err)
	}

	return entries, nil
}

// SumEntriesBefore returns the signed sum of entries before a date.
func (r *LedgerRepo) SumEntriesBefore(ctx context.Context, accountID id.ID, before time.Time) (types.Money, error) {
	sql := `
		SELECT COALESCE(
			SUM(CASE WHEN entry_type = 'debit' THEN amount ELSE -amount END),
			0
		)
		FROM reg_ledger_entries
		WHERE account_id = $1
		  AND occurred_at < $2
	`

	var sum types.Money
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, accountID, before).Scan(&sum); err != nil {
		return types.Zero(), fmt.Errorf("sum entries before: %w", err)
	}

	return sum, nil
}

// GetBalance returns the cached balance for an account. Accounts that never
// posted have a zero balance, not an error.
func (r *LedgerRepo) GetBalance(ctx context.Context, accountID id.ID) (entity.AccountBalance, error) {
	var balance entity.AccountBalance

	q := r.builder.Select(
		"account_id", "balance", "last_sequence", "last_entry_at", "updated_at",
	).From(accountBalancesTable).
		Where(squirrel.Eq{"account_id": accountID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return balance, fmt.Errorf("build query: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &balance, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity.AccountBalance{
				AccountID: accountID,
				Balance:   types.Zero(),
			}, nil
		}
		return balance, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

// GetBalanceForUpdate returns the balance with a row lock, creating the zero
// row on first posting. Every posting against the account must go through this
// lock, so concurrent postings serialize here.
func (r *LedgerRepo) GetBalanceForUpdate(ctx context.Context, accountID id.ID) (entity.AccountBalance, error) {
	var balance entity.AccountBalance

	// Upsert-then-lock: the DO NOTHING insert makes the row exist without
	// clobbering a concurrent writer, the locking select takes ownership.
	insertSQL := `
		INSERT INTO reg_account_balances (account_id, balance, last_sequence, last_entry_at, updated_at)
		VALUES ($1, 0, 0, $2, $2)
		ON CONFLICT (account_id) DO NOTHING
	`

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, insertSQL, accountID, time.Now().UTC()); err != nil {
		return balance, fmt.Errorf("init balance row: %w", err)
	}

	selectSQL := `
		SELECT account_id, balance, last_sequence, last_entry_at, updated_at
		FROM reg_account_balances
		WHERE account_id = $1
		FOR UPDATE
	`

	if err := pgxscan.Get(ctx, querier, &balance, selectSQL, accountID); err != nil {
		return balance, fmt.Errorf("get balance for update: %w", err)
	}

	return balance, nil
}

// UpdateBalance writes the folded balance back. Callers hold the row lock from
// GetBalanceForUpdate within the same transaction.
func (r *LedgerRepo) UpdateBalance(ctx context.Context, balance entity.AccountBalance) error {
	q := r.builder.Update(accountBalancesTable).
		Set("balance", balance.Balance).
		Set("last_sequence", balance.LastSequence).
		Set("last_entry_at", balance.LastEntryAt).
		Set("updated_at", balance.UpdatedAt).
		Where(squirrel.Eq{"account_id": balance.AccountID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("update balance: %w", err)
	}

	return nil
}

// GetEntryHistory returns entry history for an account.
func (r *LedgerRepo) GetEntryHistory(ctx context.Context, accountID id.ID, filter ledger.EntryFilter) ([]entity.LedgerEntry, error) {
	q := r.builder.Select(ledgerEntryColumns...).
		From(ledgerEntriesTable).
		Where(squirrel.Eq{"account_id": accountID})

	if filter.EntryType != nil {
		q = q.Where(squirrel.Eq{"entry_type": *filter.EntryType})
	}

	if filter.SourceType != nil {
		q = q.Where(squirrel.Eq{"source_type": *filter.SourceType})
	}

	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"occurred_at": *filter.FromDate})
	}

	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"occurred_at": *filter.ToDate})
	}

	q = q.OrderBy("occurred_at DESC", "sequence DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []entity.LedgerEntry
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}

	return entries, nil
}

// RecalculateBalance rebuilds the cached balance row from the entry stream.
func (r *LedgerRepo) RecalculateBalance(ctx context.Context, accountID id.ID) error {
	sql := `
		INSERT INTO reg_account_balances (account_id, balance, last_sequence, last_entry_at, updated_at)
		SELECT
			$1,
			COALESCE(SUM(CASE WHEN entry_type = 'debit' THEN amount ELSE -amount END), 0),
			COALESCE(MAX(sequence), 0),
			COALESCE(MAX(occurred_at), $2),
			$2
		FROM reg_ledger_entries
		WHERE account_id = $1
		ON CONFLICT (account_id) DO UPDATE SET
			balance = EXCLUDED.balance,
			last_sequence = EXCLUDED.last_sequence,
			last_entry_at = EXCLUDED.last_entry_at,
			updated_at = EXCLUDED.updated_at
	`

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, accountID, time.Now().UTC()); err != nil {
		return fmt.Errorf("recalculate balance: %w", err)
	}

	return nil
}

// Ensure interface compliance.
var _ ledger.Repository = (*LedgerRepo)(nil)
