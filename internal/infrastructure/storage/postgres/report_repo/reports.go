// Package report_repo provides PostgreSQL implementations for report repositories.
// TxManager is obtained from context per-request.
package report_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"saldo/internal/core/apperror"
	"saldo/internal/core/id"
	"saldo/internal/core/types"
	"saldo/internal/domain/reports"
	"saldo/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	builder squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo() *ReportRepo {
	return &ReportRepo{
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// getTxManager retrieves TxManager from context.
func (r *ReportRepo) getTxManager(ctx context.Context) *postgres.TxManager {
	return postgres.MustGetTxManager(ctx)
}

// GetOpeningBalance sums signed ledger entries dated strictly before the day.
func (r *ReportRepo) GetOpeningBalance(ctx context.Context, accountID id.ID, before time.Time) (types.Money, error) {
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
		return types.Zero(), fmt.Errorf("opening balance: %w", err)
	}

	return sum, nil
}

// GetStatementEntries returns the account's ledger rows within the period,
// joined with the source document's number. Ordered by (occurred_at, sequence)
// so same-day postings keep their posting order.
func (r *ReportRepo) GetStatementEntries(ctx context.Context, filter reports.StatementFilter) ([]reports.StatementEntry, error) {
	query := `
		SELECT
			e.occurred_at as date,
			e.sequence,
			e.entry_type,
			e.source_type,
			e.source_id,
			COALESCE(i.number, po.number, p.number, '') as document_number,
			e.amount
		FROM reg_ledger_entries e
		LEFT JOIN doc_invoices i ON e.source_id = i.id AND e.source_type = 'invoice'
		LEFT JOIN doc_purchase_orders po ON e.source_id = po.id AND e.source_type = 'purchase_order'
		LEFT JOIN doc_payments p ON e.source_id = p.id AND e.source_type = 'payment'
		WHERE e.account_id = $1
		  AND e.occurred_at >= $2
		  AND e.occurred_at <= $3
		ORDER BY e.occurred_at, e.sequence
	`

	var entries []reports.StatementEntry
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, query, filter.AccountID, filter.FromDate, filter.ToDate); err != nil {
		return nil, fmt.Errorf("statement entries: %w", err)
	}

	return entries, nil
}

// ListOpenItems returns unpaid posted documents of the chosen book.
func (r *ReportRepo) ListOpenItems(ctx context.Context, book reports.Book, accountID *id.ID) ([]reports.OpenItem, error) {
	var table, docType string
	switch book {
	case reports.BookReceivable:
		table, docType = "doc_invoices", "invoice"
	case reports.BookPayable:
		table, docType = "doc_purchase_orders", "purchase_order"
	default:
		return nil, apperror.NewValidation("invalid book").WithDetail("book", string(book))
	}

	query := fmt.Sprintf(`
		SELECT
			d.id as document_id,
			'%s' as document_type,
			d.number,
			d.account_id,
			a.name as account_name,
			d.date,
			d.due_date,
			d.total_amount - d.paid_amount as remaining
		FROM %s d
		JOIN cat_accounts a ON d.account_id = a.id
		WHERE d.posted = true
		  AND d.cancelled = false
		  AND d.deletion_mark = false
		  AND d.paid_amount < d.total_amount
	`, docType, table)

	args := []any{}
	if accountID != nil {
		query += " AND d.account_id = $1"
		args = append(args, *accountID)
	}

	query += " ORDER BY a.name, d.date, d.id"

	var items []reports.OpenItem
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, query, args...); err != nil {
		return nil, fmt.Errorf("open items: %w", err)
	}

	return items, nil
}

// AccountName resolves a display name for statement headers.
func (r *ReportRepo) AccountName(ctx context.Context, accountID id.ID) (string, error) {
	sql := `SELECT name FROM cat_accounts WHERE id = $1`

	var name string
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, accountID).Scan(&name); err != nil {
		if pgxscan.NotFound(err) {
			return "", apperror.NewNotFound("account", accountID.String())
		}
		return "", fmt.Errorf("account name: %w", err)
	}

	return name, nil
}

// journalDocTypes maps journal type names to their tables. Payments carry no
// paid_amount of their own, the allocated amount takes its place.
var journalDocTypes = map[string]struct {
	table     string
	amountCol string
	paidCol   string
}{
	"invoice":        {table: "doc_invoices", amountCol: "total_amount", paidCol: "paid_amount"},
	"purchase_order": {table: "doc_purchase_orders", amountCol: "total_amount", paidCol: "paid_amount"},
	"payment":        {table: "doc_payments", amountCol: "amount", paidCol: "allocated_amount"},
}

// GetDocumentJournal retrieves documents of all kinds in one journal view.
func (r *ReportRepo) GetDocumentJournal(ctx context.Context, filter reports.DocumentJournalFilter) (*reports.DocumentJournal, error) {
	docTypes := filter.DocumentTypes
	if len(docTypes) == 0 {
		docTypes = []string{"invoice", "purchase_order", "payment"}
	}

	var unions []string
	var args []any
	argIndex := 1

	for _, docType := range docTypes {
		spec, ok := journalDocTypes[docType]
		if !ok {
			continue
		}

		q := fmt.Sprintf(`
			SELECT
				d.id, '%s' as document_type, d.number, d.date,
				d.posted, d.cancelled,
				d.account_id, a.name as account_name,
				d.%s as total_amount, d.%s as paid_amount,
				d.comment, d.created_at, d.updated_at
			FROM %s d
			JOIN cat_accounts a ON d.account_id = a.id
			WHERE d.deletion_mark = false
		`, docType, spec.amountCol, spec.paidCol, spec.table)

		if filter.FromDate != nil {
			q += fmt.Sprintf(" AND d.date >= $%d", argIndex)
			args = append(args, *filter.FromDate)
			argIndex++
		}
		if filter.ToDate != nil {
			q += fmt.Sprintf(" AND d.date < $%d", argIndex)
			args = append(args, *filter.ToDate)
			argIndex++
		}
		if filter.Posted != nil {
			q += fmt.Sprintf(" AND d.posted = $%d", argIndex)
			args = append(args, *filter.Posted)
			argIndex++
		}
		if filter.Cancelled != nil {
			q += fmt.Sprintf(" AND d.cancelled = $%d", argIndex)
			args = append(args, *filter.Cancelled)
			argIndex++
		}
		if filter.NumberContains != "" {
			q += fmt.Sprintf(" AND d.number ILIKE $%d", argIndex)
			args = append(args, "%"+filter.NumberContains+"%")
			argIndex++
		}
		if len(filter.AccountIDs) > 0 {
			placeholders := make([]string, len(filter.AccountIDs))
			for i, accID := range filter.AccountIDs {
				placeholders[i] = fmt.Sprintf("$%d", argIndex)
				args = append(args, accID)
				argIndex++
			}
			q += fmt.Sprintf(" AND d.account_id IN (%s)", strings.Join(placeholders, ","))
		}

		unions = append(unions, q)
	}

	if len(unions) == 0 {
		return &reports.DocumentJournal{
			Items:      []reports.DocumentJournalItem{},
			TotalCount: 0,
		}, nil
	}

	query := strings.Join(unions, " UNION ALL ")
	query += " ORDER BY " + journalOrderBy(filter.SortBy, filter.SortOrder)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	var items []reports.DocumentJournalItem
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, query, args...); err != nil {
		return nil, fmt.Errorf("document journal: %w", err)
	}

	return &reports.DocumentJournal{
		Items:      items,
		TotalCount: len(items),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

func journalOrderBy(sortBy, sortOrder string) string {
	col := "date"
	switch sortBy {
	case "number":
		col = "number"
	case "type":
		col = "document_type"
	case "amount":
		col = "total_amount"
	}

	dir := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		dir = "ASC"
	}

	return col + " " + dir + ", number"
}

// GetDocumentTypeSummary returns document counts and totals by type.
func (r *ReportRepo) GetDocumentTypeSummary(ctx context.Context, filter reports.DocumentJournalFilter) ([]reports.DocumentTypeSummary, error) {
	var result []reports.DocumentTypeSummary

	docTypes := filter.DocumentTypes
	if len(docTypes) == 0 {
		docTypes = []string{"invoice", "purchase_order", "payment"}
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)

	for _, docType := range docTypes {
		spec, ok := journalDocTypes[docType]
		if !ok {
			continue
		}

		var summary reports.DocumentTypeSummary
		summary.DocumentType = docType

		query := fmt.Sprintf(`
			SELECT
				COUNT(*) as count,
				COUNT(*) FILTER (WHERE posted = true) as posted_count,
				COALESCE(SUM(%s), 0) as total_amount
			FROM %s
			WHERE deletion_mark = false
		`, spec.amountCol, spec.table)

		var args []any
		argIndex := 1

		if filter.FromDate != nil {
			query += fmt.Sprintf(" AND date >= $%d", argIndex)
			args = append(args, *filter.FromDate)
			argIndex++
		}
		if filter.ToDate != nil {
			query += fmt.Sprintf(" AND date < $%d", argIndex)
			args = append(args, *filter.ToDate)
			argIndex++
		}

		err := querier.QueryRow(ctx, query, args...).Scan(
			&summary.Count,
			&summary.PostedCount,
			&summary.TotalAmount,
		)
		if err != nil {
			return nil, fmt.Errorf("document type summary for %s: %w", docType, err)
		}

		result = append(result, summary)
	}

	return result, nil
}

// Ensure interface compliance
var _ reports.Repository = (*ReportRepo)(nil)
