package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"saldo/internal/core/id"
	"saldo/internal/domain"
	"saldo/internal/domain/documents/invoice"
	"saldo/internal/infrastructure/storage/postgres"
)

const invoicesTable = "doc_invoices"

// InvoiceRepo implements invoice.Repository.
type InvoiceRepo struct {
	*BaseDocumentRepo[*invoice.Invoice]
}

// NewInvoiceRepo creates a new invoice repository.
func NewInvoiceRepo() *InvoiceRepo {
	return &InvoiceRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*invoice.Invoice](
			invoicesTable,
			postgres.ExtractDBColumns[invoice.Invoice](),
			func() *invoice.Invoice { return &invoice.Invoice{} },
		),
	}
}

// List retrieves invoices with filtering.
func (r *InvoiceRepo) List(ctx context.Context, filter invoice.ListFilter) (domain.ListResult[*invoice.Invoice], error) {
	result := domain.ListResult[*invoice.Invoice]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect(ctx)

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.AccountID != nil {
		q = q.Where(squirrel.Eq{"account_id": *filter.AccountID})
	}

	if filter.Status != nil {
		q = q.Where(paymentStatusCondition(string(*filter.Status)))
	}

	if filter.Posted != nil {
		q = q.Where(squirrel.Eq{"posted": *filter.Posted})
	}

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}

	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"number": "%" + filter.Search + "%"})
	}

	countQ := r.Builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy := "date DESC"
	if filter.OrderBy != "" {
		orderBy = filter.OrderBy
	}
	q = q.OrderBy(orderBy)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("select: %w", err)
	}

	return result, nil
}

// ListOpenByAccount returns posted, non-cancelled invoices that are not fully
// paid, ordered by (date, id) ascending. This ordering is what makes FIFO
// allocation deterministic.
func (r *InvoiceRepo) ListOpenByAccount(ctx context.Context, accountID id.ID) ([]*invoice.Invoice, error) {
	q := openSelect(r.baseSelect(ctx)).
		Where(squirrel.Eq{"account_id": accountID}).
		OrderBy("date ASC", "id ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*invoice.Invoice
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list open: %w", err)
	}

	return items, nil
}

// ListOpen returns all open invoices, optionally for one account.
func (r *InvoiceRepo) ListOpen(ctx context.Context, accountID *id.ID) ([]*invoice.Invoice, error) {
	q := openSelect(r.baseSelect(ctx)).
		OrderBy("date ASC", "id ASC")

	if accountID != nil {
		q = q.Where(squirrel.Eq{"account_id": *accountID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*invoice.Invoice
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list open: %w", err)
	}

	return items, nil
}

// openSelect narrows a document select to open documents: posted, not
// cancelled, not deleted, with something left to pay.
func openSelect(q squirrel.SelectBuilder) squirrel.SelectBuilder {
	return q.
		Where(squirrel.Eq{"posted": true}).
		Where(squirrel.Eq{"cancelled": false}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(squirrel.Expr("paid_amount < total_amount"))
}

// paymentStatusCondition maps a derived status to its amount predicate.
// Status is never stored; it is always recomputed from the two amounts.
func paymentStatusCondition(status string) squirrel.Sqlizer {
	switch status {
	case "paid":
		return squirrel.Expr("paid_amount = total_amount AND total_amount > 0")
	case "partial":
		return squirrel.Expr("paid_amount > 0 AND paid_amount < total_amount")
	default:
		return squirrel.Expr("paid_amount = 0")
	}
}
