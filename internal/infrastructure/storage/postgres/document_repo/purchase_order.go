package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"saldo/internal/core/id"
	"saldo/internal/domain"
	"saldo/internal/domain/documents/purchase_order"
	"saldo/internal/infrastructure/storage/postgres"
)

const purchaseOrdersTable = "doc_purchase_orders"

// PurchaseOrderRepo implements purchase_order.Repository.
type PurchaseOrderRepo struct {
	*BaseDocumentRepo[*purchase_order.PurchaseOrder]
}

// NewPurchaseOrderRepo creates a new purchase order repository.
func NewPurchaseOrderRepo() *PurchaseOrderRepo {
	return &PurchaseOrderRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*purchase_order.PurchaseOrder](
			purchaseOrdersTable,
			postgres.ExtractDBColumns[purchase_order.PurchaseOrder](),
			func() *purchase_order.PurchaseOrder { return &purchase_order.PurchaseOrder{} },
		),
	}
}

// List retrieves purchase orders with filtering.
func (r *PurchaseOrderRepo) List(ctx context.Context, filter purchase_order.ListFilter) (domain.ListResult[*purchase_order.PurchaseOrder], error) {
	result := domain.ListResult[*purchase_order.PurchaseOrder]{
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

// ListOpenByAccount returns open orders ordered by (date, id) ascending for
// FIFO allocation.
func (r *PurchaseOrderRepo) ListOpenByAccount(ctx context.Context, accountID id.ID) ([]*purchase_order.PurchaseOrder, error) {
	q := openSelect(r.baseSelect(ctx)).
		Where(squirrel.Eq{"account_id": accountID}).
		OrderBy("date ASC", "id ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*purchase_order.PurchaseOrder
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list open: %w", err)
	}

	return items, nil
}

// ListOpen returns all open orders, optionally for one account.
func (r *PurchaseOrderRepo) ListOpen(ctx context.Context, accountID *id.ID) ([]*purchase_order.PurchaseOrder, error) {
	q := openSelect(r.baseSelect(ctx)).
		OrderBy("date ASC", "id ASC")

	if accountID != nil {
		q = q.Where(squirrel.Eq{"account_id": *accountID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*purchase_order.PurchaseOrder
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list open: %w", err)
	}

	return items, nil
}
