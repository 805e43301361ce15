package document_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"saldo/internal/core/apperror"
	"saldo/internal/core/id"
	"saldo/internal/domain"
	"saldo/internal/domain/documents/payment"
	"saldo/internal/infrastructure/storage/postgres"
)

const (
	paymentsTable    = "doc_payments"
	allocationsTable = "doc_payment_allocations"
)

// PaymentRepo implements payment.Repository.
type PaymentRepo struct {
	*BaseDocumentRepo[*payment.Payment]
}

// NewPaymentRepo creates a new payment repository.
func NewPaymentRepo() *PaymentRepo {
	return &PaymentRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*payment.Payment](
			paymentsTable,
			postgres.ExtractDBColumns[payment.Payment](),
			func() *payment.Payment { return &payment.Payment{} },
		),
	}
}

// List retrieves payments with filtering.
func (r *PaymentRepo) List(ctx context.Context, filter payment.ListFilter) (domain.ListResult[*payment.Payment], error) {
	result := domain.ListResult[*payment.Payment]{
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

	if filter.Method != nil {
		q = q.Where(squirrel.Eq{"method": *filter.Method})
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

// CreateAllocations inserts allocation rows. The table carries a unique
// constraint on (payment_id, document_id).
func (r *PaymentRepo) CreateAllocations(ctx context.Context, allocations []payment.Allocation) error {
	if len(allocations) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(allocationsTable).
		Columns("id", "payment_id", "document_id", "document_type", "amount", "created_at")

	for _, a := range allocations {
		q = q.Values(a.ID, a.PaymentID, a.DocumentID, a.DocumentType, a.Amount, a.CreatedAt)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		// Unique violation (23505)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("allocation", "document_id", pgErr.Detail).
				WithCause(err)
		}
		return fmt.Errorf("insert allocations: %w", err)
	}

	return nil
}

// GetAllocations returns all allocations of a payment, oldest first.
func (r *PaymentRepo) GetAllocations(ctx context.Context, paymentID id.ID) ([]payment.Allocation, error) {
	return r.listAllocations(ctx, squirrel.Eq{"payment_id": paymentID})
}

// GetAllocationsByDocument returns all allocations targeting a document.
func (r *PaymentRepo) GetAllocationsByDocument(ctx context.Context, documentID id.ID) ([]payment.Allocation, error) {
	return r.listAllocations(ctx, squirrel.Eq{"document_id": documentID})
}

func (r *PaymentRepo) listAllocations(ctx context.Context, where squirrel.Sqlizer) ([]payment.Allocation, error) {
	q := r.Builder().
		Select("id", "payment_id", "document_id", "document_type", "amount", "created_at").
		From(allocationsTable).
		Where(where).
		OrderBy("created_at ASC", "id ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []payment.Allocation
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}

	return items, nil
}
