package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"saldo/internal/domain"
	"saldo/internal/domain/catalogs/account"
	"saldo/internal/infrastructure/storage/postgres"
)

const accountTable = "cat_accounts"

// AccountRepo implements account.Repository.
type AccountRepo struct {
	*BaseCatalogRepo[*account.Account]
}

// NewAccountRepo creates a new account repository.
func NewAccountRepo() *AccountRepo {
	return &AccountRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*account.Account](
			accountTable,
			postgres.ExtractDBColumns[account.Account](),
			func() *account.Account { return &account.Account{} },
		),
	}
}

// ListByKind retrieves accounts of one kind (customers or suppliers).
func (r *AccountRepo) ListByKind(ctx context.Context, kind account.Kind, filter domain.ListFilter) (domain.ListResult[*account.Account], error) {
	result := domain.ListResult[*account.Account]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"kind": kind}).
		Where(squirrel.Eq{"deletion_mark": false})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"code": pattern},
		})
	}

	countQ := r.Builder().
		Select("COUNT(*)").
		FromSelect(q, "sub")

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, err
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, err
	}

	q = q.OrderBy("name ASC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, err
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, err
	}

	return result, nil
}
