package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/core/apperror"
	"saldo/internal/core/entity"
	"saldo/internal/core/id"
	"saldo/internal/core/types"
)

// fakeRepo is an in-memory Repository for service tests.
type fakeRepo struct {
	entries  []entity.LedgerEntry
	balances map[id.ID]entity.AccountBalance
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{balances: make(map[id.ID]entity.AccountBalance)}
}

func (r *fakeRepo) AppendEntries(_ context.Context, entries []entity.LedgerEntry) error {
	r.entries = append(r.entries, entries...)
	return nil
}

func (r *fakeRepo) GetEntriesBySource(_ context.Context, sourceID id.ID) ([]entity.LedgerEntry, error) {
	var out []entity.LedgerEntry
	for _, e := range r.entries {
		if e.SourceID == sourceID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetEntriesForPeriod(_ context.Context, accountID id.ID, from, to time.Time) ([]entity.LedgerEntry, error) {
	var out []entity.LedgerEntry
	for _, e := range r.entries {
		if e.AccountID == accountID && !e.OccurredAt.Before(from) && !e.OccurredAt.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeRepo) SumEntriesBefore(_ context.Context, accountID id.ID, before time.Time) (types.Money, error) {
	sum := types.Zero()
	for _, e := range r.entries {
		if e.AccountID == accountID && e.OccurredAt.Before(before) {
			sum = sum.Add(e.SignedAmount())
		}
	}
	return sum, nil
}

func (r *fakeRepo) GetBalance(_ context.Context, accountID id.ID) (entity.AccountBalance, error) {
	b, ok := r.balances[accountID]
	if !ok {
		return entity.AccountBalance{}, apperror.NewNotFound("account balance", accountID.String())
	}
	return b, nil
}

func (r *fakeRepo) GetBalanceForUpdate(_ context.Context, accountID id.ID) (entity.AccountBalance, error) {
	b, ok := r.balances[accountID]
	if !ok {
		b = entity.AccountBalance{AccountID: accountID, Balance: types.Zero()}
		r.balances[accountID] = b
	}
	return b, nil
}

func (r *fakeRepo) UpdateBalance(_ context.Context, balance entity.AccountBalance) error {
	r.balances[balance.AccountID] = balance
	return nil
}

func (r *fakeRepo) GetEntryHistory(_ context.Context, accountID id.ID, _ EntryFilter) ([]entity.LedgerEntry, error) {
	var out []entity.LedgerEntry
	for _, e := range r.entries {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeRepo) RecalculateBalance(_ context.Context, accountID id.ID) error {
	b := entity.AccountBalance{AccountID: accountID, Balance: types.Zero()}
	for i := range r.entries {
		if r.entries[i].AccountID == accountID {
			b.Apply(&r.entries[i])
		}
	}
	r.balances[accountID] = b
	return nil
}

// passthroughTx runs fn directly, standing in for a real transaction.
type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeAccounts struct {
	known map[id.ID]bool
}

func (a fakeAccounts) Exists(_ context.Context, accountID id.ID) (bool, error) {
	return a.known[accountID], nil
}

func newTestService(accounts ...id.ID) (*Service, *fakeRepo) {
	repo := newFakeRepo()
	known := make(map[id.ID]bool)
	for _, a := range accounts {
		known[a] = true
	}
	svc := NewService(repo, fakeAccounts{known: known}, passthroughTx{}, nil)
	return svc, repo
}

func TestService_PostUpdatesBalanceAndSequence(t *testing.T) {
	accountID := id.New()
	svc, repo := newTestService(accountID)
	ctx := context.Background()

	entry, err := svc.Post(ctx, PostRequest{
		AccountID:  accountID,
		Amount:     types.MustMoney("500"),
		EntryType:  entity.EntryTypeDebit,
		SourceType: entity.SourceTypeInvoice,
		SourceID:   id.New(),
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), entry.Sequence)

	entry, err = svc.Post(ctx, PostRequest{
		AccountID:  accountID,
		Amount:     types.MustMoney("200"),
		EntryType:  entity.EntryTypeCredit,
		SourceType: entity.SourceTypePayment,
		SourceID:   id.New(),
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), entry.Sequence)

	balance, err := svc.GetBalance(ctx, accountID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(types.MustMoney("300")))

	// cached balance equals the fold over the entry stream
	sum := types.Zero()
	for _, e := range repo.entries {
		sum = sum.Add(e.SignedAmount())
	}
	assert.True(t, balance.Equal(sum))
}

func TestService_PostRejectsNonPositiveAmount(t *testing.T) {
	accountID := id.New()
	svc, repo := newTestService(accountID)

	_, err := svc.Post(context.Background(), PostRequest{
		AccountID: accountID,
		Amount:    types.Zero(),
		EntryType: entity.EntryTypeDebit,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidAmount(err))
	assert.Empty(t, repo.entries)
}

func TestService_PostUnknownAccount(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Post(context.Background(), PostRequest{
		AccountID: id.New(),
		Amount:    types.MustMoney("100"),
		EntryType: entity.EntryTypeDebit,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_GetBalanceZeroWhenNeverPosted(t *testing.T) {
	accountID := id.New()
	svc, _ := newTestService(accountID)

	balance, err := svc.GetBalance(context.Background(), accountID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestService_GetBalanceForUpdateReflectsPostings(t *testing.T) {
	accountID := id.New()
	svc, _ := newTestService(accountID)
	ctx := context.Background()

	balance, err := svc.GetBalanceForUpdate(ctx, accountID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())

	_, err = svc.Post(ctx, PostRequest{
		AccountID:  accountID,
		Amount:     types.MustMoney("250"),
		EntryType:  entity.EntryTypeDebit,
		SourceType: entity.SourceTypeInvoice,
		SourceID:   id.New(),
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)

	balance, err = svc.GetBalanceForUpdate(ctx, accountID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(types.MustMoney("250")))
}

func TestService_ReverseSourceOffsetsOriginal(t *testing.T) {
	accountID := id.New()
	sourceID := id.New()
	svc, _ := newTestService(accountID)
	ctx := context.Background()

	_, err := svc.Post(ctx, PostRequest{
		AccountID:  accountID,
		Amount:     types.MustMoney("500"),
		EntryType:  entity.EntryTypeDebit,
		SourceType: entity.SourceTypeInvoice,
		SourceID:   sourceID,
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)

	reversals, err := svc.ReverseSource(ctx, sourceID, time.Now())
	require.NoError(t, err)
	require.Len(t, reversals, 1)
	assert.Equal(t, entity.EntryTypeCredit, reversals[0].EntryType)
	assert.Equal(t, entity.SourceTypeReturn, reversals[0].SourceType)

	balance, err := svc.GetBalance(ctx, accountID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestService_ReverseSourceUnknown(t *testing.T) {
	accountID := id.New()
	svc, _ := newTestService(accountID)

	_, err := svc.ReverseSource(context.Background(), id.New(), time.Now())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
