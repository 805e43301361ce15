package invoice

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/core/apperror"
	"saldo/internal/core/entity"
	"saldo/internal/core/id"
	"saldo/internal/core/numerator"
	"saldo/internal/core/types"
	"saldo/internal/domain"
	"saldo/internal/domain/catalogs/account"
	"saldo/internal/domain/credit"
	"saldo/internal/domain/registers/ledger"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	docs map[id.ID]*Invoice
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{docs: make(map[id.ID]*Invoice)}
}

func (f *fakeRepo) Create(_ context.Context, doc *Invoice) error {
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, docID id.ID) (*Invoice, error) {
	doc, ok := f.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("invoice", docID.String())
	}
	return doc, nil
}

func (f *fakeRepo) GetByNumber(_ context.Context, _ string) (*Invoice, error) {
	return nil, apperror.NewNotFound("invoice", "")
}

func (f *fakeRepo) Update(_ context.Context, doc *Invoice) error {
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeRepo) List(_ context.Context, _ ListFilter) (domain.ListResult[*Invoice], error) {
	return domain.ListResult[*Invoice]{}, nil
}

func (f *fakeRepo) ListOpenByAccount(_ context.Context, _ id.ID) ([]*Invoice, error) {
	return nil, nil
}

func (f *fakeRepo) ListOpen(_ context.Context, _ *id.ID) ([]*Invoice, error) {
	return nil, nil
}

func (f *fakeRepo) GetForUpdate(ctx context.Context, docID id.ID) (*Invoice, error) {
	return f.GetByID(ctx, docID)
}

type fakeAccounts struct {
	accounts map[id.ID]*account.Account
}

func (f *fakeAccounts) GetByID(_ context.Context, accountID id.ID) (*account.Account, error) {
	acc, ok := f.accounts[accountID]
	if !ok {
		return nil, apperror.NewNotFound("account", accountID.String())
	}
	return acc, nil
}

type fakeLedger struct {
	lockedBalance types.Money
	balanceLocks  int
	posted        []ledger.PostRequest
	// reversed collects source IDs passed to ReverseSource
	reversed []id.ID
}

func (f *fakeLedger) Post(_ context.Context, req ledger.PostRequest) (*entity.LedgerEntry, error) {
	f.posted = append(f.posted, req)
	entry := entity.NewLedgerEntry(req.AccountID, req.Amount, req.EntryType, req.SourceType, req.SourceID, req.OccurredAt)
	return &entry, nil
}

func (f *fakeLedger) ReverseSource(_ context.Context, sourceID id.ID, _ time.Time) ([]entity.LedgerEntry, error) {
	f.reversed = append(f.reversed, sourceID)
	return nil, nil
}

func (f *fakeLedger) GetBalanceForUpdate(_ context.Context, _ id.ID) (types.Money, error) {
	f.balanceLocks++
	return f.lockedBalance, nil
}

type fakeOverrides struct {
	recorded []credit.Override
}

func (f *fakeOverrides) RecordOverride(_ context.Context, o credit.Override) error {
	f.recorded = append(f.recorded, o)
	return nil
}

type fixture struct {
	repo      *fakeRepo
	ledger    *fakeLedger
	overrides *fakeOverrides
	customer  *account.Account
	service   *Service
}

func newFixture() *fixture {
	customer := account.NewAccount("CUST-00001", "Acme", account.KindCustomer)
	customer.PaymentTermsDays = 30

	repo := newFakeRepo()
	fl := &fakeLedger{lockedBalance: types.Zero()}
	overrides := &fakeOverrides{}

	seq := 0
	num := &numerator.MockGenerator{
		GetNextNumberFunc: func(_ context.Context, cfg numerator.Config, _ *numerator.Options, _ time.Time) (string, error) {
			seq++
			return fmt.Sprintf("%s-2024-%05d", cfg.Prefix, seq), nil
		},
	}

	svc := NewService(
		repo,
		&fakeAccounts{accounts: map[id.ID]*account.Account{customer.ID: customer}},
		fl,
		overrides,
		num,
		passthroughTx{},
	)

	return &fixture{repo: repo, ledger: fl, overrides: overrides, customer: customer, service: svc}
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestService_CreateAssignsNumberAndDueDate(t *testing.T) {
	f := newFixture()

	doc, err := f.service.Create(context.Background(), CreateParams{
		AccountID:   f.customer.ID,
		Date:        date("2024-03-01"),
		TotalAmount: types.MustMoney("500"),
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-2024-00001", doc.Number)
	assert.Equal(t, date("2024-03-31"), doc.DueDate)
	assert.False(t, doc.Posted)
	assert.Equal(t, entity.StatusUnpaid, doc.PaymentStatus())
}

func TestService_CreateRejectsSupplierAccount(t *testing.T) {
	f := newFixture()
	supplier := account.NewAccount("SUPP-00001", "Delta", account.KindSupplier)
	accounts := f.service.accounts.(*fakeAccounts)
	accounts.accounts[supplier.ID] = supplier

	_, err := f.service.Create(context.Background(), CreateParams{
		AccountID:   supplier.ID,
		Date:        date("2024-03-01"),
		TotalAmount: types.MustMoney("500"),
	})

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestService_ConfirmPostsDebit(t *testing.T) {
	f := newFixture()
	doc := mustCreate(t, f, "300")

	confirmed, err := f.service.Confirm(context.Background(), doc.ID, nil)
	require.NoError(t, err)

	assert.True(t, confirmed.Posted)
	require.Len(t, f.ledger.posted, 1)
	post := f.ledger.posted[0]
	assert.Equal(t, entity.EntryTypeDebit, post.EntryType)
	assert.Equal(t, entity.SourceTypeInvoice, post.SourceType)
	assert.Equal(t, doc.ID, post.SourceID)
	assert.True(t, post.Amount.Equal(types.MustMoney("300")))
}

func TestService_ConfirmBlockedWithoutOverride(t *testing.T) {
	f := newFixture()
	f.customer.CreditLimit = types.MustMoney("1000")
	f.ledger.lockedBalance = types.MustMoney("900")
	doc := mustCreate(t, f, "300")

	_, err := f.service.Confirm(context.Background(), doc.ID, nil)

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeCreditLimitBlocked, appErr.Code)
	assert.Empty(t, f.ledger.posted)
	assert.False(t, f.repo.docs[doc.ID].Posted)
}

func TestService_ConfirmChecksCreditUnderAccountLock(t *testing.T) {
	f := newFixture()
	f.customer.CreditLimit = types.MustMoney("1000")
	f.ledger.lockedBalance = types.MustMoney("900")
	doc := mustCreate(t, f, "300")

	_, err := f.service.Confirm(context.Background(), doc.ID, nil)

	require.Error(t, err)
	assert.Equal(t, 1, f.ledger.balanceLocks)
	assert.Empty(t, f.ledger.posted)
}

func TestService_ConfirmWithoutLimitSkipsBalanceLock(t *testing.T) {
	f := newFixture()
	doc := mustCreate(t, f, "300")

	_, err := f.service.Confirm(context.Background(), doc.ID, nil)

	require.NoError(t, err)
	assert.Equal(t, 0, f.ledger.balanceLocks)
}

func TestService_ConfirmBlockedWithOverrideRecordsAndPosts(t *testing.T) {
	f := newFixture()
	f.customer.CreditLimit = types.MustMoney("1000")
	f.ledger.lockedBalance = types.MustMoney("900")
	doc := mustCreate(t, f, "300")

	confirmed, err := f.service.Confirm(context.Background(), doc.ID, &Override{
		Reason:     "approved by finance",
		ApprovedBy: "cfo@example.com",
	})
	require.NoError(t, err)

	assert.True(t, confirmed.Posted)
	require.Len(t, f.overrides.recorded, 1)
	recorded := f.overrides.recorded[0]
	assert.Equal(t, doc.ID, recorded.DocumentID)
	assert.True(t, recorded.Projected.Equal(types.MustMoney("1200")))
	assert.Equal(t, "cfo@example.com", recorded.ApprovedBy)
	require.Len(t, f.ledger.posted, 1)
}

func TestService_ConfirmTwiceRejected(t *testing.T) {
	f := newFixture()
	doc := mustCreate(t, f, "300")

	_, err := f.service.Confirm(context.Background(), doc.ID, nil)
	require.NoError(t, err)

	_, err = f.service.Confirm(context.Background(), doc.ID, nil)
	require.Error(t, err)
	assert.Len(t, f.ledger.posted, 1)
}

func TestService_CancelPostedReversesLedger(t *testing.T) {
	f := newFixture()
	doc := mustCreate(t, f, "300")
	_, err := f.service.Confirm(context.Background(), doc.ID, nil)
	require.NoError(t, err)

	cancelled, err := f.service.Cancel(context.Background(), doc.ID)
	require.NoError(t, err)

	assert.True(t, cancelled.Cancelled)
	require.Len(t, f.ledger.reversed, 1)
	assert.Equal(t, doc.ID, f.ledger.reversed[0])
}

func TestService_CancelWithPaymentsRejected(t *testing.T) {
	f := newFixture()
	doc := mustCreate(t, f, "300")
	_, err := f.service.Confirm(context.Background(), doc.ID, nil)
	require.NoError(t, err)
	_, err = doc.ApplyPayment(types.MustMoney("100"))
	require.NoError(t, err)

	_, err = f.service.Cancel(context.Background(), doc.ID)

	require.Error(t, err)
	assert.False(t, f.repo.docs[doc.ID].Cancelled)
	assert.Empty(t, f.ledger.reversed)
}

func TestService_RegisterReturnPostsCredit(t *testing.T) {
	f := newFixture()
	doc := mustCreate(t, f, "300")
	_, err := f.service.Confirm(context.Background(), doc.ID, nil)
	require.NoError(t, err)
	f.ledger.posted = nil

	entry, err := f.service.RegisterReturn(context.Background(), doc.ID, types.MustMoney("50"), date("2024-04-01"))
	require.NoError(t, err)

	require.NotNil(t, entry)
	require.Len(t, f.ledger.posted, 1)
	post := f.ledger.posted[0]
	assert.Equal(t, entity.EntryTypeCredit, post.EntryType)
	assert.Equal(t, entity.SourceTypeReturn, post.SourceType)
	assert.True(t, post.Amount.Equal(types.MustMoney("50")))
}

func TestService_RegisterReturnRequiresConfirmedInvoice(t *testing.T) {
	f := newFixture()
	doc := mustCreate(t, f, "300")

	_, err := f.service.RegisterReturn(context.Background(), doc.ID, types.MustMoney("50"), date("2024-04-01"))

	require.Error(t, err)
	assert.Empty(t, f.ledger.posted)
}

func TestService_RegisterReturnRejectsExcessAmount(t *testing.T) {
	f := newFixture()
	doc := mustCreate(t, f, "300")
	_, err := f.service.Confirm(context.Background(), doc.ID, nil)
	require.NoError(t, err)

	_, err = f.service.RegisterReturn(context.Background(), doc.ID, types.MustMoney("301"), date("2024-04-01"))

	require.Error(t, err)
}

func mustCreate(t *testing.T, f *fixture, total string) *Invoice {
	t.Helper()
	doc, err := f.service.Create(context.Background(), CreateParams{
		AccountID:   f.customer.ID,
		Date:        date("2024-03-01"),
		TotalAmount: types.MustMoney(total),
	})
	require.NoError(t, err)
	return doc
}
