package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/core/apperror"
	"saldo/internal/core/entity"
	"saldo/internal/core/id"
	"saldo/internal/core/types"
)

type passthroughSnapshot struct{}

func (passthroughSnapshot) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passthroughSnapshot) RunInSnapshot(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	accountNames map[id.ID]string
	opening      types.Money
	entries      []StatementEntry
	openItems    []OpenItem
	summary      []DocumentTypeSummary
	summaryErr   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		accountNames: make(map[id.ID]string),
		opening:      types.Zero(),
	}
}

func (r *fakeRepo) GetOpeningBalance(_ context.Context, _ id.ID, _ time.Time) (types.Money, error) {
	return r.opening, nil
}

func (r *fakeRepo) GetStatementEntries(_ context.Context, _ StatementFilter) ([]StatementEntry, error) {
	return r.entries, nil
}

func (r *fakeRepo) ListOpenItems(_ context.Context, _ Book, accountID *id.ID) ([]OpenItem, error) {
	if accountID == nil {
		return r.openItems, nil
	}
	var out []OpenItem
	for _, item := range r.openItems {
		if item.AccountID == *accountID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetDocumentJournal(_ context.Context, filter DocumentJournalFilter) (*DocumentJournal, error) {
	return &DocumentJournal{Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (r *fakeRepo) GetDocumentTypeSummary(_ context.Context, _ DocumentJournalFilter) ([]DocumentTypeSummary, error) {
	return r.summary, r.summaryErr
}

func (r *fakeRepo) AccountName(_ context.Context, accountID id.ID) (string, error) {
	name, ok := r.accountNames[accountID]
	if !ok {
		return "", apperror.NewNotFound("account", accountID.String())
	}
	return name, nil
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestGetStatement_RunningAndClosingBalance(t *testing.T) {
	accountID := id.New()
	repo := newFakeRepo()
	repo.accountNames[accountID] = "Acme Ltd"
	repo.opening = types.MustMoney("500")
	repo.entries = []StatementEntry{
		{Date: day("2024-03-01"), Sequence: 1, EntryType: entity.EntryTypeDebit, Amount: types.MustMoney("200")},
		{Date: day("2024-03-05"), Sequence: 2, EntryType: entity.EntryTypeCredit, Amount: types.MustMoney("300")},
		{Date: day("2024-03-05"), Sequence: 3, EntryType: entity.EntryTypeDebit, Amount: types.MustMoney("50")},
	}

	svc := NewService(repo, passthroughSnapshot{})
	stmt, err := svc.GetStatement(context.Background(), StatementFilter{
		AccountID: accountID,
		FromDate:  day("2024-03-01"),
		ToDate:    day("2024-03-31"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme Ltd", stmt.AccountName)
	assert.True(t, stmt.OpeningBalance.Equal(types.MustMoney("500")))

	require.Len(t, stmt.Lines, 3)
	assert.True(t, stmt.Lines[0].RunningBalance.Equal(types.MustMoney("700")))
	assert.True(t, stmt.Lines[1].RunningBalance.Equal(types.MustMoney("400")))
	assert.True(t, stmt.Lines[2].RunningBalance.Equal(types.MustMoney("450")))

	assert.True(t, stmt.TotalDebits.Equal(types.MustMoney("250")))
	assert.True(t, stmt.TotalCredits.Equal(types.MustMoney("300")))

	// closing = opening + debits - credits = last running balance
	assert.True(t, stmt.ClosingBalance.Equal(types.MustMoney("450")))
	expected := stmt.OpeningBalance.Add(stmt.TotalDebits).Sub(stmt.TotalCredits)
	assert.True(t, stmt.ClosingBalance.Equal(expected))
	assert.True(t, stmt.ClosingBalance.Equal(stmt.Lines[2].RunningBalance))
}

func TestGetStatement_EmptyPeriod(t *testing.T) {
	accountID := id.New()
	repo := newFakeRepo()
	repo.accountNames[accountID] = "Acme Ltd"
	repo.opening = types.MustMoney("120")

	svc := NewService(repo, passthroughSnapshot{})
	stmt, err := svc.GetStatement(context.Background(), StatementFilter{
		AccountID: accountID,
		FromDate:  day("2024-01-01"),
		ToDate:    day("2024-01-31"),
	})
	require.NoError(t, err)

	assert.Empty(t, stmt.Lines)
	assert.True(t, stmt.ClosingBalance.Equal(stmt.OpeningBalance))
}

func TestGetStatement_Validation(t *testing.T) {
	svc := NewService(newFakeRepo(), passthroughSnapshot{})

	_, err := svc.GetStatement(context.Background(), StatementFilter{AccountID: id.New()})
	require.Error(t, err)

	_, err = svc.GetStatement(context.Background(), StatementFilter{
		AccountID: id.New(),
		FromDate:  day("2024-02-01"),
		ToDate:    day("2024-01-01"),
	})
	require.Error(t, err)
}

func TestGetStatement_UnknownAccount(t *testing.T) {
	svc := NewService(newFakeRepo(), passthroughSnapshot{})

	_, err := svc.GetStatement(context.Background(), StatementFilter{
		AccountID: id.New(),
		FromDate:  day("2024-01-01"),
		ToDate:    day("2024-01-31"),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestBucketFor(t *testing.T) {
	cases := []struct {
		days   int
		bucket Bucket
	}{
		{-5, BucketCurrent},
		{0, BucketCurrent},
		{1, BucketDays1To30},
		{30, BucketDays1To30},
		{31, BucketDays31To60},
		{60, BucketDays31To60},
		{61, BucketDays61To90},
		{90, BucketDays61To90},
		{91, BucketOver90},
		{365, BucketOver90},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.bucket, BucketFor(tc.days), "days=%d", tc.days)
	}
}

func TestGetAging_BucketsAndTotals(t *testing.T) {
	asOf := day("2024-06-30")
	acme := id.New()
	globex := id.New()

	repo := newFakeRepo()
	repo.openItems = []OpenItem{
		// not yet due
		{DocumentID: id.New(), AccountID: acme, AccountName: "Acme", DueDate: day("2024-07-10"), Remaining: types.MustMoney("100")},
		// 15 days overdue
		{DocumentID: id.New(), AccountID: acme, AccountName: "Acme", DueDate: day("2024-06-15"), Remaining: types.MustMoney("200")},
		// 45 days overdue
		{DocumentID: id.New(), AccountID: globex, AccountName: "Globex", DueDate: day("2024-05-16"), Remaining: types.MustMoney("300")},
		// 120 days overdue
		{DocumentID: id.New(), AccountID: globex, AccountName: "Globex", DueDate: day("2024-03-02"), Remaining: types.MustMoney("400")},
	}

	svc := NewService(repo, passthroughSnapshot{})
	report, err := svc.GetAging(context.Background(), AgingFilter{Book: BookReceivable, AsOfDate: &asOf})
	require.NoError(t, err)

	require.Len(t, report.Lines, 4)
	assert.Equal(t, BucketCurrent, report.Lines[0].Bucket)
	assert.Equal(t, BucketDays1To30, report.Lines[1].Bucket)
	assert.Equal(t, 15, report.Lines[1].DaysOverdue)
	assert.Equal(t, BucketDays31To60, report.Lines[2].Bucket)
	assert.Equal(t, BucketOver90, report.Lines[3].Bucket)

	assert.True(t, report.Totals[BucketCurrent].Equal(types.MustMoney("100")))
	assert.True(t, report.Totals[BucketDays1To30].Equal(types.MustMoney("200")))
	assert.True(t, report.Totals[BucketDays31To60].Equal(types.MustMoney("300")))
	assert.True(t, report.Totals[BucketDays61To90].IsZero())
	assert.True(t, report.Totals[BucketOver90].Equal(types.MustMoney("400")))

	// grand total equals the sum of all open remaining amounts
	assert.True(t, report.Total.Equal(types.MustMoney("1000")))
	sum := types.Zero()
	for _, b := range Buckets() {
		sum = sum.Add(report.Totals[b])
	}
	assert.True(t, sum.Equal(report.Total))

	// per-account rows, sorted by name
	require.Len(t, report.Rows, 2)
	assert.Equal(t, "Acme", report.Rows[0].AccountName)
	assert.True(t, report.Rows[0].Total.Equal(types.MustMoney("300")))
	assert.Equal(t, "Globex", report.Rows[1].AccountName)
	assert.True(t, report.Rows[1].Total.Equal(types.MustMoney("700")))
}

func TestGetAging_FilterByAccount(t *testing.T) {
	asOf := day("2024-06-30")
	acme := id.New()
	globex := id.New()

	repo := newFakeRepo()
	repo.openItems = []OpenItem{
		{DocumentID: id.New(), AccountID: acme, AccountName: "Acme", DueDate: day("2024-06-01"), Remaining: types.MustMoney("50")},
		{DocumentID: id.New(), AccountID: globex, AccountName: "Globex", DueDate: day("2024-06-01"), Remaining: types.MustMoney("60")},
	}

	svc := NewService(repo, passthroughSnapshot{})
	report, err := svc.GetAging(context.Background(), AgingFilter{
		Book:      BookReceivable,
		AsOfDate:  &asOf,
		AccountID: &acme,
	})
	require.NoError(t, err)

	require.Len(t, report.Lines, 1)
	assert.True(t, report.Total.Equal(types.MustMoney("50")))
}

func TestGetAging_RequiresBook(t *testing.T) {
	svc := NewService(newFakeRepo(), passthroughSnapshot{})

	_, err := svc.GetAging(context.Background(), AgingFilter{})
	require.Error(t, err)
}

func TestGetDocumentJournal_FirstPageCarriesSummary(t *testing.T) {
	repo := newFakeRepo()
	repo.summary = []DocumentTypeSummary{
		{DocumentType: "invoice", Count: 3, TotalAmount: types.MustMoney("900")},
	}

	svc := NewService(repo, passthroughSnapshot{})
	journal, err := svc.GetDocumentJournal(context.Background(), DocumentJournalFilter{})
	require.NoError(t, err)
	require.Len(t, journal.Summary, 1)
	assert.Equal(t, "invoice", journal.Summary[0].DocumentType)
}

func TestGetDocumentJournal_SummaryFailureDropsSummaryOnly(t *testing.T) {
	repo := newFakeRepo()
	repo.summaryErr = errors.New("summary query timed out")

	svc := NewService(repo, passthroughSnapshot{})
	journal, err := svc.GetDocumentJournal(context.Background(), DocumentJournalFilter{})
	require.NoError(t, err)
	assert.Nil(t, journal.Summary)
}
