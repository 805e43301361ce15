package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/core/id"
	"saldo/internal/core/types"
)

func TestLedgerEntry_SignedAmount(t *testing.T) {
	accountID := id.New()
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	debit := NewLedgerEntry(accountID, types.MustMoney("500"), EntryTypeDebit, SourceTypeInvoice, id.New(), date)
	credit := NewLedgerEntry(accountID, types.MustMoney("200"), EntryTypeCredit, SourceTypePayment, id.New(), date)

	assert.True(t, debit.SignedAmount().Equal(types.MustMoney("500")))
	assert.True(t, credit.SignedAmount().Equal(types.MustMoney("-200")))
}

func TestLedgerEntry_Reversal(t *testing.T) {
	entry := NewLedgerEntry(id.New(), types.MustMoney("500"), EntryTypeDebit, SourceTypeInvoice, id.New(), time.Now())
	rev := entry.Reversal(time.Now())

	assert.Equal(t, EntryTypeCredit, rev.EntryType)
	assert.Equal(t, SourceTypeReturn, rev.SourceType)
	assert.Equal(t, entry.SourceID, rev.SourceID)
	assert.True(t, rev.Amount.Equal(entry.Amount))
	assert.NotEqual(t, entry.LineID, rev.LineID)

	// net effect of entry + reversal is zero
	assert.True(t, entry.SignedAmount().Add(rev.SignedAmount()).IsZero())
}

func TestAccountBalance_Apply(t *testing.T) {
	accountID := id.New()
	b := AccountBalance{AccountID: accountID, Balance: types.Zero()}

	debit := NewLedgerEntry(accountID, types.MustMoney("500"), EntryTypeDebit, SourceTypeInvoice, id.New(), time.Now())
	debit.Sequence = b.NextSequence()
	b.Apply(&debit)

	require.True(t, b.Balance.Equal(types.MustMoney("500")))
	require.Equal(t, int64(1), b.LastSequence)

	credit := NewLedgerEntry(accountID, types.MustMoney("200"), EntryTypeCredit, SourceTypePayment, id.New(), time.Now())
	credit.Sequence = b.NextSequence()
	b.Apply(&credit)

	assert.True(t, b.Balance.Equal(types.MustMoney("300")))
	assert.Equal(t, int64(2), b.LastSequence)
}
