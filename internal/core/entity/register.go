// Package entity provides core domain entities.
package entity

import (
	"time"

	"saldo/internal/core/id"
	"saldo/internal/core/types"
)

// EntryType defines posting direction for the account ledger.
type EntryType string

const (
	// EntryTypeDebit increases the account balance (obligation recorded)
	EntryTypeDebit EntryType = "debit"
	// EntryTypeCredit decreases the account balance (payment or reversal)
	EntryTypeCredit EntryType = "credit"
)

// SourceType identifies the document kind that produced a ledger entry.
type SourceType string

const (
	SourceTypeInvoice       SourceType = "invoice"
	SourceTypePurchaseOrder SourceType = "purchase_order"
	SourceTypePayment       SourceType = "payment"
	SourceTypeReturn        SourceType = "return"
)

// LedgerEntry is an immutable, append-only posting against an account.
// Entries are never updated or deleted; corrections post an offsetting entry.
type LedgerEntry struct {
	// LineID is unique identifier for this entry (UUIDv7)
	LineID id.ID `db:"line_id" json:"lineId"`

	// AccountID is the account this entry belongs to
	AccountID id.ID `db:"account_id" json:"accountId"`

	// Amount is always positive; direction comes from EntryType
	Amount types.Money `db:"amount" json:"amount"`

	// EntryType: debit or credit
	EntryType EntryType `db:"entry_type" json:"entryType"`

	// SourceType is the originating document kind
	SourceType SourceType `db:"source_type" json:"sourceType"`

	// SourceID is the originating document
	SourceID id.ID `db:"source_id" json:"sourceId"`

	// OccurredAt is the business date used for statements.
	// Distinct from CreatedAt: a backdated posting carries its business date here.
	OccurredAt time.Time `db:"occurred_at" json:"occurredAt"`

	// Sequence is monotonic per account. Breaks same-date ties deterministically
	// in statement ordering.
	Sequence int64 `db:"sequence" json:"sequence"`

	// CreatedAt is when the entry was recorded
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewLedgerEntry creates a ledger entry. Sequence is assigned by the repository
// under the account balance lock.
func NewLedgerEntry(accountID id.ID, amount types.Money, entryType EntryType, sourceType SourceType, sourceID id.ID, occurredAt time.Time) LedgerEntry {
	return LedgerEntry{
		LineID:     id.New(),
		AccountID:  accountID,
		Amount:     amount,
		EntryType:  entryType,
		SourceType: sourceType,
		SourceID:   sourceID,
		OccurredAt: types.TruncateToDay(occurredAt),
		CreatedAt:  time.Now().UTC(),
	}
}

// SignedAmount returns the amount signed by entry type.
// Debit = positive, credit = negative.
func (e *LedgerEntry) SignedAmount() types.Money {
	if e.EntryType == EntryTypeCredit {
		return e.Amount.Neg()
	}
	return e.Amount
}

// Reversal builds the offsetting entry for this one: same amount, opposite
// direction, marked as a return posting pointing back at the original source.
func (e *LedgerEntry) Reversal(occurredAt time.Time) LedgerEntry {
	opposite := EntryTypeCredit
	if e.EntryType == EntryTypeCredit {
		opposite = EntryTypeDebit
	}
	return NewLedgerEntry(e.AccountID, e.Amount, opposite, SourceTypeReturn, e.SourceID, occurredAt)
}

// AccountBalance is the cached running balance for one account.
// It is a materialized view over the entry stream: the balance always equals
// the signed sum of all posted entries, and LastSequence is the high-water
// mark used to assign the next entry's sequence under a row lock.
type AccountBalance struct {
	AccountID id.ID `db:"account_id" json:"accountId"`

	Balance types.Money `db:"balance" json:"balance"`

	// LastSequence is the sequence of the most recent entry
	LastSequence int64 `db:"last_sequence" json:"lastSequence"`

	// Metadata
	LastEntryAt time.Time `db:"last_entry_at" json:"lastEntryAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// Apply folds one entry into the cached balance and advances the sequence.
func (b *AccountBalance) Apply(e *LedgerEntry) {
	b.Balance = b.Balance.Add(e.SignedAmount())
	b.LastSequence = e.Sequence
	b.LastEntryAt = e.OccurredAt
	b.UpdatedAt = time.Now().UTC()
}

// NextSequence returns the sequence number for the next entry.
func (b *AccountBalance) NextSequence() int64 {
	return b.LastSequence + 1
}
