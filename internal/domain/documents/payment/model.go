// Package payment provides the Payment document and its allocation records.
package payment

import (
	"context"
	"time"

	"saldo/internal/core/apperror"
	"saldo/internal/core/entity"
	"saldo/internal/core/id"
	"saldo/internal/core/types"
)

// Method is the payment method.
type Method string

const (
	MethodCash         Method = "cash"
	MethodBankTransfer Method = "bank_transfer"
	MethodCard         Method = "card"
	MethodCheque       Method = "cheque"
)

// Payment represents money received from a customer or paid to a supplier.
// Posting a payment credits the account ledger for the full amount; how the
// amount spreads over open documents is tracked separately by allocations.
type Payment struct {
	entity.Document

	// AccountID is the account the payment settles against
	AccountID id.ID `db:"account_id" json:"accountId"`

	// Amount received, always positive
	Amount types.Money `db:"amount" json:"amount"`

	// Method of payment
	Method Method `db:"method" json:"method"`

	// AllocatedAmount is the sum of this payment's allocations.
	// Invariant: 0 <= AllocatedAmount <= Amount.
	AllocatedAmount types.Money `db:"allocated_amount" json:"allocatedAmount"`
}

// NewPayment creates a new payment document.
func NewPayment(accountID id.ID, amount types.Money, method Method, date time.Time) *Payment {
	return &Payment{
		Document:        entity.NewDocument(types.TruncateToDay(date)),
		AccountID:       accountID,
		Amount:          amount,
		Method:          method,
		AllocatedAmount: types.Zero(),
	}
}

// Validate implements entity.Validatable.
func (p *Payment) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(p.AccountID) {
		return apperror.NewValidation("account is required").
			WithDetail("field", "accountId")
	}

	if !p.Amount.IsPositive() {
		return apperror.NewInvalidAmount("amount", p.Amount.String())
	}

	if !isValidMethod(p.Method) {
		return apperror.NewValidation("invalid payment method").
			WithDetail("field", "method").
			WithDetail("value", string(p.Method))
	}

	if p.AllocatedAmount.IsNegative() || p.AllocatedAmount.GreaterThan(p.Amount) {
		return apperror.NewValidation("allocated amount out of range").
			WithDetail("field", "allocatedAmount")
	}

	return nil
}

// UnallocatedAmount returns the part of the payment not yet tied to a document.
// It stays on the account as standing credit.
func (p *Payment) UnallocatedAmount() types.Money {
	return p.Amount.Sub(p.AllocatedAmount)
}

// GetDocumentType returns the document type name.
func (p *Payment) GetDocumentType() string {
	return "Payment"
}

func isValidMethod(m Method) bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodCard, MethodCheque:
		return true
	}
	return false
}

// Allocation assigns part of a payment's amount to a specific document.
// Exactly one row per (payment, document) pair; never mutated after creation.
// Corrections are new payments and allocations, not edits.
type Allocation struct {
	ID id.ID `db:"id" json:"id"`

	PaymentID id.ID `db:"payment_id" json:"paymentId"`

	// DocumentID references an invoice or purchase order
	DocumentID id.ID `db:"document_id" json:"documentId"`

	// DocumentType: invoice or purchase_order
	DocumentType entity.SourceType `db:"document_type" json:"documentType"`

	// Amount allocated, always positive
	Amount types.Money `db:"amount" json:"amount"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewAllocation creates an allocation record.
func NewAllocation(paymentID, documentID id.ID, documentType entity.SourceType, amount types.Money) Allocation {
	return Allocation{
		ID:           id.New(),
		PaymentID:    paymentID,
		DocumentID:   documentID,
		DocumentType: documentType,
		Amount:       amount,
		CreatedAt:    time.Now().UTC(),
	}
}
