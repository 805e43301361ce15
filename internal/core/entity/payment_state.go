package entity

import (
	"saldo/internal/core/apperror"
	"saldo/internal/core/types"
)

// PaymentStatus is derived purely from (TotalAmount, PaidAmount).
type PaymentStatus string

const (
	StatusUnpaid  PaymentStatus = "unpaid"
	StatusPartial PaymentStatus = "partial"
	StatusPaid    PaymentStatus = "paid"
)

// PaymentState tracks how much of a document's total has been paid down.
// Embedded in Invoice and PurchaseOrder. Only PaidAmount mutates; remaining
// amount and status are recomputed on every read so they can never drift.
type PaymentState struct {
	// TotalAmount is the document total, >= 0
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	// PaidAmount satisfies 0 <= PaidAmount <= TotalAmount
	PaidAmount types.Money `db:"paid_amount" json:"paidAmount"`
}

// NewPaymentState creates an unpaid state for the given total.
func NewPaymentState(total types.Money) PaymentState {
	return PaymentState{
		TotalAmount: total,
		PaidAmount:  types.Zero(),
	}
}

// RemainingAmount returns total minus paid.
func (s *PaymentState) RemainingAmount() types.Money {
	return s.TotalAmount.Sub(s.PaidAmount)
}

// PaymentStatus derives the status from the two amounts.
func (s *PaymentState) PaymentStatus() PaymentStatus {
	switch {
	case s.PaidAmount.IsZero():
		return StatusUnpaid
	case s.PaidAmount.Equal(s.TotalAmount):
		return StatusPaid
	default:
		return StatusPartial
	}
}

// IsOpen reports whether the document still accepts allocations.
func (s *PaymentState) IsOpen() bool {
	return s.PaymentStatus() != StatusPaid
}

// ApplyPayment adds amount to PaidAmount and returns the new status.
// Requires 0 < amount <= RemainingAmount; the state is untouched on error.
func (s *PaymentState) ApplyPayment(amount types.Money) (PaymentStatus, error) {
	if !amount.IsPositive() {
		return s.PaymentStatus(), apperror.NewInvalidAmount("amount", amount.String())
	}
	remaining := s.RemainingAmount()
	if amount.GreaterThan(remaining) {
		return s.PaymentStatus(), apperror.NewAllocationExceedsRemaining(
			nil, amount.String(), remaining.String())
	}
	s.PaidAmount = s.PaidAmount.Add(amount)
	return s.PaymentStatus(), nil
}

// ValidateAmounts checks the payment-state invariants.
func (s *PaymentState) ValidateAmounts() error {
	if s.TotalAmount.IsNegative() {
		return apperror.NewValidation("total amount cannot be negative").
			WithDetail("field", "totalAmount")
	}
	if s.PaidAmount.IsNegative() {
		return apperror.NewValidation("paid amount cannot be negative").
			WithDetail("field", "paidAmount")
	}
	if s.PaidAmount.GreaterThan(s.TotalAmount) {
		return apperror.NewValidation("paid amount cannot exceed total").
			WithDetail("field", "paidAmount")
	}
	return nil
}
