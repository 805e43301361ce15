// Package invoice provides the Invoice document (customer receivable).
package invoice

import (
	"context"
	"time"

	"saldo/internal/core/apperror"
	"saldo/internal/core/entity"
	"saldo/internal/core/id"
	"saldo/internal/core/types"
)

// Invoice represents a customer invoice carrying a total amount to be paid
// down over time. Confirmation posts a debit to the account ledger; payment
// state is mutated only by the allocation engine.
type Invoice struct {
	entity.Document

	// AccountID is the customer account this invoice belongs to
	AccountID id.ID `db:"account_id" json:"accountId"`

	// Payment state: total, paid, derived remaining/status
	entity.PaymentState

	// DueDate derives from the document date and the account payment terms
	// unless set explicitly
	DueDate time.Time `db:"due_date" json:"dueDate"`
}

// NewInvoice creates a new invoice document with nothing paid yet.
func NewInvoice(accountID id.ID, date time.Time, total types.Money) *Invoice {
	return &Invoice{
		Document:     entity.NewDocument(types.TruncateToDay(date)),
		AccountID:    accountID,
		PaymentState: entity.NewPaymentState(total),
	}
}

// Validate implements entity.Validatable.
func (inv *Invoice) Validate(ctx context.Context) error {
	if err := inv.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(inv.AccountID) {
		return apperror.NewValidation("account is required").
			WithDetail("field", "accountId")
	}

	if err := inv.ValidateAmounts(); err != nil {
		return err
	}

	if inv.DueDate.IsZero() {
		return apperror.NewValidation("due date is required").
			WithDetail("field", "dueDate")
	}

	return nil
}

// GetDocumentType returns the document type name.
func (inv *Invoice) GetDocumentType() string {
	return "Invoice"
}

// DaysOverdue returns whole days past due as of the given date.
// Zero or negative means not yet due.
func (inv *Invoice) DaysOverdue(asOf time.Time) int {
	return types.DaysBetween(inv.DueDate, asOf)
}
