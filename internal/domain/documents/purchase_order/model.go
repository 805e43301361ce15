// Package purchase_order provides the PurchaseOrder document (supplier payable).
package purchase_order

import (
	"context"
	"time"

	"saldo/internal/core/apperror"
	"saldo/internal/core/entity"
	"saldo/internal/core/id"
	"saldo/internal/core/types"
)

// PurchaseOrder represents an obligation to a supplier. Structurally it
// mirrors an invoice on the payable side: confirmation posts a debit to the
// supplier account (owed by us) and outgoing payments pay it down.
type PurchaseOrder struct {
	entity.Document

	// AccountID is the supplier account this order belongs to
	AccountID id.ID `db:"account_id" json:"accountId"`

	// Payment state: total, paid, derived remaining/status
	entity.PaymentState

	// DueDate derives from the document date and the account payment terms
	DueDate time.Time `db:"due_date" json:"dueDate"`
}

// NewPurchaseOrder creates a new purchase order with nothing paid yet.
func NewPurchaseOrder(accountID id.ID, date time.Time, total types.Money) *PurchaseOrder {
	return &PurchaseOrder{
		Document:     entity.NewDocument(types.TruncateToDay(date)),
		AccountID:    accountID,
		PaymentState: entity.NewPaymentState(total),
	}
}

// Validate implements entity.Validatable.
func (po *PurchaseOrder) Validate(ctx context.Context) error {
	if err := po.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(po.AccountID) {
		return apperror.NewValidation("account is required").
			WithDetail("field", "accountId")
	}

	if err := po.ValidateAmounts(); err != nil {
		return err
	}

	if po.DueDate.IsZero() {
		return apperror.NewValidation("due date is required").
			WithDetail("field", "dueDate")
	}

	return nil
}

// GetDocumentType returns the document type name.
func (po *PurchaseOrder) GetDocumentType() string {
	return "PurchaseOrder"
}

// DaysOverdue returns whole days past due as of the given date.
func (po *PurchaseOrder) DaysOverdue(asOf time.Time) int {
	return types.DaysBetween(po.DueDate, asOf)
}
