// Package account provides the Account catalog.
// An account is a ledger subject: a customer (receivable) or supplier (payable).
package account

import (
	"context"
	"regexp"
	"time"

	"saldo/internal/core/apperror"
	"saldo/internal/core/entity"
	"saldo/internal/core/types"
)

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Kind defines which side of the ledger the account lives on.
type Kind string

const (
	// KindCustomer - receivable account, positive balance is owed to us
	KindCustomer Kind = "customer"
	// KindSupplier - payable account, positive balance is owed by us
	KindSupplier Kind = "supplier"
)

// Account represents a business partner whose obligations are tracked in the ledger.
//
// The running balance is NOT stored here: it lives in the ledger register and
// is mutated only through ledger postings.
type Account struct {
	entity.Catalog

	// Kind defines whether this is a customer or supplier account
	Kind Kind `db:"kind" json:"kind"`

	// CreditLimit applies to customer accounts. >= 0; 0 means unlimited.
	CreditLimit types.Money `db:"credit_limit" json:"creditLimit"`

	// PaymentTermsDays is added to the document date to derive the due date
	PaymentTermsDays int `db:"payment_terms_days" json:"paymentTermsDays"`

	// ContactPerson is the primary contact name
	ContactPerson *string `db:"contact_person" json:"contactPerson,omitempty"`

	// Phone is the primary contact phone
	Phone *string `db:"phone" json:"phone,omitempty"`

	// Email is the primary contact email
	Email *string `db:"email" json:"email,omitempty"`

	// Comment is a free-form note
	Comment *string `db:"comment" json:"comment,omitempty"`
}

// NewAccount creates a new Account with required fields.
func NewAccount(code, name string, kind Kind) *Account {
	return &Account{
		Catalog: entity.NewCatalog(code, name),
		Kind:    kind,
	}
}

// Validate implements entity.Validatable interface.
func (a *Account) Validate(ctx context.Context) error {
	// Base catalog validation
	if err := a.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidKind(a.Kind) {
		return apperror.NewValidation("invalid account kind").
			WithDetail("field", "kind").
			WithDetail("value", string(a.Kind))
	}

	if a.CreditLimit.IsNegative() {
		return apperror.NewValidation("credit limit cannot be negative").
			WithDetail("field", "creditLimit")
	}

	if a.PaymentTermsDays < 0 {
		return apperror.NewValidation("payment terms cannot be negative").
			WithDetail("field", "paymentTermsDays")
	}

	if a.Email != nil && *a.Email != "" && !emailRE.MatchString(*a.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}

	return nil
}

// IsCustomer returns true for receivable accounts.
func (a *Account) IsCustomer() bool {
	return a.Kind == KindCustomer
}

// IsSupplier returns true for payable accounts.
func (a *Account) IsSupplier() bool {
	return a.Kind == KindSupplier
}

// HasCreditLimit reports whether the account has a finite credit limit.
func (a *Account) HasCreditLimit() bool {
	return a.IsCustomer() && a.CreditLimit.IsPositive()
}

// DueDate derives the due date from a document date and the account terms.
func (a *Account) DueDate(documentDate time.Time) time.Time {
	return types.AddDays(documentDate, a.PaymentTermsDays)
}

func isValidKind(k Kind) bool {
	switch k {
	case KindCustomer, KindSupplier:
		return true
	}
	return false
}
