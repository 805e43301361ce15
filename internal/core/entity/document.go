package entity

import (
	"context"
	"time"

	"saldo/internal/core/apperror"
	"saldo/internal/core/id"
)

// Document is the base type for business transactions.
// Examples: Invoice, PurchaseOrder, Payment.
type Document struct {
	BaseDocument

	// Number is the document number (auto-generated, unique within type+period)
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// Posted indicates if document postings are recorded in the ledger
	Posted bool `db:"posted" json:"posted"`

	// PostedVersion tracks posting iterations for reconciliation.
	// Incremented each time document is posted.
	PostedVersion int `db:"posted_version" json:"postedVersion"`

	// Cancelled marks a voided document. Cancelled documents are immutable;
	// the reversal lives in the ledger, history is never rewritten.
	Cancelled bool `db:"cancelled" json:"cancelled"`

	// Comment is an optional user comment
	Comment string `db:"comment" json:"comment,omitempty"`
}

// NewDocument creates a new Document with generated ID.
func NewDocument(date time.Time) Document {
	if date.IsZero() {
		date = time.Now().UTC()
	}
	return Document{
		BaseDocument: NewBaseDocument(),
		Date:         date,
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	return nil
}

// CanModify checks if document can be modified.
func (d *Document) CanModify() error {
	if d.Cancelled {
		return apperror.NewDocumentCancelled("document", d.ID.String())
	}
	if d.Posted {
		return apperror.NewDocumentPosted("document", d.ID.String())
	}
	return nil
}

// MarkPosted sets the posted flag and increments version.
func (d *Document) MarkPosted() {
	d.Posted = true
	d.PostedVersion++
	d.Touch()
}

// MarkCancelled voids the document.
func (d *Document) MarkCancelled() {
	d.Cancelled = true
	d.Touch()
}

// IsBackdated checks if document date is in the past.
func (d *Document) IsBackdated() bool {
	return d.Date.Before(time.Now().UTC().Truncate(24 * time.Hour))
}

// GetID returns the document ID.
func (d *Document) GetID() id.ID {
	return d.ID
}

// GetPostedVersion returns the current posting version.
func (d *Document) GetPostedVersion() int {
	return d.PostedVersion
}

// IsPosted returns true if document is currently posted.
func (d *Document) IsPosted() bool {
	return d.Posted
}

// CanPost validates if document can be posted.
// Override in specific document types if additional validation is needed.
func (d *Document) CanPost(ctx context.Context) error {
	if d.Cancelled {
		return apperror.NewDocumentCancelled("document", d.ID.String())
	}
	if d.Posted {
		return apperror.NewDocumentPosted("document", d.ID.String())
	}
	return d.Validate(ctx)
}
