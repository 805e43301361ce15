// Package reports provides account statements, aging analysis and the
// document journal.
package reports

import (
	"time"

	"saldo/internal/core/entity"
	"saldo/internal/core/id"
	"saldo/internal/core/types"
)

// --- Account Statement ---

// StatementFilter defines the account and period of a statement.
type StatementFilter struct {
	AccountID id.ID

	// Period (required), inclusive on both ends
	FromDate time.Time
	ToDate   time.Time
}

// StatementEntry is one raw ledger row the repository feeds the statement
// builder, ordered by (occurred_at, sequence) ascending.
type StatementEntry struct {
	Date           time.Time         `json:"date"`
	Sequence       int64             `json:"sequence"`
	EntryType      entity.EntryType  `json:"entryType"`
	SourceType     entity.SourceType `json:"sourceType"`
	SourceID       id.ID             `json:"sourceId"`
	DocumentNumber string            `json:"documentNumber,omitempty"`
	Amount         types.Money       `json:"amount"`
}

// StatementLine is a statement entry with the running balance after it.
type StatementLine struct {
	StatementEntry

	RunningBalance types.Money `json:"runningBalance"`
}

// Statement represents the full account statement for a period.
// Invariant: ClosingBalance = OpeningBalance + TotalDebits - TotalCredits,
// and equals the running balance of the last line.
type Statement struct {
	AccountID   id.ID     `json:"accountId"`
	AccountName string    `json:"accountName,omitempty"`
	FromDate    time.Time `json:"fromDate"`
	ToDate      time.Time `json:"toDate"`

	OpeningBalance types.Money     `json:"openingBalance"`
	Lines          []StatementLine `json:"lines"`
	TotalDebits    types.Money     `json:"totalDebits"`
	TotalCredits   types.Money     `json:"totalCredits"`
	ClosingBalance types.Money     `json:"closingBalance"`
}

// --- Aging Report ---

// Bucket is an aging category keyed by days overdue.
type Bucket string

const (
	BucketCurrent    Bucket = "current"
	BucketDays1To30  Bucket = "1-30"
	BucketDays31To60 Bucket = "31-60"
	BucketDays61To90 Bucket = "61-90"
	BucketOver90     Bucket = "over_90"
)

// Buckets lists all aging categories in display order.
func Buckets() []Bucket {
	return []Bucket{BucketCurrent, BucketDays1To30, BucketDays31To60, BucketDays61To90, BucketOver90}
}

// BucketFor categorizes a document by whole days overdue. Zero or negative
// days means not yet due.
func BucketFor(daysOverdue int) Bucket {
	switch {
	case daysOverdue <= 0:
		return BucketCurrent
	case daysOverdue <= 30:
		return BucketDays1To30
	case daysOverdue <= 60:
		return BucketDays31To60
	case daysOverdue <= 90:
		return BucketDays61To90
	default:
		return BucketOver90
	}
}

// Book selects which side of the ledger an aging report covers.
type Book string

const (
	BookReceivable Book = "receivable"
	BookPayable    Book = "payable"
)

// AgingFilter defines the scope of an aging report.
type AgingFilter struct {
	// Book (required): receivable ages invoices, payable ages purchase orders
	Book Book

	// AsOfDate defaults to today
	AsOfDate *time.Time

	// AccountID limits the report to one account
	AccountID *id.ID
}

// OpenItem is one unpaid document the repository feeds the aging builder.
type OpenItem struct {
	DocumentID   id.ID             `json:"documentId"`
	DocumentType entity.SourceType `json:"documentType"`
	Number       string            `json:"number"`
	AccountID    id.ID             `json:"accountId"`
	AccountName  string            `json:"accountName"`
	Date         time.Time         `json:"date"`
	DueDate      time.Time         `json:"dueDate"`
	Remaining    types.Money       `json:"remaining"`
}

// AgingLine is an open item with its computed age and bucket.
type AgingLine struct {
	OpenItem

	DaysOverdue int    `json:"daysOverdue"`
	Bucket      Bucket `json:"bucket"`
}

// AgingRow aggregates one account's open items across buckets.
type AgingRow struct {
	AccountID   id.ID  `json:"accountId"`
	AccountName string `json:"accountName"`

	Amounts map[Bucket]types.Money `json:"amounts"`
	Total   types.Money            `json:"total"`
}

// AgingReport is the full aging analysis as of a date.
// Invariant: every open item lands in exactly one bucket, so the grand total
// equals the sum of all open remaining amounts.
type AgingReport struct {
	Book     Book      `json:"book"`
	AsOfDate time.Time `json:"asOfDate"`

	Lines  []AgingLine            `json:"lines"`
	Rows   []AgingRow             `json:"rows"`
	Totals map[Bucket]types.Money `json:"totals"`
	Total  types.Money            `json:"total"`
}

// --- Document Journal ---

// DocumentJournalFilter defines filter for the document journal.
type DocumentJournalFilter struct {
	// Period
	FromDate *time.Time
	ToDate   *time.Time

	// Document types filter: Invoice, PurchaseOrder, Payment
	DocumentTypes []string

	// Status filter
	Posted    *bool
	Cancelled *bool

	// Search by number
	NumberContains string

	// Filter by account
	AccountIDs []id.ID

	// Sorting
	SortBy    string // "date", "number", "type", "amount"
	SortOrder string // "asc", "desc"

	// Pagination
	Limit  int
	Offset int
}

// DocumentJournalItem represents a document in the journal.
type DocumentJournalItem struct {
	ID           id.ID     `json:"id"`
	DocumentType string    `json:"documentType"`
	Number       string    `json:"number"`
	Date         time.Time `json:"date"`
	Posted       bool      `json:"posted"`
	Cancelled    bool      `json:"cancelled"`

	AccountID   id.ID  `json:"accountId"`
	AccountName string `json:"accountName,omitempty"`

	TotalAmount types.Money `json:"totalAmount"`
	PaidAmount  types.Money `json:"paidAmount,omitempty"`

	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DocumentJournal represents the document journal result.
type DocumentJournal struct {
	Items      []DocumentJournalItem `json:"items"`
	TotalCount int                   `json:"totalCount"`
	Limit      int                   `json:"limit"`
	Offset     int                   `json:"offset"`

	// Summary by document type
	Summary []DocumentTypeSummary `json:"summary,omitempty"`
}

// DocumentTypeSummary provides count and totals by document type.
type DocumentTypeSummary struct {
	DocumentType string      `json:"documentType"`
	Count        int         `json:"count"`
	PostedCount  int         `json:"postedCount"`
	TotalAmount  types.Money `json:"totalAmount"`
}
