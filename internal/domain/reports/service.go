package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"saldo/internal/core/apperror"
	"saldo/internal/core/entity"
	"saldo/internal/core/tx"
	"saldo/internal/core/types"
	"saldo/pkg/logger"
)

// Service provides report generation operations.
//
// Statements and aging reports run inside a snapshot transaction so every
// query of one report sees the same ledger state.
type Service struct {
	repo     Repository
	snapshot tx.SnapshotManager
}

// NewService creates a new reports service.
func NewService(repo Repository, snapshot tx.SnapshotManager) *Service {
	return &Service{repo: repo, snapshot: snapshot}
}

// GetStatement builds the account statement for a period. The opening balance
// covers everything before the period; each line carries the running balance
// after it; the closing balance is opening plus debits minus credits.
func (s *Service) GetStatement(ctx context.Context, filter StatementFilter) (*Statement, error) {
	if filter.FromDate.IsZero() || filter.ToDate.IsZero() {
		return nil, apperror.NewValidation("fromDate and toDate are required")
	}
	if filter.FromDate.After(filter.ToDate) {
		return nil, apperror.NewValidation("fromDate must be before toDate")
	}

	filter.FromDate = types.TruncateToDay(filter.FromDate)
	filter.ToDate = types.TruncateToDay(filter.ToDate)

	var report *Statement
	err := s.snapshot.RunInSnapshot(ctx, func(ctx context.Context) error {
		name, err := s.repo.AccountName(ctx, filter.AccountID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("account", filter.AccountID.String())
			}
			return fmt.Errorf("resolve account: %w", err)
		}

		opening, err := s.repo.GetOpeningBalance(ctx, filter.AccountID, filter.FromDate)
		if err != nil {
			return fmt.Errorf("opening balance: %w", err)
		}

		entries, err := s.repo.GetStatementEntries(ctx, filter)
		if err != nil {
			return fmt.Errorf("statement entries: %w", err)
		}

		report = buildStatement(filter, name, opening, entries)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return report, nil
}

// buildStatement folds the ordered entries into lines with running balances.
func buildStatement(filter StatementFilter, accountName string, opening types.Money, entries []StatementEntry) *Statement {
	report := &Statement{
		AccountID:      filter.AccountID,
		AccountName:    accountName,
		FromDate:       filter.FromDate,
		ToDate:         filter.ToDate,
		OpeningBalance: opening,
		Lines:          make([]StatementLine, 0, len(entries)),
		TotalDebits:    types.Zero(),
		TotalCredits:   types.Zero(),
	}

	running := opening
	for _, e := range entries {
		if e.EntryType == entity.EntryTypeDebit {
			running = running.Add(e.Amount)
			report.TotalDebits = report.TotalDebits.Add(e.Amount)
		} else {
			running = running.Sub(e.Amount)
			report.TotalCredits = report.TotalCredits.Add(e.Amount)
		}
		report.Lines = append(report.Lines, StatementLine{
			StatementEntry: e,
			RunningBalance: running,
		})
	}

	report.ClosingBalance = running
	return report
}

// GetAging builds the aging report: every open document lands in exactly one
// bucket keyed by days overdue as of the report date.
func (s *Service) GetAging(ctx context.Context, filter AgingFilter) (*AgingReport, error) {
	if filter.Book != BookReceivable && filter.Book != BookPayable {
		return nil, apperror.NewValidation("book must be receivable or payable")
	}

	asOf := time.Now().UTC()
	if filter.AsOfDate != nil {
		asOf = *filter.AsOfDate
	}
	asOf = types.TruncateToDay(asOf)

	var items []OpenItem
	err := s.snapshot.RunInSnapshot(ctx, func(ctx context.Context) error {
		var err error
		items, err = s.repo.ListOpenItems(ctx, filter.Book, filter.AccountID)
		if err != nil {
			return fmt.Errorf("list open items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return buildAging(filter.Book, asOf, items), nil
}

func buildAging(book Book, asOf time.Time, items []OpenItem) *AgingReport {
	report := &AgingReport{
		Book:     book,
		AsOfDate: asOf,
		Lines:    make([]AgingLine, 0, len(items)),
		Totals:   zeroBuckets(),
		Total:    types.Zero(),
	}

	rows := make(map[string]*AgingRow)
	for _, item := range items {
		overdue := types.DaysBetween(item.DueDate, asOf)
		bucket := BucketFor(overdue)

		report.Lines = append(report.Lines, AgingLine{
			OpenItem:    item,
			DaysOverdue: overdue,
			Bucket:      bucket,
		})
		report.Totals[bucket] = report.Totals[bucket].Add(item.Remaining)
		report.Total = report.Total.Add(item.Remaining)

		key := item.AccountID.String()
		row, ok := rows[key]
		if !ok {
			row = &AgingRow{
				AccountID:   item.AccountID,
				AccountName: item.AccountName,
				Amounts:     zeroBuckets(),
				Total:       types.Zero(),
			}
			rows[key] = row
		}
		row.Amounts[bucket] = row.Amounts[bucket].Add(item.Remaining)
		row.Total = row.Total.Add(item.Remaining)
	}

	report.Rows = make([]AgingRow, 0, len(rows))
	for _, row := range rows {
		report.Rows = append(report.Rows, *row)
	}
	sort.Slice(report.Rows, func(i, j int) bool {
		if report.Rows[i].AccountName != report.Rows[j].AccountName {
			return report.Rows[i].AccountName < report.Rows[j].AccountName
		}
		return report.Rows[i].AccountID.String() < report.Rows[j].AccountID.String()
	})

	return report
}

func zeroBuckets() map[Bucket]types.Money {
	m := make(map[Bucket]types.Money, 5)
	for _, b := range Buckets() {
		m[b] = types.Zero()
	}
	return m
}

// GetDocumentJournal returns the document journal.
func (s *Service) GetDocumentJournal(ctx context.Context, filter DocumentJournalFilter) (*DocumentJournal, error) {
	// Set default pagination
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}

	// Default sort
	if filter.SortBy == "" {
		filter.SortBy = "date"
	}
	if filter.SortOrder == "" {
		filter.SortOrder = "desc"
	}

	journal, err := s.repo.GetDocumentJournal(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get document journal: %w", err)
	}

	// The summary is decoration on the first page; a failure drops it
	// but never fails the journal itself.
	if filter.Offset == 0 {
		summary, err := s.repo.GetDocumentTypeSummary(ctx, filter)
		if err != nil {
			logger.Debug(ctx, "document type summary failed", "error", err)
		} else {
			journal.Summary = summary
		}
	}

	return journal, nil
}
