package allocation

import (
	"context"
	"fmt"
	"time"

	"saldo/internal/core/apperror"
	"saldo/internal/core/entity"
	"saldo/internal/core/id"
	"saldo/internal/core/tx"
	"saldo/internal/core/types"
	"saldo/internal/domain/catalogs/account"
	"saldo/internal/domain/documents/invoice"
	"saldo/internal/domain/documents/payment"
	"saldo/internal/domain/documents/purchase_order"
	"saldo/pkg/logger"
)

// AccountSource resolves the payment's account so the engine knows which
// document book (receivable or payable) to allocate against.
type AccountSource interface {
	GetByID(ctx context.Context, accountID id.ID) (*account.Account, error)
}

// Engine applies payment amounts to open documents. All mutations of a single
// Allocate call happen in one transaction: either every line lands (allocation
// rows, document paid amounts, payment allocated amount) or none do.
type Engine struct {
	payments  payment.Repository
	invoices  invoice.Repository
	orders    purchase_order.Repository
	accounts  AccountSource
	txManager tx.Manager
}

// NewEngine creates the allocation engine.
func NewEngine(
	payments payment.Repository,
	invoices invoice.Repository,
	orders purchase_order.Repository,
	accounts AccountSource,
	txManager tx.Manager,
) *Engine {
	return &Engine{
		payments:  payments,
		invoices:  invoices,
		orders:    orders,
		accounts:  accounts,
		txManager: txManager,
	}
}

// ResultLine reports one applied allocation together with the document state
// it produced.
type ResultLine struct {
	DocumentID     id.ID                `json:"documentId"`
	DocumentType   entity.SourceType    `json:"documentType"`
	Amount         types.Money          `json:"amount"`
	DocumentStatus entity.PaymentStatus `json:"documentStatus"`
}

// Result summarizes an Allocate call. Leftover is the payment amount still
// unallocated after the call; for auto allocation it stays on the account as
// standing credit.
type Result struct {
	PaymentID      id.ID        `json:"paymentId"`
	Lines          []ResultLine `json:"lines"`
	TotalAllocated types.Money  `json:"totalAllocated"`
	Leftover       types.Money  `json:"leftover"`
}

// target is a document the engine can allocate against, independent of
// whether it is an invoice or a purchase order.
type target interface {
	docID() id.ID
	accountID() id.ID
	docDate() time.Time
	sourceType() entity.SourceType
	posted() bool
	cancelled() bool
	remaining() types.Money
	apply(amount types.Money) (entity.PaymentStatus, error)
	persist(ctx context.Context) error
}

type invoiceTarget struct {
	doc  *invoice.Invoice
	repo invoice.Repository
}

func (t invoiceTarget) docID() id.ID                  { return t.doc.ID }
func (t invoiceTarget) accountID() id.ID              { return t.doc.AccountID }
func (t invoiceTarget) docDate() time.Time            { return t.doc.Date }
func (t invoiceTarget) sourceType() entity.SourceType { return entity.SourceTypeInvoice }
func (t invoiceTarget) posted() bool                  { return t.doc.Posted }
func (t invoiceTarget) cancelled() bool               { return t.doc.Cancelled }
func (t invoiceTarget) remaining() types.Money        { return t.doc.RemainingAmount() }
func (t invoiceTarget) apply(amount types.Money) (entity.PaymentStatus, error) {
	return t.doc.ApplyPayment(amount)
}
func (t invoiceTarget) persist(ctx context.Context) error {
	t.doc.Touch()
	return t.repo.Update(ctx, t.doc)
}

type orderTarget struct {
	doc  *purchase_order.PurchaseOrder
	repo purchase_order.Repository
}

func (t orderTarget) docID() id.ID                  { return t.doc.ID }
func (t orderTarget) accountID() id.ID              { return t.doc.AccountID }
func (t orderTarget) docDate() time.Time            { return t.doc.Date }
func (t orderTarget) sourceType() entity.SourceType { return entity.SourceTypePurchaseOrder }
func (t orderTarget) posted() bool                  { return t.doc.Posted }
func (t orderTarget) cancelled() bool               { return t.doc.Cancelled }
func (t orderTarget) remaining() types.Money        { return t.doc.RemainingAmount() }
func (t orderTarget) apply(amount types.Money) (entity.PaymentStatus, error) {
	return t.doc.ApplyPayment(amount)
}
func (t orderTarget) persist(ctx context.Context) error {
	t.doc.Touch()
	return t.repo.Update(ctx, t.doc)
}

// book loads and locks allocatable documents of one account kind.
type book interface {
	getForUpdate(ctx context.Context, docID id.ID) (target, error)
	listOpen(ctx context.Context, accountID id.ID) ([]target, error)
}

type invoiceBook struct{ repo invoice.Repository }

func (b invoiceBook) getForUpdate(ctx context.Context, docID id.ID) (target, error) {
	doc, err := b.repo.GetForUpdate(ctx, docID)
	if err != nil {
		return nil, err
	}
	return invoiceTarget{doc: doc, repo: b.repo}, nil
}

func (b invoiceBook) listOpen(ctx context.Context, accountID id.ID) ([]target, error) {
	docs, err := b.repo.ListOpenByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	targets := make([]target, len(docs))
	for i, doc := range docs {
		targets[i] = invoiceTarget{doc: doc, repo: b.repo}
	}
	return targets, nil
}

type orderBook struct{ repo purchase_order.Repository }

func (b orderBook) getForUpdate(ctx context.Context, docID id.ID) (target, error) {
	doc, err := b.repo.GetForUpdate(ctx, docID)
	if err != nil {
		return nil, err
	}
	return orderTarget{doc: doc, repo: b.repo}, nil
}

func (b orderBook) listOpen(ctx context.Context, accountID id.ID) ([]target, error) {
	docs, err := b.repo.ListOpenByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	targets := make([]target, len(docs))
	for i, doc := range docs {
		targets[i] = orderTarget{doc: doc, repo: b.repo}
	}
	return targets, nil
}

// Allocate applies a payment to open documents according to the target spec.
//
// Manual lines are applied in caller order; each line must fit within the
// document's remaining amount and within the payment's unallocated amount.
// Auto allocation runs the FIFO plan over the account's open documents and
// never errors on leftover: the unabsorbed part stays as standing credit.
func (e *Engine) Allocate(ctx context.Context, paymentID id.ID, spec TargetSpec) (*Result, error) {
	var result *Result

	err := e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		pmt, err := e.payments.GetForUpdate(ctx, paymentID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("payment", paymentID.String())
			}
			return fmt.Errorf("lock payment: %w", err)
		}

		if pmt.Cancelled {
			return apperror.NewDocumentCancelled("payment", pmt.ID.String())
		}

		acc, err := e.accounts.GetByID(ctx, pmt.AccountID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("account", pmt.AccountID.String())
			}
			return fmt.Errorf("get account: %w", err)
		}

		var bk book
		if acc.IsSupplier() {
			bk = orderBook{repo: e.orders}
		} else {
			bk = invoiceBook{repo: e.invoices}
		}

		available := pmt.UnallocatedAmount()

		var lines []ResultLine
		if spec.IsAuto() {
			lines, err = e.allocateAuto(ctx, bk, pmt, available)
		} else {
			lines, err = e.allocateManual(ctx, bk, pmt, available, spec.Lines())
		}
		if err != nil {
			return err
		}

		total := types.Zero()
		rows := make([]payment.Allocation, 0, len(lines))
		for _, line := range lines {
			total = total.Add(line.Amount)
			rows = append(rows, payment.NewAllocation(pmt.ID, line.DocumentID, line.DocumentType, line.Amount))
		}

		if len(rows) > 0 {
			if err := e.payments.CreateAllocations(ctx, rows); err != nil {
				return fmt.Errorf("create allocations: %w", err)
			}

			pmt.AllocatedAmount = pmt.AllocatedAmount.Add(total)
			pmt.Touch()
			if err := e.payments.Update(ctx, pmt); err != nil {
				return fmt.Errorf("update payment: %w", err)
			}
		}

		result = &Result{
			PaymentID:      pmt.ID,
			Lines:          lines,
			TotalAllocated: total,
			Leftover:       pmt.UnallocatedAmount(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "payment allocated",
		"payment_id", result.PaymentID,
		"lines", len(result.Lines),
		"total_allocated", result.TotalAllocated,
		"leftover", result.Leftover)

	return result, nil
}

// allocateManual applies caller-supplied lines in the order given.
func (e *Engine) allocateManual(
	ctx context.Context,
	bk book,
	pmt *payment.Payment,
	available types.Money,
	lines []Line,
) ([]ResultLine, error) {
	if len(lines) == 0 {
		return nil, apperror.NewValidation("allocation requires at least one line")
	}

	applied := make([]ResultLine, 0, len(lines))
	left := available
	requested := types.Zero()

	for _, line := range lines {
		if !line.Amount.IsPositive() {
			return nil, apperror.NewInvalidAmount("amount", line.Amount.String())
		}

		requested = requested.Add(line.Amount)
		if line.Amount.GreaterThan(left) {
			return nil, apperror.NewPaymentExhausted(
				pmt.ID.String(), pmt.Amount.String(), requested.String())
		}

		tgt, err := bk.getForUpdate(ctx, line.DocumentID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return nil, apperror.NewNotFound("document", line.DocumentID.String())
			}
			return nil, fmt.Errorf("lock document: %w", err)
		}

		// The auto path only sees documents filtered by ListOpenByAccount;
		// manual lines arrive by ID and need the same guards, or a payment
		// could settle another account's document, or one whose debit was
		// never posted or was reversed.
		if tgt.accountID() != pmt.AccountID {
			return nil, apperror.NewValidation("document belongs to another account").
				WithDetail("document_id", tgt.docID().String()).
				WithDetail("payment_account_id", pmt.AccountID.String()).
				WithDetail("document_account_id", tgt.accountID().String())
		}
		if tgt.cancelled() {
			return nil, apperror.NewDocumentCancelled(string(tgt.sourceType()), tgt.docID().String())
		}
		if !tgt.posted() {
			return nil, apperror.NewValidation("allocation requires a confirmed document").
				WithDetail("document_id", tgt.docID().String())
		}

		if line.Amount.GreaterThan(tgt.remaining()) {
			return nil, apperror.NewAllocationExceedsRemaining(
				tgt.docID().String(), line.Amount.String(), tgt.remaining().String())
		}

		status, err := tgt.apply(line.Amount)
		if err != nil {
			return nil, err
		}
		if err := tgt.persist(ctx); err != nil {
			return nil, fmt.Errorf("update document: %w", err)
		}

		applied = append(applied, ResultLine{
			DocumentID:     tgt.docID(),
			DocumentType:   tgt.sourceType(),
			Amount:         line.Amount,
			DocumentStatus: status,
		})
		left = left.Sub(line.Amount)
	}

	return applied, nil
}

// allocateAuto locks the account's open documents oldest first and applies
// the FIFO plan computed from their locked state.
func (e *Engine) allocateAuto(
	ctx context.Context,
	bk book,
	pmt *payment.Payment,
	available types.Money,
) ([]ResultLine, error) {
	if !available.IsPositive() {
		return nil, apperror.NewPaymentExhausted(
			pmt.ID.String(), pmt.Amount.String(), pmt.AllocatedAmount.String())
	}

	open, err := bk.listOpen(ctx, pmt.AccountID)
	if err != nil {
		return nil, fmt.Errorf("list open documents: %w", err)
	}

	// Relock in list order so the plan runs against current remaining
	// amounts. List order is (date, id) ascending, which also keeps lock
	// acquisition deterministic across concurrent allocations.
	byID := make(map[id.ID]target, len(open))
	docs := make([]OpenDocument, 0, len(open))
	for _, tgt := range open {
		locked, err := bk.getForUpdate(ctx, tgt.docID())
		if err != nil {
			return nil, fmt.Errorf("lock document: %w", err)
		}
		byID[locked.docID()] = locked
		docs = append(docs, OpenDocument{
			ID:        locked.docID(),
			Date:      locked.docDate(),
			Remaining: locked.remaining(),
		})
	}

	plan := PlanFIFO(available, docs)

	applied := make([]ResultLine, 0, len(plan.Lines))
	for _, line := range plan.Lines {
		tgt := byID[line.DocumentID]
		status, err := tgt.apply(line.Amount)
		if err != nil {
			return nil, err
		}
		if err := tgt.persist(ctx); err != nil {
			return nil, fmt.Errorf("update document: %w", err)
		}
		applied = append(applied, ResultLine{
			DocumentID:     tgt.docID(),
			DocumentType:   tgt.sourceType(),
			Amount:         line.Amount,
			DocumentStatus: status,
		})
	}

	return applied, nil
}
