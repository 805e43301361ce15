package allocation

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/core/apperror"
	"saldo/internal/core/entity"
	"saldo/internal/core/id"
	"saldo/internal/core/types"
	"saldo/internal/domain"
	"saldo/internal/domain/catalogs/account"
	"saldo/internal/domain/documents/invoice"
	"saldo/internal/domain/documents/payment"
	"saldo/internal/domain/documents/purchase_order"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeAccountSource struct {
	accounts map[id.ID]*account.Account
}

func (f *fakeAccountSource) GetByID(_ context.Context, accountID id.ID) (*account.Account, error) {
	acc, ok := f.accounts[accountID]
	if !ok {
		return nil, apperror.NewNotFound("account", accountID.String())
	}
	return acc, nil
}

type fakePayments struct {
	payments    map[id.ID]*payment.Payment
	allocations []payment.Allocation
}

func newFakePayments() *fakePayments {
	return &fakePayments{payments: make(map[id.ID]*payment.Payment)}
}

func (f *fakePayments) Create(_ context.Context, doc *payment.Payment) error {
	f.payments[doc.ID] = doc
	return nil
}

func (f *fakePayments) GetByID(_ context.Context, docID id.ID) (*payment.Payment, error) {
	doc, ok := f.payments[docID]
	if !ok {
		return nil, apperror.NewNotFound("payment", docID.String())
	}
	return doc, nil
}

func (f *fakePayments) GetByNumber(_ context.Context, _ string) (*payment.Payment, error) {
	return nil, apperror.NewNotFound("payment", "")
}

func (f *fakePayments) Update(_ context.Context, doc *payment.Payment) error {
	f.payments[doc.ID] = doc
	return nil
}

func (f *fakePayments) List(_ context.Context, _ payment.ListFilter) (domain.ListResult[*payment.Payment], error) {
	return domain.ListResult[*payment.Payment]{}, nil
}

func (f *fakePayments) GetForUpdate(ctx context.Context, docID id.ID) (*payment.Payment, error) {
	return f.GetByID(ctx, docID)
}

func (f *fakePayments) CreateAllocations(_ context.Context, allocations []payment.Allocation) error {
	for _, alloc := range allocations {
		for _, existing := range f.allocations {
			if existing.PaymentID == alloc.PaymentID && existing.DocumentID == alloc.DocumentID {
				return apperror.NewDuplicate("allocation", "document_id", alloc.DocumentID.String())
			}
		}
		f.allocations = append(f.allocations, alloc)
	}
	return nil
}

func (f *fakePayments) GetAllocations(_ context.Context, paymentID id.ID) ([]payment.Allocation, error) {
	var out []payment.Allocation
	for _, a := range f.allocations {
		if a.PaymentID == paymentID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakePayments) GetAllocationsByDocument(_ context.Context, documentID id.ID) ([]payment.Allocation, error) {
	var out []payment.Allocation
	for _, a := range f.allocations {
		if a.DocumentID == documentID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeInvoices struct {
	invoices map[id.ID]*invoice.Invoice
}

func newFakeInvoices() *fakeInvoices {
	return &fakeInvoices{invoices: make(map[id.ID]*invoice.Invoice)}
}

func (f *fakeInvoices) Create(_ context.Context, doc *invoice.Invoice) error {
	f.invoices[doc.ID] = doc
	return nil
}

func (f *fakeInvoices) GetByID(_ context.Context, docID id.ID) (*invoice.Invoice, error) {
	doc, ok := f.invoices[docID]
	if !ok {
		return nil, apperror.NewNotFound("invoice", docID.String())
	}
	return doc, nil
}

func (f *fakeInvoices) GetByNumber(_ context.Context, _ string) (*invoice.Invoice, error) {
	return nil, apperror.NewNotFound("invoice", "")
}

func (f *fakeInvoices) Update(_ context.Context, doc *invoice.Invoice) error {
	f.invoices[doc.ID] = doc
	return nil
}

func (f *fakeInvoices) List(_ context.Context, _ invoice.ListFilter) (domain.ListResult[*invoice.Invoice], error) {
	return domain.ListResult[*invoice.Invoice]{}, nil
}

func (f *fakeInvoices) ListOpenByAccount(_ context.Context, accountID id.ID) ([]*invoice.Invoice, error) {
	var out []*invoice.Invoice
	for _, doc := range f.invoices {
		if doc.AccountID == accountID && doc.Posted && !doc.Cancelled && doc.IsOpen() {
			out = append(out, doc)
		}
	}
	sortInvoicesFIFO(out)
	return out, nil
}

func (f *fakeInvoices) ListOpen(ctx context.Context, accountID *id.ID) ([]*invoice.Invoice, error) {
	if accountID != nil {
		return f.ListOpenByAccount(ctx, *accountID)
	}
	var out []*invoice.Invoice
	for _, doc := range f.invoices {
		if doc.Posted && !doc.Cancelled && doc.IsOpen() {
			out = append(out, doc)
		}
	}
	sortInvoicesFIFO(out)
	return out, nil
}

func (f *fakeInvoices) GetForUpdate(ctx context.Context, docID id.ID) (*invoice.Invoice, error) {
	return f.GetByID(ctx, docID)
}

func sortInvoicesFIFO(docs []*invoice.Invoice) {
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].Date.Equal(docs[j].Date) {
			return docs[i].Date.Before(docs[j].Date)
		}
		return docs[i].ID.String() < docs[j].ID.String()
	})
}

type fakeOrders struct {
	orders map[id.ID]*purchase_order.PurchaseOrder
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: make(map[id.ID]*purchase_order.PurchaseOrder)}
}

func (f *fakeOrders) Create(_ context.Context, doc *purchase_order.PurchaseOrder) error {
	f.orders[doc.ID] = doc
	return nil
}

func (f *fakeOrders) GetByID(_ context.Context, docID id.ID) (*purchase_order.PurchaseOrder, error) {
	doc, ok := f.orders[docID]
	if !ok {
		return nil, apperror.NewNotFound("purchase order", docID.String())
	}
	return doc, nil
}

func (f *fakeOrders) GetByNumber(_ context.Context, _ string) (*purchase_order.PurchaseOrder, error) {
	return nil, apperror.NewNotFound("purchase order", "")
}

func (f *fakeOrders) Update(_ context.Context, doc *purchase_order.PurchaseOrder) error {
	f.orders[doc.ID] = doc
	return nil
}

func (f *fakeOrders) List(_ context.Context, _ purchase_order.ListFilter) (domain.ListResult[*purchase_order.PurchaseOrder], error) {
	return domain.ListResult[*purchase_order.PurchaseOrder]{}, nil
}

func (f *fakeOrders) ListOpenByAccount(_ context.Context, accountID id.ID) ([]*purchase_order.PurchaseOrder, error) {
	var out []*purchase_order.PurchaseOrder
	for _, doc := range f.orders {
		if doc.AccountID == accountID && doc.Posted && !doc.Cancelled && doc.IsOpen() {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (f *fakeOrders) ListOpen(ctx context.Context, accountID *id.ID) ([]*purchase_order.PurchaseOrder, error) {
	if accountID != nil {
		return f.ListOpenByAccount(ctx, *accountID)
	}
	return nil, nil
}

func (f *fakeOrders) GetForUpdate(ctx context.Context, docID id.ID) (*purchase_order.PurchaseOrder, error) {
	return f.GetByID(ctx, docID)
}

type engineFixture struct {
	engine   *Engine
	payments *fakePayments
	invoices *fakeInvoices
	orders   *fakeOrders
	customer *account.Account
	supplier *account.Account
}

func newEngineFixture() *engineFixture {
	customer := account.NewAccount("CUST-001", "Acme Ltd", account.KindCustomer)
	supplier := account.NewAccount("SUPP-001", "Steelworks", account.KindSupplier)

	payments := newFakePayments()
	invoices := newFakeInvoices()
	orders := newFakeOrders()
	accounts := &fakeAccountSource{accounts: map[id.ID]*account.Account{
		customer.ID: customer,
		supplier.ID: supplier,
	}}

	return &engineFixture{
		engine:   NewEngine(payments, invoices, orders, accounts, passthroughTx{}),
		payments: payments,
		invoices: invoices,
		orders:   orders,
		customer: customer,
		supplier: supplier,
	}
}

func (f *engineFixture) addPayment(t *testing.T, acc *account.Account, amount string) *payment.Payment {
	t.Helper()
	pmt := payment.NewPayment(acc.ID, types.MustMoney(amount), payment.MethodBankTransfer, day("2024-03-01"))
	pmt.MarkPosted()
	require.NoError(t, f.payments.Create(context.Background(), pmt))
	return pmt
}

func (f *engineFixture) addInvoice(t *testing.T, date, total string) *invoice.Invoice {
	t.Helper()
	inv := invoice.NewInvoice(f.customer.ID, day(date), types.MustMoney(total))
	inv.DueDate = inv.Date.AddDate(0, 0, 30)
	inv.MarkPosted()
	require.NoError(t, f.invoices.Create(context.Background(), inv))
	return inv
}

func TestEngine_ManualAllocation(t *testing.T) {
	f := newEngineFixture()
	inv1 := f.addInvoice(t, "2024-01-10", "100")
	inv2 := f.addInvoice(t, "2024-02-10", "200")
	pmt := f.addPayment(t, f.customer, "150")

	result, err := f.engine.Allocate(context.Background(), pmt.ID, Manual([]Line{
		{DocumentID: inv1.ID, Amount: types.MustMoney("100")},
		{DocumentID: inv2.ID, Amount: types.MustMoney("50")},
	}))
	require.NoError(t, err)

	require.Len(t, result.Lines, 2)
	assert.True(t, result.TotalAllocated.Equal(types.MustMoney("150")))
	assert.True(t, result.Leftover.IsZero())
	assert.Equal(t, entity.StatusPaid, result.Lines[0].DocumentStatus)
	assert.Equal(t, entity.StatusPartial, result.Lines[1].DocumentStatus)

	assert.Equal(t, entity.StatusPaid, inv1.PaymentStatus())
	assert.True(t, inv2.RemainingAmount().Equal(types.MustMoney("150")))
	assert.True(t, pmt.AllocatedAmount.Equal(types.MustMoney("150")))
	assert.Len(t, f.payments.allocations, 2)
}

func TestEngine_ManualRejectsOverAllocationOfDocument(t *testing.T) {
	f := newEngineFixture()
	inv := f.addInvoice(t, "2024-01-10", "100")
	_, err := inv.ApplyPayment(types.MustMoney("70"))
	require.NoError(t, err)
	pmt := f.addPayment(t, f.customer, "500")

	_, err = f.engine.Allocate(context.Background(), pmt.ID, Manual([]Line{
		{DocumentID: inv.ID, Amount: types.MustMoney("31")},
	}))

	require.Error(t, err)
	assert.True(t, apperror.IsAllocationExceedsRemaining(err))
	assert.True(t, inv.RemainingAmount().Equal(types.MustMoney("30")))
	assert.True(t, pmt.AllocatedAmount.IsZero())
	assert.Empty(t, f.payments.allocations)
}

func TestEngine_ManualRejectsExhaustedPayment(t *testing.T) {
	f := newEngineFixture()
	inv1 := f.addInvoice(t, "2024-01-10", "100")
	inv2 := f.addInvoice(t, "2024-02-10", "100")
	pmt := f.addPayment(t, f.customer, "120")

	_, err := f.engine.Allocate(context.Background(), pmt.ID, Manual([]Line{
		{DocumentID: inv1.ID, Amount: types.MustMoney("100")},
		{DocumentID: inv2.ID, Amount: types.MustMoney("30")},
	}))

	require.Error(t, err)
	assert.True(t, apperror.IsPaymentExhausted(err))
}

func TestEngine_ManualRejectsNonPositiveLine(t *testing.T) {
	f := newEngineFixture()
	inv := f.addInvoice(t, "2024-01-10", "100")
	pmt := f.addPayment(t, f.customer, "100")

	_, err := f.engine.Allocate(context.Background(), pmt.ID, Manual([]Line{
		{DocumentID: inv.ID, Amount: types.Zero()},
	}))

	require.Error(t, err)
	assert.True(t, apperror.IsInvalidAmount(err))
}

func TestEngine_ManualUnknownDocument(t *testing.T) {
	f := newEngineFixture()
	pmt := f.addPayment(t, f.customer, "100")

	_, err := f.engine.Allocate(context.Background(), pmt.ID, Manual([]Line{
		{DocumentID: id.New(), Amount: types.MustMoney("10")},
	}))

	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestEngine_ManualRejectsOtherAccountsDocument(t *testing.T) {
	f := newEngineFixture()
	other := account.NewAccount("CUST-002", "Borealis", account.KindCustomer)
	f.engine.accounts.(*fakeAccountSource).accounts[other.ID] = other

	otherInv := invoice.NewInvoice(other.ID, day("2024-01-10"), types.MustMoney("100"))
	otherInv.DueDate = otherInv.Date.AddDate(0, 0, 30)
	otherInv.MarkPosted()
	require.NoError(t, f.invoices.Create(context.Background(), otherInv))

	pmt := f.addPayment(t, f.customer, "100")

	_, err := f.engine.Allocate(context.Background(), pmt.ID, Manual([]Line{
		{DocumentID: otherInv.ID, Amount: types.MustMoney("100")},
	}))

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Equal(t, entity.StatusUnpaid, otherInv.PaymentStatus())
	assert.True(t, pmt.AllocatedAmount.IsZero())
	assert.Empty(t, f.payments.allocations)
}

func TestEngine_ManualRejectsDraftDocument(t *testing.T) {
	f := newEngineFixture()
	draft := invoice.NewInvoice(f.customer.ID, day("2024-01-10"), types.MustMoney("100"))
	draft.DueDate = draft.Date.AddDate(0, 0, 30)
	require.NoError(t, f.invoices.Create(context.Background(), draft))

	pmt := f.addPayment(t, f.customer, "100")

	_, err := f.engine.Allocate(context.Background(), pmt.ID, Manual([]Line{
		{DocumentID: draft.ID, Amount: types.MustMoney("100")},
	}))

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Equal(t, entity.StatusUnpaid, draft.PaymentStatus())
	assert.Empty(t, f.payments.allocations)
}

func TestEngine_ManualRejectsCancelledDocument(t *testing.T) {
	f := newEngineFixture()
	inv := f.addInvoice(t, "2024-01-10", "100")
	inv.MarkCancelled()

	pmt := f.addPayment(t, f.customer, "100")

	_, err := f.engine.Allocate(context.Background(), pmt.ID, Manual([]Line{
		{DocumentID: inv.ID, Amount: types.MustMoney("100")},
	}))

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDocumentCancelled, appErr.Code)
	assert.Equal(t, entity.StatusUnpaid, inv.PaymentStatus())
	assert.Empty(t, f.payments.allocations)
}

func TestEngine_AutoAllocatesOldestFirst(t *testing.T) {
	f := newEngineFixture()
	newer := f.addInvoice(t, "2024-02-10", "200")
	older := f.addInvoice(t, "2024-01-10", "100")
	pmt := f.addPayment(t, f.customer, "150")

	result, err := f.engine.Allocate(context.Background(), pmt.ID, Auto())
	require.NoError(t, err)

	require.Len(t, result.Lines, 2)
	assert.Equal(t, older.ID, result.Lines[0].DocumentID)
	assert.True(t, result.Lines[0].Amount.Equal(types.MustMoney("100")))
	assert.Equal(t, newer.ID, result.Lines[1].DocumentID)
	assert.True(t, result.Lines[1].Amount.Equal(types.MustMoney("50")))
	assert.Equal(t, entity.StatusPaid, older.PaymentStatus())
	assert.True(t, newer.RemainingAmount().Equal(types.MustMoney("150")))
}

func TestEngine_AutoLeftoverStaysOnAccount(t *testing.T) {
	f := newEngineFixture()
	inv := f.addInvoice(t, "2024-01-10", "60")
	pmt := f.addPayment(t, f.customer, "100")

	result, err := f.engine.Allocate(context.Background(), pmt.ID, Auto())
	require.NoError(t, err)

	assert.True(t, result.TotalAllocated.Equal(types.MustMoney("60")))
	assert.True(t, result.Leftover.Equal(types.MustMoney("40")))
	assert.Equal(t, entity.StatusPaid, inv.PaymentStatus())
	assert.True(t, pmt.UnallocatedAmount().Equal(types.MustMoney("40")))
}

func TestEngine_AutoWithNoOpenDocuments(t *testing.T) {
	f := newEngineFixture()
	pmt := f.addPayment(t, f.customer, "100")

	result, err := f.engine.Allocate(context.Background(), pmt.ID, Auto())
	require.NoError(t, err)

	assert.Empty(t, result.Lines)
	assert.True(t, result.TotalAllocated.IsZero())
	assert.True(t, result.Leftover.Equal(types.MustMoney("100")))
}

func TestEngine_AutoOnExhaustedPayment(t *testing.T) {
	f := newEngineFixture()
	f.addInvoice(t, "2024-01-10", "100")
	pmt := f.addPayment(t, f.customer, "50")
	pmt.AllocatedAmount = pmt.Amount

	_, err := f.engine.Allocate(context.Background(), pmt.ID, Auto())

	require.Error(t, err)
	assert.True(t, apperror.IsPaymentExhausted(err))
}

func TestEngine_SecondAllocationUsesRemainder(t *testing.T) {
	f := newEngineFixture()
	inv1 := f.addInvoice(t, "2024-01-10", "60")
	pmt := f.addPayment(t, f.customer, "100")

	_, err := f.engine.Allocate(context.Background(), pmt.ID, Auto())
	require.NoError(t, err)
	require.True(t, pmt.UnallocatedAmount().Equal(types.MustMoney("40")))

	inv2 := f.addInvoice(t, "2024-03-01", "100")
	result, err := f.engine.Allocate(context.Background(), pmt.ID, Auto())
	require.NoError(t, err)

	require.Len(t, result.Lines, 1)
	assert.Equal(t, inv2.ID, result.Lines[0].DocumentID)
	assert.True(t, result.Lines[0].Amount.Equal(types.MustMoney("40")))
	assert.True(t, pmt.UnallocatedAmount().IsZero())
	assert.Equal(t, entity.StatusPaid, inv1.PaymentStatus())
	assert.True(t, inv2.RemainingAmount().Equal(types.MustMoney("60")))
}

func TestEngine_SupplierPaymentAllocatesToOrders(t *testing.T) {
	f := newEngineFixture()
	po := purchase_order.NewPurchaseOrder(f.supplier.ID, day("2024-01-20"), types.MustMoney("300"))
	po.DueDate = po.Date.AddDate(0, 0, 14)
	po.MarkPosted()
	require.NoError(t, f.orders.Create(context.Background(), po))
	pmt := f.addPayment(t, f.supplier, "300")

	result, err := f.engine.Allocate(context.Background(), pmt.ID, Auto())
	require.NoError(t, err)

	require.Len(t, result.Lines, 1)
	assert.Equal(t, entity.SourceTypePurchaseOrder, result.Lines[0].DocumentType)
	assert.Equal(t, entity.StatusPaid, po.PaymentStatus())
}

func TestEngine_CancelledPaymentRejected(t *testing.T) {
	f := newEngineFixture()
	pmt := f.addPayment(t, f.customer, "100")
	pmt.MarkCancelled()

	_, err := f.engine.Allocate(context.Background(), pmt.ID, Auto())

	require.Error(t, err)
}

func TestEngine_UnknownPayment(t *testing.T) {
	f := newEngineFixture()

	_, err := f.engine.Allocate(context.Background(), id.New(), Auto())

	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
