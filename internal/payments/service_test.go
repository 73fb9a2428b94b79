package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/ariefcatur/go-commerce-ledger.git/internal/idempotency"
	"github.com/ariefcatur/go-commerce-ledger.git/internal/money"
	"github.com/ariefcatur/go-commerce-ledger.git/internal/orders"
	"github.com/ariefcatur/go-commerce-ledger.git/internal/pg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePayRepo struct {
	nextID int64
	byID   map[int64]*Payment
}

func newFakePayRepo() *fakePayRepo {
	return &fakePayRepo{byID: map[int64]*Payment{}}
}

func (f *fakePayRepo) Create(ctx context.Context, pay *Payment) error {
	f.nextID++
	pay.ID = f.nextID
	c := *pay
	f.byID[pay.ID] = &c
	return nil
}

func (f *fakePayRepo) Get(ctx context.Context, id int64) (*Payment, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *p
	return &c, nil
}

func (f *fakePayRepo) GetByOrder(ctx context.Context, orderID int64) (*Payment, error) {
	for _, p := range f.byID {
		if p.OrderID == orderID {
			c := *p
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakePayRepo) Update(ctx context.Context, pay *Payment) error {
	if _, ok := f.byID[pay.ID]; !ok {
		return ErrNotFound
	}
	c := *pay
	f.byID[pay.ID] = &c
	return nil
}

type fakeOrderSvc struct {
	byID          map[int64]*orders.Order
	markPaidCalls int
	markPaidErr   error
}

func (f *fakeOrderSvc) FindByID(ctx context.Context, orderID int64) (*orders.Order, error) {
	o, ok := f.byID[orderID]
	if !ok {
		return nil, orders.ErrNotFound
	}
	c := *o
	return &c, nil
}

func (f *fakeOrderSvc) MarkAsPaid(ctx context.Context, orderID int64) error {
	if f.markPaidErr != nil {
		return f.markPaidErr
	}
	f.markPaidCalls++
	f.byID[orderID].Status = orders.StatusPaid
	return nil
}

// fakeIdem: ledger idempotency in-memory dengan semantik yang sama dengan
// internal/idempotency.Service (satu resource type saja, cukup utk test ini).
type fakeIdem struct {
	claims map[string]*int64 // nil = in progress, terisi = completed
}

func newFakeIdem() *fakeIdem { return &fakeIdem{claims: map[string]*int64{}} }

func (f *fakeIdem) CheckAndCreate(ctx context.Context, key, resourceType string) (idempotency.Result, error) {
	if key == "" {
		return idempotency.Result{}, idempotency.ErrKeyRequired
	}
	if rid, ok := f.claims[key]; ok {
		if rid != nil {
			return idempotency.Result{Status: idempotency.StatusDuplicate, ResourceID: rid}, nil
		}
		return idempotency.Result{Status: idempotency.StatusInProgress}, nil
	}
	f.claims[key] = nil
	return idempotency.Result{Status: idempotency.StatusNewRequest}, nil
}

func (f *fakeIdem) Complete(ctx context.Context, key, resourceType string, resourceID int64, body string) error {
	f.claims[key] = &resourceID
	return nil
}

func (f *fakeIdem) Delete(ctx context.Context, key, resourceType string) error {
	if rid, ok := f.claims[key]; ok && rid == nil {
		delete(f.claims, key)
	}
	return nil
}

type fakeGateway struct {
	approves int
	cancels  int
	declined bool
	err      error
}

func (g *fakeGateway) Approve(ctx context.Context, req pg.Request) (pg.Response, error) {
	g.approves++
	if g.err != nil {
		return pg.Response{}, g.err
	}
	if g.declined {
		return pg.FailureResponse("2001", "saldo tidak cukup"), nil
	}
	return pg.SuccessResponse("TXN123"), nil
}

func (g *fakeGateway) Cancel(ctx context.Context, transactionID string, amount int64) (pg.Response, error) {
	g.cancels++
	return pg.CancelledResponse(transactionID), nil
}

func (g *fakeGateway) Inquiry(ctx context.Context, transactionID string) (pg.Response, error) {
	return pg.SuccessResponse(transactionID), nil
}

func testOrder(id, memberID int64) *orders.Order {
	o := orders.New(memberID, orders.ShippingInfo{}, nil)
	it, _ := orders.NewItem(10, nil, "kaos", nil, money.MustNew(10000), 3)
	o.AddItem(it)
	o.ID = id
	return o
}

func newPaymentFixture() (*Service, *fakePayRepo, *fakeOrderSvc, *fakeGateway, *fakeIdem) {
	repo := newFakePayRepo()
	osvc := &fakeOrderSvc{byID: map[int64]*orders.Order{1: testOrder(1, 7)}}
	gw := &fakeGateway{}
	idem := newFakeIdem()
	return NewService(repo, osvc, gw, idem, nil), repo, osvc, gw, idem
}

func processReq() ProcessRequest {
	return ProcessRequest{OrderID: 1, Method: MethodCreditCard, CardNumber: "4000123412345678", IdempotencyKey: "key-1"}
}

func TestProcessSuccess(t *testing.T) {
	svc, repo, osvc, gw, idem := newPaymentFixture()

	p, err := svc.Process(context.Background(), 7, processReq())
	require.NoError(t, err)

	assert.Equal(t, StatusApproved, p.Status)
	assert.Equal(t, int64(33000), p.Amount.Amount())
	require.NotNil(t, p.PgTransactionID)
	assert.Equal(t, "TXN123", *p.PgTransactionID)

	assert.Equal(t, 1, gw.approves)
	assert.Equal(t, 1, osvc.markPaidCalls)
	assert.Equal(t, orders.StatusPaid, osvc.byID[1].Status)

	// key completed menunjuk ke payment
	require.NotNil(t, idem.claims["key-1"])
	assert.Equal(t, p.ID, *idem.claims["key-1"])

	stored, _ := repo.Get(context.Background(), p.ID)
	assert.Equal(t, StatusApproved, stored.Status)
}

func TestProcessDuplicateReturnsExisting(t *testing.T) {
	svc, _, osvc, gw, _ := newPaymentFixture()
	ctx := context.Background()

	first, err := svc.Process(ctx, 7, processReq())
	require.NoError(t, err)

	second, err := svc.Process(ctx, 7, processReq())
	require.NoError(t, err)

	// retry dengan key sama: hasil lama, tanpa call gateway / potong stok kedua
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.PaymentNumber, second.PaymentNumber)
	assert.Equal(t, 1, gw.approves)
	assert.Equal(t, 1, osvc.markPaidCalls)
}

func TestProcessInProgressRejected(t *testing.T) {
	svc, _, _, gw, idem := newPaymentFixture()

	// klaim manual: attempt lain masih jalan
	idem.claims["key-1"] = nil

	_, err := svc.Process(context.Background(), 7, processReq())
	assert.ErrorIs(t, err, idempotency.ErrInProgress)
	assert.Zero(t, gw.approves)
}

func TestProcessRequiresKey(t *testing.T) {
	svc, _, _, gw, _ := newPaymentFixture()

	req := processReq()
	req.IdempotencyKey = ""
	_, err := svc.Process(context.Background(), 7, req)
	assert.ErrorIs(t, err, idempotency.ErrKeyRequired)
	assert.Zero(t, gw.approves)
}

func TestProcessGatewayDeclined(t *testing.T) {
	svc, _, osvc, gw, idem := newPaymentFixture()
	gw.declined = true
	ctx := context.Background()

	p, err := svc.Process(ctx, 7, processReq())
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, p.Status)
	require.NotNil(t, p.FailureReason)
	assert.Equal(t, "saldo tidak cukup", *p.FailureReason)

	// order tidak tersentuh, stok tidak dipotong
	assert.Zero(t, osvc.markPaidCalls)
	assert.Equal(t, orders.StatusPendingPayment, osvc.byID[1].Status)

	// key dilepas: retry dengan key sama jadi attempt baru
	_, claimed := idem.claims["key-1"]
	assert.False(t, claimed)

	gw.declined = false
	p2, err := svc.Process(ctx, 7, processReq())
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, p2.Status)
	assert.Equal(t, 2, gw.approves)
	assert.NotEqual(t, p.ID, p2.ID)
}

func TestProcessTransportErrorFailsPayment(t *testing.T) {
	svc, repo, osvc, gw, _ := newPaymentFixture()
	gw.err = errors.New("connection reset")

	p, err := svc.Process(context.Background(), 7, processReq())
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, p.Status)
	assert.Zero(t, osvc.markPaidCalls)

	// attempt FAILED tetap ter-persist buat audit
	stored, err := repo.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, stored.Status)
}

func TestProcessOrderNotOwned(t *testing.T) {
	svc, _, _, gw, idem := newPaymentFixture()

	_, err := svc.Process(context.Background(), 99, processReq())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, gw.approves)

	// key dilepas walau validasi gagal sebelum gateway
	_, claimed := idem.claims["key-1"]
	assert.False(t, claimed)
}

func TestProcessOrderNotPending(t *testing.T) {
	svc, _, osvc, gw, _ := newPaymentFixture()
	osvc.byID[1].Status = orders.StatusPaid

	_, err := svc.Process(context.Background(), 7, processReq())
	assert.ErrorIs(t, err, ErrDuplicatePayment)
	assert.Zero(t, gw.approves)
}

func TestProcessMarkPaidFailureCompensates(t *testing.T) {
	svc, repo, osvc, _, idem := newPaymentFixture()
	osvc.markPaidErr = errors.New("stock conflict")

	p, err := svc.Process(context.Background(), 7, processReq())
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, p.Status)

	stored, _ := repo.Get(context.Background(), p.ID)
	assert.Equal(t, StatusFailed, stored.Status)

	_, claimed := idem.claims["key-1"]
	assert.False(t, claimed)
}

func TestCancelApprovedPayment(t *testing.T) {
	svc, _, _, gw, _ := newPaymentFixture()
	ctx := context.Background()

	p, err := svc.Process(ctx, 7, processReq())
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, 7, p.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Equal(t, 1, gw.cancels)
	assert.Equal(t, cancelled.Amount.Amount(), cancelled.RefundedAmount.Amount())
}

func TestCancelOwnership(t *testing.T) {
	svc, _, _, _, _ := newPaymentFixture()
	ctx := context.Background()

	p, err := svc.Process(ctx, 7, processReq())
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, 8, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRefundViaService(t *testing.T) {
	svc, _, _, _, _ := newPaymentFixture()
	ctx := context.Background()

	p, err := svc.Process(ctx, 7, processReq())
	require.NoError(t, err)

	_, err = svc.Refund(ctx, 7, p.ID, -100)
	assert.ErrorIs(t, err, ErrInvalidRefundAmount)

	partial, err := svc.Refund(ctx, 7, p.ID, 10000)
	require.NoError(t, err)
	assert.Equal(t, StatusPartiallyRefunded, partial.Status)

	full, err := svc.Refund(ctx, 7, p.ID, 23000)
	require.NoError(t, err)
	assert.Equal(t, StatusRefunded, full.Status)
	assert.Equal(t, int64(33000), full.RefundedAmount.Amount())
}
