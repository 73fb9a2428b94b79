package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/ariefcatur/go-commerce-ledger.git/internal/money"
	"github.com/ariefcatur/go-commerce-ledger.git/internal/stock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderRepo struct {
	nextID int64
	byID   map[int64]*Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{byID: map[int64]*Order{}}
}

func (f *fakeOrderRepo) Create(ctx context.Context, o *Order) error {
	f.nextID++
	o.ID = f.nextID
	c := *o
	f.byID[o.ID] = &c
	return nil
}

func (f *fakeOrderRepo) GetWithItems(ctx context.Context, id int64) (*Order, error) {
	o, ok := f.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *o
	return &c, nil
}

func (f *fakeOrderRepo) GetByNumberWithItems(ctx context.Context, number string) (*Order, error) {
	for _, o := range f.byID {
		if o.OrderNumber == number {
			c := *o
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeOrderRepo) ListByMember(ctx context.Context, memberID int64, limit, offset int) ([]Order, error) {
	var out []Order
	for _, o := range f.byID {
		if o.MemberID == memberID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, o *Order) error {
	stored, ok := f.byID[o.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Status = o.Status
	stored.PaidAt = o.PaidAt
	stored.CancelledAt = o.CancelledAt
	return nil
}

type fakeCatalog struct {
	items map[int64]ProductInfo
}

func (f *fakeCatalog) Item(ctx context.Context, productID int64, optionID *int64) (ProductInfo, error) {
	info, ok := f.items[productID]
	if !ok {
		return ProductInfo{}, ErrNotFound
	}
	return info, nil
}

type fakeStockLedger struct {
	available   map[int64]int
	deducted    map[int64]int
	restored    map[int64]int
	failRestore map[int64]error
}

func newFakeStockLedger() *fakeStockLedger {
	return &fakeStockLedger{
		available:   map[int64]int{},
		deducted:    map[int64]int{},
		restored:    map[int64]int{},
		failRestore: map[int64]error{},
	}
}

func (f *fakeStockLedger) HasAvailable(ctx context.Context, productID int64, optionID *int64, qty int) (bool, error) {
	return f.available[productID] >= qty, nil
}

func (f *fakeStockLedger) DeductStock(ctx context.Context, productID int64, optionID *int64, qty int, orderID int64) error {
	if f.available[productID] < qty {
		return stock.ErrInsufficientStock
	}
	f.available[productID] -= qty
	f.deducted[productID] += qty
	return nil
}

func (f *fakeStockLedger) RestoreStock(ctx context.Context, productID int64, optionID *int64, qty int, orderID int64) error {
	if err := f.failRestore[productID]; err != nil {
		return err
	}
	f.available[productID] += qty
	f.restored[productID] += qty
	return nil
}

func newOrderFixture(t *testing.T) (*Service, *fakeOrderRepo, *fakeStockLedger) {
	t.Helper()
	repo := newFakeOrderRepo()
	st := newFakeStockLedger()
	st.available[10] = 100
	st.available[20] = 100
	cat := &fakeCatalog{items: map[int64]ProductInfo{
		10: {Purchasable: true, ProductName: "kaos", UnitPrice: money.MustNew(10000)},
		20: {Purchasable: true, ProductName: "sepatu", UnitPrice: money.MustNew(60000)},
		30: {Purchasable: false, ProductName: "diskontinyu", UnitPrice: money.MustNew(5000)},
	}}
	return NewService(repo, cat, st, nil), repo, st
}

func TestCreateOrder(t *testing.T) {
	svc, _, st := newOrderFixture(t)

	o, err := svc.Create(context.Background(), 1, CreateRequest{
		Items: []ItemRequest{{ProductID: 10, Quantity: 3}},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPendingPayment, o.Status)
	assert.Equal(t, int64(30000), o.TotalAmount.Amount())
	assert.Equal(t, int64(33000), o.FinalAmount.Amount())
	// checkout belum memotong stok
	assert.Empty(t, st.deducted)
}

func TestCreateOrderPriceFromCatalogNotClient(t *testing.T) {
	svc, _, _ := newOrderFixture(t)

	o, err := svc.Create(context.Background(), 1, CreateRequest{
		Items: []ItemRequest{{ProductID: 20, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(60000), o.Items[0].UnitPrice.Amount())
	assert.Equal(t, "sepatu", o.Items[0].ProductName)
}

func TestCreateOrderRejectsNotPurchasable(t *testing.T) {
	svc, _, _ := newOrderFixture(t)

	_, err := svc.Create(context.Background(), 1, CreateRequest{
		Items: []ItemRequest{{ProductID: 30, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrProductNotPurchasable)
}

func TestCreateOrderRejectsInsufficientStock(t *testing.T) {
	svc, _, st := newOrderFixture(t)
	st.available[10] = 2

	_, err := svc.Create(context.Background(), 1, CreateRequest{
		Items: []ItemRequest{{ProductID: 10, Quantity: 3}},
	})
	assert.ErrorIs(t, err, stock.ErrInsufficientStock)
}

func TestMarkAsPaidDeductsStock(t *testing.T) {
	svc, repo, st := newOrderFixture(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, 1, CreateRequest{
		Items: []ItemRequest{{ProductID: 10, Quantity: 3}, {ProductID: 20, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.MarkAsPaid(ctx, o.ID))

	assert.Equal(t, 3, st.deducted[10])
	assert.Equal(t, 1, st.deducted[20])
	stored, _ := repo.GetWithItems(ctx, o.ID)
	assert.Equal(t, StatusPaid, stored.Status)
	assert.NotNil(t, stored.PaidAt)

	// dobel mark paid ditolak tanpa potong stok lagi
	assert.ErrorIs(t, svc.MarkAsPaid(ctx, o.ID), ErrAlreadyPaid)
	assert.Equal(t, 3, st.deducted[10])
}

func TestCancelPendingDoesNotRestore(t *testing.T) {
	svc, repo, st := newOrderFixture(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, 1, CreateRequest{
		Items: []ItemRequest{{ProductID: 10, Quantity: 3}},
	})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, 1, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	// stok belum pernah dipotong, tidak ada yang dikembalikan
	assert.Empty(t, st.restored)

	stored, _ := repo.GetWithItems(ctx, o.ID)
	assert.Equal(t, StatusCancelled, stored.Status)
}

func TestCancelPaidRestoresStock(t *testing.T) {
	svc, _, st := newOrderFixture(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, 1, CreateRequest{
		Items: []ItemRequest{{ProductID: 10, Quantity: 3}},
	})
	require.NoError(t, err)
	require.NoError(t, svc.MarkAsPaid(ctx, o.ID))

	_, err = svc.Cancel(ctx, 1, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, st.restored[10])
	assert.Equal(t, 100, st.available[10])
}

func TestCancelAbortsOnRestoreFailure(t *testing.T) {
	svc, repo, st := newOrderFixture(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, 1, CreateRequest{
		Items: []ItemRequest{{ProductID: 10, Quantity: 2}, {ProductID: 20, Quantity: 1}},
	})
	require.NoError(t, err)
	require.NoError(t, svc.MarkAsPaid(ctx, o.ID))

	st.failRestore[20] = errors.New("boom")

	_, err = svc.Cancel(ctx, 1, o.ID)
	require.Error(t, err)

	// item pertama sudah balik & tetap balik; status order tidak berubah
	assert.Equal(t, 2, st.restored[10])
	stored, _ := repo.GetWithItems(ctx, o.ID)
	assert.Equal(t, StatusPaid, stored.Status)
}

func TestOwnershipHidesOtherMembersOrders(t *testing.T) {
	svc, _, _ := newOrderFixture(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, 1, CreateRequest{
		Items: []ItemRequest{{ProductID: 10, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.Get(ctx, 2, o.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Cancel(ctx, 2, o.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
