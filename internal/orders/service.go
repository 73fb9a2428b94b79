package orders

import (
	"context"
	"log"
	"time"

	"github.com/ariefcatur/go-commerce-ledger.git/internal/events"
	"github.com/ariefcatur/go-commerce-ledger.git/internal/money"
	"github.com/ariefcatur/go-commerce-ledger.git/internal/stock"
)

type Repo interface {
	Create(ctx context.Context, o *Order) error
	GetWithItems(ctx context.Context, id int64) (*Order, error)
	GetByNumberWithItems(ctx context.Context, number string) (*Order, error)
	ListByMember(ctx context.Context, memberID int64, limit, offset int) ([]Order, error)
	UpdateStatus(ctx context.Context, o *Order) error
}

// StockLedger: operasi stok yang dipakai flow order (subset internal/stock.Ledger).
type StockLedger interface {
	HasAvailable(ctx context.Context, productID int64, optionID *int64, qty int) (bool, error)
	DeductStock(ctx context.Context, productID int64, optionID *int64, qty int, orderID int64) error
	RestoreStock(ctx context.Context, productID int64, optionID *int64, qty int, orderID int64) error
}

// ProductInfo: hasil lookup katalog, secukupnya utk membangun line item.
type ProductInfo struct {
	Purchasable bool
	ProductName string
	OptionName  *string
	UnitPrice   money.Money
}

type Catalog interface {
	Item(ctx context.Context, productID int64, optionID *int64) (ProductInfo, error)
}

type ItemRequest struct {
	ProductID int64  `json:"product_id"`
	OptionID  *int64 `json:"option_id,omitempty"`
	Quantity  int    `json:"quantity"`
}

type CreateRequest struct {
	Items    []ItemRequest `json:"items"`
	Shipping ShippingInfo  `json:"shipping"`
	CouponID *int64        `json:"coupon_id,omitempty"`
	Discount int64         `json:"discount,omitempty"`
}

type Service struct {
	repo    Repo
	catalog Catalog
	stock   StockLedger
	emitter *events.Emitter
	now     func() time.Time
}

func NewService(repo Repo, catalog Catalog, stock StockLedger, emitter *events.Emitter) *Service {
	return &Service{repo: repo, catalog: catalog, stock: stock, emitter: emitter, now: time.Now}
}

// Create: checkout. Harga diambil dari katalog (jangan trust client), stok dicek
// best-effort — klaim riil baru terjadi saat pembayaran (deduct).
func (s *Service) Create(ctx context.Context, memberID int64, req CreateRequest) (*Order, error) {
	o := New(memberID, req.Shipping, req.CouponID)

	for _, ir := range req.Items {
		info, err := s.catalog.Item(ctx, ir.ProductID, ir.OptionID)
		if err != nil {
			return nil, err
		}
		if !info.Purchasable {
			return nil, ErrProductNotPurchasable
		}

		ok, err := s.stock.HasAvailable(ctx, ir.ProductID, ir.OptionID, ir.Quantity)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, stock.ErrInsufficientStock
		}

		item, err := NewItem(ir.ProductID, ir.OptionID, info.ProductName, info.OptionName,
			info.UnitPrice, ir.Quantity)
		if err != nil {
			return nil, err
		}
		o.AddItem(item)
	}

	if req.Discount > 0 {
		d, err := money.New(req.Discount)
		if err != nil {
			return nil, err
		}
		o.ApplyDiscount(d)
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) Get(ctx context.Context, memberID, orderID int64) (*Order, error) {
	o, err := s.repo.GetWithItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := validateOwner(o, memberID); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) GetByNumber(ctx context.Context, memberID int64, number string) (*Order, error) {
	o, err := s.repo.GetByNumberWithItems(ctx, number)
	if err != nil {
		return nil, err
	}
	if err := validateOwner(o, memberID); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) List(ctx context.Context, memberID int64, limit, offset int) ([]Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByMember(ctx, memberID, limit, offset)
}

// FindByID tanpa ownership check — dipakai orchestrator pembayaran yang
// memvalidasi owner sendiri.
func (s *Service) FindByID(ctx context.Context, orderID int64) (*Order, error) {
	return s.repo.GetWithItems(ctx, orderID)
}

// MarkAsPaid: dipanggil orchestrator setelah gateway approve. Deduct stok
// per line item (ledger retry internal), lalu transisi PAID.
func (s *Service) MarkAsPaid(ctx context.Context, orderID int64) error {
	o, err := s.repo.GetWithItems(ctx, orderID)
	if err != nil {
		return err
	}
	if !o.IsPending() {
		return ErrAlreadyPaid
	}

	for _, it := range o.Items {
		if err := s.stock.DeductStock(ctx, it.ProductID, it.OptionID, it.Quantity, o.ID); err != nil {
			return err
		}
	}

	if err := o.MarkAsPaid(s.now()); err != nil {
		return err
	}
	if err := s.repo.UpdateStatus(ctx, o); err != nil {
		return err
	}

	s.emitter.Emit(events.TopicOrderPaid, events.EventOrderPaid, o.OrderNumber,
		events.OrderPaidPayload{OrderID: o.ID, OrderNumber: o.OrderNumber, FinalAmount: o.FinalAmount.Amount()})
	return nil
}

// Cancel: restore stok per item lalu transisi CANCELLED.
// Kompensasi best-effort: kalau restore gagal di tengah, item yang sudah balik
// tetap balik — stop, log buat rekonsiliasi manual, jangan di-reverse lagi.
func (s *Service) Cancel(ctx context.Context, memberID, orderID int64) (*Order, error) {
	o, err := s.repo.GetWithItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := validateOwner(o, memberID); err != nil {
		return nil, err
	}
	if !o.IsCancellable() {
		return nil, ErrCannotCancel
	}

	// restore hanya berarti untuk order yang stoknya sudah dipotong
	restored := 0
	if o.Status != StatusPendingPayment {
		for _, it := range o.Items {
			if err := s.stock.RestoreStock(ctx, it.ProductID, it.OptionID, it.Quantity, o.ID); err != nil {
				log.Printf("cancel order %s: restore stock product=%d gagal setelah %d item: %v",
					o.OrderNumber, it.ProductID, restored, err)
				return nil, err
			}
			restored++
		}
	}

	if err := o.Cancel(s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, o); err != nil {
		return nil, err
	}

	s.emitter.Emit(events.TopicOrderCancelled, events.EventOrderCancelled, o.OrderNumber,
		events.OrderCancelledPayload{OrderID: o.ID, OrderNumber: o.OrderNumber, Restored: restored})
	return o, nil
}

// Ownership gagal = not found, bukan forbidden: jangan bocorkan keberadaan order orang lain.
func validateOwner(o *Order, memberID int64) error {
	if o.MemberID != memberID {
		return ErrNotFound
	}
	return nil
}
