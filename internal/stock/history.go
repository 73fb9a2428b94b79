package stock

import "time"

type ChangeType string

const (
	ChangeDeduct  ChangeType = "DEDUCT"
	ChangeRestore ChangeType = "RESTORE"
	ChangeInbound ChangeType = "INBOUND"
)

// History = jejak audit satu mutasi OnHand. Append-only: tidak pernah
// di-update atau dihapus selama Record-nya masih ada.
type History struct {
	ID         int64
	StockID    int64
	ChangeType ChangeType
	ChangeQty  int
	BeforeQty  int
	AfterQty   int
	OrderID    *int64
	Reason     string
	CreatedAt  time.Time
}

// Konstruktor dipanggil SETELAH mutasi entity, jadi Before dihitung mundur dari OnHand.

func newDeductHistory(r *Record, qty int, orderID *int64) *History {
	return &History{
		StockID:    r.ID,
		ChangeType: ChangeDeduct,
		ChangeQty:  qty,
		BeforeQty:  r.OnHand + qty,
		AfterQty:   r.OnHand,
		OrderID:    orderID,
		Reason:     "pengurangan stok karena order",
	}
}

func newRestoreHistory(r *Record, qty int, orderID *int64) *History {
	return &History{
		StockID:    r.ID,
		ChangeType: ChangeRestore,
		ChangeQty:  qty,
		BeforeQty:  r.OnHand - qty,
		AfterQty:   r.OnHand,
		OrderID:    orderID,
		Reason:     "pengembalian stok karena pembatalan order",
	}
}

func newInboundHistory(r *Record, qty int, reason string) *History {
	if reason == "" {
		reason = "stok masuk"
	}
	return &History{
		StockID:    r.ID,
		ChangeType: ChangeInbound,
		ChangeQty:  qty,
		BeforeQty:  r.OnHand - qty,
		AfterQty:   r.OnHand,
		Reason:     reason,
	}
}
