package orders

import (
	"strings"
	"time"

	"github.com/ariefcatur/go-commerce-ledger.git/internal/money"
	"github.com/google/uuid"
)

// Ongkir flat + gratis di atas threshold.
var (
	deliveryFlatFee       = money.MustNew(3000)
	freeDeliveryThreshold = money.MustNew(50000)
)

type ShippingInfo struct {
	RecipientName   string
	RecipientPhone  string
	ZipCode         string
	Address1        string
	Address2        string
	DeliveryMessage string
}

type Item struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	OptionID    *int64
	ProductName string
	OptionName  *string
	UnitPrice   money.Money
	Quantity    int
	Subtotal    money.Money
}

func NewItem(productID int64, optionID *int64, productName string, optionName *string,
	unitPrice money.Money, qty int) (Item, error) {

	subtotal, err := unitPrice.MulQty(qty)
	if err != nil {
		return Item{}, err
	}
	return Item{
		ProductID:   productID,
		OptionID:    optionID,
		ProductName: productName,
		OptionName:  optionName,
		UnitPrice:   unitPrice,
		Quantity:    qty,
		Subtotal:    subtotal,
	}, nil
}

// Order. Amount invariant: Final = (Total - Discount, clamp 0) + DeliveryFee.
// Status hanya maju lewat tabel transisi; terminal = immutable.
type Order struct {
	ID             int64
	OrderNumber    string
	MemberID       int64
	Items          []Item
	TotalAmount    money.Money
	DiscountAmount money.Money
	DeliveryFee    money.Money
	FinalAmount    money.Money
	Status         Status
	Shipping       ShippingInfo
	CouponID       *int64
	PaidAt         *time.Time
	CancelledAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func New(memberID int64, shipping ShippingInfo, couponID *int64) *Order {
	return &Order{
		OrderNumber:    generateOrderNumber(),
		MemberID:       memberID,
		Shipping:       shipping,
		CouponID:       couponID,
		Status:         StatusPendingPayment,
		TotalAmount:    money.Zero,
		DiscountAmount: money.Zero,
		DeliveryFee:    deliveryFlatFee,
		FinalAmount:    money.Zero,
	}
}

func generateOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}

// AddItem: amounts dihitung ulang setiap line item berubah, independen dari status.
func (o *Order) AddItem(item Item) {
	o.Items = append(o.Items, item)
	o.recalculateAmounts()
}

func (o *Order) recalculateAmounts() {
	total := money.Zero
	for _, it := range o.Items {
		total = total.Add(it.Subtotal)
	}
	o.TotalAmount = total

	if total.GTE(freeDeliveryThreshold) {
		o.DeliveryFee = money.Zero
	} else {
		o.DeliveryFee = deliveryFlatFee
	}

	o.FinalAmount = total.SubOrZero(o.DiscountAmount).Add(o.DeliveryFee)
}

func (o *Order) ApplyDiscount(discount money.Money) {
	o.DiscountAmount = discount
	o.recalculateAmounts()
}

func (o *Order) transition(next Status) error {
	if !CanTransition(o.Status, next) {
		return ErrInvalidTransition
	}
	o.Status = next
	return nil
}

func (o *Order) MarkAsPaid(now time.Time) error {
	if err := o.transition(StatusPaid); err != nil {
		return err
	}
	o.PaidAt = &now
	return nil
}

func (o *Order) StartPreparing() error { return o.transition(StatusPreparing) }
func (o *Order) Ship() error           { return o.transition(StatusShipped) }
func (o *Order) Deliver() error        { return o.transition(StatusDelivered) }
func (o *Order) RequestRefund() error  { return o.transition(StatusRefundRequested) }
func (o *Order) CompleteRefund() error { return o.transition(StatusRefunded) }

func (o *Order) Cancel(now time.Time) error {
	if !o.Status.IsCancellable() {
		return ErrCannotCancel
	}
	if err := o.transition(StatusCancelled); err != nil {
		return err
	}
	o.CancelledAt = &now
	return nil
}

func (o *Order) IsPending() bool     { return o.Status.IsPending() }
func (o *Order) IsCancellable() bool { return o.Status.IsCancellable() }
