package events

import (
	"encoding/json"
	"time"
)

const (
	EventPaymentAuthorized = "PaymentAuthorized"
	EventPaymentFailed     = "PaymentFailed"
	EventOrderPaid         = "OrderPaid"
	EventOrderCancelled    = "OrderCancelled"
	EventStockAdjusted     = "StockAdjusted"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "commerce-api"
	CorrelationID string          `json:"correlation_id,omitempty"` // biasanya order_number
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload tipe per event ----

type PaymentAuthorizedPayload struct {
	PaymentID     int64  `json:"payment_id"`
	PaymentNumber string `json:"payment_number"`
	OrderID       int64  `json:"order_id"`
	OrderNumber   string `json:"order_number"`
	Amount        int64  `json:"amount"`
	TransactionID string `json:"transaction_id"`
}

type PaymentFailedPayload struct {
	PaymentID   int64  `json:"payment_id"`
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Reason      string `json:"reason"` // pesan dari gateway
}

type OrderPaidPayload struct {
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	FinalAmount int64  `json:"final_amount"`
}

type OrderCancelledPayload struct {
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Restored    int    `json:"restored_items"` // berapa line item yang stoknya balik
}

type StockAdjustedPayload struct {
	ProductID  int64  `json:"product_id"`
	OptionID   *int64 `json:"option_id,omitempty"`
	ChangeType string `json:"change_type"` // DEDUCT | RESTORE | INBOUND
	ChangeQty  int    `json:"change_qty"`
}
