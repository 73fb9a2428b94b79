package events

const (
	TopicPaymentAuthorized = "payment.authorized"
	TopicPaymentFailed     = "payment.failed"
	TopicOrderPaid         = "order.paid"
	TopicOrderCancelled    = "order.cancelled"
	TopicStockAdjusted     = "stock.adjusted"
)

// Partition key = order_number, supaya semua event 1 order maintain urutan.
func PartitionKey(orderNumber string) []byte { return []byte(orderNumber) }
