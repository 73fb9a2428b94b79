package redisx

import "time"

const (
	// Cache status order: order_status:{order_number} -> {"status":"...","payment_status":"..."}
	KeyOrderStatus = "order_status:%s"

	// Fast-path idempotency payment: idem:payment:{key} -> payment_id.
	// DB yang jadi kebenaran; ini cuma shortcut baca.
	KeyIdemPayment = "idem:payment:%s"

	// Dedup event processing di consumer: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLIdempotency = 24 * time.Hour
	TTLDedup       = 48 * time.Hour
)
