package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/ariefcatur/go-commerce-ledger.git/internal/events"
	kafkax "github.com/ariefcatur/go-commerce-ledger.git/internal/kafka"
	"github.com/ariefcatur/go-commerce-ledger.git/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

// Service: projector status — konsumsi event payment/order, refresh cache
// status di Redis supaya GET status murah. Read model saja, bukan kebenaran.
type Service struct {
	Redis       *redis.Client
	ServiceName string
}

type statusView struct {
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// Handle dipasang sebagai handler consumer utk semua topic payment/order.
func (s *Service) Handle(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	// dedup via Redis (pakai event_id)
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	exists, _ := redisx.Exists(ctx, s.Redis, dkey)
	if exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	switch env.EventType {
	case events.EventPaymentAuthorized:
		p, err := kafkax.UnwrapPayload[events.PaymentAuthorizedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.setStatus(ctx, p.OrderNumber, statusView{Status: "PAID", PaymentStatus: "APPROVED"})

	case events.EventPaymentFailed:
		p, err := kafkax.UnwrapPayload[events.PaymentFailedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.setStatus(ctx, p.OrderNumber,
			statusView{Status: "PENDING_PAYMENT", PaymentStatus: "FAILED", Reason: p.Reason})

	case events.EventOrderCancelled:
		p, err := kafkax.UnwrapPayload[events.OrderCancelledPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.setStatus(ctx, p.OrderNumber, statusView{Status: "CANCELLED"})
	}

	// event lain bukan urusan projector ini
	return nil
}

func (s *Service) setStatus(ctx context.Context, orderNumber string, v statusView) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderNumber)
	if err := s.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err(); err != nil {
		// cache refresh gagal bukan alasan nge-block commit offset
		log.Printf("notify: set status cache %s: %v", key, err)
	}
	return nil
}
