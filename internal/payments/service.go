package payments

import (
	"context"
	"log"
	"time"

	"github.com/ariefcatur/go-commerce-ledger.git/internal/events"
	"github.com/ariefcatur/go-commerce-ledger.git/internal/idempotency"
	"github.com/ariefcatur/go-commerce-ledger.git/internal/money"
	"github.com/ariefcatur/go-commerce-ledger.git/internal/orders"
	"github.com/ariefcatur/go-commerce-ledger.git/internal/pg"
)

// Resource type utk idempotency ledger.
const ResourceTypePayment = "PAYMENT"

type Repo interface {
	Create(ctx context.Context, pay *Payment) error
	Get(ctx context.Context, id int64) (*Payment, error)
	GetByOrder(ctx context.Context, orderID int64) (*Payment, error)
	Update(ctx context.Context, pay *Payment) error
}

// OrderService: bagian dari internal/orders.Service yang dipakai orchestrator.
type OrderService interface {
	FindByID(ctx context.Context, orderID int64) (*orders.Order, error)
	MarkAsPaid(ctx context.Context, orderID int64) error
}

// Idempotency: ledger yang menjaga at-most-once utk side effect eksternal.
type Idempotency interface {
	CheckAndCreate(ctx context.Context, key, resourceType string) (idempotency.Result, error)
	Complete(ctx context.Context, key, resourceType string, resourceID int64, body string) error
	Delete(ctx context.Context, key, resourceType string) error
}

type ProcessRequest struct {
	OrderID        int64  `json:"order_id"`
	Method         Method `json:"method"`
	CardNumber     string `json:"card_number"`
	IdempotencyKey string `json:"-"` // dari header, diteruskan verbatim
}

// Service = orchestrator pembayaran: satu-satunya komponen yang menyentuh
// lebih dari satu aggregate per call.
type Service struct {
	repo    Repo
	orders  OrderService
	gateway pg.Client
	idem    Idempotency
	emitter *events.Emitter
	now     func() time.Time
}

func NewService(repo Repo, orderSvc OrderService, gateway pg.Client, idem Idempotency,
	emitter *events.Emitter) *Service {
	return &Service{
		repo:    repo,
		orders:  orderSvc,
		gateway: gateway,
		idem:    idem,
		emitter: emitter,
		now:     time.Now,
	}
}

// Process menjalankan urutan §pembayaran:
//
//	claim idempotency key -> load & validasi order -> persist payment PENDING
//	-> call gateway -> sukses: approve + mark paid (deduct stok) + complete key
//	-> gagal/timeout: fail + lepas key (kompensasi).
//
// Payment PENDING selalu di-persist SEBELUM call eksternal: crash di antara
// keduanya meninggalkan attempt yang bisa ditemukan job rekonsiliasi, bukan
// idempotency key yang hilang.
func (s *Service) Process(ctx context.Context, memberID int64, req ProcessRequest) (*Payment, error) {
	res, err := s.idem.CheckAndCreate(ctx, req.IdempotencyKey, ResourceTypePayment)
	if err != nil {
		return nil, err
	}
	if res.IsDuplicate() {
		// inti at-most-once: balikin hasil lama, tanpa call gateway / mutasi stok.
		return s.repo.Get(ctx, *res.ResourceID)
	}
	if res.IsInProgress() {
		return nil, idempotency.ErrInProgress
	}

	order, err := s.orders.FindByID(ctx, req.OrderID)
	if err != nil {
		s.releaseKey(ctx, req.IdempotencyKey)
		return nil, err
	}
	if order.MemberID != memberID {
		s.releaseKey(ctx, req.IdempotencyKey)
		return nil, ErrNotFound
	}
	if !order.IsPending() {
		s.releaseKey(ctx, req.IdempotencyKey)
		return nil, ErrDuplicatePayment
	}

	payment := New(order.ID, memberID, order.FinalAmount, req.Method, req.IdempotencyKey)
	if err := s.repo.Create(ctx, payment); err != nil {
		s.releaseKey(ctx, req.IdempotencyKey)
		return nil, err
	}

	resp, err := s.gateway.Approve(ctx, pg.Request{
		OrderNumber: order.OrderNumber,
		Amount:      order.FinalAmount.Amount(),
		CardNumber:  req.CardNumber,
		Method:      string(req.Method),
	})
	if err != nil {
		// error transport diperlakukan sama dengan failure bisnis
		return s.failPayment(ctx, payment, order, err.Error())
	}
	if !resp.Success {
		return s.failPayment(ctx, payment, order, resp.Message)
	}

	if err := payment.Approve(resp.TransactionID, s.now()); err != nil {
		return s.failPayment(ctx, payment, order, err.Error())
	}
	if err := s.repo.Update(ctx, payment); err != nil {
		return s.failPayment(ctx, payment, order, err.Error())
	}

	if err := s.orders.MarkAsPaid(ctx, order.ID); err != nil {
		// charge sudah kejadian tapi stok/status gagal — catat keras utk
		// rekonsiliasi (pg_transaction_id ada di row payment), lalu kompensasi key.
		log.Printf("payment %s: mark paid order=%d gagal setelah approve tx=%s: %v",
			payment.PaymentNumber, order.ID, resp.TransactionID, err)
		return s.failPayment(ctx, payment, order, err.Error())
	}

	if err := s.idem.Complete(ctx, req.IdempotencyKey, ResourceTypePayment,
		payment.ID, payment.PaymentNumber); err != nil {
		return nil, err
	}

	log.Printf("payment success: number=%s order=%d amount=%d",
		payment.PaymentNumber, order.ID, payment.Amount.Amount())
	s.emitter.Emit(events.TopicPaymentAuthorized, events.EventPaymentAuthorized, order.OrderNumber,
		events.PaymentAuthorizedPayload{
			PaymentID:     payment.ID,
			PaymentNumber: payment.PaymentNumber,
			OrderID:       order.ID,
			OrderNumber:   order.OrderNumber,
			Amount:        payment.Amount.Amount(),
			TransactionID: resp.TransactionID,
		})
	return payment, nil
}

// failPayment: payment -> FAILED, key dilepas supaya retry client dengan key
// sama menghasilkan attempt baru (bukan duplicate cache). Order tidak disentuh.
func (s *Service) failPayment(ctx context.Context, payment *Payment, order *orders.Order,
	reason string) (*Payment, error) {

	payment.Fail(reason)
	if err := s.repo.Update(ctx, payment); err != nil {
		log.Printf("payment %s: persist FAILED state: %v", payment.PaymentNumber, err)
	}
	s.releaseKey(ctx, payment.IdempotencyKey)

	log.Printf("payment failed: order=%d reason=%s", payment.OrderID, reason)
	s.emitter.Emit(events.TopicPaymentFailed, events.EventPaymentFailed, order.OrderNumber,
		events.PaymentFailedPayload{
			PaymentID:   payment.ID,
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			Reason:      reason,
		})
	return payment, nil
}

func (s *Service) releaseKey(ctx context.Context, key string) {
	if err := s.idem.Delete(ctx, key, ResourceTypePayment); err != nil {
		// key nyangkut sampai TTL sweep — bukan fatal, tapi harus kelihatan di log
		log.Printf("idempotency release key=%s: %v", key, err)
	}
}

func (s *Service) Get(ctx context.Context, memberID, paymentID int64) (*Payment, error) {
	payment, err := s.repo.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.MemberID != memberID {
		return nil, ErrNotFound
	}
	return payment, nil
}

func (s *Service) GetByOrder(ctx context.Context, memberID, orderID int64) (*Payment, error) {
	payment, err := s.repo.GetByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if payment.MemberID != memberID {
		return nil, ErrNotFound
	}
	return payment, nil
}

// Cancel: void full payment yang sudah APPROVED. Gateway dihubungi dulu;
// kalau void di sisi sana gagal, state kita tidak berubah.
func (s *Service) Cancel(ctx context.Context, memberID, paymentID int64) (*Payment, error) {
	payment, err := s.repo.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.MemberID != memberID {
		return nil, ErrNotFound
	}
	if !payment.Status.IsCancellable() {
		return nil, ErrCannotCancel
	}

	if payment.PgTransactionID != nil {
		resp, err := s.gateway.Cancel(ctx, *payment.PgTransactionID, payment.Amount.Amount())
		if err != nil {
			return nil, ErrCannotCancel.Wrap(err)
		}
		if !resp.Success {
			return nil, ErrCannotCancel
		}
	}

	if err := payment.Cancel(s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, err
	}

	log.Printf("payment cancelled: number=%s", payment.PaymentNumber)
	return payment, nil
}

// Refund: partial/full. Akuntansi refund ada di entity.
func (s *Service) Refund(ctx context.Context, memberID, paymentID, amount int64) (*Payment, error) {
	payment, err := s.repo.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.MemberID != memberID {
		return nil, ErrNotFound
	}

	refund, err := money.New(amount)
	if err != nil {
		return nil, ErrInvalidRefundAmount
	}
	if err := payment.Refund(refund); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}
