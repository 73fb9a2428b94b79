package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-commerce-ledger.git/internal/payments"
	"github.com/ariefcatur/go-commerce-ledger.git/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

// routes payment didaftarkan di router yang sama dengan orders.

type PaymentsHandler struct {
	Svc   *payments.Service
	Redis *redis.Client
}

func (h *PaymentsHandler) Register(r *chi.Mux) {
	r.Post("/payments", h.process)
	r.Get("/payments/{id}", h.get)
	r.Get("/orders/{id}/payment", h.getByOrder)
	r.Post("/payments/{id}/cancel", h.cancel)
	r.Post("/payments/{id}/refund", h.refund)
}

type paymentView struct {
	ID              int64           `json:"id"`
	PaymentNumber   string          `json:"payment_number"`
	OrderID         int64           `json:"order_id"`
	Amount          int64           `json:"amount"`
	Method          payments.Method `json:"method"`
	Status          payments.Status `json:"status"`
	PgTransactionID *string         `json:"pg_transaction_id,omitempty"`
	FailureReason   *string         `json:"failure_reason,omitempty"`
	RefundedAmount  int64           `json:"refunded_amount"`
	CreatedAt       time.Time       `json:"created_at"`
}

func toPaymentView(p *payments.Payment) paymentView {
	return paymentView{
		ID:              p.ID,
		PaymentNumber:   p.PaymentNumber,
		OrderID:         p.OrderID,
		Amount:          p.Amount.Amount(),
		Method:          p.Method,
		Status:          p.Status,
		PgTransactionID: p.PgTransactionID,
		FailureReason:   p.FailureReason,
		RefundedAmount:  p.RefundedAmount.Amount(),
		CreatedAt:       p.CreatedAt,
	}
}

// process: key idempotency diteruskan verbatim dari header client.
func (h *PaymentsHandler) process(w http.ResponseWriter, r *http.Request) {
	mid, ok := memberID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing member"})
		return
	}

	var req payments.ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	req.IdempotencyKey = r.Header.Get("Idempotency-Key")

	// gateway call bisa lama; timeout lebih longgar dari handler lain
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// fast path: key yang sudah selesai punya payment_id di Redis.
	// Ledger di DB tetap kebenaran — miss di sini cuma berarti jalur lambat.
	cacheKey := fmt.Sprintf(redisx.KeyIdemPayment, req.IdempotencyKey)
	if s, err := h.Redis.Get(ctx, cacheKey).Result(); err == nil && s != "" {
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			if p, err := h.Svc.Get(ctx, mid, id); err == nil {
				writeJSON(w, http.StatusOK, toPaymentView(p))
				return
			}
		}
	}

	p, err := h.Svc.Process(ctx, mid, req)
	if err != nil {
		writeError(w, err)
		return
	}
	if p.Status == payments.StatusApproved {
		_ = h.Redis.Set(ctx, cacheKey, strconv.FormatInt(p.ID, 10), redisx.TTLIdempotency).Err()
	}
	writeJSON(w, http.StatusOK, toPaymentView(p))
}

func (h *PaymentsHandler) get(w http.ResponseWriter, r *http.Request) {
	mid, ok := memberID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing member"})
		return
	}
	id, err := urlID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Svc.Get(ctx, mid, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentView(p))
}

func (h *PaymentsHandler) getByOrder(w http.ResponseWriter, r *http.Request) {
	mid, ok := memberID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing member"})
		return
	}
	orderID, err := urlID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Svc.GetByOrder(ctx, mid, orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentView(p))
}

func (h *PaymentsHandler) cancel(w http.ResponseWriter, r *http.Request) {
	mid, ok := memberID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing member"})
		return
	}
	id, err := urlID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	p, err := h.Svc.Cancel(ctx, mid, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentView(p))
}

type refundReq struct {
	Amount int64 `json:"amount"`
}

func (h *PaymentsHandler) refund(w http.ResponseWriter, r *http.Request) {
	mid, ok := memberID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing member"})
		return
	}
	id, err := urlID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req refundReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Svc.Refund(ctx, mid, id, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentView(p))
}
