package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-commerce-ledger.git/internal/catalog"
	"github.com/ariefcatur/go-commerce-ledger.git/internal/orders"
	"github.com/ariefcatur/go-commerce-ledger.git/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

// Layer auth di luar scope repo ini; identitas member datang dari header yang
// diisi gateway di depan. Kosong = 401.
func memberID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.Header.Get("X-Member-Id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func urlID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

type OrdersHandler struct {
	Svc     *orders.Service
	Catalog *catalog.PgCatalog
	Redis   *redis.Client
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.create)
	r.Get("/orders", h.list)
	r.Get("/orders/{id}", h.get)
	r.Get("/orders/number/{number}/status", h.status)
	r.Post("/orders/{id}/cancel", h.cancel)
	r.Get("/products", h.listProducts)
}

type orderItemView struct {
	ProductID   int64   `json:"product_id"`
	OptionID    *int64  `json:"option_id,omitempty"`
	ProductName string  `json:"product_name"`
	OptionName  *string `json:"option_name,omitempty"`
	UnitPrice   int64   `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	Subtotal    int64   `json:"subtotal"`
}

type orderView struct {
	ID             int64           `json:"id"`
	OrderNumber    string          `json:"order_number"`
	Status         orders.Status   `json:"status"`
	Items          []orderItemView `json:"items,omitempty"`
	TotalAmount    int64           `json:"total_amount"`
	DiscountAmount int64           `json:"discount_amount"`
	DeliveryFee    int64           `json:"delivery_fee"`
	FinalAmount    int64           `json:"final_amount"`
	CreatedAt      time.Time       `json:"created_at"`
}

func toOrderView(o *orders.Order) orderView {
	v := orderView{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		Status:         o.Status,
		TotalAmount:    o.TotalAmount.Amount(),
		DiscountAmount: o.DiscountAmount.Amount(),
		DeliveryFee:    o.DeliveryFee.Amount(),
		FinalAmount:    o.FinalAmount.Amount(),
		CreatedAt:      o.CreatedAt,
	}
	for _, it := range o.Items {
		v.Items = append(v.Items, orderItemView{
			ProductID:   it.ProductID,
			OptionID:    it.OptionID,
			ProductName: it.ProductName,
			OptionName:  it.OptionName,
			UnitPrice:   it.UnitPrice.Amount(),
			Quantity:    it.Quantity,
			Subtotal:    it.Subtotal.Amount(),
		})
	}
	return v
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	mid, ok := memberID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing member"})
		return
	}

	var req orders.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing items"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Svc.Create(ctx, mid, req)
	if err != nil {
		writeError(w, err)
		return
	}

	// cache status awal biar GET status cepat
	statusKey := fmt.Sprintf(redisx.KeyOrderStatus, o.OrderNumber)
	_ = h.Redis.Set(ctx, statusKey, `{"status":"PENDING_PAYMENT"}`, redisx.TTLStatusCache).Err()

	writeJSON(w, http.StatusCreated, toOrderView(o))
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
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

	o, err := h.Svc.Get(ctx, mid, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderView(o))
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	mid, ok := memberID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing member"})
		return
	}
	limit := atoiDefault(r.URL.Query().Get("limit"), 20)
	offset := atoiDefault(r.URL.Query().Get("offset"), 0)

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	os, err := h.Svc.List(ctx, mid, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]orderView, 0, len(os))
	for i := range os {
		out = append(out, toOrderView(&os[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// status: coba cache dulu, fallback DB (lewat service) lalu isi cache.
func (h *OrdersHandler) status(w http.ResponseWriter, r *http.Request) {
	mid, ok := memberID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing member"})
		return
	}
	number := chi.URLParam(r, "number")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, number)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	o, err := h.Svc.GetByNumber(ctx, mid, number)
	if err != nil {
		writeError(w, err)
		return
	}
	body, _ := json.Marshal(map[string]any{"status": o.Status})
	_ = h.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
	writeJSON(w, http.StatusOK, json.RawMessage(body))
}

func (h *OrdersHandler) cancel(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Svc.Cancel(ctx, mid, id)
	if err != nil {
		writeError(w, err)
		return
	}

	statusKey := fmt.Sprintf(redisx.KeyOrderStatus, o.OrderNumber)
	_ = h.Redis.Set(ctx, statusKey, `{"status":"CANCELLED"}`, redisx.TTLStatusCache).Err()
	writeJSON(w, http.StatusOK, toOrderView(o))
}

func (h *OrdersHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Catalog.ListProducts(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
