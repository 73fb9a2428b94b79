package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-commerce-ledger.git/internal/events"
	"github.com/ariefcatur/go-commerce-ledger.git/internal/stock"
	"github.com/go-chi/chi/v5"
)

// StockHandler: surface admin utk ledger stok (provisioning, inbound, audit).
type StockHandler struct {
	Ledger  *stock.Ledger
	Emitter *events.Emitter
}

func (h *StockHandler) Register(r *chi.Mux) {
	r.Post("/stocks", h.create)
	r.Get("/stocks/{productID}", h.get)
	r.Post("/stocks/{productID}/add", h.add)
	r.Get("/stocks/{productID}/available", h.available)
	r.Get("/stocks/id/{stockID}/history", h.history)
}

type createStockReq struct {
	ProductID int64  `json:"product_id"`
	OptionID  *int64 `json:"option_id,omitempty"`
	Quantity  int    `json:"quantity"`
}

type stockView struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	OptionID  *int64 `json:"option_id,omitempty"`
	OnHand    int    `json:"on_hand"`
	Reserved  int    `json:"reserved"`
	Available int    `json:"available"`
}

func toStockView(r *stock.Record) stockView {
	return stockView{
		ID:        r.ID,
		ProductID: r.ProductID,
		OptionID:  r.OptionID,
		OnHand:    r.OnHand,
		Reserved:  r.Reserved,
		Available: r.Available(),
	}
}

// optionID dari query param, absen = produk tanpa opsi.
func optionIDParam(r *http.Request) *int64 {
	s := r.URL.Query().Get("option_id")
	if s == "" {
		return nil
	}
	id := int64(atoiDefault(s, 0))
	if id <= 0 {
		return nil
	}
	return &id
}

func (h *StockHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createStockReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	rec, err := h.Ledger.CreateStock(ctx, req.ProductID, req.OptionID, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toStockView(rec))
}

func (h *StockHandler) get(w http.ResponseWriter, r *http.Request) {
	productID, err := urlID(r, "productID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	rec, err := h.Ledger.Get(ctx, productID, optionIDParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStockView(rec))
}

type addStockReq struct {
	OptionID *int64 `json:"option_id,omitempty"`
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason"`
}

func (h *StockHandler) add(w http.ResponseWriter, r *http.Request) {
	productID, err := urlID(r, "productID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req addStockReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Ledger.AddStock(ctx, productID, req.OptionID, req.Quantity, req.Reason); err != nil {
		writeError(w, err)
		return
	}
	rec, err := h.Ledger.Get(ctx, productID, req.OptionID)
	if err != nil {
		writeError(w, err)
		return
	}

	h.Emitter.Emit(events.TopicStockAdjusted, events.EventStockAdjusted,
		strconv.FormatInt(productID, 10),
		events.StockAdjustedPayload{
			ProductID:  productID,
			OptionID:   req.OptionID,
			ChangeType: string(stock.ChangeInbound),
			ChangeQty:  req.Quantity,
		})
	writeJSON(w, http.StatusOK, toStockView(rec))
}

func (h *StockHandler) available(w http.ResponseWriter, r *http.Request) {
	productID, err := urlID(r, "productID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	n, err := h.Ledger.Available(ctx, productID, optionIDParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"available": n})
}

type historyView struct {
	ID         int64            `json:"id"`
	ChangeType stock.ChangeType `json:"change_type"`
	ChangeQty  int              `json:"change_qty"`
	BeforeQty  int              `json:"before_qty"`
	AfterQty   int              `json:"after_qty"`
	OrderID    *int64           `json:"order_id,omitempty"`
	Reason     string           `json:"reason"`
	CreatedAt  time.Time        `json:"created_at"`
}

func (h *StockHandler) history(w http.ResponseWriter, r *http.Request) {
	stockID, err := urlID(r, "stockID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	limit := atoiDefault(r.URL.Query().Get("limit"), 20)
	offset := atoiDefault(r.URL.Query().Get("offset"), 0)

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	hs, err := h.Ledger.HistoryPage(ctx, stockID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]historyView, 0, len(hs))
	for _, x := range hs {
		out = append(out, historyView{
			ID: x.ID, ChangeType: x.ChangeType, ChangeQty: x.ChangeQty,
			BeforeQty: x.BeforeQty, AfterQty: x.AfterQty, OrderID: x.OrderID,
			Reason: x.Reason, CreatedAt: x.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
