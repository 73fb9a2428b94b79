package orders

import (
	"net/http"

	"github.com/ariefcatur/go-commerce-ledger.git/internal/apperr"
)

var (
	ErrNotFound = apperr.New("O001", "order tidak ditemukan", http.StatusNotFound)

	// ErrInvalidTransition: transisi di luar tabel validNext.
	ErrInvalidTransition = apperr.New("O002", "status order tidak valid", http.StatusBadRequest)

	ErrCannotCancel = apperr.New("O003", "order tidak bisa dibatalkan", http.StatusBadRequest)

	ErrAlreadyPaid = apperr.New("O005", "order sudah dibayar", http.StatusBadRequest)

	ErrProductNotPurchasable = apperr.New("P002", "produk tidak bisa dibeli", http.StatusBadRequest)
)
