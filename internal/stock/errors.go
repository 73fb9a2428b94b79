package stock

import (
	"net/http"

	"github.com/ariefcatur/go-commerce-ledger.git/internal/apperr"
)

var (
	ErrInsufficientStock = apperr.New("I001", "stok tidak mencukupi", http.StatusBadRequest)

	// ErrConflict: optimistic lock kalah terus sampai retry habis. Retryable.
	ErrConflict = apperr.Retryable("I002", "konflik penulisan stok, coba lagi", http.StatusConflict)

	ErrNotFound = apperr.New("I003", "record stok tidak ditemukan", http.StatusNotFound)

	// ErrInvalidReservation: confirm/cancel melebihi jumlah yang direservasi.
	ErrInvalidReservation = apperr.New("I004", "jumlah melebihi reservasi", http.StatusBadRequest)

	ErrInvalidQuantity = apperr.New("I005", "jumlah harus lebih dari 0", http.StatusBadRequest)
)
