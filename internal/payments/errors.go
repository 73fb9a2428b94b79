package payments

import (
	"net/http"

	"github.com/ariefcatur/go-commerce-ledger.git/internal/apperr"
)

var (
	ErrPaymentFailed = apperr.New("PAY001", "pembayaran gagal", http.StatusPaymentRequired)

	// ErrDuplicatePayment: approve di luar PENDING, atau bayar order non-pending.
	ErrDuplicatePayment = apperr.New("PAY002", "pembayaran sudah diproses", http.StatusConflict)

	ErrNotFound = apperr.New("PAY003", "pembayaran tidak ditemukan", http.StatusNotFound)

	ErrInvalidRefundAmount = apperr.New("PAY004", "jumlah refund tidak valid", http.StatusBadRequest)

	ErrCannotCancel = apperr.New("PAY006", "pembayaran tidak bisa dibatalkan", http.StatusBadRequest)
)
