package stock

import (
	"context"
	"errors"
	"time"

	"github.com/ariefcatur/go-commerce-ledger.git/internal/apperr"
)

// Repo: persistence utk ledger. UpdateConditional wajib atomik
// (conditional write pada conflict token + insert history dalam satu tx).
type Repo interface {
	Find(ctx context.Context, productID int64, optionID *int64) (*Record, error)
	Create(ctx context.Context, r *Record) error
	UpdateConditional(ctx context.Context, r *Record, expected int64, hist *History) (bool, error)
	ListByProduct(ctx context.Context, productID int64) ([]Record, error)
	ListHistory(ctx context.Context, stockID int64, limit, offset int) ([]History, error)
}

const (
	maxRetry    = 3
	baseBackoff = 100 * time.Millisecond
)

// Ledger menjalankan loop read -> mutasi -> conditional write.
// Kalah token = re-read lalu retry dengan backoff 100/200/400ms; habis retry -> ErrConflict.
type Ledger struct {
	repo Repo

	// sleep di-inject-kan supaya test tidak perlu menunggu backoff beneran.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewLedger(repo Repo) *Ledger {
	return &Ledger{repo: repo, sleep: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// mutate: unit yang di-retry atomik. fn memutasi record in-place dan boleh
// mengembalikan history yang harus ikut di-commit. Error domain dari fn
// (insufficient dll.) tidak di-retry — hanya kekalahan token yang di-retry.
func (l *Ledger) mutate(ctx context.Context, productID int64, optionID *int64,
	fn func(r *Record) (*History, error)) error {

	for attempt := 0; attempt < maxRetry; attempt++ {
		if attempt > 0 {
			if err := l.sleep(ctx, baseBackoff<<(attempt-1)); err != nil {
				return err
			}
		}

		r, err := l.repo.Find(ctx, productID, optionID)
		if err != nil {
			return err
		}
		expected := r.Version

		hist, err := fn(r)
		if err != nil {
			return err
		}

		ok, err := l.repo.UpdateConditional(ctx, r, expected, hist)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return ErrConflict
}

func (l *Ledger) Reserve(ctx context.Context, productID int64, optionID *int64, qty int) error {
	return l.mutate(ctx, productID, optionID, func(r *Record) (*History, error) {
		return nil, r.Reserve(qty)
	})
}

func (l *Ledger) ConfirmReservation(ctx context.Context, productID int64, optionID *int64, qty int, orderID int64) error {
	return l.mutate(ctx, productID, optionID, func(r *Record) (*History, error) {
		if err := r.ConfirmReservation(qty); err != nil {
			return nil, err
		}
		return newDeductHistory(r, qty, &orderID), nil
	})
}

func (l *Ledger) CancelReservation(ctx context.Context, productID int64, optionID *int64, qty int) error {
	return l.mutate(ctx, productID, optionID, func(r *Record) (*History, error) {
		return nil, r.CancelReservation(qty)
	})
}

// DeductStock: dipanggil flow pembayaran per line item, tanpa reservasi sebelumnya.
func (l *Ledger) DeductStock(ctx context.Context, productID int64, optionID *int64, qty int, orderID int64) error {
	return l.mutate(ctx, productID, optionID, func(r *Record) (*History, error) {
		if err := r.Deduct(qty); err != nil {
			return nil, err
		}
		return newDeductHistory(r, qty, &orderID), nil
	})
}

// RestoreStock: flow pembatalan setelah bayar.
func (l *Ledger) RestoreStock(ctx context.Context, productID int64, optionID *int64, qty int, orderID int64) error {
	return l.mutate(ctx, productID, optionID, func(r *Record) (*History, error) {
		if err := r.Restore(qty); err != nil {
			return nil, err
		}
		return newRestoreHistory(r, qty, &orderID), nil
	})
}

func (l *Ledger) AddStock(ctx context.Context, productID int64, optionID *int64, qty int, reason string) error {
	return l.mutate(ctx, productID, optionID, func(r *Record) (*History, error) {
		if err := r.Add(qty); err != nil {
			return nil, err
		}
		return newInboundHistory(r, qty, reason), nil
	})
}

func (l *Ledger) Available(ctx context.Context, productID int64, optionID *int64) (int, error) {
	r, err := l.repo.Find(ctx, productID, optionID)
	if err != nil {
		return 0, err
	}
	return r.Available(), nil
}

func (l *Ledger) HasAvailable(ctx context.Context, productID int64, optionID *int64, qty int) (bool, error) {
	r, err := l.repo.Find(ctx, productID, optionID)
	if err != nil {
		return false, err
	}
	return r.HasAvailable(qty), nil
}

// CreateStock: provisioning katalog. Dipanggil sekali per (product, option).
func (l *Ledger) CreateStock(ctx context.Context, productID int64, optionID *int64, qty int) (*Record, error) {
	if qty < 0 {
		return nil, ErrInvalidQuantity
	}
	r := &Record{ProductID: productID, OptionID: optionID, OnHand: qty}
	if err := l.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (l *Ledger) Get(ctx context.Context, productID int64, optionID *int64) (*Record, error) {
	return l.repo.Find(ctx, productID, optionID)
}

func (l *Ledger) ListByProduct(ctx context.Context, productID int64) ([]Record, error) {
	return l.repo.ListByProduct(ctx, productID)
}

func (l *Ledger) HistoryPage(ctx context.Context, stockID int64, limit, offset int) ([]History, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return l.repo.ListHistory(ctx, stockID, limit, offset)
}

// IsRetryable: helper utk caller yang mau membedakan conflict dari error fatal.
func IsRetryable(err error) bool {
	var e *apperr.Error
	return errors.As(err, &e) && e.Retryable
}
