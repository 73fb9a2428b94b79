package money

import (
	"errors"
	"fmt"
)

// Money = nilai uang dalam minor unit (sen/won), selalu >= 0.
// Operasi yang bakal menghasilkan nilai negatif ditolak, bukan di-clamp diam-diam.
type Money struct {
	amount int64
}

var Zero = Money{}

var ErrNegativeAmount = errors.New("money: amount must be >= 0")

func New(amount int64) (Money, error) {
	if amount < 0 {
		return Money{}, ErrNegativeAmount
	}
	return Money{amount: amount}, nil
}

// MustNew untuk nilai konstanta yang sudah pasti valid (threshold, fee).
func MustNew(amount int64) Money {
	m, err := New(amount)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Amount() int64 { return m.amount }

func (m Money) Add(other Money) Money {
	return Money{amount: m.amount + other.amount}
}

func (m Money) Sub(other Money) (Money, error) {
	if m.amount < other.amount {
		return Money{}, ErrNegativeAmount
	}
	return Money{amount: m.amount - other.amount}, nil
}

// SubOrZero: pengurangan dengan clamp eksplisit ke 0 (dipakai saat diskon > total).
func (m Money) SubOrZero(other Money) Money {
	if m.amount < other.amount {
		return Zero
	}
	return Money{amount: m.amount - other.amount}
}

func (m Money) MulQty(qty int) (Money, error) {
	if qty < 0 {
		return Money{}, ErrNegativeAmount
	}
	return Money{amount: m.amount * int64(qty)}, nil
}

func (m Money) GTE(other Money) bool { return m.amount >= other.amount }
func (m Money) LT(other Money) bool  { return m.amount < other.amount }
func (m Money) IsZero() bool         { return m.amount == 0 }

func (m Money) String() string { return fmt.Sprintf("%d", m.amount) }

// Di wire/DB cukup integer polos.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%d", m.amount)), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	var v int64
	if _, err := fmt.Sscanf(string(b), "%d", &v); err != nil {
		return fmt.Errorf("money: decode: %w", err)
	}
	n, err := New(v)
	if err != nil {
		return err
	}
	*m = n
	return nil
}
