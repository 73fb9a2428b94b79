package stock

import "time"

// Record = stok satu pasangan (product, option). OptionID nil utk produk tanpa opsi.
// Version adalah conflict token: naik 1 setiap write sukses, dipakai repo utk
// menolak write berbasis bacaan basi.
type Record struct {
	ID        int64
	ProductID int64
	OptionID  *int64
	OnHand    int
	Reserved  int
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Invariant yang dijaga semua mutator: 0 <= Reserved <= OnHand.

func (r *Record) Available() int { return r.OnHand - r.Reserved }

func (r *Record) HasAvailable(qty int) bool { return r.Available() >= qty }

func (r *Record) OutOfStock() bool { return r.Available() <= 0 }

// Reserve: soft hold, hanya menaikkan Reserved. OnHand belum berubah.
func (r *Record) Reserve(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if !r.HasAvailable(qty) {
		return ErrInsufficientStock
	}
	r.Reserved += qty
	return nil
}

// ConfirmReservation: konversi reservasi jadi pengurangan riil.
func (r *Record) ConfirmReservation(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if r.Reserved < qty {
		return ErrInvalidReservation
	}
	r.OnHand -= qty
	r.Reserved -= qty
	return nil
}

// CancelReservation: lepas hold. Tidak ada history — barang tidak pernah keluar dari OnHand.
func (r *Record) CancelReservation(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if r.Reserved < qty {
		return ErrInvalidReservation
	}
	r.Reserved -= qty
	return nil
}

// Deduct: potong langsung OnHand (pembayaran tanpa reservasi sebelumnya).
func (r *Record) Deduct(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if r.OnHand < qty {
		return ErrInsufficientStock
	}
	r.OnHand -= qty
	return nil
}

// Restore: kembalikan OnHand (pembatalan setelah bayar).
func (r *Record) Restore(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	r.OnHand += qty
	return nil
}

// Add: stok masuk (replenishment).
func (r *Record) Add(qty int) error {
	if qty < 0 {
		return ErrInvalidQuantity
	}
	r.OnHand += qty
	return nil
}
