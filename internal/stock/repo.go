package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepo struct{ DB *pgxpool.Pool }

const recordCols = `id, product_id, option_id, on_hand, reserved, version, created_at, updated_at`

func scanRecord(row pgx.Row) (*Record, error) {
	var r Record
	err := row.Scan(&r.ID, &r.ProductID, &r.OptionID, &r.OnHand, &r.Reserved,
		&r.Version, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (p *PgRepo) Find(ctx context.Context, productID int64, optionID *int64) (*Record, error) {
	if optionID == nil {
		return scanRecord(p.DB.QueryRow(ctx,
			`SELECT `+recordCols+` FROM stocks WHERE product_id=$1 AND option_id IS NULL`, productID))
	}
	return scanRecord(p.DB.QueryRow(ctx,
		`SELECT `+recordCols+` FROM stocks WHERE product_id=$1 AND option_id=$2`, productID, *optionID))
}

func (p *PgRepo) Create(ctx context.Context, r *Record) error {
	// unique (product_id, option_id): satu record per pasangan, dibuat saat provisioning katalog.
	err := p.DB.QueryRow(ctx, `
		INSERT INTO stocks(product_id, option_id, on_hand, reserved, version)
		VALUES ($1, $2, $3, 0, 1)
		RETURNING id, version, created_at, updated_at`,
		r.ProductID, r.OptionID, r.OnHand).
		Scan(&r.ID, &r.Version, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create stock: %w", err)
	}
	return nil
}

// UpdateConditional: tulis state baru HANYA jika version di DB masih = expected.
// ok=false berarti penulis lain menang duluan; caller harus re-read dan retry.
// History (kalau ada) masuk di transaksi yang sama supaya audit trail tidak
// pernah lepas dari mutasinya.
func (p *PgRepo) UpdateConditional(ctx context.Context, r *Record, expected int64, hist *History) (bool, error) {
	tx, err := p.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `
		UPDATE stocks
		SET on_hand=$1, reserved=$2, version=version+1, updated_at=now()
		WHERE id=$3 AND version=$4`,
		r.OnHand, r.Reserved, r.ID, expected)
	if err != nil {
		return false, err
	}
	if ct.RowsAffected() != 1 {
		return false, nil // token berubah -> kalah race
	}

	if hist != nil {
		if _, err := tx.Exec(ctx, `
			INSERT INTO stock_histories(stock_id, change_type, change_qty, before_qty, after_qty, order_id, reason)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			hist.StockID, hist.ChangeType, hist.ChangeQty, hist.BeforeQty, hist.AfterQty,
			hist.OrderID, hist.Reason); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	r.Version = expected + 1
	return true, nil
}

func (p *PgRepo) ListByProduct(ctx context.Context, productID int64) ([]Record, error) {
	rows, err := p.DB.Query(ctx,
		`SELECT `+recordCols+` FROM stocks WHERE product_id=$1 ORDER BY id`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.ProductID, &r.OptionID, &r.OnHand, &r.Reserved,
			&r.Version, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *PgRepo) ListHistory(ctx context.Context, stockID int64, limit, offset int) ([]History, error) {
	rows, err := p.DB.Query(ctx, `
		SELECT id, stock_id, change_type, change_qty, before_qty, after_qty, order_id, reason, created_at
		FROM stock_histories
		WHERE stock_id=$1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, stockID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []History
	for rows.Next() {
		var h History
		if err := rows.Scan(&h.ID, &h.StockID, &h.ChangeType, &h.ChangeQty, &h.BeforeQty,
			&h.AfterQty, &h.OrderID, &h.Reason, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
