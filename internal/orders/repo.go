package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-commerce-ledger.git/internal/money"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepo struct{ DB *pgxpool.Pool }

// Create: order + items dalam satu tx.
func (p *PgRepo) Create(ctx context.Context, o *Order) error {
	tx, err := p.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO orders(order_number, member_id, total_amount, discount_amount,
			delivery_fee, final_amount, status, coupon_id,
			recipient_name, recipient_phone, zip_code, address1, address2, delivery_message)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING id, created_at, updated_at`,
		o.OrderNumber, o.MemberID, o.TotalAmount.Amount(), o.DiscountAmount.Amount(),
		o.DeliveryFee.Amount(), o.FinalAmount.Amount(), o.Status, o.CouponID,
		o.Shipping.RecipientName, o.Shipping.RecipientPhone, o.Shipping.ZipCode,
		o.Shipping.Address1, o.Shipping.Address2, o.Shipping.DeliveryMessage).
		Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO order_items(order_id, product_id, option_id, product_name,
				option_name, unit_price, quantity, subtotal)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			RETURNING id`,
			it.OrderID, it.ProductID, it.OptionID, it.ProductName, it.OptionName,
			it.UnitPrice.Amount(), it.Quantity, it.Subtotal.Amount()).
			Scan(&it.ID)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return tx.Commit(ctx)
}

const orderCols = `id, order_number, member_id, total_amount, discount_amount, delivery_fee,
	final_amount, status, coupon_id, recipient_name, recipient_phone, zip_code,
	address1, address2, delivery_message, paid_at, cancelled_at, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var total, discount, fee, final int64
	err := row.Scan(&o.ID, &o.OrderNumber, &o.MemberID, &total, &discount, &fee,
		&final, &o.Status, &o.CouponID, &o.Shipping.RecipientName, &o.Shipping.RecipientPhone,
		&o.Shipping.ZipCode, &o.Shipping.Address1, &o.Shipping.Address2,
		&o.Shipping.DeliveryMessage, &o.PaidAt, &o.CancelledAt, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.TotalAmount = money.MustNew(total)
	o.DiscountAmount = money.MustNew(discount)
	o.DeliveryFee = money.MustNew(fee)
	o.FinalAmount = money.MustNew(final)
	return &o, nil
}

func (p *PgRepo) loadItems(ctx context.Context, o *Order) error {
	rows, err := p.DB.Query(ctx, `
		SELECT id, order_id, product_id, option_id, product_name, option_name,
			unit_price, quantity, subtotal
		FROM order_items WHERE order_id=$1 ORDER BY id`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		var price, subtotal int64
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.OptionID,
			&it.ProductName, &it.OptionName, &price, &it.Quantity, &subtotal); err != nil {
			return err
		}
		it.UnitPrice = money.MustNew(price)
		it.Subtotal = money.MustNew(subtotal)
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

func (p *PgRepo) GetWithItems(ctx context.Context, id int64) (*Order, error) {
	o, err := scanOrder(p.DB.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}
	if err := p.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (p *PgRepo) GetByNumberWithItems(ctx context.Context, number string) (*Order, error) {
	o, err := scanOrder(p.DB.QueryRow(ctx,
		`SELECT `+orderCols+` FROM orders WHERE order_number=$1`, number))
	if err != nil {
		return nil, err
	}
	if err := p.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (p *PgRepo) ListByMember(ctx context.Context, memberID int64, limit, offset int) ([]Order, error) {
	rows, err := p.DB.Query(ctx, `
		SELECT `+orderCols+` FROM orders
		WHERE member_id=$1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, memberID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// UpdateStatus: persist hasil transisi entity (status + timestamps).
func (p *PgRepo) UpdateStatus(ctx context.Context, o *Order) error {
	_, err := p.DB.Exec(ctx, `
		UPDATE orders SET status=$2, paid_at=$3, cancelled_at=$4, updated_at=now()
		WHERE id=$1`,
		o.ID, o.Status, o.PaidAt, o.CancelledAt)
	return err
}
