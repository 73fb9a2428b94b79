package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-commerce-ledger.git/internal/money"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepo struct{ DB *pgxpool.Pool }

func (p *PgRepo) Create(ctx context.Context, pay *Payment) error {
	err := p.DB.QueryRow(ctx, `
		INSERT INTO payments(payment_number, order_id, member_id, amount, method,
			status, idempotency_key, refunded_amount)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at, updated_at`,
		pay.PaymentNumber, pay.OrderID, pay.MemberID, pay.Amount.Amount(), pay.Method,
		pay.Status, pay.IdempotencyKey, pay.RefundedAmount.Amount()).
		Scan(&pay.ID, &pay.CreatedAt, &pay.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

const paymentCols = `id, payment_number, order_id, member_id, amount, method, status,
	pg_transaction_id, idempotency_key, failure_reason, approved_at, cancelled_at,
	refunded_amount, created_at, updated_at`

func scanPayment(row pgx.Row) (*Payment, error) {
	var pay Payment
	var amount, refunded int64
	err := row.Scan(&pay.ID, &pay.PaymentNumber, &pay.OrderID, &pay.MemberID, &amount,
		&pay.Method, &pay.Status, &pay.PgTransactionID, &pay.IdempotencyKey,
		&pay.FailureReason, &pay.ApprovedAt, &pay.CancelledAt, &refunded,
		&pay.CreatedAt, &pay.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	pay.Amount = money.MustNew(amount)
	pay.RefundedAmount = money.MustNew(refunded)
	return &pay, nil
}

func (p *PgRepo) Get(ctx context.Context, id int64) (*Payment, error) {
	return scanPayment(p.DB.QueryRow(ctx, `SELECT `+paymentCols+` FROM payments WHERE id=$1`, id))
}

func (p *PgRepo) GetByOrder(ctx context.Context, orderID int64) (*Payment, error) {
	return scanPayment(p.DB.QueryRow(ctx,
		`SELECT `+paymentCols+` FROM payments WHERE order_id=$1 ORDER BY id DESC LIMIT 1`, orderID))
}

// Update: persist hasil mutasi entity (approve/fail/cancel/refund).
func (p *PgRepo) Update(ctx context.Context, pay *Payment) error {
	_, err := p.DB.Exec(ctx, `
		UPDATE payments
		SET status=$2, pg_transaction_id=$3, failure_reason=$4, approved_at=$5,
			cancelled_at=$6, refunded_amount=$7, updated_at=now()
		WHERE id=$1`,
		pay.ID, pay.Status, pay.PgTransactionID, pay.FailureReason, pay.ApprovedAt,
		pay.CancelledAt, pay.RefundedAmount.Amount())
	return err
}
