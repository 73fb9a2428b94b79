package payments

import (
	"strings"
	"time"

	"github.com/ariefcatur/go-commerce-ledger.git/internal/money"
	"github.com/google/uuid"
)

type Status string

const (
	StatusPending           Status = "PENDING"
	StatusApproved          Status = "APPROVED"
	StatusFailed            Status = "FAILED"
	StatusCancelled         Status = "CANCELLED"
	StatusRefunded          Status = "REFUNDED"
	StatusPartiallyRefunded Status = "PARTIALLY_REFUNDED"
)

func (s Status) IsCancellable() bool { return s == StatusApproved }

func (s Status) IsRefundable() bool {
	return s == StatusApproved || s == StatusPartiallyRefunded
}

func (s Status) IsFinal() bool { return s == StatusFailed || s == StatusRefunded }

type Method string

const (
	MethodCreditCard     Method = "CREDIT_CARD"
	MethodDebitCard      Method = "DEBIT_CARD"
	MethodBankTransfer   Method = "BANK_TRANSFER"
	MethodVirtualAccount Method = "VIRTUAL_ACCOUNT"
	MethodMobilePayment  Method = "MOBILE_PAYMENT"
)

// Payment = satu attempt pembayaran. Satu row walau client retry dengan key
// sama (retry yang duplicate tidak bikin row baru).
// RefundedAmount monoton naik; status + RefundedAmount bareng-bareng menentukan
// eligibility refund/cancel.
type Payment struct {
	ID              int64
	PaymentNumber   string
	OrderID         int64
	MemberID        int64
	Amount          money.Money
	Method          Method
	Status          Status
	PgTransactionID *string
	IdempotencyKey  string
	FailureReason   *string
	ApprovedAt      *time.Time
	CancelledAt     *time.Time
	RefundedAmount  money.Money
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func New(orderID, memberID int64, amount money.Money, method Method, idempotencyKey string) *Payment {
	return &Payment{
		PaymentNumber:  generatePaymentNumber(),
		OrderID:        orderID,
		MemberID:       memberID,
		Amount:         amount,
		Method:         method,
		Status:         StatusPending,
		IdempotencyKey: idempotencyKey,
		RefundedAmount: money.Zero,
	}
}

func generatePaymentNumber() string {
	return "PAY-" + strings.ToUpper(uuid.NewString()[:8])
}

// Approve hanya legal dari PENDING; selain itu berarti attempt dobel.
func (p *Payment) Approve(pgTransactionID string, now time.Time) error {
	if p.Status != StatusPending {
		return ErrDuplicatePayment
	}
	p.Status = StatusApproved
	p.PgTransactionID = &pgTransactionID
	p.ApprovedAt = &now
	return nil
}

func (p *Payment) Fail(reason string) {
	p.Status = StatusFailed
	p.FailureReason = &reason
}

// Cancel: full refund sekali jalan.
func (p *Payment) Cancel(now time.Time) error {
	if !p.Status.IsCancellable() {
		return ErrCannotCancel
	}
	p.Status = StatusCancelled
	p.CancelledAt = &now
	p.RefundedAmount = p.Amount
	return nil
}

// Refund: akumulasi. Mencapai full amount -> REFUNDED, selain itu PARTIALLY_REFUNDED.
func (p *Payment) Refund(amount money.Money) error {
	if !p.Status.IsRefundable() {
		return ErrCannotCancel
	}
	if amount.IsZero() {
		return ErrInvalidRefundAmount
	}

	newTotal := p.RefundedAmount.Add(amount)
	if newTotal.GTE(p.Amount) {
		p.RefundedAmount = p.Amount
		p.Status = StatusRefunded
	} else {
		p.RefundedAmount = newTotal
		p.Status = StatusPartiallyRefunded
	}
	return nil
}

func (p *Payment) RefundableAmount() money.Money {
	m, err := p.Amount.Sub(p.RefundedAmount)
	if err != nil {
		return money.Zero // RefundedAmount tidak pernah > Amount
	}
	return m
}

func (p *Payment) IsApproved() bool { return p.Status == StatusApproved }
func (p *Payment) IsPending() bool  { return p.Status == StatusPending }
