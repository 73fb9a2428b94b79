package pg

import (
	"context"
	"time"
)

// Request utk approve ke gateway. Amount dalam minor unit.
type Request struct {
	OrderNumber string
	Amount      int64
	CardNumber  string
	Method      string
}

type Response struct {
	Success       bool
	TransactionID string
	Code          string
	Message       string
	ProcessedAt   time.Time
}

func SuccessResponse(transactionID string) Response {
	return Response{Success: true, TransactionID: transactionID, Code: "0000",
		Message: "approved", ProcessedAt: time.Now()}
}

func FailureResponse(code, message string) Response {
	return Response{Success: false, Code: code, Message: message, ProcessedAt: time.Now()}
}

func CancelledResponse(transactionID string) Response {
	return Response{Success: true, TransactionID: transactionID, Code: "0000",
		Message: "cancelled", ProcessedAt: time.Now()}
}

// Timeout dari gateway diperlakukan sama dengan failure bisnis oleh orchestrator.
func TimeoutResponse() Response {
	return Response{Success: false, Code: "9999", Message: "processing timeout", ProcessedAt: time.Now()}
}

func (r Response) IsTimeout() bool { return r.Code == "9999" }

// Client = kontrak payment gateway eksternal. Diasumsikan at-most-once per call,
// tapi TIDAK diasumsikan idempotent — makanya idempotency ledger ada di sisi kita.
type Client interface {
	Approve(ctx context.Context, req Request) (Response, error)
	Cancel(ctx context.Context, transactionID string, amount int64) (Response, error)
	Inquiry(ctx context.Context, transactionID string) (Response, error)
}
