package pg

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockClient: gateway simulasi utk dev & test. Skenario dipilih dari 4 digit
// terakhir nomor kartu:
//
//	1111 -> saldo kurang, 2222 -> timeout, 3333 -> limit kartu,
//	4444 -> kartu hilang/dicuri, selain itu -> sukses.
type MockClient struct {
	mu           sync.Mutex
	transactions map[string]Response
}

func NewMockClient() *MockClient {
	return &MockClient{transactions: map[string]Response{}}
}

func (m *MockClient) Approve(ctx context.Context, req Request) (Response, error) {
	log.Printf("mock pg approve: order=%s amount=%d", req.OrderNumber, req.Amount)

	if len(req.CardNumber) < 4 {
		return FailureResponse("1001", "nomor kartu tidak valid"), nil
	}

	switch req.CardNumber[len(req.CardNumber)-4:] {
	case "1111":
		return FailureResponse("2001", "saldo tidak cukup"), nil
	case "2222":
		// delay pendek sebagai pengganti timeout beneran
		select {
		case <-ctx.Done():
			return Response{}, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
		return TimeoutResponse(), nil
	case "3333":
		return FailureResponse("2002", "limit kartu terlampaui"), nil
	case "4444":
		return FailureResponse("3001", "kartu hilang/dicuri"), nil
	}

	txID := generateTransactionID()
	resp := SuccessResponse(txID)
	m.mu.Lock()
	m.transactions[txID] = resp
	m.mu.Unlock()
	return resp, nil
}

func (m *MockClient) Cancel(ctx context.Context, transactionID string, amount int64) (Response, error) {
	log.Printf("mock pg cancel: tx=%s amount=%d", transactionID, amount)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transactions[transactionID]; !ok {
		return FailureResponse("4001", "transaksi tidak ditemukan"), nil
	}
	delete(m.transactions, transactionID)
	return CancelledResponse(transactionID), nil
}

func (m *MockClient) Inquiry(ctx context.Context, transactionID string) (Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	resp, ok := m.transactions[transactionID]
	if !ok {
		return FailureResponse("4001", "transaksi tidak ditemukan"), nil
	}
	return resp, nil
}

func generateTransactionID() string {
	return "TXN" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:16])
}
