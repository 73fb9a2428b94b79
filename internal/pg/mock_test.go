package pg

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approve(t *testing.T, m *MockClient, card string) Response {
	t.Helper()
	resp, err := m.Approve(context.Background(), Request{
		OrderNumber: "ORD-TEST0001", Amount: 10000, CardNumber: card, Method: "CREDIT_CARD",
	})
	require.NoError(t, err)
	return resp
}

func TestMockApproveScenarios(t *testing.T) {
	m := NewMockClient()

	ok := approve(t, m, "4000123412340000")
	assert.True(t, ok.Success)
	assert.True(t, strings.HasPrefix(ok.TransactionID, "TXN"))

	declined := approve(t, m, "4000123412341111")
	assert.False(t, declined.Success)
	assert.Equal(t, "2001", declined.Code)

	timeout := approve(t, m, "4000123412342222")
	assert.False(t, timeout.Success)
	assert.True(t, timeout.IsTimeout())

	limit := approve(t, m, "4000123412343333")
	assert.Equal(t, "2002", limit.Code)

	stolen := approve(t, m, "4000123412344444")
	assert.Equal(t, "3001", stolen.Code)

	short := approve(t, m, "123")
	assert.False(t, short.Success)
	assert.Equal(t, "1001", short.Code)
}

func TestMockCancelAndInquiry(t *testing.T) {
	m := NewMockClient()
	ctx := context.Background()

	ok := approve(t, m, "4000123412340000")

	inq, err := m.Inquiry(ctx, ok.TransactionID)
	require.NoError(t, err)
	assert.True(t, inq.Success)

	cancelled, err := m.Cancel(ctx, ok.TransactionID, 10000)
	require.NoError(t, err)
	assert.True(t, cancelled.Success)

	// transaksi sudah di-void, tidak bisa ditemukan lagi
	gone, err := m.Cancel(ctx, ok.TransactionID, 10000)
	require.NoError(t, err)
	assert.False(t, gone.Success)
	assert.Equal(t, "4001", gone.Code)
}
