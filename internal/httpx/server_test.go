package httpx

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/ariefcatur/go-commerce-ledger.git/internal/idempotency"
	"github.com/ariefcatur/go-commerce-ledger.git/internal/stock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var b errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	return b
}

func TestWriteErrorMapsDomainErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{stock.ErrInsufficientStock, 400, "I001"},
		{stock.ErrConflict, 409, "I002"},
		{stock.ErrNotFound, 404, "I003"},
		{idempotency.ErrKeyRequired, 400, "PAY007"},
		{idempotency.ErrInProgress, 409, "IDEM001"},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		writeError(rec, c.err)

		assert.Equalf(t, c.status, rec.Code, "err=%v", c.err)
		body := decodeError(t, rec)
		assert.Equal(t, c.code, body.Code)
	}
}

func TestWriteErrorRetryableFlag(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, stock.ErrConflict)
	assert.True(t, decodeError(t, rec).Retryable)

	rec = httptest.NewRecorder()
	writeError(rec, stock.ErrNotFound)
	assert.False(t, decodeError(t, rec).Retryable)
}

func TestWriteErrorUnknownIs500(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("boom"))

	assert.Equal(t, 500, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "C005", body.Code)
	// detail internal tidak bocor ke client
	assert.NotContains(t, body.Error, "boom")
}

func TestHealthz(t *testing.T) {
	r := NewRouter()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/healthz", nil)
	r.ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
