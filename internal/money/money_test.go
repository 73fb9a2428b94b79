package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsNegative(t *testing.T) {
	_, err := New(-1)
	assert.ErrorIs(t, err, ErrNegativeAmount)

	m, err := New(0)
	require.NoError(t, err)
	assert.True(t, m.IsZero())
}

func TestSubRejectsNegativeResult(t *testing.T) {
	a := MustNew(1000)
	b := MustNew(3000)

	_, err := a.Sub(b)
	assert.ErrorIs(t, err, ErrNegativeAmount)

	got, err := b.Sub(a)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), got.Amount())
}

func TestSubOrZeroClamps(t *testing.T) {
	total := MustNew(10000)
	discount := MustNew(15000)

	assert.Equal(t, int64(0), total.SubOrZero(discount).Amount())
	assert.Equal(t, int64(5000), discount.SubOrZero(total).Amount())
}

func TestMulQty(t *testing.T) {
	price := MustNew(2500)

	sub, err := price.MulQty(4)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), sub.Amount())

	_, err = price.MulQty(-1)
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestJSONRoundTrip(t *testing.T) {
	b, err := json.Marshal(MustNew(4500))
	require.NoError(t, err)
	assert.Equal(t, "4500", string(b))

	var m Money
	require.NoError(t, json.Unmarshal([]byte("12000"), &m))
	assert.Equal(t, int64(12000), m.Amount())

	assert.Error(t, json.Unmarshal([]byte("-5"), &m))
}
