package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPoints(t *testing.T) {
	t.Run("creates points with amount and currency", func(t *testing.T) {
		p, err := NewPoints(decimal.NewFromInt(100), PTS)
		require.NoError(t, err)
		assert.True(t, p.Amount().Equal(decimal.NewFromInt(100)))
		assert.Equal(t, PTS, p.Currency())
	})

	t.Run("fails with empty currency", func(t *testing.T) {
		_, err := NewPoints(decimal.NewFromInt(100), "")
		require.Error(t, err)
	})

	t.Run("parses from string", func(t *testing.T) {
		p, err := NewPointsFromString("1234.50", USD)
		require.NoError(t, err)
		assert.Equal(t, "1234.50 USD", p.String())
	})

	t.Run("rejects malformed string", func(t *testing.T) {
		_, err := NewPointsFromString("not-a-number", PTS)
		require.Error(t, err)
	})
}

func TestPoints_Arithmetic(t *testing.T) {
	a := NewPointsFromInt(50000, PTS)
	b := NewPointsFromInt(10000, PTS)

	t.Run("add", func(t *testing.T) {
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.True(t, sum.Equals(NewPointsFromInt(60000, PTS)))
	})

	t.Run("subtract", func(t *testing.T) {
		diff, err := a.Subtract(b)
		require.NoError(t, err)
		assert.True(t, diff.Equals(NewPointsFromInt(40000, PTS)))
	})

	t.Run("negate", func(t *testing.T) {
		neg := b.Negate()
		assert.True(t, neg.IsNegative())
		assert.True(t, neg.Equals(NewPointsFromInt(-10000, PTS)))
	})

	t.Run("currency mismatch is rejected", func(t *testing.T) {
		other := NewPointsFromInt(1, USD)
		_, err := a.Add(other)
		require.Error(t, err)
		_, err = a.Subtract(other)
		require.Error(t, err)
		_, err = a.LessThan(other)
		require.Error(t, err)
	})

	t.Run("no precision loss on fractional splits", func(t *testing.T) {
		third, err := NewPointsFromString("0.0001", PTS)
		require.NoError(t, err)
		total := ZeroPTS()
		for range 10000 {
			var addErr error
			total, addErr = total.Add(third)
			require.NoError(t, addErr)
		}
		assert.True(t, total.Equals(NewPointsFromInt(1, PTS)))
	})
}

func TestPoints_Comparison(t *testing.T) {
	small := NewPointsFromInt(5, PTS)
	big := NewPointsFromInt(10, PTS)

	lt, err := small.LessThan(big)
	require.NoError(t, err)
	assert.True(t, lt)

	gte, err := big.GreaterThanOrEqual(small)
	require.NoError(t, err)
	assert.True(t, gte)

	gte, err = big.GreaterThanOrEqual(big)
	require.NoError(t, err)
	assert.True(t, gte)
}

func TestPoints_JSONRoundTrip(t *testing.T) {
	p, err := NewPointsFromString("99.99", EUR)
	require.NoError(t, err)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"99.99","currency":"EUR"}`, string(data))

	var decoded Points
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, p.Equals(decoded))
}

func TestPoints_Scan(t *testing.T) {
	t.Run("scans string amount", func(t *testing.T) {
		var p Points
		require.NoError(t, p.Scan("123.45"))
		assert.Equal(t, DefaultCurrency, p.Currency())
		assert.Equal(t, "123.45", p.Amount().String())
	})

	t.Run("nil scans to zero", func(t *testing.T) {
		var p Points
		require.NoError(t, p.Scan(nil))
		assert.True(t, p.IsZero())
	})

	t.Run("rejects unsupported type", func(t *testing.T) {
		var p Points
		require.Error(t, p.Scan(42))
	})
}
