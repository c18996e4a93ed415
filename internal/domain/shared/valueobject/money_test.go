package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("valid money", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(100.50), BRL)
		require.NoError(t, err)
		assert.Equal(t, BRL, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(100.50)))
	})

	t.Run("empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(1), "")
		assert.Error(t, err)
	})
}

func TestMoneyArithmetic(t *testing.T) {
	t.Run("add same currency", func(t *testing.T) {
		a := NewMoneyBRLFromFloat(10.25)
		b := NewMoneyBRLFromFloat(5.75)

		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.Equal(t, "16.00", sum.StringFixed(2))
	})

	t.Run("add different currencies", func(t *testing.T) {
		a := NewMoneyBRLFromFloat(10)
		b, _ := NewMoney(decimal.NewFromInt(10), USD)

		_, err := a.Add(b)
		assert.Error(t, err)
	})

	t.Run("subtract", func(t *testing.T) {
		a := NewMoneyBRLFromFloat(10)
		b := NewMoneyBRLFromFloat(3.33)

		diff, err := a.Subtract(b)
		require.NoError(t, err)
		assert.Equal(t, "6.67", diff.StringFixed(2))
	})

	t.Run("multiply by int", func(t *testing.T) {
		m := NewMoneyBRLFromFloat(33.33)
		assert.Equal(t, "99.99", m.MultiplyByInt(3).StringFixed(2))
	})

	t.Run("negate", func(t *testing.T) {
		m := NewMoneyBRLFromFloat(5)
		assert.True(t, m.Negate().IsNegative())
	})
}

func TestMoneyTruncate(t *testing.T) {
	m, err := NewMoneyBRLFromString("33.333333")
	require.NoError(t, err)

	truncated := m.Truncate(2)
	assert.Equal(t, "33.33", truncated.StringFixed(2))

	// truncation never rounds up
	m2, _ := NewMoneyBRLFromString("33.339")
	assert.Equal(t, "33.33", m2.Truncate(2).StringFixed(2))
}

func TestMoneyAllocate(t *testing.T) {
	t.Run("last share absorbs the remainder", func(t *testing.T) {
		m := NewMoneyBRLFromFloat(100.00)

		shares, err := m.Allocate(3)
		require.NoError(t, err)
		require.Len(t, shares, 3)
		assert.Equal(t, "33.33", shares[0].StringFixed(2))
		assert.Equal(t, "33.33", shares[1].StringFixed(2))
		assert.Equal(t, "33.34", shares[2].StringFixed(2))
	})

	t.Run("shares always sum back to the amount", func(t *testing.T) {
		cases := []struct {
			amount string
			parts  int
		}{
			{"0.05", 4},
			{"999.99", 7},
			{"1234.56", 12},
			{"100000000000000.01", 3},
		}
		for _, tc := range cases {
			m, err := NewMoneyBRLFromString(tc.amount)
			require.NoError(t, err)

			shares, err := m.Allocate(tc.parts)
			require.NoError(t, err)

			sum := ZeroBRL()
			for _, s := range shares {
				sum = sum.MustAdd(s)
			}
			assert.True(t, sum.Equals(m), "amount=%s parts=%d sum=%s", tc.amount, tc.parts, sum.StringFixed(2))
		}
	})

	t.Run("single part gets everything", func(t *testing.T) {
		m := NewMoneyBRLFromFloat(47.77)
		shares, err := m.Allocate(1)
		require.NoError(t, err)
		require.Len(t, shares, 1)
		assert.True(t, shares[0].Equals(m))
	})

	t.Run("rejects zero parts", func(t *testing.T) {
		_, err := NewMoneyBRLFromFloat(10).Allocate(0)
		assert.Error(t, err)
	})
}

func TestMoneyComparison(t *testing.T) {
	a := NewMoneyBRLFromFloat(10)
	b := NewMoneyBRLFromFloat(20)

	less, err := a.LessThan(b)
	require.NoError(t, err)
	assert.True(t, less)

	greater, err := b.GreaterThan(a)
	require.NoError(t, err)
	assert.True(t, greater)

	assert.True(t, a.Equals(NewMoneyBRLFromFloat(10)))
	assert.False(t, a.Equals(b))
}

func TestMoneyJSON(t *testing.T) {
	t.Run("marshal", func(t *testing.T) {
		m := NewMoneyBRLFromFloat(99.9)
		data, err := json.Marshal(m)
		require.NoError(t, err)
		assert.JSONEq(t, `{"amount":"99.9","currency":"BRL"}`, string(data))
	})

	t.Run("unmarshal defaults currency", func(t *testing.T) {
		var m Money
		err := json.Unmarshal([]byte(`{"amount":"12.34"}`), &m)
		require.NoError(t, err)
		assert.Equal(t, BRL, m.Currency())
		assert.Equal(t, "12.34", m.StringFixed(2))
	})

	t.Run("unmarshal invalid amount", func(t *testing.T) {
		var m Money
		err := json.Unmarshal([]byte(`{"amount":"abc"}`), &m)
		assert.Error(t, err)
	})
}

func TestMoneyScan(t *testing.T) {
	var m Money
	err := m.Scan("150.00")
	require.NoError(t, err)
	assert.Equal(t, "150.00", m.StringFixed(2))
	assert.Equal(t, BRL, m.Currency())

	err = m.Scan(nil)
	require.NoError(t, err)
	assert.True(t, m.IsZero())
}
