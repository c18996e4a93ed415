package finance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestor/backend/internal/domain/shared/valueobject"
)

func TestGenerateSchedule(t *testing.T) {
	firstDue := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("splits with remainder on last installment", func(t *testing.T) {
		total := valueobject.NewMoneyBRLFromFloat(100.00)

		installments, err := GenerateSchedule(total, Recurrence{InstallmentCount: 3, IntervalDays: 30}, firstDue)
		require.NoError(t, err)
		require.Len(t, installments, 3)

		assert.Equal(t, "33.33", installments[0].Amount.StringFixed(2))
		assert.Equal(t, "33.33", installments[1].Amount.StringFixed(2))
		assert.Equal(t, "33.34", installments[2].Amount.StringFixed(2))
	})

	t.Run("installments always sum to total", func(t *testing.T) {
		cases := []struct {
			amount string
			count  int
		}{
			{"100.00", 3},
			{"0.01", 1},
			{"0.05", 4},
			{"999.99", 7},
			{"1234.56", 12},
			{"10.00", 3},
		}
		for _, tc := range cases {
			total, err := valueobject.NewMoneyBRLFromString(tc.amount)
			require.NoError(t, err)

			installments, err := GenerateSchedule(total, Recurrence{InstallmentCount: tc.count, IntervalDays: 15}, firstDue)
			require.NoError(t, err)
			require.Len(t, installments, tc.count)

			sum := valueobject.ZeroBRL()
			for _, inst := range installments {
				sum = sum.MustAdd(inst.Amount)
			}
			assert.True(t, sum.Equals(total), "amount=%s count=%d sum=%s", tc.amount, tc.count, sum.StringFixed(2))

			// no installment before the last differs from the base
			for i := 0; i < tc.count-1; i++ {
				assert.True(t, installments[i].Amount.Equals(installments[0].Amount))
			}
		}
	})

	t.Run("due dates advance by the interval", func(t *testing.T) {
		total := valueobject.NewMoneyBRLFromFloat(300)

		installments, err := GenerateSchedule(total, Recurrence{InstallmentCount: 3, IntervalDays: 30}, firstDue)
		require.NoError(t, err)

		assert.Equal(t, firstDue, installments[0].DueDate)
		assert.Equal(t, firstDue.AddDate(0, 0, 30), installments[1].DueDate)
		assert.Equal(t, firstDue.AddDate(0, 0, 60), installments[2].DueDate)
	})

	t.Run("single installment gets the whole total", func(t *testing.T) {
		total := valueobject.NewMoneyBRLFromFloat(47.77)

		installments, err := GenerateSchedule(total, Recurrence{InstallmentCount: 1}, firstDue)
		require.NoError(t, err)
		require.Len(t, installments, 1)
		assert.True(t, installments[0].Amount.Equals(total))
		assert.Equal(t, 1, installments[0].Number)
	})

	t.Run("numbers are sequential starting at one", func(t *testing.T) {
		total := valueobject.NewMoneyBRLFromFloat(60)

		installments, err := GenerateSchedule(total, Recurrence{InstallmentCount: 6, IntervalDays: 7}, firstDue)
		require.NoError(t, err)
		for i, inst := range installments {
			assert.Equal(t, i+1, inst.Number)
			assert.Equal(t, InstallmentStatusPending, inst.Status)
		}
	})

	t.Run("rejects zero installment count", func(t *testing.T) {
		_, err := GenerateSchedule(valueobject.NewMoneyBRLFromFloat(10), Recurrence{InstallmentCount: 0}, firstDue)
		assert.Error(t, err)
	})

	t.Run("rejects count above maximum", func(t *testing.T) {
		_, err := GenerateSchedule(valueobject.NewMoneyBRLFromFloat(10), Recurrence{InstallmentCount: MaxInstallments + 1, IntervalDays: 1}, firstDue)
		assert.Error(t, err)
	})

	t.Run("zero interval puts every installment on the same day", func(t *testing.T) {
		installments, err := GenerateSchedule(valueobject.NewMoneyBRLFromFloat(10), Recurrence{InstallmentCount: 2}, firstDue)
		require.NoError(t, err)
		require.Len(t, installments, 2)
		assert.Equal(t, firstDue, installments[0].DueDate)
		assert.Equal(t, firstDue, installments[1].DueDate)
	})

	t.Run("rejects negative interval", func(t *testing.T) {
		_, err := GenerateSchedule(valueobject.NewMoneyBRLFromFloat(10), Recurrence{InstallmentCount: 2, IntervalDays: -1}, firstDue)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive total", func(t *testing.T) {
		_, err := GenerateSchedule(valueobject.ZeroBRL(), Recurrence{InstallmentCount: 1}, firstDue)
		assert.Error(t, err)

		_, err = GenerateSchedule(valueobject.NewMoneyBRLFromFloat(-5), Recurrence{InstallmentCount: 1}, firstDue)
		assert.Error(t, err)
	})
}

func TestInstallmentSettle(t *testing.T) {
	now := time.Now()

	t.Run("settle pending installment", func(t *testing.T) {
		inst := &Installment{Number: 1, Amount: valueobject.NewMoneyBRLFromFloat(10), Status: InstallmentStatusPending}

		err := inst.Settle(now)
		require.NoError(t, err)
		assert.True(t, inst.IsSettled())
		require.NotNil(t, inst.SettledAt)
		assert.Equal(t, now, *inst.SettledAt)
	})

	t.Run("settle twice fails", func(t *testing.T) {
		inst := &Installment{Number: 1, Amount: valueobject.NewMoneyBRLFromFloat(10), Status: InstallmentStatusSettled}
		assert.Error(t, inst.Settle(now))
	})

	t.Run("settle cancelled fails", func(t *testing.T) {
		inst := &Installment{Number: 1, Amount: valueobject.NewMoneyBRLFromFloat(10), Status: InstallmentStatusCancelled}
		assert.Error(t, inst.Settle(now))
	})
}
