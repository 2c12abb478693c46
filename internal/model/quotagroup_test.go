package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metered(current float64, period, max *float64) *QuotaGroup {
	return &QuotaGroup{
		Name:        "test",
		CurrentTime: current,
		PeriodTime:  period,
		MaxTime:     max,
	}
}

func TestQuotaGroupRegimes(t *testing.T) {
	t.Run("nil period time is unlimited", func(t *testing.T) {
		q := metered(5, nil, nil)
		assert.True(t, q.Unlimited())
		assert.False(t, q.Exempt())
		assert.False(t, q.Metered())
	})

	t.Run("period time of -1 is quota-exempt", func(t *testing.T) {
		q := metered(5, float64Ptr(QuotaExempt), nil)
		assert.False(t, q.Unlimited())
		assert.True(t, q.Exempt())
		assert.False(t, q.Metered())
	})

	t.Run("any other period time is metered", func(t *testing.T) {
		q := metered(5, float64Ptr(10), nil)
		assert.True(t, q.Metered())
	})
}

func TestQuotaGroupAvailableTime(t *testing.T) {
	assert.Equal(t, float64(UnlimitedTimeSentinel), metered(5, nil, nil).AvailableTime())
	assert.Equal(t, float64(UnlimitedTimeSentinel), metered(5, float64Ptr(QuotaExempt), nil).AvailableTime())
	assert.Equal(t, 5.0, metered(5, float64Ptr(10), nil).AvailableTime())

	// Overdraft is reported as-is.
	assert.Equal(t, -2.5, metered(-2.5, float64Ptr(10), nil).AvailableTime())
}

func TestQuotaGroupAddTime(t *testing.T) {
	t.Run("metered group tracks deltas", func(t *testing.T) {
		q := metered(5, float64Ptr(10), nil)
		assert.True(t, q.AddTime(3))
		assert.Equal(t, 8.0, q.CurrentTime)
		assert.True(t, q.SubtractTime(10))
		assert.Equal(t, -2.0, q.CurrentTime)
	})

	t.Run("unmetered groups ignore deltas", func(t *testing.T) {
		q := metered(5, nil, nil)
		assert.False(t, q.AddTime(3))
		assert.Equal(t, 5.0, q.CurrentTime)

		q = metered(5, float64Ptr(QuotaExempt), nil)
		assert.False(t, q.SubtractTime(3))
		assert.Equal(t, 5.0, q.CurrentTime)
	})

	t.Run("zero delta reports no change", func(t *testing.T) {
		q := metered(5, float64Ptr(10), nil)
		assert.False(t, q.AddTime(0))
	})
}

func TestQuotaGroupResetQuota(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	t.Run("reset grants the period time", func(t *testing.T) {
		q := metered(2, float64Ptr(10), nil)
		require.True(t, q.ResetQuota(now))
		assert.Equal(t, 12.0, q.CurrentTime)
		assert.Equal(t, 12.0, q.QuotaResetTime)
		assert.Equal(t, now, q.LastReset)
	})

	t.Run("reset saturates at the maximum balance", func(t *testing.T) {
		q := metered(10, float64Ptr(5), float64Ptr(12))
		require.True(t, q.ResetQuota(now))
		assert.Equal(t, 12.0, q.CurrentTime)
		assert.Equal(t, 12.0, q.QuotaResetTime)
	})

	t.Run("reset recovers an overdrafted balance", func(t *testing.T) {
		q := metered(-3, float64Ptr(10), float64Ptr(12))
		require.True(t, q.ResetQuota(now))
		assert.Equal(t, 7.0, q.CurrentTime)
	})

	t.Run("unmetered groups don't reset", func(t *testing.T) {
		q := metered(5, nil, nil)
		assert.False(t, q.ResetQuota(now))
		assert.Equal(t, 5.0, q.CurrentTime)
	})
}

func TestQuotaGroupValidate(t *testing.T) {
	q := &QuotaGroup{Name: "main", Main: true, UpdateTimeOnPeriod: true}
	assert.NoError(t, q.Validate())

	q = &QuotaGroup{Name: "main", Main: true, UpdateTimeOnPeriod: false}
	assert.Error(t, q.Validate())

	q = &QuotaGroup{Main: false}
	assert.Error(t, q.Validate())
}

func TestLaboratoryAvailableTime(t *testing.T) {
	t.Run("lab without a quota group is inexhaustible", func(t *testing.T) {
		lab := &Laboratory{Name: "orphan"}
		assert.Equal(t, float64(UnlimitedTimeSentinel), lab.GetAvailableTime())
		assert.False(t, lab.Metered())
	})

	t.Run("lab delegates to its quota group", func(t *testing.T) {
		lab := &Laboratory{Name: "billed", QuotaGroup: metered(7, float64Ptr(10), nil)}
		assert.Equal(t, 7.0, lab.GetAvailableTime())
		assert.True(t, lab.Metered())
	})
}
