package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func float64Ptr(v float64) *float64 {
	return &v
}

func TestPriority(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	t.Run("no deadline and no asap scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, Priority(false, nil, now))
	})

	t.Run("asap without deadline scores 100", func(t *testing.T) {
		assert.Equal(t, 100.0, Priority(true, nil, now))
	})

	t.Run("overdue beats asap", func(t *testing.T) {
		overdue := timePtr(now.Add(-time.Hour))
		assert.Equal(t, 101.0, Priority(true, overdue, now))
		assert.Equal(t, 101.0, Priority(false, overdue, now))
	})

	t.Run("deadline at the current instant is overdue", func(t *testing.T) {
		assert.Equal(t, 101.0, Priority(false, timePtr(now), now))
	})

	t.Run("deadline beyond the window scores zero", func(t *testing.T) {
		farOut := timePtr(now.AddDate(0, 0, 30))
		assert.Equal(t, 0.0, Priority(false, farOut, now))
	})

	t.Run("deadline seven days out scores fifty", func(t *testing.T) {
		week := timePtr(now.AddDate(0, 0, 7))
		assert.InDelta(t, 50.0, Priority(false, week, now), 0.01)
	})

	t.Run("ramp values are rounded to two decimals", func(t *testing.T) {
		threeDays := timePtr(now.AddDate(0, 0, 3))
		got := Priority(false, threeDays, now)
		assert.InDelta(t, 78.57, got, 0.005)
	})

	t.Run("asap with a live deadline takes the larger score", func(t *testing.T) {
		week := timePtr(now.AddDate(0, 0, 7))
		assert.Equal(t, 100.0, Priority(true, week, now))
	})
}

func TestComputeTimeSpent(t *testing.T) {
	day := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	nextDay := day.AddDate(0, 0, 1)
	at := func(hour, minute int) *time.Time {
		return timePtr(time.Date(2026, time.March, 10, hour, minute, 0, 0, time.UTC))
	}

	t.Run("missing fields report no value", func(t *testing.T) {
		_, ok := ComputeTimeSpent(nil, at(9, 0), timePtr(day), at(17, 0), 12, nil)
		assert.False(t, ok)
		_, ok = ComputeTimeSpent(timePtr(day), at(9, 0), timePtr(day), nil, 12, nil)
		assert.False(t, ok)
	})

	t.Run("same-day run bills the clock difference", func(t *testing.T) {
		hours, ok := ComputeTimeSpent(timePtr(day), at(9, 0), timePtr(day), at(17, 30), 12, nil)
		require.True(t, ok)
		assert.InDelta(t, 8.5, hours, 0.001)
	})

	t.Run("end before start wraps midnight", func(t *testing.T) {
		hours, ok := ComputeTimeSpent(timePtr(day), at(22, 0), timePtr(day), at(2, 0), 12, nil)
		require.True(t, ok)
		assert.InDelta(t, 4.0, hours, 0.001)
	})

	t.Run("multi-day run bills the flat night constant", func(t *testing.T) {
		hours, ok := ComputeTimeSpent(timePtr(day), at(9, 0), timePtr(nextDay), at(17, 0), 14.5, nil)
		require.True(t, ok)
		assert.InDelta(t, 14.5, hours, 0.001)
	})

	t.Run("compensation adjusts a same-day run", func(t *testing.T) {
		hours, ok := ComputeTimeSpent(timePtr(day), at(9, 0), timePtr(day), at(17, 0), 12, float64Ptr(-2))
		require.True(t, ok)
		assert.InDelta(t, 6.0, hours, 0.001)
	})
}

func TestBuildAggregates(t *testing.T) {
	probes := []Probe{
		{Number: 1, ProcStatus: ProcStatusSCNR, SampleType: "c", Dmin: float64Ptr(0.84)},
		{Number: 2, ProcStatus: "", SampleType: "", Dmin: nil},
		{Number: 3, ProcStatus: ProcStatusSCRS, SampleType: "p", Dmin: float64Ptr(1.2)},
	}

	agg := BuildAggregates(probes)

	assert.Equal(t, 3, agg.ProbeCount)
	assert.Equal(t, "<♠>", agg.ProcStatus)
	assert.Equal(t, "c♠p", agg.SampleType)
	assert.Equal(t, "0.84♠1.2", agg.Dmin)
}

func TestBuildAggregatesEmpty(t *testing.T) {
	agg := BuildAggregates(nil)

	assert.Equal(t, 0, agg.ProbeCount)
	assert.Equal(t, "", agg.ProcStatus)
}

func TestDeriveDataStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []string
		expected string
	}{
		{"no probes", nil, DataStatusNoData},
		{"only dataless probes", []string{ProcStatusTrash, ProcStatusCancelled}, DataStatusNoData},
		{"any probe awaiting reduction", []string{ProcStatusSCRS, ProcStatusSCNR}, DataStatusNeedReduction},
		{"re-reduction counts as awaiting reduction", []string{ProcStatusReReduction}, DataStatusNeedReduction},
		{"reduced but undelivered", []string{ProcStatusSCR, ProcStatusPWR}, DataStatusReduced},
		{"all delivered", []string{ProcStatusSCRS, ProcStatusPWRS}, DataStatusSent},
		{"delivered alongside reduced stays reduced", []string{ProcStatusSCRS, ProcStatusSCR}, DataStatusReduced},
		{"delivered alongside dataless probes is sent", []string{ProcStatusSCRS, ProcStatusTrash}, DataStatusSent},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, DeriveDataStatus(test.statuses))
		})
	}
}

func TestLockAvailableTo(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	holder := "2b9b95b2-a5c6-11ec-bb0e-acde48001122"
	other := "3fd3c1a8-a5c6-11ec-bb0e-acde48001122"

	t.Run("free lock is available", func(t *testing.T) {
		a := Application{}
		assert.True(t, a.LockAvailableTo(other, now))
	})

	t.Run("holder keeps the lock", func(t *testing.T) {
		a := Application{LockedByID: &holder, LockedAt: timePtr(now.Add(-time.Minute))}
		assert.True(t, a.LockAvailableTo(holder, now))
	})

	t.Run("fresh lock blocks another operator", func(t *testing.T) {
		a := Application{LockedByID: &holder, LockedAt: timePtr(now.Add(-time.Hour))}
		assert.False(t, a.LockAvailableTo(other, now))
	})

	t.Run("lock past the cooldown can be reclaimed", func(t *testing.T) {
		a := Application{LockedByID: &holder, LockedAt: timePtr(now.Add(-OperatorLockCooldown))}
		assert.True(t, a.LockAvailableTo(other, now))
	})
}

func TestPostExpStorageReturned(t *testing.T) {
	assert.True(t, PostExpStorageReturned(PostStorageDumped))
	assert.True(t, PostExpStorageReturned(PostStorageTaken))
	assert.True(t, PostExpStorageReturned(PostStorageStructurer))
	assert.False(t, PostExpStorageReturned(PostStorageCupboard))
	assert.False(t, PostExpStorageReturned(PostStorageFreezer))
	assert.False(t, PostExpStorageReturned(""))
}

func TestGenerateApplicationCode(t *testing.T) {
	code, err := GenerateApplicationCode()
	require.NoError(t, err)
	assert.Len(t, code, 21)

	second, err := GenerateApplicationCode()
	require.NoError(t, err)
	assert.NotEqual(t, code, second)
}

func TestCanDownload(t *testing.T) {
	assert.True(t, (&Application{DataStatus: DataStatusSent}).CanDownload())
	assert.False(t, (&Application{DataStatus: DataStatusReduced}).CanDownload())
}
