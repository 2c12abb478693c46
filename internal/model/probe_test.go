package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReducedProcStatus(t *testing.T) {
	tests := []struct {
		status   string
		expected string
	}{
		{ProcStatusSCNR, ProcStatusSCR},
		{ProcStatusPWNR, ProcStatusPWR},
		{ProcStatusReReduction, ProcStatusSCR},
		{ProcStatusSCR, ProcStatusSCR},
		{ProcStatusSCRS, ProcStatusSCRS},
		{ProcStatusTrash, ProcStatusTrash},
		{ProcStatusLattice, ProcStatusLattice},
		{"", ""},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, ReducedProcStatus(test.status))
	}
}

func TestReducedProcStatusIdempotent(t *testing.T) {
	for _, status := range []string{
		ProcStatusSCNR, ProcStatusPWNR, ProcStatusReReduction, ProcStatusSCR, ProcStatusPWR,
		ProcStatusSCRS, ProcStatusPWRS, ProcStatusTrash, ProcStatusFailed, ProcStatusLattice,
	} {
		once := ReducedProcStatus(status)
		assert.Equal(t, once, ReducedProcStatus(once), "status %q", status)
	}
}

func TestPostedProcStatus(t *testing.T) {
	tests := []struct {
		status   string
		expected string
	}{
		{ProcStatusSCR, ProcStatusSCRS},
		{ProcStatusPWR, ProcStatusPWRS},
		{ProcStatusSCNR, ProcStatusSCNR},
		{ProcStatusSCRS, ProcStatusSCRS},
		{ProcStatusPWRS, ProcStatusPWRS},
		{"", ""},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, PostedProcStatus(test.status))
	}
}

func TestNeedToPost(t *testing.T) {
	assert.True(t, NeedToPost(ProcStatusSCR))
	assert.True(t, NeedToPost(ProcStatusPWR))
	assert.False(t, NeedToPost(ProcStatusSCNR))
	assert.False(t, NeedToPost(ProcStatusSCRS))
	assert.False(t, NeedToPost(""))
}

func TestCellVolumeCubic(t *testing.T) {
	probe := Probe{
		A:  float64Ptr(5),
		B:  float64Ptr(5),
		C:  float64Ptr(5),
		Al: float64Ptr(90),
		Bt: float64Ptr(90),
		Gm: float64Ptr(90),
	}

	volume, err := probe.CellVolume()
	require.NoError(t, err)
	assert.InDelta(t, 125.0, volume, 0.01)
}

func TestCellVolumeMonoclinic(t *testing.T) {
	// beta = 120 degrees halves the sin relative to the orthogonal cell.
	probe := Probe{
		A:  float64Ptr(10),
		B:  float64Ptr(10),
		C:  float64Ptr(10),
		Al: float64Ptr(90),
		Bt: float64Ptr(120),
		Gm: float64Ptr(90),
	}

	volume, err := probe.CellVolume()
	require.NoError(t, err)
	assert.InDelta(t, 866.03, volume, 0.01)
}

func TestCellVolumeIncomplete(t *testing.T) {
	probe := Probe{A: float64Ptr(5), B: float64Ptr(5)}

	_, err := probe.CellVolume()
	assert.Error(t, err)
}

func TestRefreshVolume(t *testing.T) {
	t.Run("incomplete parameters leave the volume untouched", func(t *testing.T) {
		stale := 42.0
		probe := Probe{A: float64Ptr(5), Volume: &stale}

		require.NoError(t, probe.RefreshVolume())
		assert.Equal(t, 42.0, *probe.Volume)
	})

	t.Run("complete parameters recompute the volume", func(t *testing.T) {
		probe := Probe{
			A:  float64Ptr(5),
			B:  float64Ptr(5),
			C:  float64Ptr(5),
			Al: float64Ptr(90),
			Bt: float64Ptr(90),
			Gm: float64Ptr(90),
		}

		require.NoError(t, probe.RefreshVolume())
		require.NotNil(t, probe.Volume)
		assert.InDelta(t, 125.0, *probe.Volume, 0.01)
	})
}

func TestMarkReduced(t *testing.T) {
	probe := Probe{ProcStatus: ProcStatusSCNR}

	assert.True(t, probe.MarkReduced())
	assert.Equal(t, ProcStatusSCR, probe.ProcStatus)

	// A second pass is a no-op.
	assert.False(t, probe.MarkReduced())
	assert.Equal(t, ProcStatusSCR, probe.ProcStatus)
}

func TestMarkPosted(t *testing.T) {
	probe := Probe{ProcStatus: ProcStatusPWR}

	assert.True(t, probe.MarkPosted())
	assert.Equal(t, ProcStatusPWRS, probe.ProcStatus)

	assert.False(t, probe.MarkPosted())
}

func TestPublicationAttachable(t *testing.T) {
	assert.True(t, (&Probe{ProcStatus: ProcStatusSCRS}).PublicationAttachable())
	assert.True(t, (&Probe{ProcStatus: ProcStatusPWRS}).PublicationAttachable())
	assert.True(t, (&Probe{ProcStatus: ProcStatusLattice}).PublicationAttachable())
	assert.False(t, (&Probe{ProcStatus: ProcStatusSCR}).PublicationAttachable())
	assert.False(t, (&Probe{ProcStatus: ProcStatusTrash}).PublicationAttachable())
}
