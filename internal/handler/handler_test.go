package handler

import (
	"testing"

	"github.com/Guilherme32/rosa-go/internal/config"
	"github.com/Guilherme32/rosa-go/internal/logbus"
	"github.com/Guilherme32/rosa-go/internal/spectrum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	store := config.NewAt(t.TempDir())
	cfg := config.DefaultHandlerConfig()
	cfg.AcquisitorKind = config.KindSynthetic

	h, err := New(cfg, store, logbus.New())
	require.NoError(t, err)
	return h
}

func sampleSpectrum() spectrum.Spectrum {
	return spectrum.New([]spectrum.Value{
		{Wavelength: 500e-9, Power: -10},
		{Wavelength: 501e-9, Power: -5},
		{Wavelength: 502e-9, Power: -8},
	})
}

func TestInstallRaisesUnreadAndSetsLiveSpectrum(t *testing.T) {
	h := newTestHandler(t)

	assert.False(t, h.UnreadSpectrum())
	h.Install(sampleSpectrum())
	assert.True(t, h.UnreadSpectrum())
}

func TestInstallAutoSavesWhenSavingFlagSet(t *testing.T) {
	h := newTestHandler(t)
	dir := t.TempDir()

	h.configMu.Lock()
	h.config.AutoSavePath = dir
	h.configMu.Unlock()
	h.SetSaving(true)

	idx, ok := h.Install(sampleSpectrum())
	assert.True(t, ok)
	assert.Equal(t, 0, idx)

	idx2, ok2 := h.Install(sampleSpectrum())
	assert.True(t, ok2)
	assert.Equal(t, 1, idx2)
}

func TestInstallDoesNotAutoSaveByDefault(t *testing.T) {
	h := newTestHandler(t)

	_, ok := h.Install(sampleSpectrum())
	assert.False(t, ok)
}

func TestFreezeSpectrumMovesLiveToFrozen(t *testing.T) {
	h := newTestHandler(t)
	h.Install(sampleSpectrum())

	h.FreezeSpectrum()

	h.specMu.Lock()
	live := h.lastSpectrum
	h.specMu.Unlock()
	assert.Nil(t, live)

	h.frozenMu.Lock()
	assert.Len(t, h.frozenSpectra, 1)
	h.frozenMu.Unlock()
}

func TestFreezeSpectrumWithNothingLogsWarning(t *testing.T) {
	h := newTestHandler(t)
	h.FreezeSpectrum()

	found := false
	for _, rec := range h.bus.Drain() {
		if rec.Level == logbus.Warning {
			found = true
		}
	}
	assert.True(t, found)
}

func TestDeleteFrozenSpectrumCompactsIndices(t *testing.T) {
	h := newTestHandler(t)
	h.Install(sampleSpectrum())
	h.FreezeSpectrum()
	h.Install(sampleSpectrum())
	h.FreezeSpectrum()

	h.DeleteFrozenSpectrum(0)

	h.frozenMu.Lock()
	defer h.frozenMu.Unlock()
	assert.Len(t, h.frozenSpectra, 1)
}

func TestDeleteFrozenSpectrumOutOfBoundsLogsError(t *testing.T) {
	h := newTestHandler(t)
	h.DeleteFrozenSpectrum(5)

	found := false
	for _, rec := range h.bus.Drain() {
		if rec.Level == logbus.Error {
			found = true
		}
	}
	assert.True(t, found)
}

func TestUpdateLimitsNeverShrinks(t *testing.T) {
	h := newTestHandler(t)

	h.Install(sampleSpectrum())
	h.UpdateLimits()
	wide, ok := h.GetLimits()
	require.True(t, ok)

	h.FreezeSpectrum()
	h.Install(spectrum.New([]spectrum.Value{{Wavelength: 500.5e-9, Power: -9}}))
	h.UpdateLimits()
	narrower, ok := h.GetLimits()
	require.True(t, ok)

	assert.LessOrEqual(t, narrower.WavelengthLo, wide.WavelengthLo)
	assert.GreaterOrEqual(t, narrower.WavelengthHi, wide.WavelengthHi)
}

func TestGetLimitsFalseBeforeAnySpectrum(t *testing.T) {
	h := newTestHandler(t)
	_, ok := h.GetLimits()
	assert.False(t, ok)
}

func TestGetLastSpectrumPathClearsUnread(t *testing.T) {
	h := newTestHandler(t)
	h.Install(sampleSpectrum())

	path, ok := h.GetLastSpectrumPath(400, 300)
	require.True(t, ok)
	assert.NotEmpty(t, path)
	assert.False(t, h.UnreadSpectrum())
}

func TestShadowPathsCapAtShadowLength(t *testing.T) {
	h := newTestHandler(t)
	h.configMu.Lock()
	h.config.ShadowLength = 2
	h.configMu.Unlock()

	for range 5 {
		h.Install(sampleSpectrum())
		h.GetLastSpectrumPath(400, 300)
	}

	assert.Len(t, h.GetShadowPaths(), 2)
}

func TestUpdateAcquisitorConfigMismatchLogsError(t *testing.T) {
	h := newTestHandler(t)
	h.UpdateAcquisitorConfig("not a config")

	found := false
	for _, rec := range h.bus.Drain() {
		if rec.Level == logbus.Error {
			found = true
		}
	}
	assert.True(t, found)
}
