package handler

import (
	"context"
	"testing"

	"github.com/Guilherme32/rosa-go/internal/acquisitor/serial"
	"github.com/Guilherme32/rosa-go/internal/acquisitor/synthetic"
	"github.com/Guilherme32/rosa-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateConfigSameKindLeavesAcquisitorInPlace(t *testing.T) {
	h := newTestHandler(t)
	original := h.acq

	cfg := h.GetConfig()
	cfg.ShadowLength = 9
	err := h.UpdateConfig(context.Background(), cfg)
	require.NoError(t, err)

	assert.Same(t, original, h.acq)
	assert.Equal(t, 9, h.GetConfig().ShadowLength)
}

func TestUpdateConfigKindChangeRebuildsAcquisitor(t *testing.T) {
	h := newTestHandler(t)
	original := h.acq

	cfg := h.GetConfig()
	cfg.AcquisitorKind = config.KindSerial
	err := h.UpdateConfig(context.Background(), cfg)
	require.NoError(t, err)

	assert.NotSame(t, original, h.acq)
	if _, ok := h.acq.(*serial.Serial); !ok {
		t.Fatalf("expected *serial.Serial, got %T", h.acq)
	}
}

func TestUpdateAcquisitorConfigDispatchesMatchingVariant(t *testing.T) {
	h := newTestHandler(t)

	newCfg := synthetic.Config{
		Points:            2048,
		Amplitude:         3.0,
		PhaseTSpeed:       1.0,
		PhaseXSpeed:       1.0,
		UpdateDelayMillis: 50,
	}
	h.UpdateAcquisitorConfig(newCfg)

	got, ok := h.GetAcquisitorConfig().(synthetic.Config)
	require.True(t, ok)
	assert.Equal(t, newCfg, got)
}
