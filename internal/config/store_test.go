package config

import (
	"testing"

	"github.com/Guilherme32/rosa-go/internal/spectrum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadHandlerConfigMissingFileReturnsDefaults(t *testing.T) {
	store := NewAt(t.TempDir())

	cfg, err := store.LoadHandlerConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultHandlerConfig(), cfg)
}

func TestHandlerConfigRoundTrip(t *testing.T) {
	store := NewAt(t.TempDir())

	original := HandlerConfig{
		AutoSavePath:    "/tmp/spectra",
		AcquisitorKind:  KindSerial,
		ValleyDetection: spectrum.Detection{Kind: spectrum.DetectionSimple, Prominence: 4.5},
		PeakDetection:   spectrum.Detection{Kind: spectrum.DetectionLorentz, Prominence: 2.0},
		ShadowLength:    7,
	}

	require.NoError(t, store.SaveHandlerConfig(original))

	loaded, err := store.LoadHandlerConfig()
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestSerialConfigRoundTrip(t *testing.T) {
	store := NewAt(t.TempDir())

	original := SerialConfig{ExposureMs: 250, ReadDelayMs: 50, Multisampling: 3}
	require.NoError(t, store.SaveSerialConfig(original))

	loaded, err := store.LoadSerialConfig()
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestLoadSyntheticConfigMissingFileReturnsDefaults(t *testing.T) {
	store := NewAt(t.TempDir())

	cfg, err := store.LoadSyntheticConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultSyntheticConfig(), cfg)
}
