package config

import "github.com/Guilherme32/rosa-go/internal/spectrum"

// AxisLimits is an optional, user-pinned override of one axis of the
// rendering view; nil means "derive from observed spectra".
type AxisLimits struct {
	Lo float64 `mapstructure:"lo"`
	Hi float64 `mapstructure:"hi"`
}

// HandlerConfig is the process-wide configuration persisted to
// handler.toml.
type HandlerConfig struct {
	AutoSavePath     string             `mapstructure:"auto_save_path"`
	WavelengthLimits *AxisLimits        `mapstructure:"wavelength_limits,omitempty"`
	PowerLimits      *AxisLimits        `mapstructure:"power_limits,omitempty"`
	AcquisitorKind   AcquisitorKind     `mapstructure:"acquisitor_kind"`
	ValleyDetection  spectrum.Detection `mapstructure:"valley_detection"`
	PeakDetection    spectrum.Detection `mapstructure:"peak_detection"`
	ShadowLength     int                `mapstructure:"shadow_length"`
}

// DefaultHandlerConfig mirrors the original's out-of-the-box behavior:
// synthetic acquisitor, no feature detection, no pinned view limits.
func DefaultHandlerConfig() HandlerConfig {
	return HandlerConfig{
		AutoSavePath:    "./spectra",
		AcquisitorKind:  KindSynthetic,
		ValleyDetection: spectrum.Detection{Kind: spectrum.DetectionNone},
		PeakDetection:   spectrum.Detection{Kind: spectrum.DetectionNone},
		ShadowLength:    5,
	}
}
