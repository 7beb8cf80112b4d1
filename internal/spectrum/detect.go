package spectrum

import (
	"math"

	"gonum.org/v1/gonum/optimize"
)

// DetectionKind selects the algorithm used by FindValleys/FindPeaks.
type DetectionKind int

const (
	// DetectionNone disables feature detection; the result is always empty.
	DetectionNone DetectionKind = iota
	// DetectionSimple accepts a candidate extremum as soon as it clears
	// the prominence threshold on both sides.
	DetectionSimple
	// DetectionLorentz additionally fits a Lorentzian lineshape around
	// each accepted candidate and reports the fitted center instead of
	// the raw sample.
	DetectionLorentz
)

// MarshalText renders the kind as its config-file name, matching the
// teacher's string-valued enum fields in persisted settings.
func (k DetectionKind) MarshalText() ([]byte, error) {
	switch k {
	case DetectionNone:
		return []byte("none"), nil
	case DetectionSimple:
		return []byte("simple"), nil
	case DetectionLorentz:
		return []byte("lorentz"), nil
	default:
		return []byte("none"), nil
	}
}

// UnmarshalText parses a config-file kind name, defaulting to
// DetectionNone for unrecognized or empty input.
func (k *DetectionKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "simple":
		*k = DetectionSimple
	case "lorentz":
		*k = DetectionLorentz
	default:
		*k = DetectionNone
	}
	return nil
}

// Detection configures valley/peak detection: a variant tag plus the
// prominence threshold in dB. Prominence is unused when Kind is
// DetectionNone.
type Detection struct {
	Kind       DetectionKind `mapstructure:"kind"`
	Prominence float64       `mapstructure:"prominence"`
}

// Feature is a single detected valley or peak.
type Feature struct {
	Wavelength float64
	Power      float64
}

// FindValleys detects local minima of the power trace whose prominence
// clears det.Prominence. DetectionNone always returns nil. The first
// other call caches its result on the Spectrum; later calls return that
// cached result even if det differs, until InvalidateFeatureCache.
func (s *Spectrum) FindValleys(det Detection) []Feature {
	if det.Kind == DetectionNone {
		return nil
	}
	if s.valleysCache != nil {
		return *s.valleysCache
	}
	found := findExtrema(s.Values, det, false)
	s.valleysCache = &found
	return found
}

// FindPeaks detects local maxima of the power trace whose prominence
// clears det.Prominence. DetectionNone always returns nil.
func (s *Spectrum) FindPeaks(det Detection) []Feature {
	if det.Kind == DetectionNone {
		return nil
	}
	if s.peaksCache != nil {
		return *s.peaksCache
	}
	found := findExtrema(s.Values, det, true)
	s.peaksCache = &found
	return found
}

// InvalidateFeatureCache clears any cached valley/peak results, forcing
// the next FindValleys/FindPeaks call to recompute. Call this whenever
// Values is replaced or mutated in place.
func (s *Spectrum) InvalidateFeatureCache() {
	s.valleysCache = nil
	s.peaksCache = nil
}

// findExtrema walks the samples looking for local maxima (peaks=true) or
// minima (peaks=false), accepting a candidate only once the power drops
// (for peaks) or rises (for valleys) by at least det.Prominence on both
// sides before the next candidate or the trace boundary.
func findExtrema(values []Value, det Detection, peaks bool) []Feature {
	var features []Feature
	n := len(values)
	if n < 3 {
		return features
	}

	better := func(a, b float64) bool {
		if peaks {
			return a > b
		}
		return a < b
	}

	for i := 1; i < n-1; i++ {
		if !(better(values[i].Power, values[i-1].Power) && better(values[i].Power, values[i+1].Power)) {
			continue
		}

		leftDrop := signedDrop(values[i].Power, values[:i], peaks)
		rightDrop := signedDrop(values[i].Power, values[i+1:], peaks)
		if leftDrop < det.Prominence || rightDrop < det.Prominence {
			continue
		}

		if det.Kind == DetectionLorentz {
			features = append(features, fitLorentzian(values, i))
		} else {
			features = append(features, Feature{Wavelength: values[i].Wavelength, Power: values[i].Power})
		}
	}

	return features
}

// signedDrop returns the largest prominence-style drop between value and
// the nearest more-extreme point in side (searched from the end nearest
// value outward), or the drop to side's extreme point if none is more
// extreme, which is the standard topographic-prominence base case.
func signedDrop(value float64, side []Value, peaks bool) float64 {
	if len(side) == 0 {
		return math.Inf(1)
	}

	extreme := side[len(side)-1].Power
	for i := len(side) - 1; i >= 0; i-- {
		p := side[i].Power
		if peaks {
			if p > value {
				break
			}
			if p < extreme {
				extreme = p
			}
		} else {
			if p < value {
				break
			}
			if p > extreme {
				extreme = p
			}
		}
	}

	if peaks {
		return value - extreme
	}
	return extreme - value
}

// lorentzWindow is the number of samples on each side of a candidate
// extremum included in the Lorentzian fit window.
const lorentzWindow = 5

// fitLorentzian fits y = amplitude / (1 + ((x-center)/width)^2) + offset
// over a small window around values[center] using Nelder-Mead
// minimization of sum-of-squares residuals, and returns the fitted
// center as the feature's wavelength (power is the raw sample, which is
// the quantity actually displayed).
func fitLorentzian(values []Value, center int) Feature {
	lo := center - lorentzWindow
	if lo < 0 {
		lo = 0
	}
	hi := center + lorentzWindow + 1
	if hi > len(values) {
		hi = len(values)
	}
	window := values[lo:hi]

	x0 := values[center].Wavelength
	y0 := values[center].Power

	residual := func(p []float64) float64 {
		amplitude, width, offset, x := p[0], p[1], p[2], p[3]
		if width == 0 {
			width = 1e-12
		}
		var sum float64
		for _, v := range window {
			model := amplitude/(1+math.Pow((v.Wavelength-x)/width, 2)) + offset
			diff := v.Power - model
			sum += diff * diff
		}
		return sum
	}

	span := x0
	if len(window) > 1 {
		span = window[len(window)-1].Wavelength - window[0].Wavelength
	}
	initial := []float64{y0, span / 4, 0, x0}

	problem := optimize.Problem{Func: residual}
	result, err := optimize.Minimize(problem, initial, nil, &optimize.NelderMead{})
	if err != nil || result == nil {
		return Feature{Wavelength: x0, Power: y0}
	}

	return Feature{Wavelength: result.X[3], Power: y0}
}
