// Package spectrum models a single optical-spectrum acquisition: an
// ordered sequence of (wavelength, power) samples, along with the
// operations acquisitors and the Handler need on it — parsing,
// serialization, natural limits, rendering, and feature detection.
package spectrum

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/Guilherme32/rosa-go/internal/errors"
)

// Value is a single (wavelength, power) sample. Wavelength is in meters,
// power in decibels.
type Value struct {
	Wavelength float64
	Power      float64
}

// Spectrum is an ordered sequence of samples with strictly increasing
// wavelength. The feature caches are filled lazily by FindValleys/FindPeaks
// and cleared only by InvalidateFeatureCache.
type Spectrum struct {
	Values []Value

	valleysCache *[]Feature
	peaksCache   *[]Feature
}

// Limits is an axis-aligned bounding rectangle over a spectrum's two axes.
type Limits struct {
	WavelengthLo, WavelengthHi float64
	PowerLo, PowerHi           float64
}

// powerPadding is added on both sides of the raw power extrema, per the
// data model: "power axis padded by 3 dB on each side".
const powerPadding = 3.0

// New wraps a slice of values into a Spectrum. The slice is used directly,
// not copied.
func New(values []Value) Spectrum {
	return Spectrum{Values: values}
}

// ParseCSV parses a semicolon-delimited, two-column, headerless CSV text
// into a Spectrum. Empty input yields an empty spectrum, not an error.
func ParseCSV(text string) (Spectrum, error) {
	if strings.TrimSpace(text) == "" {
		return Spectrum{}, nil
	}

	var values []Value
	scanner := bufio.NewScanner(strings.NewReader(text))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Split(line, ";")
		if len(fields) != 2 {
			return Spectrum{}, apperrors.New(fmt.Errorf("line %d: expected 2 fields, got %d", lineNo, len(fields))).
				Category(apperrors.CategoryFileParsing).
				Component("spectrum").
				Build()
		}

		wl, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
		if err != nil {
			return Spectrum{}, apperrors.New(fmt.Errorf("line %d: bad wavelength %q: %w", lineNo, fields[0], err)).
				Category(apperrors.CategoryFileParsing).
				Component("spectrum").
				Build()
		}
		pwr, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return Spectrum{}, apperrors.New(fmt.Errorf("line %d: bad power %q: %w", lineNo, fields[1], err)).
				Category(apperrors.CategoryFileParsing).
				Component("spectrum").
				Build()
		}

		values = append(values, Value{Wavelength: wl, Power: pwr})
	}
	if err := scanner.Err(); err != nil {
		return Spectrum{}, apperrors.New(err).Category(apperrors.CategoryFileParsing).Component("spectrum").Build()
	}

	return Spectrum{Values: values}, nil
}

// Serialize renders the spectrum as semicolon-delimited scientific notation
// with 4 decimal digits, one sample per line — the same format ParseCSV
// reads, so ParseCSV(Serialize(s)) == s up to printing precision.
func (s Spectrum) Serialize() string {
	var b strings.Builder
	for _, v := range s.Values {
		fmt.Fprintf(&b, "%.4e;%.4e\n", v.Wavelength, v.Power)
	}
	return b.String()
}

// Save writes the spectrum's textual representation to path.
func (s Spectrum) Save(path string) error {
	if err := os.WriteFile(path, []byte(s.Serialize()), 0o644); err != nil {
		return apperrors.New(err).Category(apperrors.CategoryFileIO).Component("spectrum").Build()
	}
	return nil
}

// NaturalLimits returns the min/max of each axis, with the power axis
// padded by ±3 dB. An empty spectrum returns a zero Limits.
func (s Spectrum) NaturalLimits() Limits {
	if len(s.Values) == 0 {
		return Limits{}
	}

	wlLo, wlHi := s.Values[0].Wavelength, s.Values[0].Wavelength
	pwrLo, pwrHi := s.Values[0].Power, s.Values[0].Power

	for _, v := range s.Values[1:] {
		if v.Wavelength < wlLo {
			wlLo = v.Wavelength
		}
		if v.Wavelength > wlHi {
			wlHi = v.Wavelength
		}
		if v.Power < pwrLo {
			pwrLo = v.Power
		}
		if v.Power > pwrHi {
			pwrHi = v.Power
		}
	}

	return Limits{
		WavelengthLo: wlLo,
		WavelengthHi: wlHi,
		PowerLo:      pwrLo - powerPadding,
		PowerHi:      pwrHi + powerPadding,
	}
}

// IsEmpty reports whether the spectrum has no samples.
func (s Spectrum) IsEmpty() bool {
	return len(s.Values) == 0
}
