package spectrum

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSVEmpty(t *testing.T) {
	s, err := ParseCSV("")
	require.NoError(t, err)
	assert.True(t, s.IsEmpty())
}

func TestParseCSVRoundTrip(t *testing.T) {
	original := New([]Value{
		{Wavelength: 1.5500e-6, Power: -12.3400},
		{Wavelength: 1.5501e-6, Power: -9.1000},
		{Wavelength: 1.5502e-6, Power: -30.0000},
	})

	text := original.Serialize()
	parsed, err := ParseCSV(text)
	require.NoError(t, err)

	require.Len(t, parsed.Values, len(original.Values))
	for i := range original.Values {
		assert.InDelta(t, original.Values[i].Wavelength, parsed.Values[i].Wavelength, 1e-10)
		assert.InDelta(t, original.Values[i].Power, parsed.Values[i].Power, 1e-3)
	}

	// Re-serializing the parsed spectrum must reproduce the same text,
	// i.e. parse_csv(serialize(s)) == s up to the 4-digit print precision.
	assert.Equal(t, text, parsed.Serialize())
}

func TestParseCSVMalformed(t *testing.T) {
	_, err := ParseCSV("1.0e-6;2.0;extra\n")
	assert.Error(t, err)

	_, err = ParseCSV("not-a-number;2.0\n")
	assert.Error(t, err)
}

func TestSaveWritesSerializedForm(t *testing.T) {
	s := New([]Value{{Wavelength: 1e-6, Power: -5}})
	path := filepath.Join(t.TempDir(), "spectrum.txt")

	require.NoError(t, s.Save(path))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, s.Serialize(), string(contents))
}

func TestNaturalLimitsPadsPower(t *testing.T) {
	s := New([]Value{
		{Wavelength: 1, Power: -10},
		{Wavelength: 3, Power: 5},
		{Wavelength: 2, Power: 0},
	})

	limits := s.NaturalLimits()
	assert.Equal(t, 1.0, limits.WavelengthLo)
	assert.Equal(t, 3.0, limits.WavelengthHi)
	assert.Equal(t, -13.0, limits.PowerLo)
	assert.Equal(t, 8.0, limits.PowerHi)
}

func TestNaturalLimitsEmpty(t *testing.T) {
	s := New(nil)
	assert.Equal(t, Limits{}, s.NaturalLimits())
}
