package spectrum

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeGaussianDip(center, width, depth float64, n int, lo, hi float64) []Value {
	values := make([]Value, n)
	step := (hi - lo) / float64(n-1)
	for i := range values {
		x := lo + float64(i)*step
		dx := (x - center) / width
		values[i] = Value{Wavelength: x, Power: -depth*math.Exp(-dx*dx) + 1}
	}
	return values
}

func TestFindValleysNoneReturnsEmpty(t *testing.T) {
	s := New(makeGaussianDip(5, 1, 10, 21, 0, 10))
	assert.Nil(t, s.FindValleys(Detection{Kind: DetectionNone}))
	assert.Nil(t, s.FindPeaks(Detection{Kind: DetectionNone}))
}

func TestFindValleysSimpleDetectsDip(t *testing.T) {
	s := New(makeGaussianDip(5, 1, 10, 41, 0, 10))
	valleys := s.FindValleys(Detection{Kind: DetectionSimple, Prominence: 3})
	require.Len(t, valleys, 1)
	assert.InDelta(t, 5, valleys[0].Wavelength, 0.3)
}

func TestFindValleysHighProminenceRejectsShallowDip(t *testing.T) {
	s := New(makeGaussianDip(5, 1, 1, 41, 0, 10))
	valleys := s.FindValleys(Detection{Kind: DetectionSimple, Prominence: 50})
	assert.Empty(t, valleys)
}

func TestFindValleysCaches(t *testing.T) {
	s := New(makeGaussianDip(5, 1, 10, 41, 0, 10))
	det := Detection{Kind: DetectionSimple, Prominence: 3}
	first := s.FindValleys(det)
	second := s.FindValleys(det)
	assert.Equal(t, first, second)
}

func TestFindValleysLorentzFitsCenter(t *testing.T) {
	s := New(makeGaussianDip(5, 1, 10, 81, 0, 10))
	valleys := s.FindValleys(Detection{Kind: DetectionLorentz, Prominence: 3})
	require.Len(t, valleys, 1)
	assert.InDelta(t, 5, valleys[0].Wavelength, 0.5)
}
