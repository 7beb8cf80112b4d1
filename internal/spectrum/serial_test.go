package spectrum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSerialReadingsOrdersAscendingWavelength(t *testing.T) {
	// Wavelength falls with pixel index, as in the device's wire order.
	coeffs := Coefficients{Wavelength: []float64{1500, -1}}
	pixels := []uint16{100, 200, 300}

	s := FromSerialReadings(pixels, 25, coeffs)

	require.Len(t, s.Values, 3)
	for i := 1; i < len(s.Values); i++ {
		assert.Less(t, s.Values[i-1].Wavelength, s.Values[i].Wavelength)
	}
}

func TestFromSerialReadingsClampsPowerFloor(t *testing.T) {
	coeffs := Coefficients{Wavelength: []float64{1500}}
	pixels := []uint16{0}

	s := FromSerialReadings(pixels, 25, coeffs)

	require.Len(t, s.Values, 1)
	assert.Equal(t, powerFloor, s.Values[0].Power)
}

func TestPolyvalConstant(t *testing.T) {
	assert.Equal(t, 7.0, polyval([]float64{7}, 42))
}

func TestPolyvalLinear(t *testing.T) {
	assert.Equal(t, 13.0, polyval([]float64{1, 2}, 6))
}
