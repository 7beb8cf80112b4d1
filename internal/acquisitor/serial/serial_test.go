package serial

import (
	"bytes"
	"testing"

	"github.com/Guilherme32/rosa-go/internal/acquisitor"
	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 10.0, cfg.ExposureMs)
	assert.Equal(t, uint64(100), cfg.ReadDelayMs)
	assert.Equal(t, uint32(1), cfg.Multisampling)
}

func TestParsePixelPerLine(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     int
		wantErr  bool
	}{
		{"plain", "PixelPerLine: 2068\r\n", 2068, false},
		{"lowercase no space", "pixelperline:256\r", 256, false},
		{"multi-line", "SomeOtherField:1\rPixelPerLine: 512\rTrailer:0\r", 512, false},
		{"missing field", "SomeOtherField:1\r", 0, true},
		{"unparsable number", "PixelPerLine: abc\r", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePixelPerLine(tt.response)
			if tt.wantErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, acquisitor.ErrParseError)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTemperature(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     float64
		wantErr  bool
	}{
		{"labelled", "Temperature: 24.5\r", 24.5, false},
		{"bare number", "24.5\r", 24.5, false},
		{"tabs and spaces", "Temp:\t24.5 \r", 24.5, false},
		{"no numeric token", "ERR:NOTREADY\r", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTemperature(tt.response)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCheckAckRecognizesAckByte(t *testing.T) {
	r := bytes.NewReader([]byte{0x00, 0x00, 0x06})
	err := checkAck(r)
	assert.NoError(t, err)
}

func TestCheckAckRecognizesNackByte(t *testing.T) {
	r := bytes.NewReader([]byte{0x15})
	err := checkAck(r)
	assert.ErrorIs(t, err, acquisitor.ErrCommandNack)
}

func TestCheckAckGivesUpOnExhaustedStream(t *testing.T) {
	r := bytes.NewReader([]byte{0x00, 0x00})
	err := checkAck(r)
	assert.Error(t, err)
}

func TestWaitForBellFindsBellByte(t *testing.T) {
	r := bytes.NewReader([]byte{0x00, 0x00, 0x07})
	err := waitForBell(r)
	assert.NoError(t, err)
}
