// Package serial implements the SerialSpectrometer acquisitor: it talks
// to a JETI VersaPIC-family spectrometer (the "imon") over a serial port
// using its native binary/ASCII command protocol.
package serial

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Guilherme32/rosa-go/internal/acquisitor"
	apperrors "github.com/Guilherme32/rosa-go/internal/errors"
	"github.com/Guilherme32/rosa-go/internal/logbus"
	"github.com/Guilherme32/rosa-go/internal/spectrum"
	goserial "go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// vendorIdentifier is the substring the device's *IDN? response must
// contain to be accepted as a spectrometer rather than some other
// USB-serial peripheral.
const vendorIdentifier = "JETI_VersaPIC_RU60"

// defaultTemperatureC is the fallback temperature used when the
// *meas:tempe query fails, matching the original's hardcoded constant.
const defaultTemperatureC = 25.314

// Config is the SerialSpectrometer acquisitor's persisted configuration.
type Config struct {
	ExposureMs    float64
	ReadDelayMs   uint64
	Multisampling uint32
}

// DefaultConfig mirrors the original's conservative defaults.
func DefaultConfig() Config {
	return Config{ExposureMs: 10.0, ReadDelayMs: 100, Multisampling: 1}
}

// connection is the hardware handle and identification data obtained
// during Connect, kept around so StartReading doesn't need to re-probe
// the device.
type connection struct {
	port         goserial.Port
	portMu       sync.Mutex
	nPixels      int
	coefficients spectrum.Coefficients
}

// Serial drives a JETI VersaPIC spectrometer over a serial port. The zero
// value is not usable; construct with New.
type Serial struct {
	mu    sync.Mutex
	state acquisitor.State
	conn  *connection

	configMu sync.Mutex
	config   Config
	configCh chan Config

	bus *logbus.Bus
}

// New returns a disconnected Serial acquisitor.
func New(cfg Config, bus *logbus.Bus) *Serial {
	return &Serial{state: acquisitor.Disconnected, config: cfg, bus: bus}
}

func (s *Serial) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != acquisitor.Disconnected {
		s.bus.Warning("[ICN] could not connect: acquisitor already connected")
		return acquisitor.ErrAlreadyConnected
	}

	port, err := findSpectrometer()
	if err != nil {
		// Logged through AcquisitorError for its acquisitor-kind context;
		// the raw sentinel is still what's returned, so callers comparing
		// against acquisitor.ErrDeviceNotFound keep working.
		s.bus.Warningf("[ICN] could not connect: spectrometer not found (%v)", apperrors.AcquisitorError(err, "serial", ""))
		return err
	}

	conn, err := identifySpectrometer(port, s.bus)
	if err != nil {
		port.Close()
		s.bus.Warningf("[ICN] could not connect: parameter extraction failed (%v)", apperrors.AcquisitorError(err, "serial", ""))
		return err
	}

	s.conn = conn
	s.state = acquisitor.Connected
	s.bus.Info("[ICN] acquisitor connected")
	return nil
}

func (s *Serial) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == acquisitor.Disconnected {
		s.bus.Warning("[IDN] could not disconnect: acquisitor already disconnected")
		return acquisitor.ErrAlreadyDisconnected
	}

	if s.conn != nil {
		s.conn.port.Close()
		s.conn = nil
	}
	s.state = acquisitor.Disconnected
	s.bus.Info("[IDN] acquisitor disconnected")
	return nil
}

func (s *Serial) StartReading(ctx context.Context, sink acquisitor.Sink, singleRead bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case acquisitor.Disconnected:
		s.bus.Warning("[ISR] could not start reading: acquisitor is disconnected")
		return acquisitor.ErrNotConnected
	case acquisitor.Reading:
		s.bus.Warning("[ISR] could not start reading: acquisitor already reading")
		return acquisitor.ErrAlreadyReading
	}

	s.configMu.Lock()
	cfg := s.config
	s.configMu.Unlock()

	configCh := make(chan Config, 1)
	configCh <- cfg
	s.configCh = configCh
	conn := s.conn
	s.state = acquisitor.Reading

	go s.worker(conn, configCh, sink, singleRead)

	if singleRead {
		s.bus.Info("[ISR] acquisitor reading 1 spectrum")
	} else {
		s.bus.Info("[ISR] acquisitor reading continuously")
	}
	return nil
}

func (s *Serial) StopReading(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != acquisitor.Reading {
		s.bus.Warning("[ITP] could not stop reading, acquisitor was not reading")
		return acquisitor.ErrNotReading
	}

	if s.configCh != nil {
		close(s.configCh)
		s.configCh = nil
	}
	s.state = acquisitor.Connected
	s.bus.Info("[ITP] acquisitor stopped reading")
	return nil
}

func (s *Serial) SimplifiedState() acquisitor.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Serial) UpdateConfig(cfg any) error {
	c, ok := cfg.(Config)
	if !ok {
		return apperrors.New(apperrors.NewStd("config variant mismatch")).
			Category(apperrors.CategoryConfiguration).
			Component("serial").
			Build()
	}

	s.configMu.Lock()
	s.config = c
	s.configMu.Unlock()

	s.mu.Lock()
	ch := s.configCh
	s.mu.Unlock()
	if ch != nil {
		select {
		case ch <- c:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- c
		}
	}
	return nil
}

func (s *Serial) Config() any {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	return s.config
}

// worker holds the port for the duration of the read loop: it sleeps
// ReadDelayMs, applies any pending config, then attempts a measurement
// up to 10 times before giving up and disconnecting.
func (s *Serial) worker(conn *connection, configCh chan Config, sink acquisitor.Sink, singleRead bool) {
	cfg, ok := <-configCh
	if !ok {
		return
	}

	for {
		time.Sleep(time.Duration(cfg.ReadDelayMs) * time.Millisecond)

		select {
		case newCfg, ok := <-configCh:
			if !ok {
				return
			}
			cfg = newCfg
		default:
		}

		readTimeout := 100 * time.Millisecond // the port read timeout set in findSpectrometer

		var spec spectrum.Spectrum
		var err error
		for attempt := range 10 {
			spec, err = measure(conn, cfg)
			if err == nil {
				break
			}
			s.bus.Errorf("[IRS] %d/10 acquisition error: %v", attempt+1, apperrors.SerialError(err, readTimeout))
			if attempt == 9 {
				s.bus.Warning("[IRS] acquisitor disconnected due to an error")
				s.mu.Lock()
				s.state = acquisitor.Disconnected
				s.conn = nil
				s.mu.Unlock()
				conn.port.Close()
				return
			}
		}

		sink.Install(spec)

		if singleRead {
			s.mu.Lock()
			if s.state == acquisitor.Reading {
				s.state = acquisitor.Connected
			}
			s.mu.Unlock()
			return
		}
	}
}

// findSpectrometer scans USB serial ports for one that identifies itself
// with vendorIdentifier in response to *IDN?.
func findSpectrometer() (goserial.Port, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, acquisitor.ErrDeviceNotFound
	}

	for _, info := range ports {
		if !info.IsUSB {
			continue
		}

		mode := &goserial.Mode{
			BaudRate: 115200,
			DataBits: 8,
			Parity:   goserial.NoParity,
			StopBits: goserial.OneStopBit,
		}
		port, err := goserial.Open(info.Name, mode)
		if err != nil {
			continue
		}
		if err := port.SetReadTimeout(100 * time.Millisecond); err != nil {
			port.Close()
			continue
		}

		port.ResetInputBuffer()
		if _, err := port.Write([]byte("*IDN?\r")); err != nil {
			port.Close()
			continue
		}

		buf := make([]byte, 1024)
		n, err := port.Read(buf)
		if err != nil || n == 0 {
			port.Close()
			continue
		}
		if strings.Contains(string(buf[:n]), vendorIdentifier) {
			return port, nil
		}

		port.Close()
	}

	return nil, acquisitor.ErrDeviceNotFound
}

// identifySpectrometer extracts the pixel count and calibration
// coefficients from an already-identified device.
func identifySpectrometer(port goserial.Port, bus *logbus.Bus) (*connection, error) {
	port.ResetInputBuffer()
	if _, err := port.Write([]byte("*para:basic?\r")); err != nil {
		return nil, acquisitor.ErrNotExpectedDevice
	}

	buf := make([]byte, 4096)
	n, err := port.Read(buf)
	if err != nil {
		return nil, acquisitor.ErrNotExpectedDevice
	}
	bus.Infof("[IDN] identify response received: %q", string(buf[:n]))

	nPixels, err := parsePixelPerLine(string(buf[:n]))
	if err != nil {
		return nil, err
	}
	bus.Infof("[IDN] parsed pixel count: %d", nPixels)

	coeffs, err := fetchCoefficients(port)
	if err != nil {
		return nil, acquisitor.ErrParseError
	}

	return &connection{port: port, nPixels: nPixels, coefficients: coeffs}, nil
}

// parsePixelPerLine extracts the "pixelperline:N" field from a
// *para:basic? response. Matching ignores case, spaces and line breaks,
// since the device doesn't guarantee consistent casing across firmware
// revisions.
func parsePixelPerLine(response string) (int, error) {
	for _, line := range strings.Split(response, "\r") {
		line = strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(line, "\n", ""), " ", ""))
		if rest, ok := strings.CutPrefix(line, "pixelperline:"); ok {
			if parsed, err := strconv.Atoi(rest); err == nil {
				return parsed, nil
			}
		}
	}
	return 0, acquisitor.ErrParseError
}

// fetchCoefficients reads the wavelength and temperature calibration
// coefficients out of the device's user flash blocks 0 and 1.
func fetchCoefficients(port goserial.Port) (spectrum.Coefficients, error) {
	var coeffs spectrum.Coefficients
	coeffs.Wavelength = make([]float64, 6)

	port.ResetInputBuffer()
	if _, err := port.Write([]byte("*rdusr2 0\r")); err != nil {
		return coeffs, err
	}
	for i := range 6 {
		buf := make([]byte, 16)
		if _, err := io.ReadFull(port, buf); err != nil {
			return coeffs, err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(string(buf)), 64)
		if err != nil {
			return coeffs, err
		}
		coeffs.Wavelength[i] = v
	}

	time.Sleep(20 * time.Millisecond) // without this the next read returns garbage

	port.ResetInputBuffer()
	if _, err := port.Write([]byte("*rdusr2 1\r")); err != nil {
		return coeffs, err
	}
	temp := make([]float64, 4)
	for i := range 4 {
		buf := make([]byte, 16)
		if _, err := io.ReadFull(port, buf); err != nil {
			return coeffs, err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(string(buf)), 64)
		if err != nil {
			return coeffs, err
		}
		temp[i] = v
	}
	coeffs.TAlpha, coeffs.TAlpha0, coeffs.TBeta, coeffs.TBeta0 = temp[0], temp[1], temp[2], temp[3]

	return coeffs, nil
}

// measure runs one full measurement cycle: command, ACK, exposure wait,
// BELL, frame read, checksum (unverified), and temperature query.
func measure(conn *connection, cfg Config) (spectrum.Spectrum, error) {
	conn.portMu.Lock()
	defer conn.portMu.Unlock()

	port := conn.port

	cmd := fmt.Sprintf("*meas %.3f %d 3\r", cfg.ExposureMs, cfg.Multisampling)
	port.ResetInputBuffer()
	if _, err := port.Write([]byte(cmd)); err != nil {
		return spectrum.Spectrum{}, err
	}

	if err := checkAck(port); err != nil {
		return spectrum.Spectrum{}, err
	}

	time.Sleep(time.Duration(cfg.ExposureMs)*time.Microsecond + time.Microsecond)

	if err := waitForBell(port); err != nil {
		return spectrum.Spectrum{}, err
	}

	lengthBuf := make([]byte, 2)
	if _, err := io.ReadFull(port, lengthBuf); err != nil {
		return spectrum.Spectrum{}, err
	}

	pixels := make([]uint16, conn.nPixels)
	pixelBuf := make([]byte, 2)
	for i := range conn.nPixels {
		if _, err := io.ReadFull(port, pixelBuf); err != nil {
			return spectrum.Spectrum{}, err
		}
		pixels[i] = uint16(pixelBuf[0]) | uint16(pixelBuf[1])<<8
	}

	// Checksum is read but intentionally not verified, per the device
	// protocol's documented (and still unresolved) ambiguity.
	checksumBuf := make([]byte, 2)
	if _, err := io.ReadFull(port, checksumBuf); err != nil {
		return spectrum.Spectrum{}, err
	}

	temperature, err := queryTemperature(port)
	if err != nil {
		temperature = defaultTemperatureC
	}

	return spectrum.FromSerialReadings(pixels, temperature, conn.coefficients), nil
}

// checkAck scans r byte-by-byte for the device's ACK/NACK handshake.
// Takes an io.Reader rather than goserial.Port since it only ever reads.
func checkAck(r io.Reader) error {
	buf := make([]byte, 1)
	for range 100 {
		if _, err := io.ReadFull(r, buf); err != nil {
			return err
		}
		switch buf[0] {
		case 0x15:
			return acquisitor.ErrCommandNack
		case 0x06:
			return nil
		}
	}
	return acquisitor.ErrUnexpectedResponse
}

// waitForBell scans r byte-by-byte for the BELL that precedes a frame.
func waitForBell(r io.Reader) error {
	buf := make([]byte, 1)
	for range 1000 {
		if _, err := io.ReadFull(r, buf); err != nil {
			return err
		}
		if buf[0] == 0x07 {
			return nil
		}
	}
	return acquisitor.ErrUnexpectedResponse
}

func queryTemperature(port goserial.Port) (float64, error) {
	port.ResetInputBuffer()
	if _, err := port.Write([]byte("*meas:tempe\r")); err != nil {
		return 0, err
	}

	buf := make([]byte, 64)
	n, err := port.Read(buf)
	if err != nil {
		return 0, err
	}

	return parseTemperature(string(buf[:n]))
}

// parseTemperature pulls the first numeric token out of a *meas:tempe
// response, whatever label or units surround it.
func parseTemperature(response string) (float64, error) {
	for _, line := range strings.Split(response, "\r") {
		line = strings.NewReplacer(" ", "", "\t", "", "\n", "").Replace(line)
		for _, word := range strings.Split(line, ":") {
			if v, err := strconv.ParseFloat(word, 64); err == nil {
				return v, nil
			}
		}
	}

	return 0, acquisitor.ErrUnexpectedResponse
}
