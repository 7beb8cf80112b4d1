// Package synthetic implements the Synthetic acquisitor: an analytic
// spectrum generator used for demos and UI smoke tests, with no external
// hardware or filesystem dependency.
package synthetic

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/Guilherme32/rosa-go/internal/acquisitor"
	apperrors "github.com/Guilherme32/rosa-go/internal/errors"
	"github.com/Guilherme32/rosa-go/internal/logbus"
	"github.com/Guilherme32/rosa-go/internal/spectrum"
)

// Config is the Synthetic acquisitor's persisted configuration.
type Config struct {
	Points            uint64
	Amplitude         float64
	PhaseTSpeed       float64
	PhaseXSpeed       float64
	UpdateDelayMillis uint64
}

// DefaultConfig mirrors the original's demo defaults.
func DefaultConfig() Config {
	return Config{
		Points:            1024,
		Amplitude:         2.0,
		PhaseTSpeed:       6.14,
		PhaseXSpeed:       6.14,
		UpdateDelayMillis: 100,
	}
}

// Synthetic generates spectra analytically rather than acquiring them.
// The zero value is not usable; construct with New.
type Synthetic struct {
	mu    sync.Mutex
	state acquisitor.State

	configMu sync.Mutex
	config   Config
	configCh chan Config

	bus *logbus.Bus
}

// New returns a disconnected Synthetic acquisitor.
func New(cfg Config, bus *logbus.Bus) *Synthetic {
	return &Synthetic{state: acquisitor.Disconnected, config: cfg, bus: bus}
}

func (s *Synthetic) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != acquisitor.Disconnected {
		s.bus.Warning("[AEC] could not connect: acquisitor already connected")
		return acquisitor.ErrAlreadyConnected
	}
	s.state = acquisitor.Connected
	s.bus.Info("[AEC] example acquisitor connected")
	return nil
}

func (s *Synthetic) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == acquisitor.Disconnected {
		s.bus.Warning("[AEC] could not disconnect: acquisitor already disconnected")
		return acquisitor.ErrAlreadyDisconnected
	}
	s.state = acquisitor.Disconnected
	s.bus.Info("[AEC] example acquisitor disconnected")
	return nil
}

// StartReading generates spectra with GenerateAt on a fixed interval,
// installing each one into sink. single_read generates exactly one
// spectrum synchronously and returns without spawning a worker.
func (s *Synthetic) StartReading(ctx context.Context, sink acquisitor.Sink, singleRead bool) error {
	if singleRead {
		s.configMu.Lock()
		cfg := s.config
		s.configMu.Unlock()

		sink.Install(GenerateAt(time.Now(), cfg))
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case acquisitor.Disconnected:
		s.bus.Warning("[ASR] could not start reading: acquisitor is disconnected")
		return acquisitor.ErrNotConnected
	case acquisitor.Reading:
		s.bus.Warning("[ASR] could not start reading: acquisitor already reading")
		return acquisitor.ErrAlreadyReading
	}

	s.configMu.Lock()
	cfg := s.config
	s.configMu.Unlock()

	configCh := make(chan Config, 1)
	configCh <- cfg
	s.configCh = configCh
	s.state = acquisitor.Reading

	go s.worker(configCh, sink)

	s.bus.Info("[ASR] example acquisitor started reading")
	return nil
}

func (s *Synthetic) StopReading(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != acquisitor.Reading {
		s.bus.Warning("[ATP] could not stop reading, acquisitor was not reading")
		return acquisitor.ErrNotReading
	}

	if s.configCh != nil {
		close(s.configCh)
		s.configCh = nil
	}
	s.state = acquisitor.Connected
	s.bus.Info("[ATP] example acquisitor stopped reading")
	return nil
}

func (s *Synthetic) SimplifiedState() acquisitor.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Synthetic) UpdateConfig(cfg any) error {
	c, ok := cfg.(Config)
	if !ok {
		return apperrors.New(apperrors.NewStd("config variant mismatch")).
			Category(apperrors.CategoryConfiguration).
			Component("synthetic").
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
			// Consumer hasn't drained the previous update yet; replace it
			// so only the newest config is ever picked up.
			select {
			case <-ch:
			default:
			}
			ch <- c
		}
	}
	return nil
}

func (s *Synthetic) Config() any {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	return s.config
}

// worker generates a spectrum every UpdateDelayMillis until configCh is
// closed by StopReading, applying the newest pending config whenever one
// arrives, including mid-sleep so StopReading's close is noticed promptly.
func (s *Synthetic) worker(configCh chan Config, sink acquisitor.Sink) {
	cfg, ok := <-configCh
	if !ok {
		return
	}

	for {
		select {
		case newCfg, ok := <-configCh:
			if !ok {
				return
			}
			cfg = newCfg
		default:
		}

		sink.Install(GenerateAt(time.Now(), cfg))

		timer := time.NewTimer(time.Duration(cfg.UpdateDelayMillis) * time.Millisecond)
		select {
		case <-timer.C:
		case newCfg, ok := <-configCh:
			timer.Stop()
			if !ok {
				return
			}
			cfg = newCfg
		}
	}
}

// GenerateAt produces the synthetic spectrum for wall-clock time t under
// cfg: phase advances with both a slow time-based term and a per-sample
// spatial term, producing a drifting cosine fringe pattern.
func GenerateAt(t time.Time, cfg Config) spectrum.Spectrum {
	wallMs := float64(t.UnixMilli() % 3_600_000)
	tNorm := wallMs / 3600.0

	values := make([]spectrum.Value, 0, cfg.Points)
	for i := uint64(0); i < cfg.Points; i++ {
		x := float64(i) / float64(cfg.Points)
		phase := tNorm*cfg.PhaseTSpeed + x*cfg.PhaseXSpeed
		power := cfg.Amplitude * math.Cos(phase)
		wavelength := x * math.Pi * 1e-9

		values = append(values, spectrum.Value{Wavelength: wavelength, Power: power})
	}

	return spectrum.New(values)
}
