// Package handler implements the process-wide Handler: the single shared
// instance that owns the current acquisitor, the live and frozen
// spectra, accumulated view limits, and the detected-feature time
// series, and dispatches every lifecycle and query operation the UI
// issues against them.
package handler

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/Guilherme32/rosa-go/internal/acquisitor"
	"github.com/Guilherme32/rosa-go/internal/acquisitor/filewatcher"
	"github.com/Guilherme32/rosa-go/internal/acquisitor/serial"
	"github.com/Guilherme32/rosa-go/internal/acquisitor/synthetic"
	"github.com/Guilherme32/rosa-go/internal/config"
	apperrors "github.com/Guilherme32/rosa-go/internal/errors"
	"github.com/Guilherme32/rosa-go/internal/logbus"
	"github.com/Guilherme32/rosa-go/internal/spectrum"
	"github.com/Guilherme32/rosa-go/internal/timeseries"
)

// Lock order, matching the concurrency model: acquisitorMu is always
// acquired before calling into the acquisitor (which manages its own
// state/config locks internally); configMu is independent of every other
// lock. specMu and limitsMu are leaf locks: never held while dispatching
// to the acquisitor.
type Handler struct {
	acquisitorMu sync.Mutex
	acq          acquisitor.Acquisitor
	acqKind      config.AcquisitorKind

	configMu sync.Mutex
	config   config.HandlerConfig

	specMu       sync.Mutex
	lastSpectrum *spectrum.Spectrum

	frozenMu      sync.Mutex
	frozenSpectra []spectrum.Spectrum

	limitsMu       sync.Mutex
	spectrumLimits *spectrum.Limits

	shadowMu    sync.Mutex
	shadowPaths []string

	unread    atomic.Bool
	savingNew atomic.Bool

	timeSeries *timeseries.Group

	store *config.Store
	bus   *logbus.Bus
}

// New constructs a Handler from cfg, building and holding (but not
// connecting) the configured acquisitor kind using its last-persisted
// variant config from store.
func New(cfg config.HandlerConfig, store *config.Store, bus *logbus.Bus) (*Handler, error) {
	h := &Handler{
		config:     cfg,
		store:      store,
		bus:        bus,
		timeSeries: timeseries.NewGroup(),
	}

	acq, err := buildAcquisitor(cfg.AcquisitorKind, store, bus)
	if err != nil {
		return nil, err
	}
	h.acq = acq
	h.acqKind = cfg.AcquisitorKind

	return h, nil
}

// buildAcquisitor constructs a fresh, disconnected acquisitor of kind,
// loading its persisted variant config from store.
func buildAcquisitor(kind config.AcquisitorKind, store *config.Store, bus *logbus.Bus) (acquisitor.Acquisitor, error) {
	switch kind {
	case config.KindFileWatcher:
		cfg, err := store.LoadFileWatcherConfig()
		if err != nil {
			bus.Errorf("[HLD] could not load file_reader config, using defaults: %v", err)
		}
		return filewatcher.New(filewatcher.Config{WatcherPath: cfg.WatcherPath}, bus), nil

	case config.KindSerial:
		cfg, err := store.LoadSerialConfig()
		if err != nil {
			bus.Errorf("[HLD] could not load imon config, using defaults: %v", err)
		}
		return serial.New(serial.Config{
			ExposureMs:    cfg.ExposureMs,
			ReadDelayMs:   cfg.ReadDelayMs,
			Multisampling: cfg.Multisampling,
		}, bus), nil

	case config.KindSynthetic:
		cfg, err := store.LoadSyntheticConfig()
		if err != nil {
			bus.Errorf("[HLD] could not load example config, using defaults: %v", err)
		}
		return synthetic.New(synthetic.Config{
			Points:            cfg.Points,
			Amplitude:         cfg.Amplitude,
			PhaseTSpeed:       cfg.PhaseTSpeed,
			PhaseXSpeed:       cfg.PhaseXSpeed,
			UpdateDelayMillis: cfg.UpdateDelayMs,
		}, bus), nil

	default:
		return nil, apperrors.New(apperrors.NewStd("unknown acquisitor kind")).
			Category(apperrors.CategoryConfiguration).
			Component("handler").
			Build()
	}
}

// Region: acquisitor lifecycle dispatch ---------------------------------

func (h *Handler) Connect(ctx context.Context) error {
	h.acquisitorMu.Lock()
	defer h.acquisitorMu.Unlock()
	return h.wrapAcquisitorErr(h.acq.Connect(ctx))
}

func (h *Handler) Disconnect(ctx context.Context) error {
	h.acquisitorMu.Lock()
	defer h.acquisitorMu.Unlock()
	return h.wrapAcquisitorErr(h.acq.Disconnect(ctx))
}

// StartReading begins producing spectra via the current acquisitor, with
// the Handler itself as the Sink.
func (h *Handler) StartReading(ctx context.Context, singleRead bool) error {
	h.acquisitorMu.Lock()
	defer h.acquisitorMu.Unlock()
	return h.wrapAcquisitorErr(h.acq.StartReading(ctx, h, singleRead))
}

func (h *Handler) StopReading(ctx context.Context) error {
	h.acquisitorMu.Lock()
	defer h.acquisitorMu.Unlock()
	return h.wrapAcquisitorErr(h.acq.StopReading(ctx))
}

// wrapAcquisitorErr categorizes an error crossing the acquisitor/Handler
// boundary. Lifecycle violations are state errors regardless of
// acquisitor kind; parse failures and device identification failures
// get their own categories; everything else is transport I/O, with the
// I/O category picked by the currently configured acquisitor kind. Must be called with acquisitorMu held, so
// h.acqKind can't change underneath it.
func (h *Handler) wrapAcquisitorErr(err error) error {
	if err == nil {
		return nil
	}

	switch err {
	case acquisitor.ErrAlreadyConnected, acquisitor.ErrAlreadyDisconnected,
		acquisitor.ErrNotConnected, acquisitor.ErrAlreadyReading, acquisitor.ErrNotReading:
		return apperrors.New(err).Category(apperrors.CategoryState).Component("handler").Build()
	case acquisitor.ErrParseError:
		return apperrors.New(err).Category(apperrors.CategoryFileParsing).Component("handler").Build()
	case acquisitor.ErrDeviceNotFound, acquisitor.ErrNotExpectedDevice, acquisitor.ErrUnexpectedResponse:
		return apperrors.New(err).Category(apperrors.CategoryNotFound).Component("handler").Build()
	}

	ioCategory := apperrors.CategoryFileIO
	if h.acqKind == config.KindSerial {
		ioCategory = apperrors.CategorySerialIO
	}
	return apperrors.New(err).Category(ioCategory).Component("handler").Build()
}

// GetConnectionState reports the current acquisitor's simplified state.
func (h *Handler) GetConnectionState() acquisitor.State {
	h.acquisitorMu.Lock()
	defer h.acquisitorMu.Unlock()
	return h.acq.SimplifiedState()
}

// Region: Sink -----------------------------------------------------------

// Install implements acquisitor.Sink: it publishes s as the most recent
// spectrum, raises the unread flag, feeds detected features into the
// time series, and auto-saves when the saving flag is set.
func (h *Handler) Install(s spectrum.Spectrum) (int, bool) {
	h.specMu.Lock()
	h.lastSpectrum = &s
	h.specMu.Unlock()

	h.unread.Store(true)

	h.pushFeatures(s)

	if !h.savingNew.Load() {
		return 0, false
	}

	h.configMu.Lock()
	path := h.config.AutoSavePath
	h.configMu.Unlock()

	idx, err := autoSaveSpectrum(s, path)
	if err != nil {
		h.bus.Errorf("[HAS] could not auto-save spectrum: %v", err)
		return 0, false
	}
	return idx, true
}

// GetSaving reports whether auto-save-on-produce is currently enabled.
func (h *Handler) GetSaving() bool {
	return h.savingNew.Load()
}

// SetSaving toggles auto-save-on-produce.
func (h *Handler) SetSaving(saving bool) {
	h.savingNew.Store(saving)
}

// UnreadSpectrum reports whether a spectrum has arrived since the last
// read of the live path, without clearing the flag.
func (h *Handler) UnreadSpectrum() bool {
	return h.unread.Load()
}
