package handler

import (
	"context"

	"github.com/Guilherme32/rosa-go/internal/acquisitor"
	"github.com/Guilherme32/rosa-go/internal/acquisitor/filewatcher"
	"github.com/Guilherme32/rosa-go/internal/acquisitor/serial"
	"github.com/Guilherme32/rosa-go/internal/acquisitor/synthetic"
	"github.com/Guilherme32/rosa-go/internal/config"
)

// GetConfig returns the current HandlerConfig.
func (h *Handler) GetConfig() config.HandlerConfig {
	h.configMu.Lock()
	defer h.configMu.Unlock()
	return h.config
}

// UpdateConfig applies newConfig. If the acquisitor kind changed, the
// current acquisitor is force-disconnected and torn down, and a fresh
// one of the new kind is constructed from its last-persisted config
// before the old one is released.
func (h *Handler) UpdateConfig(ctx context.Context, newConfig config.HandlerConfig) error {
	h.configMu.Lock()
	kindChanged := newConfig.AcquisitorKind != h.config.AcquisitorKind
	h.config = newConfig
	h.configMu.Unlock()

	if !kindChanged {
		return nil
	}

	h.acquisitorMu.Lock()
	defer h.acquisitorMu.Unlock()

	// The UI contract requires the acquisitor already be Disconnected
	// before switching kinds; force it down regardless, since a kind
	// switch while Reading would otherwise leak the worker goroutine.
	// Disconnect alone does not stop a running worker, so stop it first.
	if h.acq.SimplifiedState() == acquisitor.Reading {
		_ = h.acq.StopReading(ctx)
	}
	_ = h.acq.Disconnect(ctx)

	newAcq, err := buildAcquisitor(newConfig.AcquisitorKind, h.store, h.bus)
	if err != nil {
		return err
	}

	h.acq = newAcq
	h.acqKind = newConfig.AcquisitorKind
	return nil
}

// GetAcquisitorConfig returns the current acquisitor's opaque config.
func (h *Handler) GetAcquisitorConfig() any {
	h.acquisitorMu.Lock()
	defer h.acquisitorMu.Unlock()
	return h.acq.Config()
}

// UpdateAcquisitorConfig dispatches newConfig to the active acquisitor.
// If newConfig's variant doesn't match the active kind, logs an error
// and leaves the acquisitor's config untouched.
func (h *Handler) UpdateAcquisitorConfig(newConfig any) {
	h.acquisitorMu.Lock()
	kind := h.acqKind
	acq := h.acq
	h.acquisitorMu.Unlock()

	var expected string
	switch kind {
	case config.KindFileWatcher:
		expected = "FileWatcherConfig"
		if _, ok := newConfig.(filewatcher.Config); !ok {
			break
		}
		_ = acq.UpdateConfig(newConfig)
		return
	case config.KindSerial:
		expected = "SerialConfig"
		if _, ok := newConfig.(serial.Config); !ok {
			break
		}
		_ = acq.UpdateConfig(newConfig)
		return
	case config.KindSynthetic:
		expected = "SyntheticConfig"
		if _, ok := newConfig.(synthetic.Config); !ok {
			break
		}
		_ = acq.UpdateConfig(newConfig)
		return
	}

	h.bus.Errorf("[HUQ] mismatched config, expected %s", expected)
}
