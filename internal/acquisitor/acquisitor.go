// Package acquisitor defines the shared contract every spectrum source
// (file-watcher, serial spectrometer, synthetic generator) implements,
// along with the uniform failure taxonomy and simplified state machine
// the Handler dispatches against.
package acquisitor

import (
	"context"
	"errors"

	"github.com/Guilherme32/rosa-go/internal/spectrum"
)

// State is the simplified, acquisitor-agnostic view of the underlying
// state machine: Disconnected -> Connected -> Reading.
type State int

const (
	Disconnected State = iota
	Connected
	Reading
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connected:
		return "connected"
	case Reading:
		return "reading"
	default:
		return "unknown"
	}
}

// Uniform failure contract shared by every acquisitor variant. A failed
// lifecycle call never advances the acquisitor's state.
var (
	ErrAlreadyConnected    = errors.New("acquisitor already connected")
	ErrAlreadyDisconnected = errors.New("acquisitor already disconnected")
	ErrNotConnected        = errors.New("acquisitor not connected")
	ErrAlreadyReading      = errors.New("acquisitor already reading")
	ErrNotReading          = errors.New("acquisitor not reading")
)

// Variant-specific failures. Not every acquisitor returns every one of
// these; each is documented on the variant that can produce it.
var (
	ErrPathDoesNotExist     = errors.New("path does not exist")
	ErrPathIsNotDir         = errors.New("path is not a directory")
	ErrPathPermissionDenied = errors.New("permission denied for path")
	ErrDeviceNotFound       = errors.New("no matching device found")
	ErrNotExpectedDevice    = errors.New("device did not identify as expected")
	ErrParseError           = errors.New("could not parse acquired data")
	ErrCommandNack          = errors.New("device rejected command (NACK)")
	ErrUnexpectedResponse   = errors.New("device response was not as expected")
	ErrNotifyInternalError  = errors.New("filesystem watcher failed internally")
)

// Sink is the Handler's shared-state surface, as seen by a worker
// producing spectra. An acquisitor never touches the Handler directly —
// only this narrow interface — so the Handler decides installation,
// auto-save, and unread-flag semantics in one place.
type Sink interface {
	// Install publishes s as the most recent spectrum and raises the
	// unread flag. If auto-save is enabled, it also persists s and
	// returns the saved index; ok is false when auto-save was skipped.
	Install(s spectrum.Spectrum) (savedIndex int, ok bool)
}

// Acquisitor is the polymorphic contract every spectrum source
// implements. Config is an opaque, variant-specific value; callers type-
// assert it to the concrete *Config type of the variant they constructed.
type Acquisitor interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error

	// StartReading begins producing spectra into sink. If singleRead is
	// true, the acquisitor reads exactly one spectrum and returns to
	// Connected; otherwise it reads continuously until StopReading.
	StartReading(ctx context.Context, sink Sink, singleRead bool) error
	StopReading(ctx context.Context) error

	SimplifiedState() State

	UpdateConfig(cfg any) error
	Config() any
}
