// Package filewatcher implements the FileWatcher acquisitor: it watches a
// directory non-recursively and treats every created file as a new
// spectrum, parsed as CSV.
package filewatcher

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/Guilherme32/rosa-go/internal/acquisitor"
	apperrors "github.com/Guilherme32/rosa-go/internal/errors"
	"github.com/Guilherme32/rosa-go/internal/logbus"
	"github.com/Guilherme32/rosa-go/internal/spectrum"
	"github.com/fsnotify/fsnotify"
)

// Config is the FileWatcher's persisted configuration.
type Config struct {
	WatcherPath string
}

// DefaultConfig mirrors the original's default of the current directory.
func DefaultConfig() Config {
	return Config{WatcherPath: "./"}
}

// FileWatcher watches Config.WatcherPath and installs every newly created
// file's contents as a spectrum. The zero value is not usable; construct
// with New.
type FileWatcher struct {
	mu      sync.Mutex
	state   acquisitor.State
	watcher *fsnotify.Watcher

	configMu sync.Mutex
	config   Config

	bus *logbus.Bus
}

// New returns a disconnected FileWatcher.
func New(cfg Config, bus *logbus.Bus) *FileWatcher {
	return &FileWatcher{state: acquisitor.Disconnected, config: cfg, bus: bus}
}

func (f *FileWatcher) Connect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != acquisitor.Disconnected {
		f.bus.Warning("[FCN] could not connect: acquisitor already connected")
		return acquisitor.ErrAlreadyConnected
	}

	f.configMu.Lock()
	path := f.config.WatcherPath
	f.configMu.Unlock()

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			f.bus.Warningf("[FCN] could not connect: %v", apperrors.FileError(acquisitor.ErrPathDoesNotExist, path, 0))
			return acquisitor.ErrPathDoesNotExist
		}
		f.bus.Warningf("[FCN] could not connect: %v", apperrors.FileError(acquisitor.ErrPathPermissionDenied, path, 0))
		return acquisitor.ErrPathPermissionDenied
	}
	if !info.IsDir() {
		f.bus.Warningf("[FCN] could not connect: %v", apperrors.FileError(acquisitor.ErrPathIsNotDir, path, 0))
		return acquisitor.ErrPathIsNotDir
	}

	f.state = acquisitor.Connected
	f.bus.Info("[FCN] acquisitor connected")
	return nil
}

func (f *FileWatcher) Disconnect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == acquisitor.Disconnected {
		f.bus.Warning("[FDN] could not disconnect: acquisitor already disconnected")
		return acquisitor.ErrAlreadyDisconnected
	}

	f.state = acquisitor.Disconnected
	f.bus.Info("[FDN] acquisitor disconnected")
	return nil
}

// StartReading installs a non-recursive filesystem watch on the
// configured directory and installs every create event's file contents
// as a spectrum via sink.
func (f *FileWatcher) StartReading(ctx context.Context, sink acquisitor.Sink, singleRead bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case acquisitor.Disconnected:
		f.bus.Warning("[FSR] could not start reading: acquisitor is disconnected")
		return acquisitor.ErrNotConnected
	case acquisitor.Reading:
		f.bus.Warning("[FSR] could not start reading: acquisitor already reading")
		return acquisitor.ErrAlreadyReading
	}

	f.configMu.Lock()
	path := f.config.WatcherPath
	f.configMu.Unlock()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		f.bus.Warningf("[FSR] could not start reading: %v", apperrors.AcquisitorError(acquisitor.ErrNotifyInternalError, "file-watcher", path))
		return acquisitor.ErrNotifyInternalError
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		f.bus.Warningf("[FSR] could not start reading: %v", apperrors.AcquisitorError(acquisitor.ErrNotifyInternalError, "file-watcher", path))
		return acquisitor.ErrNotifyInternalError
	}

	f.watcher = watcher
	f.state = acquisitor.Reading

	go f.watch(watcher, sink, singleRead)

	if singleRead {
		f.bus.Info("[FSR] acquisitor reading 1 spectrum")
	} else {
		f.bus.Info("[FSR] acquisitor reading continuously")
	}
	return nil
}

func (f *FileWatcher) StopReading(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != acquisitor.Reading {
		f.bus.Warning("[FTP] could not stop reading, acquisitor was not reading")
		return acquisitor.ErrNotReading
	}

	if f.watcher != nil {
		f.watcher.Close()
		f.watcher = nil
	}
	f.state = acquisitor.Connected
	f.bus.Info("[FTP] acquisitor stopped reading")
	return nil
}

func (f *FileWatcher) SimplifiedState() acquisitor.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *FileWatcher) UpdateConfig(cfg any) error {
	c, ok := cfg.(Config)
	if !ok {
		return apperrors.New(apperrors.NewStd("config variant mismatch")).
			Category(apperrors.CategoryConfiguration).
			Component("filewatcher").
			Build()
	}
	f.configMu.Lock()
	f.config = c
	f.configMu.Unlock()
	return nil
}

func (f *FileWatcher) Config() any {
	f.configMu.Lock()
	defer f.configMu.Unlock()
	return f.config
}

// watch consumes fsnotify events until the watcher is closed by
// StopReading. A read error transitions the acquisitor to Disconnected;
// a successful single_read transitions back to Connected.
func (f *FileWatcher) watch(watcher *fsnotify.Watcher, sink acquisitor.Sink, singleRead bool) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create == 0 {
				continue
			}

			spec, ok := readSpectrumFile(event.Name)
			if !ok {
				f.bus.Warning("[FSR] acquisitor disconnected due to an error")
				f.mu.Lock()
				f.state = acquisitor.Disconnected
				f.mu.Unlock()
				return
			}
			if spec == nil {
				// Empty content: an in-place edit by the producer,
				// the final content will arrive in a later event.
				continue
			}

			sink.Install(*spec)

			if singleRead {
				f.mu.Lock()
				f.state = acquisitor.Connected
				f.mu.Unlock()
				return
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			f.bus.Errorf("[FWC] watcher error: %v", err)
			f.bus.Warning("[FSR] acquisitor disconnected due to an error")
			f.mu.Lock()
			f.state = acquisitor.Disconnected
			f.mu.Unlock()
			return
		}
	}
}

// readSpectrumFile opens path, retrying up to 10 times at 100ms intervals
// on a sharing-violation error, and parses its contents as a spectrum.
// Returns (nil, true) for an empty read, which the caller treats as an
// in-progress write to ignore.
func readSpectrumFile(path string) (*spectrum.Spectrum, bool) {
	var contents []byte
	var err error

	for range 10 {
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			if isSharingViolation(err) {
				time.Sleep(100 * time.Millisecond)
				continue
			}
			return nil, false
		}
		contents, err = io.ReadAll(f)
		f.Close()
		break
	}
	if err != nil {
		return nil, false
	}

	if len(contents) == 0 {
		return nil, true
	}

	spec, err := spectrum.ParseCSV(string(contents))
	if err != nil {
		return nil, false
	}
	return &spec, true
}

// isSharingViolation reports whether err is the OS error 32 the original
// retries on (ERROR_SHARING_VIOLATION on Windows, EPIPE's errno elsewhere),
// meaning another process currently has the file open for writing.
func isSharingViolation(err error) bool {
	var errno syscall.Errno
	return stderrors.As(err, &errno) && errno == 32
}
