// Package logbus implements the bounded, multi-producer single-consumer
// log channel the Handler exposes to the UI: producers on the
// acquisition hot path never block, and a slow or absent consumer only
// costs dropped log lines, never a stalled worker.
package logbus

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
)

// capacity is the fixed channel size: spec'd at 64 entries.
const capacity = 64

// Level is a log record's severity.
type Level int

const (
	Info Level = iota
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Record is a single log entry as seen by the UI.
type Record struct {
	Msg   string
	Level Level
}

// Bus is a bounded MPSC channel of Records. The zero value is not usable;
// construct with New.
type Bus struct {
	entries chan Record
	dropped atomic.Uint64
	mu      sync.Mutex
}

// New returns a Bus ready to accept Publish calls.
func New() *Bus {
	return &Bus{entries: make(chan Record, capacity)}
}

// Publish attempts a non-blocking send. On overflow the record is
// dropped and mirrored to stderr exactly once, so an unattended process
// still surfaces its warnings and errors somewhere.
func (b *Bus) Publish(level Level, msg string) {
	if b == nil {
		return
	}

	select {
	case b.entries <- Record{Msg: msg, Level: level}:
	default:
		b.dropped.Add(1)
		fmt.Fprintf(os.Stderr, "[%s] %s (logbus full, dropped)\n", level, msg)
	}
}

// Info publishes an informational record.
func (b *Bus) Info(msg string) { b.Publish(Info, msg) }

// Warning publishes a warning record.
func (b *Bus) Warning(msg string) { b.Publish(Warning, msg) }

// Errorf publishes a formatted error record.
func (b *Bus) Errorf(format string, args ...any) { b.Publish(Error, fmt.Sprintf(format, args...)) }

// Warningf publishes a formatted warning record.
func (b *Bus) Warningf(format string, args ...any) { b.Publish(Warning, fmt.Sprintf(format, args...)) }

// Infof publishes a formatted informational record.
func (b *Bus) Infof(format string, args ...any) { b.Publish(Info, fmt.Sprintf(format, args...)) }

// Drain returns every record currently buffered without blocking. Each
// call returns only what has accumulated since the previous drain.
func (b *Bus) Drain() []Record {
	b.mu.Lock()
	defer b.mu.Unlock()

	var batch []Record
	for {
		select {
		case rec := <-b.entries:
			batch = append(batch, rec)
		default:
			return batch
		}
	}
}

// Dropped reports how many records have been discarded due to overflow
// since the Bus was created.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}
