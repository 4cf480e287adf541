// Package loggertest provides test doubles for the logger package.
// TestLogger captures log output for assertions in tests and is safe for
// concurrent use, since sweepers and pollers log from many goroutines.
package loggertest

import (
	"bytes"
	"sync"

	"github.com/rs/zerolog"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// TestLogger satisfies iostreams.Logger without exposing zerolog's full API.
type TestLogger struct {
	logger zerolog.Logger
	buf    *syncBuffer
}

// New creates a test logger that captures all output (debug and up) as JSON.
func New() *TestLogger {
	buf := &syncBuffer{}
	return &TestLogger{
		logger: zerolog.New(buf).Level(zerolog.DebugLevel),
		buf:    buf,
	}
}

// NewNop creates a test logger that discards all output.
func NewNop() *TestLogger {
	return &TestLogger{
		logger: zerolog.Nop(),
		buf:    &syncBuffer{},
	}
}

// Debug returns a debug-level zerolog.Event.
func (tl *TestLogger) Debug() *zerolog.Event { return tl.logger.Debug() }

// Info returns an info-level zerolog.Event.
func (tl *TestLogger) Info() *zerolog.Event { return tl.logger.Info() }

// Warn returns a warn-level zerolog.Event.
func (tl *TestLogger) Warn() *zerolog.Event { return tl.logger.Warn() }

// Error returns an error-level zerolog.Event.
func (tl *TestLogger) Error() *zerolog.Event { return tl.logger.Error() }

// Output returns captured log output as a string.
func (tl *TestLogger) Output() string { return tl.buf.String() }

// Reset clears captured output.
func (tl *TestLogger) Reset() { tl.buf.Reset() }
