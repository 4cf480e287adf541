// Package iostreamstest provides test doubles for the iostreams package.
// All test files should use iostreamstest.New() to get properly wired
// IOStreams with a loggertest nop logger.
package iostreamstest

import (
	"io"
	"sync"

	"github.com/schmitthub/cienv/internal/iostreams"
	"github.com/schmitthub/cienv/internal/logger/loggertest"
)

// New creates IOStreams for testing.
// Non-interactive, colors disabled, progress off, nop logger by default.
func New() *TestIOStreams {
	in := &testBuffer{}
	out := &testBuffer{}
	errOut := &testBuffer{}

	// Zero values mean non-interactive and colors disabled.
	ios := &iostreams.IOStreams{
		In:     in,
		Out:    out,
		ErrOut: errOut,
		Logger: loggertest.NewNop(),
	}

	return &TestIOStreams{
		IOStreams: ios,
		InBuf:     in,
		OutBuf:    out,
		ErrBuf:    errOut,
	}
}

// TestIOStreams wraps IOStreams for testing with accessible buffers.
type TestIOStreams struct {
	*iostreams.IOStreams
	InBuf  *testBuffer
	OutBuf *testBuffer
	ErrBuf *testBuffer
}

// testBuffer wraps a byte slice for use in tests.
type testBuffer struct {
	mu   sync.Mutex
	data []byte
}

func (b *testBuffer) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.data) == 0 {
		return 0, io.EOF
	}
	n := copy(p, b.data)
	b.data = b.data[n:]
	return n, nil
}

func (b *testBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = append(b.data, p...)
	return len(p), nil
}

func (b *testBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.data)
}

func (b *testBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = nil
}

// SetInput sets the input data for the test buffer.
func (b *testBuffer) SetInput(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = []byte(s)
}

// SetInteractive allows tests to simulate interactive mode.
func (t *TestIOStreams) SetInteractive(interactive bool) {
	t.IOStreams.SetStdinTTY(interactive)
	t.IOStreams.SetStdoutTTY(interactive)
	t.IOStreams.SetStderrTTY(interactive)
}

// SetStatusLines enables progress output with the plain-text fallback so
// status lines land in ErrBuf deterministically.
func (t *TestIOStreams) SetStatusLines() {
	t.IOStreams.SetProgressIndicatorEnabled(true)
	t.IOStreams.SetSpinnerDisabled(true)
}
