// Package iostreams abstracts the process's standard streams for commands.
package iostreams

import (
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// SpinnerDisabledEnv disables the animated spinner in favour of plain
// status lines.
const SpinnerDisabledEnv = "NOSPIN"

// IOStreams provides access to standard input/output/error streams.
type IOStreams struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer

	// Logger receives diagnostic output. Never nil in production.
	Logger Logger

	// TTY caches: -1 = unchecked, 0 = false, 1 = true
	isInputTTY  int
	isOutputTTY int
	isStderrTTY int

	// colorEnabled: -1 = auto (detect from TTY), 0 = disabled, 1 = enabled
	colorEnabled int

	progressIndicatorEnabled bool
	spinnerDisabled          bool
	activeSpinner            *spinnerRunner
	spinnerMu                sync.Mutex
}

// System creates an IOStreams connected to the process's standard streams.
func System() *IOStreams {
	ios := &IOStreams{
		In:           os.Stdin,
		Out:          os.Stdout,
		ErrOut:       os.Stderr,
		isInputTTY:   -1,
		isOutputTTY:  -1,
		isStderrTTY:  -1,
		colorEnabled: -1,
	}

	// Progress only when stderr is a terminal
	ios.progressIndicatorEnabled = ios.IsStderrTTY()

	if os.Getenv(SpinnerDisabledEnv) != "" {
		ios.spinnerDisabled = true
	}
	if os.Getenv("NO_COLOR") != "" {
		ios.colorEnabled = 0
	}

	return ios
}

func isTerminal(v any) int {
	if f, ok := v.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return 1
	}
	return 0
}

// IsInputTTY returns true if stdin is a terminal.
func (s *IOStreams) IsInputTTY() bool {
	if s.isInputTTY == -1 {
		s.isInputTTY = isTerminal(s.In)
	}
	return s.isInputTTY == 1
}

// IsOutputTTY returns true if stdout is a terminal.
func (s *IOStreams) IsOutputTTY() bool {
	if s.isOutputTTY == -1 {
		s.isOutputTTY = isTerminal(s.Out)
	}
	return s.isOutputTTY == 1
}

// IsStderrTTY returns true if stderr is a terminal.
func (s *IOStreams) IsStderrTTY() bool {
	if s.isStderrTTY == -1 {
		s.isStderrTTY = isTerminal(s.ErrOut)
	}
	return s.isStderrTTY == 1
}

// SetStdinTTY overrides TTY detection for stdin.
func (s *IOStreams) SetStdinTTY(v bool) { s.isInputTTY = boolToInt(v) }

// SetStdoutTTY overrides TTY detection for stdout.
func (s *IOStreams) SetStdoutTTY(v bool) { s.isOutputTTY = boolToInt(v) }

// SetStderrTTY overrides TTY detection for stderr.
func (s *IOStreams) SetStderrTTY(v bool) { s.isStderrTTY = boolToInt(v) }

// ColorEnabled returns whether color output is enabled.
func (s *IOStreams) ColorEnabled() bool {
	if s.colorEnabled == -1 {
		return s.IsOutputTTY()
	}
	return s.colorEnabled == 1
}

// SetColorEnabled explicitly enables or disables color output.
func (s *IOStreams) SetColorEnabled(enabled bool) {
	s.colorEnabled = boolToInt(enabled)
}

// ColorScheme returns a ColorScheme configured for this IOStreams.
func (s *IOStreams) ColorScheme() *ColorScheme {
	return NewColorScheme(s.ColorEnabled())
}

// SetProgressIndicatorEnabled turns spinner and status output on or off.
func (s *IOStreams) SetProgressIndicatorEnabled(v bool) {
	s.progressIndicatorEnabled = v
}

// SetSpinnerDisabled switches between the animated spinner and plain
// status lines.
func (s *IOStreams) SetSpinnerDisabled(v bool) {
	s.spinnerMu.Lock()
	defer s.spinnerMu.Unlock()
	s.spinnerDisabled = v
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
