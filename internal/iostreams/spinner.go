package iostreams

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"-", "\\", "|", "/"}

// SpinnerFrame renders one animation frame for tick with an optional label.
func SpinnerFrame(tick int, label string, cs *ColorScheme) string {
	frame := cs.Cyan(spinnerFrames[tick%len(spinnerFrames)])
	if label == "" {
		return frame
	}
	return frame + " " + label
}

// spinnerRunner manages an animated spinner goroutine.
type spinnerRunner struct {
	label    string
	cs       *ColorScheme
	writer   io.Writer
	done     chan struct{}
	stopped  chan struct{}
	tick     int
	mu       sync.Mutex
	stopOnce sync.Once
}

func newSpinnerRunner(label string, cs *ColorScheme, writer io.Writer) *spinnerRunner {
	return &spinnerRunner{
		label:   label,
		cs:      cs,
		writer:  writer,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

func (r *spinnerRunner) start() {
	go func() {
		defer close(r.stopped)
		ticker := time.NewTicker(120 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-r.done:
				return
			case <-ticker.C:
				r.mu.Lock()
				frame := SpinnerFrame(r.tick, r.label, r.cs)
				r.tick++
				r.mu.Unlock()

				// Exit on write error (pipe closed) to avoid a hot loop.
				if _, err := fmt.Fprintf(r.writer, "\r\033[K%s", frame); err != nil {
					return
				}
			}
		}
	}()
}

func (r *spinnerRunner) stop() {
	r.stopOnce.Do(func() {
		close(r.done)
		<-r.stopped
		fmt.Fprint(r.writer, "\r\033[K")
	})
}

func (r *spinnerRunner) setLabel(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.label = label
}

// StartSpinner starts an animated spinner on stderr. With the spinner
// disabled each call prints one status line instead. Does nothing when
// progress output is off (non-TTY).
func (s *IOStreams) StartSpinner(label string) {
	if !s.progressIndicatorEnabled {
		return
	}

	s.spinnerMu.Lock()
	defer s.spinnerMu.Unlock()

	if s.spinnerDisabled {
		if label == "" {
			label = "Working"
		}
		if !strings.HasSuffix(label, "...") {
			label += "..."
		}
		fmt.Fprintln(s.ErrOut, s.ColorScheme().Cyan(label))
		return
	}

	if s.activeSpinner != nil {
		s.activeSpinner.setLabel(label)
		return
	}

	sp := newSpinnerRunner(label, s.ColorScheme(), s.ErrOut)
	sp.start()
	s.activeSpinner = sp
}

// StopSpinner stops the active spinner and clears its line.
func (s *IOStreams) StopSpinner() {
	s.spinnerMu.Lock()
	defer s.spinnerMu.Unlock()

	if s.activeSpinner == nil {
		return
	}
	s.activeSpinner.stop()
	s.activeSpinner = nil
}

// RunWithSpinner runs fn while showing a spinner.
func (s *IOStreams) RunWithSpinner(label string, fn func() error) error {
	s.StartSpinner(label)
	defer s.StopSpinner()
	return fn()
}
