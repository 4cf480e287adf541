package iostreams

import (
	"bytes"
	"strings"
	"testing"
)

func TestTTYDetection_NonFile(t *testing.T) {
	ios := &IOStreams{
		In:           strings.NewReader(""),
		Out:          &bytes.Buffer{},
		ErrOut:       &bytes.Buffer{},
		isInputTTY:   -1,
		isOutputTTY:  -1,
		isStderrTTY:  -1,
		colorEnabled: -1,
	}

	if ios.IsInputTTY() || ios.IsOutputTTY() || ios.IsStderrTTY() {
		t.Error("buffers must never be detected as terminals")
	}
	if ios.ColorEnabled() {
		t.Error("auto color should follow stdout TTY detection")
	}
}

func TestTTYOverrides(t *testing.T) {
	ios := &IOStreams{colorEnabled: -1}
	ios.SetStdinTTY(true)
	ios.SetStdoutTTY(true)
	ios.SetStderrTTY(false)

	if !ios.IsInputTTY() || !ios.IsOutputTTY() || ios.IsStderrTTY() {
		t.Error("overrides not applied")
	}
	if !ios.ColorEnabled() {
		t.Error("auto color should be on for a TTY stdout")
	}

	ios.SetColorEnabled(false)
	if ios.ColorEnabled() || ios.ColorScheme().Enabled() {
		t.Error("explicit disable should win")
	}
}

func TestSystem_RespectsEnv(t *testing.T) {
	t.Setenv(SpinnerDisabledEnv, "1")
	t.Setenv("NO_COLOR", "1")

	ios := System()
	if !ios.spinnerDisabled {
		t.Errorf("%s should disable the spinner", SpinnerDisabledEnv)
	}
	if ios.ColorEnabled() {
		t.Error("NO_COLOR should disable colors")
	}
}
