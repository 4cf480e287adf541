package iostreams

import "testing"

func TestColorScheme_Disabled(t *testing.T) {
	cs := NewColorScheme(false)

	for name, fn := range map[string]func(string) string{
		"Red": cs.Red, "Yellow": cs.Yellow, "Green": cs.Green,
		"Cyan": cs.Cyan, "Muted": cs.Muted, "Bold": cs.Bold,
	} {
		if got := fn("text"); got != "text" {
			t.Errorf("%s(\"text\") = %q, want unmodified", name, got)
		}
	}
	if cs.Cyanf("%d", 3) != "3" {
		t.Errorf("Cyanf should format without color")
	}
}

func TestColorScheme_Icons(t *testing.T) {
	cs := NewColorScheme(false)

	if cs.SuccessIcon() != "[ok]" {
		t.Errorf("SuccessIcon() = %q", cs.SuccessIcon())
	}
	if cs.WarningIcon() != "[warn]" {
		t.Errorf("WarningIcon() = %q", cs.WarningIcon())
	}
	if cs.FailureIcon() != "[error]" {
		t.Errorf("FailureIcon() = %q", cs.FailureIcon())
	}

	colored := NewColorScheme(true)
	if !colored.Enabled() {
		t.Error("Enabled() should be true")
	}
	if colored.SuccessIcon() == "[ok]" {
		t.Error("colored SuccessIcon should not use the plain fallback")
	}
}
