package iostreams

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boldStyle    = lipgloss.NewStyle().Bold(true)
)

// ColorScheme provides terminal color formatting.
// When colors are disabled, methods return the input string unmodified.
type ColorScheme struct {
	enabled bool
}

// NewColorScheme creates a new ColorScheme.
func NewColorScheme(enabled bool) *ColorScheme {
	return &ColorScheme{enabled: enabled}
}

// Enabled returns whether colors are enabled.
func (cs *ColorScheme) Enabled() bool {
	return cs.enabled
}

func (cs *ColorScheme) render(style lipgloss.Style, s string) string {
	if !cs.enabled {
		return s
	}
	return style.Render(s)
}

// Red returns the string in red (error color).
func (cs *ColorScheme) Red(s string) string { return cs.render(errorStyle, s) }

// Yellow returns the string in yellow (warning color).
func (cs *ColorScheme) Yellow(s string) string { return cs.render(warningStyle, s) }

// Green returns the string in green (success color).
func (cs *ColorScheme) Green(s string) string { return cs.render(successStyle, s) }

// Cyan returns the string in cyan (info color).
func (cs *ColorScheme) Cyan(s string) string { return cs.render(infoStyle, s) }

// Cyanf returns a formatted string in cyan.
func (cs *ColorScheme) Cyanf(format string, a ...any) string {
	return cs.Cyan(fmt.Sprintf(format, a...))
}

// Muted returns the string in gray.
func (cs *ColorScheme) Muted(s string) string { return cs.render(mutedStyle, s) }

// Bold returns the string in bold.
func (cs *ColorScheme) Bold(s string) string { return cs.render(boldStyle, s) }

// SuccessIcon returns a success indicator.
// With colors: green ✓
// Without colors: [ok]
func (cs *ColorScheme) SuccessIcon() string {
	if cs.enabled {
		return cs.Green("✓")
	}
	return "[ok]"
}

// WarningIcon returns a warning indicator.
// With colors: yellow !
// Without colors: [warn]
func (cs *ColorScheme) WarningIcon() string {
	if cs.enabled {
		return cs.Yellow("!")
	}
	return "[warn]"
}

// FailureIcon returns a failure indicator.
// With colors: red ✗
// Without colors: [error]
func (cs *ColorScheme) FailureIcon() string {
	if cs.enabled {
		return cs.Red("✗")
	}
	return "[error]"
}
