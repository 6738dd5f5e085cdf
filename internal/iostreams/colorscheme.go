package iostreams

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorEmerald = lipgloss.Color("#04B575")
	colorAmber   = lipgloss.Color("#FFCC00")
	colorSalmon  = lipgloss.Color("#FF6B6B")
	colorDimGray = lipgloss.Color("#626262")
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

func (cs *ColorScheme) Green(s string) string {
	return cs.render(lipgloss.NewStyle().Foreground(colorEmerald), s)
}

func (cs *ColorScheme) Yellow(s string) string {
	return cs.render(lipgloss.NewStyle().Foreground(colorAmber), s)
}

func (cs *ColorScheme) Red(s string) string {
	return cs.render(lipgloss.NewStyle().Foreground(colorSalmon), s)
}

func (cs *ColorScheme) Muted(s string) string {
	return cs.render(lipgloss.NewStyle().Foreground(colorDimGray), s)
}

func (cs *ColorScheme) Bold(s string) string {
	return cs.render(lipgloss.NewStyle().Bold(true), s)
}

// Boldf formats then bolds.
func (cs *ColorScheme) Boldf(format string, a ...any) string {
	return cs.Bold(fmt.Sprintf(format, a...))
}

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
