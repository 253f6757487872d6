package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dkoosis/tapout/pkg/pattern"
	"github.com/dkoosis/tapout/pkg/stream"
	"github.com/dkoosis/tapout/pkg/tap"
)

// Theme defines colors and icons for terminal rendering.
type Theme struct {
	Name    string
	Primary lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style

	// Directive styles SKIP/TODO assertions and their reasons.
	Directive lipgloss.Style
	// Diagnostic styles decoded YAML diagnostic lines.
	Diagnostic lipgloss.Style

	Icons ThemeIcons
}

// ThemeIcons defines the icon set for a theme.
type ThemeIcons struct {
	Pass string
	Fail string
	Skip string
	Todo string
	Warn string
	Info string
}

// DefaultTheme returns a vibrant color theme.
func DefaultTheme() Theme {
	return Theme{
		Name:       "default",
		Primary:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),  // blue
		Success:    lipgloss.NewStyle().Foreground(lipgloss.Color("34")),  // green
		Warning:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // orange
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color("196")), // red
		Muted:      lipgloss.NewStyle().Foreground(lipgloss.Color("242")), // gray
		Bold:       lipgloss.NewStyle().Bold(true),
		Directive:  lipgloss.NewStyle().Foreground(lipgloss.Color("141")), // violet
		Diagnostic: lipgloss.NewStyle().Foreground(lipgloss.Color("250")), // light gray
		Icons: ThemeIcons{
			Pass: "✓",
			Fail: "✗",
			Skip: "○",
			Todo: "◌",
			Warn: "⚠",
			Info: "●",
		},
	}
}

// OrcaTheme returns a muted, professional theme.
func OrcaTheme() Theme {
	return Theme{
		Name:       "orca",
		Primary:    lipgloss.NewStyle().Foreground(lipgloss.Color("75")),  // pale blue
		Success:    lipgloss.NewStyle().Foreground(lipgloss.Color("108")), // sage green
		Warning:    lipgloss.NewStyle().Foreground(lipgloss.Color("179")), // muted gold
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color("167")), // muted red
		Muted:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")), // lighter gray
		Bold:       lipgloss.NewStyle().Bold(true),
		Directive:  lipgloss.NewStyle().Foreground(lipgloss.Color("139")).Italic(true), // dusty mauve
		Diagnostic: lipgloss.NewStyle().Foreground(lipgloss.Color("248")),
		Icons: ThemeIcons{
			Pass: "✓",
			Fail: "✗",
			Skip: "○",
			Todo: "◌",
			Warn: "!",
			Info: "·",
		},
	}
}

// MonoTheme returns a monochrome theme (no colors).
func MonoTheme() Theme {
	return Theme{
		Name:       "mono",
		Primary:    lipgloss.NewStyle(),
		Success:    lipgloss.NewStyle(),
		Warning:    lipgloss.NewStyle(),
		Error:      lipgloss.NewStyle(),
		Muted:      lipgloss.NewStyle(),
		Bold:       lipgloss.NewStyle().Bold(true),
		Directive:  lipgloss.NewStyle(),
		Diagnostic: lipgloss.NewStyle(),
		Icons: ThemeIcons{
			Pass: "+",
			Fail: "x",
			Skip: "~",
			Todo: "-",
			Warn: "!",
			Info: "*",
		},
	}
}

// ThemeNames lists the built-in themes.
var ThemeNames = []string{"default", "orca", "mono"}

// ThemeByName returns a theme by name, defaulting to DefaultTheme.
func ThemeByName(name string) Theme {
	switch name {
	case "orca":
		return OrcaTheme()
	case "mono":
		return MonoTheme()
	default:
		return DefaultTheme()
	}
}

// Status returns the icon and style for a pattern status.
func (th Theme) Status(status string) (string, lipgloss.Style) {
	switch status {
	case pattern.StatusPass:
		return th.Icons.Pass, th.Success
	case pattern.StatusFail:
		return th.Icons.Fail, th.Error
	case pattern.StatusSkip:
		return th.Icons.Skip, th.Directive
	case pattern.StatusTodo:
		return th.Icons.Todo, th.Directive
	default:
		return th.Icons.Info, th.Muted
	}
}

// Assertion returns the icon and style for an assertion. A directive wins
// over the ok/not ok result, so a failing TODO is not drawn as a failure.
func (th Theme) Assertion(a tap.Assertion) (string, lipgloss.Style) {
	if a.Directive != nil {
		switch a.Directive.Kind {
		case tap.DirectiveSkip:
			return th.Status(pattern.StatusSkip)
		case tap.DirectiveTodo:
			return th.Status(pattern.StatusTodo)
		}
	}
	if a.OK {
		return th.Status(pattern.StatusPass)
	}
	return th.Status(pattern.StatusFail)
}

// StreamStyle maps live-view line kinds onto the theme.
func (th Theme) StreamStyle() stream.StyleFunc {
	return func(kind stream.LineKind, text string) string {
		switch kind {
		case stream.KindPass:
			return th.Success.Render(text)
		case stream.KindFail:
			return th.Error.Render(text)
		case stream.KindSkip, stream.KindTodo:
			return th.Directive.Render(text)
		case stream.KindGroup:
			return th.Bold.Render(text)
		case stream.KindOutput:
			return th.Diagnostic.Render(text)
		case stream.KindSeparator:
			return th.Muted.Render(text)
		default:
			return text
		}
	}
}
