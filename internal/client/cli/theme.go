package cli

import "github.com/charmbracelet/lipgloss"

// Theme holds the output styles for one colour scheme.
type Theme struct {
	Dark    bool
	Title   lipgloss.Style
	Text    lipgloss.Style
	Muted   lipgloss.Style
	Accent  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Border  lipgloss.Color
}

type palette struct {
	text, muted, accent, success, failure, border string
}

var (
	darkPalette = palette{
		text:    "#F3F4F6",
		muted:   "#9CA3AF",
		accent:  "#60A5FA",
		success: "#34D399",
		failure: "#F87171",
		border:  "#4B5563",
	}
	lightPalette = palette{
		text:    "#111827",
		muted:   "#6B7280",
		accent:  "#2563EB",
		success: "#059669",
		failure: "#DC2626",
		border:  "#D1D5DB",
	}
)

func NewTheme(dark bool) Theme {
	p := lightPalette
	if dark {
		p = darkPalette
	}
	return Theme{
		Dark:    dark,
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.accent)),
		Text:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.text)),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.muted)),
		Accent:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.accent)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(p.success)),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.failure)),
		Border:  lipgloss.Color(p.border),
	}
}

func (t Theme) Name() string {
	if t.Dark {
		return "dark"
	}
	return "light"
}
