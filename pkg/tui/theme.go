package tui

import (
	"github.com/charmbracelet/lipgloss"

	"codebased/pkg/config"
)

// Styles holds the lipgloss styles derived from the configured theme.
type Styles struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Header    lipgloss.Style
	Dir       lipgloss.Style
	File      lipgloss.Style
	Cursor    lipgloss.Style
	Checked   lipgloss.Style
	Dimmed    lipgloss.Style
	Status    lipgloss.Style
	StatusErr lipgloss.Style
	Help      lipgloss.Style
	Dialog    lipgloss.Style
	DialogErr lipgloss.Style
}

// NewStyles builds the style set from a color theme.
func NewStyles(t config.Theme) Styles {
	accent := lipgloss.Color(t.Accent)
	secondary := lipgloss.Color(t.Secondary)
	primary := lipgloss.Color(t.Primary)
	surface := lipgloss.Color(t.Surface)
	errColor := lipgloss.Color(t.Error)

	base := lipgloss.NewStyle()
	return Styles{
		Title:     base.Foreground(accent).Bold(true),
		Subtitle:  base.Foreground(secondary),
		Header:    base.Foreground(accent).Background(surface).Bold(true).Padding(0, 1),
		Dir:       base.Foreground(secondary),
		File:      base.Foreground(accent),
		Cursor:    base.Foreground(accent).Background(primary).Bold(true),
		Checked:   base.Foreground(secondary).Bold(true),
		Dimmed:    base.Foreground(secondary).Faint(true),
		Status:    base.Foreground(secondary),
		StatusErr: base.Foreground(errColor).Bold(true),
		Help:      base.Foreground(secondary).Faint(true),
		Dialog: base.Foreground(accent).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primary).
			Padding(1, 2),
		DialogErr: base.Foreground(errColor).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(errColor).
			Padding(1, 2),
	}
}
