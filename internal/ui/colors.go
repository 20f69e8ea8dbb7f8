package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title    lipgloss.Style
	ok       lipgloss.Style
	err      lipgloss.Style
	warn     lipgloss.Style
	help     lipgloss.Style
	message  lipgloss.Style
	terminal lipgloss.Style
	active   lipgloss.Style
	expanded lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	border := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	return &Palette{
		title:    NewBold(t).MarginBottom(1),
		ok:       NewBold(s),
		err:      NewBold(e),
		warn:     NewStyle(w),
		help:     NewEm(h),
		message:  NewBold(t).Padding(1, 2).Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color(t)),
		terminal: border.BorderForeground(lipgloss.Color(h)),
		active:   border.BorderForeground(lipgloss.Color(t)),
		expanded: border.BorderForeground(lipgloss.Color(s)),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// messageStyle renders the drop message at full or reduced opacity.
func (p *Palette) messageStyle(dimmed bool) lipgloss.Style {
	if dimmed {
		return p.message.Faint(true)
	}
	return p.message
}

// terminalStyle picks the terminal border for the screen's active/expanded flags.
func (p *Palette) terminalStyle(s *Screen) lipgloss.Style {
	switch {
	case s.TerminalExpanded:
		return p.expanded
	case s.TerminalActive:
		return p.active
	default:
		return p.terminal
	}
}
