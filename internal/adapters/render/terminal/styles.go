package terminal

import "github.com/charmbracelet/lipgloss"

type styles struct {
	card       lipgloss.Style
	title      lipgloss.Style
	link       lipgloss.Style
	body       lipgloss.Style
	fieldName  lipgloss.Style
	fieldValue lipgloss.Style
	footer     lipgloss.Style
	header     lipgloss.Style
	index      lipgloss.Style
	authors    lipgloss.Style
	empty      lipgloss.Style
	speaker    lipgloss.Style
}

func newStyles() styles {
	return styles{
		card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("137")).
			Padding(0, 1),
		title:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("180")),
		link:       lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Underline(true),
		body:       lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		fieldName:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("250")),
		fieldValue: lipgloss.NewStyle().Foreground(lipgloss.Color("229")),
		footer:     lipgloss.NewStyle().Faint(true).Italic(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		index:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("137")),
		authors:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		empty:      lipgloss.NewStyle().Faint(true),
		speaker:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("108")),
	}
}
