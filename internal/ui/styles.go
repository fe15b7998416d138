package ui

import "github.com/charmbracelet/lipgloss"

// Styles contains all the style definitions for the UI
type Styles struct {
	Title     lipgloss.Style
	Badge     lipgloss.Style
	Dim       lipgloss.Style
	Label     lipgloss.Style
	Counter   lipgloss.Style
	Loading   lipgloss.Style
	Empty     lipgloss.Style
	Notice    lipgloss.Style
	Error     lipgloss.Style
	Card      lipgloss.Style
	Author    lipgloss.Style
	Date      lipgloss.Style
	Highlight lipgloss.Style
	Help      lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		Badge: lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("214")).
			Padding(0, 1),
		Dim:     lipgloss.NewStyle().Faint(true),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Counter: lipgloss.NewStyle().Foreground(lipgloss.Color("78")).Bold(true), // green
		Loading: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),           // gray
		Empty:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),           // yellow
		Notice:  lipgloss.NewStyle().Foreground(lipgloss.Color("51")),            // cyan
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),           // red
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1).
			MarginTop(1),
		Author:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		Date:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Highlight: lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		Help:      lipgloss.NewStyle().Faint(true).MarginTop(1),
	}
}
