package main

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/joshuapare/titlepatch/pkg/types"
)

var (
	// Color palette
	successColor = lipgloss.Color("#04B575")
	errorColor   = lipgloss.Color("#FF4B4B")
	mutedColor   = lipgloss.Color("#666666")
	headerColor  = lipgloss.Color("#7D56F4")

	successStyle = lipgloss.NewStyle().Foreground(successColor).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	headerStyle  = lipgloss.NewStyle().Foreground(headerColor).Bold(true)
)

func styled(s lipgloss.Style, text string) string {
	if noColor {
		return text
	}
	return s.Render(text)
}

// mark renders a result as a check line prefix.
func mark(r types.Result) string {
	if r.OK() {
		return styled(successStyle, "✓")
	}
	return styled(errorStyle, "✗")
}

// heading renders a section title.
func heading(text string) string {
	return styled(headerStyle, text)
}

// muted renders secondary detail such as digests and paths.
func muted(text string) string {
	return styled(mutedStyle, text)
}
