package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Color palette.
var (
	ColorPrimary   = lipgloss.Color("39")  // Cyan
	ColorSecondary = lipgloss.Color("212") // Pink
	ColorSuccess   = lipgloss.Color("82")  // Green
	ColorWarning   = lipgloss.Color("214") // Orange
	ColorError     = lipgloss.Color("196") // Red
	ColorMuted     = lipgloss.Color("245") // Gray
	ColorHighlight = lipgloss.Color("226") // Yellow
)

// Styles for CLI output.
var (
	Bold      = lipgloss.NewStyle().Bold(true)
	Italic    = lipgloss.NewStyle().Italic(true)
	Dim       = lipgloss.NewStyle().Foreground(ColorMuted)
	Highlight = lipgloss.NewStyle().Foreground(ColorHighlight)
	Header    = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)

	Success = lipgloss.NewStyle().Foreground(ColorSuccess)
	Warning = lipgloss.NewStyle().Foreground(ColorWarning)
	Error   = lipgloss.NewStyle().Foreground(ColorError)

	// DisplayPath is a hit's short, human-facing path label.
	DisplayPath = lipgloss.NewStyle().Foreground(ColorPrimary)
	Source      = lipgloss.NewStyle().Foreground(ColorMuted)

	ResultHeader = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)
	ResultScore = lipgloss.NewStyle().
			Foreground(ColorSuccess)
	ResultSnippet = lipgloss.NewStyle().
			Foreground(ColorMuted).
			PaddingLeft(2)

	SectionTitle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true).
			MarginTop(1)
	Divider = lipgloss.NewStyle().
		Foreground(ColorMuted)

	Citation = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true)
	SourceRef = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

// HorizontalRule returns a styled horizontal divider of the given width.
func HorizontalRule(width int) string {
	return Divider.Render(strings.Repeat("─", width))
}

// FormatDisplayPath formats a hit's short display path alongside its source tag.
func FormatDisplayPath(displayPath, source string) string {
	return DisplayPath.Render(displayPath) + " " + Source.Render("["+source+"]")
}

// FormatScore formats a blended or raw score as a percentage-style match.
func FormatScore(score float64) string {
	return ResultScore.Render(fmt.Sprintf("(%.1f%% match)", score*100))
}

// FormatTime renders t for status output: time-only if today, date
// without year if this year, full date otherwise.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}

	now := time.Now()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return "today at " + t.Format("15:04")
	}
	if t.Year() == now.Year() {
		return t.Format("Jan 2 at 15:04")
	}
	return t.Format("Jan 2, 2006 at 15:04")
}
