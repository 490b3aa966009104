package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/starford/revue/internal/cadence"
	"github.com/starford/revue/internal/watchlist"
)

var (
	colorAccent  = lipgloss.Color("#FF6B6B")
	colorWarning = lipgloss.Color("#F39C12")
	colorMuted   = lipgloss.Color("#666666")
	colorSuccess = lipgloss.Color("#2ECC71")

	headingStyle = lipgloss.NewStyle().Bold(true)
	pathStyle    = lipgloss.NewStyle().Bold(true).PaddingLeft(2)
	detailStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	flagStyle    = lipgloss.NewStyle().Foreground(colorAccent)
	okStyle      = lipgloss.NewStyle().Foreground(colorSuccess)
	errStyle     = lipgloss.NewStyle().Foreground(colorAccent)
)

type section struct {
	title   string
	color   lipgloss.Color
	entries []watchlist.Entry
}

// renderDue prints each non-empty bucket with one line per note.
func renderDue(b watchlist.Buckets) string {
	sections := []section{
		{"Due for review", colorAccent, b.Overdue},
		{"Due reminders", colorWarning, b.DueReminders},
		{"Upcoming reminders", colorMuted, b.NotDueReminders},
		{"Snoozed", colorMuted, b.Snoozed},
	}

	var sb strings.Builder
	for _, sec := range sections {
		if len(sec.entries) == 0 {
			continue
		}
		sb.WriteString(headingStyle.Foreground(sec.color).Render(
			fmt.Sprintf("%s (%d)", sec.title, len(sec.entries))))
		sb.WriteString("\n")
		for _, e := range sec.entries {
			line := pathStyle.Render(e.Note.ID)
			if e.Note.Flags.Priority {
				line += " " + flagStyle.Render("[priority]")
			}
			line += " " + detailStyle.Render(e.Remaining+" · "+e.Summary)
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	if sb.Len() == 0 {
		return okStyle.Render("Nothing to review.") + "\n"
	}
	return sb.String()
}

func renderDescription(d cadence.Description) string {
	var sb strings.Builder
	sb.WriteString(headingStyle.Render(d.Summary))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "line:     %s\n", d.Line)
	fmt.Fprintf(&sb, "next due: %s\n", d.NextDueText)
	if !d.Valid {
		sb.WriteString(errStyle.Render("invalid: " + d.Error))
		sb.WriteString("\n")
	}
	return sb.String()
}
