package handlers

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/imamik/awsauth-operator/internal/identity"
	"github.com/imamik/awsauth-operator/internal/mapping"
)

var (
	colorGreen  = lipgloss.Color("#22c55e")
	colorRed    = lipgloss.Color("#ef4444")
	colorYellow = lipgloss.Color("#eab308")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorDim    = lipgloss.Color("#6b7280")
	colorWhite  = lipgloss.Color("#f9fafb")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	dimStyle     = lipgloss.NewStyle().Foreground(colorDim)
	greenStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	redStyle     = lipgloss.NewStyle().Foreground(colorRed)
	yellowStyle  = lipgloss.NewStyle().Foreground(colorYellow)
)

// renderer applies styles only when writing to a terminal.
type renderer struct {
	styled bool
}

func (r renderer) style(s lipgloss.Style, text string) string {
	if !r.styled {
		return text
	}
	return s.Render(text)
}

func (r renderer) header(b *strings.Builder, title string) {
	b.WriteString("\n")
	b.WriteString(r.style(titleStyle, "  "+title))
	b.WriteString("\n")
	b.WriteString(r.style(dimStyle, "  "+strings.Repeat("═", 30)))
	b.WriteString("\n")
}

func (r renderer) section(b *strings.Builder, name string, lines []string, mark string, s lipgloss.Style) {
	if len(lines) == 0 {
		return
	}
	b.WriteString("\n")
	b.WriteString(r.style(sectionStyle, fmt.Sprintf("  %s (%d)", name, len(lines))))
	b.WriteString("\n")
	for _, line := range lines {
		b.WriteString("    ")
		b.WriteString(r.style(s, mark))
		b.WriteString(" ")
		b.WriteString(line)
		b.WriteString("\n")
	}
}

// renderDrift renders the verdict of a drift check. drift is nil when in sync.
func (r renderer) renderDrift(target string, drift *mapping.OutOfSyncError) string {
	var b strings.Builder
	r.header(&b, "aws-auth drift: "+target)

	if drift == nil {
		b.WriteString("\n  ")
		b.WriteString(r.style(greenStyle, "✔ in sync"))
		b.WriteString("\n")
		return b.String()
	}

	r.section(&b, "Missing from aws-auth", drift.Missing, "-", redStyle)
	r.section(&b, "Not declared", drift.Unexpected, "+", yellowStyle)
	b.WriteString("\n  ")
	b.WriteString(r.style(redStyle, "✘ out of sync"))
	b.WriteString("\n")
	return b.String()
}

// renderSyncReport renders the outcome of a full sync.
func (r renderer) renderSyncReport(target string, report mapping.SyncReport) string {
	var b strings.Builder
	title := "aws-auth sync: " + target
	if report.DryRun {
		title += " (dry run)"
	}
	r.header(&b, title)

	r.section(&b, "Applied", describe(report.Applied), "✔", greenStyle)
	r.section(&b, "Pruned", describe(report.Pruned), "-", yellowStyle)

	var skipped []string
	for _, w := range report.Skipped {
		skipped = append(skipped, w.Message)
	}
	r.section(&b, "Skipped", skipped, "✘", redStyle)

	var other []string
	for _, w := range report.Warnings {
		if w.Reason != identity.ReasonInvalid {
			other = append(other, w.String())
		}
	}
	r.section(&b, "Warnings", other, "!", yellowStyle)

	b.WriteString("\n")
	switch {
	case report.DryRun:
		b.WriteString(r.style(dimStyle, "  Nothing written."))
	case report.Written:
		b.WriteString(r.style(greenStyle, fmt.Sprintf("  Written after %d attempt(s).", report.Attempts)))
	default:
		b.WriteString(r.style(dimStyle, "  Nothing to write."))
	}
	b.WriteString("\n")
	return b.String()
}

func describe(list []identity.Identity) []string {
	out := make([]string, 0, len(list))
	for _, id := range list {
		groups := "no groups"
		if len(id.Groups) > 0 {
			groups = strings.Join(id.Groups, ", ")
		}
		out = append(out, fmt.Sprintf("%-5s %-30s %s", id.Kind, id.Username, groups))
	}
	return out
}
