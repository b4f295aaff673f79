package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Joik2ww/FileOrganizer/internal/logging"
	"github.com/Joik2ww/FileOrganizer/pkg/planner"
)

// Theme holds the colors used for duplicate listings.
type Theme struct {
	Heading lipgloss.AdaptiveColor
	Keep    lipgloss.AdaptiveColor
	Remove  lipgloss.AdaptiveColor
	Muted   lipgloss.AdaptiveColor
}

var defaultTheme = Theme{
	Heading: lipgloss.AdaptiveColor{Light: "#007ACC", Dark: "#3D9EFF"},
	Keep:    lipgloss.AdaptiveColor{Light: "#28A745", Dark: "#4CDD76"},
	Remove:  lipgloss.AdaptiveColor{Light: "#DC3545", Dark: "#FF6B7D"},
	Muted:   lipgloss.AdaptiveColor{Light: "#6C757D", Dark: "#ADB5BD"},
}

func (t Theme) headingStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Heading).Bold(true)
}

func (t Theme) keepStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Keep)
}

func (t Theme) removeStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Remove)
}

func (t Theme) mutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Muted)
}

const timeLayout = "2006-01-02 15:04:05"

// FormatGroup renders one group: every member with its size and mtime.
func FormatGroup(index int, g planner.DuplicateGroup) string {
	t := defaultTheme
	var b strings.Builder

	b.WriteString(t.headingStyle().Render(
		fmt.Sprintf("Group %d: %d files, %s each", index, len(g.Files), logging.FormatBytes(g.Size))))
	b.WriteString("\n")
	for _, f := range g.Files {
		fmt.Fprintf(&b, "  %s %s\n", f.Path, t.mutedStyle().Render(f.ModTime.Format(timeLayout)))
	}
	return b.String()
}

// FormatDecision renders the policy's choice for one group.
func FormatDecision(index, total int, g planner.DuplicateGroup, d planner.Decision) string {
	t := defaultTheme
	var b strings.Builder

	b.WriteString(t.headingStyle().Render(
		fmt.Sprintf("Group %d/%d (%s each)", index, total, logging.FormatBytes(g.Size))))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s %s %s\n",
		t.keepStyle().Render("KEEP  "), d.Keep.Path, t.mutedStyle().Render(d.Keep.ModTime.Format(timeLayout)))
	for _, r := range d.Remove {
		fmt.Fprintf(&b, "  %s %s %s %s\n",
			t.removeStyle().Render("DELETE"), r.Path,
			t.mutedStyle().Render(r.ModTime.Format(timeLayout)),
			t.mutedStyle().Render(logging.FormatBytes(r.Size)))
	}
	return b.String()
}

// FormatSummary renders the totals shown before any deletion.
func FormatSummary(s planner.Summary) string {
	return fmt.Sprintf("Found %d duplicate groups, %d duplicate files, %s reclaimable",
		s.Groups, s.DuplicateFiles, logging.FormatMB(s.ReclaimableBytes))
}
