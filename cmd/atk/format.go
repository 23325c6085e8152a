package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/zulandar/accreditrack/internal/progress"
	"github.com/zulandar/accreditrack/internal/status"
)

// barWidth is the number of cells in a progress bar.
const barWidth = 20

var (
	emptyCell  = lipgloss.NewStyle().Foreground(lipgloss.Color("#475569"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	titleStyle = lipgloss.NewStyle().Bold(true)
)

// progressBar renders pct as a bar filled with the tier's gradient, followed
// by the percentage.
func progressBar(pct int, tier status.Tier) string {
	pct = progress.ClampStatus(pct)
	filled := progress.RoundDiv(pct*barWidth, 100)
	cells := gradientCells(tier.Gradient(), filled)

	var b strings.Builder
	for _, c := range cells {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render("█"))
	}
	b.WriteString(emptyCell.Render(strings.Repeat("░", barWidth-filled)))
	fmt.Fprintf(&b, " %3d%%", pct)
	return b.String()
}

// gradientCells returns n hex colors blended from g.From to g.To. An
// unparseable stop falls back to the other one.
func gradientCells(g status.Gradient, n int) []string {
	if n <= 0 {
		return nil
	}
	from, errFrom := colorful.Hex(g.From)
	to, errTo := colorful.Hex(g.To)
	switch {
	case errFrom != nil && errTo != nil:
		from, to = colorful.Color{R: 0.5, G: 0.5, B: 0.5}, colorful.Color{R: 0.5, G: 0.5, B: 0.5}
	case errFrom != nil:
		from = to
	case errTo != nil:
		to = from
	}

	out := make([]string, n)
	for i := 0; i < n; i++ {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		out[i] = from.BlendLuv(to, t).Clamped().Hex()
	}
	return out
}

// deadlineBadge renders the deadline tier's badge in its accent color, or ""
// when the tier has no badge.
func deadlineBadge(d status.Deadline) string {
	info := d.Info()
	if info.Label == "" {
		return ""
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(info.Accent))
	if d == status.Overdue {
		style = style.Bold(true)
	}
	return style.Render(info.Label)
}

// formatDate renders an optional date in the wire layout, "-" when unset.
func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

// formatDays describes a days-until-due count.
func formatDays(days *int) string {
	switch {
	case days == nil:
		return ""
	case *days == 0:
		return "due today"
	case *days == 1:
		return "due tomorrow"
	case *days > 0:
		return fmt.Sprintf("due in %d days", *days)
	case *days == -1:
		return "1 day overdue"
	default:
		return fmt.Sprintf("%d days overdue", -*days)
	}
}

// indent returns the prefix for a tree row at depth.
func indent(depth int) string {
	return strings.Repeat("  ", depth)
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
