// Package observability provides formatted terminal output for the
// panelpeace CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/panel-peace/internal/views"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// barWidth is the number of cells in a progress bar
	barWidth = 20
)

// Printer handles formatted output for CLI commands
type Printer struct {
	out     io.Writer
	verbose bool
}

// NewPrinter creates a new Printer that writes to the given writer.
// A verbose printer lists every item instead of the first few.
func NewPrinter(out io.Writer, verbose bool) *Printer {
	return &Printer{out: out, verbose: verbose}
}

func (p *Printer) limit(n int) int {
	if p.verbose {
		return n
	}
	return min(n, maxItemsToShow)
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad truncates or right-pads s to width runes.
func pad(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		return string(r[:width-3]) + "..."
	}
	return s + strings.Repeat(" ", width-len(r))
}

// Bar renders a percentage as a fixed-width bar.
func Bar(percent int) string {
	percent = max(0, min(100, percent))
	filled := percent * barWidth / 100
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled) + "]"
}

func more(sb *strings.Builder, total, shown int, noun string) {
	if total > shown {
		fmt.Fprintf(sb, "\n... and %d more %s", total-shown, noun)
	}
}

// PrintProjects outputs project cards with their progress and due state.
func (p *Printer) PrintProjects(cards []views.ProjectCard, stats views.ProjectStats) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Total: %d   Avg progress: %d%%\n", stats.Total, stats.AverageProgress)
	fmt.Fprintf(&sb, "In progress %d · Review %d · Delayed %d · Done %d",
		stats.InProgress, stats.NeedsReview, stats.Delayed, stats.Completed)

	count := p.limit(len(cards))
	for i := 0; i < count; i++ {
		c := cards[i]
		sb.WriteString("\n\n")
		fmt.Fprintf(&sb, "%s  [%s]\n", c.Title, c.StatusStyle.Label)
		fmt.Fprintf(&sb, "%s %3d%%\n", Bar(c.Progress), c.Progress)
		fmt.Fprintf(&sb, "Due: %s", c.Due.Text)
	}
	if len(cards) == 0 {
		sb.WriteString("\n\nNo projects")
	}
	more(&sb, len(cards), count, "projects")

	p.printBox("PROJECTS", sb.String())
}

// PrintProject outputs one project and its workflow steps in order.
func (p *Printer) PrintProject(card views.ProjectCard, steps []views.StepRow) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Status:   %s\n", card.StatusStyle.Label)
	fmt.Fprintf(&sb, "Progress: %s %d%%\n", Bar(card.Progress), card.Progress)
	fmt.Fprintf(&sb, "Due:      %s", card.Due.Text)

	if len(steps) > 0 {
		sb.WriteString("\n\nWorkflow:")
	}
	for i, s := range steps {
		title := s.Title
		if title == "" {
			title = s.StepType
		}
		fmt.Fprintf(&sb, "\n%d. %-18s %-12s %3d%%", i+1, title, s.StatusStyle.Label, s.Progress)
	}

	p.printBox(strings.ToUpper(card.Title), sb.String())
}

// PrintDeadlines outputs deadline rows with priority and due text.
func (p *Printer) PrintDeadlines(title string, rows []views.DeadlineRow) {
	var sb strings.Builder
	if len(rows) == 0 {
		sb.WriteString("Nothing due")
	}

	count := p.limit(len(rows))
	for i := 0; i < count; i++ {
		d := rows[i]
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "• %s (%s)\n  %s", d.Title, d.PriorityStyle.Label, d.Due.Text)
	}
	more(&sb, len(rows), count, "deadlines")

	p.printBox(title, sb.String())
}

// PrintDashboard outputs the landing summary.
func (p *Printer) PrintDashboard(d *views.Dashboard) {
	if d == nil {
		return
	}
	p.PrintProjects(d.Projects, d.Stats)
	p.PrintDeadlines("UPCOMING DEADLINES", d.Upcoming)
	p.printBox("FEEDBACK", fmt.Sprintf("Open items: %d", d.OpenItems))
}
