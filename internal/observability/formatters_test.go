package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jonathan/panel-peace/internal/classify"
	"github.com/jonathan/panel-peace/internal/schedule"
	"github.com/jonathan/panel-peace/internal/types"
	"github.com/jonathan/panel-peace/internal/views"
	"github.com/stretchr/testify/assert"
)

func card(title string, progress int) views.ProjectCard {
	return views.ProjectCard{
		Project:     types.Project{Title: title, Status: types.ProjectStatusInProgress, Progress: progress},
		StatusStyle: classify.Style{Label: "In Progress"},
		Due:         schedule.Info{Text: "Due in 3 days"},
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		percent int
		filled  int
	}{
		{0, 0},
		{50, 10},
		{100, 20},
		{140, 20},
		{-5, 0},
	}
	for _, tt := range tests {
		bar := Bar(tt.percent)
		assert.Equal(t, tt.filled, strings.Count(bar, "█"), "percent %d", tt.percent)
		assert.Equal(t, barWidth-tt.filled, strings.Count(bar, "░"), "percent %d", tt.percent)
	}
}

func TestPrintBox_LinesHaveEqualWidth(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)
	p.printBox("TITLE", "short\n"+strings.Repeat("é", 80))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	for _, line := range lines {
		assert.Equal(t, boxWidth, len([]rune(line)), line)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestPrintProjects(t *testing.T) {
	var buf bytes.Buffer
	cards := []views.ProjectCard{card("Night Owls #3", 45), card("Tidewater #1", 100)}
	NewPrinter(&buf, false).PrintProjects(cards, views.Stats([]types.Project{cards[0].Project, cards[1].Project}))

	out := buf.String()
	assert.Contains(t, out, "PROJECTS")
	assert.Contains(t, out, "Total: 2")
	assert.Contains(t, out, "Night Owls #3  [In Progress]")
	assert.Contains(t, out, " 45%")
	assert.Contains(t, out, "Due in 3 days")
	assert.NotContains(t, out, "more projects")
}

func TestPrintProjects_TruncatesUnlessVerbose(t *testing.T) {
	cards := make([]views.ProjectCard, maxItemsToShow+2)
	for i := range cards {
		cards[i] = card("Issue", 10)
	}

	var short bytes.Buffer
	NewPrinter(&short, false).PrintProjects(cards, views.ProjectStats{})
	assert.Contains(t, short.String(), "... and 2 more projects")

	var full bytes.Buffer
	NewPrinter(&full, true).PrintProjects(cards, views.ProjectStats{})
	assert.NotContains(t, full.String(), "more projects")
}

func TestPrintProject_ListsStepsInOrder(t *testing.T) {
	var buf bytes.Buffer
	steps := []views.StepRow{
		{WorkflowStep: types.WorkflowStep{StepType: types.StepTypeScript, Title: "Script", Progress: 100},
			StatusStyle: classify.Style{Label: "Completed"}},
		{WorkflowStep: types.WorkflowStep{StepType: types.StepTypePencils, Progress: 40},
			StatusStyle: classify.Style{Label: "In Progress"}},
	}
	NewPrinter(&buf, false).PrintProject(card("Night Owls #3", 70), steps)

	out := buf.String()
	assert.Contains(t, out, "NIGHT OWLS #3")
	scriptAt := strings.Index(out, "1. Script")
	pencilsAt := strings.Index(out, "2. pencils")
	assert.True(t, scriptAt >= 0 && pencilsAt > scriptAt, out)
}

func TestPrintDeadlines_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, false).PrintDeadlines("UPCOMING DEADLINES", nil)
	assert.Contains(t, buf.String(), "Nothing due")
}

func TestPrintDashboard(t *testing.T) {
	var buf bytes.Buffer
	d := &views.Dashboard{
		Projects: []views.ProjectCard{card("Night Owls #3", 45)},
		Upcoming: []views.DeadlineRow{{
			Deadline:      types.Deadline{Title: "Inks due"},
			PriorityStyle: classify.Style{Label: "High"},
			Due:           schedule.Info{Text: "Due tomorrow"},
		}},
		OpenItems: 3,
	}
	NewPrinter(&buf, false).PrintDashboard(d)

	out := buf.String()
	assert.Contains(t, out, "• Inks due (High)")
	assert.Contains(t, out, "Due tomorrow")
	assert.Contains(t, out, "Open items: 3")

	buf.Reset()
	NewPrinter(&buf, false).PrintDashboard(nil)
	assert.Empty(t, buf.String())
}
