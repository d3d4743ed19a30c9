package views

import (
	"time"

	"github.com/jonathan/panel-peace/internal/classify"
	"github.com/jonathan/panel-peace/internal/schedule"
	"github.com/jonathan/panel-peace/internal/types"
)

// ProjectCard is a project with its derived display state.
type ProjectCard struct {
	types.Project
	StatusStyle classify.Style `json:"status_style"`
	Due         schedule.Info  `json:"due"`
}

// StepRow is a workflow step with its derived display state.
type StepRow struct {
	types.WorkflowStep
	StatusStyle classify.Style `json:"status_style"`
	Due         schedule.Info  `json:"due"`
	Binary      bool           `json:"binary"`
}

// DeadlineRow is a deadline with its derived display state.
type DeadlineRow struct {
	types.Deadline
	PriorityStyle classify.Style `json:"priority_style"`
	Due           schedule.Info  `json:"due"`
}

// FeedbackRow is a feedback item with its derived display state.
type FeedbackRow struct {
	types.FeedbackItem
	StatusStyle   classify.Style `json:"status_style"`
	PriorityStyle classify.Style `json:"priority_style"`
}

// Dashboard is the landing summary for an editor.
type Dashboard struct {
	Stats     ProjectStats  `json:"stats"`
	Projects  []ProjectCard `json:"projects"`
	Upcoming  []DeadlineRow `json:"upcoming_deadlines"`
	OpenItems int           `json:"open_feedback"`
}

// Card decorates a project.
func Card(p types.Project, now time.Time) ProjectCard {
	return ProjectCard{
		Project:     p,
		StatusStyle: classify.Status(p.Status),
		Due:         schedule.EvaluateProject(&p, now),
	}
}

// Cards decorates a list of projects, preserving order.
func Cards(projects []types.Project, now time.Time) []ProjectCard {
	out := make([]ProjectCard, len(projects))
	for i, p := range projects {
		out[i] = Card(p, now)
	}
	return out
}

// Steps decorates an ordered list of steps.
func Steps(steps []types.WorkflowStep, now time.Time, isBinary func(string) bool) []StepRow {
	out := make([]StepRow, len(steps))
	for i, s := range steps {
		out[i] = StepRow{
			WorkflowStep: s,
			StatusStyle:  classify.StepStatus(s.Status),
			Due:          schedule.EvaluateStep(&s, now),
			Binary:       isBinary(s.StepType),
		}
	}
	return out
}

// Deadlines decorates a list of deadlines, preserving order.
func Deadlines(deadlines []types.Deadline, now time.Time) []DeadlineRow {
	out := make([]DeadlineRow, len(deadlines))
	for i, d := range deadlines {
		out[i] = DeadlineRow{
			Deadline:      d,
			PriorityStyle: classify.Priority(d.Priority),
			Due:           schedule.EvaluateDeadline(&d, now),
		}
	}
	return out
}

// Feedback decorates a list of feedback items, preserving order.
func Feedback(items []types.FeedbackItem) []FeedbackRow {
	out := make([]FeedbackRow, len(items))
	for i, f := range items {
		out[i] = FeedbackRow{
			FeedbackItem:  f,
			StatusStyle:   classify.FeedbackStatus(f.Status),
			PriorityStyle: classify.Priority(f.Priority),
		}
	}
	return out
}

// BuildDashboard assembles the dashboard from already-fetched records.
func BuildDashboard(projects []types.Project, deadlines []types.Deadline, openFeedback int, now time.Time, window time.Duration) Dashboard {
	active := make([]types.Project, 0, len(projects))
	for _, p := range projects {
		if p.Status != types.ProjectStatusCompleted {
			active = append(active, p)
		}
	}
	return Dashboard{
		Stats:     Stats(projects),
		Projects:  Cards(active, now),
		Upcoming:  Deadlines(Upcoming(deadlines, now, window), now),
		OpenItems: openFeedback,
	}
}
