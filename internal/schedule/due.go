// Package schedule classifies due dates and forecasts project completion.
//
// Nothing here reads the clock: "now" is always passed in, so results are
// stable for a fixed (due, now) pair and must be recomputed per request.
package schedule

import (
	"fmt"
	"math"
	"time"

	"github.com/jonathan/panel-peace/internal/types"
)

// Tone is the severity used to color a due-date indicator.
type Tone string

const (
	ToneNeutral Tone = "neutral"
	ToneWarning Tone = "warning"
	ToneDanger  Tone = "danger"
	ToneSuccess Tone = "success"
)

// Category names the due-date bucket a date falls into.
type Category string

const (
	CategoryNoDate      Category = "no_date"
	CategoryOverdue     Category = "overdue"
	CategoryDueToday    Category = "due_today"
	CategoryDueTomorrow Category = "due_tomorrow"
	CategoryDueSoon     Category = "due_soon"
	CategoryOnTrack     Category = "on_track"
	CategoryCompleted   Category = "completed"
)

// DueSoonDays is the upper bound (inclusive) of the warning window.
const DueSoonDays = 3

const msPerDay = 86_400_000

// Info is the derived display state for a due date.
type Info struct {
	Category Category `json:"category"`
	Days     *int     `json:"days,omitempty"`
	Text     string   `json:"text"`
	Badge    string   `json:"badge"`
	Tone     Tone     `json:"tone"`
	Icon     string   `json:"icon"`
}

// calendarDay returns midnight UTC of t's calendar date in loc, so that DST
// shifts never produce fractional days.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysUntil returns the whole calendar days from now until due, computed on
// dates truncated to midnight in now's location. Negative means overdue.
func DaysUntil(due, now time.Time) int {
	loc := now.Location()
	diff := calendarDay(due, loc).Sub(calendarDay(now, loc)).Milliseconds()
	return int(math.Ceil(float64(diff) / msPerDay))
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// Evaluate classifies a nullable due date against now. The first matching
// rule wins: no date, overdue, today, tomorrow, within DueSoonDays, later.
func Evaluate(due *time.Time, now time.Time) Info {
	if due == nil || due.IsZero() {
		return Info{
			Category: CategoryNoDate,
			Text:     "No date set",
			Badge:    "No due date",
			Tone:     ToneNeutral,
			Icon:     "calendar",
		}
	}

	days := DaysUntil(*due, now)
	info := Info{Days: &days}

	switch {
	case days < 0:
		info.Category = CategoryOverdue
		info.Text = "Overdue by " + plural(-days, "day")
		info.Badge = "Overdue"
		info.Tone = ToneDanger
		info.Icon = "alert-triangle"
	case days == 0:
		info.Category = CategoryDueToday
		info.Text = "Due today"
		info.Badge = "Due today"
		info.Tone = ToneDanger
		info.Icon = "alert-circle"
	case days == 1:
		info.Category = CategoryDueTomorrow
		info.Text = "Tomorrow"
		info.Badge = "Due tomorrow"
		info.Tone = ToneDanger
		info.Icon = "alert-circle"
	case days <= DueSoonDays:
		info.Category = CategoryDueSoon
		info.Text = "In " + plural(days, "day")
		info.Badge = "Due in " + plural(days, "day")
		info.Tone = ToneWarning
		info.Icon = "clock"
	default:
		info.Category = CategoryOnTrack
		info.Text = "In " + plural(days, "day")
		info.Badge = "Due in " + plural(days, "day")
		info.Tone = ToneNeutral
		info.Icon = "calendar"
	}
	return info
}

// Completed is the badge shown for finished work regardless of its date.
func Completed() Info {
	return Info{
		Category: CategoryCompleted,
		Text:     "Completed",
		Badge:    "Completed",
		Tone:     ToneSuccess,
		Icon:     "check-circle",
	}
}

// EvaluateProject is Evaluate with the completed-project short circuit.
func EvaluateProject(p *types.Project, now time.Time) Info {
	if p == nil {
		return Evaluate(nil, now)
	}
	if p.Status == types.ProjectStatusCompleted {
		return Completed()
	}
	return Evaluate(p.DueDate, now)
}

// EvaluateDeadline applies the completed short circuit to a deadline.
func EvaluateDeadline(d *types.Deadline, now time.Time) Info {
	if d == nil {
		return Evaluate(nil, now)
	}
	if d.Status == types.DeadlineStatusCompleted {
		return Completed()
	}
	due := d.DueDate
	return Evaluate(&due, now)
}

// EvaluateStep applies the completed short circuit to a workflow step.
func EvaluateStep(s *types.WorkflowStep, now time.Time) Info {
	if s == nil {
		return Evaluate(nil, now)
	}
	if s.Status == types.StepStatusCompleted {
		return Completed()
	}
	return Evaluate(s.DueDate, now)
}
