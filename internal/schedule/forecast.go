package schedule

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/panel-peace/internal/progress"
	"github.com/jonathan/panel-peace/internal/types"
)

// pagedSteps are the graduated stages whose throughput is tracked in pages/week.
var pagedSteps = []string{
	types.StepTypePencils,
	types.StepTypeInks,
	types.StepTypeColors,
	types.StepTypeLetters,
}

// Forecast projects when a project's remaining page work will finish.
type Forecast struct {
	ProjectID       uuid.UUID      `json:"project_id"`
	RemainingPages  map[string]int `json:"remaining_pages"`
	Bottleneck      string         `json:"bottleneck,omitempty"`
	WeeksRemaining  float64        `json:"weeks_remaining"`
	ProjectedFinish *time.Time     `json:"projected_finish,omitempty"`
	DueDate         *time.Time     `json:"due_date,omitempty"`
	SlackDays       *int           `json:"slack_days,omitempty"`
	AtRisk          bool           `json:"at_risk"`
	Reason          string         `json:"reason,omitempty"`
}

// ProjectForecast estimates the finish date of p from its steps.
//
// The slowest remaining stage sets the pace. Every other stage that still
// has pages adds the time to push one batch through it, and the approval
// lead time is added at the end. A project is at risk when the projected
// finish falls on a later calendar day than its due date.
func ProjectForecast(p *types.Project, steps []types.WorkflowStep, now time.Time) Forecast {
	f := Forecast{RemainingPages: map[string]int{}}
	if p == nil {
		f.Reason = "project not found"
		return f
	}
	f.ProjectID = p.ID
	f.DueDate = p.DueDate

	if p.Status == types.ProjectStatusCompleted {
		f.Reason = "project completed"
		return f
	}

	total := p.Metrics.InteriorPages
	if total <= 0 {
		f.Reason = "interior page count not set"
		return f
	}

	stepProgress := map[string]int{}
	for _, s := range steps {
		if prev, seen := stepProgress[s.StepType]; seen {
			stepProgress[s.StepType] = min(prev, s.Progress)
			continue
		}
		stepProgress[s.StepType] = s.Progress
	}

	stageWeeks := map[string]float64{}
	for _, stepType := range pagedSteps {
		pct, tracked := stepProgress[stepType]
		if !tracked {
			continue
		}
		remaining := total - progress.CountFromPercent(pct, total)
		f.RemainingPages[stepType] = remaining
		if remaining <= 0 {
			continue
		}
		rate := p.Metrics.PagesPerWeek(stepType)
		if rate <= 0 {
			f.Reason = fmt.Sprintf("no throughput recorded for %s", stepType)
			return f
		}
		stageWeeks[stepType] = float64(remaining) / rate
		if f.Bottleneck == "" || stageWeeks[stepType] > stageWeeks[f.Bottleneck] {
			f.Bottleneck = stepType
		}
	}

	weeks := 0.0
	if f.Bottleneck != "" {
		weeks = stageWeeks[f.Bottleneck]
		batch := max(p.Metrics.BatchSize, 1)
		for _, stepType := range pagedSteps {
			if stepType == f.Bottleneck || stageWeeks[stepType] == 0 {
				continue
			}
			pages := min(batch, f.RemainingPages[stepType])
			weeks += float64(pages) / p.Metrics.PagesPerWeek(stepType)
		}
	}
	f.WeeksRemaining = weeks

	finish := now.Add(time.Duration(weeks * 7 * 24 * float64(time.Hour))).
		AddDate(0, 0, p.Metrics.ApprovalLeadDays)
	f.ProjectedFinish = &finish

	if p.DueDate != nil {
		slack := DaysUntil(*p.DueDate, finish)
		f.SlackDays = &slack
		f.AtRisk = slack < 0
	}
	return f
}
