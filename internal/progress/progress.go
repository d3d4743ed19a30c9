// Package progress converts between unit counts and completion percentages.
package progress

import (
	"math"

	"github.com/jonathan/panel-peace/internal/types"
)

// IsBinary reports whether a step type is all-or-nothing (0% or 100%).
func IsBinary(stepType string) bool {
	return stepType == types.StepTypePlotDevelopment || stepType == types.StepTypeScript
}

// round rounds half away from zero for non-negative values, matching the
// half-up rounding editors see in the dashboard.
func round(x float64) int {
	return int(math.Floor(x + 0.5))
}

// Clamp bounds a percent to [0,100].
func Clamp(percent int) int {
	return max(0, min(100, percent))
}

// Percent returns round(count/total*100). Count is clamped to [0,total];
// a non-positive total yields 0.
func Percent(count, total int) int {
	if total <= 0 {
		return 0
	}
	count = max(0, min(total, count))
	return round(float64(count) * 100 / float64(total))
}

// StepPercent is Percent with binary step semantics: any positive count of a
// binary step is 100%, regardless of total.
func StepPercent(stepType string, count, total int) int {
	if IsBinary(stepType) {
		if count > 0 {
			return 100
		}
		return 0
	}
	return Percent(count, total)
}

// CountFromPercent is the reverse mapping used to seed a unit-count editor
// from a persisted percent: round(percent*total/100).
func CountFromPercent(percent, total int) int {
	if total <= 0 {
		return 0
	}
	return round(float64(Clamp(percent)) * float64(total) / 100)
}

// NormalizeStep coerces a percent into the valid range for a step type.
// Binary steps collapse to 0 or 100.
func NormalizeStep(stepType string, percent int) int {
	percent = Clamp(percent)
	if IsBinary(stepType) && percent > 0 {
		return 100
	}
	return percent
}

// UnitsFor returns the number of units a step of the given type tracks for a
// project. Binary steps track a single unit; page-based steps use the
// project's interior page count and cover steps its cover count.
func UnitsFor(p *types.Project, stepType string) int {
	if IsBinary(stepType) {
		return 1
	}
	if p == nil {
		return 0
	}
	if stepType == types.StepTypeCover {
		return p.Metrics.CoverPages
	}
	return p.Metrics.InteriorPages
}

// Project returns the rounded mean of step progress, or 0 with no steps.
func Project(steps []types.WorkflowStep) int {
	if len(steps) == 0 {
		return 0
	}
	sum := 0
	for _, s := range steps {
		sum += Clamp(s.Progress)
	}
	return round(float64(sum) / float64(len(steps)))
}

// Counter tracks completed units for one step while an editor adjusts it.
type Counter struct {
	StepType string
	Total    int
	Count    int
}

// NewCounter seeds a counter from a persisted percent.
func NewCounter(stepType string, total, percent int) *Counter {
	if IsBinary(stepType) {
		total = 1
	}
	return &Counter{
		StepType: stepType,
		Total:    total,
		Count:    CountFromPercent(percent, total),
	}
}

// Update records a new completed-unit count and returns the resulting percent.
func (c *Counter) Update(count int) int {
	c.Count = max(0, count)
	if !IsBinary(c.StepType) {
		c.Count = min(c.Count, c.Total)
	}
	return c.Percent()
}

// Percent returns the percent for the current count.
func (c *Counter) Percent() int {
	return StepPercent(c.StepType, c.Count, c.Total)
}
