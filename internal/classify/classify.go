// Package classify maps status and priority values to display semantics.
//
// Every function here is total: unknown or empty input yields the neutral
// style so callers never need to guard classification with error checks.
package classify

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/panel-peace/internal/types"
)

// Style is the display tuple for a status or priority value.
type Style struct {
	Background      string `json:"bg"`
	Text            string `json:"text"`
	LightBackground string `json:"light_bg"`
	Label           string `json:"label"`
}

const neutralColor = "gray"

func palette(color, label string) Style {
	return Style{
		Background:      "bg-" + color + "-500",
		Text:            "text-" + color + "-700",
		LightBackground: "bg-" + color + "-50",
		Label:           label,
	}
}

// Neutral returns the default style used for unrecognized values.
func Neutral(value string) Style {
	return palette(neutralColor, Humanize(value))
}

// IsNeutral reports whether s uses the neutral palette.
func (s Style) IsNeutral() bool {
	return s.Background == "bg-"+neutralColor+"-500"
}

type entry struct {
	color string
	label string
}

var projectStatuses = map[string]entry{
	types.ProjectStatusInProgress:  {"blue", "In Progress"},
	types.ProjectStatusNeedsReview: {"amber", "Needs Review"},
	types.ProjectStatusDelayed:     {"red", "Delayed"},
	types.ProjectStatusCompleted:   {"green", "Completed"},
}

var priorities = map[string]entry{
	types.PriorityLow:    {"green", "Low"},
	types.PriorityMedium: {"yellow", "Medium"},
	types.PriorityHigh:   {"red", "High"},
}

var stepStatuses = map[string]entry{
	types.StepStatusNotStarted: {"slate", "Not Started"},
	types.StepStatusInProgress: {"blue", "In Progress"},
	types.StepStatusReview:     {"purple", "In Review"},
	types.StepStatusCompleted:  {"green", "Completed"},
	types.StepStatusDelayed:    {"red", "Delayed"},
}

var feedbackStatuses = map[string]entry{
	types.FeedbackStatusPending:    {"yellow", "Pending"},
	types.FeedbackStatusInProgress: {"blue", "In Progress"},
	types.FeedbackStatusResolved:   {"green", "Resolved"},
	types.FeedbackStatusRejected:   {"red", "Rejected"},
}

func lookup(table map[string]entry, value string) Style {
	if e, ok := table[value]; ok {
		return palette(e.color, e.label)
	}
	return Neutral(value)
}

// Status classifies a project status.
func Status(status string) Style {
	return lookup(projectStatuses, status)
}

// Priority classifies a low/medium/high priority.
func Priority(priority string) Style {
	return lookup(priorities, priority)
}

// StepStatus classifies a workflow step status.
func StepStatus(status string) Style {
	return lookup(stepStatuses, status)
}

// FeedbackStatus classifies a feedback item status.
func FeedbackStatus(status string) Style {
	return lookup(feedbackStatuses, status)
}

// Humanize turns a snake_case or kebab-case value into a title-cased label.
// Empty input becomes "Unknown".
func Humanize(value string) string {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	if len(fields) == 0 {
		return "Unknown"
	}
	for i, f := range fields {
		r, size := utf8.DecodeRuneInString(f)
		fields[i] = string(unicode.ToUpper(r)) + strings.ToLower(f[size:])
	}
	return strings.Join(fields, " ")
}
