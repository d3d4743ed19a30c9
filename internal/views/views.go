// Package views filters, sorts, and decorates entity lists for display.
package views

import (
	"cmp"
	"slices"
	"time"

	"github.com/jonathan/panel-peace/internal/types"
)

// All is the filter value that passes every record.
const All = "all"

// UpcomingWindow is the default look-ahead for upcoming deadlines.
const UpcomingWindow = 7 * 24 * time.Hour

// FilterBy keeps items whose field equals value exactly. All keeps every
// item in its original order.
func FilterBy[T any](items []T, value string, field func(T) string) []T {
	if value == All {
		return slices.Clone(items)
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if field(item) == value {
			out = append(out, item)
		}
	}
	return out
}

// FilterProjects filters projects by status.
func FilterProjects(projects []types.Project, status string) []types.Project {
	return FilterBy(projects, status, func(p types.Project) string { return p.Status })
}

// FilterFeedback filters feedback items by status and then priority.
func FilterFeedback(items []types.FeedbackItem, status, priority string) []types.FeedbackItem {
	items = FilterBy(items, status, func(f types.FeedbackItem) string { return f.Status })
	return FilterBy(items, priority, func(f types.FeedbackItem) string { return f.Priority })
}

// FilterDeadlines filters deadlines by status.
func FilterDeadlines(deadlines []types.Deadline, status string) []types.Deadline {
	return FilterBy(deadlines, status, func(d types.Deadline) string { return d.Status })
}

// SortDeadlines returns deadlines ordered by ascending due date. Equal due
// dates keep their input order.
func SortDeadlines(deadlines []types.Deadline) []types.Deadline {
	out := slices.Clone(deadlines)
	slices.SortStableFunc(out, func(a, b types.Deadline) int {
		return a.DueDate.Compare(b.DueDate)
	})
	return out
}

// Upcoming returns deadlines with now <= due <= now+window, sorted by due
// date. Both bounds are inclusive and compared on exact timestamps.
func Upcoming(deadlines []types.Deadline, now time.Time, window time.Duration) []types.Deadline {
	end := now.Add(window)
	var out []types.Deadline
	for _, d := range deadlines {
		if !d.DueDate.Before(now) && !d.DueDate.After(end) {
			out = append(out, d)
		}
	}
	return SortDeadlines(out)
}

var priorityRank = map[string]int{
	types.PriorityHigh:   0,
	types.PriorityMedium: 1,
	types.PriorityLow:    2,
}

func rank(priority string) int {
	if r, ok := priorityRank[priority]; ok {
		return r
	}
	return len(priorityRank)
}

// SortFeedback orders feedback high priority first, then oldest first.
func SortFeedback(items []types.FeedbackItem) []types.FeedbackItem {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b types.FeedbackItem) int {
		if c := cmp.Compare(rank(a.Priority), rank(b.Priority)); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out
}

// ProjectStats are the dashboard stat tiles.
type ProjectStats struct {
	Total           int `json:"total"`
	InProgress      int `json:"in_progress"`
	NeedsReview     int `json:"needs_review"`
	Delayed         int `json:"delayed"`
	Completed       int `json:"completed"`
	AverageProgress int `json:"average_progress"`
}

// Stats counts projects per status and averages their progress.
func Stats(projects []types.Project) ProjectStats {
	var s ProjectStats
	sum := 0
	for _, p := range projects {
		s.Total++
		sum += p.Progress
		switch p.Status {
		case types.ProjectStatusInProgress:
			s.InProgress++
		case types.ProjectStatusNeedsReview:
			s.NeedsReview++
		case types.ProjectStatusDelayed:
			s.Delayed++
		case types.ProjectStatusCompleted:
			s.Completed++
		}
	}
	if s.Total > 0 {
		s.AverageProgress = (sum + s.Total/2) / s.Total
	}
	return s
}
