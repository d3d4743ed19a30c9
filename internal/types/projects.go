// Package types provides the entity records and request payloads shared by the
// Panel Peace store, API server, and client.
package types

import (
	"time"

	"github.com/google/uuid"
)

// Project status values.
const (
	ProjectStatusInProgress  = "in_progress"
	ProjectStatusNeedsReview = "needs_review"
	ProjectStatusDelayed     = "delayed"
	ProjectStatusCompleted   = "completed"
)

// ProjectStatuses lists every valid project status in display order.
var ProjectStatuses = []string{
	ProjectStatusInProgress,
	ProjectStatusNeedsReview,
	ProjectStatusDelayed,
	ProjectStatusCompleted,
}

// ProductionMetrics holds the page counts and per-role throughput used for
// progress totals and schedule forecasts. Stored as JSONB.
type ProductionMetrics struct {
	InteriorPages    int     `json:"interior_pages" validate:"min=0"`
	CoverPages       int     `json:"cover_pages" validate:"min=0"`
	PencilsPerWeek   float64 `json:"pencils_per_week" validate:"min=0"`
	InksPerWeek      float64 `json:"inks_per_week" validate:"min=0"`
	ColorsPerWeek    float64 `json:"colors_per_week" validate:"min=0"`
	LettersPerWeek   float64 `json:"letters_per_week" validate:"min=0"`
	BatchSize        int     `json:"batch_size" validate:"min=0"`
	ApprovalLeadDays int     `json:"approval_lead_days" validate:"min=0"`
}

// PagesPerWeek returns the throughput recorded for a graduated step type.
func (m ProductionMetrics) PagesPerWeek(stepType string) float64 {
	switch stepType {
	case StepTypePencils:
		return m.PencilsPerWeek
	case StepTypeInks:
		return m.InksPerWeek
	case StepTypeColors:
		return m.ColorsPerWeek
	case StepTypeLetters:
		return m.LettersPerWeek
	default:
		return 0
	}
}

// Project is a single comic issue tracked through production.
type Project struct {
	ID          uuid.UUID         `json:"id"`
	Title       string            `json:"title"`
	IssueNumber string            `json:"issue_number,omitempty"`
	Description string            `json:"description,omitempty"`
	Status      string            `json:"status"`
	Progress    int               `json:"progress"`
	DueDate     *time.Time        `json:"due_date,omitempty"`
	Metrics     ProductionMetrics `json:"metrics"`
	CreatedBy   uuid.UUID         `json:"created_by"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Deadline is a free-standing reminder attached to a project. It is
// independent of workflow step due dates.
type Deadline struct {
	ID          uuid.UUID `json:"id"`
	ProjectID   uuid.UUID `json:"project_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	DueDate     time.Time `json:"due_date"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Deadline status values.
const (
	DeadlineStatusPending   = "pending"
	DeadlineStatusCompleted = "completed"
)
