package types

import (
	"time"

	"github.com/google/uuid"
)

// CreateProjectRequest creates a project together with its default step chain.
type CreateProjectRequest struct {
	Title       string             `json:"title" validate:"required,min=1,max=200"`
	IssueNumber string             `json:"issue_number,omitempty" validate:"max=50"`
	Description string             `json:"description,omitempty"`
	Status      string             `json:"status,omitempty" validate:"omitempty,oneof=in_progress needs_review delayed completed"`
	DueDate     *time.Time         `json:"due_date,omitempty"`
	Metrics     *ProductionMetrics `json:"metrics,omitempty"`
	SkipSteps   bool               `json:"skip_default_steps,omitempty"`
}

// UpdateProjectRequest is a partial update; nil fields are left unchanged.
type UpdateProjectRequest struct {
	Title       *string            `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	IssueNumber *string            `json:"issue_number,omitempty" validate:"omitempty,max=50"`
	Description *string            `json:"description,omitempty"`
	Progress    *int               `json:"progress,omitempty" validate:"omitempty,min=0,max=100"`
	DueDate     *time.Time         `json:"due_date,omitempty"`
	Metrics     *ProductionMetrics `json:"metrics,omitempty"`
}

// UpdateStatusRequest sets the status of a project or step.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// CreateStepRequest inserts a workflow step. A nil Position appends it.
type CreateStepRequest struct {
	StepType   string     `json:"step_type" validate:"required,max=50"`
	Title      string     `json:"title,omitempty" validate:"max=200"`
	Position   *int       `json:"position,omitempty" validate:"omitempty,min=0"`
	AssigneeID *uuid.UUID `json:"assignee_id,omitempty"`
	DueDate    *time.Time `json:"due_date,omitempty"`
}

// UpdateStepRequest is a partial update of step details.
type UpdateStepRequest struct {
	Title      *string    `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	AssigneeID *uuid.UUID `json:"assignee_id,omitempty"`
	DueDate    *time.Time `json:"due_date,omitempty"`
}

// UpdateProgressRequest sets step progress either from a unit count
// ("3 of 22 pages") or directly as a percent. Exactly one must be set.
type UpdateProgressRequest struct {
	Completed *int `json:"completed,omitempty" validate:"omitempty,min=0"`
	Total     *int `json:"total,omitempty" validate:"omitempty,min=1"`
	Percent   *int `json:"percent,omitempty" validate:"omitempty,min=0,max=100"`
}

// MoveStepRequest moves a step to a zero-based position in its project.
type MoveStepRequest struct {
	Position int `json:"position" validate:"min=0"`
}

// CreateFileLinkRequest attaches a file or URL to a step.
type CreateFileLinkRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	URL      string `json:"url" validate:"required,url"`
	Category string `json:"category,omitempty" validate:"omitempty,oneof=artwork script misc"`
	Source   string `json:"source,omitempty" validate:"omitempty,oneof=link upload"`
}

// CreateFeedbackRequest raises a feedback item on a project.
type CreateFeedbackRequest struct {
	Title       string     `json:"title" validate:"required,min=1,max=200"`
	Description string     `json:"description,omitempty"`
	Priority    string     `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	AssetType   string     `json:"asset_type,omitempty" validate:"max=50"`
	StepID      *uuid.UUID `json:"step_id,omitempty"`
	AssignedTo  *uuid.UUID `json:"assigned_to,omitempty"`
}

// UpdateFeedbackRequest is a partial update of a feedback item.
type UpdateFeedbackRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description,omitempty"`
	Priority    *string    `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	Status      *string    `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress resolved rejected"`
	AssignedTo  *uuid.UUID `json:"assigned_to,omitempty"`
}

// CreateCommentRequest appends a comment to a feedback item.
type CreateCommentRequest struct {
	Body string `json:"body" validate:"required,min=1"`
}

// CreateDeadlineRequest adds a deadline to a project.
type CreateDeadlineRequest struct {
	Title       string    `json:"title" validate:"required,min=1,max=200"`
	Description string    `json:"description,omitempty"`
	DueDate     time.Time `json:"due_date" validate:"required"`
	Priority    string    `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
}

// UpdateDeadlineRequest is a partial update of a deadline.
type UpdateDeadlineRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Priority    *string    `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	Status      *string    `json:"status,omitempty" validate:"omitempty,oneof=pending completed"`
}

// AddCollaboratorRequest assigns a talent user to a project.
type AddCollaboratorRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Role   string    `json:"role" validate:"required,oneof=writer penciller inker colorist letterer cover_artist"`
}

// AddEditorRequest grants an editor access to a project.
type AddEditorRequest struct {
	UserID         uuid.UUID `json:"user_id" validate:"required"`
	AssignmentRole string    `json:"assignment_role" validate:"required,oneof=lead assistant consulting"`
}
