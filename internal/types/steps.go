package types

import (
	"time"

	"github.com/google/uuid"
)

// Workflow step types, in the order a default project chain uses them.
const (
	StepTypePlotDevelopment = "plot_development"
	StepTypeScript          = "script"
	StepTypePencils         = "pencils"
	StepTypeInks            = "inks"
	StepTypeColors          = "colors"
	StepTypeLetters         = "letters"
	StepTypeCover           = "cover"
)

// StepTypes lists every known step type.
var StepTypes = []string{
	StepTypePlotDevelopment,
	StepTypeScript,
	StepTypePencils,
	StepTypeInks,
	StepTypeColors,
	StepTypeLetters,
	StepTypeCover,
}

// Workflow step status values.
const (
	StepStatusNotStarted = "not_started"
	StepStatusInProgress = "in_progress"
	StepStatusReview     = "review"
	StepStatusCompleted  = "completed"
	StepStatusDelayed    = "delayed"
)

// WorkflowStep is one production stage of a project.
//
// SortOrder is the only persisted ordering. PrevStepID and NextStepID are
// filled from SortOrder when a project's steps are read and are never stored.
type WorkflowStep struct {
	ID          uuid.UUID       `json:"id"`
	ProjectID   uuid.UUID       `json:"project_id"`
	StepType    string          `json:"step_type"`
	Title       string          `json:"title"`
	Status      string          `json:"status"`
	Progress    int             `json:"progress"`
	SortOrder   int             `json:"sort_order"`
	PrevStepID  *uuid.UUID      `json:"prev_step_id,omitempty"`
	NextStepID  *uuid.UUID      `json:"next_step_id,omitempty"`
	AssigneeID  *uuid.UUID      `json:"assignee_id,omitempty"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	Ratings     *QualityRatings `json:"ratings,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// QualityRatings are recorded by an editor when a step is completed.
// Every scale runs from 1 to 10.
type QualityRatings struct {
	Storytelling  int `json:"storytelling" validate:"required,min=1,max=10"`
	Artwork       int `json:"artwork" validate:"required,min=1,max=10"`
	Timeliness    int `json:"timeliness" validate:"required,min=1,max=10"`
	Communication int `json:"communication" validate:"required,min=1,max=10"`
	Consistency   int `json:"consistency" validate:"required,min=1,max=10"`
	Overall       int `json:"overall" validate:"required,min=1,max=10"`
}

// Scores returns the ratings in declaration order.
func (q QualityRatings) Scores() []int {
	return []int{q.Storytelling, q.Artwork, q.Timeliness, q.Communication, q.Consistency, q.Overall}
}

// File link categories.
const (
	FileCategoryArtwork = "artwork"
	FileCategoryScript  = "script"
	FileCategoryMisc    = "misc"
)

// File link sources.
const (
	FileSourceLink   = "link"
	FileSourceUpload = "upload"
)

// FileLink associates an external URL or an uploaded file with a step.
type FileLink struct {
	ID         uuid.UUID `json:"id"`
	StepID     uuid.UUID `json:"step_id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Category   string    `json:"category"`
	Source     string    `json:"source"`
	UploadedBy uuid.UUID `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}
