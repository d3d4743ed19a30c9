package types

import (
	"time"

	"github.com/google/uuid"
)

// Priority values shared by feedback items and deadlines.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Feedback status values.
const (
	FeedbackStatusPending    = "pending"
	FeedbackStatusInProgress = "in_progress"
	FeedbackStatusResolved   = "resolved"
	FeedbackStatusRejected   = "rejected"
)

// FeedbackItem is a change request raised against a project asset.
type FeedbackItem struct {
	ID          uuid.UUID  `json:"id"`
	ProjectID   uuid.UUID  `json:"project_id"`
	StepID      *uuid.UUID `json:"step_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	AssetType   string     `json:"asset_type,omitempty"`
	RequestedBy uuid.UUID  `json:"requested_by"`
	AssignedTo  *uuid.UUID `json:"assigned_to,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Comment is attached to a feedback item; comments are kept in creation order.
type Comment struct {
	ID         uuid.UUID `json:"id"`
	FeedbackID uuid.UUID `json:"feedback_id"`
	AuthorID   uuid.UUID `json:"author_id"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// Collaborator links a talent user to a project with a production role.
type Collaborator struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ProjectEditor grants an editorial-staff user management access to a project.
type ProjectEditor struct {
	ID             uuid.UUID `json:"id"`
	ProjectID      uuid.UUID `json:"project_id"`
	UserID         uuid.UUID `json:"user_id"`
	AssignedBy     uuid.UUID `json:"assigned_by"`
	AssignmentRole string    `json:"assignment_role"`
	CreatedAt      time.Time `json:"created_at"`
}
