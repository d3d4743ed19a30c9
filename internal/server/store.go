package server

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonathan/panel-peace/internal/db"
	"github.com/jonathan/panel-peace/internal/types"
)

// DBClient is the account storage used by UserService.
type DBClient interface {
	CreateUser(ctx context.Context, name, email, phone, role string) (uuid.UUID, error)
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// Store is everything the handlers persist. *db.DB satisfies it; tests use
// an in-memory fake. Getters return nil, nil when the row does not exist.
type Store interface {
	DBClient

	Ping(ctx context.Context) error

	ListProjects(ctx context.Context) ([]types.Project, error)
	GetProject(ctx context.Context, id uuid.UUID) (*types.Project, error)
	CreateProject(ctx context.Context, p *types.Project, steps []types.WorkflowStep) (*types.Project, error)
	UpdateProject(ctx context.Context, p *types.Project) (*types.Project, error)

	ListSteps(ctx context.Context, projectID uuid.UUID) ([]types.WorkflowStep, error)
	GetStep(ctx context.Context, id uuid.UUID) (*types.WorkflowStep, error)
	CreateStep(ctx context.Context, step *types.WorkflowStep, shifted []types.WorkflowStep) (*types.WorkflowStep, error)
	UpdateStep(ctx context.Context, step *types.WorkflowStep) (*types.WorkflowStep, error)
	ReorderSteps(ctx context.Context, steps []types.WorkflowStep) error
	DeleteStep(ctx context.Context, id uuid.UUID, shifted []types.WorkflowStep) error

	ListFileLinks(ctx context.Context, stepID uuid.UUID) ([]types.FileLink, error)
	CreateFileLink(ctx context.Context, f *types.FileLink) (*types.FileLink, error)
	DeleteFileLink(ctx context.Context, id uuid.UUID) error

	ListFeedback(ctx context.Context, projectID uuid.UUID) ([]types.FeedbackItem, error)
	GetFeedback(ctx context.Context, id uuid.UUID) (*types.FeedbackItem, error)
	CreateFeedback(ctx context.Context, f *types.FeedbackItem) (*types.FeedbackItem, error)
	UpdateFeedback(ctx context.Context, f *types.FeedbackItem) (*types.FeedbackItem, error)
	CountOpenFeedback(ctx context.Context) (int, error)
	ListComments(ctx context.Context, feedbackID uuid.UUID) ([]types.Comment, error)
	CreateComment(ctx context.Context, c *types.Comment) (*types.Comment, error)

	ListDeadlines(ctx context.Context, projectID uuid.UUID) ([]types.Deadline, error)
	ListAllDeadlines(ctx context.Context) ([]types.Deadline, error)
	GetDeadline(ctx context.Context, id uuid.UUID) (*types.Deadline, error)
	CreateDeadline(ctx context.Context, d *types.Deadline) (*types.Deadline, error)
	UpdateDeadline(ctx context.Context, d *types.Deadline) (*types.Deadline, error)

	ListCollaborators(ctx context.Context, projectID uuid.UUID) ([]types.Collaborator, error)
	AddCollaborator(ctx context.Context, c *types.Collaborator) (*types.Collaborator, error)
	RemoveCollaborator(ctx context.Context, id uuid.UUID) error
	ListEditors(ctx context.Context, projectID uuid.UUID) ([]types.ProjectEditor, error)
	AddEditor(ctx context.Context, e *types.ProjectEditor) (*types.ProjectEditor, error)
	RemoveEditor(ctx context.Context, id uuid.UUID) error
}

var _ Store = (*db.DB)(nil)
