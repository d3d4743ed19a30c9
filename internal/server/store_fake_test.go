package server

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/panel-peace/internal/db"
	"github.com/jonathan/panel-peace/internal/types"
)

// fakeStore is an in-memory Store for handler tests.
type fakeStore struct {
	mu            sync.Mutex
	now           func() time.Time
	pingErr       error
	users         map[uuid.UUID]*db.User
	projects      map[uuid.UUID]types.Project
	steps         map[uuid.UUID]types.WorkflowStep
	files         map[uuid.UUID]types.FileLink
	feedback      map[uuid.UUID]types.FeedbackItem
	comments      []types.Comment
	deadlines     map[uuid.UUID]types.Deadline
	collaborators map[uuid.UUID]types.Collaborator
	editors       map[uuid.UUID]types.ProjectEditor
}

var _ Store = (*fakeStore)(nil)

func newFakeStore(now func() time.Time) *fakeStore {
	return &fakeStore{
		now:           now,
		users:         map[uuid.UUID]*db.User{},
		projects:      map[uuid.UUID]types.Project{},
		steps:         map[uuid.UUID]types.WorkflowStep{},
		files:         map[uuid.UUID]types.FileLink{},
		feedback:      map[uuid.UUID]types.FeedbackItem{},
		deadlines:     map[uuid.UUID]types.Deadline{},
		collaborators: map[uuid.UUID]types.Collaborator{},
		editors:       map[uuid.UUID]types.ProjectEditor{},
	}
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) CreateUser(_ context.Context, name, email, phone, role string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return uuid.Nil, db.ErrDuplicate
		}
	}
	id := uuid.New()
	f.users[id] = &db.User{ID: id, Name: name, Email: email, Phone: phone, Role: role,
		CreatedAt: f.now(), UpdatedAt: f.now()}
	return id, nil
}

func (f *fakeStore) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	u, err := f.GetUserByEmail(ctx, email)
	return u != nil, err
}

func (f *fakeStore) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return db.ErrNotFound
	}
	u.PasswordHash = hash
	u.PasswordSet = true
	return nil
}

func (f *fakeStore) ListProjects(context.Context) ([]types.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]types.Project, 0, len(f.projects))
	for _, p := range f.projects {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b types.Project) int { return b.UpdatedAt.Compare(a.UpdatedAt) })
	return out, nil
}

func (f *fakeStore) GetProject(_ context.Context, id uuid.UUID) (*types.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeStore) CreateProject(_ context.Context, p *types.Project, steps []types.WorkflowStep) (*types.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	created := *p
	created.CreatedAt, created.UpdatedAt = f.now(), f.now()
	f.projects[created.ID] = created
	for _, s := range steps {
		s.PrevStepID, s.NextStepID = nil, nil
		f.steps[s.ID] = s
	}
	return &created, nil
}

func (f *fakeStore) UpdateProject(_ context.Context, p *types.Project) (*types.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.projects[p.ID]; !ok {
		return nil, nil
	}
	updated := *p
	updated.UpdatedAt = f.now()
	f.projects[p.ID] = updated
	return &updated, nil
}

func (f *fakeStore) ListSteps(_ context.Context, projectID uuid.UUID) ([]types.WorkflowStep, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []types.WorkflowStep
	for _, s := range f.steps {
		if s.ProjectID == projectID {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b types.WorkflowStep) int { return cmp.Compare(a.SortOrder, b.SortOrder) })
	return out, nil
}

func (f *fakeStore) GetStep(_ context.Context, id uuid.UUID) (*types.WorkflowStep, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.steps[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeStore) setOrders(steps []types.WorkflowStep) {
	for _, s := range steps {
		if cur, ok := f.steps[s.ID]; ok {
			cur.SortOrder = s.SortOrder
			f.steps[s.ID] = cur
		}
	}
}

func (f *fakeStore) CreateStep(_ context.Context, step *types.WorkflowStep, shifted []types.WorkflowStep) (*types.WorkflowStep, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setOrders(shifted)
	created := *step
	created.PrevStepID, created.NextStepID = nil, nil
	f.steps[created.ID] = created
	return &created, nil
}

func (f *fakeStore) UpdateStep(_ context.Context, step *types.WorkflowStep) (*types.WorkflowStep, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.steps[step.ID]
	if !ok {
		return nil, nil
	}
	updated := *step
	updated.SortOrder = cur.SortOrder
	updated.PrevStepID, updated.NextStepID = nil, nil
	updated.UpdatedAt = f.now()
	f.steps[step.ID] = updated
	return &updated, nil
}

func (f *fakeStore) ReorderSteps(_ context.Context, steps []types.WorkflowStep) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setOrders(steps)
	return nil
}

func (f *fakeStore) DeleteStep(_ context.Context, id uuid.UUID, shifted []types.WorkflowStep) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.steps[id]; !ok {
		return db.ErrNotFound
	}
	delete(f.steps, id)
	f.setOrders(shifted)
	return nil
}

func (f *fakeStore) ListFileLinks(_ context.Context, stepID uuid.UUID) ([]types.FileLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []types.FileLink
	for _, l := range f.files {
		if l.StepID == stepID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateFileLink(_ context.Context, l *types.FileLink) (*types.FileLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	created := *l
	created.CreatedAt = f.now()
	f.files[created.ID] = created
	return &created, nil
}

func (f *fakeStore) DeleteFileLink(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.files[id]; !ok {
		return db.ErrNotFound
	}
	delete(f.files, id)
	return nil
}

func (f *fakeStore) ListFeedback(_ context.Context, projectID uuid.UUID) ([]types.FeedbackItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []types.FeedbackItem
	for _, item := range f.feedback {
		if item.ProjectID == projectID {
			out = append(out, item)
		}
	}
	slices.SortFunc(out, func(a, b types.FeedbackItem) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (f *fakeStore) GetFeedback(_ context.Context, id uuid.UUID) (*types.FeedbackItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.feedback[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (f *fakeStore) CreateFeedback(_ context.Context, item *types.FeedbackItem) (*types.FeedbackItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	created := *item
	created.CreatedAt, created.UpdatedAt = f.now(), f.now()
	f.feedback[created.ID] = created
	return &created, nil
}

func (f *fakeStore) UpdateFeedback(_ context.Context, item *types.FeedbackItem) (*types.FeedbackItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.feedback[item.ID]; !ok {
		return nil, nil
	}
	updated := *item
	updated.UpdatedAt = f.now()
	f.feedback[item.ID] = updated
	return &updated, nil
}

func (f *fakeStore) CountOpenFeedback(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, item := range f.feedback {
		if item.Status == types.FeedbackStatusPending || item.Status == types.FeedbackStatusInProgress {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) ListComments(_ context.Context, feedbackID uuid.UUID) ([]types.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []types.Comment
	for _, c := range f.comments {
		if c.FeedbackID == feedbackID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateComment(_ context.Context, c *types.Comment) (*types.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	created := *c
	created.CreatedAt = f.now()
	f.comments = append(f.comments, created)
	return &created, nil
}

func (f *fakeStore) ListDeadlines(_ context.Context, projectID uuid.UUID) ([]types.Deadline, error) {
	all, _ := f.ListAllDeadlines(context.Background())
	var out []types.Deadline
	for _, d := range all {
		if d.ProjectID == projectID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeStore) ListAllDeadlines(context.Context) ([]types.Deadline, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]types.Deadline, 0, len(f.deadlines))
	for _, d := range f.deadlines {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b types.Deadline) int { return a.DueDate.Compare(b.DueDate) })
	return out, nil
}

func (f *fakeStore) GetDeadline(_ context.Context, id uuid.UUID) (*types.Deadline, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.deadlines[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (f *fakeStore) CreateDeadline(_ context.Context, d *types.Deadline) (*types.Deadline, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	created := *d
	created.CreatedAt, created.UpdatedAt = f.now(), f.now()
	f.deadlines[created.ID] = created
	return &created, nil
}

func (f *fakeStore) UpdateDeadline(_ context.Context, d *types.Deadline) (*types.Deadline, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.deadlines[d.ID]; !ok {
		return nil, nil
	}
	updated := *d
	updated.UpdatedAt = f.now()
	f.deadlines[d.ID] = updated
	return &updated, nil
}

func (f *fakeStore) ListCollaborators(_ context.Context, projectID uuid.UUID) ([]types.Collaborator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []types.Collaborator
	for _, c := range f.collaborators {
		if c.ProjectID == projectID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) AddCollaborator(_ context.Context, c *types.Collaborator) (*types.Collaborator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.collaborators {
		if existing.ProjectID == c.ProjectID && existing.UserID == c.UserID {
			return nil, db.ErrDuplicate
		}
	}
	created := *c
	created.CreatedAt = f.now()
	f.collaborators[created.ID] = created
	return &created, nil
}

func (f *fakeStore) RemoveCollaborator(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.collaborators[id]; !ok {
		return db.ErrNotFound
	}
	delete(f.collaborators, id)
	return nil
}

func (f *fakeStore) ListEditors(_ context.Context, projectID uuid.UUID) ([]types.ProjectEditor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []types.ProjectEditor
	for _, e := range f.editors {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) AddEditor(_ context.Context, e *types.ProjectEditor) (*types.ProjectEditor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.editors {
		if existing.ProjectID == e.ProjectID && existing.UserID == e.UserID {
			return nil, db.ErrDuplicate
		}
	}
	created := *e
	created.CreatedAt = f.now()
	f.editors[created.ID] = created
	return &created, nil
}

func (f *fakeStore) RemoveEditor(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.editors[id]; !ok {
		return db.ErrNotFound
	}
	delete(f.editors, id)
	return nil
}

// orderClashStore loses every step insert to a concurrent writer.
type orderClashStore struct {
	*fakeStore
}

func (orderClashStore) CreateStep(context.Context, *types.WorkflowStep, []types.WorkflowStep) (*types.WorkflowStep, error) {
	return nil, db.ErrDuplicate
}

// errStore fails every project listing, for error-path tests.
type errStore struct {
	*fakeStore
}

var errBoom = errors.New("connection reset")

func (e errStore) ListProjects(context.Context) ([]types.Project, error) {
	return nil, errBoom
}
