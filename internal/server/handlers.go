package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/jonathan/panel-peace/internal/progress"
	"github.com/jonathan/panel-peace/internal/server/middleware"
	"github.com/jonathan/panel-peace/internal/types"
	"github.com/jonathan/panel-peace/internal/views"
)

// parseQueryInt parses an integer query parameter with default and max values
func parseQueryInt(r *http.Request, key string, defaultValue, maxValue int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		return defaultValue
	}
	if maxValue > 0 && val > maxValue {
		return maxValue
	}
	return val
}

// filterParam reads a filter query parameter. A missing or empty value
// means no filtering.
func filterParam(r *http.Request, key string) string {
	if v := r.URL.Query().Get(key); v != "" {
		return v
	}
	return views.All
}

// pathID parses the {id} path value.
func pathID(r *http.Request, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "id", Message: "invalid " + resource + " ID"}
	}
	return id, nil
}

// currentUser loads the authenticated caller.
func (s *Server) currentUser(r *http.Request) (*types.User, error) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		return nil, &ErrInvalidCredentials{}
	}
	return s.userService.GetUser(r.Context(), userID)
}

// requireManager returns the caller if they hold an editorial role. Talent
// may read everything but only manage their own step work.
func (s *Server) requireManager(r *http.Request, action string) (*types.User, error) {
	user, err := s.currentUser(r)
	if err != nil {
		return nil, err
	}
	if user.Role != types.UserRoleEditor && user.Role != types.UserRoleAdmin {
		return nil, &ErrForbidden{Action: action}
	}
	return user, nil
}

func (s *Server) loadProject(ctx context.Context, id uuid.UUID) (*types.Project, error) {
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &ErrNotFound{Resource: "project", ID: id}
	}
	return p, nil
}

func (s *Server) loadStep(ctx context.Context, id uuid.UUID) (*types.WorkflowStep, error) {
	step, err := s.store.GetStep(ctx, id)
	if err != nil {
		return nil, err
	}
	if step == nil {
		return nil, &ErrNotFound{Resource: "step", ID: id}
	}
	return step, nil
}

// syncProjectProgress recomputes a project's progress as the mean of its
// step progress, persists it when it changed and returns it.
func (s *Server) syncProjectProgress(ctx context.Context, projectID uuid.UUID) (int, error) {
	p, err := s.loadProject(ctx, projectID)
	if err != nil {
		return 0, err
	}
	steps, err := s.store.ListSteps(ctx, projectID)
	if err != nil {
		return 0, err
	}
	pct := progress.Project(steps)
	if pct == p.Progress {
		return pct, nil
	}
	p.Progress = pct
	if _, err := s.store.UpdateProject(ctx, p); err != nil {
		return 0, err
	}
	return pct, nil
}
