package server

import (
	"net/http"
	"slices"

	"github.com/google/uuid"
	"github.com/jonathan/panel-peace/internal/schedule"
	"github.com/jonathan/panel-peace/internal/types"
	"github.com/jonathan/panel-peace/internal/views"
	"github.com/jonathan/panel-peace/internal/workflow"
)

// handleListProjects lists projects, optionally filtered by ?status.
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.ListProjects(r.Context())
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	status := filterParam(r, "status")
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"projects": views.Cards(views.FilterProjects(projects, status), s.now()),
		"stats":    views.Stats(projects),
	})
}

// handleCreateProject creates a project with the default step chain unless
// skip_default_steps is set.
func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	user, err := s.requireManager(r, "create projects")
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	var req types.CreateProjectRequest
	if err := decodeAndValidate(r, s.validator, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	now := s.now()
	p := &types.Project{
		ID:          uuid.New(),
		Title:       req.Title,
		IssueNumber: req.IssueNumber,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
		CreatedBy:   user.ID,
	}
	if p.Status == "" {
		p.Status = types.ProjectStatusInProgress
	}
	if req.Metrics != nil {
		if err := s.validator.Struct(req.Metrics); err != nil {
			s.errorResponse(w, extractValidationErrors(err))
			return
		}
		p.Metrics = *req.Metrics
	}

	var steps []types.WorkflowStep
	if !req.SkipSteps {
		steps = workflow.DefaultSteps(p.ID, now)
	}

	created, err := s.store.CreateProject(r.Context(), p, steps)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.metrics.Mutation("project", "create")
	s.jsonResponse(w, http.StatusCreated, views.Card(*created, now))
}

// handleGetProject returns a project card with its ordered steps.
func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "project")
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	p, err := s.loadProject(r.Context(), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	steps, err := s.store.ListSteps(r.Context(), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	now := s.now()
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"project": views.Card(*p, now),
		"steps":   s.stepRows(steps, now),
	})
}

// handleUpdateProject applies a partial update to a project's details.
func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	if _, err := s.requireManager(r, "edit projects"); err != nil {
		s.errorResponse(w, err)
		return
	}
	id, err := pathID(r, "project")
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	var req types.UpdateProjectRequest
	if err := decodeAndValidate(r, s.validator, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	p, err := s.loadProject(r.Context(), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.IssueNumber != nil {
		p.IssueNumber = *req.IssueNumber
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Progress != nil {
		p.Progress = *req.Progress
	}
	if req.DueDate != nil {
		p.DueDate = req.DueDate
	}
	if req.Metrics != nil {
		if err := s.validator.Struct(req.Metrics); err != nil {
			s.errorResponse(w, extractValidationErrors(err))
			return
		}
		p.Metrics = *req.Metrics
	}

	s.saveProject(w, r, p, "update")
}

// handleUpdateProjectStatus moves a project to another status. Any status
// may follow any other.
func (s *Server) handleUpdateProjectStatus(w http.ResponseWriter, r *http.Request) {
	if _, err := s.requireManager(r, "change project status"); err != nil {
		s.errorResponse(w, err)
		return
	}
	id, err := pathID(r, "project")
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	var req types.UpdateStatusRequest
	if err := decodeAndValidate(r, s.validator, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	if !slices.Contains(types.ProjectStatuses, req.Status) {
		s.errorResponse(w, &ErrValidation{Field: "status", Message: "unknown project status"})
		return
	}

	p, err := s.loadProject(r.Context(), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	p.Status = req.Status
	s.saveProject(w, r, p, "status")
}

func (s *Server) saveProject(w http.ResponseWriter, r *http.Request, p *types.Project, action string) {
	updated, err := s.store.UpdateProject(r.Context(), p)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if updated == nil {
		s.errorResponse(w, &ErrNotFound{Resource: "project", ID: p.ID})
		return
	}
	s.metrics.Mutation("project", action)
	s.jsonResponse(w, http.StatusOK, views.Card(*updated, s.now()))
}

// handleProjectForecast projects the finish date of the remaining page work.
func (s *Server) handleProjectForecast(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "project")
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	p, err := s.loadProject(r.Context(), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	steps, err := s.store.ListSteps(r.Context(), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	forecast := schedule.ProjectForecast(p, steps, s.now())
	if forecast.AtRisk {
		s.metrics.ForecastsAtRisk.Inc()
	}
	s.jsonResponse(w, http.StatusOK, forecast)
}
