package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/panel-peace/internal/types"
	"github.com/jonathan/panel-peace/internal/views"
)

// handleListDeadlines lists a project's deadlines by due date, optionally
// filtered by ?status.
func (s *Server) handleListDeadlines(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "project")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if _, err := s.loadProject(r.Context(), projectID); err != nil {
		s.errorResponse(w, err)
		return
	}

	deadlines, err := s.store.ListDeadlines(r.Context(), projectID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	deadlines = views.SortDeadlines(views.FilterDeadlines(deadlines, filterParam(r, "status")))
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"deadlines": views.Deadlines(deadlines, s.now()),
	})
}

// handleCreateDeadline adds a deadline to a project.
func (s *Server) handleCreateDeadline(w http.ResponseWriter, r *http.Request) {
	if _, err := s.requireManager(r, "create deadlines"); err != nil {
		s.errorResponse(w, err)
		return
	}
	projectID, err := pathID(r, "project")
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	var req types.CreateDeadlineRequest
	if err := decodeAndValidate(r, s.validator, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	if _, err := s.loadProject(r.Context(), projectID); err != nil {
		s.errorResponse(w, err)
		return
	}

	d := &types.Deadline{
		ID:          uuid.New(),
		ProjectID:   projectID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
		Status:      types.DeadlineStatusPending,
	}
	if d.Priority == "" {
		d.Priority = types.PriorityMedium
	}

	created, err := s.store.CreateDeadline(r.Context(), d)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.metrics.Mutation("deadline", "create")
	s.jsonResponse(w, http.StatusCreated, views.Deadlines([]types.Deadline{*created}, s.now())[0])
}

// handleUpdateDeadline applies a partial update to a deadline.
func (s *Server) handleUpdateDeadline(w http.ResponseWriter, r *http.Request) {
	if _, err := s.requireManager(r, "edit deadlines"); err != nil {
		s.errorResponse(w, err)
		return
	}
	id, err := pathID(r, "deadline")
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	var req types.UpdateDeadlineRequest
	if err := decodeAndValidate(r, s.validator, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	d, err := s.store.GetDeadline(r.Context(), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if d == nil {
		s.errorResponse(w, &ErrNotFound{Resource: "deadline", ID: id})
		return
	}
	if req.Title != nil {
		d.Title = *req.Title
	}
	if req.Description != nil {
		d.Description = *req.Description
	}
	if req.DueDate != nil {
		d.DueDate = *req.DueDate
	}
	if req.Priority != nil {
		d.Priority = *req.Priority
	}
	if req.Status != nil {
		d.Status = *req.Status
	}

	updated, err := s.store.UpdateDeadline(r.Context(), d)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if updated == nil {
		s.errorResponse(w, &ErrNotFound{Resource: "deadline", ID: id})
		return
	}
	s.metrics.Mutation("deadline", "update")
	s.jsonResponse(w, http.StatusOK, views.Deadlines([]types.Deadline{*updated}, s.now())[0])
}

// handleUpcomingDeadlines lists deadlines due within ?days days across every
// project, whatever their status unless ?status= narrows it.
func (s *Server) handleUpcomingDeadlines(w http.ResponseWriter, r *http.Request) {
	window := s.upcoming
	if days := parseQueryInt(r, "days", 0, 365); days > 0 {
		window = time.Duration(days) * 24 * time.Hour
	}

	deadlines, err := s.store.ListAllDeadlines(r.Context())
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	now := s.now()
	upcoming := views.Upcoming(views.FilterDeadlines(deadlines, filterParam(r, "status")), now, window)
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"deadlines": views.Deadlines(upcoming, now),
	})
}
