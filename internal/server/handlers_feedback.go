package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/panel-peace/internal/server/middleware"
	"github.com/jonathan/panel-peace/internal/types"
	"github.com/jonathan/panel-peace/internal/views"
)

func (s *Server) loadFeedback(ctx context.Context, id uuid.UUID) (*types.FeedbackItem, error) {
	f, err := s.store.GetFeedback(ctx, id)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, &ErrNotFound{Resource: "feedback", ID: id}
	}
	return f, nil
}

// handleListFeedback lists a project's feedback, filtered by ?status and
// ?priority, high priority first.
func (s *Server) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "project")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if _, err := s.loadProject(r.Context(), projectID); err != nil {
		s.errorResponse(w, err)
		return
	}

	items, err := s.store.ListFeedback(r.Context(), projectID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	items = views.SortFeedback(views.FilterFeedback(items, filterParam(r, "status"), filterParam(r, "priority")))
	s.jsonResponse(w, http.StatusOK, map[string]any{"feedback": views.Feedback(items)})
}

// handleCreateFeedback raises a feedback item on a project.
func (s *Server) handleCreateFeedback(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, &ErrInvalidCredentials{})
		return
	}
	projectID, err := pathID(r, "project")
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	var req types.CreateFeedbackRequest
	if err := decodeAndValidate(r, s.validator, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	if _, err := s.loadProject(r.Context(), projectID); err != nil {
		s.errorResponse(w, err)
		return
	}
	if req.StepID != nil {
		step, err := s.loadStep(r.Context(), *req.StepID)
		if err != nil {
			s.errorResponse(w, err)
			return
		}
		if step.ProjectID != projectID {
			s.errorResponse(w, &ErrValidation{Field: "step_id", Message: "step belongs to another project"})
			return
		}
	}

	f := &types.FeedbackItem{
		ID:          uuid.New(),
		ProjectID:   projectID,
		StepID:      req.StepID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      types.FeedbackStatusPending,
		AssetType:   req.AssetType,
		RequestedBy: userID,
		AssignedTo:  req.AssignedTo,
	}
	if f.Priority == "" {
		f.Priority = types.PriorityMedium
	}

	created, err := s.store.CreateFeedback(r.Context(), f)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.metrics.Mutation("feedback", "create")
	s.jsonResponse(w, http.StatusCreated, views.Feedback([]types.FeedbackItem{*created})[0])
}

// handleGetFeedback returns a feedback item with its comments.
func (s *Server) handleGetFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "feedback")
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	f, err := s.loadFeedback(r.Context(), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	comments, err := s.store.ListComments(r.Context(), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"feedback": views.Feedback([]types.FeedbackItem{*f})[0],
		"comments": comments,
	})
}

// handleUpdateFeedback applies a partial update to a feedback item.
func (s *Server) handleUpdateFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "feedback")
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	var req types.UpdateFeedbackRequest
	if err := decodeAndValidate(r, s.validator, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	f, err := s.loadFeedback(r.Context(), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if req.Title != nil {
		f.Title = *req.Title
	}
	if req.Description != nil {
		f.Description = *req.Description
	}
	if req.Priority != nil {
		f.Priority = *req.Priority
	}
	if req.Status != nil {
		f.Status = *req.Status
	}
	if req.AssignedTo != nil {
		f.AssignedTo = req.AssignedTo
	}

	updated, err := s.store.UpdateFeedback(r.Context(), f)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if updated == nil {
		s.errorResponse(w, &ErrNotFound{Resource: "feedback", ID: id})
		return
	}
	s.metrics.Mutation("feedback", "update")
	s.jsonResponse(w, http.StatusOK, views.Feedback([]types.FeedbackItem{*updated})[0])
}

// handleListComments lists a feedback item's comments in creation order.
func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "feedback")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if _, err := s.loadFeedback(r.Context(), id); err != nil {
		s.errorResponse(w, err)
		return
	}

	comments, err := s.store.ListComments(r.Context(), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"comments": comments})
}

// handleCreateComment appends a comment to a feedback item.
func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, &ErrInvalidCredentials{})
		return
	}
	id, err := pathID(r, "feedback")
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	var req types.CreateCommentRequest
	if err := decodeAndValidate(r, s.validator, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	if _, err := s.loadFeedback(r.Context(), id); err != nil {
		s.errorResponse(w, err)
		return
	}

	created, err := s.store.CreateComment(r.Context(), &types.Comment{
		ID:         uuid.New(),
		FeedbackID: id,
		AuthorID:   userID,
		Body:       req.Body,
	})
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.metrics.Mutation("comment", "create")
	s.jsonResponse(w, http.StatusCreated, created)
}
