package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/panel-peace/internal/server/middleware"
	"github.com/jonathan/panel-peace/internal/types"
)

// handleListFiles lists the files attached to a step.
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	stepID, err := pathID(r, "step")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if _, err := s.loadStep(r.Context(), stepID); err != nil {
		s.errorResponse(w, err)
		return
	}

	files, err := s.store.ListFileLinks(r.Context(), stepID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"files": files})
}

// handleCreateFile attaches a link or an uploaded file's URL to a step.
func (s *Server) handleCreateFile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, &ErrInvalidCredentials{})
		return
	}
	stepID, err := pathID(r, "step")
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	var req types.CreateFileLinkRequest
	if err := decodeAndValidate(r, s.validator, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	if _, err := s.loadStep(r.Context(), stepID); err != nil {
		s.errorResponse(w, err)
		return
	}

	f := &types.FileLink{
		ID:         uuid.New(),
		StepID:     stepID,
		Name:       req.Name,
		URL:        req.URL,
		Category:   req.Category,
		Source:     req.Source,
		UploadedBy: userID,
	}
	if f.Category == "" {
		f.Category = types.FileCategoryMisc
	}
	if f.Source == "" {
		f.Source = types.FileSourceLink
	}

	created, err := s.store.CreateFileLink(r.Context(), f)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.metrics.Mutation("file", "create")
	s.jsonResponse(w, http.StatusCreated, created)
}

// handleDeleteFile detaches a file from its step.
func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "file")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if err := s.store.DeleteFileLink(r.Context(), id); err != nil {
		s.errorResponse(w, err)
		return
	}
	s.metrics.Mutation("file", "delete")
	w.WriteHeader(http.StatusNoContent)
}
