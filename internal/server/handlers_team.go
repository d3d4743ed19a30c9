package server

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/panel-peace/internal/db"
	"github.com/jonathan/panel-peace/internal/types"
)

// requireUser reports a missing user as a 404 on the user_id field.
func (s *Server) requireUser(r *http.Request, id uuid.UUID) error {
	u, err := s.store.GetUser(r.Context(), id)
	if err != nil {
		return err
	}
	if u == nil {
		return &ErrNotFound{Resource: "user", ID: id}
	}
	return nil
}

func conflictOn(err error, message string) error {
	if errors.Is(err, db.ErrDuplicate) {
		return &ErrConflict{Message: message}
	}
	return err
}

func (s *Server) handleListCollaborators(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "project")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if _, err := s.loadProject(r.Context(), projectID); err != nil {
		s.errorResponse(w, err)
		return
	}

	collaborators, err := s.store.ListCollaborators(r.Context(), projectID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"collaborators": collaborators})
}

func (s *Server) handleAddCollaborator(w http.ResponseWriter, r *http.Request) {
	if _, err := s.requireManager(r, "assign collaborators"); err != nil {
		s.errorResponse(w, err)
		return
	}
	projectID, err := pathID(r, "project")
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	var req types.AddCollaboratorRequest
	if err := decodeAndValidate(r, s.validator, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	if _, err := s.loadProject(r.Context(), projectID); err != nil {
		s.errorResponse(w, err)
		return
	}
	if err := s.requireUser(r, req.UserID); err != nil {
		s.errorResponse(w, err)
		return
	}

	created, err := s.store.AddCollaborator(r.Context(), &types.Collaborator{
		ID:        uuid.New(),
		ProjectID: projectID,
		UserID:    req.UserID,
		Role:      req.Role,
	})
	if err != nil {
		s.errorResponse(w, conflictOn(err, "user is already a collaborator on this project"))
		return
	}
	s.metrics.Mutation("collaborator", "create")
	s.jsonResponse(w, http.StatusCreated, created)
}

func (s *Server) handleRemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	if _, err := s.requireManager(r, "remove collaborators"); err != nil {
		s.errorResponse(w, err)
		return
	}
	id, err := pathID(r, "collaborator")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if err := s.store.RemoveCollaborator(r.Context(), id); err != nil {
		s.errorResponse(w, err)
		return
	}
	s.metrics.Mutation("collaborator", "delete")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListEditors(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "project")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if _, err := s.loadProject(r.Context(), projectID); err != nil {
		s.errorResponse(w, err)
		return
	}

	editors, err := s.store.ListEditors(r.Context(), projectID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"editors": editors})
}

func (s *Server) handleAddEditor(w http.ResponseWriter, r *http.Request) {
	caller, err := s.requireManager(r, "assign editors")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	projectID, err := pathID(r, "project")
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	var req types.AddEditorRequest
	if err := decodeAndValidate(r, s.validator, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	if _, err := s.loadProject(r.Context(), projectID); err != nil {
		s.errorResponse(w, err)
		return
	}
	if err := s.requireUser(r, req.UserID); err != nil {
		s.errorResponse(w, err)
		return
	}

	created, err := s.store.AddEditor(r.Context(), &types.ProjectEditor{
		ID:             uuid.New(),
		ProjectID:      projectID,
		UserID:         req.UserID,
		AssignedBy:     caller.ID,
		AssignmentRole: req.AssignmentRole,
	})
	if err != nil {
		s.errorResponse(w, conflictOn(err, "user is already an editor on this project"))
		return
	}
	s.metrics.Mutation("editor", "create")
	s.jsonResponse(w, http.StatusCreated, created)
}

func (s *Server) handleRemoveEditor(w http.ResponseWriter, r *http.Request) {
	if _, err := s.requireManager(r, "remove editors"); err != nil {
		s.errorResponse(w, err)
		return
	}
	id, err := pathID(r, "editor")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if err := s.store.RemoveEditor(r.Context(), id); err != nil {
		s.errorResponse(w, err)
		return
	}
	s.metrics.Mutation("editor", "delete")
	w.WriteHeader(http.StatusNoContent)
}
