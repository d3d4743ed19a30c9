package server

import (
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/jonathan/panel-peace/internal/progress"
	"github.com/jonathan/panel-peace/internal/types"
	"github.com/jonathan/panel-peace/internal/views"
	"github.com/jonathan/panel-peace/internal/workflow"
)

// stepRows orders steps, links neighbours and decorates them for display.
func (s *Server) stepRows(steps []types.WorkflowStep, now time.Time) []views.StepRow {
	return views.Steps(workflow.NewSequence(steps).Steps(), now, progress.IsBinary)
}

func (s *Server) stepRow(step types.WorkflowStep) views.StepRow {
	return views.Steps([]types.WorkflowStep{step}, s.now(), progress.IsBinary)[0]
}

// handleListSteps lists a project's steps in workflow order.
func (s *Server) handleListSteps(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "project")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if _, err := s.loadProject(r.Context(), projectID); err != nil {
		s.errorResponse(w, err)
		return
	}

	steps, err := s.store.ListSteps(r.Context(), projectID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"steps": s.stepRows(steps, s.now()),
	})
}

// handleCreateStep inserts a step at the requested position, or at the end.
func (s *Server) handleCreateStep(w http.ResponseWriter, r *http.Request) {
	if _, err := s.requireManager(r, "add workflow steps"); err != nil {
		s.errorResponse(w, err)
		return
	}
	projectID, err := pathID(r, "project")
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	var req types.CreateStepRequest
	if err := decodeAndValidate(r, s.validator, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	if !slices.Contains(types.StepTypes, req.StepType) {
		s.errorResponse(w, &ErrValidation{Field: "step_type", Message: "unknown step type"})
		return
	}

	if _, err := s.loadProject(r.Context(), projectID); err != nil {
		s.errorResponse(w, err)
		return
	}
	existing, err := s.store.ListSteps(r.Context(), projectID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	now := s.now()
	step := workflow.NewStep(projectID, req.StepType, req.Title, now)
	step.AssigneeID = req.AssigneeID
	step.DueDate = req.DueDate

	seq := workflow.NewSequence(existing)
	position := seq.Len()
	if req.Position != nil {
		position = *req.Position
	}

	var shifted []types.WorkflowStep
	for _, changed := range seq.Insert(step, position) {
		if changed.ID == step.ID {
			step.SortOrder = changed.SortOrder
			continue
		}
		shifted = append(shifted, changed)
	}

	created, err := s.store.CreateStep(r.Context(), &step, shifted)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if _, err := s.syncProjectProgress(r.Context(), projectID); err != nil {
		s.errorResponse(w, err)
		return
	}
	s.metrics.Mutation("step", "create")
	s.jsonResponse(w, http.StatusCreated, s.stepRow(*created))
}

// handleUpdateStep applies a partial update to a step's details.
func (s *Server) handleUpdateStep(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "step")
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	var req types.UpdateStepRequest
	if err := decodeAndValidate(r, s.validator, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	step, err := s.loadStep(r.Context(), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if req.Title != nil {
		step.Title = *req.Title
	}
	if req.AssigneeID != nil {
		step.AssigneeID = req.AssigneeID
	}
	if req.DueDate != nil {
		step.DueDate = req.DueDate
	}

	s.saveStep(w, r, step, "update")
}

// handleUpdateStepStatus moves a step along the status graph.
func (s *Server) handleUpdateStepStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "step")
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	var req types.UpdateStatusRequest
	if err := decodeAndValidate(r, s.validator, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	step, err := s.loadStep(r.Context(), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	from := step.Status
	if err := workflow.Transition(step, req.Status, s.now()); err != nil {
		s.errorResponse(w, err)
		return
	}
	if from != step.Status {
		s.metrics.Transition(from, step.Status)
	}

	s.saveStep(w, r, step, "status")
}

// handleUpdateStepProgress records step progress from a unit count or a
// percent, then refreshes the project's aggregate progress.
func (s *Server) handleUpdateStepProgress(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "step")
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	var req types.UpdateProgressRequest
	if err := decodeAndValidate(r, s.validator, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	if (req.Percent == nil) == (req.Completed == nil) {
		s.errorResponse(w, &ErrValidation{Field: "progress", Message: "set exactly one of percent or completed"})
		return
	}

	step, err := s.loadStep(r.Context(), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	p, err := s.loadProject(r.Context(), step.ProjectID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	total := progress.UnitsFor(p, step.StepType)
	if req.Total != nil {
		total = *req.Total
	}

	if req.Percent != nil {
		err = workflow.SetPercent(step, *req.Percent)
	} else {
		if total <= 0 {
			s.errorResponse(w, &ErrValidation{Field: "total", Message: "project has no page count for this step"})
			return
		}
		if *req.Completed > total && !progress.IsBinary(step.StepType) {
			s.errorResponse(w, &ErrValidation{Field: "completed", Message: fmt.Sprintf("must be between 0 and %d", total)})
			return
		}
		err = workflow.SetCount(step, *req.Completed, total)
	}
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	updated, err := s.store.UpdateStep(r.Context(), step)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if updated == nil {
		s.errorResponse(w, &ErrNotFound{Resource: "step", ID: id})
		return
	}
	projectProgress, err := s.syncProjectProgress(r.Context(), step.ProjectID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.metrics.Mutation("step", "progress")

	counter := progress.NewCounter(updated.StepType, total, updated.Progress)
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"step":             s.stepRow(*updated),
		"completed":        counter.Count,
		"total":            counter.Total,
		"project_progress": projectProgress,
	})
}

// handleMoveStep moves a step to a new zero-based position.
func (s *Server) handleMoveStep(w http.ResponseWriter, r *http.Request) {
	if _, err := s.requireManager(r, "reorder workflow steps"); err != nil {
		s.errorResponse(w, err)
		return
	}
	id, err := pathID(r, "step")
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	var req types.MoveStepRequest
	if err := decodeAndValidate(r, s.validator, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	step, err := s.loadStep(r.Context(), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	steps, err := s.store.ListSteps(r.Context(), step.ProjectID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	seq := workflow.NewSequence(steps)
	changed, err := seq.Move(id, req.Position)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if err := s.store.ReorderSteps(r.Context(), changed); err != nil {
		s.errorResponse(w, err)
		return
	}
	s.metrics.Mutation("step", "move")
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"steps": views.Steps(seq.Steps(), s.now(), progress.IsBinary),
	})
}

// handleRateStep records quality ratings on a completed step.
func (s *Server) handleRateStep(w http.ResponseWriter, r *http.Request) {
	if _, err := s.requireManager(r, "rate workflow steps"); err != nil {
		s.errorResponse(w, err)
		return
	}
	id, err := pathID(r, "step")
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	var req types.QualityRatings
	if err := decodeAndValidate(r, s.validator, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	step, err := s.loadStep(r.Context(), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if err := workflow.Rate(step, req); err != nil {
		s.errorResponse(w, err)
		return
	}

	s.saveStep(w, r, step, "rate")
}

// handleDeleteStep removes a step and closes the gap in the order.
func (s *Server) handleDeleteStep(w http.ResponseWriter, r *http.Request) {
	if _, err := s.requireManager(r, "delete workflow steps"); err != nil {
		s.errorResponse(w, err)
		return
	}
	id, err := pathID(r, "step")
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	step, err := s.loadStep(r.Context(), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	steps, err := s.store.ListSteps(r.Context(), step.ProjectID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	shifted, err := workflow.NewSequence(steps).Remove(id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if err := s.store.DeleteStep(r.Context(), id, shifted); err != nil {
		s.errorResponse(w, err)
		return
	}
	if _, err := s.syncProjectProgress(r.Context(), step.ProjectID); err != nil {
		s.errorResponse(w, err)
		return
	}
	s.metrics.Mutation("step", "delete")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) saveStep(w http.ResponseWriter, r *http.Request, step *types.WorkflowStep, action string) {
	updated, err := s.store.UpdateStep(r.Context(), step)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if updated == nil {
		s.errorResponse(w, &ErrNotFound{Resource: "step", ID: step.ID})
		return
	}
	s.metrics.Mutation("step", action)
	s.jsonResponse(w, http.StatusOK, s.stepRow(*updated))
}
