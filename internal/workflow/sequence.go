// Package workflow orders a project's production steps and governs their
// status transitions.
//
// SortOrder is the single source of truth for ordering. Predecessor and
// successor links are derived from it on demand and never maintained as
// independent state.
package workflow

import (
	"cmp"
	"errors"
	"slices"

	"github.com/google/uuid"
	"github.com/jonathan/panel-peace/internal/types"
)

// ErrStepNotFound is returned when a step id is not part of the sequence.
var ErrStepNotFound = errors.New("workflow step not found")

// Sequence is the ordered chain of steps belonging to one project.
type Sequence struct {
	steps []types.WorkflowStep
}

// NewSequence copies steps and orders them by SortOrder, breaking ties by
// creation time so a corrupted order still yields a deterministic chain.
func NewSequence(steps []types.WorkflowStep) *Sequence {
	sorted := slices.Clone(steps)
	slices.SortStableFunc(sorted, func(a, b types.WorkflowStep) int {
		if c := cmp.Compare(a.SortOrder, b.SortOrder); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return &Sequence{steps: sorted}
}

// Len returns the number of steps.
func (s *Sequence) Len() int {
	return len(s.steps)
}

// IndexOf returns the position of id, or -1.
func (s *Sequence) IndexOf(id uuid.UUID) int {
	return slices.IndexFunc(s.steps, func(st types.WorkflowStep) bool { return st.ID == id })
}

// Get returns a copy of the step with id.
func (s *Sequence) Get(id uuid.UUID) (types.WorkflowStep, bool) {
	i := s.IndexOf(id)
	if i < 0 {
		return types.WorkflowStep{}, false
	}
	return s.withLinks(i), true
}

// Prev returns the predecessor of id, if any.
func (s *Sequence) Prev(id uuid.UUID) (types.WorkflowStep, bool) {
	i := s.IndexOf(id)
	if i <= 0 {
		return types.WorkflowStep{}, false
	}
	return s.withLinks(i - 1), true
}

// Next returns the successor of id, if any.
func (s *Sequence) Next(id uuid.UUID) (types.WorkflowStep, bool) {
	i := s.IndexOf(id)
	if i < 0 || i == len(s.steps)-1 {
		return types.WorkflowStep{}, false
	}
	return s.withLinks(i + 1), true
}

// Steps returns the ordered steps with PrevStepID and NextStepID filled in.
func (s *Sequence) Steps() []types.WorkflowStep {
	out := make([]types.WorkflowStep, len(s.steps))
	for i := range s.steps {
		out[i] = s.withLinks(i)
	}
	return out
}

func (s *Sequence) withLinks(i int) types.WorkflowStep {
	st := s.steps[i]
	st.PrevStepID, st.NextStepID = nil, nil
	if i > 0 {
		id := s.steps[i-1].ID
		st.PrevStepID = &id
	}
	if i < len(s.steps)-1 {
		id := s.steps[i+1].ID
		st.NextStepID = &id
	}
	return st
}

// Insert places step at index (clamped to [0, Len]) and renumbers. It
// returns every step whose SortOrder must be persisted, including the new one.
func (s *Sequence) Insert(step types.WorkflowStep, index int) []types.WorkflowStep {
	index = max(0, min(index, len(s.steps)))
	// Force the new step into the changed set.
	step.SortOrder = -1
	s.steps = slices.Insert(s.steps, index, step)
	return s.renumber()
}

// Append places step at the end of the chain.
func (s *Sequence) Append(step types.WorkflowStep) []types.WorkflowStep {
	return s.Insert(step, len(s.steps))
}

// Remove deletes id and renumbers the remaining steps, returning those
// whose SortOrder changed.
func (s *Sequence) Remove(id uuid.UUID) ([]types.WorkflowStep, error) {
	i := s.IndexOf(id)
	if i < 0 {
		return nil, ErrStepNotFound
	}
	s.steps = slices.Delete(s.steps, i, i+1)
	return s.renumber(), nil
}

// Move relocates id to index (clamped) and returns the steps whose
// SortOrder changed.
func (s *Sequence) Move(id uuid.UUID, index int) ([]types.WorkflowStep, error) {
	i := s.IndexOf(id)
	if i < 0 {
		return nil, ErrStepNotFound
	}
	step := s.steps[i]
	s.steps = slices.Delete(s.steps, i, i+1)
	index = max(0, min(index, len(s.steps)))
	s.steps = slices.Insert(s.steps, index, step)
	return s.renumber(), nil
}

// renumber assigns dense SortOrder values 0..n-1.
func (s *Sequence) renumber() []types.WorkflowStep {
	var changed []types.WorkflowStep
	for i := range s.steps {
		if s.steps[i].SortOrder != i {
			s.steps[i].SortOrder = i
			changed = append(changed, s.withLinks(i))
		}
	}
	return changed
}
