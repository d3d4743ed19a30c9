package workflow

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/panel-peace/internal/progress"
	"github.com/jonathan/panel-peace/internal/types"
)

// transitions lists the statuses reachable from each status. The main chain
// runs not_started -> in_progress -> review -> completed and may skip ahead;
// delayed is entered from in_progress or review and left back into the chain.
var transitions = map[string][]string{
	types.StepStatusNotStarted: {types.StepStatusInProgress, types.StepStatusReview, types.StepStatusCompleted},
	types.StepStatusInProgress: {types.StepStatusReview, types.StepStatusCompleted, types.StepStatusDelayed},
	types.StepStatusReview:     {types.StepStatusInProgress, types.StepStatusCompleted, types.StepStatusDelayed},
	types.StepStatusDelayed:    {types.StepStatusInProgress, types.StepStatusReview, types.StepStatusCompleted},
	types.StepStatusCompleted:  {types.StepStatusReview},
}

// ValidStatus reports whether status is a known step status.
func ValidStatus(status string) bool {
	_, ok := transitions[status]
	return ok
}

// CanTransition reports whether a step may move from one status to another.
// Staying in the same valid status is always allowed.
func CanTransition(from, to string) bool {
	if !ValidStatus(to) {
		return false
	}
	if from == to {
		return true
	}
	return slices.Contains(transitions[from], to)
}

// TransitionError describes a rejected status change.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	if !ValidStatus(e.To) {
		return fmt.Sprintf("unknown step status: %q", e.To)
	}
	return fmt.Sprintf("cannot move step from %s to %s", e.From, e.To)
}

// Transition sets step.Status to status. Progress is deliberately left alone:
// completing a step does not force its progress to 100.
func Transition(step *types.WorkflowStep, status string, now time.Time) error {
	if !CanTransition(step.Status, status) {
		return &TransitionError{From: step.Status, To: status}
	}
	if step.Status == status {
		return nil
	}
	step.Status = status
	if status == types.StepStatusCompleted {
		step.CompletedAt = &now
	} else {
		step.CompletedAt = nil
	}
	step.UpdatedAt = now
	return nil
}

// ProgressError describes a progress value outside [0,100].
type ProgressError struct {
	Value int
}

func (e *ProgressError) Error() string {
	return fmt.Sprintf("progress must be between 0 and 100, got %d", e.Value)
}

// SetPercent records a percent directly. Binary steps collapse any positive
// value to 100.
func SetPercent(step *types.WorkflowStep, percent int) error {
	if percent < 0 || percent > 100 {
		return &ProgressError{Value: percent}
	}
	step.Progress = progress.NormalizeStep(step.StepType, percent)
	return nil
}

// SetCount records progress as completed units out of total.
func SetCount(step *types.WorkflowStep, count, total int) error {
	if count < 0 {
		return &ProgressError{Value: count}
	}
	step.Progress = progress.StepPercent(step.StepType, count, total)
	return nil
}

// RatingError is returned when ratings are recorded on an unfinished step.
type RatingError struct {
	Status string
}

func (e *RatingError) Error() string {
	return fmt.Sprintf("ratings can only be recorded on completed steps (status: %s)", e.Status)
}

// Rate records quality ratings on a completed step.
func Rate(step *types.WorkflowStep, ratings types.QualityRatings) error {
	if step.Status != types.StepStatusCompleted {
		return &RatingError{Status: step.Status}
	}
	for _, score := range ratings.Scores() {
		if score < 1 || score > 10 {
			return fmt.Errorf("rating out of range: %d", score)
		}
	}
	step.Ratings = &ratings
	return nil
}

var defaultTitles = map[string]string{
	types.StepTypePlotDevelopment: "Plot Development",
	types.StepTypeScript:          "Script",
	types.StepTypePencils:         "Pencils",
	types.StepTypeInks:            "Inks",
	types.StepTypeColors:          "Colors",
	types.StepTypeLetters:         "Letters",
	types.StepTypeCover:           "Cover",
}

// DefaultChain is the step template applied to a new project.
var DefaultChain = []string{
	types.StepTypePlotDevelopment,
	types.StepTypeScript,
	types.StepTypePencils,
	types.StepTypeInks,
	types.StepTypeColors,
	types.StepTypeLetters,
}

// Title returns the default display title of a step type.
func Title(stepType string) string {
	if t, ok := defaultTitles[stepType]; ok {
		return t
	}
	return stepType
}

// NewStep builds an unsaved, not-started step.
func NewStep(projectID uuid.UUID, stepType, title string, now time.Time) types.WorkflowStep {
	if title == "" {
		title = Title(stepType)
	}
	return types.WorkflowStep{
		ID:        uuid.New(),
		ProjectID: projectID,
		StepType:  stepType,
		Title:     title,
		Status:    types.StepStatusNotStarted,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DefaultSteps returns the default chain for a project, already ordered.
func DefaultSteps(projectID uuid.UUID, now time.Time) []types.WorkflowStep {
	seq := NewSequence(nil)
	for _, stepType := range DefaultChain {
		seq.Append(NewStep(projectID, stepType, "", now))
	}
	return seq.Steps()
}
