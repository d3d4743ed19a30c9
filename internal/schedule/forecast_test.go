package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/panel-peace/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func forecastProject(due time.Time) *types.Project {
	return &types.Project{
		ID:      uuid.New(),
		Status:  types.ProjectStatusInProgress,
		DueDate: &due,
		Metrics: types.ProductionMetrics{
			InteriorPages:    22,
			PencilsPerWeek:   5.5,
			InksPerWeek:      22,
			BatchSize:        11,
			ApprovalLeadDays: 2,
		},
	}
}

func TestProjectForecast_SingleStage(t *testing.T) {
	p := forecastProject(testNow.AddDate(0, 0, 10))
	steps := []types.WorkflowStep{{StepType: types.StepTypePencils, Progress: 50}}

	f := ProjectForecast(p, steps, testNow)
	assert.Equal(t, 11, f.RemainingPages[types.StepTypePencils])
	assert.Equal(t, types.StepTypePencils, f.Bottleneck)
	assert.InDelta(t, 2.0, f.WeeksRemaining, 0.0001)
	require.NotNil(t, f.ProjectedFinish)
	assert.Equal(t, testNow.AddDate(0, 0, 16), *f.ProjectedFinish)
	require.NotNil(t, f.SlackDays)
	assert.Equal(t, -6, *f.SlackDays)
	assert.True(t, f.AtRisk)
}

func TestProjectForecast_BatchFill(t *testing.T) {
	p := forecastProject(testNow.AddDate(0, 1, 0))
	steps := []types.WorkflowStep{
		{StepType: types.StepTypePencils, Progress: 50},
		{StepType: types.StepTypeInks, Progress: 0},
	}

	f := ProjectForecast(p, steps, testNow)
	assert.Equal(t, types.StepTypePencils, f.Bottleneck)
	assert.InDelta(t, 2.5, f.WeeksRemaining, 0.0001)
	assert.False(t, f.AtRisk)
}

func TestProjectForecast_MissingThroughput(t *testing.T) {
	p := forecastProject(testNow.AddDate(0, 1, 0))
	steps := []types.WorkflowStep{{StepType: types.StepTypeColors, Progress: 10}}

	f := ProjectForecast(p, steps, testNow)
	assert.Nil(t, f.ProjectedFinish)
	assert.Contains(t, f.Reason, "colors")
}

func TestProjectForecast_NoRemainingWork(t *testing.T) {
	p := forecastProject(testNow.AddDate(0, 0, 1))
	steps := []types.WorkflowStep{{StepType: types.StepTypePencils, Progress: 100}}

	f := ProjectForecast(p, steps, testNow)
	assert.Zero(t, f.WeeksRemaining)
	require.NotNil(t, f.ProjectedFinish)
	assert.Equal(t, testNow.AddDate(0, 0, 2), *f.ProjectedFinish)
	assert.True(t, f.AtRisk)
}

func TestProjectForecast_Guards(t *testing.T) {
	assert.Equal(t, "project not found", ProjectForecast(nil, nil, testNow).Reason)

	p := forecastProject(testNow)
	p.Status = types.ProjectStatusCompleted
	f := ProjectForecast(p, nil, testNow)
	assert.False(t, f.AtRisk)
	assert.Equal(t, "project completed", f.Reason)

	p = forecastProject(testNow)
	p.Metrics.InteriorPages = 0
	assert.Equal(t, "interior page count not set", ProjectForecast(p, nil, testNow).Reason)
}
