package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestRequestValidation(t *testing.T) {
	validate := validator.New()
	due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		request any
		field   string // empty means valid
	}{
		{"register editor by default", CreateUserRequest{Name: "Ed", Email: "ed@studio.test", Password: "password123"}, ""},
		{"register talent", CreateUserRequest{Name: "Pen", Email: "pen@studio.test", Password: "password123", Role: UserRoleTalent}, ""},
		{"register unknown role", CreateUserRequest{Name: "X", Email: "x@studio.test", Password: "password123", Role: "owner"}, "Role"},
		{"register short password", CreateUserRequest{Name: "X", Email: "x@studio.test", Password: "short"}, "Password"},
		{"register bad email", CreateUserRequest{Name: "X", Email: "not-an-email", Password: "password123"}, "Email"},
		{"login missing password", LoginRequest{Email: "ed@studio.test"}, "Password"},
		{"new password too short", UpdatePasswordRequest{CurrentPassword: "password123", NewPassword: "1234567"}, "NewPassword"},

		{"project minimal", CreateProjectRequest{Title: "Night Owls #3"}, ""},
		{"project without title", CreateProjectRequest{}, "Title"},
		{"project unknown status", CreateProjectRequest{Title: "T", Status: "archived"}, "Status"},
		{"project progress over 100", UpdateProjectRequest{Progress: ptr(101)}, "Progress"},
		{"project empty title update", UpdateProjectRequest{Title: ptr("")}, "Title"},

		{"step append", CreateStepRequest{StepType: StepTypeInks}, ""},
		{"step negative position", CreateStepRequest{StepType: StepTypeInks, Position: ptr(-1)}, "Position"},
		{"step without type", CreateStepRequest{}, "StepType"},

		{"progress percent", UpdateProgressRequest{Percent: ptr(40)}, ""},
		{"progress percent over 100", UpdateProgressRequest{Percent: ptr(120)}, "Percent"},
		{"progress zero total", UpdateProgressRequest{Completed: ptr(3), Total: ptr(0)}, "Total"},
		{"progress negative count", UpdateProgressRequest{Completed: ptr(-2)}, "Completed"},

		{"ratings in range", QualityRatings{1, 10, 5, 5, 5, 7}, ""},
		{"ratings zero", QualityRatings{0, 10, 5, 5, 5, 7}, "Storytelling"},
		{"ratings over ten", QualityRatings{1, 10, 5, 5, 5, 11}, "Overall"},

		{"file link", CreateFileLinkRequest{Name: "p1.psd", URL: "https://files.test/p1.psd"}, ""},
		{"file link bad url", CreateFileLinkRequest{Name: "p1.psd", URL: "p1.psd"}, "URL"},
		{"file link bad category", CreateFileLinkRequest{Name: "p1", URL: "https://f.test/p1", Category: "audio"}, "Category"},

		{"feedback", CreateFeedbackRequest{Title: "Fix panel 3", Priority: PriorityHigh}, ""},
		{"feedback bad priority", CreateFeedbackRequest{Title: "Fix", Priority: "urgent"}, "Priority"},
		{"feedback bad status", UpdateFeedbackRequest{Status: ptr("done")}, "Status"},
		{"comment empty", CreateCommentRequest{}, "Body"},

		{"deadline", CreateDeadlineRequest{Title: "Inks due", DueDate: due}, ""},
		{"deadline without date", CreateDeadlineRequest{Title: "Inks due"}, "DueDate"},
		{"deadline bad status", UpdateDeadlineRequest{Status: ptr("late")}, "Status"},

		{"collaborator", AddCollaboratorRequest{UserID: uuid.New(), Role: "inker"}, ""},
		{"collaborator bad role", AddCollaboratorRequest{UserID: uuid.New(), Role: "editor"}, "Role"},
		{"editor without user", AddEditorRequest{AssignmentRole: "lead"}, "UserID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.request)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, tt.field, verrs[0].Field())
		})
	}
}

func TestLoginResponse_JSON(t *testing.T) {
	resp := LoginResponse{
		User:  &User{ID: uuid.New(), Name: "Ed", Email: "ed@studio.test", Role: UserRoleEditor, PasswordSet: true},
		Token: "tok",
	}
	b, err := json.Marshal(resp)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, "tok", raw["token"])
	user := raw["user"].(map[string]any)
	assert.Equal(t, "editor", user["role"])
	assert.NotContains(t, user, "password_hash")
	assert.NotContains(t, user, "phone")
}

func TestProductionMetrics_PagesPerWeek(t *testing.T) {
	m := ProductionMetrics{PencilsPerWeek: 5, InksPerWeek: 6, ColorsPerWeek: 7, LettersPerWeek: 20}
	assert.Equal(t, 5.0, m.PagesPerWeek(StepTypePencils))
	assert.Equal(t, 6.0, m.PagesPerWeek(StepTypeInks))
	assert.Equal(t, 7.0, m.PagesPerWeek(StepTypeColors))
	assert.Equal(t, 20.0, m.PagesPerWeek(StepTypeLetters))
	assert.Zero(t, m.PagesPerWeek(StepTypeScript))
}

func TestQualityRatings_Scores(t *testing.T) {
	q := QualityRatings{Storytelling: 1, Artwork: 2, Timeliness: 3, Communication: 4, Consistency: 5, Overall: 6}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, q.Scores())
}
