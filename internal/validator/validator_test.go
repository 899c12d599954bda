package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nibzard/taskman/internal/task"
)

func str(s string) *string { return &s }

func TestValidateTaskData(t *testing.T) {
	tests := []struct {
		name string
		data TaskData
		want []string
	}{
		{"valid minimal", TaskData{Title: str("x")}, []string{}},
		{"valid full", TaskData{Title: str("x"), Priority: str("High"), DueDate: str("2024-01-01")}, []string{}},
		{"empty priority allowed", TaskData{Title: str("x"), Priority: str("")}, []string{}},
		{"missing title", TaskData{}, []string{task.MsgTitleRequired}},
		{"blank title", TaskData{Title: str("  ")}, []string{task.MsgTitleRequired}},
		{"bad priority", TaskData{Title: str("x"), Priority: str("Urgent")}, []string{task.MsgInvalidPriority}},
		{"priority is case sensitive", TaskData{Title: str("x"), Priority: str("high")}, []string{task.MsgInvalidPriority}},
		{"bad due date", TaskData{Title: str("x"), DueDate: str("someday")}, []string{task.MsgInvalidDueDate}},
		{
			"all errors in order",
			TaskData{Title: str(""), Priority: str("x"), DueDate: str("y")},
			[]string{task.MsgTitleRequired, task.MsgInvalidPriority, task.MsgInvalidDueDate},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateTaskData(tt.data)
			assert.Equal(t, len(tt.want) == 0, got.Valid)
			assert.Equal(t, tt.want, got.Errors)
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	assert.True(t, ValidateUpdate(TaskData{}).Valid)
	assert.True(t, ValidateUpdate(TaskData{Priority: str("Low")}).Valid)

	res := ValidateUpdate(TaskData{Title: str(" ")})
	assert.False(t, res.Valid)
	assert.Equal(t, []string{task.MsgTitleRequired}, res.Errors)

	res = ValidateUpdate(TaskData{DueDate: str("nope")})
	assert.Equal(t, []string{task.MsgInvalidDueDate}, res.Errors)
}

func TestResultErr(t *testing.T) {
	assert.NoError(t, Result{Valid: true}.Err())

	err := ValidateTaskData(TaskData{Priority: str("x")}).Err()
	require.Error(t, err)
	var ve *task.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Title is required, Priority must be High, Medium, or Low", err.Error())
}

func TestValidateID(t *testing.T) {
	assert.True(t, ValidateID("abc"))
	assert.False(t, ValidateID(""))
	assert.False(t, ValidateID(42))
	assert.False(t, ValidateID(nil))
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "scriptalert(1)/script", SanitizeInput("  <script>alert(1)</script> "))
	assert.Equal(t, "a & b \"c\"", SanitizeInput("a & b \"c\""))
	assert.Equal(t, "", SanitizeInput("<>"))
	assert.Equal(t, 42, SanitizeInput(42))
	assert.Equal(t, true, SanitizeInput(true))
}

type label string

func TestSanitizeInputNamedString(t *testing.T) {
	assert.Equal(t, label("b"), SanitizeInput(label(" <b> ")))
	assert.Equal(t, task.Priority("High"), SanitizeInput(task.Priority(" High ")))

	var v any = " <i>x</i> "
	assert.Equal(t, any("ix/i"), SanitizeInput(v))
}
