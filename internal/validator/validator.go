// Package validator holds stateless checks run before a task is created or
// mutated.
package validator

import (
	"reflect"
	"strings"

	"github.com/nibzard/taskman/internal/task"
)

// TaskData holds raw field values from the caller. Nil means absent.
type TaskData struct {
	Title    *string
	Priority *string
	DueDate  *string
}

// Result contains validation results.
type Result struct {
	Valid  bool
	Errors []string
}

// Err returns nil for a valid result, otherwise a *task.ValidationError
// listing every violation in order.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &task.ValidationError{Errors: append([]string(nil), r.Errors...)}
}

// ValidateTaskData validates data for a new task. A missing title is an error.
func ValidateTaskData(data TaskData) Result {
	return validate(data, true)
}

// ValidateUpdate validates only the fields present in data.
func ValidateUpdate(data TaskData) Result {
	return validate(data, false)
}

func validate(data TaskData, requireTitle bool) Result {
	result := Result{Valid: true, Errors: make([]string, 0)}
	fail := func(msg string) {
		result.Valid = false
		result.Errors = append(result.Errors, msg)
	}

	if data.Title != nil || requireTitle {
		if data.Title == nil || strings.TrimSpace(*data.Title) == "" {
			fail(task.MsgTitleRequired)
		}
	}

	if data.Priority != nil && *data.Priority != "" {
		if _, err := task.ParsePriority(*data.Priority); err != nil {
			fail(task.MsgInvalidPriority)
		}
	}

	if data.DueDate != nil && *data.DueDate != "" {
		if _, err := task.ParseDate(*data.DueDate); err != nil {
			fail(task.MsgInvalidDueDate)
		}
	}

	return result
}

// ValidateID reports whether id is a non-empty string.
func ValidateID(id any) bool {
	s, ok := id.(string)
	return ok && s != ""
}

// SanitizeInput trims a string and strips '<' and '>'. It does not escape
// anything else. Named string types are sanitized too; values of other kinds
// are returned unchanged.
func SanitizeInput[T any](input T) T {
	v := reflect.ValueOf(input)
	if !v.IsValid() || v.Kind() != reflect.String {
		return input
	}
	cleaned := strings.NewReplacer("<", "", ">", "").Replace(strings.TrimSpace(v.String()))
	out := reflect.New(v.Type()).Elem()
	out.SetString(cleaned)
	return out.Interface().(T)
}
