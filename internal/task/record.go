package task

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// TimeLayout is the ISO-8601 form used for every persisted timestamp.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Record is the persisted form shared by all task kinds.
type Record struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Priority    Priority `json:"priority" yaml:"priority"`
	DueDate     *string  `json:"dueDate" yaml:"dueDate"`
	Category    string   `json:"category" yaml:"category"`
	Completed   bool     `json:"completed" yaml:"completed"`
	CreatedAt   string   `json:"createdAt" yaml:"createdAt"`
}

// WorkRecord is the persisted form of a work task.
type WorkRecord struct {
	Record  `yaml:",inline"`
	Project string `json:"project" yaml:"project"`
}

// PersonalRecord is the persisted form of a personal task.
type PersonalRecord struct {
	Record   `yaml:",inline"`
	Location *string `json:"location" yaml:"location"`
}

// Record returns the persisted form of t: a Record, WorkRecord or
// PersonalRecord depending on its kind.
func (t *Task) Record() any {
	base := Record{
		ID:          t.id,
		Title:       t.title,
		Description: t.description,
		Priority:    t.priority,
		Category:    t.category,
		Completed:   t.completed,
		CreatedAt:   FormatTime(t.createdAt),
	}
	if t.dueDate != nil {
		due := FormatTime(*t.dueDate)
		base.DueDate = &due
	}
	switch t.kind {
	case KindWork:
		return WorkRecord{Record: base, Project: t.project}
	case KindPersonal:
		return PersonalRecord{Record: base, Location: cloneString(t.location)}
	default:
		return base
	}
}

// MarshalJSON implements json.Marshaler.
func (t *Task) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Record())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Task) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decode task: %w", err)
	}
	parsed, err := FromMap(m)
	if err != nil {
		return err
	}
	*t = *parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (t *Task) MarshalYAML() (interface{}, error) {
	return t.Record(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Task) UnmarshalYAML(value *yaml.Node) error {
	var m map[string]any
	if err := value.Decode(&m); err != nil {
		return fmt.Errorf("decode task: %w", err)
	}
	parsed, err := FromMap(m)
	if err != nil {
		return err
	}
	*t = *parsed
	return nil
}

// FromMap rebuilds a task from a decoded record. Identifier, completion flag
// and creation time are taken from the record; a missing id or createdAt is
// filled in. A "project" key makes a work task, a "location" key a personal
// task.
func FromMap(m map[string]any) (*Task, error) {
	if m == nil {
		return nil, fmt.Errorf("decode task: record is null")
	}

	title, err := stringField(m, "title")
	if err != nil {
		return nil, err
	}
	description, err := stringField(m, "description")
	if err != nil {
		return nil, err
	}
	priority, err := stringField(m, "priority")
	if err != nil {
		return nil, err
	}
	category, err := stringField(m, "category")
	if err != nil {
		return nil, err
	}
	due, err := timeField(m, "dueDate")
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithDescription(description),
		WithPriority(Priority(priority)),
		WithDueDate(due),
		WithCategory(category),
	}
	if _, ok := m["project"]; ok {
		project, err := stringField(m, "project")
		if err != nil {
			return nil, err
		}
		opts = append(opts, AsWork(project))
	} else if _, ok := m["location"]; ok {
		location, err := stringField(m, "location")
		if err != nil {
			return nil, err
		}
		var loc *string
		if m["location"] != nil {
			loc = &location
		}
		opts = append(opts, AsPersonal(loc))
	}

	t, err := New(title, opts...)
	if err != nil {
		return nil, err
	}

	id, err := stringField(m, "id")
	if err != nil {
		return nil, err
	}
	if id != "" {
		t.id = id
	}
	if v, ok := m["completed"]; ok && v != nil {
		completed, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("decode task: completed must be a boolean, got %T", v)
		}
		t.completed = completed
	}
	created, err := timeField(m, "createdAt")
	if err != nil {
		return nil, err
	}
	if created != nil {
		t.createdAt = normalizeTime(*created)
	}
	return t, nil
}

// FormatTime renders t in the persisted ISO-8601 layout, always in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

// ParseDate parses a due date or timestamp. Date-only values are midnight UTC.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return normalizeTime(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q: unrecognized format", s)
}

func stringField(m map[string]any, key string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("decode task: %s must be a string, got %T", key, v)
	}
	return s, nil
}

// timeField accepts strings and, for YAML input, already-resolved timestamps.
func timeField(m map[string]any, key string) (*time.Time, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch val := v.(type) {
	case string:
		if val == "" {
			return nil, nil
		}
		t, err := ParseDate(val)
		if err != nil {
			return nil, fmt.Errorf("decode task: %s: %w", key, err)
		}
		return &t, nil
	case time.Time:
		t := normalizeTime(val)
		return &t, nil
	default:
		return nil, fmt.Errorf("decode task: %s must be a date string, got %T", key, v)
	}
}
