// Package task defines the task entity and its work/personal variants.
package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Priority represents a task priority.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Rank returns the ordinal used for sorting: High=3, Medium=2, Low=1.
// Unknown values rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Valid reports whether p is one of the three known priorities.
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// ParsePriority converts s to a Priority. Matching is exact.
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.Valid() {
		return "", &ValidationError{Errors: []string{MsgInvalidPriority}}
	}
	return p, nil
}

// Kind tags the task variant.
type Kind string

const (
	KindRegular  Kind = "regular"
	KindWork     Kind = "work"
	KindPersonal Kind = "personal"
)

// ParseKind maps a case-insensitive selector to a Kind. Anything that is not
// "work" or "personal" is a regular task.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(KindWork):
		return KindWork
	case string(KindPersonal):
		return KindPersonal
	default:
		return KindRegular
	}
}

// Default field values.
const (
	DefaultCategory  = "General"
	DefaultProject   = "General"
	CategoryWork     = "Work"
	CategoryPersonal = "Personal"
)

// Validation messages shared with the validator package.
const (
	MsgTitleRequired   = "Title is required"
	MsgInvalidPriority = "Priority must be High, Medium, or Low"
	MsgInvalidDueDate  = "Invalid due date format"
)

// ValidationError carries every violation found for a task.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Errors, ", ")
}

// Task is a single to-do item. Fields are only reachable through the
// accessors and validated setters below.
type Task struct {
	id          string
	title       string
	description string
	priority    Priority
	dueDate     *time.Time
	category    string
	completed   bool
	createdAt   time.Time

	kind     Kind
	project  string
	location *string
}

// Option configures a task at construction.
type Option func(*Task)

// WithDescription sets the description.
func WithDescription(description string) Option {
	return func(t *Task) {
		t.description = description
	}
}

// WithPriority sets the priority. It is validated by New.
func WithPriority(p Priority) Option {
	return func(t *Task) {
		t.priority = p
	}
}

// WithDueDate sets the due date. A nil date leaves the task without one.
func WithDueDate(due *time.Time) Option {
	return func(t *Task) {
		t.dueDate = normalizeTimePtr(due)
	}
}

// WithCategory sets the category of a regular task.
func WithCategory(category string) Option {
	return func(t *Task) {
		t.category = category
	}
}

// AsWork makes the task a work task in the given project.
func AsWork(project string) Option {
	return func(t *Task) {
		t.kind = KindWork
		t.project = project
	}
}

// AsPersonal makes the task a personal task with an optional location.
func AsPersonal(location *string) Option {
	return func(t *Task) {
		t.kind = KindPersonal
		t.location = cloneString(location)
	}
}

// New creates a task with a fresh identifier and creation time.
func New(title string, opts ...Option) (*Task, error) {
	t := &Task{
		id:        newID(),
		priority:  PriorityMedium,
		category:  DefaultCategory,
		createdAt: now(),
		kind:      KindRegular,
	}
	for _, opt := range opts {
		opt(t)
	}

	var errs []string
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		errs = append(errs, MsgTitleRequired)
	}
	if t.priority == "" {
		t.priority = PriorityMedium
	}
	if !t.priority.Valid() {
		errs = append(errs, MsgInvalidPriority)
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	t.title = trimmed

	switch t.kind {
	case KindWork:
		t.category = CategoryWork
		if t.project == "" {
			t.project = DefaultProject
		}
	case KindPersonal:
		t.category = CategoryPersonal
	default:
		if t.category == "" {
			t.category = DefaultCategory
		}
	}
	return t, nil
}

func (t *Task) ID() string           { return t.id }
func (t *Task) Title() string        { return t.title }
func (t *Task) Description() string  { return t.description }
func (t *Task) Priority() Priority   { return t.priority }
func (t *Task) Category() string     { return t.category }
func (t *Task) Completed() bool      { return t.completed }
func (t *Task) CreatedAt() time.Time { return t.createdAt }
func (t *Task) Kind() Kind           { return t.kind }

// Project returns the project of a work task, or "" for other kinds.
func (t *Task) Project() string { return t.project }

// DueDate returns a copy of the due date, or nil.
func (t *Task) DueDate() *time.Time {
	if t.dueDate == nil {
		return nil
	}
	d := *t.dueDate
	return &d
}

// Location returns the location of a personal task, or nil.
func (t *Task) Location() *string { return cloneString(t.location) }

// SetTitle replaces the title. Blank titles are rejected.
func (t *Task) SetTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return &ValidationError{Errors: []string{MsgTitleRequired}}
	}
	t.title = trimmed
	return nil
}

// SetPriority replaces the priority.
func (t *Task) SetPriority(p Priority) error {
	if !p.Valid() {
		return &ValidationError{Errors: []string{MsgInvalidPriority}}
	}
	t.priority = p
	return nil
}

// SetDescription replaces the description.
func (t *Task) SetDescription(description string) {
	t.description = description
}

// SetDueDate replaces the due date; nil clears it.
func (t *Task) SetDueDate(due *time.Time) {
	t.dueDate = normalizeTimePtr(due)
}

// SetCategory replaces the category of a regular task. An empty category
// resets to DefaultCategory. Work and personal tasks keep their fixed category.
func (t *Task) SetCategory(category string) error {
	if t.kind != KindRegular {
		if category == "" || category == t.category {
			return nil
		}
		return &ValidationError{Errors: []string{fmt.Sprintf("Category is fixed to %s for %s tasks", t.category, t.kind)}}
	}
	if category == "" {
		category = DefaultCategory
	}
	t.category = category
	return nil
}

// SetProject replaces the project of a work task.
func (t *Task) SetProject(project string) error {
	if t.kind != KindWork {
		return &ValidationError{Errors: []string{"Project can only be set on work tasks"}}
	}
	if project == "" {
		project = DefaultProject
	}
	t.project = project
	return nil
}

// SetLocation replaces the location of a personal task; nil clears it.
func (t *Task) SetLocation(location *string) error {
	if t.kind != KindPersonal {
		return &ValidationError{Errors: []string{"Location can only be set on personal tasks"}}
	}
	t.location = cloneString(location)
	return nil
}

// Duplicate returns a copy of t under a fresh identifier. The creation time
// and every other field are kept.
func (t *Task) Duplicate() *Task {
	c := *t
	c.id = newID()
	c.dueDate = normalizeTimePtr(t.dueDate)
	c.location = cloneString(t.location)
	return &c
}

// MarkComplete marks the task done.
func (t *Task) MarkComplete() { t.completed = true }

// MarkIncomplete marks the task pending.
func (t *Task) MarkIncomplete() { t.completed = false }

// IsOverdue reports whether the task is past due and not completed.
func (t *Task) IsOverdue() bool {
	return t.IsOverdueAt(time.Now())
}

// IsOverdueAt is IsOverdue evaluated at the given instant.
func (t *Task) IsOverdueAt(at time.Time) bool {
	if t.dueDate == nil || t.completed {
		return false
	}
	return t.dueDate.Before(at)
}

// DaysUntilDue returns the signed number of days until the due date, rounded
// up. The bool is false when the task has no due date.
func (t *Task) DaysUntilDue() (int, bool) {
	return t.DaysUntilDueAt(time.Now())
}

// DaysUntilDueAt is DaysUntilDue evaluated at the given instant.
func (t *Task) DaysUntilDueAt(at time.Time) (int, bool) {
	if t.dueDate == nil {
		return 0, false
	}
	const day = 24 * time.Hour
	diff := t.dueDate.Sub(at)
	days := diff / day
	if diff%day > 0 {
		days++
	}
	return int(days), true
}

// String renders the task on one line:
//
//	[○] title | priority | category | Due: 2024-01-02 (OVERDUE) | Project: p
func (t *Task) String() string {
	status := "○"
	if t.completed {
		status = "✓"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s | %s | %s", status, t.title, t.priority, t.category)
	if t.dueDate != nil {
		fmt.Fprintf(&b, " | Due: %s", t.dueDate.Format(time.DateOnly))
		if t.IsOverdue() {
			b.WriteString(" (OVERDUE)")
		}
	}
	switch t.kind {
	case KindWork:
		fmt.Fprintf(&b, " | Project: %s", t.project)
	case KindPersonal:
		if t.location != nil && *t.location != "" {
			fmt.Fprintf(&b, " | Location: %s", *t.location)
		}
	}
	return b.String()
}

// now and newID are indirections for tests.
var (
	now   = func() time.Time { return normalizeTime(time.Now()) }
	newID = uuid.NewString
)

// normalizeTime drops the monotonic reading and sub-millisecond precision so
// the value survives an ISO-8601 round trip unchanged.
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

func normalizeTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	n := normalizeTime(*t)
	return &n
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
