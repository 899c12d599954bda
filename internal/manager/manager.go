// Package manager owns the live task collection and exposes the operations
// the command line and terminal UI are built on.
package manager

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskman/internal/task"
	"github.com/nibzard/taskman/internal/validator"
)

// DefaultDueSoonDays is the window used by DueSoon and Stats when no other
// value is configured.
const DefaultDueSoonDays = 7

// ErrTaskNotFound is returned when an identifier matches no task.
var ErrTaskNotFound = errors.New("task not found")

// ErrAmbiguousID is returned when an id prefix matches more than one task.
var ErrAmbiguousID = errors.New("ambiguous task id")

// Store persists the task collection. *storage.FileHandler implements it.
type Store interface {
	LoadTasks() []*task.Task
	SaveTasks(tasks []*task.Task) error
	ExportTasks(tasks []*task.Task, path string) error
	ImportTasks(path string) ([]*task.Task, error)
}

// Manager holds the ordered task collection. It is not safe for concurrent
// use.
type Manager struct {
	store       Store
	tasks       []*task.Task
	logger      *log.Logger
	clock       func() time.Time
	dueSoonDays int
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithClock overrides the time source used by date-based queries.
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) {
		m.clock = clock
	}
}

// WithDueSoonDays sets the window used by Stats.
func WithDueSoonDays(days int) Option {
	return func(m *Manager) {
		if days >= 0 {
			m.dueSoonDays = days
		}
	}
}

// New returns an empty manager backed by store. Call Initialize to load.
func New(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:       store,
		tasks:       []*task.Task{},
		logger:      log.Default(),
		clock:       time.Now,
		dueSoonDays: DefaultDueSoonDays,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Initialize replaces the in-memory collection with the persisted one and
// returns the number of tasks loaded.
func (m *Manager) Initialize() int {
	m.tasks = m.store.LoadTasks()
	if m.tasks == nil {
		m.tasks = []*task.Task{}
	}
	m.logger.Debug("Loaded tasks", "count", len(m.tasks))
	return len(m.tasks)
}

// NewTask holds the raw input for AddTask.
type NewTask struct {
	Title       string
	Description string
	Priority    string
	DueDate     string
	Category    string
	// Type selects the variant: "work", "personal", or anything else for a
	// regular task. Case-insensitive.
	Type     string
	Project  string
	Location *string
}

// AddTask validates input, appends the new task and persists the collection.
func (m *Manager) AddTask(in NewTask) (*task.Task, error) {
	result := validator.ValidateTaskData(validator.TaskData{
		Title:    &in.Title,
		Priority: &in.Priority,
		DueDate:  &in.DueDate,
	})
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to add task: %w", err)
	}

	opts := []task.Option{
		task.WithDescription(in.Description),
		task.WithPriority(task.Priority(in.Priority)),
	}
	if in.DueDate != "" {
		due, err := task.ParseDate(in.DueDate)
		if err != nil {
			return nil, fmt.Errorf("failed to add task: %w", err)
		}
		opts = append(opts, task.WithDueDate(&due))
	}
	switch task.ParseKind(in.Type) {
	case task.KindWork:
		opts = append(opts, task.AsWork(in.Project))
	case task.KindPersonal:
		opts = append(opts, task.AsPersonal(in.Location))
	default:
		opts = append(opts, task.WithCategory(in.Category))
	}

	t, err := task.New(in.Title, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to add task: %w", err)
	}

	m.tasks = append(m.tasks, t)
	m.Save()
	m.logger.Debug("Added task", "id", t.ID(), "kind", t.Kind())
	return t, nil
}

// Update lists the fields UpdateTask may change. Nil fields are left alone.
// An empty DueDate clears the due date; an empty Location clears the location.
type Update struct {
	Title       *string
	Description *string
	Priority    *string
	DueDate     *string
	Category    *string
	Project     *string
	Location    *string
}

// IsZero reports whether u changes nothing.
func (u Update) IsZero() bool {
	return u == Update{}
}

// UpdateTask applies u to the task with the given id and persists. Either
// every field in u is applied or none is.
func (m *Manager) UpdateTask(id string, u Update) (*task.Task, error) {
	t := m.FindTaskByID(id)
	if t == nil {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	result := validator.ValidateUpdate(validator.TaskData{
		Title:    u.Title,
		Priority: u.Priority,
		DueDate:  u.DueDate,
	})
	errs := result.Errors
	if u.Category != nil && t.Kind() != task.KindRegular && *u.Category != "" && *u.Category != t.Category() {
		errs = append(errs, fmt.Sprintf("Category is fixed to %s for %s tasks", t.Category(), t.Kind()))
	}
	if u.Project != nil && t.Kind() != task.KindWork {
		errs = append(errs, "Project can only be set on work tasks")
	}
	if u.Location != nil && t.Kind() != task.KindPersonal {
		errs = append(errs, "Location can only be set on personal tasks")
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to update task: %w", &task.ValidationError{Errors: errs})
	}

	var due *time.Time
	if u.DueDate != nil && *u.DueDate != "" {
		parsed, err := task.ParseDate(*u.DueDate)
		if err != nil {
			return nil, fmt.Errorf("failed to update task: %w", err)
		}
		due = &parsed
	}

	// Everything below was validated above, so the setters cannot fail.
	if u.Title != nil {
		_ = t.SetTitle(*u.Title)
	}
	if u.Description != nil {
		t.SetDescription(*u.Description)
	}
	if u.Priority != nil && *u.Priority != "" {
		_ = t.SetPriority(task.Priority(*u.Priority))
	}
	if u.DueDate != nil {
		t.SetDueDate(due)
	}
	if u.Category != nil {
		_ = t.SetCategory(*u.Category)
	}
	if u.Project != nil {
		_ = t.SetProject(*u.Project)
	}
	if u.Location != nil {
		loc := u.Location
		if *loc == "" {
			loc = nil
		}
		_ = t.SetLocation(loc)
	}

	m.Save()
	return t, nil
}

// DeleteTask removes the task with the given id, persists, and returns it.
func (m *Manager) DeleteTask(id string) (*task.Task, error) {
	idx := m.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	deleted := m.tasks[idx]
	m.tasks = append(m.tasks[:idx:idx], m.tasks[idx+1:]...)
	m.Save()
	return deleted, nil
}

// ToggleCompletion flips the completion flag of a task and persists.
func (m *Manager) ToggleCompletion(id string) (*task.Task, error) {
	t := m.FindTaskByID(id)
	if t == nil {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if t.Completed() {
		t.MarkIncomplete()
	} else {
		t.MarkComplete()
	}
	m.Save()
	return t, nil
}

// FindTaskByID returns the task with the given id, or nil.
func (m *Manager) FindTaskByID(id string) *task.Task {
	if idx := m.indexOf(id); idx >= 0 {
		return m.tasks[idx]
	}
	return nil
}

// ResolveID returns the full id of the task whose id equals ref or, failing
// that, is the only one starting with ref.
func (m *Manager) ResolveID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: empty id", ErrTaskNotFound)
	}
	if t := m.FindTaskByID(ref); t != nil {
		return t.ID(), nil
	}
	var match string
	for _, t := range m.tasks {
		if !strings.HasPrefix(t.ID(), ref) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("%w: %s", ErrAmbiguousID, ref)
		}
		match = t.ID()
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", ErrTaskNotFound, ref)
	}
	return match, nil
}

func (m *Manager) indexOf(id string) int {
	if !validator.ValidateID(id) {
		return -1
	}
	for i, t := range m.tasks {
		if t.ID() == id {
			return i
		}
	}
	return -1
}

// AllTasks returns a copy of the collection in insertion order.
func (m *Manager) AllTasks() []*task.Task {
	out := make([]*task.Task, len(m.tasks))
	copy(out, m.tasks)
	return out
}

// Len returns the number of tasks.
func (m *Manager) Len() int {
	return len(m.tasks)
}

// Save persists the collection. A false result has already been logged.
func (m *Manager) Save() bool {
	if err := m.store.SaveTasks(m.tasks); err != nil {
		m.logger.Warn("Changes were not saved", "err", err)
		return false
	}
	return true
}

// ExportTasks writes the collection to path.
func (m *Manager) ExportTasks(path string) bool {
	return m.store.ExportTasks(m.tasks, path) == nil
}

// ImportTasks appends the tasks found at path, persists, and returns how many
// were added. An unreadable or malformed source imports nothing. Imported
// tasks whose id is already taken get a fresh one.
func (m *Manager) ImportTasks(path string) int {
	imported, err := m.store.ImportTasks(path)
	if err != nil || imported == nil {
		return 0
	}
	seen := make(map[string]bool, len(m.tasks)+len(imported))
	for _, t := range m.tasks {
		seen[t.ID()] = true
	}
	for _, t := range imported {
		if seen[t.ID()] {
			t = t.Duplicate()
		}
		seen[t.ID()] = true
		m.tasks = append(m.tasks, t)
	}
	m.Save()
	m.logger.Debug("Imported tasks", "path", path, "count", len(imported))
	return len(imported)
}

func (m *Manager) now() time.Time {
	return m.clock()
}
