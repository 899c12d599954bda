// Package storage persists task lists as JSON files with a one-generation
// backup, and handles export and import.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/nibzard/taskman/internal/task"
)

// Default locations, relative to the working directory.
const (
	DefaultTasksFile  = "tasks.json"
	DefaultBackupFile = "tasks_backup.json"
	DefaultExportFile = "exports/exported_tasks.json"
)

// DefaultDirs are created on first load.
var DefaultDirs = []string{"exports", "docs"}

// FileHandler loads and saves the task list.
type FileHandler struct {
	path       string
	backupPath string
	dirs       []string
	logger     *log.Logger
}

// Option configures a FileHandler.
type Option func(*FileHandler)

// WithPath sets the primary task file.
func WithPath(path string) Option {
	return func(h *FileHandler) {
		h.path = path
	}
}

// WithBackupPath sets the backup file.
func WithBackupPath(path string) Option {
	return func(h *FileHandler) {
		h.backupPath = path
	}
}

// WithDirs sets the directories ensured on load.
func WithDirs(dirs ...string) Option {
	return func(h *FileHandler) {
		h.dirs = dirs
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(h *FileHandler) {
		h.logger = logger
	}
}

// New returns a FileHandler using the default locations unless overridden.
func New(opts ...Option) *FileHandler {
	h := &FileHandler{
		path:       DefaultTasksFile,
		backupPath: DefaultBackupFile,
		dirs:       DefaultDirs,
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Path returns the primary task file path.
func (h *FileHandler) Path() string { return h.path }

// BackupPath returns the backup file path.
func (h *FileHandler) BackupPath() string { return h.backupPath }

// LoadTasks returns the persisted tasks. A missing primary file is created
// empty. If the primary cannot be read or decoded the backup is used, and if
// that fails too an empty list is returned.
func (h *FileHandler) LoadTasks() []*task.Task {
	tasks, err := h.loadPrimary()
	if err == nil {
		return tasks
	}
	h.logger.Error("Error loading tasks", "path", h.path, "err", err)

	tasks, err = h.readTasks(h.backupPath)
	if err != nil {
		h.logger.Warn("No backup available, starting with empty task list", "path", h.backupPath, "err", err)
		return []*task.Task{}
	}
	h.logger.Info("Loaded from backup file", "path", h.backupPath, "tasks", len(tasks))
	return tasks
}

func (h *FileHandler) loadPrimary() ([]*task.Task, error) {
	if err := h.ensureDirectories(); err != nil {
		return nil, err
	}
	if err := h.ensureFileExists(); err != nil {
		return nil, err
	}
	return h.readTasks(h.path)
}

func (h *FileHandler) ensureDirectories() error {
	for _, dir := range h.dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

func (h *FileHandler) ensureFileExists() error {
	if _, err := os.Stat(h.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat task file: %w", err)
	}
	return writeFile(h.path, []byte("[]\n"))
}

// SaveTasks copies the current primary file to the backup path, then
// overwrites the primary with tasks. The error is also logged.
func (h *FileHandler) SaveTasks(tasks []*task.Task) error {
	h.createBackup()

	data, err := encode(tasks, formatJSON)
	if err != nil {
		h.logger.Error("Error saving tasks", "err", err)
		return err
	}
	if err := writeFile(h.path, data); err != nil {
		h.logger.Error("Error saving tasks", "path", h.path, "err", err)
		return err
	}
	return nil
}

// createBackup is best effort: a missing primary file means there is nothing
// to back up yet.
func (h *FileHandler) createBackup() {
	if h.backupPath == "" {
		return
	}
	data, err := os.ReadFile(h.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			h.logger.Warn("Skipping backup", "path", h.path, "err", err)
		}
		return
	}
	if err := writeFile(h.backupPath, data); err != nil {
		h.logger.Warn("Could not write backup", "path", h.backupPath, "err", err)
	}
}

// ExportTasks writes tasks to path, creating its directory. Paths ending in
// .yaml or .yml are written as YAML, everything else as JSON.
func (h *FileHandler) ExportTasks(tasks []*task.Task, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		err = fmt.Errorf("create export directory: %w", err)
		h.logger.Error("Error exporting tasks", "path", path, "err", err)
		return err
	}
	data, err := encode(tasks, formatFor(path))
	if err != nil {
		h.logger.Error("Error exporting tasks", "path", path, "err", err)
		return err
	}
	if err := writeFile(path, data); err != nil {
		h.logger.Error("Error exporting tasks", "path", path, "err", err)
		return err
	}
	return nil
}

// ImportTasks reads tasks from path. On any failure it returns nil and the
// error, which is also logged.
func (h *FileHandler) ImportTasks(path string) ([]*task.Task, error) {
	tasks, err := h.readTasks(path)
	if err != nil {
		h.logger.Error("Error importing tasks", "path", path, "err", err)
		return nil, err
	}
	return tasks, nil
}

// Check reads path and reports whether it is a valid task file.
func (h *FileHandler) Check(path string) (int, error) {
	tasks, err := h.readTasks(path)
	if err != nil {
		return 0, err
	}
	return len(tasks), nil
}

func (h *FileHandler) readTasks(path string) ([]*task.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task file: %w", err)
	}
	return decode(data, formatFor(path))
}

type format int

const (
	formatJSON format = iota
	formatYAML
)

func formatFor(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	default:
		return formatJSON
	}
}

func encode(tasks []*task.Task, f format) ([]byte, error) {
	if tasks == nil {
		tasks = []*task.Task{}
	}
	switch f {
	case formatYAML:
		data, err := yaml.Marshal(tasks)
		if err != nil {
			return nil, fmt.Errorf("marshal tasks: %w", err)
		}
		return data, nil
	default:
		data, err := json.MarshalIndent(tasks, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal tasks: %w", err)
		}
		return append(data, '\n'), nil
	}
}

func decode(data []byte, f format) ([]*task.Task, error) {
	var doc any
	switch f {
	case formatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse task file: %w", err)
		}
		doc = normalizeYAML(doc)
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse task file: %w", err)
		}
	}

	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	items := doc.([]any)
	tasks := make([]*task.Task, 0, len(items))
	for i, item := range items {
		m, _ := item.(map[string]any)
		t, err := task.FromMap(m)
		if err != nil {
			return nil, &FormatError{Path: fmt.Sprintf("[%d]", i), Err: err}
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// normalizeYAML converts resolved YAML timestamps back to strings so the
// document has the same shape as decoded JSON.
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case []any:
		for i := range val {
			val[i] = normalizeYAML(val[i])
		}
		return val
	case map[string]any:
		for k, item := range val {
			val[k] = normalizeYAML(item)
		}
		return val
	case time.Time:
		return task.FormatTime(val)
	default:
		return v
	}
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
