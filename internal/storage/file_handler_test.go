package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nibzard/taskman/internal/task"
)

func newHandler(t *testing.T) (*FileHandler, string) {
	t.Helper()
	dir := t.TempDir()
	h := New(
		WithPath(filepath.Join(dir, "tasks.json")),
		WithBackupPath(filepath.Join(dir, "tasks_backup.json")),
		WithDirs(filepath.Join(dir, "exports"), filepath.Join(dir, "docs")),
		WithLogger(log.New(io.Discard)),
	)
	return h, dir
}

func mustTask(t *testing.T, title string, opts ...task.Option) *task.Task {
	t.Helper()
	tk, err := task.New(title, opts...)
	require.NoError(t, err)
	return tk
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadCreatesMissingFile(t *testing.T) {
	h, dir := newHandler(t)

	tasks := h.LoadTasks()
	assert.Empty(t, tasks)
	assert.NotNil(t, tasks)

	data, err := os.ReadFile(h.Path())
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
	assert.DirExists(t, filepath.Join(dir, "exports"))
	assert.DirExists(t, filepath.Join(dir, "docs"))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	h, _ := newHandler(t)
	due := time.Date(2031, 7, 8, 9, 0, 0, 0, time.UTC)
	loc := "Gym"
	tasks := []*task.Task{
		mustTask(t, "Plain", task.WithDueDate(&due), task.WithCategory("Home")),
		mustTask(t, "Job", task.AsWork("Apollo"), task.WithPriority(task.PriorityHigh)),
		mustTask(t, "Lift", task.AsPersonal(&loc)),
	}
	tasks[1].MarkComplete()

	require.NoError(t, h.SaveTasks(tasks))

	data, err := os.ReadFile(h.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  {\n    \"id\": ")
	assert.Equal(t, byte('\n'), data[len(data)-1])

	loaded := h.LoadTasks()
	require.Len(t, loaded, 3)
	for i := range tasks {
		assert.Equal(t, tasks[i], loaded[i])
	}
	assert.Equal(t, task.KindWork, loaded[1].Kind())
	assert.Equal(t, task.KindPersonal, loaded[2].Kind())
}

func TestSaveCreatesBackupOfPreviousGeneration(t *testing.T) {
	h, _ := newHandler(t)

	first := []*task.Task{mustTask(t, "first")}
	require.NoError(t, h.SaveTasks(first))
	_, err := os.Stat(h.BackupPath())
	assert.True(t, errors.Is(err, os.ErrNotExist), "no backup before a primary exists")

	second := append(first, mustTask(t, "second"))
	require.NoError(t, h.SaveTasks(second))

	backup, err := h.readTasks(h.BackupPath())
	require.NoError(t, err)
	require.Len(t, backup, 1)
	assert.Equal(t, "first", backup[0].Title())
}

func TestLoadFallsBackToBackup(t *testing.T) {
	h, _ := newHandler(t)

	require.NoError(t, h.SaveTasks([]*task.Task{mustTask(t, "kept")}))
	require.NoError(t, h.SaveTasks([]*task.Task{mustTask(t, "kept"), mustTask(t, "newer")}))
	writeTestFile(t, h.Path(), "{not json")

	loaded := h.LoadTasks()
	require.Len(t, loaded, 1)
	assert.Equal(t, "kept", loaded[0].Title())
}

func TestLoadFallsBackOnSchemaViolation(t *testing.T) {
	h, _ := newHandler(t)
	writeTestFile(t, h.BackupPath(), `[{"title":"from backup"}]`)

	for _, content := range []string{
		`{"title":"object root"}`,
		`[{"title":""}]`,
		`[{"title":"x","priority":"Urgent"}]`,
		`[{"title":"x","completed":"no"}]`,
		`[42]`,
	} {
		writeTestFile(t, h.Path(), content)
		loaded := h.LoadTasks()
		require.Len(t, loaded, 1, content)
		assert.Equal(t, "from backup", loaded[0].Title())
	}
}

func TestLoadEmptyWhenBothCorrupt(t *testing.T) {
	h, _ := newHandler(t)
	writeTestFile(t, h.Path(), "garbage")
	writeTestFile(t, h.BackupPath(), "also garbage")

	loaded := h.LoadTasks()
	assert.NotNil(t, loaded)
	assert.Empty(t, loaded)
}

func TestLoadAcceptsLegacyRecords(t *testing.T) {
	h, _ := newHandler(t)
	writeTestFile(t, h.Path(), `[
  {"id":"1","title":"No dates","priority":null,"dueDate":null,"completed":false},
  {"id":"2","title":"Work","project":"Apollo","category":"Work","createdAt":"2024-01-01T00:00:00.000Z"}
]`)

	loaded := h.LoadTasks()
	require.Len(t, loaded, 2)
	assert.Equal(t, "1", loaded[0].ID())
	assert.Equal(t, task.PriorityMedium, loaded[0].Priority())
	assert.Equal(t, task.KindWork, loaded[1].Kind())
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), loaded[1].CreatedAt())
}

func TestSaveFailureReturnsError(t *testing.T) {
	dir := t.TempDir()
	h := New(
		WithPath(filepath.Join(dir, "missing", "tasks.json")),
		WithBackupPath(""),
		WithDirs(),
		WithLogger(log.New(io.Discard)),
	)
	assert.Error(t, h.SaveTasks([]*task.Task{mustTask(t, "x")}))
}

func TestExportImportJSON(t *testing.T) {
	h, dir := newHandler(t)
	tasks := []*task.Task{mustTask(t, "a"), mustTask(t, "b", task.AsWork("P"))}
	path := filepath.Join(dir, "out", "nested", "export.json")

	require.NoError(t, h.ExportTasks(tasks, path))
	imported, err := h.ImportTasks(path)
	require.NoError(t, err)
	assert.Equal(t, tasks, imported)
}

func TestExportImportYAML(t *testing.T) {
	h, dir := newHandler(t)
	due := time.Date(2031, 1, 1, 12, 30, 0, 0, time.UTC)
	loc := "Beach"
	tasks := []*task.Task{
		mustTask(t, "Swim", task.AsPersonal(&loc), task.WithDueDate(&due)),
		mustTask(t, "Plan", task.AsWork("Trip"), task.WithPriority(task.PriorityLow)),
		mustTask(t, "Pack"),
	}
	path := filepath.Join(dir, "export.yaml")

	require.NoError(t, h.ExportTasks(tasks, path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "title: Swim")

	imported, err := h.ImportTasks(path)
	require.NoError(t, err)
	assert.Equal(t, tasks, imported)
}

func TestImportHandwrittenYAML(t *testing.T) {
	h, dir := newHandler(t)
	path := filepath.Join(dir, "in.yml")
	writeTestFile(t, path, `- title: Unquoted dates
  dueDate: 2030-01-02T03:04:05Z
  createdAt: 2029-12-31
- title: Errand
  location: null
`)

	imported, err := h.ImportTasks(path)
	require.NoError(t, err)
	require.Len(t, imported, 2)
	assert.Equal(t, time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC), *imported[0].DueDate())
	assert.Equal(t, time.Date(2029, 12, 31, 0, 0, 0, 0, time.UTC), imported[0].CreatedAt())
	assert.Equal(t, task.KindPersonal, imported[1].Kind())
}

func TestImportFailures(t *testing.T) {
	h, dir := newHandler(t)

	_, err := h.ImportTasks(filepath.Join(dir, "nope.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	writeTestFile(t, bad, `{"tasks": []}`)
	imported, err := h.ImportTasks(bad)
	assert.Nil(t, imported)
	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, err.Error(), "root must be an array")
}

func TestCheck(t *testing.T) {
	h, dir := newHandler(t)
	require.NoError(t, h.SaveTasks([]*task.Task{mustTask(t, "a"), mustTask(t, "b")}))

	n, err := h.Check(h.Path())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	bad := filepath.Join(dir, "bad.json")
	writeTestFile(t, bad, `[{"title":"x","dueDate":5}]`)
	_, err = h.Check(bad)
	require.Error(t, err)
	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "[0].dueDate", fe.Path)
}
