package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and XDG_CONFIG_HOME at empty temp dirs, clears the
// TASKMAN_* variables and moves into a fresh project directory.
func isolate(t *testing.T) (home, project string) {
	t.Helper()
	home = t.TempDir()
	project = t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, key := range []string{
		"TASKMAN_TASKS", "TASKMAN_BACKUP", "TASKMAN_EXPORT", "TASKMAN_DIRS",
		"TASKMAN_DUE_SOON_DAYS", "TASKMAN_LOG_LEVEL", "TASKMAN_LOG_FORMAT",
		"TASKMAN_LOG_TIMESTAMPS", "TASKMAN_LOG_CALLER", "TASKMAN_NO_COLOR", "NO_COLOR",
	} {
		t.Setenv(key, "")
	}
	t.Chdir(project)
	return home, project
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("taskman", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	assert.Equal(t, DefaultTasksFile, cfg.TasksFile)
	assert.Equal(t, DefaultBackupFile, cfg.BackupFile)
	assert.Equal(t, DefaultExportFile, cfg.ExportFile)
	assert.Equal(t, []string{"exports", "docs"}, cfg.Dirs)
	assert.Equal(t, DefaultDueSoonDays, cfg.DueSoonDays)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.False(t, cfg.NoColor)
}

func TestLoadFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("TASKMAN_TASKS", "custom.json")
	t.Setenv("TASKMAN_DUE_SOON_DAYS", "3")
	t.Setenv("TASKMAN_DIRS", "a, b,,c")
	t.Setenv("TASKMAN_LOG_LEVEL", "debug")
	t.Setenv("TASKMAN_LOG_CALLER", "yes")

	cfg := &Config{}
	setDefaults(cfg)
	sources := map[string]ConfigSource{}
	loadFromEnv(cfg, sources)

	assert.Equal(t, "custom.json", cfg.TasksFile)
	assert.Equal(t, 3, cfg.DueSoonDays)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Dirs)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogCaller)
	assert.Equal(t, SourceEnv, sources["tasks_file"])
	assert.NotContains(t, sources, "backup_file")
}

func TestLoadFromEnvIgnoresBadInteger(t *testing.T) {
	isolate(t)
	t.Setenv("TASKMAN_DUE_SOON_DAYS", "soon")

	cfg := &Config{}
	setDefaults(cfg)
	loadFromEnv(cfg, nil)
	assert.Equal(t, DefaultDueSoonDays, cfg.DueSoonDays)
}

func TestNoColorEnv(t *testing.T) {
	isolate(t)
	t.Setenv("NO_COLOR", "1")

	cfg := &Config{}
	setDefaults(cfg)
	loadFromEnv(cfg, nil)
	assert.True(t, cfg.NoColor)
}

func TestLoadConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "taskman.toml")
	writeFile(t, configFile, `tasks_file = "custom.json"
due_soon_days = 14
log_format = "json"
`)

	cfg := &Config{}
	setDefaults(cfg)
	sources := map[string]ConfigSource{}
	require.NoError(t, loadConfigFile(cfg, configFile, sources, SourceProjFile))

	assert.Equal(t, "custom.json", cfg.TasksFile)
	assert.Equal(t, 14, cfg.DueSoonDays)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, DefaultBackupFile, cfg.BackupFile)
	assert.Equal(t, SourceProjFile, sources["due_soon_days"])
	assert.NotContains(t, sources, "backup_file")
}

func TestLoadConfigFileRejectsUnknownKey(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "taskman.toml")
	writeFile(t, configFile, `todo_file = "old.json"`)

	cfg := &Config{}
	err := loadConfigFile(cfg, configFile, nil, SourceUserFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "todo_file")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	t.Setenv("TASKMAN_TEST_DIR", "/data")

	tests := []struct {
		input string
		want  string
	}{
		{"~/test", filepath.Join(home, "test")},
		{"~", home},
		{"/absolute/path", "/absolute/path"},
		{"relative", "relative"},
		{"$TASKMAN_TEST_DIR/tasks.json", "/data/tasks.json"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, expandPath(tt.input))
		})
	}
}

func TestParseFlags(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	sources := map[string]ConfigSource{}

	err := parseFlags(cfg, newFlagSet(), []string{
		"-tasks", "flag.json",
		"-due-soon-days", "2",
		"-no-color",
		"-dirs", "x,y",
		"list",
	}, sources)
	require.NoError(t, err)

	assert.Equal(t, "flag.json", cfg.TasksFile)
	assert.Equal(t, 2, cfg.DueSoonDays)
	assert.True(t, cfg.NoColor)
	assert.Equal(t, []string{"x", "y"}, cfg.Dirs)
	assert.Equal(t, DefaultBackupFile, cfg.BackupFile)
	assert.Equal(t, SourceFlag, sources["tasks_file"])
	assert.NotContains(t, sources, "log_level")
}

func TestParseFlagsLeavesUnsetValues(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	cfg.LogLevel = "warn"

	require.NoError(t, parseFlags(cfg, newFlagSet(), nil, nil))
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadLayering(t *testing.T) {
	home, project := isolate(t)

	writeFile(t, filepath.Join(home, ".taskman", "taskman.toml"), `
tasks_file = "user.json"
backup_file = "user_backup.json"
export_file = "user_export.json"
due_soon_days = 10
`)
	writeFile(t, filepath.Join(project, "taskman.toml"), `
backup_file = "project_backup.json"
export_file = "project_export.json"
due_soon_days = 5
`)
	t.Setenv("TASKMAN_EXPORT", "env_export.json")
	t.Setenv("TASKMAN_DUE_SOON_DAYS", "4")

	cws, err := LoadWithSources(newFlagSet(), []string{"-due-soon-days", "1"})
	require.NoError(t, err)
	cfg := cws.Config

	root, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "user.json"), cfg.TasksFile)
	assert.Equal(t, filepath.Join(root, "project_backup.json"), cfg.BackupFile)
	assert.Equal(t, filepath.Join(root, "env_export.json"), cfg.ExportFile)
	assert.Equal(t, 1, cfg.DueSoonDays)

	assert.Equal(t, SourceUserFile, cws.Sources["tasks_file"])
	assert.Equal(t, SourceProjFile, cws.Sources["backup_file"])
	assert.Equal(t, SourceEnv, cws.Sources["export_file"])
	assert.Equal(t, SourceFlag, cws.Sources["due_soon_days"])
	assert.Equal(t, SourceDefault, cws.Sources["log_level"])
	assert.Equal(t, "taskman.toml", cws.GetConfigFile())

	user, project := ConfigFiles()
	assert.Equal(t, "taskman.toml", project)
	assert.Equal(t, filepath.Join(home, ".taskman", "taskman.toml"), user)
}

func TestLoadHiddenProjectFile(t *testing.T) {
	_, project := isolate(t)
	writeFile(t, filepath.Join(project, ".taskman.toml"), `log_level = "error"`)

	cfg, err := Load(newFlagSet(), nil)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoadResolvesPaths(t *testing.T) {
	isolate(t)

	cfg, err := Load(newFlagSet(), nil)
	require.NoError(t, err)

	root, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(root, DefaultTasksFile), cfg.TasksFile)
	assert.Equal(t, filepath.Join(root, "exports", "exported_tasks.json"), cfg.ExportFile)
	assert.Equal(t, []string{filepath.Join(root, "exports"), filepath.Join(root, "docs")}, cfg.Dirs)
}

func TestLoadRejectsNegativeDueSoonDays(t *testing.T) {
	isolate(t)

	_, err := Load(newFlagSet(), []string{"-due-soon-days", "-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "due_soon_days")
}

func TestLoadInvalidFlag(t *testing.T) {
	isolate(t)

	_, err := Load(newFlagSet(), []string{"-bogus"})
	require.Error(t, err)
}
