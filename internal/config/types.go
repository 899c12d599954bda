package config

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
}

// Default values.
const (
	DefaultTasksFile   = "tasks.json"
	DefaultBackupFile  = "tasks_backup.json"
	DefaultExportFile  = "exports/exported_tasks.json"
	DefaultDueSoonDays = 7
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
)

// DefaultDirs returns the data directories created on first load.
func DefaultDirs() []string {
	return []string{"exports", "docs"}
}

// Config holds the full configuration for taskman.
type Config struct {
	// Paths
	TasksFile  string   `toml:"tasks_file"`
	BackupFile string   `toml:"backup_file"`
	ExportFile string   `toml:"export_file"`
	Dirs       []string `toml:"dirs"`

	// Queries
	DueSoonDays int `toml:"due_soon_days"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Output
	NoColor bool `toml:"no_color"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}
