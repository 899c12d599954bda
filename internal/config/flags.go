package config

import (
	"flag"
	"strings"

	"github.com/nibzard/taskman/internal/utils"
)

// flagToSource maps flag names to source field names.
var flagToSource = map[string]string{
	"tasks":          "tasks_file",
	"backup":         "backup_file",
	"export":         "export_file",
	"dirs":           "dirs",
	"due-soon-days":  "due_soon_days",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"log-timestamps": "log_timestamps",
	"log-caller":     "log_caller",
	"no-color":       "no_color",
}

// parseFlags defines and parses CLI flags. Only flags that were explicitly set
// override cfg; if sources is non-nil, they are recorded as SourceFlag.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("taskman", flag.ContinueOnError)
	}

	// Bind to copies so that unset flags leave cfg untouched.
	var (
		tasksFile     = cfg.TasksFile
		backupFile    = cfg.BackupFile
		exportFile    = cfg.ExportFile
		dirs          = strings.Join(cfg.Dirs, ",")
		dueSoonDays   = cfg.DueSoonDays
		logLevel      = cfg.LogLevel
		logFormat     = cfg.LogFormat
		logTimestamps = cfg.LogTimestamps
		logCaller     = cfg.LogCaller
		noColor       = cfg.NoColor
	)

	// Paths
	fs.StringVar(&tasksFile, "tasks", tasksFile, "Path to task file")
	fs.StringVar(&backupFile, "backup", backupFile, "Path to backup file")
	fs.StringVar(&exportFile, "export", exportFile, "Default export path")
	fs.StringVar(&dirs, "dirs", dirs, "Comma-separated data directories created on load")

	// Queries
	fs.IntVar(&dueSoonDays, "due-soon-days", dueSoonDays, "Days ahead counted as due soon")

	// Logging
	fs.StringVar(&logLevel, "log-level", logLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&logFormat, "log-format", logFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&logTimestamps, "log-timestamps", logTimestamps, "Show timestamps in logs")
	fs.BoolVar(&logCaller, "log-caller", logCaller, "Show caller location in logs")

	// Output
	fs.BoolVar(&noColor, "no-color", noColor, "Disable colored output")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "tasks":
			cfg.TasksFile = tasksFile
		case "backup":
			cfg.BackupFile = backupFile
		case "export":
			cfg.ExportFile = exportFile
		case "dirs":
			cfg.Dirs = utils.SplitAndTrim(dirs, ",")
		case "due-soon-days":
			cfg.DueSoonDays = dueSoonDays
		case "log-level":
			cfg.LogLevel = logLevel
		case "log-format":
			cfg.LogFormat = logFormat
		case "log-timestamps":
			cfg.LogTimestamps = logTimestamps
		case "log-caller":
			cfg.LogCaller = logCaller
		case "no-color":
			cfg.NoColor = noColor
		default:
			return
		}
		if sources == nil {
			return
		}
		if fieldName, ok := flagToSource[f.Name]; ok {
			sources[fieldName] = SourceFlag
		}
	})

	return nil
}
