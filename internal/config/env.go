package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/nibzard/taskman/internal/utils"
)

// loadFromEnv overrides config from TASKMAN_* environment variables. If
// sources is non-nil, it tracks the source of each value.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	setEnv := func(field string) {
		if sources != nil {
			sources[field] = SourceEnv
		}
	}

	if v := os.Getenv("TASKMAN_TASKS"); v != "" {
		cfg.TasksFile = v
		setEnv("tasks_file")
	}
	if v := os.Getenv("TASKMAN_BACKUP"); v != "" {
		cfg.BackupFile = v
		setEnv("backup_file")
	}
	if v := os.Getenv("TASKMAN_EXPORT"); v != "" {
		cfg.ExportFile = v
		setEnv("export_file")
	}
	if v := os.Getenv("TASKMAN_DIRS"); v != "" {
		cfg.Dirs = utils.SplitAndTrim(v, ",")
		setEnv("dirs")
	}
	if v := os.Getenv("TASKMAN_DUE_SOON_DAYS"); v != "" {
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			cfg.DueSoonDays = i
			setEnv("due_soon_days")
		}
	}

	// Logging configuration
	if v := os.Getenv("TASKMAN_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
		setEnv("log_level")
	}
	if v := os.Getenv("TASKMAN_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
		setEnv("log_format")
	}
	if v := os.Getenv("TASKMAN_LOG_TIMESTAMPS"); v != "" {
		cfg.LogTimestamps = boolFromString(v)
		setEnv("log_timestamps")
	}
	if v := os.Getenv("TASKMAN_LOG_CALLER"); v != "" {
		cfg.LogCaller = boolFromString(v)
		setEnv("log_caller")
	}

	// NO_COLOR is honored as well as the prefixed variable.
	if v := os.Getenv("NO_COLOR"); v != "" {
		cfg.NoColor = true
		setEnv("no_color")
	}
	if v := os.Getenv("TASKMAN_NO_COLOR"); v != "" {
		cfg.NoColor = boolFromString(v)
		setEnv("no_color")
	}
}

// boolFromString parses common truthy spellings. Everything else is false.
func boolFromString(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on", "y":
		return true
	default:
		return false
	}
}
