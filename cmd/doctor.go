package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/nibzard/taskman/internal/config"
	"github.com/nibzard/taskman/internal/logging"
	"github.com/nibzard/taskman/internal/storage"
)

// doctorCommand checks config, data directories and task file validity. It
// never creates or modifies files.
func doctorCommand(cws *config.ConfigWithSources, args []string) error {
	flags := flag.NewFlagSet("taskman doctor", flag.ContinueOnError)
	verbose := flags.Bool("v", false, "Verbose output")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", flags.Args())
	}

	cfg := cws.Config
	store := storage.New(
		storage.WithPath(cfg.TasksFile),
		storage.WithBackupPath(cfg.BackupFile),
		storage.WithLogger(logging.Discard()),
	)

	fmt.Println("taskman Doctor")
	fmt.Println("==============")
	fmt.Println()

	allOK := true

	// Config
	fmt.Println("Config:")
	if file := cws.GetConfigFile(); file != "" {
		fmt.Printf("  File: %s\n", file)
	} else {
		fmt.Println("  File: (none, using defaults)")
	}
	if logging.ValidLevel(cfg.LogLevel) {
		fmt.Printf("  ✅ Log level: %s\n", cfg.LogLevel)
	} else {
		fmt.Printf("  ❌ Log level: %s (expected debug|info|warn|error)\n", cfg.LogLevel)
		allOK = false
	}
	if logging.ValidFormat(cfg.LogFormat) {
		fmt.Printf("  ✅ Log format: %s\n", cfg.LogFormat)
	} else {
		fmt.Printf("  ❌ Log format: %s (expected text|json|logfmt)\n", cfg.LogFormat)
		allOK = false
	}
	fmt.Printf("  ✅ Due soon window: %d days\n", cfg.DueSoonDays)
	if *verbose {
		user, project := config.ConfigFiles()
		fmt.Printf("  User file: %s\n", orNone(user))
		fmt.Printf("  Project file: %s\n", orNone(project))
		fmt.Println("  Sources:")
		fmt.Printf("    tasks_file     = %s (%s)\n", cfg.TasksFile, cws.Sources["tasks_file"])
		fmt.Printf("    backup_file    = %s (%s)\n", cfg.BackupFile, cws.Sources["backup_file"])
		fmt.Printf("    export_file    = %s (%s)\n", cfg.ExportFile, cws.Sources["export_file"])
		fmt.Printf("    dirs           = %s (%s)\n", strings.Join(cfg.Dirs, ","), cws.Sources["dirs"])
		fmt.Printf("    due_soon_days  = %d (%s)\n", cfg.DueSoonDays, cws.Sources["due_soon_days"])
		fmt.Printf("    log_level      = %s (%s)\n", cfg.LogLevel, cws.Sources["log_level"])
		fmt.Printf("    log_format     = %s (%s)\n", cfg.LogFormat, cws.Sources["log_format"])
		fmt.Printf("    log_timestamps = %t (%s)\n", cfg.LogTimestamps, cws.Sources["log_timestamps"])
		fmt.Printf("    log_caller     = %t (%s)\n", cfg.LogCaller, cws.Sources["log_caller"])
		fmt.Printf("    no_color       = %t (%s)\n", cfg.NoColor, cws.Sources["no_color"])
	}
	fmt.Println()

	// Data directories
	fmt.Println("Data directories:")
	if len(cfg.Dirs) == 0 {
		fmt.Println("  (none configured)")
	}
	for _, dir := range cfg.Dirs {
		info, err := os.Stat(dir)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			fmt.Printf("  ⚠️  %s: not found (will be created on first run)\n", dir)
		case err != nil:
			fmt.Printf("  ❌ %s: %v\n", dir, err)
			allOK = false
		case !info.IsDir():
			fmt.Printf("  ❌ %s: not a directory\n", dir)
			allOK = false
		default:
			fmt.Printf("  ✅ %s\n", dir)
		}
	}
	fmt.Println()

	if !checkTaskFile(store, "Task file", cfg.TasksFile, "will be created on first run") {
		allOK = false
	}
	if !checkTaskFile(store, "Backup file", cfg.BackupFile, "will be created on the next save") {
		allOK = false
	}

	// Overall status
	if allOK {
		fmt.Println("✅ All checks passed!")
		return nil
	}
	fmt.Println("⚠️  Some checks failed. taskman may not function correctly.")
	return fmt.Errorf("doctor checks failed")
}

// checkTaskFile reports whether path is absent or a valid task file.
func checkTaskFile(store *storage.FileHandler, label, path, missing string) bool {
	defer fmt.Println()
	fmt.Printf("%s: %s\n", label, path)

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		fmt.Printf("  ⚠️  Not found (%s)\n", missing)
		return true
	case err != nil:
		fmt.Printf("  ❌ Error: %v\n", err)
		return false
	case info.IsDir():
		fmt.Println("  ❌ Error: path is a directory")
		return false
	}

	n, err := store.Check(path)
	if err != nil {
		fmt.Println("  ❌ Validation failed:")
		for _, line := range strings.Split(err.Error(), "\n") {
			fmt.Printf("     - %s\n", line)
		}
		return false
	}
	fmt.Printf("  ✅ Valid (%d tasks)\n", n)
	return true
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
