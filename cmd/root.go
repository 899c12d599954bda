// Package cmd implements the CLI command structure for taskman.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskman/internal/config"
	"github.com/nibzard/taskman/internal/logging"
	"github.com/nibzard/taskman/internal/manager"
	"github.com/nibzard/taskman/internal/storage"
	"github.com/nibzard/taskman/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the taskman CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("taskman", flag.ContinueOnError)
	fs.Usage = func() {
		printUsage(fs, os.Stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	// With no subcommand, open the interactive browser
	subcommand := "start"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	a := newApp(cws.Config)

	switch subcommand {
	case "start", "tui":
		return tuiCommand(ctx, a, remainingArgs)
	case "add":
		return addCommand(a, remainingArgs)
	case "list", "ls":
		return listCommand(a, remainingArgs)
	case "search":
		return searchCommand(a, remainingArgs)
	case "update":
		return updateCommand(a, remainingArgs)
	case "toggle", "done":
		return toggleCommand(a, remainingArgs)
	case "delete", "rm":
		return deleteCommand(a, remainingArgs)
	case "stats":
		return statsCommand(a, remainingArgs)
	case "export":
		return exportCommand(a, remainingArgs)
	case "import":
		return importCommand(a, remainingArgs)
	case "doctor":
		return doctorCommand(cws, remainingArgs)
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, os.Stdout)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// app bundles what the task commands share.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	store  *storage.FileHandler
	mgr    *manager.Manager
	styles ui.Styles
}

func newApp(cfg *config.Config) *app {
	logger := logging.FromConfig(cfg)
	store := storage.New(
		storage.WithPath(cfg.TasksFile),
		storage.WithBackupPath(cfg.BackupFile),
		storage.WithDirs(cfg.Dirs...),
		storage.WithLogger(logger),
	)
	mgr := manager.New(store,
		manager.WithLogger(logger),
		manager.WithDueSoonDays(cfg.DueSoonDays),
	)
	return &app{
		cfg:    cfg,
		logger: logger,
		store:  store,
		mgr:    mgr,
		styles: ui.NewStyles(cfg.NoColor),
	}
}

// load reads the task file, creating it and the data directories if missing.
func (a *app) load() {
	n := a.mgr.Initialize()
	a.logger.Debug("Task file loaded", "path", a.cfg.TasksFile, "tasks", n)
}

// tuiCommand launches the interactive browser.
func tuiCommand(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("taskman start", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	a.load()
	return ui.RunTUI(ctx, a.mgr,
		ui.WithExportPath(a.cfg.ExportFile),
		ui.WithDueSoonDays(a.cfg.DueSoonDays),
		ui.WithNoColor(a.cfg.NoColor),
	)
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Printf("taskman version %s\n", Version)
	return nil
}

// splitRef separates a leading task reference from the flags that follow it,
// so both "update ID -title x" and "update -title x ID" work.
func splitRef(args []string) (string, []string) {
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		return args[0], args[1:]
	}
	return "", args
}

// resolveRef picks the task reference from the leading argument or the
// remaining positional arguments and resolves it to a full id.
func (a *app) resolveRef(ref string, rest []string) (string, error) {
	if ref == "" {
		if len(rest) == 0 {
			return "", fmt.Errorf("missing task id")
		}
		ref, rest = rest[0], rest[1:]
	}
	if len(rest) > 0 {
		return "", fmt.Errorf("unexpected arguments: %v", rest)
	}
	return a.mgr.ResolveID(ref)
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "taskman - A personal task manager")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  taskman [global options] [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  start, tui           Open the interactive browser (default command)")
	fmt.Fprintln(w, "  add [title]          Add a task")
	fmt.Fprintln(w, "  list                 List tasks")
	fmt.Fprintln(w, "  search <query>       Search title, description and category")
	fmt.Fprintln(w, "  update <id>          Change fields of a task")
	fmt.Fprintln(w, "  toggle <id>          Toggle completion")
	fmt.Fprintln(w, "  delete <id>          Delete a task")
	fmt.Fprintln(w, "  stats                Show statistics")
	fmt.Fprintln(w, "  export [path]        Export tasks (JSON, or YAML for .yaml/.yml)")
	fmt.Fprintln(w, "  import <path>        Import tasks (JSON, or YAML for .yaml/.yml)")
	fmt.Fprintln(w, "  doctor               Check config, data directories and task files")
	fmt.Fprintln(w, "  version              Show version information")
	fmt.Fprintln(w, "  help                 Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Task ids may be shortened to any unique prefix.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Add Options (use with 'add' command):")
	fmt.Fprintln(w, "  -title string        Task title (required)")
	fmt.Fprintln(w, "  -description string  Task description")
	fmt.Fprintln(w, "  -priority string     High, Medium or Low (default Medium)")
	fmt.Fprintln(w, "  -due string          Due date, YYYY-MM-DD or ISO-8601")
	fmt.Fprintln(w, "  -category string     Category (default General)")
	fmt.Fprintln(w, "  -type string         regular, work or personal")
	fmt.Fprintln(w, "  -project string      Project of a work task")
	fmt.Fprintln(w, "  -location string     Location of a personal task")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List Options (use with 'list' command):")
	fmt.Fprintln(w, "  -sort string         createdAt, title, priority, dueDate or category")
	fmt.Fprintln(w, "  -desc                Sort descending")
	fmt.Fprintln(w, "  -status string       all, pending or completed")
	fmt.Fprintln(w, "  -category string     Only this category")
	fmt.Fprintln(w, "  -priority string     Only this priority")
	fmt.Fprintln(w, "  -overdue             Only overdue tasks")
	fmt.Fprintln(w, "  -due-soon int        Only tasks due within this many days")
	fmt.Fprintln(w, "  -v                   Show more details")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Update Options (use with 'update' command):")
	fmt.Fprintln(w, "  -title, -description, -priority, -due, -category, -project, -location")
	fmt.Fprintln(w, "        Only the options given are changed. An empty -due or -location clears it.")
}
