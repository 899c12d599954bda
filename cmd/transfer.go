package cmd

import (
	"fmt"

	"github.com/nibzard/taskman/internal/config"
)

// exportCommand writes every task to the given path or the configured export
// file.
func exportCommand(a *app, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("unexpected arguments: %v", args[1:])
	}
	path := a.cfg.ExportFile
	if len(args) == 1 {
		path = config.ResolvePath(a.cfg.ProjectRoot, args[0])
	}

	a.load()
	if !a.mgr.ExportTasks(path) {
		return fmt.Errorf("exporting tasks to %s failed", path)
	}
	fmt.Printf("%s Exported %d tasks to %s\n", a.styles.Success.Render("✅"), a.mgr.Len(), path)
	return nil
}

// importCommand appends the tasks found in a JSON or YAML file.
func importCommand(a *app, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: taskman import <path>")
	}
	path := config.ResolvePath(a.cfg.ProjectRoot, args[0])

	a.load()
	n := a.mgr.ImportTasks(path)
	if n == 0 {
		// Tell an empty source apart from a broken one.
		if _, err := a.store.Check(path); err != nil {
			return fmt.Errorf("importing %s: %w", path, err)
		}
	}
	fmt.Printf("%s Imported %d tasks from %s\n", a.styles.Success.Render("✅"), n, path)
	return nil
}
