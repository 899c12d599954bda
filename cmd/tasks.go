package cmd

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/nibzard/taskman/internal/manager"
	"github.com/nibzard/taskman/internal/task"
	"github.com/nibzard/taskman/internal/utils"
	"github.com/nibzard/taskman/internal/validator"
)

// addCommand creates a task from flags. A title may also be given as
// positional arguments.
func addCommand(a *app, args []string) error {
	fs := flag.NewFlagSet("taskman add", flag.ContinueOnError)
	title := fs.String("title", "", "Task title (required)")
	description := fs.String("description", "", "Task description")
	priority := fs.String("priority", string(task.PriorityMedium), "Priority (High, Medium, Low)")
	due := fs.String("due", "", "Due date (YYYY-MM-DD or ISO-8601)")
	category := fs.String("category", "", "Category")
	kind := fs.String("type", "", "Task type (regular, work, personal)")
	project := fs.String("project", "", "Project of a work task")
	location := fs.String("location", "", "Location of a personal task")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *title == "" {
		*title = strings.Join(fs.Args(), " ")
	} else if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	in := manager.NewTask{
		Title:       validator.SanitizeInput(*title),
		Description: validator.SanitizeInput(*description),
		Priority:    strings.TrimSpace(*priority),
		DueDate:     strings.TrimSpace(*due),
		Category:    validator.SanitizeInput(*category),
		Type:        *kind,
		Project:     validator.SanitizeInput(*project),
	}
	if loc := validator.SanitizeInput(*location); loc != "" {
		in.Location = &loc
	}

	a.load()
	t, err := a.mgr.AddTask(in)
	if err != nil {
		return err
	}
	fmt.Printf("%s Task added [%s]\n", a.styles.Success.Render("✅"), utils.ShortID(t.ID()))
	fmt.Printf("  %s\n", a.styles.TaskLine(t, time.Now()))
	return nil
}

// listCommand prints tasks, optionally filtered and sorted.
func listCommand(a *app, args []string) error {
	fs := flag.NewFlagSet("taskman list", flag.ContinueOnError)
	sortKey := fs.String("sort", string(manager.SortByCreatedAt), "Sort key (createdAt, title, priority, dueDate, category)")
	desc := fs.Bool("desc", false, "Sort descending")
	status := fs.String("status", "all", "Filter by status (all, pending, completed)")
	category := fs.String("category", "", "Filter by category")
	priority := fs.String("priority", "", "Filter by priority")
	overdue := fs.Bool("overdue", false, "Only overdue tasks")
	dueSoon := fs.Int("due-soon", -1, "Only tasks due within this many days")
	verbose := fs.Bool("v", false, "Show more details")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	criteria := manager.Criteria{
		Category: *category,
		Priority: *priority,
	}
	switch strings.ToLower(*status) {
	case "", "all":
	case "pending", "open":
		criteria.Completed = new(bool)
	case "completed", "done":
		done := true
		criteria.Completed = &done
	default:
		return fmt.Errorf("invalid status %q (expected all, pending or completed)", *status)
	}
	if *overdue {
		criteria.Overdue = overdue
	}

	a.load()
	keep := idSet(a.mgr.AdvancedFilter(criteria))
	if *dueSoon >= 0 {
		soon := idSet(a.mgr.DueSoon(*dueSoon))
		for id := range keep {
			if !soon[id] {
				delete(keep, id)
			}
		}
	}

	var tasks []*task.Task
	for _, t := range a.mgr.Sort(manager.ParseSortKey(*sortKey), !*desc) {
		if keep[t.ID()] {
			tasks = append(tasks, t)
		}
	}
	a.printTaskList(tasks, *verbose)
	return nil
}

// searchCommand prints the tasks matching a query.
func searchCommand(a *app, args []string) error {
	fs := flag.NewFlagSet("taskman search", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "Show more details")
	if err := fs.Parse(args); err != nil {
		return err
	}
	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		return fmt.Errorf("missing search query")
	}

	a.load()
	results := a.mgr.Search(query)
	if len(results) == 0 {
		fmt.Printf("No tasks match %q.\n", query)
		return nil
	}
	fmt.Printf("Tasks matching %q:\n", query)
	a.printTaskList(results, *verbose)
	return nil
}

// updateCommand changes only the fields whose flags were given.
func updateCommand(a *app, args []string) error {
	ref, args := splitRef(args)

	fs := flag.NewFlagSet("taskman update", flag.ContinueOnError)
	title := fs.String("title", "", "New title")
	description := fs.String("description", "", "New description")
	priority := fs.String("priority", "", "New priority (High, Medium, Low)")
	due := fs.String("due", "", "New due date; empty clears it")
	category := fs.String("category", "", "New category")
	project := fs.String("project", "", "New project (work tasks)")
	location := fs.String("location", "", "New location (personal tasks); empty clears it")

	if err := fs.Parse(args); err != nil {
		return err
	}

	for _, v := range []*string{title, description, category, project, location} {
		*v = validator.SanitizeInput(*v)
	}

	var u manager.Update
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			u.Title = title
		case "description":
			u.Description = description
		case "priority":
			u.Priority = priority
		case "due":
			u.DueDate = due
		case "category":
			u.Category = category
		case "project":
			u.Project = project
		case "location":
			u.Location = location
		}
	})
	if u.IsZero() {
		return fmt.Errorf("nothing to update: give at least one of -title, -description, -priority, -due, -category, -project, -location")
	}

	a.load()
	id, err := a.resolveRef(ref, fs.Args())
	if err != nil {
		return err
	}
	t, err := a.mgr.UpdateTask(id, u)
	if err != nil {
		return err
	}
	fmt.Printf("%s Task updated\n", a.styles.Success.Render("✅"))
	fmt.Printf("  %s\n", a.styles.TaskLine(t, time.Now()))
	return nil
}

// toggleCommand flips the completion state of a task.
func toggleCommand(a *app, args []string) error {
	a.load()
	ref, rest := splitRef(args)
	id, err := a.resolveRef(ref, rest)
	if err != nil {
		return err
	}
	t, err := a.mgr.ToggleCompletion(id)
	if err != nil {
		return err
	}
	state := "pending"
	if t.Completed() {
		state = "completed"
	}
	fmt.Printf("%s %q marked %s\n", a.styles.Success.Render("✅"), t.Title(), state)
	return nil
}

// deleteCommand removes a task.
func deleteCommand(a *app, args []string) error {
	a.load()
	ref, rest := splitRef(args)
	id, err := a.resolveRef(ref, rest)
	if err != nil {
		return err
	}
	t, err := a.mgr.DeleteTask(id)
	if err != nil {
		return err
	}
	fmt.Printf("%s Deleted %q\n", a.styles.Success.Render("✅"), t.Title())
	return nil
}

// statsCommand prints collection statistics.
func statsCommand(a *app, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	a.load()
	st := a.mgr.Stats()

	fmt.Println(a.styles.Title.Render("Task Statistics"))
	fmt.Println("===============")
	fmt.Printf("Total:           %d\n", st.Total)
	fmt.Printf("Completed:       %s\n", a.styles.Done.Render(fmt.Sprint(st.Completed)))
	fmt.Printf("Pending:         %d\n", st.Pending)
	fmt.Printf("Overdue:         %s\n", a.styles.Overdue.Render(fmt.Sprint(st.Overdue)))
	fmt.Printf("Due soon (%dd):  %d\n", a.cfg.DueSoonDays, st.DueSoon)
	fmt.Printf("Completion rate: %d%%\n", st.CompletionRate)
	return nil
}

// printTaskList prints tasks with their short ids.
func (a *app) printTaskList(tasks []*task.Task, verbose bool) {
	if len(tasks) == 0 {
		fmt.Println("No tasks found.")
		return
	}
	now := time.Now()
	for _, t := range tasks {
		a.printTask(t, now, verbose)
	}
	fmt.Printf("\n%d task(s)\n", len(tasks))
}

// printTask prints a single task.
func (a *app) printTask(t *task.Task, now time.Time, verbose bool) {
	fmt.Printf("  %s  %s\n", a.styles.Faint.Render(utils.ShortID(t.ID())), a.styles.TaskLine(t, now))
	if !verbose {
		return
	}
	fmt.Printf("      ID: %s\n", t.ID())
	if t.Description() != "" {
		fmt.Printf("      Description: %s\n", t.Description())
	}
	fmt.Printf("      Type: %s\n", t.Kind())
	fmt.Printf("      Created: %s\n", task.FormatTime(t.CreatedAt()))
	if days, ok := t.DaysUntilDueAt(now); ok && !t.Completed() {
		fmt.Printf("      Days until due: %d\n", days)
	}
}

func idSet(tasks []*task.Task) map[string]bool {
	ids := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		ids[t.ID()] = true
	}
	return ids
}
