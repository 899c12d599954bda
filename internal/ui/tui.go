// Package ui provides the interactive terminal interface and shared styles.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/taskman/internal/manager"
	"github.com/nibzard/taskman/internal/task"
	"github.com/nibzard/taskman/internal/utils"
)

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

// tuiConfig holds TUI configuration.
type tuiConfig struct {
	exportPath  string
	dueSoonDays int
	noColor     bool
	clock       func() time.Time
}

// WithExportPath sets where the export key writes.
func WithExportPath(path string) TUIOption {
	return func(c *tuiConfig) {
		c.exportPath = path
	}
}

// WithDueSoonDays sets the window of the due-soon filter.
func WithDueSoonDays(days int) TUIOption {
	return func(c *tuiConfig) {
		c.dueSoonDays = days
	}
}

// WithNoColor disables colors.
func WithNoColor(noColor bool) TUIOption {
	return func(c *tuiConfig) {
		c.noColor = noColor
	}
}

// WithClock overrides the time source used for overdue markers.
func WithClock(clock func() time.Time) TUIOption {
	return func(c *tuiConfig) {
		c.clock = clock
	}
}

// RunTUI starts the interactive task browser over mgr.
func RunTUI(ctx context.Context, mgr *manager.Manager, opts ...TUIOption) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	return runProgram(ctx, newTUIModel(mgr, opts...))
}

func runProgram(ctx context.Context, model *tuiModel) error {
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type viewMode int

const (
	modeList viewMode = iota
	modeSearch
	modeAdd
	modeConfirmDelete
	modeHelp
)

type filterKind int

const (
	filterAll filterKind = iota
	filterPending
	filterCompleted
	filterOverdue
	filterDueSoon
	filterCategory
	filterPriority
)

var priorityCycle = []task.Priority{task.PriorityHigh, task.PriorityMedium, task.PriorityLow}

type tuiModel struct {
	mgr    *manager.Manager
	cfg    tuiConfig
	styles Styles

	mode        viewMode
	filter      filterKind
	filterValue string
	query       string
	search      textinput.Model
	form        *addForm

	sortIdx   int
	ascending bool

	visible []*task.Task
	cursor  int
	status  string
	failed  bool
	height  int
}

func newTUIModel(mgr *manager.Manager, opts ...TUIOption) *tuiModel {
	c := tuiConfig{
		dueSoonDays: manager.DefaultDueSoonDays,
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(&c)
	}

	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "search title, description, category"
	search.CharLimit = 128

	m := &tuiModel{
		mgr:       mgr,
		cfg:       c,
		styles:    NewStyles(c.noColor),
		search:    search,
		ascending: true,
		status:    "Press a to add, space to toggle, d to delete, h for help.",
	}
	m.refresh()
	return m
}

func (m *tuiModel) Init() tea.Cmd {
	return nil
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.search.Width = msg.Width - 10
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeAdd:
			return m.updateAdd(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		case modeHelp:
			m.mode = modeList
			return m, nil
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m *tuiModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = max(len(m.visible)-1, 0)
	case " ", "x", "enter":
		m.toggleSelected()
	case "d", "delete":
		if m.selected() != nil {
			m.mode = modeConfirmDelete
		}
	case "a":
		m.form = newAddForm()
		m.mode = modeAdd
	case "/":
		m.mode = modeSearch
		m.search.SetValue(m.query)
		return m, m.search.Focus()
	case "0":
		m.setFilter(filterAll, "")
		m.query = ""
		m.refresh()
	case "1":
		m.setFilter(filterPending, "")
	case "2":
		m.setFilter(filterCompleted, "")
	case "3":
		m.setFilter(filterOverdue, "")
	case "4":
		m.setFilter(filterDueSoon, "")
	case "c":
		m.cycleCategory()
	case "p":
		m.cyclePriority()
	case "s":
		m.sortIdx = (m.sortIdx + 1) % len(manager.SortKeys)
		m.refresh()
	case "S":
		m.ascending = !m.ascending
		m.refresh()
	case "r", "f5":
		n := m.mgr.Initialize()
		m.setStatus(fmt.Sprintf("Reloaded %d tasks", n), false)
		m.refresh()
	case "e":
		m.export()
	case "h", "?":
		m.mode = modeHelp
	}
	return m, nil
}

func (m *tuiModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.query = strings.TrimSpace(m.search.Value())
		m.search.Blur()
		m.mode = modeList
		m.cursor = 0
		m.refresh()
		return m, nil
	case "esc":
		m.search.Blur()
		m.mode = modeList
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *tuiModel) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.form = nil
		m.mode = modeList
		m.setStatus("Cancelled", false)
		return m, nil
	case "tab", "down":
		return m, m.form.move(1)
	case "shift+tab", "up":
		return m, m.form.move(-1)
	case "enter":
		if m.form.focus < fieldCount-1 {
			return m, m.form.move(1)
		}
		m.submitForm()
		return m, nil
	case "ctrl+s":
		m.submitForm()
		return m, nil
	}
	return m, m.form.update(msg)
}

func (m *tuiModel) submitForm() {
	t, err := m.mgr.AddTask(m.form.newTask())
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.form = nil
	m.mode = modeList
	m.setStatus(fmt.Sprintf("Task %q added", t.Title()), false)
	m.refresh()
	m.selectID(t.ID())
}

func (m *tuiModel) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeList
	if msg.String() != "y" && msg.String() != "Y" {
		m.setStatus("Delete cancelled", false)
		return m, nil
	}
	sel := m.selected()
	if sel == nil {
		return m, nil
	}
	if _, err := m.mgr.DeleteTask(sel.ID()); err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}
	m.setStatus(fmt.Sprintf("Deleted %q", sel.Title()), false)
	m.refresh()
	return m, nil
}

func (m *tuiModel) toggleSelected() {
	sel := m.selected()
	if sel == nil {
		return
	}
	t, err := m.mgr.ToggleCompletion(sel.ID())
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	state := "pending"
	if t.Completed() {
		state = "completed"
	}
	m.setStatus(fmt.Sprintf("Marked %q %s", t.Title(), state), false)
	m.refresh()
	m.selectID(t.ID())
}

func (m *tuiModel) export() {
	if m.cfg.exportPath == "" {
		m.setStatus("No export path configured", true)
		return
	}
	if !m.mgr.ExportTasks(m.cfg.exportPath) {
		m.setStatus("Export failed, see log", true)
		return
	}
	m.setStatus(fmt.Sprintf("Exported %d tasks to %s", m.mgr.Len(), m.cfg.exportPath), false)
}

func (m *tuiModel) setFilter(kind filterKind, value string) {
	m.filter = kind
	m.filterValue = value
	m.cursor = 0
	m.refresh()
}

// cycleCategory steps through the categories in use, then back to no filter.
func (m *tuiModel) cycleCategory() {
	var categories []string
	seen := map[string]bool{}
	for _, t := range m.mgr.AllTasks() {
		key := strings.ToLower(t.Category())
		if !seen[key] {
			seen[key] = true
			categories = append(categories, t.Category())
		}
	}
	next := nextValue(categories, m.filter == filterCategory, m.filterValue)
	if next == "" {
		m.setFilter(filterAll, "")
		return
	}
	m.setFilter(filterCategory, next)
}

func (m *tuiModel) cyclePriority() {
	values := make([]string, len(priorityCycle))
	for i, p := range priorityCycle {
		values[i] = string(p)
	}
	next := nextValue(values, m.filter == filterPriority, m.filterValue)
	if next == "" {
		m.setFilter(filterAll, "")
		return
	}
	m.setFilter(filterPriority, next)
}

// nextValue returns the value after current in values, the first value when
// not active, or "" after the last.
func nextValue(values []string, active bool, current string) string {
	if len(values) == 0 {
		return ""
	}
	if !active {
		return values[0]
	}
	for i, v := range values {
		if strings.EqualFold(v, current) {
			if i+1 < len(values) {
				return values[i+1]
			}
			return ""
		}
	}
	return values[0]
}

// refresh recomputes the visible rows from the manager: sorted, then narrowed
// by the active filter and search query.
func (m *tuiModel) refresh() {
	sorted := m.mgr.Sort(manager.SortKeys[m.sortIdx], m.ascending)

	keep := func(*task.Task) bool { return true }
	if subset := m.filtered(); subset != nil {
		ids := idSet(subset)
		keep = func(t *task.Task) bool { return ids[t.ID()] }
	}
	if m.query != "" {
		matches := idSet(m.mgr.Search(m.query))
		prev := keep
		keep = func(t *task.Task) bool { return prev(t) && matches[t.ID()] }
	}

	m.visible = m.visible[:0]
	for _, t := range sorted {
		if keep(t) {
			m.visible = append(m.visible, t)
		}
	}
	if m.cursor >= len(m.visible) {
		m.cursor = max(len(m.visible)-1, 0)
	}
}

// filtered returns the tasks admitted by the active filter, or nil when no
// filter is set.
func (m *tuiModel) filtered() []*task.Task {
	switch m.filter {
	case filterPending:
		return m.mgr.FilterByStatus(false)
	case filterCompleted:
		return m.mgr.FilterByStatus(true)
	case filterOverdue:
		return m.mgr.Overdue()
	case filterDueSoon:
		return m.mgr.DueSoon(m.cfg.dueSoonDays)
	case filterCategory:
		return m.mgr.FilterByCategory(m.filterValue)
	case filterPriority:
		return m.mgr.FilterByPriority(m.filterValue)
	default:
		return nil
	}
}

func idSet(tasks []*task.Task) map[string]bool {
	ids := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		ids[t.ID()] = true
	}
	return ids
}

func (m *tuiModel) selected() *task.Task {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return nil
	}
	return m.visible[m.cursor]
}

func (m *tuiModel) selectID(id string) {
	for i, t := range m.visible {
		if t.ID() == id {
			m.cursor = i
			return
		}
	}
}

func (m *tuiModel) moveCursor(delta int) {
	if len(m.visible) == 0 {
		m.cursor = 0
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.visible)-1)
}

func (m *tuiModel) setStatus(msg string, failed bool) {
	m.status = msg
	m.failed = failed
}

func (m *tuiModel) filterLabel() string {
	switch m.filter {
	case filterPending:
		return "pending"
	case filterCompleted:
		return "completed"
	case filterOverdue:
		return "overdue"
	case filterDueSoon:
		return fmt.Sprintf("due within %d days", m.cfg.dueSoonDays)
	case filterCategory:
		return "category " + m.filterValue
	case filterPriority:
		return "priority " + m.filterValue
	default:
		return "all"
	}
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b, m.styles)

	switch m.mode {
	case modeHelp:
		writeHelp(&b, m.styles)
		writeFooter(&b, m.styles)
		return b.String()
	case modeAdd:
		b.WriteString(m.form.view(m.styles))
		m.writeStatus(&b)
		return b.String()
	}

	m.writeStats(&b)
	m.writeQueryLine(&b)
	m.writeList(&b)
	m.writeDetails(&b)

	switch m.mode {
	case modeSearch:
		b.WriteString(m.search.View() + "\n")
	case modeConfirmDelete:
		if sel := m.selected(); sel != nil {
			b.WriteString(m.styles.Warning.Render(fmt.Sprintf("Delete %q? (y/N)", sel.Title())) + "\n")
		}
	default:
		m.writeStatus(&b)
	}
	writeFooter(&b, m.styles)
	return b.String()
}

func writeTitle(b *strings.Builder, s Styles) {
	title := "taskman"
	b.WriteString(s.Title.Render(title) + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func (m *tuiModel) writeStats(b *strings.Builder) {
	st := m.mgr.Stats()
	fmt.Fprintf(b, "  Total: %d  Done: %d  Pending: %d  %s  Due soon: %d  Complete: %d%%\n\n",
		st.Total, st.Completed, st.Pending,
		m.styles.Overdue.Render(fmt.Sprintf("Overdue: %d", st.Overdue)),
		st.DueSoon, st.CompletionRate)
}

func (m *tuiModel) writeQueryLine(b *strings.Builder) {
	dir := "asc"
	if !m.ascending {
		dir = "desc"
	}
	line := fmt.Sprintf("Filter: %s | Sort: %s %s", m.filterLabel(), manager.SortKeys[m.sortIdx], dir)
	if m.query != "" {
		line += fmt.Sprintf(" | Search: %q", m.query)
	}
	b.WriteString(m.styles.Faint.Render(line) + "\n\n")
}

func (m *tuiModel) writeList(b *strings.Builder) {
	if len(m.visible) == 0 {
		b.WriteString("  No tasks to display.\n\n")
		return
	}

	start, end := 0, len(m.visible)
	if rows := m.height - 16; m.height > 0 && rows > 0 && rows < len(m.visible) {
		start = min(max(m.cursor-rows/2, 0), len(m.visible)-rows)
		end = start + rows
	}

	now := m.cfg.clock()
	for i := start; i < end; i++ {
		line := m.styles.TaskLine(m.visible[i], now)
		if i == m.cursor {
			b.WriteString(m.styles.Selected.Render("> ") + line + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	if start > 0 || end < len(m.visible) {
		fmt.Fprintf(b, "  %s\n", m.styles.Faint.Render(fmt.Sprintf("(%d-%d of %d)", start+1, end, len(m.visible))))
	}
	b.WriteString("\n")
}

func (m *tuiModel) writeDetails(b *strings.Builder) {
	sel := m.selected()
	if sel == nil {
		return
	}
	b.WriteString(m.styles.Header.Render("Details") + "\n")
	fmt.Fprintf(b, "  ID: %s\n", utils.ShortID(sel.ID()))
	if sel.Description() != "" {
		fmt.Fprintf(b, "  Description: %s\n", utils.Truncate(sel.Description(), 72))
	}
	fmt.Fprintf(b, "  Created: %s\n", sel.CreatedAt().Local().Format("2006-01-02 15:04"))
	if days, ok := sel.DaysUntilDueAt(m.cfg.clock()); ok && !sel.Completed() {
		switch {
		case days < 0:
			fmt.Fprintf(b, "  %s\n", m.styles.Overdue.Render(fmt.Sprintf("Overdue by %d days", -days)))
		case days == 0:
			fmt.Fprintf(b, "  %s\n", m.styles.Overdue.Render("Due now"))
		default:
			fmt.Fprintf(b, "  Due in %d days\n", days)
		}
	}
	b.WriteString("\n")
}

func (m *tuiModel) writeStatus(b *strings.Builder) {
	if m.status == "" {
		return
	}
	if m.failed {
		b.WriteString(m.styles.Error.Render(m.status) + "\n")
		return
	}
	b.WriteString(m.styles.Success.Render(m.status) + "\n")
}

func writeHelp(b *strings.Builder, s Styles) {
	b.WriteString(s.Header.Render("Keyboard Shortcuts") + "\n\n")
	b.WriteString("  q, esc, ctrl+c  Quit\n")
	b.WriteString("  j/k, arrows     Move\n")
	b.WriteString("  g/G             First / last task\n")
	b.WriteString("  space, x        Toggle completion\n")
	b.WriteString("  a               Add a task\n")
	b.WriteString("  d               Delete the selected task\n")
	b.WriteString("  /               Search\n")
	b.WriteString("  1               Show pending\n")
	b.WriteString("  2               Show completed\n")
	b.WriteString("  3               Show overdue\n")
	b.WriteString("  4               Show due soon\n")
	b.WriteString("  c               Cycle category filter\n")
	b.WriteString("  p               Cycle priority filter\n")
	b.WriteString("  0               Clear filter and search\n")
	b.WriteString("  s / S           Cycle sort key / reverse order\n")
	b.WriteString("  r, F5           Reload from disk\n")
	b.WriteString("  e               Export\n")
	b.WriteString("  h, ?            Toggle this help screen\n\n")
}

func writeFooter(b *strings.Builder, s Styles) {
	b.WriteString(s.Faint.Render("Press h for help | q to quit") + "\n")
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
