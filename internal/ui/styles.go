package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/taskman/internal/task"
)

// Styles holds the lipgloss styles shared by the command output and the TUI.
type Styles struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Selected lipgloss.Style
	Faint    lipgloss.Style
	Bold     lipgloss.Style
	Done     lipgloss.Style
	Pending  lipgloss.Style
	Overdue  lipgloss.Style
	High     lipgloss.Style
	Medium   lipgloss.Style
	Low      lipgloss.Style
	Category lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
}

// NewStyles returns the color palette, or plain styles when noColor is set.
func NewStyles(noColor bool) Styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return Styles{
			Title: plain, Header: plain, Selected: plain, Faint: plain, Bold: plain,
			Done: plain, Pending: plain, Overdue: plain, High: plain, Medium: plain,
			Low: plain, Category: plain, Success: plain, Warning: plain, Error: plain,
		}
	}
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		Faint:    lipgloss.NewStyle().Faint(true),
		Bold:     lipgloss.NewStyle().Bold(true),
		Done:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Pending:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Overdue:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		High:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Medium:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Low:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Category: lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

// Priority renders p in its color.
func (s Styles) Priority(p task.Priority) string {
	switch p {
	case task.PriorityHigh:
		return s.High.Render(string(p))
	case task.PriorityMedium:
		return s.Medium.Render(string(p))
	case task.PriorityLow:
		return s.Low.Render(string(p))
	default:
		return string(p)
	}
}

// TaskLine renders t on one line in the same layout as task.String, colored,
// with overdue status evaluated at now.
func (s Styles) TaskLine(t *task.Task, now time.Time) string {
	glyph := s.Pending.Render("○")
	if t.Completed() {
		glyph = s.Done.Render("✓")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s | %s | %s", glyph, s.Bold.Render(t.Title()), s.Priority(t.Priority()), s.Category.Render(t.Category()))
	if due := t.DueDate(); due != nil {
		fmt.Fprintf(&b, " | Due: %s", due.Format(time.DateOnly))
		if t.IsOverdueAt(now) {
			b.WriteString(s.Overdue.Render(" (OVERDUE)"))
		}
	}
	switch t.Kind() {
	case task.KindWork:
		fmt.Fprintf(&b, " | Project: %s", t.Project())
	case task.KindPersonal:
		if loc := t.Location(); loc != nil && *loc != "" {
			fmt.Fprintf(&b, " | Location: %s", *loc)
		}
	}
	return b.String()
}
