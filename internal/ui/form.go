package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/taskman/internal/manager"
	"github.com/nibzard/taskman/internal/task"
	"github.com/nibzard/taskman/internal/validator"
)

// Form field order.
const (
	fieldTitle = iota
	fieldDescription
	fieldPriority
	fieldDueDate
	fieldCategory
	fieldType
	fieldExtra
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Title",
	"Description",
	"Priority",
	"Due date",
	"Category",
	"Type",
	"Project / Location",
}

// addForm collects the fields of a new task.
type addForm struct {
	inputs [fieldCount]textinput.Model
	focus  int
}

func newAddForm() *addForm {
	f := &addForm{}
	placeholders := [fieldCount]string{
		"required",
		"optional",
		"High, Medium or Low (default Medium)",
		"YYYY-MM-DD, optional",
		task.DefaultCategory,
		"regular, work or personal",
		"project for work, location for personal",
	}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 256
		ti.Width = 40
		f.inputs[i] = ti
	}
	f.inputs[fieldTitle].Focus()
	return f
}

// move shifts focus by delta, wrapping around.
func (f *addForm) move(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	return f.inputs[f.focus].Focus()
}

// update forwards msg to the focused input.
func (f *addForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *addForm) value(field int) string {
	return validator.SanitizeInput(f.inputs[field].Value())
}

// newTask converts the form into manager input. The extra field is the
// project of a work task or the location of a personal task.
func (f *addForm) newTask() manager.NewTask {
	in := manager.NewTask{
		Title:       f.value(fieldTitle),
		Description: f.value(fieldDescription),
		Priority:    f.value(fieldPriority),
		DueDate:     f.value(fieldDueDate),
		Category:    f.value(fieldCategory),
		Type:        f.value(fieldType),
	}
	if in.Priority == "" {
		in.Priority = string(task.PriorityMedium)
	}
	extra := f.value(fieldExtra)
	switch task.ParseKind(in.Type) {
	case task.KindWork:
		in.Project = extra
	case task.KindPersonal:
		if extra != "" {
			in.Location = &extra
		}
	}
	return in
}

func (f *addForm) view(s Styles) string {
	var b strings.Builder
	b.WriteString(s.Header.Render("Add Task") + "\n\n")
	for i, input := range f.inputs {
		marker := "  "
		label := fieldLabels[i]
		if i == f.focus {
			marker = "> "
			label = s.Selected.Render(label)
		}
		b.WriteString(marker + label + ": " + input.View() + "\n")
	}
	b.WriteString("\n" + s.Faint.Render("tab/shift+tab move | enter next | ctrl+s save | esc cancel") + "\n")
	return b.String()
}
