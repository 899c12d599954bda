package manager

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/nibzard/taskman/internal/task"
)

// Search returns tasks whose title, description or category contains query,
// ignoring case.
func (m *Manager) Search(query string) []*task.Task {
	q := strings.ToLower(query)
	return m.filter(func(t *task.Task) bool {
		return strings.Contains(strings.ToLower(t.Title()), q) ||
			strings.Contains(strings.ToLower(t.Description()), q) ||
			strings.Contains(strings.ToLower(t.Category()), q)
	})
}

// FilterByCategory returns tasks in the given category, ignoring case.
func (m *Manager) FilterByCategory(category string) []*task.Task {
	return m.filter(func(t *task.Task) bool {
		return strings.EqualFold(t.Category(), category)
	})
}

// FilterByPriority returns tasks with the given priority, ignoring case.
func (m *Manager) FilterByPriority(priority string) []*task.Task {
	return m.filter(func(t *task.Task) bool {
		return strings.EqualFold(string(t.Priority()), priority)
	})
}

// FilterByStatus returns completed tasks when completed is true, pending
// tasks otherwise.
func (m *Manager) FilterByStatus(completed bool) []*task.Task {
	return m.filter(func(t *task.Task) bool {
		return t.Completed() == completed
	})
}

// Overdue returns pending tasks whose due date has passed.
func (m *Manager) Overdue() []*task.Task {
	now := m.now()
	return m.filter(func(t *task.Task) bool {
		return t.IsOverdueAt(now)
	})
}

// DueSoon returns pending tasks due within the next days days, today
// included.
func (m *Manager) DueSoon(days int) []*task.Task {
	now := m.now()
	return m.filter(func(t *task.Task) bool {
		return isDueSoon(t, now, days)
	})
}

func isDueSoon(t *task.Task, now time.Time, days int) bool {
	if t.Completed() {
		return false
	}
	left, ok := t.DaysUntilDueAt(now)
	return ok && left >= 0 && left <= days
}

// Criteria narrows AdvancedFilter. Zero-valued fields are not applied.
type Criteria struct {
	Category    string
	Priority    string
	Completed   *bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Overdue     *bool
}

// AdvancedFilter returns the tasks matching every supplied criterion.
func (m *Manager) AdvancedFilter(c Criteria) []*task.Task {
	now := m.now()
	return m.filter(func(t *task.Task) bool {
		if c.Category != "" && !strings.EqualFold(t.Category(), c.Category) {
			return false
		}
		if c.Priority != "" && !strings.EqualFold(string(t.Priority()), c.Priority) {
			return false
		}
		if c.Completed != nil && t.Completed() != *c.Completed {
			return false
		}
		if c.CreatedFrom != nil && t.CreatedAt().Before(*c.CreatedFrom) {
			return false
		}
		if c.CreatedTo != nil && t.CreatedAt().After(*c.CreatedTo) {
			return false
		}
		if c.Overdue != nil && t.IsOverdueAt(now) != *c.Overdue {
			return false
		}
		return true
	})
}

func (m *Manager) filter(keep func(*task.Task) bool) []*task.Task {
	out := make([]*task.Task, 0)
	for _, t := range m.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// SortKey names a sort order.
type SortKey string

const (
	SortByTitle     SortKey = "title"
	SortByPriority  SortKey = "priority"
	SortByDueDate   SortKey = "dueDate"
	SortByCategory  SortKey = "category"
	SortByCreatedAt SortKey = "createdAt"
)

// SortKeys lists the keys in the order the UI cycles through them.
var SortKeys = []SortKey{SortByCreatedAt, SortByTitle, SortByPriority, SortByDueDate, SortByCategory}

// ParseSortKey maps s to a SortKey, ignoring case, dashes and underscores.
// Unknown keys sort by creation time.
func ParseSortKey(s string) SortKey {
	norm := strings.NewReplacer("-", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range SortKeys {
		if strings.ToLower(string(k)) == norm {
			return k
		}
	}
	switch norm {
	case "due":
		return SortByDueDate
	case "created":
		return SortByCreatedAt
	}
	return SortByCreatedAt
}

// noDueDate stands in for a missing due date so those tasks sort last.
var noDueDate = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// Sort returns a sorted copy of the collection. The stored order is not
// changed. Ties keep insertion order.
func (m *Manager) Sort(key SortKey, ascending bool) []*task.Task {
	sorted := m.AllTasks()
	cmp := compareFunc(key)
	sort.SliceStable(sorted, func(i, j int) bool {
		c := cmp(sorted[i], sorted[j])
		if ascending {
			return c < 0
		}
		return c > 0
	})
	return sorted
}

func compareFunc(key SortKey) func(a, b *task.Task) int {
	switch key {
	case SortByTitle:
		return func(a, b *task.Task) int {
			return strings.Compare(strings.ToLower(a.Title()), strings.ToLower(b.Title()))
		}
	case SortByCategory:
		return func(a, b *task.Task) int {
			return strings.Compare(strings.ToLower(a.Category()), strings.ToLower(b.Category()))
		}
	case SortByPriority:
		return func(a, b *task.Task) int {
			return a.Priority().Rank() - b.Priority().Rank()
		}
	case SortByDueDate:
		return func(a, b *task.Task) int {
			return dueOrMax(a).Compare(dueOrMax(b))
		}
	default:
		return func(a, b *task.Task) int {
			return a.CreatedAt().Compare(b.CreatedAt())
		}
	}
}

func dueOrMax(t *task.Task) time.Time {
	if d := t.DueDate(); d != nil {
		return *d
	}
	return noDueDate
}

// Stats summarizes the collection.
type Stats struct {
	Total          int
	Completed      int
	Pending        int
	Overdue        int
	DueSoon        int
	CompletionRate int // percent, rounded to the nearest integer
}

// Stats computes collection statistics. Due-soon uses the configured window.
func (m *Manager) Stats() Stats {
	now := m.now()
	s := Stats{Total: len(m.tasks)}
	for _, t := range m.tasks {
		if t.Completed() {
			s.Completed++
		}
		if t.IsOverdueAt(now) {
			s.Overdue++
		}
		if isDueSoon(t, now, m.dueSoonDays) {
			s.DueSoon++
		}
	}
	s.Pending = s.Total - s.Completed
	if s.Total > 0 {
		s.CompletionRate = int(math.Round(float64(s.Completed) * 100 / float64(s.Total)))
	}
	return s
}
