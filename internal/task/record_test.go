package task

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestJSONRoundTrip(t *testing.T) {
	due := time.Date(2030, 3, 4, 5, 6, 7, 890_000_000, time.UTC)
	tasks := []*Task{}

	regular, err := New("Regular", WithDescription("desc"), WithPriority(PriorityLow), WithDueDate(&due), WithCategory("Home"))
	require.NoError(t, err)
	regular.MarkComplete()
	tasks = append(tasks, regular)

	work, err := New("Work", AsWork("Apollo"))
	require.NoError(t, err)
	tasks = append(tasks, work)

	personal, err := New("Personal", AsPersonal(nil))
	require.NoError(t, err)
	tasks = append(tasks, personal)

	data, err := json.Marshal(tasks)
	require.NoError(t, err)

	var decoded []*Task
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 3)
	for i := range tasks {
		assert.Equal(t, tasks[i], decoded[i], "task %d", i)
	}
}

func TestRecordShape(t *testing.T) {
	due := time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC)
	work, err := New("Ship", WithDueDate(&due), AsWork("Apollo"))
	require.NoError(t, err)

	data, err := json.Marshal(work)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "2030-03-04T00:00:00.000Z", m["dueDate"])
	assert.Equal(t, "Apollo", m["project"])
	assert.Equal(t, "Work", m["category"])
	assert.Equal(t, "Medium", m["priority"])
	assert.Equal(t, false, m["completed"])
	assert.NotContains(t, m, "location")
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`, m["createdAt"])

	personal, err := New("Walk", AsPersonal(nil))
	require.NoError(t, err)
	data, err = json.Marshal(personal)
	require.NoError(t, err)
	m = nil
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Contains(t, m, "location")
	assert.Nil(t, m["location"])
	assert.Nil(t, m["dueDate"])
}

func TestFromMapPreservesIdentity(t *testing.T) {
	tk, err := FromMap(map[string]any{
		"id":        "abc-123",
		"title":     "Stored",
		"priority":  "High",
		"completed": true,
		"createdAt": "2024-01-02T03:04:05.678Z",
		"dueDate":   "2024-02-01",
		"category":  "Errands",
	})
	require.NoError(t, err)

	assert.Equal(t, "abc-123", tk.ID())
	assert.True(t, tk.Completed())
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 678_000_000, time.UTC), tk.CreatedAt())
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), *tk.DueDate())
	assert.Equal(t, "Errands", tk.Category())
	assert.Equal(t, KindRegular, tk.Kind())
}

func TestFromMapFillsMissingFields(t *testing.T) {
	tk, err := FromMap(map[string]any{"title": "Bare"})
	require.NoError(t, err)

	assert.NotEmpty(t, tk.ID())
	assert.Equal(t, PriorityMedium, tk.Priority())
	assert.Equal(t, DefaultCategory, tk.Category())
	assert.False(t, tk.CreatedAt().IsZero())
	assert.Nil(t, tk.DueDate())
}

func TestFromMapInfersKind(t *testing.T) {
	work, err := FromMap(map[string]any{"title": "w", "project": "Apollo", "category": "Work"})
	require.NoError(t, err)
	assert.Equal(t, KindWork, work.Kind())
	assert.Equal(t, "Apollo", work.Project())

	personal, err := FromMap(map[string]any{"title": "p", "location": nil})
	require.NoError(t, err)
	assert.Equal(t, KindPersonal, personal.Kind())
	assert.Equal(t, CategoryPersonal, personal.Category())
	assert.Nil(t, personal.Location())
}

func TestFromMapErrors(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]any
	}{
		{"nil record", nil},
		{"missing title", map[string]any{"priority": "High"}},
		{"bad priority", map[string]any{"title": "x", "priority": "Urgent"}},
		{"bad due date", map[string]any{"title": "x", "dueDate": "tomorrow"}},
		{"numeric title", map[string]any{"title": 3.0}},
		{"string completed", map[string]any{"title": "x", "completed": "yes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromMap(tt.in)
			assert.Error(t, err)
		})
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	due := time.Date(2030, 3, 4, 5, 6, 7, 0, time.UTC)
	personal, err := New("Dentist", WithDueDate(&due), AsPersonal(ptr("Clinic")))
	require.NoError(t, err)
	work, err := New("Deploy", AsWork("Infra"))
	require.NoError(t, err)
	tasks := []*Task{personal, work}

	data, err := yaml.Marshal(tasks)
	require.NoError(t, err)
	assert.Contains(t, string(data), "location: Clinic")
	assert.Contains(t, string(data), "project: Infra")

	var decoded []*Task
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, tasks[0], decoded[0])
	assert.Equal(t, tasks[1], decoded[1])
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-05-06", time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)},
		{"2024-05-06T07:08:09Z", time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)},
		{"2024-05-06T07:08:09.123Z", time.Date(2024, 5, 6, 7, 8, 9, 123_000_000, time.UTC)},
		{"2024-05-06T07:08:09+02:00", time.Date(2024, 5, 6, 5, 8, 9, 0, time.UTC)},
		{"2024-05-06T07:08:09", time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)},
		{"2024-05-06 07:08", time.Date(2024, 5, 6, 7, 8, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "tomorrow", "2024-13-01", "06/05/2024"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
	}
}
