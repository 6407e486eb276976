package forms

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/quickstart/internal/tasks"
)

func TestParseTaskListForm(t *testing.T) {
	_, errs := ParseTaskListForm(url.Values{"title": {""}})
	assert.True(t, errs.Has("title"))

	f, errs := ParseTaskListForm(url.Values{"id": {"l1"}, "title": {"Errands"}})
	require.False(t, errs.Any())
	assert.Equal(t, tasks.TaskList{ID: "l1", Title: "Errands"}, f.ToTaskList())
}

func TestParseTaskForm(t *testing.T) {
	tests := []struct {
		name       string
		values     url.Values
		wantErrors []string
		want       tasks.Task
	}{
		{
			name:   "empty task is valid",
			values: url.Values{},
			want:   tasks.Task{Status: tasks.StatusNeedsAction},
		},
		{
			name:   "completion date completes the task",
			values: url.Values{"title": {"Ship"}, "completed": {"2025-10-31"}, "due": {"2025-11-01"}},
			want: tasks.Task{
				Title:     "Ship",
				Status:    tasks.StatusCompleted,
				Due:       time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
				Completed: time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC),
			},
		},
		{
			name:       "malformed dates",
			values:     url.Values{"due": {"31/10/2025"}, "completed": {"yesterday"}},
			wantErrors: []string{"due", "completed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, errs := ParseTaskForm(tt.values)
			if len(tt.wantErrors) > 0 {
				for _, field := range tt.wantErrors {
					assert.True(t, errs.Has(field), "expected error on %q", field)
				}
				assert.Equal(t, tt.values.Get("due"), f.Due, "the submitted value is kept")
				return
			}
			require.False(t, errs.Any(), "unexpected errors: %v", errs)
			assert.Equal(t, tt.want, f.ToTask())
		})
	}
}

func TestTaskRoundTrip(t *testing.T) {
	fetched := tasks.Task{
		ID:        "t1",
		Title:     "Write report",
		Notes:     "**bold** notes",
		Status:    tasks.StatusCompleted,
		Due:       time.Date(2025, 11, 7, 0, 0, 0, 0, time.UTC),
		Completed: time.Date(2025, 10, 31, 14, 30, 0, 0, time.UTC),
	}

	f := TaskFormFrom("list-1", fetched)
	assert.Equal(t, "2025-11-07", f.Due)
	assert.Equal(t, "2025-10-31T14:30:00Z", f.Completed)
	assert.Equal(t, "list-1", f.List)

	values := url.Values{
		"id":        {f.ID},
		"list":      {f.List},
		"title":     {f.Title},
		"notes":     {f.Notes},
		"due":       {f.Due},
		"completed": {f.Completed},
	}
	resubmitted, errs := ParseTaskForm(values)
	require.False(t, errs.Any())
	assert.Equal(t, fetched, resubmitted.ToTask())
}

func TestParseMoveTaskForm(t *testing.T) {
	_, errs := ParseMoveTaskForm(url.Values{"list": {"l1"}})
	assert.True(t, errs.Has("move"))

	f, errs := ParseMoveTaskForm(url.Values{"list": {"l1"}, "move": {"t1"}, "parent": {"p1"}})
	require.False(t, errs.Any())
	assert.Equal(t, MoveTaskForm{List: "l1", Move: "t1", Parent: "p1"}, f)
}
