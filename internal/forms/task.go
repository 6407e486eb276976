package forms

import (
	"net/url"

	"github.com/teemow/quickstart/internal/tasks"
)

// TaskListForm is the task list edit form.
type TaskListForm struct {
	ID    string
	Title string
}

// ParseTaskListForm binds and validates a submitted task list.
func ParseTaskListForm(values url.Values) (TaskListForm, Errors) {
	b := newBinder(values)
	f := TaskListForm{
		ID:    b.text("id"),
		Title: b.text("title"),
	}
	if !hasText(f.Title) {
		b.errs.Add("title", "title is required")
	}
	return f, b.errs
}

// ToTaskList maps the form onto a task list.
func (f TaskListForm) ToTaskList() tasks.TaskList {
	return tasks.TaskList{ID: f.ID, Title: f.Title}
}

// TaskListFormFrom fills the edit form from a fetched task list.
func TaskListFormFrom(l tasks.TaskList) TaskListForm {
	return TaskListForm{ID: l.ID, Title: l.Title}
}

// TaskForm is the task edit form. Parent and Previous position a new task.
type TaskForm struct {
	ID        string
	List      string
	Title     string
	Notes     string
	Due       string
	Completed string

	Parent   string
	Previous string
}

// ParseTaskForm binds a submitted task. Tasks have no required fields, so
// only malformed dates are reported.
func ParseTaskForm(values url.Values) (TaskForm, Errors) {
	b := newBinder(values)
	f := TaskForm{
		ID:        b.text("id"),
		List:      b.text("list"),
		Title:     b.text("title"),
		Notes:     values.Get("notes"),
		Due:       b.date("due"),
		Completed: b.date("completed"),
		Parent:    b.text("parent"),
		Previous:  b.text("previous"),
	}
	return f, b.errs
}

// ToTask maps the form onto a task. A completion date marks the task
// completed.
func (f TaskForm) ToTask() tasks.Task {
	t := tasks.Task{
		ID:        f.ID,
		Title:     f.Title,
		Notes:     f.Notes,
		Due:       mustDate(f.Due),
		Completed: mustDate(f.Completed),
		Status:    tasks.StatusNeedsAction,
	}
	if !t.Completed.IsZero() {
		t.Status = tasks.StatusCompleted
	}
	return t
}

// TaskFormFrom fills the edit form from a task fetched from list.
func TaskFormFrom(list string, t tasks.Task) TaskForm {
	return TaskForm{
		ID:        t.ID,
		List:      list,
		Title:     t.Title,
		Notes:     t.Notes,
		Due:       formatDate(t.Due),
		Completed: formatDate(t.Completed),
	}
}

// MoveTaskForm repositions a task within its list.
type MoveTaskForm struct {
	List     string
	Move     string
	Parent   string
	Previous string
}

// ParseMoveTaskForm binds a move request. The task to move is required.
func ParseMoveTaskForm(values url.Values) (MoveTaskForm, Errors) {
	b := newBinder(values)
	f := MoveTaskForm{
		List:     b.text("list"),
		Move:     b.text("move"),
		Parent:   b.text("parent"),
		Previous: b.text("previous"),
	}
	if f.Move == "" {
		b.errs.Add("move", "task to move is required")
	}
	return f, b.errs
}
