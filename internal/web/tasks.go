package web

import (
	"context"
	"net/http"

	"github.com/teemow/quickstart/internal/forms"
	"github.com/teemow/quickstart/internal/instrumentation"
	"github.com/teemow/quickstart/internal/tasks"
)

const (
	formTaskList   = "tasklist"
	formTask       = "task"
	formMoveTask   = "movetask"
	formClearTasks = "cleartasks"
)

func (h *Handler) listTaskLists(w http.ResponseWriter, r *http.Request, c *Clients) error {
	q := r.URL.Query()
	page, err := c.Tasks.TaskLists(r.Context(), tasks.TaskListQuery{PageToken: q.Get("pageToken")})
	if err != nil {
		return err
	}
	return h.views.render(w, r, http.StatusOK, "tasklists", model{
		"TaskLists": page,
		"NextURL":   nextURL("/tasklists", q, page.NextPageToken),
	})
}

func (h *Handler) editTaskList(w http.ResponseWriter, r *http.Request, c *Clients) error {
	var command forms.TaskListForm
	if id := r.URL.Query().Get("id"); id != "" {
		list, err := c.Tasks.TaskList(r.Context(), id)
		if err != nil {
			return err
		}
		command = forms.TaskListFormFrom(*list)
	}
	return h.views.render(w, r, http.StatusOK, "tasklist", model{"Command": command, "Errors": forms.Errors{}})
}

func (h *Handler) saveTaskList(w http.ResponseWriter, r *http.Request, c *Clients) error {
	if !parseForm(w, r) {
		return nil
	}
	ctx := r.Context()

	if r.Form.Has("delete") {
		id := r.Form.Get("id")
		s := instrumentation.NewSubmission(formTaskList, "delete").WithResource(id, "")
		err := h.submit(ctx, c, s, instrumentation.FormDeleted, func(ctx context.Context) error {
			return c.Tasks.DeleteTaskList(ctx, id)
		})
		if err != nil {
			return err
		}
		redirect(w, r, "/tasklists", "")
		return nil
	}

	command, errs := forms.ParseTaskListForm(r.Form)
	if errs.Any() {
		h.rejected(ctx, formTaskList)
		return h.views.render(w, r, http.StatusOK, "tasklist", model{"Command": command, "Errors": errs})
	}

	s := instrumentation.NewSubmission(formTaskList, "save").WithResource(command.ID, "")
	err := h.submit(ctx, c, s, instrumentation.FormSaved, func(ctx context.Context) error {
		_, err := c.Tasks.SaveTaskList(ctx, command.ToTaskList())
		return err
	})
	if err != nil {
		return err
	}
	redirect(w, r, "/tasklists", "")
	return nil
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request, c *Clients) error {
	q := r.URL.Query()
	command, errs := forms.ParseTaskSearchForm(q)

	m := model{"Command": command, "Errors": errs}
	if !errs.Any() {
		page, err := c.Tasks.Tasks(r.Context(), command.Query())
		if err != nil {
			return err
		}
		m["Tasks"] = page
		m["NextURL"] = nextURL("/tasks", q, page.NextPageToken)
	}
	return h.views.render(w, r, http.StatusOK, "tasks", m)
}

// editTask shows a task of list (the default list when unset). Without an
// id the form creates a task, positioned by parent and previous when given.
func (h *Handler) editTask(w http.ResponseWriter, r *http.Request, c *Clients) error {
	q := r.URL.Query()
	list := q.Get("list")

	command := forms.TaskForm{
		List:     list,
		Parent:   q.Get("parent"),
		Previous: q.Get("previous"),
	}
	if id := q.Get("id"); id != "" {
		if list == "" {
			list = tasks.DefaultListID
		}
		task, err := c.Tasks.Task(r.Context(), list, id)
		if err != nil {
			return err
		}
		command = forms.TaskFormFrom(list, *task)
	}
	return h.views.render(w, r, http.StatusOK, "task", model{"Command": command, "Errors": forms.Errors{}})
}

// saveTask deletes, creates at a position (when parent is posted) or saves
// a task, then lists the tasks of its list.
func (h *Handler) saveTask(w http.ResponseWriter, r *http.Request, c *Clients) error {
	if !parseForm(w, r) {
		return nil
	}
	ctx := r.Context()

	if r.Form.Has("delete") {
		list, id := r.Form.Get("list"), r.Form.Get("id")
		s := instrumentation.NewSubmission(formTask, "delete").WithResource(id, list)
		err := h.submit(ctx, c, s, instrumentation.FormDeleted, func(ctx context.Context) error {
			return c.Tasks.DeleteTask(ctx, list, id)
		})
		if err != nil {
			return err
		}
		redirect(w, r, "/tasks", list)
		return nil
	}

	command, errs := forms.ParseTaskForm(r.Form)
	if errs.Any() {
		h.rejected(ctx, formTask)
		return h.views.render(w, r, http.StatusOK, "task", model{"Command": command, "Errors": errs})
	}

	task := command.ToTask()
	var s *instrumentation.Submission
	var call func(context.Context) error
	if r.Form.Has("parent") {
		s = instrumentation.NewSubmission(formTask, "create")
		call = func(ctx context.Context) error {
			_, err := c.Tasks.CreateTaskAt(ctx, command.List, command.Parent, command.Previous, task)
			return err
		}
	} else {
		s = instrumentation.NewSubmission(formTask, "save")
		call = func(ctx context.Context) error {
			_, err := c.Tasks.SaveTask(ctx, command.List, task)
			return err
		}
	}
	s.WithResource(task.ID, command.List)
	if err := h.submit(ctx, c, s, instrumentation.FormSaved, call); err != nil {
		return err
	}
	redirect(w, r, "/tasks", command.List)
	return nil
}

func (h *Handler) moveTask(w http.ResponseWriter, r *http.Request, c *Clients) error {
	if !parseForm(w, r) {
		return nil
	}
	ctx := r.Context()

	command, errs := forms.ParseMoveTaskForm(r.Form)
	if errs.Any() {
		h.rejected(ctx, formMoveTask)
		http.Error(w, errs.Get("move"), http.StatusBadRequest)
		return nil
	}

	s := instrumentation.NewSubmission(formMoveTask, "move").WithResource(command.Move, command.List)
	err := h.submit(ctx, c, s, instrumentation.FormSaved, func(ctx context.Context) error {
		_, err := c.Tasks.MoveTask(ctx, command.List, command.Move, command.Parent, command.Previous)
		return err
	})
	if err != nil {
		return err
	}
	redirect(w, r, "/tasks", command.List)
	return nil
}

func (h *Handler) clearTasks(w http.ResponseWriter, r *http.Request, c *Clients) error {
	if !parseForm(w, r) {
		return nil
	}
	list := r.Form.Get("list")
	if list == "" {
		list = tasks.DefaultListID
	}

	ctx := r.Context()
	s := instrumentation.NewSubmission(formClearTasks, "clear").WithResource("", list)
	err := h.submit(ctx, c, s, instrumentation.FormSaved, func(ctx context.Context) error {
		return c.Tasks.ClearCompletedTasks(ctx, list)
	})
	if err != nil {
		return err
	}
	redirect(w, r, "/tasks", list)
	return nil
}
