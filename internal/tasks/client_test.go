package tasks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tasks "google.golang.org/api/tasks/v1"

	"github.com/teemow/quickstart/internal/google"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Body   map[string]any
}

type fakeTasksAPI struct {
	mu       sync.Mutex
	requests []recordedRequest
	respond  func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeTasksAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query()}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&rec.Body)
	}
	f.mu.Lock()
	f.requests = append(f.requests, rec)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	f.respond(w, r)
}

func (f *fakeTasksAPI) all() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func (f *fakeTasksAPI) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newTestClient(t *testing.T, respond func(w http.ResponseWriter, r *http.Request)) (*Client, *fakeTasksAPI) {
	t.Helper()
	api := &fakeTasksAPI{respond: respond}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), srv.Client(), WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return client, api
}

func writeJSON(w http.ResponseWriter, v any) {
	_ = json.NewEncoder(w).Encode(v)
}

func boolPtr(b bool) *bool { return &b }

func TestTasks_OmitsUnsetFilters(t *testing.T) {
	client, api := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"items": []any{}})
	})

	page, err := client.Tasks(context.Background(), TaskQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasNext())

	req := api.last()
	assert.Equal(t, "/tasks/v1/lists/@default/tasks", req.Path)
	for _, key := range []string{
		"pageToken", "maxResults", "completedMin", "completedMax", "dueMin", "dueMax",
		"updatedMin", "showCompleted", "showDeleted", "showHidden",
	} {
		assert.NotContains(t, req.Query, key, "unset filter %q must not be sent", key)
	}
}

func TestTasks_SendsSetFilters(t *testing.T) {
	client, api := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{
			"items": []any{
				map[string]any{"id": "t1", "title": "Write report", "status": "needsAction", "due": "2025-11-07T00:00:00.000Z"},
			},
			"nextPageToken": "next-1",
		})
	})

	day := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	page, err := client.Tasks(context.Background(), TaskQuery{
		ListID:        "list-1",
		PageToken:     "tok",
		MaxResults:    20,
		CompletedMin:  day,
		CompletedMax:  day.AddDate(0, 0, 1),
		DueMin:        day.AddDate(0, 0, 2),
		DueMax:        day.AddDate(0, 0, 3),
		UpdatedMin:    day.AddDate(0, 0, 4),
		ShowCompleted: boolPtr(false),
		ShowDeleted:   boolPtr(true),
		ShowHidden:    boolPtr(true),
	})
	require.NoError(t, err)

	require.Len(t, page.Items, 1)
	assert.Equal(t, "t1", page.Items[0].ID)
	assert.Equal(t, time.Date(2025, 11, 7, 0, 0, 0, 0, time.UTC), page.Items[0].Due)
	assert.Equal(t, "tok", page.PageToken)
	assert.Equal(t, "next-1", page.NextPageToken)

	q := api.last().Query
	assert.Equal(t, "/tasks/v1/lists/list-1/tasks", api.last().Path)
	assert.Equal(t, "tok", q.Get("pageToken"))
	assert.Equal(t, "20", q.Get("maxResults"))
	assert.Equal(t, "2025-11-01T00:00:00Z", q.Get("completedMin"))
	assert.Equal(t, "2025-11-02T00:00:00Z", q.Get("completedMax"))
	assert.Equal(t, "2025-11-03T00:00:00Z", q.Get("dueMin"))
	assert.Equal(t, "2025-11-04T00:00:00Z", q.Get("dueMax"))
	assert.Equal(t, "2025-11-05T00:00:00Z", q.Get("updatedMin"))
	assert.Equal(t, "false", q.Get("showCompleted"))
	assert.Equal(t, "true", q.Get("showDeleted"))
	assert.Equal(t, "true", q.Get("showHidden"))
}

func TestTaskLists_Paging(t *testing.T) {
	client, api := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{
			"items":         []any{map[string]any{"id": "l1", "title": "Work"}},
			"nextPageToken": "p2",
		})
	})

	page, err := client.TaskLists(context.Background(), TaskListQuery{})
	require.NoError(t, err)
	assert.Equal(t, []TaskList{{ID: "l1", Title: "Work"}}, page.Items)
	assert.True(t, page.HasNext())
	assert.NotContains(t, api.last().Query, "pageToken")

	_, err = client.TaskLists(context.Background(), TaskListQuery{PageToken: "p2"})
	require.NoError(t, err)
	assert.Equal(t, "p2", api.last().Query.Get("pageToken"))
}

func TestCreateTaskAt(t *testing.T) {
	client, api := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"id": "new-task", "title": "Review draft", "parent": "p1"})
	})

	created, err := client.CreateTaskAt(context.Background(), "list-1", "p1", "prev-1", Task{
		Title: "Review draft",
		Notes: "second pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "new-task", created.ID)

	req := api.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/tasks/v1/lists/list-1/tasks", req.Path)
	assert.Equal(t, "p1", req.Query.Get("parent"))
	assert.Equal(t, "prev-1", req.Query.Get("previous"))
	assert.Equal(t, "Review draft", req.Body["title"])
	assert.Equal(t, "second pass", req.Body["notes"])
	assert.Equal(t, StatusNeedsAction, req.Body["status"])
}

func TestSaveTask_NewTaskInsertsWithoutPosition(t *testing.T) {
	client, api := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"id": "t9"})
	})

	_, err := client.SaveTask(context.Background(), "", Task{Title: "Buy groceries"})
	require.NoError(t, err)

	req := api.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/tasks/v1/lists/@default/tasks", req.Path)
	assert.NotContains(t, req.Query, "parent")
	assert.NotContains(t, req.Query, "previous")
}

func TestSaveTask_UpdatesFetchedTask(t *testing.T) {
	client, api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, map[string]any{
				"id": "t1", "title": "Old", "notes": "old notes", "status": "needsAction",
				"etag": "\"e1\"", "position": "0001",
			})
		case http.MethodPut:
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			writeJSON(w, body)
		}
	})

	completed := time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC)
	saved, err := client.SaveTask(context.Background(), "list-1", Task{
		ID:        "t1",
		Title:     "New",
		Completed: completed,
	})
	require.NoError(t, err)
	assert.Equal(t, "New", saved.Title)
	assert.Equal(t, StatusCompleted, saved.Status)
	assert.Equal(t, completed, saved.Completed)

	requests := api.all()
	require.Len(t, requests, 2)
	put := requests[1]
	assert.Equal(t, http.MethodPut, put.Method)
	assert.Equal(t, "/tasks/v1/lists/list-1/tasks/t1", put.Path)
	assert.Equal(t, "New", put.Body["title"])
	assert.NotContains(t, put.Body, "notes", "cleared notes must not be resent")
	assert.Equal(t, "0001", put.Body["position"], "untouched fields are preserved")
	assert.Equal(t, "completed", put.Body["status"])
}

func TestMoveTask(t *testing.T) {
	client, api := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"id": "t1", "parent": "p1"})
	})

	moved, err := client.MoveTask(context.Background(), "list-1", "t1", "p1", "")
	require.NoError(t, err)
	assert.Equal(t, "p1", moved.Parent)

	req := api.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/tasks/v1/lists/list-1/tasks/t1/move", req.Path)
	assert.Equal(t, "p1", req.Query.Get("parent"))
	assert.NotContains(t, req.Query, "previous")
}

func TestDeleteAndClear(t *testing.T) {
	client, api := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	ctx := context.Background()

	require.NoError(t, client.DeleteTask(ctx, "list-1", "t1"))
	assert.Equal(t, http.MethodDelete, api.last().Method)
	assert.Equal(t, "/tasks/v1/lists/list-1/tasks/t1", api.last().Path)

	require.NoError(t, client.ClearCompletedTasks(ctx, ""))
	assert.Equal(t, http.MethodPost, api.last().Method)
	assert.Equal(t, "/tasks/v1/lists/@default/clear", api.last().Path)

	require.NoError(t, client.DeleteTaskList(ctx, "list-1"))
	assert.Equal(t, "/tasks/v1/users/@me/lists/list-1", api.last().Path)
}

func TestSaveTaskList(t *testing.T) {
	client, api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["id"] == nil {
			body["id"] = "created"
		}
		writeJSON(w, body)
	})
	ctx := context.Background()

	created, err := client.SaveTaskList(ctx, TaskList{Title: "Errands"})
	require.NoError(t, err)
	assert.Equal(t, "created", created.ID)
	assert.Equal(t, http.MethodPost, api.last().Method)
	assert.Equal(t, "/tasks/v1/users/@me/lists", api.last().Path)

	updated, err := client.SaveTaskList(ctx, TaskList{ID: "l1", Title: "Chores"})
	require.NoError(t, err)
	assert.Equal(t, "Chores", updated.Title)
	assert.Equal(t, http.MethodPut, api.last().Method)
	assert.Equal(t, "/tasks/v1/users/@me/lists/l1", api.last().Path)
}

func TestClient_UnauthorizedIsExpired(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		writeJSON(w, map[string]any{"error": map[string]any{"code": 401, "message": "Invalid Credentials"}})
	})

	_, err := client.Task(context.Background(), "", "t1")
	require.Error(t, err)
	assert.True(t, google.IsAuthorizationExpired(err))
}

func TestToTaskList(t *testing.T) {
	result := toTaskList(nil)
	if result.ID != "" {
		t.Errorf("Expected empty ID for nil task list, got %s", result.ID)
	}

	result = toTaskList(&tasks.TaskList{
		Id:      "test-list-id",
		Title:   "My Tasks",
		Updated: "2025-10-31T14:00:00Z",
	})
	if result.ID != "test-list-id" {
		t.Errorf("Expected ID 'test-list-id', got %s", result.ID)
	}
	if result.Updated.IsZero() {
		t.Error("Expected non-zero updated time")
	}
}

func TestToTask(t *testing.T) {
	result := toTask(nil)
	if result.ID != "" {
		t.Errorf("Expected empty ID for nil task, got %s", result.ID)
	}

	completed := "2025-10-31T10:00:00Z"
	result = toTask(&tasks.Task{
		Id:        "test-task-id",
		Title:     "Complete project",
		Notes:     "Implementation notes",
		Status:    "completed",
		Due:       "2025-11-07T00:00:00Z",
		Completed: &completed,
		Parent:    "parent-task-id",
		Hidden:    true,
		Links: []*tasks.TaskLinks{
			{Type: "email", Description: "Related email", Link: "https://mail.google.com/"},
		},
	})

	if !result.IsCompleted() {
		t.Error("Expected task to be completed")
	}
	if result.Due.IsZero() || result.Completed.IsZero() {
		t.Error("Expected due and completed dates to be parsed")
	}
	if result.Parent != "parent-task-id" || !result.Hidden {
		t.Errorf("unexpected conversion: %+v", result)
	}
	if len(result.Links) != 1 || result.Links[0].Type != "email" {
		t.Errorf("Expected one email link, got %+v", result.Links)
	}
}

func TestApplyTask_ClearsCompletion(t *testing.T) {
	completed := "2025-10-31T10:00:00Z"
	dst := &tasks.Task{Status: StatusCompleted, Completed: &completed, Due: "2025-11-07T00:00:00Z"}

	applyTask(dst, Task{Title: "Reopened"})

	assert.Equal(t, StatusNeedsAction, dst.Status)
	assert.Nil(t, dst.Completed)
	assert.Empty(t, dst.Due)
}
