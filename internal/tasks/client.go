package tasks

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"github.com/teemow/quickstart/internal/instrumentation"
	"github.com/teemow/quickstart/internal/paging"
)

// Client wraps the Google Tasks service
type Client struct {
	svc     *tasks.Service
	metrics *instrumentation.Metrics
}

type clientOptions struct {
	metrics  *instrumentation.Metrics
	endpoint string
}

// Option configures a Client.
type Option func(*clientOptions)

// WithMetrics records every API call on m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(o *clientOptions) { o.metrics = m }
}

// WithEndpoint overrides the API base URL.
func WithEndpoint(endpoint string) Option {
	return func(o *clientOptions) { o.endpoint = endpoint }
}

// NewClient creates a Tasks client that authenticates through httpClient.
func NewClient(ctx context.Context, httpClient *http.Client, opts ...Option) (*Client, error) {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	clientOpts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if o.endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(o.endpoint))
	}

	svc, err := tasks.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Tasks service: %w", err)
	}

	return &Client{
		svc:     svc,
		metrics: o.metrics,
	}, nil
}

// observe wraps one API call. ids are the list ID and, optionally, the task ID.
func (c *Client) observe(ctx context.Context, operation string, fn func(context.Context) error, ids ...string) error {
	var attrs []attribute.KeyValue
	if len(ids) > 0 && ids[0] != "" {
		attrs = append(attrs, instrumentation.Scope(ids[0]))
	}
	if len(ids) > 1 && ids[1] != "" {
		attrs = append(attrs, instrumentation.ResourceID(ids[1]))
	}
	return instrumentation.ObserveGoogleAPI(ctx, c.metrics, instrumentation.ServiceTasks, operation, fn, attrs...)
}

// TaskLists returns one page of the user's task lists.
func (c *Client) TaskLists(ctx context.Context, q TaskListQuery) (paging.TokenPage[TaskList], error) {
	page := paging.TokenPage[TaskList]{PageToken: q.PageToken, Items: []TaskList{}}

	call := c.svc.Tasklists.List()
	if q.PageToken != "" {
		call = call.PageToken(q.PageToken)
	}
	if q.MaxResults > 0 {
		call = call.MaxResults(q.MaxResults)
	}

	var result *tasks.TaskLists
	err := c.observe(ctx, instrumentation.OperationList, func(ctx context.Context) error {
		var err error
		result, err = call.Context(ctx).Do()
		return err
	})
	if err != nil {
		return page, fmt.Errorf("failed to list task lists: %w", err)
	}

	for _, tl := range result.Items {
		page.Items = append(page.Items, toTaskList(tl))
	}
	page.NextPageToken = result.NextPageToken
	return page, nil
}

// TaskList retrieves a specific task list by ID
func (c *Client) TaskList(ctx context.Context, id string) (*TaskList, error) {
	id = resolveList(id)

	var tl *tasks.TaskList
	err := c.observe(ctx, instrumentation.OperationGet, func(ctx context.Context) error {
		var err error
		tl, err = c.svc.Tasklists.Get(id).Context(ctx).Do()
		return err
	}, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get task list: %w", err)
	}

	result := toTaskList(tl)
	return &result, nil
}

// SaveTaskList creates the list when it has no ID and updates its title otherwise.
func (c *Client) SaveTaskList(ctx context.Context, list TaskList) (*TaskList, error) {
	body := &tasks.TaskList{Title: list.Title}

	var saved *tasks.TaskList
	if list.ID == "" {
		err := c.observe(ctx, instrumentation.OperationCreate, func(ctx context.Context) error {
			var err error
			saved, err = c.svc.Tasklists.Insert(body).Context(ctx).Do()
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create task list: %w", err)
		}
	} else {
		body.Id = list.ID
		err := c.observe(ctx, instrumentation.OperationUpdate, func(ctx context.Context) error {
			var err error
			saved, err = c.svc.Tasklists.Update(list.ID, body).Context(ctx).Do()
			return err
		}, list.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to update task list: %w", err)
		}
	}

	result := toTaskList(saved)
	return &result, nil
}

// DeleteTaskList deletes a task list
func (c *Client) DeleteTaskList(ctx context.Context, id string) error {
	err := c.observe(ctx, instrumentation.OperationDelete, func(ctx context.Context) error {
		return c.svc.Tasklists.Delete(id).Context(ctx).Do()
	}, id)
	if err != nil {
		return fmt.Errorf("failed to delete task list: %w", err)
	}
	return nil
}

// Tasks returns one page of tasks matching q. Only the filters set on q are
// sent to the API.
func (c *Client) Tasks(ctx context.Context, q TaskQuery) (paging.TokenPage[Task], error) {
	list := resolveList(q.ListID)
	page := paging.TokenPage[Task]{PageToken: q.PageToken, Items: []Task{}}

	call := c.svc.Tasks.List(list)
	if q.PageToken != "" {
		call = call.PageToken(q.PageToken)
	}
	if q.MaxResults > 0 {
		call = call.MaxResults(q.MaxResults)
	}
	if !q.CompletedMin.IsZero() {
		call = call.CompletedMin(formatTime(q.CompletedMin))
	}
	if !q.CompletedMax.IsZero() {
		call = call.CompletedMax(formatTime(q.CompletedMax))
	}
	if !q.DueMin.IsZero() {
		call = call.DueMin(formatTime(q.DueMin))
	}
	if !q.DueMax.IsZero() {
		call = call.DueMax(formatTime(q.DueMax))
	}
	if !q.UpdatedMin.IsZero() {
		call = call.UpdatedMin(formatTime(q.UpdatedMin))
	}
	if q.ShowCompleted != nil {
		call = call.ShowCompleted(*q.ShowCompleted)
	}
	if q.ShowDeleted != nil {
		call = call.ShowDeleted(*q.ShowDeleted)
	}
	if q.ShowHidden != nil {
		call = call.ShowHidden(*q.ShowHidden)
	}

	var result *tasks.Tasks
	err := c.observe(ctx, instrumentation.OperationList, func(ctx context.Context) error {
		var err error
		result, err = call.Context(ctx).Do()
		return err
	}, list)
	if err != nil {
		return page, fmt.Errorf("failed to list tasks: %w", err)
	}

	for _, t := range result.Items {
		page.Items = append(page.Items, toTask(t))
	}
	page.NextPageToken = result.NextPageToken
	return page, nil
}

// Task retrieves a specific task by ID
func (c *Client) Task(ctx context.Context, listID, id string) (*Task, error) {
	listID = resolveList(listID)

	var t *tasks.Task
	err := c.observe(ctx, instrumentation.OperationGet, func(ctx context.Context) error {
		var err error
		t, err = c.svc.Tasks.Get(listID, id).Context(ctx).Do()
		return err
	}, listID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	result := toTask(t)
	return &result, nil
}

// SaveTask creates the task at the top of the list when it has no ID and
// replaces its editable fields otherwise.
func (c *Client) SaveTask(ctx context.Context, listID string, task Task) (*Task, error) {
	if task.ID == "" {
		return c.CreateTaskAt(ctx, listID, "", "", task)
	}
	listID = resolveList(listID)

	// Get existing task first
	var existing *tasks.Task
	err := c.observe(ctx, instrumentation.OperationGet, func(ctx context.Context) error {
		var err error
		existing, err = c.svc.Tasks.Get(listID, task.ID).Context(ctx).Do()
		return err
	}, listID, task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get existing task: %w", err)
	}

	applyTask(existing, task)

	var updated *tasks.Task
	err = c.observe(ctx, instrumentation.OperationUpdate, func(ctx context.Context) error {
		var err error
		updated, err = c.svc.Tasks.Update(listID, task.ID, existing).Context(ctx).Do()
		return err
	}, listID, task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	result := toTask(updated)
	return &result, nil
}

// CreateTaskAt creates a task under parent, directly after previous. Empty
// parent creates a top-level task; empty previous puts it first among its
// siblings.
func (c *Client) CreateTaskAt(ctx context.Context, listID, parent, previous string, task Task) (*Task, error) {
	listID = resolveList(listID)

	body := &tasks.Task{}
	applyTask(body, task)

	call := c.svc.Tasks.Insert(listID, body)
	if parent != "" {
		call = call.Parent(parent)
	}
	if previous != "" {
		call = call.Previous(previous)
	}

	var created *tasks.Task
	err := c.observe(ctx, instrumentation.OperationCreate, func(ctx context.Context) error {
		var err error
		created, err = call.Context(ctx).Do()
		return err
	}, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	result := toTask(created)
	return &result, nil
}

// MoveTask moves a task under parent, directly after previous.
func (c *Client) MoveTask(ctx context.Context, listID, id, parent, previous string) (*Task, error) {
	listID = resolveList(listID)

	call := c.svc.Tasks.Move(listID, id)
	if parent != "" {
		call = call.Parent(parent)
	}
	if previous != "" {
		call = call.Previous(previous)
	}

	var moved *tasks.Task
	err := c.observe(ctx, instrumentation.OperationMove, func(ctx context.Context) error {
		var err error
		moved, err = call.Context(ctx).Do()
		return err
	}, listID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to move task: %w", err)
	}

	result := toTask(moved)
	return &result, nil
}

// DeleteTask deletes a task
func (c *Client) DeleteTask(ctx context.Context, listID, id string) error {
	listID = resolveList(listID)

	err := c.observe(ctx, instrumentation.OperationDelete, func(ctx context.Context) error {
		return c.svc.Tasks.Delete(listID, id).Context(ctx).Do()
	}, listID, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// ClearCompletedTasks hides all completed tasks of a task list
func (c *Client) ClearCompletedTasks(ctx context.Context, listID string) error {
	listID = resolveList(listID)

	err := c.observe(ctx, instrumentation.OperationClear, func(ctx context.Context) error {
		return c.svc.Tasks.Clear(listID).Context(ctx).Do()
	}, listID)
	if err != nil {
		return fmt.Errorf("failed to clear completed tasks: %w", err)
	}
	return nil
}
