// Package tasks provides a client for managing Google Tasks.
//
// This package wraps the Google Tasks API (tasks/v1) and provides functionality for:
//   - Managing task lists (list, get, create, update, delete)
//   - Managing tasks (list, get, save, create at a position, move, delete)
//   - Clearing completed tasks from a list
//   - Filtering tasks by completion, due and update dates and by visibility
//
// Both task lists and tasks are paged by an opaque continuation token; see
// paging.TokenPage. An empty task list ID always means the user's default
// list, "@default".
//
// # Example Usage
//
//	client, err := tasks.NewClient(ctx, httpClient, tasks.WithMetrics(m))
//	if err != nil {
//	    return err
//	}
//
//	page, err := client.Tasks(ctx, tasks.TaskQuery{
//	    ListID: "@default",
//	    DueMax: time.Now().AddDate(0, 0, 7),
//	})
package tasks
