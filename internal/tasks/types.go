package tasks

import (
	"time"

	tasks "google.golang.org/api/tasks/v1"
)

// DefaultListID addresses the user's default task list.
const DefaultListID = "@default"

// Task status values.
const (
	StatusNeedsAction = "needsAction"
	StatusCompleted   = "completed"
)

// TaskList represents a Google Tasks task list
type TaskList struct {
	ID      string
	Title   string
	Updated time.Time
}

// Task represents a Google Tasks task
type Task struct {
	ID        string
	Title     string
	Notes     string
	Status    string // "needsAction" or "completed"
	Due       time.Time
	Completed time.Time
	Updated   time.Time
	Parent    string // Parent task ID for subtasks
	Position  string // Position among siblings
	Deleted   bool
	Hidden    bool
	Links     []Link
}

// IsCompleted reports whether the task is completed.
func (t Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// Link represents a related link in a task
type Link struct {
	Type        string
	Description string
	Link        string
}

// TaskListQuery selects one page of task lists.
type TaskListQuery struct {
	PageToken  string
	MaxResults int64
}

// TaskQuery selects one page of tasks. Zero values mean "no filter".
// The Show* flags are tri-state: nil leaves the API default in place.
type TaskQuery struct {
	ListID     string
	PageToken  string
	MaxResults int64

	CompletedMin time.Time
	CompletedMax time.Time
	DueMin       time.Time
	DueMax       time.Time
	UpdatedMin   time.Time

	ShowCompleted *bool
	ShowDeleted   *bool
	ShowHidden    *bool
}

// toTaskList converts a Google Tasks TaskList to our TaskList type
func toTaskList(tl *tasks.TaskList) TaskList {
	if tl == nil {
		return TaskList{}
	}

	return TaskList{
		ID:      tl.Id,
		Title:   tl.Title,
		Updated: parseTime(tl.Updated),
	}
}

// toTask converts a Google Tasks Task to our Task type
func toTask(t *tasks.Task) Task {
	if t == nil {
		return Task{}
	}

	result := Task{
		ID:       t.Id,
		Title:    t.Title,
		Notes:    t.Notes,
		Status:   t.Status,
		Due:      parseTime(t.Due),
		Updated:  parseTime(t.Updated),
		Parent:   t.Parent,
		Position: t.Position,
		Deleted:  t.Deleted,
		Hidden:   t.Hidden,
	}

	if t.Completed != nil {
		result.Completed = parseTime(*t.Completed)
	}

	for _, link := range t.Links {
		result.Links = append(result.Links, Link{
			Type:        link.Type,
			Description: link.Description,
			Link:        link.Link,
		})
	}

	return result
}

// applyTask copies the editable fields of t onto the API resource. Fields
// that are zero in t are cleared on the resource.
func applyTask(dst *tasks.Task, t Task) {
	dst.Title = t.Title
	dst.Notes = t.Notes
	dst.Due = formatTime(t.Due)

	dst.Status = t.Status
	if dst.Status == "" {
		dst.Status = StatusNeedsAction
	}
	if !t.Completed.IsZero() {
		completed := formatTime(t.Completed)
		dst.Completed = &completed
		dst.Status = StatusCompleted
	} else {
		dst.Completed = nil
	}
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func resolveList(id string) string {
	if id == "" {
		return DefaultListID
	}
	return id
}
