package forms

import (
	"net/url"

	"github.com/teemow/quickstart/internal/contacts"
	"github.com/teemow/quickstart/internal/tasks"
)

// SearchForm pages through contact groups.
type SearchForm struct {
	StartIndex string
	MaxResults string
	UpdatedMin string
	UpdatedMax string
}

// ParseSearchForm binds a group listing query.
func ParseSearchForm(values url.Values) (SearchForm, Errors) {
	b := newBinder(values)
	f := SearchForm{
		StartIndex: b.positiveInt("startIndex"),
		MaxResults: b.positiveInt("maxResults"),
		UpdatedMin: b.date("updatedMin"),
		UpdatedMax: b.date("updatedMax"),
	}
	return f, b.errs
}

// Query builds the group query. Empty fields stay unset.
func (f SearchForm) Query() contacts.GroupQuery {
	return contacts.GroupQuery{
		StartIndex: mustInt(f.StartIndex),
		MaxResults: mustInt(f.MaxResults),
		UpdatedMin: mustDate(f.UpdatedMin),
		UpdatedMax: mustDate(f.UpdatedMax),
	}
}

// ContactSearchForm pages through and searches contacts.
type ContactSearchForm struct {
	Text       string
	StartIndex string
	MaxResults string
	UpdatedMin string
	UpdatedMax string
	GroupID    string
}

// ParseContactSearchForm binds a contact listing query.
func ParseContactSearchForm(values url.Values) (ContactSearchForm, Errors) {
	b := newBinder(values)
	f := ContactSearchForm{
		Text:       b.text("text"),
		StartIndex: b.positiveInt("startIndex"),
		MaxResults: b.positiveInt("maxResults"),
		UpdatedMin: b.date("updatedMin"),
		UpdatedMax: b.date("updatedMax"),
		GroupID:    b.text("groupId"),
	}
	return f, b.errs
}

// Query builds the contact query. Empty fields stay unset.
func (f ContactSearchForm) Query() contacts.ContactQuery {
	return contacts.ContactQuery{
		Text:       f.Text,
		StartIndex: mustInt(f.StartIndex),
		MaxResults: mustInt(f.MaxResults),
		UpdatedMin: mustDate(f.UpdatedMin),
		UpdatedMax: mustDate(f.UpdatedMax),
		GroupID:    f.GroupID,
	}
}

// TaskSearchForm filters the tasks of one list.
type TaskSearchForm struct {
	List         string
	PageToken    string
	CompletedMin string
	CompletedMax string
	DueMin       string
	DueMax       string
	UpdatedMin   string

	IncludeCompleted string
	IncludeDeleted   string
	IncludeHidden    string
}

// ParseTaskSearchForm binds a task listing query.
func ParseTaskSearchForm(values url.Values) (TaskSearchForm, Errors) {
	b := newBinder(values)
	f := TaskSearchForm{
		List:             b.text("list"),
		PageToken:        b.text("pageToken"),
		CompletedMin:     b.date("completedMin"),
		CompletedMax:     b.date("completedMax"),
		DueMin:           b.date("dueMin"),
		DueMax:           b.date("dueMax"),
		UpdatedMin:       b.date("updatedMin"),
		IncludeCompleted: b.triState("includeCompleted"),
		IncludeDeleted:   b.triState("includeDeleted"),
		IncludeHidden:    b.triState("includeHidden"),
	}
	return f, b.errs
}

// Query builds the task query. Empty fields stay unset and an "any" flag
// leaves the API default in place.
func (f TaskSearchForm) Query() tasks.TaskQuery {
	return tasks.TaskQuery{
		ListID:        f.List,
		PageToken:     f.PageToken,
		CompletedMin:  mustDate(f.CompletedMin),
		CompletedMax:  mustDate(f.CompletedMax),
		DueMin:        mustDate(f.DueMin),
		DueMax:        mustDate(f.DueMax),
		UpdatedMin:    mustDate(f.UpdatedMin),
		ShowCompleted: triStatePtr(f.IncludeCompleted),
		ShowDeleted:   triStatePtr(f.IncludeDeleted),
		ShowHidden:    triStatePtr(f.IncludeHidden),
	}
}
