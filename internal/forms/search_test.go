package forms

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/quickstart/internal/contacts"
	"github.com/teemow/quickstart/internal/tasks"
)

func TestContactSearchForm_AbsentFiltersStayUnset(t *testing.T) {
	f, errs := ParseContactSearchForm(url.Values{})
	require.False(t, errs.Any())
	assert.Equal(t, contacts.ContactQuery{}, f.Query())
}

func TestContactSearchForm_Query(t *testing.T) {
	f, errs := ParseContactSearchForm(url.Values{
		"text":       {"ada"},
		"startIndex": {"26"},
		"maxResults": {"25"},
		"updatedMin": {"2025-10-01"},
		"groupId":    {"friends"},
	})
	require.False(t, errs.Any())

	assert.Equal(t, contacts.ContactQuery{
		Text:       "ada",
		StartIndex: 26,
		MaxResults: 25,
		UpdatedMin: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
		GroupID:    "friends",
	}, f.Query())
}

func TestContactSearchForm_BindingErrors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "non-numeric start", key: "startIndex", value: "first"},
		{name: "zero start", key: "startIndex", value: "0"},
		{name: "negative size", key: "maxResults", value: "-5"},
		{name: "bad date", key: "updatedMax", value: "2025-13-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := ParseContactSearchForm(url.Values{tt.key: {tt.value}})
			assert.True(t, errs.Has(tt.key), "expected error on %q, got %v", tt.key, errs)
		})
	}
}

func TestSearchForm_Query(t *testing.T) {
	f, errs := ParseSearchForm(url.Values{"startIndex": {"3"}, "updatedMax": {"2025-10-02T10:00:00Z"}})
	require.False(t, errs.Any())
	assert.Equal(t, contacts.GroupQuery{
		StartIndex: 3,
		UpdatedMax: time.Date(2025, 10, 2, 10, 0, 0, 0, time.UTC),
	}, f.Query())
}

func TestTaskSearchForm_TriState(t *testing.T) {
	yes, no := true, false

	tests := []struct {
		name  string
		value string
		want  *bool
	}{
		{name: "absent", value: "", want: nil},
		{name: "any", value: "any", want: nil},
		{name: "true", value: "true", want: &yes},
		{name: "checkbox on", value: "on", want: &yes},
		{name: "false", value: "false", want: &no},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, errs := ParseTaskSearchForm(url.Values{"includeCompleted": {tt.value}})
			require.False(t, errs.Any())
			assert.Equal(t, tt.want, f.Query().ShowCompleted)
			assert.Nil(t, f.Query().ShowDeleted)
			assert.Nil(t, f.Query().ShowHidden)
		})
	}

	_, errs := ParseTaskSearchForm(url.Values{"includeHidden": {"sometimes"}})
	assert.True(t, errs.Has("includeHidden"))
}

func TestTaskSearchForm_Query(t *testing.T) {
	f, errs := ParseTaskSearchForm(url.Values{
		"list":         {"l1"},
		"pageToken":    {"tok"},
		"dueMin":       {"2025-11-01"},
		"dueMax":       {"2025-11-30"},
		"completedMin": {"2025-10-01"},
	})
	require.False(t, errs.Any())

	assert.Equal(t, tasks.TaskQuery{
		ListID:       "l1",
		PageToken:    "tok",
		DueMin:       time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
		DueMax:       time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC),
		CompletedMin: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
	}, f.Query())
}

func TestErrors(t *testing.T) {
	errs := Errors{}
	assert.False(t, errs.Any())

	errs.Add("name", "first")
	errs.Add("name", "second")
	assert.Equal(t, "first", errs.Get("name"))
	assert.True(t, errs.Has("name"))
	assert.Equal(t, "", errs.Get("other"))
}
