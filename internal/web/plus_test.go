package web

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/quickstart/internal/paging"
	"github.com/teemow/quickstart/internal/plus"
)

func TestPerson(t *testing.T) {
	env := newTestEnv(t)

	w := env.get("/person?id=42")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Person 42"}, env.factory.plus.Calls())
	assert.Contains(t, w.Body.String(), "Person 42")
	assert.Contains(t, w.Body.String(), "/activities?person=42")
}

func TestPerson_WithoutIDRedirects(t *testing.T) {
	env := newTestEnv(t)

	w := env.get("/person?id=%20")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/people", w.Header().Get("Location"))
	assert.Empty(t, env.factory.plus.Calls())
}

func TestPeople(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{name: "plus-oners", target: "/people?plusoners=a1&text=ignored", want: []string{"PlusOners a1 "}},
		{name: "resharers", target: "/people?resharers=a1&pageToken=p2", want: []string{"Resharers a1 p2"}},
		{name: "search", target: "/people?text=+ada+", want: []string{"SearchPeople ada "}},
		{name: "nothing", target: "/people", want: nil},
		{name: "blank search", target: "/people?text=%20", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			w := env.get(tt.target)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, env.factory.plus.Calls())
		})
	}
}

func TestPeople_NextPage(t *testing.T) {
	env := newTestEnv(t)
	env.factory.plus.people = paging.TokenPage[plus.Person]{
		Items:         []plus.Person{{ID: "7", DisplayName: "Grace Hopper"}},
		NextPageToken: "n2",
	}

	w := env.get("/people?text=grace")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Grace Hopper")
	assert.Contains(t, body, `href="/person?id=7"`)
	assert.Contains(t, body, "pageToken=n2")
}

func TestActivities(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{name: "own activities", target: "/activities", want: []string{"Activities me "}},
		{name: "person", target: "/activities?person=42&pageToken=p2", want: []string{"Activities 42 p2"}},
		{name: "search", target: "/activities?text=go", want: []string{"SearchActivities go "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			w := env.get(tt.target)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, env.factory.plus.Calls())
		})
	}
}

func TestActivity(t *testing.T) {
	env := newTestEnv(t)

	w := env.get("/activity?id=a1")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Activity a1")
	assert.Contains(t, body, "<b>bold</b>")
	assert.Contains(t, body, "/people?plusoners=a1")
	assert.Contains(t, body, "/comments?activity=a1")
}

func TestComments(t *testing.T) {
	env := newTestEnv(t)
	env.factory.plus.comments = paging.TokenPage[plus.Comment]{
		Items: []plus.Comment{{ID: "c1", Content: "first!", Actor: plus.Actor{ID: "7", DisplayName: "Grace"}}},
	}

	w := env.get("/comments?activity=a1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Comments a1 "}, env.factory.plus.Calls())
	assert.Contains(t, w.Body.String(), "first!")
	assert.NotContains(t, w.Body.String(), ">Next<")

	w = env.get("/comment?id=c1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "nice")
}

func TestNextURL(t *testing.T) {
	q := url.Values{"text": {"ada"}, "pageToken": {"p1"}}

	assert.Equal(t, "", nextURL("/people", q, ""))
	assert.Equal(t, "/people?pageToken=p2&text=ada", nextURL("/people", q, "p2"))
	assert.Equal(t, []string{"p1"}, q["pageToken"], "the request query is not modified")
	assert.Equal(t, "/tasks?list=%40default&pageToken=x", nextURL("/tasks", url.Values{"list": {"@default"}}, "x"))
}

func TestIndexURL(t *testing.T) {
	q := url.Values{"groupId": {"g1"}, "startIndex": {"1"}}

	assert.Equal(t, "/contacts?groupId=g1&startIndex=26", indexURL("/contacts", q, 26))
	assert.Equal(t, []string{"1"}, q["startIndex"])
}
