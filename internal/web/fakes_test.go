package web

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"golang.org/x/oauth2"

	"github.com/teemow/quickstart/internal/contacts"
	"github.com/teemow/quickstart/internal/google"
	"github.com/teemow/quickstart/internal/paging"
	"github.com/teemow/quickstart/internal/plus"
	"github.com/teemow/quickstart/internal/profile"
	"github.com/teemow/quickstart/internal/server"
	"github.com/teemow/quickstart/internal/tasks"
)

// recorder collects the calls made on a fake. err is returned by every call
// when set.
type recorder struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (r *recorder) record(format string, args ...any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
	return r.err
}

func (r *recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type fakeProfile struct {
	recorder
	profile profile.Profile
}

func (f *fakeProfile) Profile(context.Context) (*profile.Profile, error) {
	if err := f.record("Profile"); err != nil {
		return nil, err
	}
	p := f.profile
	return &p, nil
}

type fakeContacts struct {
	recorder
	contact  contacts.Contact
	groups   []contacts.ContactGroup
	page     paging.IndexPage[contacts.Contact]
	picture  []byte
	uploaded []byte

	lastQuery      contacts.ContactQuery
	lastGroupQuery contacts.GroupQuery
	saved          contacts.Contact
	savedGroup     contacts.ContactGroup
}

func (f *fakeContacts) Contacts(_ context.Context, q contacts.ContactQuery) (paging.IndexPage[contacts.Contact], error) {
	f.lastQuery = q
	return f.page, f.record("Contacts")
}

func (f *fakeContacts) Contact(_ context.Context, u string) (*contacts.Contact, error) {
	if err := f.record("Contact %s", u); err != nil {
		return nil, err
	}
	c := f.contact
	return &c, nil
}

func (f *fakeContacts) SaveContact(_ context.Context, c contacts.Contact) (*contacts.Contact, error) {
	f.saved = c
	if err := f.record("SaveContact %s", c.URL); err != nil {
		return nil, err
	}
	return &c, nil
}

func (f *fakeContacts) DeleteContact(_ context.Context, u string) error {
	return f.record("DeleteContact %s", u)
}

func (f *fakeContacts) ContactGroups(_ context.Context, q contacts.GroupQuery) (paging.IndexPage[contacts.ContactGroup], error) {
	f.lastGroupQuery = q
	return paging.Window(f.groups, q.StartIndex, q.MaxResults), f.record("ContactGroups")
}

func (f *fakeContacts) ContactGroupList(context.Context) ([]contacts.ContactGroup, error) {
	return f.groups, f.record("ContactGroupList")
}

func (f *fakeContacts) ContactGroup(_ context.Context, u string) (*contacts.ContactGroup, error) {
	if err := f.record("ContactGroup %s", u); err != nil {
		return nil, err
	}
	for _, g := range f.groups {
		if g.URL == u {
			return &g, nil
		}
	}
	return nil, contacts.ErrNotFound
}

func (f *fakeContacts) SaveContactGroup(_ context.Context, g contacts.ContactGroup) (*contacts.ContactGroup, error) {
	f.savedGroup = g
	if err := f.record("SaveContactGroup %s", g.URL); err != nil {
		return nil, err
	}
	return &g, nil
}

func (f *fakeContacts) DeleteContactGroup(_ context.Context, u string) error {
	return f.record("DeleteContactGroup %s", u)
}

func (f *fakeContacts) ProfilePicture(_ context.Context, u string) ([]byte, error) {
	return f.picture, f.record("ProfilePicture %s", u)
}

func (f *fakeContacts) UploadProfilePicture(_ context.Context, u string, data []byte) error {
	f.uploaded = data
	return f.record("UploadProfilePicture %s", u)
}

type fakePlus struct {
	recorder
	people     paging.TokenPage[plus.Person]
	activities paging.TokenPage[plus.Activity]
	comments   paging.TokenPage[plus.Comment]
}

func (f *fakePlus) Person(_ context.Context, id string) (*plus.Person, error) {
	if err := f.record("Person %s", id); err != nil {
		return nil, err
	}
	return &plus.Person{ID: id, DisplayName: "Person " + id}, nil
}

func (f *fakePlus) SearchPeople(_ context.Context, text, pageToken string) (paging.TokenPage[plus.Person], error) {
	return f.people, f.record("SearchPeople %s %s", text, pageToken)
}

func (f *fakePlus) PlusOners(_ context.Context, activityID, pageToken string) (paging.TokenPage[plus.Person], error) {
	return f.people, f.record("PlusOners %s %s", activityID, pageToken)
}

func (f *fakePlus) Resharers(_ context.Context, activityID, pageToken string) (paging.TokenPage[plus.Person], error) {
	return f.people, f.record("Resharers %s %s", activityID, pageToken)
}

func (f *fakePlus) Activity(_ context.Context, id string) (*plus.Activity, error) {
	if err := f.record("Activity %s", id); err != nil {
		return nil, err
	}
	return &plus.Activity{ID: id, Title: "Activity " + id, Content: "<b>bold</b>"}, nil
}

func (f *fakePlus) Activities(_ context.Context, personID, pageToken string) (paging.TokenPage[plus.Activity], error) {
	return f.activities, f.record("Activities %s %s", personID, pageToken)
}

func (f *fakePlus) SearchActivities(_ context.Context, text, pageToken string) (paging.TokenPage[plus.Activity], error) {
	return f.activities, f.record("SearchActivities %s %s", text, pageToken)
}

func (f *fakePlus) Comments(_ context.Context, activityID, pageToken string) (paging.TokenPage[plus.Comment], error) {
	return f.comments, f.record("Comments %s %s", activityID, pageToken)
}

func (f *fakePlus) Comment(_ context.Context, id string) (*plus.Comment, error) {
	if err := f.record("Comment %s", id); err != nil {
		return nil, err
	}
	return &plus.Comment{ID: id, Content: "nice"}, nil
}

type fakeTasks struct {
	recorder
	task      tasks.Task
	taskLists paging.TokenPage[tasks.TaskList]
	tasks     paging.TokenPage[tasks.Task]

	lastQuery tasks.TaskQuery
	saved     tasks.Task
	savedList tasks.TaskList
}

func (f *fakeTasks) TaskLists(_ context.Context, q tasks.TaskListQuery) (paging.TokenPage[tasks.TaskList], error) {
	return f.taskLists, f.record("TaskLists %s", q.PageToken)
}

func (f *fakeTasks) TaskList(_ context.Context, id string) (*tasks.TaskList, error) {
	if err := f.record("TaskList %s", id); err != nil {
		return nil, err
	}
	return &tasks.TaskList{ID: id, Title: "List " + id}, nil
}

func (f *fakeTasks) SaveTaskList(_ context.Context, list tasks.TaskList) (*tasks.TaskList, error) {
	f.savedList = list
	if err := f.record("SaveTaskList %s", list.ID); err != nil {
		return nil, err
	}
	return &list, nil
}

func (f *fakeTasks) DeleteTaskList(_ context.Context, id string) error {
	return f.record("DeleteTaskList %s", id)
}

func (f *fakeTasks) Tasks(_ context.Context, q tasks.TaskQuery) (paging.TokenPage[tasks.Task], error) {
	f.lastQuery = q
	return f.tasks, f.record("Tasks %s", q.ListID)
}

func (f *fakeTasks) Task(_ context.Context, listID, id string) (*tasks.Task, error) {
	if err := f.record("Task %s %s", listID, id); err != nil {
		return nil, err
	}
	t := f.task
	t.ID = id
	return &t, nil
}

func (f *fakeTasks) SaveTask(_ context.Context, listID string, task tasks.Task) (*tasks.Task, error) {
	f.saved = task
	if err := f.record("SaveTask %s %s", listID, task.ID); err != nil {
		return nil, err
	}
	return &task, nil
}

func (f *fakeTasks) CreateTaskAt(_ context.Context, listID, parent, previous string, task tasks.Task) (*tasks.Task, error) {
	f.saved = task
	if err := f.record("CreateTaskAt %s %s %s", listID, parent, previous); err != nil {
		return nil, err
	}
	return &task, nil
}

func (f *fakeTasks) MoveTask(_ context.Context, listID, id, parent, previous string) (*tasks.Task, error) {
	if err := f.record("MoveTask %s %s %s %s", listID, id, parent, previous); err != nil {
		return nil, err
	}
	return &tasks.Task{ID: id}, nil
}

func (f *fakeTasks) DeleteTask(_ context.Context, listID, id string) error {
	return f.record("DeleteTask %s %s", listID, id)
}

func (f *fakeTasks) ClearCompletedTasks(_ context.Context, listID string) error {
	return f.record("ClearCompletedTasks %s", listID)
}

// fakeFactory hands out the same fakes to every signed-in request.
type fakeFactory struct {
	profile  *fakeProfile
	contacts *fakeContacts
	plus     *fakePlus
	tasks    *fakeTasks

	// err is returned by ForSession when set.
	err error
}

func (f *fakeFactory) clients(sessionID string) *Clients {
	return &Clients{
		SessionID: sessionID,
		Profile:   f.profile,
		Contacts:  f.contacts,
		Plus:      f.plus,
		Tasks:     f.tasks,
	}
}

func (f *fakeFactory) ForSession(_ context.Context, sessionID string) (*Clients, error) {
	if sessionID == "" {
		return nil, google.ErrNotSignedIn
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.clients(sessionID), nil
}

func (f *fakeFactory) ForToken(context.Context, *oauth2.Token) (*Clients, error) {
	return f.clients(""), nil
}

// setErr makes every upstream call fail with err.
func (f *fakeFactory) setErr(err error) {
	f.profile.err = err
	f.contacts.err = err
	f.plus.err = err
	f.tasks.err = err
}

// mutations returns the calls that change upstream data.
func (f *fakeFactory) mutations() []string {
	var out []string
	for _, calls := range [][]string{f.contacts.Calls(), f.tasks.Calls()} {
		for _, c := range calls {
			for _, prefix := range []string{"Save", "Delete", "Create", "Move", "Clear", "Upload"} {
				if strings.HasPrefix(c, prefix) {
					out = append(out, c)
				}
			}
		}
	}
	return out
}

type testEnv struct {
	t        *testing.T
	handler  *Handler
	sessions *server.MemoryStore
	factory  *fakeFactory
	session  *server.Session
}

func newTestEnv(t *testing.T, configure ...func(*Config)) *testEnv {
	t.Helper()

	store := server.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	factory := &fakeFactory{
		profile:  &fakeProfile{profile: profile.Profile{ID: "1", Name: "Ada Lovelace", Email: "ada@example.com"}},
		contacts: &fakeContacts{},
		plus:     &fakePlus{},
		tasks:    &fakeTasks{},
	}

	cfg := Config{
		OAuth: &oauth2.Config{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RedirectURL:  "http://example.com/oauth2/callback",
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://accounts.example.com/auth",
				TokenURL: "https://accounts.example.com/token",
			},
		},
		Sessions: store,
		Clients:  factory,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, fn := range configure {
		fn(&cfg)
	}

	h, err := NewHandler(cfg)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	session := server.NewSession(&oauth2.Token{AccessToken: "access"})
	session.Email = "ada@example.com"
	if err := store.Save(context.Background(), session); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	return &testEnv{t: t, handler: h, sessions: store, factory: factory, session: session}
}

// get performs a signed-in GET.
func (e *testEnv) get(target string) *httptest.ResponseRecorder {
	return e.serve(httptest.NewRequest(http.MethodGet, target, nil))
}

// post performs a signed-in form POST.
func (e *testEnv) post(target string, form url.Values) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.serve(r)
}

func (e *testEnv) serve(r *http.Request) *httptest.ResponseRecorder {
	r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: e.session.ID})
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, r)
	return w
}
