package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/teemow/quickstart/internal/contacts"
	"github.com/teemow/quickstart/internal/google"
	"github.com/teemow/quickstart/internal/instrumentation"
	"github.com/teemow/quickstart/internal/paging"
	"github.com/teemow/quickstart/internal/plus"
	"github.com/teemow/quickstart/internal/profile"
	"github.com/teemow/quickstart/internal/server"
	"github.com/teemow/quickstart/internal/tasks"
)

// ProfileService reads the signed-in user's profile.
type ProfileService interface {
	Profile(ctx context.Context) (*profile.Profile, error)
}

// ContactsService manages contacts, contact groups and contact pictures.
type ContactsService interface {
	Contacts(ctx context.Context, q contacts.ContactQuery) (paging.IndexPage[contacts.Contact], error)
	Contact(ctx context.Context, url string) (*contacts.Contact, error)
	SaveContact(ctx context.Context, c contacts.Contact) (*contacts.Contact, error)
	DeleteContact(ctx context.Context, url string) error

	ContactGroups(ctx context.Context, q contacts.GroupQuery) (paging.IndexPage[contacts.ContactGroup], error)
	ContactGroupList(ctx context.Context) ([]contacts.ContactGroup, error)
	ContactGroup(ctx context.Context, url string) (*contacts.ContactGroup, error)
	SaveContactGroup(ctx context.Context, g contacts.ContactGroup) (*contacts.ContactGroup, error)
	DeleteContactGroup(ctx context.Context, url string) error

	ProfilePicture(ctx context.Context, url string) ([]byte, error)
	UploadProfilePicture(ctx context.Context, url string, data []byte) error
}

// PlusService browses Google+ people, activities and comments.
type PlusService interface {
	Person(ctx context.Context, id string) (*plus.Person, error)
	SearchPeople(ctx context.Context, text, pageToken string) (paging.TokenPage[plus.Person], error)
	PlusOners(ctx context.Context, activityID, pageToken string) (paging.TokenPage[plus.Person], error)
	Resharers(ctx context.Context, activityID, pageToken string) (paging.TokenPage[plus.Person], error)

	Activity(ctx context.Context, id string) (*plus.Activity, error)
	Activities(ctx context.Context, personID, pageToken string) (paging.TokenPage[plus.Activity], error)
	SearchActivities(ctx context.Context, text, pageToken string) (paging.TokenPage[plus.Activity], error)

	Comments(ctx context.Context, activityID, pageToken string) (paging.TokenPage[plus.Comment], error)
	Comment(ctx context.Context, id string) (*plus.Comment, error)
}

// TasksService manages task lists and tasks.
type TasksService interface {
	TaskLists(ctx context.Context, q tasks.TaskListQuery) (paging.TokenPage[tasks.TaskList], error)
	TaskList(ctx context.Context, id string) (*tasks.TaskList, error)
	SaveTaskList(ctx context.Context, list tasks.TaskList) (*tasks.TaskList, error)
	DeleteTaskList(ctx context.Context, id string) error

	Tasks(ctx context.Context, q tasks.TaskQuery) (paging.TokenPage[tasks.Task], error)
	Task(ctx context.Context, listID, id string) (*tasks.Task, error)
	SaveTask(ctx context.Context, listID string, task tasks.Task) (*tasks.Task, error)
	CreateTaskAt(ctx context.Context, listID, parent, previous string, task tasks.Task) (*tasks.Task, error)
	MoveTask(ctx context.Context, listID, id, parent, previous string) (*tasks.Task, error)
	DeleteTask(ctx context.Context, listID, id string) error
	ClearCompletedTasks(ctx context.Context, listID string) error
}

// Clients is the set of Google clients of one request. It is built per
// request and handed to the handler explicitly.
type Clients struct {
	SessionID string

	Profile  ProfileService
	Contacts ContactsService
	Plus     PlusService
	Tasks    TasksService
}

// ClientFactory builds the clients of a request.
type ClientFactory interface {
	// ForSession authenticates as the session's user. It returns
	// google.ErrNotSignedIn when the session is unknown.
	ForSession(ctx context.Context, sessionID string) (*Clients, error)

	// ForToken authenticates with a freshly exchanged token, before a
	// session exists.
	ForToken(ctx context.Context, token *oauth2.Token) (*Clients, error)
}

// GoogleClientFactory builds clients backed by the Google APIs, with tokens
// taken from the session store. Refreshed tokens are written back.
type GoogleClientFactory struct {
	oauth   *oauth2.Config
	tokens  google.TokenProvider
	metrics *instrumentation.Metrics

	plusBaseURL string
}

// FactoryOption configures a GoogleClientFactory.
type FactoryOption func(*GoogleClientFactory)

// WithPlusBaseURL points the Google+ client at another API root.
func WithPlusBaseURL(baseURL string) FactoryOption {
	return func(f *GoogleClientFactory) { f.plusBaseURL = baseURL }
}

// NewGoogleClientFactory creates a factory. metrics may be nil.
func NewGoogleClientFactory(conf *oauth2.Config, sessions server.SessionStore, metrics *instrumentation.Metrics, opts ...FactoryOption) *GoogleClientFactory {
	f := &GoogleClientFactory{
		oauth:   conf,
		tokens:  server.NewTokenProvider(sessions),
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ForSession implements ClientFactory.
func (f *GoogleClientFactory) ForSession(ctx context.Context, sessionID string) (*Clients, error) {
	ts, err := google.NewSessionTokenSource(ctx, f.oauth, f.tokens, sessionID)
	if err != nil {
		if errors.Is(err, google.ErrNotSignedIn) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load session token: %w", err)
	}
	clients, err := f.build(ctx, google.NewHTTPClient(ts))
	if err != nil {
		return nil, err
	}
	clients.SessionID = sessionID
	return clients, nil
}

// ForToken implements ClientFactory.
func (f *GoogleClientFactory) ForToken(ctx context.Context, token *oauth2.Token) (*Clients, error) {
	return f.build(ctx, google.NewHTTPClient(f.oauth.TokenSource(ctx, token)))
}

func (f *GoogleClientFactory) build(ctx context.Context, httpClient *http.Client) (*Clients, error) {
	profileClient, err := profile.NewClient(ctx, httpClient, profile.WithMetrics(f.metrics))
	if err != nil {
		return nil, fmt.Errorf("failed to create profile client: %w", err)
	}
	contactsClient, err := contacts.NewClient(ctx, httpClient, contacts.WithMetrics(f.metrics))
	if err != nil {
		return nil, fmt.Errorf("failed to create contacts client: %w", err)
	}
	tasksClient, err := tasks.NewClient(ctx, httpClient, tasks.WithMetrics(f.metrics))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks client: %w", err)
	}

	plusOpts := []plus.Option{plus.WithMetrics(f.metrics)}
	if f.plusBaseURL != "" {
		plusOpts = append(plusOpts, plus.WithBaseURL(f.plusBaseURL))
	}

	return &Clients{
		Profile:  profileClient,
		Contacts: contactsClient,
		Plus:     plus.NewClient(httpClient, plusOpts...),
		Tasks:    tasksClient,
	}, nil
}
