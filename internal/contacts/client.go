package contacts

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/option"
	people "google.golang.org/api/people/v1"

	"github.com/teemow/quickstart/internal/google"
	"github.com/teemow/quickstart/internal/instrumentation"
	"github.com/teemow/quickstart/internal/paging"
)

const (
	personFields       = "names,emailAddresses,phoneNumbers,photos,memberships,metadata"
	updatePersonFields = "names,emailAddresses,phoneNumbers,memberships"
	groupFields        = "name,groupType,memberCount,metadata"

	connectionsPageSize = 1000
	searchPageSize      = 30
	groupsPageSize      = 1000
	batchGetSize        = 200
	maxGroupMembers     = 25000
)

// Client wraps the People API for contacts and contact groups.
type Client struct {
	svc        *people.Service
	httpClient *http.Client
	metrics    *instrumentation.Metrics
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

// NewClient creates a contacts client that authenticates through httpClient.
// The same HTTP client downloads contact pictures.
func NewClient(ctx context.Context, httpClient *http.Client, opts ...Option) (*Client, error) {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	clientOpts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if o.endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(o.endpoint))
	}

	svc, err := people.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create People service: %w", err)
	}

	return &Client{
		svc:        svc,
		httpClient: httpClient,
		metrics:    o.metrics,
	}, nil
}

func (c *Client) observe(ctx context.Context, operation, resource string, fn func(context.Context) error) error {
	var attrs []attribute.KeyValue
	if resource != "" {
		attrs = append(attrs, instrumentation.ResourceID(resource))
	}
	return instrumentation.ObserveGoogleAPI(ctx, c.metrics, instrumentation.ServiceContacts, operation, fn, attrs...)
}

// notFound maps a 404 onto ErrNotFound and wraps anything else.
func notFound(err error, action, url string) error {
	if google.IsNotFound(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// Contacts returns one window of the contacts matching q.
//
// A text query is answered by the contact search, a group query by the
// group's member list and anything else by the full connection list. The
// update-time bounds and the group filter are applied locally.
func (c *Client) Contacts(ctx context.Context, q ContactQuery) (paging.IndexPage[Contact], error) {
	var (
		all []Contact
		err error
	)
	switch {
	case q.Text != "":
		all, err = c.searchContacts(ctx, q.Text)
	case q.GroupID != "":
		all, err = c.groupMembers(ctx, q.GroupID)
	default:
		all, err = c.connections(ctx)
	}
	if err != nil {
		return paging.IndexPage[Contact]{}, err
	}

	filtered := make([]Contact, 0, len(all))
	for _, contact := range all {
		if q.GroupID != "" && !contact.InGroup(GroupID(q.GroupID)) {
			continue
		}
		if !updatedWithin(contact.Updated, q.UpdatedMin, q.UpdatedMax) {
			continue
		}
		filtered = append(filtered, contact)
	}

	size := q.MaxResults
	if size <= 0 {
		size = DefaultPageSize
	}
	return paging.Window(filtered, q.StartIndex, size), nil
}

func (c *Client) connections(ctx context.Context) ([]Contact, error) {
	var result []Contact
	err := c.observe(ctx, instrumentation.OperationList, "", func(ctx context.Context) error {
		return c.svc.People.Connections.List(personPrefix+"me").
			PersonFields(personFields).
			PageSize(connectionsPageSize).
			Pages(ctx, func(resp *people.ListConnectionsResponse) error {
				for _, p := range resp.Connections {
					result = append(result, toContact(p))
				}
				return nil
			})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return result, nil
}

func (c *Client) searchContacts(ctx context.Context, text string) ([]Contact, error) {
	var resp *people.SearchResponse
	err := c.observe(ctx, instrumentation.OperationSearch, "", func(ctx context.Context) error {
		var err error
		resp, err = c.svc.People.SearchContacts().
			Query(text).
			ReadMask(personFields).
			PageSize(searchPageSize).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search contacts: %w", err)
	}

	var result []Contact
	for _, r := range resp.Results {
		if r != nil && r.Person != nil {
			result = append(result, toContact(r.Person))
		}
	}
	return result, nil
}

func (c *Client) groupMembers(ctx context.Context, groupID string) ([]Contact, error) {
	url := GroupURL(groupID)

	var group *people.ContactGroup
	err := c.observe(ctx, instrumentation.OperationGet, url, func(ctx context.Context) error {
		var err error
		group, err = c.svc.ContactGroups.Get(url).
			MaxMembers(maxGroupMembers).
			GroupFields(groupFields).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, notFound(err, "get contact group", url)
	}

	var result []Contact
	members := group.MemberResourceNames
	for len(members) > 0 {
		n := min(batchGetSize, len(members))
		batch := members[:n]
		members = members[n:]

		var resp *people.GetPeopleResponse
		err := c.observe(ctx, instrumentation.OperationList, url, func(ctx context.Context) error {
			var err error
			resp, err = c.svc.People.GetBatchGet().
				ResourceNames(batch...).
				PersonFields(personFields).
				Context(ctx).
				Do()
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get group members: %w", err)
		}

		for _, r := range resp.Responses {
			if r != nil && r.Person != nil {
				result = append(result, toContact(r.Person))
			}
		}
	}
	return result, nil
}

// Contact retrieves a contact by its URL.
func (c *Client) Contact(ctx context.Context, url string) (*Contact, error) {
	person, err := c.person(ctx, url, personFields)
	if err != nil {
		return nil, err
	}
	result := toContact(person)
	return &result, nil
}

func (c *Client) person(ctx context.Context, url, fields string) (*people.Person, error) {
	var person *people.Person
	err := c.observe(ctx, instrumentation.OperationGet, url, func(ctx context.Context) error {
		var err error
		person, err = c.svc.People.Get(url).PersonFields(fields).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, notFound(err, "get contact", url)
	}
	return person, nil
}

// SaveContact creates the contact when it has no URL. Otherwise the current
// etag is fetched and the names, addresses, numbers and memberships are
// replaced.
func (c *Client) SaveContact(ctx context.Context, contact Contact) (*Contact, error) {
	if contact.URL == "" {
		var created *people.Person
		err := c.observe(ctx, instrumentation.OperationCreate, "", func(ctx context.Context) error {
			var err error
			created, err = c.svc.People.CreateContact(toPerson(contact)).
				PersonFields(personFields).
				Context(ctx).
				Do()
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create contact: %w", err)
		}
		result := toContact(created)
		return &result, nil
	}

	current, err := c.person(ctx, contact.URL, "metadata")
	if err != nil {
		return nil, err
	}
	contact.ETag = current.Etag

	var updated *people.Person
	err = c.observe(ctx, instrumentation.OperationUpdate, contact.URL, func(ctx context.Context) error {
		var err error
		updated, err = c.svc.People.UpdateContact(contact.URL, toPerson(contact)).
			UpdatePersonFields(updatePersonFields).
			PersonFields(personFields).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, notFound(err, "update contact", contact.URL)
	}

	result := toContact(updated)
	return &result, nil
}

// DeleteContact deletes a contact by its URL.
func (c *Client) DeleteContact(ctx context.Context, url string) error {
	err := c.observe(ctx, instrumentation.OperationDelete, url, func(ctx context.Context) error {
		_, err := c.svc.People.DeleteContact(url).Context(ctx).Do()
		return err
	})
	if err != nil {
		return notFound(err, "delete contact", url)
	}
	return nil
}
