package plus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/microcosm-cc/bluemonday"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"

	"github.com/teemow/quickstart/internal/instrumentation"
	"github.com/teemow/quickstart/internal/paging"
)

// DefaultBaseURL is the Google+ v1 API root.
const DefaultBaseURL = "https://www.googleapis.com/plus/v1/"

// Me addresses the signed-in user.
const Me = "me"

const (
	collectionPublic    = "public"
	collectionPlusoners = "plusoners"
	collectionResharers = "resharers"
)

// Client reads Google+ people, activities and comments.
type Client struct {
	httpClient *http.Client
	baseURL    string
	policy     *bluemonday.Policy
	metrics    *instrumentation.Metrics
}

type clientOptions struct {
	metrics *instrumentation.Metrics
	baseURL string
}

// Option configures a Client.
type Option func(*clientOptions)

// WithMetrics records every API call on m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(o *clientOptions) { o.metrics = m }
}

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) { o.baseURL = baseURL }
}

// NewClient creates a Google+ client that authenticates through httpClient.
func NewClient(httpClient *http.Client, opts ...Option) *Client {
	o := clientOptions{baseURL: DefaultBaseURL}
	for _, opt := range opts {
		opt(&o)
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    o.baseURL,
		policy:     bluemonday.UGCPolicy(),
		metrics:    o.metrics,
	}
}

// get expands path against the base URL, sends the non-empty params and
// decodes the JSON answer into v.
func (c *Client) get(ctx context.Context, operation, path string, expansions map[string]string, params map[string]string, v any) error {
	u, err := url.Parse(googleapi.ResolveRelative(c.baseURL, path))
	if err != nil {
		return fmt.Errorf("invalid request path %q: %w", path, err)
	}
	googleapi.Expand(u, expansions)

	q := u.Query()
	for k, val := range params {
		if val != "" {
			q.Set(k, val)
		}
	}
	q.Set("alt", "json")
	u.RawQuery = q.Encode()

	var attrs []attribute.KeyValue
	for k, id := range expansions {
		if k != "collection" {
			attrs = append(attrs, instrumentation.ResourceID(id))
		}
	}

	return instrumentation.ObserveGoogleAPI(ctx, c.metrics, instrumentation.ServicePlus, operation, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if err := googleapi.CheckResponse(resp); err != nil {
			return err
		}
		return json.NewDecoder(resp.Body).Decode(v)
	}, attrs...)
}

// Person retrieves a profile. Use Me for the signed-in user.
func (c *Client) Person(ctx context.Context, id string) (*Person, error) {
	var res personResource
	err := c.get(ctx, instrumentation.OperationGet, "people/{userId}",
		map[string]string{"userId": id}, nil, &res)
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	p := toPerson(res, c.policy)
	return &p, nil
}

// SearchPeople returns one page of profiles matching text.
func (c *Client) SearchPeople(ctx context.Context, text, pageToken string) (paging.TokenPage[Person], error) {
	var res feed[personResource]
	err := c.get(ctx, instrumentation.OperationSearch, "people", nil,
		map[string]string{"query": text, "pageToken": pageToken}, &res)
	if err != nil {
		return paging.TokenPage[Person]{}, fmt.Errorf("failed to search people: %w", err)
	}
	return c.peoplePage(res, pageToken), nil
}

// PlusOners returns one page of the people who +1'd an activity.
func (c *Client) PlusOners(ctx context.Context, activityID, pageToken string) (paging.TokenPage[Person], error) {
	return c.activityPeople(ctx, activityID, collectionPlusoners, pageToken)
}

// Resharers returns one page of the people who reshared an activity.
func (c *Client) Resharers(ctx context.Context, activityID, pageToken string) (paging.TokenPage[Person], error) {
	return c.activityPeople(ctx, activityID, collectionResharers, pageToken)
}

func (c *Client) activityPeople(ctx context.Context, activityID, collection, pageToken string) (paging.TokenPage[Person], error) {
	var res feed[personResource]
	err := c.get(ctx, instrumentation.OperationList, "activities/{activityId}/people/{collection}",
		map[string]string{"activityId": activityID, "collection": collection},
		map[string]string{"pageToken": pageToken}, &res)
	if err != nil {
		return paging.TokenPage[Person]{}, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	return c.peoplePage(res, pageToken), nil
}

func (c *Client) peoplePage(res feed[personResource], pageToken string) paging.TokenPage[Person] {
	page := paging.TokenPage[Person]{
		Items:         make([]Person, 0, len(res.Items)),
		PageToken:     pageToken,
		NextPageToken: res.NextPageToken,
	}
	for _, p := range res.Items {
		page.Items = append(page.Items, toPerson(p, c.policy))
	}
	return page
}

// Activity retrieves one activity.
func (c *Client) Activity(ctx context.Context, id string) (*Activity, error) {
	var res activityResource
	err := c.get(ctx, instrumentation.OperationGet, "activities/{activityId}",
		map[string]string{"activityId": id}, nil, &res)
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	a := toActivity(res, c.policy)
	return &a, nil
}

// Activities returns one page of the public activities of a person. An
// empty person means Me.
func (c *Client) Activities(ctx context.Context, personID, pageToken string) (paging.TokenPage[Activity], error) {
	if personID == "" {
		personID = Me
	}
	var res feed[activityResource]
	err := c.get(ctx, instrumentation.OperationList, "people/{userId}/activities/{collection}",
		map[string]string{"userId": personID, "collection": collectionPublic},
		map[string]string{"pageToken": pageToken}, &res)
	if err != nil {
		return paging.TokenPage[Activity]{}, fmt.Errorf("failed to list activities: %w", err)
	}
	return c.activityPage(res, pageToken), nil
}

// SearchActivities returns one page of public activities matching text.
func (c *Client) SearchActivities(ctx context.Context, text, pageToken string) (paging.TokenPage[Activity], error) {
	var res feed[activityResource]
	err := c.get(ctx, instrumentation.OperationSearch, "activities", nil,
		map[string]string{"query": text, "pageToken": pageToken}, &res)
	if err != nil {
		return paging.TokenPage[Activity]{}, fmt.Errorf("failed to search activities: %w", err)
	}
	return c.activityPage(res, pageToken), nil
}

func (c *Client) activityPage(res feed[activityResource], pageToken string) paging.TokenPage[Activity] {
	page := paging.TokenPage[Activity]{
		Items:         make([]Activity, 0, len(res.Items)),
		PageToken:     pageToken,
		NextPageToken: res.NextPageToken,
	}
	for _, a := range res.Items {
		page.Items = append(page.Items, toActivity(a, c.policy))
	}
	return page
}

// Comments returns one page of the comments on an activity.
func (c *Client) Comments(ctx context.Context, activityID, pageToken string) (paging.TokenPage[Comment], error) {
	var res feed[commentResource]
	err := c.get(ctx, instrumentation.OperationList, "activities/{activityId}/comments",
		map[string]string{"activityId": activityID},
		map[string]string{"pageToken": pageToken}, &res)
	if err != nil {
		return paging.TokenPage[Comment]{}, fmt.Errorf("failed to list comments: %w", err)
	}

	page := paging.TokenPage[Comment]{
		Items:         make([]Comment, 0, len(res.Items)),
		PageToken:     pageToken,
		NextPageToken: res.NextPageToken,
	}
	for _, cm := range res.Items {
		page.Items = append(page.Items, toComment(cm, c.policy))
	}
	return page, nil
}

// Comment retrieves one comment.
func (c *Client) Comment(ctx context.Context, id string) (*Comment, error) {
	var res commentResource
	err := c.get(ctx, instrumentation.OperationGet, "comments/{commentId}",
		map[string]string{"commentId": id}, nil, &res)
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	cm := toComment(res, c.policy)
	return &cm, nil
}
