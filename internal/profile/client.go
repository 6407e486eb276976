// Package profile reads the signed-in user's Google profile.
package profile

import (
	"context"
	"fmt"
	"net/http"

	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/teemow/quickstart/internal/instrumentation"
)

// Profile is the basic profile of the signed-in user.
type Profile struct {
	ID            string
	Email         string
	VerifiedEmail bool
	Name          string
	GivenName     string
	FamilyName    string
	Picture       string
	Locale        string
	Link          string
	HostedDomain  string
}

// Client wraps the OAuth2 v2 userinfo endpoint.
type Client struct {
	svc     *oauth2api.Service
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

// NewClient creates a profile client that authenticates through httpClient.
func NewClient(ctx context.Context, httpClient *http.Client, opts ...Option) (*Client, error) {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	clientOpts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if o.endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(o.endpoint))
	}

	svc, err := oauth2api.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OAuth2 service: %w", err)
	}
	return &Client{svc: svc, metrics: o.metrics}, nil
}

// Profile returns the profile of the signed-in user.
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var info *oauth2api.Userinfo
	err := instrumentation.ObserveGoogleAPI(ctx, c.metrics, instrumentation.ServiceProfile, instrumentation.OperationGet,
		func(ctx context.Context) error {
			var err error
			info, err = c.svc.Userinfo.Get().Context(ctx).Do()
			return err
		})
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}

	p := &Profile{
		ID:           info.Id,
		Email:        info.Email,
		Name:         info.Name,
		GivenName:    info.GivenName,
		FamilyName:   info.FamilyName,
		Picture:      info.Picture,
		Locale:       info.Locale,
		Link:         info.Link,
		HostedDomain: info.Hd,
	}
	if info.VerifiedEmail != nil {
		p.VerifiedEmail = *info.VerifiedEmail
	}
	return p, nil
}
