package google

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// OAuthConfig describes the web application OAuth client.
type OAuthConfig struct {
	// ClientID and ClientSecret identify the OAuth client. They may be left
	// empty when CredentialsFile is set.
	ClientID     string
	ClientSecret string

	// CredentialsFile is a client_secret.json downloaded from the Google
	// Cloud console.
	CredentialsFile string

	// RedirectURL is the absolute URL of the OAuth callback route.
	RedirectURL string

	// Scopes defaults to DefaultOAuthScopes.
	Scopes []string
}

// NewOAuthConfig builds the oauth2.Config for the web sign-in flow.
// Explicit client credentials take precedence over a credentials file.
func NewOAuthConfig(cfg OAuthConfig) (*oauth2.Config, error) {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultOAuthScopes
	}
	if cfg.RedirectURL == "" {
		return nil, errors.New("OAuth redirect URL is required")
	}

	if cfg.ClientID == "" && cfg.CredentialsFile != "" {
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		conf, err := google.ConfigFromJSON(data, scopes...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse credentials file: %w", err)
		}
		conf.RedirectURL = cfg.RedirectURL
		return conf, nil
	}

	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("google client ID and secret are required (or a credentials file)")
	}

	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       scopes,
	}, nil
}

// AuthCodeURL returns the consent URL for the given state. Offline access is
// requested so that the session keeps a refresh token.
func AuthCodeURL(conf *oauth2.Config, state string) string {
	return conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

// NewState returns a random value for the OAuth state parameter.
func NewState() string {
	return uuid.NewString()
}

// NewHTTPClient returns an HTTP client that authenticates with ts.
// The client is configured to use HTTP/1.1 to avoid HTTP/2 protocol errors.
func NewHTTPClient(ts oauth2.TokenSource) *http.Client {
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: ts,
			Base: &http.Transport{
				Proxy:             http.ProxyFromEnvironment,
				ForceAttemptHTTP2: false,
			},
		},
	}
}
