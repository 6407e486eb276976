package google

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOAuthConfig(t *testing.T) {
	tests := []struct {
		name        string
		cfg         OAuthConfig
		wantErr     bool
		errContains string
	}{
		{
			name: "explicit credentials",
			cfg: OAuthConfig{
				ClientID:     "client-id",
				ClientSecret: "client-secret",
				RedirectURL:  "http://localhost:8080/oauth2/callback",
			},
		},
		{
			name: "missing redirect",
			cfg: OAuthConfig{
				ClientID:     "client-id",
				ClientSecret: "client-secret",
			},
			wantErr:     true,
			errContains: "redirect URL",
		},
		{
			name: "missing secret",
			cfg: OAuthConfig{
				ClientID:    "client-id",
				RedirectURL: "http://localhost:8080/oauth2/callback",
			},
			wantErr:     true,
			errContains: "client ID and secret",
		},
		{
			name: "missing credentials file",
			cfg: OAuthConfig{
				CredentialsFile: "/nonexistent/client_secret.json",
				RedirectURL:     "http://localhost:8080/oauth2/callback",
			},
			wantErr:     true,
			errContains: "failed to read credentials file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf, err := NewOAuthConfig(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cfg.ClientID, conf.ClientID)
			assert.Equal(t, tt.cfg.RedirectURL, conf.RedirectURL)
			assert.Equal(t, DefaultOAuthScopes, conf.Scopes)
		})
	}
}

func TestNewOAuthConfig_CredentialsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client_secret.json")
	data := `{"web":{"client_id":"file-client","client_secret":"file-secret",` +
		`"auth_uri":"https://accounts.google.com/o/oauth2/auth",` +
		`"token_uri":"https://oauth2.googleapis.com/token",` +
		`"redirect_uris":["http://localhost/other"]}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	conf, err := NewOAuthConfig(OAuthConfig{
		CredentialsFile: path,
		RedirectURL:     "http://localhost:8080/oauth2/callback",
		Scopes:          []string{"openid"},
	})
	require.NoError(t, err)
	assert.Equal(t, "file-client", conf.ClientID)
	assert.Equal(t, "file-secret", conf.ClientSecret)
	assert.Equal(t, "http://localhost:8080/oauth2/callback", conf.RedirectURL)
	assert.Equal(t, []string{"openid"}, conf.Scopes)
}

func TestAuthCodeURL(t *testing.T) {
	conf, err := NewOAuthConfig(OAuthConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8080/oauth2/callback",
	})
	require.NoError(t, err)

	u := AuthCodeURL(conf, "state-123")
	assert.True(t, strings.HasPrefix(u, "https://accounts.google.com/"))
	assert.Contains(t, u, "state=state-123")
	assert.Contains(t, u, "access_type=offline")
}

func TestNewState(t *testing.T) {
	a, b := NewState(), NewState()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
