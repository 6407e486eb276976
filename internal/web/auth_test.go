package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSignInPage(t *testing.T) {
	env := newTestEnv(t)

	r := httptest.NewRequest(http.MethodGet, "/signin", nil)
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `href="/signin/google"`)
	assert.NotContains(t, w.Body.String(), "Sign out")
}

func TestSignInGoogle(t *testing.T) {
	env := newTestEnv(t, func(c *Config) { c.SecureCookies = true })

	r := httptest.NewRequest(http.MethodGet, "/signin/google", nil)
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusFound, w.Code)
	state := cookieNamed(w, stateCookieName)
	require.NotNil(t, state)
	assert.NotEmpty(t, state.Value)
	assert.True(t, state.HttpOnly)
	assert.True(t, state.Secure)
	assert.Equal(t, 600, state.MaxAge)

	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.example.com", loc.Host)
	assert.Equal(t, state.Value, loc.Query().Get("state"))
	assert.Equal(t, "offline", loc.Query().Get("access_type"))
	assert.Equal(t, "client-id", loc.Query().Get("client_id"))
}

func callbackRequest(query, state string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/oauth2/callback?"+query, nil)
	if state != "" {
		r.AddCookie(&http.Cookie{Name: stateCookieName, Value: state})
	}
	return r
}

func TestCallback_InvalidState(t *testing.T) {
	tests := []struct {
		name  string
		query string
		state string
	}{
		{name: "no cookie", query: "state=s1&code=c"},
		{name: "mismatch", query: "state=s2&code=c", state: "s1"},
		{name: "no state parameter", query: "code=c", state: "s1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			w := httptest.NewRecorder()
			env.handler.ServeHTTP(w, callbackRequest(tt.query, tt.state))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "invalid OAuth state")
			assert.Nil(t, cookieNamed(w, sessionCookieName))
		})
	}
}

func TestCallback_Declined(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, callbackRequest("state=s1&error=access_denied", "s1"))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/signin", w.Header().Get("Location"))
}

func newTokenServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "the-code" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"access_token":"fresh","refresh_token":"refresh","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCallback_SignsIn(t *testing.T) {
	tokens := newTokenServer(t, http.StatusOK)
	env := newTestEnv(t, func(c *Config) {
		c.OAuth.Endpoint.TokenURL = tokens.URL
		c.OAuth.Endpoint.AuthStyle = oauth2.AuthStyleInParams
	})

	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, callbackRequest("state=s1&code=the-code", "s1"))

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	state := cookieNamed(w, stateCookieName)
	require.NotNil(t, state)
	assert.Negative(t, state.MaxAge)

	cookie := cookieNamed(w, sessionCookieName)
	require.NotNil(t, cookie)
	session, err := env.sessions.Get(context.Background(), cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "fresh", session.Token.AccessToken)
	assert.Equal(t, "refresh", session.Token.RefreshToken)
	assert.Equal(t, "ada@example.com", session.Email)
	assert.Equal(t, []string{"Profile"}, env.factory.profile.Calls())
}

func TestCallback_ExchangeFails(t *testing.T) {
	tokens := newTokenServer(t, http.StatusOK)
	env := newTestEnv(t, func(c *Config) {
		c.OAuth.Endpoint.TokenURL = tokens.URL
		c.OAuth.Endpoint.AuthStyle = oauth2.AuthStyleInParams
	})
	before := env.sessions.Len()

	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, callbackRequest("state=s1&code=wrong", "s1"))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/signin", w.Header().Get("Location"))
	assert.Nil(t, cookieNamed(w, sessionCookieName))
	assert.Equal(t, before, env.sessions.Len())
}

func TestSignOut(t *testing.T) {
	env := newTestEnv(t)

	r := httptest.NewRequest(http.MethodPost, "/signout", nil)
	w := env.serve(r)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/signin", w.Header().Get("Location"))
	cookie := cookieNamed(w, sessionCookieName)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)

	_, err := env.sessions.Get(context.Background(), env.session.ID)
	assert.Error(t, err)

	// Signing out twice is harmless.
	w = env.get("/signout")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/signin", w.Header().Get("Location"))
}
