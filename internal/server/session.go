package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/teemow/quickstart/internal/google"
)

// DefaultSessionTimeout is how long an idle session is kept.
const DefaultSessionTimeout = 24 * time.Hour

// ErrSessionNotFound is returned when a session does not exist or expired.
var ErrSessionNotFound = errors.New("session not found")

// Session is the server-side state of a signed-in browser.
type Session struct {
	ID         string        `json:"id"`
	Token      *oauth2.Token `json:"token"`
	Email      string        `json:"email,omitempty"`
	Created    time.Time     `json:"created"`
	LastAccess time.Time     `json:"last_access"`
}

// NewSession creates a session with a fresh random ID.
func NewSession(token *oauth2.Token) *Session {
	now := time.Now()
	return &Session{
		ID:         uuid.NewString(),
		Token:      token,
		Created:    now,
		LastAccess: now,
	}
}

// SessionStore persists sessions.
type SessionStore interface {
	// Get returns the session with id, or ErrSessionNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// Save creates or replaces a session.
	Save(ctx context.Context, s *Session) error

	// Delete removes a session. Deleting an unknown session is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases the resources of the store.
	Close() error
}

// NewTokenProvider exposes the tokens of a session store to the Google
// clients.
func NewTokenProvider(store SessionStore) google.TokenProvider {
	return &tokenProvider{store: store}
}

type tokenProvider struct {
	store SessionStore
}

func (p *tokenProvider) TokenForSession(ctx context.Context, sessionID string) (*oauth2.Token, error) {
	if sessionID == "" {
		return nil, google.ErrNotSignedIn
	}
	s, err := p.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: %w", google.ErrNotSignedIn, err)
		}
		return nil, err
	}
	if s.Token == nil {
		return nil, google.ErrNotSignedIn
	}
	return s.Token, nil
}

func (p *tokenProvider) SaveTokenForSession(ctx context.Context, sessionID string, token *oauth2.Token) error {
	s, err := p.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	s.Token = token
	return p.store.Save(ctx, s)
}
