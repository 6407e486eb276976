package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"

	"github.com/teemow/quickstart/internal/logging"
)

// TokenProvider is an interface for providing OAuth tokens for Google APIs.
// The session store implements it, keyed by session ID.
type TokenProvider interface {
	// TokenForSession returns the token stored for sessionID, or
	// ErrNotSignedIn if the session is unknown.
	TokenForSession(ctx context.Context, sessionID string) (*oauth2.Token, error)

	// SaveTokenForSession replaces the token stored for sessionID.
	SaveTokenForSession(ctx context.Context, sessionID string, token *oauth2.Token) error
}

// NewSessionTokenSource returns a token source for one session. Tokens are
// refreshed through conf and every refreshed token is saved back to provider.
func NewSessionTokenSource(ctx context.Context, conf *oauth2.Config, provider TokenProvider, sessionID string) (oauth2.TokenSource, error) {
	token, err := provider.TokenForSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &persistingTokenSource{
		ctx:       context.WithoutCancel(ctx),
		base:      conf.TokenSource(ctx, token),
		provider:  provider,
		sessionID: sessionID,
		canRenew:  token.RefreshToken != "",
		last:      token.AccessToken,
	}, nil
}

type persistingTokenSource struct {
	ctx       context.Context
	base      oauth2.TokenSource
	provider  TokenProvider
	sessionID string
	canRenew  bool

	mu   sync.Mutex
	last string
}

// Token returns a valid token, persisting it when it was refreshed.
func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) || !s.canRenew {
			return nil, fmt.Errorf("%w: %w", ErrAuthorizationExpired, err)
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if token.AccessToken != s.last {
		if err := s.provider.SaveTokenForSession(s.ctx, s.sessionID, token); err != nil {
			// The refreshed token is still usable for this request.
			slog.Warn("failed to persist refreshed token",
				logging.SessionHash(s.sessionID),
				slog.String("access_token", logging.SanitizeToken(token.AccessToken)),
				logging.Err(err))
		} else {
			s.last = token.AccessToken
		}
	}

	return token, nil
}
