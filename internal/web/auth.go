package web

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/teemow/quickstart/internal/google"
	"github.com/teemow/quickstart/internal/instrumentation"
	"github.com/teemow/quickstart/internal/logging"
	"github.com/teemow/quickstart/internal/server"
)

const (
	sessionCookieName = "quickstart_session"
	stateCookieName   = "quickstart_oauth_state"

	stateCookieTTL = 10 * time.Minute
)

// sessionID returns the session cookie of r, or "".
func sessionID(r *http.Request) string {
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func (h *Handler) setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	if err := h.views.render(w, r, http.StatusOK, "signin", model{"SignIn": true}); err != nil {
		h.fail(w, r, err)
	}
}

// signInGoogle starts the authorization code flow.
func (h *Handler) signInGoogle(w http.ResponseWriter, r *http.Request) {
	state := google.NewState()
	h.setCookie(w, stateCookieName, state, int(stateCookieTTL.Seconds()))
	http.Redirect(w, r, google.AuthCodeURL(h.oauth, state), http.StatusFound)
}

// callback finishes the flow: it checks the state, exchanges the code and
// stores the token in a new session.
func (h *Handler) callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	state, err := r.Cookie(stateCookieName)
	h.setCookie(w, stateCookieName, "", -1)
	if err != nil || state.Value == "" || subtle.ConstantTimeCompare([]byte(state.Value), []byte(q.Get("state"))) != 1 {
		h.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}
	if reason := q.Get("error"); reason != "" {
		h.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
		h.logger.Info("sign-in declined", "reason", reason)
		http.Redirect(w, r, "/signin", http.StatusSeeOther)
		return
	}

	token, err := h.oauth.Exchange(ctx, q.Get("code"))
	if err != nil {
		h.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
		h.logger.Warn("failed to exchange authorization code", logging.Err(err))
		http.Redirect(w, r, "/signin", http.StatusSeeOther)
		return
	}

	session := server.NewSession(token)
	if clients, err := h.clients.ForToken(ctx, token); err == nil {
		if p, err := clients.Profile.Profile(ctx); err == nil {
			session.Email = p.Email
		} else {
			h.logger.Warn("failed to look up signed-in user", logging.Err(err))
		}
	}
	if err := h.sessions.Save(ctx, session); err != nil {
		h.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
		h.fail(w, r, fmt.Errorf("failed to save session: %w", err))
		return
	}

	h.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultSuccess)
	h.metrics.IncrementActiveSessions(ctx)
	h.logger.Info("signed in", logging.UserHash(session.Email), logging.SessionHash(session.ID))

	h.setCookie(w, sessionCookieName, session.ID, 0)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// signOut drops the session and its cookie.
func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if id := sessionID(r); id != "" {
		_, lookupErr := h.sessions.Get(ctx, id)
		if err := h.sessions.Delete(ctx, id); err != nil {
			h.logger.Warn("failed to delete session", logging.SessionHash(id), logging.Err(err))
		} else if lookupErr == nil {
			h.metrics.DecrementActiveSessions(ctx)
		}
	}
	h.setCookie(w, sessionCookieName, "", -1)
	http.Redirect(w, r, "/signin", http.StatusSeeOther)
}
