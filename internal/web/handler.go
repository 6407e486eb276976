package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"golang.org/x/oauth2"

	"github.com/teemow/quickstart/internal/google"
	"github.com/teemow/quickstart/internal/instrumentation"
	"github.com/teemow/quickstart/internal/logging"
	"github.com/teemow/quickstart/internal/server"
)

// Config wires the web handler.
type Config struct {
	// OAuth is the web sign-in client.
	OAuth *oauth2.Config

	// Sessions stores the signed-in sessions.
	Sessions server.SessionStore

	// Clients builds the Google clients of a request.
	Clients ClientFactory

	Metrics *instrumentation.Metrics
	Audit   *instrumentation.AuditLogger
	Logger  *slog.Logger

	// CSRFKey enables CSRF protection of POST forms. It must be 32 bytes.
	CSRFKey []byte

	// TrustedOrigins are extra origins allowed to post forms (host[:port]).
	TrustedOrigins []string

	// SecureCookies marks cookies Secure. Enable it when served over HTTPS.
	SecureCookies bool
}

// Handler is the web application.
type Handler struct {
	oauth    *oauth2.Config
	sessions server.SessionStore
	clients  ClientFactory
	metrics  *instrumentation.Metrics
	audit    *instrumentation.AuditLogger
	logger   *slog.Logger
	views    *views
	secure   bool

	router http.Handler
}

// clientHandler is a route that needs the user's Google clients.
type clientHandler func(w http.ResponseWriter, r *http.Request, c *Clients) error

// NewHandler creates the web application.
func NewHandler(cfg Config) (*Handler, error) {
	if cfg.OAuth == nil {
		return nil, errors.New("OAuth config is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	if cfg.Clients == nil {
		return nil, errors.New("client factory is required")
	}
	if len(cfg.CSRFKey) != 0 && len(cfg.CSRFKey) != 32 {
		return nil, errors.New("CSRF key must be 32 bytes")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	v, err := newViews()
	if err != nil {
		return nil, err
	}

	h := &Handler{
		oauth:    cfg.OAuth,
		sessions: cfg.Sessions,
		clients:  cfg.Clients,
		metrics:  cfg.Metrics,
		audit:    cfg.Audit,
		logger:   logger,
		views:    v,
		secure:   cfg.SecureCookies,
	}

	r := chi.NewRouter()
	r.Use(h.instrument)
	if len(cfg.CSRFKey) != 0 {
		r.Use(h.plaintextHTTP)
		r.Use(csrf.Protect(cfg.CSRFKey,
			csrf.Secure(cfg.SecureCookies),
			csrf.Path("/"),
			csrf.SameSite(csrf.SameSiteLaxMode),
			csrf.TrustedOrigins(cfg.TrustedOrigins),
		))
	}

	r.Get("/signin", h.signIn)
	r.Get("/signin/google", h.signInGoogle)
	r.Get("/oauth2/callback", h.callback)
	r.Get("/signout", h.signOut)
	r.Post("/signout", h.signOut)

	r.Get("/", h.handle(h.home))

	r.Get("/contacts", h.handle(h.listContacts))
	r.Get("/contact", h.handle(h.editContact))
	r.Post("/contact", h.handle(h.saveContact))
	r.Get("/contactpicture", h.handle(h.contactPicture))
	r.Post("/contactpicture", h.handle(h.uploadContactPicture))
	r.Get("/groups", h.handle(h.listGroups))
	r.Get("/group", h.handle(h.editGroup))
	r.Post("/group", h.handle(h.saveGroup))

	r.Get("/person", h.handle(h.person))
	r.Get("/people", h.handle(h.people))
	r.Get("/activity", h.handle(h.activity))
	r.Get("/activities", h.handle(h.activities))
	r.Get("/comments", h.handle(h.comments))
	r.Get("/comment", h.handle(h.comment))

	r.Get("/tasklists", h.handle(h.listTaskLists))
	r.Get("/tasklist", h.handle(h.editTaskList))
	r.Post("/tasklist", h.handle(h.saveTaskList))
	r.Get("/tasks", h.handle(h.listTasks))
	r.Get("/task", h.handle(h.editTask))
	r.Post("/task", h.handle(h.saveTask))
	r.Post("/movetask", h.handle(h.moveTask))
	r.Post("/cleartasks", h.handle(h.clearTasks))

	h.router = r
	return h, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// handle resolves the session's clients and maps the outcome of fn.
func (h *Handler) handle(fn clientHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clients, err := h.clients.ForSession(r.Context(), sessionID(r))
		if err == nil {
			err = fn(w, r, clients)
		}
		if err != nil {
			h.fail(w, r, err)
		}
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case google.IsAuthorizationExpired(err):
		h.logger.Info("authorization expired, signing out", logging.Route(r.URL.Path), logging.Err(err))
		h.metrics.RecordOAuthTokenRefresh(r.Context(), instrumentation.OAuthResultExpired)
		http.Redirect(w, r, "/signout", http.StatusSeeOther)
	case errors.Is(err, google.ErrNotSignedIn):
		http.Redirect(w, r, "/signin", http.StatusSeeOther)
	default:
		h.logger.Error("request failed",
			slog.String("method", r.Method),
			logging.Route(r.URL.Path),
			slog.String("trace_id", instrumentation.GetTraceID(r.Context())),
			logging.Err(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// redirect answers a successful post. list is forwarded as the list query
// parameter when set.
func redirect(w http.ResponseWriter, r *http.Request, path, list string) {
	if list != "" {
		path += "?" + url.Values{"list": {list}}.Encode()
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// submit runs one mutating upstream call and records it in the metrics and
// the audit trail.
func (h *Handler) submit(ctx context.Context, c *Clients, s *instrumentation.Submission, outcome string, call func(context.Context) error) error {
	err := call(ctx)
	s.Complete(err).WithSpanContext(ctx)
	if h.audit != nil {
		s.WithUser(h.sessionEmail(ctx, c.SessionID))
		h.audit.LogSubmission(s)
	}
	if err == nil {
		h.metrics.RecordFormSubmission(ctx, s.Form, outcome)
	}
	return err
}

// rejected records a submission that failed validation.
func (h *Handler) rejected(ctx context.Context, form string) {
	h.metrics.RecordFormSubmission(ctx, form, instrumentation.FormInvalid)
}

func (h *Handler) sessionEmail(ctx context.Context, id string) string {
	if id == "" {
		return ""
	}
	s, err := h.sessions.Get(ctx, id)
	if err != nil {
		return ""
	}
	return s.Email
}

// plaintextHTTP tells the CSRF middleware which requests arrived without TLS
// so that its origin check compares against http URLs. With secure cookies
// TLS is assumed to end at a proxy in front of the server.
func (h *Handler) plaintextHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.secure && r.TLS == nil {
			r = csrf.PlaintextHTTPRequest(r)
		}
		next.ServeHTTP(w, r)
	})
}
