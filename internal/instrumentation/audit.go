package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/quickstart/internal/logging"
)

// Submission captures one mutating form post for the audit trail.
//
// # Privacy Considerations
//
// UserEmail contains PII. It is only written in full when the audit logger
// is configured with IncludePII; otherwise the anonymized hash is logged.
type Submission struct {
	// Form is the posted route, e.g. "contact" or "movetask".
	Form string

	// Action is what the post did: save, delete, move, clear or upload.
	Action string

	// Resource identifies the affected resource (contact URL, task ID, ...).
	Resource string

	// Scope is the owning task list when there is one.
	Scope string

	UserEmail string

	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	TraceID string
}

// NewSubmission creates a Submission with timing started.
// Call Complete when the upstream call returns.
func NewSubmission(form, action string) *Submission {
	return &Submission{
		Form:      form,
		Action:    action,
		StartTime: time.Now(),
	}
}

// WithUser sets the signed-in user's email.
func (s *Submission) WithUser(email string) *Submission {
	s.UserEmail = email
	return s
}

// WithResource sets the affected resource and its scope.
func (s *Submission) WithResource(resource, scope string) *Submission {
	s.Resource = resource
	s.Scope = scope
	return s
}

// WithSpanContext extracts the trace ID from the current span.
func (s *Submission) WithSpanContext(ctx context.Context) *Submission {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		s.TraceID = span.SpanContext().TraceID().String()
	}
	return s
}

// Complete marks the submission as finished and calculates duration.
func (s *Submission) Complete(err error) *Submission {
	s.Duration = time.Since(s.StartTime)
	s.Success = err == nil
	if err != nil {
		s.Error = err.Error()
	}
	return s
}

// attrs returns the slog attributes for the submission. The user is either
// the full email or its hash depending on includePII.
func (s *Submission) attrs(includePII bool) []any {
	user := logging.UserHash(s.UserEmail)
	if includePII {
		user = slog.String("user", s.UserEmail)
	}

	attrs := []any{
		slog.String("form", s.Form),
		slog.String("action", s.Action),
		user,
		slog.Duration("duration", s.Duration),
		slog.Bool("success", s.Success),
	}
	if s.Resource != "" {
		attrs = append(attrs, slog.String("resource", s.Resource))
	}
	if s.Scope != "" {
		attrs = append(attrs, slog.String("scope", s.Scope))
	}
	if s.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", s.TraceID))
	}
	if s.Error != "" {
		attrs = append(attrs, slog.String("error", s.Error))
	}
	return attrs
}

// AuditLogger writes the audit trail of form submissions.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLogger creates a new AuditLogger with the given configuration.
// If logger is nil, slog.Default() is used.
func NewAuditLogger(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger.With(slog.String("component", "audit")),
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

// LogSubmission logs a completed submission. A nil AuditLogger logs nothing.
func (al *AuditLogger) LogSubmission(s *Submission) {
	if al == nil || !al.enabled {
		return
	}

	if s.Success {
		al.logger.Info("form_submitted", s.attrs(al.includePII)...)
	} else {
		al.logger.Warn("form_failed", s.attrs(al.includePII)...)
	}
}
