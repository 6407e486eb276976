package instrumentation

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the default tracer name for the quickstart module.
const TracerName = "github.com/teemow/quickstart"

// Span attribute keys for operations.
const (
	// SpanAttrService is the Google service name attribute.
	SpanAttrService = "google.service"

	// SpanAttrOperation is the operation type attribute.
	SpanAttrOperation = "google.operation"

	// SpanAttrResourceID is the resource identifier (contact resource name, task ID, etc.).
	SpanAttrResourceID = "google.resource_id"

	// SpanAttrScope is the owning list or group of the resource.
	SpanAttrScope = "google.scope"
)

// ResourceID returns the span attribute for a resource identifier.
func ResourceID(id string) attribute.KeyValue {
	return attribute.String(SpanAttrResourceID, id)
}

// Scope returns the span attribute for the owning list or group.
func Scope(scope string) attribute.KeyValue {
	return attribute.String(SpanAttrScope, scope)
}

// StartGoogleAPISpan starts a span for Google API operations.
// Includes service and operation attributes.
func StartGoogleAPISpan(ctx context.Context, service, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+2)
	allAttrs = append(allAttrs,
		attribute.String(SpanAttrService, service),
		attribute.String(SpanAttrOperation, operation),
	)
	allAttrs = append(allAttrs, attrs...)

	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "google."+service+"."+operation,
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// ObserveGoogleAPI runs fn inside a Google API span and records its outcome
// on m. m may be nil. The error returned by fn is returned unchanged.
//
// Usage:
//
//	err := instrumentation.ObserveGoogleAPI(ctx, c.metrics, instrumentation.ServiceTasks,
//		instrumentation.OperationGet, func(ctx context.Context) error {
//			t, err = c.svc.Tasks.Get(list, id).Context(ctx).Do()
//			return err
//		}, instrumentation.ResourceID(id))
func ObserveGoogleAPI(ctx context.Context, m *Metrics, service, operation string, fn func(context.Context) error, attrs ...attribute.KeyValue) error {
	ctx, span := StartGoogleAPISpan(ctx, service, operation, attrs...)
	defer span.End()

	start := time.Now()
	err := fn(ctx)

	status := StatusSuccess
	if err != nil {
		status = StatusError
		SetSpanError(span, err)
	} else {
		SetSpanSuccess(span)
	}
	m.RecordGoogleAPIOperation(ctx, service, operation, status, time.Since(start))

	return err
}

// SetSpanError records an error on the span and sets the status to error.
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess sets the span status to OK.
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// GetTraceID returns the trace ID from the current span in context.
// Returns empty string if no valid span is present.
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}
