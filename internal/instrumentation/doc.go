// Package instrumentation provides OpenTelemetry instrumentation for the
// quickstart web application.
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, route, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//   - active_sessions: Gauge of signed-in sessions
//
// Google API Metrics:
//   - google_api_operations_total: Counter of Google API operations by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of Google API operation durations
//
// OAuth Metrics:
//   - oauth_auth_total: Counter of sign-in attempts by result
//   - oauth_token_refresh_total: Counter of token refreshes by result
//
// Form Metrics:
//   - form_submissions_total: Counter of form posts by form and outcome (saved, invalid, deleted)
//
// # Tracing
//
// Spans are created for every Google API call (google.<service>.<operation>)
// through ObserveGoogleAPI.
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: quickstart)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	err = instrumentation.ObserveGoogleAPI(ctx, provider.Metrics(),
//		instrumentation.ServiceTasks, instrumentation.OperationList,
//		func(ctx context.Context) error { ... })
package instrumentation
