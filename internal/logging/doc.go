// Package logging provides structured logging utilities for the quickstart web application.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Usage Patterns
//
// Build the process logger once at startup:
//
//	logger, err := logging.New(os.Stderr, logging.Options{Format: "json"})
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "contacts.save")
//	logger.Info("contact saved", logging.Status(logging.StatusSuccess))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("signed in", logging.UserHash(email))
//
// # Security Considerations
//
//   - User emails are hashed to prevent PII leakage while allowing correlation
//   - Session IDs and OAuth tokens are never logged directly
package logging
