// Package server provides the HTTP plumbing of the quickstart web
// application: the application and metrics servers, health endpoints,
// per-IP rate limiting, security headers and the session stores.
//
// # Sessions
//
// A session maps a random session ID, kept in an HttpOnly cookie, to the
// user's OAuth token. Two stores are available:
//   - MemoryStore: process-local, idle sessions expire
//   - ValkeyStore: shared between replicas, expiry handled by Valkey
//
// NewTokenProvider adapts either store to google.TokenProvider so that
// refreshed tokens are written back to the session.
package server
