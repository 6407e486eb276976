// Package google provides OAuth2 configuration, per-session token sources and
// error classification for the Google APIs used by the web application.
//
// Tokens are owned by the session store. The TokenProvider interface lets the
// store hand a session's token to NewSessionTokenSource, which refreshes it
// through the OAuth2 config and writes refreshed tokens back.
//
// A refresh that Google rejects, or an API call answered with 401, is reported
// as ErrAuthorizationExpired so the web layer can send the user to sign-out.
package google
