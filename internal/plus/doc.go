// Package plus is a read-only client for the Google+ v1 REST resources:
// people, activities and comments.
//
// The Google API client library no longer ships a Google+ package, so the
// client speaks JSON over the authenticated HTTP client itself and decodes
// errors with googleapi.CheckResponse. HTML content of activities, comments
// and profiles is sanitized before it is handed to a view.
package plus
