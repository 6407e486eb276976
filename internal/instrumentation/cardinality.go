package instrumentation

import "strings"

// Operation types for Google API metrics.
// Status, OAuth, and Service constants are defined in config.go.
const (
	OperationList   = "list"
	OperationGet    = "get"
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
	OperationSearch = "search"
	OperationMove   = "move"
	OperationClear  = "clear"
	OperationUpload = "upload"
)

// unmatchedRoute labels requests that did not match a registered route, so
// that scanners probing random paths cannot grow the path label set.
const unmatchedRoute = "unmatched"

// NormalizeRoute returns the label value for an HTTP route pattern.
// Empty patterns collapse to a single "unmatched" value and trailing
// slashes are trimmed.
//
// Example:
//
//	NormalizeRoute("/contacts")  // "/contacts"
//	NormalizeRoute("/group/")    // "/group"
//	NormalizeRoute("")           // "unmatched"
func NormalizeRoute(pattern string) string {
	if pattern == "" {
		return unmatchedRoute
	}
	if pattern != "/" {
		pattern = strings.TrimSuffix(pattern, "/")
	}
	return pattern
}

// ExtractUserDomain extracts the domain part from an email address.
// This reduces cardinality by using the domain instead of the full email.
func ExtractUserDomain(email string) string {
	if email == "" {
		return "unknown"
	}

	parts := strings.Split(email, "@")
	if len(parts) == 2 && parts[1] != "" {
		return parts[1]
	}

	return "unknown"
}
