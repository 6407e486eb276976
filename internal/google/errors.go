package google

import (
	"errors"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

var (
	// ErrAuthorizationExpired indicates the stored authorization can no longer
	// be used, either because the refresh was rejected or because Google
	// answered 401.
	ErrAuthorizationExpired = errors.New("google: authorization expired")

	// ErrNotSignedIn indicates the request carries no usable session.
	ErrNotSignedIn = errors.New("google: not signed in")
)

// IsAuthorizationExpired reports whether err means the user has to sign in again.
func IsAuthorizationExpired(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAuthorizationExpired) {
		return true
	}
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusUnauthorized
	}
	return false
}

// IsNotFound reports whether err is a 404 from a Google API.
func IsNotFound(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusNotFound
	}
	return false
}
