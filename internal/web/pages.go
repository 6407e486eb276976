package web

import (
	"net/http"
	"net/url"
	"strconv"
)

// parseForm parses the submitted form and answers 400 when it is malformed.
func parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return false
	}
	return true
}

// nextURL links to the next page of a token feed, keeping the other query
// parameters. It is empty on the last page.
func nextURL(path string, q url.Values, token string) string {
	if token == "" {
		return ""
	}
	next := url.Values{}
	for k, v := range q {
		next[k] = v
	}
	next.Set("pageToken", token)
	return path + "?" + next.Encode()
}

// indexURL links to another window of an index-paged listing.
func indexURL(path string, q url.Values, startIndex int) string {
	next := url.Values{}
	for k, v := range q {
		next[k] = v
	}
	next.Set("startIndex", strconv.Itoa(startIndex))
	return path + "?" + next.Encode()
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request, c *Clients) error {
	p, err := c.Profile.Profile(r.Context())
	if err != nil {
		return err
	}
	return h.views.render(w, r, http.StatusOK, "profile", model{"Profile": p})
}
