package web

import (
	"net/http"
	"strings"

	"github.com/teemow/quickstart/internal/paging"
	"github.com/teemow/quickstart/internal/plus"
)

func (h *Handler) person(w http.ResponseWriter, r *http.Request, c *Clients) error {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		http.Redirect(w, r, "/people", http.StatusSeeOther)
		return nil
	}
	p, err := c.Plus.Person(r.Context(), id)
	if err != nil {
		return err
	}
	return h.views.render(w, r, http.StatusOK, "person", model{"Person": p})
}

// people lists the plus-oners or resharers of an activity, or searches by
// text. Without any of them the page is empty.
func (h *Handler) people(w http.ResponseWriter, r *http.Request, c *Clients) error {
	ctx := r.Context()
	q := r.URL.Query()
	pageToken := q.Get("pageToken")
	text := strings.TrimSpace(q.Get("text"))

	var (
		page paging.TokenPage[plus.Person]
		err  error
	)
	switch {
	case q.Has("plusoners"):
		page, err = c.Plus.PlusOners(ctx, q.Get("plusoners"), pageToken)
	case q.Has("resharers"):
		page, err = c.Plus.Resharers(ctx, q.Get("resharers"), pageToken)
	case text != "":
		page, err = c.Plus.SearchPeople(ctx, text, pageToken)
	}
	if err != nil {
		return err
	}

	return h.views.render(w, r, http.StatusOK, "people", model{
		"People":  page,
		"Text":    text,
		"NextURL": nextURL("/people", q, page.NextPageToken),
	})
}

func (h *Handler) activity(w http.ResponseWriter, r *http.Request, c *Clients) error {
	a, err := c.Plus.Activity(r.Context(), r.URL.Query().Get("id"))
	if err != nil {
		return err
	}
	return h.views.render(w, r, http.StatusOK, "activity", model{"Activity": a})
}

// activities searches by text, or lists the public activities of a person
// (the signed-in user by default).
func (h *Handler) activities(w http.ResponseWriter, r *http.Request, c *Clients) error {
	ctx := r.Context()
	q := r.URL.Query()
	pageToken := q.Get("pageToken")

	var (
		page paging.TokenPage[plus.Activity]
		err  error
	)
	if q.Has("text") {
		page, err = c.Plus.SearchActivities(ctx, q.Get("text"), pageToken)
	} else {
		person := q.Get("person")
		if person == "" {
			person = plus.Me
		}
		page, err = c.Plus.Activities(ctx, person, pageToken)
	}
	if err != nil {
		return err
	}

	return h.views.render(w, r, http.StatusOK, "activities", model{
		"Activities": page,
		"Text":       q.Get("text"),
		"NextURL":    nextURL("/activities", q, page.NextPageToken),
	})
}

func (h *Handler) comments(w http.ResponseWriter, r *http.Request, c *Clients) error {
	q := r.URL.Query()
	activityID := q.Get("activity")
	page, err := c.Plus.Comments(r.Context(), activityID, q.Get("pageToken"))
	if err != nil {
		return err
	}
	return h.views.render(w, r, http.StatusOK, "comments", model{
		"Comments": page,
		"Activity": activityID,
		"NextURL":  nextURL("/comments", q, page.NextPageToken),
	})
}

func (h *Handler) comment(w http.ResponseWriter, r *http.Request, c *Clients) error {
	cm, err := c.Plus.Comment(r.Context(), r.URL.Query().Get("id"))
	if err != nil {
		return err
	}
	return h.views.render(w, r, http.StatusOK, "comment", model{"Comment": cm})
}
