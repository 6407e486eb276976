package web

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/teemow/quickstart/internal/forms"
	"github.com/teemow/quickstart/internal/instrumentation"
)

const (
	formContact        = "contact"
	formContactGroup   = "group"
	formContactPicture = "contactpicture"
)

func (h *Handler) listContacts(w http.ResponseWriter, r *http.Request, c *Clients) error {
	ctx := r.Context()
	q := r.URL.Query()
	command, errs := forms.ParseContactSearchForm(q)

	groups, err := c.Contacts.ContactGroupList(ctx)
	if err != nil {
		return err
	}

	m := model{"Groups": groups, "Command": command, "Errors": errs}
	if !errs.Any() {
		page, err := c.Contacts.Contacts(ctx, command.Query())
		if err != nil {
			return err
		}
		m["Contacts"] = page
		if page.HasPrevious() {
			m["PreviousURL"] = indexURL("/contacts", q, page.PreviousIndex())
		}
		if page.HasNext() {
			m["NextURL"] = indexURL("/contacts", q, page.NextIndex())
		}
	}
	return h.views.render(w, r, http.StatusOK, "contacts", m)
}

func (h *Handler) editContact(w http.ResponseWriter, r *http.Request, c *Clients) error {
	ctx := r.Context()

	var command forms.ContactForm
	if u := r.URL.Query().Get("url"); u != "" {
		contact, err := c.Contacts.Contact(ctx, u)
		if err != nil {
			return err
		}
		command = forms.ContactFormFrom(*contact)
	}

	groups, err := c.Contacts.ContactGroupList(ctx)
	if err != nil {
		return err
	}
	return h.views.render(w, r, http.StatusOK, "contact", model{
		"Command":   command,
		"AllGroups": groups,
		"Errors":    forms.Errors{},
	})
}

func (h *Handler) saveContact(w http.ResponseWriter, r *http.Request, c *Clients) error {
	if !parseForm(w, r) {
		return nil
	}
	ctx := r.Context()

	if r.Form.Has("delete") {
		u := r.Form.Get("url")
		s := instrumentation.NewSubmission(formContact, "delete").WithResource(u, "")
		err := h.submit(ctx, c, s, instrumentation.FormDeleted, func(ctx context.Context) error {
			return c.Contacts.DeleteContact(ctx, u)
		})
		if err != nil {
			return err
		}
		redirect(w, r, "/contacts", "")
		return nil
	}

	command, errs := forms.ParseContactForm(r.Form)
	if errs.Any() {
		h.rejected(ctx, formContact)
		groups, err := c.Contacts.ContactGroupList(ctx)
		if err != nil {
			return err
		}
		return h.views.render(w, r, http.StatusOK, "contact", model{
			"Command":   command,
			"AllGroups": groups,
			"Errors":    errs,
		})
	}

	contact := command.ToContact()
	s := instrumentation.NewSubmission(formContact, "save").WithResource(contact.URL, "")
	err := h.submit(ctx, c, s, instrumentation.FormSaved, func(ctx context.Context) error {
		_, err := c.Contacts.SaveContact(ctx, contact)
		return err
	})
	if err != nil {
		return err
	}
	redirect(w, r, "/contacts", "")
	return nil
}

// contactPicture serves a contact's photo, or 404 with an empty body.
func (h *Handler) contactPicture(w http.ResponseWriter, r *http.Request, c *Clients) error {
	u := r.URL.Query().Get("url")
	if u == "" {
		w.WriteHeader(http.StatusNotFound)
		return nil
	}
	data, err := c.Contacts.ProfilePicture(r.Context(), u)
	if err != nil {
		return err
	}
	if data == nil {
		w.WriteHeader(http.StatusNotFound)
		return nil
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	return nil
}

// uploadContactPicture replaces a contact's photo and goes back to the page
// the upload came from.
func (h *Handler) uploadContactPicture(w http.ResponseWriter, r *http.Request, c *Clients) error {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		http.Error(w, "invalid upload", http.StatusBadRequest)
		return nil
	}
	u := r.FormValue("url")
	if u == "" {
		u = r.FormValue("pictureUrl")
	}
	file, _, err := r.FormFile("file")
	if err != nil || u == "" {
		http.Error(w, "contact and picture file are required", http.StatusBadRequest)
		return nil
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "invalid upload", http.StatusBadRequest)
		return nil
	}

	ctx := r.Context()
	s := instrumentation.NewSubmission(formContactPicture, "upload").WithResource(u, "")
	err = h.submit(ctx, c, s, instrumentation.FormSaved, func(ctx context.Context) error {
		return c.Contacts.UploadProfilePicture(ctx, u, data)
	})
	if err != nil {
		return err
	}
	http.Redirect(w, r, refererPath(r, "/contacts"), http.StatusSeeOther)
	return nil
}

// refererPath returns the path of a same-host Referer, or fallback.
func refererPath(r *http.Request, fallback string) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != r.Host) {
		return fallback
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}

func (h *Handler) listGroups(w http.ResponseWriter, r *http.Request, c *Clients) error {
	q := r.URL.Query()
	command, errs := forms.ParseSearchForm(q)

	m := model{"Command": command, "Errors": errs}
	if !errs.Any() {
		page, err := c.Contacts.ContactGroups(r.Context(), command.Query())
		if err != nil {
			return err
		}
		m["Groups"] = page
		if page.HasPrevious() {
			m["PreviousURL"] = indexURL("/groups", q, page.PreviousIndex())
		}
		if page.HasNext() {
			m["NextURL"] = indexURL("/groups", q, page.NextIndex())
		}
	}
	return h.views.render(w, r, http.StatusOK, "groups", m)
}

func (h *Handler) editGroup(w http.ResponseWriter, r *http.Request, c *Clients) error {
	var command forms.ContactGroupForm
	if u := r.URL.Query().Get("url"); u != "" {
		group, err := c.Contacts.ContactGroup(r.Context(), u)
		if err != nil {
			return err
		}
		command = forms.ContactGroupFormFrom(*group)
	}
	return h.views.render(w, r, http.StatusOK, "group", model{"Command": command, "Errors": forms.Errors{}})
}

func (h *Handler) saveGroup(w http.ResponseWriter, r *http.Request, c *Clients) error {
	if !parseForm(w, r) {
		return nil
	}
	ctx := r.Context()

	if r.Form.Has("delete") {
		u := r.Form.Get("url")
		s := instrumentation.NewSubmission(formContactGroup, "delete").WithResource(u, "")
		err := h.submit(ctx, c, s, instrumentation.FormDeleted, func(ctx context.Context) error {
			return c.Contacts.DeleteContactGroup(ctx, u)
		})
		if err != nil {
			return err
		}
		redirect(w, r, "/groups", "")
		return nil
	}

	command, errs := forms.ParseContactGroupForm(r.Form)
	if errs.Any() {
		h.rejected(ctx, formContactGroup)
		return h.views.render(w, r, http.StatusOK, "group", model{"Command": command, "Errors": errs})
	}

	group := command.ToContactGroup()
	s := instrumentation.NewSubmission(formContactGroup, "save").WithResource(group.URL, "")
	err := h.submit(ctx, c, s, instrumentation.FormSaved, func(ctx context.Context) error {
		_, err := c.Contacts.SaveContactGroup(ctx, group)
		return err
	})
	if err != nil {
		return err
	}
	redirect(w, r, "/groups", "")
	return nil
}
