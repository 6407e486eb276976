package forms

import (
	"net/url"

	"github.com/teemow/quickstart/internal/contacts"
)

// EmailForm is one email row of a ContactForm.
type EmailForm struct {
	Rel     string
	Label   string
	Address string
	Primary bool
}

// include reports whether the row carries enough to be saved.
func (f EmailForm) include() bool {
	return (hasText(f.Address) && hasText(f.Rel)) || hasText(f.Label)
}

// PhoneForm is one phone row of a ContactForm.
type PhoneForm struct {
	Rel     string
	Label   string
	Number  string
	Primary bool
}

func (f PhoneForm) include() bool {
	return (hasText(f.Number) && hasText(f.Rel)) || hasText(f.Label)
}

// ContactForm is the contact edit form.
type ContactForm struct {
	ID         string
	URL        string
	NamePrefix string
	FirstName  string
	MiddleName string
	LastName   string
	NameSuffix string
	PictureURL string
	GroupIDs   []string
	Emails     []EmailForm
	Phones     []PhoneForm
}

// ParseContactForm binds and validates a submitted contact.
func ParseContactForm(values url.Values) (ContactForm, Errors) {
	b := newBinder(values)

	f := ContactForm{
		ID:         b.text("id"),
		URL:        b.text("url"),
		NamePrefix: b.text("namePrefix"),
		FirstName:  b.text("firstName"),
		MiddleName: b.text("middleName"),
		LastName:   b.text("lastName"),
		NameSuffix: b.text("nameSuffix"),
		PictureURL: b.text("pictureUrl"),
		GroupIDs:   b.list("groupIds"),
	}

	for _, i := range b.indexes("emails") {
		f.Emails = append(f.Emails, EmailForm{
			Rel:     b.text(itemKey("emails", i, "rel")),
			Label:   b.text(itemKey("emails", i, "label")),
			Address: b.text(itemKey("emails", i, "address")),
			Primary: b.flag(itemKey("emails", i, "primary")),
		})
	}
	for _, i := range b.indexes("phones") {
		f.Phones = append(f.Phones, PhoneForm{
			Rel:     b.text(itemKey("phones", i, "rel")),
			Label:   b.text(itemKey("phones", i, "label")),
			Number:  b.text(itemKey("phones", i, "number")),
			Primary: b.flag(itemKey("phones", i, "primary")),
		})
	}

	if !hasText(f.FirstName) && !hasText(f.LastName) {
		b.errs.Add("firstName", "first or last name is required")
	}

	return f, b.errs
}

// ToContact maps the form onto a contact. Email and phone rows without a
// value and relation, and without a label, are dropped.
func (f ContactForm) ToContact() contacts.Contact {
	c := contacts.Contact{
		ID:         f.ID,
		URL:        f.URL,
		NamePrefix: f.NamePrefix,
		FirstName:  f.FirstName,
		MiddleName: f.MiddleName,
		LastName:   f.LastName,
		NameSuffix: f.NameSuffix,
		PictureURL: f.PictureURL,
	}
	if c.URL == "" && c.ID != "" {
		c.URL = contacts.ContactURL(c.ID)
	}
	if len(f.GroupIDs) > 0 {
		c.GroupIDs = append([]string(nil), f.GroupIDs...)
	}

	for _, e := range f.Emails {
		if e.include() {
			c.Emails = append(c.Emails, contacts.Email{
				Rel:     e.Rel,
				Label:   e.Label,
				Address: e.Address,
				Primary: e.Primary,
			})
		}
	}
	for _, p := range f.Phones {
		if p.include() {
			c.Phones = append(c.Phones, contacts.Phone{
				Rel:     p.Rel,
				Label:   p.Label,
				Number:  p.Number,
				Primary: p.Primary,
			})
		}
	}
	return c
}

// ContactFormFrom fills the edit form from a fetched contact.
func ContactFormFrom(c contacts.Contact) ContactForm {
	f := ContactForm{
		ID:         c.ID,
		URL:        c.URL,
		NamePrefix: c.NamePrefix,
		FirstName:  c.FirstName,
		MiddleName: c.MiddleName,
		LastName:   c.LastName,
		NameSuffix: c.NameSuffix,
		PictureURL: c.PictureURL,
	}
	if len(c.GroupIDs) > 0 {
		f.GroupIDs = append([]string(nil), c.GroupIDs...)
	}
	for _, e := range c.Emails {
		f.Emails = append(f.Emails, EmailForm(e))
	}
	for _, p := range c.Phones {
		f.Phones = append(f.Phones, PhoneForm(p))
	}
	return f
}

// HasGroup reports whether the form selects the group with id.
func (f ContactForm) HasGroup(id string) bool {
	for _, g := range f.GroupIDs {
		if g == id {
			return true
		}
	}
	return false
}

// ContactGroupForm is the group edit form.
type ContactGroupForm struct {
	ID   string
	URL  string
	Name string
}

// ParseContactGroupForm binds and validates a submitted group.
func ParseContactGroupForm(values url.Values) (ContactGroupForm, Errors) {
	b := newBinder(values)
	f := ContactGroupForm{
		ID:   b.text("id"),
		URL:  b.text("url"),
		Name: b.text("name"),
	}
	if !hasText(f.Name) {
		b.errs.Add("name", "name is required")
	}
	return f, b.errs
}

// ToContactGroup maps the form onto a group.
func (f ContactGroupForm) ToContactGroup() contacts.ContactGroup {
	g := contacts.ContactGroup{ID: f.ID, URL: f.URL, Name: f.Name}
	if g.URL == "" && g.ID != "" {
		g.URL = contacts.GroupURL(g.ID)
	}
	return g
}

// ContactGroupFormFrom fills the edit form from a fetched group.
func ContactGroupFormFrom(g contacts.ContactGroup) ContactGroupForm {
	return ContactGroupForm{ID: g.ID, URL: g.URL, Name: g.Name}
}
