package forms

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/quickstart/internal/contacts"
)

func TestEmailInclusion(t *testing.T) {
	tests := []struct {
		name string
		form EmailForm
		want bool
	}{
		{name: "address and rel", form: EmailForm{Rel: "work", Address: "a@example.com"}, want: true},
		{name: "address without rel", form: EmailForm{Address: "a@example.com"}, want: false},
		{name: "rel without address", form: EmailForm{Rel: "work"}, want: false},
		{name: "label alone", form: EmailForm{Label: "club"}, want: true},
		{name: "label with address", form: EmailForm{Label: "club", Address: "a@example.com"}, want: true},
		{name: "whitespace address", form: EmailForm{Rel: "work", Address: " \t"}, want: false},
		{name: "whitespace label", form: EmailForm{Label: "  "}, want: false},
		{name: "empty row", form: EmailForm{}, want: false},
		{name: "primary alone", form: EmailForm{Primary: true}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.form.include(); got != tt.want {
				t.Errorf("include() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPhoneInclusion(t *testing.T) {
	tests := []struct {
		name string
		form PhoneForm
		want bool
	}{
		{name: "number and rel", form: PhoneForm{Rel: "mobile", Number: "123"}, want: true},
		{name: "number without rel", form: PhoneForm{Number: "123"}, want: false},
		{name: "label without number", form: PhoneForm{Label: "boat"}, want: true},
		{name: "rel without number", form: PhoneForm{Rel: "mobile"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.form.include(); got != tt.want {
				t.Errorf("include() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseContactForm(t *testing.T) {
	values := url.Values{
		"url":                {"people/c1"},
		"firstName":          {" Ada "},
		"lastName":           {"Lovelace"},
		"groupIds":           {"friends", "", "myContacts"},
		"emails[1].rel":      {"home"},
		"emails[1].address":  {"ada@home.example"},
		"emails[0].rel":      {"work"},
		"emails[0].address":  {"ada@work.example"},
		"emails[0].primary":  {"on"},
		"emails[10].label":   {"club"},
		"phones[0].rel":      {"mobile"},
		"phones[0].number":   {""},
		"phones[2].label":    {"boat"},
		"phones[2].number":   {"555"},
		"unrelated[0].field": {"x"},
	}

	f, errs := ParseContactForm(values)
	require.False(t, errs.Any(), "unexpected errors: %v", errs)

	assert.Equal(t, "Ada", f.FirstName)
	assert.Equal(t, []string{"friends", "myContacts"}, f.GroupIDs)
	require.Len(t, f.Emails, 3)
	assert.Equal(t, EmailForm{Rel: "work", Address: "ada@work.example", Primary: true}, f.Emails[0])
	assert.Equal(t, "ada@home.example", f.Emails[1].Address)
	assert.Equal(t, "club", f.Emails[2].Label)
	require.Len(t, f.Phones, 2)

	c := f.ToContact()
	assert.Equal(t, "people/c1", c.URL)
	assert.Len(t, c.Emails, 3)
	require.Len(t, c.Phones, 1, "the phone row without a number is dropped")
	assert.Equal(t, contacts.Phone{Label: "boat", Number: "555"}, c.Phones[0])
}

func TestParseContactForm_Validation(t *testing.T) {
	tests := []struct {
		name      string
		values    url.Values
		wantField string
	}{
		{name: "no name", values: url.Values{"emails[0].label": {"x"}}, wantField: "firstName"},
		{name: "blank names", values: url.Values{"firstName": {"  "}, "lastName": {""}}, wantField: "firstName"},
		{name: "bad primary flag", values: url.Values{"lastName": {"L"}, "emails[0].primary": {"maybe"}}, wantField: "emails[0].primary"},
		{name: "last name is enough", values: url.Values{"lastName": {"Lovelace"}}},
		{name: "first name is enough", values: url.Values{"firstName": {"Ada"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := ParseContactForm(tt.values)
			if tt.wantField == "" {
				assert.False(t, errs.Any(), "unexpected errors: %v", errs)
				return
			}
			assert.True(t, errs.Has(tt.wantField), "expected error on %q, got %v", tt.wantField, errs)
		})
	}
}

func TestContactRoundTrip(t *testing.T) {
	fetched := contacts.Contact{
		ID:         "c1",
		URL:        "people/c1",
		NamePrefix: "Dr.",
		FirstName:  "Ada",
		LastName:   "Lovelace",
		PictureURL: "https://example.com/ada.jpg",
		GroupIDs:   []string{"myContacts", "friends"},
		Emails: []contacts.Email{
			{Rel: "work", Address: "ada@work.example", Primary: true},
			{Label: "club", Address: "ada@club.example"},
		},
		Phones: []contacts.Phone{{Rel: "other", Number: "123"}},
	}

	assert.Equal(t, fetched, ContactFormFrom(fetched).ToContact())
}

func TestContactGroupForm(t *testing.T) {
	_, errs := ParseContactGroupForm(url.Values{"name": {"   "}})
	assert.Equal(t, "name is required", errs.Get("name"))

	f, errs := ParseContactGroupForm(url.Values{"id": {"abc"}, "name": {"Chess"}})
	require.False(t, errs.Any())
	assert.Equal(t, contacts.ContactGroup{ID: "abc", URL: "contactGroups/abc", Name: "Chess"}, f.ToContactGroup())

	group := contacts.ContactGroup{ID: "abc", URL: "contactGroups/abc", Name: "Chess"}
	assert.Equal(t, group, ContactGroupFormFrom(group).ToContactGroup())
}

func TestContactForm_HasGroup(t *testing.T) {
	f := ContactForm{GroupIDs: []string{"friends"}}
	assert.True(t, f.HasGroup("friends"))
	assert.False(t, f.HasGroup("family"))
}
