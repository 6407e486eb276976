package contacts

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when a contact or group does not exist.
var ErrNotFound = errors.New("contacts: not found")

// DefaultPageSize is the window size used when a query sets no MaxResults.
const DefaultPageSize = 25

const (
	personPrefix = "people/"
	groupPrefix  = "contactGroups/"

	groupTypeSystem = "SYSTEM_CONTACT_GROUP"
	sourceContact   = "CONTACT"
)

// Contact is a personal contact.
type Contact struct {
	ID  string
	URL string

	ETag string

	NamePrefix string
	FirstName  string
	MiddleName string
	LastName   string
	NameSuffix string

	PictureURL string

	// GroupIDs holds the IDs of the groups the contact belongs to.
	GroupIDs []string

	Emails []Email
	Phones []Phone

	Updated time.Time
}

// DisplayName joins the name parts that are set.
func (c Contact) DisplayName() string {
	var parts []string
	for _, p := range []string{c.NamePrefix, c.FirstName, c.MiddleName, c.LastName, c.NameSuffix} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// InGroup reports whether the contact is a member of the group with id.
func (c Contact) InGroup(id string) bool {
	for _, g := range c.GroupIDs {
		if g == id {
			return true
		}
	}
	return false
}

// PrimaryEmail returns the primary address, or the first one.
func (c Contact) PrimaryEmail() string {
	for _, e := range c.Emails {
		if e.Primary {
			return e.Address
		}
	}
	if len(c.Emails) > 0 {
		return c.Emails[0].Address
	}
	return ""
}

// Email is one email address of a contact. Rel is a well-known relation
// ("home", "work", "other"); Label is a free-form alternative to Rel.
type Email struct {
	Rel     string
	Label   string
	Address string
	Primary bool
}

// Phone is one phone number of a contact.
type Phone struct {
	Rel     string
	Label   string
	Number  string
	Primary bool
}

// ContactGroup is a contact group. System groups are managed by Google and
// cannot be renamed or deleted.
type ContactGroup struct {
	ID          string
	URL         string
	ETag        string
	Name        string
	System      bool
	MemberCount int64
	Updated     time.Time
}

// ContactQuery selects one window of contacts. Zero values mean "no filter".
type ContactQuery struct {
	// Text matches names, email addresses and phone numbers.
	Text string

	// StartIndex is 1-based.
	StartIndex int
	MaxResults int

	// UpdatedMin is inclusive, UpdatedMax exclusive.
	UpdatedMin time.Time
	UpdatedMax time.Time

	GroupID string
}

// GroupQuery selects one window of contact groups.
type GroupQuery struct {
	StartIndex int
	MaxResults int
	UpdatedMin time.Time
	UpdatedMax time.Time
}

// ContactURL returns the resource name for a contact ID.
func ContactURL(id string) string {
	if id == "" || strings.HasPrefix(id, personPrefix) {
		return id
	}
	return personPrefix + id
}

// GroupURL returns the resource name for a group ID.
func GroupURL(id string) string {
	if id == "" || strings.HasPrefix(id, groupPrefix) {
		return id
	}
	return groupPrefix + id
}

// GroupID returns the group ID of a group resource name.
func GroupID(url string) string {
	return strings.TrimPrefix(url, groupPrefix)
}

// updatedWithin reports whether t lies in [from, until). A zero bound is
// open. A zero t never matches a set bound.
func updatedWithin(t, from, until time.Time) bool {
	if from.IsZero() && until.IsZero() {
		return true
	}
	if t.IsZero() {
		return false
	}
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !until.IsZero() && !t.Before(until) {
		return false
	}
	return true
}
