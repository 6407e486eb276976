package contacts

import (
	"strings"
	"time"

	people "google.golang.org/api/people/v1"
)

// EmailRelations lists the email types that are kept as a relation, in
// display order.
var EmailRelations = []string{"home", "work", "other"}

// PhoneRelations lists the phone types that are kept as a relation, in
// display order.
var PhoneRelations = []string{
	"mobile", "home", "work", "main", "other",
	"homeFax", "workFax", "otherFax",
	"pager", "workMobile", "workPager", "googleVoice",
}

var (
	emailRels = relationSet(EmailRelations)
	phoneRels = relationSet(PhoneRelations)
)

func relationSet(rels []string) map[string]bool {
	set := make(map[string]bool, len(rels))
	for _, r := range rels {
		set[r] = true
	}
	return set
}

// splitType maps a People API type onto a relation or a label. An untyped
// value is reported as "other".
func splitType(typ string, rels map[string]bool) (rel, label string) {
	switch {
	case typ == "":
		return "other", ""
	case rels[typ]:
		return typ, ""
	default:
		return "", typ
	}
}

// joinType is the inverse of splitType.
func joinType(rel, label string) string {
	if rel != "" {
		return rel
	}
	return label
}

// toContact converts a People API person to our Contact type
func toContact(p *people.Person) Contact {
	if p == nil {
		return Contact{}
	}

	c := Contact{
		ID:      strings.TrimPrefix(p.ResourceName, personPrefix),
		URL:     p.ResourceName,
		ETag:    p.Etag,
		Updated: sourceUpdateTime(p.Metadata),
	}

	if name := primaryName(p.Names); name != nil {
		c.NamePrefix = name.HonorificPrefix
		c.FirstName = name.GivenName
		c.MiddleName = name.MiddleName
		c.LastName = name.FamilyName
		c.NameSuffix = name.HonorificSuffix
	}

	if photo := contactPhoto(p.Photos); photo != nil {
		c.PictureURL = photo.Url
	}

	for _, m := range p.Memberships {
		if m == nil || m.ContactGroupMembership == nil {
			continue
		}
		id := m.ContactGroupMembership.ContactGroupId
		if id == "" {
			id = GroupID(m.ContactGroupMembership.ContactGroupResourceName)
		}
		c.GroupIDs = append(c.GroupIDs, id)
	}

	for _, e := range p.EmailAddresses {
		if e == nil {
			continue
		}
		rel, label := splitType(e.Type, emailRels)
		c.Emails = append(c.Emails, Email{
			Rel:     rel,
			Label:   label,
			Address: e.Value,
			Primary: e.Metadata != nil && e.Metadata.Primary,
		})
	}

	for _, ph := range p.PhoneNumbers {
		if ph == nil {
			continue
		}
		rel, label := splitType(ph.Type, phoneRels)
		c.Phones = append(c.Phones, Phone{
			Rel:     rel,
			Label:   label,
			Number:  ph.Value,
			Primary: ph.Metadata != nil && ph.Metadata.Primary,
		})
	}

	return c
}

// toPerson builds the writable part of a person from c.
func toPerson(c Contact) *people.Person {
	p := &people.Person{
		ResourceName: c.URL,
		Etag:         c.ETag,
	}

	if c.NamePrefix != "" || c.FirstName != "" || c.MiddleName != "" || c.LastName != "" || c.NameSuffix != "" {
		p.Names = []*people.Name{{
			HonorificPrefix: c.NamePrefix,
			GivenName:       c.FirstName,
			MiddleName:      c.MiddleName,
			FamilyName:      c.LastName,
			HonorificSuffix: c.NameSuffix,
		}}
	}

	for _, e := range c.Emails {
		p.EmailAddresses = append(p.EmailAddresses, &people.EmailAddress{
			Value:    e.Address,
			Type:     joinType(e.Rel, e.Label),
			Metadata: primaryMetadata(e.Primary),
		})
	}

	for _, ph := range c.Phones {
		p.PhoneNumbers = append(p.PhoneNumbers, &people.PhoneNumber{
			Value:    ph.Number,
			Type:     joinType(ph.Rel, ph.Label),
			Metadata: primaryMetadata(ph.Primary),
		})
	}

	for _, id := range c.GroupIDs {
		p.Memberships = append(p.Memberships, &people.Membership{
			ContactGroupMembership: &people.ContactGroupMembership{
				ContactGroupResourceName: GroupURL(id),
			},
		})
	}

	return p
}

func primaryMetadata(primary bool) *people.FieldMetadata {
	if !primary {
		return nil
	}
	return &people.FieldMetadata{Primary: true}
}

// toContactGroup converts a People API contact group to our ContactGroup type
func toContactGroup(g *people.ContactGroup) ContactGroup {
	if g == nil {
		return ContactGroup{}
	}

	result := ContactGroup{
		ID:          GroupID(g.ResourceName),
		URL:         g.ResourceName,
		ETag:        g.Etag,
		Name:        g.Name,
		System:      g.GroupType == groupTypeSystem,
		MemberCount: g.MemberCount,
	}
	if result.System && g.FormattedName != "" {
		result.Name = g.FormattedName
	}
	if g.Metadata != nil {
		result.Updated = parseTime(g.Metadata.UpdateTime)
	}
	return result
}

func primaryName(names []*people.Name) *people.Name {
	for _, n := range names {
		if n != nil && n.Metadata != nil && n.Metadata.Primary {
			return n
		}
	}
	if len(names) > 0 {
		return names[0]
	}
	return nil
}

// contactPhoto prefers a photo the user uploaded over the generated default.
func contactPhoto(photos []*people.Photo) *people.Photo {
	for _, ph := range photos {
		if ph != nil && !ph.Default && ph.Url != "" {
			return ph
		}
	}
	return nil
}

func sourceUpdateTime(m *people.PersonMetadata) time.Time {
	if m == nil {
		return time.Time{}
	}
	for _, s := range m.Sources {
		if s != nil && s.Type == sourceContact {
			return parseTime(s.UpdateTime)
		}
	}
	return time.Time{}
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
