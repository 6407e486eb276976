package plus

import (
	"html/template"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// Actor is the author of an activity or comment.
type Actor struct {
	ID          string
	DisplayName string
	URL         string
	ImageURL    string
}

// Person is a Google+ profile.
type Person struct {
	ID          string
	DisplayName string
	GivenName   string
	FamilyName  string
	URL         string
	ImageURL    string
	Tagline     string
	Occupation  string
	AboutMe     template.HTML
}

// Activity is a Google+ post.
type Activity struct {
	ID        string
	Title     string
	URL       string
	Verb      string
	Published time.Time
	Updated   time.Time
	Actor     Actor
	Content   template.HTML

	Replies   int64
	PlusOners int64
	Resharers int64

	Attachments []Attachment
}

// Attachment is media or a link attached to an activity.
type Attachment struct {
	ObjectType  string
	DisplayName string
	URL         string
	ImageURL    string
	Content     string
}

// Comment is a reply to an activity.
type Comment struct {
	ID         string
	ActivityID string
	Published  time.Time
	Updated    time.Time
	Actor      Actor
	Content    template.HTML
	PlusOners  int64
}

// Wire shapes of the v1 resources.

type image struct {
	URL string `json:"url"`
}

type counter struct {
	TotalItems int64 `json:"totalItems"`
}

type actorResource struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	URL         string `json:"url"`
	Image       image  `json:"image"`
}

type personResource struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Name        struct {
		GivenName  string `json:"givenName"`
		FamilyName string `json:"familyName"`
	} `json:"name"`
	URL        string `json:"url"`
	Image      image  `json:"image"`
	Tagline    string `json:"tagline"`
	Occupation string `json:"occupation"`
	AboutMe    string `json:"aboutMe"`
}

type activityResource struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	URL       string        `json:"url"`
	Verb      string        `json:"verb"`
	Published string        `json:"published"`
	Updated   string        `json:"updated"`
	Actor     actorResource `json:"actor"`
	Object    struct {
		Content     string  `json:"content"`
		Replies     counter `json:"replies"`
		Plusoners   counter `json:"plusoners"`
		Resharers   counter `json:"resharers"`
		Attachments []struct {
			ObjectType  string `json:"objectType"`
			DisplayName string `json:"displayName"`
			URL         string `json:"url"`
			Content     string `json:"content"`
			Image       image  `json:"image"`
		} `json:"attachments"`
	} `json:"object"`
}

type commentResource struct {
	ID        string        `json:"id"`
	Published string        `json:"published"`
	Updated   string        `json:"updated"`
	Actor     actorResource `json:"actor"`
	Object    struct {
		Content string `json:"content"`
	} `json:"object"`
	Plusoners counter `json:"plusoners"`
	InReplyTo []struct {
		ID string `json:"id"`
	} `json:"inReplyTo"`
}

type feed[T any] struct {
	Items         []T    `json:"items"`
	NextPageToken string `json:"nextPageToken"`
}

func toActor(a actorResource) Actor {
	return Actor{
		ID:          a.ID,
		DisplayName: a.DisplayName,
		URL:         a.URL,
		ImageURL:    a.Image.URL,
	}
}

func toPerson(p personResource, policy *bluemonday.Policy) Person {
	return Person{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		GivenName:   p.Name.GivenName,
		FamilyName:  p.Name.FamilyName,
		URL:         p.URL,
		ImageURL:    p.Image.URL,
		Tagline:     p.Tagline,
		Occupation:  p.Occupation,
		AboutMe:     sanitize(policy, p.AboutMe),
	}
}

func toActivity(a activityResource, policy *bluemonday.Policy) Activity {
	result := Activity{
		ID:        a.ID,
		Title:     a.Title,
		URL:       a.URL,
		Verb:      a.Verb,
		Published: parseTime(a.Published),
		Updated:   parseTime(a.Updated),
		Actor:     toActor(a.Actor),
		Content:   sanitize(policy, a.Object.Content),
		Replies:   a.Object.Replies.TotalItems,
		PlusOners: a.Object.Plusoners.TotalItems,
		Resharers: a.Object.Resharers.TotalItems,
	}
	for _, att := range a.Object.Attachments {
		result.Attachments = append(result.Attachments, Attachment{
			ObjectType:  att.ObjectType,
			DisplayName: att.DisplayName,
			URL:         att.URL,
			ImageURL:    att.Image.URL,
			Content:     att.Content,
		})
	}
	return result
}

func toComment(c commentResource, policy *bluemonday.Policy) Comment {
	result := Comment{
		ID:        c.ID,
		Published: parseTime(c.Published),
		Updated:   parseTime(c.Updated),
		Actor:     toActor(c.Actor),
		Content:   sanitize(policy, c.Object.Content),
		PlusOners: c.Plusoners.TotalItems,
	}
	if len(c.InReplyTo) > 0 {
		result.ActivityID = c.InReplyTo[0].ID
	}
	return result
}

// sanitize marks s safe for templates after stripping everything the
// policy does not allow.
func sanitize(policy *bluemonday.Policy, s string) template.HTML {
	if s == "" {
		return ""
	}
	return template.HTML(policy.Sanitize(s))
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
