package forms

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// DateLayout is the layout of date fields.
const DateLayout = "2006-01-02"

// Tri-state filter values.
const (
	TriStateAny = ""
	TriStateYes = "true"
	TriStateNo  = "false"
)

// hasText reports whether s contains a non-whitespace character.
func hasText(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) }) >= 0
}

// binder reads typed values out of url.Values and collects binding errors.
type binder struct {
	values url.Values
	errs   Errors
}

func newBinder(values url.Values) *binder {
	return &binder{values: values, errs: Errors{}}
}

func (b *binder) text(key string) string {
	return strings.TrimSpace(b.values.Get(key))
}

// list returns the non-empty values of a repeated key.
func (b *binder) list(key string) []string {
	var out []string
	for _, v := range b.values[key] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// flag binds a checkbox. Unchecked boxes are not submitted at all.
func (b *binder) flag(key string) bool {
	switch strings.ToLower(b.text(key)) {
	case "", "false", "off", "0":
		return false
	case "true", "on", "1":
		return true
	default:
		b.errs.Add(key, "must be true or false")
		return false
	}
}

// triState binds an any/yes/no filter.
func (b *binder) triState(key string) string {
	switch strings.ToLower(b.text(key)) {
	case "", "any":
		return TriStateAny
	case "true", "on", "yes":
		return TriStateYes
	case "false", "off", "no":
		return TriStateNo
	default:
		b.errs.Add(key, "must be true, false or empty")
		return TriStateAny
	}
}

// positiveInt checks that the field is empty or a number of at least 1 and
// returns it unchanged.
func (b *binder) positiveInt(key string) string {
	s := b.text(key)
	if s == "" {
		return ""
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		b.errs.Add(key, "must be a number")
		return s
	}
	if n < 1 {
		b.errs.Add(key, "must be at least 1")
	}
	return s
}

// date checks that the field is empty or a date and returns it unchanged.
func (b *binder) date(key string) string {
	s := b.text(key)
	if s == "" {
		return ""
	}
	if _, err := parseDate(s); err != nil {
		b.errs.Add(key, "must be a date (YYYY-MM-DD)")
	}
	return s
}

var indexedKey = regexp.MustCompile(`^([A-Za-z]+)\[(\d+)\]\.([A-Za-z]+)$`)

// indexes returns the sorted item indexes submitted for a collection such
// as emails[0].address.
func (b *binder) indexes(collection string) []int {
	seen := map[int]bool{}
	for key := range b.values {
		m := indexedKey.FindStringSubmatch(key)
		if m == nil || m[1] != collection {
			continue
		}
		i, err := strconv.Atoi(m[2])
		if err != nil {
			b.errs.Add(key, "invalid index")
			continue
		}
		seen[i] = true
	}

	out := make([]int, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func itemKey(collection string, i int, field string) string {
	return fmt.Sprintf("%s[%d].%s", collection, i, field)
}

// parseDate accepts a plain date or a full RFC 3339 timestamp. Plain dates
// are midnight UTC.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// mustDate parses a value the binder already accepted.
func mustDate(s string) time.Time {
	t, _ := parseDate(s)
	return t
}

func mustInt(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// formatDate is the inverse of parseDate. Midnight UTC prints as a plain
// date so that a date input shows it; anything else keeps its time.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	t = t.UTC()
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(DateLayout)
	}
	return t.Format(time.RFC3339)
}

func triStatePtr(s string) *bool {
	switch s {
	case TriStateYes:
		v := true
		return &v
	case TriStateNo:
		v := false
		return &v
	default:
		return nil
	}
}
