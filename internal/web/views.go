package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"github.com/teemow/quickstart/internal/contacts"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageNames lists the views. Each is parsed together with layout.html.
var pageNames = []string{
	"signin",
	"profile",
	"contacts", "contact", "groups", "group",
	"person", "people", "activity", "activities", "comments", "comment",
	"tasklists", "tasklist", "tasks", "task",
}

// model is the data handed to a view.
type model map[string]any

// notes renders task notes. Raw HTML in the input is escaped.
var notes = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

type views struct {
	pages map[string]*template.Template
}

func newViews() (*views, error) {
	funcs := template.FuncMap{
		// csrfField is replaced per request in render.
		"csrfField": func() template.HTML { return "" },
		"humanize":  humanizeTime,
		"date":      formatDate,
		"markdown":  renderMarkdown,
		"emailRels": func(current string) []option { return relOptions(contacts.EmailRelations, current) },
		"phoneRels": func(current string) []option { return relOptions(contacts.PhoneRelations, current) },
	}

	v := &views{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse view %s: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

// render executes the view into a buffer so that a template error still
// produces a clean 500.
func (v *views) render(w http.ResponseWriter, r *http.Request, status int, name string, data model) error {
	page, ok := v.pages[name]
	if !ok {
		return fmt.Errorf("unknown view %q", name)
	}
	t, err := page.Clone()
	if err != nil {
		return fmt.Errorf("failed to clone view %s: %w", name, err)
	}
	t.Funcs(template.FuncMap{
		"csrfField": func() template.HTML { return csrf.TemplateField(r) },
	})

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("failed to render view %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}

func humanizeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func renderMarkdown(s string) template.HTML {
	var buf bytes.Buffer
	if err := notes.Convert([]byte(s), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(s))
	}
	return template.HTML(buf.String())
}

// option is one entry of a select element.
type option struct {
	Value    string
	Label    string
	Selected bool
}

// relOptions lists the relation choices for an email or phone row, led by the
// empty "custom" choice. A current value outside rels is kept as a choice so
// that resubmitting the form does not lose it.
func relOptions(rels []string, current string) []option {
	opts := make([]option, 0, len(rels)+2)
	opts = append(opts, option{Value: "", Label: "custom", Selected: current == ""})
	known := false
	for _, rel := range rels {
		selected := rel == current
		known = known || selected
		opts = append(opts, option{Value: rel, Label: rel, Selected: selected})
	}
	if current != "" && !known {
		opts = append(opts, option{Value: current, Label: current, Selected: true})
	}
	return opts
}
