package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"

	"github.com/MrSnakeDoc/domon/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names
const (
	PageDashboard = "dashboard"
	PageDetail    = "detail"
	PageLogin     = "login"
	PageConfirm   = "confirm"
)

// Layout carries what every page shows around its content
type Layout struct {
	Notice    string // blocking error notice
	Flash     string // success message
	Anonymous bool   // hides the logout button
	CSRF      string // token every POST form submits
}

// Chip is one filter chip of the toolbar
type Chip struct {
	Label  string
	Href   string
	Active bool
}

// DashboardPage is the main table view
type DashboardPage struct {
	Layout
	Query      string
	Filter     string
	Chips      []Chip
	Table      Table
	ReadOnly   bool
	LastReload string
}

// DetailPage is the drawer of one domain
type DetailPage struct {
	Layout
	Detail Detail
}

// LoginPage is the login form
type LoginPage struct {
	Layout
	Username string
}

// ConfirmPage asks before removing a domain
type ConfirmPage struct {
	Layout
	Domain string
	Prompt string
}

// HTML renders the dashboard pages from the embedded templates
type HTML struct {
	pages map[string]*template.Template
}

// NewHTML parses every page once
func NewHTML() (*HTML, error) {
	funcs := template.FuncMap{
		"safeCSS": func(s string) template.CSS { return template.CSS(s) },
	}

	h := &HTML{pages: make(map[string]*template.Template)}
	for _, name := range []string{PageDashboard, PageDetail, PageLogin, PageConfirm} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		h.pages[name] = t
	}
	return h, nil
}

// Render executes one page
func (h *HTML) Render(w io.Writer, page string, data any) error {
	t, ok := h.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	return t.ExecuteTemplate(w, "base", data)
}

// Chips builds the filter chips: the fixed ones then one per tag.
// Every chip keeps the current query.
func Chips(query string, active domain.Filter, tags []string) []Chip {
	fixed := []struct {
		label string
		f     domain.Filter
	}{
		{"All", domain.AllFilter},
		{"Up", domain.Filter{Kind: domain.FilterUp}},
		{"Down", domain.Filter{Kind: domain.FilterDown}},
		{"SSL ≤ 14d", domain.Filter{Kind: domain.FilterWarn}},
	}

	chips := make([]Chip, 0, len(fixed)+len(tags))
	for _, c := range fixed {
		chips = append(chips, chip(c.label, query, c.f, active))
	}
	for _, tag := range tags {
		chips = append(chips, chip("#"+tag, query, domain.TagFilter(tag), active))
	}
	return chips
}

func chip(label, query string, f, active domain.Filter) Chip {
	v := url.Values{}
	if query != "" {
		v.Set("q", query)
	}
	if f.Kind != domain.FilterAll {
		v.Set("filter", f.String())
	}
	href := "/"
	if enc := v.Encode(); enc != "" {
		href += "?" + enc
	}
	return Chip{Label: label, Href: href, Active: f.String() == active.String()}
}
