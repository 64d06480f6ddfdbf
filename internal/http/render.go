package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/goliatone/go-wiki/internal/pages"
	"github.com/goliatone/go-wiki/internal/search"
	"github.com/goliatone/go-wiki/internal/sessions"
	"github.com/goliatone/go-wiki/internal/users"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutTemplate = "templates/layout.html"

// viewData is handed to every template.
type viewData struct {
	SiteTitle string
	User      string
	Private   bool
	Flashes   []sessions.Flash

	Heading string
	Page    *pages.Page
	Pages   []*pages.Page
	Tags    []search.TagGroup
	Tag     string
	Users   []users.User
	Target  string
	Next    string

	Form   any
	Errors map[string]string

	Searched bool
	Term     string
}

type views struct {
	templates map[string]*template.Template
}

var templateFuncs = template.FuncMap{
	"pageHref": pageHref,
	"join":     strings.Join,
}

func loadViews() (*views, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	v := &views{templates: map[string]*template.Template{}}
	for _, name := range names {
		if name == layoutTemplate {
			continue
		}
		tpl, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(templateFS, layoutTemplate, name)
		if err != nil {
			return nil, fmt.Errorf("http: parse %s: %w", name, err)
		}
		v.templates[strings.TrimPrefix(name, "templates/")] = tpl
	}
	return v, nil
}

// render writes the named view with status. Templates execute into a buffer
// so a failing template never leaves a half written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data viewData) {
	tpl, ok := s.views.templates[name]
	if !ok {
		s.logger.WithContext(r.Context()).Error("http.template_missing", "template", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	data.SiteTitle = s.title
	data.Private = s.private
	data.User = s.sessions.Current(r)
	data.Flashes = s.sessions.PopFlashes(r)

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		s.logger.WithContext(r.Context()).Error("http.template_failed", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "404.html", viewData{Heading: "Not found"})
}
