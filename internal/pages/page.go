package pages

import (
	"html/template"
	"slices"
	"strings"
	"time"

	"github.com/goliatone/go-wiki/pkg/interfaces"
)

// Page is a single wiki page backed by one file on disk.
type Page struct {
	URL      string
	Path     string
	Title    string
	Tags     []string
	Body     string
	HTML     []byte
	Meta     interfaces.FrontMatter
	Modified time.Time
}

// DisplayTitle falls back to the URL for pages saved without a title.
func (p *Page) DisplayTitle() string {
	if p == nil {
		return ""
	}
	if title := strings.TrimSpace(p.Title); title != "" {
		return title
	}
	return p.URL
}

// Content returns the rendered body for templates. The HTML comes from the
// markdown processor, which sanitises it when configured to.
func (p *Page) Content() template.HTML {
	if p == nil {
		return ""
	}
	return template.HTML(p.HTML)
}

// HasTag reports whether the page carries tag exactly.
func (p *Page) HasTag(tag string) bool {
	return slices.Contains(p.Tags, tag)
}
