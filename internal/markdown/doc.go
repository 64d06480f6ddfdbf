// Package markdown turns wiki page source into HTML. It extracts page
// metadata (YAML front matter or the legacy "key: value" header), expands
// [[wiki links]], and renders the body with goldmark.
package markdown
