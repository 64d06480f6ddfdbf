package interfaces

import "time"

// MarkdownParser converts raw Markdown bytes into HTML.
type MarkdownParser interface {
	// Parse converts Markdown into HTML using the parser's default settings.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions converts Markdown into HTML using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises Markdown rendering. Option names stay readable so
// they can be loaded from configuration files.
type ParseOptions struct {
	Extensions []string `json:"extensions,omitempty"`
	Sanitize   bool     `json:"sanitize,omitempty"`
	HardWraps  bool     `json:"hard_wraps,omitempty"`
	SafeMode   bool     `json:"safe_mode,omitempty"`
}

// FrontMatter models the metadata stored at the top of a wiki page. Title and
// Tags drive the index and tag views; anything else lands in Custom.
type FrontMatter struct {
	Title   string         `yaml:"title,omitempty" json:"title"`
	Tags    []string       `yaml:"tags,omitempty" json:"tags"`
	Summary string         `yaml:"summary,omitempty" json:"summary,omitempty"`
	Author  string         `yaml:"author,omitempty" json:"author,omitempty"`
	Date    time.Time      `yaml:"date,omitempty" json:"date,omitempty"`
	Custom  map[string]any `yaml:",inline" json:"custom,omitempty"`
	Raw     map[string]any `yaml:"-" json:"raw,omitempty"`
}
