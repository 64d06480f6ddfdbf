package markdown

import (
	"context"
	"fmt"

	"github.com/goliatone/go-wiki/pkg/interfaces"
)

// Result is the outcome of processing one page source.
type Result struct {
	HTML []byte
	Body []byte
	Meta interfaces.FrontMatter
}

// Processor runs the full page pipeline: metadata extraction, wiki link
// expansion and rendering.
type Processor struct {
	parser interfaces.MarkdownParser
	opts   interfaces.ParseOptions
}

// NewProcessor wraps parser. A nil parser falls back to a GoldmarkParser
// configured with opts.
func NewProcessor(parser interfaces.MarkdownParser, opts interfaces.ParseOptions) *Processor {
	if parser == nil {
		parser = NewGoldmarkParser(opts)
	}
	return &Processor{parser: parser, opts: opts}
}

// Process converts raw page source into HTML plus metadata.
func (p *Processor) Process(ctx context.Context, source []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	meta, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, err
	}

	html, err := p.Render(ctx, body)
	if err != nil {
		return nil, err
	}
	return &Result{HTML: html, Body: body, Meta: meta}, nil
}

// Render converts a Markdown body without metadata into HTML.
func (p *Processor) Render(ctx context.Context, body []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return []byte{}, nil
	}
	html, err := p.parser.ParseWithOptions(ExpandWikiLinks(body), p.opts)
	if err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	return html, nil
}
