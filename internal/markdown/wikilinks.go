package markdown

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-wiki/internal/pageurl"
)

var wikiLinkPattern = regexp.MustCompile(`\[\[([^\]|\n]+)(?:\|([^\]\n]+))?\]\]`)

// ExpandWikiLinks rewrites [[target]] and [[target|label]] into Markdown
// links pointing at /target/. Fenced code blocks and inline code spans are
// copied unchanged.
func ExpandWikiLinks(source []byte) []byte {
	if !strings.Contains(string(source), "[[") {
		return source
	}

	lines := strings.SplitAfter(string(source), "\n")
	var out strings.Builder
	out.Grow(len(source))

	fence := ""
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		if marker := fenceMarker(trimmed); marker != "" {
			switch {
			case fence == "":
				fence = marker
			case strings.HasPrefix(trimmed, fence):
				fence = ""
			}
			out.WriteString(line)
			continue
		}
		if fence != "" {
			out.WriteString(line)
			continue
		}
		out.WriteString(expandLine(line))
	}
	return []byte(out.String())
}

func fenceMarker(line string) string {
	switch {
	case strings.HasPrefix(line, "```"):
		return "```"
	case strings.HasPrefix(line, "~~~"):
		return "~~~"
	default:
		return ""
	}
}

// expandLine only touches the parts of line outside backtick code spans.
// Text after an unbalanced backtick is treated as code.
func expandLine(line string) string {
	parts := strings.Split(line, "`")
	for i := 0; i < len(parts); i += 2 {
		parts[i] = wikiLinkPattern.ReplaceAllStringFunc(parts[i], rewriteWikiLink)
	}
	return strings.Join(parts, "`")
}

func rewriteWikiLink(match string) string {
	groups := wikiLinkPattern.FindStringSubmatch(match)
	target := strings.TrimSpace(groups[1])
	href, ok := WikiLinkHref(target)
	if !ok {
		return match
	}
	label := strings.TrimSpace(groups[2])
	if label == "" {
		label = target
	}
	return "[" + label + "](" + href + ")"
}

// WikiLinkHref resolves a link target written by an author, such as
// "Getting Started", to the path of the page it names. ok is false when the
// target cannot name a page.
func WikiLinkHref(target string) (string, bool) {
	url, err := pageurl.Clean(target)
	if err != nil {
		return "", false
	}
	return pageurl.Href(url), true
}
