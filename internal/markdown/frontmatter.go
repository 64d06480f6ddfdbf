package markdown

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-wiki/pkg/interfaces"
)

var headerLine = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_-]*):\s*(.*)$`)

// ParseFrontMatter splits source into metadata and Markdown body. YAML front
// matter delimited by "---" is preferred; otherwise a leading block of
// "key: value" lines ended by a blank line is read as the page header.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte, error) {
	source = normalizeNewlines(source)
	if len(bytes.TrimSpace(source)) == 0 {
		return emptyFrontMatter(), []byte{}, nil
	}

	if bytes.HasPrefix(source, []byte("---\n")) {
		var meta frontMatterEnvelope
		body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
		if err != nil {
			return interfaces.FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
		}
		return meta.toFrontMatter(), bytes.TrimLeft(body, "\n"), nil
	}

	if meta, body, ok := parseHeader(source); ok {
		return meta, body, nil
	}
	return emptyFrontMatter(), source, nil
}

// MarshalFrontMatter renders meta as YAML front matter followed by body.
func MarshalFrontMatter(meta interfaces.FrontMatter, body []byte) ([]byte, error) {
	meta.Tags = normalizeTags(meta.Tags)
	if len(meta.Custom) == 0 {
		meta.Custom = nil
	}

	encoded, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshal frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(len(encoded) + len(body) + 16)
	buf.WriteString("---\n")
	buf.Write(encoded)
	buf.WriteString("---\n\n")
	buf.Write(bytes.TrimLeft(normalizeNewlines(body), "\n"))
	if buf.Len() > 0 && buf.Bytes()[buf.Len()-1] != '\n' {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// parseHeader reads the legacy page header. Every line before the first blank
// line must look like "key: value"; anything else means the page has no header.
func parseHeader(source []byte) (interfaces.FrontMatter, []byte, bool) {
	scanner := bufio.NewScanner(bytes.NewReader(source))
	scanner.Buffer(make([]byte, 0, 64*1024), len(source)+1)

	fields := map[string]string{}
	var order []string
	consumed := 0
	terminated := false

	for scanner.Scan() {
		line := scanner.Text()
		consumed += len(line) + 1
		if strings.TrimSpace(line) == "" {
			terminated = true
			break
		}
		match := headerLine.FindStringSubmatch(line)
		if match == nil {
			return interfaces.FrontMatter{}, nil, false
		}
		key := strings.ToLower(match[1])
		if _, seen := fields[key]; !seen {
			order = append(order, key)
		}
		fields[key] = strings.TrimSpace(match[2])
	}
	if len(order) == 0 {
		return interfaces.FrontMatter{}, nil, false
	}

	body := []byte{}
	if terminated && consumed < len(source) {
		body = bytes.TrimLeft(source[consumed:], "\n")
	}

	meta := emptyFrontMatter()
	for _, key := range order {
		value := fields[key]
		meta.Raw[key] = value
		switch key {
		case "title":
			meta.Title = value
		case "tags":
			meta.Tags = normalizeTags(strings.Split(value, ","))
			meta.Raw[key] = append([]string(nil), meta.Tags...)
		case "summary":
			meta.Summary = value
		case "author":
			meta.Author = value
		case "date":
			// Unparseable dates stay in Raw only.
			if parsed, err := time.Parse(time.DateOnly, value); err == nil {
				meta.Date = parsed
			}
		default:
			meta.Custom[key] = value
		}
	}
	return meta, body, true
}

// tagList accepts either a YAML sequence or a comma separated scalar.
type tagList []string

func (t *tagList) UnmarshalYAML(unmarshal func(any) error) error {
	var list []string
	if err := unmarshal(&list); err == nil {
		*t = normalizeTags(list)
		return nil
	}
	var scalar string
	if err := unmarshal(&scalar); err != nil {
		return fmt.Errorf("tags: expected list or string: %w", err)
	}
	*t = normalizeTags(strings.Split(scalar, ","))
	return nil
}

type frontMatterEnvelope struct {
	Title   string         `yaml:"title"`
	Tags    tagList        `yaml:"tags"`
	Summary string         `yaml:"summary"`
	Author  string         `yaml:"author"`
	Date    time.Time      `yaml:"date"`
	Custom  map[string]any `yaml:",inline"`
}

func (env frontMatterEnvelope) toFrontMatter() interfaces.FrontMatter {
	meta := emptyFrontMatter()
	for key, value := range env.Custom {
		meta.Custom[key] = value
		meta.Raw[key] = value
	}

	meta.Title = env.Title
	meta.Tags = []string(env.Tags)
	meta.Summary = env.Summary
	meta.Author = env.Author
	meta.Date = env.Date

	if env.Title != "" {
		meta.Raw["title"] = env.Title
	}
	if len(env.Tags) > 0 {
		meta.Raw["tags"] = append([]string(nil), env.Tags...)
	}
	if env.Summary != "" {
		meta.Raw["summary"] = env.Summary
	}
	if env.Author != "" {
		meta.Raw["author"] = env.Author
	}
	if !env.Date.IsZero() {
		meta.Raw["date"] = env.Date
	}
	return meta
}

func emptyFrontMatter() interfaces.FrontMatter {
	return interfaces.FrontMatter{
		Custom: map[string]any{},
		Raw:    map[string]any{},
	}
}

// normalizeTags trims tags, drops empties and removes duplicates while
// keeping the first occurrence order.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func normalizeNewlines(source []byte) []byte {
	if !bytes.Contains(source, []byte("\r")) {
		return source
	}
	source = bytes.ReplaceAll(source, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(source, []byte("\r"), []byte("\n"))
}
