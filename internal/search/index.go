package search

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-wiki/internal/logging"
	"github.com/goliatone/go-wiki/internal/pages"
	"github.com/goliatone/go-wiki/pkg/interfaces"
)

var ErrEmptyTerm = errors.New("search: term is required")

// Attribute names a page field that a query can match.
type Attribute string

const (
	AttrTitle Attribute = "title"
	AttrTags  Attribute = "tags"
	AttrBody  Attribute = "body"
)

// DefaultAttributes is used when a query names none.
var DefaultAttributes = []Attribute{AttrTitle, AttrTags, AttrBody}

// Lister is the part of the page store the index reads from.
type Lister interface {
	List(ctx context.Context) ([]*pages.Page, error)
}

// Query describes a literal search term.
type Query struct {
	Term       string
	IgnoreCase bool
	Attrs      []Attribute
}

// TagGroup lists the pages carrying one tag.
type TagGroup struct {
	Name  string
	Pages []*pages.Page
}

// Options configure an Index.
type Options struct {
	// Cache keeps the last page listing until Invalidate is called.
	Cache  bool
	Logger interfaces.Logger
}

// Index serves listing, tag and search queries on top of a Lister.
type Index struct {
	source Lister
	cache  bool
	logger interfaces.Logger

	mu     sync.RWMutex
	pages  []*pages.Page
	loaded bool
	// generation changes on every Invalidate so a listing that raced with
	// an invalidation is not cached.
	generation uint64
}

// NewIndex wraps source.
func NewIndex(source Lister, opts Options) *Index {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Index{source: source, cache: opts.Cache, logger: logger}
}

// Invalidate drops the cached listing so the next query rescans the store.
func (i *Index) Invalidate() {
	i.mu.Lock()
	i.pages = nil
	i.loaded = false
	i.generation++
	i.mu.Unlock()
	i.logger.Debug("index.invalidated")
}

// Pages returns every page ordered by title, then URL.
func (i *Index) Pages(ctx context.Context) ([]*pages.Page, error) {
	var generation uint64
	if i.cache {
		i.mu.RLock()
		if i.loaded {
			cached := append([]*pages.Page(nil), i.pages...)
			i.mu.RUnlock()
			return cached, nil
		}
		generation = i.generation
		i.mu.RUnlock()
	}

	list, err := i.source.List(ctx)
	if err != nil {
		return nil, err
	}
	sortByTitle(list)

	if i.cache {
		i.mu.Lock()
		if i.generation == generation {
			i.pages = list
			i.loaded = true
		}
		i.mu.Unlock()
		i.logger.Debug("index.loaded", "pages", len(list))
		return append([]*pages.Page(nil), list...), nil
	}
	return list, nil
}

// Tags groups pages by tag. Groups are sorted by tag name and pages keep the
// index order.
func (i *Index) Tags(ctx context.Context) ([]TagGroup, error) {
	list, err := i.Pages(ctx)
	if err != nil {
		return nil, err
	}

	grouped := map[string][]*pages.Page{}
	for _, page := range list {
		for _, tag := range page.Tags {
			grouped[tag] = append(grouped[tag], page)
		}
	}

	groups := make([]TagGroup, 0, len(grouped))
	for name, tagged := range grouped {
		groups = append(groups, TagGroup{Name: name, Pages: tagged})
	}
	sort.Slice(groups, func(a, b int) bool { return groups[a].Name < groups[b].Name })
	return groups, nil
}

// ByTag returns the pages carrying tag.
func (i *Index) ByTag(ctx context.Context, tag string) ([]*pages.Page, error) {
	list, err := i.Pages(ctx)
	if err != nil {
		return nil, err
	}
	var tagged []*pages.Page
	for _, page := range list {
		if page.HasTag(tag) {
			tagged = append(tagged, page)
		}
	}
	return tagged, nil
}

// Search returns the pages where any of the query attributes contains the
// term. The term is matched literally, never as a regular expression.
func (i *Index) Search(ctx context.Context, query Query) ([]*pages.Page, error) {
	matcher, err := compile(query)
	if err != nil {
		return nil, err
	}
	attrs := query.Attrs
	if len(attrs) == 0 {
		attrs = DefaultAttributes
	}

	list, err := i.Pages(ctx)
	if err != nil {
		return nil, err
	}

	var matched []*pages.Page
	for _, page := range list {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if matches(matcher, page, attrs) {
			matched = append(matched, page)
		}
	}
	i.logger.Debug("search.completed", "term", query.Term, "matches", len(matched), "scanned", len(list))
	return matched, nil
}

func compile(query Query) (*regexp.Regexp, error) {
	term := strings.TrimSpace(query.Term)
	if term == "" {
		return nil, ErrEmptyTerm
	}
	pattern := regexp.QuoteMeta(term)
	if query.IgnoreCase {
		pattern = "(?i)" + pattern
	}
	matcher, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("search: compile %q: %w", term, err)
	}
	return matcher, nil
}

func matches(matcher *regexp.Regexp, page *pages.Page, attrs []Attribute) bool {
	for _, attr := range attrs {
		switch attr {
		case AttrTitle:
			if matcher.MatchString(page.Title) {
				return true
			}
		case AttrTags:
			for _, tag := range page.Tags {
				if matcher.MatchString(tag) {
					return true
				}
			}
		case AttrBody:
			if matcher.MatchString(page.Body) {
				return true
			}
		}
	}
	return false
}

func sortByTitle(list []*pages.Page) {
	sort.SliceStable(list, func(a, b int) bool {
		ta := strings.ToLower(list[a].DisplayTitle())
		tb := strings.ToLower(list[b].DisplayTitle())
		if ta != tb {
			return ta < tb
		}
		return list[a].URL < list[b].URL
	})
}
