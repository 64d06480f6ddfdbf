package pages

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/goliatone/go-wiki/internal/logging"
	"github.com/goliatone/go-wiki/internal/markdown"
	"github.com/goliatone/go-wiki/pkg/interfaces"
)

const defaultExtension = ".md"

// Config controls where pages live and how they are rendered.
type Config struct {
	Root      string
	Extension string
	Processor *markdown.Processor
	Logger    interfaces.Logger
}

// Store maps page URLs to files under Root. Every operation goes to disk;
// callers that want caching sit in front of the store.
type Store struct {
	root      string
	ext       string
	processor *markdown.Processor
	logger    interfaces.Logger
}

// NewStore prepares the content root, creating it when missing.
func NewStore(cfg Config) (*Store, error) {
	root := strings.TrimSpace(cfg.Root)
	if root == "" {
		return nil, errors.New("pages: content root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("pages: resolve root %s: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("pages: create root %s: %w", abs, err)
	}

	ext := cfg.Extension
	if ext == "" {
		ext = defaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	processor := cfg.Processor
	if processor == nil {
		processor = markdown.NewProcessor(nil, interfaces.ParseOptions{})
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}

	return &Store{root: abs, ext: ext, processor: processor, logger: logger}, nil
}

// Root returns the absolute content directory.
func (s *Store) Root() string { return s.root }

// Extension returns the page file extension, including the dot.
func (s *Store) Extension() string { return s.ext }

// Path returns the file backing url. The url must already be validated.
func (s *Store) Path(url string) string {
	return filepath.Join(s.root, filepath.FromSlash(url)+s.ext)
}

// Exists reports whether a page file is present for url.
func (s *Store) Exists(url string) bool {
	clean, err := ValidateURL(url)
	if err != nil {
		return false
	}
	info, err := os.Stat(s.Path(clean))
	return err == nil && info.Mode().IsRegular()
}

// Get loads and renders the page stored at url.
func (s *Store) Get(ctx context.Context, url string) (*Page, error) {
	clean, err := ValidateURL(url)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, clean, s.Path(clean))
}

// GetBare returns an empty, unsaved page for url.
func (s *Store) GetBare(url string) *Page {
	clean := strings.Trim(strings.TrimSpace(url), "/")
	return &Page{
		URL:  clean,
		Path: s.Path(clean),
		Meta: interfaces.FrontMatter{Custom: map[string]any{}, Raw: map[string]any{}},
	}
}

// Save writes the page metadata and body atomically, then refreshes the
// rendered fields on page.
func (s *Store) Save(ctx context.Context, page *Page) error {
	if page == nil {
		return errors.New("pages: page is nil")
	}
	clean, err := ValidateURL(page.URL)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	meta := page.Meta
	meta.Title = strings.TrimSpace(page.Title)
	meta.Tags = page.Tags
	meta.Raw = nil

	source, err := markdown.MarshalFrontMatter(meta, []byte(page.Body))
	if err != nil {
		return err
	}

	path := s.Path(clean)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("pages: create directory for %s: %w", clean, err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(source)); err != nil {
		return fmt.Errorf("pages: write %s: %w", clean, err)
	}
	// atomic.WriteFile keeps the temp file mode on new files.
	if err := os.Chmod(path, 0o644); err != nil {
		return fmt.Errorf("pages: chmod %s: %w", clean, err)
	}

	saved, err := s.load(ctx, clean, path)
	if err != nil {
		return err
	}
	*page = *saved

	logging.WithPageContext(s.logger, clean, "save").Info("page.saved", "bytes", len(source))
	return nil
}

// Move renames the page at url to newURL, creating parent directories as
// needed and pruning directories left empty.
func (s *Store) Move(ctx context.Context, url, newURL string) error {
	from, err := ValidateURL(url)
	if err != nil {
		return err
	}
	to, err := ValidateURL(newURL)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.Exists(from) {
		return &NotFoundError{URL: from}
	}
	if from == to {
		return nil
	}
	if s.Exists(to) {
		return &ExistsError{URL: to}
	}

	target := s.Path(to)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("pages: create directory for %s: %w", to, err)
	}
	if err := os.Rename(s.Path(from), target); err != nil {
		return fmt.Errorf("pages: move %s to %s: %w", from, to, err)
	}
	s.pruneEmptyDirs(filepath.Dir(s.Path(from)))

	logging.WithPageContext(s.logger, from, "move").Info("page.moved", "target", to)
	return nil
}

// Delete removes the page at url.
func (s *Store) Delete(ctx context.Context, url string) error {
	clean, err := ValidateURL(url)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.Path(clean)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &NotFoundError{URL: clean}
		}
		return fmt.Errorf("pages: delete %s: %w", clean, err)
	}
	s.pruneEmptyDirs(filepath.Dir(path))

	logging.WithPageContext(s.logger, clean, "delete").Info("page.deleted")
	return nil
}

// List loads every page under the root, ordered by URL. Files that fail to
// parse are logged and skipped so one broken page does not hide the rest.
func (s *Store) List(ctx context.Context) ([]*Page, error) {
	var pages []*Page
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != s.root && strings.HasPrefix(name, ".") {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, s.ext) || !d.Type().IsRegular() {
			return nil
		}

		url, ok := s.urlFor(path)
		if !ok {
			return nil
		}
		page, err := s.load(ctx, url, path)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			logging.WithPageContext(s.logger, url, "list").Warn("page.load_failed", "error", err)
			return nil
		}
		pages = append(pages, page)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("pages: list %s: %w", s.root, err)
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].URL < pages[j].URL })
	return pages, nil
}

func (s *Store) load(ctx context.Context, url, path string) (*Page, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{URL: url}
		}
		return nil, fmt.Errorf("pages: read %s: %w", url, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("pages: stat %s: %w", url, err)
	}

	result, err := s.processor.Process(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("pages: render %s: %w", url, err)
	}

	return &Page{
		URL:      url,
		Path:     path,
		Title:    result.Meta.Title,
		Tags:     result.Meta.Tags,
		Body:     string(result.Body),
		HTML:     result.HTML,
		Meta:     result.Meta,
		Modified: info.ModTime(),
	}, nil
}

func (s *Store) urlFor(path string) (string, bool) {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return "", false
	}
	url := strings.TrimSuffix(filepath.ToSlash(rel), s.ext)
	if _, err := ValidateURL(url); err != nil {
		return "", false
	}
	return url, true
}

// pruneEmptyDirs removes dir and its parents while they are empty, stopping
// at the content root.
func (s *Store) pruneEmptyDirs(dir string) {
	for {
		rel, err := filepath.Rel(s.root, dir)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}
