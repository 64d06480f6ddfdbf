package pages

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(Config{Root: t.TempDir()})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func writePage(t *testing.T, store *Store, url, content string) {
	t.Helper()
	path := store.Path(url)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", url, err)
	}
}

func TestStoreGetLegacyPage(t *testing.T) {
	store := newTestStore(t)
	writePage(t, store, "home", "title: Home\ntags: start, wiki\n\nWelcome to **the wiki**.\n")

	page, err := store.Get(context.Background(), "home")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if page.Title != "Home" {
		t.Fatalf("title mismatch: %q", page.Title)
	}
	if diff := cmp.Diff([]string{"start", "wiki"}, page.Tags); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(string(page.HTML), "<strong>the wiki</strong>") {
		t.Fatalf("expected rendered html, got %q", page.HTML)
	}
	if page.Modified.IsZero() {
		t.Fatal("expected modification time")
	}
}

func TestStoreGetMissingPage(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound, got %v", err)
	}
	var notFound *NotFoundError
	if !errors.As(err, &notFound) || notFound.URL != "missing" {
		t.Fatalf("expected NotFoundError for missing, got %#v", err)
	}
}

func TestStoreGetRejectsTraversal(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Get(context.Background(), "../outside"); !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("expected ErrInvalidURL, got %v", err)
	}
}

func TestStoreSaveCreatesNestedPage(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	page := store.GetBare("guides/setup")
	page.Title = "Setup Guide"
	page.Tags = []string{"guide", "ops", "guide"}
	page.Body = "Install with [[tools|the tools]].\n"

	if err := store.Save(ctx, page); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !store.Exists("guides/setup") {
		t.Fatal("expected page file to exist")
	}

	info, err := os.Stat(store.Path("guides/setup"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Fatalf("expected 0644 permissions, got %v", info.Mode().Perm())
	}

	if !strings.Contains(string(page.HTML), `<a href="/tools/">the tools</a>`) {
		t.Fatalf("expected Save to refresh html, got %q", page.HTML)
	}

	loaded, err := store.Get(ctx, "guides/setup")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if loaded.Title != "Setup Guide" {
		t.Fatalf("title mismatch: %q", loaded.Title)
	}
	if diff := cmp.Diff([]string{"guide", "ops"}, loaded.Tags); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
	if loaded.Body != "Install with [[tools|the tools]].\n" {
		t.Fatalf("body mismatch: %q", loaded.Body)
	}
}

func TestStoreMove(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	writePage(t, store, "drafts/idea", "title: Idea\n\nbody\n")
	writePage(t, store, "taken", "title: Taken\n\nbody\n")

	if err := store.Move(ctx, "drafts/idea", "taken"); !errors.Is(err, ErrPageExists) {
		t.Fatalf("expected ErrPageExists, got %v", err)
	}
	if err := store.Move(ctx, "nope", "elsewhere"); !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound, got %v", err)
	}

	if err := store.Move(ctx, "drafts/idea", "ideas/final"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if store.Exists("drafts/idea") || !store.Exists("ideas/final") {
		t.Fatal("expected page to move to ideas/final")
	}
	if _, err := os.Stat(filepath.Join(store.Root(), "drafts")); !os.IsNotExist(err) {
		t.Fatalf("expected empty drafts directory to be pruned, got %v", err)
	}
}

func TestStoreDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	writePage(t, store, "a/b/c", "body\n")
	writePage(t, store, "a/keep", "body\n")

	if err := store.Delete(ctx, "a/b/c"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.Root(), "a", "b")); !os.IsNotExist(err) {
		t.Fatalf("expected a/b to be pruned, got %v", err)
	}
	if !store.Exists("a/keep") {
		t.Fatal("expected sibling page to survive")
	}
	if err := store.Delete(ctx, "a/b/c"); !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound on second delete, got %v", err)
	}
}

func TestStoreListSkipsHiddenAndForeignFiles(t *testing.T) {
	store := newTestStore(t)
	writePage(t, store, "zeta", "title: Zeta\n\nz\n")
	writePage(t, store, "alpha/one", "title: One\n\n1\n")
	if err := os.WriteFile(filepath.Join(store.Root(), "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(store.Root(), ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(store.Root(), ".git", "HEAD.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	pages, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var urls []string
	for _, p := range pages {
		urls = append(urls, p.URL)
	}
	if diff := cmp.Diff([]string{"alpha/one", "zeta"}, urls); diff != "" {
		t.Fatalf("urls mismatch (-want +got):\n%s", diff)
	}
}

func TestPageDisplayTitle(t *testing.T) {
	page := &Page{URL: "docs/intro"}
	if page.DisplayTitle() != "docs/intro" {
		t.Fatalf("expected url fallback, got %q", page.DisplayTitle())
	}
	page.Title = "Intro"
	if page.DisplayTitle() != "Intro" {
		t.Fatalf("expected title, got %q", page.DisplayTitle())
	}
}
