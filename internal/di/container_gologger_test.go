package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-wiki/internal/logging/gologger"
	"github.com/goliatone/go-wiki/internal/runtimeconfig"
)

func newTestConfig(t *testing.T) runtimeconfig.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := runtimeconfig.DefaultConfig()
	cfg.ContentDir = filepath.Join(dir, "content")
	cfg.UserDir = filepath.Join(dir, "user")
	return cfg
}

func TestConfigureLoggerProviderUsesGoLoggerAdapter(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	provider, ok := container.loggerProvider.(*gologger.Provider)
	if !ok {
		t.Fatalf("expected go-logger provider, got %T", container.loggerProvider)
	}
	if logger := provider.GetLogger("wiki.test"); logger == nil {
		t.Fatal("expected logger from go-logger provider, got nil")
	}
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Index.Watch = true

	if _, err := NewContainer(cfg); err == nil {
		t.Fatal("expected watch without cache to be rejected")
	}
}

func TestStartWatcherIsNoOpByDefault(t *testing.T) {
	container, err := NewContainer(newTestConfig(t))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if err := container.StartWatcher(context.Background()); err != nil {
		t.Fatalf("start watcher: %v", err)
	}
	if container.watcher != nil {
		t.Fatal("watcher should not run without index.watch")
	}
}

func TestStartWatcherInvalidatesIndex(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Index.Cache = true
	cfg.Index.Watch = true
	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	ctx := context.Background()
	if err := container.StartWatcher(ctx); err != nil {
		t.Fatalf("start watcher: %v", err)
	}
	if err := container.StartWatcher(ctx); err != nil {
		t.Fatalf("second start should be a no-op: %v", err)
	}

	list, err := container.Index().Pages(ctx)
	if err != nil || len(list) != 0 {
		t.Fatalf("expected empty index, got %d pages (%v)", len(list), err)
	}

	path := filepath.Join(container.PageStore().Root(), "fresh.md")
	if err := os.WriteFile(path, []byte("---\ntitle: Fresh\n---\nbody\n"), 0o644); err != nil {
		t.Fatalf("write page: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		list, err = container.Index().Pages(ctx)
		if err == nil && len(list) == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("index was not invalidated, got %d pages (%v)", len(list), err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	if list[0].Title != "Fresh" {
		t.Fatalf("unexpected page %+v", list[0])
	}
}

func TestStartWatcherReportsMissingContentDir(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Index.Cache = true
	cfg.Index.Watch = true
	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if err := os.RemoveAll(container.PageStore().Root()); err != nil {
		t.Fatalf("remove content dir: %v", err)
	}

	started := make(chan error, 1)
	go func() { started <- container.StartWatcher(context.Background()) }()
	select {
	case err := <-started:
		if err == nil {
			t.Fatal("expected an error for a missing content dir")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("StartWatcher blocked instead of returning the error")
	}
	if err := container.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
