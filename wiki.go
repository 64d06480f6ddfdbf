// Package wiki is a small file-backed wiki: Markdown pages with front matter,
// a naive page index with tag and text search, a JSON users file and the
// HTTP routes to browse and edit it all.
package wiki

import (
	"context"
	"net/http"

	"github.com/goliatone/go-wiki/internal/di"
	"github.com/goliatone/go-wiki/internal/pages"
	"github.com/goliatone/go-wiki/internal/search"
	"github.com/goliatone/go-wiki/internal/sessions"
	"github.com/goliatone/go-wiki/internal/users"
	"github.com/goliatone/go-wiki/pkg/interfaces"
)

// Page exports the page model.
type Page = pages.Page

// PageStore exports the file-backed page store.
type PageStore = *pages.Store

// Index exports the page index.
type Index = *search.Index

// SearchQuery exports the search query model.
type SearchQuery = search.Query

// User exports the account model.
type User = users.User

// NewUser exports the account creation input.
type NewUser = users.NewUser

// UserManager exports the account service.
type UserManager = *users.Manager

// Option customises the services built by New.
type Option = di.Option

var (
	WithLoggerProvider = di.WithLoggerProvider
	WithMarkdownParser = di.WithMarkdownParser
	WithActivitySink   = di.WithActivitySink
)

// Module represents the top level wiki runtime façade.
type Module struct {
	container *di.Container
	handler   http.Handler
}

// New constructs a wiki from cfg. Directories named by the configuration are
// created when missing.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	handler, err := container.Server().Handler()
	if err != nil {
		return nil, err
	}
	return &Module{container: container, handler: handler}, nil
}

// Start launches background work such as the content watcher.
func (m *Module) Start(ctx context.Context) error {
	return m.container.StartWatcher(ctx)
}

// Close stops background work started by Start.
func (m *Module) Close() error {
	return m.container.Close()
}

// Config returns the configuration the module was built with.
func (m *Module) Config() Config {
	return m.container.Config
}

// Handler returns the HTTP handler serving every wiki route.
func (m *Module) Handler() http.Handler {
	return m.handler
}

// Register mounts the wiki routes on mux without the default middleware.
func (m *Module) Register(mux *http.ServeMux) error {
	return m.container.Server().Register(mux)
}

// Pages returns the page store.
func (m *Module) Pages() PageStore {
	return m.container.PageStore()
}

// Index returns the page index.
func (m *Module) Index() Index {
	return m.container.Index()
}

// Users returns the account service.
func (m *Module) Users() UserManager {
	return m.container.Users()
}

// Sessions returns the login session table.
func (m *Module) Sessions() *sessions.Manager {
	return m.container.Sessions()
}

// Logger returns the named logger from the configured provider.
func (m *Module) Logger(name string) interfaces.Logger {
	return m.container.LoggerProvider().GetLogger(name)
}
