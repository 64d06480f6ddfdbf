package di

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	wikihttp "github.com/goliatone/go-wiki/internal/http"
	"github.com/goliatone/go-wiki/internal/logging"
	"github.com/goliatone/go-wiki/internal/logging/console"
	"github.com/goliatone/go-wiki/internal/logging/gologger"
	"github.com/goliatone/go-wiki/internal/markdown"
	"github.com/goliatone/go-wiki/internal/pages"
	"github.com/goliatone/go-wiki/internal/runtimeconfig"
	"github.com/goliatone/go-wiki/internal/search"
	"github.com/goliatone/go-wiki/internal/sessions"
	"github.com/goliatone/go-wiki/internal/users"
	"github.com/goliatone/go-wiki/pkg/activity/usersink"
	"github.com/goliatone/go-wiki/pkg/interfaces"
)

// Container wires the wiki services from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	parser         interfaces.MarkdownParser
	activity       interfaces.ActivitySink

	processor *markdown.Processor
	pages     *pages.Store
	index     *search.Index
	userStore *users.FileStore
	users     *users.Manager
	sessions  *sessions.Manager
	server    *wikihttp.Server

	mu      sync.Mutex
	watcher *search.Watcher
}

// Option mutates the container before services are built.
type Option func(*Container)

// WithLoggerProvider overrides the provider selected by the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithMarkdownParser replaces the goldmark parser.
func WithMarkdownParser(parser interfaces.MarkdownParser) Option {
	return func(c *Container) {
		if parser != nil {
			c.parser = parser
		}
	}
}

// WithActivitySink receives account activity in addition to the log sink.
func WithActivitySink(sink interfaces.ActivitySink) Option {
	return func(c *Container) {
		if sink != nil {
			c.activity = sink
		}
	}
}

// NewContainer validates cfg and builds every service. The index watcher is
// not started; call StartWatcher once the host is ready to serve.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if err := c.configureContent(); err != nil {
		return nil, err
	}
	if err := c.configureUsers(); err != nil {
		return nil, err
	}
	if err := c.configureServer(); err != nil {
		return nil, err
	}

	logging.ModuleLogger(c.loggerProvider, "wiki").Info("wiki.configured",
		"content_dir", c.pages.Root(),
		"users_file", c.userStore.Path(),
		"private", cfg.Private,
		"index_cache", cfg.Index.Cache,
		"index_watch", cfg.Index.Watch,
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	cfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		opts := console.Options{}
		if strings.TrimSpace(cfg.Level) != "" {
			level, err := console.ParseLevel(cfg.Level)
			if err != nil {
				return err
			}
			opts.MinLevel = &level
		}
		c.loggerProvider = console.NewProvider(opts)
	}
	return nil
}

func (c *Container) configureContent() error {
	parserCfg := c.Config.Markdown.Parser
	parseOpts := interfaces.ParseOptions{
		Extensions: append([]string(nil), parserCfg.Extensions...),
		Sanitize:   parserCfg.Sanitize,
		HardWraps:  parserCfg.HardWraps,
		SafeMode:   parserCfg.SafeMode,
	}
	parser := c.parser
	if parser == nil {
		parser = markdown.NewGoldmarkParser(parseOpts)
	}
	c.processor = markdown.NewProcessor(parser, parseOpts)

	store, err := pages.NewStore(pages.Config{
		Root:      c.Config.ContentDir,
		Extension: c.Config.Markdown.Extension,
		Processor: c.processor,
		Logger:    logging.PagesLogger(c.loggerProvider),
	})
	if err != nil {
		return err
	}
	c.pages = store
	c.index = search.NewIndex(store, search.Options{
		Cache:  c.Config.Index.Cache,
		Logger: logging.SearchLogger(c.loggerProvider),
	})
	return nil
}

func (c *Container) configureUsers() error {
	store, err := users.NewFileStore(c.Config.UsersFile())
	if err != nil {
		return err
	}
	method, err := users.ParseAuthMethod(c.Config.DefaultAuthMethod)
	if err != nil {
		return err
	}
	logger := logging.UsersLogger(c.loggerProvider)

	var sink interfaces.ActivitySink = usersink.LogSink{Logger: logger}
	if c.activity != nil {
		sink = usersink.Multi{sink, c.activity}
	}

	c.userStore = store
	c.users = users.NewManager(store, users.Options{
		DefaultMethod: method,
		Activity:      sink,
		Logger:        logger,
	})
	c.sessions = sessions.NewManager(sessions.Options{
		TTL:    c.Config.Sessions.TTL.Std(),
		Secure: c.Config.Server.SecureCookies,
	})
	return nil
}

func (c *Container) configureServer() error {
	method, _ := users.ParseAuthMethod(c.Config.DefaultAuthMethod)
	server, err := wikihttp.NewServer(
		wikihttp.WithTitle(c.Config.Title),
		wikihttp.WithPrivate(c.Config.Private),
		wikihttp.WithDefaultAuthMethod(method),
		wikihttp.WithCommandTimeout(c.Config.Commands.Timeout.Std()),
		wikihttp.WithPageStore(c.pages),
		wikihttp.WithIndex(c.index),
		wikihttp.WithUserService(c.users),
		wikihttp.WithSessions(c.sessions),
		wikihttp.WithRenderer(c.processor),
		wikihttp.WithLogger(logging.HTTPLogger(c.loggerProvider)),
		wikihttp.WithCommandLogger(logging.CommandsLogger(c.loggerProvider)),
	)
	if err != nil {
		return fmt.Errorf("di: build http server: %w", err)
	}
	c.server = server
	return nil
}

// StartWatcher begins invalidating the index cache on content changes. It is
// a no-op unless index watching is enabled, and safe to call more than once.
func (c *Container) StartWatcher(ctx context.Context) error {
	if !c.Config.Index.Watch {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watcher != nil {
		return nil
	}
	watcher, err := search.NewWatcher(c.pages.Root(), c.pages.Extension(), c.index, logging.SearchLogger(c.loggerProvider))
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return errors.Join(err, watcher.Close())
	}
	c.watcher = watcher
	return nil
}

// Close stops background work.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watcher == nil {
		return nil
	}
	err := c.watcher.Close()
	c.watcher = nil
	return err
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }
func (c *Container) Processor() *markdown.Processor           { return c.processor }
func (c *Container) PageStore() *pages.Store                  { return c.pages }
func (c *Container) Index() *search.Index                     { return c.index }
func (c *Container) UserStore() *users.FileStore              { return c.userStore }
func (c *Container) Users() *users.Manager                    { return c.users }
func (c *Container) Sessions() *sessions.Manager              { return c.sessions }
func (c *Container) Server() *wikihttp.Server                 { return c.server }
