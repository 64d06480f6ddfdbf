package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-wiki/internal/commands"
	pagescmd "github.com/goliatone/go-wiki/internal/commands/pages"
	userscmd "github.com/goliatone/go-wiki/internal/commands/users"
	"github.com/goliatone/go-wiki/internal/logging"
	"github.com/goliatone/go-wiki/internal/pages"
	"github.com/goliatone/go-wiki/internal/search"
	"github.com/goliatone/go-wiki/internal/sessions"
	"github.com/goliatone/go-wiki/internal/users"
	"github.com/goliatone/go-wiki/pkg/interfaces"
)

// AdminRole is required for bulk deletion of accounts.
const AdminRole = "admin"

// PageStore is the content store used by the page routes.
type PageStore interface {
	Exists(url string) bool
	Get(ctx context.Context, url string) (*pages.Page, error)
	GetBare(url string) *pages.Page
	Save(ctx context.Context, page *pages.Page) error
	Move(ctx context.Context, url, newURL string) error
	Delete(ctx context.Context, url string) error
}

// PageIndex answers listing, tag and search queries.
type PageIndex interface {
	Pages(ctx context.Context) ([]*pages.Page, error)
	Tags(ctx context.Context) ([]search.TagGroup, error)
	ByTag(ctx context.Context, tag string) ([]*pages.Page, error)
	Search(ctx context.Context, query search.Query) ([]*pages.Page, error)
	Invalidate()
}

// UserService is the account service used by the user routes.
type UserService interface {
	userscmd.UserService
	Get(ctx context.Context, name string) (users.User, error)
	List(ctx context.Context) ([]users.User, error)
	Authenticate(ctx context.Context, name, password string) (users.User, error)
	Logout(ctx context.Context, name string) error
}

// Renderer turns a Markdown body into HTML for previews.
type Renderer interface {
	Render(ctx context.Context, body []byte) ([]byte, error)
}

// Server holds the route handlers and their dependencies.
type Server struct {
	title          string
	private        bool
	defaultMethod  users.AuthMethod
	commandTimeout time.Duration

	pages    PageStore
	index    PageIndex
	users    UserService
	sessions *sessions.Manager
	renderer Renderer
	logger   interfaces.Logger
	cmdLog   interfaces.Logger
	views    *views

	createUser   *userscmd.CreateUserHandler
	deleteUser   *userscmd.DeleteUserHandler
	deleteByRole *userscmd.DeleteUsersByRoleHandler
	movePage     *pagescmd.MovePageHandler
	deletePage   *pagescmd.DeletePageHandler
}

// Option mutates the Server configuration.
type Option func(*Server)

// WithTitle sets the wiki name shown in every page header.
func WithTitle(title string) Option {
	return func(s *Server) {
		if trimmed := strings.TrimSpace(title); trimmed != "" {
			s.title = trimmed
		}
	}
}

// WithPrivate requires a login for every page route.
func WithPrivate(private bool) Option {
	return func(s *Server) {
		s.private = private
	}
}

// WithDefaultAuthMethod selects how passwords of new accounts are stored.
func WithDefaultAuthMethod(method users.AuthMethod) Option {
	return func(s *Server) {
		if method != "" {
			s.defaultMethod = method
		}
	}
}

// WithCommandTimeout bounds every mutating command.
func WithCommandTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		s.commandTimeout = timeout
	}
}

// WithPageStore wires the content store.
func WithPageStore(store PageStore) Option {
	return func(s *Server) {
		s.pages = store
	}
}

// WithIndex wires the page index.
func WithIndex(index PageIndex) Option {
	return func(s *Server) {
		s.index = index
	}
}

// WithUserService wires the account service.
func WithUserService(service UserService) Option {
	return func(s *Server) {
		s.users = service
	}
}

// WithSessions wires the session table.
func WithSessions(manager *sessions.Manager) Option {
	return func(s *Server) {
		s.sessions = manager
	}
}

// WithRenderer wires the preview renderer.
func WithRenderer(renderer Renderer) Option {
	return func(s *Server) {
		s.renderer = renderer
	}
}

// WithLogger sets the logger for request and command logs.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCommandLogger sets the logger handed to command handlers. Defaults to
// the request logger.
func WithCommandLogger(logger interfaces.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.cmdLog = logger
		}
	}
}

// NewServer builds the route handlers. Page store, index, user service and
// renderer are required; a session table is created when none is given.
func NewServer(opts ...Option) (*Server, error) {
	s := &Server{
		title:          "wiki",
		defaultMethod:  users.AuthCleartext,
		commandTimeout: 30 * time.Second,
		logger:         logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	switch {
	case s.pages == nil:
		return nil, errors.New("http: page store is required")
	case s.index == nil:
		return nil, errors.New("http: page index is required")
	case s.users == nil:
		return nil, errors.New("http: user service is required")
	case s.renderer == nil:
		return nil, errors.New("http: renderer is required")
	}
	if s.sessions == nil {
		s.sessions = sessions.NewManager(sessions.Options{})
	}
	if s.cmdLog == nil {
		s.cmdLog = s.logger
	}

	views, err := loadViews()
	if err != nil {
		return nil, err
	}
	s.views = views

	s.createUser = userscmd.NewCreateUserHandler(s.users, s.cmdLog,
		commands.WithTimeout[userscmd.CreateUserCommand](s.commandTimeout))
	s.deleteUser = userscmd.NewDeleteUserHandler(s.users, s.cmdLog,
		commands.WithTimeout[userscmd.DeleteUserCommand](s.commandTimeout))
	s.deleteByRole = userscmd.NewDeleteUsersByRoleHandler(s.users, s.cmdLog,
		commands.WithTimeout[userscmd.DeleteUsersByRoleCommand](s.commandTimeout))
	s.movePage = pagescmd.NewMovePageHandler(s.pages, s.index, s.cmdLog,
		commands.WithTimeout[pagescmd.MovePageCommand](s.commandTimeout))
	s.deletePage = pagescmd.NewDeletePageHandler(s.pages, s.index, s.cmdLog,
		commands.WithTimeout[pagescmd.DeletePageCommand](s.commandTimeout))

	return s, nil
}

// Register attaches every route to mux.
func (s *Server) Register(mux *http.ServeMux) error {
	if mux == nil {
		return errors.New("http: mux is required")
	}
	if s == nil {
		return errors.New("http: server is nil")
	}
	s.registerPageRoutes(mux)
	s.registerUserRoutes(mux)
	return nil
}

// Handler returns a mux with every route behind the standard middleware.
func (s *Server) Handler() (http.Handler, error) {
	mux := http.NewServeMux()
	if err := s.Register(mux); err != nil {
		return nil, err
	}
	return chain(mux, s.withRecovery, s.withAccessLog, withRequestID), nil
}
