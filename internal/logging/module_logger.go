package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-wiki/pkg/interfaces"
)

const (
	rootModule     = "wiki"
	pagesModule    = "wiki.pages"
	searchModule   = "wiki.search"
	usersModule    = "wiki.users"
	httpModule     = "wiki.http"
	commandsModule = "wiki.commands"
)

const (
	fieldPageURL   = "page_url"
	fieldPageOp    = "page_action"
	fieldUserName  = "user_name"
	fieldRequestID = "request_id"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as a structured field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// PagesLogger returns the logger namespace reserved for the content store.
func PagesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, pagesModule)
}

// SearchLogger returns the logger namespace reserved for the page index.
func SearchLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, searchModule)
}

// UsersLogger returns the logger namespace reserved for account management.
func UsersLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, usersModule)
}

// HTTPLogger returns the logger namespace reserved for route handlers.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// CommandsLogger returns the logger namespace reserved for command handlers.
func CommandsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, commandsModule)
}

// WithPageContext enriches the logger with the page URL and action. Empty
// values are ignored.
func WithPageContext(logger interfaces.Logger, url, action string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(url); trimmed != "" {
		fields[fieldPageURL] = trimmed
	}
	if trimmed := strings.TrimSpace(action); trimmed != "" {
		fields[fieldPageOp] = trimmed
	}
	return WithFields(logger, fields)
}

// WithUserContext tags the logger with the account being acted upon.
func WithUserContext(logger interfaces.Logger, name string) interfaces.Logger {
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		return WithFields(logger, map[string]any{fieldUserName: trimmed})
	}
	return logger
}

// ContextWithRequestID stores the request identifier as a context field so
// every logger bound to the context repeats it.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	if strings.TrimSpace(id) == "" {
		return ctx
	}
	return ContextWithFields(ctx, map[string]any{fieldRequestID: id})
}

// RequestID returns the request identifier previously stored on ctx.
func RequestID(ctx context.Context) string {
	if id, ok := ContextFields(ctx)[fieldRequestID].(string); ok {
		return id
	}
	return ""
}

// NoOp returns a logger that drops every log entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
