package pagescmd

import (
	"context"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-wiki/internal/commands"
	"github.com/goliatone/go-wiki/internal/logging"
	"github.com/goliatone/go-wiki/pkg/interfaces"
)

const (
	moveOperation   = "pages.move"
	deleteOperation = "pages.delete"
)

// PageStore is the part of pages.Store the handlers need.
type PageStore interface {
	Move(ctx context.Context, url, newURL string) error
	Delete(ctx context.Context, url string) error
}

// Invalidator drops cached listings after a page changed.
type Invalidator interface {
	Invalidate()
}

var (
	_ command.Commander[MovePageCommand]   = (*MovePageHandler)(nil)
	_ command.Commander[DeletePageCommand] = (*DeletePageHandler)(nil)
)

// MovePageHandler executes MovePageCommand.
type MovePageHandler struct {
	inner *commands.Handler[MovePageCommand]
}

// NewMovePageHandler binds the handler to store. index may be nil.
func NewMovePageHandler(store PageStore, index Invalidator, logger interfaces.Logger, opts ...commands.HandlerOption[MovePageCommand]) *MovePageHandler {
	baseLogger := ensureLogger(logger)

	exec := func(ctx context.Context, msg MovePageCommand) error {
		if err := store.Move(ctx, msg.URL, msg.NewURL); err != nil {
			return err
		}
		if index != nil {
			index.Invalidate()
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[MovePageCommand]{
		commands.WithLogger[MovePageCommand](baseLogger),
		commands.WithOperation[MovePageCommand](moveOperation),
		commands.WithMessageFields(func(msg MovePageCommand) map[string]any {
			return map[string]any{"page_url": msg.URL, "new_url": msg.NewURL}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[MovePageCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &MovePageHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[MovePageCommand].
func (h *MovePageHandler) Execute(ctx context.Context, msg MovePageCommand) error {
	return h.inner.Execute(ctx, msg)
}

// DeletePageHandler executes DeletePageCommand.
type DeletePageHandler struct {
	inner *commands.Handler[DeletePageCommand]
}

// NewDeletePageHandler binds the handler to store. index may be nil.
func NewDeletePageHandler(store PageStore, index Invalidator, logger interfaces.Logger, opts ...commands.HandlerOption[DeletePageCommand]) *DeletePageHandler {
	baseLogger := ensureLogger(logger)

	exec := func(ctx context.Context, msg DeletePageCommand) error {
		if err := store.Delete(ctx, msg.URL); err != nil {
			return err
		}
		if index != nil {
			index.Invalidate()
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[DeletePageCommand]{
		commands.WithLogger[DeletePageCommand](baseLogger),
		commands.WithOperation[DeletePageCommand](deleteOperation),
		commands.WithMessageFields(func(msg DeletePageCommand) map[string]any {
			return map[string]any{"page_url": msg.URL}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[DeletePageCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &DeletePageHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[DeletePageCommand].
func (h *DeletePageHandler) Execute(ctx context.Context, msg DeletePageCommand) error {
	return h.inner.Execute(ctx, msg)
}

func ensureLogger(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return logging.NoOp()
	}
	return logger
}
