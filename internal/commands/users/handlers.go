package userscmd

import (
	"context"

	command "github.com/goliatone/go-command"
	"github.com/google/uuid"

	"github.com/goliatone/go-wiki/internal/commands"
	"github.com/goliatone/go-wiki/internal/logging"
	"github.com/goliatone/go-wiki/internal/users"
	"github.com/goliatone/go-wiki/pkg/interfaces"
)

const (
	createOperation       = "users.create"
	deleteOperation       = "users.delete"
	deleteByRoleOperation = "users.delete_by_role"
)

// UserService is the part of users.Manager the handlers need.
type UserService interface {
	Add(ctx context.Context, input users.NewUser) (users.User, error)
	Delete(ctx context.Context, name, confirmPassword string) (users.User, error)
	DeleteByRole(ctx context.Context, role string) ([]users.User, []users.User, error)
}

var (
	_ command.Commander[CreateUserCommand]        = (*CreateUserHandler)(nil)
	_ command.Commander[DeleteUserCommand]        = (*DeleteUserHandler)(nil)
	_ command.Commander[DeleteUsersByRoleCommand] = (*DeleteUsersByRoleHandler)(nil)
)

// CreateUserHandler executes CreateUserCommand.
type CreateUserHandler struct {
	inner *commands.Handler[CreateUserCommand]
}

// NewCreateUserHandler binds the handler to service.
func NewCreateUserHandler(service UserService, logger interfaces.Logger, opts ...commands.HandlerOption[CreateUserCommand]) *CreateUserHandler {
	baseLogger := ensureLogger(logger)

	exec := func(ctx context.Context, msg CreateUserCommand) error {
		created, err := service.Add(ctx, users.NewUser{
			Name:     msg.Name,
			Password: msg.Password,
			Method:   msg.Method,
			Roles:    msg.Roles,
		})
		if err != nil {
			return err
		}
		if msg.Result != nil {
			*msg.Result = created
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[CreateUserCommand]{
		commands.WithLogger[CreateUserCommand](baseLogger),
		commands.WithOperation[CreateUserCommand](createOperation),
		commands.WithMessageFields(func(msg CreateUserCommand) map[string]any {
			fields := map[string]any{"user_name": msg.Name}
			if msg.Method != "" {
				fields["authentication_method"] = string(msg.Method)
			}
			if len(msg.Roles) > 0 {
				fields["roles"] = msg.Roles
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[CreateUserCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CreateUserHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[CreateUserCommand].
func (h *CreateUserHandler) Execute(ctx context.Context, msg CreateUserCommand) error {
	return h.inner.Execute(ctx, msg)
}

// DeleteUserHandler executes DeleteUserCommand.
type DeleteUserHandler struct {
	inner *commands.Handler[DeleteUserCommand]
}

// NewDeleteUserHandler binds the handler to service.
func NewDeleteUserHandler(service UserService, logger interfaces.Logger, opts ...commands.HandlerOption[DeleteUserCommand]) *DeleteUserHandler {
	baseLogger := ensureLogger(logger)

	exec := func(ctx context.Context, msg DeleteUserCommand) error {
		_, err := service.Delete(withActor(ctx, msg.ActorID), msg.Name, msg.Password)
		return err
	}

	handlerOpts := []commands.HandlerOption[DeleteUserCommand]{
		commands.WithLogger[DeleteUserCommand](baseLogger),
		commands.WithOperation[DeleteUserCommand](deleteOperation),
		commands.WithMessageFields(func(msg DeleteUserCommand) map[string]any {
			fields := map[string]any{"user_name": msg.Name}
			if msg.ActorID != uuid.Nil {
				fields["actor_id"] = msg.ActorID
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[DeleteUserCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &DeleteUserHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[DeleteUserCommand].
func (h *DeleteUserHandler) Execute(ctx context.Context, msg DeleteUserCommand) error {
	return h.inner.Execute(ctx, msg)
}

// DeleteUsersByRoleHandler executes DeleteUsersByRoleCommand.
type DeleteUsersByRoleHandler struct {
	inner *commands.Handler[DeleteUsersByRoleCommand]
}

// NewDeleteUsersByRoleHandler binds the handler to service.
func NewDeleteUsersByRoleHandler(service UserService, logger interfaces.Logger, opts ...commands.HandlerOption[DeleteUsersByRoleCommand]) *DeleteUsersByRoleHandler {
	baseLogger := ensureLogger(logger)

	exec := func(ctx context.Context, msg DeleteUsersByRoleCommand) error {
		removed, remaining, err := service.DeleteByRole(withActor(ctx, msg.ActorID), msg.Role)
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"role":            msg.Role,
			"removed_count":   len(removed),
			"remaining_count": len(remaining),
		}).Info("users.command.delete_by_role.completed")
		if msg.Result != nil {
			*msg.Result = DeleteByRoleResult{Removed: removed, Remaining: remaining}
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[DeleteUsersByRoleCommand]{
		commands.WithLogger[DeleteUsersByRoleCommand](baseLogger),
		commands.WithOperation[DeleteUsersByRoleCommand](deleteByRoleOperation),
		commands.WithMessageFields(func(msg DeleteUsersByRoleCommand) map[string]any {
			fields := map[string]any{"role": msg.Role}
			if msg.ActorID != uuid.Nil {
				fields["actor_id"] = msg.ActorID
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[DeleteUsersByRoleCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &DeleteUsersByRoleHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[DeleteUsersByRoleCommand].
func (h *DeleteUsersByRoleHandler) Execute(ctx context.Context, msg DeleteUsersByRoleCommand) error {
	return h.inner.Execute(ctx, msg)
}

func withActor(ctx context.Context, actor uuid.UUID) context.Context {
	if actor == uuid.Nil {
		return ctx
	}
	return users.WithActor(ctx, actor)
}

func ensureLogger(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return logging.NoOp()
	}
	return logger
}
