package userscmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-wiki/internal/users"
)

const (
	createUserMessageType   = "wiki.users.create"
	deleteUserMessageType   = "wiki.users.delete"
	deleteByRoleMessageType = "wiki.users.delete_by_role"
)

// CreateUserCommand adds an account to the users file.
type CreateUserCommand struct {
	Name     string           `json:"name"`
	Password string           `json:"password"`
	Method   users.AuthMethod `json:"authentication_method,omitempty"`
	Roles    []string         `json:"roles,omitempty"`
	// Result receives the stored user when set.
	Result *users.User `json:"-"`
}

// Type implements command.Message.
func (CreateUserCommand) Type() string { return createUserMessageType }

// Validate checks the name, password and method before handlers execute.
func (cmd CreateUserCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Name, validation.By(requiredText("wiki.users.create.name_required", "name is required"))),
		validation.Field(&cmd.Password, validation.Required.Error("password is required")),
		validation.Field(&cmd.Method, validation.By(func(value any) error {
			method, _ := value.(users.AuthMethod)
			if _, err := users.ParseAuthMethod(string(method)); err != nil {
				return validation.NewError("wiki.users.create.method_invalid", "authentication_method must be cleartext or hash")
			}
			return nil
		})),
	)
}

// DeleteUserCommand removes one account. Password must be the password of
// the account being removed.
type DeleteUserCommand struct {
	Name     string    `json:"name"`
	Password string    `json:"password"`
	ActorID  uuid.UUID `json:"actor_id,omitempty"`
}

// Type implements command.Message.
func (DeleteUserCommand) Type() string { return deleteUserMessageType }

// Validate ensures both name and confirmation are present.
func (cmd DeleteUserCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Name, validation.By(requiredText("wiki.users.delete.name_required", "name is required"))),
		validation.Field(&cmd.Password, validation.Required.Error("password is required")),
	)
}

// DeleteByRoleResult reports what DeleteUsersByRoleCommand changed.
type DeleteByRoleResult struct {
	Removed   []users.User
	Remaining []users.User
}

// DeleteUsersByRoleCommand removes every account carrying Role.
type DeleteUsersByRoleCommand struct {
	Role    string              `json:"role"`
	ActorID uuid.UUID           `json:"actor_id,omitempty"`
	Result  *DeleteByRoleResult `json:"-"`
}

// Type implements command.Message.
func (DeleteUsersByRoleCommand) Type() string { return deleteByRoleMessageType }

// Validate ensures a role is supplied.
func (cmd DeleteUsersByRoleCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Role, validation.By(requiredText("wiki.users.delete_by_role.role_required", "role is required"))),
	)
}

func requiredText(code, message string) validation.RuleFunc {
	return func(value any) error {
		text, _ := value.(string)
		if strings.TrimSpace(text) == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}
