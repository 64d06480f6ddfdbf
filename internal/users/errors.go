package users

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUserExists         = errors.New("users: user already exists")
	ErrUserNotFound       = errors.New("users: user not found")
	ErrInvalidCredentials = errors.New("users: username or password is incorrect")
	ErrRoleRequired       = errors.New("users: role is required")
	ErrNameRequired       = errors.New("users: name is required")
	ErrPasswordRequired   = errors.New("users: password is required")
	ErrUnknownAuthMethod  = errors.New("users: unknown authentication method")
	ErrStoreCorrupt       = errors.New("users: store document is invalid")
)

// NotFoundError reports a missing account by name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("users: user %q not found", e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrUserNotFound
}

// SchemaIssue is one violation found while validating the store document.
type SchemaIssue struct {
	Location string
	Message  string
}

// CorruptStoreError lists the schema violations of a store file.
type CorruptStoreError struct {
	Path   string
	Issues []SchemaIssue
	Cause  error
}

func (e *CorruptStoreError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return fmt.Sprintf("users: %s: %v", e.Path, e.Cause)
		}
		return fmt.Sprintf("users: %s: %s", e.Path, ErrStoreCorrupt.Error())
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := issue.Location
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return fmt.Sprintf("users: %s: %s", e.Path, strings.Join(parts, "; "))
}

func (e *CorruptStoreError) Unwrap() error {
	return ErrStoreCorrupt
}
