package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-wiki/internal/pages"
	"github.com/goliatone/go-wiki/internal/users"
)

const (
	commandValidationCode   = "COMMAND_VALIDATION_FAILED"
	commandContextCanceled  = "COMMAND_CONTEXT_CANCELED"
	commandContextTimeout   = "COMMAND_CONTEXT_TIMEOUT"
	commandContextErrorCode = "COMMAND_CONTEXT_ERROR"
	commandExecuteFailed    = "COMMAND_EXECUTION_FAILED"

	pageNotFoundCode       = "WIKI_PAGE_NOT_FOUND"
	pageExistsCode         = "WIKI_PAGE_EXISTS"
	pageURLInvalidCode     = "WIKI_PAGE_URL_INVALID"
	userNotFoundCode       = "WIKI_USER_NOT_FOUND"
	userExistsCode         = "WIKI_USER_EXISTS"
	invalidCredentialsCode = "WIKI_INVALID_CREDENTIALS"
	userStoreCorruptCode   = "WIKI_USER_STORE_CORRUPT"
)

// domainCodes maps store errors to the text code reported on failed commands.
// The first match wins.
var domainCodes = []struct {
	target error
	code   string
}{
	{pages.ErrPageNotFound, pageNotFoundCode},
	{pages.ErrPageExists, pageExistsCode},
	{pages.ErrInvalidURL, pageURLInvalidCode},
	{users.ErrUserNotFound, userNotFoundCode},
	{users.ErrUserExists, userExistsCode},
	{users.ErrInvalidCredentials, invalidCredentialsCode},
	{users.ErrStoreCorrupt, userStoreCorruptCode},
}

func wrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
		WithTextCode(commandValidationCode)
}

func wrapContextError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution cancelled").
			WithTextCode(commandContextCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution deadline exceeded").
			WithTextCode(commandContextTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command context error").
			WithTextCode(commandContextErrorCode)
	}
}

func wrapExecuteError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").
		WithTextCode(executeCode(err))
}

func executeCode(err error) string {
	for _, entry := range domainCodes {
		if errors.Is(err, entry.target) {
			return entry.code
		}
	}
	return commandExecuteFailed
}
