package commands

import (
	"errors"
	"fmt"
	"testing"

	"github.com/goliatone/go-wiki/internal/pages"
	"github.com/goliatone/go-wiki/internal/users"
)

func TestExecuteCodeClassifiesStoreErrors(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&pages.NotFoundError{URL: "a"}, pageNotFoundCode},
		{&pages.ExistsError{URL: "a"}, pageExistsCode},
		{fmt.Errorf("move: %w", pages.ErrInvalidURL), pageURLInvalidCode},
		{&users.NotFoundError{Name: "ana"}, userNotFoundCode},
		{users.ErrUserExists, userExistsCode},
		{users.ErrInvalidCredentials, invalidCredentialsCode},
		{&users.CorruptStoreError{Path: "users.json"}, userStoreCorruptCode},
		{errors.New("disk full"), commandExecuteFailed},
	}
	for _, tc := range cases {
		if got := executeCode(tc.err); got != tc.want {
			t.Errorf("executeCode(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}
