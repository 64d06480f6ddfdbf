package users

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AuthMethod selects how a stored password is compared.
type AuthMethod string

const (
	AuthCleartext AuthMethod = "cleartext"
	AuthHash      AuthMethod = "hash"
)

// ParseAuthMethod accepts the stored method names. An empty value means
// cleartext, which is what older user files carry.
func ParseAuthMethod(value string) (AuthMethod, error) {
	switch AuthMethod(strings.ToLower(strings.TrimSpace(value))) {
	case "", AuthCleartext:
		return AuthCleartext, nil
	case AuthHash:
		return AuthHash, nil
	default:
		return "", ErrUnknownAuthMethod
	}
}

// User is one record of the users file.
type User struct {
	ID                   uuid.UUID  `json:"id"`
	Name                 string     `json:"name"`
	Password             string     `json:"password"`
	AuthenticationMethod AuthMethod `json:"authentication_method"`
	Roles                []string   `json:"roles"`
	Active               bool       `json:"active"`
	Authenticated        bool       `json:"authenticated"`
	CreatedAt            time.Time  `json:"created_at,omitzero"`
}

// HasRole reports whether the user carries role exactly.
func (u User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// Public returns a copy without the password, for templates and logs.
func (u User) Public() User {
	u.Password = ""
	u.Roles = slices.Clone(u.Roles)
	return u
}

// NewUser is the input to Manager.Add.
type NewUser struct {
	Name     string
	Password string
	Method   AuthMethod
	Roles    []string
}

func normalizeRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		role = strings.TrimSpace(role)
		if role == "" || slices.Contains(out, role) {
			continue
		}
		out = append(out, role)
	}
	return out
}
