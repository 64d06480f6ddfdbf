package users

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

func hashPassword(method AuthMethod, password string) (string, error) {
	switch method {
	case AuthCleartext:
		return password, nil
	case AuthHash:
		digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return "", err
		}
		return string(digest), nil
	default:
		return "", ErrUnknownAuthMethod
	}
}

// checkPassword compares password against the stored value of user.
func checkPassword(user User, password string) (bool, error) {
	method, err := ParseAuthMethod(string(user.AuthenticationMethod))
	if err != nil {
		return false, err
	}
	switch method {
	case AuthHash:
		err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return true, nil
	default:
		return subtle.ConstantTimeCompare([]byte(user.Password), []byte(password)) == 1, nil
	}
}
