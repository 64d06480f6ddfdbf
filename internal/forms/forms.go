// Package forms decodes and validates the HTML forms posted to the wiki.
package forms

import (
	"errors"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Form is implemented by every form in this package.
type Form interface {
	Validate() error
}

// Errors flattens a validation error into a field to message map for
// templates. Errors that are not per-field are stored under "form".
func Errors(err error) map[string]string {
	if err == nil {
		return nil
	}
	out := map[string]string{}
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		for field, fieldErr := range fieldErrs {
			if fieldErr != nil {
				out[field] = fieldErr.Error()
			}
		}
		return out
	}
	out["form"] = err.Error()
	return out
}

func value(values url.Values, key string) string {
	return strings.TrimSpace(values.Get(key))
}

func checked(values url.Values, key string) bool {
	switch strings.ToLower(values.Get(key)) {
	case "y", "yes", "on", "true", "1":
		return true
	default:
		return false
	}
}

func notBlank(code, message string) validation.Rule {
	return validation.By(func(v any) error {
		s, _ := v.(string)
		if strings.TrimSpace(s) == "" {
			return validation.NewError(code, message)
		}
		return nil
	})
}
