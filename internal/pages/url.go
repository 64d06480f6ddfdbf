package pages

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-wiki/internal/pageurl"
)

// CleanURL turns free-form user input such as "Docs / Getting Started" into
// a page URL ("docs/getting-started").
func CleanURL(raw string) (string, error) {
	cleaned, err := pageurl.Clean(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	return cleaned, nil
}

// ValidateURL checks a URL taken from a request path and returns it without
// surrounding slashes. It rejects traversal and hidden segments so a URL can
// never address a file outside the content root.
func ValidateURL(url string) (string, error) {
	trimmed := strings.Trim(strings.TrimSpace(url), "/")
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	if strings.ContainsAny(trimmed, "\\\x00") {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, url)
	}
	for _, segment := range strings.Split(trimmed, "/") {
		if segment == "" || strings.HasPrefix(segment, ".") {
			return "", fmt.Errorf("%w: %q", ErrInvalidURL, url)
		}
	}
	return trimmed, nil
}
