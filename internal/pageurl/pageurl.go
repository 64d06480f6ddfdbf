// Package pageurl normalises free-form page names into the URLs the content
// store files pages under.
package pageurl

import (
	"errors"
	"fmt"
	neturl "net/url"
	"strings"

	"github.com/goliatone/go-slug"
)

// ErrInvalid is returned for names that do not yield a usable URL.
var ErrInvalid = errors.New("pageurl: invalid page url")

// Clean turns input such as "Docs / Getting Started" into
// "docs/getting-started". Each path segment is normalised with go-slug and
// empty segments are dropped. Dot segments are rejected.
func Clean(raw string) (string, error) {
	raw = strings.Join(strings.Fields(raw), " ")
	var segments []string
	for _, segment := range strings.Split(raw, "/") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		if segment == "." || segment == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalid, raw)
		}
		normalized, err := slug.Normalize(segment)
		if err != nil {
			return "", fmt.Errorf("%w: %q: %v", ErrInvalid, raw, err)
		}
		if normalized == "" {
			return "", fmt.Errorf("%w: %q", ErrInvalid, raw)
		}
		segments = append(segments, normalized)
	}
	if len(segments) == 0 {
		return "", fmt.Errorf("%w: empty", ErrInvalid)
	}
	return strings.Join(segments, "/"), nil
}

// Href returns the escaped display path of a page URL, "/docs/intro/".
func Href(url string) string {
	segments := strings.Split(strings.Trim(url, "/"), "/")
	for i, segment := range segments {
		segments[i] = neturl.PathEscape(segment)
	}
	return "/" + strings.Join(segments, "/") + "/"
}
