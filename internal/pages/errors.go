package pages

import "errors"

var (
	ErrPageNotFound = errors.New("pages: page not found")
	ErrPageExists   = errors.New("pages: page already exists")
	ErrInvalidURL   = errors.New("pages: invalid url")
)

// NotFoundError reports the URL that could not be resolved.
type NotFoundError struct {
	URL string
}

func (e *NotFoundError) Error() string {
	return "pages: page not found: " + e.URL
}

func (e *NotFoundError) Unwrap() error {
	return ErrPageNotFound
}

// ExistsError reports a URL that is already taken by another page.
type ExistsError struct {
	URL string
}

func (e *ExistsError) Error() string {
	return "pages: page already exists: " + e.URL
}

func (e *ExistsError) Unwrap() error {
	return ErrPageExists
}
