package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-wiki/internal/pages"
	"github.com/goliatone/go-wiki/internal/pageurl"
	"github.com/goliatone/go-wiki/internal/search"
	"github.com/goliatone/go-wiki/internal/users"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status, payload := mapError(err)
	writeJSON(w, status, payload)
}

func mapError(err error) (int, errorResponse) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	case errors.Is(err, pages.ErrPageNotFound), errors.Is(err, users.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Error: "not_found", Message: err.Error()}
	case errors.Is(err, pages.ErrPageExists), errors.Is(err, users.ErrUserExists):
		return http.StatusConflict, errorResponse{Error: "conflict", Message: err.Error()}
	case errors.Is(err, users.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: "unauthorized", Message: err.Error()}
	case errors.Is(err, pages.ErrInvalidURL), errors.Is(err, search.ErrEmptyTerm):
		return http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()}
	case goerrors.IsCategory(err, goerrors.CategoryValidation):
		return http.StatusBadRequest, errorResponse{Error: "validation_failed", Message: err.Error()}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: err.Error()}
	}
}

// wantsJSON reports whether the client asked for a JSON response.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// localRedirect returns target when it is a path on this site and fallback
// otherwise.
func localRedirect(target, fallback string) string {
	target = strings.TrimSpace(target)
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, "\\") {
		return fallback
	}
	parsed, err := url.Parse(target)
	if err != nil || parsed.Scheme != "" || parsed.Host != "" {
		return fallback
	}
	return target
}

// pageHref is the canonical address of a page.
func pageHref(url string) string {
	return pageurl.Href(url)
}

func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return false
	}
	return true
}

const maxFormBytes = 4 << 20
