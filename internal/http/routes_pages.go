package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	pagescmd "github.com/goliatone/go-wiki/internal/commands/pages"
	"github.com/goliatone/go-wiki/internal/forms"
	"github.com/goliatone/go-wiki/internal/pages"
	"github.com/goliatone/go-wiki/internal/search"
	"github.com/goliatone/go-wiki/internal/sessions"
)

const homePage = "home"

func (s *Server) registerPageRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.protect(s.handleHome))
	mux.HandleFunc("GET /index/{$}", s.protect(s.handleIndex))
	mux.HandleFunc("GET /{url...}", s.protect(s.handleDisplay))
	mux.HandleFunc("GET /create/{$}", s.protect(s.handleCreate))
	mux.HandleFunc("POST /create/{$}", s.protect(s.handleCreate))
	mux.HandleFunc("GET /edit/{url...}", s.protect(s.handleEdit))
	mux.HandleFunc("POST /edit/{url...}", s.protect(s.handleEdit))
	mux.HandleFunc("POST /preview/{$}", s.protect(s.handlePreview))
	mux.HandleFunc("GET /move/{url...}", s.protect(s.handleMove))
	mux.HandleFunc("POST /move/{url...}", s.protect(s.handleMove))
	mux.HandleFunc("GET /delete/{url...}", s.protect(s.handleDelete))
	mux.HandleFunc("POST /delete/{url...}", s.protect(s.handleDelete))
	mux.HandleFunc("GET /tags/{$}", s.protect(s.handleTags))
	mux.HandleFunc("GET /tag/{name...}", s.protect(s.handleTag))
	mux.HandleFunc("GET /search/{$}", s.protect(s.handleSearch))
	mux.HandleFunc("POST /search/{$}", s.protect(s.handleSearch))
	// Methods no page route accepts get the 404 page rather than a bare 405.
	mux.HandleFunc("/", s.protect(s.notFound))
}

// protect sends anonymous visitors to the login form when the wiki is
// private.
func (s *Server) protect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.private && s.sessions.Current(r) == "" {
			s.redirectToLogin(w, r)
			return
		}
		next(w, r)
	}
}

func (s *Server) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := "/user/login/?next=" + url.QueryEscape(r.URL.RequestURI())
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	page, err := s.pages.Get(r.Context(), homePage)
	switch {
	case errors.Is(err, pages.ErrPageNotFound):
		s.render(w, r, http.StatusOK, "home.html", viewData{})
	case err != nil:
		s.serverError(w, r, err)
	default:
		s.render(w, r, http.StatusOK, "page.html", viewData{Heading: page.DisplayTitle(), Page: page})
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	list, err := s.index.Pages(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "index.html", viewData{Heading: "Index", Pages: list})
}

func (s *Server) handleDisplay(w http.ResponseWriter, r *http.Request) {
	page, ok := s.loadPage(w, r)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, "page.html", viewData{Heading: page.DisplayTitle(), Page: page})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		s.render(w, r, http.StatusOK, "create.html", viewData{Heading: "Create", Form: forms.URLForm{}})
		return
	}
	if !s.parseForm(w, r) {
		return
	}
	form := forms.NewURLForm(r.PostForm, s.pages.Exists)
	if err := form.Validate(); err != nil {
		s.render(w, r, http.StatusUnprocessableEntity, "create.html", viewData{
			Heading: "Create",
			Form:    form,
			Errors:  forms.Errors(err),
		})
		return
	}
	http.Redirect(w, r, "/edit/"+form.Clean()+"/", http.StatusSeeOther)
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	target, err := pages.ValidateURL(r.PathValue("url"))
	if err != nil {
		s.notFound(w, r)
		return
	}
	page, err := s.pages.Get(r.Context(), target)
	switch {
	case errors.Is(err, pages.ErrPageNotFound):
		page = s.pages.GetBare(target)
	case err != nil:
		s.serverError(w, r, err)
		return
	}

	if r.Method == http.MethodGet {
		s.render(w, r, http.StatusOK, "editor.html", viewData{
			Heading: "Edit " + page.DisplayTitle(),
			Page:    page,
			Form:    forms.EditorFormFor(page),
		})
		return
	}

	if !s.parseForm(w, r) {
		return
	}
	form := forms.NewEditorForm(r.PostForm)
	if err := form.Validate(); err != nil {
		s.render(w, r, http.StatusUnprocessableEntity, "editor.html", viewData{
			Heading: "Edit " + page.DisplayTitle(),
			Page:    page,
			Form:    form,
			Errors:  forms.Errors(err),
		})
		return
	}

	page.Title = form.Title
	page.Body = form.Body
	page.Tags = form.TagList()
	if err := s.pages.Save(r.Context(), page); err != nil {
		s.serverError(w, r, err)
		return
	}
	s.index.Invalidate()
	s.logger.WithContext(r.Context()).Info("pages.saved", "url", page.URL, "user", s.sessions.Current(r))
	s.sessions.AddFlash(w, r, sessions.FlashSuccess, fmt.Sprintf("\"%s\" was saved.", page.Title))
	http.Redirect(w, r, pageHref(page.URL), http.StatusSeeOther)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	html, err := s.renderer.Render(r.Context(), []byte(r.PostForm.Get("body")))
	if err != nil {
		if wantsJSON(r) {
			writeError(w, err)
			return
		}
		s.serverError(w, r, err)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]string{"html": string(html)})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(html)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	page, ok := s.loadPage(w, r)
	if !ok {
		return
	}
	data := viewData{Heading: "Move " + page.DisplayTitle(), Page: page, Form: forms.URLForm{}}
	if r.Method == http.MethodGet {
		s.render(w, r, http.StatusOK, "move.html", data)
		return
	}

	if !s.parseForm(w, r) {
		return
	}
	form := forms.NewURLForm(r.PostForm, s.pages.Exists)
	data.Form = form
	if err := form.Validate(); err != nil {
		data.Errors = forms.Errors(err)
		s.render(w, r, http.StatusUnprocessableEntity, "move.html", data)
		return
	}

	newURL := form.Clean()
	err := s.movePage.Execute(r.Context(), pagescmd.MovePageCommand{URL: page.URL, NewURL: newURL})
	if err != nil {
		status, _ := mapError(err)
		if status == http.StatusInternalServerError {
			s.serverError(w, r, err)
			return
		}
		data.Errors = map[string]string{"form": err.Error()}
		s.render(w, r, status, "move.html", data)
		return
	}
	http.Redirect(w, r, pageHref(newURL), http.StatusSeeOther)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	page, ok := s.loadPage(w, r)
	if !ok {
		return
	}
	if r.Method == http.MethodGet {
		s.render(w, r, http.StatusOK, "delete.html", viewData{Heading: "Delete " + page.DisplayTitle(), Page: page})
		return
	}

	if err := s.deletePage.Execute(r.Context(), pagescmd.DeletePageCommand{URL: page.URL}); err != nil {
		if errors.Is(err, pages.ErrPageNotFound) {
			s.notFound(w, r)
			return
		}
		s.serverError(w, r, err)
		return
	}
	s.sessions.AddFlash(w, r, sessions.FlashSuccess, fmt.Sprintf("Page \"%s\" was deleted.", page.DisplayTitle()))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	groups, err := s.index.Tags(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "tags.html", viewData{Heading: "Tags", Tags: groups})
}

func (s *Server) handleTag(w http.ResponseWriter, r *http.Request) {
	// Tags may contain slashes, so the name runs to the closing slash.
	name, ok := strings.CutSuffix(r.PathValue("name"), "/")
	if !ok || name == "" {
		s.notFound(w, r)
		return
	}
	list, err := s.index.ByTag(r.Context(), name)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "tag.html", viewData{Heading: "Tag " + name, Tag: name, Pages: list})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	form := forms.NewSearchForm(r.Form)
	data := viewData{Heading: "Search", Form: form}
	if r.Method == http.MethodGet && form.Term == "" {
		s.render(w, r, http.StatusOK, "search.html", data)
		return
	}
	if err := form.Validate(); err != nil {
		data.Errors = forms.Errors(err)
		s.render(w, r, http.StatusUnprocessableEntity, "search.html", data)
		return
	}

	results, err := s.index.Search(r.Context(), search.Query{Term: form.Term, IgnoreCase: form.IgnoreCase})
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	data.Searched = true
	data.Term = form.Term
	data.Pages = results
	s.render(w, r, http.StatusOK, "search.html", data)
}

// loadPage resolves the {url} wildcard to a stored page, answering 404 when
// the URL is invalid or no page exists.
func (s *Server) loadPage(w http.ResponseWriter, r *http.Request) (*pages.Page, bool) {
	target, err := pages.ValidateURL(r.PathValue("url"))
	if err != nil {
		s.notFound(w, r)
		return nil, false
	}
	page, err := s.pages.Get(r.Context(), target)
	if errors.Is(err, pages.ErrPageNotFound) {
		s.notFound(w, r)
		return nil, false
	}
	if err != nil {
		s.serverError(w, r, err)
		return nil, false
	}
	return page, true
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.WithContext(r.Context()).Error("http.handler_failed", "path", r.URL.Path, "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
