package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	userscmd "github.com/goliatone/go-wiki/internal/commands/users"
	"github.com/goliatone/go-wiki/internal/forms"
	"github.com/goliatone/go-wiki/internal/sessions"
	"github.com/goliatone/go-wiki/internal/users"
)

const indexPath = "/index/"

const badCredentialsMessage = "Username or password is incorrect."

func (s *Server) registerUserRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /user/login/{$}", s.handleLogin)
	mux.HandleFunc("POST /user/login/{$}", s.handleLogin)
	mux.HandleFunc("GET /user/logout/{$}", s.requireLogin(s.handleLogout))
	mux.HandleFunc("GET /user/create/{$}", s.handleCreateUser)
	mux.HandleFunc("POST /user/create/{$}", s.handleCreateUser)
	mux.HandleFunc("GET /user/delete", s.requireLogin(s.handleUserList))
	mux.HandleFunc("GET /user/delete/{id}", s.requireLogin(s.handleDeleteUser))
	mux.HandleFunc("POST /user/delete/{id}", s.requireLogin(s.handleDeleteUser))
	mux.HandleFunc("POST /user/delete-by-role", s.requireLogin(s.handleDeleteByRole))
}

func (s *Server) requireLogin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.sessions.Current(r) == "" {
			s.redirectToLogin(w, r)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		next := r.URL.Query().Get("next")
		s.render(w, r, http.StatusOK, "login.html", viewData{
			Heading: "Login",
			Form:    forms.LoginForm{Next: next},
			Next:    next,
		})
		return
	}

	if !s.parseForm(w, r) {
		return
	}
	form := forms.NewLoginForm(r.PostForm)
	data := viewData{Heading: "Login", Form: form, Next: form.Next}
	if err := form.Validate(); err != nil {
		data.Errors = forms.Errors(err)
		s.render(w, r, http.StatusOK, "login.html", data)
		return
	}

	user, err := s.users.Authenticate(r.Context(), form.Name, form.Password)
	if err != nil {
		if !errors.Is(err, users.ErrInvalidCredentials) {
			s.serverError(w, r, err)
			return
		}
		data.Errors = map[string]string{"password": badCredentialsMessage}
		s.render(w, r, http.StatusOK, "login.html", data)
		return
	}

	s.sessions.Login(w, r, user.Name, sessions.Flash{Category: sessions.FlashSuccess, Message: "Login successful."})
	http.Redirect(w, r, localRedirect(form.Next, indexPath), http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	name := s.sessions.Current(r)
	if err := s.users.Logout(r.Context(), name); err != nil && !errors.Is(err, users.ErrUserNotFound) {
		s.logger.WithContext(r.Context()).Warn("users.logout_failed", "user", name, "error", err)
	}
	s.sessions.Logout(w, r, sessions.Flash{Category: sessions.FlashSuccess, Message: "Logout successful."})
	http.Redirect(w, r, indexPath, http.StatusSeeOther)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		s.render(w, r, http.StatusOK, "createuser.html", viewData{Heading: "Create account", Form: forms.CreateUserForm{}})
		return
	}

	if !s.parseForm(w, r) {
		return
	}
	form := forms.NewCreateUserForm(r.PostForm)
	if err := form.Validate(); err != nil {
		s.render(w, r, http.StatusUnprocessableEntity, "createuser.html", viewData{
			Heading: "Create account",
			Form:    forms.CreateUserForm{Name: form.Name},
			Errors:  forms.Errors(err),
		})
		return
	}

	err := s.createUser.Execute(r.Context(), userscmd.CreateUserCommand{
		Name:     form.Name,
		Password: form.Password,
		Method:   s.defaultMethod,
	})
	if err != nil {
		s.logger.WithContext(r.Context()).Warn("users.create_failed", "user", form.Name, "error", err)
		s.sessions.AddFlash(w, r, sessions.FlashFailure, "Failed to create user")
		http.Redirect(w, r, "/user/create/", http.StatusSeeOther)
		return
	}
	s.sessions.AddFlash(w, r, sessions.FlashSuccess, "Created new user!")
	http.Redirect(w, r, indexPath, http.StatusSeeOther)
}

func (s *Server) handleUserList(w http.ResponseWriter, r *http.Request) {
	list, err := s.users.List(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	public := make([]users.User, 0, len(list))
	for _, user := range list {
		public = append(public, user.Public())
	}
	s.render(w, r, http.StatusOK, "deletelist.html", viewData{Heading: "Users", Users: public})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	target, err := s.users.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, users.ErrUserNotFound) {
		s.notFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	data := viewData{Heading: "Delete " + target.Name, Target: target.Name, Form: forms.DeleteUserForm{}}
	if r.Method == http.MethodGet {
		s.render(w, r, http.StatusOK, "deleteuser.html", data)
		return
	}

	if !s.parseForm(w, r) {
		return
	}
	form := forms.NewDeleteUserForm(r.PostForm)
	if err := form.Validate(); err != nil {
		data.Errors = forms.Errors(err)
		s.render(w, r, http.StatusUnprocessableEntity, "deleteuser.html", data)
		return
	}

	current := s.sessions.Current(r)
	err = s.deleteUser.Execute(r.Context(), userscmd.DeleteUserCommand{
		Name:     target.Name,
		Password: form.Password,
		ActorID:  s.actorID(r, current),
	})
	if err != nil {
		s.logger.WithContext(r.Context()).Warn("users.delete_failed", "user", target.Name, "error", err)
		s.sessions.AddFlash(w, r, sessions.FlashFailure, "Failed to delete user.")
		http.Redirect(w, r, indexPath, http.StatusSeeOther)
		return
	}

	done := sessions.Flash{Category: sessions.FlashSuccess, Message: "Successfully deleted user."}
	if target.Name == current {
		s.sessions.Logout(w, r, done)
	} else {
		s.sessions.AddFlash(w, r, done.Category, done.Message)
	}
	http.Redirect(w, r, indexPath, http.StatusSeeOther)
}

func (s *Server) handleDeleteByRole(w http.ResponseWriter, r *http.Request) {
	current := s.sessions.Current(r)
	actor, err := s.users.Get(r.Context(), current)
	if err != nil || !actor.HasRole(AdminRole) {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}

	if !s.parseForm(w, r) {
		return
	}
	form := forms.NewDeleteByRoleForm(r.PostForm)
	if err := form.Validate(); err != nil {
		s.sessions.AddFlash(w, r, sessions.FlashFailure, "A role is required.")
		http.Redirect(w, r, "/user/delete", http.StatusSeeOther)
		return
	}

	var result userscmd.DeleteByRoleResult
	err = s.deleteByRole.Execute(r.Context(), userscmd.DeleteUsersByRoleCommand{
		Role:    form.Role,
		ActorID: actor.ID,
		Result:  &result,
	})
	if err != nil {
		s.logger.WithContext(r.Context()).Warn("users.delete_by_role_failed", "role", form.Role, "error", err)
		s.sessions.AddFlash(w, r, sessions.FlashFailure, "Failed to delete users.")
		http.Redirect(w, r, "/user/delete", http.StatusSeeOther)
		return
	}

	done := sessions.Flash{
		Category: sessions.FlashSuccess,
		Message:  fmt.Sprintf("Deleted %d users with role %q.", len(result.Removed), form.Role),
	}
	if actor.HasRole(form.Role) {
		s.sessions.Logout(w, r, done)
		http.Redirect(w, r, indexPath, http.StatusSeeOther)
		return
	}
	s.sessions.AddFlash(w, r, done.Category, done.Message)
	http.Redirect(w, r, "/user/delete", http.StatusSeeOther)
}

// actorID resolves the logged in user to the id recorded on activity.
func (s *Server) actorID(r *http.Request, name string) uuid.UUID {
	if name == "" {
		return uuid.Nil
	}
	user, err := s.users.Get(r.Context(), name)
	if err != nil {
		return uuid.Nil
	}
	return user.ID
}
