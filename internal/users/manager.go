package users

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-wiki/internal/logging"
	"github.com/goliatone/go-wiki/pkg/interfaces"
)

// Activity verbs emitted by the manager.
const (
	VerbCreated       = "user.created"
	VerbDeleted       = "user.deleted"
	VerbDeletedByRole = "user.deleted_by_role"
	VerbLogin         = "user.login"
	VerbLogout        = "user.logout"

	activityChannel = "wiki"
	activityObject  = "user"
)

// Options configure a Manager.
type Options struct {
	// DefaultMethod applies to NewUser values without a method.
	DefaultMethod AuthMethod
	Activity      interfaces.ActivitySink
	Logger        interfaces.Logger
	Now           func() time.Time
}

// Manager implements account operations on top of a FileStore.
type Manager struct {
	store         *FileStore
	defaultMethod AuthMethod
	activity      interfaces.ActivitySink
	logger        interfaces.Logger
	now           func() time.Time
}

// NewManager wires a manager around store.
func NewManager(store *FileStore, opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	method := opts.DefaultMethod
	if method == "" {
		method = AuthCleartext
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		store:         store,
		defaultMethod: method,
		activity:      opts.Activity,
		logger:        logger,
		now:           now,
	}
}

type actorKey struct{}

// WithActor records the account performing an operation so activity records
// can name it.
func WithActor(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, actorKey{}, id)
}

// ActorFrom returns the actor stored by WithActor, or uuid.Nil.
func ActorFrom(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(actorKey{}).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// List returns every user in file order.
func (m *Manager) List(ctx context.Context) ([]User, error) {
	return m.store.Load(ctx)
}

// Get returns the user called name.
func (m *Manager) Get(ctx context.Context, name string) (User, error) {
	list, err := m.store.Load(ctx)
	if err != nil {
		return User{}, err
	}
	idx := indexOf(list, strings.TrimSpace(name))
	if idx < 0 {
		return User{}, &NotFoundError{Name: name}
	}
	return list[idx], nil
}

// Add creates an active user. Names are unique and case sensitive.
func (m *Manager) Add(ctx context.Context, input NewUser) (User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return User{}, ErrNameRequired
	}
	if input.Password == "" {
		return User{}, ErrPasswordRequired
	}
	method := input.Method
	if method == "" {
		method = m.defaultMethod
	}
	method, err := ParseAuthMethod(string(method))
	if err != nil {
		return User{}, err
	}
	secret, err := hashPassword(method, input.Password)
	if err != nil {
		return User{}, err
	}

	created := User{
		ID:                   uuid.New(),
		Name:                 name,
		Password:             secret,
		AuthenticationMethod: method,
		Roles:                normalizeRoles(input.Roles),
		Active:               true,
		CreatedAt:            m.now().UTC(),
	}

	err = m.store.Update(ctx, func(list []User) ([]User, error) {
		if indexOf(list, name) >= 0 {
			return nil, ErrUserExists
		}
		return append(list, created), nil
	})
	if err != nil {
		logging.WithUserContext(m.logger, name).Warn("user.create_failed", "error", err)
		return User{}, err
	}

	m.emit(ctx, VerbCreated, created, map[string]any{
		"name":  created.Name,
		"roles": slices.Clone(created.Roles),
	})
	return created, nil
}

// Authenticate checks the credentials and marks the user authenticated. An
// unknown name, a wrong password and an inactive account all return
// ErrInvalidCredentials.
func (m *Manager) Authenticate(ctx context.Context, name, password string) (User, error) {
	name = strings.TrimSpace(name)
	var user User
	err := m.store.Update(ctx, func(list []User) ([]User, error) {
		idx := indexOf(list, name)
		if idx < 0 || !list[idx].Active {
			return nil, ErrInvalidCredentials
		}
		ok, err := checkPassword(list[idx], password)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrInvalidCredentials
		}
		list[idx].Authenticated = true
		user = list[idx]
		return list, nil
	})
	if err != nil {
		return User{}, err
	}
	m.emit(WithActor(ctx, user.ID), VerbLogin, user, map[string]any{"name": user.Name})
	return user, nil
}

// Logout clears the authenticated flag of name.
func (m *Manager) Logout(ctx context.Context, name string) error {
	var user User
	err := m.store.Update(ctx, func(list []User) ([]User, error) {
		idx := indexOf(list, strings.TrimSpace(name))
		if idx < 0 {
			return nil, &NotFoundError{Name: name}
		}
		list[idx].Authenticated = false
		user = list[idx]
		return list, nil
	})
	if err != nil {
		return err
	}
	m.emit(WithActor(ctx, user.ID), VerbLogout, user, map[string]any{"name": user.Name})
	return nil
}

// Delete removes name after checking confirmPassword against that user's own
// password.
func (m *Manager) Delete(ctx context.Context, name, confirmPassword string) (User, error) {
	name = strings.TrimSpace(name)
	var removed User
	err := m.store.Update(ctx, func(list []User) ([]User, error) {
		idx := indexOf(list, name)
		if idx < 0 {
			return nil, &NotFoundError{Name: name}
		}
		ok, err := checkPassword(list[idx], confirmPassword)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrInvalidCredentials
		}
		removed = list[idx]
		return slices.Delete(list, idx, idx+1), nil
	})
	if err != nil {
		logging.WithUserContext(m.logger, name).Warn("user.delete_failed", "error", err)
		return User{}, err
	}
	m.emit(ctx, VerbDeleted, removed, map[string]any{"name": removed.Name})
	return removed, nil
}

// DeleteByRole removes every user carrying role and returns the removed and
// remaining users.
func (m *Manager) DeleteByRole(ctx context.Context, role string) ([]User, []User, error) {
	role = strings.TrimSpace(role)
	if role == "" {
		return nil, nil, ErrRoleRequired
	}

	var removed, remaining []User
	err := m.store.Update(ctx, func(list []User) ([]User, error) {
		removed = removed[:0]
		remaining = make([]User, 0, len(list))
		for _, user := range list {
			if user.HasRole(role) {
				removed = append(removed, user)
				continue
			}
			remaining = append(remaining, user)
		}
		return remaining, nil
	})
	if err != nil {
		return nil, nil, err
	}

	for _, user := range removed {
		m.emit(ctx, VerbDeletedByRole, user, map[string]any{"name": user.Name, "role": role})
	}
	m.logger.Info("users.deleted_by_role", "role", role, "removed", len(removed), "remaining", len(remaining))
	return removed, slices.Clone(remaining), nil
}

func (m *Manager) emit(ctx context.Context, verb string, user User, data map[string]any) {
	if m.activity == nil {
		return
	}
	record := interfaces.ActivityRecord{
		ActorID:    ActorFrom(ctx),
		UserID:     user.ID,
		Verb:       verb,
		ObjectType: activityObject,
		ObjectID:   user.ID.String(),
		Channel:    activityChannel,
		OccurredAt: m.now().UTC(),
		Data:       data,
	}
	if err := m.activity.Log(ctx, record); err != nil {
		logging.WithUserContext(m.logger, user.Name).Warn("user.activity_failed", "verb", verb, "error", err)
	}
}

func indexOf(list []User, name string) int {
	return slices.IndexFunc(list, func(user User) bool { return user.Name == name })
}
