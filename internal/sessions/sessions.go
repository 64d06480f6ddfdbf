// Package sessions keeps login state and flash messages in memory, keyed by
// a random identifier stored in a cookie.
package sessions

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CookieName is the cookie carrying the session identifier.
const CookieName = "wiki_session"

// DefaultTTL is the idle time after which a session is dropped.
const DefaultTTL = 12 * time.Hour

// Flash categories used by the route handlers.
const (
	FlashSuccess = "success"
	FlashFailure = "failure"
	FlashInfo    = "info"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string
	Message  string
}

type session struct {
	user    string
	flashes []Flash
	seen    time.Time
}

// Options configure a Manager.
type Options struct {
	TTL    time.Duration
	Secure bool
	Now    func() time.Time
}

// Manager stores sessions for a single process.
type Manager struct {
	ttl    time.Duration
	secure bool
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewManager returns an empty session table.
func NewManager(opts Options) *Manager {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		ttl:      ttl,
		secure:   opts.Secure,
		now:      now,
		sessions: map[string]*session{},
	}
}

// Current returns the user name logged in on r, or "" for anonymous
// requests.
func (m *Manager) Current(r *http.Request) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s := m.lookup(r); s != nil {
		return s.user
	}
	return ""
}

// Login starts a fresh session for user. Pending flashes of the previous
// session are carried over and extra is queued after them.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, user string, extra ...Flash) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var flashes []Flash
	if old, id := m.lookupWithID(r); old != nil {
		flashes = old.flashes
		delete(m.sessions, id)
	}
	flashes = append(flashes, extra...)
	id := uuid.NewString()
	m.sessions[id] = &session{user: user, flashes: flashes, seen: m.now()}
	m.setCookie(w, id)
}

// Logout clears the user of the current session and rotates its identifier.
// The session survives anonymously only while it has flashes to show.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request, extra ...Flash) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var flashes []Flash
	if old, id := m.lookupWithID(r); old != nil {
		flashes = old.flashes
		delete(m.sessions, id)
	}
	flashes = append(flashes, extra...)
	if len(flashes) == 0 {
		m.clearCookie(w)
		return
	}
	id := uuid.NewString()
	m.sessions[id] = &session{flashes: flashes, seen: m.now()}
	m.setCookie(w, id)
}

// AddFlash queues a message for the next page rendered for this visitor.
// Anonymous visitors get a session on their first flash.
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, category, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, _ := m.lookupWithID(r)
	if s == nil {
		id := uuid.NewString()
		s = &session{seen: m.now()}
		m.sessions[id] = s
		m.setCookie(w, id)
	}
	s.flashes = append(s.flashes, Flash{Category: category, Message: message})
}

// PopFlashes returns and clears the queued messages.
func (m *Manager) PopFlashes(r *http.Request) []Flash {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.lookup(r)
	if s == nil {
		return nil
	}
	flashes := s.flashes
	s.flashes = nil
	return flashes
}

// Sweep drops expired sessions and returns how many were removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.ttl)
	removed := 0
	for id, s := range m.sessions {
		if s.seen.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) lookup(r *http.Request) *session {
	s, _ := m.lookupWithID(r)
	return s
}

// lookupWithID must be called with mu held. Expired sessions are removed.
func (m *Manager) lookupWithID(r *http.Request) (*session, string) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, ""
	}
	s, ok := m.sessions[cookie.Value]
	if !ok {
		return nil, ""
	}
	now := m.now()
	if now.Sub(s.seen) > m.ttl {
		delete(m.sessions, cookie.Value)
		return nil, ""
	}
	s.seen = now
	return s, cookie.Value
}

func (m *Manager) setCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
