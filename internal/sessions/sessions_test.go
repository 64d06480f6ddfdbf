package sessions

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func requestWith(cookies []*http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range cookies {
		r.AddCookie(cookie)
	}
	return r
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == CookieName {
			return cookie
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestLoginAndCurrent(t *testing.T) {
	m := NewManager(Options{})

	if got := m.Current(requestWith(nil)); got != "" {
		t.Fatalf("expected anonymous, got %q", got)
	}

	rec := httptest.NewRecorder()
	m.Login(rec, requestWith(nil), "name")
	cookie := sessionCookie(t, rec)
	if !cookie.HttpOnly || cookie.SameSite != http.SameSiteLaxMode || cookie.Path != "/" {
		t.Fatalf("unexpected cookie attributes: %+v", cookie)
	}

	if got := m.Current(requestWith([]*http.Cookie{cookie})); got != "name" {
		t.Fatalf("expected name, got %q", got)
	}
	if got := m.Current(requestWith([]*http.Cookie{{Name: CookieName, Value: "forged"}})); got != "" {
		t.Fatalf("unknown id should be anonymous, got %q", got)
	}
}

func TestFlashesSurviveLoginAndAreConsumedOnce(t *testing.T) {
	m := NewManager(Options{})

	rec := httptest.NewRecorder()
	m.AddFlash(rec, requestWith(nil), FlashFailure, "Username or password is incorrect.")
	anon := sessionCookie(t, rec)

	rec = httptest.NewRecorder()
	m.Login(rec, requestWith([]*http.Cookie{anon}), "name")
	logged := sessionCookie(t, rec)
	if logged.Value == anon.Value {
		t.Fatal("login should rotate the session id")
	}

	req := requestWith([]*http.Cookie{logged})
	m.AddFlash(httptest.NewRecorder(), req, FlashSuccess, "Login successful.")

	want := []Flash{
		{Category: FlashFailure, Message: "Username or password is incorrect."},
		{Category: FlashSuccess, Message: "Login successful."},
	}
	if diff := cmp.Diff(want, m.PopFlashes(req)); diff != "" {
		t.Fatalf("unexpected flashes (-want +got):\n%s", diff)
	}
	if got := m.PopFlashes(req); len(got) != 0 {
		t.Fatalf("flashes should be consumed, got %v", got)
	}
	if m.Current(requestWith([]*http.Cookie{anon})) != "" {
		t.Fatal("old anonymous session should be gone")
	}
}

func TestLogoutKeepsPendingFlashes(t *testing.T) {
	m := NewManager(Options{})

	rec := httptest.NewRecorder()
	m.Login(rec, requestWith(nil), "name")
	cookie := sessionCookie(t, rec)
	req := requestWith([]*http.Cookie{cookie})
	m.AddFlash(httptest.NewRecorder(), req, FlashSuccess, "Logout successful.")

	rec = httptest.NewRecorder()
	m.Logout(rec, req)
	next := sessionCookie(t, rec)

	after := requestWith([]*http.Cookie{next})
	if m.Current(after) != "" {
		t.Fatal("expected anonymous after logout")
	}
	flashes := m.PopFlashes(after)
	if len(flashes) != 1 || flashes[0].Message != "Logout successful." {
		t.Fatalf("unexpected flashes: %v", flashes)
	}
}

func TestLogoutWithoutFlashesClearsCookie(t *testing.T) {
	m := NewManager(Options{})
	rec := httptest.NewRecorder()
	m.Login(rec, requestWith(nil), "name")
	cookie := sessionCookie(t, rec)

	rec = httptest.NewRecorder()
	m.Logout(rec, requestWith([]*http.Cookie{cookie}))
	cleared := sessionCookie(t, rec)
	if cleared.MaxAge >= 0 || cleared.Value != "" {
		t.Fatalf("expected an expired cookie, got %+v", cleared)
	}
	if m.Len() != 0 {
		t.Fatalf("expected no sessions, got %d", m.Len())
	}
}

func TestSessionsExpireAfterIdleTTL(t *testing.T) {
	c := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := NewManager(Options{TTL: time.Hour, Now: c.Now})

	rec := httptest.NewRecorder()
	m.Login(rec, requestWith(nil), "name")
	req := requestWith([]*http.Cookie{sessionCookie(t, rec)})

	c.now = c.now.Add(50 * time.Minute)
	if m.Current(req) != "name" {
		t.Fatal("session expired too early")
	}
	// Activity refreshes the idle timer.
	c.now = c.now.Add(50 * time.Minute)
	if m.Current(req) != "name" {
		t.Fatal("activity did not refresh the session")
	}
	c.now = c.now.Add(61 * time.Minute)
	if m.Current(req) != "" {
		t.Fatal("expected expired session")
	}
}

func TestSweepRemovesIdleSessions(t *testing.T) {
	c := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := NewManager(Options{TTL: time.Minute, Now: c.Now})

	m.Login(httptest.NewRecorder(), requestWith(nil), "a")
	m.Login(httptest.NewRecorder(), requestWith(nil), "b")
	c.now = c.now.Add(2 * time.Minute)

	if removed := m.Sweep(); removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if m.Len() != 0 {
		t.Fatalf("expected empty table, got %d", m.Len())
	}
}

func TestLoginAndLogoutQueueExtraFlashes(t *testing.T) {
	m := NewManager(Options{})

	rec := httptest.NewRecorder()
	m.Login(rec, requestWith(nil), "name", Flash{Category: FlashSuccess, Message: "Login successful."})
	logged := sessionCookie(t, rec)

	rec = httptest.NewRecorder()
	m.Logout(rec, requestWith([]*http.Cookie{logged}), Flash{Category: FlashSuccess, Message: "Logout successful."})
	anon := sessionCookie(t, rec)
	if anon.MaxAge < 0 {
		t.Fatal("logout with a flash should keep an anonymous session")
	}

	req := requestWith([]*http.Cookie{anon})
	if got := m.Current(req); got != "" {
		t.Fatalf("expected anonymous after logout, got %q", got)
	}
	want := []Flash{
		{Category: FlashSuccess, Message: "Login successful."},
		{Category: FlashSuccess, Message: "Logout successful."},
	}
	if diff := cmp.Diff(want, m.PopFlashes(req)); diff != "" {
		t.Fatalf("flashes mismatch (-want +got):\n%s", diff)
	}
}
