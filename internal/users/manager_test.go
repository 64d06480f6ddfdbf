package users

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/goliatone/go-wiki/pkg/activity/usersink"
)

var fixedNow = time.Date(2024, 3, 14, 15, 9, 26, 0, time.UTC)

func newTestManager(t *testing.T, method AuthMethod) (*Manager, *usersink.Recorder) {
	t.Helper()
	recorder := &usersink.Recorder{}
	manager := NewManager(newTestStore(t), Options{
		DefaultMethod: method,
		Activity:      recorder,
		Now:           func() time.Time { return fixedNow },
	})
	return manager, recorder
}

func mustAdd(t *testing.T, m *Manager, name, password string, roles ...string) User {
	t.Helper()
	user, err := m.Add(context.Background(), NewUser{Name: name, Password: password, Roles: roles})
	if err != nil {
		t.Fatalf("add %s: %v", name, err)
	}
	return user
}

func names(list []User) []string {
	out := make([]string, 0, len(list))
	for _, user := range list {
		out = append(out, user.Name)
	}
	return out
}

func TestManagerAddCleartext(t *testing.T) {
	m, recorder := newTestManager(t, AuthCleartext)

	user := mustAdd(t, m, "  testing ", "123", "editor", "", "editor")
	if user.Name != "testing" || user.Password != "123" || !user.Active {
		t.Fatalf("unexpected user: %+v", user)
	}
	if diff := cmp.Diff([]string{"editor"}, user.Roles); diff != "" {
		t.Fatalf("unexpected roles (-want +got):\n%s", diff)
	}
	if !user.CreatedAt.Equal(fixedNow) {
		t.Fatalf("expected created_at %v, got %v", fixedNow, user.CreatedAt)
	}

	stored, err := m.Get(context.Background(), "testing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.ID != user.ID {
		t.Fatalf("expected stored id %s, got %s", user.ID, stored.ID)
	}

	if len(recorder.Records) != 1 || recorder.Records[0].Verb != VerbCreated {
		t.Fatalf("expected a user.created record, got %+v", recorder.Records)
	}
	if recorder.Records[0].ObjectID != user.ID.String() || recorder.Records[0].Channel != "wiki" {
		t.Fatalf("unexpected record: %+v", recorder.Records[0])
	}
}

func TestManagerAddHashStoresDigest(t *testing.T) {
	m, _ := newTestManager(t, AuthHash)

	user := mustAdd(t, m, "ada", "s3cret")
	if user.Password == "s3cret" || !strings.HasPrefix(user.Password, "$2") {
		t.Fatalf("expected bcrypt digest, got %q", user.Password)
	}
	if _, err := m.Authenticate(context.Background(), "ada", "s3cret"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if _, err := m.Authenticate(context.Background(), "ada", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestManagerAddRejectsDuplicatesAndBlanks(t *testing.T) {
	m, _ := newTestManager(t, AuthCleartext)
	ctx := context.Background()
	mustAdd(t, m, "testing", "123")

	if _, err := m.Add(ctx, NewUser{Name: "testing", Password: "12345"}); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	// The original password still works after the rejected duplicate.
	if _, err := m.Authenticate(ctx, "testing", "123"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if _, err := m.Add(ctx, NewUser{Name: "Testing", Password: "x"}); err != nil {
		t.Fatalf("names are case sensitive, got %v", err)
	}
	if _, err := m.Add(ctx, NewUser{Name: " ", Password: "x"}); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	if _, err := m.Add(ctx, NewUser{Name: "x"}); !errors.Is(err, ErrPasswordRequired) {
		t.Fatalf("expected ErrPasswordRequired, got %v", err)
	}
	if _, err := m.Add(ctx, NewUser{Name: "x", Password: "y", Method: "md5"}); !errors.Is(err, ErrUnknownAuthMethod) {
		t.Fatalf("expected ErrUnknownAuthMethod, got %v", err)
	}
}

func TestManagerAuthenticateAndLogout(t *testing.T) {
	m, recorder := newTestManager(t, AuthCleartext)
	ctx := context.Background()
	created := mustAdd(t, m, "name", "1234")

	user, err := m.Authenticate(ctx, "name", "1234")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if !user.Authenticated {
		t.Fatal("expected authenticated flag")
	}
	stored, _ := m.Get(ctx, "name")
	if !stored.Authenticated {
		t.Fatal("authenticated flag was not persisted")
	}

	if err := m.Logout(ctx, "name"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	stored, _ = m.Get(ctx, "name")
	if stored.Authenticated {
		t.Fatal("logout did not clear the authenticated flag")
	}

	verbs := make([]string, 0, len(recorder.Records))
	for _, record := range recorder.Records {
		verbs = append(verbs, record.Verb)
	}
	if diff := cmp.Diff([]string{VerbCreated, VerbLogin, VerbLogout}, verbs); diff != "" {
		t.Fatalf("unexpected verbs (-want +got):\n%s", diff)
	}
	if recorder.Records[1].ActorID != created.ID {
		t.Fatalf("login actor should be the user, got %s", recorder.Records[1].ActorID)
	}
}

func TestManagerAuthenticateFailures(t *testing.T) {
	m, _ := newTestManager(t, AuthCleartext)
	ctx := context.Background()
	mustAdd(t, m, "name", "1234")
	if err := m.store.Update(ctx, func(list []User) ([]User, error) {
		return append(list, User{ID: uuid.New(), Name: "dormant", Password: "pw", AuthenticationMethod: AuthCleartext}), nil
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	cases := []struct{ name, password string }{
		{"name", "wrong"},
		{"nobody", "1234"},
		{"dormant", "pw"},
	}
	for _, tc := range cases {
		if _, err := m.Authenticate(ctx, tc.name, tc.password); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("%s: expected ErrInvalidCredentials, got %v", tc.name, err)
		}
	}
}

func TestManagerDeleteRequiresPassword(t *testing.T) {
	m, recorder := newTestManager(t, AuthCleartext)
	ctx := context.Background()
	mustAdd(t, m, "name", "1234")
	target := mustAdd(t, m, "testing", "123")

	if _, err := m.Delete(ctx, "testing", "1234"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := m.Delete(ctx, "ghost", "x"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	actor := uuid.New()
	removed, err := m.Delete(WithActor(ctx, actor), "testing", "123")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed.ID != target.ID {
		t.Fatalf("removed the wrong user: %+v", removed)
	}
	if _, err := m.Authenticate(ctx, "testing", "123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("deleted user can still log in: %v", err)
	}

	last := recorder.Records[len(recorder.Records)-1]
	if last.Verb != VerbDeleted || last.ActorID != actor {
		t.Fatalf("unexpected delete record: %+v", last)
	}
}

func TestManagerDeleteByRole(t *testing.T) {
	m, recorder := newTestManager(t, AuthCleartext)
	ctx := context.Background()
	mustAdd(t, m, "name", "1234", "admin")
	mustAdd(t, m, "roleDeleteDummy01", "x", "test")
	mustAdd(t, m, "keeper", "x", "tester")
	mustAdd(t, m, "roleDeleteDummy02", "x", "editor", "test")

	removed, remaining, err := m.DeleteByRole(ctx, " test ")
	if err != nil {
		t.Fatalf("delete by role: %v", err)
	}
	if diff := cmp.Diff([]string{"roleDeleteDummy01", "roleDeleteDummy02"}, names(removed)); diff != "" {
		t.Fatalf("unexpected removed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"name", "keeper"}, names(remaining)); diff != "" {
		t.Fatalf("unexpected remaining (-want +got):\n%s", diff)
	}

	stored, err := m.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if diff := cmp.Diff(names(remaining), names(stored)); diff != "" {
		t.Fatalf("store does not match remaining (-want +got):\n%s", diff)
	}

	byRole := 0
	for _, record := range recorder.Records {
		if record.Verb == VerbDeletedByRole {
			byRole++
			if record.Data["role"] != "test" {
				t.Fatalf("expected role in record data, got %v", record.Data)
			}
		}
	}
	if byRole != 2 {
		t.Fatalf("expected 2 deleted_by_role records, got %d", byRole)
	}

	if _, _, err := m.DeleteByRole(ctx, ""); !errors.Is(err, ErrRoleRequired) {
		t.Fatalf("expected ErrRoleRequired, got %v", err)
	}
}

func TestUserPublicDropsPassword(t *testing.T) {
	user := User{Name: "ada", Password: "secret", Roles: []string{"admin"}}
	public := user.Public()
	if public.Password != "" {
		t.Fatal("expected password to be cleared")
	}
	public.Roles[0] = "changed"
	if user.Roles[0] != "admin" {
		t.Fatal("public copy shares the roles slice")
	}
}
