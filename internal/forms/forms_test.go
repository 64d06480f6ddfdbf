package forms

import (
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoginForm(t *testing.T) {
	form := NewLoginForm(url.Values{"name": {"  name "}, "password": {"1234"}, "next": {"/index/"}})
	if err := form.Validate(); err != nil {
		t.Fatalf("expected valid form, got %v", err)
	}
	if form.Name != "name" || form.Next != "/index/" {
		t.Fatalf("unexpected decode: %+v", form)
	}

	errs := Errors(NewLoginForm(url.Values{"name": {"   "}}).Validate())
	if _, ok := errs["name"]; !ok {
		t.Fatalf("expected name error, got %v", errs)
	}
	if _, ok := errs["password"]; !ok {
		t.Fatalf("expected password error, got %v", errs)
	}
}

func TestCreateUserForm(t *testing.T) {
	cases := []struct {
		name   string
		values url.Values
		fields []string
	}{
		{name: "valid", values: url.Values{"name": {"testing"}, "password": {"123"}, "confirm": {"123"}}},
		{name: "mismatch", values: url.Values{"name": {"testing"}, "password": {"123"}, "confirm": {"321"}}, fields: []string{"confirm"}},
		{name: "missing all", values: url.Values{}, fields: []string{"name", "password"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errs := Errors(NewCreateUserForm(tc.values).Validate())
			var got []string
			for _, field := range []string{"name", "password", "confirm"} {
				if _, ok := errs[field]; ok {
					got = append(got, field)
				}
			}
			if diff := cmp.Diff(tc.fields, got); diff != "" {
				t.Fatalf("unexpected error fields (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDeleteForms(t *testing.T) {
	if err := NewDeleteUserForm(url.Values{}).Validate(); err == nil {
		t.Fatal("expected password error")
	}
	if err := NewDeleteUserForm(url.Values{"password": {"123"}}).Validate(); err != nil {
		t.Fatalf("expected valid form, got %v", err)
	}
	if err := NewDeleteByRoleForm(url.Values{"role": {" "}}).Validate(); err == nil {
		t.Fatal("expected role error")
	}
	form := NewDeleteByRoleForm(url.Values{"role": {" test "}})
	if err := form.Validate(); err != nil || form.Role != "test" {
		t.Fatalf("unexpected result %+v, %v", form, err)
	}
}

func TestURLForm(t *testing.T) {
	exists := func(url string) bool { return url == "home" }

	form := NewURLForm(url.Values{"url": {"Docs / Getting Started"}}, exists)
	if err := form.Validate(); err != nil {
		t.Fatalf("expected valid form, got %v", err)
	}
	if form.Clean() != "docs/getting-started" {
		t.Fatalf("unexpected clean url %q", form.Clean())
	}

	errs := Errors(NewURLForm(url.Values{"url": {"Home"}}, exists).Validate())
	if errs["url"] != `The URL "home" exists already.` {
		t.Fatalf("unexpected exists message: %v", errs)
	}

	errs = Errors(NewURLForm(url.Values{"url": {"../etc"}}, nil).Validate())
	if errs["url"] != "url is not valid" {
		t.Fatalf("unexpected invalid message: %v", errs)
	}
}

func TestEditorForm(t *testing.T) {
	form := NewEditorForm(url.Values{"title": {"Home"}, "body": {"hello\n"}, "tags": {"go, , wiki ,go"}})
	if err := form.Validate(); err != nil {
		t.Fatalf("expected valid form, got %v", err)
	}
	if diff := cmp.Diff([]string{"go", "wiki", "go"}, form.TagList()); diff != "" {
		t.Fatalf("unexpected tags (-want +got):\n%s", diff)
	}
	if form.Body != "hello\n" {
		t.Fatalf("body must be kept verbatim, got %q", form.Body)
	}

	if errs := Errors(NewEditorForm(url.Values{}).Validate()); errs["title"] == "" {
		t.Fatalf("expected title error, got %v", errs)
	}
}

func TestSearchFormDefaults(t *testing.T) {
	empty := NewSearchForm(url.Values{})
	if !empty.IgnoreCase {
		t.Fatal("ignore case should default to on")
	}
	if err := empty.Validate(); err == nil {
		t.Fatal("expected term error")
	}

	submitted := NewSearchForm(url.Values{"term": {"Go"}})
	if submitted.IgnoreCase {
		t.Fatal("unchecked box on a submitted form means case sensitive")
	}
	checked := NewSearchForm(url.Values{"term": {"Go"}, "ignore_case": {"y"}})
	if !checked.IgnoreCase {
		t.Fatal("expected ignore case")
	}
}

func TestErrorsFallsBackToFormKey(t *testing.T) {
	errs := Errors(errors.New("boom"))
	if errs["form"] != "boom" {
		t.Fatalf("unexpected map: %v", errs)
	}
	if Errors(nil) != nil {
		t.Fatal("nil error should give nil map")
	}
}
