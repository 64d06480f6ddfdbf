package pages

import (
	"errors"
	"testing"
)

func TestCleanURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Docs / Getting   Started ", "docs/getting-started"},
		{"//guides//setup//", "guides/setup"},
	}
	for _, tc := range cases {
		got, err := CleanURL(tc.in)
		if err != nil {
			t.Fatalf("CleanURL(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("CleanURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCleanURLRejectsEmptyAndTraversal(t *testing.T) {
	for _, in := range []string{"", "   ", "///", "docs/../secrets", "."} {
		if _, err := CleanURL(in); !errors.Is(err, ErrInvalidURL) {
			t.Fatalf("CleanURL(%q): expected ErrInvalidURL, got %v", in, err)
		}
	}
}

func TestValidateURL(t *testing.T) {
	got, err := ValidateURL("/docs/intro/")
	if err != nil {
		t.Fatalf("ValidateURL: %v", err)
	}
	if got != "docs/intro" {
		t.Fatalf("expected docs/intro, got %q", got)
	}

	for _, in := range []string{"", "/", "../etc/passwd", "docs/../../x", "docs//intro", ".hidden", `docs\intro`} {
		if _, err := ValidateURL(in); !errors.Is(err, ErrInvalidURL) {
			t.Fatalf("ValidateURL(%q): expected ErrInvalidURL, got %v", in, err)
		}
	}
}
