package runtimeconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-wiki/internal/runtimeconfig"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
	if cfg.UsersFile() != filepath.Join("user", "users.json") {
		t.Fatalf("unexpected users file %q", cfg.UsersFile())
	}
}

func TestConfigValidate_Errors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*runtimeconfig.Config)
		want   error
	}{
		{"content dir", func(c *runtimeconfig.Config) { c.ContentDir = " " }, runtimeconfig.ErrContentDirRequired},
		{"user dir", func(c *runtimeconfig.Config) { c.UserDir = "" }, runtimeconfig.ErrUserDirRequired},
		{"addr", func(c *runtimeconfig.Config) { c.Server.Addr = "" }, runtimeconfig.ErrServerAddrRequired},
		{"auth method", func(c *runtimeconfig.Config) { c.DefaultAuthMethod = "md5" }, runtimeconfig.ErrAuthMethodInvalid},
		{"session ttl", func(c *runtimeconfig.Config) { c.Sessions.TTL = 0 }, runtimeconfig.ErrSessionTTLInvalid},
		{"timeout", func(c *runtimeconfig.Config) { c.Commands.Timeout = -1 }, runtimeconfig.ErrTimeoutInvalid},
		{"extension", func(c *runtimeconfig.Config) { c.Markdown.Extension = "md" }, runtimeconfig.ErrPageExtensionInvalid},
		{"watch without cache", func(c *runtimeconfig.Config) { c.Index.Watch = true }, runtimeconfig.ErrWatchRequiresCache},
		{"logging provider", func(c *runtimeconfig.Config) { c.Logging.Provider = "" }, runtimeconfig.ErrLoggingProviderRequired},
		{"unknown provider", func(c *runtimeconfig.Config) { c.Logging.Provider = "syslog" }, runtimeconfig.ErrLoggingProviderUnknown},
		{"level", func(c *runtimeconfig.Config) { c.Logging.Level = "loud" }, runtimeconfig.ErrLoggingLevelInvalid},
		{"format", func(c *runtimeconfig.Config) {
			c.Logging.Provider = "gologger"
			c.Logging.Format = "xml"
		}, runtimeconfig.ErrLoggingFormatInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadFileMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wiki.jsonc")
	doc := `{
  // private wiki for the team
  "title": "Team Wiki",
  "private": true,
  "server": {"addr": ":8080"},
  "sessions": {"ttl": "30m"},
  "commands": {"timeout": 5},
  "logging": {"provider": "gologger", "format": "json", "focus": ["wiki.users",],},
}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := runtimeconfig.LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := runtimeconfig.DefaultConfig()
	want.Title = "Team Wiki"
	want.Private = true
	want.Server.Addr = ":8080"
	want.Sessions.TTL = runtimeconfig.Duration(30 * time.Minute)
	want.Commands.Timeout = runtimeconfig.Duration(5 * time.Second)
	want.Logging.Provider = "gologger"
	want.Logging.Format = "json"
	want.Logging.Focus = []string{"wiki.users"}

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("unexpected config (-want +got):\n%s", diff)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("loaded config should validate: %v", err)
	}
}

func TestLoadFileRejectsUnknownKeysAndBadSyntax(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"unknown.json":  `{"titel": "typo"}`,
		"syntax.json":   `{"title": }`,
		"duration.json": `{"sessions": {"ttl": "forever"}}`,
	}
	for name, doc := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := runtimeconfig.LoadFile(path); !errors.Is(err, runtimeconfig.ErrConfigFile) {
			t.Fatalf("%s: expected ErrConfigFile, got %v", name, err)
		}
	}

	if _, err := runtimeconfig.LoadFile(filepath.Join(dir, "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped not-exist error, got %v", err)
	}
}

func TestDurationMarshalsAsString(t *testing.T) {
	data, err := runtimeconfig.Duration(90 * time.Second).MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"1m30s"` {
		t.Fatalf("unexpected encoding %s", data)
	}
}
