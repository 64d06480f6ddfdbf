package runtimeconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tailscale/hujson"
)

var ErrContentDirRequired = errors.New("wiki config: content directory is required")
var ErrUserDirRequired = errors.New("wiki config: user directory is required")
var ErrServerAddrRequired = errors.New("wiki config: server address is required")
var ErrAuthMethodInvalid = errors.New("wiki config: default authentication method must be cleartext or hash")
var ErrSessionTTLInvalid = errors.New("wiki config: session ttl must be positive")
var ErrPageExtensionInvalid = errors.New("wiki config: page extension must start with a dot")
var ErrWatchRequiresCache = errors.New("wiki config: index watching requires the index cache")
var ErrTimeoutInvalid = errors.New("wiki config: timeouts must be zero or positive")
var ErrLoggingProviderRequired = errors.New("wiki config: logging provider is required")
var ErrLoggingProviderUnknown = errors.New("wiki config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("wiki config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("wiki config: logging format is invalid")

// ErrConfigFile wraps failures reading or decoding a config file.
var ErrConfigFile = errors.New("wiki config: invalid config file")

// UsersFileName is the users document inside UserDir.
const UsersFileName = "users.json"

// Config aggregates every runtime option of the wiki.
type Config struct {
	Title             string         `json:"title"`
	ContentDir        string         `json:"content_dir"`
	UserDir           string         `json:"user_dir"`
	Private           bool           `json:"private"`
	DefaultAuthMethod string         `json:"default_auth_method"`
	Server            ServerConfig   `json:"server"`
	Sessions          SessionConfig  `json:"sessions"`
	Index             IndexConfig    `json:"index"`
	Markdown          MarkdownConfig `json:"markdown"`
	Commands          CommandsConfig `json:"commands"`
	Logging           LoggingConfig  `json:"logging"`
}

// ServerConfig captures HTTP listener behaviour.
type ServerConfig struct {
	Addr            string   `json:"addr"`
	ReadTimeout     Duration `json:"read_timeout"`
	WriteTimeout    Duration `json:"write_timeout"`
	ShutdownTimeout Duration `json:"shutdown_timeout"`
	SecureCookies   bool     `json:"secure_cookies"`
}

// SessionConfig controls login sessions.
type SessionConfig struct {
	TTL Duration `json:"ttl"`
}

// IndexConfig controls the page index.
type IndexConfig struct {
	Cache bool `json:"cache"`
	Watch bool `json:"watch"`
}

// MarkdownConfig captures page file and parser behaviour.
type MarkdownConfig struct {
	Extension string               `json:"extension"`
	Parser    MarkdownParserConfig `json:"parser"`
}

// MarkdownParserConfig mirrors interfaces.ParseOptions for runtime configuration.
type MarkdownParserConfig struct {
	Extensions []string `json:"extensions"`
	Sanitize   bool     `json:"sanitize"`
	HardWraps  bool     `json:"hard_wraps"`
	SafeMode   bool     `json:"safe_mode"`
}

// CommandsConfig captures command-layer behaviour.
type CommandsConfig struct {
	Timeout Duration `json:"timeout"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `json:"provider"`
	Level     string   `json:"level"`
	Format    string   `json:"format"`
	AddSource bool     `json:"add_source"`
	Focus     []string `json:"focus"`
}

// DefaultConfig returns the settings used when no config file is given.
func DefaultConfig() Config {
	return Config{
		Title:             "wiki",
		ContentDir:        "content",
		UserDir:           "user",
		Private:           false,
		DefaultAuthMethod: "cleartext",
		Server: ServerConfig{
			Addr:            "127.0.0.1:5000",
			ReadTimeout:     Duration(15 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Sessions: SessionConfig{
			TTL: Duration(12 * time.Hour),
		},
		Index: IndexConfig{},
		Markdown: MarkdownConfig{
			Extension: ".md",
			Parser: MarkdownParserConfig{
				Extensions: []string{"gfm", "linkify", "tasklist", "footnote"},
				Sanitize:   true,
			},
		},
		Commands: CommandsConfig{
			Timeout: Duration(30 * time.Second),
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// UsersFile returns the path of the users document.
func (cfg Config) UsersFile() string {
	return filepath.Join(cfg.UserDir, UsersFileName)
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.ContentDir) == "" {
		return ErrContentDirRequired
	}
	if strings.TrimSpace(cfg.UserDir) == "" {
		return ErrUserDirRequired
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return ErrServerAddrRequired
	}
	switch strings.ToLower(strings.TrimSpace(cfg.DefaultAuthMethod)) {
	case "cleartext", "hash":
	default:
		return fmt.Errorf("%w: %q", ErrAuthMethodInvalid, cfg.DefaultAuthMethod)
	}
	if cfg.Sessions.TTL <= 0 {
		return ErrSessionTTLInvalid
	}
	for name, timeout := range map[string]Duration{
		"read_timeout":     cfg.Server.ReadTimeout,
		"write_timeout":    cfg.Server.WriteTimeout,
		"shutdown_timeout": cfg.Server.ShutdownTimeout,
		"commands.timeout": cfg.Commands.Timeout,
	} {
		if timeout < 0 {
			return fmt.Errorf("%w: %s", ErrTimeoutInvalid, name)
		}
	}
	if ext := cfg.Markdown.Extension; len(ext) < 2 || ext[0] != '.' || strings.ContainsAny(ext, `/\`) {
		return fmt.Errorf("%w: %q", ErrPageExtensionInvalid, ext)
	}
	if cfg.Index.Watch && !cfg.Index.Cache {
		return ErrWatchRequiresCache
	}

	provider := normalizeProvider(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// LoadFile reads a HuJSON (JSON with comments and trailing commas) file and
// applies it over the defaults. Keys missing from the file keep their
// default value; unknown keys are rejected.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w %s: %w", ErrConfigFile, path, err)
	}
	if err := Decode(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w %s: %w", ErrConfigFile, path, err)
	}
	return cfg, nil
}

// Decode applies a HuJSON document over cfg.
func Decode(data []byte, cfg *Config) error {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fmt.Errorf("invalid JSONC: %w", err)
	}
	decoder := json.NewDecoder(bytes.NewReader(standardized))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
