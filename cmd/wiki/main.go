package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-wiki"
	"github.com/goliatone/go-wiki/internal/logging/console"
)

// moduleBuilder is replaced in tests.
var moduleBuilder = wiki.New

type rootFlags struct {
	configPath string
	contentDir string
	userDir    string
	addr       string
	title      string
	private    bool
	logLevel   string
}

func main() {
	if err := newRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(out, errOut io.Writer) *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   "wiki",
		Short: "A small file-backed Markdown wiki",
		Long: `wiki serves a directory of Markdown pages over HTTP.

Pages are plain files with YAML front matter. Accounts live in a JSON
document under the user directory and can be managed with "wiki users".`,
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "HuJSON config file applied over the defaults")
	pf.StringVar(&flags.contentDir, "content", "", "directory holding the Markdown pages")
	pf.StringVar(&flags.userDir, "user-dir", "", "directory holding users.json")
	pf.StringVar(&flags.addr, "addr", "", "listen address, e.g. 127.0.0.1:5000")
	pf.StringVar(&flags.title, "title", "", "wiki name shown in page headers")
	pf.BoolVar(&flags.private, "private", false, "require a login for every page")
	pf.StringVar(&flags.logLevel, "log-level", "", "trace, debug, info, warn or error")

	root.AddCommand(newServeCommand(flags), newUsersCommand(flags))
	return root
}

// loadConfig resolves the configuration: defaults, then the config file,
// then flags the user set explicitly.
func loadConfig(cmd *cobra.Command, flags *rootFlags) (wiki.Config, error) {
	cfg := wiki.DefaultConfig()
	if flags.configPath != "" {
		loaded, err := wiki.LoadConfig(flags.configPath)
		if err != nil {
			return wiki.Config{}, err
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("content") {
		cfg.ContentDir = flags.contentDir
	}
	if changed("user-dir") {
		cfg.UserDir = flags.userDir
	}
	if changed("addr") {
		cfg.Server.Addr = flags.addr
	}
	if changed("title") {
		cfg.Title = flags.title
	}
	if changed("private") {
		cfg.Private = flags.private
	}
	if changed("log-level") {
		cfg.Logging.Level = flags.logLevel
	}
	return cfg, cfg.Validate()
}

// buildModule writes console logs to stderr so command output stays clean.
func buildModule(cmd *cobra.Command, flags *rootFlags) (*wiki.Module, error) {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var opts []wiki.Option
	if strings.EqualFold(strings.TrimSpace(cfg.Logging.Provider), "console") {
		level, err := console.ParseLevel(cfg.Logging.Level)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		opts = append(opts, wiki.WithLoggerProvider(console.NewProvider(console.Options{
			Writer:   cmd.ErrOrStderr(),
			MinLevel: &level,
		})))
	}

	module, err := moduleBuilder(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("bootstrap wiki: %w", err)
	}
	return module, nil
}
