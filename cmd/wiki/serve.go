package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-wiki"
)

const sessionSweepInterval = 5 * time.Minute

func newServeCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the wiki over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			module, err := buildModule(cmd, flags)
			if err != nil {
				return err
			}
			defer module.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, module)
		},
	}
}

func serve(ctx context.Context, module *wiki.Module) error {
	cfg := module.Config()
	logger := module.Logger("wiki.server")

	if err := module.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           module.Handler(),
		ReadTimeout:       cfg.Server.ReadTimeout.Std(),
		ReadHeaderTimeout: cfg.Server.ReadTimeout.Std(),
		WriteTimeout:      cfg.Server.WriteTimeout.Std(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server.listening", "addr", cfg.Server.Addr, "content_dir", cfg.ContentDir, "private", cfg.Private)
		errCh <- server.ListenAndServe()
	}()

	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ticker.C:
			if removed := module.Sessions().Sweep(); removed > 0 {
				logger.Debug("sessions.swept", "removed", removed)
			}
		case <-ctx.Done():
			logger.Info("server.shutdown")
			timeout := cfg.Server.ShutdownTimeout.Std()
			if timeout <= 0 {
				timeout = 10 * time.Second
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		}
	}
}
