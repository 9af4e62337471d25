package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/careeratlas/trends/internal/adapters/http/api"
	"github.com/careeratlas/trends/internal/adapters/http/swagger"
	"github.com/careeratlas/trends/internal/config"
	"github.com/careeratlas/trends/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, log, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	svc, err := startService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer svc.Stop()

	srv := newHTTPServer(ctx, cfg, svc, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

type httpDeps interface {
	api.Dependencies
	api.StatsProvider
}

// newHTTPServer mounts the docs and API routes behind the request-id and
// CORS middleware.
func newHTTPServer(ctx context.Context, cfg *config.Config, deps httpDeps, log logger.Logger) *http.Server {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(deps, deps, api.WithLogger(log.Named("http"))).Register(ctx, mux)

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Chain(mux, cfg.CORSOrigins),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
