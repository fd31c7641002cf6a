package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/moodlist/internal/server"
	"github.com/desertthunder/moodlist/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP API server until the context is cancelled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify credentials are not configured", shared.ErrServiceUnavailable)
	}

	r.resolveConfig(cmd)

	if err := r.openDatabase(); err != nil {
		return err
	}

	if err := shared.RunMigrations(r.db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	host := r.config.Server.Host
	if cmd.String("host") != "" {
		host = cmd.String("host")
	}
	port := r.config.Server.Port
	if cmd.Int("port") != 0 {
		port = cmd.Int("port")
	}

	sessions := server.NewSessionManager(
		r.config.Server.SessionSecret,
		r.config.Server.CookieName,
		time.Duration(r.config.Server.SessionTTL)*time.Hour,
		r.users,
	)

	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Use(sessions.WithUser())
	router.Handler(server.NewAuthHandler(r.spotify, r.users, sessions, r.logger))
	router.Handler(server.NewPlaylistHandler(r.engine, r.logger))
	router.Handler(server.NewHealthHandler(r.db))

	addr := fmt.Sprintf("%s:%d", host, port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		r.logger.Info("server listening", "addr", addr)
		errChan <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}
