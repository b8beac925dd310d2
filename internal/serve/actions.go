package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/vincent-caetano/how-much/internal/annotate"
	"github.com/vincent-caetano/how-much/internal/common"
	"github.com/vincent-caetano/how-much/pkg/caching"
)

// Flags returns the flags of the serve command.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "addr", Value: "127.0.0.1:8080", Usage: "Listen address"},
		&cli.StringFlag{Name: "max-age", Value: "1h", Usage: "Reuse cached pages younger than this (0 disables the cache)"},
		&cli.StringFlag{Name: "cache-dir", Usage: "Directory for fetched pages (empty disables the cache)"},
	}
}

// ServeAction runs the HTTP server until interrupted.
func ServeAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	maxAge, err := time.ParseDuration(c.String("max-age"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: invalid max-age duration: %v", err), 1)
	}

	database, err := common.OpenDB(c)
	if err != nil {
		return err
	}
	defer database.Close()

	var cache *caching.Cache
	if dir := c.String("cache-dir"); dir != "" && maxAge > 0 {
		if cache, err = caching.NewCache(dir, maxAge); err != nil {
			return fmt.Errorf("failed to initialize cache: %w", err)
		}
		if n, err := cache.Purge(); err == nil && n > 0 {
			logger.Info("purged expired pages", "removed", n)
		}
	}

	deps, store := annotate.NewDeps(database, logger, cache)
	if _, err := store.Load(c.Context); err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	srv := &http.Server{
		Addr:              c.String("addr"),
		Handler:           NewServer(deps, store).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr, "db", database.Path())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("server stopped")
	return nil
}
