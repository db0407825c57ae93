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

	"useradmin/internal/client"
	intconfig "useradmin/internal/config"
	router "useradmin/internal/http"
	"useradmin/internal/listing"
	"useradmin/internal/session"
	"useradmin/internal/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	env, err := intconfig.LoadEnv()
	if err != nil {
		return err
	}
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	logger, err := utils.NewLogger(env.LogLevel, gin.Mode() != gin.ReleaseMode)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	users := client.NewUsers(env.UsersAPIURL,
		client.WithTimeout(env.UsersAPITimeout),
		client.WithLogger(logger.Named("client")),
	)

	sessions := session.NewRegistry(func(ctx context.Context) *listing.Page {
		return listing.NewPage(ctx, users, listing.PageConfig{
			PageSize:       env.DefaultPageSize,
			SearchDebounce: env.SearchDebounce,
			FetchTimeout:   env.UsersAPITimeout,
			Logger:         logger.Named("listing"),
		})
	}, env.SessionIdleTTL, logger.Named("session"))
	defer sessions.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if env.SessionIdleTTL > 0 {
		go sessions.Run(ctx, env.SessionIdleTTL/2)
	}

	r, err := router.NewConsoleRouter(router.ConsoleDeps{
		Sessions:       sessions,
		Logger:         logger,
		AllowedOrigins: env.CORSAllowedOrigins,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		// No write timeout: the event stream stays open for the tab's lifetime.
		IdleTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("console listening", "addr", env.AppAddr, "users_api", env.UsersAPIURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sessions.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
