// Command usersapi runs a MySQL-backed users backend for local
// development of the console.
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

	intconfig "useradmin/internal/config"
	router "useradmin/internal/http"
	"useradmin/internal/repositories"
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
	env, err := intconfig.LoadAPIEnv()
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

	db, err := intconfig.ConnectDB(env.DBDSN)
	if err != nil {
		return err
	}
	defer intconfig.CloseDB()

	repo := repositories.UserRepository{DB: db}
	if err := repo.EnsureSchema(context.Background()); err != nil {
		return err
	}

	r := router.NewAPIRouter(router.APIDeps{
		Repo:           repo,
		Logger:         logger,
		AllowedOrigins: env.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("users api listening", "addr", env.AppAddr)
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
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
