package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/acmeid/accounts-api/auth"
	"github.com/acmeid/accounts-api/internal/config"
	"github.com/acmeid/accounts-api/server"
	"github.com/acmeid/accounts-api/storage/postgres"
	"github.com/acmeid/accounts-api/token"
	"github.com/acmeid/accounts-api/token/refresh"
	refreshrepofake "github.com/acmeid/accounts-api/token/refresh/repofake"
	"github.com/acmeid/accounts-api/users"
	userrepofake "github.com/acmeid/accounts-api/users/repofake"
	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := run(log); err != nil {
		log.Fatal().Err(err).Msg("error running server")
	}
	log.Info().Msg("server stopped")
}

func run(log zerolog.Logger) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}
	displayAppname(cfg.AppName)

	userRepo, refreshRepo, cleanup, err := buildRepos(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	codec := token.NewCodec([]byte(cfg.JWTSecret), cfg.AccessTokenValidity)
	refreshManager := refresh.NewManager(refreshRepo, cfg.RefreshTokenValidity)

	authService, err := auth.NewService(auth.Repos{Users: userRepo}, codec, refreshManager)
	if err != nil {
		return fmt.Errorf("auth.NewService: %w", err)
	}

	if err := server.InitialiseSystem(context.Background(), cfg, userRepo, log); err != nil {
		return fmt.Errorf("server.InitialiseSystem: %w", err)
	}

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.New(cfg, authService, codec, log),
	}
	go listenAndServe(httpServer, log)
	waitForStopSignal()
	return shutdown(httpServer)
}

// buildRepos wires PostgreSQL when a DSN is configured and falls back to the
// in-memory repositories for local development.
func buildRepos(cfg *config.Config, log zerolog.Logger) (users.Repo, refresh.Repo, func(), error) {
	if cfg.DatabaseDSN == "" {
		log.Warn().Msg("DATABASE_DSN not configured, using in-memory storage")
		return userrepofake.NewFakeUserRepo(), refreshrepofake.NewFakeRefreshTokenRepo(), func() {}, nil
	}

	store, err := postgres.Open(context.Background(), cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("postgres.Open: %w", err)
	}
	return store.Users(), store.RefreshTokens(), func() { _ = store.Close() }, nil
}

func listenAndServe(srv *http.Server, log zerolog.Logger) {
	log.Info().Str("addr", srv.Addr).Msg("server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
