// Package app wires the auth subsystem together for the storefront UI
// layer: configuration, logging, the session store backend, the identity
// client, and the orchestrator, constructed once per process with an
// explicit lifecycle instead of hidden singletons.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/revogue/storefront-client/internal/core/ports"
	"github.com/revogue/storefront-client/internal/core/service"
	"github.com/revogue/storefront-client/internal/infrastructure/identity"
	"github.com/revogue/storefront-client/internal/infrastructure/store"
	"github.com/revogue/storefront-client/internal/pkg/config"
	"github.com/revogue/storefront-client/pkg/logger"
)

// App holds the assembled auth subsystem.
type App struct {
	Auth  *service.AuthService
	Store ports.SessionStore
	log   zerolog.Logger
}

// New builds the subsystem from cfg and hydrates the session machine from
// persisted state.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	sessionStore, err := newSessionStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	client, err := identity.NewClient(cfg.BackendURL, cfg.HTTPTimeout, log)
	if err != nil {
		_ = sessionStore.Close()
		return nil, fmt.Errorf("identity client: %w", err)
	}

	auth := service.NewAuthService(sessionStore, client, log)
	auth.Hydrate(ctx)

	return &App{Auth: auth, Store: sessionStore, log: log}, nil
}

// Close disposes the session store. The App must not be used after.
func (a *App) Close() error {
	return a.Store.Close()
}

func newSessionStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.SessionStore, error) {
	switch cfg.SessionStore {
	case config.StoreRedis:
		client, err := store.Connect(ctx, store.RedisConfig{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return nil, fmt.Errorf("session store: %w", err)
		}
		return store.NewRedisStore(client, log), nil
	case config.StoreFile, "":
		return store.NewFileStore(cfg.StatePath, log), nil
	default:
		return nil, fmt.Errorf("session store: unknown backend %q", cfg.SessionStore)
	}
}
