// Package app wires a workspace's storage, session, store and route table
// together for the CLI and the HTTP server.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fleetline/internal/config"
	"fleetline/internal/fleet"
	"fleetline/internal/guard"
	"fleetline/internal/kv"
	"fleetline/internal/logging"
	"fleetline/internal/session"
)

// App is one opened workspace.
type App struct {
	Workspace string
	Config    *config.Config
	KV        kv.Store
	Session   *session.Manager
	Store     *fleet.Store
	Routes    guard.Routes
	Logger    *zap.Logger
}

// Open connects to the configured backend and loads the session and store.
func Open(ctx context.Context, workspace string, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	logger = logging.OrNop(logger)
	store, err := kv.Open(ctx, kv.Options{
		Driver:    cfg.Storage.Driver,
		DSN:       cfg.Storage.DSN,
		Workspace: workspace,
		Prefix:    cfg.Storage.Prefix,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Driver, err)
	}
	sess, err := session.New(ctx, store, session.RosterFromConfig(cfg.Roster), logger.Named("session"))
	if err != nil {
		store.Close()
		return nil, err
	}
	data, err := fleet.Open(ctx, store, fleet.Options{
		Logger:    logger.Named("store"),
		OnCorrupt: cfg.Storage.OnCorrupt,
	})
	if err != nil {
		store.Close()
		return nil, err
	}
	return &App{
		Workspace: workspace,
		Config:    cfg,
		KV:        store,
		Session:   sess,
		Store:     data,
		Routes:    guard.FromConfig(cfg.Routes),
		Logger:    logger,
	}, nil
}

// Authorize checks the signed-in user against a named route.
func (a *App) Authorize(route string) error {
	return a.Routes.Check(a.Session.User(), route)
}

func (a *App) Close() error {
	return a.KV.Close()
}
