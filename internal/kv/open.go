package kv

import (
	"context"
	"fmt"

	"fleetline/internal/db"
	"fleetline/internal/migrate"
)

const (
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Drivers lists the accepted storage drivers.
var Drivers = []string{DriverSQLite, DriverMemory, DriverRedis, DriverPostgres}

type Options struct {
	Driver    string
	DSN       string
	Workspace string
	Prefix    string
}

// Open builds the Store selected by opts.Driver. An empty driver means sqlite.
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		s   Store
		err error
	)
	switch opts.Driver {
	case "", DriverSQLite:
		s, err = openSQLite(ctx, opts.Workspace)
	case DriverMemory:
		s = NewMemory()
	case DriverRedis:
		s, err = NewRedis(ctx, opts.DSN)
	case DriverPostgres:
		s, err = NewPostgres(ctx, opts.DSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}
	return WithPrefix(s, opts.Prefix), nil
}

func openSQLite(ctx context.Context, workspace string) (Store, error) {
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return nil, err
	}
	if err := migrate.Migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}
	return SQLite{DB: conn}, nil
}
