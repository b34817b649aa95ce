// Package driver opens the store.Store selected by configuration.
package driver

import (
	"context"
	"fmt"

	"lg/calorie-tracker-api/internal/config"
	"lg/calorie-tracker-api/internal/store"
	"lg/calorie-tracker-api/internal/store/postgres"
	"lg/calorie-tracker-api/internal/store/sqlite"
)

// Open connects to the configured database. Postgres must already be migrated
// with cmd/migrate; SQLite migrates itself on open.
func Open(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverPostgres:
		s, err := postgres.Open(ctx, cfg.DBURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
}
