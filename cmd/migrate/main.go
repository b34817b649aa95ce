// CLI tool to run pending Postgres migrations from db/.
// Checks the migrations table to skip already-applied files.
// Wraps each migration + record insert in a single transaction.
// Usage: go run ./cmd/migrate
package main

import (
	"context"
	"fmt"
	"os"

	"lg/calorie-tracker-api/db"
	"lg/calorie-tracker-api/internal/config"
	"lg/calorie-tracker-api/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if cfg.DBDriver != config.DriverPostgres {
		fmt.Println("SQLite databases migrate themselves on startup; nothing to do.")
		return
	}

	ctx := context.Background()
	s, err := postgres.Open(ctx, cfg.DBURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	applied, err := s.Migrate(ctx, db.Migrations)
	for _, name := range applied {
		fmt.Printf("  applied: %s\n", name)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(applied) == 0 {
		fmt.Println("No pending migrations.")
	} else {
		fmt.Printf("\n%d migration(s) applied.\n", len(applied))
	}
}
