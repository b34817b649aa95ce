package postgres

import (
	"context"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
)

var migrationPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-\d{3}-`)

// Migrate applies every *.sql file in migrations that is not yet recorded in
// the migrations table. Each file and its record insert share one
// transaction. It returns the names of the files applied.
func (s *Store) Migrate(ctx context.Context, migrations fs.FS) ([]string, error) {
	files, err := fs.Glob(migrations, "*.sql")
	if err != nil || len(files) == 0 {
		return nil, fmt.Errorf("no migration files found")
	}
	sort.Strings(files)

	// Get already-applied migrations (table may not exist yet)
	applied := make(map[string]bool)
	rows, err := s.pool.Query(ctx, "SELECT migration FROM migrations")
	if err == nil {
		names, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return nil, fmt.Errorf("read applied migrations: %w", err)
		}
		for _, n := range names {
			applied[n] = true
		}
	}

	var ran []string
	for _, filename := range files {
		if applied[filename] {
			continue
		}
		content, err := fs.ReadFile(migrations, filename)
		if err != nil {
			return ran, fmt.Errorf("read %s: %w", filename, err)
		}
		err = s.inTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(content)); err != nil {
				return fmt.Errorf("run %s: %w", filename, err)
			}
			_, err := tx.Exec(ctx, "INSERT INTO migrations (migration, description) VALUES ($1, $2)",
				filename, DescriptionFromFilename(filename))
			if err != nil {
				return fmt.Errorf("record %s: %w", filename, err)
			}
			return nil
		})
		if err != nil {
			return ran, err
		}
		ran = append(ran, filename)
	}
	return ran, nil
}

// DescriptionFromFilename strips the YYYY-MM-DD-NNN- prefix and .sql suffix.
func DescriptionFromFilename(filename string) string {
	name := strings.TrimSuffix(filename, ".sql")
	name = migrationPrefix.ReplaceAllString(name, "")
	return strings.ReplaceAll(name, "-", " ")
}
