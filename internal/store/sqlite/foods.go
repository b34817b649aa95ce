package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"lg/calorie-tracker-api/internal/model"
	"lg/calorie-tracker-api/internal/store"
)

const foodColumns = `id, name, description, calories_per_100g, protein_per_100g, carbs_per_100g,
	fat_per_100g, fiber_per_100g, serving_size, is_verified, created_by, created_at`

func scanFood(r rowScanner) (model.Food, error) {
	var f model.Food
	var createdBy sql.NullInt64
	var created int64
	err := r.Scan(&f.ID, &f.Name, &f.Description, &f.CaloriesPer100, &f.ProteinPer100, &f.CarbsPer100,
		&f.FatPer100, &f.FiberPer100, &f.ServingSize, &f.Verified, &createdBy, &created)
	if err != nil {
		return model.Food{}, dbError(err)
	}
	f.CreatedBy = nullInt(createdBy)
	f.CreatedAt = fromMillis(created)
	return f, nil
}

func (s *Store) CreateFood(ctx context.Context, f model.Food) (model.Food, error) {
	return scanFood(s.db.QueryRowContext(ctx,
		`INSERT INTO foods (name, description, calories_per_100g, protein_per_100g, carbs_per_100g,
			fat_per_100g, fiber_per_100g, serving_size, is_verified, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING `+foodColumns,
		f.Name, f.Description, f.CaloriesPer100, f.ProteinPer100, f.CarbsPer100, f.FatPer100,
		f.FiberPer100, f.ServingSize, f.Verified, f.CreatedBy, millis(s.now())))
}

func (s *Store) GetFood(ctx context.Context, id int64) (model.Food, error) {
	return scanFood(s.db.QueryRowContext(ctx, "SELECT "+foodColumns+" FROM foods WHERE id = ?", id))
}

// SearchFoods matches a case-insensitive substring of the name. Verified foods
// and prefix matches sort first.
func (s *Store) SearchFoods(ctx context.Context, query string, limit int) ([]model.Food, error) {
	if limit <= 0 {
		limit = store.DefaultSearchLimit
	}
	q := strings.ToLower(strings.TrimSpace(query))
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+foodColumns+` FROM foods
		 WHERE instr(lower(name), ?1) > 0
		 ORDER BY is_verified DESC, instr(lower(name), ?1), name, id
		 LIMIT ?2`, q, limit)
	return collect(rows, err, scanFood)
}
