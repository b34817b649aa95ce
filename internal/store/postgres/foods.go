package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"lg/calorie-tracker-api/internal/model"
	"lg/calorie-tracker-api/internal/store"
)

const foodColumns = `id, name, description, calories_per_100g, protein_per_100g, carbs_per_100g,
	fat_per_100g, fiber_per_100g, serving_size, is_verified, created_by, created_at`

func (s *Store) CreateFood(ctx context.Context, f model.Food) (model.Food, error) {
	return queryOne[model.Food](ctx, s.pool,
		`INSERT INTO foods (name, description, calories_per_100g, protein_per_100g, carbs_per_100g,
			fat_per_100g, fiber_per_100g, serving_size, is_verified, created_by)
		 VALUES (@name, @description, @calories, @protein, @carbs, @fat, @fiber, @servingSize, @verified, @createdBy)
		 RETURNING `+foodColumns,
		pgx.NamedArgs{
			"name": f.Name, "description": f.Description,
			"calories": f.CaloriesPer100, "protein": f.ProteinPer100, "carbs": f.CarbsPer100,
			"fat": f.FatPer100, "fiber": f.FiberPer100, "servingSize": f.ServingSize,
			"verified": f.Verified, "createdBy": f.CreatedBy,
		})
}

func (s *Store) GetFood(ctx context.Context, id int64) (model.Food, error) {
	return queryOne[model.Food](ctx, s.pool,
		"SELECT "+foodColumns+" FROM foods WHERE id = @id",
		pgx.NamedArgs{"id": id})
}

// SearchFoods matches a case-insensitive substring of the name. Verified foods
// and prefix matches sort first.
func (s *Store) SearchFoods(ctx context.Context, query string, limit int) ([]model.Food, error) {
	if limit <= 0 {
		limit = store.DefaultSearchLimit
	}
	q := strings.ToLower(strings.TrimSpace(query))
	return queryMany[model.Food](ctx, s.pool,
		`SELECT `+foodColumns+` FROM foods
		 WHERE strpos(lower(name), @q) > 0
		 ORDER BY is_verified DESC, strpos(lower(name), @q), name, id
		 LIMIT @limit`,
		pgx.NamedArgs{"q": q, "limit": limit})
}
