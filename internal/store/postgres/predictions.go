package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"lg/calorie-tracker-api/internal/model"
	"lg/calorie-tracker-api/internal/store"
)

const predictionColumns = `id, user_id, input_kind, description, image_mime, image_sha256, food_name,
	quantity_g, calories, protein_g, carbs_g, fat_g, fiber_g, confidence, meal_type, model,
	saved_to_log, entry_id, created_at`

func (s *Store) CreatePrediction(ctx context.Context, p model.CaloriePrediction) (model.CaloriePrediction, error) {
	return queryOne[model.CaloriePrediction](ctx, s.pool,
		`INSERT INTO calorie_predictions (user_id, input_kind, description, image_mime, image_sha256,
			food_name, quantity_g, calories, protein_g, carbs_g, fat_g, fiber_g, confidence, meal_type, model)
		 VALUES (@userID, @kind, @description, @mime, @sha, @foodName, @quantityG,
			@calories, @protein, @carbs, @fat, @fiber, @confidence, @mealType, @model)
		 RETURNING `+predictionColumns,
		pgx.NamedArgs{
			"userID": p.UserID, "kind": string(p.InputKind), "description": p.Description,
			"mime": p.ImageMIME, "sha": p.ImageSHA256, "foodName": p.FoodName, "quantityG": p.QuantityG,
			"calories": p.Calories, "protein": p.ProteinG, "carbs": p.CarbsG, "fat": p.FatG,
			"fiber": p.FiberG, "confidence": p.Confidence, "mealType": string(p.MealType), "model": p.Model,
		})
}

func (s *Store) GetPrediction(ctx context.Context, userID, id int64) (model.CaloriePrediction, error) {
	return queryOne[model.CaloriePrediction](ctx, s.pool,
		"SELECT "+predictionColumns+" FROM calorie_predictions WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
}

// ListPredictions returns the user's history, newest first.
func (s *Store) ListPredictions(ctx context.Context, userID int64, limit int) ([]model.CaloriePrediction, error) {
	if limit <= 0 {
		limit = store.DefaultSearchLimit
	}
	return queryMany[model.CaloriePrediction](ctx, s.pool,
		`SELECT `+predictionColumns+` FROM calorie_predictions
		 WHERE user_id = @userID ORDER BY created_at DESC, id DESC LIMIT @limit`,
		pgx.NamedArgs{"userID": userID, "limit": limit})
}

// PromotePrediction turns a prediction into a food entry. The prediction row
// is locked first, so a concurrent second promotion sees saved_to_log and
// fails with store.ErrAlreadyPromoted.
func (s *Store) PromotePrediction(ctx context.Context, userID, id int64, opts store.PromoteOptions) (model.FoodEntry, model.DailyLog, error) {
	var entry model.FoodEntry
	var day model.DailyLog
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		p, err := queryOne[model.CaloriePrediction](ctx, tx,
			"SELECT "+predictionColumns+" FROM calorie_predictions WHERE id = @id AND user_id = @userID FOR UPDATE",
			pgx.NamedArgs{"id": id, "userID": userID})
		if err != nil {
			return err
		}
		if p.Saved {
			return store.ErrAlreadyPromoted
		}
		e, err := store.EntryFromPrediction(p, opts)
		if err != nil {
			return err
		}
		if err := lockDays(ctx, tx, userID, e.Date); err != nil {
			return err
		}
		if entry, err = insertEntry(ctx, tx, e); err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			"UPDATE calorie_predictions SET saved_to_log = true, entry_id = @entryID WHERE id = @id",
			pgx.NamedArgs{"id": id, "entryID": entry.ID})
		if err != nil {
			return dbError(err)
		}
		day, err = recompute(ctx, tx, userID, e.Date)
		return err
	})
	return entry, day, err
}
