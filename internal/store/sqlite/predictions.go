package sqlite

import (
	"context"
	"database/sql"

	"lg/calorie-tracker-api/internal/model"
	"lg/calorie-tracker-api/internal/store"
)

const predictionColumns = `id, user_id, input_kind, description, image_mime, image_sha256, food_name,
	quantity_g, calories, protein_g, carbs_g, fat_g, fiber_g, confidence, meal_type, model,
	saved_to_log, entry_id, created_at`

func scanPrediction(r rowScanner) (model.CaloriePrediction, error) {
	var p model.CaloriePrediction
	var entryID sql.NullInt64
	var created int64
	err := r.Scan(&p.ID, &p.UserID, &p.InputKind, &p.Description, &p.ImageMIME, &p.ImageSHA256, &p.FoodName,
		&p.QuantityG, &p.Calories, &p.ProteinG, &p.CarbsG, &p.FatG, &p.FiberG, &p.Confidence, &p.MealType,
		&p.Model, &p.Saved, &entryID, &created)
	if err != nil {
		return model.CaloriePrediction{}, dbError(err)
	}
	p.EntryID = nullInt(entryID)
	p.CreatedAt = fromMillis(created)
	return p, nil
}

func (s *Store) CreatePrediction(ctx context.Context, p model.CaloriePrediction) (model.CaloriePrediction, error) {
	return scanPrediction(s.db.QueryRowContext(ctx,
		`INSERT INTO calorie_predictions (user_id, input_kind, description, image_mime, image_sha256,
			food_name, quantity_g, calories, protein_g, carbs_g, fat_g, fiber_g, confidence, meal_type,
			model, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING `+predictionColumns,
		p.UserID, string(p.InputKind), p.Description, p.ImageMIME, p.ImageSHA256, p.FoodName, p.QuantityG,
		p.Calories, p.ProteinG, p.CarbsG, p.FatG, p.FiberG, p.Confidence, string(p.MealType), p.Model,
		millis(s.now())))
}

func (s *Store) GetPrediction(ctx context.Context, userID, id int64) (model.CaloriePrediction, error) {
	return getPrediction(ctx, s.db, userID, id)
}

func getPrediction(ctx context.Context, q querier, userID, id int64) (model.CaloriePrediction, error) {
	return scanPrediction(q.QueryRowContext(ctx,
		"SELECT "+predictionColumns+" FROM calorie_predictions WHERE id = ? AND user_id = ?", id, userID))
}

// ListPredictions returns the user's history, newest first.
func (s *Store) ListPredictions(ctx context.Context, userID int64, limit int) ([]model.CaloriePrediction, error) {
	if limit <= 0 {
		limit = store.DefaultSearchLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+predictionColumns+` FROM calorie_predictions
		 WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limit)
	return collect(rows, err, scanPrediction)
}

// PromotePrediction turns a prediction into a food entry, marks it saved and
// recomputes the day, all in one transaction.
func (s *Store) PromotePrediction(ctx context.Context, userID, id int64, opts store.PromoteOptions) (model.FoodEntry, model.DailyLog, error) {
	var entry model.FoodEntry
	var day model.DailyLog
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		p, err := getPrediction(ctx, tx, userID, id)
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
		if entry, err = s.insertEntry(ctx, tx, e); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE calorie_predictions SET saved_to_log = 1, entry_id = ? WHERE id = ?", entry.ID, id); err != nil {
			return dbError(err)
		}
		day, err = s.recompute(ctx, tx, userID, e.Date)
		return err
	})
	return entry, day, err
}
