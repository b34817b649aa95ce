package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"lg/calorie-tracker-api/internal/dailylog"
	"lg/calorie-tracker-api/internal/model"
	"lg/calorie-tracker-api/internal/store"
)

const entryColumns = `id, user_id, food_id, food_name, quantity_g, meal_type, date, logged_at,
	calories, protein_g, carbs_g, fat_g, fiber_g, is_ai_generated, notes, created_at, updated_at`

const waterColumns = `id, user_id, date, ml, created_at`

const dailyLogColumns = `user_id, date, total_calories, total_protein_g, total_carbs_g, total_fat_g,
	total_fiber_g, total_water_ml, entry_count, calorie_goal, updated_at`

func scanEntry(r rowScanner) (model.FoodEntry, error) {
	var e model.FoodEntry
	var foodID sql.NullInt64
	var logged, created, updated int64
	err := r.Scan(&e.ID, &e.UserID, &foodID, &e.FoodName, &e.QuantityG, &e.MealType, &e.Date, &logged,
		&e.Calories, &e.ProteinG, &e.CarbsG, &e.FatG, &e.FiberG, &e.AIGenerated, &e.Notes, &created, &updated)
	if err != nil {
		return model.FoodEntry{}, dbError(err)
	}
	e.FoodID = nullInt(foodID)
	e.LoggedAt, e.CreatedAt, e.UpdatedAt = fromMillis(logged), fromMillis(created), fromMillis(updated)
	return e, nil
}

func scanWater(r rowScanner) (model.WaterEvent, error) {
	var w model.WaterEvent
	var created int64
	if err := r.Scan(&w.ID, &w.UserID, &w.Date, &w.ML, &created); err != nil {
		return model.WaterEvent{}, dbError(err)
	}
	w.CreatedAt = fromMillis(created)
	return w, nil
}

func scanDailyLog(r rowScanner) (model.DailyLog, error) {
	var d model.DailyLog
	var goal sql.NullFloat64
	var updated int64
	err := r.Scan(&d.UserID, &d.Date, &d.Calories, &d.ProteinG, &d.CarbsG, &d.FatG, &d.FiberG,
		&d.WaterML, &d.EntryCount, &goal, &updated)
	if err != nil {
		return model.DailyLog{}, dbError(err)
	}
	d.CalorieGoal = nullFloat(goal)
	d.UpdatedAt = fromMillis(updated)
	return d, nil
}

/* ─── Food entries ───────────────────────────────────────────────────── */

func (s *Store) CreateEntry(ctx context.Context, e model.FoodEntry) (model.FoodEntry, model.DailyLog, error) {
	if err := e.Validate(); err != nil {
		return model.FoodEntry{}, model.DailyLog{}, err
	}
	var created model.FoodEntry
	var day model.DailyLog
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		if created, err = s.insertEntry(ctx, tx, e); err != nil {
			return err
		}
		day, err = s.recompute(ctx, tx, e.UserID, e.Date)
		return err
	})
	return created, day, err
}

// UpdateEntry applies patch and recomputes the entry's day, and its previous
// day too when the date moved.
func (s *Store) UpdateEntry(ctx context.Context, userID, id int64, patch store.EntryPatch) (model.FoodEntry, []model.DailyLog, error) {
	var updated model.FoodEntry
	var days []model.DailyLog
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		current, err := getEntry(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		next := current
		if err := patch.Apply(&next); err != nil {
			return err
		}
		updated, err = scanEntry(tx.QueryRowContext(ctx,
			`UPDATE food_entries SET food_name = ?, quantity_g = ?, meal_type = ?, date = ?, logged_at = ?,
				calories = ?, protein_g = ?, carbs_g = ?, fat_g = ?, fiber_g = ?, notes = ?, updated_at = ?
			 WHERE id = ? AND user_id = ?
			 RETURNING `+entryColumns,
			next.FoodName, next.QuantityG, string(next.MealType), next.Date, millis(next.LoggedAt),
			next.Calories, next.ProteinG, next.CarbsG, next.FatG, next.FiberG, next.Notes, millis(s.now()),
			id, userID))
		if err != nil {
			return err
		}
		for _, d := range store.SortedDates(current.Date, updated.Date) {
			day, err := s.recompute(ctx, tx, userID, d)
			if err != nil {
				return err
			}
			days = append(days, day)
		}
		return nil
	})
	return updated, days, err
}

func (s *Store) DeleteEntry(ctx context.Context, userID, id int64) (model.DailyLog, error) {
	var day model.DailyLog
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		e, err := getEntry(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM food_entries WHERE id = ? AND user_id = ?", id, userID); err != nil {
			return dbError(err)
		}
		day, err = s.recompute(ctx, tx, userID, e.Date)
		return err
	})
	return day, err
}

func (s *Store) GetEntry(ctx context.Context, userID, id int64) (model.FoodEntry, error) {
	return getEntry(ctx, s.db, userID, id)
}

func (s *Store) ListEntries(ctx context.Context, userID int64, date model.Date) ([]model.FoodEntry, error) {
	return listEntries(ctx, s.db, userID, date)
}

func (s *Store) ListEntriesRange(ctx context.Context, userID int64, start, end model.Date) ([]model.FoodEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM food_entries
		 WHERE user_id = ? AND date >= ? AND date <= ?
		 ORDER BY date, logged_at, id`, userID, start, end)
	return collect(rows, err, scanEntry)
}

func getEntry(ctx context.Context, q querier, userID, id int64) (model.FoodEntry, error) {
	return scanEntry(q.QueryRowContext(ctx,
		"SELECT "+entryColumns+" FROM food_entries WHERE id = ? AND user_id = ?", id, userID))
}

func listEntries(ctx context.Context, q querier, userID int64, date model.Date) ([]model.FoodEntry, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM food_entries
		 WHERE user_id = ? AND date = ? ORDER BY logged_at, id`, userID, date)
	return collect(rows, err, scanEntry)
}

func (s *Store) insertEntry(ctx context.Context, q querier, e model.FoodEntry) (model.FoodEntry, error) {
	now := millis(s.now())
	return scanEntry(q.QueryRowContext(ctx,
		`INSERT INTO food_entries (user_id, food_id, food_name, quantity_g, meal_type, date, logged_at,
			calories, protein_g, carbs_g, fat_g, fiber_g, is_ai_generated, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING `+entryColumns,
		e.UserID, e.FoodID, e.FoodName, e.QuantityG, string(e.MealType), e.Date, millis(e.LoggedAt),
		e.Calories, e.ProteinG, e.CarbsG, e.FatG, e.FiberG, e.AIGenerated, e.Notes, now, now))
}

/* ─── Water ──────────────────────────────────────────────────────────── */

func (s *Store) AddWater(ctx context.Context, userID int64, date model.Date, ml float64) (model.WaterEvent, model.DailyLog, error) {
	if err := store.ValidateWater(ml); err != nil {
		return model.WaterEvent{}, model.DailyLog{}, err
	}
	var ev model.WaterEvent
	var day model.DailyLog
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		ev, err = scanWater(tx.QueryRowContext(ctx,
			`INSERT INTO water_events (user_id, date, ml, created_at) VALUES (?, ?, ?, ?)
			 RETURNING `+waterColumns, userID, date, ml, millis(s.now())))
		if err != nil {
			return err
		}
		day, err = s.recompute(ctx, tx, userID, date)
		return err
	})
	return ev, day, err
}

func (s *Store) ListWater(ctx context.Context, userID int64, date model.Date) ([]model.WaterEvent, error) {
	return listWater(ctx, s.db, userID, date)
}

func listWater(ctx context.Context, q querier, userID int64, date model.Date) ([]model.WaterEvent, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+waterColumns+` FROM water_events
		 WHERE user_id = ? AND date = ? ORDER BY created_at, id`, userID, date)
	return collect(rows, err, scanWater)
}

/* ─── Daily logs ─────────────────────────────────────────────────────── */

func (s *Store) GetDailyLog(ctx context.Context, userID int64, date model.Date) (model.DailyLog, error) {
	return scanDailyLog(s.db.QueryRowContext(ctx,
		"SELECT "+dailyLogColumns+" FROM daily_logs WHERE user_id = ? AND date = ?", userID, date))
}

// ListDailyLogs returns only days that have a row; gaps are left to the caller.
func (s *Store) ListDailyLogs(ctx context.Context, userID int64, start, end model.Date) ([]model.DailyLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+dailyLogColumns+` FROM daily_logs
		 WHERE user_id = ? AND date >= ? AND date <= ? ORDER BY date ASC`, userID, start, end)
	return collect(rows, err, scanDailyLog)
}

// RecomputeDailyLog rebuilds the day from its rows. Used to repair an
// aggregate that failed verification.
func (s *Store) RecomputeDailyLog(ctx context.Context, userID int64, date model.Date) (model.DailyLog, error) {
	var day model.DailyLog
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		day, err = s.recompute(ctx, tx, userID, date)
		return err
	})
	return day, err
}

// recompute reduces the day's entries and water and upserts the totals. The
// single connection means no other writer runs between the read and the write.
func (s *Store) recompute(ctx context.Context, tx *sql.Tx, userID int64, date model.Date) (model.DailyLog, error) {
	entries, err := listEntries(ctx, tx, userID, date)
	if err != nil {
		return model.DailyLog{}, err
	}
	water, err := listWater(ctx, tx, userID, date)
	if err != nil {
		return model.DailyLog{}, err
	}
	totals, err := dailylog.Reduce(userID, date, entries, water)
	if err != nil {
		log.Printf("[recompute] user %d %s: %v", userID, date, err)
		return model.DailyLog{}, err
	}

	var goal *float64
	p, err := getProfile(ctx, tx, userID)
	switch {
	case err == nil:
		goal = p.CalorieGoal
	case !errors.Is(err, store.ErrNotFound):
		return model.DailyLog{}, err
	}

	day := model.DailyLog{UserID: userID, Date: date, CalorieGoal: goal}
	dailylog.Apply(&day, totals)
	return scanDailyLog(tx.QueryRowContext(ctx,
		`INSERT INTO daily_logs (user_id, date, total_calories, total_protein_g, total_carbs_g, total_fat_g,
			total_fiber_g, total_water_ml, entry_count, calorie_goal, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, date) DO UPDATE SET
			total_calories = excluded.total_calories,
			total_protein_g = excluded.total_protein_g,
			total_carbs_g = excluded.total_carbs_g,
			total_fat_g = excluded.total_fat_g,
			total_fiber_g = excluded.total_fiber_g,
			total_water_ml = excluded.total_water_ml,
			entry_count = excluded.entry_count,
			calorie_goal = COALESCE(daily_logs.calorie_goal, excluded.calorie_goal),
			updated_at = excluded.updated_at
		 RETURNING `+dailyLogColumns,
		userID, date, day.Calories, day.ProteinG, day.CarbsG, day.FatG, day.FiberG, day.WaterML,
		day.EntryCount, day.CalorieGoal, millis(s.now())))
}
