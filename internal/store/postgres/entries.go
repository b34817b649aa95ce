package postgres

import (
	"context"
	"errors"
	"log"

	"github.com/jackc/pgx/v5"

	"lg/calorie-tracker-api/internal/dailylog"
	"lg/calorie-tracker-api/internal/model"
	"lg/calorie-tracker-api/internal/store"
)

const entryColumns = `id, user_id, food_id, food_name, quantity_g, meal_type, date, logged_at,
	calories, protein_g, carbs_g, fat_g, fiber_g, is_ai_generated, notes, created_at, updated_at`

const waterColumns = `id, user_id, date, ml, created_at`

const dailyLogColumns = `user_id, date, total_calories, total_protein_g, total_carbs_g, total_fat_g,
	total_fiber_g, total_water_ml, entry_count, calorie_goal, updated_at`

/* ─── Food entries ───────────────────────────────────────────────────── */

func (s *Store) CreateEntry(ctx context.Context, e model.FoodEntry) (model.FoodEntry, model.DailyLog, error) {
	if err := e.Validate(); err != nil {
		return model.FoodEntry{}, model.DailyLog{}, err
	}
	var created model.FoodEntry
	var day model.DailyLog
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockDays(ctx, tx, e.UserID, e.Date); err != nil {
			return err
		}
		var err error
		if created, err = insertEntry(ctx, tx, e); err != nil {
			return err
		}
		day, err = recompute(ctx, tx, e.UserID, e.Date)
		return err
	})
	return created, day, err
}

// UpdateEntry applies patch and recomputes the entry's day, and its previous
// day too when the date moved.
func (s *Store) UpdateEntry(ctx context.Context, userID, id int64, patch store.EntryPatch) (model.FoodEntry, []model.DailyLog, error) {
	var updated model.FoodEntry
	var days []model.DailyLog
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		current, err := lockEntry(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		updated = current
		if err := patch.Apply(&updated); err != nil {
			return err
		}
		dates := store.SortedDates(current.Date, updated.Date)
		if err := lockDays(ctx, tx, userID, dates...); err != nil {
			return err
		}
		updated, err = queryOne[model.FoodEntry](ctx, tx,
			`UPDATE food_entries SET
				food_name = @foodName,
				quantity_g = @quantityG,
				meal_type = @mealType,
				date = @date::date,
				logged_at = @loggedAt,
				calories = @calories,
				protein_g = @protein,
				carbs_g = @carbs,
				fat_g = @fat,
				fiber_g = @fiber,
				notes = @notes,
				updated_at = now()
			 WHERE id = @id AND user_id = @userID
			 RETURNING `+entryColumns,
			pgx.NamedArgs{
				"id": id, "userID": userID,
				"foodName": updated.FoodName, "quantityG": updated.QuantityG,
				"mealType": string(updated.MealType), "date": updated.Date.String(),
				"loggedAt": updated.LoggedAt, "calories": updated.Calories, "protein": updated.ProteinG,
				"carbs": updated.CarbsG, "fat": updated.FatG, "fiber": updated.FiberG, "notes": updated.Notes,
			})
		if err != nil {
			return err
		}
		for _, d := range dates {
			day, err := recompute(ctx, tx, userID, d)
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
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		e, err := lockEntry(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		if err := lockDays(ctx, tx, userID, e.Date); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, "DELETE FROM food_entries WHERE id = @id AND user_id = @userID",
			pgx.NamedArgs{"id": id, "userID": userID})
		if err != nil {
			return dbError(err)
		}
		if tag.RowsAffected() == 0 {
			return store.ErrNotFound
		}
		day, err = recompute(ctx, tx, userID, e.Date)
		return err
	})
	return day, err
}

func (s *Store) GetEntry(ctx context.Context, userID, id int64) (model.FoodEntry, error) {
	return getEntry(ctx, s.pool, userID, id)
}

func (s *Store) ListEntries(ctx context.Context, userID int64, date model.Date) ([]model.FoodEntry, error) {
	return listEntries(ctx, s.pool, userID, date)
}

func (s *Store) ListEntriesRange(ctx context.Context, userID int64, start, end model.Date) ([]model.FoodEntry, error) {
	return queryMany[model.FoodEntry](ctx, s.pool,
		`SELECT `+entryColumns+` FROM food_entries
		 WHERE user_id = @userID AND date >= @start::date AND date <= @end::date
		 ORDER BY date, logged_at, id`,
		pgx.NamedArgs{"userID": userID, "start": start.String(), "end": end.String()})
}

func getEntry(ctx context.Context, q querier, userID, id int64) (model.FoodEntry, error) {
	return queryOne[model.FoodEntry](ctx, q,
		"SELECT "+entryColumns+" FROM food_entries WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
}

// lockEntry reads an entry with a row lock so its date cannot change before
// the day rows are locked.
func lockEntry(ctx context.Context, tx pgx.Tx, userID, id int64) (model.FoodEntry, error) {
	return queryOne[model.FoodEntry](ctx, tx,
		"SELECT "+entryColumns+" FROM food_entries WHERE id = @id AND user_id = @userID FOR UPDATE",
		pgx.NamedArgs{"id": id, "userID": userID})
}

func listEntries(ctx context.Context, q querier, userID int64, date model.Date) ([]model.FoodEntry, error) {
	return queryMany[model.FoodEntry](ctx, q,
		`SELECT `+entryColumns+` FROM food_entries
		 WHERE user_id = @userID AND date = @date::date
		 ORDER BY logged_at, id`,
		pgx.NamedArgs{"userID": userID, "date": date.String()})
}

func insertEntry(ctx context.Context, q querier, e model.FoodEntry) (model.FoodEntry, error) {
	return queryOne[model.FoodEntry](ctx, q,
		`INSERT INTO food_entries (user_id, food_id, food_name, quantity_g, meal_type, date, logged_at,
			calories, protein_g, carbs_g, fat_g, fiber_g, is_ai_generated, notes)
		 VALUES (@userID, @foodID, @foodName, @quantityG, @mealType, @date::date, @loggedAt,
			@calories, @protein, @carbs, @fat, @fiber, @ai, @notes)
		 RETURNING `+entryColumns,
		pgx.NamedArgs{
			"userID": e.UserID, "foodID": e.FoodID, "foodName": e.FoodName, "quantityG": e.QuantityG,
			"mealType": string(e.MealType), "date": e.Date.String(), "loggedAt": e.LoggedAt,
			"calories": e.Calories, "protein": e.ProteinG, "carbs": e.CarbsG, "fat": e.FatG,
			"fiber": e.FiberG, "ai": e.AIGenerated, "notes": e.Notes,
		})
}

/* ─── Water ──────────────────────────────────────────────────────────── */

func (s *Store) AddWater(ctx context.Context, userID int64, date model.Date, ml float64) (model.WaterEvent, model.DailyLog, error) {
	if err := store.ValidateWater(ml); err != nil {
		return model.WaterEvent{}, model.DailyLog{}, err
	}
	var ev model.WaterEvent
	var day model.DailyLog
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockDays(ctx, tx, userID, date); err != nil {
			return err
		}
		var err error
		ev, err = queryOne[model.WaterEvent](ctx, tx,
			`INSERT INTO water_events (user_id, date, ml) VALUES (@userID, @date::date, @ml)
			 RETURNING `+waterColumns,
			pgx.NamedArgs{"userID": userID, "date": date.String(), "ml": ml})
		if err != nil {
			return err
		}
		day, err = recompute(ctx, tx, userID, date)
		return err
	})
	return ev, day, err
}

func (s *Store) ListWater(ctx context.Context, userID int64, date model.Date) ([]model.WaterEvent, error) {
	return listWater(ctx, s.pool, userID, date)
}

func listWater(ctx context.Context, q querier, userID int64, date model.Date) ([]model.WaterEvent, error) {
	return queryMany[model.WaterEvent](ctx, q,
		`SELECT `+waterColumns+` FROM water_events
		 WHERE user_id = @userID AND date = @date::date ORDER BY created_at, id`,
		pgx.NamedArgs{"userID": userID, "date": date.String()})
}

/* ─── Daily logs ─────────────────────────────────────────────────────── */

func (s *Store) GetDailyLog(ctx context.Context, userID int64, date model.Date) (model.DailyLog, error) {
	return queryOne[model.DailyLog](ctx, s.pool,
		"SELECT "+dailyLogColumns+" FROM daily_logs WHERE user_id = @userID AND date = @date::date",
		pgx.NamedArgs{"userID": userID, "date": date.String()})
}

// ListDailyLogs returns only days that have a row; gaps are left to the caller.
func (s *Store) ListDailyLogs(ctx context.Context, userID int64, start, end model.Date) ([]model.DailyLog, error) {
	return queryMany[model.DailyLog](ctx, s.pool,
		`SELECT `+dailyLogColumns+` FROM daily_logs
		 WHERE user_id = @userID AND date >= @start::date AND date <= @end::date
		 ORDER BY date ASC`,
		pgx.NamedArgs{"userID": userID, "start": start.String(), "end": end.String()})
}

// RecomputeDailyLog rebuilds the day from its rows. Used to repair an
// aggregate that failed verification.
func (s *Store) RecomputeDailyLog(ctx context.Context, userID int64, date model.Date) (model.DailyLog, error) {
	var day model.DailyLog
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockDays(ctx, tx, userID, date); err != nil {
			return err
		}
		var err error
		day, err = recompute(ctx, tx, userID, date)
		return err
	})
	return day, err
}

// lockDays makes sure a daily_logs row exists for each date and takes a row
// lock on it. Concurrent writers to the same day queue here, so each one
// reduces over every entry committed before it. Dates must be sorted.
func lockDays(ctx context.Context, tx pgx.Tx, userID int64, dates ...model.Date) error {
	for _, d := range dates {
		args := pgx.NamedArgs{"userID": userID, "date": d.String()}
		_, err := tx.Exec(ctx,
			`INSERT INTO daily_logs (user_id, date) VALUES (@userID, @date::date)
			 ON CONFLICT (user_id, date) DO NOTHING`, args)
		if err != nil {
			return dbError(err)
		}
		_, err = tx.Exec(ctx,
			"SELECT 1 FROM daily_logs WHERE user_id = @userID AND date = @date::date FOR UPDATE", args)
		if err != nil {
			return dbError(err)
		}
	}
	return nil
}

// recompute reduces the day's entries and water and writes the totals back.
// The caller holds the day's lock.
func recompute(ctx context.Context, tx pgx.Tx, userID int64, date model.Date) (model.DailyLog, error) {
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
	p, err := queryOne[model.UserProfile](ctx, tx,
		"SELECT "+profileColumns+" FROM user_profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	switch {
	case err == nil:
		goal = p.CalorieGoal
	case !errors.Is(err, store.ErrNotFound):
		return model.DailyLog{}, err
	}

	day := model.DailyLog{UserID: userID, Date: date, CalorieGoal: goal}
	dailylog.Apply(&day, totals)
	return queryOne[model.DailyLog](ctx, tx,
		`UPDATE daily_logs SET
			total_calories = @calories,
			total_protein_g = @protein,
			total_carbs_g = @carbs,
			total_fat_g = @fat,
			total_fiber_g = @fiber,
			total_water_ml = @water,
			entry_count = @count,
			calorie_goal = COALESCE(calorie_goal, @goal),
			updated_at = now()
		 WHERE user_id = @userID AND date = @date::date
		 RETURNING `+dailyLogColumns,
		pgx.NamedArgs{
			"userID": userID, "date": date.String(),
			"calories": day.Calories, "protein": day.ProteinG, "carbs": day.CarbsG,
			"fat": day.FatG, "fiber": day.FiberG, "water": day.WaterML,
			"count": day.EntryCount, "goal": day.CalorieGoal,
		})
}
