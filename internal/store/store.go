// Package store defines the persistence contract shared by the Postgres and
// SQLite implementations. Every mutation of a food entry or water event
// recomputes the affected DailyLog in the same transaction.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"lg/calorie-tracker-api/internal/model"
	"lg/calorie-tracker-api/internal/nutrition"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
	ErrAlreadyPromoted = errors.New("prediction already saved to log")
)

// DefaultSearchLimit caps SearchFoods when the caller passes no limit.
const DefaultSearchLimit = 20

// Store is the persistence surface used by the HTTP handlers and CLIs.
type Store interface {
	CreateUser(ctx context.Context, u model.User) (model.User, error)
	UserByUsername(ctx context.Context, username string) (model.User, error)
	UserIDByToken(ctx context.Context, token string) (int64, error)

	GetProfile(ctx context.Context, userID int64) (model.UserProfile, error)
	SaveProfile(ctx context.Context, p model.UserProfile) (model.UserProfile, error)

	CreateFood(ctx context.Context, f model.Food) (model.Food, error)
	GetFood(ctx context.Context, id int64) (model.Food, error)
	SearchFoods(ctx context.Context, query string, limit int) ([]model.Food, error)

	CreateEntry(ctx context.Context, e model.FoodEntry) (model.FoodEntry, model.DailyLog, error)
	UpdateEntry(ctx context.Context, userID, id int64, patch EntryPatch) (model.FoodEntry, []model.DailyLog, error)
	DeleteEntry(ctx context.Context, userID, id int64) (model.DailyLog, error)
	GetEntry(ctx context.Context, userID, id int64) (model.FoodEntry, error)
	ListEntries(ctx context.Context, userID int64, date model.Date) ([]model.FoodEntry, error)
	ListEntriesRange(ctx context.Context, userID int64, start, end model.Date) ([]model.FoodEntry, error)

	AddWater(ctx context.Context, userID int64, date model.Date, ml float64) (model.WaterEvent, model.DailyLog, error)
	ListWater(ctx context.Context, userID int64, date model.Date) ([]model.WaterEvent, error)

	GetDailyLog(ctx context.Context, userID int64, date model.Date) (model.DailyLog, error)
	ListDailyLogs(ctx context.Context, userID int64, start, end model.Date) ([]model.DailyLog, error)
	RecomputeDailyLog(ctx context.Context, userID int64, date model.Date) (model.DailyLog, error)

	CreatePrediction(ctx context.Context, p model.CaloriePrediction) (model.CaloriePrediction, error)
	GetPrediction(ctx context.Context, userID, id int64) (model.CaloriePrediction, error)
	ListPredictions(ctx context.Context, userID int64, limit int) ([]model.CaloriePrediction, error)
	PromotePrediction(ctx context.Context, userID, id int64, opts PromoteOptions) (model.FoodEntry, model.DailyLog, error)

	Close() error
}

/* ─── Entry patches ──────────────────────────────────────────────────── */

// EntryPatch is a partial update of a food entry. Nil fields keep their value.
type EntryPatch struct {
	FoodName  *string          `json:"food_name"`
	QuantityG *float64         `json:"quantity_g"`
	MealType  *model.MealType  `json:"meal_type"`
	Date      *model.Date      `json:"date"`
	LoggedAt  *time.Time       `json:"logged_at"`
	Nutrition *model.Nutrition `json:"nutrition"`
	Notes     *string          `json:"notes"`
}

// Apply writes the patch onto e. A quantity change without explicit
// nutrition rescales the stored snapshot proportionally.
func (p EntryPatch) Apply(e *model.FoodEntry) error {
	if p.FoodName != nil {
		e.FoodName = *p.FoodName
	}
	if p.MealType != nil {
		e.MealType = *p.MealType
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.LoggedAt != nil {
		e.LoggedAt = *p.LoggedAt
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}
	if p.QuantityG != nil {
		if *p.QuantityG <= 0 {
			return fmt.Errorf("%w: quantity_g must be positive", nutrition.ErrInvalidInput)
		}
		if p.Nutrition == nil && e.QuantityG > 0 {
			e.Nutrition = e.Nutrition.Scale(*p.QuantityG / e.QuantityG)
		}
		e.QuantityG = *p.QuantityG
	}
	if p.Nutrition != nil {
		e.Nutrition = *p.Nutrition
	}
	return e.Validate()
}

/* ─── Promotion ──────────────────────────────────────────────────────── */

// PromoteOptions override the predicted values when a prediction is saved.
type PromoteOptions struct {
	QuantityG *float64
	MealType  *model.MealType
	Date      model.Date
	LoggedAt  time.Time
	Notes     string
}

// EntryFromPrediction builds the food entry a prediction becomes. A quantity
// override rescales the predicted nutrition; with no predicted quantity the
// override is recorded but the totals are kept.
func EntryFromPrediction(p model.CaloriePrediction, opts PromoteOptions) (model.FoodEntry, error) {
	e := model.FoodEntry{
		UserID:      p.UserID,
		FoodName:    p.FoodName,
		QuantityG:   p.QuantityG,
		MealType:    p.MealType,
		Date:        opts.Date,
		LoggedAt:    opts.LoggedAt,
		Nutrition:   p.Nutrition,
		AIGenerated: true,
		Notes:       opts.Notes,
	}
	if opts.MealType != nil {
		e.MealType = *opts.MealType
	}
	if opts.QuantityG != nil {
		q := *opts.QuantityG
		if q <= 0 {
			return model.FoodEntry{}, fmt.Errorf("%w: quantity_g must be positive", nutrition.ErrInvalidInput)
		}
		if p.QuantityG > 0 {
			e.Nutrition = p.Nutrition.Scale(q / p.QuantityG)
		}
		e.QuantityG = q
	}
	if e.LoggedAt.IsZero() {
		e.LoggedAt = time.Now()
	}
	if e.Date.IsZero() {
		e.Date = model.NewDate(e.LoggedAt)
	}
	return e, e.Validate()
}

// ValidateWater rejects non-positive amounts.
func ValidateWater(ml float64) error {
	if ml <= 0 {
		return fmt.Errorf("%w: water amount must be positive", nutrition.ErrInvalidInput)
	}
	return nil
}

// SortedDates returns the distinct dates in ascending order. Stores lock
// daily_logs rows in this order so two transactions never deadlock.
func SortedDates(dates ...model.Date) []model.Date {
	out := slices.Clone(dates)
	slices.SortFunc(out, func(a, b model.Date) int { return a.Compare(b.Time) })
	return slices.CompactFunc(out, func(a, b model.Date) bool { return a.Equal(b.Time) })
}
