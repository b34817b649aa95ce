// Package dailylog derives a day's aggregate from its food entries and water
// events. Stores call Reduce inside the transaction that mutated the day, so a
// DailyLog is never observed out of step with its entries.
package dailylog

import (
	"errors"
	"fmt"
	"math"

	"lg/calorie-tracker-api/internal/model"
)

// ErrConsistencyViolation means an aggregate cannot be reconciled with its
// constituent rows. Callers log it and force a full recompute.
var ErrConsistencyViolation = errors.New("daily log consistency violation")

// tolerance absorbs float summation order differences between the database
// and Go.
const tolerance = 1e-6

// Totals is the aggregate of one (user, date).
type Totals struct {
	model.Nutrition
	WaterML    float64 `json:"water_ml"`
	EntryCount int     `json:"entry_count"`
}

// Reduce sums entries and water for (userID, date). Every row must belong to
// that user and date and carry non-negative amounts.
func Reduce(userID int64, date model.Date, entries []model.FoodEntry, water []model.WaterEvent) (Totals, error) {
	var t Totals
	for _, e := range entries {
		if e.UserID != userID || !e.Date.Equal(date.Time) {
			return Totals{}, fmt.Errorf("%w: entry %d belongs to user %d on %s, not user %d on %s",
				ErrConsistencyViolation, e.ID, e.UserID, e.Date, userID, date)
		}
		if e.Nutrition.Negative() {
			return Totals{}, fmt.Errorf("%w: entry %d has negative nutrition", ErrConsistencyViolation, e.ID)
		}
		t.Calories += e.Calories
		t.ProteinG += e.ProteinG
		t.CarbsG += e.CarbsG
		t.FatG += e.FatG
		t.FiberG += e.FiberG
		t.EntryCount++
	}
	for _, w := range water {
		if w.UserID != userID || !w.Date.Equal(date.Time) {
			return Totals{}, fmt.Errorf("%w: water event %d belongs to user %d on %s",
				ErrConsistencyViolation, w.ID, w.UserID, w.Date)
		}
		if w.ML < 0 {
			return Totals{}, fmt.Errorf("%w: water event %d is negative", ErrConsistencyViolation, w.ID)
		}
		t.WaterML += w.ML
	}
	return t, nil
}

// Apply writes t onto log, leaving identity and goal fields untouched.
func Apply(log *model.DailyLog, t Totals) {
	log.Calories = t.Calories
	log.ProteinG = t.ProteinG
	log.CarbsG = t.CarbsG
	log.FatG = t.FatG
	log.FiberG = t.FiberG
	log.WaterML = t.WaterML
	log.EntryCount = t.EntryCount
}

// Verify compares a stored aggregate with a fresh reduction.
func Verify(stored model.DailyLog, computed Totals) error {
	diff := func(a, b float64) bool { return math.Abs(a-b) > tolerance }
	switch {
	case stored.EntryCount != computed.EntryCount:
		return fmt.Errorf("%w: stored %d entries, found %d", ErrConsistencyViolation, stored.EntryCount, computed.EntryCount)
	case diff(stored.Calories, computed.Calories):
		return fmt.Errorf("%w: stored %.2f kcal, entries sum to %.2f", ErrConsistencyViolation, stored.Calories, computed.Calories)
	case diff(stored.ProteinG, computed.ProteinG), diff(stored.CarbsG, computed.CarbsG),
		diff(stored.FatG, computed.FatG), diff(stored.FiberG, computed.FiberG):
		return fmt.Errorf("%w: stored macros differ from entries", ErrConsistencyViolation)
	case diff(stored.WaterML, computed.WaterML):
		return fmt.Errorf("%w: stored %.0f ml water, events sum to %.0f", ErrConsistencyViolation, stored.WaterML, computed.WaterML)
	}
	return nil
}
