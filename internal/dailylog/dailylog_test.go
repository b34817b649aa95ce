package dailylog

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lg/calorie-tracker-api/internal/model"
)

var day = model.Date{Time: time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)}

func entry(id int64, kcal float64, meal model.MealType) model.FoodEntry {
	return model.FoodEntry{
		ID:        id,
		UserID:    1,
		Date:      day,
		MealType:  meal,
		Nutrition: model.Nutrition{Calories: kcal, ProteinG: kcal / 20, CarbsG: kcal / 10, FatG: kcal / 40},
	}
}

/* ─── Reduce ─────────────────────────────────────────────────────────── */

func TestReduce_SumsEntriesAndWater(t *testing.T) {
	entries := []model.FoodEntry{entry(1, 300, model.Breakfast), entry(2, 450.5, model.Lunch)}
	water := []model.WaterEvent{{ID: 1, UserID: 1, Date: day, ML: 250}, {ID: 2, UserID: 1, Date: day, ML: 500}}

	got, err := Reduce(1, day, entries, water)
	require.NoError(t, err)
	assert.InDelta(t, 750.5, got.Calories, 1e-9)
	assert.InDelta(t, 750, got.WaterML, 1e-9)
	assert.Equal(t, 2, got.EntryCount)
}

func TestReduce_EmptyDayIsZero(t *testing.T) {
	got, err := Reduce(1, day, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, Totals{}, got)
}

// TestReduce_SequenceInvariant replays a create/delete sequence and checks the
// reduction after every step against a running total.
func TestReduce_SequenceInvariant(t *testing.T) {
	var live []model.FoodEntry
	running := 0.0
	ops := []struct {
		add  float64 // >0 adds an entry with this many kcal
		drop int     // >=0 deletes live[drop] when add == 0
	}{
		{add: 200}, {add: 350}, {drop: 0}, {add: 125.25}, {add: 80}, {drop: 1}, {drop: 0}, {add: 600},
	}
	for i, op := range ops {
		if op.add > 0 {
			live = append(live, entry(int64(i+1), op.add, model.Snack))
			running += op.add
		} else {
			running -= live[op.drop].Calories
			live = append(live[:op.drop], live[op.drop+1:]...)
		}
		got, err := Reduce(1, day, live, nil)
		require.NoError(t, err)
		assert.InDelta(t, running, got.Calories, 1e-9, "after op %d", i)
		assert.Equal(t, len(live), got.EntryCount, "after op %d", i)
	}
}

func TestReduce_ForeignRowsViolate(t *testing.T) {
	other := entry(9, 100, model.Dinner)
	other.UserID = 2
	_, err := Reduce(1, day, []model.FoodEntry{entry(1, 100, model.Lunch), other}, nil)
	assert.True(t, errors.Is(err, ErrConsistencyViolation))

	moved := entry(3, 100, model.Lunch)
	moved.Date = day.AddDays(1)
	_, err = Reduce(1, day, []model.FoodEntry{moved}, nil)
	assert.ErrorIs(t, err, ErrConsistencyViolation)

	_, err = Reduce(1, day, nil, []model.WaterEvent{{ID: 1, UserID: 1, Date: day, ML: -250}})
	assert.ErrorIs(t, err, ErrConsistencyViolation)
}

func TestReduce_NegativeEntryViolates(t *testing.T) {
	bad := entry(1, -5, model.Snack)
	_, err := Reduce(1, day, []model.FoodEntry{bad}, nil)
	assert.ErrorIs(t, err, ErrConsistencyViolation)
}

/* ─── Verify ─────────────────────────────────────────────────────────── */

func TestVerify(t *testing.T) {
	totals, err := Reduce(1, day, []model.FoodEntry{entry(1, 400, model.Lunch)}, nil)
	require.NoError(t, err)

	log := model.DailyLog{UserID: 1, Date: day}
	Apply(&log, totals)
	assert.NoError(t, Verify(log, totals))

	log.Calories += 1
	assert.ErrorIs(t, Verify(log, totals), ErrConsistencyViolation)

	log.Calories -= 1
	log.EntryCount = 0
	assert.ErrorIs(t, Verify(log, totals), ErrConsistencyViolation)
}

/* ─── Summaries & stats ──────────────────────────────────────────────── */

func TestSummarize_RemainingNeverNegative(t *testing.T) {
	entries := []model.FoodEntry{entry(1, 1500, model.Lunch), entry(2, 900, model.Dinner)}
	log := model.DailyLog{UserID: 1, Date: day, Calories: 2400, WaterML: 3000}

	s := Summarize(log, entries, Goals{Calories: 2000, WaterML: 2500})
	require.NotNil(t, s.CaloriesRemaining)
	assert.Equal(t, 0.0, *s.CaloriesRemaining)
	assert.Equal(t, 100.0, *s.CaloriePercent)
	assert.Equal(t, 100.0, s.WaterPercent)
	assert.Equal(t, 1500.0, s.ByMeal[model.Lunch])
	assert.Equal(t, 0.0, s.ByMeal[model.Breakfast])
}

func TestSummarize_NoGoal(t *testing.T) {
	s := Summarize(model.DailyLog{Date: day, Calories: 500}, nil, Goals{})
	assert.Nil(t, s.CaloriesRemaining)
	assert.Nil(t, s.CaloriePercent)
	assert.NotNil(t, s.Entries)
}

func TestRangeStats(t *testing.T) {
	logs := []model.DailyLog{
		{Date: day, Calories: 1800, WaterML: 2000},
		{Date: day.AddDays(1), Calories: 2200, WaterML: 1000},
	}
	s := RangeStats(logs, 2000)
	assert.Equal(t, 2, s.DaysTracked)
	assert.Equal(t, 1, s.DaysOnBudget)
	assert.InDelta(t, 2000, s.AvgCalories, 1e-9)
	assert.InDelta(t, 1500, s.AvgWaterML, 1e-9)

	assert.Equal(t, Stats{}, RangeStats(nil, 2000))
}

func TestRangeStats_UsesEachDaysOwnGoal(t *testing.T) {
	strict, loose := 1500.0, 2500.0
	logs := []model.DailyLog{
		{Date: day, Calories: 1800, CalorieGoal: &loose},
		{Date: day.AddDays(1), Calories: 1800, CalorieGoal: &strict},
		{Date: day.AddDays(2), Calories: 1800},
	}
	assert.Equal(t, 2, RangeStats(logs, 2000).DaysOnBudget)
	assert.Equal(t, 1, RangeStats(logs, 0).DaysOnBudget)
}

func TestFillWeek_GapFills(t *testing.T) {
	monday := WeekStart(day.Time)
	logs := []model.DailyLog{{UserID: 1, Date: monday.AddDays(2), Calories: 1234}}

	week := FillWeek(1, monday, logs)
	require.Len(t, week, 7)
	for i, d := range week {
		assert.Equal(t, monday.AddDays(i).String(), d.Date.String())
		assert.Equal(t, i == 2, d.HasData)
	}
	assert.Equal(t, 1234.0, week[2].Calories)
}

/* ─── WeekStart ──────────────────────────────────────────────────────── */

func TestWeekStart_ReturnsMonday(t *testing.T) {
	for i := 0; i < 7; i++ {
		d := time.Date(2026, 10, 12+i, 15, 30, 0, 0, time.UTC) // Mon 12th .. Sun 18th
		got := WeekStart(d)
		assert.Equal(t, time.Monday, got.Weekday())
		assert.Equal(t, "2026-10-12", got.String())
	}
}

func TestWeekStart_CrossesMonthBoundary(t *testing.T) {
	got := WeekStart(time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)) // Sunday
	assert.Equal(t, "2026-10-26", got.String())
}
