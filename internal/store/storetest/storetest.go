// Package storetest is the behavioural contract every store.Store
// implementation must pass.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lg/calorie-tracker-api/internal/model"
	"lg/calorie-tracker-api/internal/nutrition"
	"lg/calorie-tracker-api/internal/store"
)

// Factory returns an empty store for one subtest.
type Factory func(t *testing.T) store.Store

var day = model.Date{Time: time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)}

// Run executes the whole contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"Users", testUsers},
		{"Profiles", testProfiles},
		{"Foods", testFoods},
		{"EntrySequenceKeepsLogInStep", testEntrySequence},
		{"RejectedEntryPersistsNothing", testRejectedEntry},
		{"UpdateEntry", testUpdateEntry},
		{"DeleteEntry", testDeleteEntry},
		{"Water", testWater},
		{"DailyLogs", testDailyLogs},
		{"DailyLogKeepsItsGoal", testDailyLogKeepsGoal},
		{"Predictions", testPredictions},
		{"ConcurrentWrites", testConcurrentWrites},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.fn(t, newStore(t))
		})
	}
}

/* ─── Helpers ────────────────────────────────────────────────────────── */

func createUser(t *testing.T, s store.Store, name string) model.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), model.User{
		Username:  name,
		Email:     name + "@example.com",
		Password:  "not-a-real-hash",
		AuthToken: uuid.New().String(),
	})
	require.NoError(t, err)
	return u
}

func newEntry(userID int64, kcal float64, date model.Date) model.FoodEntry {
	return model.FoodEntry{
		UserID:    userID,
		FoodName:  fmt.Sprintf("Food %.0f", kcal),
		QuantityG: 100,
		MealType:  model.Lunch,
		Date:      date,
		LoggedAt:  date.Add(12 * time.Hour),
		Nutrition: model.Nutrition{Calories: kcal, ProteinG: kcal / 20, CarbsG: kcal / 10, FatG: kcal / 40},
	}
}

/* ─── Users & profiles ───────────────────────────────────────────────── */

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := createUser(t, s, "alice")
	assert.NotZero(t, u.ID)
	assert.Equal(t, "alice", u.Username)

	_, err := s.CreateUser(ctx, model.User{Username: "alice", Password: "x", AuthToken: uuid.New().String()})
	assert.ErrorIs(t, err, store.ErrConflict)

	got, err := s.UserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.AuthToken, got.AuthToken)

	_, err = s.UserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)

	id, err := s.UserIDByToken(ctx, u.AuthToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	_, err = s.UserIDByToken(ctx, "bogus")
	assert.ErrorIs(t, err, store.ErrNotFound)

	p, err := s.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, nutrition.Sedentary, p.ActivityLevel)
	assert.Equal(t, nutrition.Maintain, p.GoalType)
	assert.Nil(t, p.WeightKG)
	assert.Nil(t, p.CalorieGoal)
	assert.False(t, p.Onboarded)
}

func testProfiles(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := createUser(t, s, "bob")

	p, err := s.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	weight, height := 80.0, 180.0
	dob := model.Date{Time: time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)}
	sex := nutrition.Male
	p.WeightKG, p.HeightCM, p.DateOfBirth, p.Sex = &weight, &height, &dob, &sex
	p.ActivityLevel, p.GoalType, p.Onboarded = nutrition.Moderate, nutrition.Lose, true

	b, ok := p.Biometrics()
	require.True(t, ok)
	goals, err := nutrition.ComputeGoals(b, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	p.ApplyGoals(goals)

	saved, err := s.SaveProfile(ctx, p)
	require.NoError(t, err)
	got, err := s.GetProfile(ctx, u.ID)
	require.NoError(t, err)

	for _, prof := range []model.UserProfile{saved, got} {
		require.NotNil(t, prof.WeightKG)
		assert.Equal(t, 80.0, *prof.WeightKG)
		require.NotNil(t, prof.DateOfBirth)
		assert.Equal(t, "1990-06-15", prof.DateOfBirth.String())
		require.NotNil(t, prof.Sex)
		assert.Equal(t, nutrition.Male, *prof.Sex)
		assert.Equal(t, nutrition.Moderate, prof.ActivityLevel)
		assert.True(t, prof.Onboarded)
		require.NotNil(t, prof.CalorieGoal)
		assert.InDelta(t, goals.CalorieGoal, *prof.CalorieGoal, 1e-9)
		require.NotNil(t, prof.BMICategory)
		assert.Equal(t, nutrition.Normal, *prof.BMICategory)
	}

	// Clearing biometrics clears the derived goals with them.
	got.WeightKG = nil
	got.ClearGoals()
	cleared, err := s.SaveProfile(ctx, got)
	require.NoError(t, err)
	assert.Nil(t, cleared.WeightKG)
	assert.Nil(t, cleared.CalorieGoal)
	assert.Nil(t, cleared.BMICategory)
}

/* ─── Foods ──────────────────────────────────────────────────────────── */

func testFoods(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := createUser(t, s, "carol")

	apple, err := s.CreateFood(ctx, model.Food{Name: "Apple", CaloriesPer100: 52, CarbsPer100: 14, FiberPer100: 2.4})
	require.NoError(t, err)
	_, err = s.CreateFood(ctx, model.Food{Name: "Pineapple", CaloriesPer100: 50, CreatedBy: &u.ID})
	require.NoError(t, err)
	banana, err := s.CreateFood(ctx, model.Food{Name: "Banana", CaloriesPer100: 89, Verified: true})
	require.NoError(t, err)

	got, err := s.GetFood(ctx, apple.ID)
	require.NoError(t, err)
	assert.Equal(t, "Apple", got.Name)
	assert.Equal(t, 2.4, got.FiberPer100)
	assert.Nil(t, got.CreatedBy)

	_, err = s.GetFood(ctx, apple.ID+banana.ID+100)
	assert.ErrorIs(t, err, store.ErrNotFound)

	found, err := s.SearchFoods(ctx, "APPLE", 10)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Apple", found[0].Name)
	assert.Equal(t, "Pineapple", found[1].Name)
	require.NotNil(t, found[1].CreatedBy)
	assert.Equal(t, u.ID, *found[1].CreatedBy)

	all, err := s.SearchFoods(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Banana", all[0].Name, "verified foods sort first")

	one, err := s.SearchFoods(ctx, "a", 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)

	none, err := s.SearchFoods(ctx, "durian", 10)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

/* ─── Entries ────────────────────────────────────────────────────────── */

// testEntrySequence checks after every create and delete that the stored
// DailyLog equals the sum of the entries still present.
func testEntrySequence(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := createUser(t, s, "dave")

	var live []model.FoodEntry
	check := func(step string, got model.DailyLog) {
		t.Helper()
		want := 0.0
		for _, e := range live {
			want += e.Calories
		}
		assert.InDelta(t, want, got.Calories, 1e-6, step)
		assert.Equal(t, len(live), got.EntryCount, step)

		stored, err := s.GetDailyLog(ctx, u.ID, day)
		require.NoError(t, err)
		assert.InDelta(t, want, stored.Calories, 1e-6, step)

		entries, err := s.ListEntries(ctx, u.ID, day)
		require.NoError(t, err)
		assert.Len(t, entries, len(live), step)
	}

	for i, kcal := range []float64{320, 150.5, 610, 95.25} {
		e, log, err := s.CreateEntry(ctx, newEntry(u.ID, kcal, day))
		require.NoError(t, err)
		assert.NotZero(t, e.ID)
		live = append(live, e)
		check(fmt.Sprintf("create %d", i), log)
	}
	for _, idx := range []int{1, 0, 1} {
		log, err := s.DeleteEntry(ctx, u.ID, live[idx].ID)
		require.NoError(t, err)
		live = append(live[:idx], live[idx+1:]...)
		check(fmt.Sprintf("delete %d", idx), log)
	}
	log, err := s.DeleteEntry(ctx, u.ID, live[0].ID)
	require.NoError(t, err)
	live = nil
	check("delete last", log)
}

func testRejectedEntry(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := createUser(t, s, "erin")

	bad := newEntry(u.ID, -5, day)
	_, _, err := s.CreateEntry(ctx, bad)
	assert.ErrorIs(t, err, nutrition.ErrInvalidInput)

	bad = newEntry(u.ID, 100, day)
	bad.MealType = "brunch"
	_, _, err = s.CreateEntry(ctx, bad)
	assert.ErrorIs(t, err, nutrition.ErrInvalidInput)

	entries, err := s.ListEntries(ctx, u.ID, day)
	require.NoError(t, err)
	assert.Empty(t, entries)
	_, err = s.GetDailyLog(ctx, u.ID, day)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testUpdateEntry(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := createUser(t, s, "frank")
	other := createUser(t, s, "grace")

	e := newEntry(u.ID, 300, day)
	e.QuantityG = 200
	created, _, err := s.CreateEntry(ctx, e)
	require.NoError(t, err)

	half := 100.0
	updated, logs, err := s.UpdateEntry(ctx, u.ID, created.ID, store.EntryPatch{QuantityG: &half})
	require.NoError(t, err)
	assert.InDelta(t, 150, updated.Calories, 1e-9)
	require.Len(t, logs, 1)
	assert.InDelta(t, 150, logs[0].Calories, 1e-9)

	next := day.AddDays(1)
	moved, logs, err := s.UpdateEntry(ctx, u.ID, created.ID, store.EntryPatch{Date: &next})
	require.NoError(t, err)
	assert.Equal(t, next.String(), moved.Date.String())
	require.Len(t, logs, 2)
	assert.Equal(t, day.String(), logs[0].Date.String())
	assert.Zero(t, logs[0].Calories)
	assert.Zero(t, logs[0].EntryCount)
	assert.Equal(t, next.String(), logs[1].Date.String())
	assert.InDelta(t, 150, logs[1].Calories, 1e-9)

	_, _, err = s.UpdateEntry(ctx, other.ID, created.ID, store.EntryPatch{QuantityG: &half})
	assert.ErrorIs(t, err, store.ErrNotFound)

	neg := -1.0
	_, _, err = s.UpdateEntry(ctx, u.ID, created.ID, store.EntryPatch{QuantityG: &neg})
	assert.ErrorIs(t, err, nutrition.ErrInvalidInput)

	got, err := s.GetEntry(ctx, u.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.QuantityG, "failed update leaves the entry untouched")
}

func testDeleteEntry(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := createUser(t, s, "heidi")
	other := createUser(t, s, "ivan")

	e, _, err := s.CreateEntry(ctx, newEntry(u.ID, 400, day))
	require.NoError(t, err)

	_, err = s.DeleteEntry(ctx, other.ID, e.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	log, err := s.DeleteEntry(ctx, u.ID, e.ID)
	require.NoError(t, err)
	assert.Zero(t, log.Calories)

	_, err = s.GetEntry(ctx, u.ID, e.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.DeleteEntry(ctx, u.ID, e.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

/* ─── Water & daily logs ─────────────────────────────────────────────── */

func testWater(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := createUser(t, s, "judy")

	_, _, err := s.AddWater(ctx, u.ID, day, 250)
	require.NoError(t, err)
	ev, log, err := s.AddWater(ctx, u.ID, day, 250)
	require.NoError(t, err)
	assert.Equal(t, 250.0, ev.ML)
	assert.Equal(t, 500.0, log.WaterML)
	assert.Zero(t, log.EntryCount)

	_, _, err = s.AddWater(ctx, u.ID, day, 0)
	assert.ErrorIs(t, err, nutrition.ErrInvalidInput)

	events, err := s.ListWater(ctx, u.ID, day)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func testDailyLogs(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := createUser(t, s, "mallory")

	p, err := s.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	goal := 1800.0
	p.CalorieGoal = &goal
	_, err = s.SaveProfile(ctx, p)
	require.NoError(t, err)

	for i, kcal := range []float64{1500, 2100} {
		_, _, err := s.CreateEntry(ctx, newEntry(u.ID, kcal, day.AddDays(i*2)))
		require.NoError(t, err)
	}

	logs, err := s.ListDailyLogs(ctx, u.ID, day, day.AddDays(6))
	require.NoError(t, err)
	require.Len(t, logs, 2, "no gap filling")
	assert.Equal(t, day.String(), logs[0].Date.String())
	assert.Equal(t, day.AddDays(2).String(), logs[1].Date.String())
	require.NotNil(t, logs[0].CalorieGoal)
	assert.Equal(t, 1800.0, *logs[0].CalorieGoal)

	rangeEntries, err := s.ListEntriesRange(ctx, u.ID, day, day.AddDays(6))
	require.NoError(t, err)
	assert.Len(t, rangeEntries, 2)

	recomputed, err := s.RecomputeDailyLog(ctx, u.ID, day)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, recomputed.Calories)
	assert.Equal(t, 1, recomputed.EntryCount)

	empty, err := s.RecomputeDailyLog(ctx, u.ID, day.AddDays(1))
	require.NoError(t, err)
	assert.Zero(t, empty.Calories)
}

func testDailyLogKeepsGoal(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := createUser(t, s, "quentin")

	setGoal := func(kcal float64) {
		t.Helper()
		p, err := s.GetProfile(ctx, u.ID)
		require.NoError(t, err)
		p.CalorieGoal = &kcal
		_, err = s.SaveProfile(ctx, p)
		require.NoError(t, err)
	}

	setGoal(2000)
	first, _, err := s.CreateEntry(ctx, newEntry(u.ID, 400, day))
	require.NoError(t, err)
	_, _, err = s.CreateEntry(ctx, newEntry(u.ID, 300, day))
	require.NoError(t, err)

	setGoal(1500)
	log, err := s.DeleteEntry(ctx, u.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 300.0, log.Calories)
	require.NotNil(t, log.CalorieGoal)
	assert.Equal(t, 2000.0, *log.CalorieGoal)

	log, err = s.RecomputeDailyLog(ctx, u.ID, day)
	require.NoError(t, err)
	require.NotNil(t, log.CalorieGoal)
	assert.Equal(t, 2000.0, *log.CalorieGoal)

	_, next, err := s.CreateEntry(ctx, newEntry(u.ID, 500, day.AddDays(1)))
	require.NoError(t, err)
	require.NotNil(t, next.CalorieGoal)
	assert.Equal(t, 1500.0, *next.CalorieGoal)
}

/* ─── Predictions ────────────────────────────────────────────────────── */

func testPredictions(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := createUser(t, s, "niaj")
	other := createUser(t, s, "olivia")

	base := model.CaloriePrediction{
		UserID:      u.ID,
		InputKind:   model.InputText,
		Description: "bowl of rice",
		FoodName:    "Rice",
		QuantityG:   200,
		Nutrition:   model.Nutrition{Calories: 260, CarbsG: 56, ProteinG: 5},
		Confidence:  0.7,
		MealType:    model.Dinner,
		Model:       "gpt-4o-mini",
	}
	first, err := s.CreatePrediction(ctx, base)
	require.NoError(t, err)
	base.FoodName = "Toast"
	base.InputKind = model.InputImage
	base.ImageMIME = "image/jpeg"
	base.ImageSHA256 = "abc123"
	second, err := s.CreatePrediction(ctx, base)
	require.NoError(t, err)

	list, err := s.ListPredictions(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")

	_, err = s.GetPrediction(ctx, other.ID, first.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	q := 100.0
	entry, log, err := s.PromotePrediction(ctx, u.ID, first.ID, store.PromoteOptions{QuantityG: &q, Date: day})
	require.NoError(t, err)
	assert.True(t, entry.AIGenerated)
	assert.Equal(t, "Rice", entry.FoodName)
	assert.Equal(t, model.Dinner, entry.MealType)
	assert.InDelta(t, 130, entry.Calories, 1e-9)
	assert.InDelta(t, 130, log.Calories, 1e-9)

	saved, err := s.GetPrediction(ctx, u.ID, first.ID)
	require.NoError(t, err)
	assert.True(t, saved.Saved)
	require.NotNil(t, saved.EntryID)
	assert.Equal(t, entry.ID, *saved.EntryID)

	_, _, err = s.PromotePrediction(ctx, u.ID, first.ID, store.PromoteOptions{Date: day})
	assert.ErrorIs(t, err, store.ErrAlreadyPromoted)

	_, _, err = s.PromotePrediction(ctx, other.ID, second.ID, store.PromoteOptions{Date: day})
	assert.ErrorIs(t, err, store.ErrNotFound)

	entries, err := s.ListEntries(ctx, u.ID, day)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "second promotion added nothing")
}

/* ─── Concurrency ────────────────────────────────────────────────────── */

// testConcurrentWrites submits entries and water for one day from many
// goroutines at once; the final log must hold every one of them.
func testConcurrentWrites(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := createUser(t, s, "peggy")

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers*2)
	for i := 0; i < writers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _, err := s.CreateEntry(ctx, newEntry(u.ID, 250, day))
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, _, err := s.AddWater(ctx, u.ID, day, 100)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	log, err := s.GetDailyLog(ctx, u.ID, day)
	require.NoError(t, err)
	assert.InDelta(t, writers*250.0, log.Calories, 1e-6)
	assert.Equal(t, writers, log.EntryCount)
	assert.InDelta(t, writers*100.0, log.WaterML, 1e-6)
}
