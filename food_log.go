package main

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lg/calorie-tracker-api/internal/dailylog"
	"lg/calorie-tracker-api/internal/model"
	"lg/calorie-tracker-api/internal/predict"
	"lg/calorie-tracker-api/internal/store"
)

// defaultWaterML is one glass, the amount added when the client sends none.
const defaultWaterML = 250.0

// getDailySummary returns the day's log, entries, water and goal progress.
// GET /api/daily?date=YYYY-MM-DD (defaults to today). The stored aggregate is
// checked against a fresh reduction of the day's rows and rebuilt on mismatch.
func (h *Handler) getDailySummary(c *gin.Context) {
	id := userID(c)
	date, ok := dateQuery(c, "date", h.today())
	if !ok {
		return
	}

	entries, err := h.store.ListEntries(c, id, date)
	if err != nil {
		writeError(c, "getDailySummary", err)
		return
	}
	water, err := h.store.ListWater(c, id, date)
	if err != nil {
		writeError(c, "getDailySummary", err)
		return
	}
	profile, err := h.profileOrDefault(c, id)
	if err != nil {
		writeError(c, "getDailySummary", err)
		return
	}

	day, err := h.store.GetDailyLog(c, id, date)
	if errors.Is(err, store.ErrNotFound) {
		// No row yet: an empty day, unless rows exist and the check below catches it.
		day, err = model.DailyLog{UserID: id, Date: date, CalorieGoal: profile.CalorieGoal}, nil
	}
	if err != nil {
		writeError(c, "getDailySummary", err)
		return
	}

	totals, err := dailylog.Reduce(id, date, entries, water)
	if err != nil {
		writeError(c, "getDailySummary", err)
		return
	}
	if err := dailylog.Verify(day, totals); err != nil {
		// The reads above are not one snapshot, so a concurrent write can land
		// here too. Rebuild, then re-read the rows so they match the new totals.
		log.Printf("[getDailySummary] user %d %s: %v, recomputing", id, date, err)
		if day, err = h.store.RecomputeDailyLog(c, id, date); err != nil {
			writeError(c, "getDailySummary", err)
			return
		}
		if entries, err = h.store.ListEntries(c, id, date); err != nil {
			writeError(c, "getDailySummary", err)
			return
		}
		if water, err = h.store.ListWater(c, id, date); err != nil {
			writeError(c, "getDailySummary", err)
			return
		}
	}

	if water == nil {
		water = []model.WaterEvent{}
	}
	c.JSON(http.StatusOK, dailySummary{
		Summary: dailylog.Summarize(day, entries, dailylog.GoalsFromProfile(profile)),
		Water:   water,
	})
}

// createEntry logs a food entry, either from the food database (food_id and
// quantity_g) or with nutrition given directly. Nutrition is snapshotted on
// the entry; later edits to the food do not change it.
// POST /api/entries.
func (h *Handler) createEntry(c *gin.Context) {
	id := userID(c)

	var body createEntryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	e, err := h.entryFromRequest(c, id, body)
	if err != nil {
		writeError(c, "createEntry", err)
		return
	}

	created, day, err := h.store.CreateEntry(c, e)
	if err != nil {
		writeError(c, "createEntry", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"entry": created, "daily_log": day})
}

// entryFromRequest resolves the entry's nutrition, meal type and date.
func (h *Handler) entryFromRequest(c *gin.Context, id int64, body createEntryRequest) (model.FoodEntry, error) {
	e := model.FoodEntry{
		UserID:   id,
		FoodName: strings.TrimSpace(body.FoodName),
		LoggedAt: h.now(),
		Notes:    body.Notes,
	}
	if body.LoggedAt != nil {
		e.LoggedAt = *body.LoggedAt
	}
	if body.QuantityG != nil {
		e.QuantityG = *body.QuantityG
	}

	switch {
	case body.FoodID != nil:
		if body.QuantityG == nil || *body.QuantityG <= 0 {
			return model.FoodEntry{}, invalid("quantity_g must be positive when logging a food")
		}
		food, err := h.store.GetFood(c, *body.FoodID)
		if err != nil {
			return model.FoodEntry{}, err
		}
		e.FoodID = &food.ID
		e.Nutrition = food.ForQuantity(*body.QuantityG)
		if e.FoodName == "" {
			e.FoodName = food.Name
		}
	case body.Calories != nil:
		e.Nutrition = model.Nutrition{
			Calories: *body.Calories,
			ProteinG: body.ProteinG,
			CarbsG:   body.CarbsG,
			FatG:     body.FatG,
			FiberG:   body.FiberG,
		}
	default:
		return model.FoodEntry{}, invalid("food_id or calories is required")
	}

	if body.MealType == "" {
		e.MealType = predict.MealTypeAt(e.LoggedAt)
	} else {
		m, err := model.ParseMealType(body.MealType)
		if err != nil {
			return model.FoodEntry{}, invalid(err.Error())
		}
		e.MealType = m
	}

	e.Date = model.NewDate(e.LoggedAt)
	if body.Date != nil {
		e.Date = *body.Date
	}
	return e, nil
}

// listEntries returns the caller's entries over a date range, oldest first.
// GET /api/entries?start=YYYY-MM-DD&end=YYYY-MM-DD (defaults to the last 7 days).
func (h *Handler) listEntries(c *gin.Context) {
	start, end, ok := h.rangeQuery(c)
	if !ok {
		return
	}
	entries, err := h.store.ListEntriesRange(c, userID(c), start, end)
	if err != nil {
		writeError(c, "listEntries", err)
		return
	}
	if entries == nil {
		entries = []model.FoodEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"start": start, "end": end, "entries": entries})
}

// getEntry returns one of the caller's entries.
// GET /api/entries/:id.
func (h *Handler) getEntry(c *gin.Context) {
	entryID, ok := idParam(c)
	if !ok {
		return
	}
	e, err := h.store.GetEntry(c, userID(c), entryID)
	if err != nil {
		writeError(c, "getEntry", err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// updateEntry applies a partial update. A new quantity without new nutrition
// rescales the entry; moving the date recomputes both days.
// PUT /api/entries/:id.
func (h *Handler) updateEntry(c *gin.Context) {
	entryID, ok := idParam(c)
	if !ok {
		return
	}

	var patch store.EntryPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if patch.MealType != nil {
		m, err := model.ParseMealType(string(*patch.MealType))
		if err != nil {
			writeError(c, "updateEntry", invalid(err.Error()))
			return
		}
		patch.MealType = &m
	}

	updated, days, err := h.store.UpdateEntry(c, userID(c), entryID, patch)
	if err != nil {
		writeError(c, "updateEntry", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": updated, "daily_logs": days})
}

// deleteEntry removes an entry and returns the recomputed day.
// DELETE /api/entries/:id.
func (h *Handler) deleteEntry(c *gin.Context) {
	entryID, ok := idParam(c)
	if !ok {
		return
	}
	day, err := h.store.DeleteEntry(c, userID(c), entryID)
	if err != nil {
		writeError(c, "deleteEntry", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"daily_log": day})
}

// addWater records a water intake event. An empty body adds one 250 ml glass today.
// POST /api/water.
func (h *Handler) addWater(c *gin.Context) {
	var body addWaterRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			apiError(c, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	ml := defaultWaterML
	if body.ML != nil {
		ml = *body.ML
	}
	date := h.today()
	if body.Date != nil {
		date = *body.Date
	}

	ev, day, err := h.store.AddWater(c, userID(c), date, ml)
	if err != nil {
		writeError(c, "addWater", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"water": ev, "daily_log": day})
}
