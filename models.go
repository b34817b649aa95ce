package main

import (
	"time"

	"lg/calorie-tracker-api/internal/dailylog"
	"lg/calorie-tracker-api/internal/model"
	"lg/calorie-tracker-api/internal/nutrition"
)

/* ─── Auth ───────────────────────────────────────────────────────────── */

// credentialsRequest is the body of POST /api/login and POST /api/register.
// Email is only read on registration.
type credentialsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

/* ─── Profile ────────────────────────────────────────────────────────── */

// profileResponse is the profile plus values derived on read.
type profileResponse struct {
	model.UserProfile
	Age         *int                   `json:"age"`
	WeightLBS   *float64               `json:"weight_lbs"`
	IdealWeight *nutrition.WeightRange `json:"ideal_weight_kg"`
}

// patchProfileRequest uses pointer fields so that only provided fields are
// updated. Derived goal fields are not accepted; they are always recomputed.
// weight_lbs and height_in are accepted as imperial alternatives.
type patchProfileRequest struct {
	WeightKG           *float64    `json:"weight_kg"`
	WeightLBS          *float64    `json:"weight_lbs"`
	HeightCM           *float64    `json:"height_cm"`
	HeightIN           *float64    `json:"height_in"`
	DateOfBirth        *model.Date `json:"date_of_birth"`
	Sex                *string     `json:"sex"`
	ActivityLevel      *string     `json:"activity_level"`
	GoalType           *string     `json:"goal_type"`
	Units              *string     `json:"units"`
	OnboardingComplete *bool       `json:"onboarding_complete"`
}

/* ─── Foods ──────────────────────────────────────────────────────────── */

// createFoodRequest is the body of POST /api/foods. Nutrition is per 100 g.
type createFoodRequest struct {
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	CaloriesPer100 float64 `json:"calories_per_100g"`
	ProteinPer100  float64 `json:"protein_per_100g"`
	CarbsPer100    float64 `json:"carbs_per_100g"`
	FatPer100      float64 `json:"fat_per_100g"`
	FiberPer100    float64 `json:"fiber_per_100g"`
	ServingSize    string  `json:"serving_size"`
}

/* ─── Food log ───────────────────────────────────────────────────────── */

// createEntryRequest is the body of POST /api/entries. Either food_id with
// quantity_g, or food_name with calories (and optionally macros) is required.
type createEntryRequest struct {
	FoodID    *int64      `json:"food_id"`
	FoodName  string      `json:"food_name"`
	QuantityG *float64    `json:"quantity_g"`
	MealType  string      `json:"meal_type"`
	Date      *model.Date `json:"date"`
	LoggedAt  *time.Time  `json:"logged_at"`
	Calories  *float64    `json:"calories"`
	ProteinG  float64     `json:"protein_g"`
	CarbsG    float64     `json:"carbs_g"`
	FatG      float64     `json:"fat_g"`
	FiberG    float64     `json:"fiber_g"`
	Notes     string      `json:"notes"`
}

// addWaterRequest is the body of POST /api/water. ml defaults to one glass.
type addWaterRequest struct {
	ML   *float64    `json:"ml"`
	Date *model.Date `json:"date"`
}

// dailySummary is the response of GET /api/daily.
type dailySummary struct {
	dailylog.Summary
	Water []model.WaterEvent `json:"water"`
}

/* ─── Predictions ────────────────────────────────────────────────────── */

// predictTextRequest is the body of POST /api/predictions/text.
type predictTextRequest struct {
	Description string     `json:"description"`
	EatenAt     *time.Time `json:"eaten_at"`
}

// promoteRequest is the body of POST /api/predictions/:id/promote. Every field
// is optional; a quantity override rescales the predicted nutrition.
type promoteRequest struct {
	QuantityG *float64    `json:"quantity_g"`
	MealType  *string     `json:"meal_type"`
	Date      *model.Date `json:"date"`
	LoggedAt  *time.Time  `json:"logged_at"`
	Notes     string      `json:"notes"`
}

/* ─── Analytics ──────────────────────────────────────────────────────── */

// analyticsResponse is the response of GET /api/analytics. Days holds only
// days with a log row; the client fills gaps.
type analyticsResponse struct {
	Start       model.Date       `json:"start"`
	End         model.Date       `json:"end"`
	CalorieGoal *float64         `json:"calorie_goal"`
	Days        []model.DailyLog `json:"days"`
	Stats       dailylog.Stats   `json:"stats"`
}

// weekSummary is the response of GET /api/analytics/week.
type weekSummary struct {
	WeekStart   model.Date         `json:"week_start"`
	CalorieGoal *float64           `json:"calorie_goal"`
	Days        []dailylog.WeekDay `json:"days"`
	Stats       dailylog.Stats     `json:"stats"`
}
