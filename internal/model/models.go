// Package model holds the persisted records shared by the stores, the daily
// aggregation rule and the HTTP handlers.
package model

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"lg/calorie-tracker-api/internal/nutrition"
)

/* ─── Users & profiles ───────────────────────────────────────────────── */

// User maps to the users table. AuthToken and Password are hidden from JSON responses.
type User struct {
	ID        int64     `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Email     string    `json:"email" db:"email"`
	AuthToken string    `json:"-" db:"auth_token"`
	Password  string    `json:"-" db:"password"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// UserProfile maps to user_profiles, one row per user. Biometric fields are
// nullable so a freshly registered user still has a valid row; the derived
// fields are only ever written from nutrition.ComputeGoals.
type UserProfile struct {
	UserID        int64                   `json:"user_id"             db:"user_id"`
	WeightKG      *float64                `json:"weight_kg"           db:"weight_kg"`
	HeightCM      *float64                `json:"height_cm"           db:"height_cm"`
	DateOfBirth   *Date                   `json:"date_of_birth"       db:"date_of_birth"`
	Sex           *nutrition.Sex          `json:"sex"                 db:"sex"`
	ActivityLevel nutrition.ActivityLevel `json:"activity_level"      db:"activity_level"`
	GoalType      nutrition.GoalType      `json:"goal_type"           db:"goal_type"`
	Units         nutrition.Units         `json:"units"               db:"units"`
	Onboarded     bool                    `json:"onboarding_complete" db:"onboarding_complete"`

	// Derived from the fields above.
	BMR          *float64               `json:"bmr"            db:"bmr"`
	TDEE         *float64               `json:"tdee"           db:"tdee"`
	BMI          *float64               `json:"bmi"            db:"bmi"`
	BMICategory  *nutrition.BMICategory `json:"bmi_category"   db:"bmi_category"`
	CalorieGoal  *float64               `json:"calorie_goal"   db:"calorie_goal"`
	ProteinGoalG *float64               `json:"protein_goal_g" db:"protein_goal_g"`
	CarbGoalG    *float64               `json:"carb_goal_g"    db:"carb_goal_g"`
	FatGoalG     *float64               `json:"fat_goal_g"     db:"fat_goal_g"`
	WaterGoalML  *float64               `json:"water_goal_ml"  db:"water_goal_ml"`

	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DefaultProfile is the row created alongside a new user.
func DefaultProfile(userID int64) UserProfile {
	return UserProfile{
		UserID:        userID,
		ActivityLevel: nutrition.Sedentary,
		GoalType:      nutrition.Maintain,
		Units:         nutrition.Metric,
	}
}

// Biometrics returns the formula inputs held by the profile, or ok=false when
// any required field is still unset.
func (p *UserProfile) Biometrics() (b nutrition.Biometrics, ok bool) {
	if p.WeightKG == nil || p.HeightCM == nil || p.DateOfBirth == nil || p.Sex == nil {
		return nutrition.Biometrics{}, false
	}
	return nutrition.Biometrics{
		WeightKG:      *p.WeightKG,
		HeightCM:      *p.HeightCM,
		DateOfBirth:   p.DateOfBirth.Time,
		Sex:           *p.Sex,
		ActivityLevel: p.ActivityLevel,
		Goal:          p.GoalType,
	}, true
}

// ApplyGoals overwrites every derived field from g.
func (p *UserProfile) ApplyGoals(g nutrition.Goals) {
	cat := g.BMICategory
	p.BMR = &g.BMR
	p.TDEE = &g.TDEE
	p.BMI = &g.BMI
	p.BMICategory = &cat
	p.CalorieGoal = &g.CalorieGoal
	p.ProteinGoalG = &g.Macros.ProteinG
	p.CarbGoalG = &g.Macros.CarbG
	p.FatGoalG = &g.Macros.FatG
	p.WaterGoalML = &g.WaterGoalML
}

// ClearGoals nils every derived field; used when biometrics become incomplete.
func (p *UserProfile) ClearGoals() {
	p.BMR, p.TDEE, p.BMI, p.BMICategory = nil, nil, nil, nil
	p.CalorieGoal, p.ProteinGoalG, p.CarbGoalG, p.FatGoalG, p.WaterGoalML = nil, nil, nil, nil, nil
}

/* ─── Foods & entries ────────────────────────────────────────────────── */

// Food maps to foods. Nutrition is per 100 g.
type Food struct {
	ID             int64     `json:"id"                db:"id"`
	Name           string    `json:"name"              db:"name"`
	Description    string    `json:"description"       db:"description"`
	CaloriesPer100 float64   `json:"calories_per_100g" db:"calories_per_100g"`
	ProteinPer100  float64   `json:"protein_per_100g"  db:"protein_per_100g"`
	CarbsPer100    float64   `json:"carbs_per_100g"    db:"carbs_per_100g"`
	FatPer100      float64   `json:"fat_per_100g"      db:"fat_per_100g"`
	FiberPer100    float64   `json:"fiber_per_100g"    db:"fiber_per_100g"`
	ServingSize    string    `json:"serving_size"      db:"serving_size"`
	Verified       bool      `json:"is_verified"       db:"is_verified"`
	CreatedBy      *int64    `json:"created_by"        db:"created_by"`
	CreatedAt      time.Time `json:"created_at"        db:"created_at"`
}

// Nutrition is an absolute amount of energy and macronutrients.
type Nutrition struct {
	Calories float64 `json:"calories"  db:"calories"`
	ProteinG float64 `json:"protein_g" db:"protein_g"`
	CarbsG   float64 `json:"carbs_g"   db:"carbs_g"`
	FatG     float64 `json:"fat_g"     db:"fat_g"`
	FiberG   float64 `json:"fiber_g"   db:"fiber_g"`
}

// Scale returns n multiplied by factor.
func (n Nutrition) Scale(factor float64) Nutrition {
	return Nutrition{
		Calories: n.Calories * factor,
		ProteinG: n.ProteinG * factor,
		CarbsG:   n.CarbsG * factor,
		FatG:     n.FatG * factor,
		FiberG:   n.FiberG * factor,
	}
}

// Negative reports whether any component is below zero.
func (n Nutrition) Negative() bool {
	return n.Calories < 0 || n.ProteinG < 0 || n.CarbsG < 0 || n.FatG < 0 || n.FiberG < 0
}

// ForQuantity returns the food's nutrition for grams of it.
func (f Food) ForQuantity(grams float64) Nutrition {
	per100 := Nutrition{
		Calories: f.CaloriesPer100,
		ProteinG: f.ProteinPer100,
		CarbsG:   f.CarbsPer100,
		FatG:     f.FatPer100,
		FiberG:   f.FiberPer100,
	}
	return per100.Scale(grams / 100)
}

// FoodEntry maps to food_entries. Nutrition is a snapshot taken when the entry
// is created (or explicitly edited), so later edits to a shared Food never
// change historical totals.
type FoodEntry struct {
	ID        int64     `json:"id"         db:"id"`
	UserID    int64     `json:"user_id"    db:"user_id"`
	FoodID    *int64    `json:"food_id"    db:"food_id"`
	FoodName  string    `json:"food_name"  db:"food_name"`
	QuantityG float64   `json:"quantity_g" db:"quantity_g"`
	MealType  MealType  `json:"meal_type"  db:"meal_type"`
	Date      Date      `json:"date"       db:"date"`
	LoggedAt  time.Time `json:"logged_at"  db:"logged_at"`
	Nutrition
	AIGenerated bool      `json:"is_ai_generated" db:"is_ai_generated"`
	Notes       string    `json:"notes"           db:"notes"`
	CreatedAt   time.Time `json:"created_at"      db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"      db:"updated_at"`
}

// Validate checks the fields every stored entry must satisfy.
func (e FoodEntry) Validate() error {
	switch {
	case strings.TrimSpace(e.FoodName) == "":
		return fmt.Errorf("%w: food_name is required", nutrition.ErrInvalidInput)
	case e.QuantityG < 0:
		return fmt.Errorf("%w: quantity_g must not be negative", nutrition.ErrInvalidInput)
	case e.Nutrition.Negative():
		return fmt.Errorf("%w: nutrition values must not be negative", nutrition.ErrInvalidInput)
	case e.Date.IsZero():
		return fmt.Errorf("%w: date is required", nutrition.ErrInvalidInput)
	}
	if !slices.Contains(MealTypes, e.MealType) {
		return fmt.Errorf("%w: unknown meal_type %q", nutrition.ErrInvalidInput, e.MealType)
	}
	return nil
}

// WaterEvent maps to water_events: one "add water" action.
type WaterEvent struct {
	ID        int64     `json:"id"         db:"id"`
	UserID    int64     `json:"user_id"    db:"user_id"`
	Date      Date      `json:"date"       db:"date"`
	ML        float64   `json:"ml"         db:"ml"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DailyLog maps to daily_logs, one row per (user, date). Every total is the
// sum over that day's entries and water events.
type DailyLog struct {
	UserID      int64     `json:"user_id"         db:"user_id"`
	Date        Date      `json:"date"            db:"date"`
	Calories    float64   `json:"total_calories"  db:"total_calories"`
	ProteinG    float64   `json:"total_protein_g" db:"total_protein_g"`
	CarbsG      float64   `json:"total_carbs_g"   db:"total_carbs_g"`
	FatG        float64   `json:"total_fat_g"     db:"total_fat_g"`
	FiberG      float64   `json:"total_fiber_g"   db:"total_fiber_g"`
	WaterML     float64   `json:"total_water_ml"  db:"total_water_ml"`
	EntryCount  int       `json:"entry_count"     db:"entry_count"`
	CalorieGoal *float64  `json:"calorie_goal"    db:"calorie_goal"`
	UpdatedAt   time.Time `json:"updated_at"      db:"updated_at"`
}

/* ─── Predictions ────────────────────────────────────────────────────── */

// InputKind says what a prediction was made from.
type InputKind string

const (
	InputText  InputKind = "text"
	InputImage InputKind = "image"
)

// CaloriePrediction maps to calorie_predictions.
type CaloriePrediction struct {
	ID          int64     `json:"id"                     db:"id"`
	UserID      int64     `json:"user_id"                db:"user_id"`
	InputKind   InputKind `json:"input_kind"             db:"input_kind"`
	Description string    `json:"description"            db:"description"`
	ImageMIME   string    `json:"image_mime,omitempty"   db:"image_mime"`
	ImageSHA256 string    `json:"image_sha256,omitempty" db:"image_sha256"`
	FoodName    string    `json:"food_name"              db:"food_name"`
	QuantityG   float64   `json:"quantity_g"             db:"quantity_g"`
	Nutrition
	Confidence float64   `json:"confidence"   db:"confidence"`
	MealType   MealType  `json:"meal_type"    db:"meal_type"`
	Model      string    `json:"model"        db:"model"`
	Saved      bool      `json:"saved_to_log" db:"saved_to_log"`
	EntryID    *int64    `json:"entry_id"     db:"entry_id"`
	CreatedAt  time.Time `json:"created_at"   db:"created_at"`
}
