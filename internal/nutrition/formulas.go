// Package nutrition computes energy and body-composition targets from
// biometric inputs. Every function here is pure and safe for concurrent use.
package nutrition

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidInput reports malformed or out-of-range biometric or entry data.
var ErrInvalidInput = errors.New("invalid input")

// MinCalorieGoal is the floor applied to every calorie goal; recommending
// less than this is unsafe without medical supervision.
const MinCalorieGoal = 1200.0

// WaterMLPerKG is the daily water recommendation per kilogram of body weight.
const WaterMLPerKG = 33.0

const (
	kcalPerGramProtein = 4.0
	kcalPerGramCarb    = 4.0
	kcalPerGramFat     = 9.0
	lbsPerKG           = 2.20462
)

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// BMR returns basal metabolic rate in kcal/day via Mifflin-St Jeor.
func BMR(weightKG, heightCM float64, ageYears int, sex Sex) (float64, error) {
	if !positive(weightKG) || !positive(heightCM) || ageYears <= 0 {
		return 0, fmt.Errorf("%w: weight, height and age must be positive", ErrInvalidInput)
	}
	bmr := 10*weightKG + 6.25*heightCM - 5*float64(ageYears)
	switch sex {
	case Male:
		return bmr + 5, nil
	case Female:
		return bmr - 161, nil
	}
	return 0, fmt.Errorf("%w: unknown sex %q", ErrInvalidInput, sex)
}

// TDEE multiplies bmr by the activity level's multiplier.
func TDEE(bmr float64, level ActivityLevel) (float64, error) {
	if !positive(bmr) {
		return 0, fmt.Errorf("%w: bmr must be positive", ErrInvalidInput)
	}
	mult, ok := level.Multiplier()
	if !ok {
		return 0, fmt.Errorf("%w: unknown activity level %q", ErrInvalidInput, level)
	}
	return bmr * mult, nil
}

// BMI returns weight / height², height converted to metres.
func BMI(weightKG, heightCM float64) (float64, error) {
	if !positive(weightKG) || !positive(heightCM) {
		return 0, fmt.Errorf("%w: weight and height must be positive", ErrInvalidInput)
	}
	m := heightCM / 100
	return weightKG / (m * m), nil
}

// CategorizeBMI returns the screening band for bmi.
func CategorizeBMI(bmi float64) BMICategory {
	switch {
	case bmi < 18.5:
		return Underweight
	case bmi < 25:
		return Normal
	case bmi < 30:
		return Overweight
	default:
		return Obese
	}
}

// CalorieGoal adjusts tdee for the goal, floored at MinCalorieGoal.
func CalorieGoal(tdee float64, goal GoalType) (float64, error) {
	adj, ok := goalAdjustments[goal]
	if !ok {
		return 0, fmt.Errorf("%w: unknown goal %q", ErrInvalidInput, goal)
	}
	if math.IsNaN(tdee) || math.IsInf(tdee, 0) {
		return 0, fmt.Errorf("%w: tdee must be finite", ErrInvalidInput)
	}
	return math.Max(tdee+adj, MinCalorieGoal), nil
}

// Macros are daily macronutrient targets in grams.
type Macros struct {
	ProteinG float64 `json:"protein_g"`
	CarbG    float64 `json:"carb_g"`
	FatG     float64 `json:"fat_g"`
}

// macroRatio is the share of calories from protein, carbs and fat.
type macroRatio struct{ protein, carb, fat float64 }

var macroRatios = map[GoalType]macroRatio{
	Maintain:    {0.30, 0.40, 0.30},
	Lose:        {0.35, 0.35, 0.30},
	Gain:        {0.25, 0.50, 0.25},
	MuscleBuild: {0.40, 0.35, 0.25},
}

// MacroSplit converts a calorie goal into gram targets for the goal's ratio.
func MacroSplit(calorieGoal float64, goal GoalType) (Macros, error) {
	r, ok := macroRatios[goal]
	if !ok {
		return Macros{}, fmt.Errorf("%w: unknown goal %q", ErrInvalidInput, goal)
	}
	if !positive(calorieGoal) {
		return Macros{}, fmt.Errorf("%w: calorie goal must be positive", ErrInvalidInput)
	}
	return Macros{
		ProteinG: calorieGoal * r.protein / kcalPerGramProtein,
		CarbG:    calorieGoal * r.carb / kcalPerGramCarb,
		FatG:     calorieGoal * r.fat / kcalPerGramFat,
	}, nil
}

// WaterGoal returns the daily water target in millilitres.
func WaterGoal(weightKG float64) (float64, error) {
	if !positive(weightKG) {
		return 0, fmt.Errorf("%w: weight must be positive", ErrInvalidInput)
	}
	return weightKG * WaterMLPerKG, nil
}

// WeightRange is a closed interval of body weights in kilograms.
type WeightRange struct {
	MinKG float64 `json:"min_kg"`
	MaxKG float64 `json:"max_kg"`
}

// IdealWeightRange returns the weights that put heightCM in the normal BMI band.
func IdealWeightRange(heightCM float64) (WeightRange, error) {
	if !positive(heightCM) {
		return WeightRange{}, fmt.Errorf("%w: height must be positive", ErrInvalidInput)
	}
	m2 := (heightCM / 100) * (heightCM / 100)
	return WeightRange{MinKG: 18.5 * m2, MaxKG: 24.9 * m2}, nil
}

// Percent returns consumed as a percentage of goal, or 0 when there is no goal.
func Percent(consumed, goal float64) float64 {
	if goal <= 0 {
		return 0
	}
	return consumed / goal * 100
}

// Age returns whole years elapsed between dob and now.
func Age(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Before(dob.AddDate(age, 0, 0)) {
		age--
	}
	return age
}

// LBSToKG converts pounds to kilograms.
func LBSToKG(lbs float64) float64 { return lbs / lbsPerKG }

// KGToLBS converts kilograms to pounds.
func KGToLBS(kg float64) float64 { return kg * lbsPerKG }
