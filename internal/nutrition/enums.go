package nutrition

import (
	"fmt"
	"strings"
)

// Sex selects the Mifflin-St Jeor constant.
type Sex string

const (
	Male   Sex = "male"
	Female Sex = "female"
)

// ParseSex accepts "male"/"female" and the single-letter forms, case-insensitively.
func ParseSex(s string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return Male, nil
	case "female", "f":
		return Female, nil
	}
	return "", fmt.Errorf("%w: sex must be one of: male, female", ErrInvalidInput)
}

// ActivityLevel selects the TDEE multiplier.
type ActivityLevel string

const (
	Sedentary  ActivityLevel = "sedentary"
	Light      ActivityLevel = "light"
	Moderate   ActivityLevel = "moderate"
	Active     ActivityLevel = "active"
	VeryActive ActivityLevel = "very_active"
)

// activityMultipliers is the single source of truth for valid activity levels.
var activityMultipliers = map[ActivityLevel]float64{
	Sedentary:  1.2,
	Light:      1.375,
	Moderate:   1.55,
	Active:     1.725,
	VeryActive: 1.9,
}

// Multiplier returns the TDEE multiplier for the level.
func (a ActivityLevel) Multiplier() (float64, bool) {
	m, ok := activityMultipliers[a]
	return m, ok
}

// ParseActivityLevel validates an activity level string.
func ParseActivityLevel(s string) (ActivityLevel, error) {
	a := ActivityLevel(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := activityMultipliers[a]; !ok {
		return "", fmt.Errorf("%w: activity_level must be one of: sedentary, light, moderate, active, very_active", ErrInvalidInput)
	}
	return a, nil
}

// GoalType selects the calorie adjustment applied on top of TDEE.
type GoalType string

const (
	Lose        GoalType = "lose"
	Gain        GoalType = "gain"
	Maintain    GoalType = "maintain"
	MuscleBuild GoalType = "muscle_build"
)

var goalAdjustments = map[GoalType]float64{
	Lose:        -500,
	Gain:        500,
	Maintain:    0,
	MuscleBuild: 300,
}

// legacyGoals maps the goal names older clients send.
var legacyGoals = map[string]GoalType{
	"weight_loss":    Lose,
	"weight_gain":    Gain,
	"muscle_gain":    MuscleBuild,
	"general_health": Maintain,
}

// ParseGoalType validates a goal string, accepting legacy names.
func ParseGoalType(s string) (GoalType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if g, ok := legacyGoals[key]; ok {
		return g, nil
	}
	g := GoalType(key)
	if _, ok := goalAdjustments[g]; !ok {
		return "", fmt.Errorf("%w: goal_type must be one of: lose, gain, maintain, muscle_build", ErrInvalidInput)
	}
	return g, nil
}

// BMICategory is the WHO screening band for a BMI value.
type BMICategory string

const (
	Underweight BMICategory = "underweight"
	Normal      BMICategory = "normal"
	Overweight  BMICategory = "overweight"
	Obese       BMICategory = "obese"
)

// Units is the user's preferred display system.
type Units string

const (
	Metric   Units = "metric"
	Imperial Units = "imperial"
)

// ParseUnits validates a units string.
func ParseUnits(s string) (Units, error) {
	switch u := Units(strings.ToLower(strings.TrimSpace(s))); u {
	case Metric, Imperial:
		return u, nil
	}
	return "", fmt.Errorf("%w: units must be one of: metric, imperial", ErrInvalidInput)
}
