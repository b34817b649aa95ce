package nutrition

import (
	"fmt"
	"time"
)

// MaxAge guards against implausible dates of birth.
const MaxAge = 130

// Biometrics are the user-supplied inputs every goal is derived from.
type Biometrics struct {
	WeightKG      float64
	HeightCM      float64
	DateOfBirth   time.Time
	Sex           Sex
	ActivityLevel ActivityLevel
	Goal          GoalType
}

// Goals are the derived targets stored alongside a profile.
type Goals struct {
	Age         int         `json:"age"`
	BMR         float64     `json:"bmr"`
	TDEE        float64     `json:"tdee"`
	BMI         float64     `json:"bmi"`
	BMICategory BMICategory `json:"bmi_category"`
	CalorieGoal float64     `json:"calorie_goal"`
	Macros      Macros      `json:"macros"`
	WaterGoalML float64     `json:"water_goal_ml"`
}

// ComputeGoals derives every target from b as of now. It fails with
// ErrInvalidInput when any input is out of range, including an age outside
// 1..MaxAge.
func ComputeGoals(b Biometrics, now time.Time) (Goals, error) {
	age := Age(b.DateOfBirth, now)
	if age <= 0 || age > MaxAge {
		return Goals{}, fmt.Errorf("%w: age %d out of range", ErrInvalidInput, age)
	}
	bmr, err := BMR(b.WeightKG, b.HeightCM, age, b.Sex)
	if err != nil {
		return Goals{}, err
	}
	tdee, err := TDEE(bmr, b.ActivityLevel)
	if err != nil {
		return Goals{}, err
	}
	bmi, err := BMI(b.WeightKG, b.HeightCM)
	if err != nil {
		return Goals{}, err
	}
	goal, err := CalorieGoal(tdee, b.Goal)
	if err != nil {
		return Goals{}, err
	}
	macros, err := MacroSplit(goal, b.Goal)
	if err != nil {
		return Goals{}, err
	}
	water, err := WaterGoal(b.WeightKG)
	if err != nil {
		return Goals{}, err
	}
	return Goals{
		Age:         age,
		BMR:         bmr,
		TDEE:        tdee,
		BMI:         bmi,
		BMICategory: CategorizeBMI(bmi),
		CalorieGoal: goal,
		Macros:      macros,
		WaterGoalML: water,
	}, nil
}
