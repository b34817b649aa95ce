package dailylog

import (
	"math"
	"time"

	"lg/calorie-tracker-api/internal/model"
	"lg/calorie-tracker-api/internal/nutrition"
)

// Goals are the targets a day is measured against. Zero means "not set".
type Goals struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
	WaterML  float64 `json:"water_ml"`
}

// GoalsFromProfile reads whichever derived targets the profile has.
func GoalsFromProfile(p model.UserProfile) Goals {
	val := func(v *float64) float64 {
		if v == nil {
			return 0
		}
		return *v
	}
	return Goals{
		Calories: val(p.CalorieGoal),
		ProteinG: val(p.ProteinGoalG),
		CarbsG:   val(p.CarbGoalG),
		FatG:     val(p.FatGoalG),
		WaterML:  val(p.WaterGoalML),
	}
}

// Summary is the dashboard view of one day.
type Summary struct {
	Date              model.Date                 `json:"date"`
	Log               model.DailyLog             `json:"log"`
	Goals             Goals                      `json:"goals"`
	CaloriesRemaining *float64                   `json:"calories_remaining"`
	CaloriePercent    *float64                   `json:"calorie_percent"`
	ProteinPercent    float64                    `json:"protein_percent"`
	CarbsPercent      float64                    `json:"carbs_percent"`
	FatPercent        float64                    `json:"fat_percent"`
	WaterPercent      float64                    `json:"water_percent"`
	ByMeal            map[model.MealType]float64 `json:"calories_by_meal"`
	Entries           []model.FoodEntry          `json:"entries"`
}

// Summarize builds the day view. Remaining calories never drop below zero and
// the calorie/water percentages are capped at 100; both calorie fields are
// nil when there is no calorie goal.
func Summarize(log model.DailyLog, entries []model.FoodEntry, goals Goals) Summary {
	s := Summary{
		Date:           log.Date,
		Log:            log,
		Goals:          goals,
		ProteinPercent: nutrition.Percent(log.ProteinG, goals.ProteinG),
		CarbsPercent:   nutrition.Percent(log.CarbsG, goals.CarbsG),
		FatPercent:     nutrition.Percent(log.FatG, goals.FatG),
		WaterPercent:   math.Min(100, nutrition.Percent(log.WaterML, goals.WaterML)),
		ByMeal:         make(map[model.MealType]float64, len(model.MealTypes)),
		Entries:        entries,
	}
	if s.Entries == nil {
		s.Entries = []model.FoodEntry{}
	}
	if goals.Calories > 0 {
		remaining := math.Max(0, goals.Calories-log.Calories)
		pct := math.Min(100, nutrition.Percent(log.Calories, goals.Calories))
		s.CaloriesRemaining = &remaining
		s.CaloriePercent = &pct
	}
	for _, m := range model.MealTypes {
		s.ByMeal[m] = 0
	}
	for _, e := range entries {
		s.ByMeal[e.MealType] += e.Calories
	}
	return s
}

// Stats aggregates a range of daily logs. Only days with a log row count.
type Stats struct {
	DaysTracked  int     `json:"days_tracked"`
	DaysOnBudget int     `json:"days_on_budget"`
	AvgCalories  float64 `json:"avg_calories"`
	AvgProteinG  float64 `json:"avg_protein_g"`
	AvgCarbsG    float64 `json:"avg_carbs_g"`
	AvgFatG      float64 `json:"avg_fat_g"`
	AvgWaterML   float64 `json:"avg_water_ml"`
}

// RangeStats averages logs. A day is on budget when its calories do not exceed
// the goal it was logged under, or fallbackGoal when it has none. A day with
// no goal at all is never on budget.
func RangeStats(logs []model.DailyLog, fallbackGoal float64) Stats {
	var s Stats
	for _, l := range logs {
		s.DaysTracked++
		goal := fallbackGoal
		if l.CalorieGoal != nil && *l.CalorieGoal > 0 {
			goal = *l.CalorieGoal
		}
		if goal > 0 && l.Calories <= goal {
			s.DaysOnBudget++
		}
		s.AvgCalories += l.Calories
		s.AvgProteinG += l.ProteinG
		s.AvgCarbsG += l.CarbsG
		s.AvgFatG += l.FatG
		s.AvgWaterML += l.WaterML
	}
	if s.DaysTracked > 0 {
		n := float64(s.DaysTracked)
		s.AvgCalories /= n
		s.AvgProteinG /= n
		s.AvgCarbsG /= n
		s.AvgFatG /= n
		s.AvgWaterML /= n
	}
	return s
}

// WeekDay is one day of a gap-filled week.
type WeekDay struct {
	model.DailyLog
	HasData bool `json:"has_data"`
}

// FillWeek returns the seven days starting at start, using logs where present
// and zero rows (HasData=false) elsewhere.
func FillWeek(userID int64, start model.Date, logs []model.DailyLog) []WeekDay {
	byDate := make(map[string]model.DailyLog, len(logs))
	for _, l := range logs {
		byDate[l.Date.String()] = l
	}
	days := make([]WeekDay, 7)
	for i := range days {
		d := start.AddDays(i)
		if l, ok := byDate[d.String()]; ok {
			days[i] = WeekDay{DailyLog: l, HasData: true}
			continue
		}
		days[i] = WeekDay{DailyLog: model.DailyLog{UserID: userID, Date: d}}
	}
	return days
}

// WeekStart returns the Monday of the week containing t, at midnight UTC.
// AddDate keeps month and year boundaries correct.
func WeekStart(t time.Time) model.Date {
	d := model.NewDate(t)
	weekday := int(d.Weekday()) // 0=Sun
	if weekday == 0 {
		weekday = 7
	}
	return d.AddDays(-(weekday - 1))
}
