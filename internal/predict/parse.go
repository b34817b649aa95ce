package predict

import (
	"encoding/json"
	"fmt"
	"strings"

	"lg/calorie-tracker-api/internal/model"
)

// Raw is the JSON object the collaborator is asked to produce. Totals are
// preferred; per-100g values multiplied by quantity_grams are accepted when
// calories is absent.
type Raw struct {
	FoodName      string   `json:"food_name"`
	MealType      string   `json:"meal_type"`
	QuantityGrams *float64 `json:"quantity_grams"`
	Calories      *float64 `json:"calories"`
	ProteinG      *float64 `json:"protein_g"`
	CarbsG        *float64 `json:"carbs_g"`
	FatG          *float64 `json:"fat_g"`
	FiberG        *float64 `json:"fiber_g"`

	CaloriesPer100g *float64 `json:"calories_per_100g"`
	ProteinPer100g  *float64 `json:"protein_per_100g"`
	CarbsPer100g    *float64 `json:"carbs_per_100g"`
	FatPer100g      *float64 `json:"fat_per_100g"`
	FiberPer100g    *float64 `json:"fiber_per_100g"`

	Confidence *float64 `json:"confidence"`
	Error      string   `json:"error"`
}

// ParseRaw extracts the JSON object from the collaborator's text. Markdown
// fences and prose around the object are tolerated.
func ParseRaw(text string) (Raw, error) {
	body := extractJSON(text)
	if body == "" {
		return Raw{}, fmt.Errorf("%w: no JSON object in response", ErrUnavailable)
	}
	var raw Raw
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return Raw{}, fmt.Errorf("%w: parse response: %w", ErrUnavailable, err)
	}
	if raw.Error != "" {
		return raw, fmt.Errorf("%w: %s", ErrUnrecognized, raw.Error)
	}
	return raw, nil
}

func extractJSON(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}

// nutrition returns totals for the portion and the portion size. A per-100g
// answer without a quantity is taken as exactly 100 g.
func (r Raw) nutrition(quantity float64) (model.Nutrition, float64, error) {
	val := func(v *float64) float64 {
		if v == nil {
			return 0
		}
		return *v
	}
	if r.Calories != nil {
		return model.Nutrition{
			Calories: *r.Calories,
			ProteinG: val(r.ProteinG),
			CarbsG:   val(r.CarbsG),
			FatG:     val(r.FatG),
			FiberG:   val(r.FiberG),
		}, quantity, nil
	}
	if r.CaloriesPer100g == nil {
		return model.Nutrition{}, 0, fmt.Errorf("%w: response has no calorie estimate", ErrUnavailable)
	}
	if quantity == 0 {
		quantity = 100
	}
	per100 := model.Nutrition{
		Calories: *r.CaloriesPer100g,
		ProteinG: val(r.ProteinPer100g),
		CarbsG:   val(r.CarbsPer100g),
		FatG:     val(r.FatPer100g),
		FiberG:   val(r.FiberPer100g),
	}
	return per100.Scale(quantity / 100), quantity, nil
}
