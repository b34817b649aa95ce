package model

import (
	"fmt"
	"strings"
)

// MealType is the meal category of a food entry.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
	Snack     MealType = "snack"
)

// MealTypes lists every meal type in display order.
var MealTypes = []MealType{Breakfast, Lunch, Dinner, Snack}

// ParseMealType accepts a meal type case-insensitively.
func ParseMealType(s string) (MealType, error) {
	m := MealType(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case Breakfast, Lunch, Dinner, Snack:
		return m, nil
	}
	return "", fmt.Errorf("meal_type must be one of: breakfast, lunch, dinner, snack")
}
