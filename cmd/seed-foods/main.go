// CLI tool to seed the food database with common verified foods.
// Foods that already exist by name are skipped, so it is safe to re-run.
// Usage: go run ./cmd/seed-foods
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"lg/calorie-tracker-api/internal/config"
	"lg/calorie-tracker-api/internal/model"
	"lg/calorie-tracker-api/internal/store"
	"lg/calorie-tracker-api/internal/store/driver"
)

// commonFoods are per-100 g values for everyday staples.
var commonFoods = []model.Food{
	{Name: "Apple", CaloriesPer100: 52, ProteinPer100: 0.3, CarbsPer100: 14, FatPer100: 0.2, FiberPer100: 2.4, ServingSize: "1 medium (182 g)"},
	{Name: "Banana", CaloriesPer100: 89, ProteinPer100: 1.1, CarbsPer100: 23, FatPer100: 0.3, FiberPer100: 2.6, ServingSize: "1 medium (118 g)"},
	{Name: "Chicken Breast (Grilled)", CaloriesPer100: 165, ProteinPer100: 31, CarbsPer100: 0, FatPer100: 3.6, ServingSize: "1 breast (172 g)"},
	{Name: "White Rice (Cooked)", CaloriesPer100: 130, ProteinPer100: 2.7, CarbsPer100: 28, FatPer100: 0.3, FiberPer100: 0.4, ServingSize: "1 cup (158 g)"},
	{Name: "Egg (Large)", CaloriesPer100: 155, ProteinPer100: 13, CarbsPer100: 1.1, FatPer100: 11, ServingSize: "1 egg (50 g)"},
	{Name: "Salmon (Grilled)", CaloriesPer100: 206, ProteinPer100: 25, CarbsPer100: 0, FatPer100: 12, ServingSize: "1 fillet (154 g)"},
	{Name: "Broccoli (Steamed)", CaloriesPer100: 35, ProteinPer100: 2.8, CarbsPer100: 7, FatPer100: 0.4, FiberPer100: 2.6, ServingSize: "1 cup (156 g)"},
	{Name: "Whole Wheat Bread", CaloriesPer100: 247, ProteinPer100: 13, CarbsPer100: 41, FatPer100: 4.2, FiberPer100: 7, ServingSize: "1 slice (32 g)"},
	{Name: "Rolled Oats", CaloriesPer100: 379, ProteinPer100: 13, CarbsPer100: 68, FatPer100: 6.5, FiberPer100: 10, ServingSize: "1/2 cup (40 g)"},
	{Name: "Greek Yogurt (Plain, Nonfat)", CaloriesPer100: 59, ProteinPer100: 10, CarbsPer100: 3.6, FatPer100: 0.4, ServingSize: "1 container (170 g)"},
	{Name: "Almonds", CaloriesPer100: 579, ProteinPer100: 21, CarbsPer100: 22, FatPer100: 50, FiberPer100: 12.5, ServingSize: "1 oz (28 g)"},
	{Name: "Sweet Potato (Baked)", CaloriesPer100: 90, ProteinPer100: 2, CarbsPer100: 21, FatPer100: 0.2, FiberPer100: 3.3, ServingSize: "1 medium (114 g)"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	st, err := driver.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	created, err := seed(ctx, st, commonFoods)
	for _, name := range created {
		fmt.Printf("  created: %s\n", name)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\n%d food(s) created, %d already present.\n", len(created), len(commonFoods)-len(created))
}

// seed inserts each food not already present by exact (case-insensitive)
// name, marking it verified. It returns the names it created.
func seed(ctx context.Context, st store.Store, foods []model.Food) ([]string, error) {
	var created []string
	for _, f := range foods {
		existing, err := st.SearchFoods(ctx, f.Name, 0)
		if err != nil {
			return created, fmt.Errorf("search %s: %w", f.Name, err)
		}
		if containsName(existing, f.Name) {
			continue
		}
		f.Verified = true
		if _, err := st.CreateFood(ctx, f); err != nil {
			return created, fmt.Errorf("create %s: %w", f.Name, err)
		}
		created = append(created, f.Name)
	}
	return created, nil
}

func containsName(foods []model.Food, name string) bool {
	for _, f := range foods {
		if strings.EqualFold(f.Name, name) {
			return true
		}
	}
	return false
}
