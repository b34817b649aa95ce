package nutrition

import (
	"errors"
	"math"
	"testing"
	"time"
)

func approx(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

/* ─── BMR ────────────────────────────────────────────────────────────── */

// TestBMR_KnownValues checks both Mifflin-St Jeor constants against hand-computed values.
func TestBMR_KnownValues(t *testing.T) {
	cases := []struct {
		sex  Sex
		want float64
	}{
		{Male, 1648.75},   // 700 + 1093.75 - 150 + 5
		{Female, 1482.75}, // 700 + 1093.75 - 150 - 161
	}
	for _, tc := range cases {
		got, err := BMR(70, 175, 30, tc.sex)
		if err != nil {
			t.Fatalf("BMR(%s): %v", tc.sex, err)
		}
		if !approx(got, tc.want, 1e-9) {
			t.Errorf("BMR(%s) = %f, want %f", tc.sex, got, tc.want)
		}
	}
}

// TestBMR_InvalidInput verifies non-positive inputs and unknown sex are rejected.
func TestBMR_InvalidInput(t *testing.T) {
	cases := []struct {
		name   string
		weight float64
		height float64
		age    int
		sex    Sex
	}{
		{"zero weight", 0, 175, 30, Male},
		{"negative height", 70, -1, 30, Male},
		{"zero age", 70, 175, 0, Female},
		{"unknown sex", 70, 175, 30, Sex("other")},
		{"NaN weight", math.NaN(), 175, 30, Male},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BMR(tc.weight, tc.height, tc.age, tc.sex)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

// TestBMR_Monotonic walks a grid of inputs and checks BMR rises with weight and
// height and falls with age.
func TestBMR_Monotonic(t *testing.T) {
	for _, sex := range []Sex{Male, Female} {
		for w := 40.0; w <= 160; w += 15 {
			for h := 140.0; h <= 210; h += 10 {
				for a := 18; a <= 90; a += 8 {
					base, _ := BMR(w, h, a, sex)
					heavier, _ := BMR(w+0.5, h, a, sex)
					taller, _ := BMR(w, h+0.5, a, sex)
					older, _ := BMR(w, h, a+1, sex)
					if heavier <= base || taller <= base || older >= base {
						t.Fatalf("monotonicity broken at sex=%s w=%.1f h=%.1f a=%d", sex, w, h, a)
					}
				}
			}
		}
	}
}

/* ─── TDEE ───────────────────────────────────────────────────────────── */

func TestTDEE_Moderate(t *testing.T) {
	got, err := TDEE(1673.75, Moderate)
	if err != nil {
		t.Fatal(err)
	}
	if !approx(got, 2594.3, 0.05) {
		t.Errorf("TDEE = %f, want ~2594.3", got)
	}
}

func TestTDEE_Multipliers(t *testing.T) {
	want := map[ActivityLevel]float64{
		Sedentary: 1200, Light: 1375, Moderate: 1550, Active: 1725, VeryActive: 1900,
	}
	for level, w := range want {
		got, err := TDEE(1000, level)
		if err != nil {
			t.Fatalf("TDEE(%s): %v", level, err)
		}
		if !approx(got, w, 1e-9) {
			t.Errorf("TDEE(1000, %s) = %f, want %f", level, got, w)
		}
	}
}

func TestTDEE_UnknownLevel(t *testing.T) {
	if _, err := TDEE(1500, ActivityLevel("couch")); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

/* ─── BMI ────────────────────────────────────────────────────────────── */

func TestBMI_Normal(t *testing.T) {
	bmi, err := BMI(70, 175)
	if err != nil {
		t.Fatal(err)
	}
	if !approx(bmi, 22.86, 0.01) {
		t.Errorf("BMI = %f, want ~22.86", bmi)
	}
	if c := CategorizeBMI(bmi); c != Normal {
		t.Errorf("category = %s, want normal", c)
	}
}

func TestCategorizeBMI_Thresholds(t *testing.T) {
	cases := []struct {
		bmi  float64
		want BMICategory
	}{
		{18.49, Underweight},
		{18.5, Normal},
		{24.99, Normal},
		{25, Overweight},
		{29.99, Overweight},
		{30, Obese},
	}
	for _, tc := range cases {
		if got := CategorizeBMI(tc.bmi); got != tc.want {
			t.Errorf("CategorizeBMI(%v) = %s, want %s", tc.bmi, got, tc.want)
		}
	}
}

/* ─── Calorie goal & macros ──────────────────────────────────────────── */

// TestCalorieGoal_LoseFloored checks lose == x-500 for a sweep of x, never below 1200.
func TestCalorieGoal_LoseFloored(t *testing.T) {
	for x := 0.0; x <= 4000; x += 37.5 {
		got, err := CalorieGoal(x, Lose)
		if err != nil {
			t.Fatal(err)
		}
		if want := math.Max(x-500, MinCalorieGoal); got != want {
			t.Fatalf("CalorieGoal(%v, lose) = %v, want %v", x, got, want)
		}
	}
}

func TestCalorieGoal_Adjustments(t *testing.T) {
	want := map[GoalType]float64{Lose: 2000, Gain: 3000, Maintain: 2500, MuscleBuild: 2800}
	for goal, w := range want {
		got, err := CalorieGoal(2500, goal)
		if err != nil {
			t.Fatalf("CalorieGoal(%s): %v", goal, err)
		}
		if got != w {
			t.Errorf("CalorieGoal(2500, %s) = %v, want %v", goal, got, w)
		}
	}
}

// TestMacroSplit_CaloriesAddUp verifies every ratio converts back to the calorie goal.
func TestMacroSplit_CaloriesAddUp(t *testing.T) {
	for _, goal := range []GoalType{Lose, Gain, Maintain, MuscleBuild} {
		m, err := MacroSplit(2000, goal)
		if err != nil {
			t.Fatalf("MacroSplit(%s): %v", goal, err)
		}
		total := m.ProteinG*4 + m.CarbG*4 + m.FatG*9
		if !approx(total, 2000, 1e-6) {
			t.Errorf("%s macros sum to %f kcal, want 2000", goal, total)
		}
	}
	build, _ := MacroSplit(2000, MuscleBuild)
	keep, _ := MacroSplit(2000, Maintain)
	if build.ProteinG <= keep.ProteinG {
		t.Errorf("muscle_build protein %f should exceed maintain %f", build.ProteinG, keep.ProteinG)
	}
}

/* ─── Water, ideal weight, age ───────────────────────────────────────── */

func TestWaterGoal(t *testing.T) {
	got, err := WaterGoal(70)
	if err != nil {
		t.Fatal(err)
	}
	if got != 2310 {
		t.Errorf("WaterGoal(70) = %v, want 2310", got)
	}
	if _, err := WaterGoal(0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for zero weight, got %v", err)
	}
}

func TestIdealWeightRange(t *testing.T) {
	r, err := IdealWeightRange(175)
	if err != nil {
		t.Fatal(err)
	}
	if !approx(r.MinKG, 56.66, 0.01) || !approx(r.MaxKG, 76.26, 0.01) {
		t.Errorf("IdealWeightRange(175) = %+v", r)
	}
}

// TestAge_BeforeBirthday verifies the year is not counted until the birthday passes.
func TestAge_BeforeBirthday(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	if got := Age(time.Date(1990, 10, 16, 0, 0, 0, 0, time.UTC), now); got != 35 {
		t.Errorf("Age = %d, want 35", got)
	}
	if got := Age(time.Date(1990, 10, 15, 0, 0, 0, 0, time.UTC), now); got != 36 {
		t.Errorf("Age = %d, want 36", got)
	}
}

func TestPercent_ZeroGoal(t *testing.T) {
	if got := Percent(500, 0); got != 0 {
		t.Errorf("Percent with zero goal = %v, want 0", got)
	}
	if got := Percent(500, 2000); got != 25 {
		t.Errorf("Percent(500, 2000) = %v, want 25", got)
	}
}

/* ─── Parsers ────────────────────────────────────────────────────────── */

func TestParseGoalType_Legacy(t *testing.T) {
	cases := map[string]GoalType{
		"weight_loss": Lose, "muscle_gain": MuscleBuild, "general_health": Maintain, "GAIN": Gain,
	}
	for in, want := range cases {
		got, err := ParseGoalType(in)
		if err != nil || got != want {
			t.Errorf("ParseGoalType(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseGoalType("bulk"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestParseSex(t *testing.T) {
	if s, err := ParseSex("F"); err != nil || s != Female {
		t.Errorf("ParseSex(F) = %q, %v", s, err)
	}
	if _, err := ParseSex("other"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestWeightConversion(t *testing.T) {
	if kg := LBSToKG(220.462); !approx(kg, 100, 1e-3) {
		t.Errorf("LBSToKG(220.462) = %v, want 100", kg)
	}
	if lbs := KGToLBS(LBSToKG(165)); !approx(lbs, 165, 1e-9) {
		t.Errorf("round trip of 165 lbs = %v", lbs)
	}
}
