package nutrition

import (
	"math"

	"nutrimatch-go-worker/enums"
	"nutrimatch-go-worker/models"
	"nutrimatch-go-worker/services"
	"nutrimatch-go-worker/structs"
)

const (
	DefaultCalories = 2000
	DefaultProtein  = 150.0
	DefaultCarbs    = 250.0
	DefaultFat      = 65.0
	DefaultFiber    = 25.0
	DefaultSodium   = 2300.0
	DefaultCalcium  = 1000.0
	DefaultIron     = 8.0
	DefaultVitaminC = 90.0
)

var activityMultipliers = map[string]float64{
	enums.ActivitySedentary:   1.2,
	enums.ActivityLight:       1.375,
	enums.ActivityModerate:    1.55,
	enums.ActivityActive:      1.725,
	enums.ActivityExtraActive: 1.9,
}

type DerivedFields struct {
	ProteinDensity       float64
	NutrientDensityScore float64
}

// ComputeDerivedFields returns the stored per-food ratios. Both are 0 for
// foods without calories.
func ComputeDerivedFields(food models.Food) DerivedFields {
	if food.Calories <= 0 {
		return DerivedFields{}
	}
	vitamins := (food.VitaminA + food.VitaminC + food.VitaminD + food.VitaminE + food.Folate) / 5
	minerals := (food.Calcium + food.Iron + food.Magnesium + food.Potassium + food.Zinc) / 5
	return DerivedFields{
		ProteinDensity:       services.RoundTo(food.Protein/food.Calories*100, 2),
		NutrientDensityScore: services.RoundTo((vitamins+minerals+food.Fiber)/food.Calories*1000, 2),
	}
}

// Portion is the nutrition of a quantity of food in grams.
type Portion struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
	Fiber    float64
	Sodium   float64
}

func ScalePortion(food models.Food, grams float64) (Portion, error) {
	if grams < 0 || math.IsNaN(grams) {
		return Portion{}, structs.BadInput("quantity must be >= 0, got %v", grams)
	}
	factor := grams / food.ReferenceServing()
	return Portion{
		Calories: food.Calories * factor,
		Protein:  food.Protein * factor,
		Carbs:    food.Carbohydrate * factor,
		Fat:      food.Fat * factor,
		Fiber:    food.Fiber * factor,
		Sodium:   food.Sodium * factor,
	}, nil
}

// BMR is the Harris-Benedict basal metabolic rate, nil when the user lacks
// weight, height, age or gender.
func BMR(user models.User) *float64 {
	if user.Weight == nil || user.Height == nil || user.Age == nil || user.Gender == "" {
		return nil
	}
	if *user.Weight <= 0 || *user.Height <= 0 || *user.Age <= 0 {
		return nil
	}
	w, h, a := *user.Weight, *user.Height, float64(*user.Age)
	var bmr float64
	if user.Gender == enums.GenderMale {
		bmr = 88.362 + 13.397*w + 4.799*h - 5.677*a
	} else {
		bmr = 447.593 + 9.247*w + 3.098*h - 4.330*a
	}
	bmr = services.RoundTo(bmr, 2)
	return &bmr
}

// DailyCalories applies the activity multiplier and goal adjustment to BMR.
func DailyCalories(user models.User) *int {
	bmr := BMR(user)
	if bmr == nil {
		return nil
	}
	multiplier, ok := activityMultipliers[user.ActivityLevel]
	if !ok {
		multiplier = activityMultipliers[enums.ActivityModerate]
	}
	calories := *bmr * multiplier
	switch user.Goal {
	case enums.GoalLoseWeight:
		calories *= 0.85
	case enums.GoalGainWeight:
		calories *= 1.15
	}
	rounded := services.Round(calories)
	return &rounded
}

// MacroTargets splits calories into protein, carbs and fat grams by goal.
func MacroTargets(calories int, goal string) (protein, carbs, fat float64) {
	proteinRatio, carbRatio, fatRatio := 0.25, 0.45, 0.30
	switch goal {
	case enums.GoalLoseWeight:
		proteinRatio, carbRatio, fatRatio = 0.30, 0.35, 0.35
	case enums.GoalBuildMuscle:
		proteinRatio, carbRatio, fatRatio = 0.30, 0.40, 0.30
	}
	c := float64(calories)
	return services.RoundTo(c*proteinRatio/4, 1), services.RoundTo(c*carbRatio/4, 1), services.RoundTo(c*fatRatio/9, 1)
}

func Goals(user models.User) structs.NutritionGoals {
	goals := structs.NutritionGoals{BMR: BMR(user), DailyCalories: DailyCalories(user)}
	if goals.DailyCalories != nil {
		goals.Protein, goals.Carbs, goals.Fat = MacroTargets(*goals.DailyCalories, user.Goal)
	}
	return goals
}

// Targets resolves the daily targets used for summaries: the profile when
// present, then the user's stored needs, then the defaults.
func Targets(user models.User, profile *models.NutritionalProfile) structs.NutritionTargets {
	if profile != nil {
		return structs.NutritionTargets{
			Calories: float64(profile.TargetCalories),
			Protein:  profile.TargetProtein,
			Carbs:    profile.TargetCarbs,
			Fat:      profile.TargetFat,
		}
	}
	targets := structs.NutritionTargets{Calories: DefaultCalories, Protein: DefaultProtein, Carbs: DefaultCarbs, Fat: DefaultFat}
	if user.DailyCalories != nil && *user.DailyCalories > 0 {
		targets.Calories = float64(*user.DailyCalories)
	}
	if user.DailyProtein != nil && *user.DailyProtein > 0 {
		targets.Protein = *user.DailyProtein
	}
	if user.DailyCarbs != nil && *user.DailyCarbs > 0 {
		targets.Carbs = *user.DailyCarbs
	}
	if user.DailyFat != nil && *user.DailyFat > 0 {
		targets.Fat = *user.DailyFat
	}
	return targets
}

// AdherenceScore weighs calorie and protein completion 40/60, each capped at
// 100%, rounded to one decimal.
func AdherenceScore(consumedCalories, consumedProtein float64, targets structs.NutritionTargets) float64 {
	calorie, protein := 0.0, 0.0
	if targets.Calories > 0 {
		calorie = math.Min(100, consumedCalories/targets.Calories*100)
	}
	if targets.Protein > 0 {
		protein = math.Min(100, consumedProtein/targets.Protein*100)
	}
	return services.RoundTo(math.Min(100, calorie*0.4+protein*0.6), 1)
}

// Percentages of each target consumed, rounded to one decimal.
func Percentages(consumed structs.NutritionTotals, targets structs.NutritionTargets) map[string]float64 {
	pct := func(c, t float64) float64 {
		if t <= 0 {
			return 0
		}
		return services.RoundTo(c/t*100, 1)
	}
	return map[string]float64{
		"calories": pct(consumed.Calories, targets.Calories),
		"protein":  pct(consumed.Protein, targets.Protein),
		"carbs":    pct(consumed.Carbs, targets.Carbs),
		"fat":      pct(consumed.Fat, targets.Fat),
	}
}

// Remaining is the unmet part of each target, never negative.
func Remaining(consumed structs.NutritionTotals, targets structs.NutritionTargets) structs.NutritionTotals {
	return structs.NutritionTotals{
		Calories: math.Max(0, targets.Calories-consumed.Calories),
		Protein:  math.Max(0, targets.Protein-consumed.Protein),
		Carbs:    math.Max(0, targets.Carbs-consumed.Carbs),
		Fat:      math.Max(0, targets.Fat-consumed.Fat),
	}
}
