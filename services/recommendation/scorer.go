package recommendation

import (
	"math"
	"strings"
	"time"

	"nutrimatch-go-worker/models"
	"nutrimatch-go-worker/services"
	"nutrimatch-go-worker/structs"
	"nutrimatch-go-worker/utils"
)

// Scorer rates one candidate food for one user. It only reads its inputs,
// so the same inputs always give the same record.
type Scorer struct {
	cfg Config
}

func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score combines the four sub-scores into a total in [0, 100]. current is the
// user's intake so far today and may be nil.
func (s *Scorer) Score(food models.Food, user structs.UserSnapshot, history *structs.HistorySnapshot, current *structs.NutritionTotals, mealType string, now time.Time) structs.ScoreRecord {
	if history == nil {
		history = structs.NewHistorySnapshot()
	}
	nutritionScore := s.NutritionScore(food, user.Profile, current)
	preferenceScore := s.PreferenceScore(food, history, mealType)
	varietyScore := s.VarietyScore(food, history, now)
	convenienceScore := s.ConvenienceScore(food)

	healthWeight, tasteWeight, proteinWeight := 1.0, 1.0, 1.0
	if p := user.Profile; p != nil {
		healthWeight, tasteWeight, proteinWeight = p.HealthImportance, p.TasteImportance, p.ProteinImportance
	}
	w := s.cfg.Weights
	total := nutritionScore*w.Nutrition*healthWeight +
		preferenceScore*w.Preference*tasteWeight +
		varietyScore*w.Variety +
		convenienceScore*w.Convenience
	if food.Protein >= w.HighProteinGrams {
		total *= 1 + w.HighProteinBonus*proteinWeight
	}

	return structs.ScoreRecord{
		Food:              food,
		TotalScore:        services.RoundTo(services.Clamp(total, 0, 100), 2),
		NutritionScore:    services.RoundTo(nutritionScore, 2),
		PreferenceScore:   services.RoundTo(preferenceScore, 2),
		VarietyScore:      services.RoundTo(varietyScore, 2),
		ConvenienceScore:  services.RoundTo(convenienceScore, 2),
		SuggestedQuantity: s.SuggestedQuantity(food, user.Profile, current),
		Reason:            s.Reason(food, nutritionScore, preferenceScore),
	}
}

// NutritionScore is neutral without a profile. Ratio-based terms are skipped
// for foods without calories.
func (s *Scorer) NutritionScore(food models.Food, profile *models.NutritionalProfile, current *structs.NutritionTotals) float64 {
	c := s.cfg.Nutrition
	if profile == nil {
		return c.NeutralScore
	}
	remainingCalories, remainingProtein := float64(profile.TargetCalories), profile.TargetProtein
	if current != nil {
		remainingCalories = math.Max(0, remainingCalories-current.Calories)
		remainingProtein = math.Max(0, remainingProtein-current.Protein)
	}

	score := 0.0
	if food.Calories > 0 {
		density := food.Protein / food.Calories * 100
		switch {
		case density >= c.ProteinDensityHigh:
			score += c.ProteinDensityHighBonus
		case density >= c.ProteinDensityMid:
			score += c.ProteinDensityMidBonus
		case density >= c.ProteinDensityLow:
			score += c.ProteinDensityLowBonus
		}

		switch {
		case food.Fiber >= c.FiberHigh:
			score += c.FiberHighBonus
		case food.Fiber >= c.FiberMid:
			score += c.FiberMidBonus
		}

		switch {
		case food.Sodium > c.SodiumHigh:
			score -= c.SodiumHighPenalty
		case food.Sodium > c.SodiumMid:
			score -= c.SodiumMidPenalty
		}

		if food.VitaminC > c.VitaminCMin {
			score += c.MicronutrientBonus
		}
		if food.Calcium > c.CalciumMin {
			score += c.MicronutrientBonus
		}
		if food.Iron > c.IronMin {
			score += c.MicronutrientBonus
		}
	}

	if remainingProtein > c.ProteinNeedRemaining && food.Protein >= c.ProteinNeedFood {
		score += c.ProteinNeedBonus
	}
	if remainingCalories < c.CalorieBudgetLow && food.Calories > c.CalorieHeavyFood {
		score -= c.CalorieHeavyPenalty
	}
	return services.Clamp(score, 0, 100)
}

// PreferenceScore prefers an explicit rating, then the learned preference,
// then the user's average rating in the food's category.
func (s *Scorer) PreferenceScore(food models.Food, history *structs.HistorySnapshot, mealType string) float64 {
	c := s.cfg.Preference
	score := c.NeutralScore
	if rating, ok := history.Ratings[food.ID]; ok {
		score = float64(rating.Rating) * c.RatingScale
		if mealType != "" && rating.MealType == mealType && rating.Rating >= c.MealMatchMin {
			score += c.MealMatchBonus
		}
	} else if learned, ok := history.Learned[food.ID]; ok {
		raw := c.NeutralScore + learned.Score*c.LearnedAmplitude
		score = c.NeutralScore + (raw-c.NeutralScore)*learned.Confidence
	} else if food.CategoryID != nil {
		if avg, ok := history.CategoryAverage[*food.CategoryID]; ok {
			score = avg * c.RatingScale
		}
	}
	return services.Clamp(score, 0, 100)
}

func (s *Scorer) VarietyScore(food models.Food, history *structs.HistorySnapshot, now time.Time) float64 {
	c := s.cfg.Variety
	last, ok := history.LastConsumed[food.ID]
	if !ok {
		return c.FreshScore
	}
	days := utils.DaysSince(last, now)
	switch {
	case days >= c.FreshDays:
		return c.FreshScore
	case days >= c.RecentDays:
		return c.RecentScore
	case days >= c.LatelyDays:
		return c.LatelyScore
	default:
		return c.TodayScore
	}
}

func (s *Scorer) ConvenienceScore(food models.Food) float64 {
	c := s.cfg.Convenience
	name := strings.ToLower(food.Name)
	score := c.BaseScore
	if containsAny(name, c.NaturalTerms) {
		score += c.NaturalBonus
	}
	if containsAny(name, c.ProcessedTerms) {
		score -= c.ProcessedPenalty
	}
	return services.Clamp(score, 0, 100)
}

// SuggestedQuantity aims the portion at the remaining calorie budget, or at
// a meal's share of the daily target when today's intake is unknown. Without
// a profile the reference serving is suggested.
func (s *Scorer) SuggestedQuantity(food models.Food, profile *models.NutritionalProfile, current *structs.NutritionTotals) float64 {
	c := s.cfg.Quantity
	grams := food.ReferenceServing()
	if profile != nil && food.Calories > 0 {
		target := float64(profile.TargetCalories) * c.MealShare
		if current != nil {
			target = math.Max(0, float64(profile.TargetCalories)-current.Calories)
		}
		grams = target / food.Calories * food.ReferenceServing()
	}
	return math.Round(services.Clamp(grams, c.MinGrams, c.MaxGrams))
}

func (s *Scorer) Reason(food models.Food, nutritionScore, preferenceScore float64) string {
	c := s.cfg.Reason
	var reasons []string
	if nutritionScore >= c.NutritionMin {
		if food.Protein >= s.cfg.Weights.HighProteinGrams {
			reasons = append(reasons, "an excellent source of protein")
		}
		if food.Fiber >= s.cfg.Nutrition.FiberHigh {
			reasons = append(reasons, "high in fiber")
		}
		if food.VitaminC > s.cfg.Nutrition.VitaminCMin {
			reasons = append(reasons, "rich in vitamin C")
		}
	}
	switch {
	case preferenceScore >= c.FavoriteMin:
		reasons = append(reasons, "a habitual favorite")
	case preferenceScore >= c.MatchMin:
		reasons = append(reasons, "a good match for your preferences")
	}
	if food.Calories <= c.LowCalorieMax {
		reasons = append(reasons, "low in calories")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "a balanced option for your goal")
	}
	return "Recommended because it is " + strings.Join(reasons, " and ") + "."
}

func containsAny(name string, terms []string) bool {
	for _, term := range terms {
		if term != "" && strings.Contains(name, strings.ToLower(term)) {
			return true
		}
	}
	return false
}
