package structs

import "nutrimatch-go-worker/models"

type NutritionTargets struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// NutritionGoals are derived from a user's body metrics and goal.
type NutritionGoals struct {
	BMR           *float64 `json:"bmr"`
	DailyCalories *int     `json:"daily_calories"`
	Protein       float64  `json:"protein"`
	Carbs         float64  `json:"carbs"`
	Fat           float64  `json:"fat"`
}

type ConsumptionRequest struct {
	UserID   int64   `json:"-" validate:"required"`
	FoodID   int64   `json:"food_id" validate:"required"`
	Quantity float64 `json:"quantity" validate:"gte=0"`
	MealType string  `json:"meal_type" validate:"required,oneof=breakfast lunch dinner snack"`
	Date     string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type RatingRequest struct {
	UserID   int64  `json:"-" validate:"required"`
	FoodID   int64  `json:"food_id" validate:"required"`
	Rating   int    `json:"rating" validate:"min=1,max=5"`
	MealType string `json:"meal_type" validate:"omitempty,oneof=breakfast lunch dinner snack"`
	Notes    string `json:"notes"`
}

type DailyTotals struct {
	Calories       float64  `json:"calories"`
	Protein        float64  `json:"protein"`
	Carbs          float64  `json:"carbs"`
	Fat            float64  `json:"fat"`
	AdherenceScore *float64 `json:"adherence_score"`
}

type ConsumptionResult struct {
	ConsumptionID int64       `json:"consumption_id"`
	Calories      float64     `json:"calories_consumed"`
	Protein       float64     `json:"protein_consumed"`
	Carbs         float64     `json:"carbs_consumed"`
	Fat           float64     `json:"fat_consumed"`
	DailyTotals   DailyTotals `json:"daily_totals"`
}

type DailySummary struct {
	Date        string             `json:"date"`
	HasLog      bool               `json:"has_log"`
	IsToday     bool               `json:"is_today"`
	Consumed    NutritionTotals    `json:"consumed"`
	Targets     NutritionTargets   `json:"targets"`
	Percentages map[string]float64 `json:"percentages"`
	Adherence   *float64           `json:"adherence_score"`
}

type InsightAverages struct {
	Calories       float64 `json:"calories"`
	Protein        float64 `json:"protein"`
	AdherenceScore float64 `json:"adherence_score"`
}

type InsightPatterns struct {
	ConsistentDays  int `json:"consistent_days"`
	HighProteinDays int `json:"high_protein_days"`
	BalancedDays    int `json:"balanced_days"`
}

type FrequentFood struct {
	FoodID int64  `json:"food_id"`
	Name   string `json:"name"`
	Count  int    `json:"count"`
}

type Improvement struct {
	Area       string `json:"area"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
}

type DailyInsight struct {
	Date      string   `json:"date"`
	Calories  float64  `json:"calories"`
	Protein   float64  `json:"protein"`
	Adherence *float64 `json:"adherence"`
}

type NutritionInsights struct {
	Days          int             `json:"days"`
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date"`
	HasData       bool            `json:"has_data"`
	Averages      InsightAverages `json:"averages"`
	Patterns      InsightPatterns `json:"patterns"`
	FrequentFoods []FrequentFood  `json:"frequent_foods"`
	Improvements  []Improvement   `json:"improvement_recommendations"`
	DailyData     []DailyInsight  `json:"daily_data"`
}

// ProfileUpdateRequest changes the scoring weights that are set and, when
// RecalculateGoals is true, recomputes the user's daily needs first.
type ProfileUpdateRequest struct {
	ProteinImportance *float64 `json:"protein_importance"`
	HealthImportance  *float64 `json:"health_importance"`
	TasteImportance   *float64 `json:"taste_importance"`
	RecalculateGoals  bool     `json:"recalculate_goals"`
}

type ProfileResponse struct {
	Profile *models.NutritionalProfile `json:"profile"`
	Goals   *NutritionGoals            `json:"goals,omitempty"`
	Created bool                       `json:"created"`
}
