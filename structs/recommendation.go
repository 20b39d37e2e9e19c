package structs

import (
	"time"

	"nutrimatch-go-worker/models"
)

// NutritionTotals is what a user has consumed so far on one day.
type NutritionTotals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
	Sodium   float64 `json:"sodium"`
}

// UserSnapshot is read once per request. A nil Profile means the user has
// no nutritional profile and scoring falls back to neutral values.
type UserSnapshot struct {
	UserID      int64
	Profile     *models.NutritionalProfile
	Preferences models.UserPreference
	Allergens   []string
}

type RatingSnapshot struct {
	Rating   int
	MealType string
}

type LearnedSnapshot struct {
	Score      float64
	Confidence float64
}

// HistorySnapshot holds a user's rating and consumption history for a set
// of candidate foods.
type HistorySnapshot struct {
	Ratings         map[int64]RatingSnapshot
	Learned         map[int64]LearnedSnapshot
	LastConsumed    map[int64]time.Time
	CategoryAverage map[int64]float64
}

func NewHistorySnapshot() *HistorySnapshot {
	return &HistorySnapshot{
		Ratings:         make(map[int64]RatingSnapshot),
		Learned:         make(map[int64]LearnedSnapshot),
		LastConsumed:    make(map[int64]time.Time),
		CategoryAverage: make(map[int64]float64),
	}
}

// ScoreRecord is the scorer's output for one candidate food.
type ScoreRecord struct {
	Food              models.Food `json:"food"`
	TotalScore        float64     `json:"total_score"`
	NutritionScore    float64     `json:"nutrition_score"`
	PreferenceScore   float64     `json:"preference_score"`
	VarietyScore      float64     `json:"variety_score"`
	ConvenienceScore  float64     `json:"convenience_score"`
	SuggestedQuantity float64     `json:"suggested_quantity"`
	Reason            string      `json:"reason"`
}

type RecommendationRequest struct {
	UserID           int64            `json:"-" validate:"required"`
	SessionType      string           `json:"session_type" validate:"omitempty,oneof=daily_planning meal_suggestion nutrient_gap similar_foods"`
	MealType         string           `json:"meal_type" validate:"omitempty,oneof=breakfast lunch dinner snack"`
	Count            int              `json:"count" validate:"gte=0"`
	CurrentNutrition *NutritionTotals `json:"-"`
}

type FeedbackRequest struct {
	UserID           int64  `json:"-" validate:"required"`
	RecommendationID int64  `json:"-" validate:"required"`
	Feedback         string `json:"feedback" validate:"required,oneof=accepted rejected modified"`
}

type RecommendationItem struct {
	ID                int64       `json:"id"`
	Food              models.Food `json:"food"`
	TotalScore        float64     `json:"total_score"`
	NutritionScore    float64     `json:"nutrition_score"`
	PreferenceScore   float64     `json:"preference_score"`
	VarietyScore      float64     `json:"variety_score"`
	ConvenienceScore  float64     `json:"convenience_score"`
	SuggestedQuantity float64     `json:"suggested_quantity"`
	Reason            string      `json:"reason"`
	Position          int         `json:"position"`
}

type RecommendationResponse struct {
	SessionID       int64                `json:"session_id"`
	RequestID       string               `json:"request_id"`
	SessionType     string               `json:"session_type"`
	MealType        string               `json:"meal_type,omitempty"`
	Recommendations []RecommendationItem `json:"recommendations"`
	Targets         NutritionTargets     `json:"targets"`
	Consumed        NutritionTotals      `json:"consumed"`
	Remaining       NutritionTotals      `json:"remaining"`
}
