package models

import "time"

type RecommendationSession struct {
	ID               int64            `gorm:"column:id;primary_key" json:"id"`
	UserID           int64            `gorm:"column:user_id;index" json:"user_id"`
	RequestID        string           `gorm:"column:request_id" json:"request_id"`
	SessionType      string           `gorm:"column:session_type" json:"session_type"`
	MealType         string           `gorm:"column:meal_type" json:"meal_type"`
	CurrentNutrition string           `gorm:"column:current_nutrition;type:text" json:"current_nutrition"`
	UserPreferences  string           `gorm:"column:user_preferences;type:text" json:"user_preferences"`
	Recommendations  []Recommendation `gorm:"foreignkey:SessionID" json:"recommendations,omitempty"`
	CreatedAt        time.Time        `gorm:"column:created_at" json:"created_at"`
}

// TableName sets the insert table name for this struct type
func (r *RecommendationSession) TableName() string {
	return "recommendation_sessions"
}

// Recommendation is immutable except for UserFeedback, which moves from
// pending to a terminal value exactly once.
type Recommendation struct {
	ID                int64     `gorm:"column:id;primary_key" json:"id"`
	SessionID         int64     `gorm:"column:session_id;index" json:"session_id"`
	FoodID            int64     `gorm:"column:food_id" json:"food_id"`
	Food              *Food     `gorm:"foreignkey:FoodID" json:"food,omitempty"`
	TotalScore        float64   `gorm:"column:total_score" json:"total_score"`
	NutritionScore    float64   `gorm:"column:nutrition_score" json:"nutrition_score"`
	PreferenceScore   float64   `gorm:"column:preference_score" json:"preference_score"`
	VarietyScore      float64   `gorm:"column:variety_score" json:"variety_score"`
	ConvenienceScore  float64   `gorm:"column:convenience_score" json:"convenience_score"`
	SuggestedQuantity float64   `gorm:"column:suggested_quantity" json:"suggested_quantity"`
	Reason            string    `gorm:"column:reason;type:text" json:"reason"`
	UserFeedback      string    `gorm:"column:user_feedback" json:"user_feedback"`
	Position          int       `gorm:"column:position" json:"position"`
	CreatedAt         time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName sets the insert table name for this struct type
func (r *Recommendation) TableName() string {
	return "recommendations"
}
