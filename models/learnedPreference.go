package models

import (
	"encoding/json"
	"time"
)

// LearnedPreference is the implicit preference of a user for a food, derived
// from consumption and feedback.
type LearnedPreference struct {
	ID                 int64      `gorm:"column:id;primary_key" json:"id"`
	UserID             int64      `gorm:"column:user_id;unique_index:idx_pref_user_food" json:"user_id"`
	FoodID             int64      `gorm:"column:food_id;unique_index:idx_pref_user_food" json:"food_id"`
	PreferenceScore    float64    `gorm:"column:preference_score" json:"preference_score"`
	FrequencyConsumed  int        `gorm:"column:frequency_consumed" json:"frequency_consumed"`
	LastConsumed       *time.Time `gorm:"column:last_consumed" json:"last_consumed"`
	AverageRating      *float64   `gorm:"column:average_rating" json:"average_rating"`
	PreferredMealTypes string     `gorm:"column:preferred_meal_types;type:text" json:"-"`
	Confidence         float64    `gorm:"column:confidence" json:"confidence"`
	UpdatedAt          time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

// TableName sets the insert table name for this struct type
func (l *LearnedPreference) TableName() string {
	return "user_food_preferences"
}

func (l *LearnedPreference) MealTypes() []string {
	var mealTypes []string
	if l.PreferredMealTypes == "" {
		return mealTypes
	}
	_ = json.Unmarshal([]byte(l.PreferredMealTypes), &mealTypes)
	return mealTypes
}

// AddMealType appends mealType if it is not already present and reports
// whether the set changed.
func (l *LearnedPreference) AddMealType(mealType string) bool {
	if mealType == "" {
		return false
	}
	mealTypes := l.MealTypes()
	for _, m := range mealTypes {
		if m == mealType {
			return false
		}
	}
	mealTypes = append(mealTypes, mealType)
	encoded, _ := json.Marshal(mealTypes)
	l.PreferredMealTypes = string(encoded)
	return true
}
