package models

import "time"

type UserPreference struct {
	ID                 int64     `gorm:"column:id;primary_key" json:"id"`
	UserID             int64     `gorm:"column:user_id;unique_index" json:"user_id"`
	IsVegetarian       bool      `gorm:"column:is_vegetarian" json:"is_vegetarian"`
	IsVegan            bool      `gorm:"column:is_vegan" json:"is_vegan"`
	IsGlutenFree       bool      `gorm:"column:is_gluten_free" json:"is_gluten_free"`
	IsDairyFree        bool      `gorm:"column:is_dairy_free" json:"is_dairy_free"`
	IsKeto             bool      `gorm:"column:is_keto" json:"is_keto"`
	PreferredMealCount int       `gorm:"column:preferred_meal_count;default:3" json:"preferred_meal_count"`
	MaxPrepTime        int       `gorm:"column:max_prep_time;default:30" json:"max_prep_time"`
	BudgetPreference   string    `gorm:"column:budget_preference;default:'medium'" json:"budget_preference"`
	CreatedAt          time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName sets the insert table name for this struct type
func (u *UserPreference) TableName() string {
	return "user_preferences"
}
