package models

import "time"

// FoodConsumption is immutable once created; amounts are scaled from the
// food's reference serving.
type FoodConsumption struct {
	ID               int64     `gorm:"column:id;primary_key" json:"id"`
	DailyLogID       int64     `gorm:"column:daily_log_id;index" json:"daily_log_id"`
	UserID           int64     `gorm:"column:user_id;index:idx_consumption_user_food" json:"user_id"`
	FoodID           int64     `gorm:"column:food_id;index:idx_consumption_user_food" json:"food_id"`
	Food             *Food     `gorm:"foreignkey:FoodID" json:"food,omitempty"`
	Date             time.Time `gorm:"column:date;type:date" json:"date"`
	Quantity         float64   `gorm:"column:quantity" json:"quantity"`
	MealType         string    `gorm:"column:meal_type" json:"meal_type"`
	CaloriesConsumed float64   `gorm:"column:calories_consumed" json:"calories_consumed"`
	ProteinConsumed  float64   `gorm:"column:protein_consumed" json:"protein_consumed"`
	CarbsConsumed    float64   `gorm:"column:carbs_consumed" json:"carbs_consumed"`
	FatConsumed      float64   `gorm:"column:fat_consumed" json:"fat_consumed"`
	FiberConsumed    float64   `gorm:"column:fiber_consumed" json:"fiber_consumed"`
	SodiumConsumed   float64   `gorm:"column:sodium_consumed" json:"sodium_consumed"`
	Timestamp        time.Time `gorm:"column:timestamp" json:"timestamp"`
}

// TableName sets the insert table name for this struct type
func (f *FoodConsumption) TableName() string {
	return "food_consumptions"
}
