package models

import "time"

type UserFoodRating struct {
	ID        int64     `gorm:"column:id;primary_key" json:"id"`
	UserID    int64     `gorm:"column:user_id;unique_index:idx_rating_user_food" json:"user_id"`
	FoodID    int64     `gorm:"column:food_id;unique_index:idx_rating_user_food" json:"food_id"`
	Rating    int       `gorm:"column:rating" json:"rating"`
	Notes     string    `gorm:"column:notes" json:"notes"`
	MealType  string    `gorm:"column:meal_type" json:"meal_type"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName sets the insert table name for this struct type
func (u *UserFoodRating) TableName() string {
	return "user_food_ratings"
}
