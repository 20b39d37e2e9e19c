package models

import "time"

type User struct {
	ID               int64     `gorm:"column:id;primary_key" json:"id"`
	Username         string    `gorm:"column:username;unique_index" json:"username"`
	Email            string    `gorm:"column:email" json:"email"`
	Age              *int      `gorm:"column:age" json:"age"`
	Weight           *float64  `gorm:"column:weight" json:"weight"`
	Height           *float64  `gorm:"column:height" json:"height"`
	Gender           string    `gorm:"column:gender" json:"gender"`
	Goal             string    `gorm:"column:goal" json:"goal"`
	ActivityLevel    string    `gorm:"column:activity_level;default:'moderate'" json:"activity_level"`
	DailyCalories    *int      `gorm:"column:daily_calories" json:"daily_calories"`
	DailyProtein     *float64  `gorm:"column:daily_protein" json:"daily_protein"`
	DailyCarbs       *float64  `gorm:"column:daily_carbs" json:"daily_carbs"`
	DailyFat         *float64  `gorm:"column:daily_fat" json:"daily_fat"`
	ProfileCompleted bool      `gorm:"column:profile_completed" json:"profile_completed"`
	CreatedAt        time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName sets the insert table name for this struct type
func (u *User) TableName() string {
	return "users"
}
