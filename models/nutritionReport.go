package models

import "time"

type NutritionReport struct {
	ID         int64     `gorm:"column:id;primary_key" json:"id"`
	UserID     int64     `gorm:"column:user_id;index" json:"user_id"`
	Days       int       `gorm:"column:days" json:"days"`
	StartDate  time.Time `gorm:"column:start_date;type:date" json:"start_date"`
	EndDate    time.Time `gorm:"column:end_date;type:date" json:"end_date"`
	Properties string    `gorm:"column:properties;type:text" json:"properties"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName sets the insert table name for this struct type
func (n *NutritionReport) TableName() string {
	return "nutrition_reports"
}
