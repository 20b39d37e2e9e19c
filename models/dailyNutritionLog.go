package models

import "time"

type DailyNutritionLog struct {
	ID               int64     `gorm:"column:id;primary_key" json:"id"`
	UserID           int64     `gorm:"column:user_id;unique_index:idx_daily_log_user_date" json:"user_id"`
	Date             time.Time `gorm:"column:date;type:date;unique_index:idx_daily_log_user_date" json:"date"`
	ConsumedCalories float64   `gorm:"column:consumed_calories" json:"consumed_calories"`
	ConsumedProtein  float64   `gorm:"column:consumed_protein" json:"consumed_protein"`
	ConsumedCarbs    float64   `gorm:"column:consumed_carbs" json:"consumed_carbs"`
	ConsumedFat      float64   `gorm:"column:consumed_fat" json:"consumed_fat"`
	ConsumedFiber    float64   `gorm:"column:consumed_fiber" json:"consumed_fiber"`
	ConsumedSodium   float64   `gorm:"column:consumed_sodium" json:"consumed_sodium"`
	WaterGlasses     int       `gorm:"column:water_glasses" json:"water_glasses"`
	AdherenceScore   *float64  `gorm:"column:adherence_score" json:"adherence_score"`
	BalanceScore     *float64  `gorm:"column:balance_score" json:"balance_score"`
	CreatedAt        time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName sets the insert table name for this struct type
func (d *DailyNutritionLog) TableName() string {
	return "daily_nutrition_logs"
}
