package models

import "time"

type NutritionalProfile struct {
	ID                int64     `gorm:"column:id;primary_key" json:"id"`
	UserID            int64     `gorm:"column:user_id;unique_index" json:"user_id"`
	TargetCalories    int       `gorm:"column:target_calories" json:"target_calories"`
	TargetProtein     float64   `gorm:"column:target_protein" json:"target_protein"`
	TargetCarbs       float64   `gorm:"column:target_carbs" json:"target_carbs"`
	TargetFat         float64   `gorm:"column:target_fat" json:"target_fat"`
	TargetFiber       float64   `gorm:"column:target_fiber" json:"target_fiber"`
	MaxSodium         float64   `gorm:"column:max_sodium" json:"max_sodium"`
	MinCalcium        float64   `gorm:"column:min_calcium" json:"min_calcium"`
	MinIron           float64   `gorm:"column:min_iron" json:"min_iron"`
	MinVitaminC       float64   `gorm:"column:min_vitamin_c" json:"min_vitamin_c"`
	ProteinImportance float64   `gorm:"column:protein_importance" json:"protein_importance"`
	HealthImportance  float64   `gorm:"column:health_importance" json:"health_importance"`
	TasteImportance   float64   `gorm:"column:taste_importance" json:"taste_importance"`
	CreatedAt         time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName sets the insert table name for this struct type
func (n *NutritionalProfile) TableName() string {
	return "nutritional_profiles"
}
