package models

import "time"

type FoodCategory struct {
	ID          int64  `gorm:"column:id;primary_key" json:"id"`
	Name        string `gorm:"column:name" json:"name"`
	Description string `gorm:"column:description" json:"description"`
}

// TableName sets the insert table name for this struct type
func (f *FoodCategory) TableName() string {
	return "food_categories"
}

// Food nutrient fields are per ServingSize grams.
type Food struct {
	ID                   int64         `gorm:"column:id;primary_key" json:"id"`
	Name                 string        `gorm:"column:name;index" json:"name"`
	CategoryID           *int64        `gorm:"column:category_id" json:"category_id"`
	Category             *FoodCategory `gorm:"foreignkey:CategoryID" json:"category,omitempty"`
	ServingSize          int           `gorm:"column:serving_size;default:100" json:"serving_size"`
	Calories             float64       `gorm:"column:calories" json:"calories"`
	Protein              float64       `gorm:"column:protein" json:"protein"`
	Carbohydrate         float64       `gorm:"column:carbohydrate" json:"carbohydrate"`
	Fat                  float64       `gorm:"column:fat" json:"fat"`
	Fiber                float64       `gorm:"column:fiber" json:"fiber"`
	Sugar                float64       `gorm:"column:sugar" json:"sugar"`
	Sodium               float64       `gorm:"column:sodium" json:"sodium"`
	Potassium            float64       `gorm:"column:potassium" json:"potassium"`
	Calcium              float64       `gorm:"column:calcium" json:"calcium"`
	Iron                 float64       `gorm:"column:iron" json:"iron"`
	Magnesium            float64       `gorm:"column:magnesium" json:"magnesium"`
	Zinc                 float64       `gorm:"column:zinc" json:"zinc"`
	VitaminA             float64       `gorm:"column:vitamin_a" json:"vitamin_a"`
	VitaminC             float64       `gorm:"column:vitamin_c" json:"vitamin_c"`
	VitaminD             float64       `gorm:"column:vitamin_d" json:"vitamin_d"`
	VitaminE             float64       `gorm:"column:vitamin_e" json:"vitamin_e"`
	Folate               float64       `gorm:"column:folate" json:"folate"`
	ProteinDensity       float64       `gorm:"column:protein_density" json:"protein_density"`
	NutrientDensityScore float64       `gorm:"column:nutrient_density_score" json:"nutrient_density_score"`
	IsVerified           bool          `gorm:"column:is_verified;index" json:"is_verified"`
	DataSource           string        `gorm:"column:data_source" json:"data_source"`
	CreatedAt            time.Time     `gorm:"column:created_at" json:"created_at"`
	UpdatedAt            time.Time     `gorm:"column:updated_at" json:"updated_at"`
}

// TableName sets the insert table name for this struct type
func (f *Food) TableName() string {
	return "foods"
}

// ReferenceServing is the serving size in grams, 100 when unset.
func (f *Food) ReferenceServing() float64 {
	if f.ServingSize <= 0 {
		return 100
	}
	return float64(f.ServingSize)
}
