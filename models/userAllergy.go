package models

type UserAllergy struct {
	ID       int64  `gorm:"column:id;primary_key" json:"id"`
	UserID   int64  `gorm:"column:user_id;unique_index:idx_user_allergen" json:"user_id"`
	Allergen string `gorm:"column:allergen;unique_index:idx_user_allergen" json:"allergen"`
	Severity string `gorm:"column:severity;default:'moderate'" json:"severity"`
}

// TableName sets the insert table name for this struct type
func (u *UserAllergy) TableName() string {
	return "user_allergies"
}
