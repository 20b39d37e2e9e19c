package testutil

import (
	"testing"
	"time"

	"nutrimatch-go-worker/models"

	"github.com/jinzhu/gorm"
)

func SeedUser(tb testing.TB, db *gorm.DB, username string) models.User {
	tb.Helper()
	user := models.User{Username: username, ActivityLevel: "moderate", ProfileCompleted: true}
	if err := db.Create(&user).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return user
}

func SeedCategory(tb testing.TB, db *gorm.DB, name string) models.FoodCategory {
	tb.Helper()
	category := models.FoodCategory{Name: name}
	if err := db.Create(&category).Error; err != nil {
		tb.Fatalf("seed category: %v", err)
	}
	return category
}

// SeedFood stores food as given; verified defaults are the caller's choice.
func SeedFood(tb testing.TB, db *gorm.DB, food models.Food) models.Food {
	tb.Helper()
	if food.ServingSize == 0 {
		food.ServingSize = 100
	}
	if err := db.Create(&food).Error; err != nil {
		tb.Fatalf("seed food: %v", err)
	}
	return food
}

func SeedProfile(tb testing.TB, db *gorm.DB, profile models.NutritionalProfile) models.NutritionalProfile {
	tb.Helper()
	if err := db.Create(&profile).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	return profile
}

func SeedRating(tb testing.TB, db *gorm.DB, userID, foodID int64, rating int, mealType string) {
	tb.Helper()
	row := models.UserFoodRating{UserID: userID, FoodID: foodID, Rating: rating, MealType: mealType}
	if err := db.Create(&row).Error; err != nil {
		tb.Fatalf("seed rating: %v", err)
	}
}

func SeedConsumption(tb testing.TB, db *gorm.DB, userID, foodID int64, day time.Time, mealType string) {
	tb.Helper()
	row := models.FoodConsumption{UserID: userID, FoodID: foodID, Date: day, MealType: mealType, Quantity: 100, Timestamp: day}
	if err := db.Create(&row).Error; err != nil {
		tb.Fatalf("seed consumption: %v", err)
	}
}
