package report

import (
	"context"
	"fmt"
	"time"

	"nutrimatch-go-worker/models"
	"nutrimatch-go-worker/services"
	"nutrimatch-go-worker/services/nutrition"
	"nutrimatch-go-worker/structs"
	"nutrimatch-go-worker/utils"

	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

const (
	DefaultDays = 7
	MaxDays     = 90

	frequentFoodLimit = 5

	consistentAdherence   = 70.0
	balancedScore         = 70.0
	highProteinRatio      = 0.8
	lowAdherenceThreshold = 60.0
)

type ProfileStore interface {
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	GetProfile(ctx context.Context, userID int64) (*models.NutritionalProfile, error)
}

// Service analyses a user's recent daily logs.
type Service struct {
	db       *gorm.DB
	profiles ProfileStore
	log      *logrus.Entry
	now      func() time.Time
}

func NewService(db *gorm.DB, profiles ProfileStore, log *logrus.Entry) *Service {
	return &Service{db: db, profiles: profiles, log: log, now: time.Now}
}

// ClampDays maps a missing window to the default and caps long ones.
func ClampDays(days int) int {
	switch {
	case days <= 0:
		return DefaultDays
	case days > MaxDays:
		return MaxDays
	}
	return days
}

type frequentFoodRow struct {
	FoodID int64
	Name   string
	Count  int
}

// Insights summarizes the last days days ending today. HasData is false when
// the user logged nothing in the window.
func (s *Service) Insights(ctx context.Context, userID int64, days int) (*structs.NutritionInsights, error) {
	days = ClampDays(days)
	user, err := s.profiles.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	targets := nutrition.Targets(*user, profile)

	end := utils.DayOf(s.now())
	start := end.AddDate(0, 0, -(days - 1))
	insights := &structs.NutritionInsights{
		Days:          days,
		StartDate:     start.Format(utils.DateLayout),
		EndDate:       end.Format(utils.DateLayout),
		FrequentFoods: []structs.FrequentFood{},
		Improvements:  []structs.Improvement{},
		DailyData:     []structs.DailyInsight{},
	}

	var dailyLogs []models.DailyNutritionLog
	if err := s.db.Where("user_id = ? AND date BETWEEN ? AND ?", userID, start, end).Order("date").Find(&dailyLogs).Error; err != nil {
		return nil, fmt.Errorf("daily logs of user %d: %w", userID, err)
	}
	if len(dailyLogs) == 0 {
		return insights, nil
	}
	insights.HasData = true

	var calories, protein, adherence float64
	for _, dailyLog := range dailyLogs {
		calories += dailyLog.ConsumedCalories
		protein += dailyLog.ConsumedProtein
		if dailyLog.AdherenceScore != nil {
			adherence += *dailyLog.AdherenceScore
			if *dailyLog.AdherenceScore >= consistentAdherence {
				insights.Patterns.ConsistentDays++
			}
		}
		if dailyLog.ConsumedProtein >= targets.Protein*highProteinRatio {
			insights.Patterns.HighProteinDays++
		}
		if dailyLog.BalanceScore != nil && *dailyLog.BalanceScore >= balancedScore {
			insights.Patterns.BalancedDays++
		}
		insights.DailyData = append(insights.DailyData, structs.DailyInsight{
			Date:      utils.CalendarDay(dailyLog.Date).Format(utils.DateLayout),
			Calories:  dailyLog.ConsumedCalories,
			Protein:   dailyLog.ConsumedProtein,
			Adherence: dailyLog.AdherenceScore,
		})
	}
	n := float64(len(dailyLogs))
	insights.Averages = structs.InsightAverages{
		Calories:       services.RoundTo(calories/n, 1),
		Protein:        services.RoundTo(protein/n, 1),
		AdherenceScore: services.RoundTo(adherence/n, 1),
	}

	if protein/n < targets.Protein*highProteinRatio {
		insights.Improvements = append(insights.Improvements, structs.Improvement{
			Area:       "protein",
			Message:    "Consider increasing your protein intake",
			Suggestion: "Include more lean meat, eggs or legumes",
		})
	}
	if adherence/n < lowAdherenceThreshold {
		insights.Improvements = append(insights.Improvements, structs.Improvement{
			Area:       "consistency",
			Message:    "Work on being more consistent with your goals",
			Suggestion: "Plan your meals ahead of time",
		})
	}

	var rows []frequentFoodRow
	err = s.db.Table("food_consumptions").
		Select("food_consumptions.food_id AS food_id, foods.name AS name, COUNT(*) AS count").
		Joins("JOIN foods ON foods.id = food_consumptions.food_id").
		Where("food_consumptions.user_id = ? AND food_consumptions.date BETWEEN ? AND ?", userID, start, end).
		Group("food_consumptions.food_id, foods.name").
		Order("count DESC, food_consumptions.food_id").
		Limit(frequentFoodLimit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("frequent foods of user %d: %w", userID, err)
	}
	for _, row := range rows {
		insights.FrequentFoods = append(insights.FrequentFoods, structs.FrequentFood{FoodID: row.FoodID, Name: row.Name, Count: row.Count})
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "days": days, "logs": len(dailyLogs)}).Debug("insights built")
	return insights, nil
}
