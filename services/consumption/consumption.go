package consumption

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"nutrimatch-go-worker/database"
	"nutrimatch-go-worker/enums"
	"nutrimatch-go-worker/models"
	"nutrimatch-go-worker/services"
	"nutrimatch-go-worker/services/catalog"
	"nutrimatch-go-worker/services/metrics"
	"nutrimatch-go-worker/services/nutrition"
	"nutrimatch-go-worker/structs"
	"nutrimatch-go-worker/utils"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

const retryAttempTimes = 3

type ProfileStore interface {
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	GetProfile(ctx context.Context, userID int64) (*models.NutritionalProfile, error)
	EnsureProfile(ctx context.Context, userID int64) (*models.NutritionalProfile, bool, error)
}

type ConsumptionLearner interface {
	LearnFromConsumption(ctx context.Context, event structs.ConsumptionEvent) error
}

type Publisher interface {
	Publish(queue string, body []byte) error
}

// Service logs meals and ratings and summarizes a user's day.
type Service struct {
	db        *gorm.DB
	foods     catalog.FoodCatalog
	profiles  ProfileStore
	learner   ConsumptionLearner
	publisher Publisher
	log       *logrus.Entry
	now       func() time.Time
}

// NewService returns a Service. With a nil publisher consumption events go
// to the learner directly.
func NewService(db *gorm.DB, foods catalog.FoodCatalog, profiles ProfileStore, learner ConsumptionLearner, publisher Publisher, log *logrus.Entry) *Service {
	return &Service{db: db, foods: foods, profiles: profiles, learner: learner, publisher: publisher, log: log, now: time.Now}
}

// LogConsumption records a meal and adds it to the day's totals in one
// transaction, then lets the preference learner know.
func (s *Service) LogConsumption(ctx context.Context, req structs.ConsumptionRequest) (*structs.ConsumptionResult, error) {
	if err := utils.Validate(req); err != nil {
		return nil, err
	}
	now := s.now()
	day := utils.DayOf(now)
	if req.Date != "" {
		parsed, err := utils.ParseDay(req.Date)
		if err != nil {
			return nil, structs.BadInput("date %q is not YYYY-MM-DD", req.Date)
		}
		day = parsed
	}

	food, err := s.foods.Get(ctx, req.FoodID)
	if err != nil {
		return nil, err
	}
	portion, err := nutrition.ScalePortion(*food, req.Quantity)
	if err != nil {
		return nil, err
	}
	user, err := s.profiles.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	profile, _, err := s.profiles.EnsureProfile(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	targets := nutrition.Targets(*user, profile)

	consumption := models.FoodConsumption{
		UserID:           req.UserID,
		FoodID:           food.ID,
		Date:             day,
		Quantity:         req.Quantity,
		MealType:         req.MealType,
		CaloriesConsumed: portion.Calories,
		ProteinConsumed:  portion.Protein,
		CarbsConsumed:    portion.Carbs,
		FatConsumed:      portion.Fat,
		FiberConsumed:    portion.Fiber,
		SodiumConsumed:   portion.Sodium,
		Timestamp:        now,
	}
	logwg := s.log.WithFields(logrus.Fields{"task": "consumption", "user_id": req.UserID, "food_id": food.ID, "meal_type": req.MealType, "date": day.Format(utils.DateLayout)})

	var dailyLog models.DailyNutritionLog
	for attempt := 1; attempt <= retryAttempTimes; attempt++ {
		consumption.ID, consumption.DailyLogID = 0, 0
		if dailyLog, err = s.record(ctx, &consumption, targets); err == nil {
			break
		}
		if ctx.Err() != nil {
			break
		}
		logwg.WithFields(logrus.Fields{"error_message": err.Error(), "attemp_times": attempt}).Warn("record consumption failed, retrying")
	}
	if err != nil {
		logwg.WithField("error_message", err.Error()).Error("record consumption failed")
		return nil, err
	}
	metrics.ConsumptionsLogged.WithLabelValues(req.MealType).Inc()
	logwg.WithFields(logrus.Fields{"consumption_id": consumption.ID, "calories": services.RoundTo(portion.Calories, 1)}).Info("consumption logged")

	s.notifyLearner(ctx, structs.ConsumptionEvent{
		MessageID:  uuid.New().String(),
		UserID:     req.UserID,
		FoodID:     food.ID,
		MealType:   req.MealType,
		ConsumedAt: now.Unix(),
	}, logwg)

	return &structs.ConsumptionResult{
		ConsumptionID: consumption.ID,
		Calories:      services.RoundTo(portion.Calories, 1),
		Protein:       services.RoundTo(portion.Protein, 1),
		Carbs:         services.RoundTo(portion.Carbs, 1),
		Fat:           services.RoundTo(portion.Fat, 1),
		DailyTotals: structs.DailyTotals{
			Calories:       services.RoundTo(dailyLog.ConsumedCalories, 1),
			Protein:        services.RoundTo(dailyLog.ConsumedProtein, 1),
			Carbs:          services.RoundTo(dailyLog.ConsumedCarbs, 1),
			Fat:            services.RoundTo(dailyLog.ConsumedFat, 1),
			AdherenceScore: dailyLog.AdherenceScore,
		},
	}, nil
}

// record inserts the consumption and updates the daily log totals
// atomically.
func (s *Service) record(ctx context.Context, consumption *models.FoodConsumption, targets structs.NutritionTargets) (models.DailyNutritionLog, error) {
	var dailyLog models.DailyNutritionLog
	if err := ctx.Err(); err != nil {
		return dailyLog, err
	}
	tx := s.db.Begin()
	if tx.Error != nil {
		return dailyLog, tx.Error
	}
	err := database.LockForUpdate(tx).Where("user_id = ? AND date = ?", consumption.UserID, consumption.Date).First(&dailyLog).Error
	if gorm.IsRecordNotFoundError(err) {
		dailyLog = models.DailyNutritionLog{UserID: consumption.UserID, Date: consumption.Date}
		err = tx.Create(&dailyLog).Error
	}
	if err != nil {
		tx.Rollback()
		return dailyLog, fmt.Errorf("daily log of user %d: %w", consumption.UserID, err)
	}

	consumption.DailyLogID = dailyLog.ID
	if err := tx.Create(consumption).Error; err != nil {
		tx.Rollback()
		return dailyLog, fmt.Errorf("create consumption: %w", err)
	}
	dailyLog.ConsumedCalories += consumption.CaloriesConsumed
	dailyLog.ConsumedProtein += consumption.ProteinConsumed
	dailyLog.ConsumedCarbs += consumption.CarbsConsumed
	dailyLog.ConsumedFat += consumption.FatConsumed
	dailyLog.ConsumedFiber += consumption.FiberConsumed
	dailyLog.ConsumedSodium += consumption.SodiumConsumed
	adherence := nutrition.AdherenceScore(dailyLog.ConsumedCalories, dailyLog.ConsumedProtein, targets)
	dailyLog.AdherenceScore = &adherence
	if err := tx.Save(&dailyLog).Error; err != nil {
		tx.Rollback()
		return dailyLog, fmt.Errorf("update daily log %d: %w", dailyLog.ID, err)
	}
	if err := tx.Commit().Error; err != nil {
		return dailyLog, fmt.Errorf("commit consumption: %w", err)
	}
	return dailyLog, nil
}

func (s *Service) notifyLearner(ctx context.Context, event structs.ConsumptionEvent, logwg *logrus.Entry) {
	if s.publisher != nil {
		body, _ := json.Marshal(event)
		err := s.publisher.Publish(enums.ConsumptionQueue, body)
		if err == nil {
			return
		}
		logwg.WithField("error_message", err.Error()).Warn("publish consumption failed, learning directly")
	}
	if err := s.learner.LearnFromConsumption(ctx, event); err != nil {
		logwg.WithField("error_message", err.Error()).Error("learn from consumption failed")
	}
}

// RateFood creates or replaces the user's rating of a food. The bool reports
// whether the rating is new.
func (s *Service) RateFood(ctx context.Context, req structs.RatingRequest) (*models.UserFoodRating, bool, error) {
	if err := utils.Validate(req); err != nil {
		return nil, false, err
	}
	if _, err := s.foods.Get(ctx, req.FoodID); err != nil {
		return nil, false, err
	}
	if _, err := s.profiles.GetUser(ctx, req.UserID); err != nil {
		return nil, false, err
	}

	var rating models.UserFoodRating
	var err error
	for attempt := 1; attempt <= retryAttempTimes; attempt++ {
		err = s.db.Where("user_id = ? AND food_id = ?", req.UserID, req.FoodID).First(&rating).Error
		if gorm.IsRecordNotFoundError(err) {
			rating = models.UserFoodRating{UserID: req.UserID, FoodID: req.FoodID, Rating: req.Rating, MealType: req.MealType, Notes: req.Notes}
			if err = s.db.Create(&rating).Error; err == nil {
				return &rating, true, nil
			}
			// a concurrent create won; update it on the next attempt
			continue
		}
		if err != nil {
			break
		}
		updates := map[string]interface{}{"rating": req.Rating, "meal_type": req.MealType, "notes": req.Notes}
		if err = s.db.Model(&rating).Updates(updates).Error; err == nil {
			rating.Rating, rating.MealType, rating.Notes = req.Rating, req.MealType, req.Notes
			return &rating, false, nil
		}
	}
	return nil, false, fmt.Errorf("rate food %d for user %d: %w", req.FoodID, req.UserID, err)
}

// DailySummary reports a day's intake against the user's targets. An empty
// date means today.
func (s *Service) DailySummary(ctx context.Context, userID int64, date string) (*structs.DailySummary, error) {
	today := utils.DayOf(s.now())
	day := today
	if date != "" {
		parsed, err := utils.ParseDay(date)
		if err != nil {
			return nil, structs.BadInput("date %q is not YYYY-MM-DD", date)
		}
		day = parsed
	}
	user, err := s.profiles.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &structs.DailySummary{
		Date:    day.Format(utils.DateLayout),
		IsToday: day.Equal(today),
		Targets: nutrition.Targets(*user, profile),
	}
	var dailyLog models.DailyNutritionLog
	err = s.db.Where("user_id = ? AND date = ?", userID, day).First(&dailyLog).Error
	switch {
	case err == nil:
		summary.HasLog = true
		summary.Adherence = dailyLog.AdherenceScore
		summary.Consumed = structs.NutritionTotals{
			Calories: dailyLog.ConsumedCalories,
			Protein:  dailyLog.ConsumedProtein,
			Carbs:    dailyLog.ConsumedCarbs,
			Fat:      dailyLog.ConsumedFat,
			Fiber:    dailyLog.ConsumedFiber,
			Sodium:   dailyLog.ConsumedSodium,
		}
	case !gorm.IsRecordNotFoundError(err):
		return nil, fmt.Errorf("daily log of user %d: %w", userID, err)
	}
	summary.Percentages = nutrition.Percentages(summary.Consumed, summary.Targets)
	return summary, nil
}
