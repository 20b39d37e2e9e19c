package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"nutrimatch-go-worker/models"
	"nutrimatch-go-worker/structs"
	"nutrimatch-go-worker/utils"

	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

// Service reads a user's rating, learned preference and consumption
// history. It never writes.
type Service struct {
	db  *gorm.DB
	log *logrus.Entry
}

func NewService(db *gorm.DB, log *logrus.Entry) *Service {
	return &Service{db: db, log: log}
}

type ratingRow struct {
	FoodID     int64
	Rating     int
	MealType   string
	CategoryID *int64
}

type consumedRow struct {
	FoodID int64
	Date   time.Time
}

// LastConsumed returns the most recent day the user ate the food, nil if never.
func (s *Service) LastConsumed(ctx context.Context, userID, foodID int64) (*time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var consumption models.FoodConsumption
	err := s.db.Where("user_id = ? AND food_id = ?", userID, foodID).Order("date desc, id desc").First(&consumption).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last consumption of food %d by user %d: %w", foodID, userID, err)
	}
	day := utils.CalendarDay(consumption.Date)
	return &day, nil
}

// RatingsAverage is the user's mean explicit rating across a category, nil
// when the user rated nothing in it.
func (s *Service) RatingsAverage(ctx context.Context, userID, categoryID int64) (*float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var avg sql.NullFloat64
	row := s.db.Table("user_food_ratings").
		Select("AVG(user_food_ratings.rating)").
		Joins("JOIN foods ON foods.id = user_food_ratings.food_id").
		Where("user_food_ratings.user_id = ? AND foods.category_id = ?", userID, categoryID).
		Row()
	if err := row.Scan(&avg); err != nil {
		return nil, fmt.Errorf("average rating of user %d in category %d: %w", userID, categoryID, err)
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

// Snapshot loads everything the scorer needs about the user's past for the
// given candidate foods with a fixed number of queries.
func (s *Service) Snapshot(ctx context.Context, userID int64, foods []models.Food) (*structs.HistorySnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snapshot := structs.NewHistorySnapshot()

	var ratings []ratingRow
	err := s.db.Table("user_food_ratings").
		Select("user_food_ratings.food_id, user_food_ratings.rating, user_food_ratings.meal_type, foods.category_id").
		Joins("LEFT JOIN foods ON foods.id = user_food_ratings.food_id").
		Where("user_food_ratings.user_id = ?", userID).
		Scan(&ratings).Error
	if err != nil {
		return nil, fmt.Errorf("ratings of user %d: %w", userID, err)
	}
	sums := make(map[int64]float64)
	counts := make(map[int64]int)
	for _, r := range ratings {
		snapshot.Ratings[r.FoodID] = structs.RatingSnapshot{Rating: r.Rating, MealType: r.MealType}
		if r.CategoryID != nil {
			sums[*r.CategoryID] += float64(r.Rating)
			counts[*r.CategoryID]++
		}
	}
	for categoryID, sum := range sums {
		snapshot.CategoryAverage[categoryID] = sum / float64(counts[categoryID])
	}

	if len(foods) == 0 {
		return snapshot, nil
	}
	ids := make([]int64, 0, len(foods))
	for _, food := range foods {
		ids = append(ids, food.ID)
	}

	var learned []models.LearnedPreference
	if err := s.db.Where("user_id = ? AND food_id IN (?)", userID, ids).Find(&learned).Error; err != nil {
		return nil, fmt.Errorf("learned preferences of user %d: %w", userID, err)
	}
	for _, l := range learned {
		snapshot.Learned[l.FoodID] = structs.LearnedSnapshot{Score: l.PreferenceScore, Confidence: l.Confidence}
	}

	var consumed []consumedRow
	err = s.db.Table("food_consumptions").
		Select("food_id, date").
		Where("user_id = ? AND food_id IN (?)", userID, ids).
		Scan(&consumed).Error
	if err != nil {
		return nil, fmt.Errorf("consumptions of user %d: %w", userID, err)
	}
	for _, c := range consumed {
		day := utils.CalendarDay(c.Date)
		if last, ok := snapshot.LastConsumed[c.FoodID]; !ok || day.After(last) {
			snapshot.LastConsumed[c.FoodID] = day
		}
	}

	s.log.WithFields(logrus.Fields{
		"task":       "history",
		"user_id":    userID,
		"ratings":    len(snapshot.Ratings),
		"learned":    len(snapshot.Learned),
		"consumed":   len(snapshot.LastConsumed),
		"candidates": len(foods),
	}).Debug("history snapshot loaded")
	return snapshot, nil
}
