package recommendation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"nutrimatch-go-worker/enums"
	"nutrimatch-go-worker/models"
	"nutrimatch-go-worker/services/metrics"
	"nutrimatch-go-worker/services/nutrition"
	"nutrimatch-go-worker/structs"
	"nutrimatch-go-worker/utils"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	gormbulk "github.com/t-tiger/gorm-bulk-insert/v2"
)

// ProfileStore loads users and creates missing nutritional profiles.
type ProfileStore interface {
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	EnsureProfile(ctx context.Context, userID int64) (*models.NutritionalProfile, bool, error)
}

// FeedbackLearner applies a feedback kind to the learned preferences.
type FeedbackLearner interface {
	ApplyFeedback(ctx context.Context, userID, foodID int64, kind string) error
}

// Publisher hands a message to a queue.
type Publisher interface {
	Publish(queue string, body []byte) error
}

// Service runs the engine for a request and keeps the resulting session.
type Service struct {
	db        *gorm.DB
	engine    *Engine
	profiles  ProfileStore
	learner   FeedbackLearner
	publisher Publisher
	log       *logrus.Entry
	now       func() time.Time
}

// NewService wires the engine to storage. With a nil publisher feedback is
// applied to the learner directly.
func NewService(db *gorm.DB, engine *Engine, profiles ProfileStore, learner FeedbackLearner, publisher Publisher, log *logrus.Entry) *Service {
	return &Service{db: db, engine: engine, profiles: profiles, learner: learner, publisher: publisher, log: log, now: time.Now}
}

// Recommend builds and stores a recommendation session. Today's intake is
// read from the daily log unless the request carries it.
func (s *Service) Recommend(ctx context.Context, req structs.RecommendationRequest) (*structs.RecommendationResponse, error) {
	if req.SessionType == "" {
		req.SessionType = enums.SessionMealSuggestion
	}
	if err := utils.Validate(req); err != nil {
		return nil, err
	}
	req.Count = s.engine.ClampCount(req.Count)

	user, err := s.profiles.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if !user.ProfileCompleted {
		return nil, structs.BadInput("profile of user %d is not completed", req.UserID)
	}
	profile, _, err := s.profiles.EnsureProfile(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if req.CurrentNutrition == nil {
		consumed, err := s.consumedOn(ctx, req.UserID, utils.DayOf(s.now()))
		if err != nil {
			return nil, err
		}
		req.CurrentNutrition = &consumed
	}

	records, err := s.engine.GetRecommendations(ctx, req)
	if err != nil {
		return nil, err
	}
	session, items, err := s.persist(ctx, req, profile, records)
	if err != nil {
		return nil, err
	}

	targets := nutrition.Targets(*user, profile)
	response := &structs.RecommendationResponse{
		SessionID:       session.ID,
		RequestID:       session.RequestID,
		SessionType:     session.SessionType,
		MealType:        session.MealType,
		Recommendations: make([]structs.RecommendationItem, 0, len(items)),
		Targets:         targets,
		Consumed:        *req.CurrentNutrition,
		Remaining:       nutrition.Remaining(*req.CurrentNutrition, targets),
	}
	for i, item := range items {
		response.Recommendations = append(response.Recommendations, structs.RecommendationItem{
			ID:                item.ID,
			Food:              records[i].Food,
			TotalScore:        item.TotalScore,
			NutritionScore:    item.NutritionScore,
			PreferenceScore:   item.PreferenceScore,
			VarietyScore:      item.VarietyScore,
			ConvenienceScore:  item.ConvenienceScore,
			SuggestedQuantity: item.SuggestedQuantity,
			Reason:            item.Reason,
			Position:          item.Position,
		})
	}
	return response, nil
}

func (s *Service) consumedOn(ctx context.Context, userID int64, day time.Time) (structs.NutritionTotals, error) {
	if err := ctx.Err(); err != nil {
		return structs.NutritionTotals{}, err
	}
	var log models.DailyNutritionLog
	err := s.db.Where("user_id = ? AND date = ?", userID, day).First(&log).Error
	if gorm.IsRecordNotFoundError(err) {
		return structs.NutritionTotals{}, nil
	}
	if err != nil {
		return structs.NutritionTotals{}, fmt.Errorf("daily log of user %d: %w", userID, err)
	}
	return structs.NutritionTotals{
		Calories: log.ConsumedCalories,
		Protein:  log.ConsumedProtein,
		Carbs:    log.ConsumedCarbs,
		Fat:      log.ConsumedFat,
		Fiber:    log.ConsumedFiber,
		Sodium:   log.ConsumedSodium,
	}, nil
}

// persist stores the session and its ranked items in one transaction and
// returns the items in position order.
func (s *Service) persist(ctx context.Context, req structs.RecommendationRequest, profile *models.NutritionalProfile, records []structs.ScoreRecord) (*models.RecommendationSession, []models.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	currentJSON, _ := json.Marshal(req.CurrentNutrition)
	weightsJSON, _ := json.Marshal(map[string]float64{
		"protein_importance": profile.ProteinImportance,
		"health_importance":  profile.HealthImportance,
		"taste_importance":   profile.TasteImportance,
	})
	session := models.RecommendationSession{
		UserID:           req.UserID,
		RequestID:        uuid.New().String(),
		SessionType:      req.SessionType,
		MealType:         req.MealType,
		CurrentNutrition: string(currentJSON),
		UserPreferences:  string(weightsJSON),
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, nil, fmt.Errorf("begin session transaction: %w", tx.Error)
	}
	if err := tx.Create(&session).Error; err != nil {
		tx.Rollback()
		return nil, nil, fmt.Errorf("create recommendation session: %w", err)
	}
	rows := make([]interface{}, 0, len(records))
	for i, record := range records {
		rows = append(rows, models.Recommendation{
			SessionID:         session.ID,
			FoodID:            record.Food.ID,
			TotalScore:        record.TotalScore,
			NutritionScore:    record.NutritionScore,
			PreferenceScore:   record.PreferenceScore,
			VarietyScore:      record.VarietyScore,
			ConvenienceScore:  record.ConvenienceScore,
			SuggestedQuantity: record.SuggestedQuantity,
			Reason:            record.Reason,
			UserFeedback:      enums.FeedbackPending,
			Position:          i + 1,
		})
	}
	if len(rows) > 0 {
		if err := gormbulk.BulkInsert(tx, rows, 3000); err != nil {
			tx.Rollback()
			return nil, nil, fmt.Errorf("insert recommendations: %w", err)
		}
	}
	var items []models.Recommendation
	if err := tx.Where("session_id = ?", session.ID).Order("position").Find(&items).Error; err != nil {
		tx.Rollback()
		return nil, nil, fmt.Errorf("read back recommendations: %w", err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, nil, fmt.Errorf("commit recommendation session: %w", err)
	}

	s.log.WithFields(logrus.Fields{"task": "recommend", "user_id": req.UserID, "session_id": session.ID, "request_id": session.RequestID, "items": len(items)}).Info("recommendation session stored")
	return &session, items, nil
}

// SubmitFeedback moves a pending recommendation to its final feedback state
// and forwards the event to the preference learner.
func (s *Service) SubmitFeedback(ctx context.Context, req structs.FeedbackRequest) (*models.Recommendation, error) {
	if err := utils.Validate(req); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var recommendation models.Recommendation
	err := s.db.Table("recommendations").
		Select("recommendations.*").
		Joins("JOIN recommendation_sessions ON recommendation_sessions.id = recommendations.session_id").
		Where("recommendations.id = ? AND recommendation_sessions.user_id = ?", req.RecommendationID, req.UserID).
		Scan(&recommendation).Error
	if gorm.IsRecordNotFoundError(err) || (err == nil && recommendation.ID == 0) {
		return nil, structs.NotFound("recommendation", req.RecommendationID)
	}
	if err != nil {
		return nil, fmt.Errorf("get recommendation %d: %w", req.RecommendationID, err)
	}

	update := s.db.Model(&models.Recommendation{}).
		Where("id = ? AND user_feedback = ?", recommendation.ID, enums.FeedbackPending).
		Update("user_feedback", req.Feedback)
	if update.Error != nil {
		return nil, fmt.Errorf("update feedback of recommendation %d: %w", recommendation.ID, update.Error)
	}
	if update.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: recommendation %d is %s", structs.ErrFeedbackFinal, recommendation.ID, recommendation.UserFeedback)
	}
	recommendation.UserFeedback = req.Feedback
	metrics.FeedbackTotal.WithLabelValues(req.Feedback).Inc()

	logwg := s.log.WithFields(logrus.Fields{"task": "feedback", "user_id": req.UserID, "recommendation_id": recommendation.ID, "food_id": recommendation.FoodID, "feedback": req.Feedback})
	if s.publisher != nil {
		event := structs.FeedbackEvent{
			MessageID:        uuid.New().String(),
			UserID:           req.UserID,
			FoodID:           recommendation.FoodID,
			RecommendationID: recommendation.ID,
			Feedback:         req.Feedback,
		}
		body, _ := json.Marshal(event)
		err := s.publisher.Publish(enums.FeedbackQueue, body)
		if err == nil {
			logwg.Info("feedback recorded and published")
			return &recommendation, nil
		}
		logwg.WithField("error_message", err.Error()).Warn("publish feedback failed, applying directly")
	}
	if err := s.learner.ApplyFeedback(ctx, req.UserID, recommendation.FoodID, req.Feedback); err != nil {
		logwg.WithField("error_message", err.Error()).Error("apply feedback failed")
	}
	logwg.Info("feedback recorded")
	return &recommendation, nil
}
