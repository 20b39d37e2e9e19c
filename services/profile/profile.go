package profile

import (
	"context"
	"fmt"

	"nutrimatch-go-worker/models"
	"nutrimatch-go-worker/services/nutrition"
	"nutrimatch-go-worker/structs"

	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

// Service answers questions about a user's profile, preferences and
// allergies, and creates nutritional profiles on first use.
type Service struct {
	db  *gorm.DB
	log *logrus.Entry
}

func NewService(db *gorm.DB, log *logrus.Entry) *Service {
	return &Service{db: db, log: log}
}

func (s *Service) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, structs.NotFound("user", userID)
		}
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}
	return &user, nil
}

// GetProfile returns nil without error when the user has no profile yet.
func (s *Service) GetProfile(ctx context.Context, userID int64) (*models.NutritionalProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var profile models.NutritionalProfile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile of user %d: %w", userID, err)
	}
	return &profile, nil
}

// GetPreferences returns the zero state (no restrictions) when none are stored.
func (s *Service) GetPreferences(ctx context.Context, userID int64) (models.UserPreference, error) {
	preferences := models.UserPreference{UserID: userID}
	if err := ctx.Err(); err != nil {
		return preferences, err
	}
	if err := s.db.Where("user_id = ?", userID).First(&preferences).Error; err != nil && !gorm.IsRecordNotFoundError(err) {
		return preferences, fmt.Errorf("get preferences of user %d: %w", userID, err)
	}
	return preferences, nil
}

func (s *Service) GetAllergens(ctx context.Context, userID int64) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var allergens []string
	if err := s.db.Model(&models.UserAllergy{}).Where("user_id = ?", userID).Order("allergen").Pluck("allergen", &allergens).Error; err != nil {
		return nil, fmt.Errorf("get allergens of user %d: %w", userID, err)
	}
	return allergens, nil
}

// Snapshot gathers everything scoring needs about the user in one pass.
func (s *Service) Snapshot(ctx context.Context, userID int64) (structs.UserSnapshot, error) {
	snapshot := structs.UserSnapshot{UserID: userID}
	var err error
	if snapshot.Profile, err = s.GetProfile(ctx, userID); err != nil {
		return snapshot, err
	}
	if snapshot.Preferences, err = s.GetPreferences(ctx, userID); err != nil {
		return snapshot, err
	}
	if snapshot.Allergens, err = s.GetAllergens(ctx, userID); err != nil {
		return snapshot, err
	}
	return snapshot, nil
}

// EnsureProfile returns the user's nutritional profile, creating it with
// defaults when missing. The bool reports whether it was created.
func (s *Service) EnsureProfile(ctx context.Context, userID int64) (*models.NutritionalProfile, bool, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil || profile != nil {
		return profile, false, err
	}
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	created := DefaultProfile(*user)
	if err := s.db.Create(&created).Error; err != nil {
		// lost a race with another creator; the unique user_id wins
		if existing, getErr := s.GetProfile(ctx, userID); getErr == nil && existing != nil {
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("create profile of user %d: %w", userID, err)
	}
	s.log.WithFields(logrus.Fields{"task": "profile", "user_id": userID, "target_calories": created.TargetCalories}).Info("nutritional profile created")
	return &created, true, nil
}

// DefaultProfile derives a profile from the user's stored needs, then from
// the computed goals, then from fixed defaults.
func DefaultProfile(user models.User) models.NutritionalProfile {
	profile := models.NutritionalProfile{
		UserID:            user.ID,
		TargetCalories:    nutrition.DefaultCalories,
		TargetProtein:     nutrition.DefaultProtein,
		TargetCarbs:       nutrition.DefaultCarbs,
		TargetFat:         nutrition.DefaultFat,
		TargetFiber:       nutrition.DefaultFiber,
		MaxSodium:         nutrition.DefaultSodium,
		MinCalcium:        nutrition.DefaultCalcium,
		MinIron:           nutrition.DefaultIron,
		MinVitaminC:       nutrition.DefaultVitaminC,
		ProteinImportance: 1,
		HealthImportance:  1,
		TasteImportance:   1,
	}
	goals := nutrition.Goals(user)
	if goals.DailyCalories != nil {
		profile.TargetCalories = *goals.DailyCalories
		profile.TargetProtein, profile.TargetCarbs, profile.TargetFat = goals.Protein, goals.Carbs, goals.Fat
	}
	if user.DailyCalories != nil && *user.DailyCalories > 0 {
		profile.TargetCalories = *user.DailyCalories
	}
	if user.DailyProtein != nil && *user.DailyProtein > 0 {
		profile.TargetProtein = *user.DailyProtein
	}
	if user.DailyCarbs != nil && *user.DailyCarbs > 0 {
		profile.TargetCarbs = *user.DailyCarbs
	}
	if user.DailyFat != nil && *user.DailyFat > 0 {
		profile.TargetFat = *user.DailyFat
	}
	return profile
}

// UpdateGoals recomputes the user's daily needs from body metrics and stores
// them on the user.
func (s *Service) UpdateGoals(ctx context.Context, userID int64) (structs.NutritionGoals, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return structs.NutritionGoals{}, err
	}
	if !user.ProfileCompleted {
		return structs.NutritionGoals{}, structs.BadInput("profile of user %d is not completed", userID)
	}
	goals := nutrition.Goals(*user)
	if goals.DailyCalories == nil {
		return goals, structs.BadInput("user %d lacks weight, height, age or gender", userID)
	}
	updates := map[string]interface{}{
		"daily_calories": *goals.DailyCalories,
		"daily_protein":  goals.Protein,
		"daily_carbs":    goals.Carbs,
		"daily_fat":      goals.Fat,
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return goals, fmt.Errorf("update goals of user %d: %w", userID, err)
	}
	return goals, nil
}

// UpdateWeights sets the importance weights, each in [0, 2].
func (s *Service) UpdateWeights(ctx context.Context, userID int64, protein, health, taste float64) (*models.NutritionalProfile, error) {
	for name, w := range map[string]float64{"protein_importance": protein, "health_importance": health, "taste_importance": taste} {
		if w < 0 || w > 2 {
			return nil, structs.BadInput("%s must be within [0, 2], got %v", name, w)
		}
	}
	profile, _, err := s.EnsureProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		"protein_importance": protein,
		"health_importance":  health,
		"taste_importance":   taste,
	}
	if err := s.db.Model(profile).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update weights of user %d: %w", userID, err)
	}
	profile.ProteinImportance, profile.HealthImportance, profile.TasteImportance = protein, health, taste
	return profile, nil
}
