package learner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"nutrimatch-go-worker/database"
	"nutrimatch-go-worker/enums"
	"nutrimatch-go-worker/models"
	"nutrimatch-go-worker/services"
	"nutrimatch-go-worker/services/metrics"
	"nutrimatch-go-worker/structs"
	"nutrimatch-go-worker/utils"

	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

const (
	retryAttempTimes = 3

	consumptionSeedScore      = 0.1
	consumptionSeedConfidence = 0.3
	consumptionScoreStep      = 0.05
	consumptionConfidenceStep = 0.1

	rejectionSeedScore      = -0.1
	rejectionSeedConfidence = 0.5
	rejectionScoreStep      = 0.1
)

// Learner keeps the implicit food preferences of users up to date. Updates
// to one (user, food) pair are serialized in process and inside a row-locked
// transaction.
type Learner struct {
	db    *gorm.DB
	log   *logrus.Entry
	locks keyedMutex
	now   func() time.Time
}

func New(db *gorm.DB, log *logrus.Entry) *Learner {
	return &Learner{db: db, log: log, locks: keyedMutex{locks: make(map[prefKey]*keyLock)}, now: time.Now}
}

// LearnFromConsumption nudges the preference for a food the user just ate.
func (l *Learner) LearnFromConsumption(ctx context.Context, event structs.ConsumptionEvent) error {
	if err := utils.Validate(event); err != nil {
		return err
	}
	consumedAt := l.now()
	if event.ConsumedAt > 0 {
		consumedAt = time.Unix(event.ConsumedAt, 0)
	}
	seed := models.LearnedPreference{
		PreferenceScore:   consumptionSeedScore,
		Confidence:        consumptionSeedConfidence,
		FrequencyConsumed: 1,
		LastConsumed:      &consumedAt,
	}
	return l.update(ctx, enums.SourceConsumption, event.UserID, event.FoodID, seed, func(pref *models.LearnedPreference) {
		pref.FrequencyConsumed++
		pref.PreferenceScore = round4(math.Min(1, pref.PreferenceScore+consumptionScoreStep))
		pref.Confidence = round4(math.Min(1, pref.Confidence+consumptionConfidenceStep))
		pref.AddMealType(event.MealType)
		pref.LastConsumed = &consumedAt
	})
}

// ApplyFeedback lowers the preference for a rejected food. Accepted and
// modified feedback leave the preference unchanged.
func (l *Learner) ApplyFeedback(ctx context.Context, userID, foodID int64, kind string) error {
	if userID <= 0 || foodID <= 0 {
		return structs.BadInput("user_id and food_id are required")
	}
	switch kind {
	case enums.FeedbackAccepted, enums.FeedbackModified:
		metrics.LearnerUpdates.WithLabelValues(enums.SourceFeedback, "ignored").Inc()
		return nil
	case enums.FeedbackRejected:
	default:
		return structs.BadInput("unknown feedback kind %q", kind)
	}
	seed := models.LearnedPreference{
		PreferenceScore: rejectionSeedScore,
		Confidence:      rejectionSeedConfidence,
	}
	return l.update(ctx, enums.SourceFeedback, userID, foodID, seed, func(pref *models.LearnedPreference) {
		pref.PreferenceScore = round4(math.Max(-1, pref.PreferenceScore-rejectionScoreStep))
	})
}

// update creates the preference from seed or applies mutate to the stored
// one, retrying transient failures such as a lost get-or-create race.
func (l *Learner) update(ctx context.Context, source string, userID, foodID int64, seed models.LearnedPreference, mutate func(*models.LearnedPreference)) error {
	logwg := l.log.WithFields(logrus.Fields{"task": "learner", "source": source, "user_id": userID, "food_id": foodID})
	var err error
	for attempt := 1; attempt <= retryAttempTimes; attempt++ {
		if err = ctx.Err(); err != nil {
			break
		}
		var created bool
		if created, err = l.apply(userID, foodID, seed, mutate); err == nil {
			metrics.LearnerUpdates.WithLabelValues(source, "ok").Inc()
			logwg.WithField("created", created).Debug("preference updated")
			return nil
		}
		if errors.Is(err, structs.ErrInvalidInput) {
			break
		}
		metrics.LearnerRetries.Inc()
		logwg.WithFields(logrus.Fields{"error_message": err.Error(), "attemp_times": attempt}).Warn("preference update failed, retrying")
	}
	metrics.LearnerUpdates.WithLabelValues(source, "error").Inc()
	logwg.WithField("error_message", err.Error()).Error("preference update failed")
	return err
}

func (l *Learner) apply(userID, foodID int64, seed models.LearnedPreference, mutate func(*models.LearnedPreference)) (bool, error) {
	unlock := l.locks.lock(prefKey{userID: userID, foodID: foodID})
	defer unlock()

	tx := l.db.Begin()
	if tx.Error != nil {
		return false, tx.Error
	}
	var pref models.LearnedPreference
	err := database.LockForUpdate(tx).Where("user_id = ? AND food_id = ?", userID, foodID).First(&pref).Error
	created := gorm.IsRecordNotFoundError(err)
	switch {
	case created:
		pref = seed
		pref.UserID, pref.FoodID = userID, foodID
		pref.UpdatedAt = l.now()
		err = tx.Create(&pref).Error
	case err == nil:
		mutate(&pref)
		pref.UpdatedAt = l.now()
		err = tx.Save(&pref).Error
	}
	if err != nil {
		tx.Rollback()
		return false, fmt.Errorf("store preference of user %d for food %d: %w", userID, foodID, err)
	}
	if err := tx.Commit().Error; err != nil {
		return false, fmt.Errorf("commit preference of user %d for food %d: %w", userID, foodID, err)
	}
	return created, nil
}

func round4(x float64) float64 {
	return services.RoundTo(x, 4)
}

type prefKey struct {
	userID int64
	foodID int64
}

type keyLock struct {
	sync.Mutex
	refs int
}

// keyedMutex hands out one mutex per key and forgets it once unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[prefKey]*keyLock
}

func (k *keyedMutex) lock(key prefKey) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
