package profile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nutrimatch-go-worker/enums"
	"nutrimatch-go-worker/models"
	"nutrimatch-go-worker/services/activity"
	"nutrimatch-go-worker/services/metrics"
	"nutrimatch-go-worker/structs"

	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

const retryAttempTimes = 3

// InitService creates missing nutritional profiles for one user or for every
// user who completed onboarding.
type InitService struct {
	sync.Mutex
	db               *gorm.DB
	profiles         *Service
	log              *logrus.Entry
	concurrentAmount int
	param            structs.ProfileQueueParam
	processResult    map[string][]int64
	Errors           []structs.ErrorModel
}

func NewInitService(db *gorm.DB, profiles *Service, log *logrus.Entry, concurrentAmount int) *InitService {
	if concurrentAmount < 1 {
		concurrentAmount = 1
	}
	return &InitService{db: db, profiles: profiles, log: log, concurrentAmount: concurrentAmount}
}

// Start is the queue entry point.
func (s *InitService) Start(ctx context.Context, param structs.ProfileQueueParam) {
	start := time.Now()
	defer metrics.ObserveSince(metrics.JobDuration.WithLabelValues("profile-init", param.Type), start)

	s.param = param
	s.processResult = make(map[string][]int64)
	s.Errors = nil

	switch param.Type {
	case enums.ProcessSingle:
		s.log.WithFields(logrus.Fields{"task": "profile-init", "task_id": param.TaskID, "user_id": param.UserID}).Info("start single user")
		userEntities, err := s.getUserEntities(param.UserID)
		if err != nil {
			s.handleError(param.UserID, err)
			s.finish(nil)
			return
		}
		if len(userEntities) == 0 {
			s.log.WithFields(logrus.Fields{"task": "profile-init", "user_id": param.UserID}).Warn("user not found")
			s.handleError(param.UserID, structs.NotFound("user", param.UserID))
			s.finish(nil)
			return
		}
		s.process(ctx, userEntities[0], nil, nil)
		s.finish(&userEntities[0])

	case enums.ProcessAll:
		userEntities, err := s.getUserEntities(0)
		if err != nil {
			s.handleError(0, err)
			s.finish(nil)
			return
		}
		s.log.WithFields(logrus.Fields{"task": "profile-init", "task_id": param.TaskID, "total": len(userEntities)}).Info("start all users")

		var wg sync.WaitGroup
		wg.Add(len(userEntities))
		concurrentGoroutines := make(chan struct{}, s.concurrentAmount)
		for _, userEntity := range userEntities {
			concurrentGoroutines <- struct{}{}
			go s.process(ctx, userEntity, &wg, concurrentGoroutines)
		}
		wg.Wait()
		close(concurrentGoroutines)
		s.finish(nil)

	default:
		s.handleError(param.UserID, structs.BadInput("unknown process type %q", param.Type))
		s.finish(nil)
	}
}

func (s *InitService) process(ctx context.Context, userEntity models.User, wg *sync.WaitGroup, concurrentGoroutines chan struct{}) {
	if wg != nil {
		defer func() {
			wg.Done()
			<-concurrentGoroutines
		}()
	}
	logwg := s.log.WithFields(logrus.Fields{"task": "profile-init", "task_id": s.param.TaskID, "user_id": userEntity.ID, "username": userEntity.Username})

	var err error
	var created bool
	for attempt := 1; attempt <= retryAttempTimes; attempt++ {
		if _, created, err = s.profiles.EnsureProfile(ctx, userEntity.ID); err == nil {
			break
		}
		logwg.WithFields(logrus.Fields{"error_message": err.Error(), "attemp_times": attempt}).Error("ensure profile failed, retrying")
	}
	if err != nil {
		s.handleError(userEntity.ID, err)
		return
	}
	logwg.WithField("created", created).Info("profile ready")

	s.Lock()
	s.processResult["ok"] = append(s.processResult["ok"], userEntity.ID)
	s.Unlock()
}

func (s *InitService) getUserEntities(userID int64) ([]models.User, error) {
	var userEntities []models.User
	q := s.db.Where("profile_completed = ?", true)
	if userID != 0 {
		q = s.db.Where("id = ?", userID)
	}
	if err := q.Order("id").Find(&userEntities).Error; err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	return userEntities, nil
}

// finish records the outcome in the activity log and notifies the app.
func (s *InitService) finish(userEntity *models.User) {
	result := len(s.Errors) == 0
	activityLogJSONModel := structs.ActivityLogJsonModel{
		Type:     s.param.Type,
		Result:   result,
		Messages: s.Errors,
		Statistic: structs.StatisticModel{
			TotalUser: len(s.processResult["ok"]) + len(s.processResult["fail"]),
			OKUser:    len(s.processResult["ok"]),
			FailUser:  len(s.processResult["fail"]),
		},
	}
	if userEntity != nil {
		activityLogJSONModel.UserID = userEntity.ID
		activityLogJSONModel.Username = userEntity.Username
	}
	if result {
		activityLogJSONModel.Message = "ok"
	} else {
		activityLogJSONModel.Message = s.Errors[0].ErrorMessage
	}

	if err := activity.Insert(s.db, "schedule.go.profile-init", "nutritional profile initialization", activityLogJSONModel); err != nil {
		s.log.WithField("task", "profile-init").Errorf("insert activity log: %v", err)
	}
	s.param.Result = fmt.Sprintf("ok=%d fail=%d", activityLogJSONModel.Statistic.OKUser, activityLogJSONModel.Statistic.FailUser)
	if err := activity.Notify("/api/v1/workerCallback/profile-init", s.param); err != nil {
		s.log.WithField("task", "profile-init").Errorf("job done notify: %v", err)
	}
}

func (s *InitService) handleError(userID int64, err error) {
	s.Lock()
	defer s.Unlock()
	s.Errors = append(s.Errors, structs.ErrorModel{UserID: userID, ErrorMessage: err.Error()})
	s.processResult["fail"] = append(s.processResult["fail"], userID)
}
