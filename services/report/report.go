package report

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"nutrimatch-go-worker/enums"
	"nutrimatch-go-worker/models"
	"nutrimatch-go-worker/services/activity"
	"nutrimatch-go-worker/services/metrics"
	"nutrimatch-go-worker/structs"
	"nutrimatch-go-worker/utils"

	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

const retryAttempTimes = 3

// ReportService stores an insights report for one user or for every user
// who completed onboarding. Users without logs in the window are skipped.
type ReportService struct {
	sync.Mutex
	db               *gorm.DB
	insights         *Service
	log              *logrus.Entry
	concurrentAmount int
	reportQueueParam structs.ReportQueueParam
	processResult    map[string][]int64
	Errors           []structs.ErrorModel
}

func NewReportService(db *gorm.DB, insights *Service, log *logrus.Entry, concurrentAmount int) *ReportService {
	if concurrentAmount < 1 {
		concurrentAmount = 1
	}
	return &ReportService{db: db, insights: insights, log: log, concurrentAmount: concurrentAmount}
}

// Start is the queue entry point.
func (r *ReportService) Start(ctx context.Context, reportQueueParam structs.ReportQueueParam) {
	start := time.Now()
	defer metrics.ObserveSince(metrics.JobDuration.WithLabelValues("nutrition-report", reportQueueParam.Type), start)

	reportQueueParam.Days = ClampDays(reportQueueParam.Days)
	r.reportQueueParam = reportQueueParam
	r.processResult = make(map[string][]int64)
	r.Errors = nil

	switch reportQueueParam.Type {
	case enums.ProcessSingle:
		r.log.WithFields(logrus.Fields{"task": "report", "task_id": reportQueueParam.TaskID, "user_id": reportQueueParam.UserID}).Info("start single user")
		userEntities, err := r.getUserEntities(reportQueueParam.UserID)
		if err != nil {
			r.handleError(reportQueueParam.UserID, err)
			r.finish(nil)
			return
		}
		if len(userEntities) == 0 {
			r.handleError(reportQueueParam.UserID, structs.NotFound("user", reportQueueParam.UserID))
			r.finish(nil)
			return
		}
		r.process(ctx, userEntities[0], nil, nil)
		r.finish(&userEntities[0])

	case enums.ProcessAll:
		userEntities, err := r.getUserEntities(0)
		if err != nil {
			r.handleError(0, err)
			r.finish(nil)
			return
		}
		r.log.WithFields(logrus.Fields{"task": "report", "task_id": reportQueueParam.TaskID, "total": len(userEntities)}).Info("start all users")

		var wg sync.WaitGroup
		wg.Add(len(userEntities))
		concurrentGoroutines := make(chan struct{}, r.concurrentAmount)
		for _, userEntity := range userEntities {
			concurrentGoroutines <- struct{}{}
			go r.process(ctx, userEntity, &wg, concurrentGoroutines)
		}
		wg.Wait()
		close(concurrentGoroutines)
		r.finish(nil)

	default:
		r.handleError(reportQueueParam.UserID, structs.BadInput("unknown process type %q", reportQueueParam.Type))
		r.finish(nil)
	}
}

func (r *ReportService) process(ctx context.Context, userEntity models.User, wg *sync.WaitGroup, concurrentGoroutines chan struct{}) {
	if wg != nil {
		defer func() {
			wg.Done()
			<-concurrentGoroutines
		}()
	}
	logwg := r.log.WithFields(logrus.Fields{"task": "report", "task_id": r.reportQueueParam.TaskID, "user_id": userEntity.ID, "username": userEntity.Username})
	logwg.Info("building insights")

	var insights *structs.NutritionInsights
	var err error
	for attempt := 1; attempt <= retryAttempTimes; attempt++ {
		if insights, err = r.insights.Insights(ctx, userEntity.ID, r.reportQueueParam.Days); err == nil {
			break
		}
		logwg.WithFields(logrus.Fields{"error_message": err.Error(), "attemp_times": attempt}).Error("build insights failed, retrying")
	}
	if err != nil {
		r.handleError(userEntity.ID, err)
		return
	}
	if !insights.HasData {
		logwg.Info("no logs in window, skipped")
		r.Lock()
		r.processResult["skip"] = append(r.processResult["skip"], userEntity.ID)
		r.Unlock()
		return
	}

	if err := r.insertNutritionReport(userEntity.ID, insights); err != nil {
		logwg.WithField("error_message", err.Error()).Error("insert nutrition report failed")
		r.handleError(userEntity.ID, err)
		return
	}

	r.Lock()
	r.processResult["ok"] = append(r.processResult["ok"], userEntity.ID)
	r.Unlock()
}

// insertNutritionReport keeps one report per user and window, replacing a
// report built earlier for the same window.
func (r *ReportService) insertNutritionReport(userID int64, insights *structs.NutritionInsights) error {
	properties, err := json.Marshal(insights)
	if err != nil {
		return err
	}
	startDate, err := utils.ParseDay(insights.StartDate)
	if err != nil {
		return err
	}
	endDate, err := utils.ParseDay(insights.EndDate)
	if err != nil {
		return err
	}

	tx := r.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := tx.Where("user_id = ? AND start_date = ? AND end_date = ?", userID, startDate, endDate).Delete(&models.NutritionReport{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("replace nutrition report: %w", err)
	}
	reportEntity := models.NutritionReport{
		UserID:     userID,
		Days:       insights.Days,
		StartDate:  startDate,
		EndDate:    endDate,
		Properties: string(properties),
	}
	if err := tx.Create(&reportEntity).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("create nutrition report: %w", err)
	}
	return tx.Commit().Error
}

func (r *ReportService) getUserEntities(userID int64) ([]models.User, error) {
	var userEntities []models.User
	q := r.db.Where("profile_completed = ?", true)
	if userID != 0 {
		q = r.db.Where("id = ?", userID)
	}
	if err := q.Order("id").Find(&userEntities).Error; err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	return userEntities, nil
}

func (r *ReportService) finish(userEntity *models.User) {
	result := len(r.Errors) == 0
	activityLogJSONModel := structs.ActivityLogJsonModel{
		Type:     r.reportQueueParam.Type,
		Result:   result,
		Messages: r.Errors,
		Statistic: structs.StatisticModel{
			TotalUser: len(r.processResult["ok"]) + len(r.processResult["skip"]) + len(r.processResult["fail"]),
			OKUser:    len(r.processResult["ok"]),
			FailUser:  len(r.processResult["fail"]),
		},
	}
	if userEntity != nil {
		activityLogJSONModel.UserID = userEntity.ID
		activityLogJSONModel.Username = userEntity.Username
	}
	if result {
		activityLogJSONModel.Message = "ok"
	} else {
		activityLogJSONModel.Message = r.Errors[0].ErrorMessage
	}

	if err := activity.Insert(r.db, "schedule.go.nutrition-report", "nutrition report", activityLogJSONModel); err != nil {
		r.log.WithField("task", "report").Errorf("insert activity log: %v", err)
	}
	r.reportQueueParam.Result = fmt.Sprintf("ok=%d skip=%d fail=%d", activityLogJSONModel.Statistic.OKUser, len(r.processResult["skip"]), activityLogJSONModel.Statistic.FailUser)
	if err := activity.Notify("/api/v1/workerCallback/nutrition-report", r.reportQueueParam); err != nil {
		r.log.WithField("task", "report").Errorf("job done notify: %v", err)
	}
}

// Result is the outcome line sent with the job done callback.
func (r *ReportService) Result() string {
	return r.reportQueueParam.Result
}

func (r *ReportService) handleError(userID int64, err error) {
	r.Lock()
	defer r.Unlock()
	r.Errors = append(r.Errors, structs.ErrorModel{UserID: userID, ErrorMessage: err.Error()})
	r.processResult["fail"] = append(r.processResult["fail"], userID)
}
