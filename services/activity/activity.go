package activity

import (
	"encoding/json"
	"net/http"
	"time"

	"nutrimatch-go-worker/models"
	"nutrimatch-go-worker/services"
	"nutrimatch-go-worker/utils"

	"github.com/jinzhu/gorm"
)

// Insert records a job event in the activity log table.
func Insert(db *gorm.DB, logName, description string, properties interface{}) error {
	activityLogJSON, err := json.Marshal(properties)
	if err != nil {
		return err
	}
	insertTime := time.Now().In(utils.Location())
	activityLogEntity := models.ActivityLog{
		LogName:     logName,
		Description: description,
		Properties:  string(activityLogJSON),
		CreatedAt:   &insertTime,
		UpdatedAt:   &insertTime,
	}
	return db.Create(&activityLogEntity).Error
}

// Notify posts payload to the app's worker callback at path. Without a
// configured app API there is nobody to notify.
func Notify(path string, payload interface{}) error {
	if utils.EnvConfig == nil || utils.EnvConfig.Server.AppAPI == "" {
		return nil
	}
	_, err := services.HttpRequest(http.MethodPost, utils.EnvConfig.Server.AppAPI+path, nil, payload)
	return err
}
