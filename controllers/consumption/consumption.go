package consumption

import (
	"context"
	"net/http"

	"nutrimatch-go-worker/controllers"
	"nutrimatch-go-worker/models"
	"nutrimatch-go-worker/structs"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Tracker interface {
	LogConsumption(ctx context.Context, req structs.ConsumptionRequest) (*structs.ConsumptionResult, error)
	RateFood(ctx context.Context, req structs.RatingRequest) (*models.UserFoodRating, bool, error)
	DailySummary(ctx context.Context, userID int64, date string) (*structs.DailySummary, error)
}

type Controller struct {
	service Tracker
	log     *logrus.Entry
}

func NewController(service Tracker, log *logrus.Entry) *Controller {
	return &Controller{service: service, log: log}
}

func (ctl *Controller) LogConsumption(c *gin.Context) {
	userID, ok := controllers.PathID(c, "user_id")
	if !ok {
		return
	}
	var req structs.ConsumptionRequest
	if !controllers.BindJSON(c, &req) {
		return
	}
	req.UserID = userID

	result, err := ctl.service.LogConsumption(c.Request.Context(), req)
	if err != nil {
		controllers.Fail(c, ctl.log, err)
		return
	}
	controllers.OK(c, http.StatusCreated, result)
}

// RateFood answers 201 for a new rating and 200 when an existing one changed.
func (ctl *Controller) RateFood(c *gin.Context) {
	userID, ok := controllers.PathID(c, "user_id")
	if !ok {
		return
	}
	var req structs.RatingRequest
	if !controllers.BindJSON(c, &req) {
		return
	}
	req.UserID = userID

	rating, created, err := ctl.service.RateFood(c.Request.Context(), req)
	if err != nil {
		controllers.Fail(c, ctl.log, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	controllers.OK(c, status, rating)
}

// DailySummary takes an optional ?date=YYYY-MM-DD, today by default.
func (ctl *Controller) DailySummary(c *gin.Context) {
	userID, ok := controllers.PathID(c, "user_id")
	if !ok {
		return
	}
	summary, err := ctl.service.DailySummary(c.Request.Context(), userID, c.Query("date"))
	if err != nil {
		controllers.Fail(c, ctl.log, err)
		return
	}
	controllers.OK(c, http.StatusOK, summary)
}
