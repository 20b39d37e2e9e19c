package insights

import (
	"context"
	"net/http"
	"strconv"

	"nutrimatch-go-worker/controllers"
	"nutrimatch-go-worker/structs"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Analyst interface {
	Insights(ctx context.Context, userID int64, days int) (*structs.NutritionInsights, error)
}

type Controller struct {
	service Analyst
	log     *logrus.Entry
}

func NewController(service Analyst, log *logrus.Entry) *Controller {
	return &Controller{service: service, log: log}
}

// Insights handles GET /users/:user_id/insights?days=N.
func (ctl *Controller) Insights(c *gin.Context) {
	userID, ok := controllers.PathID(c, "user_id")
	if !ok {
		return
	}
	days := 0
	if raw := c.Query("days"); raw != "" {
		var err error
		if days, err = strconv.Atoi(raw); err != nil || days < 1 {
			controllers.Fail(c, ctl.log, structs.BadInput("days must be a positive integer, got %q", raw))
			return
		}
	}
	insights, err := ctl.service.Insights(c.Request.Context(), userID, days)
	if err != nil {
		controllers.Fail(c, ctl.log, err)
		return
	}
	controllers.OK(c, http.StatusOK, insights)
}
