package router

import (
	"nutrimatch-go-worker/controllers/check"
	"nutrimatch-go-worker/controllers/consumption"
	"nutrimatch-go-worker/controllers/insights"
	"nutrimatch-go-worker/controllers/profile"
	"nutrimatch-go-worker/controllers/readProbe"
	"nutrimatch-go-worker/controllers/recommendation"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Controllers struct {
	Recommendation *recommendation.Controller
	Consumption    *consumption.Controller
	Insights       *insights.Controller
	Profile        *profile.Controller
}

func Router(ctl Controllers) *gin.Engine {
	route := gin.Default()

	route.GET("/read-probe", readProbe.Probe)
	route.GET("/check-live", check.CheckAlive)
	route.GET("/metrics", gin.WrapH(promhttp.Handler()))

	users := route.Group("/api/v1/users/:user_id")
	{
		users.POST("/recommendations", ctl.Recommendation.Recommend)
		users.POST("/recommendations/:recommendation_id/feedback", ctl.Recommendation.Feedback)
		users.POST("/consumptions", ctl.Consumption.LogConsumption)
		users.GET("/daily-summary", ctl.Consumption.DailySummary)
		users.POST("/ratings", ctl.Consumption.RateFood)
		users.GET("/insights", ctl.Insights.Insights)
		users.GET("/profile", ctl.Profile.Get)
		users.POST("/profile", ctl.Profile.Update)
	}

	return route
}
