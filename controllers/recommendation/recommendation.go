package recommendation

import (
	"context"
	"net/http"

	"nutrimatch-go-worker/controllers"
	"nutrimatch-go-worker/models"
	"nutrimatch-go-worker/structs"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Recommender interface {
	Recommend(ctx context.Context, req structs.RecommendationRequest) (*structs.RecommendationResponse, error)
	SubmitFeedback(ctx context.Context, req structs.FeedbackRequest) (*models.Recommendation, error)
}

type Controller struct {
	service Recommender
	log     *logrus.Entry
}

func NewController(service Recommender, log *logrus.Entry) *Controller {
	return &Controller{service: service, log: log}
}

// Recommend handles POST /users/:user_id/recommendations.
func (ctl *Controller) Recommend(c *gin.Context) {
	userID, ok := controllers.PathID(c, "user_id")
	if !ok {
		return
	}
	var req structs.RecommendationRequest
	if !controllers.BindJSON(c, &req) {
		return
	}
	req.UserID = userID

	response, err := ctl.service.Recommend(c.Request.Context(), req)
	if err != nil {
		controllers.Fail(c, ctl.log, err)
		return
	}
	controllers.OK(c, http.StatusCreated, response)
}

// Feedback handles POST /users/:user_id/recommendations/:recommendation_id/feedback.
func (ctl *Controller) Feedback(c *gin.Context) {
	userID, ok := controllers.PathID(c, "user_id")
	if !ok {
		return
	}
	recommendationID, ok := controllers.PathID(c, "recommendation_id")
	if !ok {
		return
	}
	var req structs.FeedbackRequest
	if !controllers.BindJSON(c, &req) {
		return
	}
	req.UserID, req.RecommendationID = userID, recommendationID

	recommendation, err := ctl.service.SubmitFeedback(c.Request.Context(), req)
	if err != nil {
		controllers.Fail(c, ctl.log, err)
		return
	}
	controllers.OK(c, http.StatusOK, recommendation)
}
