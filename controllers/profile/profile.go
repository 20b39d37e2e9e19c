package profile

import (
	"context"
	"net/http"

	"nutrimatch-go-worker/controllers"
	"nutrimatch-go-worker/models"
	"nutrimatch-go-worker/structs"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ProfileStore interface {
	EnsureProfile(ctx context.Context, userID int64) (*models.NutritionalProfile, bool, error)
	UpdateGoals(ctx context.Context, userID int64) (structs.NutritionGoals, error)
	UpdateWeights(ctx context.Context, userID int64, protein, health, taste float64) (*models.NutritionalProfile, error)
}

type Controller struct {
	service ProfileStore
	log     *logrus.Entry
}

func NewController(service ProfileStore, log *logrus.Entry) *Controller {
	return &Controller{service: service, log: log}
}

// Get returns the nutritional profile, creating it with defaults first if
// the user has none.
func (ctl *Controller) Get(c *gin.Context) {
	userID, ok := controllers.PathID(c, "user_id")
	if !ok {
		return
	}
	profile, created, err := ctl.service.EnsureProfile(c.Request.Context(), userID)
	if err != nil {
		controllers.Fail(c, ctl.log, err)
		return
	}
	controllers.OK(c, http.StatusOK, structs.ProfileResponse{Profile: profile, Created: created})
}

// Update applies a ProfileUpdateRequest. Weights left out of the body keep
// their stored value.
func (ctl *Controller) Update(c *gin.Context) {
	userID, ok := controllers.PathID(c, "user_id")
	if !ok {
		return
	}
	var req structs.ProfileUpdateRequest
	if !controllers.BindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()

	var response structs.ProfileResponse
	if req.RecalculateGoals {
		goals, err := ctl.service.UpdateGoals(ctx, userID)
		if err != nil {
			controllers.Fail(c, ctl.log, err)
			return
		}
		response.Goals = &goals
	}
	profile, created, err := ctl.service.EnsureProfile(ctx, userID)
	if err != nil {
		controllers.Fail(c, ctl.log, err)
		return
	}
	response.Created = created
	if req.ProteinImportance != nil || req.HealthImportance != nil || req.TasteImportance != nil {
		protein, health, taste := profile.ProteinImportance, profile.HealthImportance, profile.TasteImportance
		if req.ProteinImportance != nil {
			protein = *req.ProteinImportance
		}
		if req.HealthImportance != nil {
			health = *req.HealthImportance
		}
		if req.TasteImportance != nil {
			taste = *req.TasteImportance
		}
		if profile, err = ctl.service.UpdateWeights(ctx, userID, protein, health, taste); err != nil {
			controllers.Fail(c, ctl.log, err)
			return
		}
	}
	response.Profile = profile
	controllers.OK(c, http.StatusOK, response)
}
