package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodtracking/backend/internal/model"
	"github.com/pageza/foodtracking/backend/internal/service"
	"github.com/pageza/foodtracking/backend/internal/types"
)

// SettingsManager reads and writes goals and the physical profile.
type SettingsManager interface {
	Get(ctx context.Context) (*service.Settings, error)
	SaveLimits(ctx context.Context, limits model.DailyLimits) (model.DailyLimits, error)
	UpdateProfile(ctx context.Context, profile model.PhysicalProfile) (*model.GoalProfile, error)
}

// SettingsHandler serves daily goals and the profile they derive from.
type SettingsHandler struct {
	settings SettingsManager
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settings SettingsManager) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// RegisterRoutes registers the settings routes on an authenticated group.
func (h *SettingsHandler) RegisterRoutes(router *gin.RouterGroup) {
	settings := router.Group("/settings")
	{
		settings.GET("", h.GetSettings)
		settings.PUT("/limits", h.UpdateLimits)
		settings.PUT("/profile", h.UpdateProfile)
	}
	router.POST("/goals/preview", h.PreviewGoals)
}

func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settings.Get(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *SettingsHandler) UpdateLimits(c *gin.Context) {
	var limits model.DailyLimits
	if err := c.ShouldBindJSON(&limits); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	saved, err := h.settings.SaveLimits(c.Request.Context(), limits)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *SettingsHandler) UpdateProfile(c *gin.Context) {
	profile, ok := bindProfile(c)
	if !ok {
		return
	}
	goal, err := h.settings.UpdateProfile(c.Request.Context(), profile)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

// PreviewGoals computes goals for a profile without storing anything.
func (h *SettingsHandler) PreviewGoals(c *gin.Context) {
	profile, ok := bindProfile(c)
	if !ok {
		return
	}
	if err := service.ValidateProfile(profile); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"breakdown": service.ComputeGoals(profile),
		"goal":      service.GoalProfileFor(profile),
	})
}

func bindProfile(c *gin.Context) (model.PhysicalProfile, bool) {
	var req types.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return model.PhysicalProfile{}, false
	}
	level, err := model.ParseActivityLevel(req.ActivityLevel)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return model.PhysicalProfile{}, false
	}
	return model.PhysicalProfile{
		Age:            req.Age,
		WeightKg:       req.WeightKg,
		TargetWeightKg: req.TargetWeightKg,
		WeeksToGoal:    req.WeeksToGoal,
		IsMale:         req.IsMale,
		Activity:       level,
	}, true
}
