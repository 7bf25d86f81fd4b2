package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodtracking/backend/internal/model"
	"github.com/pageza/foodtracking/backend/internal/service"
	"github.com/pageza/foodtracking/backend/internal/types"
)

// FavoriteHandler serves favorite food templates.
type FavoriteHandler struct {
	favorites service.IFavoriteService
	now       func() time.Time
}

// NewFavoriteHandler creates a new FavoriteHandler
func NewFavoriteHandler(favorites service.IFavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites, now: time.Now}
}

// RegisterRoutes registers the favorites routes on an authenticated group.
func (h *FavoriteHandler) RegisterRoutes(router *gin.RouterGroup) {
	favorites := router.Group("/favorites")
	{
		favorites.GET("", h.ListFavorites)
		favorites.POST("/toggle", h.ToggleFavorite)
		favorites.POST("/restore", h.RestoreFavorite)
		favorites.DELETE("/:name", h.RemoveFavorite)
		favorites.POST("/:name/log", h.LogFavorite)
	}
}

func (h *FavoriteHandler) ListFavorites(c *gin.Context) {
	favorites, err := h.favorites.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	if favorites == nil {
		favorites = []model.FavoriteFood{}
	}
	c.JSON(http.StatusOK, gin.H{"favorites": favorites})
}

// ToggleFavorite flips the favorite state of a stored entry, or of an inline
// snapshot when no entry id is given.
func (h *FavoriteHandler) ToggleFavorite(c *gin.Context) {
	var req types.ToggleFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var (
		favorite bool
		err      error
	)
	if req.EntryID != 0 {
		favorite, err = h.favorites.ToggleEntry(c.Request.Context(), req.EntryID)
	} else {
		if req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "entry_id or name is required"})
			return
		}
		weight := req.WeightGrams
		if weight <= 0 {
			weight = model.DefaultWeightGrams
		}
		favorite, err = h.favorites.Toggle(c.Request.Context(), model.FoodEntry{
			Name:  req.Name,
			Emoji: req.Emoji,
			Nutrition: model.Nutrition{
				Calories:    req.Calories,
				Fats:        req.Fats,
				Proteins:    req.Proteins,
				Carbs:       req.Carbs,
				WeightGrams: weight,
			},
		})
	}
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_favorite": favorite})
}

// RemoveFavorite returns the removed snapshot so the client can undo.
func (h *FavoriteHandler) RemoveFavorite(c *gin.Context) {
	removed, err := h.favorites.Remove(c.Request.Context(), c.Param("name"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, removed)
}

func (h *FavoriteHandler) RestoreFavorite(c *gin.Context) {
	var snapshot model.FavoriteFood
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	snapshot.ID = 0
	if err := h.favorites.Restore(c.Request.Context(), snapshot); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "favorite restored", "name": snapshot.Name})
}

func (h *FavoriteHandler) LogFavorite(c *gin.Context) {
	var req types.LogFavoriteRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}
	date := model.DateOf(h.now())
	if req.Date != nil {
		date = *req.Date
	}

	entry, err := h.favorites.Log(c.Request.Context(), c.Param("name"), date)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}
