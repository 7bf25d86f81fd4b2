package api

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodtracking/backend/internal/model"
	"github.com/pageza/foodtracking/backend/internal/service"
	"github.com/pageza/foodtracking/backend/internal/types"
)

// ImageAttacher stores entry photos.
type ImageAttacher interface {
	Attach(ctx context.Context, entryID uint, data []byte, contentType string) (*model.FoodEntry, error)
	URL(ctx context.Context, entry *model.FoodEntry) (string, error)
}

// LimitsProvider supplies the daily limits progress is measured against.
type LimitsProvider interface {
	Limits(ctx context.Context) (model.DailyLimits, error)
}

type entryResponse struct {
	model.FoodEntry
	ImageURL string `json:"image_url,omitempty"`
}

type summaryResponse struct {
	Date     model.Date         `json:"date"`
	Summary  model.DailySummary `json:"summary"`
	Limits   model.DailyLimits  `json:"limits"`
	Progress service.Progress   `json:"progress"`
}

// EntryHandler serves the food diary.
type EntryHandler struct {
	entries service.IEntryService
	limits  LimitsProvider
	images  ImageAttacher
	now     func() time.Time
}

// NewEntryHandler creates a new EntryHandler. images may be nil when photo
// storage is not configured.
func NewEntryHandler(entries service.IEntryService, limits LimitsProvider, images ImageAttacher) *EntryHandler {
	return &EntryHandler{
		entries: entries,
		limits:  limits,
		images:  images,
		now:     time.Now,
	}
}

// RegisterRoutes registers the diary routes on an authenticated group.
func (h *EntryHandler) RegisterRoutes(router *gin.RouterGroup) {
	entries := router.Group("/entries")
	{
		entries.POST("", h.CreateEntry)
		entries.GET("", h.ListEntries)
		entries.POST("/restore", h.RestoreEntry)
		entries.GET("/:id", h.GetEntry)
		entries.PUT("/:id", h.UpdateEntry)
		entries.PATCH("/:id/weight", h.UpdateWeight)
		entries.DELETE("/:id", h.DeleteEntry)
		entries.POST("/:id/image", h.UploadImage)
	}
	router.GET("/summary", h.GetSummary)
	router.GET("/history", h.GetHistory)
}

func (h *EntryHandler) CreateEntry(c *gin.Context) {
	var req types.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	entry := model.FoodEntry{
		Name:  req.Name,
		Emoji: req.Emoji,
		Nutrition: model.Nutrition{
			Calories:    req.Calories,
			Fats:        req.Fats,
			Proteins:    req.Proteins,
			Carbs:       req.Carbs,
			WeightGrams: req.WeightGrams,
		},
		Source:   req.Source,
		ImageURI: req.ImageURI,
	}
	if req.Timestamp > 0 {
		entry.Timestamp = time.UnixMilli(req.Timestamp)
	}
	if req.Date != nil {
		entry.Date = *req.Date
	}

	created, err := h.entries.Create(c.Request.Context(), entry, req.SyncNow)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *EntryHandler) ListEntries(c *gin.Context) {
	date, ok := dateQuery(c, h.now)
	if !ok {
		return
	}
	entries, err := h.entries.ListForDate(c.Request.Context(), date)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if entries == nil {
		entries = []model.FoodEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "entries": entries})
}

func (h *EntryHandler) GetEntry(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	entry, err := h.entries.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp := entryResponse{FoodEntry: *entry}
	if h.images != nil {
		url, err := h.images.URL(c.Request.Context(), entry)
		if err != nil {
			log.Printf("[EntryHandler] Failed to sign image for entry %d: %v", id, err)
		}
		resp.ImageURL = url
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EntryHandler) UpdateEntry(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req types.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	entry := model.FoodEntry{
		ID:    id,
		Name:  req.Name,
		Emoji: req.Emoji,
		Nutrition: model.Nutrition{
			Calories:    req.Calories,
			Fats:        req.Fats,
			Proteins:    req.Proteins,
			Carbs:       req.Carbs,
			WeightGrams: req.WeightGrams,
		},
	}
	if req.Date != nil {
		entry.Date = *req.Date
	}

	updated, err := h.entries.Update(c.Request.Context(), entry)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *EntryHandler) UpdateWeight(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req types.UpdateWeightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "weight_grams is required"})
		return
	}

	updated, err := h.entries.UpdateWeight(c.Request.Context(), id, req.WeightGrams)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteEntry returns the removed entry so the client can offer an undo
// through RestoreEntry.
func (h *EntryHandler) DeleteEntry(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	outcome, err := h.entries.Delete(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (h *EntryHandler) RestoreEntry(c *gin.Context) {
	var entry model.FoodEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	restored, err := h.entries.Restore(c.Request.Context(), entry)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, restored)
}

// UploadImage accepts a multipart "image" file and attaches it to the entry.
func (h *EntryHandler) UploadImage(c *gin.Context) {
	if h.images == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "image storage is not configured"})
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxImageBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
		return
	}

	entry, err := h.images.Attach(c.Request.Context(), id, data, header.Header.Get("Content-Type"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *EntryHandler) GetSummary(c *gin.Context) {
	date, ok := dateQuery(c, h.now)
	if !ok {
		return
	}
	summary, err := h.entries.Summary(c.Request.Context(), date)
	if err != nil {
		_ = c.Error(err)
		return
	}
	limits, err := h.limits.Limits(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, summaryResponse{
		Date:     date,
		Summary:  summary,
		Limits:   limits,
		Progress: service.ProgressAgainst(summary, limits),
	})
}

func (h *EntryHandler) GetHistory(c *gin.Context) {
	history, err := h.entries.History(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	if history == nil {
		history = []service.DayHistory{}
	}
	c.JSON(http.StatusOK, gin.H{"days": history})
}
