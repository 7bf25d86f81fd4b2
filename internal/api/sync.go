package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodtracking/backend/internal/service"
	"github.com/pageza/foodtracking/backend/internal/types"
)

// Syncer reconciles recent entries with the health store.
type Syncer interface {
	SyncRecent(ctx context.Context) *service.SyncResult
}

// SyncHandler triggers a manual reconciliation.
type SyncHandler struct {
	syncer  Syncer
	limiter gin.HandlerFunc
}

// NewSyncHandler creates a new SyncHandler. limiter may be nil.
func NewSyncHandler(syncer Syncer, limiter gin.HandlerFunc) *SyncHandler {
	return &SyncHandler{syncer: syncer, limiter: limiter}
}

// RegisterRoutes registers the sync route on an authenticated group.
func (h *SyncHandler) RegisterRoutes(router *gin.RouterGroup) {
	if h.limiter != nil {
		router.POST("/sync", h.limiter, h.Sync)
		return
	}
	router.POST("/sync", h.Sync)
}

// Sync runs one batch. Per-entry failures are reported in the body with a
// 200; only an unreachable store or an unreadable diary fail the request.
func (h *SyncHandler) Sync(c *gin.Context) {
	result := h.syncer.SyncRecent(c.Request.Context())

	resp := types.SyncResponse{
		Message:      result.Message(),
		Checked:      result.Checked,
		Inserted:     result.Inserted,
		Reinserted:   result.Reinserted,
		Updated:      result.Updated,
		InsertFailed: result.InsertFailed,
		UpdateFailed: result.UpdateFailed,
		Skipped:      result.Skipped,
	}
	if result.Err != nil {
		resp.Error = result.Err.Error()
		status := http.StatusInternalServerError
		if errors.Is(result.Err, service.ErrStoreUnavailable) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
