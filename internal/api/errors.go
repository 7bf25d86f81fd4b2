package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodtracking/backend/internal/model"
	"github.com/pageza/foodtracking/backend/internal/service"
)

// StatusFor maps service errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrEntryNotFound), errors.Is(err, service.ErrFavoriteNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidEntry),
		errors.Is(err, service.ErrInvalidProfile),
		errors.Is(err, service.ErrUnsupportedImage):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return 0, false
	}
	return uint(id), true
}

// dateQuery reads ?date=YYYY-MM-DD, defaulting to today.
func dateQuery(c *gin.Context, now func() time.Time) (model.Date, bool) {
	raw := c.Query("date")
	if raw == "" {
		return model.DateOf(now()), true
	}
	date, err := model.ParseDate(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return model.Date{}, false
	}
	return date, true
}
