package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusMapper maps a handler error to an HTTP status code.
type StatusMapper func(err error) int

// ErrorHandler renders errors attached with c.Error as JSON, using mapStatus
// to pick the status code. Panics are logged and answered with a 500.
func ErrorHandler(mapStatus StatusMapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[ErrorHandler] Panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, r)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal Server Error"})
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status := mapStatus(err)
		if status >= http.StatusInternalServerError {
			log.Printf("[ErrorHandler] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
			c.JSON(status, ErrorResponse{Error: "Internal Server Error"})
			return
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
	}
}
