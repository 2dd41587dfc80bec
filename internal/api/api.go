// Package api exposes the recipe, grocery list and wizard operations over
// HTTP, plus realtime snapshots as Server-Sent Events.
package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/larder/backend/internal/middleware"
	"github.com/pageza/larder/backend/internal/service"
)

// bindJSON decodes the request body into dst. Malformed bodies are reported
// as validation errors.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &service.ValidationError{Field: "body", Message: "request body is required"}
		}
		return &service.ValidationError{Field: "body", Message: err.Error()}
	}
	return nil
}

// indexParam parses a non-negative integer path parameter.
func indexParam(c *gin.Context, name string) (int, error) {
	i, err := strconv.Atoi(c.Param(name))
	if err != nil || i < 0 {
		return 0, &service.ValidationError{Field: name, Message: "must be a non-negative integer"}
	}
	return i, nil
}

// fail hands err to middleware.ErrorHandler.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func uid(c *gin.Context) string {
	return middleware.UserID(c)
}

// HealthCheck returns the health status of the API
func HealthCheck(check func() error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			if err := check(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}
