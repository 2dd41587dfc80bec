package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/larder/backend/internal/service"
	"github.com/pageza/larder/backend/internal/store"
	"github.com/pageza/larder/backend/internal/types"
	"github.com/pageza/larder/backend/internal/wizard"
)

// Status maps a domain error to its HTTP status.
func Status(err error) int {
	switch {
	case service.IsValidation(err),
		errors.Is(err, wizard.ErrIncompleteStep),
		errors.Is(err, wizard.ErrWrongStep),
		errors.Is(err, store.ErrFieldNotWritable):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, store.ErrNoOwner):
		return http.StatusUnauthorized
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, service.ErrItemNotFound),
		errors.Is(err, wizard.ErrDraftNotFound),
		errors.Is(err, wizard.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, wizard.ErrNotFinalStep):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// ErrorHandler renders the last error a handler attached with c.Error as a
// JSON error response. Server errors are logged and their detail withheld.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status := Status(err)
		msg := err.Error()
		if status == http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.String("uid", UserID(c)),
				zap.Error(err))
			msg = "internal server error"
		}
		c.JSON(status, types.ErrorResponse{Error: msg})
	}
}

// Recovery turns a panic into a logged 500 JSON response.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
			zap.Stack("stack"))
		c.AbortWithStatusJSON(http.StatusInternalServerError, types.ErrorResponse{Error: "internal server error"})
	})
}
