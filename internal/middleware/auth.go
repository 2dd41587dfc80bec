package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/larder/backend/internal/service"
	"github.com/pageza/larder/backend/internal/types"
)

const (
	userIDKey = "user_id"
	emailKey  = "email"
)

// AuthMiddleware creates a middleware that validates bearer tokens and stores
// the caller's identity in the context.
func AuthMiddleware(validator service.TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, types.ErrorResponse{Error: "missing authorization header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, types.ErrorResponse{Error: "invalid authorization header format"})
			return
		}

		identity, err := validator.ValidateToken(c.Request.Context(), parts[1])
		if err != nil || identity == nil || identity.UID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, types.ErrorResponse{Error: service.ErrUnauthenticated.Error()})
			return
		}

		c.Set(userIDKey, identity.UID)
		c.Set(emailKey, identity.Email)
		c.Next()
	}
}

// UserID returns the authenticated uid, or "" outside AuthMiddleware.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
