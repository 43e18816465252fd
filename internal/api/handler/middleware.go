package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"linkedup/backend/internal/auth"
)

const userIDKey = "currentUserID"

// RequireAuth extracts the requester identity from a Bearer token and makes
// it available to handlers. Session issuance is the platform's concern;
// this middleware only consumes the token.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authorization token missing"})
			return
		}

		userID, err := auth.ParseToken(strings.TrimPrefix(header, "Bearer "), secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token or expired"})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// CurrentUserID returns the authenticated requester identity set by
// RequireAuth.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
