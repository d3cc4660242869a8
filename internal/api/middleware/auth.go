package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"linkup-service/internal/service"
	"linkup-service/pkg/response"
)

// ContextUserID is the gin context key the auth middleware sets.
const ContextUserID = "userId"

// Auth validates the bearer token and stores the caller's user id on
// the request context.
func Auth(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization header")
			c.Abort()
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			response.Error(c, http.StatusUnauthorized, "malformed authorization header")
			c.Abort()
			return
		}

		userID, err := auth.ParseToken(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// UserID reads the authenticated user id set by Auth.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
