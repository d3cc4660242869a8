package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"linkup-service/internal/repository"
	"linkup-service/pkg/logger"
	"linkup-service/pkg/response"
)

// RateLimit caps requests per client IP and path inside a rolling
// window, backed by the shared Redis counter. A Redis outage fails
// open.
func RateLimit(codes repository.CodeRepository, limit int, window time.Duration, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit:" + c.ClientIP() + ":" + c.FullPath()
		allowed, err := codes.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			log.Warn("rate limit check", "error", err)
			c.Next()
			return
		}
		if !allowed {
			response.Error(c, http.StatusTooManyRequests, "too many requests, slow down")
			c.Abort()
			return
		}
		c.Next()
	}
}
