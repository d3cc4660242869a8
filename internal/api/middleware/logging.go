package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"linkup-service/pkg/logger"
)

// LogAPI emits one structured line per request.
func LogAPI(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Info("http request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"clientIp", c.ClientIP(),
		)
	}
}
