package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one line per request through logrus
func RequestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"ip":      c.ClientIP(),
		}
		if userID, ok := c.Get(UserIDKey); ok {
			fields["userId"] = userID
		}

		entry := log.WithFields(fields)
		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("Request completed")
		case status >= 400:
			entry.Warn("Request completed")
		default:
			entry.Info("Request completed")
		}
	}
}
