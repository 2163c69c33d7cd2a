package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestLogger writes one access-log line per request. Headers and bodies are
// never logged, so tokens and passwords stay out of the log.
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := requestFields(c)
		fields["status"] = c.Writer.Status()
		fields["latency_ms"] = time.Since(start).Milliseconds()
		fields["ip"] = ipFromCtx(c)
		if route := c.FullPath(); route != "" {
			fields["route"] = route
		}
		entry := logger.WithFields(fields)

		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("request")
		case status >= 400:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}
