package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestLogger tags every request with an id and logs one line on
// completion. Websocket routes log on disconnect, so their latency
// covers the whole session.
func RequestLogger(l *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header("X-Request-Id", reqID)
		c.Set("request_id", reqID)

		c.Next()

		status := c.Writer.Status()

		fields := logrus.Fields{
			"request_id": reqID,
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"ip":         c.ClientIP(),
		}
		if userID, ok := c.Get("user_id"); ok {
			fields["user_id"] = userID
		}
		if sessionID := c.Param("session_id"); sessionID != "" {
			fields["session_id"] = sessionID
		}

		entry := l.WithFields(fields)
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			entry.Error("request")
		case status >= 400:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}
