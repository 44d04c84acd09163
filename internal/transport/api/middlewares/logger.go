package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "requestID"
)

// Logger пишет по одной записи на запрос. Приватные ошибки логируются с уровнем Error, публичные - Warn.
func Logger(l logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		fields := logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
			"client_ip":  c.ClientIP(),
		}
		if userID := c.GetInt64(CurrentUserIDKey); userID != 0 {
			fields["user_id"] = userID
		}
		entry := l.WithFields(fields)

		if privateErrs := c.Errors.ByType(gin.ErrorTypePrivate); len(privateErrs) > 0 {
			entry.WithField("errors", privateErrs.String()).Error("request failed")
			return
		}
		if publicErrs := c.Errors.ByType(gin.ErrorTypePublic); len(publicErrs) > 0 {
			entry.WithField("errors", publicErrs.String()).Warn("request rejected")
			return
		}
		entry.Info("request")
	}
}
