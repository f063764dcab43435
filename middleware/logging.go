package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestLogger writes one log line per request
func RequestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		entry := log.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      path,
			"status":    status,
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		})
		if userID := UserID(c); userID != "" {
			entry = entry.WithField("user_id", userID)
		}
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}

		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case status >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request handled")
		}
	}
}

// Recovery turns panics into a 500. With redirect set, browsers are sent to the error page.
func Recovery(log *logrus.Logger, redirect bool) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(log.WriterLevel(logrus.ErrorLevel), func(c *gin.Context, recovered any) {
		log.WithField("path", c.Request.URL.Path).Errorf("panic recovered: %v", recovered)
		if redirect {
			c.Redirect(http.StatusFound, "/errors/500")
			c.Abort()
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "An unexpected error occurred",
		})
	})
}
