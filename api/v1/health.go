package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthCheck pings the database
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		state, database := "ok", "ok"
		code := http.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			state, database = "error", "unavailable"
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status":   state,
			"service":  "smartcollab-api",
			"version":  "1.0.0",
			"database": database,
		})
	}
}
