package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

var errorPages = map[string]struct {
	status  int
	message string
}{
	"403": {http.StatusForbidden, "You do not have access to this resource"},
	"404": {http.StatusNotFound, "The page you are looking for does not exist"},
	"500": {http.StatusInternalServerError, "An unexpected error occurred"},
}

// RegisterErrorRoutes serves the generic error pages
func RegisterErrorRoutes(router gin.IRouter) {
	router.GET("/errors/:code", func(c *gin.Context) {
		page, ok := errorPages[c.Param("code")]
		if !ok {
			page = errorPages["404"]
		}
		c.JSON(page.status, gin.H{
			"status":  "error",
			"message": page.message,
		})
	})
}

// NotFound answers unknown routes
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"status":  "error",
		"message": errorPages["404"].message,
	})
}
