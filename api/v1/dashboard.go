package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smartcollab/middleware"
	"github.com/smartcollab/services"
)

// DashboardController serves the landing page
type DashboardController struct {
	dashboardService *services.DashboardService
	log              *logrus.Entry
}

// NewDashboardController creates a new dashboard controller
func NewDashboardController(dashboardService *services.DashboardService, log *logrus.Entry) *DashboardController {
	return &DashboardController{dashboardService: dashboardService, log: log}
}

// RegisterRoutes registers dashboard routes
func (c *DashboardController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/dashboard", c.GetDashboard)
}

// GetDashboard godoc
// @Summary Counts, today's and upcoming tasks, recent activity and projects
// @Tags dashboard
// @Produce json
// @Success 200 {object} dto.DashboardResponse
// @Router /dashboard [get]
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	dashboard, err := c.dashboardService.GetDashboard(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		respondError(ctx, c.log, "v1.GetDashboard", err)
		return
	}
	respondData(ctx, http.StatusOK, dashboard)
}
