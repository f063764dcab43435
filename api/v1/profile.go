package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smartcollab/dto"
	"github.com/smartcollab/middleware"
	"github.com/smartcollab/services"
)

// ProfileController serves the current user's profile
type ProfileController struct {
	profileService *services.ProfileService
	session        *middleware.Session
	log            *logrus.Entry
}

// NewProfileController creates a new profile controller
func NewProfileController(profileService *services.ProfileService, session *middleware.Session, log *logrus.Entry) *ProfileController {
	return &ProfileController{
		profileService: profileService,
		session:        session,
		log:            log,
	}
}

// RegisterRoutes registers profile routes
func (c *ProfileController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/profile", c.GetProfile)
	router.PUT("/profile", c.UpdateProfile)
}

func (c *ProfileController) GetProfile(ctx *gin.Context) {
	profile, err := c.profileService.GetProfile(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		respondError(ctx, c.log, "v1.GetProfile", err)
		return
	}
	respondData(ctx, http.StatusOK, profile)
}

// UpdateProfile accepts multipart form data with an optional "avatar" file.
// The session is re-issued so it carries the new email.
func (c *ProfileController) UpdateProfile(ctx *gin.Context) {
	var req dto.ProfileUpdateRequest
	if err := ctx.ShouldBind(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	avatar, err := optionalFile(ctx, "avatar")
	if err != nil {
		respondBindError(ctx, err)
		return
	}

	user, err := c.profileService.UpdateProfile(ctx.Request.Context(), middleware.UserID(ctx), req, avatar)
	if err != nil {
		respondError(ctx, c.log, "v1.UpdateProfile", err)
		return
	}

	if _, err := c.session.Issue(ctx, *user, ctx.GetBool(middleware.ContextRemember)); err != nil {
		c.log.WithField("operation", "v1.UpdateProfile").WithError(err).Warn("failed to refresh session")
	}
	respondData(ctx, http.StatusOK, dto.NewProfileResponse(*user))
}
