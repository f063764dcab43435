package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smartcollab/dto"
	"github.com/smartcollab/middleware"
	"github.com/smartcollab/services"
)

// ProjectController handles project-related API endpoints
type ProjectController struct {
	projectService *services.ProjectService
	log            *logrus.Entry
}

// NewProjectController creates a new project controller
func NewProjectController(projectService *services.ProjectService, log *logrus.Entry) *ProjectController {
	return &ProjectController{
		projectService: projectService,
		log:            log,
	}
}

// RegisterRoutes registers project routes
func (c *ProjectController) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects")
	{
		projects.GET("", c.ListProjects)
		projects.GET("/archived", c.ListArchived)
		projects.POST("", c.CreateProject)
		projects.GET("/:id", c.GetProject)
		projects.GET("/:id/edit", c.GetProjectForEdit)
		projects.PUT("/:id", c.UpdateProject)
		projects.DELETE("/:id", c.DeleteProject)
		projects.POST("/:id/archive", c.ArchiveProject)
		projects.POST("/:id/restore", c.RestoreProject)
		projects.POST("/:id/favorite", c.ToggleFavorite)
		projects.POST("/:id/leave", c.LeaveProject)
		projects.GET("/:id/members", c.ListMembers)
		projects.POST("/:id/members", c.InviteMember)
		projects.DELETE("/:id/members/:memberId", c.RemoveMember)
	}
}

// ListProjects godoc
// @Summary List the caller's active projects, favorites first
// @Tags projects
// @Produce json
// @Success 200 {array} dto.ProjectListItem
// @Router /projects [get]
func (c *ProjectController) ListProjects(ctx *gin.Context) {
	projects, err := c.projectService.ListProjects(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		respondError(ctx, c.log, "v1.ListProjects", err)
		return
	}
	respondData(ctx, http.StatusOK, projects)
}

// ListArchived godoc
// @Summary List the projects the caller archived
// @Tags projects
// @Produce json
// @Success 200 {array} dto.ArchivedProjectResponse
// @Router /projects/archived [get]
func (c *ProjectController) ListArchived(ctx *gin.Context) {
	projects, err := c.projectService.ListArchived(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		respondError(ctx, c.log, "v1.ListArchived", err)
		return
	}
	respondData(ctx, http.StatusOK, projects)
}

// CreateProject godoc
// @Summary Create a project owned by the caller
// @Tags projects
// @Accept json
// @Produce json
// @Param project body dto.ProjectRequest true "Project"
// @Success 201 {object} models.Project
// @Failure 422 {object} map[string]interface{}
// @Router /projects [post]
func (c *ProjectController) CreateProject(ctx *gin.Context) {
	var req dto.ProjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	project, err := c.projectService.CreateProject(ctx.Request.Context(), middleware.UserID(ctx), req)
	if err != nil {
		respondError(ctx, c.log, "v1.CreateProject", err)
		return
	}
	respondData(ctx, http.StatusCreated, project)
}

// GetProject godoc
// @Summary Project page with statistics, recent tasks, members and files
// @Tags projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} dto.ProjectDetailResponse
// @Failure 403 {object} map[string]interface{}
// @Router /projects/{id} [get]
func (c *ProjectController) GetProject(ctx *gin.Context) {
	detail, err := c.projectService.GetProjectDetail(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.log, "v1.GetProject", err)
		return
	}
	respondData(ctx, http.StatusOK, detail)
}

// GetProjectForEdit returns the stored project for the edit form
func (c *ProjectController) GetProjectForEdit(ctx *gin.Context) {
	project, err := c.projectService.GetProjectForEdit(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.log, "v1.GetProjectForEdit", err)
		return
	}
	respondData(ctx, http.StatusOK, project)
}

// UpdateProject godoc
// @Summary Edit a project (Owner or Manager)
// @Tags projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param project body dto.ProjectRequest true "Project"
// @Success 200 {object} models.Project
// @Router /projects/{id} [put]
func (c *ProjectController) UpdateProject(ctx *gin.Context) {
	var req dto.ProjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	project, err := c.projectService.UpdateProject(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, c.log, "v1.UpdateProject", err)
		return
	}
	respondData(ctx, http.StatusOK, project)
}

// DeleteProject godoc
// @Summary Delete a project with its tasks, members and comments (Owner)
// @Tags projects
// @Param id path string true "Project ID"
// @Success 200 {object} map[string]interface{}
// @Router /projects/{id} [delete]
func (c *ProjectController) DeleteProject(ctx *gin.Context) {
	if err := c.projectService.DeleteProject(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("id")); err != nil {
		respondError(ctx, c.log, "v1.DeleteProject", err)
		return
	}
	respondMessage(ctx, http.StatusOK, "Project deleted successfully")
}

func (c *ProjectController) ArchiveProject(ctx *gin.Context) {
	c.setArchived(ctx, true)
}

func (c *ProjectController) RestoreProject(ctx *gin.Context) {
	c.setArchived(ctx, false)
}

func (c *ProjectController) setArchived(ctx *gin.Context, archived bool) {
	if err := c.projectService.SetArchived(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("id"), archived); err != nil {
		respondError(ctx, c.log, "v1.SetArchived", err)
		return
	}
	if archived {
		respondMessage(ctx, http.StatusOK, "Project archived")
		return
	}
	respondMessage(ctx, http.StatusOK, "Project restored")
}

// ToggleFavorite flips the caller's favorite flag
func (c *ProjectController) ToggleFavorite(ctx *gin.Context) {
	favorite, err := c.projectService.ToggleFavorite(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.log, "v1.ToggleFavorite", err)
		return
	}
	respondData(ctx, http.StatusOK, gin.H{"isFavorite": favorite})
}

// LeaveProject removes the caller from the project
func (c *ProjectController) LeaveProject(ctx *gin.Context) {
	if err := c.projectService.LeaveProject(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("id")); err != nil {
		respondError(ctx, c.log, "v1.LeaveProject", err)
		return
	}
	respondMessage(ctx, http.StatusOK, "You left the project")
}

func (c *ProjectController) ListMembers(ctx *gin.Context) {
	members, err := c.projectService.ListMembers(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.log, "v1.ListMembers", err)
		return
	}
	respondData(ctx, http.StatusOK, members)
}

// InviteMember godoc
// @Summary Add an existing user to the project (Owner)
// @Tags projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param member body dto.InviteMemberRequest true "Invitation"
// @Success 201 {object} dto.ProjectMemberResponse
// @Router /projects/{id}/members [post]
func (c *ProjectController) InviteMember(ctx *gin.Context) {
	var req dto.InviteMemberRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	member, err := c.projectService.InviteMember(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, c.log, "v1.InviteMember", err)
		return
	}
	respondData(ctx, http.StatusCreated, dto.NewProjectMemberResponse(*member))
}

// RemoveMember removes another member (Owner)
func (c *ProjectController) RemoveMember(ctx *gin.Context) {
	err := c.projectService.RemoveMember(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("id"), ctx.Param("memberId"))
	if err != nil {
		respondError(ctx, c.log, "v1.RemoveMember", err)
		return
	}
	respondMessage(ctx, http.StatusOK, "Member removed")
}
