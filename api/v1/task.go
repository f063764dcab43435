package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smartcollab/dto"
	"github.com/smartcollab/middleware"
	"github.com/smartcollab/services"
)

// TaskController handles task, comment and attachment endpoints
type TaskController struct {
	taskService *services.TaskService
	log         *logrus.Entry
}

// NewTaskController creates a new task controller
func NewTaskController(taskService *services.TaskService, log *logrus.Entry) *TaskController {
	return &TaskController{
		taskService: taskService,
		log:         log,
	}
}

// RegisterRoutes registers task routes
func (c *TaskController) RegisterRoutes(router *gin.RouterGroup) {
	tasks := router.Group("/tasks")
	{
		tasks.GET("", c.ListTasks)
		tasks.GET("/new", c.GetCreateForm)
		tasks.POST("", c.CreateTask)
		tasks.GET("/:id", c.GetTask)
		tasks.GET("/:id/edit", c.GetEditForm)
		tasks.PUT("/:id", c.UpdateTask)
		tasks.DELETE("/:id", c.DeleteTask)
		tasks.GET("/:id/assign", c.GetAssignForm)
		tasks.POST("/:id/assign", c.AssignTask)
		tasks.POST("/:id/comments", c.AddComment)
		tasks.POST("/:id/files", c.UploadFile)
	}
}

// ListTasks godoc
// @Summary Tasks assigned to the caller, nearest deadline first
// @Tags tasks
// @Produce json
// @Param projectId query string false "Project filter"
// @Param status query string false "NotStarted, InProgress or Completed"
// @Param priority query string false "Low, Medium or High"
// @Success 200 {array} dto.TaskListItem
// @Router /tasks [get]
func (c *TaskController) ListTasks(ctx *gin.Context) {
	var query dto.TaskListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		respondBindError(ctx, err)
		return
	}

	tasks, err := c.taskService.ListTasks(ctx.Request.Context(), middleware.UserID(ctx), query)
	if err != nil {
		respondError(ctx, c.log, "v1.ListTasks", err)
		return
	}
	respondData(ctx, http.StatusOK, tasks)
}

// GetCreateForm lists the assignable members of ?projectId
func (c *TaskController) GetCreateForm(ctx *gin.Context) {
	projectID := ctx.Query("projectId")
	if projectID == "" {
		respondValidation(ctx, []string{"The projectId query parameter is required."})
		return
	}

	form, err := c.taskService.GetCreateForm(ctx.Request.Context(), middleware.UserID(ctx), projectID)
	if err != nil {
		respondError(ctx, c.log, "v1.GetCreateForm", err)
		return
	}
	respondData(ctx, http.StatusOK, form)
}

// CreateTask godoc
// @Summary Create a task in a project the caller belongs to
// @Tags tasks
// @Accept json
// @Produce json
// @Param task body dto.TaskRequest true "Task"
// @Success 201 {object} models.ProjectTask
// @Router /tasks [post]
func (c *TaskController) CreateTask(ctx *gin.Context) {
	var req dto.TaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	task, err := c.taskService.CreateTask(ctx.Request.Context(), middleware.UserID(ctx), req)
	if err != nil {
		respondError(ctx, c.log, "v1.CreateTask", err)
		return
	}
	respondData(ctx, http.StatusCreated, task)
}

// GetTask godoc
// @Summary Task page with assignees, comments and attachments
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.TaskDetailResponse
// @Router /tasks/{id} [get]
func (c *TaskController) GetTask(ctx *gin.Context) {
	detail, err := c.taskService.GetTaskDetail(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.log, "v1.GetTask", err)
		return
	}
	respondData(ctx, http.StatusOK, detail)
}

func (c *TaskController) GetEditForm(ctx *gin.Context) {
	form, err := c.taskService.GetEditForm(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.log, "v1.GetEditForm", err)
		return
	}
	respondData(ctx, http.StatusOK, form)
}

// UpdateTask edits a task and replaces its assignees
func (c *TaskController) UpdateTask(ctx *gin.Context) {
	var req dto.TaskUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	task, err := c.taskService.UpdateTask(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, c.log, "v1.UpdateTask", err)
		return
	}
	respondData(ctx, http.StatusOK, task)
}

func (c *TaskController) DeleteTask(ctx *gin.Context) {
	if err := c.taskService.DeleteTask(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("id")); err != nil {
		respondError(ctx, c.log, "v1.DeleteTask", err)
		return
	}
	respondMessage(ctx, http.StatusOK, "Task deleted successfully")
}

func (c *TaskController) GetAssignForm(ctx *gin.Context) {
	form, err := c.taskService.GetAssignForm(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.log, "v1.GetAssignForm", err)
		return
	}
	respondData(ctx, http.StatusOK, form)
}

// AssignTask replaces the assignees of a task (Owner)
func (c *TaskController) AssignTask(ctx *gin.Context) {
	var req dto.AssignTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	if err := c.taskService.AssignTask(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("id"), req.UserIDs); err != nil {
		respondError(ctx, c.log, "v1.AssignTask", err)
		return
	}
	respondMessage(ctx, http.StatusOK, "Task assigned successfully")
}

// AddComment posts a comment on a task
func (c *TaskController) AddComment(ctx *gin.Context) {
	var req dto.CommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	comment, err := c.taskService.AddComment(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, c.log, "v1.AddComment", err)
		return
	}
	respondData(ctx, http.StatusCreated, comment)
}

// UploadFile stores the multipart "file" field as a task attachment
func (c *TaskController) UploadFile(ctx *gin.Context) {
	header, err := optionalFile(ctx, "file")
	if err != nil {
		respondBindError(ctx, err)
		return
	}

	attachment, err := c.taskService.UploadAttachment(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("id"), header)
	if err != nil {
		respondError(ctx, c.log, "v1.UploadFile", err)
		return
	}
	respondData(ctx, http.StatusCreated, attachment)
}
