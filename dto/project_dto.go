package dto

import (
	"time"

	"github.com/smartcollab/models"
	"github.com/smartcollab/utils"
)

// ProjectRequest represents the create and edit project form
type ProjectRequest struct {
	Name        string    `json:"name" binding:"required,max=200"`
	Description string    `json:"description" binding:"max=2000"`
	Color       string    `json:"color" binding:"required,hexcolor"`
	Status      string    `json:"status" binding:"omitempty,projectstatus"`
	StartDate   time.Time `json:"startDate" binding:"required"`
	EndDate     time.Time `json:"endDate" binding:"required,gtefield=StartDate"`
}

// InviteMemberRequest adds an existing user to a project
type InviteMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,role"`
}

// ProjectListItem is one row of the project index
type ProjectListItem struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Color       string               `json:"color"`
	Status      models.ProjectStatus `json:"status"`
	StartDate   time.Time            `json:"startDate"`
	EndDate     time.Time            `json:"endDate"`
	Role        models.Role          `json:"role"`
	IsFavorite  bool                 `json:"isFavorite"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// ArchivedProjectResponse is one row of the archive page
type ArchivedProjectResponse struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	CompletedTasksCount int       `json:"completedTasksCount"`
	ArchivedAt          time.Time `json:"archivedAt"`
}

// ProjectMemberResponse describes a member of a project
type ProjectMemberResponse struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	FullName  string      `json:"fullName"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	AvatarURL string      `json:"avatarUrl"`
	JoinedAt  time.Time   `json:"joinedAt"`
}

// RecentTaskResponse is a task summary on the project page
type RecentTaskResponse struct {
	ID                  string            `json:"id"`
	Title               string            `json:"title"`
	Status              models.TaskStatus `json:"status"`
	Priority            models.Priority   `json:"priority"`
	Deadline            time.Time         `json:"deadline"`
	AssignedMemberNames []string          `json:"assignedMemberNames"`
}

// AttachmentResponse describes an uploaded file
type AttachmentResponse struct {
	ID           string    `json:"id"`
	FileName     string    `json:"fileName"`
	FileTypeIcon string    `json:"fileTypeIcon"`
	ColorClass   string    `json:"colorClass"`
	Size         string    `json:"size"`
	URL          string    `json:"url"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// ProjectDetailResponse is the project page
type ProjectDetailResponse struct {
	ID                  string                  `json:"id"`
	Name                string                  `json:"name"`
	Description         string                  `json:"description"`
	Color               string                  `json:"color"`
	Status              models.ProjectStatus    `json:"status"`
	StartDate           time.Time               `json:"startDate"`
	EndDate             time.Time               `json:"endDate"`
	DaysRemaining       int                     `json:"daysRemaining"`
	CompletedTasksCount int                     `json:"completedTasksCount"`
	TotalTasksCount     int                     `json:"totalTasksCount"`
	OverdueTasksCount   int                     `json:"overdueTasksCount"`
	Progress            int                     `json:"progress"`
	RecentTasks         []RecentTaskResponse    `json:"recentTasks"`
	TeamMembers         []ProjectMemberResponse `json:"teamMembers"`
	RecentFiles         []AttachmentResponse    `json:"recentFiles"`
	IsFavorite          bool                    `json:"isFavorite"`
	IsArchived          bool                    `json:"isArchived"`
	UserRole            models.Role             `json:"userRole"`
}

// NewProjectMemberResponse builds the member view
func NewProjectMemberResponse(m models.ProjectMember) ProjectMemberResponse {
	resp := ProjectMemberResponse{
		ID:       m.ID,
		UserID:   m.UserID,
		Role:     m.Role,
		JoinedAt: m.JoinedAt,
	}
	if m.User != nil {
		resp.FullName = m.User.FullName()
		resp.Email = m.User.Email
		resp.AvatarURL = AvatarURL(m.User.FirstName, m.User.LastName, AvatarSmall)
	}
	return resp
}

// NewAttachmentResponse builds the attachment view of a file
func NewAttachmentResponse(f models.ProjectFile) AttachmentResponse {
	icon, color := utils.FileTypeIcon(f.Name)
	return AttachmentResponse{
		ID:           f.ID,
		FileName:     f.Name,
		FileTypeIcon: icon,
		ColorClass:   color,
		Size:         utils.FormatFileSize(f.Size),
		URL:          UploadURL(f.StoragePath),
		UploadedAt:   f.UploadedAt,
	}
}

// DaysRemaining counts whole days until end, negative once it has passed
func DaysRemaining(end, now time.Time) int {
	return int(end.Sub(now).Hours() / 24)
}
