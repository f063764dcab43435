package dto

import (
	"time"

	"github.com/smartcollab/models"
)

// TaskListQuery holds the optional filters of the task list
type TaskListQuery struct {
	ProjectID string `form:"projectId"`
	Status    string `form:"status" binding:"omitempty,taskstatus"`
	Priority  string `form:"priority" binding:"omitempty,priority"`
}

// TaskRequest represents the create task form
type TaskRequest struct {
	ProjectID       string    `json:"projectId" binding:"required"`
	Title           string    `json:"title" binding:"required,max=200"`
	Description     string    `json:"description" binding:"max=5000"`
	Status          string    `json:"status" binding:"omitempty,taskstatus"`
	Priority        string    `json:"priority" binding:"omitempty,priority"`
	Deadline        time.Time `json:"deadline" binding:"required"`
	AssignedUserIDs []string  `json:"assignedUserIds"`
}

// TaskUpdateRequest represents the edit task form
type TaskUpdateRequest struct {
	Title           string    `json:"title" binding:"required,max=200"`
	Description     string    `json:"description" binding:"max=5000"`
	Status          string    `json:"status" binding:"omitempty,taskstatus"`
	Priority        string    `json:"priority" binding:"omitempty,priority"`
	Deadline        time.Time `json:"deadline" binding:"required"`
	AssignedUserIDs []string  `json:"assignedUserIds"`
}

// AssignTaskRequest replaces the assignees of a task
type AssignTaskRequest struct {
	UserIDs []string `json:"userIds"`
}

// CommentRequest adds a comment to a task
type CommentRequest struct {
	Content            string   `json:"content" binding:"required,max=4000"`
	MentionedMemberIDs []string `json:"mentionedMemberIds"`
}

// AssignedMemberResponse is an assignee or a candidate assignee
type AssignedMemberResponse struct {
	UserID    string `json:"userId"`
	FullName  string `json:"fullName"`
	AvatarURL string `json:"avatarUrl"`
}

// TaskListItem is one row of the task list
type TaskListItem struct {
	ID                     string                   `json:"id"`
	Title                  string                   `json:"title"`
	Description            string                   `json:"description"`
	ProjectID              string                   `json:"projectId"`
	ProjectName            string                   `json:"projectName"`
	Status                 models.TaskStatus        `json:"status"`
	Priority               models.Priority          `json:"priority"`
	Deadline               time.Time                `json:"deadline"`
	AssignedMembers        []AssignedMemberResponse `json:"assignedMembers"`
	RemainingAssignedCount int                      `json:"remainingAssignedCount"`
	CanEdit                bool                     `json:"canEdit"`
	CanDelete              bool                     `json:"canDelete"`
	CanAssign              bool                     `json:"canAssign"`
}

// TaskFormResponse feeds the create and edit forms
type TaskFormResponse struct {
	Task            *models.ProjectTask      `json:"task,omitempty"`
	ProjectID       string                   `json:"projectId"`
	AssignedUserIDs []string                 `json:"assignedUserIds"`
	ProjectMembers  []AssignedMemberResponse `json:"projectMembers"`
}

// CommentResponse is a comment with its author
type CommentResponse struct {
	ID                 string    `json:"id"`
	AuthorName         string    `json:"authorName"`
	AvatarURL          string    `json:"avatarUrl"`
	CreatedAt          time.Time `json:"createdAt"`
	Content            string    `json:"content"`
	MentionedMemberIDs []string  `json:"mentionedMemberIds,omitempty"`
}

// TagResponse is a task label
type TagResponse struct {
	Name           string `json:"name"`
	BgColorClass   string `json:"bgColorClass"`
	TextColorClass string `json:"textColorClass"`
}

// TaskDetailResponse is the task page
type TaskDetailResponse struct {
	ID              string                   `json:"id"`
	Title           string                   `json:"title"`
	Description     string                   `json:"description"`
	Status          models.TaskStatus        `json:"status"`
	Priority        models.Priority          `json:"priority"`
	Deadline        time.Time                `json:"deadline"`
	ProjectID       string                   `json:"projectId"`
	ProjectName     string                   `json:"projectName"`
	AssignedMembers []AssignedMemberResponse `json:"assignedMembers"`
	Comments        []CommentResponse        `json:"comments"`
	Attachments     []AttachmentResponse     `json:"attachments"`
	Tags            []TagResponse            `json:"tags"`
	CanEdit         bool                     `json:"canEdit"`
	CanDelete       bool                     `json:"canDelete"`
}

// NewAssignedMember builds the assignee view; compact lists use initials
func NewAssignedMember(u models.User, initialsOnly bool) AssignedMemberResponse {
	avatar := AvatarURL(u.FirstName, u.LastName, AvatarSmall)
	if initialsOnly {
		avatar = InitialsAvatarURL(u.FirstName, u.LastName, AvatarSmall)
	}
	return AssignedMemberResponse{
		UserID:    u.ID,
		FullName:  u.FullName(),
		AvatarURL: avatar,
	}
}

// NewCommentResponse builds the comment view
func NewCommentResponse(c models.Comment) CommentResponse {
	resp := CommentResponse{
		ID:        c.ID,
		CreatedAt: c.CreatedAt,
		Content:   c.Content,
	}
	if c.ProjectMember != nil && c.ProjectMember.User != nil {
		u := c.ProjectMember.User
		resp.AuthorName = u.FullName()
		resp.AvatarURL = AvatarURL(u.FirstName, u.LastName, AvatarMedium)
	}
	return resp
}
