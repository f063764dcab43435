package dto

import (
	"time"

	"github.com/smartcollab/models"
)

// DashboardResponse is the landing page of a signed-in user
type DashboardResponse struct {
	UserFullName        string             `json:"userFullName"`
	ActiveProjectsCount int                `json:"activeProjectsCount"`
	OngoingTasksCount   int                `json:"ongoingTasksCount"`
	CompletedTasksCount int                `json:"completedTasksCount"`
	TeamMembersCount    int                `json:"teamMembersCount"`
	TodayTasks          []DashboardTask    `json:"todayTasks"`
	UpcomingTasks       []DashboardTask    `json:"upcomingTasks"`
	RecentActivities    []ActivityResponse `json:"recentActivities"`
	RecentProjects      []DashboardProject `json:"recentProjects"`
}

// DashboardTask is a compact task card
type DashboardTask struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	ProjectID   string            `json:"projectId"`
	ProjectName string            `json:"projectName"`
	Status      models.TaskStatus `json:"status"`
	Priority    models.Priority   `json:"priority"`
	Deadline    time.Time         `json:"deadline"`
}

// DashboardProject is a compact project card
type DashboardProject struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Color     string               `json:"color"`
	Status    models.ProjectStatus `json:"status"`
	EndDate   time.Time            `json:"endDate"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// ActivityResponse is one line of the recent activity feed
type ActivityResponse struct {
	UserName  string    `json:"userName"`
	Action    string    `json:"action"`
	Target    string    `json:"target"`
	Date      time.Time `json:"date"`
	AvatarURL string    `json:"avatarUrl"`
}

// NewDashboardTask builds a task card
func NewDashboardTask(t models.ProjectTask) DashboardTask {
	card := DashboardTask{
		ID:        t.ID,
		Title:     t.Title,
		ProjectID: t.ProjectID,
		Status:    t.Status,
		Priority:  t.Priority,
		Deadline:  t.Deadline,
	}
	if t.Project != nil {
		card.ProjectName = t.Project.Name
	}
	return card
}
