package services

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/smartcollab/dto"
	"github.com/smartcollab/models"
	"github.com/smartcollab/repositories"
	"gorm.io/gorm"
)

const (
	dashboardUpcomingTasks  = 3
	dashboardRecentComments = 5
	dashboardRecentProjects = 3
)

// DashboardService aggregates the landing page of a user
type DashboardService struct {
	userRepo    *repositories.UserRepository
	memberRepo  *repositories.MemberRepository
	taskRepo    *repositories.TaskRepository
	commentRepo *repositories.CommentRepository
	log         *logrus.Entry
	now         func() time.Time
}

// NewDashboardService creates a new dashboard service instance
func NewDashboardService(db *gorm.DB, log *logrus.Entry) *DashboardService {
	return &DashboardService{
		userRepo:    repositories.NewUserRepository(db),
		memberRepo:  repositories.NewMemberRepository(db),
		taskRepo:    repositories.NewTaskRepository(db),
		commentRepo: repositories.NewCommentRepository(db),
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the clock; dates are compared in UTC
func (s *DashboardService) SetClock(now func() time.Time) {
	s.now = now
}

// GetDashboard builds the dashboard of the user
func (s *DashboardService) GetDashboard(ctx context.Context, userID string) (*dto.DashboardResponse, error) {
	const op = "services.DashboardService.GetDashboard"

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, op)
	}

	active, err := s.memberRepo.ListByUser(ctx, userID, false)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	tasks, err := s.taskRepo.ListAssigned(ctx, userID, repositories.TaskFilter{})
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	resp := &dto.DashboardResponse{
		UserFullName:        user.FullName(),
		ActiveProjectsCount: len(active),
		TodayTasks:          []dto.DashboardTask{},
		UpcomingTasks:       []dto.DashboardTask{},
		RecentActivities:    []dto.ActivityResponse{},
		RecentProjects:      []dto.DashboardProject{},
	}

	today := dateOf(s.now())
	// tasks arrive ordered by deadline
	for _, t := range tasks {
		if !t.IsOngoing() {
			resp.CompletedTasksCount++
			continue
		}
		resp.OngoingTasksCount++

		day := dateOf(t.Deadline)
		switch {
		case day.Equal(today):
			resp.TodayTasks = append(resp.TodayTasks, dto.NewDashboardTask(t))
		case day.After(today) && len(resp.UpcomingTasks) < dashboardUpcomingTasks:
			resp.UpcomingTasks = append(resp.UpcomingTasks, dto.NewDashboardTask(t))
		}
	}

	activeIDs := make([]string, 0, len(active))
	for _, m := range active {
		activeIDs = append(activeIDs, m.ProjectID)
	}
	teammates, err := s.memberRepo.CountUsersInProjects(ctx, activeIDs)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	resp.TeamMembersCount = int(teammates)

	activities, err := s.recentActivities(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	resp.RecentActivities = activities

	projects := make([]models.Project, 0, len(active))
	for _, m := range active {
		if m.Project != nil {
			projects = append(projects, *m.Project)
		}
	}
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].LastActivity().After(projects[j].LastActivity())
	})
	for i, p := range projects {
		if i == dashboardRecentProjects {
			break
		}
		resp.RecentProjects = append(resp.RecentProjects, dto.DashboardProject{
			ID:        p.ID,
			Name:      p.Name,
			Color:     p.Color,
			Status:    p.Status,
			EndDate:   p.EndDate,
			UpdatedAt: p.LastActivity(),
		})
	}

	return resp, nil
}

// recentActivities lists the newest comments on projects the user belongs to
func (s *DashboardService) recentActivities(ctx context.Context, userID string) ([]dto.ActivityResponse, error) {
	roles, err := s.memberRepo.RolesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	projectIDs := make([]string, 0, len(roles))
	for id := range roles {
		projectIDs = append(projectIDs, id)
	}

	comments, err := s.commentRepo.RecentInProjects(ctx, projectIDs, dashboardRecentComments)
	if err != nil {
		return nil, err
	}

	activities := make([]dto.ActivityResponse, 0, len(comments))
	for _, c := range comments {
		activity := dto.ActivityResponse{
			Action: "commented on",
			Date:   c.CreatedAt,
		}
		if c.Task != nil {
			activity.Target = c.Task.Title
		}
		if c.ProjectMember != nil && c.ProjectMember.User != nil {
			u := c.ProjectMember.User
			activity.UserName = u.FullName()
			activity.AvatarURL = dto.AvatarURL(u.FirstName, u.LastName, dto.AvatarMedium)
		}
		activities = append(activities, activity)
	}
	return activities, nil
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
