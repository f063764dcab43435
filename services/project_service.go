package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/smartcollab/dto"
	"github.com/smartcollab/models"
	"github.com/smartcollab/repositories"
	"github.com/smartcollab/utils"
	"gorm.io/gorm"
)

const (
	projectRecentTasks = 3
	projectRecentFiles = 4
)

// ProjectService handles business logic for projects and memberships
type ProjectService struct {
	db          *gorm.DB
	projectRepo *repositories.ProjectRepository
	memberRepo  *repositories.MemberRepository
	userRepo    *repositories.UserRepository
	taskRepo    *repositories.TaskRepository
	assignRepo  *repositories.AssignmentRepository
	fileRepo    *repositories.FileRepository
	access      *Authorizer
	log         *logrus.Entry
	now         func() time.Time
}

// NewProjectService creates a new project service instance
func NewProjectService(db *gorm.DB, log *logrus.Entry) *ProjectService {
	return &ProjectService{
		db:          db,
		projectRepo: repositories.NewProjectRepository(db),
		memberRepo:  repositories.NewMemberRepository(db),
		userRepo:    repositories.NewUserRepository(db),
		taskRepo:    repositories.NewTaskRepository(db),
		assignRepo:  repositories.NewAssignmentRepository(db),
		fileRepo:    repositories.NewFileRepository(db),
		access:      NewAuthorizer(db),
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// ListProjects returns the caller's active (non-archived) projects, favorites first
func (s *ProjectService) ListProjects(ctx context.Context, userID string) ([]dto.ProjectListItem, error) {
	memberships, err := s.memberRepo.ListByUser(ctx, userID, false)
	if err != nil {
		return nil, errors.Wrap(err, "services.ProjectService.ListProjects")
	}

	items := make([]dto.ProjectListItem, 0, len(memberships))
	for _, m := range memberships {
		if m.Project == nil {
			continue
		}
		p := m.Project
		items = append(items, dto.ProjectListItem{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Color:       p.Color,
			Status:      p.Status,
			StartDate:   p.StartDate,
			EndDate:     p.EndDate,
			Role:        m.Role,
			IsFavorite:  m.IsFavorite,
			UpdatedAt:   p.LastActivity(),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].IsFavorite != items[j].IsFavorite {
			return items[i].IsFavorite
		}
		return items[i].UpdatedAt.After(items[j].UpdatedAt)
	})
	return items, nil
}

// ListArchived returns the projects the caller has archived
func (s *ProjectService) ListArchived(ctx context.Context, userID string) ([]dto.ArchivedProjectResponse, error) {
	const op = "services.ProjectService.ListArchived"

	memberships, err := s.memberRepo.ListByUser(ctx, userID, true)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	ids := make([]string, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.ProjectID)
	}
	completed, err := s.taskRepo.CountCompletedByProjects(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	items := make([]dto.ArchivedProjectResponse, 0, len(memberships))
	for _, m := range memberships {
		if m.Project == nil {
			continue
		}
		items = append(items, dto.ArchivedProjectResponse{
			ID:                  m.Project.ID,
			Name:                m.Project.Name,
			Description:         m.Project.Description,
			CompletedTasksCount: completed[m.ProjectID],
			ArchivedAt:          m.Project.LastActivity(),
		})
	}
	return items, nil
}

// CreateProject persists the project and the creator's Owner membership together
func (s *ProjectService) CreateProject(ctx context.Context, userID string, req dto.ProjectRequest) (*models.Project, error) {
	const op = "services.ProjectService.CreateProject"

	project, err := projectFromRequest(models.Project{}, req)
	if err != nil {
		return nil, err
	}
	project.CreatedByID = userID

	// Begin a transaction so the project never exists without its owner
	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := s.projectRepo.WithTx(tx).Create(ctx, &project); err != nil {
		tx.Rollback()
		return nil, errors.Wrap(err, op)
	}

	owner := models.ProjectMember{
		ProjectID: project.ID,
		UserID:    userID,
		Role:      models.RoleOwner,
	}
	if err := s.memberRepo.WithTx(tx).Create(ctx, &owner); err != nil {
		tx.Rollback()
		return nil, errors.Wrap(err, op)
	}

	// Commit the transaction
	if err := tx.Commit().Error; err != nil {
		return nil, errors.Wrap(err, op)
	}

	s.log.WithField("operation", op).WithField("project_id", project.ID).Info("project created")
	return &project, nil
}

// GetProjectDetail builds the project page; non-members get ErrForbidden
func (s *ProjectService) GetProjectDetail(ctx context.Context, userID, projectID string) (*dto.ProjectDetailResponse, error) {
	const op = "services.ProjectService.GetProjectDetail"

	membership, err := s.access.Membership(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, notFound(err, op)
	}

	tasks, err := s.taskRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	members, err := s.memberRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	files, err := s.fileRepo.RecentInProject(ctx, projectID, projectRecentFiles)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	now := s.now()
	resp := &dto.ProjectDetailResponse{
		ID:              project.ID,
		Name:            project.Name,
		Description:     project.Description,
		Color:           project.Color,
		Status:          project.Status,
		StartDate:       project.StartDate,
		EndDate:         project.EndDate,
		DaysRemaining:   dto.DaysRemaining(project.EndDate, now),
		TotalTasksCount: len(tasks),
		RecentTasks:     []dto.RecentTaskResponse{},
		TeamMembers:     make([]dto.ProjectMemberResponse, 0, len(members)),
		RecentFiles:     make([]dto.AttachmentResponse, 0, len(files)),
		IsFavorite:      membership.IsFavorite,
		IsArchived:      membership.IsArchived,
		UserRole:        membership.Role,
	}

	for _, t := range tasks {
		if t.Status == models.TaskCompleted {
			resp.CompletedTasksCount++
		}
		if t.IsOverdue(now) {
			resp.OverdueTasksCount++
		}
	}
	resp.Progress = utils.CalculatePercentage(resp.CompletedTasksCount, resp.TotalTasksCount)

	// tasks come newest first
	recent := tasks
	if len(recent) > projectRecentTasks {
		recent = recent[:projectRecentTasks]
	}
	names, err := s.assigneeNames(ctx, recent)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	for _, t := range recent {
		resp.RecentTasks = append(resp.RecentTasks, dto.RecentTaskResponse{
			ID:                  t.ID,
			Title:               t.Title,
			Status:              t.Status,
			Priority:            t.Priority,
			Deadline:            t.Deadline,
			AssignedMemberNames: names[t.ID],
		})
	}

	for _, m := range members {
		resp.TeamMembers = append(resp.TeamMembers, dto.NewProjectMemberResponse(m))
	}
	for _, f := range files {
		resp.RecentFiles = append(resp.RecentFiles, dto.NewAttachmentResponse(f))
	}

	return resp, nil
}

func (s *ProjectService) assigneeNames(ctx context.Context, tasks []models.ProjectTask) (map[string][]string, error) {
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	assignments, err := s.assignRepo.ListByTasks(ctx, ids)
	if err != nil {
		return nil, err
	}

	names := make(map[string][]string, len(tasks))
	for _, t := range tasks {
		names[t.ID] = []string{}
	}
	for _, a := range assignments {
		if a.User != nil {
			names[a.TaskID] = append(names[a.TaskID], a.User.FullName())
		}
	}
	for _, list := range names {
		sort.Strings(list)
	}
	return names, nil
}

// GetProjectForEdit loads the edit form; Owner and Manager only
func (s *ProjectService) GetProjectForEdit(ctx context.Context, userID, projectID string) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, notFound(err, "services.ProjectService.GetProjectForEdit")
	}
	if _, err := s.access.Require(ctx, projectID, userID, models.Role.CanEditProject); err != nil {
		return nil, err
	}
	return &project, nil
}

// UpdateProject applies the edit form; Owner and Manager only
func (s *ProjectService) UpdateProject(ctx context.Context, userID, projectID string, req dto.ProjectRequest) (*models.Project, error) {
	const op = "services.ProjectService.UpdateProject"

	existing, err := s.GetProjectForEdit(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	project, err := projectFromRequest(*existing, req)
	if err != nil {
		return nil, err
	}
	project.UpdatedAt = s.now()

	if err := s.projectRepo.Update(ctx, &project); err != nil {
		return nil, errors.Wrap(err, op)
	}
	return &project, nil
}

// DeleteProject removes the project and all its dependents; Owner only
func (s *ProjectService) DeleteProject(ctx context.Context, userID, projectID string) error {
	const op = "services.ProjectService.DeleteProject"

	if _, err := s.projectRepo.FindByID(ctx, projectID); err != nil {
		return notFound(err, op)
	}
	if _, err := s.access.Require(ctx, projectID, userID, models.Role.CanDeleteProject); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(ctx, projectID); err != nil {
		return notFound(err, op)
	}

	s.log.WithField("operation", op).WithField("project_id", projectID).Info("project deleted")
	return nil
}

// SetArchived archives or restores the project for the caller only
func (s *ProjectService) SetArchived(ctx context.Context, userID, projectID string, archived bool) error {
	member, err := s.access.Membership(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if err := s.memberRepo.SetArchived(ctx, member.ID, archived); err != nil {
		return errors.Wrap(err, "services.ProjectService.SetArchived")
	}
	return nil
}

// ToggleFavorite flips the caller's favorite flag and returns the new value
func (s *ProjectService) ToggleFavorite(ctx context.Context, userID, projectID string) (bool, error) {
	member, err := s.access.Membership(ctx, projectID, userID)
	if err != nil {
		return false, err
	}
	favorite := !member.IsFavorite
	if err := s.memberRepo.SetFavorite(ctx, member.ID, favorite); err != nil {
		return false, errors.Wrap(err, "services.ProjectService.ToggleFavorite")
	}
	return favorite, nil
}

// InviteMember adds an existing user to the project; Owner only
func (s *ProjectService) InviteMember(ctx context.Context, userID, projectID string, req dto.InviteMemberRequest) (*models.ProjectMember, error) {
	const op = "services.ProjectService.InviteMember"

	if _, err := s.access.Require(ctx, projectID, userID, models.Role.CanManageMembers); err != nil {
		return nil, err
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		return nil, NewValidationError("Invalid role.")
	}

	invitee, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewValidationError("No user exists with this email address.")
		}
		return nil, errors.Wrap(err, op)
	}

	if _, err := s.memberRepo.Find(ctx, projectID, invitee.ID); err == nil {
		return nil, NewValidationError("This user is already a member of the project.")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, op)
	}

	member := models.ProjectMember{
		ProjectID:  projectID,
		UserID:     invitee.ID,
		Role:       role,
		IsArchived: false,
	}
	if err := s.memberRepo.Create(ctx, &member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewValidationError("This user is already a member of the project.")
		}
		return nil, errors.Wrap(err, op)
	}

	member.User = &invitee
	s.log.WithField("operation", op).
		WithField("project_id", projectID).
		WithField("member_id", member.ID).
		Info("member invited")
	return &member, nil
}

// ListMembers returns the members of a project visible to any member
func (s *ProjectService) ListMembers(ctx context.Context, userID, projectID string) ([]dto.ProjectMemberResponse, error) {
	if _, err := s.access.Membership(ctx, projectID, userID); err != nil {
		return nil, err
	}
	members, err := s.memberRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, errors.Wrap(err, "services.ProjectService.ListMembers")
	}
	resp := make([]dto.ProjectMemberResponse, 0, len(members))
	for _, m := range members {
		resp = append(resp, dto.NewProjectMemberResponse(m))
	}
	return resp, nil
}

// RemoveMember removes another member; Owner only and never an Owner membership
func (s *ProjectService) RemoveMember(ctx context.Context, userID, projectID, memberID string) error {
	const op = "services.ProjectService.RemoveMember"

	if _, err := s.access.Require(ctx, projectID, userID, models.Role.CanManageMembers); err != nil {
		return err
	}

	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil || member.ProjectID != projectID {
		if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return errors.Wrap(err, op)
	}
	if member.Role == models.RoleOwner {
		return NewValidationError("The project owner cannot be removed.")
	}

	if err := s.memberRepo.Delete(ctx, member); err != nil {
		return errors.Wrap(err, op)
	}
	return nil
}

// LeaveProject removes the caller's own membership; an Owner can never leave
func (s *ProjectService) LeaveProject(ctx context.Context, userID, projectID string) error {
	member, err := s.access.Membership(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if !member.Role.CanLeave() {
		return NewValidationError("The project owner cannot leave the project.")
	}
	if err := s.memberRepo.Delete(ctx, member); err != nil {
		return errors.Wrap(err, "services.ProjectService.LeaveProject")
	}
	return nil
}

func projectFromRequest(project models.Project, req dto.ProjectRequest) (models.Project, error) {
	status := project.Status
	if status == "" {
		status = models.ProjectNotStarted
	}
	if req.Status != "" {
		parsed, err := models.ParseProjectStatus(req.Status)
		if err != nil {
			return project, NewValidationError("Invalid project status.")
		}
		status = parsed
	}
	if req.EndDate.Before(req.StartDate) {
		return project, NewValidationError("The end date must be after the start date.")
	}

	project.Name = strings.TrimSpace(req.Name)
	project.Description = strings.TrimSpace(req.Description)
	project.Color = req.Color
	project.Status = status
	project.StartDate = req.StartDate.UTC()
	project.EndDate = req.EndDate.UTC()
	return project, nil
}
