package services

import (
	"context"
	"mime/multipart"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/smartcollab/dto"
	"github.com/smartcollab/models"
	"github.com/smartcollab/repositories"
	"github.com/smartcollab/storage"
	"gorm.io/gorm"
)

const (
	listVisibleAssignees = 2
	MaxAttachmentBytes   = 10 << 20
)

// TaskService handles business logic for tasks, assignments, comments and attachments
type TaskService struct {
	db          *gorm.DB
	taskRepo    *repositories.TaskRepository
	assignRepo  *repositories.AssignmentRepository
	memberRepo  *repositories.MemberRepository
	commentRepo *repositories.CommentRepository
	fileRepo    *repositories.FileRepository
	access      *Authorizer
	store       storage.Store
	log         *logrus.Entry
}

// NewTaskService creates a new task service instance
func NewTaskService(db *gorm.DB, store storage.Store, log *logrus.Entry) *TaskService {
	return &TaskService{
		db:          db,
		taskRepo:    repositories.NewTaskRepository(db),
		assignRepo:  repositories.NewAssignmentRepository(db),
		memberRepo:  repositories.NewMemberRepository(db),
		commentRepo: repositories.NewCommentRepository(db),
		fileRepo:    repositories.NewFileRepository(db),
		access:      NewAuthorizer(db),
		store:       store,
		log:         log,
	}
}

// ListTasks returns the tasks assigned to the caller, nearest deadline first
func (s *TaskService) ListTasks(ctx context.Context, userID string, query dto.TaskListQuery) ([]dto.TaskListItem, error) {
	const op = "services.TaskService.ListTasks"

	filter := repositories.TaskFilter{ProjectID: query.ProjectID}
	if query.Status != "" {
		status, err := models.ParseTaskStatus(query.Status)
		if err != nil {
			return nil, NewValidationError("Invalid status filter.")
		}
		filter.Status = &status
	}
	if query.Priority != "" {
		priority, err := models.ParsePriority(query.Priority)
		if err != nil {
			return nil, NewValidationError("Invalid priority filter.")
		}
		filter.Priority = &priority
	}

	tasks, err := s.taskRepo.ListAssigned(ctx, userID, filter)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	roles, err := s.memberRepo.RolesByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	assignees, err := s.assigneesByTask(ctx, tasks)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	items := make([]dto.TaskListItem, 0, len(tasks))
	for _, t := range tasks {
		role := roles[t.ProjectID]
		users := assignees[t.ID]

		item := dto.TaskListItem{
			ID:              t.ID,
			Title:           t.Title,
			Description:     t.Description,
			ProjectID:       t.ProjectID,
			Status:          t.Status,
			Priority:        t.Priority,
			Deadline:        t.Deadline,
			AssignedMembers: []dto.AssignedMemberResponse{},
			CanEdit:         role.CanEditTasks(),
			CanDelete:       role.CanEditTasks(),
			CanAssign:       role.CanAssignTasks(),
		}
		if t.Project != nil {
			item.ProjectName = t.Project.Name
		}
		for i, u := range users {
			if i == listVisibleAssignees {
				break
			}
			item.AssignedMembers = append(item.AssignedMembers, dto.NewAssignedMember(u, true))
		}
		if len(users) > listVisibleAssignees {
			item.RemainingAssignedCount = len(users) - listVisibleAssignees
		}
		items = append(items, item)
	}
	return items, nil
}

// assigneesByTask groups the assigned users of each task, sorted by first name
func (s *TaskService) assigneesByTask(ctx context.Context, tasks []models.ProjectTask) (map[string][]models.User, error) {
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	assignments, err := s.assignRepo.ListByTasks(ctx, ids)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]models.User, len(tasks))
	for _, a := range assignments {
		if a.User != nil {
			grouped[a.TaskID] = append(grouped[a.TaskID], *a.User)
		}
	}
	for _, users := range grouped {
		sortUsers(users)
	}
	return grouped, nil
}

func sortUsers(users []models.User) {
	sort.SliceStable(users, func(i, j int) bool {
		if users[i].FirstName != users[j].FirstName {
			return users[i].FirstName < users[j].FirstName
		}
		return users[i].LastName < users[j].LastName
	})
}

// GetCreateForm lists the members that can be assigned to a new task
func (s *TaskService) GetCreateForm(ctx context.Context, userID, projectID string) (*dto.TaskFormResponse, error) {
	if _, err := s.access.Membership(ctx, projectID, userID); err != nil {
		return nil, err
	}
	members, err := s.projectMembers(ctx, projectID)
	if err != nil {
		return nil, errors.Wrap(err, "services.TaskService.GetCreateForm")
	}
	return &dto.TaskFormResponse{
		ProjectID:       projectID,
		AssignedUserIDs: []string{},
		ProjectMembers:  members,
	}, nil
}

// CreateTask creates a task and its assignments; any member may do it
func (s *TaskService) CreateTask(ctx context.Context, userID string, req dto.TaskRequest) (*models.ProjectTask, error) {
	const op = "services.TaskService.CreateTask"

	member, err := s.access.Membership(ctx, req.ProjectID, userID)
	if err != nil {
		return nil, err
	}

	task := models.ProjectTask{
		ProjectID:   req.ProjectID,
		CreatedByID: &member.ID,
	}
	fields := taskFields{req.Title, req.Description, req.Status, req.Priority, req.Deadline}
	if err := fields.apply(&task); err != nil {
		return nil, err
	}

	assignees, err := s.validateAssignees(ctx, req.ProjectID, req.AssignedUserIDs)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.taskRepo.WithTx(tx).Create(ctx, &task); err != nil {
			return err
		}
		return s.assignRepo.WithTx(tx).Replace(ctx, task.ID, assignees)
	})
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	s.log.WithField("operation", op).WithField("task_id", task.ID).Info("task created")
	return &task, nil
}

// GetEditForm loads a task with its assignees; Owner and Manager only
func (s *TaskService) GetEditForm(ctx context.Context, userID, taskID string) (*dto.TaskFormResponse, error) {
	const op = "services.TaskService.GetEditForm"

	task, err := s.loadTask(ctx, taskID, op)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.Require(ctx, task.ProjectID, userID, models.Role.CanEditTasks); err != nil {
		return nil, err
	}
	return s.form(ctx, task, op)
}

// UpdateTask edits a task and fully replaces its assignees; Owner and Manager only
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID string, req dto.TaskUpdateRequest) (*models.ProjectTask, error) {
	const op = "services.TaskService.UpdateTask"

	task, err := s.loadTask(ctx, taskID, op)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.Require(ctx, task.ProjectID, userID, models.Role.CanEditTasks); err != nil {
		return nil, err
	}

	fields := taskFields{req.Title, req.Description, req.Status, req.Priority, req.Deadline}
	if err := fields.apply(&task); err != nil {
		return nil, err
	}
	assignees, err := s.validateAssignees(ctx, task.ProjectID, req.AssignedUserIDs)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.taskRepo.WithTx(tx).Update(ctx, &task); err != nil {
			return err
		}
		return s.assignRepo.WithTx(tx).Replace(ctx, task.ID, assignees)
	})
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	return &task, nil
}

// DeleteTask removes a task and its dependents; Owner and Manager only
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID string) error {
	const op = "services.TaskService.DeleteTask"

	task, err := s.loadTask(ctx, taskID, op)
	if err != nil {
		return err
	}
	if _, err := s.access.Require(ctx, task.ProjectID, userID, models.Role.CanEditTasks); err != nil {
		return err
	}
	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return notFound(err, op)
	}

	s.log.WithField("operation", op).WithField("task_id", taskID).Info("task deleted")
	return nil
}

// GetAssignForm lists the candidates for assignment; Owner only
func (s *TaskService) GetAssignForm(ctx context.Context, userID, taskID string) (*dto.TaskFormResponse, error) {
	const op = "services.TaskService.GetAssignForm"

	task, err := s.loadTask(ctx, taskID, op)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.Require(ctx, task.ProjectID, userID, models.Role.CanAssignTasks); err != nil {
		return nil, err
	}
	return s.form(ctx, task, op)
}

// AssignTask replaces the assignees of a task; Owner only
func (s *TaskService) AssignTask(ctx context.Context, userID, taskID string, userIDs []string) error {
	const op = "services.TaskService.AssignTask"

	task, err := s.loadTask(ctx, taskID, op)
	if err != nil {
		return err
	}
	if _, err := s.access.Require(ctx, task.ProjectID, userID, models.Role.CanAssignTasks); err != nil {
		return err
	}
	assignees, err := s.validateAssignees(ctx, task.ProjectID, userIDs)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.assignRepo.WithTx(tx).Replace(ctx, task.ID, assignees)
	})
	if err != nil {
		return errors.Wrap(err, op)
	}
	return nil
}

// GetTaskDetail builds the task page for any member of the task's project
func (s *TaskService) GetTaskDetail(ctx context.Context, userID, taskID string) (*dto.TaskDetailResponse, error) {
	const op = "services.TaskService.GetTaskDetail"

	task, err := s.loadTask(ctx, taskID, op)
	if err != nil {
		return nil, err
	}
	member, err := s.access.Membership(ctx, task.ProjectID, userID)
	if err != nil {
		return nil, err
	}

	assignees, err := s.assigneesByTask(ctx, []models.ProjectTask{task})
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	comments, err := s.commentRepo.ListByTask(ctx, task.ID)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	commentIDs := make([]string, 0, len(comments))
	for _, c := range comments {
		commentIDs = append(commentIDs, c.ID)
	}
	mentions, err := s.commentRepo.MentionedMemberIDs(ctx, commentIDs)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	files, err := s.fileRepo.ListByTask(ctx, task.ID)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	resp := &dto.TaskDetailResponse{
		ID:              task.ID,
		Title:           task.Title,
		Description:     task.Description,
		Status:          task.Status,
		Priority:        task.Priority,
		Deadline:        task.Deadline,
		ProjectID:       task.ProjectID,
		AssignedMembers: []dto.AssignedMemberResponse{},
		Comments:        make([]dto.CommentResponse, 0, len(comments)),
		Attachments:     make([]dto.AttachmentResponse, 0, len(files)),
		Tags:            []dto.TagResponse{},
		CanEdit:         member.Role.CanEditTasks(),
		CanDelete:       member.Role.CanEditTasks(),
	}
	if task.Project != nil {
		resp.ProjectName = task.Project.Name
	}
	for _, u := range assignees[task.ID] {
		resp.AssignedMembers = append(resp.AssignedMembers, dto.NewAssignedMember(u, false))
	}
	for _, c := range comments {
		comment := dto.NewCommentResponse(c)
		comment.MentionedMemberIDs = mentions[c.ID]
		resp.Comments = append(resp.Comments, comment)
	}
	for _, f := range files {
		resp.Attachments = append(resp.Attachments, dto.NewAttachmentResponse(f))
	}
	return resp, nil
}

// AddComment posts a comment; mentions must point at members of the same project
func (s *TaskService) AddComment(ctx context.Context, userID, taskID string, req dto.CommentRequest) (*dto.CommentResponse, error) {
	const op = "services.TaskService.AddComment"

	task, err := s.loadTask(ctx, taskID, op)
	if err != nil {
		return nil, err
	}
	member, err := s.access.Membership(ctx, task.ProjectID, userID)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, NewValidationError("The comment cannot be empty.")
	}

	mentions := uniqueIDs(req.MentionedMemberIDs)
	found, err := s.memberRepo.FindByIDsInProject(ctx, task.ProjectID, mentions)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	if len(found) != len(mentions) {
		return nil, NewValidationError("Only project members can be mentioned.")
	}

	comment := models.Comment{
		Content:         content,
		TaskID:          task.ID,
		ProjectMemberID: member.ID,
	}
	if err := s.commentRepo.Create(ctx, &comment, mentions); err != nil {
		return nil, errors.Wrap(err, op)
	}

	user, err := repositories.NewUserRepository(s.db).FindByID(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	member.User = &user
	comment.ProjectMember = &member

	resp := dto.NewCommentResponse(comment)
	resp.MentionedMemberIDs = mentions
	return &resp, nil
}

// UploadAttachment stores a file on the task; Viewers are read-only
func (s *TaskService) UploadAttachment(ctx context.Context, userID, taskID string, header *multipart.FileHeader) (*dto.AttachmentResponse, error) {
	const op = "services.TaskService.UploadAttachment"

	task, err := s.loadTask(ctx, taskID, op)
	if err != nil {
		return nil, err
	}
	member, err := s.access.Require(ctx, task.ProjectID, userID, models.Role.CanUpload)
	if err != nil {
		return nil, err
	}
	if header == nil || header.Size == 0 {
		return nil, NewValidationError("Please choose a file to upload.")
	}
	if header.Size > MaxAttachmentBytes {
		return nil, NewValidationError("The file is larger than 10 MB.")
	}

	src, err := header.Open()
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	defer src.Close()

	path, size, err := s.store.Save(ctx, storage.DirTasks, header.Filename, src)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	file := models.ProjectFile{
		Name:            header.Filename,
		Size:            size,
		Type:            header.Header.Get("Content-Type"),
		StoragePath:     path,
		ProjectMemberID: &member.ID,
		TaskID:          &task.ID,
	}
	if err := s.fileRepo.Create(ctx, &file); err != nil {
		if rmErr := s.store.Remove(path); rmErr != nil {
			s.log.WithField("operation", op).WithError(rmErr).Warn("orphaned upload")
		}
		return nil, errors.Wrap(err, op)
	}

	resp := dto.NewAttachmentResponse(file)
	return &resp, nil
}

func (s *TaskService) loadTask(ctx context.Context, taskID, op string) (models.ProjectTask, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return task, notFound(err, op)
	}
	return task, nil
}

func (s *TaskService) form(ctx context.Context, task models.ProjectTask, op string) (*dto.TaskFormResponse, error) {
	assigned, err := s.assignRepo.UserIDs(ctx, task.ID)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	members, err := s.projectMembers(ctx, task.ProjectID)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	if assigned == nil {
		assigned = []string{}
	}
	return &dto.TaskFormResponse{
		Task:            &task,
		ProjectID:       task.ProjectID,
		AssignedUserIDs: assigned,
		ProjectMembers:  members,
	}, nil
}

func (s *TaskService) projectMembers(ctx context.Context, projectID string) ([]dto.AssignedMemberResponse, error) {
	members, err := s.memberRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(members))
	for _, m := range members {
		if m.User != nil {
			users = append(users, *m.User)
		}
	}
	sortUsers(users)

	resp := make([]dto.AssignedMemberResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, dto.NewAssignedMember(u, true))
	}
	return resp, nil
}

// validateAssignees drops duplicates and rejects users outside the project
func (s *TaskService) validateAssignees(ctx context.Context, projectID string, userIDs []string) ([]string, error) {
	ids := uniqueIDs(userIDs)
	if len(ids) == 0 {
		return ids, nil
	}
	members, err := s.memberRepo.UserIDsInProject(ctx, projectID, ids)
	if err != nil {
		return nil, errors.Wrap(err, "validate assignees")
	}
	if len(members) != len(ids) {
		return nil, NewValidationError("Only project members can be assigned to a task.")
	}
	return ids, nil
}

// taskFields is the part of the create and edit forms copied onto the task
type taskFields struct {
	title       string
	description string
	status      string
	priority    string
	deadline    time.Time
}

func (f taskFields) apply(task *models.ProjectTask) error {
	if task.Status == "" {
		task.Status = models.TaskNotStarted
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}

	if f.status != "" {
		parsed, err := models.ParseTaskStatus(f.status)
		if err != nil {
			return NewValidationError("Invalid task status.")
		}
		task.Status = parsed
	}
	if f.priority != "" {
		parsed, err := models.ParsePriority(f.priority)
		if err != nil {
			return NewValidationError("Invalid priority.")
		}
		task.Priority = parsed
	}

	task.Title = strings.TrimSpace(f.title)
	task.Description = strings.TrimSpace(f.description)
	task.Deadline = f.deadline.UTC()
	if task.Title == "" {
		return NewValidationError("The title is required.")
	}
	return nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
