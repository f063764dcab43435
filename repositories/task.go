package repositories

import (
	"context"

	"github.com/smartcollab/models"
	"gorm.io/gorm"
)

// TaskFilter narrows the tasks assigned to a user
type TaskFilter struct {
	ProjectID string
	Status    *models.TaskStatus
	Priority  *models.Priority
}

// TaskRepository handles database operations for tasks
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository instance
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// WithTx returns a copy bound to the given transaction
func (r *TaskRepository) WithTx(tx *gorm.DB) *TaskRepository {
	return &TaskRepository{db: tx}
}

// FindByID retrieves a task with its project
func (r *TaskRepository) FindByID(ctx context.Context, id string) (models.ProjectTask, error) {
	var task models.ProjectTask
	result := r.db.WithContext(ctx).Preload("Project").First(&task, "id = ?", id)
	return task, result.Error
}

// Create inserts a new task
func (r *TaskRepository) Create(ctx context.Context, task *models.ProjectTask) error {
	return r.db.WithContext(ctx).Omit("Project", "CreatedBy").Create(task).Error
}

// Update modifies the editable columns of a task
func (r *TaskRepository) Update(ctx context.Context, task *models.ProjectTask) error {
	return r.db.WithContext(ctx).Model(task).Select(
		"Title", "Description", "Status", "Priority", "Deadline", "UpdatedAt",
	).Updates(task).Error
}

// Delete removes a task after its mentions, comments and assignments;
// attached files lose their task reference but stay.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Model(&models.Comment{}).Select("id").Where("task_id = ?", id)

		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&models.CommentMention{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ProjectFile{}).Where("task_id = ?", id).Update("task_id", nil).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.ProjectTask{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ListAssigned returns the tasks assigned to the user, nearest deadline first
func (r *TaskRepository) ListAssigned(ctx context.Context, userID string, filter TaskFilter) ([]models.ProjectTask, error) {
	var tasks []models.ProjectTask

	db := r.db.WithContext(ctx).Model(&models.ProjectTask{}).
		Select("project_tasks.*").
		Preload("Project").
		Joins("JOIN task_assignments ON task_assignments.task_id = project_tasks.id").
		Where("task_assignments.user_id = ?", userID)

	if filter.ProjectID != "" {
		db = db.Where("project_tasks.project_id = ?", filter.ProjectID)
	}
	if filter.Status != nil {
		db = db.Where("project_tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		db = db.Where("project_tasks.priority = ?", *filter.Priority)
	}

	result := db.Order("project_tasks.deadline ASC").Find(&tasks)
	return tasks, result.Error
}

// ListByProject returns all tasks of a project, newest first
func (r *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]models.ProjectTask, error) {
	var tasks []models.ProjectTask
	result := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&tasks)
	return tasks, result.Error
}

// CountCompletedByProjects counts completed tasks per project
func (r *TaskRepository) CountCompletedByProjects(ctx context.Context, projectIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(projectIDs))
	if len(projectIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		ProjectID string
		Total     int
	}
	err := r.db.WithContext(ctx).Model(&models.ProjectTask{}).
		Select("project_id, COUNT(*) AS total").
		Where("project_id IN ? AND status = ?", projectIDs, models.TaskCompleted).
		Group("project_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ProjectID] = row.Total
	}
	return counts, nil
}
