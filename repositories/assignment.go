package repositories

import (
	"context"

	"github.com/smartcollab/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AssignmentRepository handles task assignments
type AssignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository creates a new assignment repository instance
func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// WithTx returns a copy bound to the given transaction
func (r *AssignmentRepository) WithTx(tx *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: tx}
}

// Replace swaps the whole assignment set of a task for userIDs.
// Callers run it inside a transaction; duplicates are ignored.
func (r *AssignmentRepository) Replace(ctx context.Context, taskID string, userIDs []string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("task_id = ?", taskID).Delete(&models.TaskAssignment{}).Error; err != nil {
		return err
	}
	if len(userIDs) == 0 {
		return nil
	}

	rows := make([]models.TaskAssignment, 0, len(userIDs))
	for _, userID := range userIDs {
		rows = append(rows, models.TaskAssignment{TaskID: taskID, UserID: userID})
	}
	return db.Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

// ListByTasks returns the assignments of the tasks with the assigned users loaded
func (r *AssignmentRepository) ListByTasks(ctx context.Context, taskIDs []string) ([]models.TaskAssignment, error) {
	var assignments []models.TaskAssignment
	if len(taskIDs) == 0 {
		return assignments, nil
	}
	result := r.db.WithContext(ctx).
		Preload("User").
		Where("task_id IN ?", taskIDs).
		Find(&assignments)
	return assignments, result.Error
}

// UserIDs returns the users assigned to a task
func (r *AssignmentRepository) UserIDs(ctx context.Context, taskID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.TaskAssignment{}).
		Where("task_id = ?", taskID).
		Order("user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}
