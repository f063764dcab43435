package repositories

import (
	"context"

	"github.com/smartcollab/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FileRepository handles uploaded file records
type FileRepository struct {
	db *gorm.DB
}

// NewFileRepository creates a new file repository instance
func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

// Create inserts a file record
func (r *FileRepository) Create(ctx context.Context, file *models.ProjectFile) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(file).Error
}

// ListByTask returns a task's files, newest first
func (r *FileRepository) ListByTask(ctx context.Context, taskID string) ([]models.ProjectFile, error) {
	var files []models.ProjectFile
	result := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("uploaded_at DESC").
		Find(&files)
	return files, result.Error
}

// RecentInProject returns the newest files attached to tasks of a project
func (r *FileRepository) RecentInProject(ctx context.Context, projectID string, limit int) ([]models.ProjectFile, error) {
	var files []models.ProjectFile
	taskIDs := r.db.Model(&models.ProjectTask{}).Select("id").Where("project_id = ?", projectID)
	result := r.db.WithContext(ctx).
		Where("task_id IN (?)", taskIDs).
		Order("uploaded_at DESC").
		Limit(limit).
		Find(&files)
	return files, result.Error
}
