package repositories

import (
	"context"

	"github.com/smartcollab/models"
	"gorm.io/gorm"
)

// ProjectRepository handles database operations for projects
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository instance
func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// WithTx returns a copy bound to the given transaction
func (r *ProjectRepository) WithTx(tx *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: tx}
}

// FindByID retrieves a project by its ID
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (models.Project, error) {
	var project models.Project
	result := r.db.WithContext(ctx).First(&project, "id = ?", id)
	return project, result.Error
}

// Create inserts a new project into the database
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// Update modifies the editable columns of a project
func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Model(project).Select(
		"Name", "Description", "Status", "Color", "StartDate", "EndDate", "UpdatedAt",
	).Updates(project).Error
}

// Delete removes a project and everything that references it.
// Order matters: rows are removed leaf first so RESTRICT foreign keys never trip.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&models.ProjectTask{}).Select("id").Where("project_id = ?", id)
		memberIDs := tx.Model(&models.ProjectMember{}).Select("id").Where("project_id = ?", id)
		commentIDs := tx.Model(&models.Comment{}).Select("id").Where("task_id IN (?)", taskIDs)

		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&models.CommentMention{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_member_id IN (?)", memberIDs).Delete(&models.CommentMention{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}

		// files survive their task and uploader
		if err := tx.Model(&models.ProjectFile{}).Where("task_id IN (?)", taskIDs).
			Update("task_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ProjectFile{}).Where("project_member_id IN (?)", memberIDs).
			Update("project_member_id", nil).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectTask{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Project{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
