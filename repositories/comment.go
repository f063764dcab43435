package repositories

import (
	"context"

	"github.com/smartcollab/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository handles task comments and their mentions
type CommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository instance
func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create stores the comment and its mentions together
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment, mentionedMemberIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(comment).Error; err != nil {
			return err
		}
		if len(mentionedMemberIDs) == 0 {
			return nil
		}
		mentions := make([]models.CommentMention, 0, len(mentionedMemberIDs))
		for _, id := range mentionedMemberIDs {
			mentions = append(mentions, models.CommentMention{CommentID: comment.ID, ProjectMemberID: id})
		}
		return tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&mentions).Error
	})
}

// ListByTask returns a task's comments oldest first with the authors loaded
func (r *CommentRepository) ListByTask(ctx context.Context, taskID string) ([]models.Comment, error) {
	var comments []models.Comment
	result := r.db.WithContext(ctx).
		Preload("ProjectMember.User").
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&comments)
	return comments, result.Error
}

// RecentInProjects returns the newest comments left on tasks of the given projects
func (r *CommentRepository) RecentInProjects(ctx context.Context, projectIDs []string, limit int) ([]models.Comment, error) {
	var comments []models.Comment
	if len(projectIDs) == 0 {
		return comments, nil
	}
	taskIDs := r.db.Model(&models.ProjectTask{}).Select("id").Where("project_id IN ?", projectIDs)
	result := r.db.WithContext(ctx).
		Preload("ProjectMember.User").
		Preload("Task").
		Where("task_id IN (?)", taskIDs).
		Order("created_at DESC").
		Limit(limit).
		Find(&comments)
	return comments, result.Error
}

// MentionedMemberIDs returns the mentioned members keyed by comment ID
func (r *CommentRepository) MentionedMemberIDs(ctx context.Context, commentIDs []string) (map[string][]string, error) {
	mentions := make(map[string][]string, len(commentIDs))
	if len(commentIDs) == 0 {
		return mentions, nil
	}

	var rows []models.CommentMention
	err := r.db.WithContext(ctx).
		Where("comment_id IN (?)", commentIDs).
		Order("comment_id, project_member_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, m := range rows {
		mentions[m.CommentID] = append(mentions[m.CommentID], m.ProjectMemberID)
	}
	return mentions, nil
}
