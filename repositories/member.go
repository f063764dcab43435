package repositories

import (
	"context"

	"github.com/smartcollab/models"
	"gorm.io/gorm"
)

// MemberRepository handles project memberships
type MemberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new membership repository instance
func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// WithTx returns a copy bound to the given transaction
func (r *MemberRepository) WithTx(tx *gorm.DB) *MemberRepository {
	return &MemberRepository{db: tx}
}

// Find returns the membership of a user in a project
func (r *MemberRepository) Find(ctx context.Context, projectID, userID string) (models.ProjectMember, error) {
	var member models.ProjectMember
	result := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member)
	return member, result.Error
}

// FindByID retrieves a membership by its ID
func (r *MemberRepository) FindByID(ctx context.Context, id string) (models.ProjectMember, error) {
	var member models.ProjectMember
	result := r.db.WithContext(ctx).First(&member, "id = ?", id)
	return member, result.Error
}

// Create inserts a membership
func (r *MemberRepository) Create(ctx context.Context, member *models.ProjectMember) error {
	return r.db.WithContext(ctx).Omit("Project", "User").Create(member).Error
}

// ListByProject returns the members of a project with their users, ordered by join date
func (r *MemberRepository) ListByProject(ctx context.Context, projectID string) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	result := r.db.WithContext(ctx).
		Preload("User").
		Where("project_id = ?", projectID).
		Order("joined_at ASC").
		Find(&members)
	return members, result.Error
}

// ListByUser returns the memberships of a user together with their projects
func (r *MemberRepository) ListByUser(ctx context.Context, userID string, archived bool) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	result := r.db.WithContext(ctx).
		Preload("Project").
		Where("user_id = ? AND is_archived = ?", userID, archived).
		Find(&members)
	return members, result.Error
}

// FindByIDsInProject loads the given memberships, restricted to one project
func (r *MemberRepository) FindByIDsInProject(ctx context.Context, projectID string, ids []string) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	if len(ids) == 0 {
		return members, nil
	}
	result := r.db.WithContext(ctx).
		Where("project_id = ? AND id IN ?", projectID, ids).
		Find(&members)
	return members, result.Error
}

// CountUsersInProjects returns how many distinct users are members of the projects
func (r *MemberRepository) CountUsersInProjects(ctx context.Context, projectIDs []string) (int64, error) {
	var count int64
	if len(projectIDs) == 0 {
		return 0, nil
	}
	err := r.db.WithContext(ctx).Model(&models.ProjectMember{}).
		Where("project_id IN ?", projectIDs).
		Distinct("user_id").
		Count(&count).Error
	return count, err
}

// UserIDsInProject returns which of the given users belong to the project
func (r *MemberRepository) UserIDsInProject(ctx context.Context, projectID string, userIDs []string) ([]string, error) {
	var ids []string
	if len(userIDs) == 0 {
		return ids, nil
	}
	err := r.db.WithContext(ctx).Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id IN ?", projectID, userIDs).
		Pluck("user_id", &ids).Error
	return ids, err
}

// SetArchived updates the member-scoped archive flag
func (r *MemberRepository) SetArchived(ctx context.Context, id string, archived bool) error {
	return r.db.WithContext(ctx).Model(&models.ProjectMember{}).Where("id = ?", id).
		Update("is_archived", archived).Error
}

// SetFavorite updates the member-scoped favorite flag
func (r *MemberRepository) SetFavorite(ctx context.Context, id string, favorite bool) error {
	return r.db.WithContext(ctx).Model(&models.ProjectMember{}).Where("id = ?", id).
		Update("is_favorite", favorite).Error
}

// Delete removes a membership with the member's comments, mentions and task
// assignments inside the project. Files and tasks the member created are kept.
func (r *MemberRepository) Delete(ctx context.Context, member models.ProjectMember) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&models.ProjectTask{}).Select("id").Where("project_id = ?", member.ProjectID)

		if err := tx.Where("task_id IN (?) AND user_id = ?", taskIDs, member.UserID).
			Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}
		// comments written by the member go with the membership
		authored := tx.Model(&models.Comment{}).Select("id").Where("project_member_id = ?", member.ID)
		if err := tx.Where("comment_id IN (?) OR project_member_id = ?", authored, member.ID).
			Delete(&models.CommentMention{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_member_id = ?", member.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ProjectFile{}).Where("project_member_id = ?", member.ID).
			Update("project_member_id", nil).Error; err != nil {
			return err
		}
		// tasks created by the member keep existing without a creator
		if err := tx.Model(&models.ProjectTask{}).Where("created_by_id = ?", member.ID).
			Update("created_by_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ProjectMember{}, "id = ?", member.ID).Error
	})
}

// RolesByUser maps every project the user belongs to onto the user's role there
func (r *MemberRepository) RolesByUser(ctx context.Context, userID string) (map[string]models.Role, error) {
	var members []models.ProjectMember
	err := r.db.WithContext(ctx).
		Select("project_id", "role").
		Where("user_id = ?", userID).
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	roles := make(map[string]models.Role, len(members))
	for _, m := range members {
		roles[m.ProjectID] = m.Role
	}
	return roles, nil
}
