package repositories

import (
	"context"

	"github.com/smartcollab/models"
	"gorm.io/gorm"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a copy bound to the given transaction
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

// FindByID retrieves a user by its ID
func (r *UserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	result := r.db.WithContext(ctx).First(&user, "id = ?", id)
	return user, result.Error
}

// FindByEmail looks up the canonical (lower-cased) email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	result := r.db.WithContext(ctx).First(&user, "email = ?", models.NormalizeEmail(email))
	return user, result.Error
}

// EmailTaken checks whether another account already uses the email
func (r *UserRepository) EmailTaken(ctx context.Context, email, exceptID string) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", models.NormalizeEmail(email))
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// Create inserts a new user into the database
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// profileColumns are the columns a profile edit may write
var profileColumns = []string{
	"first_name", "last_name", "email", "phone_number", "position",
	"department", "country", "city", "profile_picture_path", "skills", "updated_at",
}

// Update saves the profile columns of the user, leaving the password hash untouched
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	user.Email = models.NormalizeEmail(user.Email)
	return r.db.WithContext(ctx).Model(user).Select(profileColumns).Updates(user).Error
}

// UpdatePassword replaces the stored password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, userID, hash string) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("password_hash", hash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
