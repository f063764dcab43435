package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/smartcollab/dto"
	"github.com/smartcollab/models"
	"github.com/smartcollab/repositories"
	"github.com/smartcollab/storage"
	"gorm.io/gorm"
)

const MaxAvatarBytes = 2 << 20

// ProfileService handles the current user's profile
type ProfileService struct {
	userRepo *repositories.UserRepository
	store    storage.Store
	log      *logrus.Entry
}

// NewProfileService creates a new profile service instance
func NewProfileService(db *gorm.DB, store storage.Store, log *logrus.Entry) *ProfileService {
	return &ProfileService{
		userRepo: repositories.NewUserRepository(db),
		store:    store,
		log:      log,
	}
}

// GetProfile returns the profile of the user
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*dto.ProfileResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "services.ProfileService.GetProfile")
	}
	resp := dto.NewProfileResponse(user)
	return &resp, nil
}

// UpdateProfile saves the profile fields and, when given, a new avatar
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, req dto.ProfileUpdateRequest, avatar *multipart.FileHeader) (*models.User, error) {
	const op = "services.ProfileService.UpdateProfile"

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, op)
	}

	taken, err := s.userRepo.EmailTaken(ctx, req.Email, user.ID)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	if taken {
		return nil, NewValidationError(fmt.Sprintf("Email '%s' is already taken.", models.NormalizeEmail(req.Email)))
	}

	previousAvatar := user.ProfilePicturePath
	if avatar != nil {
		path, err := s.saveAvatar(ctx, avatar)
		if err != nil {
			return nil, err
		}
		user.ProfilePicturePath = path
	}

	user.FirstName = strings.TrimSpace(req.FirstName)
	user.LastName = strings.TrimSpace(req.LastName)
	user.Email = req.Email
	user.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	user.Position = strings.TrimSpace(req.Position)
	user.Department = strings.TrimSpace(req.Department)
	user.Country = strings.TrimSpace(req.Country)
	user.City = strings.TrimSpace(req.City)
	user.Skills = ParseSkills(req.Skills)

	if err := s.userRepo.Update(ctx, &user); err != nil {
		if avatar != nil {
			_ = s.store.Remove(user.ProfilePicturePath)
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewValidationError(fmt.Sprintf("Email '%s' is already taken.", user.Email))
		}
		return nil, errors.Wrap(err, op)
	}

	if avatar != nil && previousAvatar != "" {
		if err := s.store.Remove(previousAvatar); err != nil {
			s.log.WithField("operation", op).WithError(err).Warn("failed to remove previous avatar")
		}
	}
	return &user, nil
}

func (s *ProfileService) saveAvatar(ctx context.Context, header *multipart.FileHeader) (string, error) {
	if header.Size > MaxAvatarBytes {
		return "", NewValidationError("The profile picture is larger than 2 MB.")
	}
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		return "", NewValidationError("The profile picture must be an image.")
	}

	src, err := header.Open()
	if err != nil {
		return "", errors.Wrap(err, "open avatar")
	}
	defer src.Close()

	path, _, err := s.store.Save(ctx, storage.DirAvatars, header.Filename, src)
	if err != nil {
		return "", errors.Wrap(err, "save avatar")
	}
	return path, nil
}

// ParseSkills splits a comma separated list and drops blanks and duplicates
func ParseSkills(raw string) []string {
	skills := []string{}
	seen := map[string]bool{}
	for _, skill := range strings.Split(raw, ",") {
		skill = strings.TrimSpace(skill)
		key := strings.ToLower(skill)
		if skill == "" || seen[key] {
			continue
		}
		seen[key] = true
		skills = append(skills, skill)
	}
	return skills
}
