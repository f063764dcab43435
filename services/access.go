package services

import (
	"context"

	"github.com/pkg/errors"
	"github.com/smartcollab/models"
	"github.com/smartcollab/repositories"
	"gorm.io/gorm"
)

// Authorizer answers every "may this user act on this project" question
type Authorizer struct {
	members *repositories.MemberRepository
}

// NewAuthorizer creates a new authorizer
func NewAuthorizer(db *gorm.DB) *Authorizer {
	return &Authorizer{members: repositories.NewMemberRepository(db)}
}

// Membership returns the caller's membership or ErrForbidden when there is none
func (a *Authorizer) Membership(ctx context.Context, projectID, userID string) (models.ProjectMember, error) {
	member, err := a.members.Find(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ProjectMember{}, ErrForbidden
		}
		return models.ProjectMember{}, errors.Wrap(err, "load membership")
	}
	return member, nil
}

// Require returns the membership when its role passes allowed, ErrForbidden otherwise
func (a *Authorizer) Require(ctx context.Context, projectID, userID string, allowed func(models.Role) bool) (models.ProjectMember, error) {
	member, err := a.Membership(ctx, projectID, userID)
	if err != nil {
		return member, err
	}
	if !allowed(member.Role) {
		return member, ErrForbidden
	}
	return member, nil
}
