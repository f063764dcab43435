package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/smartcollab/dto"
	"github.com/smartcollab/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profileRequest(first, last, email string) dto.ProfileUpdateRequest {
	return dto.ProfileUpdateRequest{
		FirstName:  first,
		LastName:   last,
		Email:      email,
		Position:   " Designer ",
		Department: "Product",
		Country:    "France",
		City:       "Lyon",
		Skills:     "Go, SQL, , go,Figma",
	}
}

func TestUpdateProfileFields(t *testing.T) {
	f := newFixture(t)
	alice := f.user("Alice", "Martin")

	updated, err := f.profiles.UpdateProfile(f.ctx, alice.ID, profileRequest("Alicia", "Martin", "ALICIA@example.com"), nil)
	require.NoError(t, err)
	assert.Equal(t, "alicia@example.com", updated.Email)
	assert.Equal(t, "Designer", updated.Position)

	profile, err := f.profiles.GetProfile(f.ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alicia Martin", profile.FullName)
	assert.Equal(t, "Lyon", profile.City)
	assert.Equal(t, []string{"Go", "SQL", "Figma"}, profile.Skills)
	assert.Contains(t, profile.AvatarURL, "ui-avatars.com")
}

func TestUpdateProfileRejectsTakenEmail(t *testing.T) {
	f := newFixture(t)
	alice := f.user("Alice", "Martin")
	f.user("Bob", "Durand")

	_, err := f.profiles.UpdateProfile(f.ctx, alice.ID, profileRequest("Alice", "Martin", "Bob.Durand@example.com"), nil)
	v, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Email 'bob.durand@example.com' is already taken."}, v.Messages)

	// keeping one's own email is fine
	_, err = f.profiles.UpdateProfile(f.ctx, alice.ID, profileRequest("Alice", "Martin", alice.Email), nil)
	assert.NoError(t, err)
}

func TestUpdateProfileAvatar(t *testing.T) {
	f := newFixture(t)
	alice := f.user("Alice", "Martin")
	req := profileRequest("Alice", "Martin", alice.Email)

	first, err := f.profiles.UpdateProfile(f.ctx, alice.ID, req, fileHeader(t, "me.png", "image/png", []byte("png-1")))
	require.NoError(t, err)
	require.NotEmpty(t, first.ProfilePicturePath)
	firstPath := filepath.Join(f.store.Root(), first.ProfilePicturePath)
	assert.FileExists(t, firstPath)

	second, err := f.profiles.UpdateProfile(f.ctx, alice.ID, req, fileHeader(t, "me2.png", "image/png", []byte("png-2")))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(f.store.Root(), second.ProfilePicturePath))
	_, err = os.Stat(firstPath)
	assert.True(t, os.IsNotExist(err))

	profile, err := f.profiles.GetProfile(f.ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/"+second.ProfilePicturePath, profile.AvatarURL)

	_, err = f.profiles.UpdateProfile(f.ctx, alice.ID, req, fileHeader(t, "notes.txt", "text/plain", []byte("hi")))
	_, ok := AsValidationError(err)
	assert.True(t, ok)
}

func TestParseSkills(t *testing.T) {
	assert.Equal(t, []string{}, ParseSkills(""))
	assert.Equal(t, []string{"Go", "rust"}, ParseSkills(" Go ,rust, GO ,Rust,"))
}

func TestProfileUpdateKeepsConcurrentPasswordChange(t *testing.T) {
	f := newFixture(t)
	alice := f.user("Alice", "Martin")
	users := repositories.NewUserRepository(f.db)

	stale, err := users.FindByID(f.ctx, alice.ID)
	require.NoError(t, err)
	require.NoError(t, users.UpdatePassword(f.ctx, alice.ID, "rotated-hash"))

	stale.City = "Paris"
	stale.PhoneNumber = ""
	require.NoError(t, users.Update(f.ctx, &stale))

	fresh, err := users.FindByID(f.ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "rotated-hash", fresh.PasswordHash)
	assert.Equal(t, "Paris", fresh.City)
}
