package dto

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/smartcollab/models"
)

const (
	AvatarSmall  = 32
	AvatarMedium = 40
)

// UserResponse is the public view of an account
type UserResponse struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	FullName  string   `json:"fullName"`
	AvatarURL string   `json:"avatarUrl"`
	Skills    []string `json:"skills"`
}

// ProfileResponse is the current user's profile page
type ProfileResponse struct {
	UserResponse
	PhoneNumber string `json:"phoneNumber"`
	Position    string `json:"position"`
	Department  string `json:"department"`
	Country     string `json:"country"`
	City        string `json:"city"`
}

// ProfileUpdateRequest is submitted as multipart form data with an optional avatar file
type ProfileUpdateRequest struct {
	FirstName   string `form:"firstName" binding:"required,max=100"`
	LastName    string `form:"lastName" binding:"required,max=100"`
	Email       string `form:"email" binding:"required,email"`
	PhoneNumber string `form:"phoneNumber" binding:"max=50"`
	Position    string `form:"position" binding:"max=100"`
	Department  string `form:"department" binding:"max=100"`
	Country     string `form:"country" binding:"max=100"`
	City        string `form:"city" binding:"max=100"`
	Skills      string `form:"skills"`
}

// AvatarURL synthesizes an avatar image for a name
func AvatarURL(firstName, lastName string, size int) string {
	name := strings.TrimSpace(firstName + " " + lastName)
	return fmt.Sprintf("https://ui-avatars.com/api/?name=%s&size=%d&background=6366f1&color=fff",
		url.QueryEscape(name), size)
}

// InitialsAvatarURL renders only the initials, used by compact lists
func InitialsAvatarURL(firstName, lastName string, size int) string {
	return AvatarURL(initial(firstName), initial(lastName), size)
}

func initial(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.ToUpper(string([]rune(name)[0]))
}

// UploadURL is where the static handler serves a stored file
func UploadURL(storagePath string) string {
	return "/uploads/" + strings.TrimLeft(storagePath, "/")
}

// UserAvatar prefers the uploaded picture over the synthesized one
func UserAvatar(u models.User, size int) string {
	if u.ProfilePicturePath != "" {
		return UploadURL(u.ProfilePicturePath)
	}
	return AvatarURL(u.FirstName, u.LastName, size)
}

// NewUserResponse builds the public view of a user
func NewUserResponse(u models.User) UserResponse {
	skills := []string(u.Skills)
	if skills == nil {
		skills = []string{}
	}
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		AvatarURL: UserAvatar(u, AvatarMedium),
		Skills:    skills,
	}
}

// NewProfileResponse builds the profile page of a user
func NewProfileResponse(u models.User) ProfileResponse {
	return ProfileResponse{
		UserResponse: NewUserResponse(u),
		PhoneNumber:  u.PhoneNumber,
		Position:     u.Position,
		Department:   u.Department,
		Country:      u.Country,
		City:         u.City,
	}
}
