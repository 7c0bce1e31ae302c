package dto

import (
	"time"

	"anoa.com/plantspeak/internal/entity"
)

type RegisterInput struct {
	Username        string `json:"username" binding:"required,min=3,max=50"`
	Password        string `json:"password" binding:"required,min=6,max=72"`
	PasswordConfirm string `json:"password_confirm" binding:"required,eqfield=Password"`
	Name            string `json:"name" binding:"max=100"`
	Email           string `json:"email" binding:"omitempty,email,max=100"`
	Role            string `json:"role" binding:"max=100"`
	Community       string `json:"community" binding:"max=255"`

	ClientIP string `json:"-"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileInput changes only the fields that are present. An empty
// email clears it.
type UpdateProfileInput struct {
	Name            *string `json:"name" binding:"omitempty,max=100"`
	Email           *string `json:"email"`
	Role            *string `json:"role" binding:"omitempty,max=100"`
	Community       *string `json:"community" binding:"omitempty,max=255"`
	Password        *string `json:"password"`
	PasswordConfirm *string `json:"password_confirm"`
}

type UserResponse struct {
	ID               uint      `json:"id"`
	Username         string    `json:"username"`
	Name             string    `json:"name"`
	Email            *string   `json:"email"`
	Role             string    `json:"role"`
	Community        string    `json:"community"`
	RegistrationDate time.Time `json:"registration_date"`
}

type AuthResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresIn   int64         `json:"expires_in"`
	User        *UserResponse `json:"user"`
}

type ProfileResponse struct {
	UserResponse
	ContributionCount int64 `json:"contribution_count"`
}

func NewUserResponse(u *entity.User) *UserResponse {
	return &UserResponse{
		ID:               u.ID,
		Username:         u.Username,
		Name:             u.Name,
		Email:            u.Email,
		Role:             u.Role,
		Community:        u.Community,
		RegistrationDate: u.RegistrationDate,
	}
}
