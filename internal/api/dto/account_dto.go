package dto

import (
	"time"

	"github.com/cuongbtq/jobboard-be/internal/api/model"
	"github.com/cuongbtq/jobboard-be/internal/api/service"
)

type RegisterRequest struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	PasswordConfirm string `json:"password_confirm" binding:"required"`
	Role            string `json:"role" binding:"required"`
	FullName        string `json:"full_name"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserDTO struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type AuthResponse struct {
	User        UserDTO   `json:"user"`
	AccessToken string    `json:"access"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func NewUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.Role.String(),
	}
}

func NewAuthResponse(r *service.AuthResult) AuthResponse {
	return AuthResponse{
		User:        NewUserDTO(r.User),
		AccessToken: r.Token,
		ExpiresAt:   r.ExpiresAt,
	}
}
