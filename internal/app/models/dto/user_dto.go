package dto

import (
	"time"

	"github.com/mvarela/uniregistro/internal/app/models"
)

// UserResponse represents basic user information
type UserResponse struct {
	ID        int64     `json:"id" example:"1"`
	Username  string    `json:"username" example:"jquispe"`
	Email     string    `json:"email" example:"jquispe@uni.edu"`
	FirstName string    `json:"firstName" example:"Jorge"`
	LastName  string    `json:"lastName" example:"Quispe"`
	Role      string    `json:"role" example:"USER" enums:"ADMIN,USER"`
	IsActive  bool      `json:"isActive" example:"true"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateUserRequest represents an admin creating a user account with a role
type CreateUserRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=50"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Role      string `json:"role" binding:"required,oneof=ADMIN USER" example:"USER"`
}

// UpdateUserRequest represents an admin update of a user account
type UpdateUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	IsActive  *bool  `json:"isActive,omitempty"`
}

// NewUserResponse maps a user account to its API representation
func NewUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      string(user.Role),
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}
}

// NewUserListResponse maps a slice of user accounts
func NewUserListResponse(users []*models.User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, NewUserResponse(user))
	}
	return responses
}
