package models

import "time"

// RoleType defines the user role type
type RoleType string

const (
	RoleAdmin RoleType = "ADMIN"
	RoleUser  RoleType = "USER"
)

// User defines the account model based on the 'users' table
type User struct {
	ID        int64     `json:"id" db:"id" example:"1"`
	Username  string    `json:"username" db:"username" example:"jquispe"`
	Email     string    `json:"email" db:"email" example:"jquispe@uni.edu"`
	Password  string    `json:"-" db:"password"` // Hashed, excluded from JSON
	FirstName string    `json:"firstName" db:"first_name" example:"Jorge"`
	LastName  string    `json:"lastName" db:"last_name" example:"Quispe"`
	Role      RoleType  `json:"role" db:"role" example:"USER"`
	IsActive  bool      `json:"isActive" db:"is_active" example:"true"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// RefreshToken defines a stored refresh token based on the 'refresh_tokens' table
type RefreshToken struct {
	Token     string    `json:"token" db:"token"`
	UserID    int64     `json:"userId" db:"user_id"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
	Revoked   bool      `json:"revoked" db:"revoked"`
}
