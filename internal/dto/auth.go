package dto

import "github.com/noah-isme/city-intranet-api/internal/models"

// CreateUserInput is the registration payload.
type CreateUserInput struct {
	Email      string          `json:"email" validate:"required,email"`
	Password   string          `json:"password" validate:"required,min=8"`
	FirstName  string          `json:"first_name" validate:"required"`
	LastName   string          `json:"last_name" validate:"required"`
	Role       models.UserRole `json:"role" validate:"required,role"`
	Department *string         `json:"department"`
}

// LoginInput carries user credentials.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserIDInput is the input of every procedure keyed only by a user.
type UserIDInput struct {
	UserID string `json:"userId" validate:"required"`
}
