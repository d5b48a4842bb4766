package dto

import "github.com/noah-isme/city-intranet-api/internal/models"

// RoleInput selects users or announcements by role.
type RoleInput struct {
	Role models.UserRole `json:"role" validate:"required,role"`
}

// DepartmentInput selects users by department. An empty department selects
// users without one.
type DepartmentInput struct {
	Department string `json:"department"`
}

// UpdateUserStatusInput toggles the active flag of a user.
type UpdateUserStatusInput struct {
	UserID   string `json:"userId" validate:"required"`
	IsActive *bool  `json:"isActive" validate:"required"`
}
