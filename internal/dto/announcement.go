package dto

import (
	"time"

	"github.com/noah-isme/city-intranet-api/internal/models"
)

// CreateAnnouncementInput describes a new announcement. Nil or empty
// TargetRoles addresses every role.
type CreateAnnouncementInput struct {
	Title       string            `json:"title" validate:"required"`
	Content     string            `json:"content" validate:"required"`
	TargetRoles []models.UserRole `json:"target_roles" validate:"omitempty,dive,role"`
	IsUrgent    bool              `json:"is_urgent"`
	ExpiresAt   *time.Time        `json:"expires_at"`
	AuthorID    string            `json:"authorId" validate:"required"`
}

// DeactivateAnnouncementInput hides an announcement.
type DeactivateAnnouncementInput struct {
	AnnouncementID string `json:"announcementId" validate:"required"`
	UserID         string `json:"userId" validate:"required"`
}
