package models

import (
	"time"

	"github.com/lib/pq"
)

// Announcement represents a persisted announcement row. A nil or empty
// TargetRoles addresses every role.
type Announcement struct {
	ID          string         `db:"id" json:"id"`
	Title       string         `db:"title" json:"title"`
	Content     string         `db:"content" json:"content"`
	AuthorID    string         `db:"author_id" json:"author_id"`
	TargetRoles pq.StringArray `db:"target_roles" json:"target_roles"`
	IsUrgent    bool           `db:"is_urgent" json:"is_urgent"`
	IsActive    bool           `db:"is_active" json:"is_active"`
	ExpiresAt   *time.Time     `db:"expires_at" json:"expires_at"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// Expired reports whether the announcement has passed its expiry at now.
// An announcement expiring exactly at now is still live.
func (a *Announcement) Expired(now time.Time) bool {
	return a.ExpiresAt != nil && a.ExpiresAt.Before(now)
}

// Targets reports whether the announcement addresses role.
func (a *Announcement) Targets(role UserRole) bool {
	if len(a.TargetRoles) == 0 {
		return true
	}
	for _, target := range a.TargetRoles {
		if UserRole(target) == role {
			return true
		}
	}
	return false
}

// VisibleTo is the announcement visibility rule: active, not expired and
// addressed to the role.
func (a *Announcement) VisibleTo(role UserRole, now time.Time) bool {
	if a == nil || !a.IsActive || a.Expired(now) {
		return false
	}
	return a.Targets(role)
}

// CanDeactivate reports whether user may deactivate the announcement.
func (a *Announcement) CanDeactivate(user *User) bool {
	if a == nil || user == nil {
		return false
	}
	return a.AuthorID == user.ID || user.Role == TopLevelRole
}

// AnnouncementFilter selects active announcements. A zero Now disables the
// expiry check and a nil Role disables audience filtering.
type AnnouncementFilter struct {
	Now        time.Time
	Role       *UserRole
	UrgentOnly bool
	Limit      int
}
