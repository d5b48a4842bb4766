package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/city-intranet-api/internal/models"
)

const announcementColumns = `id, title, content, author_id, target_roles, is_urgent, is_active, expires_at, created_at, updated_at`

// AnnouncementRepository provides persistence for announcements.
type AnnouncementRepository struct {
	db *sqlx.DB
}

// NewAnnouncementRepository creates the repository.
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// List returns active announcements, urgent first then newest.
func (r *AnnouncementRepository) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, error) {
	where := []string{"is_active = TRUE"}
	var args []interface{}

	if !filter.Now.IsZero() {
		args = append(args, filter.Now)
		where = append(where, fmt.Sprintf("(expires_at IS NULL OR expires_at >= $%d)", len(args)))
	}
	if filter.Role != nil {
		args = append(args, string(*filter.Role))
		where = append(where, fmt.Sprintf("(target_roles IS NULL OR cardinality(target_roles) = 0 OR $%d = ANY(target_roles))", len(args)))
	}
	if filter.UrgentOnly {
		where = append(where, "is_urgent = TRUE")
	}

	query := `SELECT ` + announcementColumns + ` FROM announcements WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY is_urgent DESC, created_at DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	announcements := []models.Announcement{}
	if err := r.db.SelectContext(ctx, &announcements, query, args...); err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	return announcements, nil
}

// GetByID returns an announcement by identifier.
func (r *AnnouncementRepository) GetByID(ctx context.Context, id string) (*models.Announcement, error) {
	query := `SELECT ` + announcementColumns + ` FROM announcements WHERE id = $1`
	var announcement models.Announcement
	if err := r.db.GetContext(ctx, &announcement, query, id); err != nil {
		if isMissing(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("get announcement: %w", err)
	}
	return &announcement, nil
}

// Create inserts a new announcement. An empty target role set is stored as NULL.
func (r *AnnouncementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	if announcement.ID == "" {
		announcement.ID = uuid.NewString()
	}
	if announcement.CreatedAt.IsZero() {
		announcement.CreatedAt = time.Now().UTC()
	}
	announcement.UpdatedAt = announcement.CreatedAt
	if len(announcement.TargetRoles) == 0 {
		announcement.TargetRoles = nil
	}

	const query = `INSERT INTO announcements (id, title, content, author_id, target_roles, is_urgent, is_active, expires_at, created_at, updated_at)
VALUES (:id, :title, :content, :author_id, :target_roles, :is_urgent, :is_active, :expires_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, announcement); err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

// Deactivate clears the active flag and returns the updated row.
// sql.ErrNoRows is returned unwrapped when the announcement does not exist.
func (r *AnnouncementRepository) Deactivate(ctx context.Context, id string, updatedAt time.Time) (*models.Announcement, error) {
	query := `UPDATE announcements SET is_active = FALSE, updated_at = $2 WHERE id = $1 RETURNING ` + announcementColumns
	var announcement models.Announcement
	if err := r.db.GetContext(ctx, &announcement, query, id, updatedAt); err != nil {
		if isMissing(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("deactivate announcement: %w", err)
	}
	return &announcement, nil
}
