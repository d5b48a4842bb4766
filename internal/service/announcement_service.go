package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/city-intranet-api/internal/dto"
	"github.com/noah-isme/city-intranet-api/internal/models"
	appErrors "github.com/noah-isme/city-intranet-api/pkg/errors"
)

type announcementRepository interface {
	List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, error)
	GetByID(ctx context.Context, id string) (*models.Announcement, error)
	Create(ctx context.Context, announcement *models.Announcement) error
	Deactivate(ctx context.Context, id string, updatedAt time.Time) (*models.Announcement, error)
}

// AnnouncementService handles announcement workflows.
type AnnouncementService struct {
	repo      announcementRepository
	users     userFinder
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAnnouncementService constructs the service. cache may be nil.
func NewAnnouncementService(repo announcementRepository, users userFinder, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementService{
		repo:      repo,
		users:     users,
		cache:     cache,
		validator: withDomainValidations(validate),
		logger:    logger,
		now:       time.Now,
	}
}

// Create publishes an active announcement.
func (s *AnnouncementService) Create(ctx context.Context, req dto.CreateAnnouncementInput) (*models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid announcement payload")
	}
	if _, err := s.loadUser(ctx, req.AuthorID, "Author not found"); err != nil {
		return nil, err
	}

	var targets []string
	for _, role := range req.TargetRoles {
		targets = append(targets, string(role))
	}
	announcement := &models.Announcement{
		Title:       req.Title,
		Content:     req.Content,
		AuthorID:    req.AuthorID,
		TargetRoles: targets,
		IsUrgent:    req.IsUrgent,
		IsActive:    true,
		ExpiresAt:   req.ExpiresAt,
		CreatedAt:   s.timestamp(),
	}
	if err := s.repo.Create(ctx, announcement); err != nil {
		return nil, appErrors.Internal(err, "failed to create announcement")
	}
	invalidateDashboards(ctx, s.cache, s.logger)
	return announcement, nil
}

// GetForUser returns the live announcements addressed to role.
func (s *AnnouncementService) GetForUser(ctx context.Context, req dto.RoleInput) ([]models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid role")
	}
	return s.ListVisible(ctx, req.Role, false, 0)
}

// GetUrgent returns the live urgent announcements addressed to role.
func (s *AnnouncementService) GetUrgent(ctx context.Context, req dto.RoleInput) ([]models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid role")
	}
	return s.ListVisible(ctx, req.Role, true, 0)
}

// GetAll returns every active announcement without audience filtering.
func (s *AnnouncementService) GetAll(ctx context.Context) ([]models.Announcement, error) {
	rows, err := s.repo.List(ctx, models.AnnouncementFilter{})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list announcements")
	}
	return rows, nil
}

// Deactivate hides an announcement. Only its author or the top-level role may
// do so; repeating the call is harmless.
func (s *AnnouncementService) Deactivate(ctx context.Context, req dto.DeactivateAnnouncementInput) (*models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid deactivation payload")
	}

	announcement, err := s.repo.GetByID(ctx, req.AnnouncementID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Announcement not found")
		}
		return nil, appErrors.Internal(err, "failed to load announcement")
	}
	user, err := s.loadUser(ctx, req.UserID, "User not found")
	if err != nil {
		return nil, err
	}
	if !announcement.CanDeactivate(user) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "Insufficient permissions to deactivate announcement")
	}

	updated, err := s.repo.Deactivate(ctx, announcement.ID, s.timestamp())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Announcement not found")
		}
		return nil, appErrors.Internal(err, "failed to deactivate announcement")
	}
	invalidateDashboards(ctx, s.cache, s.logger)
	return updated, nil
}

// ListVisible applies the visibility rule at a single instant, both in the query
// and on the returned rows.
func (s *AnnouncementService) ListVisible(ctx context.Context, role models.UserRole, urgentOnly bool, limit int) ([]models.Announcement, error) {
	now := s.now().UTC()
	rows, err := s.repo.List(ctx, models.AnnouncementFilter{Now: now, Role: &role, UrgentOnly: urgentOnly, Limit: limit})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list announcements")
	}
	visible := make([]models.Announcement, 0, len(rows))
	for i := range rows {
		if rows[i].VisibleTo(role, now) {
			visible = append(visible, rows[i])
		}
	}
	return visible, nil
}

func (s *AnnouncementService) loadUser(ctx context.Context, id, notFound string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, notFound)
		}
		return nil, appErrors.Internal(err, "failed to load user")
	}
	return user, nil
}

func (s *AnnouncementService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}
