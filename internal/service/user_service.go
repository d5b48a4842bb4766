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

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	UpdateStatus(ctx context.Context, id string, active bool, updatedAt time.Time) (*models.User, error)
}

// UserService exposes directory reads and account suspension.
type UserService struct {
	repo      userRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewUserService constructs a UserService.
func NewUserService(repo userRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, validator: withDomainValidations(validate), logger: logger, now: time.Now}
}

// GetAll returns every user.
func (s *UserService) GetAll(ctx context.Context) ([]models.User, error) {
	return s.list(ctx, models.UserFilter{})
}

// GetByRole returns the users holding role.
func (s *UserService) GetByRole(ctx context.Context, req dto.RoleInput) ([]models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid role")
	}
	return s.list(ctx, models.UserFilter{Role: &req.Role})
}

// GetByDepartment returns the users of a department. An empty department
// returns users without one.
func (s *UserService) GetByDepartment(ctx context.Context, req dto.DepartmentInput) ([]models.User, error) {
	return s.list(ctx, models.UserFilter{Department: &req.Department})
}

// UpdateStatus activates or suspends a user.
func (s *UserService) UpdateStatus(ctx context.Context, req dto.UpdateUserStatusInput) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid status payload")
	}
	user, err := s.repo.UpdateStatus(ctx, req.UserID, *req.IsActive, s.now().UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "User not found")
		}
		return nil, appErrors.Internal(err, "failed to update user status")
	}
	s.logger.Info("user status changed", zap.String("user_id", user.ID), zap.Bool("is_active", user.IsActive))
	return user, nil
}

func (s *UserService) list(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	users, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list users")
	}
	return users, nil
}
