package handler

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/city-intranet-api/internal/dto"
	"github.com/noah-isme/city-intranet-api/internal/models"
)

type userService interface {
	GetAll(ctx context.Context) ([]models.User, error)
	GetByRole(ctx context.Context, req dto.RoleInput) ([]models.User, error)
	GetByDepartment(ctx context.Context, req dto.DepartmentInput) ([]models.User, error)
	UpdateStatus(ctx context.Context, req dto.UpdateUserStatusInput) (*models.User, error)
}

// UserHandler exposes the users.* procedures.
type UserHandler struct {
	service userService
}

// NewUserHandler constructs a user handler.
func NewUserHandler(svc userService) *UserHandler {
	return &UserHandler{service: svc}
}

// Register implements Registrar.
func (h *UserHandler) Register(r *RPCRouter) {
	r.Register("users.getAll", Procedure{Call: h.getAll})
	r.Register("users.getByRole", Procedure{Call: h.getByRole})
	r.Register("users.getByDepartment", Procedure{Call: h.getByDepartment})
	r.Register("users.updateStatus", Procedure{Roles: []models.UserRole{models.TopLevelRole}, Call: h.updateStatus})
}

func (h *UserHandler) getAll(c *gin.Context, _ json.RawMessage) (interface{}, error) {
	return h.service.GetAll(c.Request.Context())
}

func (h *UserHandler) getByRole(c *gin.Context, input json.RawMessage) (interface{}, error) {
	req, err := bind[dto.RoleInput](input)
	if err != nil {
		return nil, err
	}
	return h.service.GetByRole(c.Request.Context(), req)
}

func (h *UserHandler) getByDepartment(c *gin.Context, input json.RawMessage) (interface{}, error) {
	req, err := bind[dto.DepartmentInput](input)
	if err != nil {
		return nil, err
	}
	return h.service.GetByDepartment(c.Request.Context(), req)
}

func (h *UserHandler) updateStatus(c *gin.Context, input json.RawMessage) (interface{}, error) {
	req, err := bind[dto.UpdateUserStatusInput](input)
	if err != nil {
		return nil, err
	}
	return h.service.UpdateStatus(c.Request.Context(), req)
}
