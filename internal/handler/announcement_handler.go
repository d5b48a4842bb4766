package handler

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/city-intranet-api/internal/dto"
	"github.com/noah-isme/city-intranet-api/internal/models"
)

type announcementService interface {
	Create(ctx context.Context, req dto.CreateAnnouncementInput) (*models.Announcement, error)
	GetForUser(ctx context.Context, req dto.RoleInput) ([]models.Announcement, error)
	GetUrgent(ctx context.Context, req dto.RoleInput) ([]models.Announcement, error)
	GetAll(ctx context.Context) ([]models.Announcement, error)
	Deactivate(ctx context.Context, req dto.DeactivateAnnouncementInput) (*models.Announcement, error)
}

// AnnouncementHandler exposes the announcements.* procedures.
type AnnouncementHandler struct {
	service announcementService
}

// NewAnnouncementHandler constructs an announcement handler.
func NewAnnouncementHandler(svc announcementService) *AnnouncementHandler {
	return &AnnouncementHandler{service: svc}
}

// Register implements Registrar.
func (h *AnnouncementHandler) Register(r *RPCRouter) {
	r.Register("announcements.create", Procedure{Actor: "authorId", Call: h.create})
	r.Register("announcements.getForUser", Procedure{ActorRole: "role", Call: h.byRole(h.service.GetForUser)})
	r.Register("announcements.getUrgent", Procedure{ActorRole: "role", Call: h.byRole(h.service.GetUrgent)})
	r.Register("announcements.getAll", Procedure{Call: h.getAll})
	r.Register("announcements.deactivate", Procedure{Actor: "userId", Call: h.deactivate})
}

func (h *AnnouncementHandler) byRole(fn func(context.Context, dto.RoleInput) ([]models.Announcement, error)) ProcedureFunc {
	return func(c *gin.Context, input json.RawMessage) (interface{}, error) {
		req, err := bind[dto.RoleInput](input)
		if err != nil {
			return nil, err
		}
		return fn(c.Request.Context(), req)
	}
}

func (h *AnnouncementHandler) create(c *gin.Context, input json.RawMessage) (interface{}, error) {
	req, err := bind[dto.CreateAnnouncementInput](input)
	if err != nil {
		return nil, err
	}
	return h.service.Create(c.Request.Context(), req)
}

func (h *AnnouncementHandler) getAll(c *gin.Context, _ json.RawMessage) (interface{}, error) {
	return h.service.GetAll(c.Request.Context())
}

func (h *AnnouncementHandler) deactivate(c *gin.Context, input json.RawMessage) (interface{}, error) {
	req, err := bind[dto.DeactivateAnnouncementInput](input)
	if err != nil {
		return nil, err
	}
	return h.service.Deactivate(c.Request.Context(), req)
}
