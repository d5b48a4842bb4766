package handler

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/city-intranet-api/internal/dto"
	"github.com/noah-isme/city-intranet-api/internal/middleware"
)

type dashboardService interface {
	GetData(ctx context.Context, userID string) (*dto.DashboardData, bool, error)
	GetQuickStats(ctx context.Context, userID string) (*dto.QuickStats, error)
}

// DashboardHandler exposes the dashboard.* procedures.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs a dashboard handler.
func NewDashboardHandler(svc dashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Register implements Registrar.
func (h *DashboardHandler) Register(r *RPCRouter) {
	r.Register("dashboard.getData", Procedure{Actor: "userId", Call: h.getData})
	r.Register("dashboard.getQuickStats", Procedure{Actor: "userId", Call: h.getQuickStats})
}

func (h *DashboardHandler) getData(c *gin.Context, input json.RawMessage) (interface{}, error) {
	req, err := bind[dto.UserIDInput](input)
	if err != nil {
		return nil, err
	}
	data, hit, err := h.service.GetData(c.Request.Context(), req.UserID)
	if err != nil {
		return nil, err
	}
	middleware.SetCacheHit(c, hit)
	return data, nil
}

func (h *DashboardHandler) getQuickStats(c *gin.Context, input json.RawMessage) (interface{}, error) {
	req, err := bind[dto.UserIDInput](input)
	if err != nil {
		return nil, err
	}
	return h.service.GetQuickStats(c.Request.Context(), req.UserID)
}
