package handler

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/city-intranet-api/internal/dto"
	"github.com/noah-isme/city-intranet-api/internal/models"
)

type authService interface {
	Register(ctx context.Context, req dto.CreateUserInput) (*models.User, error)
	Login(ctx context.Context, req dto.LoginInput) (*models.Session, error)
	GetCurrentUser(ctx context.Context, userID string) (*models.User, error)
}

// AuthHandler exposes the auth.* procedures.
type AuthHandler struct {
	service authService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Register implements Registrar.
func (h *AuthHandler) Register(r *RPCRouter) {
	r.Register("auth.login", Procedure{Public: true, Call: h.login})
	r.Register("auth.register", Procedure{Public: true, Call: h.register})
	r.Register("auth.getCurrentUser", Procedure{Actor: "userId", Call: h.currentUser})
}

func (h *AuthHandler) login(c *gin.Context, input json.RawMessage) (interface{}, error) {
	req, err := bind[dto.LoginInput](input)
	if err != nil {
		return nil, err
	}
	return h.service.Login(c.Request.Context(), req)
}

func (h *AuthHandler) register(c *gin.Context, input json.RawMessage) (interface{}, error) {
	req, err := bind[dto.CreateUserInput](input)
	if err != nil {
		return nil, err
	}
	return h.service.Register(c.Request.Context(), req)
}

// currentUser resolves to null when no user id is known.
func (h *AuthHandler) currentUser(c *gin.Context, input json.RawMessage) (interface{}, error) {
	req, err := bind[dto.UserIDInput](input)
	if err != nil {
		return nil, err
	}
	if req.UserID == "" {
		return nil, nil
	}
	return h.service.GetCurrentUser(c.Request.Context(), req.UserID)
}
