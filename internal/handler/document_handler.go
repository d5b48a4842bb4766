package handler

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/city-intranet-api/internal/dto"
	"github.com/noah-isme/city-intranet-api/internal/models"
)

type documentService interface {
	Upload(ctx context.Context, req dto.UploadDocumentInput) (*models.Document, error)
	GetAll(ctx context.Context, userID string) ([]models.Document, error)
	GetByCategory(ctx context.Context, req dto.DocumentCategoryInput) ([]models.Document, error)
	GetByDepartment(ctx context.Context, req dto.DocumentDepartmentInput) ([]models.Document, error)
	Search(ctx context.Context, req dto.DocumentSearchInput) ([]models.Document, error)
	GetByID(ctx context.Context, req dto.DocumentLookupInput) (*models.Document, error)
	DownloadLink(ctx context.Context, req dto.DocumentLookupInput) (*dto.DownloadLink, error)
}

// DocumentHandler exposes the documents.* procedures.
type DocumentHandler struct {
	service documentService
}

// NewDocumentHandler constructs a document handler.
func NewDocumentHandler(svc documentService) *DocumentHandler {
	return &DocumentHandler{service: svc}
}

// Register implements Registrar.
func (h *DocumentHandler) Register(r *RPCRouter) {
	r.Register("documents.upload", Procedure{Actor: "uploadedBy", Call: h.upload})
	r.Register("documents.getAll", Procedure{Actor: "userId", Call: h.getAll})
	r.Register("documents.getByCategory", Procedure{Actor: "userId", Call: h.getByCategory})
	r.Register("documents.getByDepartment", Procedure{Actor: "userId", Call: h.getByDepartment})
	r.Register("documents.search", Procedure{Actor: "userId", Call: h.search})
	r.Register("documents.getById", Procedure{Actor: "userId", Call: h.getByID})
	r.Register("documents.getDownloadLink", Procedure{Actor: "userId", Call: h.downloadLink})
}

func (h *DocumentHandler) upload(c *gin.Context, input json.RawMessage) (interface{}, error) {
	req, err := bind[dto.UploadDocumentInput](input)
	if err != nil {
		return nil, err
	}
	return h.service.Upload(c.Request.Context(), req)
}

func (h *DocumentHandler) getAll(c *gin.Context, input json.RawMessage) (interface{}, error) {
	req, err := bind[dto.UserIDInput](input)
	if err != nil {
		return nil, err
	}
	return h.service.GetAll(c.Request.Context(), req.UserID)
}

func (h *DocumentHandler) getByCategory(c *gin.Context, input json.RawMessage) (interface{}, error) {
	req, err := bind[dto.DocumentCategoryInput](input)
	if err != nil {
		return nil, err
	}
	return h.service.GetByCategory(c.Request.Context(), req)
}

func (h *DocumentHandler) getByDepartment(c *gin.Context, input json.RawMessage) (interface{}, error) {
	req, err := bind[dto.DocumentDepartmentInput](input)
	if err != nil {
		return nil, err
	}
	return h.service.GetByDepartment(c.Request.Context(), req)
}

func (h *DocumentHandler) search(c *gin.Context, input json.RawMessage) (interface{}, error) {
	req, err := bind[dto.DocumentSearchInput](input)
	if err != nil {
		return nil, err
	}
	return h.service.Search(c.Request.Context(), req)
}

func (h *DocumentHandler) getByID(c *gin.Context, input json.RawMessage) (interface{}, error) {
	req, err := bind[dto.DocumentLookupInput](input)
	if err != nil {
		return nil, err
	}
	return h.service.GetByID(c.Request.Context(), req)
}

func (h *DocumentHandler) downloadLink(c *gin.Context, input json.RawMessage) (interface{}, error) {
	req, err := bind[dto.DocumentLookupInput](input)
	if err != nil {
		return nil, err
	}
	return h.service.DownloadLink(c.Request.Context(), req)
}
