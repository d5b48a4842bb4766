package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/city-intranet-api/internal/dto"
	"github.com/noah-isme/city-intranet-api/internal/models"
	"github.com/noah-isme/city-intranet-api/pkg/database"
	appErrors "github.com/noah-isme/city-intranet-api/pkg/errors"
)

type documentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	FindByID(ctx context.Context, id string) (*models.Document, error)
	List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error)
}

type downloadSigner interface {
	Generate(documentID, filePath string) (string, time.Time, error)
}

// DocumentService manages document metadata under the visibility rule.
type DocumentService struct {
	repo      documentRepository
	signer    downloadSigner
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewDocumentService constructs a DocumentService. signer and cache may be nil.
func NewDocumentService(repo documentRepository, signer downloadSigner, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		repo:      repo,
		signer:    signer,
		cache:     cache,
		validator: withDomainValidations(validate),
		logger:    logger,
		now:       time.Now,
	}
}

// Upload records the metadata of a stored file.
func (s *DocumentService) Upload(ctx context.Context, req dto.UploadDocumentInput) (*models.Document, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid document payload")
	}
	doc := &models.Document{
		Title:       req.Title,
		Description: req.Description,
		FileName:    req.FileName,
		FilePath:    req.FilePath,
		FileSize:    req.FileSize,
		MimeType:    req.MimeType,
		Category:    req.Category,
		Department:  req.Department,
		UploadedBy:  req.UploadedBy,
		IsPublic:    req.IsPublic,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		if database.IsForeignKeyViolation(err) || database.IsInvalidText(err) {
			return nil, appErrors.Wrap(err, appErrors.ErrConstraintViolation.Code, appErrors.ErrConstraintViolation.Status, "Uploader does not exist")
		}
		return nil, appErrors.Internal(err, "failed to upload document")
	}
	invalidateDashboards(ctx, s.cache, s.logger)
	return doc, nil
}

// GetAll returns every document visible to userID.
func (s *DocumentService) GetAll(ctx context.Context, userID string) ([]models.Document, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "userId is required")
	}
	return s.list(ctx, models.DocumentFilter{ViewerID: userID})
}

// GetByCategory returns visible documents of one category.
func (s *DocumentService) GetByCategory(ctx context.Context, req dto.DocumentCategoryInput) ([]models.Document, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid category query")
	}
	return s.list(ctx, models.DocumentFilter{ViewerID: req.UserID, Category: &req.Category})
}

// GetByDepartment returns visible documents of one department.
func (s *DocumentService) GetByDepartment(ctx context.Context, req dto.DocumentDepartmentInput) ([]models.Document, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid department query")
	}
	return s.list(ctx, models.DocumentFilter{ViewerID: req.UserID, Department: &req.Department})
}

// Search matches title and description case-insensitively.
func (s *DocumentService) Search(ctx context.Context, req dto.DocumentSearchInput) ([]models.Document, error) {
	req.Query = strings.TrimSpace(req.Query)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid search query")
	}
	return s.list(ctx, models.DocumentFilter{ViewerID: req.UserID, Query: req.Query})
}

// GetByID returns the document, or nil when it is missing or hidden from the user.
func (s *DocumentService) GetByID(ctx context.Context, req dto.DocumentLookupInput) (*models.Document, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid document lookup")
	}
	doc, err := s.repo.FindByID(ctx, req.DocumentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Internal(err, "failed to load document")
	}
	if !doc.VisibleTo(req.UserID) {
		return nil, nil
	}
	return doc, nil
}

// DownloadLink issues a signed, expiring reference to a visible document's file.
func (s *DocumentService) DownloadLink(ctx context.Context, req dto.DocumentLookupInput) (*dto.DownloadLink, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "download links are not configured")
	}
	doc, err := s.GetByID(ctx, req)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Document not found")
	}
	token, expiresAt, err := s.signer.Generate(doc.ID, doc.FilePath)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to sign download link")
	}
	return &dto.DownloadLink{DocumentID: doc.ID, FileName: doc.FileName, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *DocumentService) list(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error) {
	docs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list documents")
	}
	return docs, nil
}
