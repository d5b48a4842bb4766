package dto

import (
	"time"

	"github.com/noah-isme/city-intranet-api/internal/models"
)

// UploadDocumentInput describes the metadata of an uploaded file.
type UploadDocumentInput struct {
	Title       string                  `json:"title" validate:"required"`
	Description *string                 `json:"description"`
	FileName    string                  `json:"file_name" validate:"required"`
	FilePath    string                  `json:"file_path" validate:"required"`
	FileSize    int64                   `json:"file_size" validate:"gt=0"`
	MimeType    string                  `json:"mime_type" validate:"required"`
	Category    models.DocumentCategory `json:"category" validate:"required,doccategory"`
	Department  *string                 `json:"department"`
	IsPublic    bool                    `json:"is_public"`
	UploadedBy  string                  `json:"uploadedBy" validate:"required"`
}

// DocumentCategoryInput lists visible documents in a category.
type DocumentCategoryInput struct {
	Category models.DocumentCategory `json:"category" validate:"required,doccategory"`
	UserID   string                  `json:"userId" validate:"required"`
}

// DocumentDepartmentInput lists visible documents of a department.
type DocumentDepartmentInput struct {
	Department string `json:"department" validate:"required"`
	UserID     string `json:"userId" validate:"required"`
}

// DocumentSearchInput is a free-text search over title and description.
type DocumentSearchInput struct {
	Query  string `json:"query" validate:"required"`
	UserID string `json:"userId" validate:"required"`
}

// DocumentLookupInput addresses a single document on behalf of a user.
type DocumentLookupInput struct {
	DocumentID string `json:"documentId" validate:"required"`
	UserID     string `json:"userId" validate:"required"`
}

// DownloadLink is a signed, time-limited reference to a stored file.
type DownloadLink struct {
	DocumentID string    `json:"document_id"`
	FileName   string    `json:"file_name"`
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expires_at"`
}
