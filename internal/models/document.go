package models

import "time"

// DocumentCategory classifies uploaded documents.
type DocumentCategory string

const (
	CategoryAdministrative DocumentCategory = "Administrative"
	CategoryLegal          DocumentCategory = "Legal"
	CategoryFinancial      DocumentCategory = "Financial"
	CategoryUrbanPlanning  DocumentCategory = "Urban Planning"
	CategoryPublicWorks    DocumentCategory = "Public Works"
	CategorySocialServices DocumentCategory = "Social Services"
	CategoryOther          DocumentCategory = "Other"
)

// DocumentCategories lists every valid category.
var DocumentCategories = []DocumentCategory{
	CategoryAdministrative,
	CategoryLegal,
	CategoryFinancial,
	CategoryUrbanPlanning,
	CategoryPublicWorks,
	CategorySocialServices,
	CategoryOther,
}

// Valid reports whether c is a known category.
func (c DocumentCategory) Valid() bool {
	for _, category := range DocumentCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Document is the metadata record of an uploaded file.
type Document struct {
	ID          string           `db:"id" json:"id"`
	Title       string           `db:"title" json:"title"`
	Description *string          `db:"description" json:"description"`
	FileName    string           `db:"file_name" json:"file_name"`
	FilePath    string           `db:"file_path" json:"file_path"`
	FileSize    int64            `db:"file_size" json:"file_size"`
	MimeType    string           `db:"mime_type" json:"mime_type"`
	Category    DocumentCategory `db:"category" json:"category"`
	Department  *string          `db:"department" json:"department"`
	UploadedBy  string           `db:"uploaded_by" json:"uploaded_by"`
	IsPublic    bool             `db:"is_public" json:"is_public"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}

// VisibleTo reports whether the user may see the document: public documents
// are visible to everyone, private ones only to their uploader.
func (d *Document) VisibleTo(userID string) bool {
	if d == nil {
		return false
	}
	return d.IsPublic || d.UploadedBy == userID
}

// DocumentFilter narrows document listings. ViewerID is always applied.
type DocumentFilter struct {
	ViewerID   string
	Category   *DocumentCategory
	Department *string
	Query      string
	Limit      int
}
