package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/city-intranet-api/internal/models"
	"github.com/noah-isme/city-intranet-api/pkg/database"
)

const documentColumns = `id, title, description, file_name, file_path, file_size, mime_type, category, department, uploaded_by, is_public, created_at, updated_at`

// DocumentRepository persists document metadata.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository creates the repository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create inserts a document record.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	doc.UpdatedAt = doc.CreatedAt

	const query = `INSERT INTO documents (id, title, description, file_name, file_path, file_size, mime_type, category, department, uploaded_by, is_public, created_at, updated_at)
VALUES (:id, :title, :description, :file_name, :file_path, :file_size, :mime_type, :category, :department, :uploaded_by, :is_public, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// FindByID returns a document regardless of visibility.
func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	var doc models.Document
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		if isMissing(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find document: %w", err)
	}
	return &doc, nil
}

// List returns documents visible to filter.ViewerID, newest first.
func (r *DocumentRepository) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error) {
	args := []interface{}{filter.ViewerID}
	conditions := []string{"(is_public = TRUE OR uploaded_by = $1)"}

	if filter.Category != nil {
		args = append(args, *filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Department != nil {
		args = append(args, *filter.Department)
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+escapeLike(q)+"%")
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	query := `SELECT ` + documentColumns + ` FROM documents WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	docs := []models.Document{}
	if err := r.db.SelectContext(ctx, &docs, query, args...); err != nil {
		if database.IsInvalidText(err) {
			return []models.Document{}, nil
		}
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// escapeLike makes user input match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
