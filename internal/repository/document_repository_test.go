package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/city-intranet-api/internal/models"
)

var documentRowColumns = []string{"id", "title", "description", "file_name", "file_path", "file_size", "mime_type", "category", "department", "uploaded_by", "is_public", "created_at", "updated_at"}

func TestListDocumentsAppliesVisibility(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM documents WHERE (is_public = TRUE OR uploaded_by = $1) ORDER BY created_at DESC LIMIT 5")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(documentRowColumns).
			AddRow("d1", "Budget", nil, "budget.pdf", "/files/budget.pdf", 1024, "application/pdf", string(models.CategoryFinancial), nil, "u1", false, now, now))

	docs, err := repo.List(context.Background(), models.DocumentFilter{ViewerID: "u1", Limit: 5})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, models.CategoryFinancial, docs[0].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListDocumentsCombinesFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	category := models.CategoryLegal
	dept := "Legal Affairs"
	mock.ExpectQuery(regexp.QuoteMeta("WHERE (is_public = TRUE OR uploaded_by = $1) AND category = $2 AND department = $3 AND (title ILIKE $4 OR description ILIKE $4) ORDER BY created_at DESC")).
		WithArgs("u1", category, dept, `%100\%%`).
		WillReturnRows(sqlmock.NewRows(documentRowColumns))

	docs, err := repo.List(context.Background(), models.DocumentFilter{ViewerID: "u1", Category: &category, Department: &dept, Query: " 100% "})
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDocument(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectExec("INSERT INTO documents").WillReturnResult(sqlmock.NewResult(1, 1))

	doc := &models.Document{Title: "Zoning", FileName: "z.pdf", FilePath: "/z.pdf", FileSize: 10, MimeType: "application/pdf", Category: models.CategoryUrbanPlanning, UploadedBy: "u1"}
	require.NoError(t, repo.Create(context.Background(), doc))
	assert.NotEmpty(t, doc.ID)
	assert.False(t, doc.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
