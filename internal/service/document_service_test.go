package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/city-intranet-api/internal/dto"
	"github.com/noah-isme/city-intranet-api/internal/models"
	appErrors "github.com/noah-isme/city-intranet-api/pkg/errors"
	"github.com/noah-isme/city-intranet-api/pkg/storage"
)

func newTestDocumentService(users *mockUserRepo, cache *mockCache) (*DocumentService, *mockDocumentRepo) {
	repo := &mockDocumentRepo{users: users}
	signer := storage.NewSignedURLSigner("sign-secret", 15*time.Minute)
	svc := NewDocumentService(repo, signer, cache, nil, nil)
	svc.now = tickingClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), time.Minute)
	return svc, repo
}

func uploadInput(title string, uploadedBy string, public bool) dto.UploadDocumentInput {
	return dto.UploadDocumentInput{
		Title:       title,
		Description: strPtr("Quarterly " + title),
		FileName:    "file.pdf",
		FilePath:    "/uploads/file.pdf",
		FileSize:    2048,
		MimeType:    "application/pdf",
		Category:    models.CategoryFinancial,
		Department:  strPtr("Finance"),
		IsPublic:    public,
		UploadedBy:  uploadedBy,
	}
}

func TestPrivateDocumentVisibleOnlyToUploader(t *testing.T) {
	svc, _ := newTestDocumentService(seededUsers(), nil)
	ctx := context.Background()

	private, err := svc.Upload(ctx, uploadInput("Budget draft", "u2", false))
	require.NoError(t, err)
	_, err = svc.Upload(ctx, uploadInput("Public notice", "u2", true))
	require.NoError(t, err)

	others, err := svc.GetAll(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, "Public notice", others[0].Title)

	own, err := svc.GetAll(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, own, 2)

	hidden, err := svc.GetByID(ctx, dto.DocumentLookupInput{DocumentID: private.ID, UserID: "u1"})
	require.NoError(t, err)
	assert.Nil(t, hidden)

	visible, err := svc.GetByID(ctx, dto.DocumentLookupInput{DocumentID: private.ID, UserID: "u2"})
	require.NoError(t, err)
	require.NotNil(t, visible)
	assert.Equal(t, private.ID, visible.ID)

	missing, err := svc.GetByID(ctx, dto.DocumentLookupInput{DocumentID: "nope", UserID: "u2"})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDocumentListingsNewestFirstAndFiltered(t *testing.T) {
	svc, _ := newTestDocumentService(seededUsers(), nil)
	ctx := context.Background()

	_, err := svc.Upload(ctx, uploadInput("Old ledger", "u2", true))
	require.NoError(t, err)
	legal := uploadInput("Zoning appeal", "u3", true)
	legal.Category = models.CategoryLegal
	legal.Department = strPtr("Legal")
	legal.Description = nil
	_, err = svc.Upload(ctx, legal)
	require.NoError(t, err)

	all, err := svc.GetAll(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Zoning appeal", all[0].Title)

	byCategory, err := svc.GetByCategory(ctx, dto.DocumentCategoryInput{Category: models.CategoryLegal, UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)

	byDept, err := svc.GetByDepartment(ctx, dto.DocumentDepartmentInput{Department: "Finance", UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, byDept, 1)
	assert.Equal(t, "Old ledger", byDept[0].Title)

	found, err := svc.Search(ctx, dto.DocumentSearchInput{Query: "QUARTERLY", UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Old ledger", found[0].Title)

	_, err = svc.GetByCategory(ctx, dto.DocumentCategoryInput{Category: "Gossip", UserID: "u1"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestUploadUnknownUploaderIsConstraintViolation(t *testing.T) {
	cache := &mockCache{}
	svc, repo := newTestDocumentService(seededUsers(), cache)

	_, err := svc.Upload(context.Background(), uploadInput("Orphan", "ghost", true))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrConstraintViolation))
	assert.Empty(t, repo.docs)
	assert.Empty(t, cache.patterns)
}

func TestUploadInvalidatesDashboards(t *testing.T) {
	cache := &mockCache{}
	svc, _ := newTestDocumentService(seededUsers(), cache)

	_, err := svc.Upload(context.Background(), uploadInput("Minutes", "u1", true))
	require.NoError(t, err)
	assert.Equal(t, []string{dashboardCachePattern}, cache.patterns)
}

func TestDownloadLinkRespectsVisibility(t *testing.T) {
	svc, _ := newTestDocumentService(seededUsers(), nil)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, uploadInput("Contract", "u2", false))
	require.NoError(t, err)

	link, err := svc.DownloadLink(ctx, dto.DocumentLookupInput{DocumentID: doc.ID, UserID: "u2"})
	require.NoError(t, err)
	assert.Equal(t, doc.ID, link.DocumentID)

	id, path, _, err := storage.NewSignedURLSigner("sign-secret", 15*time.Minute).Parse(link.Token)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, id)
	assert.Equal(t, doc.FilePath, path)

	_, err = svc.DownloadLink(ctx, dto.DocumentLookupInput{DocumentID: doc.ID, UserID: "u1"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
