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

var announcementRowColumns = []string{"id", "title", "content", "author_id", "target_roles", "is_urgent", "is_active", "expires_at", "created_at", "updated_at"}

func TestListAnnouncementsForRole(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE is_active = TRUE AND (expires_at IS NULL OR expires_at >= $1) AND (target_roles IS NULL OR cardinality(target_roles) = 0 OR $2 = ANY(target_roles)) AND is_urgent = TRUE ORDER BY is_urgent DESC, created_at DESC LIMIT 5")).
		WithArgs(now, "Secretary").
		WillReturnRows(sqlmock.NewRows(announcementRowColumns).
			AddRow("a1", "Road closure", "Main St closed", "u2", []byte(`{Secretary,"Department Head"}`), true, true, nil, now, now).
			AddRow("a2", "Holiday", "Office closed", "u2", nil, true, true, nil, now, now))

	role := models.RoleSecretary
	rows, err := repo.List(context.Background(), models.AnnouncementFilter{Now: now, Role: &role, UrgentOnly: true, Limit: 5})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Secretary", "Department Head"}, []string(rows[0].TargetRoles))
	assert.Nil(t, rows[1].TargetRoles)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAllActiveAnnouncements(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM announcements WHERE is_active = TRUE ORDER BY is_urgent DESC, created_at DESC")).
		WillReturnRows(sqlmock.NewRows(announcementRowColumns))

	rows, err := repo.List(context.Background(), models.AnnouncementFilter{})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAnnouncementStoresNullTargets(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db)

	mock.ExpectExec("INSERT INTO announcements").WillReturnResult(sqlmock.NewResult(1, 1))

	announcement := &models.Announcement{Title: "t", Content: "c", AuthorID: "u1", TargetRoles: []string{}, IsActive: true}
	require.NoError(t, repo.Create(context.Background(), announcement))
	assert.Nil(t, announcement.TargetRoles)
	assert.NotEmpty(t, announcement.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivateAnnouncement(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE announcements SET is_active = FALSE, updated_at = $2 WHERE id = $1 RETURNING")).
		WithArgs("a1", now).
		WillReturnRows(sqlmock.NewRows(announcementRowColumns).
			AddRow("a1", "t", "c", "u1", nil, false, false, nil, now, now))

	announcement, err := repo.Deactivate(context.Background(), "a1", now)
	require.NoError(t, err)
	assert.False(t, announcement.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}
