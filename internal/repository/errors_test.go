package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/city-intranet-api/internal/models"
)

var errInvalidUUID = &pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "42"`}

func TestLookupsTreatMalformedIDsAsMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	ctx := context.Background()

	mock.ExpectQuery("FROM users WHERE id").WillReturnError(errInvalidUUID)
	_, err := NewUserRepository(db).FindByID(ctx, "42")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectQuery("UPDATE users SET is_active").WillReturnError(errInvalidUUID)
	_, err = NewUserRepository(db).UpdateStatus(ctx, "42", false, time.Now())
	assert.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectQuery("FROM documents WHERE id").WillReturnError(errInvalidUUID)
	_, err = NewDocumentRepository(db).FindByID(ctx, "42")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectQuery("FROM tasks WHERE id").WillReturnError(errInvalidUUID)
	_, err = NewTaskRepository(db).FindByID(ctx, "42")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectQuery("UPDATE tasks SET status").WillReturnError(errInvalidUUID)
	_, err = NewTaskRepository(db).UpdateStatus(ctx, "42", models.TaskStatusCompleted, time.Now())
	assert.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectQuery("FROM announcements WHERE id").WillReturnError(errInvalidUUID)
	_, err = NewAnnouncementRepository(db).GetByID(ctx, "42")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectQuery("UPDATE announcements SET is_active").WillReturnError(errInvalidUUID)
	_, err = NewAnnouncementRepository(db).Deactivate(ctx, "42", time.Now())
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListsTreatMalformedUserIDsAsEmpty(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	ctx := context.Background()

	mock.ExpectQuery("FROM documents WHERE").WillReturnError(errInvalidUUID)
	docs, err := NewDocumentRepository(db).List(ctx, models.DocumentFilter{ViewerID: "42"})
	require.NoError(t, err)
	assert.Empty(t, docs)

	tasks := NewTaskRepository(db)
	mock.ExpectQuery("FROM tasks WHERE").WillReturnError(errInvalidUUID)
	list, err := tasks.List(ctx, models.TaskFilter{AssigneeID: "42"})
	require.NoError(t, err)
	assert.Empty(t, list)

	mock.ExpectQuery("SELECT COUNT").WillReturnError(errInvalidUUID)
	total, err := tasks.Count(ctx, models.TaskFilter{AssigneeID: "42"})
	require.NoError(t, err)
	assert.Zero(t, total)

	mock.ExpectQuery("GROUP BY status").WillReturnError(errInvalidUUID)
	counts, err := tasks.CountByStatus(ctx, "42")
	require.NoError(t, err)
	assert.Empty(t, counts)

	assert.NoError(t, mock.ExpectationsWereMet())
}
