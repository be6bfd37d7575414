package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"floorplanner/internal/planner/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *Repository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, New(db)
}

func TestSave_RollsBackOnRoomError(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT created_at FROM layouts`).
		WithArgs("l1").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}))
	mock.ExpectExec(`INSERT INTO layouts`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO layout_rooms`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.Save(context.Background(), models.Layout{
		ID:    "l1",
		Rooms: []models.LayoutItem{{ID: "r1", Type: "kitchen", Width: 140, Height: 100}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert room r1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_ReplacesRoomsOfExistingLayout(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT created_at FROM layouts`).
		WithArgs("l1").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow("2026-01-02T03:04:05.000000Z"))
	mock.ExpectExec(`UPDATE layouts SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM layout_rooms`).
		WithArgs("l1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	saved, err := repo.Save(context.Background(), models.Layout{ID: "l1", Name: "flat"})
	require.NoError(t, err)
	assert.Equal(t, 2026, saved.CreatedAt.Year())
	assert.Empty(t, saved.Rooms)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_Missing(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM layout_rooms`).WithArgs("nope").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM layouts`).WithArgs("nope").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	assert.ErrorIs(t, repo.Delete(context.Background(), "nope"), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_RoomQueryFails(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, name, canvas_width`).
		WithArgs("l1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "canvas_width", "canvas_height", "created_at", "updated_at"}).
			AddRow("l1", "flat", 1200, 800, "2026-01-02T03:04:05.000000Z", "2026-01-02T03:04:05.000000Z"))
	mock.ExpectQuery(`SELECT room_id`).
		WithArgs("l1").
		WillReturnError(errors.New("boom"))

	_, err := repo.Get(context.Background(), "l1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load rooms")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMetadataReferenced_QueryFails(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(1\) FROM layout_rooms`).
		WithArgs("room_a.json").
		WillReturnError(errors.New("boom"))

	_, err := repo.MetadataReferenced(context.Background(), "room_a.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count metadata refs")
	assert.NoError(t, mock.ExpectationsWereMet())
}
