package service

import (
	"context"
	"testing"
	"time"

	"livestream-api/core/database"
	"livestream-api/core/errors"
	"livestream-api/modules/livestream/repository"
	userservice "livestream-api/modules/user/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPostgresService runs the reservation path against sqlmock through the
// real PostgresStore. The pool holds a single connection, so any statement
// issued outside the transaction blocks until the context deadline.
func newPostgresService(t *testing.T) (*LivestreamService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	db.SetMaxOpenConns(1)

	store := repository.NewPostgresStore(database.NewFromSQLX(sqlx.NewDb(db, "postgres")), 3*time.Second)
	svc := NewLivestreamService(
		store,
		NewTermValidator(time.Unix(0, 0), time.Unix(7200, 0)),
		NewCapacityAllocator(),
		NewReservationWriter(),
		NewAssembler(userservice.NewProfileFiller([]byte("fallback"))),
		nil,
		nil,
	)
	return svc, mock
}

func expectSlotTaken(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectExec(`SET LOCAL lock_timeout = 3000`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(int64(3600), int64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "slot", "start_at", "end_at"}).AddRow(1, 2, 0, 3600))
	mock.ExpectQuery(`SELECT slot FROM reservation_slots WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"slot"}).AddRow(2))
	mock.ExpectExec(`UPDATE reservation_slots SET slot = slot - 1 WHERE id = ANY\(\$1\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO livestreams`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
}

func TestReserveLivestream_SingleConnectionPool(t *testing.T) {
	svc, mock := newPostgresService(t)

	expectSlotTaken(mock)
	mock.ExpectQuery(`SELECT id FROM tags WHERE id = ANY\(\$1\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(`INSERT INTO livestream_tags`).
		WithArgs(int64(10), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "display_name", "description", "password"}).
			AddRow(3, "streamerc", "Streamer", "", "x"))
	mock.ExpectQuery(`FROM themes WHERE user_id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "dark_mode"}).AddRow(3, 3, true))
	mock.ExpectQuery(`FROM icons WHERE user_id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"image"}))
	mock.ExpectQuery(`FROM livestream_tags lt`).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"tag_id", "name"}).AddRow(1, "chat").AddRow(999, nil))
	mock.ExpectCommit()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	resp, appErr := svc.ReserveLivestream(ctx, 3, reserveReq(0, 3600))
	require.Nil(t, appErr)
	assert.Equal(t, int64(10), resp.ID)
	assert.True(t, resp.Owner.Theme.DarkMode)
	require.Len(t, resp.Tags, 1)
	assert.Equal(t, "chat", resp.Tags[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveLivestream_LockTimeoutIsStorageFailure(t *testing.T) {
	lockTimeout := &pq.Error{Code: "55P03", Message: "canceling statement due to lock timeout"}

	t.Run("while locking slots", func(t *testing.T) {
		svc, mock := newPostgresService(t)
		mock.ExpectBegin()
		mock.ExpectExec(`SET LOCAL lock_timeout = 3000`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`FOR UPDATE`).WillReturnError(lockTimeout)
		mock.ExpectRollback()

		_, appErr := svc.ReserveLivestream(context.Background(), 3, reserveReq(0, 3600))
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrStorageFailure, appErr.Code)
		assert.Equal(t, "lock_timeout", database.Classify(appErr.Err))
		// no decrement was issued
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("after capacity was taken", func(t *testing.T) {
		svc, mock := newPostgresService(t)
		expectSlotTaken(mock)
		mock.ExpectQuery(`SELECT id FROM tags WHERE id = ANY\(\$1\)`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectExec(`INSERT INTO livestream_tags`).WillReturnError(lockTimeout)
		mock.ExpectRollback()

		_, appErr := svc.ReserveLivestream(context.Background(), 3, reserveReq(0, 3600))
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrStorageFailure, appErr.Code)
		// the decrement is undone by the rollback, never committed
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
