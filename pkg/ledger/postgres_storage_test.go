package ledger

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostgres(t *testing.T) (*PostgresStorage, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return NewPostgresStorage(mock), mock
}

func TestPostgresStorage_Create(t *testing.T) {
	s, mock := newPostgres(t)
	defer mock.Close()
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO notifications \(user_id, unread_messages\) VALUES \(\$1, 0\) ON CONFLICT \(user_id\) DO NOTHING`).
		WithArgs("u1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, s.Create(ctx, "u1"))

	// Existing record: still no error.
	mock.ExpectExec(`INSERT INTO notifications`).
		WithArgs("u1").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	require.NoError(t, s.Create(ctx, "u1"))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_Increment(t *testing.T) {
	s, mock := newPostgres(t)
	defer mock.Close()
	ctx := context.Background()

	mock.ExpectQuery(`UPDATE notifications SET unread_messages = unread_messages \+ 1 WHERE user_id = \$1 RETURNING unread_messages`).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"unread_messages"}).AddRow(4))
	n, err := s.Increment(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	mock.ExpectQuery(`UPDATE notifications SET unread_messages = unread_messages \+ 1`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)
	_, err = s.Increment(ctx, "ghost")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_Decrement(t *testing.T) {
	s, mock := newPostgres(t)
	defer mock.Close()
	ctx := context.Background()

	mock.ExpectQuery(`UPDATE notifications SET unread_messages = GREATEST\(unread_messages - 1, 0\) WHERE user_id = \$1 RETURNING unread_messages`).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"unread_messages"}).AddRow(0))
	n, err := s.Decrement(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_SetAndGet(t *testing.T) {
	s, mock := newPostgres(t)
	defer mock.Close()
	ctx := context.Background()

	mock.ExpectExec(`UPDATE notifications SET unread_messages = \$2 WHERE user_id = \$1`).
		WithArgs("u1", 7).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, s.Set(ctx, "u1", 7))

	mock.ExpectExec(`UPDATE notifications SET unread_messages = \$2 WHERE user_id = \$1`).
		WithArgs("ghost", 7).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, s.Set(ctx, "ghost", 7), ErrRecordNotFound)

	// Negative values are clamped before hitting the database.
	mock.ExpectExec(`UPDATE notifications SET unread_messages = \$2 WHERE user_id = \$1`).
		WithArgs("u1", 0).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, s.Set(ctx, "u1", -3))

	mock.ExpectQuery(`SELECT unread_messages FROM notifications WHERE user_id = \$1`).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"unread_messages"}).AddRow(7))
	n, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	mock.ExpectQuery(`SELECT unread_messages FROM notifications WHERE user_id = \$1`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)
	_, err = s.Get(ctx, "ghost")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_Delete(t *testing.T) {
	s, mock := newPostgres(t)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM notifications WHERE user_id = \$1`).
		WithArgs("u1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, s.Delete(context.Background(), "u1"))

	require.NoError(t, mock.ExpectationsWereMet())
}
