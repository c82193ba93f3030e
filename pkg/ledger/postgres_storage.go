package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the minimal pool surface the Postgres storage needs.
// It is implemented by *pgxpool.Pool and pgxmock.PgxPoolIface.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStorage persists ledger records in the notifications table.
// All counter mutations are single-statement read-modify-writes, so they
// are atomic under concurrent reactors without explicit transactions.
type PostgresStorage struct {
	pool PgxPool
}

// NewPostgresStorage creates a ledger storage on an established pool.
func NewPostgresStorage(pool PgxPool) *PostgresStorage {
	return &PostgresStorage{pool: pool}
}

func (s *PostgresStorage) Create(ctx context.Context, userID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO notifications (user_id, unread_messages) VALUES ($1, 0) ON CONFLICT (user_id) DO NOTHING`,
		userID)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (s *PostgresStorage) Delete(ctx context.Context, userID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM notifications WHERE user_id = $1`, userID)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (s *PostgresStorage) Increment(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`UPDATE notifications SET unread_messages = unread_messages + 1 WHERE user_id = $1 RETURNING unread_messages`,
		userID).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrRecordNotFound
		}
		return 0, errors.Join(ErrStoreUnavailable, err)
	}
	return count, nil
}

func (s *PostgresStorage) Decrement(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`UPDATE notifications SET unread_messages = GREATEST(unread_messages - 1, 0) WHERE user_id = $1 RETURNING unread_messages`,
		userID).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrRecordNotFound
		}
		return 0, errors.Join(ErrStoreUnavailable, err)
	}
	return count, nil
}

func (s *PostgresStorage) Set(ctx context.Context, userID string, count int) error {
	if count < 0 {
		count = 0
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE notifications SET unread_messages = $2 WHERE user_id = $1`,
		userID, count)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *PostgresStorage) Get(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT unread_messages FROM notifications WHERE user_id = $1`,
		userID).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrRecordNotFound
		}
		return 0, errors.Join(ErrStoreUnavailable, err)
	}
	return count, nil
}
