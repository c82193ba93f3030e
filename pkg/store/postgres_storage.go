package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/aDramaQueen/messenger/pkg/wire"
)

// PgxPool is the minimal pool surface the Postgres storage needs.
// It is implemented by *pgxpool.Pool and pgxmock.PgxPoolIface.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresStorage persists users and messages in PostgreSQL.
// Group membership is modelled with two join tables (targets and received),
// mirroring the relational shape of the domain.
type PostgresStorage struct {
	pool PgxPool
}

// NewPostgresStorage creates a store storage on an established pool.
func NewPostgresStorage(pool PgxPool) *PostgresStorage {
	return &PostgresStorage{pool: pool}
}

func (s *PostgresStorage) CreateUser(ctx context.Context, u User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, active, created_at) VALUES ($1, $2, $3)`,
		u.ID, u.Active, u.CreatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrAlreadyExists
		}
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (s *PostgresStorage) GetUser(ctx context.Context, userID string) (User, error) {
	var u User
	err := s.pool.QueryRow(ctx,
		`SELECT id, active, created_at FROM users WHERE id = $1`,
		userID).Scan(&u.ID, &u.Active, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, errors.Join(ErrStoreUnavailable, err)
	}
	return u, nil
}

func (s *PostgresStorage) DeleteUser(ctx context.Context, userID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStorage) CreateUserMessage(ctx context.Context, m UserMessage) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_messages (id, title, body, created_at, received, owner_id) VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.Title, m.Body, m.CreatedAt, m.Received, m.OwnerID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return ErrNotFound
		}
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (s *PostgresStorage) GetUserMessage(ctx context.Context, messageID string) (UserMessage, error) {
	var m UserMessage
	err := s.pool.QueryRow(ctx,
		`SELECT id, title, body, created_at, received, owner_id FROM user_messages WHERE id = $1`,
		messageID).Scan(&m.ID, &m.Title, &m.Body, &m.CreatedAt, &m.Received, &m.OwnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserMessage{}, ErrNotFound
		}
		return UserMessage{}, errors.Join(ErrStoreUnavailable, err)
	}
	return m, nil
}

func (s *PostgresStorage) MarkUserMessageReceived(ctx context.Context, messageID string) (string, bool, error) {
	var ownerID string
	err := s.pool.QueryRow(ctx,
		`UPDATE user_messages SET received = TRUE WHERE id = $1 AND received = FALSE RETURNING owner_id`,
		messageID).Scan(&ownerID)
	if err == nil {
		return ownerID, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", false, errors.Join(ErrStoreUnavailable, err)
	}

	// Nothing flipped: either already received or the message is gone.
	err = s.pool.QueryRow(ctx,
		`SELECT owner_id FROM user_messages WHERE id = $1`,
		messageID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, ErrNotFound
		}
		return "", false, errors.Join(ErrStoreUnavailable, err)
	}
	return ownerID, false, nil
}

func (s *PostgresStorage) DeleteUserMessage(ctx context.Context, messageID string) (UserMessage, error) {
	var m UserMessage
	err := s.pool.QueryRow(ctx,
		`DELETE FROM user_messages WHERE id = $1 RETURNING id, title, body, created_at, received, owner_id`,
		messageID).Scan(&m.ID, &m.Title, &m.Body, &m.CreatedAt, &m.Received, &m.OwnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserMessage{}, ErrNotFound
		}
		return UserMessage{}, errors.Join(ErrStoreUnavailable, err)
	}
	return m, nil
}

func (s *PostgresStorage) CreateGroupMessage(ctx context.Context, m GroupMessage) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	_, err = tx.Exec(ctx,
		`INSERT INTO group_messages (id, title, body, created_at) VALUES ($1, $2, $3, $4)`,
		m.ID, m.Title, m.Body, m.CreatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrAlreadyExists
		}
		return errors.Join(ErrStoreUnavailable, err)
	}

	if len(m.TargetIDs) > 0 {
		_, err = tx.Exec(ctx,
			`INSERT INTO group_message_targets (message_id, user_id)
			 SELECT $1, u.id FROM users u WHERE u.id = ANY($2) AND u.active
			 ON CONFLICT DO NOTHING`,
			m.ID, m.TargetIDs)
		if err != nil {
			return errors.Join(ErrStoreUnavailable, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (s *PostgresStorage) GetGroupMessage(ctx context.Context, messageID string) (GroupMessage, error) {
	var m GroupMessage
	err := s.pool.QueryRow(ctx,
		`SELECT id, title, body, created_at FROM group_messages WHERE id = $1`,
		messageID).Scan(&m.ID, &m.Title, &m.Body, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return GroupMessage{}, ErrNotFound
		}
		return GroupMessage{}, errors.Join(ErrStoreUnavailable, err)
	}

	if m.TargetIDs, err = s.memberIDs(ctx, `SELECT user_id FROM group_message_targets WHERE message_id = $1 ORDER BY user_id`, messageID); err != nil {
		return GroupMessage{}, err
	}
	if m.ReceivedIDs, err = s.memberIDs(ctx, `SELECT user_id FROM group_message_received WHERE message_id = $1 ORDER BY user_id`, messageID); err != nil {
		return GroupMessage{}, err
	}
	return m, nil
}

func (s *PostgresStorage) AddGroupTargets(ctx context.Context, messageID string, userIDs []string) ([]string, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx,
		`INSERT INTO group_message_targets (message_id, user_id)
		 SELECT $1, u.id FROM users u WHERE u.id = ANY($2) AND u.active
		 ON CONFLICT DO NOTHING
		 RETURNING user_id`,
		messageID, userIDs)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var added []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Join(ErrStoreUnavailable, err)
		}
		added = append(added, id)
	}
	if err := rows.Err(); err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return added, nil
}

func (s *PostgresStorage) MarkGroupMessageReceived(ctx context.Context, messageID, userID string) (bool, error) {
	// Only recorded for actual targets; re-reads hit the conflict clause.
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO group_message_received (message_id, user_id)
		 SELECT t.message_id, t.user_id FROM group_message_targets t
		 WHERE t.message_id = $1 AND t.user_id = $2
		 ON CONFLICT DO NOTHING`,
		messageID, userID)
	if err != nil {
		return false, errors.Join(ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	// Zero rows covers three cases: repeat read, non-target user, and a
	// missing message. Only the last one is an error.
	var exists bool
	err = s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM group_messages WHERE id = $1)`,
		messageID).Scan(&exists)
	if err != nil {
		return false, errors.Join(ErrStoreUnavailable, err)
	}
	if !exists {
		return false, ErrNotFound
	}
	return false, nil
}

func (s *PostgresStorage) DeleteGroupMessage(ctx context.Context, messageID string) (GroupMessage, error) {
	// The join tables cascade on delete, so the last state is captured
	// before the message row goes away.
	m, err := s.GetGroupMessage(ctx, messageID)
	if err != nil {
		return GroupMessage{}, err
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM group_messages WHERE id = $1`, messageID)
	if err != nil {
		return GroupMessage{}, errors.Join(ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return GroupMessage{}, ErrNotFound
	}
	return m, nil
}

func (s *PostgresStorage) UnreadUserMessageCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM user_messages WHERE owner_id = $1 AND received = FALSE`,
		userID).Scan(&count)
	if err != nil {
		return 0, errors.Join(ErrStoreUnavailable, err)
	}
	return count, nil
}

func (s *PostgresStorage) UnreadGroupMessageCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM group_message_targets t
		 WHERE t.user_id = $1 AND NOT EXISTS (
		   SELECT 1 FROM group_message_received r
		   WHERE r.message_id = t.message_id AND r.user_id = t.user_id
		 )`,
		userID).Scan(&count)
	if err != nil {
		return 0, errors.Join(ErrStoreUnavailable, err)
	}
	return count, nil
}

func (s *PostgresStorage) MessagesForUser(ctx context.Context, userID string) ([]MessageMeta, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT $2::int, id, created_at, title, received FROM user_messages WHERE owner_id = $1
		 UNION ALL
		 SELECT $3::int, g.id, g.created_at, g.title,
		        EXISTS (SELECT 1 FROM group_message_received r WHERE r.message_id = g.id AND r.user_id = $1)
		 FROM group_messages g
		 JOIN group_message_targets t ON t.message_id = g.id AND t.user_id = $1
		 ORDER BY 3`,
		userID, int(wire.TypeUserText), int(wire.TypeGroupText))
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var metas []MessageMeta
	for rows.Next() {
		var meta MessageMeta
		var msgType int
		if err := rows.Scan(&msgType, &meta.ID, &meta.CreatedAt, &meta.Title, &meta.Received); err != nil {
			return nil, errors.Join(ErrStoreUnavailable, err)
		}
		meta.Type = wire.MessageType(msgType)
		metas = append(metas, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return metas, nil
}

func (s *PostgresStorage) memberIDs(ctx context.Context, query, messageID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, query, messageID)
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Join(ErrStoreUnavailable, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return ids, nil
}

// isDuplicateKey detects PostgreSQL unique constraint violations (23505).
func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isForeignKeyViolation detects referential integrity violations (23503).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
