package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aDramaQueen/messenger/pkg/logger"
	"github.com/aDramaQueen/messenger/pkg/wire"
)

// Pusher delivers a DTO to all of a user's live connections.
// Implemented by the fan-out dispatcher.
type Pusher interface {
	Push(ctx context.Context, userID string, dto wire.DTO) error
}

// UnreadSource provides the authoritative unread-item counts used by Reset.
// Implemented by the message store.
type UnreadSource interface {
	UnreadUserMessageCount(ctx context.Context, userID string) (int, error)
	UnreadGroupMessageCount(ctx context.Context, userID string) (int, error)
}

// Ledger orchestrates counter storage and push-on-change delivery.
type Ledger struct {
	storage Storage
	pusher  Pusher
	source  UnreadSource
	log     *slog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithPusher sets the dispatcher notified after every counter change.
func WithPusher(p Pusher) Option {
	return func(l *Ledger) { l.pusher = p }
}

// WithUnreadSource sets the authoritative source Reset recomputes from.
func WithUnreadSource(s UnreadSource) Option {
	return func(l *Ledger) { l.source = s }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(l *Ledger) {
		if log != nil {
			l.log = log
		}
	}
}

// New creates a Ledger on the given storage. Without a Pusher, counter
// changes are persisted but not delivered anywhere.
func New(storage Storage, opts ...Option) *Ledger {
	l := &Ledger{
		storage: storage,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CreateRecord creates the user's ledger record with a zero counter.
// Record creation never pushes.
func (l *Ledger) CreateRecord(ctx context.Context, userID string) error {
	return l.storage.Create(ctx, userID)
}

// DeleteRecord removes the user's ledger record (user deletion cascade).
func (l *Ledger) DeleteRecord(ctx context.Context, userID string) error {
	return l.storage.Delete(ctx, userID)
}

// Increment adds one unread unit and pushes the new counter.
func (l *Ledger) Increment(ctx context.Context, userID string) error {
	count, err := l.storage.Increment(ctx, userID)
	if err != nil {
		return fmt.Errorf("increment unread counter: %w", err)
	}
	l.push(ctx, userID, count)
	return nil
}

// Decrement removes one unread unit, floored at zero, and pushes the new
// counter.
func (l *Ledger) Decrement(ctx context.Context, userID string) error {
	count, err := l.storage.Decrement(ctx, userID)
	if err != nil {
		return fmt.Errorf("decrement unread counter: %w", err)
	}
	l.push(ctx, userID, count)
	return nil
}

// Reset recomputes the counter from the authoritative unread counts.
// It does not push: the next increment or decrement resynchronizes the
// client, and clients can request a refresh at any time.
func (l *Ledger) Reset(ctx context.Context, userID string) error {
	if l.source == nil {
		return fmt.Errorf("reset unread counter: no unread source configured")
	}

	userMsgs, err := l.source.UnreadUserMessageCount(ctx, userID)
	if err != nil {
		return fmt.Errorf("count unread user messages: %w", err)
	}
	groupMsgs, err := l.source.UnreadGroupMessageCount(ctx, userID)
	if err != nil {
		return fmt.Errorf("count unread group messages: %w", err)
	}

	if err := l.storage.Set(ctx, userID, userMsgs+groupMsgs); err != nil {
		return fmt.Errorf("reset unread counter: %w", err)
	}
	return nil
}

// Clear zeroes the counter without recomputation. Does not push.
func (l *Ledger) Clear(ctx context.Context, userID string) error {
	if err := l.storage.Set(ctx, userID, 0); err != nil {
		return fmt.Errorf("clear unread counter: %w", err)
	}
	return nil
}

// Unread returns the current counter for non-realtime consumers.
func (l *Ledger) Unread(ctx context.Context, userID string) (int, error) {
	return l.storage.Get(ctx, userID)
}

// push delivers the new counter to the user's live connections.
// The counter is already durable at this point, so delivery is best effort:
// failures are logged, never returned to the mutating caller.
func (l *Ledger) push(ctx context.Context, userID string, count int) {
	if l.pusher == nil {
		return
	}
	if err := l.pusher.Push(ctx, userID, wire.NotificationDTO{UnreadMessages: count}); err != nil {
		l.log.LogAttrs(ctx, slog.LevelWarn, "Failed to push unread counter update",
			logger.UserID(userID),
			slog.Int("unread_messages", count),
			logger.Error(err),
		)
	}
}
