package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aDramaQueen/messenger/pkg/event"
)

// Store is the message service: it persists through a Storage and publishes
// a mutation event on the bus after every successful state change, so
// counter reactors observe exactly one event per real transition.
type Store struct {
	storage Storage
	bus     *event.Bus
}

// New creates a store service on the given storage and event bus.
func New(storage Storage, bus *event.Bus) *Store {
	return &Store{storage: storage, bus: bus}
}

// CreateUser stores a new user. A missing ID is generated, a zero
// CreatedAt is stamped with the current time.
func (s *Store) CreateUser(ctx context.Context, u User) (User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	if err := s.storage.CreateUser(ctx, u); err != nil {
		return User{}, err
	}
	if err := s.bus.Publish(ctx, event.UserCreated{UserID: u.ID}); err != nil {
		return User{}, err
	}
	return u, nil
}

// GetUser loads a user by ID.
func (s *Store) GetUser(ctx context.Context, userID string) (User, error) {
	return s.storage.GetUser(ctx, userID)
}

// DeleteUser removes the user and everything hanging off them.
func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	if err := s.storage.DeleteUser(ctx, userID); err != nil {
		return err
	}
	return s.bus.Publish(ctx, event.UserDeleted{UserID: userID})
}

// CreateUserMessage stores a direct message for its owner. New messages
// are always unread regardless of the Received field passed in.
func (s *Store) CreateUserMessage(ctx context.Context, m UserMessage) (UserMessage, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	m.Received = false

	if err := s.storage.CreateUserMessage(ctx, m); err != nil {
		return UserMessage{}, err
	}
	if err := s.bus.Publish(ctx, event.UserMessageCreated{MessageID: m.ID, OwnerID: m.OwnerID}); err != nil {
		return UserMessage{}, err
	}
	return m, nil
}

// GetUserMessage loads a direct message by ID.
func (s *Store) GetUserMessage(ctx context.Context, messageID string) (UserMessage, error) {
	return s.storage.GetUserMessage(ctx, messageID)
}

// MarkUserMessageReceived marks a direct message as read. Only the first
// call per message publishes an event; repeats are silent no-ops.
func (s *Store) MarkUserMessageReceived(ctx context.Context, messageID string) error {
	ownerID, changed, err := s.storage.MarkUserMessageReceived(ctx, messageID)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return s.bus.Publish(ctx, event.UserMessageReceived{MessageID: messageID, OwnerID: ownerID})
}

// DeleteUserMessage removes a direct message. The published event carries
// the read state at deletion time so an unread delete can be refunded.
func (s *Store) DeleteUserMessage(ctx context.Context, messageID string) error {
	m, err := s.storage.DeleteUserMessage(ctx, messageID)
	if err != nil {
		return err
	}
	return s.bus.Publish(ctx, event.UserMessageDeleted{
		MessageID: m.ID,
		OwnerID:   m.OwnerID,
		Received:  m.Received,
	})
}

// CreateGroupMessage stores a group message. Inactive or unknown users in
// the target list are dropped; the targets-added event names only the
// users that actually joined the target set.
func (s *Store) CreateGroupMessage(ctx context.Context, m GroupMessage) (GroupMessage, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	m.ReceivedIDs = nil

	if err := s.storage.CreateGroupMessage(ctx, m); err != nil {
		return GroupMessage{}, err
	}

	stored, err := s.storage.GetGroupMessage(ctx, m.ID)
	if err != nil {
		return GroupMessage{}, err
	}
	if len(stored.TargetIDs) > 0 {
		err = s.bus.Publish(ctx, event.GroupTargetsAdded{MessageID: stored.ID, UserIDs: stored.TargetIDs})
		if err != nil {
			return GroupMessage{}, err
		}
	}
	return stored, nil
}

// GetGroupMessage loads a group message with its target and received sets.
func (s *Store) GetGroupMessage(ctx context.Context, messageID string) (GroupMessage, error) {
	return s.storage.GetGroupMessage(ctx, messageID)
}

// AddGroupTargets extends a group message's audience. Users already
// targeted are skipped and produce no event.
func (s *Store) AddGroupTargets(ctx context.Context, messageID string, userIDs []string) error {
	added, err := s.storage.AddGroupTargets(ctx, messageID, userIDs)
	if err != nil {
		return err
	}
	if len(added) == 0 {
		return nil
	}
	return s.bus.Publish(ctx, event.GroupTargetsAdded{MessageID: messageID, UserIDs: added})
}

// MarkGroupMessageReceived records that the user read the group message.
// Non-targets and repeat reads publish nothing.
func (s *Store) MarkGroupMessageReceived(ctx context.Context, messageID, userID string) error {
	changed, err := s.storage.MarkGroupMessageReceived(ctx, messageID, userID)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return s.bus.Publish(ctx, event.GroupMessageRead{MessageID: messageID, UserID: userID})
}

// DeleteGroupMessage removes a group message. The event lists the targets
// who never read it, so their counters can be refunded.
func (s *Store) DeleteGroupMessage(ctx context.Context, messageID string) error {
	m, err := s.storage.DeleteGroupMessage(ctx, messageID)
	if err != nil {
		return err
	}
	return s.bus.Publish(ctx, event.GroupMessageDeleted{
		MessageID:     m.ID,
		UnreadUserIDs: m.UnreadBy(),
	})
}

// UnreadUserMessageCount reports the user's unread direct messages.
func (s *Store) UnreadUserMessageCount(ctx context.Context, userID string) (int, error) {
	return s.storage.UnreadUserMessageCount(ctx, userID)
}

// UnreadGroupMessageCount reports the group messages targeting the user
// that they have not read.
func (s *Store) UnreadGroupMessageCount(ctx context.Context, userID string) (int, error) {
	return s.storage.UnreadGroupMessageCount(ctx, userID)
}

// MessagesForUser returns the user's message overview ordered by creation
// time.
func (s *Store) MessagesForUser(ctx context.Context, userID string) ([]MessageMeta, error) {
	return s.storage.MessagesForUser(ctx, userID)
}
