package store

import (
	"context"
	"slices"
	"sync"

	"github.com/aDramaQueen/messenger/pkg/wire"
)

// MemoryStorage is an in-memory Storage implementation.
// Suitable for development and testing.
type MemoryStorage struct {
	users     map[string]User
	userMsgs  map[string]UserMessage
	groupMsgs map[string]*groupRecord
	mu        sync.RWMutex
}

type groupRecord struct {
	msg      GroupMessage
	targets  map[string]struct{}
	received map[string]struct{}
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		users:     make(map[string]User),
		userMsgs:  make(map[string]UserMessage),
		groupMsgs: make(map[string]*groupRecord),
	}
}

func (s *MemoryStorage) CreateUser(ctx context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.ID]; ok {
		return ErrAlreadyExists
	}
	s.users[u.ID] = u
	return nil
}

func (s *MemoryStorage) GetUser(ctx context.Context, userID string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemoryStorage) DeleteUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return ErrNotFound
	}
	delete(s.users, userID)

	// Cascade the way the relational schema does.
	for id, m := range s.userMsgs {
		if m.OwnerID == userID {
			delete(s.userMsgs, id)
		}
	}
	for _, rec := range s.groupMsgs {
		delete(rec.targets, userID)
		delete(rec.received, userID)
	}
	return nil
}

func (s *MemoryStorage) CreateUserMessage(ctx context.Context, m UserMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[m.OwnerID]; !ok {
		return ErrNotFound
	}
	if _, ok := s.userMsgs[m.ID]; ok {
		return ErrAlreadyExists
	}
	s.userMsgs[m.ID] = m
	return nil
}

func (s *MemoryStorage) GetUserMessage(ctx context.Context, messageID string) (UserMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.userMsgs[messageID]
	if !ok {
		return UserMessage{}, ErrNotFound
	}
	return m, nil
}

func (s *MemoryStorage) MarkUserMessageReceived(ctx context.Context, messageID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.userMsgs[messageID]
	if !ok {
		return "", false, ErrNotFound
	}
	if m.Received {
		return m.OwnerID, false, nil
	}
	m.Received = true
	s.userMsgs[messageID] = m
	return m.OwnerID, true, nil
}

func (s *MemoryStorage) DeleteUserMessage(ctx context.Context, messageID string) (UserMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.userMsgs[messageID]
	if !ok {
		return UserMessage{}, ErrNotFound
	}
	delete(s.userMsgs, messageID)
	return m, nil
}

func (s *MemoryStorage) CreateGroupMessage(ctx context.Context, m GroupMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groupMsgs[m.ID]; ok {
		return ErrAlreadyExists
	}
	rec := &groupRecord{
		msg:      GroupMessage{ID: m.ID, Title: m.Title, Body: m.Body, CreatedAt: m.CreatedAt},
		targets:  make(map[string]struct{}),
		received: make(map[string]struct{}),
	}
	for _, id := range m.TargetIDs {
		if u, ok := s.users[id]; ok && u.Active {
			rec.targets[id] = struct{}{}
		}
	}
	s.groupMsgs[m.ID] = rec
	return nil
}

func (s *MemoryStorage) GetGroupMessage(ctx context.Context, messageID string) (GroupMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.groupMsgs[messageID]
	if !ok {
		return GroupMessage{}, ErrNotFound
	}
	return rec.snapshot(), nil
}

func (s *MemoryStorage) AddGroupTargets(ctx context.Context, messageID string, userIDs []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.groupMsgs[messageID]
	if !ok {
		return nil, ErrNotFound
	}

	added := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if _, dup := rec.targets[id]; dup {
			continue
		}
		u, ok := s.users[id]
		if !ok || !u.Active {
			continue
		}
		rec.targets[id] = struct{}{}
		added = append(added, id)
	}
	return added, nil
}

func (s *MemoryStorage) MarkGroupMessageReceived(ctx context.Context, messageID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.groupMsgs[messageID]
	if !ok {
		return false, ErrNotFound
	}
	if _, isTarget := rec.targets[userID]; !isTarget {
		return false, nil
	}
	if _, already := rec.received[userID]; already {
		return false, nil
	}
	rec.received[userID] = struct{}{}
	return true, nil
}

func (s *MemoryStorage) DeleteGroupMessage(ctx context.Context, messageID string) (GroupMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.groupMsgs[messageID]
	if !ok {
		return GroupMessage{}, ErrNotFound
	}
	delete(s.groupMsgs, messageID)
	return rec.snapshot(), nil
}

func (s *MemoryStorage) UnreadUserMessageCount(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, m := range s.userMsgs {
		if m.OwnerID == userID && !m.Received {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStorage) UnreadGroupMessageCount(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, rec := range s.groupMsgs {
		if _, isTarget := rec.targets[userID]; !isTarget {
			continue
		}
		if _, read := rec.received[userID]; !read {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStorage) MessagesForUser(ctx context.Context, userID string) ([]MessageMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var metas []MessageMeta
	for _, m := range s.userMsgs {
		if m.OwnerID != userID {
			continue
		}
		metas = append(metas, MessageMeta{
			Type:      wire.TypeUserText,
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			Title:     m.Title,
			Received:  m.Received,
		})
	}
	for _, rec := range s.groupMsgs {
		if _, isTarget := rec.targets[userID]; !isTarget {
			continue
		}
		_, read := rec.received[userID]
		metas = append(metas, MessageMeta{
			Type:      wire.TypeGroupText,
			ID:        rec.msg.ID,
			CreatedAt: rec.msg.CreatedAt,
			Title:     rec.msg.Title,
			Received:  read,
		})
	}

	slices.SortFunc(metas, func(a, b MessageMeta) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return metas, nil
}

func (r *groupRecord) snapshot() GroupMessage {
	msg := r.msg
	msg.TargetIDs = make([]string, 0, len(r.targets))
	for id := range r.targets {
		msg.TargetIDs = append(msg.TargetIDs, id)
	}
	msg.ReceivedIDs = make([]string, 0, len(r.received))
	for id := range r.received {
		msg.ReceivedIDs = append(msg.ReceivedIDs, id)
	}
	slices.Sort(msg.TargetIDs)
	slices.Sort(msg.ReceivedIDs)
	return msg
}
