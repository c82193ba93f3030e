package ledger

import (
	"context"
	"sync"
)

// MemoryStorage is an in-memory Storage implementation.
// Suitable for development and testing.
type MemoryStorage struct {
	counts map[string]int
	mu     sync.Mutex
}

// NewMemoryStorage creates an empty in-memory ledger storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{counts: make(map[string]int)}
}

func (s *MemoryStorage) Create(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.counts[userID]; !ok {
		s.counts[userID] = 0
	}
	return nil
}

func (s *MemoryStorage) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.counts, userID)
	return nil
}

func (s *MemoryStorage) Increment(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.counts[userID]; !ok {
		return 0, ErrRecordNotFound
	}
	s.counts[userID]++
	return s.counts[userID], nil
}

func (s *MemoryStorage) Decrement(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.counts[userID]
	if !ok {
		return 0, ErrRecordNotFound
	}
	if n > 0 {
		n--
	}
	s.counts[userID] = n
	return n, nil
}

func (s *MemoryStorage) Set(ctx context.Context, userID string, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.counts[userID]; !ok {
		return ErrRecordNotFound
	}
	if count < 0 {
		count = 0
	}
	s.counts[userID] = count
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.counts[userID]
	if !ok {
		return 0, ErrRecordNotFound
	}
	return n, nil
}
