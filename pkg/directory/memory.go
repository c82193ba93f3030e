package directory

import (
	"context"
	"sync"
)

// Memory is an in-process Directory for single-process deployments.
// A user's entry is kept alive by its connection count and removed when the
// last connection unregisters.
type Memory struct {
	channels map[string]map[string]struct{} // channel name -> connection id set
	conns    map[string]string              // connection id -> channel name
	mu       sync.RWMutex
}

// NewMemory creates an empty in-memory directory.
func NewMemory() *Memory {
	return &Memory{
		channels: make(map[string]map[string]struct{}),
		conns:    make(map[string]string),
	}
}

func (m *Memory) Register(ctx context.Context, userID, connID string) error {
	name := ChannelName(userID)

	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.channels[name]
	if !ok {
		set = make(map[string]struct{})
		m.channels[name] = set
	}
	set[connID] = struct{}{}
	m.conns[connID] = name
	return nil
}

func (m *Memory) Unregister(ctx context.Context, userID, connID string) error {
	name := ChannelName(userID)

	m.mu.Lock()
	defer m.mu.Unlock()

	if set, ok := m.channels[name]; ok {
		delete(set, connID)
		if len(set) == 0 {
			delete(m.channels, name)
		}
	}
	delete(m.conns, connID)
	return nil
}

func (m *Memory) Exists(ctx context.Context, connID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.conns[connID]
	return ok, nil
}

func (m *Memory) Connections(ctx context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set := m.channels[ChannelName(userID)]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids, nil
}
