package event

import (
	"context"
	"errors"
	"sync"
)

// Handler processes a published event. A non-nil error propagates to the
// publishing caller.
type Handler func(ctx context.Context, e Event) error

// Bus is a synchronous in-process event bus. Handlers run on the
// publisher's goroutine in subscription order.
type Bus struct {
	handlers map[Kind][]Handler
	mu       sync.RWMutex
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[Kind][]Handler)}
}

// Subscribe registers a handler for an event kind.
func (b *Bus) Subscribe(kind Kind, h Handler) {
	if h == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[kind] = append(b.handlers[kind], h)
}

// Publish delivers the event to all handlers subscribed to its kind.
// All handlers run even if an earlier one fails; their errors are joined.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	b.mu.RLock()
	handlers := b.handlers[e.Kind()]
	b.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := h(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
