// Package fanout delivers encoded frames to all live connections of a user.
//
// The dispatcher resolves a user's connection set through the directory and
// writes to each local sender serially. One failing connection never blocks
// the others: its error is logged and delivery continues.
package fanout

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aDramaQueen/messenger/pkg/directory"
	"github.com/aDramaQueen/messenger/pkg/logger"
	"github.com/aDramaQueen/messenger/pkg/wire"
)

// Sender is one attached connection's outbound half.
type Sender interface {
	// ID returns the connection id the sender is registered under.
	ID() string

	// Send queues a payload for delivery. It must not block indefinitely;
	// a saturated or closed connection returns an error instead.
	Send(ctx context.Context, payload []byte) error
}

// Dispatcher fans DTOs out to a user's live connections.
// It satisfies the ledger's Pusher interface.
type Dispatcher struct {
	dir     directory.Directory
	log     *slog.Logger
	senders map[string]Sender
	mu      sync.RWMutex
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(d *Dispatcher) {
		if log != nil {
			d.log = log
		}
	}
}

// New creates a dispatcher resolving recipients through the directory.
func New(dir directory.Directory, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		dir:     dir,
		log:     slog.Default(),
		senders: make(map[string]Sender),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Attach makes a sender addressable under its connection id.
// Attaching an id twice replaces the previous sender.
func (d *Dispatcher) Attach(s Sender) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.senders[s.ID()] = s
}

// Detach removes a sender. Detaching an unknown id is a no-op.
func (d *Dispatcher) Detach(connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.senders, connID)
}

// Push encodes the DTO once and delivers it to every live connection of the
// user, serially. Per-connection failures are logged and skipped; Push only
// fails when the payload cannot be encoded or the directory cannot be read.
func (d *Dispatcher) Push(ctx context.Context, userID string, dto wire.DTO) error {
	payload, err := wire.Encode(dto)
	if err != nil {
		return fmt.Errorf("encode %s frame: %w", dto.Type(), err)
	}

	connIDs, err := d.dir.Connections(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolve connections for %s: %w", directory.ChannelName(userID), err)
	}

	for _, connID := range connIDs {
		d.mu.RLock()
		s, ok := d.senders[connID]
		d.mu.RUnlock()
		if !ok {
			// Registered on another instance; not ours to deliver.
			continue
		}
		if err := s.Send(ctx, payload); err != nil {
			d.log.LogAttrs(ctx, slog.LevelWarn, "Failed to deliver frame to connection",
				logger.UserID(userID),
				logger.ConnID(connID),
				logger.MessageType(dto.Type().String()),
				logger.Error(err),
			)
		}
	}
	return nil
}
