package ws

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aDramaQueen/messenger/pkg/directory"
	"github.com/aDramaQueen/messenger/pkg/logger"
	"github.com/aDramaQueen/messenger/pkg/statemachine"
)

// Connection lifecycle. Closed is terminal; a connection that never reaches
// Open goes straight from Connecting to Closed.
const (
	StateConnecting statemachine.State = "connecting"
	StateOpen       statemachine.State = "open"
	StateClosed     statemachine.State = "closed"

	eventAccept statemachine.Event = "accept"
	eventClose  statemachine.Event = "close"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 16
)

var (
	// ErrSendBufferFull is returned when the connection's outbound buffer
	// is saturated. The frame is dropped, not queued.
	ErrSendBufferFull = errors.New("ws: send buffer full")

	// ErrConnClosed is returned when sending on a closed connection.
	ErrConnClosed = errors.New("ws: connection closed")
)

// Conn is one live websocket connection of a user. Outbound frames go
// through a buffered channel drained by a dedicated write pump, so a slow
// peer never stalls the read loop or the fan-out path.
type Conn struct {
	id     string
	userID string
	sock   *websocket.Conn
	dir    directory.Directory
	log    *slog.Logger
	state  *statemachine.Machine

	send chan []byte
	done chan struct{}
	once sync.Once
}

func newConn(id, userID string, sock *websocket.Conn, dir directory.Directory, log *slog.Logger) *Conn {
	state := statemachine.New(StateConnecting)
	state.AddTransition(StateConnecting, StateOpen, eventAccept)
	state.AddTransition(StateConnecting, StateClosed, eventClose)
	state.AddTransition(StateOpen, StateClosed, eventClose)

	return &Conn{
		id:     id,
		userID: userID,
		sock:   sock,
		dir:    dir,
		log:    log,
		state:  state,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// ID returns the connection id the directory and dispatcher know it by.
func (c *Conn) ID() string { return c.id }

// UserID returns the authenticated user owning the connection.
func (c *Conn) UserID() string { return c.userID }

// State returns the connection's lifecycle state.
func (c *Conn) State() statemachine.State { return c.state.Current() }

// Send queues a pushed frame for delivery. Frames for a connection that is
// not open or no longer registered in the directory are dropped silently:
// the connection is on its way out and the counter is durable regardless.
func (c *Conn) Send(ctx context.Context, payload []byte) error {
	if c.state.Current() != StateOpen {
		return nil
	}
	registered, err := c.dir.Exists(ctx, c.id)
	if err != nil {
		return err
	}
	if !registered {
		return nil
	}
	return c.enqueue(payload)
}

// enqueue hands the payload to the write pump without blocking.
func (c *Conn) enqueue(payload []byte) error {
	select {
	case <-c.done:
		return ErrConnClosed
	case c.send <- payload:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// writePump drains the send channel onto the socket and keeps the
// connection alive with pings. It owns all writes to the socket.
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.sock.Close()
	}()

	for {
		select {
		case <-c.done:
			c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			c.sock.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case payload := <-c.send:
			c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.log.LogAttrs(context.Background(), slog.LevelWarn, "Failed to write frame",
					logger.UserID(c.userID),
					logger.ConnID(c.id),
					logger.Error(err),
				)
				return
			}
		case <-ticker.C:
			c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// close stops the write pump and marks the connection closed. Idempotent.
func (c *Conn) close(ctx context.Context) {
	c.once.Do(func() {
		c.state.Fire(ctx, eventClose)
		close(c.done)
	})
}
