// Package ws exposes the websocket endpoint clients hold open to receive
// unread counter updates in real time.
//
// Each accepted connection is registered in the directory under the user's
// channel name and attached to the fan-out dispatcher, then served by a
// read loop dispatching inbound frames over the closed DTO set. Protocol
// errors never terminate a connection; only authorization failures and
// transport-level closes do.
package ws

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/aDramaQueen/messenger/pkg/directory"
	"github.com/aDramaQueen/messenger/pkg/fanout"
	"github.com/aDramaQueen/messenger/pkg/logger"
	"github.com/aDramaQueen/messenger/pkg/wire"
)

// errCodeUnsupportedType is reported to peers sending a reserved message
// type.
const errCodeUnsupportedType = 1

// IdentityFunc resolves the authenticated user from the handshake request.
// An empty user id or an error rejects the connection before the upgrade.
type IdentityFunc func(r *http.Request) (string, error)

// Registry is the dispatcher surface the handler needs: making connections
// addressable for fan-out and removing them on teardown.
type Registry interface {
	Attach(s fanout.Sender)
	Detach(connID string)
}

// UnreadReader reads a user's current unread counter.
// Implemented by the notification ledger.
type UnreadReader interface {
	Unread(ctx context.Context, userID string) (int, error)
}

// Handler upgrades HTTP requests to websocket connections and serves them.
type Handler struct {
	identity IdentityFunc
	dir      directory.Directory
	registry Registry
	unread   UnreadReader
	log      *slog.Logger
	upgrader websocket.Upgrader
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// WithCheckOrigin overrides the upgrader's origin policy.
func WithCheckOrigin(check func(r *http.Request) bool) Option {
	return func(h *Handler) { h.upgrader.CheckOrigin = check }
}

// NewHandler creates the websocket endpoint handler.
func NewHandler(identity IdentityFunc, dir directory.Directory, registry Registry, unread UnreadReader, opts ...Option) *Handler {
	h := &Handler{
		identity: identity,
		dir:      dir,
		registry: registry,
		unread:   unread,
		log:      slog.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := h.identity(r)
	if err != nil || userID == "" {
		h.log.LogAttrs(ctx, slog.LevelWarn, "Rejected anonymous connection attempt",
			slog.String("remote_addr", r.RemoteAddr),
			logger.Error(err),
		)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	sock, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.log.LogAttrs(ctx, slog.LevelWarn, "Websocket upgrade failed",
			logger.UserID(userID),
			logger.Error(err),
		)
		return
	}

	c := newConn(uuid.NewString(), userID, sock, h.dir, h.log)
	if err := h.dir.Register(ctx, userID, c.ID()); err != nil {
		h.log.LogAttrs(ctx, slog.LevelError, "Failed to register connection",
			logger.UserID(userID),
			logger.ConnID(c.ID()),
			logger.Error(err),
		)
		c.close(ctx)
		sock.Close()
		return
	}

	if err := c.state.Fire(ctx, eventAccept); err != nil {
		// A connection stuck short of open would silently drop every push.
		h.log.LogAttrs(ctx, slog.LevelError, "Failed to open connection",
			logger.UserID(userID),
			logger.ConnID(c.ID()),
			logger.Error(err),
		)
		if err := h.dir.Unregister(ctx, userID, c.ID()); err != nil {
			h.log.LogAttrs(ctx, slog.LevelError, "Failed to unregister connection",
				logger.UserID(userID),
				logger.ConnID(c.ID()),
				logger.Error(err),
			)
		}
		c.close(ctx)
		sock.Close()
		return
	}
	h.registry.Attach(c)

	h.log.LogAttrs(ctx, slog.LevelInfo, "Connection opened",
		logger.UserID(userID),
		logger.ConnID(c.ID()),
	)

	go c.writePump()
	h.readPump(ctx, c)
}

// readPump serves inbound frames until the peer disconnects. Teardown is
// unconditional: the connection leaves the dispatcher and the directory on
// normal close, read error, or panic in a dispatch handler.
func (h *Handler) readPump(ctx context.Context, c *Conn) {
	defer func() {
		if rec := recover(); rec != nil {
			h.log.LogAttrs(ctx, slog.LevelError, "Panic in connection read loop",
				logger.UserID(c.UserID()),
				logger.ConnID(c.ID()),
				slog.Any("panic", rec),
			)
		}
		h.teardown(c)
	}()

	c.sock.SetReadLimit(maxMessageSize)
	c.sock.SetReadDeadline(time.Now().Add(pongWait))
	c.sock.SetPongHandler(func(string) error {
		return c.sock.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.sock.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.LogAttrs(ctx, slog.LevelWarn, "Connection closed unexpectedly",
					logger.UserID(c.UserID()),
					logger.ConnID(c.ID()),
					logger.Error(err),
				)
			}
			return
		}
		h.dispatch(ctx, c, data)
	}
}

// dispatch routes one inbound frame by its message type.
func (h *Handler) dispatch(ctx context.Context, c *Conn, data []byte) {
	dto, err := wire.Decode(data)
	switch {
	case errors.Is(err, wire.ErrMalformedFrame), errors.Is(err, wire.ErrUnrecognizedType):
		h.log.LogAttrs(ctx, slog.LevelWarn, "Unintelligible frame from peer",
			logger.UserID(c.UserID()),
			logger.ConnID(c.ID()),
			logger.Error(err),
		)
		h.reply(ctx, c, wire.UnknownDTO{})
		return
	case errors.Is(err, wire.ErrUnsupportedType):
		h.reply(ctx, c, wire.ErrorDTO{
			ErrorCode:    errCodeUnsupportedType,
			ErrorMessage: fmt.Sprintf("message type %s not supported", dto.Type()),
		})
		return
	case err != nil:
		h.log.LogAttrs(ctx, slog.LevelError, "Failed to decode frame",
			logger.UserID(c.UserID()),
			logger.ConnID(c.ID()),
			logger.Error(err),
		)
		return
	}

	switch d := dto.(type) {
	case wire.UnknownDTO:
		// The peer could not process our last frame. Nothing to resend.
		h.log.LogAttrs(ctx, slog.LevelWarn, "Peer did not understand last frame",
			logger.UserID(c.UserID()),
			logger.ConnID(c.ID()),
		)
	case wire.ErrorDTO:
		h.log.LogAttrs(ctx, slog.LevelError, "Peer reported an error",
			logger.UserID(c.UserID()),
			logger.ConnID(c.ID()),
			slog.Int("error_code", d.ErrorCode),
			slog.String("error_message", d.ErrorMessage),
		)
	case wire.NotificationDTO:
		count, err := h.unread.Unread(ctx, c.UserID())
		if err != nil {
			h.log.LogAttrs(ctx, slog.LevelError, "Failed to read unread counter",
				logger.UserID(c.UserID()),
				logger.ConnID(c.ID()),
				logger.Error(err),
			)
			return
		}
		h.reply(ctx, c, wire.NotificationDTO{UnreadMessages: count})
	}
}

// reply queues a frame for the peer, bypassing the directory liveness check
// used for pushed frames: a reply always answers a frame read from a
// connection that is still served.
func (h *Handler) reply(ctx context.Context, c *Conn, dto wire.DTO) {
	payload, err := wire.Encode(dto)
	if err != nil {
		h.log.LogAttrs(ctx, slog.LevelError, "Failed to encode reply",
			logger.ConnID(c.ID()),
			logger.MessageType(dto.Type().String()),
			logger.Error(err),
		)
		return
	}
	if err := c.enqueue(payload); err != nil {
		h.log.LogAttrs(ctx, slog.LevelWarn, "Failed to queue reply",
			logger.UserID(c.UserID()),
			logger.ConnID(c.ID()),
			logger.MessageType(dto.Type().String()),
			logger.Error(err),
		)
	}
}

// teardown removes the connection from the dispatcher and the directory.
// The directory update uses a fresh context: the request context is already
// canceled when the peer is gone.
func (h *Handler) teardown(c *Conn) {
	h.registry.Detach(c.ID())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.dir.Unregister(ctx, c.UserID(), c.ID()); err != nil {
		h.log.LogAttrs(ctx, slog.LevelError, "Failed to unregister connection",
			logger.UserID(c.UserID()),
			logger.ConnID(c.ID()),
			logger.Error(err),
		)
	}
	c.close(ctx)

	h.log.LogAttrs(ctx, slog.LevelInfo, "Connection closed",
		logger.UserID(c.UserID()),
		logger.ConnID(c.ID()),
	)
}
