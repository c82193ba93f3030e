package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aDramaQueen/messenger/pkg/ledger"
	"github.com/aDramaQueen/messenger/pkg/logger"
	"github.com/aDramaQueen/messenger/pkg/store"
)

// api is the JSON surface other backend services use to create users and
// messages and to mark them read. Counter updates ride on the event bus;
// none of these handlers touch the ledger except the explicit reset, clear
// and unread endpoints.
type api struct {
	store   *store.Store
	counter *ledger.Ledger
	log     *slog.Logger
}

func newAPI(s *store.Store, l *ledger.Ledger, log *slog.Logger) *api {
	return &api{store: s, counter: l, log: log}
}

func (a *api) routes(r chi.Router) {
	r.Post("/users", a.createUser)
	r.Delete("/users/{userID}", a.deleteUser)
	r.Get("/users/{userID}/messages", a.listMessages)
	r.Get("/users/{userID}/unread", a.unreadCount)
	r.Post("/users/{userID}/unread/reset", a.resetUnread)
	r.Delete("/users/{userID}/unread", a.clearUnread)

	r.Post("/messages/user", a.createUserMessage)
	r.Post("/messages/user/{messageID}/read", a.readUserMessage)
	r.Delete("/messages/user/{messageID}", a.deleteUserMessage)

	r.Post("/messages/group", a.createGroupMessage)
	r.Post("/messages/group/{messageID}/targets", a.addGroupTargets)
	r.Post("/messages/group/{messageID}/read", a.readGroupMessage)
	r.Delete("/messages/group/{messageID}", a.deleteGroupMessage)
}

func (a *api) createUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     string `json:"id"`
		Active bool   `json:"active"`
	}
	if !a.decode(w, r, &req) {
		return
	}

	u, err := a.store.CreateUser(r.Context(), store.User{ID: req.ID, Active: req.Active})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusCreated, map[string]any{"id": u.ID, "active": u.Active, "created": u.CreatedAt})
}

func (a *api) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := a.store.DeleteUser(r.Context(), chi.URLParam(r, "userID")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) listMessages(w http.ResponseWriter, r *http.Request) {
	metas, err := a.store.MessagesForUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if metas == nil {
		metas = []store.MessageMeta{}
	}
	a.respond(w, http.StatusOK, metas)
}

func (a *api) unreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := a.counter.Unread(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusOK, map[string]int{"unreadMessages": count})
}

func (a *api) resetUnread(w http.ResponseWriter, r *http.Request) {
	if err := a.counter.Reset(r.Context(), chi.URLParam(r, "userID")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) clearUnread(w http.ResponseWriter, r *http.Request) {
	if err := a.counter.Clear(r.Context(), chi.URLParam(r, "userID")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) createUserMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string `json:"title"`
		Body    string `json:"body"`
		OwnerID string `json:"ownerId"`
	}
	if !a.decode(w, r, &req) {
		return
	}

	m, err := a.store.CreateUserMessage(r.Context(), store.UserMessage{
		Title:   req.Title,
		Body:    req.Body,
		OwnerID: req.OwnerID,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusCreated, map[string]any{"id": m.ID, "created": m.CreatedAt})
}

func (a *api) readUserMessage(w http.ResponseWriter, r *http.Request) {
	if err := a.store.MarkUserMessageReceived(r.Context(), chi.URLParam(r, "messageID")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) deleteUserMessage(w http.ResponseWriter, r *http.Request) {
	if err := a.store.DeleteUserMessage(r.Context(), chi.URLParam(r, "messageID")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) createGroupMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title     string   `json:"title"`
		Body      string   `json:"body"`
		TargetIDs []string `json:"targetIds"`
	}
	if !a.decode(w, r, &req) {
		return
	}

	m, err := a.store.CreateGroupMessage(r.Context(), store.GroupMessage{
		Title:     req.Title,
		Body:      req.Body,
		TargetIDs: req.TargetIDs,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusCreated, map[string]any{
		"id":        m.ID,
		"created":   m.CreatedAt,
		"targetIds": m.TargetIDs,
	})
}

func (a *api) addGroupTargets(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserIDs []string `json:"userIds"`
	}
	if !a.decode(w, r, &req) {
		return
	}

	if err := a.store.AddGroupTargets(r.Context(), chi.URLParam(r, "messageID"), req.UserIDs); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) readGroupMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if !a.decode(w, r, &req) {
		return
	}

	if err := a.store.MarkGroupMessageReceived(r.Context(), chi.URLParam(r, "messageID"), req.UserID); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) deleteGroupMessage(w http.ResponseWriter, r *http.Request) {
	if err := a.store.DeleteGroupMessage(r.Context(), chi.URLParam(r, "messageID")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		a.respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

func (a *api) respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.log.Error("Failed to encode response", logger.Error(err))
	}
}

func (a *api) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, ledger.ErrRecordNotFound):
		a.respond(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, store.ErrAlreadyExists):
		a.respond(w, http.StatusConflict, map[string]string{"error": "already exists"})
	default:
		a.log.ErrorContext(r.Context(), "Request failed",
			slog.String("path", r.URL.Path),
			logger.Error(err),
		)
		a.respond(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
