package store

import (
	"slices"
	"time"

	"github.com/aDramaQueen/messenger/pkg/wire"
)

// User is the slice of the external account model this service reads.
type User struct {
	ID        string
	Active    bool
	CreatedAt time.Time
}

// UserMessage is a direct message owned by exactly one user.
// Received flips true exactly once; only that transition affects the
// unread counter.
type UserMessage struct {
	ID        string
	Title     string
	Body      string
	CreatedAt time.Time
	Received  bool
	OwnerID   string
}

// GroupMessage is a many-to-many message. A user has it unread when they
// are in the target set but not in the received set.
type GroupMessage struct {
	ID          string
	Title       string
	Body        string
	CreatedAt   time.Time
	TargetIDs   []string
	ReceivedIDs []string
}

// UnreadBy returns the target users who have not read the message.
func (m GroupMessage) UnreadBy() []string {
	unread := make([]string, 0, len(m.TargetIDs))
	for _, id := range m.TargetIDs {
		if !slices.Contains(m.ReceivedIDs, id) {
			unread = append(unread, id)
		}
	}
	return unread
}

// MessageMeta is the overview row for a user's message list: enough to
// render a listing without loading message bodies.
type MessageMeta struct {
	Type      wire.MessageType `json:"messageType"`
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"created"`
	Title     string           `json:"title"`
	Received  bool             `json:"received"`
}
