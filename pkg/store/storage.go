package store

import "context"

// Storage persists users and messages.
// Implementations must be safe for concurrent use.
type Storage interface {
	CreateUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, userID string) (User, error)
	DeleteUser(ctx context.Context, userID string) error

	CreateUserMessage(ctx context.Context, m UserMessage) error
	GetUserMessage(ctx context.Context, messageID string) (UserMessage, error)
	// MarkUserMessageReceived flips the message to received. It returns the
	// owner and whether this call performed the unread→read transition;
	// repeated calls report changed=false.
	MarkUserMessageReceived(ctx context.Context, messageID string) (ownerID string, changed bool, err error)
	// DeleteUserMessage removes the message and returns its last state.
	DeleteUserMessage(ctx context.Context, messageID string) (UserMessage, error)

	CreateGroupMessage(ctx context.Context, m GroupMessage) error
	GetGroupMessage(ctx context.Context, messageID string) (GroupMessage, error)
	// AddGroupTargets adds users to the message's target set and returns
	// only the users actually added: duplicates within the batch, users
	// already targeted and inactive users are filtered out.
	AddGroupTargets(ctx context.Context, messageID string, userIDs []string) (added []string, err error)
	// MarkGroupMessageReceived records that the user has read the message.
	// It reports whether this call changed anything; marking a non-target
	// or an already-recorded reader is a no-op.
	MarkGroupMessageReceived(ctx context.Context, messageID, userID string) (changed bool, err error)
	// DeleteGroupMessage removes the message and returns its last state,
	// including target and received sets.
	DeleteGroupMessage(ctx context.Context, messageID string) (GroupMessage, error)

	UnreadUserMessageCount(ctx context.Context, userID string) (int, error)
	UnreadGroupMessageCount(ctx context.Context, userID string) (int, error)

	// MessagesForUser returns the user's direct and group message metadata
	// merged and ordered by creation time.
	MessagesForUser(ctx context.Context, userID string) ([]MessageMeta, error)
}
