package directory

import "context"

// ChannelName returns the addressing name for a user's group of connections.
// Directory keys and dispatcher lookups must both go through this function
// so a user is addressed consistently everywhere.
func ChannelName(userID string) string {
	return "message_" + userID
}

// Directory is the registry of live connections per user.
// Implementations must be safe for concurrent use; every mutation is an
// individually atomic structural operation.
type Directory interface {
	// Register adds a connection id to the user's connection set.
	Register(ctx context.Context, userID, connID string) error

	// Unregister removes a connection id from the user's connection set.
	// Unregistering an absent connection is a no-op, not an error.
	Unregister(ctx context.Context, userID, connID string) error

	// Exists reports whether the connection id is currently registered.
	Exists(ctx context.Context, connID string) (bool, error)

	// Connections returns all live connection ids for the user.
	// An unknown user yields an empty slice.
	Connections(ctx context.Context, userID string) ([]string, error)
}
