package event

// Kind identifies a store mutation event.
type Kind string

const (
	KindUserCreated         Kind = "user.created"
	KindUserDeleted         Kind = "user.deleted"
	KindUserMessageCreated  Kind = "user_message.created"
	KindUserMessageReceived Kind = "user_message.received"
	KindUserMessageDeleted  Kind = "user_message.deleted"
	KindGroupTargetsAdded   Kind = "group_message.targets_added"
	KindGroupMessageRead    Kind = "group_message.read"
	KindGroupMessageDeleted Kind = "group_message.deleted"
)

// Event is a store mutation notification.
type Event interface {
	Kind() Kind
}

// UserCreated fires after a user record is created.
type UserCreated struct {
	UserID string
}

func (UserCreated) Kind() Kind { return KindUserCreated }

// UserDeleted fires after a user record is deleted.
type UserDeleted struct {
	UserID string
}

func (UserDeleted) Kind() Kind { return KindUserDeleted }

// UserMessageCreated fires after a direct message is stored.
// A new message is unread by definition.
type UserMessageCreated struct {
	MessageID string
	OwnerID   string
}

func (UserMessageCreated) Kind() Kind { return KindUserMessageCreated }

// UserMessageReceived fires when a direct message flips from unread to
// read. The store publishes it only on the first flip.
type UserMessageReceived struct {
	MessageID string
	OwnerID   string
}

func (UserMessageReceived) Kind() Kind { return KindUserMessageReceived }

// UserMessageDeleted fires after a direct message is deleted.
// Received reports whether the owner had already read it.
type UserMessageDeleted struct {
	MessageID string
	OwnerID   string
	Received  bool
}

func (UserMessageDeleted) Kind() Kind { return KindUserMessageDeleted }

// GroupTargetsAdded fires after users are added to a group message's target
// set. UserIDs contains only the newly added users, already de-duplicated
// by the store.
type GroupTargetsAdded struct {
	MessageID string
	UserIDs   []string
}

func (GroupTargetsAdded) Kind() Kind { return KindGroupTargetsAdded }

// GroupMessageRead fires when a target user reads a group message for the
// first time. Repeated reads publish nothing.
type GroupMessageRead struct {
	MessageID string
	UserID    string
}

func (GroupMessageRead) Kind() Kind { return KindGroupMessageRead }

// GroupMessageDeleted fires after a group message is deleted.
// UnreadUserIDs holds target ∖ received: the users who never read it.
type GroupMessageDeleted struct {
	MessageID     string
	UnreadUserIDs []string
}

func (GroupMessageDeleted) Kind() Kind { return KindGroupMessageDeleted }
