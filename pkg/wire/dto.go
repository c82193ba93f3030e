package wire

// DTO is a typed message unit exchanged over a connection.
// Implementations are immutable value objects; the concrete set is closed.
type DTO interface {
	// Type returns the wire tag of the DTO.
	Type() MessageType
}

// UnknownDTO signals that the peer's last frame could not be understood.
type UnknownDTO struct{}

func (UnknownDTO) Type() MessageType { return TypeUnknown }

// ErrorDTO reports an error condition to the peer.
type ErrorDTO struct {
	ErrorCode    int
	ErrorMessage string
}

func (ErrorDTO) Type() MessageType { return TypeError }

// NotificationDTO carries the current unread message counter for a user.
type NotificationDTO struct {
	UnreadMessages int
}

func (NotificationDTO) Type() MessageType { return TypeNotification }

// UserTextDTO is a reserved placeholder; it cannot be encoded or decoded.
type UserTextDTO struct{}

func (UserTextDTO) Type() MessageType { return TypeUserText }

// GroupTextDTO is a reserved placeholder; it cannot be encoded or decoded.
type GroupTextDTO struct{}

func (GroupTextDTO) Type() MessageType { return TypeGroupText }

// AlertDTO is a reserved placeholder; it cannot be encoded or decoded.
type AlertDTO struct{}

func (AlertDTO) Type() MessageType { return TypeAlert }
