package wire

// TypeKeyword is the JSON field that carries the message type discriminator.
const TypeKeyword = "messageType"

// MessageType enumerates all message kinds known to the protocol.
// The set is closed; values are part of the wire format and must not change.
type MessageType int

const (
	TypeUnknown      MessageType = 0
	TypeError        MessageType = 1
	TypeNotification MessageType = 2
	TypeUserText     MessageType = 3
	TypeGroupText    MessageType = 4
	TypeAlert        MessageType = 5
)

// String returns the protocol name of the message type.
func (t MessageType) String() string {
	switch t {
	case TypeUnknown:
		return "UNKNOWN"
	case TypeError:
		return "ERROR"
	case TypeNotification:
		return "NOTIFICATION"
	case TypeUserText:
		return "USER_TEXT_MESSAGE"
	case TypeGroupText:
		return "GROUP_TEXT_MESSAGE"
	case TypeAlert:
		return "ALERT"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether t belongs to the closed message type set.
func (t MessageType) Valid() bool {
	return t >= TypeUnknown && t <= TypeAlert
}
