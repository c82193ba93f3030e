package wire

import "errors"

var (
	// ErrUnsupportedType is returned when encoding or decoding one of the
	// reserved message types (USER_TEXT_MESSAGE, GROUP_TEXT_MESSAGE, ALERT).
	ErrUnsupportedType = errors.New("wire: unsupported message type")

	// ErrUnrecognizedType is returned when a frame carries a tag outside the
	// closed message type set. The decoded value is still an UnknownDTO so
	// callers can reply with it.
	ErrUnrecognizedType = errors.New("wire: unrecognized message type")

	// ErrMalformedFrame is returned when a frame is not a valid flat JSON
	// object with an integer messageType field.
	ErrMalformedFrame = errors.New("wire: malformed frame")
)
