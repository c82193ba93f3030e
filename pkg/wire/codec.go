package wire

import (
	"encoding/json"
	"errors"
	"fmt"
)

// frame is the superset of all implemented wire fields. Pointer fields keep
// "absent" distinguishable from zero values on the inbound path.
type frame struct {
	MessageType    *int   `json:"messageType"`
	ErrorCode      int    `json:"errorCode,omitempty"`
	ErrorMessage   string `json:"errorMessage,omitempty"`
	UnreadMessages int    `json:"unreadMessages"`
}

// Encode serializes a DTO into a flat JSON frame.
// Reserved message types fail with ErrUnsupportedType.
func Encode(dto DTO) ([]byte, error) {
	switch d := dto.(type) {
	case UnknownDTO:
		return json.Marshal(map[string]int{TypeKeyword: int(TypeUnknown)})
	case ErrorDTO:
		return json.Marshal(map[string]any{
			TypeKeyword:    int(TypeError),
			"errorCode":    d.ErrorCode,
			"errorMessage": d.ErrorMessage,
		})
	case NotificationDTO:
		return json.Marshal(map[string]any{
			TypeKeyword:      int(TypeNotification),
			"unreadMessages": d.UnreadMessages,
		})
	case UserTextDTO, GroupTextDTO, AlertDTO:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, dto.Type())
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnrecognizedType, dto)
	}
}

// Decode parses a JSON frame into its DTO.
//
// An out-of-set tag never fails opaquely: the returned DTO is UnknownDTO and
// the error is ErrUnrecognizedType, so callers can both log and reply.
// Reserved tags decode to their placeholder DTO alongside ErrUnsupportedType.
func Decode(data []byte) (DTO, error) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return UnknownDTO{}, errors.Join(ErrMalformedFrame, err)
	}
	if f.MessageType == nil {
		return UnknownDTO{}, fmt.Errorf("%w: missing %s field", ErrMalformedFrame, TypeKeyword)
	}

	switch MessageType(*f.MessageType) {
	case TypeUnknown:
		return UnknownDTO{}, nil
	case TypeError:
		return ErrorDTO{ErrorCode: f.ErrorCode, ErrorMessage: f.ErrorMessage}, nil
	case TypeNotification:
		return NotificationDTO{UnreadMessages: f.UnreadMessages}, nil
	case TypeUserText:
		return UserTextDTO{}, fmt.Errorf("%w: %s", ErrUnsupportedType, TypeUserText)
	case TypeGroupText:
		return GroupTextDTO{}, fmt.Errorf("%w: %s", ErrUnsupportedType, TypeGroupText)
	case TypeAlert:
		return AlertDTO{}, fmt.Errorf("%w: %s", ErrUnsupportedType, TypeAlert)
	default:
		return UnknownDTO{}, fmt.Errorf("%w: %d", ErrUnrecognizedType, *f.MessageType)
	}
}
