// Package wire defines the typed message protocol exchanged over a
// persistent notification connection.
//
// Every frame is a flat JSON object carrying an integer "messageType"
// discriminator plus type-specific camelCase fields. The set of message
// types is closed: adding a new type means adding a DTO here and extending
// the Encode/Decode switches, which keeps dispatch exhaustive.
//
// Only the Unknown, Error and Notification variants are implemented.
// The UserText, GroupText and Alert tags are reserved; encoding or decoding
// them fails with ErrUnsupportedType rather than silently producing a
// half-filled frame.
package wire
