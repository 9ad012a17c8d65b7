package core

import "encoding/json"

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandRegister claims an identity for the connection.
	CommandRegister CommandKind = iota
	// CommandJoinRoom moves the session into a room.
	CommandJoinRoom
	// CommandTextMessage delivers a chat message to the current room.
	CommandTextMessage
	// CommandCreateRoom creates a room (admin only).
	CommandCreateRoom
	// CommandDeleteRoom deletes a room and migrates its members (admin only).
	CommandDeleteRoom
	// CommandRenameRoom renames a room in place (admin only).
	CommandRenameRoom
	// CommandSignal relays an opaque signaling payload to one session.
	CommandSignal
)

// SignalKind distinguishes the three relayed signaling payloads.
type SignalKind int

const (
	SignalOffer SignalKind = iota
	SignalAnswer
	SignalCandidate
)

// Signal is an opaque point-to-point signaling envelope. The core never
// inspects Payload; it only routes it to the target session.
type Signal struct {
	Kind     SignalKind
	TargetID string
	Payload  json.RawMessage
}

// Command represents an action requested by a client.
type Command struct {
	Kind CommandKind

	// Register fields.
	DisplayName string
	RoleToken   string

	// Room is the target room name; for rename it is the old name.
	Room    string
	NewName string

	// Text is the chat message content.
	Text string

	Signal *Signal
}
