package core

import "time"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventInfo carries a human-readable notice for one client.
	EventInfo EventKind = iota
	// EventError reports a domain error to the offending client only.
	EventError
	// EventRegistered confirms a successful registration.
	EventRegistered
	// EventRoomList carries a full (name, memberCount) snapshot.
	EventRoomList
	// EventJoinedRoom confirms a join, with the full member list.
	EventJoinedRoom
	// EventUserJoined notifies room members about a new member.
	EventUserJoined
	// EventUserLeft notifies room members about a departed member.
	EventUserLeft
	// EventTextMessage delivers a chat message to room members.
	EventTextMessage
	// EventRoomRenamed tells a member their current room changed name.
	EventRoomRenamed
	// EventSignal mirrors a relayed signaling payload to its target.
	EventSignal
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind EventKind

	Room    string
	NewName string // rename target

	Member  Member   // subject of registered/userJoined/userLeft/textMessage
	Members []Member // joinedRoom roster

	Role  Role // registered
	Rooms []RoomInfo

	Text string
	At   time.Time

	Info  string
	Error *CoreError

	// From is the sender session id of a relayed signal.
	From   string
	Signal *Signal
}
