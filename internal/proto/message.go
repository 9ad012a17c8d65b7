// Package proto defines the JSON envelopes exchanged over the websocket.
package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeRegister     = "register"
	InboundTypeJoinRoom     = "joinRoom"
	InboundTypeTextMessage  = "textMessage"
	InboundTypeCreateRoom   = "createRoom"
	InboundTypeDeleteRoom   = "deleteRoom"
	InboundTypeRenameRoom   = "renameRoom"
	InboundTypeOffer        = "webrtcOffer"
	InboundTypeAnswer       = "webrtcAnswer"
	InboundTypeIceCandidate = "webrtcIceCandidate"

	OutboundTypeInfo         = "info"
	OutboundTypeError        = "error"
	OutboundTypeRegistered   = "registered"
	OutboundTypeRoomList     = "roomList"
	OutboundTypeJoinedRoom   = "joinedRoom"
	OutboundTypeUserJoined   = "userJoined"
	OutboundTypeUserLeft     = "userLeft"
	OutboundTypeNewText      = "newTextMessage"
	OutboundTypeRoomRenamed  = "roomRenamed"
	OutboundTypeOffer        = "webrtcOffer"
	OutboundTypeAnswer       = "webrtcAnswer"
	OutboundTypeIceCandidate = "webrtcIceCandidate"
)

// RegisterData claims an identity for the connection. RoleToken is compared
// against the server's admin secret; a mismatch silently yields a standard
// session.
type RegisterData struct {
	DisplayName string `json:"displayName"`
	RoleToken   string `json:"roleToken,omitempty"`
}

// RoomNameData targets a room by name (joinRoom, createRoom, deleteRoom).
type RoomNameData struct {
	RoomName string `json:"roomName"`
}

// RenameRoomData renames a room in place.
type RenameRoomData struct {
	OldName string `json:"oldName"`
	NewName string `json:"newName"`
}

// TextMessageData is a chat message for the sender's current room.
type TextMessageData struct {
	Content string `json:"content"`
}

// SignalData is a point-to-point signaling payload. Exactly one of Offer,
// Answer, Candidate is set, matching the envelope type; the server never
// inspects it.
type SignalData struct {
	TargetSessionID string          `json:"targetSessionId"`
	Offer           json.RawMessage `json:"offer,omitempty"`
	Answer          json.RawMessage `json:"answer,omitempty"`
	Candidate       json.RawMessage `json:"candidate,omitempty"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Error describes a domain or protocol error reported to the sender only.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

// Member is one session's public identity.
type Member struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// InfoData carries a human-readable notice.
type InfoData struct {
	Message string `json:"message"`
}

// RegisteredData confirms registration.
type RegisteredData struct {
	SessionID   string `json:"sessionId"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
	Message     string `json:"message"`
}

// RoomSummary is one entry of a room-list snapshot.
type RoomSummary struct {
	Name        string `json:"name"`
	MemberCount int    `json:"memberCount"`
}

// RoomListData is the full room-list snapshot, broadcast to everyone.
type RoomListData struct {
	Rooms []RoomSummary `json:"rooms"`
}

// JoinedRoomData confirms a join with the current roster.
type JoinedRoomData struct {
	RoomName string   `json:"roomName"`
	Members  []Member `json:"members"`
}

// UserJoinedData notifies room members about a new member.
type UserJoinedData struct {
	RoomName string `json:"roomName"`
	Member   Member `json:"member"`
}

// UserLeftData notifies room members about a departed member.
type UserLeftData struct {
	RoomName string `json:"roomName"`
	Member   Member `json:"member"`
}

// NewTextMessageData delivers a chat message to room members.
type NewTextMessageData struct {
	DisplayName string `json:"displayName"`
	Content     string `json:"content"`
	Timestamp   int64  `json:"timestamp"`
}

// RoomRenamedData is the directed notice sent to members of a renamed room.
type RoomRenamedData struct {
	OldName string `json:"oldName"`
	NewName string `json:"newName"`
	Message string `json:"message"`
}

// SignalRelayData mirrors a signaling payload to its target, tagged with the
// sender so the target can answer.
type SignalRelayData struct {
	SenderSessionID string          `json:"senderSessionId"`
	Offer           json.RawMessage `json:"offer,omitempty"`
	Answer          json.RawMessage `json:"answer,omitempty"`
	Candidate       json.RawMessage `json:"candidate,omitempty"`
}
