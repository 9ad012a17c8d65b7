package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomrelay-server/internal/core"
	"github.com/vovakirdan/roomrelay-server/internal/proto"
)

// RoomHandlers provides read-only REST access to the room catalog. Mutations
// only happen over the websocket, where authorization lives.
type RoomHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(hub *core.Hub, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{hub: hub, log: logger}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// List returns the current (name, memberCount) snapshot.
// GET /api/rooms
func (h *RoomHandlers) List(c *gin.Context) {
	infos, err := h.hub.Rooms(c.Request.Context())
	if err != nil {
		h.log.Warn().Err(err).Msg("room snapshot failed")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "server is shutting down"})
		return
	}

	rooms := make([]proto.RoomSummary, 0, len(infos))
	for _, info := range infos {
		rooms = append(rooms, proto.RoomSummary{Name: info.Name, MemberCount: info.MemberCount})
	}
	c.JSON(http.StatusOK, proto.RoomListData{Rooms: rooms})
}
