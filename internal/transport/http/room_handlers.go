package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/duelforge/duel-server/internal/core"
)

// RoomHandlers provides read-only HTTP handlers over room state, for
// join-link preflight and debugging. Mutation only happens over /ws.
type RoomHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(hub *core.Hub, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{hub: hub, log: logger}
}

// RoomResponse represents a room snapshot in API responses.
type RoomResponse struct {
	RoomID      string `json:"roomId"`
	Phase       string `json:"phase"`
	PlayerCount int    `json:"playerCount"`
	Capacity    int    `json:"capacity"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// GetRoom handles room snapshot lookups.
// GET /api/rooms/:id
func (h *RoomHandlers) GetRoom(c *gin.Context) {
	snap, ok := h.hub.Snapshot(c.Request.Context(), c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
		return
	}

	c.JSON(http.StatusOK, RoomResponse{
		RoomID:      snap.ID,
		Phase:       snap.Phase.String(),
		PlayerCount: snap.PlayerCount,
		Capacity:    snap.Capacity,
	})
}
