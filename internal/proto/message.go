package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeCreateRoom   = "create_room"
	InboundTypeJoinRoom     = "join_room"
	InboundTypeStartGame    = "start_game"
	InboundTypePlayerUpdate = "player_update"
	InboundTypePlayerHit    = "player_hit"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"
)

// Vec3 is a position on the wire.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quat is an orientation on the wire.
type Quat struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// JoinRoomData requests to join a specific room.
type JoinRoomData struct {
	RoomID string `json:"roomId"`
}

// StartGameData asks the server to start the match in a room.
type StartGameData struct {
	RoomID string `json:"roomId"`
}

// PlayerUpdateData replaces the sender's combat state.
type PlayerUpdateData struct {
	RoomID         string `json:"roomId"`
	Position       Vec3   `json:"position"`
	Rotation       Quat   `json:"rotation"`
	WeaponPosition Vec3   `json:"weaponPosition"`
	WeaponRotation Quat   `json:"weaponRotation"`
	IsAttacking    bool   `json:"isAttacking"`
	IsBlocking     bool   `json:"isBlocking"`
}

// PlayerHitData reports damage dealt to another member. The damage
// amount is taken at face value; see the registry for the trust model.
type PlayerHitData struct {
	RoomID   string `json:"roomId"`
	TargetID string `json:"targetId"`
	Damage   int    `json:"damage"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

const (
	EventConnected        = "connected"
	EventRoomCreated      = "room_created"
	EventPlayerJoined     = "player_joined"
	EventGameStarted      = "game_started"
	EventPlayerUpdated    = "player_updated"
	EventPlayerDamaged    = "player_damaged"
	EventPlayerDefeated   = "player_defeated"
	EventPlayerLeft       = "player_left"
	EventHostDisconnected = "host_disconnected"
)

// PlayerState is one member's replicated state in roster snapshots.
type PlayerState struct {
	PlayerID       string `json:"playerId"`
	Position       Vec3   `json:"position"`
	Rotation       Quat   `json:"rotation"`
	WeaponPosition Vec3   `json:"weaponPosition"`
	WeaponRotation Quat   `json:"weaponRotation"`
	Health         int    `json:"health"`
	IsAttacking    bool   `json:"isAttacking"`
	IsBlocking     bool   `json:"isBlocking"`
}

// ConnectedData delivers the client its own connection id.
type ConnectedData struct {
	PlayerID string `json:"playerId"`
}

// RoomCreatedData confirms creation to the host only.
type RoomCreatedData struct {
	RoomID  string `json:"roomId"`
	JoinURL string `json:"joinUrl"`
}

// PlayerJoinedData announces a new member with the full roster.
type PlayerJoinedData struct {
	RoomID   string        `json:"roomId"`
	PlayerID string        `json:"playerId"`
	Players  []PlayerState `json:"players"`
}

// GameStartedData announces match start. StartTime is unix millis.
type GameStartedData struct {
	RoomID    string        `json:"roomId"`
	StartTime int64         `json:"startTime"`
	Players   []PlayerState `json:"players"`
}

// PlayerUpdatedData relays one member's new state to its peers.
type PlayerUpdatedData struct {
	RoomID         string `json:"roomId"`
	PlayerID       string `json:"playerId"`
	Position       Vec3   `json:"position"`
	Rotation       Quat   `json:"rotation"`
	WeaponPosition Vec3   `json:"weaponPosition"`
	WeaponRotation Quat   `json:"weaponRotation"`
	IsAttacking    bool   `json:"isAttacking"`
	IsBlocking     bool   `json:"isBlocking"`
}

// PlayerDamagedData carries a member's health after a hit.
type PlayerDamagedData struct {
	RoomID     string `json:"roomId"`
	PlayerID   string `json:"playerId"`
	Health     int    `json:"health"`
	AttackerID string `json:"attackerId"`
}

// PlayerDefeatedData names the loser and winner of a duel.
type PlayerDefeatedData struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	WinnerID string `json:"winnerId"`
}

// PlayerLeftData announces a non-host member's departure.
type PlayerLeftData struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

// HostDisconnectedData announces the room's destruction.
type HostDisconnectedData struct {
	RoomID string `json:"roomId"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"message"`
}
