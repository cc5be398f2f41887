package core

import "time"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventConnected delivers the client its own connection id.
	EventConnected EventKind = iota
	// EventRoomCreated confirms room creation to the host only.
	EventRoomCreated
	// EventPlayerJoined notifies a room about a new member.
	EventPlayerJoined
	// EventGameStarted notifies a room that the match began.
	EventGameStarted
	// EventPlayerUpdated carries one member's new combat state.
	EventPlayerUpdated
	// EventPlayerDamaged carries a member's health after a hit.
	EventPlayerDamaged
	// EventPlayerDefeated names the loser and winner of a duel.
	EventPlayerDefeated
	// EventPlayerLeft notifies a room that a non-host member left.
	EventPlayerLeft
	// EventHostDisconnected notifies members their room was destroyed.
	EventHostDisconnected
	// EventError notifies a client about a rejected request.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind       EventKind
	RoomID     string
	PlayerID   string // subject: joiner, updater, hit target, leaver
	AttackerID string
	Health     int
	StartedAt  time.Time
	JoinURL    string
	Players    []PlayerRecord // roster snapshot, join order
	Update     PlayerUpdate
	Error      *DuelError
}
