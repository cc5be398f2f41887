package core

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/duelforge/duel-server/internal/utils"
)

// Registry owns every active room. It does no locking: exactly one
// goroutine (the hub) may call into it. Unit tests call it directly.
type Registry struct {
	clock    clockwork.Clock
	capacity int
	rooms    map[string]*Room
	newID    func() string
}

// NewRegistry builds an empty registry. capacity <= 0 means unbounded.
func NewRegistry(clock clockwork.Clock, capacity int) *Registry {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Registry{
		clock:    clock,
		capacity: capacity,
		rooms:    make(map[string]*Room),
		newID:    utils.NewRoomCode,
	}
}

// Capacity reports the configured member cap per room.
func (g *Registry) Capacity() int {
	return g.capacity
}

// Room looks up a room by id.
func (g *Registry) Room(id string) (*Room, bool) {
	r, ok := g.rooms[id]
	return r, ok
}

// CreateRoom allocates a Waiting room with the creator as its only
// member and host. Identifier collisions retry with a fresh code.
func (g *Registry) CreateRoom(hostID string) *Room {
	id := g.newID()
	for _, taken := g.rooms[id]; taken; _, taken = g.rooms[id] {
		id = g.newID()
	}

	room := &Room{
		ID:         id,
		HostID:     hostID,
		Phase:      PhaseWaiting,
		Members:    []*PlayerRecord{NewPlayerRecord(hostID)},
		LastActive: g.clock.Now(),
	}
	g.rooms[id] = room
	return room
}

// JoinRoom appends a record for connID. Valid only while the room is
// in PhaseWaiting and below capacity.
func (g *Registry) JoinRoom(roomID, connID string) (*Room, *DuelError) {
	room, ok := g.rooms[roomID]
	if !ok {
		return nil, duelError(ErrCodeRoomNotFound, "room not found")
	}
	if room.Phase != PhaseWaiting {
		return nil, duelError(ErrCodeMatchInProgress, "match already in progress")
	}
	if g.capacity > 0 && len(room.Members) >= g.capacity {
		return nil, duelError(ErrCodeRoomFull, "room is full")
	}

	room.Members = append(room.Members, NewPlayerRecord(connID))
	room.LastActive = g.clock.Now()
	return room, nil
}

// StartGame transitions Waiting -> Playing. Only the host may start.
func (g *Registry) StartGame(roomID, connID string) (*Room, *DuelError) {
	room, ok := g.rooms[roomID]
	if !ok {
		return nil, duelError(ErrCodeRoomNotFound, "room not found")
	}
	if room.HostID != connID {
		return nil, duelError(ErrCodeNotAuthorized, "only the host can start the game")
	}
	if room.Phase != PhaseWaiting {
		return nil, duelError(ErrCodeMatchInProgress, "match already in progress")
	}

	room.Phase = PhasePlaying
	room.StartedAt = g.clock.Now()
	room.LastActive = room.StartedAt
	return room, nil
}

// ApplyUpdate overwrites connID's own record in roomID. Unknown room
// or member is a silent no-op: such messages legitimately race with
// disconnects.
func (g *Registry) ApplyUpdate(roomID, connID string, upd PlayerUpdate) (*Room, bool) {
	room, ok := g.rooms[roomID]
	if !ok {
		return nil, false
	}
	member := room.Member(connID)
	if member == nil {
		return nil, false
	}

	member.Apply(upd)
	room.LastActive = g.clock.Now()
	return room, true
}

// HitResult describes the outcome of one damage report.
type HitResult struct {
	Room     *Room
	Target   *PlayerRecord
	Defeated bool
}

// ApplyHit clamps the target's health to max(0, health-damage). The
// reporter is trusted: no plausibility check on damage, distance or
// attack state. The hit that first drives health to 0 moves the room
// to PhaseFinished; later hits never re-trigger defeat.
func (g *Registry) ApplyHit(roomID, targetID string, damage int) (HitResult, bool) {
	room, ok := g.rooms[roomID]
	if !ok {
		return HitResult{}, false
	}
	target := room.Member(targetID)
	if target == nil {
		return HitResult{}, false
	}

	target.Health -= damage
	if target.Health < 0 {
		target.Health = 0
	}
	room.LastActive = g.clock.Now()

	res := HitResult{Room: room, Target: target}
	if target.Health == 0 && room.Phase != PhaseFinished {
		room.Phase = PhaseFinished
		res.Defeated = true
	}
	return res, true
}

// Departure describes one room affected by a disconnect.
type Departure struct {
	Room     *Room
	HostLeft bool
}

// Disconnect removes connID from every room it belongs to. A departing
// host destroys the room outright; any other member just leaves.
func (g *Registry) Disconnect(connID string) []Departure {
	var departures []Departure
	for id, room := range g.rooms {
		if !room.removeMember(connID) {
			continue
		}
		hostLeft := room.HostID == connID
		if hostLeft || len(room.Members) == 0 {
			delete(g.rooms, id)
		}
		departures = append(departures, Departure{Room: room, HostLeft: hostLeft})
	}
	return departures
}

// ExpireIdle destroys rooms with no activity for longer than maxIdle
// and returns them so members can be notified. maxIdle <= 0 disables.
func (g *Registry) ExpireIdle(maxIdle time.Duration) []*Room {
	if maxIdle <= 0 {
		return nil
	}
	cutoff := g.clock.Now().Add(-maxIdle)
	var expired []*Room
	for id, room := range g.rooms {
		if room.LastActive.Before(cutoff) {
			delete(g.rooms, id)
			expired = append(expired, room)
		}
	}
	return expired
}
