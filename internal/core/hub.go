package core

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// HubConfig carries the knobs the hub needs from configuration.
type HubConfig struct {
	// JoinURLBase is prepended to "?room=<id>" in room_created events.
	JoinURLBase string
	// RoomIdleTimeout destroys rooms with no activity. Zero disables.
	RoomIdleTimeout time.Duration
}

// RoomSnapshot is a read-only view of one room for HTTP queries.
type RoomSnapshot struct {
	ID          string
	Phase       Phase
	PlayerCount int
	Capacity    int
}

// Hub is the single-writer actor that owns the Registry. All room
// mutation happens on the Run goroutine, so two connections' commands
// are applied in whatever order they reach the command channel; there
// is deliberately no cross-connection ordering rule.
type Hub struct {
	registry *Registry
	clock    clockwork.Clock
	cfg      HubConfig
	log      *zerolog.Logger

	commands chan envelope
	queries  chan query
	clients  map[string]*Client
}

type envelope struct {
	client *Client
	cmd    *Command
	// gone marks the envelope as a disconnect notification.
	gone bool
}

type query struct {
	roomID string
	reply  chan RoomSnapshot
}

// NewHub builds a hub around a registry. clock drives start timestamps
// and the idle sweep; pass a fake clock in tests.
func NewHub(registry *Registry, clock clockwork.Clock, cfg HubConfig, logger *zerolog.Logger) *Hub {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		registry: registry,
		clock:    clock,
		cfg:      cfg,
		log:      logger,
		commands: make(chan envelope, 64),
		queries:  make(chan query),
		clients:  make(map[string]*Client),
	}
}

// RegisterClient announces a new connection and starts pumping its
// commands into the hub. The client receives EventConnected first so
// it learns its own id before any room traffic.
func (h *Hub) RegisterClient(c *Client) {
	h.commands <- envelope{client: c}
	go func() {
		for cmd := range c.Commands {
			h.commands <- envelope{client: c, cmd: cmd}
		}
	}()
}

// UnregisterClient removes a connection and applies its disconnect to
// every room it belonged to.
func (h *Hub) UnregisterClient(c *Client) {
	h.commands <- envelope{client: c, gone: true}
}

// Snapshot returns a read-only view of one room, answered on the hub
// goroutine. The second result is false for unknown rooms.
func (h *Hub) Snapshot(ctx context.Context, roomID string) (RoomSnapshot, bool) {
	reply := make(chan RoomSnapshot, 1)
	select {
	case h.queries <- query{roomID: roomID, reply: reply}:
	case <-ctx.Done():
		return RoomSnapshot{}, false
	}
	select {
	case snap := <-reply:
		return snap, snap.ID != ""
	case <-ctx.Done():
		return RoomSnapshot{}, false
	}
}

// Run processes commands until ctx is cancelled. Exactly one Run
// goroutine may exist per hub.
func (h *Hub) Run(ctx context.Context) {
	var sweep clockwork.Ticker
	var sweepCh <-chan time.Time
	if h.cfg.RoomIdleTimeout > 0 {
		sweep = h.clock.NewTicker(h.cfg.RoomIdleTimeout / 2)
		defer sweep.Stop()
		sweepCh = sweep.Chan()
	}

	for {
		select {
		case env := <-h.commands:
			h.dispatch(env)
		case q := <-h.queries:
			h.answer(q)
		case <-sweepCh:
			h.expireIdleRooms()
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) dispatch(env envelope) {
	switch {
	case env.gone:
		h.handleDisconnect(env.client)
	case env.cmd == nil:
		h.clients[env.client.ID] = env.client
		h.send(env.client, &Event{Kind: EventConnected, PlayerID: env.client.ID})
	default:
		h.handleCommand(env.client, env.cmd)
	}
}

func (h *Hub) handleCommand(c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandCreateRoom:
		h.handleCreate(c)
	case CommandJoinRoom:
		h.handleJoin(c, cmd.RoomID)
	case CommandStartGame:
		h.handleStart(c, cmd.RoomID)
	case CommandPlayerUpdate:
		h.handleUpdate(c, cmd)
	case CommandPlayerHit:
		h.handleHit(c, cmd)
	}
}

func (h *Hub) handleCreate(c *Client) {
	room := h.registry.CreateRoom(c.ID)
	h.log.Info().Str("room_id", room.ID).Str("host_id", c.ID).Msg("room created")
	h.send(c, &Event{
		Kind:    EventRoomCreated,
		RoomID:  room.ID,
		JoinURL: h.cfg.JoinURLBase + "?room=" + room.ID,
	})
}

func (h *Hub) handleJoin(c *Client, roomID string) {
	room, derr := h.registry.JoinRoom(roomID, c.ID)
	if derr != nil {
		h.send(c, &Event{Kind: EventError, RoomID: roomID, Error: derr})
		return
	}
	h.log.Info().Str("room_id", room.ID).Str("player_id", c.ID).Msg("player joined")
	h.broadcast(room, &Event{
		Kind:     EventPlayerJoined,
		RoomID:   room.ID,
		PlayerID: c.ID,
		Players:  room.Roster(),
	}, "")
}

func (h *Hub) handleStart(c *Client, roomID string) {
	room, derr := h.registry.StartGame(roomID, c.ID)
	if derr != nil {
		h.send(c, &Event{Kind: EventError, RoomID: roomID, Error: derr})
		return
	}
	h.log.Info().Str("room_id", room.ID).Time("started_at", room.StartedAt).Msg("game started")
	h.broadcast(room, &Event{
		Kind:      EventGameStarted,
		RoomID:    room.ID,
		StartedAt: room.StartedAt,
		Players:   room.Roster(),
	}, "")
}

func (h *Hub) handleUpdate(c *Client, cmd *Command) {
	room, ok := h.registry.ApplyUpdate(cmd.RoomID, c.ID, cmd.Update)
	if !ok {
		// Updates racing a disconnect are dropped without an error.
		return
	}
	h.broadcast(room, &Event{
		Kind:     EventPlayerUpdated,
		RoomID:   room.ID,
		PlayerID: c.ID,
		Update:   cmd.Update,
	}, c.ID)
}

func (h *Hub) handleHit(c *Client, cmd *Command) {
	res, ok := h.registry.ApplyHit(cmd.RoomID, cmd.TargetID, cmd.Damage)
	if !ok {
		return
	}
	h.log.Debug().
		Str("room_id", res.Room.ID).
		Str("target_id", cmd.TargetID).
		Str("attacker_id", c.ID).
		Int("damage", cmd.Damage).
		Int("health", res.Target.Health).
		Msg("hit applied")

	h.broadcast(res.Room, &Event{
		Kind:       EventPlayerDamaged,
		RoomID:     res.Room.ID,
		PlayerID:   cmd.TargetID,
		AttackerID: c.ID,
		Health:     res.Target.Health,
	}, "")

	if res.Defeated {
		h.log.Info().
			Str("room_id", res.Room.ID).
			Str("loser_id", cmd.TargetID).
			Str("winner_id", c.ID).
			Msg("duel finished")
		h.broadcast(res.Room, &Event{
			Kind:       EventPlayerDefeated,
			RoomID:     res.Room.ID,
			PlayerID:   cmd.TargetID,
			AttackerID: c.ID,
		}, "")
	}
}

func (h *Hub) handleDisconnect(c *Client) {
	delete(h.clients, c.ID)
	for _, dep := range h.registry.Disconnect(c.ID) {
		if dep.HostLeft {
			h.log.Info().Str("room_id", dep.Room.ID).Msg("host disconnected, room destroyed")
			h.broadcast(dep.Room, &Event{
				Kind:   EventHostDisconnected,
				RoomID: dep.Room.ID,
			}, "")
		} else {
			h.log.Info().Str("room_id", dep.Room.ID).Str("player_id", c.ID).Msg("player left")
			h.broadcast(dep.Room, &Event{
				Kind:     EventPlayerLeft,
				RoomID:   dep.Room.ID,
				PlayerID: c.ID,
			}, "")
		}
	}
}

func (h *Hub) expireIdleRooms() {
	for _, room := range h.registry.ExpireIdle(h.cfg.RoomIdleTimeout) {
		h.log.Info().Str("room_id", room.ID).Msg("idle room expired")
		h.broadcast(room, &Event{
			Kind:   EventHostDisconnected,
			RoomID: room.ID,
		}, "")
	}
}

func (h *Hub) answer(q query) {
	room, ok := h.registry.Room(q.roomID)
	if !ok {
		q.reply <- RoomSnapshot{}
		return
	}
	q.reply <- RoomSnapshot{
		ID:          room.ID,
		Phase:       room.Phase,
		PlayerCount: len(room.Members),
		Capacity:    h.registry.Capacity(),
	}
}

// broadcast delivers an event to every room member except skipID.
func (h *Hub) broadcast(room *Room, event *Event, skipID string) {
	for _, m := range room.Members {
		if m.ConnID == skipID {
			continue
		}
		client, ok := h.clients[m.ConnID]
		if !ok {
			continue
		}
		h.send(client, event)
	}
}

func (h *Hub) send(c *Client, event *Event) {
	select {
	case c.Events <- event:
	default:
		// Drop if slow consumer.
	}
}
