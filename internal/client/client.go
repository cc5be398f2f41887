// Package client is the game-side façade over one duel server
// connection. It mirrors the subset of server state relevant to this
// connection (room id, host flag, roster of remote players) and fans
// events out to registered listeners. The mirror is a cache rebuilt
// from server events and is never authoritative.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/duelforge/duel-server/internal/core"
	"github.com/duelforge/duel-server/internal/proto"
)

// ErrNotInRoom is returned by send helpers before a room is joined.
var ErrNotInRoom = errors.New("client: not in a room")

// Listener receives session events. Any field may be nil. Listeners
// run on the read loop goroutine, after the mirror has been updated,
// so accessors called from a callback see consistent state.
type Listener struct {
	OnRoomCreated      func(roomID, joinURL string)
	OnPlayerJoined     func(playerID string, players []core.PlayerRecord)
	OnGameStarted      func(startTime time.Time, players []core.PlayerRecord)
	OnPlayerUpdated    func(playerID string, update core.PlayerUpdate)
	OnPlayerDamaged    func(playerID string, health int, attackerID string)
	OnPlayerDefeated   func(playerID, winnerID string)
	OnPlayerLeft       func(playerID string)
	OnHostDisconnected func()
	OnError            func(code, message string)
}

// Client holds one WebSocket connection to the duel server.
type Client struct {
	conn *websocket.Conn
	log  *zerolog.Logger

	writeMu sync.Mutex

	mu        sync.RWMutex
	playerID  string
	roomID    string
	isHost    bool
	health    int
	remotes   map[string]core.PlayerRecord
	listeners []*Listener

	readDone chan struct{}
	readErr  error
}

// Dial opens a connection and blocks until the server has assigned
// this client its connection id.
func Dial(ctx context.Context, url string, logger *zerolog.Logger) (*Client, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	c := &Client{
		conn:     conn,
		log:      logger,
		health:   core.MaxHealth,
		remotes:  make(map[string]core.PlayerRecord),
		readDone: make(chan struct{}),
	}

	// The first outbound message is always "connected".
	var out outbound
	if err := wsjson.Read(ctx, conn, &out); err != nil {
		conn.Close(websocket.StatusProtocolError, "no connected event")
		return nil, fmt.Errorf("read connected event: %w", err)
	}
	var hello proto.ConnectedData
	if out.Event != proto.EventConnected || json.Unmarshal(out.Data, &hello) != nil || hello.PlayerID == "" {
		conn.Close(websocket.StatusProtocolError, "bad connected event")
		return nil, errors.New("client: expected connected event")
	}
	c.playerID = hello.PlayerID

	go c.readLoop()
	return c, nil
}

// Close tears the connection down. Pending listeners may still fire.
func (c *Client) Close() error {
	err := c.conn.Close(websocket.StatusNormalClosure, "closing")
	<-c.readDone
	return err
}

// Err reports why the read loop stopped, nil while it is running.
func (c *Client) Err() error {
	select {
	case <-c.readDone:
		return c.readErr
	default:
		return nil
	}
}

// AddListener registers a listener. Multiple listeners may be
// registered; each receives every event.
func (c *Client) AddListener(l *Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// PlayerID returns this connection's server-assigned identifier.
func (c *Client) PlayerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// RoomID returns the current room id, empty when not in a room.
func (c *Client) RoomID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID
}

// IsHost reports whether this client created the current room.
func (c *Client) IsHost() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isHost
}

// Health returns the local player's last known health.
func (c *Client) Health() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.health
}

// Remotes returns a copy of the remote mirror keyed by player id.
func (c *Client) Remotes() map[string]core.PlayerRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	remotes := make(map[string]core.PlayerRecord, len(c.remotes))
	for id, rec := range c.remotes {
		remotes[id] = rec
	}
	return remotes
}

// Remote returns the last known record for one remote player.
func (c *Client) Remote(playerID string) (core.PlayerRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.remotes[playerID]
	return rec, ok
}

// CreateRoom asks the server for a fresh room with this client as host.
func (c *Client) CreateRoom(ctx context.Context) error {
	return c.send(ctx, proto.InboundTypeCreateRoom, nil)
}

// JoinRoom asks to join an existing waiting room.
func (c *Client) JoinRoom(ctx context.Context, roomID string) error {
	return c.send(ctx, proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: roomID})
}

// StartGame asks to start the match in the current room (host only).
func (c *Client) StartGame(ctx context.Context) error {
	roomID := c.RoomID()
	if roomID == "" {
		return ErrNotInRoom
	}
	return c.send(ctx, proto.InboundTypeStartGame, proto.StartGameData{RoomID: roomID})
}

// SendPlayerUpdate transmits the local player's combat state.
func (c *Client) SendPlayerUpdate(ctx context.Context, update core.PlayerUpdate) error {
	roomID := c.RoomID()
	if roomID == "" {
		return ErrNotInRoom
	}
	return c.send(ctx, proto.InboundTypePlayerUpdate, proto.PlayerUpdateData{
		RoomID:         roomID,
		Position:       proto.Vec3(update.Position),
		Rotation:       proto.Quat(update.Rotation),
		WeaponPosition: proto.Vec3(update.WeaponPosition),
		WeaponRotation: proto.Quat(update.WeaponRotation),
		IsAttacking:    update.IsAttacking,
		IsBlocking:     update.IsBlocking,
	})
}

// SendPlayerHit reports that the local player struck targetID for the
// stated damage. The server trusts the amount.
func (c *Client) SendPlayerHit(ctx context.Context, targetID string, damage int) error {
	roomID := c.RoomID()
	if roomID == "" {
		return ErrNotInRoom
	}
	return c.send(ctx, proto.InboundTypePlayerHit, proto.PlayerHitData{
		RoomID:   roomID,
		TargetID: targetID,
		Damage:   damage,
	})
}

func (c *Client) send(ctx context.Context, msgType string, data any) error {
	var raw json.RawMessage
	if data != nil {
		payload, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", msgType, err)
		}
		raw = payload
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := wsjson.Write(ctx, c.conn, proto.Inbound{Type: msgType, Data: raw}); err != nil {
		return fmt.Errorf("send %s: %w", msgType, err)
	}
	return nil
}

// outbound mirrors proto.Outbound with raw data for two-step decoding.
type outbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error *proto.Error    `json:"error,omitempty"`
}

func (c *Client) readLoop() {
	defer close(c.readDone)
	ctx := context.Background()

	for {
		var out outbound
		if err := wsjson.Read(ctx, c.conn, &out); err != nil {
			c.readErr = err
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				c.log.Debug().Err(err).Msg("session read loop ended")
			}
			return
		}
		if err := c.handle(out); err != nil {
			c.log.Warn().Err(err).Str("event", out.Event).Msg("bad server event")
		}
	}
}

// handle updates the mirror under lock, then invokes listeners after
// releasing it so callbacks can use the read accessors.
func (c *Client) handle(out outbound) error {
	if out.Type == proto.OutboundTypeError {
		code, msg := "unknown", "unknown error"
		if out.Error != nil {
			code, msg = out.Error.Code, out.Error.Msg
		}
		for _, l := range c.snapshotListeners() {
			if l.OnError != nil {
				l.OnError(code, msg)
			}
		}
		return nil
	}

	switch out.Event {
	case proto.EventRoomCreated:
		var d proto.RoomCreatedData
		if err := json.Unmarshal(out.Data, &d); err != nil {
			return err
		}
		c.mu.Lock()
		c.roomID = d.RoomID
		c.isHost = true
		c.health = core.MaxHealth
		c.remotes = make(map[string]core.PlayerRecord)
		c.mu.Unlock()
		for _, l := range c.snapshotListeners() {
			if l.OnRoomCreated != nil {
				l.OnRoomCreated(d.RoomID, d.JoinURL)
			}
		}

	case proto.EventPlayerJoined:
		var d proto.PlayerJoinedData
		if err := json.Unmarshal(out.Data, &d); err != nil {
			return err
		}
		roster := rosterFromProto(d.Players)
		c.mu.Lock()
		if d.PlayerID == c.playerID {
			c.roomID = d.RoomID
			c.isHost = false
		}
		c.applyRoster(roster)
		c.mu.Unlock()
		for _, l := range c.snapshotListeners() {
			if l.OnPlayerJoined != nil {
				l.OnPlayerJoined(d.PlayerID, roster)
			}
		}

	case proto.EventGameStarted:
		var d proto.GameStartedData
		if err := json.Unmarshal(out.Data, &d); err != nil {
			return err
		}
		roster := rosterFromProto(d.Players)
		c.mu.Lock()
		c.applyRoster(roster)
		c.mu.Unlock()
		start := time.UnixMilli(d.StartTime)
		for _, l := range c.snapshotListeners() {
			if l.OnGameStarted != nil {
				l.OnGameStarted(start, roster)
			}
		}

	case proto.EventPlayerUpdated:
		var d proto.PlayerUpdatedData
		if err := json.Unmarshal(out.Data, &d); err != nil {
			return err
		}
		update := core.PlayerUpdate{
			Position:       core.Vec3(d.Position),
			Rotation:       core.Quat(d.Rotation),
			WeaponPosition: core.Vec3(d.WeaponPosition),
			WeaponRotation: core.Quat(d.WeaponRotation),
			IsAttacking:    d.IsAttacking,
			IsBlocking:     d.IsBlocking,
		}
		c.mu.Lock()
		rec, ok := c.remotes[d.PlayerID]
		if !ok {
			rec = *core.NewPlayerRecord(d.PlayerID)
		}
		rec.Apply(update)
		c.remotes[d.PlayerID] = rec
		c.mu.Unlock()
		for _, l := range c.snapshotListeners() {
			if l.OnPlayerUpdated != nil {
				l.OnPlayerUpdated(d.PlayerID, update)
			}
		}

	case proto.EventPlayerDamaged:
		var d proto.PlayerDamagedData
		if err := json.Unmarshal(out.Data, &d); err != nil {
			return err
		}
		c.mu.Lock()
		if d.PlayerID == c.playerID {
			c.health = d.Health
		} else if rec, ok := c.remotes[d.PlayerID]; ok {
			rec.Health = d.Health
			c.remotes[d.PlayerID] = rec
		}
		c.mu.Unlock()
		for _, l := range c.snapshotListeners() {
			if l.OnPlayerDamaged != nil {
				l.OnPlayerDamaged(d.PlayerID, d.Health, d.AttackerID)
			}
		}

	case proto.EventPlayerDefeated:
		var d proto.PlayerDefeatedData
		if err := json.Unmarshal(out.Data, &d); err != nil {
			return err
		}
		for _, l := range c.snapshotListeners() {
			if l.OnPlayerDefeated != nil {
				l.OnPlayerDefeated(d.PlayerID, d.WinnerID)
			}
		}

	case proto.EventPlayerLeft:
		var d proto.PlayerLeftData
		if err := json.Unmarshal(out.Data, &d); err != nil {
			return err
		}
		c.mu.Lock()
		delete(c.remotes, d.PlayerID)
		c.mu.Unlock()
		for _, l := range c.snapshotListeners() {
			if l.OnPlayerLeft != nil {
				l.OnPlayerLeft(d.PlayerID)
			}
		}

	case proto.EventHostDisconnected:
		c.mu.Lock()
		c.roomID = ""
		c.isHost = false
		c.remotes = make(map[string]core.PlayerRecord)
		c.mu.Unlock()
		for _, l := range c.snapshotListeners() {
			if l.OnHostDisconnected != nil {
				l.OnHostDisconnected()
			}
		}
	}
	return nil
}

// applyRoster rebuilds the remote mirror from a roster snapshot.
// Caller holds c.mu.
func (c *Client) applyRoster(roster []core.PlayerRecord) {
	remotes := make(map[string]core.PlayerRecord, len(roster))
	for _, rec := range roster {
		if rec.ConnID == c.playerID {
			c.health = rec.Health
			continue
		}
		remotes[rec.ConnID] = rec
	}
	c.remotes = remotes
}

func (c *Client) snapshotListeners() []*Listener {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*Listener(nil), c.listeners...)
}

func rosterFromProto(players []proto.PlayerState) []core.PlayerRecord {
	roster := make([]core.PlayerRecord, 0, len(players))
	for _, p := range players {
		roster = append(roster, core.PlayerRecord{
			ConnID:         p.PlayerID,
			Position:       core.Vec3(p.Position),
			Rotation:       core.Quat(p.Rotation),
			WeaponPosition: core.Vec3(p.WeaponPosition),
			WeaponRotation: core.Quat(p.WeaponRotation),
			Health:         p.Health,
			IsAttacking:    p.IsAttacking,
			IsBlocking:     p.IsBlocking,
		})
	}
	return roster
}
