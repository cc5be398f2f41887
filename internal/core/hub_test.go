package core

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func startTestHub(t *testing.T, cfg HubConfig) (*Hub, *clockwork.FakeClock, context.CancelFunc) {
	t.Helper()

	clock := clockwork.NewFakeClock()
	hub := NewHub(NewRegistry(clock, 2), clock, cfg, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	return hub, clock, cancel
}

func connect(t *testing.T, hub *Hub, id string) *Client {
	t.Helper()

	c := NewClient(id)
	hub.RegisterClient(c)
	ev := mustEvent(t, c.Events, EventConnected)
	if ev.PlayerID != id {
		t.Fatalf("connected as %q, want %q", ev.PlayerID, id)
	}
	return c
}

func TestHubDuelLifecycle(t *testing.T) {
	hub, _, cancel := startTestHub(t, HubConfig{JoinURLBase: "http://duel.test"})
	defer cancel()

	alice := connect(t, hub, "alice")
	bob := connect(t, hub, "bob")

	alice.Commands <- &Command{Kind: CommandCreateRoom}
	created := mustEvent(t, alice.Events, EventRoomCreated)
	if created.RoomID == "" {
		t.Fatal("room_created carries no room id")
	}
	if created.JoinURL != "http://duel.test?room="+created.RoomID {
		t.Fatalf("join url = %q", created.JoinURL)
	}

	bob.Commands <- &Command{Kind: CommandJoinRoom, RoomID: created.RoomID}
	joined := mustEvent(t, alice.Events, EventPlayerJoined)
	if joined.PlayerID != "bob" || len(joined.Players) != 2 {
		t.Fatalf("unexpected join event: %+v", joined)
	}
	mustEvent(t, bob.Events, EventPlayerJoined)

	alice.Commands <- &Command{Kind: CommandStartGame, RoomID: created.RoomID}
	started := mustEvent(t, bob.Events, EventGameStarted)
	if started.StartedAt.IsZero() || len(started.Players) != 2 {
		t.Fatalf("unexpected start event: %+v", started)
	}
	mustEvent(t, alice.Events, EventGameStarted)

	// Updates reach peers but never echo back to the sender.
	bob.Commands <- &Command{
		Kind:   CommandPlayerUpdate,
		RoomID: created.RoomID,
		Update: PlayerUpdate{Position: Vec3{X: 4}, IsBlocking: true},
	}
	updated := mustEvent(t, alice.Events, EventPlayerUpdated)
	if updated.PlayerID != "bob" || updated.Update.Position.X != 4 || !updated.Update.IsBlocking {
		t.Fatalf("unexpected update event: %+v", updated)
	}
	mustNoEvent(t, bob.Events, EventPlayerUpdated)
}

func TestHubHitAndDefeatBroadcasts(t *testing.T) {
	hub, _, cancel := startTestHub(t, HubConfig{})
	defer cancel()

	alice := connect(t, hub, "alice")
	bob := connect(t, hub, "bob")

	alice.Commands <- &Command{Kind: CommandCreateRoom}
	roomID := mustEvent(t, alice.Events, EventRoomCreated).RoomID
	bob.Commands <- &Command{Kind: CommandJoinRoom, RoomID: roomID}
	mustEvent(t, bob.Events, EventPlayerJoined)
	alice.Commands <- &Command{Kind: CommandStartGame, RoomID: roomID}
	mustEvent(t, bob.Events, EventGameStarted)

	hit := &Command{Kind: CommandPlayerHit, RoomID: roomID, TargetID: "alice", Damage: 30}
	for i, want := range []int{70, 40, 10} {
		bob.Commands <- hit
		damaged := mustEvent(t, alice.Events, EventPlayerDamaged)
		if damaged.PlayerID != "alice" || damaged.AttackerID != "bob" || damaged.Health != want {
			t.Fatalf("hit %d: %+v", i+1, damaged)
		}
		if echoed := mustEvent(t, bob.Events, EventPlayerDamaged); echoed.Health != want {
			t.Fatalf("hit %d at attacker: %+v", i+1, echoed)
		}
	}

	// The 4th hit clamps to 0 and produces exactly one defeat.
	bob.Commands <- hit
	damaged := mustEvent(t, bob.Events, EventPlayerDamaged)
	if damaged.Health != 0 {
		t.Fatalf("final health = %d, want 0", damaged.Health)
	}
	defeated := mustEvent(t, bob.Events, EventPlayerDefeated)
	if defeated.PlayerID != "alice" || defeated.AttackerID != "bob" {
		t.Fatalf("unexpected defeat event: %+v", defeated)
	}
	mustEvent(t, alice.Events, EventPlayerDefeated)

	bob.Commands <- hit
	mustEvent(t, bob.Events, EventPlayerDamaged)
	mustNoEvent(t, bob.Events, EventPlayerDefeated)
}

func TestHubJoinErrors(t *testing.T) {
	hub, _, cancel := startTestHub(t, HubConfig{})
	defer cancel()

	alice := connect(t, hub, "alice")
	bob := connect(t, hub, "bob")

	bob.Commands <- &Command{Kind: CommandJoinRoom, RoomID: "missing"}
	ev := mustEvent(t, bob.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeRoomNotFound {
		t.Fatalf("expected room_not_found, got %+v", ev)
	}

	alice.Commands <- &Command{Kind: CommandCreateRoom}
	roomID := mustEvent(t, alice.Events, EventRoomCreated).RoomID
	bob.Commands <- &Command{Kind: CommandJoinRoom, RoomID: roomID}
	mustEvent(t, bob.Events, EventPlayerJoined)
	alice.Commands <- &Command{Kind: CommandStartGame, RoomID: roomID}
	mustEvent(t, bob.Events, EventGameStarted)

	late := connect(t, hub, "carol")
	late.Commands <- &Command{Kind: CommandJoinRoom, RoomID: roomID}
	ev = mustEvent(t, late.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeMatchInProgress {
		t.Fatalf("expected match_in_progress, got %+v", ev)
	}
}

func TestHubStartRejectedForNonHost(t *testing.T) {
	hub, _, cancel := startTestHub(t, HubConfig{})
	defer cancel()

	alice := connect(t, hub, "alice")
	bob := connect(t, hub, "bob")

	alice.Commands <- &Command{Kind: CommandCreateRoom}
	roomID := mustEvent(t, alice.Events, EventRoomCreated).RoomID
	bob.Commands <- &Command{Kind: CommandJoinRoom, RoomID: roomID}
	mustEvent(t, bob.Events, EventPlayerJoined)

	bob.Commands <- &Command{Kind: CommandStartGame, RoomID: roomID}
	ev := mustEvent(t, bob.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeNotAuthorized {
		t.Fatalf("expected not_authorized, got %+v", ev)
	}
	mustNoEvent(t, alice.Events, EventGameStarted)
}

func TestHubHostDisconnectDestroysRoom(t *testing.T) {
	hub, _, cancel := startTestHub(t, HubConfig{})
	defer cancel()

	alice := connect(t, hub, "alice")
	bob := connect(t, hub, "bob")

	alice.Commands <- &Command{Kind: CommandCreateRoom}
	roomID := mustEvent(t, alice.Events, EventRoomCreated).RoomID
	bob.Commands <- &Command{Kind: CommandJoinRoom, RoomID: roomID}
	mustEvent(t, bob.Events, EventPlayerJoined)

	hub.UnregisterClient(alice)
	ev := mustEvent(t, bob.Events, EventHostDisconnected)
	if ev.RoomID != roomID {
		t.Fatalf("unexpected host_disconnected: %+v", ev)
	}

	if _, ok := hub.Snapshot(context.Background(), roomID); ok {
		t.Fatal("room should be gone after host disconnect")
	}
}

func TestHubMemberDisconnectNotifiesRest(t *testing.T) {
	hub, _, cancel := startTestHub(t, HubConfig{})
	defer cancel()

	alice := connect(t, hub, "alice")
	bob := connect(t, hub, "bob")

	alice.Commands <- &Command{Kind: CommandCreateRoom}
	roomID := mustEvent(t, alice.Events, EventRoomCreated).RoomID
	bob.Commands <- &Command{Kind: CommandJoinRoom, RoomID: roomID}
	mustEvent(t, alice.Events, EventPlayerJoined)

	hub.UnregisterClient(bob)
	ev := mustEvent(t, alice.Events, EventPlayerLeft)
	if ev.PlayerID != "bob" {
		t.Fatalf("unexpected player_left: %+v", ev)
	}

	snap, ok := hub.Snapshot(context.Background(), roomID)
	if !ok || snap.PlayerCount != 1 {
		t.Fatalf("snapshot after departure: %+v ok=%v", snap, ok)
	}
}

func TestHubConcurrentHitsEitherOrder(t *testing.T) {
	hub, _, cancel := startTestHub(t, HubConfig{})
	defer cancel()

	alice := connect(t, hub, "alice")
	bob := connect(t, hub, "bob")

	alice.Commands <- &Command{Kind: CommandCreateRoom}
	roomID := mustEvent(t, alice.Events, EventRoomCreated).RoomID
	bob.Commands <- &Command{Kind: CommandJoinRoom, RoomID: roomID}
	mustEvent(t, bob.Events, EventPlayerJoined)
	alice.Commands <- &Command{Kind: CommandStartGame, RoomID: roomID}
	mustEvent(t, bob.Events, EventGameStarted)

	// Two connections report hits at once. The hub applies them in
	// arrival order; no cross-connection ordering is promised, so the
	// test only checks the combined outcome.
	go func() {
		alice.Commands <- &Command{Kind: CommandPlayerHit, RoomID: roomID, TargetID: "bob", Damage: 60}
	}()
	go func() {
		bob.Commands <- &Command{Kind: CommandPlayerHit, RoomID: roomID, TargetID: "bob", Damage: 60}
	}()

	first := mustEvent(t, alice.Events, EventPlayerDamaged)
	second := mustEvent(t, alice.Events, EventPlayerDamaged)
	if first.Health != 40 {
		t.Fatalf("first damaged health = %d, want 40", first.Health)
	}
	if second.Health != 0 {
		t.Fatalf("second damaged health = %d, want 0", second.Health)
	}
	defeated := mustEvent(t, alice.Events, EventPlayerDefeated)
	if defeated.PlayerID != "bob" {
		t.Fatalf("unexpected defeat: %+v", defeated)
	}
}

func TestHubIdleSweepDestroysStaleRooms(t *testing.T) {
	hub, clock, cancel := startTestHub(t, HubConfig{RoomIdleTimeout: time.Minute})
	defer cancel()

	alice := connect(t, hub, "alice")
	bob := connect(t, hub, "bob")

	alice.Commands <- &Command{Kind: CommandCreateRoom}
	roomID := mustEvent(t, alice.Events, EventRoomCreated).RoomID
	bob.Commands <- &Command{Kind: CommandJoinRoom, RoomID: roomID}
	mustEvent(t, bob.Events, EventPlayerJoined)

	// Let the hub drain the join before moving the clock past the
	// idle cutoff and firing the sweep ticker.
	if _, ok := hub.Snapshot(context.Background(), roomID); !ok {
		t.Fatal("room missing before sweep")
	}
	clock.Advance(2 * time.Minute)

	ev := mustEvent(t, bob.Events, EventHostDisconnected)
	if ev.RoomID != roomID {
		t.Fatalf("unexpected expiry event: %+v", ev)
	}
	if _, ok := hub.Snapshot(context.Background(), roomID); ok {
		t.Fatal("room should be destroyed by the idle sweep")
	}
}
