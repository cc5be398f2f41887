package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/duelforge/duel-server/internal/proto"
)

func TestHealthEndpoint(t *testing.T) {
	ts := startTestServer(t, testConfig())

	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestGetRoomUnknown(t *testing.T) {
	ts := startTestServer(t, testConfig())

	resp, err := ts.Client().Get(ts.URL + "/api/rooms/doesnotexist")
	if err != nil {
		t.Fatalf("room request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestGetRoomSnapshot(t *testing.T) {
	cfg := testConfig()
	cfg.RoomCapacity = 2

	ts := startTestServer(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _ := dialWS(t, ctx, ts)
	sendMsg(t, ctx, conn, proto.InboundTypeCreateRoom, nil)
	var created proto.RoomCreatedData
	decodeEvent(t, waitEvent(t, ctx, conn, proto.EventRoomCreated), &created)

	resp, err := ts.Client().Get(ts.URL + "/api/rooms/" + created.RoomID)
	if err != nil {
		t.Fatalf("room request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}

	var room RoomResponse
	if err := json.NewDecoder(resp.Body).Decode(&room); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if room.RoomID != created.RoomID || room.Phase != "waiting" || room.PlayerCount != 1 || room.Capacity != 2 {
		t.Fatalf("unexpected snapshot: %+v", room)
	}
}
