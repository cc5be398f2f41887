package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/duelforge/duel-server/internal/config"
	"github.com/duelforge/duel-server/internal/core"
	"github.com/duelforge/duel-server/internal/proto"
)

func startTestServer(t *testing.T, cfg config.Config) *httptest.Server {
	t.Helper()

	registry := core.NewRegistry(nil, cfg.RoomCapacity)
	hub := core.NewHub(registry, nil, core.HubConfig{JoinURLBase: cfg.PublicURL}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	server := NewServer(hub, cfg, testLogger())

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func testLogger() *zerolog.Logger {
	nop := zerolog.Nop()
	return &nop
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.PublicURL = "http://duel.test"
	cfg.ReadHeaderTimeout = time.Second
	return cfg
}

// outboundRaw decodes the envelope without committing to a data shape.
type outboundRaw struct {
	Type  string          `json:"type"`
	Event string          `json:"event,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error *proto.Error    `json:"error,omitempty"`
}

func dialWS(t *testing.T, ctx context.Context, ts *httptest.Server) (*websocket.Conn, string) {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })

	var hello proto.ConnectedData
	decodeEvent(t, waitEvent(t, ctx, conn, proto.EventConnected), &hello)
	if hello.PlayerID == "" {
		t.Fatal("connected event carries no player id")
	}
	return conn, hello.PlayerID
}

func sendMsg(t *testing.T, ctx context.Context, conn *websocket.Conn, msgType string, data any) {
	t.Helper()

	var raw json.RawMessage
	if data != nil {
		payload, err := json.Marshal(data)
		if err != nil {
			t.Fatalf("marshal %s: %v", msgType, err)
		}
		raw = payload
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: msgType, Data: raw}); err != nil {
		t.Fatalf("send %s: %v", msgType, err)
	}
}

// waitEvent reads until an event with the given name arrives.
func waitEvent(t *testing.T, ctx context.Context, conn *websocket.Conn, name string) outboundRaw {
	t.Helper()

	for {
		var out outboundRaw
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			t.Fatalf("read while waiting for %s: %v", name, err)
		}
		if out.Type == proto.OutboundTypeEvent && out.Event == name {
			return out
		}
	}
}

func waitError(t *testing.T, ctx context.Context, conn *websocket.Conn) *proto.Error {
	t.Helper()

	for {
		var out outboundRaw
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			t.Fatalf("read while waiting for error: %v", err)
		}
		if out.Type == proto.OutboundTypeError {
			if out.Error == nil {
				t.Fatal("error envelope without error body")
			}
			return out.Error
		}
	}
}

func decodeEvent(t *testing.T, out outboundRaw, v any) {
	t.Helper()

	if err := json.Unmarshal(out.Data, v); err != nil {
		t.Fatalf("unmarshal %s data: %v", out.Event, err)
	}
}
