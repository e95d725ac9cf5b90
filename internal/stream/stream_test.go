package stream

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Garsondee/vr-targets/internal/game"
)

func TestParseCommand(t *testing.T) {
	c, err := ParseCommand([]byte(`{"type":"pose","yaw":30,"pitch":-10}`))
	if err != nil {
		t.Fatalf("parse pose: %v", err)
	}
	if c.Type != CommandPose || c.Yaw != 30 || c.Pitch != -10 {
		t.Fatalf("unexpected command %+v", c)
	}
	if _, err := ParseCommand([]byte(`{"type":"jump"}`)); !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("unknown type: got %v", err)
	}
	if _, err := ParseCommand([]byte(`not json`)); err == nil {
		t.Fatal("malformed message should error")
	}
}

func TestLoop_AppliesCommands(t *testing.T) {
	s, err := game.NewSession(game.TrafficVR())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	h := NewHub(8)
	l := NewLoop(s, h)
	h.commands <- Command{Type: CommandPose, Yaw: 90}
	h.commands <- Command{Type: CommandTrigger}
	if err := l.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if s.State.Shots != 9 {
		t.Fatalf("trigger should throw, %d shots left", s.State.Shots)
	}
	want := game.PoseFromYawPitch(90, 0)
	if !s.Head().View.ApproxEqual(want.View, 1e-12) {
		t.Fatal("pose command not applied before the frame")
	}
}

func TestHub_RoundTrip(t *testing.T) {
	s, err := game.NewSession(game.TrafficVR())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	h := NewHub(8)
	l := NewLoop(s, h)
	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"trigger"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for h.Stats().Commands == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if h.Stats().Commands != 1 {
		t.Fatal("command never reached the hub")
	}
	if err := l.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var sc game.Scene
	if err := json.Unmarshal(msg, &sc); err != nil {
		t.Fatalf("decode scene: %v", err)
	}
	if sc.Frame != 1 || sc.Shots != 9 {
		t.Fatalf("unexpected scene frame=%d shots=%d", sc.Frame, sc.Shots)
	}
	if st := h.Stats(); st.Clients != 1 || st.Broadcasts != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestStatsHandler(t *testing.T) {
	h := NewHub(1)
	h.Broadcast([]byte("x"))
	rr := httptest.NewRecorder()
	h.StatsHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	var st Stats
	if err := json.Unmarshal(rr.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Broadcasts != 1 {
		t.Fatalf("expected 1 broadcast, got %d", st.Broadcasts)
	}
}
