package signal

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/Clubs/internal/adapters/storage"
	"github.com/dkeye/Clubs/internal/app"
	"github.com/dkeye/Clubs/internal/app/orch"
	"github.com/dkeye/Clubs/internal/config"
	"github.com/dkeye/Clubs/internal/core"
	"github.com/dkeye/Clubs/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type wireEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func testConfig() *config.Config {
	return &config.Config{
		ReadLimit:   65536,
		PingPeriod:  54 * time.Second,
		PongWait:    60 * time.Second,
		SendBuffer:  64,
		MessageRate: config.RateConfig{Limit: 3, Interval: time.Minute},
	}
}

func startServer(t *testing.T) (*httptest.Server, *orch.Orchestrator, *storage.Memory) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mem := storage.NewMemory()
	mem.PutUser(domain.User{ID: "u1", DisplayName: "Ann"})
	o := orch.New(app.NewRegistry(), app.SimplePolicy{}, mem, mem)
	ctrl := NewSignalWSController(o, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		c.Set("client_token", "tok")
		c.Set("user_id", c.Query("user"))
		ctrl.HandleSignal(ctx, c)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return srv, o, mem
}

// dial connects and consumes the connected greeting.
func dial(t *testing.T, srv *httptest.Server, user string) (*websocket.Conn, domain.ConnID) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?user=" + user
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	ev := readEvent(t, conn)
	if ev.Event != core.EventConnected {
		t.Fatalf("first event = %q, want connected", ev.Event)
	}
	var p core.ConnectedPayload
	if err := json.Unmarshal(ev.Data, &p); err != nil || p.ConnectionID == "" {
		t.Fatalf("bad connected payload %s: %v", ev.Data, err)
	}
	return conn, p.ConnectionID
}

func send(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"event": event, "data": data}); err != nil {
		t.Fatalf("write %s: %v", event, err)
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) wireEvent {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var ev wireEvent
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read: %v", err)
	}
	return ev
}

// roundTrip waits for a whoami reply, so every earlier frame of conn has
// been handled.
func roundTrip(t *testing.T, conn *websocket.Conn) whoAmIPayload {
	t.Helper()
	send(t, conn, EventWhoAmI, nil)
	for {
		ev := readEvent(t, conn)
		if ev.Event == core.EventWhoAmI {
			var p whoAmIPayload
			if err := json.Unmarshal(ev.Data, &p); err != nil {
				t.Fatal(err)
			}
			return p
		}
	}
}

func TestChatOverWebSocket(t *testing.T) {
	srv, _, mem := startServer(t)
	c1, _ := dial(t, srv, "u1")
	c2, _ := dial(t, srv, "u2")

	send(t, c1, EventJoinClub, map[string]string{"clubId": "42"})
	send(t, c2, EventJoinClub, "42")
	if who := roundTrip(t, c1); who.ClubRoom != domain.ClubRoom("42") || who.UserID != "u1" {
		t.Fatalf("whoami = %+v", who)
	}
	roundTrip(t, c2)

	send(t, c1, EventSendMessage, map[string]string{"clubId": "42", "message": "hello"})

	for _, c := range []*websocket.Conn{c1, c2} {
		ev := readEvent(t, c)
		if ev.Event != core.EventNewMessage {
			t.Fatalf("event = %q, want new-message", ev.Event)
		}
		var m domain.ChatMessageView
		if err := json.Unmarshal(ev.Data, &m); err != nil {
			t.Fatal(err)
		}
		if m.Content != "hello" || m.SenderID != "u1" || m.Sender.DisplayName != "Ann" {
			t.Fatalf("message = %+v", m)
		}
	}

	hist, _ := mem.ListChatMessages(context.Background(), "42", 10)
	if len(hist) != 1 {
		t.Fatalf("persisted %d messages, want 1", len(hist))
	}
}

func TestValidationErrorsGoToSenderOnly(t *testing.T) {
	srv, _, _ := startServer(t)
	c1, _ := dial(t, srv, "u1")
	c2, _ := dial(t, srv, "u2")
	send(t, c1, EventJoinClub, "1")
	send(t, c2, EventJoinClub, "1")
	roundTrip(t, c1)
	roundTrip(t, c2)

	send(t, c1, EventSendMessage, map[string]string{"clubId": "1", "message": ""})
	ev := readEvent(t, c1)
	if ev.Event != core.EventMessageError {
		t.Fatalf("event = %q, want message-error", ev.Event)
	}

	send(t, c1, "bogus", nil)
	ev = readEvent(t, c1)
	if ev.Event != core.EventError {
		t.Fatalf("event = %q, want error", ev.Event)
	}
	var p core.ErrorPayload
	_ = json.Unmarshal(ev.Data, &p)
	if p.Event != "bogus" || p.Error != "unknown_event" {
		t.Fatalf("error payload = %+v", p)
	}

	// c2 must see nothing but its own whoami reply
	send(t, c2, EventWhoAmI, nil)
	if ev := readEvent(t, c2); ev.Event != core.EventWhoAmI {
		t.Fatalf("c2 got %q", ev.Event)
	}
}

func TestMeetingNegotiationOverWebSocket(t *testing.T) {
	srv, _, _ := startServer(t)
	c1, id1 := dial(t, srv, "u1")
	c2, id2 := dial(t, srv, "u2")
	send(t, c1, EventJoinClub, "42")
	send(t, c2, EventJoinClub, "42")
	roundTrip(t, c1)
	roundTrip(t, c2)

	send(t, c1, EventJoinMeeting, map[string]string{"clubId": "42", "meetingId": "7"})
	roundTrip(t, c1)
	send(t, c2, EventJoinMeeting, map[string]string{"clubId": "42", "meetingId": "7"})

	ev := readEvent(t, c1)
	if ev.Event != core.EventUserJoinedMeeting {
		t.Fatalf("event = %q", ev.Event)
	}
	var jp core.MeetingPeerPayload
	_ = json.Unmarshal(ev.Data, &jp)
	if jp.UserID != id2 {
		t.Fatalf("joined = %q, want %q", jp.UserID, id2)
	}

	send(t, c2, EventOffer, map[string]any{
		"clubId":       "42",
		"offer":        map[string]string{"type": "offer", "sdp": "v=0"},
		"targetUserId": id1,
	})
	ev = readEvent(t, c1)
	if ev.Event != core.EventWebRTCOffer {
		t.Fatalf("event = %q", ev.Event)
	}
	var op struct {
		Offer      map[string]string `json:"offer"`
		FromUserID domain.ConnID     `json:"fromUserId"`
	}
	_ = json.Unmarshal(ev.Data, &op)
	if op.FromUserID != id2 || op.Offer["sdp"] != "v=0" {
		t.Fatalf("offer = %+v", op)
	}

	// c2 leaving the socket is announced to the meeting
	c2.Close()
	ev = readEvent(t, c1)
	if ev.Event != core.EventUserLeftMeeting {
		t.Fatalf("event = %q, want user-left-meeting", ev.Event)
	}
}

func TestPingPong(t *testing.T) {
	srv, _, _ := startServer(t)
	c, _ := dial(t, srv, "")
	send(t, c, EventPing, nil)
	if ev := readEvent(t, c); ev.Event != core.EventPong {
		t.Fatalf("event = %q, want pong", ev.Event)
	}
}

func TestMessageRateLimit(t *testing.T) {
	srv, _, _ := startServer(t)
	c, _ := dial(t, srv, "u1")
	send(t, c, EventJoinClub, "1")
	roundTrip(t, c)

	for i := 0; i < 4; i++ {
		send(t, c, EventSendMessage, map[string]string{"clubId": "1", "message": "spam"})
	}
	var delivered, limited int
	for delivered+limited < 4 {
		switch ev := readEvent(t, c); ev.Event {
		case core.EventNewMessage:
			delivered++
		case core.EventMessageError:
			limited++
		}
	}
	if delivered != 3 || limited != 1 {
		t.Fatalf("delivered=%d limited=%d, want 3/1", delivered, limited)
	}
}

func TestDisconnectCleansRegistry(t *testing.T) {
	srv, o, _ := startServer(t)
	c, id := dial(t, srv, "u1")
	send(t, c, EventJoinClub, "1")
	roundTrip(t, c)
	if o.Registry.Count() != 1 {
		t.Fatalf("Count = %d", o.Registry.Count())
	}
	c.Close()

	deadline := time.Now().Add(3 * time.Second)
	for o.Registry.Count() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("connection not removed after close")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if o.Registry.IsMember(id, domain.ClubRoom("1")) {
		t.Fatal("membership survived disconnect")
	}
}
