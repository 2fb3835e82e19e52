package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/goleak"

	"github.com/abrezinsky/swishfeed/internal/logger"
	"github.com/abrezinsky/swishfeed/internal/metrics"
	"github.com/abrezinsky/swishfeed/internal/models"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := New(logger.NewNop(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	hub.Start(ctx)
	return hub, cancel
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + server.URL[4:]
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	return ws
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount() == n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d clients, got %d", n, hub.ClientCount())
}

func readMessage(t *testing.T, ws *websocket.Conn) models.WSMessage {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read message: %v", err)
	}
	var msg models.WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("failed to unmarshal message: %v", err)
	}
	return msg
}

func TestHub_ClientRegistration(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub, cancel := startHub(t)
	defer cancel()

	client := &Client{id: "test", hub: hub, send: make(chan models.WSMessage, sendBufferSize)}
	hub.register <- client
	waitForClients(t, hub, 1)

	hub.unregister <- client
	waitForClients(t, hub, 0)

	if _, ok := <-client.send; ok {
		t.Error("expected send channel to be closed on unregister")
	}
}

func TestHub_BroadcastShot(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub, cancel := startHub(t)
	defer cancel()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	defer server.Close()

	ws := dial(t, server)
	defer ws.Close()
	waitForClients(t, hub, 1)

	hub.BroadcastShot(models.Shot{ID: 12, Classification: models.ClassificationPerfect, Scored: true})

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read message: %v", err)
	}

	var frame struct {
		Type    string `json:"type"`
		Payload struct {
			ID             json.Number `json:"id"`
			Classification int         `json:"classification"`
			Scored         bool        `json:"scored"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if frame.Type != models.MessageTypeShot {
		t.Errorf("expected type %q, got %q", models.MessageTypeShot, frame.Type)
	}
	if frame.Payload.ID != "12" || frame.Payload.Classification != 1 || !frame.Payload.Scored {
		t.Errorf("unexpected payload %+v", frame.Payload)
	}
}

func TestHub_BroadcastJump(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub, cancel := startHub(t)
	defer cancel()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	defer server.Close()

	ws := dial(t, server)
	defer ws.Close()
	waitForClients(t, hub, 1)

	hub.BroadcastJump(models.JumpSummary{StartTs: 1, EndTs: 2})

	if msg := readMessage(t, ws); msg.Type != models.MessageTypeJump {
		t.Errorf("expected type %q, got %q", models.MessageTypeJump, msg.Type)
	}
}

func TestHub_BroadcastOrderPreserved(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub, cancel := startHub(t)
	defer cancel()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	defer server.Close()

	ws := dial(t, server)
	defer ws.Close()
	waitForClients(t, hub, 1)

	for i := int64(1); i <= 5; i++ {
		hub.BroadcastShot(models.Shot{ID: i})
	}
	for i := 1; i <= 5; i++ {
		msg := readMessage(t, ws)
		payload := msg.Payload.(map[string]interface{})
		if int(payload["id"].(float64)) != i {
			t.Fatalf("message %d carried id %v", i, payload["id"])
		}
	}
}

func TestServeWs_MultipleClients(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub, cancel := startHub(t)
	defer cancel()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	defer server.Close()

	var conns []*websocket.Conn
	for i := 0; i < 3; i++ {
		ws := dial(t, server)
		defer ws.Close()
		conns = append(conns, ws)
	}
	waitForClients(t, hub, 3)

	hub.BroadcastMessage("broadcast_test", map[string]int{"count": 123})

	for i, ws := range conns {
		if msg := readMessage(t, ws); msg.Type != "broadcast_test" {
			t.Errorf("client %d got wrong type: %s", i+1, msg.Type)
		}
	}
}

func TestServeWs_ClientDisconnect(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub, cancel := startHub(t)
	defer cancel()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	defer server.Close()

	ws := dial(t, server)
	waitForClients(t, hub, 1)

	ws.Close()
	waitForClients(t, hub, 0)
}

func TestReadPump_IncomingMessageIgnored(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub, cancel := startHub(t)
	defer cancel()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	defer server.Close()

	ws := dial(t, server)
	defer ws.Close()
	waitForClients(t, hub, 1)

	msgBytes, _ := json.Marshal(models.WSMessage{Type: "client_message", Payload: "hi"})
	if err := ws.WriteMessage(websocket.TextMessage, msgBytes); err != nil {
		t.Fatalf("failed to write message: %v", err)
	}

	// The connection stays registered and keeps receiving broadcasts.
	hub.BroadcastMessage("after", nil)
	if msg := readMessage(t, ws); msg.Type != "after" {
		t.Errorf("expected 'after', got %s", msg.Type)
	}
	if hub.ClientCount() != 1 {
		t.Errorf("expected 1 client, got %d", hub.ClientCount())
	}
}

func TestHub_StopClosesClients(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub, cancel := startHub(t)

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	defer server.Close()

	ws := dial(t, server)
	defer ws.Close()
	waitForClients(t, hub, 1)

	cancel()
	<-hub.Done()

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := ws.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("expected going-away close, got %v", err)
	}

	// Broadcasting after stop must not block.
	finished := make(chan struct{})
	go func() {
		hub.BroadcastShot(models.Shot{ID: 1})
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("BroadcastShot blocked on a stopped hub")
	}
}

func TestServeWs_AfterStopRejects(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub, cancel := startHub(t)
	cancel()
	<-hub.Done()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	defer server.Close()

	ws := dial(t, server)
	defer ws.Close()

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := ws.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("expected going-away close, got %v", err)
	}
	if hub.ClientCount() != 0 {
		t.Errorf("expected no clients, got %d", hub.ClientCount())
	}
}

func TestServeWs_UpgradeError(t *testing.T) {
	hub, cancel := startHub(t)
	defer cancel()

	rec := httptest.NewRecorder()
	hub.ServeWs(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a non-websocket request, got %d", rec.Code)
	}
}

func TestHub_ClientGauge(t *testing.T) {
	m := metrics.NewManager()
	hub := New(logger.NewNop(), m)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub.Start(ctx)

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	defer server.Close()

	ws := dial(t, server)
	defer ws.Close()
	waitForClients(t, hub, 1)

	count, err := testutil.GatherAndCount(m.Registry(), "swishfeed_ws_clients")
	if err != nil || count != 1 {
		t.Fatalf("expected ws_clients gauge to be registered, count=%d err=%v", count, err)
	}
}

func TestClients_HaveUniqueIDs(t *testing.T) {
	hub, cancel := startHub(t)
	defer cancel()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	defer server.Close()

	a := dial(t, server)
	defer a.Close()
	b := dial(t, server)
	defer b.Close()
	waitForClients(t, hub, 2)

	hub.mutex.RLock()
	defer hub.mutex.RUnlock()
	seen := make(map[string]bool)
	for c := range hub.clients {
		if c.id == "" || seen[c.id] {
			t.Errorf("client id %q is empty or duplicated", c.id)
		}
		seen[c.id] = true
	}
}
