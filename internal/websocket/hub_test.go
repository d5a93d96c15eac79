package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmarankit/Money-Stories-Final/internal/config"
	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/events"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(config.Default().WebSocket, nil, testLogger())
	hub.Start()
	t.Cleanup(hub.Stop)
	return hub
}

func recv(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestHubRegisterSendsConnect(t *testing.T) {
	hub := newTestHub(t)
	client := NewClient(hub, NewMockConnection(), "req-1", testLogger())
	hub.Register(client)

	var msg events.WebSocketMessage
	require.NoError(t, json.Unmarshal(recv(t, client), &msg))
	assert.Equal(t, events.MessageTypeConnect, msg.Type)
	assert.Equal(t, "req-1", msg.TraceID)
	assert.Equal(t, client.ID(), msg.ID)
	assert.Equal(t, 1, hub.ClientCount())
}

func TestHubBroadcastScopedByRequest(t *testing.T) {
	hub := newTestHub(t)
	scoped := NewClient(hub, NewMockConnection(), "r1", testLogger())
	other := NewClient(hub, NewMockConnection(), "r2", testLogger())
	all := NewClient(hub, NewMockConnection(), "", testLogger())
	for _, c := range []*Client{scoped, other, all} {
		hub.Register(c)
		recv(t, c)
	}

	require.True(t, hub.Broadcast("r1", []byte("one")))
	require.True(t, hub.Broadcast("r2", []byte("two")))

	assert.Equal(t, "one", string(recv(t, scoped)))
	assert.Equal(t, "two", string(recv(t, other)))
	assert.Equal(t, "one", string(recv(t, all)))
	assert.Equal(t, "two", string(recv(t, all)))
}

func TestHubDisconnectsSlowClient(t *testing.T) {
	hub := newTestHub(t)
	client := NewClient(hub, NewMockConnection(), "", testLogger())
	hub.Register(client)

	// Nobody drains the buffer, so it overflows.
	for i := 0; i < 2*sendBufferSize; i++ {
		hub.Broadcast("", []byte("x"))
	}
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubStopClosesClients(t *testing.T) {
	hub := NewHub(config.Default().WebSocket, nil, testLogger())
	hub.Start()
	client := NewClient(hub, NewMockConnection(), "", testLogger())
	hub.Register(client)

	hub.Stop()
	hub.Stop()

	for range client.send {
	}
	assert.Equal(t, 0, hub.ClientCount())
	assert.False(t, hub.Broadcast("", []byte("late")))

	// Registering after Stop closes the client straight away.
	late := NewClient(hub, NewMockConnection(), "", testLogger())
	hub.Register(late)
	_, ok := <-late.send
	assert.False(t, ok)
	hub.Unregister(late)
}

func TestNewHubKeepaliveTimings(t *testing.T) {
	hub := NewHub(config.WebSocketConfig{PingPeriod: 2 * time.Minute, PongWait: time.Minute}, nil, nil)
	assert.Equal(t, time.Minute, hub.pongWait)
	assert.Equal(t, 54*time.Second, hub.pingPeriod)

	hub = NewHub(config.WebSocketConfig{}, nil, nil)
	assert.Equal(t, defaultPongWait, hub.pongWait)
	assert.Less(t, hub.pingPeriod, hub.pongWait)
}

func TestClientPumps(t *testing.T) {
	hub := newTestHub(t)
	conn := NewMockConnection()
	client := NewClient(hub, conn, "", testLogger())
	hub.Register(client)

	readDone := make(chan struct{})
	go client.WritePump()
	go func() {
		client.ReadPump()
		close(readDone)
	}()

	conn.AddReadMessage(websocket.TextMessage, heartbeat, nil)
	hub.Broadcast("", []byte(`{"type":"conversion:progress"}`))

	require.Eventually(t, func() bool { return len(conn.GetWrittenMessages()) == 2 }, 2*time.Second, 10*time.Millisecond)
	written := conn.GetWrittenMessages()
	assert.Equal(t, websocket.TextMessage, written[1].Type)
	assert.JSONEq(t, `{"type":"conversion:progress"}`, string(written[1].Data))

	conn.mu.Lock()
	assert.Equal(t, int64(maxMessageSize), conn.ReadLimit)
	assert.NotNil(t, conn.PongHandler)
	conn.mu.Unlock()

	require.NoError(t, conn.Close())
	select {
	case <-readDone:
	case <-time.After(2 * time.Second):
		t.Fatal("read pump did not exit")
	}
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
