package websocket

import (
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agriprep/pkg/contracts/events"
)

// mockConn satisfies Connection without a network peer. ReadMessage blocks
// until Close is called.
type mockConn struct {
	closed chan struct{}
}

func newMockConn() *mockConn {
	return &mockConn{closed: make(chan struct{})}
}

func (m *mockConn) ReadMessage() (int, []byte, error) {
	<-m.closed
	return 0, nil, errors.New("connection closed")
}

func (m *mockConn) WriteMessage(int, []byte) error   { return nil }
func (m *mockConn) SetReadLimit(int64)               {}
func (m *mockConn) SetReadDeadline(time.Time) error  { return nil }
func (m *mockConn) SetWriteDeadline(time.Time) error { return nil }
func (m *mockConn) SetPongHandler(func(string) error) {}
func (m *mockConn) RemoteAddr() string               { return "test:0" }

func (m *mockConn) Close() error {
	select {
	case <-m.closed:
	default:
		close(m.closed)
	}
	return nil
}

func registerTestClient(t *testing.T, hub *Hub) *Client {
	t.Helper()
	client := NewClient(hub, newMockConn(), slog.Default())
	hub.register <- client
	require.Eventually(t, func() bool {
		return hub.ClientCount() > 0
	}, time.Second, 5*time.Millisecond)
	return client
}

func readEnvelope(t *testing.T, client *Client) events.Envelope {
	t.Helper()
	select {
	case data := <-client.send:
		var env events.Envelope
		require.NoError(t, json.Unmarshal(data, &env))
		return env
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for an envelope")
		return events.Envelope{}
	}
}

func TestHub_RegisterSendsGreeting(t *testing.T) {
	hub := NewHub(slog.Default())
	hub.Start()
	defer hub.Stop()

	client := registerTestClient(t, hub)

	env := readEnvelope(t, client)
	assert.Equal(t, events.TypeConnection, env.Type)
}

func TestHub_BroadcastReachesEveryClient(t *testing.T) {
	hub := NewHub(slog.Default())
	hub.Start()
	defer hub.Stop()

	first := registerTestClient(t, hub)
	second := registerTestClient(t, hub)
	readEnvelope(t, first)  // greeting
	readEnvelope(t, second) // greeting

	hub.Broadcast(events.NewEnvelope(events.TypeRunStatus, events.RunUpdate{
		RunID:  "run-1",
		Status: "running",
	}))

	for _, client := range []*Client{first, second} {
		env := readEnvelope(t, client)
		assert.Equal(t, events.TypeRunStatus, env.Type)
	}
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	hub := NewHub(slog.Default())
	hub.Start()
	defer hub.Stop()

	// A client whose buffer cannot take a single message.
	slow := &Client{
		hub:         hub,
		conn:        newMockConn(),
		send:        make(chan []byte),
		id:          "slow",
		connectedAt: time.Now(),
		logger:      slog.Default(),
	}
	hub.register <- slow
	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 5*time.Millisecond)

	hub.Broadcast(events.NewEnvelope(events.TypeRunStatus, nil))

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestHub_StopDisconnectsClients(t *testing.T) {
	hub := NewHub(slog.Default())
	hub.Start()

	registerTestClient(t, hub)
	hub.Stop()

	assert.Equal(t, 0, hub.ClientCount())

	// Broadcasting after shutdown must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Broadcast(events.NewEnvelope(events.TypeRunStatus, nil))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked after hub stop")
	}
}

func TestHub_StartIsIdempotent(t *testing.T) {
	hub := NewHub(slog.Default())
	hub.Start()
	hub.Start()
	defer hub.Stop()

	stats := hub.Stats()
	assert.Equal(t, 0, stats["active_clients"])
}
