package feed

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brkrs/brkgo/internal/config"
	"github.com/brkrs/brkgo/internal/core/event"
)

func dialFeed(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(hub.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/events"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if resp != nil {
		t.Cleanup(func() { resp.Body.Close() })
	}
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)
	return conn
}

func TestHubStreamsEnvelopes(t *testing.T) {
	hub := NewHub(config.FeedConfig{QueueSize: 8, WriteTimeout: time.Second}, nil)
	conn := dialFeed(t, hub)

	bus := event.NewBus()
	bus.Tap(hub.Publish)
	event.Emit(bus, event.ScoreChanged{Score: 25, Delta: 25})
	event.Emit(bus, event.GravityChanged{})
	bus.DispatchAll()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var first struct {
		Frame   uint64          `json:"frame"`
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &first))
	assert.Equal(t, "ScoreChanged", first.Type)
	assert.Equal(t, bus.Frame(), first.Frame)

	var score event.ScoreChanged
	require.NoError(t, json.Unmarshal(first.Payload, &score))
	assert.Equal(t, event.ScoreChanged{Score: 25, Delta: 25}, score)

	_, data, err = conn.ReadMessage()
	require.NoError(t, err)
	var second Envelope
	require.NoError(t, json.Unmarshal(data, &second))
	assert.Equal(t, "GravityChanged", second.Type)

	published, dropped := hub.Stats()
	assert.Equal(t, uint64(2), published)
	assert.Zero(t, dropped)
}

func TestHubDropsWhenWatcherQueueIsFull(t *testing.T) {
	hub := NewHub(config.FeedConfig{QueueSize: 1}, nil)
	c := &client{send: make(chan []byte, 1)}
	hub.clients[c] = struct{}{}

	hub.Publish(1, event.GameOver{Score: 10})
	hub.Publish(1, event.GameOver{Score: 10})

	published, dropped := hub.Stats()
	assert.Equal(t, uint64(2), published)
	assert.Equal(t, uint64(1), dropped)
	assert.Len(t, c.send, 1)
}

func TestHubShutdownDisconnectsWatchers(t *testing.T) {
	hub := NewHub(config.FeedConfig{QueueSize: 4}, nil)
	conn := dialFeed(t, hub)

	hub.Shutdown()
	assert.Zero(t, hub.Clients())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestEventName(t *testing.T) {
	assert.Equal(t, "LifeLost", eventName(event.LifeLost{}))
	assert.Equal(t, "LifeLost", eventName(&event.LifeLost{}))
	assert.Equal(t, "", eventName(nil))
}
