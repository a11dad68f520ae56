package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/brkrs/brkgo/internal/config"
)

// Envelope is the wire shape of one pipeline event.
type Envelope struct {
	Frame   uint64 `json:"frame"`
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub fans pipeline events out to websocket watchers. Publish never blocks
// the tick loop: a watcher whose queue is full loses the event.
type Hub struct {
	log          *zap.Logger
	upgrader     websocket.Upgrader
	queueSize    int
	writeTimeout time.Duration

	mu      sync.Mutex
	clients map[*client]struct{}

	published atomic.Uint64
	dropped   atomic.Uint64
}

func NewHub(cfg config.FeedConfig, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	size := cfg.QueueSize
	if size < 1 {
		size = 1
	}
	return &Hub{
		log:          log,
		queueSize:    size,
		writeTimeout: cfg.WriteTimeout,
		clients:      make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Publish matches the event bus tap signature.
func (h *Hub) Publish(frame uint64, ev any) {
	data, err := json.Marshal(Envelope{Frame: frame, Type: eventName(ev), Payload: ev})
	if err != nil {
		h.log.Warn("feed marshal failed", zap.Uint64("frame", frame), zap.Error(err))
		return
	}
	h.published.Add(1)

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.dropped.Add(1)
		}
	}
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Stats returns events published and per-watcher deliveries dropped.
func (h *Hub) Stats() (published, dropped uint64) {
	return h.published.Load(), h.dropped.Load()
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Info("feed watcher connected", zap.String("remote", c.conn.RemoteAddr().String()), zap.Int("watchers", n))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		c.close()
		h.log.Info("feed watcher disconnected", zap.String("remote", c.conn.RemoteAddr().String()), zap.Int("watchers", n))
	}
}

// ServeHTTP upgrades the request and streams envelopes until the watcher
// goes away. Anything the watcher sends is discarded.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("feed upgrade failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}
	c := &client{conn: conn, send: make(chan []byte, h.queueSize)}
	h.register(c)

	go h.writeLoop(c)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.unregister(c)
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		if h.writeTimeout > 0 {
			c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Debug("feed write failed", zap.Error(err))
			h.unregister(c)
			// drain so Publish never sees a stalled queue before unregister lands
			for range c.send {
			}
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Shutdown disconnects every watcher.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()
	for _, c := range clients {
		c.close()
	}
}

// Handler mounts the hub at /events.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/events", h)
	return mux
}

// ListenAndServe runs the feed until ctx is cancelled.
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	h.log.Info("feed listening", zap.String("addr", addr))

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	h.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func eventName(ev any) string {
	t := reflect.TypeOf(ev)
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
