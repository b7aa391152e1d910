// Websocket telemetry broadcaster, adapted from
// Valkyrie/internal/livefeed/streamer.go's client-registry/broadcast-channel
// shape. The clearance-tiered message filtering from that file is dropped —
// this core has no auth/roles concept — but the non-blocking
// register/broadcast/write-pump structure is kept.
package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Streamer broadcasts every published registry snapshot to subscribed
// websocket clients; snapshots are dropped only when a buffer is full.
type Streamer struct {
	mu        sync.RWMutex
	clients   map[*client]struct{}
	broadcast chan map[string]any
	upgrader  websocket.Upgrader
	logger    *logrus.Logger

	sent uint64
}

type client struct {
	conn *websocket.Conn
	send chan map[string]any
}

// NewStreamer constructs a Streamer. bufferSize bounds the broadcast channel
// so a slow consumer cannot block the publisher.
func NewStreamer(bufferSize int, logger *logrus.Logger) *Streamer {
	if logger == nil {
		logger = logrus.New()
	}
	if bufferSize <= 0 {
		bufferSize = 32
	}
	return &Streamer{
		clients:   make(map[*client]struct{}),
		broadcast: make(chan map[string]any, bufferSize),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// HandleWebSocket upgrades the HTTP connection and registers a new client.
func (s *Streamer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Warn("telemetry websocket upgrade failed")
		return
	}
	c := &client{conn: conn, send: make(chan map[string]any, 8)}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	go s.writePump(ctx, c)
	go s.readPump(cancel, c)
}

// Publish enqueues a snapshot for broadcast, dropping the oldest pending
// snapshot rather than blocking when the buffer is full.
func (s *Streamer) Publish(snapshot map[string]any) {
	select {
	case s.broadcast <- snapshot:
	default:
		select {
		case <-s.broadcast:
		default:
		}
		s.broadcast <- snapshot
	}
}

// Run drains the broadcast channel and fans each snapshot out to every
// registered client until ctx is canceled.
func (s *Streamer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return
		case snap := <-s.broadcast:
			s.fanOut(snap)
		}
	}
}

func (s *Streamer) fanOut(snap map[string]any) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		select {
		case c.send <- snap:
			s.sent++
		default:
			// slow client, drop this sample
		}
	}
}

func (s *Streamer) writePump(ctx context.Context, c *client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			data, err := json.Marshal(snap)
			if err != nil {
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Streamer) readPump(cancel context.CancelFunc, c *client) {
	defer func() {
		cancel()
		s.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Streamer) unregister(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
}

func (s *Streamer) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.conn.Close()
		close(c.send)
		delete(s.clients, c)
	}
}

// ClientCount returns the number of currently connected clients.
func (s *Streamer) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}
