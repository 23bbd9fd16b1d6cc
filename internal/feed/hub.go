package feed

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/greelink/internal/logging"
	"github.com/muurk/greelink/internal/session"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Events buffered per client before it is dropped as too slow
	clientBuffer = 16

	defaultMaxClients = 16
)

// Event kinds.
const (
	KindSnapshot  = "snapshot"
	KindConnected = "connected"
	KindStatus    = "status"
	KindUpdate    = "update"
)

// Event is one message on the feed.
type Event struct {
	Kind       string             `json:"kind"`
	Time       time.Time          `json:"time"`
	Device     *DeviceEvent       `json:"device,omitempty"`
	Properties session.Properties `json:"properties,omitempty"`
}

// DeviceEvent is the JSON form of session.DeviceInfo.
type DeviceEvent struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Firmware string `json:"firmware,omitempty"`
	Address  string `json:"address"`
	Version  int    `json:"version"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // LAN dashboards are served from other origins
	},
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans events out to WebSocket clients. It implements http.Handler.
type Hub struct {
	MaxClients int

	mu      sync.RWMutex
	clients map[*client]struct{}
	device  *DeviceEvent
	props   session.Properties
	now     func() time.Time
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{
		MaxClients: defaultMaxClients,
		clients:    make(map[*client]struct{}),
		now:        time.Now,
	}
}

// Connected records the bound device and announces it.
func (h *Hub) Connected(info session.DeviceInfo) {
	dev := &DeviceEvent{
		ID:       info.ID,
		Name:     info.Name,
		Firmware: info.Firmware,
		Address:  hostPort(info.Host, info.Port),
		Version:  int(info.Version),
	}
	h.mu.Lock()
	h.device = dev
	h.mu.Unlock()

	h.broadcast(Event{Kind: KindConnected, Time: h.now(), Device: dev})
}

// Publish records p as the current properties and sends it as kind.
func (h *Hub) Publish(kind string, p session.Properties) {
	props := p.Clone()
	h.mu.Lock()
	h.props = props
	h.mu.Unlock()

	h.broadcast(Event{Kind: kind, Time: h.now(), Properties: props})
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) snapshot() Event {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return Event{Kind: KindSnapshot, Time: h.now(), Device: h.device, Properties: h.props}
}

func (h *Hub) broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		logging.Error("Failed to marshal feed event", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			logging.Warn("Feed client too slow, disconnecting", zap.Stringer("remote_addr", c.conn.RemoteAddr()))
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// ServeHTTP upgrades the request and streams events until the client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	full := len(h.clients) >= h.MaxClients
	h.mu.RUnlock()
	if full {
		http.Error(w, "too many clients", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("Failed to upgrade feed connection", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}
	snap, err := json.Marshal(h.snapshot())
	if err == nil {
		c.send <- snap
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	logging.Info("Feed client connected", zap.String("remote_addr", r.RemoteAddr))

	go h.writePump(c)
	h.readPump(c)
}

// readPump discards client messages and detects disconnects.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Warn("Feed connection error", zap.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}
