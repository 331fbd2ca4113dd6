package web

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"oscreplay/player"
)

const (
	writeWait   = 5 * time.Second
	sendBacklog = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Event is the JSON shape pushed to WebSocket clients.
type Event struct {
	Type      string         `json:"type"`
	Session   string         `json:"session"`
	Index     int            `json:"index,omitempty"`
	Timestamp int64          `json:"timestamp,omitempty"`
	DriftMs   float64        `json:"drift_ms,omitempty"`
	WaitMs    float64        `json:"wait_ms,omitempty"`
	Error     string         `json:"error,omitempty"`
	Traversal int            `json:"traversal,omitempty"`
	Total     int            `json:"total,omitempty"`
	Status    *player.Status `json:"status,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans events out to every connected WebSocket client. A client that
// cannot keep up is disconnected.
type Hub struct {
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	clients    map[*client]bool
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, sendBacklog),
		clients:    make(map[*client]bool),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
		case c := <-h.unregister:
			if h.clients[c] {
				close(c.send)
				delete(h.clients, c)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					close(c.send)
					delete(h.clients, c)
				}
			}
		}
	}
}

// Broadcast never blocks; events are dropped when the hub is backed up.
func (h *Hub) Broadcast(msg []byte) {
	select {
	case h.broadcast <- msg:
	default:
	}
}

func (h *Hub) publish(ev Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		log.Printf("Marshal event: %v", err)
		return
	}
	h.Broadcast(b)
}

func (h *Hub) PlaybackStarted(session string, total int) {
	h.publish(Event{Type: "started", Session: session, Total: total})
}

func (h *Hub) MessageSent(ev player.SendEvent) {
	h.publish(sendEvent("sent", ev))
}

func (h *Hub) SendFailed(ev player.SendEvent, err error) {
	e := sendEvent("send_failed", ev)
	e.Error = err.Error()
	h.publish(e)
}

func (h *Hub) TraversalRestarted(session string, traversal int) {
	h.publish(Event{Type: "restarted", Session: session, Traversal: traversal})
}

func (h *Hub) PlaybackStopped(session string, st player.Status) {
	h.publish(Event{Type: "stopped", Session: session, Status: &st})
}

func sendEvent(typ string, ev player.SendEvent) Event {
	return Event{
		Type:      typ,
		Session:   ev.Session,
		Index:     ev.Index,
		Timestamp: ev.Timestamp,
		DriftMs:   float64(ev.Drift) / float64(time.Millisecond),
		WaitMs:    float64(ev.Wait) / float64(time.Millisecond),
	}
}

func serveWs(h *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade: %v", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBacklog)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump(h)
}

// readPump only watches for the client going away.
func (c *client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
