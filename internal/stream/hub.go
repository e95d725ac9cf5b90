// Package stream serves a running session over WebSocket: every frame's
// scene description goes out to all clients and clients send back head
// pose and trigger commands.
package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	sendBuffer   = 64
	pingInterval = 30 * time.Second
	maxMessage   = 4096
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Command types accepted from clients.
const (
	CommandTrigger = "trigger"
	CommandPose    = "pose"
)

// Command is one client message.
type Command struct {
	Type  string  `json:"type"`
	Yaw   float64 `json:"yaw,omitempty"`
	Pitch float64 `json:"pitch,omitempty"`
}

// ErrUnknownCommand is returned for a well-formed message of an unsupported type.
var ErrUnknownCommand = errors.New("unknown command")

// ParseCommand decodes a client message.
func ParseCommand(data []byte) (Command, error) {
	var c Command
	if err := json.Unmarshal(data, &c); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	switch c.Type {
	case CommandTrigger, CommandPose:
		return c, nil
	default:
		return Command{}, fmt.Errorf("%w %q", ErrUnknownCommand, c.Type)
	}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	id   string
}

// Stats is a snapshot of hub activity.
type Stats struct {
	Clients    int `json:"clients"`
	Broadcasts int `json:"broadcasts"`
	Commands   int `json:"commands"`
	Dropped    int `json:"dropped"`
}

// Hub fans scene frames out to every connected client and funnels their
// commands into one channel for the session loop.
type Hub struct {
	lock    sync.Mutex
	clients map[*client]bool
	stats   Stats

	commands chan Command
}

// NewHub creates a hub whose command channel holds up to buffer commands.
func NewHub(buffer int) *Hub {
	return &Hub{
		clients:  make(map[*client]bool),
		commands: make(chan Command, buffer),
	}
}

// Commands is read by the session loop.
func (h *Hub) Commands() <-chan Command { return h.commands }

// Stats returns current counters.
func (h *Hub) Stats() Stats {
	h.lock.Lock()
	defer h.lock.Unlock()
	s := h.stats
	s.Clients = len(h.clients)
	return s
}

// Broadcast queues msg for every client. A client whose queue is full is
// disconnected rather than allowed to stall the frame loop.
func (h *Hub) Broadcast(msg []byte) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.stats.Broadcasts++
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			close(c.send)
			delete(h.clients, c)
		}
	}
}

func (h *Hub) remove(c *client) {
	h.lock.Lock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
	h.lock.Unlock()
}

// ServeWS upgrades the request and runs the client's reader and writer.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("upgrade:", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer), id: r.RemoteAddr}
	h.lock.Lock()
	h.clients[c] = true
	h.lock.Unlock()

	go h.readLoop(c)
	go writeLoop(c)
}

func (h *Hub) readLoop(c *client) {
	defer func() {
		h.remove(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessage)
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("client %s: read error: %v", c.id, err)
			}
			return
		}
		cmd, err := ParseCommand(msg)
		if err != nil {
			log.Printf("client %s: %v", c.id, err)
			continue
		}
		select {
		case h.commands <- cmd:
			h.lock.Lock()
			h.stats.Commands++
			h.lock.Unlock()
		default:
			h.lock.Lock()
			h.stats.Dropped++
			h.lock.Unlock()
		}
	}
}

func writeLoop(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				return
			}
		}
	}
}

// StatsHandler serves Stats as JSON.
func (h *Hub) StatsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(h.Stats()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
