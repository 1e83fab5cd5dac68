package websocket

import (
	"encoding/json"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event types pushed to clients
const (
	TypeConnected           = "connected"
	TypeGenerationStarted   = "generation.started"
	TypeGenerationCompleted = "generation.completed"
	TypeGenerationFailed    = "generation.failed"
)

// sendBuffer is the number of queued messages a slow client may hold
const sendBuffer = 64

// Conn is the subset of *websocket.Conn the hub uses
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client represents a connected WebSocket client
type Client struct {
	conn   Conn
	userID uuid.UUID
	send   chan []byte
}

// Message represents a WebSocket message
type Message struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

type broadcast struct {
	userID  uuid.UUID
	payload []byte
}

// Hub fans generation events out to the connections of the user who started them
type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcast
	done       chan struct{}
	log        *zap.Logger
}

// NewHub creates a new websocket hub
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcast, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run owns the client set; it returns after Stop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if _, ok := h.clients[client.userID]; !ok {
				h.clients[client.userID] = make(map[*Client]bool)
			}
			h.clients[client.userID][client] = true

		case client := <-h.unregister:
			h.remove(client)

		case msg := <-h.broadcast:
			for client := range h.clients[msg.userID] {
				select {
				case client.send <- msg.payload:
				default:
					h.log.Debug("Dropping slow websocket client", zap.String("user_id", msg.userID.String()))
					h.remove(client)
				}
			}

		case <-h.done:
			for _, set := range h.clients {
				for client := range set {
					h.remove(client)
				}
			}
			return
		}
	}
}

// Stop terminates Run and closes every client
func (h *Hub) Stop() {
	close(h.done)
}

func (h *Hub) remove(client *Client) {
	set, ok := h.clients[client.userID]
	if !ok || !set[client] {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
}

// Publish queues an event for every connection of userID
func (h *Hub) Publish(userID uuid.UUID, eventType string, data interface{}) {
	payload, err := json.Marshal(Message{Type: eventType, Timestamp: time.Now().UTC(), Data: data})
	if err != nil {
		h.log.Error("Error marshalling WebSocket message", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- broadcast{userID: userID, payload: payload}:
	case <-h.done:
	default:
		h.log.Debug("WebSocket broadcast queue full, dropping event", zap.String("type", eventType))
	}
}

// Serve registers conn for userID and blocks until the peer goes away
func (h *Hub) Serve(conn Conn, userID uuid.UUID) {
	client := &Client{conn: conn, userID: userID, send: make(chan []byte, sendBuffer)}

	hello, _ := json.Marshal(Message{
		Type:      TypeConnected,
		Timestamp: time.Now().UTC(),
		Data:      map[string]string{"user_id": userID.String()},
	})
	client.send <- hello

	select {
	case h.register <- client:
	case <-h.done:
		return
	}

	go client.writePump()
	client.readPump(h)
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump discards inbound frames and unregisters on close
func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("WebSocket error", zap.Error(err))
			}
			return
		}
	}
}
