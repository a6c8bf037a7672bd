package kds

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/cafe-queue/utils"
)

const (
	writeWait = 5 * time.Second
	// sendBuffer is how many events a screen may fall behind before it is dropped.
	sendBuffer = 64
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type client struct {
	conn   *websocket.Conn
	userID string
	send   chan []byte
}

// Hub keeps the barista screens connected over websocket and pushes every
// committed order or catalog change to them. Each screen has its own send
// buffer drained by a writer goroutine, so a slow screen never holds the
// lock while a socket write is in flight.
type Hub struct {
	clients    map[*websocket.Conn]*client
	mutex      sync.Mutex
	bufferSize int
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client), bufferSize: sendBuffer}
}

// RegisterClient -> menambahkan connection ke set dan menjalankan writer-nya
func (h *Hub) RegisterClient(conn *websocket.Conn, userID string) {
	c := &client{conn: conn, userID: userID, send: make(chan []byte, h.bufferSize)}

	h.mutex.Lock()
	h.clients[conn] = c
	h.mutex.Unlock()

	utils.InfoLogger.WithField("user_id", userID).Info("barista screen connected")
	go h.writePump(c)
}

// UnregisterClient -> melepaskan connection. The writer closes the socket
// once its buffer is closed.
func (h *Hub) UnregisterClient(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.removeLocked(conn)
}

func (h *Hub) removeLocked(conn *websocket.Conn) {
	c, ok := h.clients[conn]
	if !ok {
		return
	}
	delete(h.clients, conn)
	close(c.send)
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Publish implements services.Notifier. It only queues the payload; a screen
// whose buffer is already full is dropped instead of stalling the caller.
func (h *Hub) Publish(_ context.Context, event string, data any) error {
	payload, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		return err
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, c := range h.clients {
		select {
		case c.send <- payload:
		default:
			utils.ErrorLogger.WithField("user_id", c.userID).Error("barista screen too slow, dropping connection")
			h.removeLocked(conn)
		}
	}
	return nil
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()

	for payload := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			utils.ErrorLogger.WithField("user_id", c.userID).Errorf("Error sending message to client: %v", err)
			h.UnregisterClient(c.conn)
			return
		}
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
