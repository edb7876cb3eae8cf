package services

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/CrowderSoup/kanban/metrics"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Subscribers only send pings and close frames
	maxMessageSize = 4 * 1024

	sendBuffer = 256
)

// Client is one websocket subscribed to the events of a single board.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	BoardID string
	UserID  string
}

func NewClient(hub *Hub, conn *websocket.Conn, boardID, userID string) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		BoardID: boardID,
		UserID:  userID,
	}
}

// ReadPump drains the connection so control frames are handled, and
// unregisters the client when the peer goes away.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read failed", "board_id", c.BoardID, "error", err)
			}
			return
		}
	}
}

// WritePump pumps events from the hub to the connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte("\n"))
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Hub fans committed board events out to the clients watching that board.
// It implements Publisher.
type Hub struct {
	clients    map[string]map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan Event, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues an event without blocking the mutation that produced it.
// When the queue is full the event is dropped; subscribers resync on the
// next event they do get.
func (h *Hub) Publish(e Event) {
	select {
	case h.broadcast <- e:
	default:
		h.logger.Warn("board event dropped, hub queue full", "type", e.Type, "board_id", e.BoardID)
	}
}

// Stop ends Run and closes every client.
func (h *Hub) Stop() {
	close(h.done)
}

// Run is the hub's main loop. It owns the client set.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if h.clients[client.BoardID] == nil {
				h.clients[client.BoardID] = make(map[*Client]bool)
			}
			h.clients[client.BoardID][client] = true
			metrics.HubClients.Inc()
			h.logger.Debug("client subscribed", "board_id", client.BoardID, "user_id", client.UserID)
		case client := <-h.unregister:
			h.remove(client)
		case e := <-h.broadcast:
			message, err := json.Marshal(e)
			if err != nil {
				h.logger.Error("failed to marshal board event", "error", err)
				continue
			}
			for client := range h.clients[e.BoardID] {
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full, assume disconnected
					h.logger.Warn("client send buffer full, removing client", "board_id", e.BoardID, "user_id", client.UserID)
					h.remove(client)
				}
			}
		case <-h.done:
			for _, clients := range h.clients {
				for client := range clients {
					h.remove(client)
				}
			}
			return
		}
	}
}

func (h *Hub) remove(client *Client) {
	clients, ok := h.clients[client.BoardID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.clients, client.BoardID)
	}
	close(client.send)
	metrics.HubClients.Dec()
	h.logger.Debug("client unsubscribed", "board_id", client.BoardID, "user_id", client.UserID)
}
