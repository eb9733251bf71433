package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	room uuid.UUID
}

// Hub fans tournament events out to websocket viewers, one room per tournament.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	register   chan *client
	unregister chan *client
	broadcast  chan Event
	done       chan struct{}

	mu    sync.RWMutex
	rooms map[uuid.UUID]map[*client]bool
}

func NewHub(logger *slog.Logger, allowedOrigins []string) *Hub {
	h := &Hub{
		logger:     logger,
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan Event, 64),
		done:       make(chan struct{}),
		rooms:      make(map[uuid.UUID]map[*client]bool),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
		},
	}
	return h
}

// Run owns room membership until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for id, room := range h.rooms {
				for c := range room {
					close(c.send)
				}
				delete(h.rooms, id)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[c.room]; !ok {
				h.rooms[c.room] = make(map[*client]bool)
			}
			h.rooms[c.room][c] = true
			h.mu.Unlock()
			h.logger.Debug("viewer joined", "tournament_id", c.room)

		case c := <-h.unregister:
			h.mu.Lock()
			h.remove(c)
			h.mu.Unlock()

		case event := <-h.broadcast:
			message, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("failed to encode event", "error", err)
				continue
			}
			h.mu.Lock()
			for c := range h.rooms[event.TournamentID] {
				select {
				case c.send <- message:
				default:
					// Slow viewer, drop it and let it reconnect
					h.remove(c)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove expects h.mu to be held.
func (h *Hub) remove(c *client) {
	room, ok := h.rooms[c.room]
	if !ok || !room[c] {
		return
	}
	delete(room, c)
	close(c.send)
	if len(room) == 0 {
		delete(h.rooms, c.room)
	}
}

// TournamentUpdated queues an event without blocking the caller.
func (h *Hub) TournamentUpdated(tournamentID uuid.UUID, reason string) {
	event := Event{Type: TypeTournamentUpdated, TournamentID: tournamentID, Reason: reason}
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("event queue full, dropping update", "tournament_id", tournamentID, "reason", reason)
	}
}

// Viewers reports how many clients are watching a tournament.
func (h *Hub) Viewers(tournamentID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[tournamentID])
}

// ServeWS upgrades the request and subscribes it to the tournament's room.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, tournamentID uuid.UUID) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client
		h.logger.Warn("websocket upgrade failed", "tournament_id", tournamentID, "error", err)
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, 16), room: tournamentID}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// readPump only exists to process pongs and notice disconnects.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("viewer disconnected", "tournament_id", c.room, "error", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
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
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
