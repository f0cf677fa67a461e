// Package live pushes match results and ranking changes to websocket clients.
package live

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ShinAdam/Badminton-Elo-App/metrics"
	"github.com/ShinAdam/Badminton-Elo-App/models"
	"github.com/gorilla/websocket"
)

const (
	RoomRanking = "ranking"

	EventMatchRecorded  = "MATCH_RECORDED"
	EventRankingUpdated = "RANKING_UPDATED"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

// UserRoom is the room of clients following a single player.
func UserRoom(userID int) string {
	return fmt.Sprintf("user_%d", userID)
}

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	RoomID  string      `json:"room_id,omitempty"`
}

// RankingFunc loads the current leaderboard for RANKING_UPDATED messages.
type RankingFunc func(ctx context.Context) ([]models.UserRanking, error)

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	room string
}

type Hub struct {
	register   chan *Client
	unregister chan *Client
	rooms      map[string]map[*Client]bool
	mu         sync.RWMutex
	done       chan struct{}
	ranking    RankingFunc
	logger     *slog.Logger
}

func NewHub(ranking RankingFunc, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		done:       make(chan struct{}),
		ranking:    ranking,
		logger:     logger.With(slog.String("component", "live_hub")),
	}
}

// Run owns room membership until ctx is done, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[client.room]; !ok {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			n := len(h.rooms[client.room])
			h.mu.Unlock()
			metrics.LiveClients.Inc()
			h.logger.Debug("client registered", slog.String("room", client.room), slog.Int("clients", n))

		case client := <-h.unregister:
			h.removeClient(client)

		case <-ctx.Done():
			h.mu.Lock()
			for room, clients := range h.rooms {
				for client := range clients {
					close(client.send)
					metrics.LiveClients.Dec()
				}
				delete(h.rooms, room)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.rooms[client.room]
	if !ok || !clients[client] {
		return
	}
	close(client.send)
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.rooms, client.room)
	}
	metrics.LiveClients.Dec()
	h.logger.Debug("client unregistered", slog.String("room", client.room))
}

// ClientCount reports how many clients are in room.
func (h *Hub) ClientCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// BroadcastToRoom sends message to every client in room. Clients with a full
// buffer miss the message instead of blocking the hub.
func (h *Hub) BroadcastToRoom(room string, message Message) {
	message.RoomID = room
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal live message", slog.String("room", room), slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[room] {
		select {
		case client.send <- data:
		default:
			h.logger.Warn("client send buffer full, dropping message", slog.String("room", room))
		}
	}
}

// MatchRecorded announces a committed match to the ranking room and the rooms of
// its four players, followed by the refreshed leaderboard.
func (h *Hub) MatchRecorded(ctx context.Context, match *models.Match) error {
	msg := Message{Type: EventMatchRecorded, Payload: match}
	h.BroadcastToRoom(RoomRanking, msg)
	for _, p := range append(append([]models.Participant{}, match.Winners...), match.Losers...) {
		h.BroadcastToRoom(UserRoom(p.UserID), msg)
	}

	if h.ranking == nil || h.ClientCount(RoomRanking) == 0 {
		return nil
	}
	ranking, err := h.ranking(ctx)
	if err != nil {
		return fmt.Errorf("load ranking for live update: %w", err)
	}
	h.BroadcastToRoom(RoomRanking, Message{Type: EventRankingUpdated, Payload: ranking})
	return nil
}

// Attach registers an upgraded connection in room and starts its pumps.
func (h *Hub) Attach(conn *websocket.Conn, room string) {
	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		room: room,
	}
	select {
	case h.register <- client:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump only drains control frames; clients never send data that matters.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket closed unexpectedly", slog.String("room", c.room), slog.Any("error", err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// One frame per message so clients can decode each one independently.
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
