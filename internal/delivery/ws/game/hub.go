package ws_game

import (
	"log/slog"
	"sync"

	"github.com/bortnikau/quizparty/core/internal/model"
	"github.com/gorilla/websocket"
)

const sendBuffer = 16

// Client is one live connection. Its identity (room, player) lives in the
// gateway's session table, not here; the hub only tracks subscriptions.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan Event

	// id is the connection identity, assigned on upgrade.
	id     string
	roomID model.RoomID
}

// Hub keeps the set of connections subscribed to each room and fans events
// out to them. Delivery order within a room follows the order broadcasts are
// issued: each client's send channel is FIFO.
type Hub struct {
	mu sync.RWMutex

	clients map[*Client]bool
	rooms   map[model.RoomID]map[*Client]bool

	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		rooms:   make(map[model.RoomID]map[*Client]bool),
		logger:  logger,
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
	h.logger.Info("client registered", "conn_id", client.id)
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	h.dropFromRoom(client)
	close(client.send)

	h.logger.Info("client unregistered", "conn_id", client.id)
}

// Subscribe adds the client to a room's broadcast group.
func (h *Hub) Subscribe(client *Client, roomID model.RoomID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	client.roomID = roomID
}

// Unsubscribe removes the client from its broadcast group, if any.
func (h *Hub) Unsubscribe(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropFromRoom(client)
}

func (h *Hub) dropFromRoom(client *Client) {
	if client.roomID == model.EmptyRoomID {
		return
	}
	if roomClients, ok := h.rooms[client.roomID]; ok {
		delete(roomClients, client)
		if len(roomClients) == 0 {
			delete(h.rooms, client.roomID)
		}
	}
	client.roomID = model.EmptyRoomID
}

// BroadcastToRoom sends the event to every current subscriber of the room.
// Takes the write lock: a subscriber that stopped draining its send channel
// gets evicted here.
func (h *Hub) BroadcastToRoom(roomID model.RoomID, event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if roomClients, ok := h.rooms[roomID]; ok {
		for client := range roomClients {
			select {
			case client.send <- event:
			default:
				close(client.send)
				delete(h.rooms[roomID], client)
				delete(h.clients, client)
			}
		}
	}
}

// SendTo delivers an event to a single connection only.
func (h *Hub) SendTo(client *Client, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	select {
	case client.send <- event:
	default:
		h.logger.Warn("dropping event for slow client", "conn_id", client.id)
	}
}

func (h *Hub) StartClientWriting(client *Client) {
	defer client.conn.Close()

	for event := range client.send {
		if err := client.conn.WriteJSON(event); err != nil {
			break
		}
	}
}
