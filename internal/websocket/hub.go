package websocket

import (
	"context"
	"sync"
)

// membershipRequest moves a client into a room.
type membershipRequest struct {
	client *Client
	room   string
}

// Hub manages client connections and room membership. A connection
// belongs to at most one room at a time; joining a new room leaves the
// previous one first.
type Hub struct {
	mu sync.RWMutex

	// clients maps client ID to client (for cleanup)
	clients map[string]*Client

	// rooms maps room key to the set of clients in it
	rooms map[string]map[*Client]struct{}

	// Control channels
	register   chan *Client
	unregister chan *Client
	membership chan membershipRequest
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		membership: make(chan membershipRequest, 512),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case req := <-h.membership:
			h.joinRoom(req.client, req.room)
		}
	}
}

// Register adds a new client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// JoinRoom moves a client into a room, leaving any previous room.
// Leaving happens only implicitly, on a new join or on disconnect.
func (h *Hub) JoinRoom(client *Client, room string) {
	h.membership <- membershipRequest{client: client, room: room}
}

// Broadcast sends a payload to every client in a room.
func (h *Hub) Broadcast(room string, payload []byte) {
	h.mu.RLock()
	clients := h.rooms[room]
	for c := range clients {
		c.SendMessage(payload)
	}
	h.mu.RUnlock()
}

// SendToUser sends a payload to all connections of a specific user.
func (h *Hub) SendToUser(userID string, payload []byte) {
	h.mu.RLock()
	for _, client := range h.clients {
		if client.UserID == userID {
			client.SendMessage(payload)
		}
	}
	h.mu.RUnlock()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomSize returns the number of clients in a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room := client.Room(); room != "" {
		h.dropFromRoom(client, room)
	}
	delete(h.clients, client.ID)
	close(client.Send)
}

func (h *Hub) joinRoom(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// At most one room per connection.
	if prev := client.Room(); prev != "" && prev != room {
		h.dropFromRoom(client, prev)
	}

	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][client] = struct{}{}
	client.setRoom(room)
}

// dropFromRoom removes the client from a room's set. Caller holds h.mu.
func (h *Hub) dropFromRoom(client *Client, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}
