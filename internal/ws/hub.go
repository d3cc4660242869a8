package ws

import (
	"context"
	"sync"

	"linkup-service/internal/models"
	"linkup-service/pkg/logger"
)

// RouterService is the persistence surface the event router drives.
// Implemented by the message service.
type RouterService interface {
	SaveMessage(ctx context.Context, req *models.SendMessageRequest) (*models.Message, error)
	ChatMemberIDs(ctx context.Context, chatID string) ([]string, error)
	MarkChatRead(ctx context.Context, chatID, userID string) (int64, error)
	MarkSeen(ctx context.Context, messageID, userID string) (*models.Message, error)
	PushToOffline(ctx context.Context, userIDs []string, req *models.SendMessageRequest)
}

type inboundEvent struct {
	client *Client
	event  *Event
}

// Hub owns the connection set and the chat-room table, and runs the
// event loop that routes inbound frames. Room membership is mutated
// only inside the loop; broadcasts from REST handlers read it under
// the lock.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client            // connID -> client
	rooms   map[string]map[*Client]struct{} // chatID -> members

	presence *Presence
	svc      RouterService
	log      *logger.Logger

	register   chan *Client
	unregister chan *Client
	inbound    chan *inboundEvent
}

func NewHub(presence *Presence, svc RouterService, log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[*Client]struct{}),
		presence:   presence,
		svc:        svc,
		log:        log,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan *inboundEvent, 256),
	}
}

func (h *Hub) Presence() *Presence { return h.presence }

// Register hands a freshly upgraded connection to the hub loop.
func (h *Hub) Register(c *Client) { h.register <- c }

// Run processes registrations, teardowns and inbound events until ctx
// is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.addClient(c)
		case c := <-h.unregister:
			h.removeClient(c)
		case in := <-h.inbound:
			h.route(in)
		}
	}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	h.log.Info("websocket connected", "connId", c.id)
}

// removeClient runs the two-phase teardown: peers in the client's
// rooms hear userOffline while membership is still intact, then the
// presence binding and room entries go away.
func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.id)
	h.mu.Unlock()

	userID, wentOffline := h.presence.Unbind(c.id)
	if wentOffline {
		for roomID := range c.rooms {
			h.broadcastToRoom(roomID, c, EventUserOffline, PresencePayload{UserID: userID})
		}
	}

	h.mu.Lock()
	for roomID := range c.rooms {
		if members, ok := h.rooms[roomID]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
	h.mu.Unlock()

	close(c.send)
	h.log.Info("websocket disconnected", "connId", c.id, "userId", userID)
}

// drop severs a client whose send buffer backed up. Closing the socket
// makes its read pump exit and funnel through the normal teardown.
func (h *Hub) drop(c *Client) {
	if c.conn != nil {
		c.conn.Close()
	}
}

func (h *Hub) joinRoom(roomID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[roomID]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[roomID] = members
	}
	members[c] = struct{}{}
	c.rooms[roomID] = struct{}{}
}

// roomPeers snapshots the members of roomID other than except.
func (h *Hub) roomPeers(roomID string, except *Client) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	members := h.rooms[roomID]
	peers := make([]*Client, 0, len(members))
	for m := range members {
		if m != except {
			peers = append(peers, m)
		}
	}
	return peers
}

func (h *Hub) broadcastToRoom(roomID string, except *Client, t EventType, payload any) {
	for _, peer := range h.roomPeers(roomID, except) {
		peer.sendEvent(t, payload)
	}
}

// BroadcastToRoom emits an event to every connection in a chat room.
func (h *Hub) BroadcastToRoom(roomID string, t EventType, payload any) {
	h.broadcastToRoom(roomID, nil, t, payload)
}

// SendToUser emits an event to a user's live connection, if they have
// one. Returns false for offline users.
func (h *Hub) SendToUser(userID string, t EventType, payload any) bool {
	connID, ok := h.presence.Resolve(userID)
	if !ok {
		return false
	}
	h.mu.RLock()
	c, ok := h.clients[connID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	c.sendEvent(t, payload)
	return true
}

func (h *Hub) IsOnline(userID string) bool {
	return h.presence.IsOnline(userID)
}
