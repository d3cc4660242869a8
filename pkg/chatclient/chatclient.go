// Package chatclient keeps a client-side view of chats, messages,
// unread counts and presence consistent while live events and HTTP
// fetches race each other.
package chatclient

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"linkup-service/internal/models"
)

// State is the conversation pane's lifecycle.
type State int

const (
	StateNoChatSelected State = iota
	StateLoadingHistory
	StateReady
)

// API is the HTTP surface the client reconciles against.
type API interface {
	FetchChat(ctx context.Context, chatID string) (*models.ChatResponse, error)
	FetchHistory(ctx context.Context, chatID string, before *time.Time, limit int64) ([]models.Message, error)
}

const defaultPageSize = 50

// Client mirrors the server's chat state for one user. All methods are
// safe for concurrent use; HTTP fetches run outside the lock and their
// results are discarded when the selection changed underneath them.
type Client struct {
	mu  sync.Mutex
	api API

	userID   string
	pageSize int64

	state      State
	activeChat string
	// generation invalidates in-flight fetches: a response only lands
	// if the generation it started under is still current.
	generation uint64

	messages     []models.Message // oldest first
	seen         map[string]struct{}
	hasMore      bool
	loadingOlder bool

	chats  map[string]models.ChatResponse
	unread map[string]int64
	online map[string]struct{}
}

func New(api API, userID string) *Client {
	return &Client{
		api:      api,
		userID:   userID,
		pageSize: defaultPageSize,
		seen:     make(map[string]struct{}),
		chats:    make(map[string]models.ChatResponse),
		unread:   make(map[string]int64),
		online:   make(map[string]struct{}),
	}
}

// SetChats installs the chat list from the initial (or reconnect)
// fetch, replacing the unread cache with the server's counts.
func (c *Client) SetChats(chats []models.ChatResponse, counts []models.UnreadCount) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.chats = make(map[string]models.ChatResponse, len(chats))
	for _, chat := range chats {
		c.chats[chat.ID.Hex()] = chat
	}
	c.unread = make(map[string]int64, len(counts))
	for _, uc := range counts {
		c.unread[uc.ChatID.Hex()] = uc.Count
	}
}

// SelectChat switches the active conversation and loads its newest
// page. A selection made while a previous load is still in flight wins:
// the older response is discarded when it lands.
func (c *Client) SelectChat(ctx context.Context, chatID string) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.activeChat = chatID
	c.state = StateLoadingHistory
	c.messages = nil
	c.seen = make(map[string]struct{})
	c.loadingOlder = false
	c.mu.Unlock()

	history, err := c.api.FetchHistory(ctx, chatID, nil, c.pageSize)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		return nil
	}
	if err != nil {
		c.state = StateNoChatSelected
		c.activeChat = ""
		return err
	}

	c.installHistory(history)
	c.state = StateReady
	c.hasMore = int64(len(history)) == c.pageSize
	c.unread[chatID] = 0
	return nil
}

// ClearSelection leaves the conversation pane and invalidates any
// in-flight history fetch.
func (c *Client) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.state = StateNoChatSelected
	c.activeChat = ""
	c.messages = nil
	c.seen = make(map[string]struct{})
	c.loadingOlder = false
}

// LoadOlder fetches the page before the oldest loaded message. It is a
// no-op unless the pane is ready, more history exists and no older-page
// fetch is already running.
func (c *Client) LoadOlder(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateReady || !c.hasMore || c.loadingOlder || len(c.messages) == 0 {
		c.mu.Unlock()
		return nil
	}
	c.loadingOlder = true
	gen := c.generation
	chatID := c.activeChat
	before := c.messages[0].CreatedAt
	c.mu.Unlock()

	older, err := c.api.FetchHistory(ctx, chatID, &before, c.pageSize)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		return nil
	}
	c.loadingOlder = false
	if err != nil {
		return err
	}

	// older arrives newest first; prepend in chronological order.
	prepend := make([]models.Message, 0, len(older))
	for i := len(older) - 1; i >= 0; i-- {
		msg := older[i]
		if _, dup := c.seen[msg.ID.Hex()]; dup {
			continue
		}
		c.seen[msg.ID.Hex()] = struct{}{}
		prepend = append(prepend, msg)
	}
	c.messages = append(prepend, c.messages...)
	c.hasMore = int64(len(older)) == c.pageSize
	return nil
}

// OnReceiveMessage folds a live message into the view. Messages for the
// active chat append to the pane; everything else bumps the unread
// count. A message for a chat the client has never heard of triggers a
// fetch of that chat so the list can self-heal.
func (c *Client) OnReceiveMessage(ctx context.Context, msg models.Message) {
	chatID := msg.ChatID.Hex()

	c.mu.Lock()
	_, known := c.chats[chatID]
	if chat, ok := c.chats[chatID]; ok {
		chat.LastMessage = &msg
		chat.UpdatedAt = msg.CreatedAt
		c.chats[chatID] = chat
	}

	if c.state == StateReady && c.activeChat == chatID {
		if _, dup := c.seen[msg.ID.Hex()]; !dup {
			c.seen[msg.ID.Hex()] = struct{}{}
			c.messages = append(c.messages, msg)
		}
		c.mu.Unlock()
	} else {
		c.unread[chatID]++
		c.mu.Unlock()
	}

	if !known {
		c.healUnknownChat(ctx, chatID)
	}
}

// healUnknownChat fetches a chat that appeared via a live event before
// the client ever listed it.
func (c *Client) healUnknownChat(ctx context.Context, chatID string) {
	chat, err := c.api.FetchChat(ctx, chatID)
	if err != nil || chat == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.chats[chatID]; !exists {
		c.chats[chatID] = *chat
	}
}

// OnChatCreated registers a chat announced over the live connection.
func (c *Client) OnChatCreated(chat models.ChatResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chats[chat.ID.Hex()] = chat
}

// OnMessagesUpdated applies a bulk read event: userID has read every
// message in chatID they did not send.
func (c *Client) OnMessagesUpdated(chatID, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.activeChat != chatID {
		return
	}
	for i := range c.messages {
		msg := &c.messages[i]
		if msg.Sender.Hex() == userID {
			continue
		}
		if !containsHex(msg.ReadBy, userID) {
			msg.ReadBy = append(msg.ReadBy, mustObjectID(userID))
		}
	}
}

// OnMessageSeen replaces one message's receipt list with the server's.
func (c *Client) OnMessageSeen(messageID string, readBy []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.messages {
		if c.messages[i].ID.Hex() != messageID {
			continue
		}
		c.messages[i].ReadBy = c.messages[i].ReadBy[:0]
		for _, id := range readBy {
			c.messages[i].ReadBy = append(c.messages[i].ReadBy, mustObjectID(id))
		}
		return
	}
}

// OnUserOnline and OnUserOffline maintain the presence map the UI
// reads through IsOnline.
func (c *Client) OnUserOnline(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.online[userID] = struct{}{}
}

func (c *Client) OnUserOffline(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.online, userID)
}

func (c *Client) IsOnline(userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.online[userID]
	return ok
}

// State reports the conversation pane's current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) ActiveChat() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeChat
}

// Messages returns the loaded window oldest first.
func (c *Client) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Client) Unread(chatID string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unread[chatID]
}

func (c *Client) Chats() []models.ChatResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.ChatResponse, 0, len(c.chats))
	for _, chat := range c.chats {
		out = append(out, chat)
	}
	return out
}

func containsHex(ids []primitive.ObjectID, hex string) bool {
	for _, id := range ids {
		if id.Hex() == hex {
			return true
		}
	}
	return false
}

func mustObjectID(hex string) primitive.ObjectID {
	id, _ := primitive.ObjectIDFromHex(hex)
	return id
}

// installHistory replaces the message window with a newest-first page,
// stored oldest first.
func (c *Client) installHistory(history []models.Message) {
	c.messages = make([]models.Message, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		msg := history[i]
		if _, dup := c.seen[msg.ID.Hex()]; dup {
			continue
		}
		c.seen[msg.ID.Hex()] = struct{}{}
		c.messages = append(c.messages, msg)
	}
}
