package chatclient

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"linkup-service/internal/models"
	"linkup-service/internal/ws"
)

// Socket is the live side of the client. It dials the server's
// websocket endpoint, identifies, joins the known chat rooms and feeds
// inbound events into the reconciliation state.
type Socket struct {
	client *Client

	mu   sync.Mutex
	conn *websocket.Conn
}

func NewSocket(client *Client) *Socket {
	return &Socket{client: client}
}

// Connect dials wsURL, identifies as the client's user and joins every
// chat in the current chat list.
func (s *Socket) Connect(ctx context.Context, wsURL string, header http.Header) error {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return err
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	if err := s.send(ws.EventAddUser, ws.IdentifyPayload{UserID: s.client.userID}); err != nil {
		conn.Close()
		return err
	}
	chats := s.client.Chats()
	ids := make([]string, 0, len(chats))
	for _, chat := range chats {
		ids = append(ids, chat.ID.Hex())
	}
	if err := s.send(ws.EventJoinChats, ws.JoinChatsPayload{ChatIDs: ids}); err != nil {
		conn.Close()
		return err
	}
	return nil
}

// Listen reads frames until the connection drops or ctx is canceled.
func (s *Socket) Listen(ctx context.Context) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		s.dispatch(ctx, frame)
	}
}

func (s *Socket) SendMessage(req models.SendMessageRequest) error {
	return s.send(ws.EventSendMessage, req)
}

func (s *Socket) Typing(chatID string, stopped bool) error {
	t := ws.EventTyping
	if stopped {
		t = ws.EventStopTyping
	}
	return s.send(t, ws.TypingPayload{ChatID: chatID, ReaderID: s.client.userID})
}

// ChatOpened reports that the user opened a chat, marking its messages
// read on the server.
func (s *Socket) ChatOpened(chatID string) error {
	return s.send(ws.EventChatOpened, ws.ChatOpenedPayload{ChatID: chatID, UserID: s.client.userID})
}

func (s *Socket) MessageSeen(messageID string) error {
	return s.send(ws.EventMessageSeen, ws.MessageSeenPayload{MessageID: messageID, UserID: s.client.userID})
}

func (s *Socket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *Socket) send(t ws.EventType, payload any) error {
	evt, err := ws.NewEvent(t, payload)
	if err != nil {
		return err
	}
	frame, err := evt.Encode()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, frame)
}

// dispatch folds one inbound frame into the client state. Unknown or
// malformed frames are dropped.
func (s *Socket) dispatch(ctx context.Context, frame []byte) {
	var evt ws.Event
	if err := json.Unmarshal(frame, &evt); err != nil {
		return
	}

	switch evt.Type {
	case ws.EventReceiveMessage:
		var msg models.Message
		if json.Unmarshal(evt.Payload, &msg) == nil {
			s.client.OnReceiveMessage(ctx, msg)
		}
	case ws.EventMessagesUpdated:
		var p ws.MessagesUpdatedPayload
		if json.Unmarshal(evt.Payload, &p) == nil {
			s.client.OnMessagesUpdated(p.ChatID, p.UserID)
		}
	case ws.EventMessageRead:
		var p ws.MessageReadPayload
		if json.Unmarshal(evt.Payload, &p) == nil {
			s.client.OnMessageSeen(p.MessageID, p.ReadBy)
		}
	case ws.EventChatCreated, ws.EventGroupCreated, ws.EventAddedToGroup:
		var chat models.ChatResponse
		if json.Unmarshal(evt.Payload, &chat) == nil {
			s.client.OnChatCreated(chat)
		}
	case ws.EventUserOnline:
		var p ws.PresencePayload
		if json.Unmarshal(evt.Payload, &p) == nil && p.UserID != "" {
			s.client.OnUserOnline(p.UserID)
		}
	case ws.EventUserOffline:
		var p ws.PresencePayload
		if json.Unmarshal(evt.Payload, &p) == nil && p.UserID != "" {
			s.client.OnUserOffline(p.UserID)
		}
	}
}
