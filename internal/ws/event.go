package ws

import "encoding/json"

// EventType names a socket action or broadcast. The values are the
// wire protocol shared with the web client.
type EventType string

const (
	// Inbound actions
	EventAddUser     EventType = "addUser"
	EventJoinChats   EventType = "joinAllChats"
	EventUserOnline  EventType = "userOnline"
	EventTyping      EventType = "typing"
	EventStopTyping  EventType = "stopTyping"
	EventSendMessage EventType = "sendMessage"
	EventChatOpened  EventType = "chatOpened"
	EventMessageSeen EventType = "messageSeen"

	// Outbound events
	EventUserOffline      EventType = "userOffline"
	EventReceiveMessage   EventType = "receiveMessage"
	EventMessagesUpdated  EventType = "messages:updated"
	EventMessageRead      EventType = "message:seen"
	EventChatCreated      EventType = "newChatCreated"
	EventGroupCreated     EventType = "newGroupCreated"
	EventAddedToGroup     EventType = "AddedToGroup"
	EventGroupNameUpdated EventType = "groupNameUpdated"
	EventUserFollowed     EventType = "userFollowed"
	EventUserUnfollowed   EventType = "userUnfollowed"
	EventNotification     EventType = "receiveNotification"
)

// Event is the envelope every frame carries in both directions.
type Event struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEvent marshals a typed payload into an outbound envelope.
func NewEvent(t EventType, payload any) (*Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{Type: t, Payload: raw}, nil
}

func (e *Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

type IdentifyPayload struct {
	UserID string `json:"userId"`
}

type JoinChatsPayload struct {
	ChatIDs []string `json:"chatIds"`
}

// OnlineRelayPayload is the peer handshake: the caller asks the router
// to tell userId that currentUserId is online.
type OnlineRelayPayload struct {
	CurrentUserID string `json:"currentUserId"`
	UserID        string `json:"userId"`
}

// PresencePayload announces one user's online or offline transition.
type PresencePayload struct {
	UserID string `json:"userId"`
}

type TypingPayload struct {
	ChatID   string `json:"chatId"`
	ReaderID string `json:"id"`
	Avatar   string `json:"avatar,omitempty"`
}

type ChatOpenedPayload struct {
	ChatID string `json:"chatId"`
	UserID string `json:"userId"`
}

type MessageSeenPayload struct {
	MessageID string `json:"messageId"`
	UserID    string `json:"userId"`
}

type MessagesUpdatedPayload struct {
	ChatID string `json:"chatId"`
	UserID string `json:"userId"`
}

type MessageReadPayload struct {
	MessageID string   `json:"messageId"`
	ReadBy    []string `json:"readBy"`
}

type GroupNameUpdatedPayload struct {
	GroupID   string `json:"groupId"`
	GroupName string `json:"groupName"`
	UserName  string `json:"userName"`
}

type FollowChangedPayload struct {
	FollowerID  string `json:"followerId"`
	FollowingID string `json:"followingId"`
}
