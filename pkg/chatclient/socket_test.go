package chatclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"linkup-service/internal/models"
	"linkup-service/internal/ws"
)

func frame(t *testing.T, typ ws.EventType, payload any) []byte {
	t.Helper()
	evt, err := ws.NewEvent(typ, payload)
	require.NoError(t, err)
	raw, err := evt.Encode()
	require.NoError(t, err)
	return raw
}

func TestDispatchReceiveMessageLandsInActiveChat(t *testing.T) {
	api := newFakeAPI()
	chatID := primitive.NewObjectID()
	api.chats[chatID.Hex()] = models.ChatResponse{ID: chatID}
	api.history[chatID.Hex()] = nil

	client := New(api, primitive.NewObjectID().Hex())
	client.SetChats([]models.ChatResponse{{ID: chatID}}, nil)
	require.NoError(t, client.SelectChat(context.Background(), chatID.Hex()))

	sock := NewSocket(client)
	msg := models.Message{
		ID:     primitive.NewObjectID(),
		ChatID: chatID,
		Sender: primitive.NewObjectID(),
		Text:   "hello",
	}
	sock.dispatch(context.Background(), frame(t, ws.EventReceiveMessage, msg))

	got := client.Messages()
	require.Len(t, got, 1)
	assert.Equal(t, "hello", got[0].Text)
	assert.Equal(t, int64(0), client.Unread(chatID.Hex()))
}

func TestDispatchPresenceFrames(t *testing.T) {
	client := New(newFakeAPI(), primitive.NewObjectID().Hex())
	sock := NewSocket(client)

	sock.dispatch(context.Background(), frame(t, ws.EventUserOnline, ws.PresencePayload{UserID: "alice"}))
	assert.True(t, client.IsOnline("alice"))

	sock.dispatch(context.Background(), frame(t, ws.EventUserOffline, ws.PresencePayload{UserID: "alice"}))
	assert.False(t, client.IsOnline("alice"))
}

func TestDispatchMessageSeenReplacesReadBy(t *testing.T) {
	api := newFakeAPI()
	chatID := primitive.NewObjectID()
	history := newestFirst(chatID, 1)
	api.chats[chatID.Hex()] = models.ChatResponse{ID: chatID}
	api.history[chatID.Hex()] = history

	client := New(api, primitive.NewObjectID().Hex())
	client.SetChats([]models.ChatResponse{{ID: chatID}}, nil)
	require.NoError(t, client.SelectChat(context.Background(), chatID.Hex()))

	reader := primitive.NewObjectID().Hex()
	sock := NewSocket(client)
	sock.dispatch(context.Background(), frame(t, ws.EventMessageRead, ws.MessageReadPayload{
		MessageID: history[0].ID.Hex(),
		ReadBy:    []string{reader},
	}))

	got := client.Messages()
	require.Len(t, got, 1)
	require.Len(t, got[0].ReadBy, 1)
	assert.Equal(t, reader, got[0].ReadBy[0].Hex())
}

func TestDispatchNewChatFramesInstallChat(t *testing.T) {
	client := New(newFakeAPI(), primitive.NewObjectID().Hex())
	sock := NewSocket(client)

	chatID := primitive.NewObjectID()
	sock.dispatch(context.Background(), frame(t, ws.EventGroupCreated, models.ChatResponse{ID: chatID}))

	chats := client.Chats()
	require.Len(t, chats, 1)
	assert.Equal(t, chatID, chats[0].ID)
}

func TestDispatchDropsMalformedFrames(t *testing.T) {
	client := New(newFakeAPI(), primitive.NewObjectID().Hex())
	sock := NewSocket(client)

	sock.dispatch(context.Background(), []byte("not json"))
	sock.dispatch(context.Background(), frame(t, ws.EventType("someFutureEvent"), map[string]string{"x": "y"}))

	assert.Empty(t, client.Chats())
	assert.Equal(t, StateNoChatSelected, client.State())
}
