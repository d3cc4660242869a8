package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"linkup-service/internal/models"
	"linkup-service/internal/ws"
	"linkup-service/pkg/logger"
)

func TestListChatsHidesEmptyDirectChats(t *testing.T) {
	me := primitive.NewObjectID()
	other := primitive.NewObjectID()

	activeDirect := models.Chat{ID: primitive.NewObjectID(), Users: []primitive.ObjectID{me, other}}
	emptyDirect := models.Chat{ID: primitive.NewObjectID(), Users: []primitive.ObjectID{me, primitive.NewObjectID()}}
	emptyGroup := models.Chat{
		ID:        primitive.NewObjectID(),
		Users:     []primitive.ObjectID{me, other, primitive.NewObjectID()},
		IsGroup:   true,
		GroupInfo: &models.GroupInfo{Name: "trio", DefaultName: true},
	}

	chats := &fakeChatRepo{
		FindByUserFn: func(_ context.Context, _ primitive.ObjectID) ([]models.Chat, error) {
			return []models.Chat{activeDirect, emptyDirect, emptyGroup}, nil
		},
	}
	messages := &fakeMessageRepo{
		LastByChatFn: func(_ context.Context, chatID primitive.ObjectID) (*models.Message, error) {
			if chatID == activeDirect.ID {
				return &models.Message{ID: primitive.NewObjectID(), ChatID: chatID, Text: "yo"}, nil
			}
			return nil, mongo.ErrNoDocuments
		},
		UnreadCountsFn: func(_ context.Context, chatIDs []primitive.ObjectID, _ primitive.ObjectID) ([]models.UnreadCount, error) {
			return []models.UnreadCount{{ChatID: activeDirect.ID, Count: 2}}, nil
		},
	}
	svc := NewChatService(chats, messages, &fakeUserRepo{}, newFakeNotifier(), logger.NewNop())

	list, err := svc.ListChats(context.Background(), me.Hex())
	require.NoError(t, err)

	// The empty direct chat is hidden; the empty group is not.
	require.Len(t, list.Chats, 2)
	assert.Equal(t, activeDirect.ID, list.Chats[0].ID)
	assert.Equal(t, emptyGroup.ID, list.Chats[1].ID)
	require.Len(t, list.UnreadCounts, 1)
	assert.Equal(t, int64(2), list.UnreadCounts[0].Count)
}

func TestStartDirectChatReturnsExisting(t *testing.T) {
	me := primitive.NewObjectID()
	other := primitive.NewObjectID()
	existing := &models.Chat{ID: primitive.NewObjectID(), Users: []primitive.ObjectID{me, other}}

	chats := &fakeChatRepo{
		FindDirectByPairFn: func(_ context.Context, _, _ primitive.ObjectID) (*models.Chat, error) {
			return existing, nil
		},
		CreateFn: func(_ context.Context, _ *models.Chat) error {
			t.Fatal("must not create a second chat for the same pair")
			return nil
		},
	}
	users := &fakeUserRepo{
		FindByIDFn: func(_ context.Context, id primitive.ObjectID) (*models.User, error) {
			return &models.User{ID: id}, nil
		},
	}
	notifier := newFakeNotifier()
	svc := NewChatService(chats, &fakeMessageRepo{}, users, notifier, logger.NewNop())

	resp, err := svc.StartDirectChat(context.Background(), me.Hex(), other.Hex())
	require.NoError(t, err)
	assert.Equal(t, existing.ID, resp.ID)
	assert.Empty(t, notifier.sent, "reopening an existing chat must not notify the other side")
}

func TestStartDirectChatCreatesAndNotifies(t *testing.T) {
	me := primitive.NewObjectID()
	other := primitive.NewObjectID()

	users := &fakeUserRepo{
		FindByIDFn: func(_ context.Context, id primitive.ObjectID) (*models.User, error) {
			return &models.User{ID: id}, nil
		},
	}
	notifier := newFakeNotifier()
	svc := NewChatService(&fakeChatRepo{}, &fakeMessageRepo{}, users, notifier, logger.NewNop())

	resp, err := svc.StartDirectChat(context.Background(), me.Hex(), other.Hex())
	require.NoError(t, err)
	assert.False(t, resp.ID.IsZero())
	assert.False(t, resp.IsGroup)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, ws.EventChatCreated, notifier.sent[0].Type)
	assert.Equal(t, other.Hex(), notifier.sent[0].UserID)
}

func TestStartDirectChatWithSelf(t *testing.T) {
	me := primitive.NewObjectID().Hex()
	svc := NewChatService(&fakeChatRepo{}, &fakeMessageRepo{}, &fakeUserRepo{}, newFakeNotifier(), logger.NewNop())

	_, err := svc.StartDirectChat(context.Background(), me, me)
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestGetChatEnforcesMembership(t *testing.T) {
	chatID := primitive.NewObjectID()
	member := primitive.NewObjectID()

	chats := &fakeChatRepo{
		FindByIDFn: func(_ context.Context, _ primitive.ObjectID) (*models.Chat, error) {
			return &models.Chat{ID: chatID, Users: []primitive.ObjectID{member}}, nil
		},
	}
	svc := NewChatService(chats, &fakeMessageRepo{}, &fakeUserRepo{}, newFakeNotifier(), logger.NewNop())

	_, err := svc.GetChat(context.Background(), chatID.Hex(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrNotMember)

	resp, err := svc.GetChat(context.Background(), chatID.Hex(), member.Hex())
	require.NoError(t, err)
	assert.Equal(t, chatID, resp.ID)
}
