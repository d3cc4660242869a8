package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"linkup-service/internal/models"
	"linkup-service/pkg/logger"
)

func TestSaveMessageSurvivesLastMessageFailure(t *testing.T) {
	chatID := primitive.NewObjectID()
	sender := primitive.NewObjectID()

	var pointerUpdated bool
	chats := &fakeChatRepo{
		UpdateLastMessageFn: func(_ context.Context, _, _ primitive.ObjectID) error {
			pointerUpdated = true
			return errors.New("write concern timeout")
		},
	}
	svc := NewMessageService(&fakeMessageRepo{}, chats, &fakeUserRepo{}, &fakeDispatcher{}, logger.NewNop())

	msg, err := svc.SaveMessage(context.Background(), &models.SendMessageRequest{
		ChatID: chatID.Hex(),
		Sender: sender.Hex(),
		Text:   "hello",
	})

	require.NoError(t, err, "a failed lastMessage update must not lose the message")
	assert.True(t, pointerUpdated)
	assert.Equal(t, chatID, msg.ChatID)
	assert.Equal(t, "hello", msg.Text)
	assert.False(t, msg.ID.IsZero())
}

func TestSaveMessageKeepsClientTimestamp(t *testing.T) {
	sentAt := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)

	var inserted *models.Message
	messages := &fakeMessageRepo{
		InsertFn: func(_ context.Context, msg *models.Message) error {
			inserted = msg
			msg.ID = primitive.NewObjectID()
			return nil
		},
	}
	svc := NewMessageService(messages, &fakeChatRepo{}, &fakeUserRepo{}, &fakeDispatcher{}, logger.NewNop())

	_, err := svc.SaveMessage(context.Background(), &models.SendMessageRequest{
		ChatID:    primitive.NewObjectID().Hex(),
		Sender:    primitive.NewObjectID().Hex(),
		Text:      "hello",
		CreatedAt: sentAt,
	})
	require.NoError(t, err)
	require.NotNil(t, inserted)
	assert.Equal(t, sentAt, inserted.CreatedAt, "the client's send time must reach the insert")

	// Without a client timestamp the insert sees a zero time and stamps
	// server time itself.
	_, err = svc.SaveMessage(context.Background(), &models.SendMessageRequest{
		ChatID: primitive.NewObjectID().Hex(),
		Sender: primitive.NewObjectID().Hex(),
		Text:   "hi",
	})
	require.NoError(t, err)
	assert.True(t, inserted.CreatedAt.IsZero())
}

func TestSaveMessageRejectsBadIDs(t *testing.T) {
	svc := NewMessageService(&fakeMessageRepo{}, &fakeChatRepo{}, &fakeUserRepo{}, &fakeDispatcher{}, logger.NewNop())

	_, err := svc.SaveMessage(context.Background(), &models.SendMessageRequest{
		ChatID: "nope",
		Sender: primitive.NewObjectID().Hex(),
	})
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestMarkSeenNoMatchReturnsNil(t *testing.T) {
	messages := &fakeMessageRepo{
		MarkSeenFn: func(_ context.Context, _, _ primitive.ObjectID) (*models.Message, error) {
			return nil, mongo.ErrNoDocuments
		},
	}
	svc := NewMessageService(messages, &fakeChatRepo{}, &fakeUserRepo{}, &fakeDispatcher{}, logger.NewNop())

	msg, err := svc.MarkSeen(context.Background(), primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex())
	require.NoError(t, err)
	assert.Nil(t, msg)
}

func TestPushToOfflineSkipsAndContinues(t *testing.T) {
	withSub := primitive.NewObjectID()
	withoutSub := primitive.NewObjectID()
	alsoWithSub := primitive.NewObjectID()

	users := &fakeUserRepo{
		FindByIDFn: func(_ context.Context, id primitive.ObjectID) (*models.User, error) {
			u := &models.User{ID: id}
			if id != withoutSub {
				u.Subscription = &models.PushSubscription{Endpoint: "https://push.example/" + id.Hex()}
			}
			return u, nil
		},
	}
	dispatcher := &fakeDispatcher{err: errors.New("endpoint gone")}
	svc := NewMessageService(&fakeMessageRepo{}, &fakeChatRepo{}, users, dispatcher, logger.NewNop())

	svc.PushToOffline(context.Background(),
		[]string{withSub.Hex(), withoutSub.Hex(), alsoWithSub.Hex()},
		&models.SendMessageRequest{Text: "hi"},
	)

	// The user without a subscription is skipped; a dispatch failure
	// does not stop the remaining recipients.
	assert.Equal(t, []string{withSub.Hex(), alsoWithSub.Hex()}, dispatcher.dispatched)
}

func TestHistoryRequiresMembership(t *testing.T) {
	chatID := primitive.NewObjectID()
	member := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	chats := &fakeChatRepo{
		FindByIDFn: func(_ context.Context, _ primitive.ObjectID) (*models.Chat, error) {
			return &models.Chat{ID: chatID, Users: []primitive.ObjectID{member, primitive.NewObjectID()}}, nil
		},
	}
	var gotLimit int64
	messages := &fakeMessageRepo{
		FindByChatFn: func(_ context.Context, _ primitive.ObjectID, limit int64, _ *time.Time) ([]models.Message, error) {
			gotLimit = limit
			return []models.Message{}, nil
		},
	}
	svc := NewMessageService(messages, chats, &fakeUserRepo{}, &fakeDispatcher{}, logger.NewNop())

	_, err := svc.History(context.Background(), chatID.Hex(), stranger.Hex(), 0, nil)
	assert.ErrorIs(t, err, ErrNotMember)

	_, err = svc.History(context.Background(), chatID.Hex(), member.Hex(), 0, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(defaultHistoryLimit), gotLimit)

	_, err = svc.History(context.Background(), chatID.Hex(), member.Hex(), 500, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(maxHistoryLimit), gotLimit)
}
