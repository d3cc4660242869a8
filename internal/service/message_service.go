package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"linkup-service/internal/models"
	"linkup-service/internal/repository"
	"linkup-service/pkg/logger"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
)

// MessageService persists messages and read receipts. The websocket
// router drives it for real-time traffic; the REST handlers use the
// same methods as the reconnect fallback path.
type MessageService interface {
	SaveMessage(ctx context.Context, req *models.SendMessageRequest) (*models.Message, error)
	ChatMemberIDs(ctx context.Context, chatID string) ([]string, error)
	MarkChatRead(ctx context.Context, chatID, userID string) (int64, error)
	MarkSeen(ctx context.Context, messageID, userID string) (*models.Message, error)
	PushToOffline(ctx context.Context, userIDs []string, req *models.SendMessageRequest)
	History(ctx context.Context, chatID, userID string, limit int64, before *time.Time) ([]models.Message, error)
}

type messageService struct {
	messages repository.MessageRepository
	chats    repository.ChatRepository
	users    repository.UserRepository
	push     PushDispatcher
	log      *logger.Logger
}

func NewMessageService(
	messages repository.MessageRepository,
	chats repository.ChatRepository,
	users repository.UserRepository,
	push PushDispatcher,
	log *logger.Logger,
) MessageService {
	return &messageService{messages: messages, chats: chats, users: users, push: push, log: log}
}

// SaveMessage inserts the message and then points the chat's
// lastMessage at it. The pointer update is best effort: a failure
// there never loses the message itself.
func (s *messageService) SaveMessage(ctx context.Context, req *models.SendMessageRequest) (*models.Message, error) {
	chatID, err := primitive.ObjectIDFromHex(req.ChatID)
	if err != nil {
		return nil, ErrInvalidID
	}
	sender, err := primitive.ObjectIDFromHex(req.Sender)
	if err != nil {
		return nil, ErrInvalidID
	}

	msg := &models.Message{
		ChatID:    chatID,
		Sender:    sender,
		Text:      req.Text,
		CreatedAt: req.CreatedAt,
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, err
	}

	if err := s.chats.UpdateLastMessage(ctx, chatID, msg.ID); err != nil {
		s.log.Warn("update lastMessage", "chatId", req.ChatID, "error", err)
	}
	return msg, nil
}

func (s *messageService) ChatMemberIDs(ctx context.Context, chatID string) ([]string, error) {
	id, err := primitive.ObjectIDFromHex(chatID)
	if err != nil {
		return nil, ErrInvalidID
	}
	chat, err := s.chats.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	members := make([]string, 0, len(chat.Users))
	for _, u := range chat.Users {
		members = append(members, u.Hex())
	}
	return members, nil
}

func (s *messageService) MarkChatRead(ctx context.Context, chatID, userID string) (int64, error) {
	cid, err := primitive.ObjectIDFromHex(chatID)
	if err != nil {
		return 0, ErrInvalidID
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return 0, ErrInvalidID
	}
	return s.messages.MarkChatRead(ctx, cid, uid)
}

// MarkSeen returns (nil, nil) when no message matched, either because
// the id is unknown or because the reader is the sender.
func (s *messageService) MarkSeen(ctx context.Context, messageID, userID string) (*models.Message, error) {
	mid, err := primitive.ObjectIDFromHex(messageID)
	if err != nil {
		return nil, ErrInvalidID
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidID
	}
	msg, err := s.messages.MarkSeen(ctx, mid, uid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return msg, nil
}

// PushToOffline dispatches one push per recipient. Failures are logged
// and skipped so one bad subscription never blocks the rest.
func (s *messageService) PushToOffline(ctx context.Context, userIDs []string, req *models.SendMessageRequest) {
	for _, userID := range userIDs {
		uid, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			continue
		}
		user, err := s.users.FindByID(ctx, uid)
		if err != nil {
			s.log.Warn("push recipient lookup", "userId", userID, "error", err)
			continue
		}
		if user.Subscription == nil {
			continue
		}
		if err := s.push.Dispatch(ctx, userID, user.Subscription, req); err != nil {
			s.log.Warn("push dispatch", "userId", userID, "error", err)
		}
	}
}

// History returns messages newest first, for chat members only.
func (s *messageService) History(ctx context.Context, chatID, userID string, limit int64, before *time.Time) ([]models.Message, error) {
	cid, err := primitive.ObjectIDFromHex(chatID)
	if err != nil {
		return nil, ErrInvalidID
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidID
	}

	chat, err := s.chats.FindByID(ctx, cid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	if !containsID(chat.Users, uid) {
		return nil, ErrNotMember
	}

	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.messages.FindByChat(ctx, cid, limit, before)
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
