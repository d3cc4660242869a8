package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"linkup-service/internal/models"
	"linkup-service/internal/repository"
	"linkup-service/internal/ws"
	"linkup-service/pkg/logger"
)

// ChatService owns direct conversations and the chat listing.
type ChatService interface {
	ListChats(ctx context.Context, userID string) (*models.ChatListResponse, error)
	GetChat(ctx context.Context, chatID, userID string) (*models.ChatResponse, error)
	StartDirectChat(ctx context.Context, currentUserID, otherUserID string) (*models.ChatResponse, error)
}

type chatService struct {
	chats    repository.ChatRepository
	messages repository.MessageRepository
	users    repository.UserRepository
	notifier Notifier
	log      *logger.Logger
}

func NewChatService(
	chats repository.ChatRepository,
	messages repository.MessageRepository,
	users repository.UserRepository,
	notifier Notifier,
	log *logger.Logger,
) ChatService {
	return &chatService{chats: chats, messages: messages, users: users, notifier: notifier, log: log}
}

// ListChats returns the caller's visible chats newest-activity first,
// with per-chat unread counts. Direct chats that never carried a
// message stay hidden until the first message lands.
func (s *chatService) ListChats(ctx context.Context, userID string) (*models.ChatListResponse, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidID
	}

	chats, err := s.chats.FindByUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	responses := make([]models.ChatResponse, 0, len(chats))
	chatIDs := make([]primitive.ObjectID, 0, len(chats))
	for i := range chats {
		resp, err := s.assemble(ctx, &chats[i])
		if err != nil {
			return nil, err
		}
		if !resp.IsGroup && resp.LastMessage == nil {
			continue
		}
		responses = append(responses, *resp)
		chatIDs = append(chatIDs, resp.ID)
	}

	counts, err := s.messages.UnreadCounts(ctx, chatIDs, uid)
	if err != nil {
		return nil, err
	}
	return &models.ChatListResponse{Chats: responses, UnreadCounts: counts}, nil
}

func (s *chatService) GetChat(ctx context.Context, chatID, userID string) (*models.ChatResponse, error) {
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
	return s.assemble(ctx, chat)
}

// StartDirectChat finds or creates the conversation for the unordered
// user pair. Creation tells the other side over their live connection
// so their chat list updates without a refresh.
func (s *chatService) StartDirectChat(ctx context.Context, currentUserID, otherUserID string) (*models.ChatResponse, error) {
	me, err := primitive.ObjectIDFromHex(currentUserID)
	if err != nil {
		return nil, ErrInvalidID
	}
	other, err := primitive.ObjectIDFromHex(otherUserID)
	if err != nil {
		return nil, ErrInvalidID
	}
	if me == other {
		return nil, ErrInvalidID
	}
	if _, err := s.users.FindByID(ctx, other); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	existing, err := s.chats.FindDirectByPair(ctx, me, other)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	if existing != nil {
		return s.assemble(ctx, existing)
	}

	chat := &models.Chat{Users: []primitive.ObjectID{me, other}, IsGroup: false}
	if err := s.chats.Create(ctx, chat); err != nil {
		return nil, err
	}

	resp, err := s.assemble(ctx, chat)
	if err != nil {
		return nil, err
	}
	s.notifier.SendToUser(otherUserID, ws.EventChatCreated, resp)
	return resp, nil
}

// assemble resolves member profiles and the latest message for one
// chat document.
func (s *chatService) assemble(ctx context.Context, chat *models.Chat) (*models.ChatResponse, error) {
	users, err := s.users.FindPublicByIDs(ctx, chat.Users)
	if err != nil {
		return nil, err
	}
	last, err := s.messages.LastByChat(ctx, chat.ID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	return &models.ChatResponse{
		ID:          chat.ID,
		Users:       users,
		IsGroup:     chat.IsGroup,
		GroupInfo:   chat.GroupInfo,
		LastMessage: last,
		CreatedAt:   chat.CreatedAt,
		UpdatedAt:   chat.UpdatedAt,
	}, nil
}
