package service

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"linkup-service/internal/models"
	"linkup-service/internal/repository"
	"linkup-service/internal/ws"
	"linkup-service/pkg/logger"
)

// GroupService owns group chats: creation, membership and renames.
type GroupService interface {
	CreateGroup(ctx context.Context, creatorID string, memberIDs []string) (*models.ChatResponse, error)
	Rename(ctx context.Context, chatID, name, currentUserID string) (*models.ChatResponse, error)
	AddMembers(ctx context.Context, chatID string, memberIDs []string) (*models.ChatResponse, error)
	Leave(ctx context.Context, chatID, currentUserID string) error
}

type groupService struct {
	chats    repository.ChatRepository
	messages repository.MessageRepository
	users    repository.UserRepository
	notifier Notifier
	log      *logger.Logger
}

func NewGroupService(
	chats repository.ChatRepository,
	messages repository.MessageRepository,
	users repository.UserRepository,
	notifier Notifier,
	log *logger.Logger,
) GroupService {
	return &groupService{chats: chats, messages: messages, users: users, notifier: notifier, log: log}
}

// CreateGroup creates a group chat for the creator plus the given
// members. An existing group with exactly the same member set is
// returned instead of a duplicate. Every member except the creator is
// told over their live connection.
func (s *groupService) CreateGroup(ctx context.Context, creatorID string, memberIDs []string) (*models.ChatResponse, error) {
	creator, err := primitive.ObjectIDFromHex(creatorID)
	if err != nil {
		return nil, ErrInvalidID
	}

	seen := map[primitive.ObjectID]struct{}{creator: {}}
	members := []primitive.ObjectID{creator}
	for _, id := range memberIDs {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, ErrInvalidID
		}
		if _, dup := seen[oid]; dup {
			continue
		}
		seen[oid] = struct{}{}
		members = append(members, oid)
	}
	if len(members) < 3 {
		return nil, ErrGroupTooSmall
	}

	existing, err := s.chats.FindGroupByMembers(ctx, members)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	if existing != nil {
		return s.assemble(ctx, existing)
	}

	profiles, err := s.users.FindPublicByIDs(ctx, members)
	if err != nil {
		return nil, err
	}
	chat := &models.Chat{
		Users:   members,
		IsGroup: true,
		GroupInfo: &models.GroupInfo{
			Name:        defaultGroupName(profiles),
			Avatar:      models.DefaultGroupAvatar,
			DefaultName: true,
		},
	}
	if err := s.chats.Create(ctx, chat); err != nil {
		return nil, err
	}

	resp, err := s.assemble(ctx, chat)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m == creator {
			continue
		}
		s.notifier.SendToUser(m.Hex(), ws.EventGroupCreated, resp)
	}
	return resp, nil
}

// Rename sets a custom group name and tells the room who changed it.
func (s *groupService) Rename(ctx context.Context, chatID, name, currentUserID string) (*models.ChatResponse, error) {
	chat, uid, err := s.loadGroup(ctx, chatID, currentUserID)
	if err != nil {
		return nil, err
	}

	setter, err := s.users.FindByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	setterName := setter.DisplayName
	if setterName == "" {
		setterName = setter.Name
	}

	if err := s.chats.Rename(ctx, chat.ID, name, setterName); err != nil {
		return nil, err
	}

	s.notifier.BroadcastToRoom(chatID, ws.EventGroupNameUpdated, ws.GroupNameUpdatedPayload{
		GroupID:   chatID,
		GroupName: name,
		UserName:  setterName,
	})

	updated, err := s.chats.FindByID(ctx, chat.ID)
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, updated)
}

// AddMembers appends users to the group and tells each newcomer over
// their live connection.
func (s *groupService) AddMembers(ctx context.Context, chatID string, memberIDs []string) (*models.ChatResponse, error) {
	cid, err := primitive.ObjectIDFromHex(chatID)
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
	if !chat.IsGroup {
		return nil, ErrNotGroupChat
	}

	added := make([]primitive.ObjectID, 0, len(memberIDs))
	for _, id := range memberIDs {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, ErrInvalidID
		}
		if containsID(chat.Users, oid) {
			continue
		}
		added = append(added, oid)
	}
	if len(added) > 0 {
		if err := s.chats.AddMembers(ctx, cid, added); err != nil {
			return nil, err
		}
	}

	updated, err := s.chats.FindByID(ctx, cid)
	if err != nil {
		return nil, err
	}
	resp, err := s.assemble(ctx, updated)
	if err != nil {
		return nil, err
	}
	for _, m := range added {
		s.notifier.SendToUser(m.Hex(), ws.EventAddedToGroup, resp)
	}
	return resp, nil
}

func (s *groupService) Leave(ctx context.Context, chatID, currentUserID string) error {
	chat, uid, err := s.loadGroup(ctx, chatID, currentUserID)
	if err != nil {
		return err
	}
	return s.chats.RemoveMember(ctx, chat.ID, uid)
}

func (s *groupService) loadGroup(ctx context.Context, chatID, userID string) (*models.Chat, primitive.ObjectID, error) {
	cid, err := primitive.ObjectIDFromHex(chatID)
	if err != nil {
		return nil, primitive.NilObjectID, ErrInvalidID
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, primitive.NilObjectID, ErrInvalidID
	}
	chat, err := s.chats.FindByID(ctx, cid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, primitive.NilObjectID, ErrChatNotFound
		}
		return nil, primitive.NilObjectID, err
	}
	if !chat.IsGroup {
		return nil, primitive.NilObjectID, ErrNotGroupChat
	}
	if !containsID(chat.Users, uid) {
		return nil, primitive.NilObjectID, ErrNotMember
	}
	return chat, uid, nil
}

func (s *groupService) assemble(ctx context.Context, chat *models.Chat) (*models.ChatResponse, error) {
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

// defaultGroupName joins member display names until someone renames
// the group.
func defaultGroupName(members []models.PublicUser) string {
	names := make([]string, 0, len(members))
	for _, m := range members {
		name := m.DisplayName
		if name == "" {
			name = m.Name
		}
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}
