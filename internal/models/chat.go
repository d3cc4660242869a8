package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultGroupAvatar = "/images/groupChat.png"

// Entities

// GroupInfo holds group metadata. DefaultName stays true until a member
// renames the group explicitly.
type GroupInfo struct {
	Name        string `bson:"name" json:"name"`
	Avatar      string `bson:"avatar" json:"avatar"`
	SetBy       string `bson:"setBy" json:"setBy"`
	DefaultName bool   `bson:"defaultName" json:"defaultName"`
}

// Chat is the conversation document. Non-group chats always have
// exactly two distinct members and are identified by the unordered
// member pair.
type Chat struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Users       []primitive.ObjectID `bson:"users" json:"-"`
	IsGroup     bool                 `bson:"isGroup" json:"isGroup"`
	GroupInfo   *GroupInfo           `bson:"groupInfo,omitempty" json:"groupInfo,omitempty"`
	LastMessage *primitive.ObjectID  `bson:"lastMessage,omitempty" json:"-"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// Request/response shapes

// ChatResponse is a chat with its members and last message resolved,
// the shape both the REST listing and the socket chat events carry.
type ChatResponse struct {
	ID          primitive.ObjectID `json:"id"`
	Users       []PublicUser       `json:"users"`
	IsGroup     bool               `json:"isGroup"`
	GroupInfo   *GroupInfo         `json:"groupInfo,omitempty"`
	LastMessage *Message           `json:"lastMessage"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// UnreadCount pairs a chat with the caller's number of unread messages,
// computed with the same predicate the live protocol uses.
type UnreadCount struct {
	ChatID primitive.ObjectID `bson:"_id" json:"chatId"`
	Count  int64              `bson:"count" json:"count"`
}

type ChatListResponse struct {
	Chats        []ChatResponse `json:"chats"`
	UnreadCounts []UnreadCount  `json:"unreadCounts"`
}

type CreateGroupRequest struct {
	UserIDs []string `json:"userIds" binding:"required"`
}

type RenameGroupRequest struct {
	GroupName string `json:"groupName" binding:"required"`
}

type AddMembersRequest struct {
	GroupID string   `json:"groupId" binding:"required"`
	UserIDs []string `json:"userIds" binding:"required"`
}
