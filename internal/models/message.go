package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Entities

// Message is a single chat message. ReadBy only ever grows and never
// contains the sender.
type Message struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	ChatID    primitive.ObjectID   `bson:"chatId" json:"chatId"`
	Sender    primitive.ObjectID   `bson:"sender" json:"sender"`
	Text      string               `bson:"text" json:"text"`
	ReadBy    []primitive.ObjectID `bson:"readBy" json:"readBy"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// Request/response shapes

// SendMessageRequest is the payload of both the live sendMessage action
// and the REST fallback. SenderName and SenderAvatar only feed the push
// notification text; they are not persisted. CreatedAt is the client's
// send time and falls back to server time when absent.
type SendMessageRequest struct {
	ChatID       string    `json:"chatId" binding:"required"`
	Sender       string    `json:"sender" binding:"required"`
	SenderName   string    `json:"senderName"`
	SenderAvatar string    `json:"senderAvatar"`
	Text         string    `json:"text" binding:"required"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

type MessageSeenRequest struct {
	MessageID string `json:"messageId" binding:"required"`
	UserID    string `json:"userId" binding:"required"`
}
