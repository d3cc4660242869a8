package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	NotificationTypeFollow  = "follow"
	NotificationTypeMessage = "message"
)

// Notification is a persisted per-user notification. Follow
// notifications are upserted per (recipient, actor) pair so repeated
// follow/unfollow cycles do not pile up.
type Notification struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID  `bson:"userId" json:"userId"`
	Type      string              `bson:"type" json:"type"`
	Text      string              `bson:"text" json:"text"`
	Read      bool                `bson:"read" json:"read"`
	Content   NotificationContent `bson:"content" json:"content"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// NotificationContent identifies the actor the notification is about.
type NotificationContent struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	UserName string             `bson:"userName" json:"userName"`
	Avatar   string             `bson:"avatar" json:"avatar"`
}
