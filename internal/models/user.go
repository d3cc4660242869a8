package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultAvatar = "https://cdn.pixabay.com/photo/2015/10/05/22/37/blank-profile-picture-973460_960_720.png"

// Entities

// User is the account document. Online status is never stored here; it
// is derived from the presence registry at query time.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	LastName       string             `bson:"lastName,omitempty" json:"lastName,omitempty"`
	UserName       string             `bson:"userName,omitempty" json:"userName,omitempty"`
	DisplayName    string             `bson:"displayName,omitempty" json:"displayName,omitempty"`
	Email          string             `bson:"email" json:"email"`
	Password       string             `bson:"password" json:"-"`
	Avatar         string             `bson:"avatar" json:"avatar"`
	FollowersCount int64              `bson:"followersCount" json:"followersCount"`
	FollowingCount int64              `bson:"followingCount" json:"followingCount"`
	Verified       bool               `bson:"verified" json:"verified"`
	Subscription   *PushSubscription  `bson:"subscription,omitempty" json:"-"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PushSubscription is the browser push endpoint stored verbatim for the
// push pipeline.
type PushSubscription struct {
	Endpoint string            `bson:"endpoint" json:"endpoint"`
	Keys     map[string]string `bson:"keys" json:"keys"`
}

// Request/response shapes

// PublicUser is the projection returned by search, listings and chat
// membership, never including credentials or codes.
type PublicUser struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	Name           string             `bson:"name" json:"name"`
	LastName       string             `bson:"lastName,omitempty" json:"lastName,omitempty"`
	UserName       string             `bson:"userName,omitempty" json:"userName,omitempty"`
	DisplayName    string             `bson:"displayName,omitempty" json:"displayName,omitempty"`
	Avatar         string             `bson:"avatar" json:"avatar"`
	FollowersCount int64              `bson:"followersCount" json:"followersCount"`
	FollowingCount int64              `bson:"followingCount" json:"followingCount"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	LastName string `json:"lastName"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type VerifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  string `json:"userId"`
	Token   string `json:"token"`
}

type UsernameRequest struct {
	Username    string `json:"username" binding:"required"`
	DisplayName string `json:"displayName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

type SubscribeRequest struct {
	UserID       string            `json:"userId" binding:"required"`
	Subscription *PushSubscription `json:"subscription" binding:"required"`
}

// ProfileInfo decorates a public profile with the viewer's relation and
// the live presence state.
type ProfileInfo struct {
	PublicUser
	Relation string `json:"relation"`
	IsOnline bool   `json:"isOnline"`
}
