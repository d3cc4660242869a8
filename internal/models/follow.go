package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Follow is a directed edge, unique per (follower, following) pair.
// The denormalized counters on User move atomically with edge writes.
type Follow struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FollowerID  primitive.ObjectID `bson:"followerId" json:"followerId"`
	FollowingID primitive.ObjectID `bson:"followingId" json:"followingId"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

type FollowStatus struct {
	Following  bool `json:"following"`
	FollowedBy bool `json:"followedBy"`
	Mutual     bool `json:"mutual"`
}

// FollowedUser is a listing entry with the caller's own follow state.
type FollowedUser struct {
	PublicUser
	IsFollowing bool `json:"isFollowing"`
}
