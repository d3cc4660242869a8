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

// FollowService owns the follow graph and its fan-out: counters,
// notifications and live events.
type FollowService interface {
	Follow(ctx context.Context, followerID, followingID string) error
	Unfollow(ctx context.Context, followerID, followingID string) error
	Status(ctx context.Context, viewerID, targetID string) (*models.FollowStatus, error)
	Followers(ctx context.Context, userID, viewerID string, skip, limit int64) ([]models.FollowedUser, error)
	Following(ctx context.Context, userID, viewerID string, skip, limit int64) ([]models.FollowedUser, error)
	Mutuals(ctx context.Context, userID string) ([]models.PublicUser, error)
}

type followService struct {
	follows       repository.FollowRepository
	users         repository.UserRepository
	notifications repository.NotificationRepository
	notifier      Notifier
	log           *logger.Logger
}

func NewFollowService(
	follows repository.FollowRepository,
	users repository.UserRepository,
	notifications repository.NotificationRepository,
	notifier Notifier,
	log *logger.Logger,
) FollowService {
	return &followService{
		follows:       follows,
		users:         users,
		notifications: notifications,
		notifier:      notifier,
		log:           log,
	}
}

// Follow creates the edge and, only when the edge is new, bumps both
// counters, upserts the target's notification and emits the live
// events. Re-following is a silent success with no side effects.
func (s *followService) Follow(ctx context.Context, followerID, followingID string) error {
	follower, following, err := parsePair(followerID, followingID)
	if err != nil {
		return err
	}
	if follower == following {
		return ErrSelfFollow
	}

	followerUser, err := s.users.FindByID(ctx, follower)
	if err != nil {
		return lookupErr(err)
	}
	if _, err := s.users.FindByID(ctx, following); err != nil {
		return lookupErr(err)
	}

	err = s.follows.Create(ctx, &models.Follow{FollowerID: follower, FollowingID: following})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return err
	}

	if err := s.users.AdjustFollowCounts(ctx, follower, following, 1); err != nil {
		s.log.Warn("adjust follow counters", "error", err)
	}

	notif := &models.Notification{
		UserID: following,
		Type:   models.NotificationTypeFollow,
		Text:   displayName(followerUser) + " started following you",
		Content: models.NotificationContent{
			ID:       follower,
			UserName: displayName(followerUser),
			Avatar:   followerUser.Avatar,
		},
	}
	if err := s.notifications.UpsertFollow(ctx, notif); err != nil {
		s.log.Warn("upsert follow notification", "error", err)
	}

	payload := ws.FollowChangedPayload{FollowerID: followerID, FollowingID: followingID}
	s.notifier.SendToUser(followingID, ws.EventUserFollowed, payload)
	s.notifier.SendToUser(followingID, ws.EventNotification, notif)
	return nil
}

// Unfollow removes the edge. Removing an edge that does not exist is
// an error so the client can resync its follow state.
func (s *followService) Unfollow(ctx context.Context, followerID, followingID string) error {
	follower, following, err := parsePair(followerID, followingID)
	if err != nil {
		return err
	}

	deleted, err := s.follows.Delete(ctx, follower, following)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFollowing
	}

	if err := s.users.AdjustFollowCounts(ctx, follower, following, -1); err != nil {
		s.log.Warn("adjust follow counters", "error", err)
	}

	s.notifier.SendToUser(followingID, ws.EventUserUnfollowed, ws.FollowChangedPayload{
		FollowerID:  followerID,
		FollowingID: followingID,
	})
	return nil
}

func (s *followService) Status(ctx context.Context, viewerID, targetID string) (*models.FollowStatus, error) {
	viewer, target, err := parsePair(viewerID, targetID)
	if err != nil {
		return nil, err
	}

	following, err := s.follows.Exists(ctx, viewer, target)
	if err != nil {
		return nil, err
	}
	followedBy, err := s.follows.Exists(ctx, target, viewer)
	if err != nil {
		return nil, err
	}
	return &models.FollowStatus{
		Following:  following,
		FollowedBy: followedBy,
		Mutual:     following && followedBy,
	}, nil
}

func (s *followService) Followers(ctx context.Context, userID, viewerID string, skip, limit int64) ([]models.FollowedUser, error) {
	uid, viewer, err := parsePair(userID, viewerID)
	if err != nil {
		return nil, err
	}
	ids, err := s.follows.FollowerIDsPage(ctx, uid, skip, limit)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, ids, viewer)
}

func (s *followService) Following(ctx context.Context, userID, viewerID string, skip, limit int64) ([]models.FollowedUser, error) {
	uid, viewer, err := parsePair(userID, viewerID)
	if err != nil {
		return nil, err
	}
	ids, err := s.follows.FollowingIDsPage(ctx, uid, skip, limit)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, ids, viewer)
}

// Mutuals lists the users who follow userID and are followed back,
// the pool a group chat can be built from.
func (s *followService) Mutuals(ctx context.Context, userID string) ([]models.PublicUser, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidID
	}

	following, err := s.follows.FollowingIDs(ctx, uid)
	if err != nil {
		return nil, err
	}
	followers, err := s.follows.FollowerIDs(ctx, uid)
	if err != nil {
		return nil, err
	}

	followerSet := make(map[primitive.ObjectID]struct{}, len(followers))
	for _, id := range followers {
		followerSet[id] = struct{}{}
	}
	mutual := make([]primitive.ObjectID, 0, len(following))
	for _, id := range following {
		if _, ok := followerSet[id]; ok {
			mutual = append(mutual, id)
		}
	}
	if len(mutual) == 0 {
		return []models.PublicUser{}, nil
	}
	return s.users.FindPublicByIDs(ctx, mutual)
}

// decorate resolves profiles and marks the ones the viewer already
// follows.
func (s *followService) decorate(ctx context.Context, ids []primitive.ObjectID, viewer primitive.ObjectID) ([]models.FollowedUser, error) {
	if len(ids) == 0 {
		return []models.FollowedUser{}, nil
	}
	profiles, err := s.users.FindPublicByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	viewerFollowing, err := s.follows.FollowingIDs(ctx, viewer)
	if err != nil {
		return nil, err
	}
	followingSet := make(map[primitive.ObjectID]struct{}, len(viewerFollowing))
	for _, id := range viewerFollowing {
		followingSet[id] = struct{}{}
	}

	out := make([]models.FollowedUser, 0, len(profiles))
	for _, p := range profiles {
		_, isFollowing := followingSet[p.ID]
		out = append(out, models.FollowedUser{PublicUser: p, IsFollowing: isFollowing})
	}
	return out, nil
}

func parsePair(a, b string) (primitive.ObjectID, primitive.ObjectID, error) {
	first, err := primitive.ObjectIDFromHex(a)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, ErrInvalidID
	}
	second, err := primitive.ObjectIDFromHex(b)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, ErrInvalidID
	}
	return first, second, nil
}

func lookupErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrUserNotFound
	}
	return err
}

func displayName(u *models.User) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Name
}
