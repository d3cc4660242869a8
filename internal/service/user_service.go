package service

import (
	"context"
	"errors"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"linkup-service/internal/models"
	"linkup-service/internal/repository"
	"linkup-service/pkg/logger"
)

// UserService owns profiles, search and push subscriptions.
type UserService interface {
	Search(ctx context.Context, viewerID, query string, skip, limit int64) ([]models.PublicUser, error)
	Profile(ctx context.Context, viewerID, username string) (*models.ProfileInfo, error)
	MyInfo(ctx context.Context, userID string) (*models.User, error)
	Subscribe(ctx context.Context, userID string, sub *models.PushSubscription) error
	UpdateAvatar(ctx context.Context, userID, avatarURL string) error
}

type userService struct {
	users    repository.UserRepository
	follows  repository.FollowRepository
	notifier Notifier
	log      *logger.Logger
}

func NewUserService(
	users repository.UserRepository,
	follows repository.FollowRepository,
	notifier Notifier,
	log *logger.Logger,
) UserService {
	return &userService{users: users, follows: follows, notifier: notifier, log: log}
}

// Search matches name, last name and username. Results are reordered
// so the viewer comes first, then people they follow, then everyone
// else; ties keep the repository order.
func (s *userService) Search(ctx context.Context, viewerID, query string, skip, limit int64) ([]models.PublicUser, error) {
	viewer, err := primitive.ObjectIDFromHex(viewerID)
	if err != nil {
		return nil, ErrInvalidID
	}
	if query == "" {
		return []models.PublicUser{}, nil
	}

	results, err := s.users.Search(ctx, query, skip, limit)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return results, nil
	}

	followingIDs, err := s.follows.FollowingIDs(ctx, viewer)
	if err != nil {
		return nil, err
	}
	following := make(map[primitive.ObjectID]struct{}, len(followingIDs))
	for _, id := range followingIDs {
		following[id] = struct{}{}
	}

	rank := func(u models.PublicUser) int {
		if u.ID == viewer {
			return 0
		}
		if _, ok := following[u.ID]; ok {
			return 1
		}
		return 2
	}
	sort.SliceStable(results, func(i, j int) bool {
		return rank(results[i]) < rank(results[j])
	})
	return results, nil
}

// Profile resolves a username to a public profile decorated with the
// viewer's relation and live presence.
func (s *userService) Profile(ctx context.Context, viewerID, username string) (*models.ProfileInfo, error) {
	viewer, err := primitive.ObjectIDFromHex(viewerID)
	if err != nil {
		return nil, ErrInvalidID
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, lookupErr(err)
	}

	relation := "none"
	switch {
	case user.ID == viewer:
		relation = "self"
	default:
		following, err := s.follows.Exists(ctx, viewer, user.ID)
		if err != nil {
			return nil, err
		}
		followedBy, err := s.follows.Exists(ctx, user.ID, viewer)
		if err != nil {
			return nil, err
		}
		switch {
		case following && followedBy:
			relation = "mutual"
		case following:
			relation = "following"
		case followedBy:
			relation = "follower"
		}
	}

	return &models.ProfileInfo{
		PublicUser: models.PublicUser{
			ID:             user.ID,
			Name:           user.Name,
			LastName:       user.LastName,
			UserName:       user.UserName,
			DisplayName:    user.DisplayName,
			Avatar:         user.Avatar,
			FollowersCount: user.FollowersCount,
			FollowingCount: user.FollowingCount,
			CreatedAt:      user.CreatedAt,
		},
		Relation: relation,
		IsOnline: s.notifier.IsOnline(user.ID.Hex()),
	}, nil
}

func (s *userService) MyInfo(ctx context.Context, userID string) (*models.User, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidID
	}
	user, err := s.users.FindByID(ctx, uid)
	if err != nil {
		return nil, lookupErr(err)
	}
	return user, nil
}

func (s *userService) Subscribe(ctx context.Context, userID string, sub *models.PushSubscription) error {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrInvalidID
	}
	return s.users.SetSubscription(ctx, uid, sub)
}

func (s *userService) UpdateAvatar(ctx context.Context, userID, avatarURL string) error {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrInvalidID
	}
	err = s.users.Update(ctx, uid, bson.M{"avatar": avatarURL})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrUserNotFound
	}
	return err
}
