package repository

import (
	"context"
	"time"

	"linkup-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FollowRepository interface {
	Create(ctx context.Context, follow *models.Follow) error
	Delete(ctx context.Context, followerID, followingID primitive.ObjectID) (bool, error)
	Exists(ctx context.Context, followerID, followingID primitive.ObjectID) (bool, error)
	FollowingIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
	FollowerIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
	FollowerIDsPage(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]primitive.ObjectID, error)
	FollowingIDsPage(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]primitive.ObjectID, error)
}

type followRepository struct {
	coll *mongo.Collection
}

func NewFollowRepository(db *mongo.Database) FollowRepository {
	return &followRepository{coll: db.Collection("follows")}
}

// Create inserts the edge. The unique (followerId, followingId) index
// turns a duplicate follow into a duplicate-key error the service maps
// to idempotent success.
func (r *followRepository) Create(ctx context.Context, follow *models.Follow) error {
	follow.CreatedAt = time.Now().UTC()
	res, err := r.coll.InsertOne(ctx, follow)
	if err != nil {
		return err
	}
	follow.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followingID primitive.ObjectID) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{
		"followerId":  followerID,
		"followingId": followingID,
	})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID primitive.ObjectID) (bool, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{
		"followerId":  followerID,
		"followingId": followingID,
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *followRepository) FollowingIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return r.edgeIDs(ctx, bson.M{"followerId": userID}, "followingId", 0, 0)
}

func (r *followRepository) FollowerIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return r.edgeIDs(ctx, bson.M{"followingId": userID}, "followerId", 0, 0)
}

func (r *followRepository) FollowerIDsPage(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]primitive.ObjectID, error) {
	return r.edgeIDs(ctx, bson.M{"followingId": userID}, "followerId", skip, limit)
}

func (r *followRepository) FollowingIDsPage(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]primitive.ObjectID, error) {
	return r.edgeIDs(ctx, bson.M{"followerId": userID}, "followingId", skip, limit)
}

func (r *followRepository) edgeIDs(ctx context.Context, filter bson.M, field string, skip, limit int64) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{field: 1})
	if skip > 0 {
		opts.SetSkip(skip)
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var edges []models.Follow
	if err := cur.All(ctx, &edges); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(edges))
	for _, e := range edges {
		if field == "followerId" {
			ids = append(ids, e.FollowerID)
		} else {
			ids = append(ids, e.FollowingID)
		}
	}
	return ids, nil
}
