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

// publicProjection limits user reads to the fields safe to hand out.
var publicProjection = bson.M{
	"name": 1, "lastName": 1, "userName": 1, "displayName": 1,
	"avatar": 1, "followersCount": 1, "followingCount": 1, "createdAt": 1,
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindPublicByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.PublicUser, error)
	Search(ctx context.Context, query string, skip, limit int64) ([]models.PublicUser, error)
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	AdjustFollowCounts(ctx context.Context, followerID, followingID primitive.ObjectID, delta int) error
	SetSubscription(ctx context.Context, id primitive.ObjectID, sub *models.PushSubscription) error
	DeleteUnverifiedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type userRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{coll: db.Collection("users")}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	res, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		return err
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.coll.FindOne(ctx, bson.M{"userName": username}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindPublicByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.PublicUser, error) {
	cur, err := r.coll.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(publicProjection),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.PublicUser
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Search(ctx context.Context, query string, skip, limit int64) ([]models.PublicUser, error) {
	regex := primitive.Regex{Pattern: query, Options: "i"}
	filter := bson.M{"$or": []bson.M{
		{"name": regex},
		{"lastName": regex},
		{"userName": regex},
	}}

	cur, err := r.coll.Find(ctx, filter, options.Find().
		SetProjection(publicProjection).
		SetSkip(skip).
		SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.PublicUser
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now().UTC()
	_, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": fields})
	return err
}

// AdjustFollowCounts moves both denormalized counters with atomic
// increments so concurrent follow traffic cannot lose updates.
func (r *userRepository) AdjustFollowCounts(ctx context.Context, followerID, followingID primitive.ObjectID, delta int) error {
	if _, err := r.coll.UpdateByID(ctx, followerID,
		bson.M{"$inc": bson.M{"followingCount": delta}}); err != nil {
		return err
	}
	_, err := r.coll.UpdateByID(ctx, followingID,
		bson.M{"$inc": bson.M{"followersCount": delta}})
	return err
}

func (r *userRepository) SetSubscription(ctx context.Context, id primitive.ObjectID, sub *models.PushSubscription) error {
	_, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{"subscription": sub}})
	return err
}

func (r *userRepository) DeleteUnverifiedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{
		"verified":  false,
		"createdAt": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
