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

type NotificationRepository interface {
	UpsertFollow(ctx context.Context, notif *models.Notification) error
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) error
}

type notificationRepository struct {
	coll *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) NotificationRepository {
	return &notificationRepository{coll: db.Collection("notifications")}
}

// UpsertFollow replaces the existing follow notification for the same
// (recipient, actor) pair so re-follows refresh instead of duplicating.
func (r *notificationRepository) UpsertFollow(ctx context.Context, notif *models.Notification) error {
	now := time.Now().UTC()
	_, err := r.coll.UpdateOne(ctx,
		bson.M{
			"userId":      notif.UserID,
			"type":        models.NotificationTypeFollow,
			"content._id": notif.Content.ID,
		},
		bson.M{
			"$set": bson.M{
				"text":      notif.Text,
				"read":      false,
				"content":   notif.Content,
				"updatedAt": now,
			},
			"$setOnInsert": bson.M{
				"userId":    notif.UserID,
				"type":      models.NotificationTypeFollow,
				"createdAt": now,
			},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *notificationRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	cur, err := r.coll.Find(ctx,
		bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var notifs []models.Notification
	if err := cur.All(ctx, &notifs); err != nil {
		return nil, err
	}
	return notifs, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.coll.UpdateMany(ctx,
		bson.M{"userId": userID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	return err
}
