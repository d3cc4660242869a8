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

type MessageRepository interface {
	Insert(ctx context.Context, msg *models.Message) error
	FindByChat(ctx context.Context, chatID primitive.ObjectID, limit int64, before *time.Time) ([]models.Message, error)
	LastByChat(ctx context.Context, chatID primitive.ObjectID) (*models.Message, error)
	MarkChatRead(ctx context.Context, chatID, userID primitive.ObjectID) (int64, error)
	MarkSeen(ctx context.Context, messageID, userID primitive.ObjectID) (*models.Message, error)
	UnreadCounts(ctx context.Context, chatIDs []primitive.ObjectID, userID primitive.ObjectID) ([]models.UnreadCount, error)
}

type messageRepository struct {
	coll *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) MessageRepository {
	return &messageRepository{coll: db.Collection("messages")}
}

func (r *messageRepository) Insert(ctx context.Context, msg *models.Message) error {
	now := time.Now().UTC()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now
	}
	msg.UpdatedAt = now
	if msg.ReadBy == nil {
		msg.ReadBy = []primitive.ObjectID{}
	}
	res, err := r.coll.InsertOne(ctx, msg)
	if err != nil {
		return err
	}
	msg.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByChat returns the newest page first; the caller reverses for
// display. A before cursor fetches the page preceding that timestamp.
func (r *messageRepository) FindByChat(ctx context.Context, chatID primitive.ObjectID, limit int64, before *time.Time) ([]models.Message, error) {
	filter := bson.M{"chatId": chatID}
	if before != nil {
		filter["createdAt"] = bson.M{"$lt": *before}
	}

	cur, err := r.coll.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var messages []models.Message
	if err := cur.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) LastByChat(ctx context.Context, chatID primitive.ObjectID) (*models.Message, error) {
	var msg models.Message
	err := r.coll.FindOne(ctx,
		bson.M{"chatId": chatID},
		options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	).Decode(&msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// MarkChatRead adds the reader to every qualifying message in one bulk
// update and reports how many documents actually changed. $addToSet
// keeps the write idempotent under concurrent opens.
func (r *messageRepository) MarkChatRead(ctx context.Context, chatID, userID primitive.ObjectID) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{
			"chatId": chatID,
			"sender": bson.M{"$ne": userID},
			"readBy": bson.M{"$ne": userID},
		},
		bson.M{"$addToSet": bson.M{"readBy": userID}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// MarkSeen adds the reader to one message's readBy, refusing the
// sender's own messages, and returns the updated document. A no-match
// returns mongo.ErrNoDocuments for the caller to drop silently.
func (r *messageRepository) MarkSeen(ctx context.Context, messageID, userID primitive.ObjectID) (*models.Message, error) {
	var msg models.Message
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{
			"_id":    messageID,
			"sender": bson.M{"$ne": userID},
		},
		bson.M{"$addToSet": bson.M{"readBy": userID}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// UnreadCounts groups unread totals per chat with the same predicate
// the live read-receipt path uses: not sent by the user and not yet in
// readBy.
func (r *messageRepository) UnreadCounts(ctx context.Context, chatIDs []primitive.ObjectID, userID primitive.ObjectID) ([]models.UnreadCount, error) {
	cur, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"chatId": bson.M{"$in": chatIDs},
			"readBy": bson.M{"$ne": userID},
			"sender": bson.M{"$ne": userID},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$chatId",
			"count": bson.M{"$sum": 1},
		}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var counts []models.UnreadCount
	if err := cur.All(ctx, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}
