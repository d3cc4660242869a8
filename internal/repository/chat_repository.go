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

type ChatRepository interface {
	Create(ctx context.Context, chat *models.Chat) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Chat, error)
	FindDirectByPair(ctx context.Context, a, b primitive.ObjectID) (*models.Chat, error)
	FindGroupByMembers(ctx context.Context, memberIDs []primitive.ObjectID) (*models.Chat, error)
	UpdateLastMessage(ctx context.Context, chatID, messageID primitive.ObjectID) error
	AddMembers(ctx context.Context, chatID primitive.ObjectID, userIDs []primitive.ObjectID) error
	RemoveMember(ctx context.Context, chatID, userID primitive.ObjectID) error
	Rename(ctx context.Context, chatID primitive.ObjectID, name, setBy string) error
}

type chatRepository struct {
	coll *mongo.Collection
}

func NewChatRepository(db *mongo.Database) ChatRepository {
	return &chatRepository{coll: db.Collection("chats")}
}

func (r *chatRepository) Create(ctx context.Context, chat *models.Chat) error {
	now := time.Now().UTC()
	chat.CreatedAt = now
	chat.UpdatedAt = now
	res, err := r.coll.InsertOne(ctx, chat)
	if err != nil {
		return err
	}
	chat.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *chatRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error) {
	var chat models.Chat
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&chat)
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Chat, error) {
	cur, err := r.coll.Find(ctx,
		bson.M{"users": userID},
		options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var chats []models.Chat
	if err := cur.All(ctx, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// FindDirectByPair resolves a two-person chat by its unordered member
// pair, the identity direct chats are deduplicated on.
func (r *chatRepository) FindDirectByPair(ctx context.Context, a, b primitive.ObjectID) (*models.Chat, error) {
	var chat models.Chat
	err := r.coll.FindOne(ctx, bson.M{
		"isGroup": false,
		"users":   bson.M{"$all": bson.A{a, b}, "$size": 2},
	}).Decode(&chat)
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepository) FindGroupByMembers(ctx context.Context, memberIDs []primitive.ObjectID) (*models.Chat, error) {
	var chat models.Chat
	err := r.coll.FindOne(ctx, bson.M{
		"isGroup": true,
		"users":   bson.M{"$all": memberIDs, "$size": len(memberIDs)},
	}).Decode(&chat)
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepository) UpdateLastMessage(ctx context.Context, chatID, messageID primitive.ObjectID) error {
	_, err := r.coll.UpdateByID(ctx, chatID, bson.M{"$set": bson.M{
		"lastMessage": messageID,
		"updatedAt":   time.Now().UTC(),
	}})
	return err
}

func (r *chatRepository) AddMembers(ctx context.Context, chatID primitive.ObjectID, userIDs []primitive.ObjectID) error {
	_, err := r.coll.UpdateByID(ctx, chatID, bson.M{
		"$addToSet": bson.M{"users": bson.M{"$each": userIDs}},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	})
	return err
}

func (r *chatRepository) RemoveMember(ctx context.Context, chatID, userID primitive.ObjectID) error {
	_, err := r.coll.UpdateByID(ctx, chatID, bson.M{
		"$pull": bson.M{"users": userID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	return err
}

func (r *chatRepository) Rename(ctx context.Context, chatID primitive.ObjectID, name, setBy string) error {
	_, err := r.coll.UpdateByID(ctx, chatID, bson.M{"$set": bson.M{
		"groupInfo.name":        name,
		"groupInfo.setBy":       setBy,
		"groupInfo.defaultName": false,
		"updatedAt":             time.Now().UTC(),
	}})
	return err
}
