package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"linkup-service/internal/models"
	"linkup-service/internal/repository"
)

// NotificationService lists a user's notifications and clears the
// unread flag.
type NotificationService interface {
	List(ctx context.Context, userID string) ([]models.Notification, error)
	MarkAllRead(ctx context.Context, userID string) error
}

type notificationService struct {
	notifications repository.NotificationRepository
}

func NewNotificationService(notifications repository.NotificationRepository) NotificationService {
	return &notificationService{notifications: notifications}
}

func (s *notificationService) List(ctx context.Context, userID string) ([]models.Notification, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidID
	}
	return s.notifications.FindByUser(ctx, uid)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrInvalidID
	}
	return s.notifications.MarkAllRead(ctx, uid)
}
