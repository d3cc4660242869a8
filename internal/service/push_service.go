package service

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"

	"linkup-service/internal/models"
	"linkup-service/pkg/logger"
)

// PushDispatcher hands a web-push notification off to the delivery
// pipeline. Delivery itself happens out of process.
type PushDispatcher interface {
	Dispatch(ctx context.Context, userID string, sub *models.PushSubscription, req *models.SendMessageRequest) error
}

// pushEnvelope is the record the delivery worker consumes.
type pushEnvelope struct {
	UserID       string                   `json:"userId"`
	Subscription *models.PushSubscription `json:"subscription"`
	Notification pushNotification         `json:"notification"`
}

type pushNotification struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Icon  string   `json:"icon,omitempty"`
	Data  pushData `json:"data"`
}

type pushData struct {
	ChatID string `json:"chatId"`
	Sender string `json:"sender"`
}

// KafkaPushDispatcher publishes push envelopes to a Kafka topic,
// keyed by recipient so one user's notifications stay ordered.
type KafkaPushDispatcher struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

func NewKafkaPushDispatcher(producer sarama.SyncProducer, topic string, log *logger.Logger) *KafkaPushDispatcher {
	return &KafkaPushDispatcher{producer: producer, topic: topic, log: log}
}

func (d *KafkaPushDispatcher) Dispatch(_ context.Context, userID string, sub *models.PushSubscription, req *models.SendMessageRequest) error {
	env := pushEnvelope{
		UserID:       userID,
		Subscription: sub,
		Notification: pushNotification{
			Title: "LinkUp",
			Body:  "new message from " + req.SenderName + "!",
			Icon:  req.SenderAvatar,
			Data:  pushData{ChatID: req.ChatID, Sender: req.Sender},
		},
	}
	value, err := json.Marshal(env)
	if err != nil {
		return err
	}

	partition, offset, err := d.producer.SendMessage(&sarama.ProducerMessage{
		Topic: d.topic,
		Key:   sarama.StringEncoder(userID),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		return err
	}
	d.log.Debug("push dispatched", "userId", userID, "partition", partition, "offset", offset)
	return nil
}

// NoopPushDispatcher is used when Kafka is disabled.
type NoopPushDispatcher struct{}

func (NoopPushDispatcher) Dispatch(context.Context, string, *models.PushSubscription, *models.SendMessageRequest) error {
	return nil
}
