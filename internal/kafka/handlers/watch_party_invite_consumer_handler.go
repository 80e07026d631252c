package kafkahandlers

import (
	"context"
	"log"

	"cinematch/internal/services"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// WatchPartyInviteConsumerLogic adapts the notification service to the Kafka
// consumer's MessageHandler signature for the invite topic.
type WatchPartyInviteConsumerLogic struct {
	notificationService services.NotificationService
}

// NewWatchPartyInviteConsumerLogic creates a new instance of WatchPartyInviteConsumerLogic.
func NewWatchPartyInviteConsumerLogic(ns services.NotificationService) *WatchPartyInviteConsumerLogic {
	if ns == nil {
		log.Panic("NotificationService cannot be nil")
	}
	return &WatchPartyInviteConsumerLogic{notificationService: ns}
}

// HandleWatchPartyInvite fans one invite event out into notifications.
func (h *WatchPartyInviteConsumerLogic) HandleWatchPartyInvite(ctx context.Context, msg *kafka.Message) error {
	log.Printf("Kafka Consumer: Received message for Topic %s, Partition %d, Offset %d, Key: %s\n",
		*msg.TopicPartition.Topic, msg.TopicPartition.Partition, msg.TopicPartition.Offset, string(msg.Key))

	return h.notificationService.ProcessWatchPartyInvite(ctx, msg)
}
