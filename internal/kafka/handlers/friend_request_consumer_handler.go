package kafkahandlers

import (
	"context"
	"log"

	"cinematch/internal/services"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// FriendRequestConsumerLogic adapts the friend request service to the Kafka
// consumer's MessageHandler signature.
type FriendRequestConsumerLogic struct {
	friendService services.FriendRequestService
}

// NewFriendRequestConsumerLogic creates a new instance of FriendRequestConsumerLogic.
func NewFriendRequestConsumerLogic(fs services.FriendRequestService) *FriendRequestConsumerLogic {
	if fs == nil {
		log.Panic("FriendRequestService cannot be nil")
	}
	return &FriendRequestConsumerLogic{friendService: fs}
}

// HandleFriendRequest processes a single friend request event. Returning an
// error prevents the offset commit so the message is redelivered.
func (h *FriendRequestConsumerLogic) HandleFriendRequest(ctx context.Context, msg *kafka.Message) error {
	log.Printf("Kafka Consumer: Received message for Topic %s, Partition %d, Offset %d, Key: %s\n",
		*msg.TopicPartition.Topic, msg.TopicPartition.Partition, msg.TopicPartition.Offset, string(msg.Key))

	return h.friendService.ProcessFriendRequest(ctx, msg)
}
