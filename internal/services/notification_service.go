package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"cinematch/internal/models"
	"cinematch/internal/storage"

	confluentKafka "github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService exposes the in-app notification feed and consumes the
// watch party invite topic.
type NotificationService interface {
	ListNotifications(ctx context.Context, userID uint, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID uint) error
	ProcessWatchPartyInvite(ctx context.Context, kafkaMsg *confluentKafka.Message) error
}

type notificationService struct {
	notificationRepo storage.NotificationRepository
}

// NewNotificationService creates a new NotificationService instance.
func NewNotificationService(notificationRepo storage.NotificationRepository) NotificationService {
	return &notificationService{notificationRepo: notificationRepo}
}

// ListNotifications returns the user's feed, newest first.
func (s *notificationService) ListNotifications(ctx context.Context, userID uint, limit int) ([]models.Notification, error) {
	notifications, err := s.notificationRepo.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead acknowledges one of the user's own notifications.
func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID uint) error {
	affected, err := s.notificationRepo.MarkRead(ctx, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if affected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// ProcessWatchPartyInvite fans a watch party invite event out into one
// notification row per invitee.
func (s *notificationService) ProcessWatchPartyInvite(ctx context.Context, kafkaMsg *confluentKafka.Message) error {
	var event WatchPartyInviteEvent
	if err := json.Unmarshal(kafkaMsg.Value, &event); err != nil {
		log.Printf("Error unmarshalling watch party invite event: %v, value: %s", err, string(kafkaMsg.Value))
		return nil // Commit offset for bad message
	}

	notifications := make([]*models.Notification, 0, len(event.InvitedUserIDs))
	for _, inviteeID := range event.InvitedUserIDs {
		n := &models.Notification{
			UserID: inviteeID,
			Type:   models.WatchPartyInviteNotification,
		}
		if err := n.SetPayload(map[string]interface{}{
			"party_id":   event.PartyID,
			"creator_id": event.CreatorID,
			"tmdb_id":    event.TMDBID,
			"media_type": event.MediaType,
			"title":      event.Title,
		}); err != nil {
			log.Printf("Failed to build invite notification payload for user %d: %v", inviteeID, err)
			continue
		}
		notifications = append(notifications, n)
	}

	if err := s.notificationRepo.CreateBatch(ctx, notifications); err != nil {
		return err // Retryable
	}

	log.Printf("Watch party %d invite fanned out to %d users", event.PartyID, len(notifications))
	return nil
}
