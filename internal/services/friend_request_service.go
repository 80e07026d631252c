package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"cinematch/internal/config"
	"cinematch/internal/kafka"
	"cinematch/internal/models"
	"cinematch/internal/storage"

	confluentKafka "github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"gorm.io/gorm"
)

var (
	ErrFriendRequestSelf     = errors.New("cannot send a friend request to yourself")
	ErrFriendRequestExists   = errors.New("a pending friend request already exists")
	ErrRecipientNotFound     = errors.New("recipient user does not exist")
	ErrAlreadyFriends        = errors.New("users are already friends")
	ErrFriendRequestNotFound = errors.New("friend request not found")
	ErrNotRecipientOfRequest = errors.New("you are not the recipient of this friend request")
	ErrRequestNotPending     = errors.New("friend request is not pending")
)

// FriendRequestEvent is the Kafka payload for a validated friend request.
// The consumer materializes the database row and the recipient's
// notification.
type FriendRequestEvent struct {
	RequesterUserID uint      `json:"requester_user_id"`
	RecipientUserID uint      `json:"recipient_user_id"`
	RequestMessage  string    `json:"request_message,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// FriendRequestService defines the friend request lifecycle operations.
type FriendRequestService interface {
	SendFriendRequest(ctx context.Context, requesterID, recipientID uint, message string) error
	ProcessFriendRequest(ctx context.Context, kafkaMsg *confluentKafka.Message) error
	AcceptFriendRequest(ctx context.Context, recipientUserID uint, requestID uint) error
	RejectFriendRequest(ctx context.Context, recipientUserID uint, requestID uint) error
	ListPendingRequests(ctx context.Context, userID uint) ([]*models.FriendRequestWithRequester, error)
	GetFriendsList(ctx context.Context, userID uint) ([]*models.UserBasicInfo, error)
}

type friendRequestService struct {
	db               *gorm.DB // for transaction support
	userRepo         storage.UserRepository
	friendRepo       storage.FriendRequestRepository
	friendshipRepo   storage.FriendshipRepository
	notificationRepo storage.NotificationRepository
	producer         kafka.MessageProducer
	kafkaConfig      config.KafkaConfig
}

// NewFriendRequestService creates a new FriendRequestService instance.
func NewFriendRequestService(
	db *gorm.DB,
	userRepo storage.UserRepository,
	friendRepo storage.FriendRequestRepository,
	friendshipRepo storage.FriendshipRepository,
	notificationRepo storage.NotificationRepository,
	producer kafka.MessageProducer,
	cfg config.KafkaConfig,
) FriendRequestService {
	return &friendRequestService{
		db:               db,
		userRepo:         userRepo,
		friendRepo:       friendRepo,
		friendshipRepo:   friendshipRepo,
		notificationRepo: notificationRepo,
		producer:         producer,
		kafkaConfig:      cfg,
	}
}

// SendFriendRequest validates the request and publishes an event to Kafka.
func (s *friendRequestService) SendFriendRequest(ctx context.Context, requesterID, recipientID uint, message string) error {
	if requesterID == recipientID {
		return ErrFriendRequestSelf
	}

	// 1. Recipient must exist
	_, err := s.userRepo.GetByID(ctx, recipientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecipientNotFound
		}
		return fmt.Errorf("failed to check recipient user: %w", err)
	}

	// 2. Must not already be friends
	areFriends, err := s.friendshipRepo.AreUsersFriends(ctx, requesterID, recipientID)
	if err != nil {
		return fmt.Errorf("failed to check friendship: %w", err)
	}
	if areFriends {
		return ErrAlreadyFriends
	}

	// 3. No pending request in either direction
	existingRequest, err := s.friendRepo.FindPendingRequest(ctx, requesterID, recipientID)
	if err != nil {
		return fmt.Errorf("failed to check existing request: %w", err)
	}
	if existingRequest != nil {
		return ErrFriendRequestExists
	}

	// 4. Publish the event; the consumer persists the row
	event := FriendRequestEvent{
		RequesterUserID: requesterID,
		RecipientUserID: recipientID,
		RequestMessage:  message,
		Timestamp:       time.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal friend request event: %w", err)
	}

	topic := s.kafkaConfig.FriendRequestTopic
	key := []byte(fmt.Sprintf("%d-%d", requesterID, recipientID))
	if err := s.producer.SendMessage(ctx, topic, key, payload); err != nil {
		return fmt.Errorf("failed to enqueue friend request: %w", err)
	}

	log.Printf("Friend request event published to topic %s for %d -> %d", topic, requesterID, recipientID)
	return nil
}

// ProcessFriendRequest handles incoming friend request events from Kafka.
// It is idempotent against redelivery: already-friends and already-pending
// cases commit the offset without writing.
func (s *friendRequestService) ProcessFriendRequest(ctx context.Context, kafkaMsg *confluentKafka.Message) error {
	var event FriendRequestEvent
	if err := json.Unmarshal(kafkaMsg.Value, &event); err != nil {
		log.Printf("Error unmarshalling friend request event: %v, value: %s", err, string(kafkaMsg.Value))
		return nil // Commit offset for bad message
	}

	areFriends, err := s.friendshipRepo.AreUsersFriends(ctx, event.RequesterUserID, event.RecipientUserID)
	if err != nil {
		return err // Retryable
	}
	if areFriends {
		log.Printf("Users %d and %d are already friends, skipping friend request creation.", event.RequesterUserID, event.RecipientUserID)
		return nil
	}

	existing, err := s.friendRepo.FindPendingRequest(ctx, event.RequesterUserID, event.RecipientUserID)
	if err != nil {
		return err // Retryable
	}
	if existing != nil {
		log.Printf("Friend request already exists (%d -> %d), skipping creation.", event.RequesterUserID, event.RecipientUserID)
		return nil
	}

	request := models.FriendRequest{
		RequesterUserID: event.RequesterUserID,
		RecipientUserID: event.RecipientUserID,
		RequestMessage:  event.RequestMessage,
		Status:          models.FriendRequestStatusPending,
	}
	if err := s.friendRepo.Create(ctx, &request); err != nil {
		return err // Retryable
	}

	// Notification is auxiliary; a failure here must not trigger
	// redelivery of the already-created request.
	notification := &models.Notification{
		UserID: event.RecipientUserID,
		Type:   models.FriendRequestNotification,
	}
	if err := notification.SetPayload(map[string]interface{}{
		"request_id":   request.ID,
		"requester_id": event.RequesterUserID,
	}); err == nil {
		if err := s.notificationRepo.Create(ctx, notification); err != nil {
			log.Printf("Failed to create friend request notification for user %d: %v", event.RecipientUserID, err)
		}
	}

	log.Printf("Friend request from %d to %d saved with ID %d", event.RequesterUserID, event.RecipientUserID, request.ID)
	return nil
}

// AcceptFriendRequest accepts a pending request and creates the friendship,
// atomically.
func (s *friendRequestService) AcceptFriendRequest(ctx context.Context, recipientUserID uint, requestID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txFriendRepo := storage.NewGormFriendRequestRepository(tx)
		txFriendshipRepo := storage.NewGormFriendshipRepository(tx)

		request, err := txFriendRepo.GetRequestByID(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrFriendRequestNotFound
			}
			return fmt.Errorf("failed to retrieve friend request: %w", err)
		}

		if request.RecipientUserID != recipientUserID {
			return ErrNotRecipientOfRequest
		}
		if request.Status != models.FriendRequestStatusPending {
			return ErrRequestNotPending
		}

		areFriends, err := txFriendshipRepo.AreUsersFriends(ctx, request.RequesterUserID, request.RecipientUserID)
		if err != nil {
			return fmt.Errorf("failed to check friendship: %w", err)
		}

		if err := txFriendRepo.UpdateRequestStatus(ctx, requestID, models.FriendRequestStatusAccepted); err != nil {
			return fmt.Errorf("failed to update friend request status: %w", err)
		}

		if !areFriends {
			friendship := &models.Friendship{
				UserID1: request.RequesterUserID,
				UserID2: request.RecipientUserID,
			}
			friendship.EnsureCanonicalOrder()
			if err := txFriendshipRepo.Create(ctx, friendship); err != nil {
				return fmt.Errorf("failed to create friendship: %w", err)
			}
		} else {
			// Already friends but a request was pending; accept it for
			// idempotency without duplicating the friendship row.
			log.Printf("Users %d and %d already friends, request %d marked accepted.", request.RequesterUserID, request.RecipientUserID, requestID)
		}

		return nil
	})
}

// RejectFriendRequest rejects a pending request.
func (s *friendRequestService) RejectFriendRequest(ctx context.Context, recipientUserID uint, requestID uint) error {
	request, err := s.friendRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFriendRequestNotFound
		}
		return fmt.Errorf("failed to retrieve friend request: %w", err)
	}

	if request.RecipientUserID != recipientUserID {
		return ErrNotRecipientOfRequest
	}
	if request.Status != models.FriendRequestStatusPending {
		return ErrRequestNotPending
	}

	if err := s.friendRepo.UpdateRequestStatus(ctx, requestID, models.FriendRequestStatusRejected); err != nil {
		return fmt.Errorf("failed to reject friend request: %w", err)
	}
	return nil
}

// ListPendingRequests retrieves the pending requests addressed to the user,
// enriched with requester info.
func (s *friendRequestService) ListPendingRequests(ctx context.Context, userID uint) ([]*models.FriendRequestWithRequester, error) {
	pendingRequests, err := s.friendRepo.GetPendingRequestsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending friend requests: %w", err)
	}

	result := make([]*models.FriendRequestWithRequester, 0, len(pendingRequests))
	for _, req := range pendingRequests {
		requester, err := s.userRepo.GetBasicInfoByID(ctx, req.RequesterUserID)
		if err != nil {
			log.Printf("Failed to fetch requester info for user %d (request %d): %v", req.RequesterUserID, req.ID, err)
			continue
		}
		result = append(result, &models.FriendRequestWithRequester{
			FriendRequest: req,
			Requester:     requester,
		})
	}
	return result, nil
}

// GetFriendsList retrieves the basic info of all the user's friends.
func (s *friendRequestService) GetFriendsList(ctx context.Context, userID uint) ([]*models.UserBasicInfo, error) {
	friendIDs, err := s.friendshipRepo.GetFriendIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get friend IDs: %w", err)
	}

	if len(friendIDs) == 0 {
		return []*models.UserBasicInfo{}, nil
	}

	friendsInfo, err := s.userRepo.GetMultipleBasicInfoByIDs(ctx, friendIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get friend info: %w", err)
	}
	return friendsInfo, nil
}
