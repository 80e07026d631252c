package storage

import (
	"context"
	"errors"

	"cinematch/internal/models"

	"gorm.io/gorm"
)

// FriendRequestRepository defines the interface for friend request data operations.
type FriendRequestRepository interface {
	Create(ctx context.Context, request *models.FriendRequest) error
	FindPendingRequest(ctx context.Context, userID1, userID2 uint) (*models.FriendRequest, error)
	GetRequestByID(ctx context.Context, requestID uint) (*models.FriendRequest, error)
	UpdateRequestStatus(ctx context.Context, requestID uint, status models.FriendRequestStatus) error
	GetPendingRequestsForUser(ctx context.Context, recipientUserID uint) ([]models.FriendRequest, error)
	GetPendingCounterpartIDs(ctx context.Context, userID uint) ([]uint, error)
}

type gormFriendRequestRepository struct {
	db *gorm.DB
}

// NewGormFriendRequestRepository creates a new GORM-based FriendRequestRepository.
func NewGormFriendRequestRepository(db *gorm.DB) FriendRequestRepository {
	return &gormFriendRequestRepository{db: db}
}

func (r *gormFriendRequestRepository) Create(ctx context.Context, request *models.FriendRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

// FindPendingRequest checks if there is an existing pending request between
// two users, in either direction.
func (r *gormFriendRequestRepository) FindPendingRequest(ctx context.Context, userID1, userID2 uint) (*models.FriendRequest, error) {
	var request models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("(requester_user_id = ? AND recipient_user_id = ?) OR (requester_user_id = ? AND recipient_user_id = ?)", userID1, userID2, userID2, userID1).
		Where("status = ?", models.FriendRequestStatusPending).
		First(&request).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // No pending request is not an error here
		}
		return nil, err
	}
	return &request, nil
}

func (r *gormFriendRequestRepository) GetRequestByID(ctx context.Context, requestID uint) (*models.FriendRequest, error) {
	var request models.FriendRequest
	err := r.db.WithContext(ctx).First(&request, requestID).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *gormFriendRequestRepository) UpdateRequestStatus(ctx context.Context, requestID uint, status models.FriendRequestStatus) error {
	return r.db.WithContext(ctx).Model(&models.FriendRequest{}).Where("id = ?", requestID).Update("status", status).Error
}

func (r *gormFriendRequestRepository) GetPendingRequestsForUser(ctx context.Context, recipientUserID uint) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := r.db.WithContext(ctx).Where("recipient_user_id = ? AND status = ?", recipientUserID, models.FriendRequestStatusPending).Find(&requests).Error
	return requests, err
}

// GetPendingCounterpartIDs returns the other side of every pending request
// the user is involved in, sent or received. The matching routine folds
// these "potential friends" into its candidate set.
func (r *gormFriendRequestRepository) GetPendingCounterpartIDs(ctx context.Context, userID uint) ([]uint, error) {
	var sentTo []uint
	err := r.db.WithContext(ctx).Model(&models.FriendRequest{}).
		Where("requester_user_id = ? AND status = ?", userID, models.FriendRequestStatusPending).
		Pluck("recipient_user_id", &sentTo).Error
	if err != nil {
		return nil, err
	}

	var receivedFrom []uint
	err = r.db.WithContext(ctx).Model(&models.FriendRequest{}).
		Where("recipient_user_id = ? AND status = ?", userID, models.FriendRequestStatusPending).
		Pluck("requester_user_id", &receivedFrom).Error
	if err != nil {
		return nil, err
	}

	return append(sentTo, receivedFrom...), nil
}
