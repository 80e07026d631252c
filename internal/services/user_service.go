package services

import (
	"context"
	"fmt"
	"log"

	"cinematch/internal/models"
	"cinematch/internal/storage"
)

// UserService defines user profile and search operations.
type UserService interface {
	GetUserProfile(ctx context.Context, userID uint) (*models.User, error)
	UpdateUserProfile(ctx context.Context, userID uint, displayName, avatarURL, bio string) (*models.User, error)
	SearchUsers(ctx context.Context, query string, currentUserID uint) ([]models.UserSearchResult, error)
}

type userService struct {
	userRepo       storage.UserRepository
	friendshipRepo storage.FriendshipRepository
	friendReqRepo  storage.FriendRequestRepository
}

// NewUserService creates a new UserService instance.
func NewUserService(userRepo storage.UserRepository, friendshipRepo storage.FriendshipRepository, friendReqRepo storage.FriendRequestRepository) UserService {
	return &userService{
		userRepo:       userRepo,
		friendshipRepo: friendshipRepo,
		friendReqRepo:  friendReqRepo,
	}
}

// GetUserProfile returns a user's public profile.
func (s *userService) GetUserProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	user.PasswordHash = ""
	return user, nil
}

// UpdateUserProfile applies the non-empty fields to the user's profile.
func (s *userService) UpdateUserProfile(ctx context.Context, userID uint, displayName, avatarURL, bio string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile, user %d not found: %w", userID, err)
	}

	updated := false
	if displayName != "" && user.DisplayName != displayName {
		user.DisplayName = displayName
		updated = true
	}
	if avatarURL != "" && user.AvatarURL != avatarURL {
		user.AvatarURL = avatarURL
		updated = true
	}
	if bio != "" && user.Bio != bio {
		user.Bio = bio
		updated = true
	}

	if !updated {
		user.PasswordHash = ""
		return user, nil
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user %d: %w", userID, err)
	}
	user.PasswordHash = ""
	return user, nil
}

// SearchUsers finds users matching the query and derives the friendship
// status of each candidate relative to the caller, so the client knows
// which affordance to show. Status is computed at query time; there is no
// stored "relationship" row until a request exists.
func (s *userService) SearchUsers(ctx context.Context, query string, currentUserID uint) ([]models.UserSearchResult, error) {
	users, err := s.userRepo.SearchUsers(ctx, query, currentUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	results := make([]models.UserSearchResult, 0, len(users))
	for _, u := range users {
		status, err := s.deriveFriendshipStatus(ctx, currentUserID, u.ID)
		if err != nil {
			// Status derivation is auxiliary; fall back to "none" rather
			// than failing the whole search.
			log.Printf("Failed to derive friendship status for users %d/%d: %v", currentUserID, u.ID, err)
			status = models.FriendshipStatusNone
		}
		results = append(results, models.UserSearchResult{
			UserBasicInfo: models.UserBasicInfo{
				ID:          u.ID,
				Username:    u.Username,
				DisplayName: u.DisplayName,
				AvatarURL:   u.AvatarURL,
			},
			FriendshipStatus: status,
		})
	}
	return results, nil
}

func (s *userService) deriveFriendshipStatus(ctx context.Context, currentUserID, otherUserID uint) (models.FriendshipStatus, error) {
	areFriends, err := s.friendshipRepo.AreUsersFriends(ctx, currentUserID, otherUserID)
	if err != nil {
		return models.FriendshipStatusNone, err
	}
	if areFriends {
		return models.FriendshipStatusFriends, nil
	}

	pending, err := s.friendReqRepo.FindPendingRequest(ctx, currentUserID, otherUserID)
	if err != nil {
		return models.FriendshipStatusNone, err
	}
	if pending == nil {
		return models.FriendshipStatusNone, nil
	}
	if pending.RequesterUserID == currentUserID {
		return models.FriendshipStatusPendingSent, nil
	}
	return models.FriendshipStatusPendingReceived, nil
}
