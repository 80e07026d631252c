package services

import (
	"context"
	"errors"
	"fmt"

	"cinematch/internal/models"
	"cinematch/internal/storage"

	"gorm.io/gorm"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotCommentOwner = errors.New("only the author or the list owner can delete a comment")
	ErrEmptyComment    = errors.New("comment body cannot be empty")
)

// SocialService covers likes and comments on public recommendation lists.
type SocialService interface {
	LikeList(ctx context.Context, userID, listID uint) error
	UnlikeList(ctx context.Context, userID, listID uint) error
	GetLikeSummary(ctx context.Context, userID, listID uint) (count int64, liked bool, err error)

	AddComment(ctx context.Context, userID, listID uint, body string) (*models.ListComment, error)
	ListComments(ctx context.Context, userID, listID uint) ([]models.ListCommentWithAuthor, error)
	DeleteComment(ctx context.Context, userID, commentID uint) error
}

type socialService struct {
	socialRepo     storage.SocialRepository
	listRepo       storage.ListRepository
	userRepo       storage.UserRepository
	friendshipRepo storage.FriendshipRepository
}

// NewSocialService creates a new SocialService instance.
func NewSocialService(socialRepo storage.SocialRepository, listRepo storage.ListRepository, userRepo storage.UserRepository, friendshipRepo storage.FriendshipRepository) SocialService {
	return &socialService{
		socialRepo:     socialRepo,
		listRepo:       listRepo,
		userRepo:       userRepo,
		friendshipRepo: friendshipRepo,
	}
}

// LikeList records the user's like on a visible list. Repeat likes are
// no-ops.
func (s *socialService) LikeList(ctx context.Context, userID, listID uint) error {
	if _, err := s.getVisibleList(ctx, userID, listID); err != nil {
		return err
	}
	like := &models.ListLike{ListID: listID, UserID: userID}
	if err := s.socialRepo.CreateLike(ctx, like); err != nil {
		return fmt.Errorf("failed to like list %d: %w", listID, err)
	}
	return nil
}

// UnlikeList removes the user's like, if any.
func (s *socialService) UnlikeList(ctx context.Context, userID, listID uint) error {
	if _, err := s.getVisibleList(ctx, userID, listID); err != nil {
		return err
	}
	if err := s.socialRepo.DeleteLike(ctx, listID, userID); err != nil {
		return fmt.Errorf("failed to unlike list %d: %w", listID, err)
	}
	return nil
}

// GetLikeSummary returns the like count and whether the caller has liked
// the list.
func (s *socialService) GetLikeSummary(ctx context.Context, userID, listID uint) (int64, bool, error) {
	if _, err := s.getVisibleList(ctx, userID, listID); err != nil {
		return 0, false, err
	}
	count, err := s.socialRepo.CountLikes(ctx, listID)
	if err != nil {
		return 0, false, fmt.Errorf("failed to count likes: %w", err)
	}
	liked, err := s.socialRepo.HasLiked(ctx, listID, userID)
	if err != nil {
		return 0, false, fmt.Errorf("failed to check like: %w", err)
	}
	return count, liked, nil
}

// AddComment posts a comment on a visible list.
func (s *socialService) AddComment(ctx context.Context, userID, listID uint, body string) (*models.ListComment, error) {
	if body == "" {
		return nil, ErrEmptyComment
	}
	if _, err := s.getVisibleList(ctx, userID, listID); err != nil {
		return nil, err
	}

	comment := &models.ListComment{
		ListID: listID,
		UserID: userID,
		Body:   body,
	}
	if err := s.socialRepo.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment, nil
}

// ListComments returns a visible list's comments, oldest first, with author
// info attached.
func (s *socialService) ListComments(ctx context.Context, userID, listID uint) ([]models.ListCommentWithAuthor, error) {
	if _, err := s.getVisibleList(ctx, userID, listID); err != nil {
		return nil, err
	}

	comments, err := s.socialRepo.ListComments(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	authorIDs := make([]uint, 0, len(comments))
	seen := make(map[uint]bool, len(comments))
	for i := range comments {
		if !seen[comments[i].UserID] {
			seen[comments[i].UserID] = true
			authorIDs = append(authorIDs, comments[i].UserID)
		}
	}

	authorByID := make(map[uint]*models.UserBasicInfo, len(authorIDs))
	if len(authorIDs) > 0 {
		infos, err := s.userRepo.GetMultipleBasicInfoByIDs(ctx, authorIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to get comment authors: %w", err)
		}
		for _, info := range infos {
			authorByID[info.ID] = info
		}
	}

	result := make([]models.ListCommentWithAuthor, 0, len(comments))
	for i := range comments {
		result = append(result, models.ListCommentWithAuthor{
			ListComment: comments[i],
			Author:      authorByID[comments[i].UserID],
		})
	}
	return result, nil
}

// DeleteComment removes a comment. The author and the list owner may both
// delete.
func (s *socialService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.socialRepo.GetCommentByID(ctx, commentID)
	if err != nil {
		return fmt.Errorf("failed to get comment %d: %w", commentID, err)
	}
	if comment == nil {
		return ErrCommentNotFound
	}

	if comment.UserID != userID {
		list, err := s.listRepo.GetListByID(ctx, comment.ListID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to get list %d: %w", comment.ListID, err)
		}
		if list == nil || list.UserID != userID {
			return ErrNotCommentOwner
		}
	}

	if err := s.socialRepo.DeleteComment(ctx, commentID); err != nil {
		return fmt.Errorf("failed to delete comment %d: %w", commentID, err)
	}
	return nil
}

// getVisibleList applies the same read rules as ListService: owner, public,
// or friend-visible wishlist.
func (s *socialService) getVisibleList(ctx context.Context, userID, listID uint) (*models.List, error) {
	list, err := s.listRepo.GetListByID(ctx, listID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("failed to get list %d: %w", listID, err)
	}

	if list.UserID == userID || list.IsPublic {
		return list, nil
	}
	if list.Type == models.WishlistType {
		areFriends, err := s.friendshipRepo.AreUsersFriends(ctx, userID, list.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to check friendship: %w", err)
		}
		if areFriends {
			return list, nil
		}
	}
	return nil, ErrListForbidden
}
