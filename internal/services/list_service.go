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
	ErrListNotFound      = errors.New("list not found")
	ErrListForbidden     = errors.New("you do not have access to this list")
	ErrNotListOwner      = errors.New("only the list owner can modify it")
	ErrInvalidListType   = errors.New("invalid list type")
	ErrInvalidMediaType  = errors.New("invalid media type")
	ErrItemAlreadyInList = errors.New("item is already in the list")
	ErrListItemNotFound  = errors.New("list item not found")
	ErrItemNotInWishlist = errors.New("Item not found in wishlist")
)

// ListService defines list and list item operations.
type ListService interface {
	CreateList(ctx context.Context, userID uint, listType models.ListType, name string, isPublic bool) (*models.List, error)
	GetList(ctx context.Context, requesterID, listID uint) (*models.List, error)
	GetUserLists(ctx context.Context, requesterID, ownerID uint) ([]models.List, error)
	UpdateList(ctx context.Context, userID, listID uint, name *string, isPublic *bool) (*models.List, error)
	DeleteList(ctx context.Context, userID, listID uint) error

	AddItem(ctx context.Context, userID, listID uint, item *models.ListItem) (*models.ListItem, error)
	RemoveItem(ctx context.Context, userID, listID, itemID uint) error
	GetWishlist(ctx context.Context, requesterID, ownerID uint) ([]models.ListItem, error)
}

type listService struct {
	listRepo       storage.ListRepository
	friendshipRepo storage.FriendshipRepository
}

// NewListService creates a new ListService instance.
func NewListService(listRepo storage.ListRepository, friendshipRepo storage.FriendshipRepository) ListService {
	return &listService{
		listRepo:       listRepo,
		friendshipRepo: friendshipRepo,
	}
}

// CreateList creates a list of the given type for the user.
func (s *listService) CreateList(ctx context.Context, userID uint, listType models.ListType, name string, isPublic bool) (*models.List, error) {
	if listType != models.WishlistType && listType != models.RecommendationsType {
		return nil, ErrInvalidListType
	}
	if name == "" {
		if listType == models.WishlistType {
			name = "Wishlist"
		} else {
			name = "Recommendations"
		}
	}

	list := &models.List{
		UserID:   userID,
		Type:     listType,
		Name:     name,
		IsPublic: isPublic,
	}
	if err := s.listRepo.CreateList(ctx, list); err != nil {
		return nil, fmt.Errorf("failed to create list: %w", err)
	}
	return list, nil
}

// GetList returns the list with its items, subject to visibility rules.
func (s *listService) GetList(ctx context.Context, requesterID, listID uint) (*models.List, error) {
	list, err := s.listRepo.GetListWithItems(ctx, listID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("failed to get list %d: %w", listID, err)
	}

	if err := s.checkReadAccess(ctx, requesterID, list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetUserLists returns another user's lists filtered by what the requester
// may see: the owner sees everything, friends additionally see wishlists,
// everyone sees public lists.
func (s *listService) GetUserLists(ctx context.Context, requesterID, ownerID uint) ([]models.List, error) {
	lists, err := s.listRepo.GetListsByUser(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lists for user %d: %w", ownerID, err)
	}

	if requesterID == ownerID {
		return lists, nil
	}

	areFriends, err := s.friendshipRepo.AreUsersFriends(ctx, requesterID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check friendship: %w", err)
	}

	visible := make([]models.List, 0, len(lists))
	for _, list := range lists {
		if list.IsPublic || (areFriends && list.Type == models.WishlistType) {
			visible = append(visible, list)
		}
	}
	return visible, nil
}

// UpdateList renames a list or toggles its visibility. Only the owner may
// do this.
func (s *listService) UpdateList(ctx context.Context, userID, listID uint, name *string, isPublic *bool) (*models.List, error) {
	list, err := s.getOwnedList(ctx, userID, listID)
	if err != nil {
		return nil, err
	}

	if name != nil && *name != "" {
		list.Name = *name
	}
	if isPublic != nil {
		list.IsPublic = *isPublic
	}

	if err := s.listRepo.UpdateList(ctx, list); err != nil {
		return nil, fmt.Errorf("failed to update list %d: %w", listID, err)
	}
	return list, nil
}

// DeleteList removes the list and all its items. Only the owner may do this.
func (s *listService) DeleteList(ctx context.Context, userID, listID uint) error {
	if _, err := s.getOwnedList(ctx, userID, listID); err != nil {
		return err
	}
	if err := s.listRepo.DeleteList(ctx, listID); err != nil {
		return fmt.Errorf("failed to delete list %d: %w", listID, err)
	}
	return nil
}

// AddItem appends a title to the list. The same (tmdb_id, media_type) pair
// may appear at most once per list.
func (s *listService) AddItem(ctx context.Context, userID, listID uint, item *models.ListItem) (*models.ListItem, error) {
	if !item.MediaType.Valid() {
		return nil, ErrInvalidMediaType
	}
	if item.TMDBID <= 0 {
		return nil, ErrInvalidMediaType
	}

	if _, err := s.getOwnedList(ctx, userID, listID); err != nil {
		return nil, err
	}

	existing, err := s.listRepo.FindItem(ctx, listID, item.TMDBID, item.MediaType)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate item: %w", err)
	}
	if existing != nil {
		return nil, ErrItemAlreadyInList
	}

	item.ListID = listID
	if err := s.listRepo.AddItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add item to list %d: %w", listID, err)
	}
	return item, nil
}

// RemoveItem deletes an item from the owner's list.
func (s *listService) RemoveItem(ctx context.Context, userID, listID, itemID uint) error {
	if _, err := s.getOwnedList(ctx, userID, listID); err != nil {
		return err
	}

	item, err := s.listRepo.GetItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrListItemNotFound
		}
		return fmt.Errorf("failed to get item %d: %w", itemID, err)
	}
	if item.ListID != listID {
		return ErrListItemNotFound
	}

	if err := s.listRepo.RemoveItem(ctx, itemID); err != nil {
		return fmt.Errorf("failed to remove item %d: %w", itemID, err)
	}
	return nil
}

// GetWishlist returns the union of the owner's wishlist items, newest first.
// Friends and the owner may view it.
func (s *listService) GetWishlist(ctx context.Context, requesterID, ownerID uint) ([]models.ListItem, error) {
	if requesterID != ownerID {
		areFriends, err := s.friendshipRepo.AreUsersFriends(ctx, requesterID, ownerID)
		if err != nil {
			return nil, fmt.Errorf("failed to check friendship: %w", err)
		}
		if !areFriends {
			return nil, ErrListForbidden
		}
	}

	items, err := s.listRepo.GetWishlistItems(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wishlist for user %d: %w", ownerID, err)
	}
	return items, nil
}

func (s *listService) getOwnedList(ctx context.Context, userID, listID uint) (*models.List, error) {
	list, err := s.listRepo.GetListByID(ctx, listID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("failed to get list %d: %w", listID, err)
	}
	if list.UserID != userID {
		return nil, ErrNotListOwner
	}
	return list, nil
}

// checkReadAccess enforces list visibility. requesterID 0 means an anonymous
// reader, who may only see public lists.
func (s *listService) checkReadAccess(ctx context.Context, requesterID uint, list *models.List) error {
	if list.IsPublic {
		return nil
	}
	if requesterID == 0 {
		return ErrListForbidden
	}
	if list.UserID == requesterID {
		return nil
	}
	if list.Type == models.WishlistType {
		areFriends, err := s.friendshipRepo.AreUsersFriends(ctx, requesterID, list.UserID)
		if err != nil {
			return fmt.Errorf("failed to check friendship: %w", err)
		}
		if areFriends {
			return nil
		}
	}
	return ErrListForbidden
}
