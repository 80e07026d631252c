package storage

import (
	"context"
	"errors"

	"cinematch/internal/models"

	"gorm.io/gorm"
)

// OwnedItem is a list item joined with its owning list's user, so callers
// can attribute wishlist entries to users without a second query.
type OwnedItem struct {
	models.ListItem
	OwnerID uint `gorm:"column:owner_id"`
}

// ListRepository defines the interface for list and list item data operations.
type ListRepository interface {
	CreateList(ctx context.Context, list *models.List) error
	GetListByID(ctx context.Context, listID uint) (*models.List, error)
	GetListWithItems(ctx context.Context, listID uint) (*models.List, error)
	GetListsByUser(ctx context.Context, userID uint) ([]models.List, error)
	UpdateList(ctx context.Context, list *models.List) error
	DeleteList(ctx context.Context, listID uint) error

	AddItem(ctx context.Context, item *models.ListItem) error
	GetItemByID(ctx context.Context, itemID uint) (*models.ListItem, error)
	RemoveItem(ctx context.Context, itemID uint) error
	FindItem(ctx context.Context, listID uint, tmdbID int, mediaType models.MediaType) (*models.ListItem, error)

	GetWishlistItems(ctx context.Context, userID uint) ([]models.ListItem, error)
	GetWishlistItemsForUsers(ctx context.Context, userIDs []uint) ([]OwnedItem, error)
	FindWishlistItemForUser(ctx context.Context, userID uint, tmdbID int, mediaType models.MediaType) (*models.ListItem, error)
	FindUsersWithWishlistKeys(ctx context.Context, keys []models.MediaKey, excludeUserIDs []uint, limit int) ([]uint, error)
}

type gormListRepository struct {
	db *gorm.DB
}

// NewGormListRepository creates a new GORM-based ListRepository.
func NewGormListRepository(db *gorm.DB) ListRepository {
	return &gormListRepository{db: db}
}

func (r *gormListRepository) CreateList(ctx context.Context, list *models.List) error {
	return r.db.WithContext(ctx).Create(list).Error
}

func (r *gormListRepository) GetListByID(ctx context.Context, listID uint) (*models.List, error) {
	var list models.List
	err := r.db.WithContext(ctx).First(&list, listID).Error
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *gormListRepository) GetListWithItems(ctx context.Context, listID uint) (*models.List, error) {
	var list models.List
	err := r.db.WithContext(ctx).Preload("Items").First(&list, listID).Error
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *gormListRepository) GetListsByUser(ctx context.Context, userID uint) ([]models.List, error) {
	var lists []models.List
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&lists).Error
	return lists, err
}

func (r *gormListRepository) UpdateList(ctx context.Context, list *models.List) error {
	if list.ID == 0 {
		return gorm.ErrMissingWhereClause
	}
	return r.db.WithContext(ctx).Save(list).Error
}

// DeleteList removes the list and its items.
func (r *gormListRepository) DeleteList(ctx context.Context, listID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("list_id = ?", listID).Delete(&models.ListItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.List{}, listID).Error
	})
}

func (r *gormListRepository) AddItem(ctx context.Context, item *models.ListItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *gormListRepository) GetItemByID(ctx context.Context, itemID uint) (*models.ListItem, error) {
	var item models.ListItem
	err := r.db.WithContext(ctx).First(&item, itemID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *gormListRepository) RemoveItem(ctx context.Context, itemID uint) error {
	return r.db.WithContext(ctx).Delete(&models.ListItem{}, itemID).Error
}

// FindItem looks up an item by its media key within one list. Returns
// (nil, nil) when absent.
func (r *gormListRepository) FindItem(ctx context.Context, listID uint, tmdbID int, mediaType models.MediaType) (*models.ListItem, error) {
	var item models.ListItem
	err := r.db.WithContext(ctx).
		Where("list_id = ? AND tmdb_id = ? AND media_type = ?", listID, tmdbID, mediaType).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// GetWishlistItems returns every item across all of the user's
// wishlist-type lists, newest first.
func (r *gormListRepository) GetWishlistItems(ctx context.Context, userID uint) ([]models.ListItem, error) {
	var items []models.ListItem
	err := r.db.WithContext(ctx).
		Joins("JOIN lists ON lists.id = list_items.list_id").
		Where("lists.user_id = ? AND lists.type = ? AND lists.deleted_at IS NULL", userID, models.WishlistType).
		Order("list_items.created_at DESC").
		Find(&items).Error
	return items, err
}

// GetWishlistItemsForUsers returns the union of the given users' wishlist
// items, each row attributed to its owner.
func (r *gormListRepository) GetWishlistItemsForUsers(ctx context.Context, userIDs []uint) ([]OwnedItem, error) {
	var rows []OwnedItem
	if len(userIDs) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Model(&models.ListItem{}).
		Select("list_items.*, lists.user_id AS owner_id").
		Joins("JOIN lists ON lists.id = list_items.list_id").
		Where("lists.user_id IN ? AND lists.type = ? AND lists.deleted_at IS NULL", userIDs, models.WishlistType).
		Find(&rows).Error
	return rows, err
}

// FindWishlistItemForUser checks the match-creation precondition: the user
// must have the title in one of their own wishlists. Returns (nil, nil)
// when absent.
func (r *gormListRepository) FindWishlistItemForUser(ctx context.Context, userID uint, tmdbID int, mediaType models.MediaType) (*models.ListItem, error) {
	var item models.ListItem
	err := r.db.WithContext(ctx).
		Joins("JOIN lists ON lists.id = list_items.list_id").
		Where("lists.user_id = ? AND lists.type = ? AND lists.deleted_at IS NULL", userID, models.WishlistType).
		Where("list_items.tmdb_id = ? AND list_items.media_type = ?", tmdbID, mediaType).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// FindUsersWithWishlistKeys discovers shared-interest candidates: users
// outside excludeUserIDs whose wishlists contain any of the given media
// keys, capped at limit.
func (r *gormListRepository) FindUsersWithWishlistKeys(ctx context.Context, keys []models.MediaKey, excludeUserIDs []uint, limit int) ([]uint, error) {
	var ids []uint
	if len(keys) == 0 || limit <= 0 {
		return ids, nil
	}

	pairs := make([][]interface{}, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, []interface{}{k.TMDBID, string(k.MediaType)})
	}

	q := r.db.WithContext(ctx).
		Model(&models.ListItem{}).
		Joins("JOIN lists ON lists.id = list_items.list_id").
		Where("lists.type = ? AND lists.deleted_at IS NULL", models.WishlistType).
		Where("(list_items.tmdb_id, list_items.media_type) IN ?", pairs)
	if len(excludeUserIDs) > 0 {
		q = q.Where("lists.user_id NOT IN ?", excludeUserIDs)
	}
	err := q.Distinct().Limit(limit).Pluck("lists.user_id", &ids).Error
	return ids, err
}
