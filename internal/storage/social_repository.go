package storage

import (
	"context"
	"errors"

	"cinematch/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SocialRepository defines the interface for likes and comments on lists.
type SocialRepository interface {
	CreateLike(ctx context.Context, like *models.ListLike) error
	DeleteLike(ctx context.Context, listID, userID uint) error
	CountLikes(ctx context.Context, listID uint) (int64, error)
	HasLiked(ctx context.Context, listID, userID uint) (bool, error)

	CreateComment(ctx context.Context, comment *models.ListComment) error
	GetCommentByID(ctx context.Context, commentID uint) (*models.ListComment, error)
	ListComments(ctx context.Context, listID uint) ([]models.ListComment, error)
	DeleteComment(ctx context.Context, commentID uint) error
}

type gormSocialRepository struct {
	db *gorm.DB
}

// NewGormSocialRepository creates a new GORM-based SocialRepository.
func NewGormSocialRepository(db *gorm.DB) SocialRepository {
	return &gormSocialRepository{db: db}
}

// CreateLike inserts the like; repeat likes are absorbed by the unique
// index so liking is idempotent.
func (r *gormSocialRepository) CreateLike(ctx context.Context, like *models.ListLike) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error
}

func (r *gormSocialRepository) DeleteLike(ctx context.Context, listID, userID uint) error {
	return r.db.WithContext(ctx).
		Where("list_id = ? AND user_id = ?", listID, userID).
		Delete(&models.ListLike{}).Error
}

func (r *gormSocialRepository) CountLikes(ctx context.Context, listID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ListLike{}).Where("list_id = ?", listID).Count(&count).Error
	return count, err
}

func (r *gormSocialRepository) HasLiked(ctx context.Context, listID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ListLike{}).
		Where("list_id = ? AND user_id = ?", listID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *gormSocialRepository) CreateComment(ctx context.Context, comment *models.ListComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *gormSocialRepository) GetCommentByID(ctx context.Context, commentID uint) (*models.ListComment, error) {
	var comment models.ListComment
	err := r.db.WithContext(ctx).First(&comment, commentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

func (r *gormSocialRepository) ListComments(ctx context.Context, listID uint) ([]models.ListComment, error) {
	var comments []models.ListComment
	err := r.db.WithContext(ctx).
		Where("list_id = ?", listID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *gormSocialRepository) DeleteComment(ctx context.Context, commentID uint) error {
	return r.db.WithContext(ctx).Delete(&models.ListComment{}, commentID).Error
}
