package repository

import (
	"context"

	"github.com/colexalia/colexalia-backend/internal/domain"
	"gorm.io/gorm"
)

// WishlistRepository 위시리스트 저장소 인터페이스
type WishlistRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.WishlistItem, error)
	Create(ctx context.Context, item *domain.WishlistItem) error
	Delete(ctx context.Context, userID, id string) error
	UpdateAlertPercentage(ctx context.Context, userID, id string, percentage float64) error
}

type wishlistRepository struct {
	db *gorm.DB
}

// NewWishlistRepository 위시리스트 저장소 생성
func NewWishlistRepository(db *gorm.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

func (r *wishlistRepository) ListByUser(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	var items []domain.WishlistItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date_added ASC, seq ASC").
		Find(&items).Error
	return items, err
}

func (r *wishlistRepository) Create(ctx context.Context, item *domain.WishlistItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Delete removes the item if it belongs to userID. Deleting a missing item is not an error.
func (r *wishlistRepository) Delete(ctx context.Context, userID, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.WishlistItem{}).Error
}

func (r *wishlistRepository) UpdateAlertPercentage(ctx context.Context, userID, id string, percentage float64) error {
	return r.db.WithContext(ctx).
		Model(&domain.WishlistItem{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("alert_percentage", percentage).Error
}
