package repository

import (
	"context"

	"github.com/colexalia/colexalia-backend/internal/domain"
	"gorm.io/gorm"
)

// CollectionRepository 컬렉션 저장소 인터페이스
type CollectionRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.CollectionItem, error)
	Create(ctx context.Context, item *domain.CollectionItem) error
	Delete(ctx context.Context, userID, id string) error
	// Update applies a column map to one item of userID
	Update(ctx context.Context, userID, id string, columns map[string]interface{}) error
}

type collectionRepository struct {
	db *gorm.DB
}

// NewCollectionRepository 컬렉션 저장소 생성
func NewCollectionRepository(db *gorm.DB) CollectionRepository {
	return &collectionRepository{db: db}
}

func (r *collectionRepository) ListByUser(ctx context.Context, userID string) ([]domain.CollectionItem, error) {
	var items []domain.CollectionItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, seq ASC").
		Find(&items).Error
	return items, err
}

func (r *collectionRepository) Create(ctx context.Context, item *domain.CollectionItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *collectionRepository) Delete(ctx context.Context, userID, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.CollectionItem{}).Error
}

func (r *collectionRepository) Update(ctx context.Context, userID, id string, columns map[string]interface{}) error {
	if len(columns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&domain.CollectionItem{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(columns).Error
}
