package repository

import (
	"context"
	"errors"

	"github.com/colexalia/colexalia-backend/internal/common"
	"github.com/colexalia/colexalia-backend/internal/domain"
	"gorm.io/gorm"
)

// UserRepository 계정 저장소 인터페이스
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByOAuthSubject(ctx context.Context, provider, subject string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	LinkOAuth(ctx context.Context, id, provider, subject string) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 계정 저장소 생성
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) findOne(ctx context.Context, query string, args ...interface{}) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *userRepository) FindByOAuthSubject(ctx context.Context, provider, subject string) (*domain.User, error) {
	return r.findOne(ctx, "provider = ? AND oauth_subject = ?", provider, subject)
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return common.ErrUserAlreadyExists
	}
	return err
}

// LinkOAuth attaches a federated subject to an existing password account
func (r *userRepository) LinkOAuth(ctx context.Context, id, provider, subject string) error {
	return r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"oauth_subject": subject, "provider": provider}).Error
}
