package store

import (
	"context"

	"github.com/colexalia/colexalia-backend/internal/domain"
	"github.com/colexalia/colexalia-backend/internal/identity"
	"github.com/stretchr/testify/mock"
)

// fakeSession pushes session changes synchronously
type fakeSession struct {
	listeners []identity.Listener
	resolved  bool
	user      *domain.SessionUser
}

func (f *fakeSession) Subscribe(l identity.Listener) func() {
	f.listeners = append(f.listeners, l)
	idx := len(f.listeners) - 1
	if f.resolved {
		l(f.user)
	}
	return func() { f.listeners[idx] = nil }
}

func (f *fakeSession) signIn(id string) {
	f.set(&domain.SessionUser{ID: id, Email: id + "@example.com"})
}

func (f *fakeSession) signOut() { f.set(nil) }

func (f *fakeSession) set(user *domain.SessionUser) {
	f.resolved = true
	f.user = user
	for _, l := range f.listeners {
		if l != nil {
			l(user)
		}
	}
}

// MockWishlistRepository is a mock implementation of repository.WishlistRepository
type MockWishlistRepository struct {
	mock.Mock
}

func (m *MockWishlistRepository) ListByUser(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WishlistItem), args.Error(1)
}

func (m *MockWishlistRepository) Create(ctx context.Context, item *domain.WishlistItem) error {
	args := m.Called(ctx, item)
	if args.Error(0) == nil && item.ID == "" {
		item.ID = "w-" + item.ProductID
	}
	return args.Error(0)
}

func (m *MockWishlistRepository) Delete(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockWishlistRepository) UpdateAlertPercentage(ctx context.Context, userID, id string, percentage float64) error {
	return m.Called(ctx, userID, id, percentage).Error(0)
}

// MockCollectionRepository is a mock implementation of repository.CollectionRepository
type MockCollectionRepository struct {
	mock.Mock
}

func (m *MockCollectionRepository) ListByUser(ctx context.Context, userID string) ([]domain.CollectionItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CollectionItem), args.Error(1)
}

func (m *MockCollectionRepository) Create(ctx context.Context, item *domain.CollectionItem) error {
	args := m.Called(ctx, item)
	if args.Error(0) == nil && item.ID == "" {
		item.ID = "c-" + item.ProductID
	}
	return args.Error(0)
}

func (m *MockCollectionRepository) Delete(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockCollectionRepository) Update(ctx context.Context, userID, id string, columns map[string]interface{}) error {
	return m.Called(ctx, userID, id, columns).Error(0)
}
