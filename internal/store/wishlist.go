package store

import (
	"context"
	"sync"
	"time"

	"github.com/colexalia/colexalia-backend/internal/common"
	"github.com/colexalia/colexalia-backend/internal/domain"
	"github.com/colexalia/colexalia-backend/internal/repository"
)

const wishlistCollection = "wishlists"

// Wishlist 위시리스트 스토어
type Wishlist struct {
	ctx  context.Context
	repo repository.WishlistRepository
	now  func() time.Time

	mu      sync.RWMutex
	userID  string
	items   []domain.WishlistItem
	loading bool
	loadErr error

	unsubscribe func()
}

// NewWishlist subscribes to sess and loads the signed-in user's items on every session change.
// ctx bounds the loads triggered by session notifications.
func NewWishlist(ctx context.Context, sess Session, repo repository.WishlistRepository, opts ...Option) *Wishlist {
	o := buildOptions(opts)
	w := &Wishlist{ctx: ctx, repo: repo, now: o.now}
	w.unsubscribe = sess.Subscribe(w.onSessionChange)
	return w
}

func (w *Wishlist) onSessionChange(user *domain.SessionUser) {
	w.mu.Lock()
	w.items = nil
	w.loadErr = nil
	if user == nil {
		w.userID = ""
		w.loading = false
		w.mu.Unlock()
		return
	}
	w.userID = user.ID
	w.loading = true
	w.mu.Unlock()

	items, err := w.repo.ListByUser(w.ctx, user.ID)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.userID != user.ID {
		return
	}
	w.loading = false
	if err != nil {
		w.loadErr = storeFailure("list", wishlistCollection, err)
		return
	}
	w.items = items
}

// List returns the items in insertion order. Empty when signed out.
func (w *Wishlist) List() []domain.WishlistItem {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]domain.WishlistItem, len(w.items))
	copy(out, w.items)
	return out
}

// Loading reports whether the initial load for the signed-in user is in flight
func (w *Wishlist) Loading() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.loading
}

// Err returns the failure of the last load, if any
func (w *Wishlist) Err() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.loadErr
}

// Add stores a new item for the signed-in user and appends it locally
func (w *Wishlist) Add(ctx context.Context, in domain.WishlistInput) (*domain.WishlistItem, error) {
	userID := w.currentUserID()
	if userID == "" {
		return nil, &common.AuthRequiredError{Action: "add to the wishlist"}
	}

	item := &domain.WishlistItem{
		UserID:     userID,
		ProductID:  in.ProductID,
		Name:       in.Name,
		Platform:   in.Platform,
		ImageURL:   in.ImageURL,
		PriceLoose: in.PriceLoose,
		PriceCIB:   in.PriceCIB,
		PriceNew:   in.PriceNew,
		DateAdded:  w.now(),
	}
	if err := w.repo.Create(ctx, item); err != nil {
		return nil, storeFailure("create", wishlistCollection, err)
	}

	w.mu.Lock()
	if w.userID == userID {
		w.items = append(w.items, *item)
	}
	w.mu.Unlock()

	stored := *item
	return &stored, nil
}

// Remove deletes the item and drops it locally. Removing an unknown item is not an error.
func (w *Wishlist) Remove(ctx context.Context, itemID string) error {
	userID := w.currentUserID()
	if userID == "" {
		return &common.AuthRequiredError{Action: "remove from the wishlist"}
	}
	if err := w.repo.Delete(ctx, userID, itemID); err != nil {
		return storeFailure("delete", wishlistCollection, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.items {
		if w.items[i].ID == itemID {
			w.items = append(w.items[:i], w.items[i+1:]...)
			break
		}
	}
	return nil
}

// Contains reports whether productID is on the wishlist
func (w *Wishlist) Contains(productID string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, item := range w.items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// SetAlertThreshold sets the price-drop alert percentage of an item
func (w *Wishlist) SetAlertThreshold(ctx context.Context, itemID string, percentage float64) (*domain.WishlistItem, error) {
	userID := w.currentUserID()
	if userID == "" {
		return nil, &common.AuthRequiredError{Action: "set a price alert"}
	}
	if _, ok := w.find(itemID); !ok {
		return nil, itemNotFound(wishlistCollection, itemID)
	}
	if err := w.repo.UpdateAlertPercentage(ctx, userID, itemID, percentage); err != nil {
		return nil, storeFailure("update", wishlistCollection, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.items {
		if w.items[i].ID == itemID {
			pct := percentage
			w.items[i].AlertPercentage = &pct
			updated := w.items[i]
			return &updated, nil
		}
	}
	return nil, itemNotFound(wishlistCollection, itemID)
}

// PriceDrops checks every item that has an alert threshold against current prices keyed by product id
func (w *Wishlist) PriceDrops(current map[string]domain.Product) []domain.PriceDropAlert {
	w.mu.RLock()
	defer w.mu.RUnlock()
	alerts := []domain.PriceDropAlert{}
	for _, item := range w.items {
		p, ok := current[item.ProductID]
		if !ok {
			continue
		}
		if alert, hit := item.PriceDrop(p); hit {
			alerts = append(alerts, alert)
		}
	}
	return alerts
}

// Close stops following session changes
func (w *Wishlist) Close() {
	if w.unsubscribe != nil {
		w.unsubscribe()
	}
}

func (w *Wishlist) currentUserID() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.userID
}

func (w *Wishlist) find(itemID string) (domain.WishlistItem, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, item := range w.items {
		if item.ID == itemID {
			return item, true
		}
	}
	return domain.WishlistItem{}, false
}
