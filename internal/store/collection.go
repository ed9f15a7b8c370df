package store

import (
	"context"
	"sync"
	"time"

	"github.com/colexalia/colexalia-backend/internal/common"
	"github.com/colexalia/colexalia-backend/internal/domain"
	"github.com/colexalia/colexalia-backend/internal/repository"
)

const collectionCollection = "collections"

// Collection 컬렉션 스토어
type Collection struct {
	ctx  context.Context
	repo repository.CollectionRepository
	now  func() time.Time

	mu      sync.RWMutex
	userID  string
	items   []domain.CollectionItem
	loading bool
	loadErr error

	unsubscribe func()
}

// NewCollection subscribes to sess and loads the signed-in user's items on every session change.
func NewCollection(ctx context.Context, sess Session, repo repository.CollectionRepository, opts ...Option) *Collection {
	o := buildOptions(opts)
	c := &Collection{ctx: ctx, repo: repo, now: o.now}
	c.unsubscribe = sess.Subscribe(c.onSessionChange)
	return c
}

func (c *Collection) onSessionChange(user *domain.SessionUser) {
	c.mu.Lock()
	c.items = nil
	c.loadErr = nil
	if user == nil {
		c.userID = ""
		c.loading = false
		c.mu.Unlock()
		return
	}
	c.userID = user.ID
	c.loading = true
	c.mu.Unlock()

	items, err := c.repo.ListByUser(c.ctx, user.ID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.userID != user.ID {
		return
	}
	c.loading = false
	if err != nil {
		c.loadErr = storeFailure("list", collectionCollection, err)
		return
	}
	c.items = items
}

// List returns the items in insertion order. Empty when signed out.
func (c *Collection) List() []domain.CollectionItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.CollectionItem, len(c.items))
	copy(out, c.items)
	return out
}

// Loading reports whether the initial load for the signed-in user is in flight
func (c *Collection) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Err returns the failure of the last load, if any
func (c *Collection) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadErr
}

// Add stores an owned copy for the signed-in user and appends it locally
func (c *Collection) Add(ctx context.Context, in domain.CollectionInput) (*domain.CollectionItem, error) {
	userID := c.currentUserID()
	if userID == "" {
		return nil, &common.AuthRequiredError{Action: "add to the collection"}
	}

	item := &domain.CollectionItem{
		UserID:            userID,
		ProductID:         in.ProductID,
		Name:              in.Name,
		Platform:          in.Platform,
		ImageURL:          in.ImageURL,
		Condition:         in.Condition,
		PurchasePrice:     in.PurchasePrice,
		PurchaseDate:      in.PurchaseDate,
		Notes:             in.Notes,
		CurrentPriceLoose: in.CurrentPriceLoose,
		CurrentPriceCIB:   in.CurrentPriceCIB,
		CurrentPriceNew:   in.CurrentPriceNew,
		LastUpdated:       c.now(),
	}
	if err := c.repo.Create(ctx, item); err != nil {
		return nil, storeFailure("create", collectionCollection, err)
	}

	c.mu.Lock()
	if c.userID == userID {
		c.items = append(c.items, *item)
	}
	c.mu.Unlock()

	stored := *item
	return &stored, nil
}

// Remove deletes the item and drops it locally. Removing an unknown item is not an error.
func (c *Collection) Remove(ctx context.Context, itemID string) error {
	userID := c.currentUserID()
	if userID == "" {
		return &common.AuthRequiredError{Action: "remove from the collection"}
	}
	if err := c.repo.Delete(ctx, userID, itemID); err != nil {
		return storeFailure("delete", collectionCollection, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == itemID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			break
		}
	}
	return nil
}

// Update applies a partial update of the editable fields and bumps last_updated
func (c *Collection) Update(ctx context.Context, itemID string, patch domain.CollectionItemPatch) (*domain.CollectionItem, error) {
	return c.update(ctx, itemID, "update the collection", patch.Columns(), patch.Apply)
}

// UpdatePriceSnapshot sets any of the three current-price snapshots and bumps last_updated
func (c *Collection) UpdatePriceSnapshot(ctx context.Context, itemID string, snapshot domain.PriceSnapshot) (*domain.CollectionItem, error) {
	return c.update(ctx, itemID, "update collection prices", snapshot.Columns(), snapshot.Apply)
}

func (c *Collection) update(ctx context.Context, itemID, action string, columns map[string]interface{}, apply func(*domain.CollectionItem)) (*domain.CollectionItem, error) {
	userID := c.currentUserID()
	if userID == "" {
		return nil, &common.AuthRequiredError{Action: action}
	}
	if !c.has(itemID) {
		return nil, itemNotFound(collectionCollection, itemID)
	}

	now := c.now()
	columns["last_updated"] = now
	if err := c.repo.Update(ctx, userID, itemID, columns); err != nil {
		return nil, storeFailure("update", collectionCollection, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == itemID {
			apply(&c.items[i])
			c.items[i].LastUpdated = now
			updated := c.items[i]
			return &updated, nil
		}
	}
	return nil, itemNotFound(collectionCollection, itemID)
}

// Get returns one item of the collection
func (c *Collection) Get(itemID string) (domain.CollectionItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if item.ID == itemID {
			return item, true
		}
	}
	return domain.CollectionItem{}, false
}

// AggregateValue sums purchase prices and condition-matched snapshots over the in-memory list
func (c *Collection) AggregateValue() domain.CollectionValue {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return domain.AggregateValue(c.items)
}

// Close stops following session changes
func (c *Collection) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

func (c *Collection) currentUserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

func (c *Collection) has(itemID string) bool {
	_, ok := c.Get(itemID)
	return ok
}
