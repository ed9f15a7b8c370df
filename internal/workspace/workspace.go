// Package workspace wires one client session: identity session, session holder and the
// wishlist and collection stores built on it.
package workspace

import (
	"context"
	"sync"

	"github.com/colexalia/colexalia-backend/internal/identity"
	"github.com/colexalia/colexalia-backend/internal/repository"
	"github.com/colexalia/colexalia-backend/internal/session"
	"github.com/colexalia/colexalia-backend/internal/store"
)

// Factory opens workspaces against shared backends
type Factory struct {
	identity    *identity.Service
	wishlists   repository.WishlistRepository
	collections repository.CollectionRepository
	storeOpts   []store.Option
}

// NewFactory creates a workspace factory
func NewFactory(
	identitySvc *identity.Service,
	wishlists repository.WishlistRepository,
	collections repository.CollectionRepository,
	opts ...store.Option,
) *Factory {
	return &Factory{
		identity:    identitySvc,
		wishlists:   wishlists,
		collections: collections,
		storeOpts:   opts,
	}
}

// Workspace is one client session with its stores. Stores are created on first use.
type Workspace struct {
	ctx     context.Context
	factory *Factory

	Session *identity.Session
	Holder  *session.Holder

	mu         sync.Mutex
	wishlist   *store.Wishlist
	collection *store.Collection
}

// Open starts a session for accessToken and waits until it is resolved.
// An empty, invalid or revoked token resolves as signed out.
func (f *Factory) Open(ctx context.Context, accessToken string) (*Workspace, error) {
	sess := f.identity.OpenSession(ctx, accessToken)
	holder := session.NewHolder(sess)
	ws := &Workspace{
		ctx:     ctx,
		factory: f,
		Session: sess,
		Holder:  holder,
	}
	if err := holder.Wait(ctx); err != nil {
		ws.Close()
		return nil, err
	}
	return ws, nil
}

// Wishlist returns the workspace's wishlist store
func (w *Workspace) Wishlist() *store.Wishlist {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.wishlist == nil {
		w.wishlist = store.NewWishlist(w.ctx, w.Holder, w.factory.wishlists, w.factory.storeOpts...)
	}
	return w.wishlist
}

// Collection returns the workspace's collection store
func (w *Workspace) Collection() *store.Collection {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.collection == nil {
		w.collection = store.NewCollection(w.ctx, w.Holder, w.factory.collections, w.factory.storeOpts...)
	}
	return w.collection
}

// Close unsubscribes everything and stops the session dispatcher
func (w *Workspace) Close() {
	w.mu.Lock()
	if w.wishlist != nil {
		w.wishlist.Close()
	}
	if w.collection != nil {
		w.collection.Close()
	}
	w.mu.Unlock()
	w.Holder.Close()
	w.Session.Close()
}
