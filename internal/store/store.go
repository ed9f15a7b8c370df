// Package store keeps the signed-in user's wishlist and collection in memory and mirrors every
// change to the document store.
package store

import (
	"fmt"
	"time"

	"github.com/colexalia/colexalia-backend/internal/common"
	"github.com/colexalia/colexalia-backend/internal/identity"
	"github.com/colexalia/colexalia-backend/pkg/logger"
)

// Session is the part of the session holder the stores depend on
type Session interface {
	Subscribe(listener identity.Listener) (unsubscribe func())
}

// Option configures a store
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func storeFailure(op, collection string, err error) error {
	logger.GetLogger().Error().
		Err(err).
		Str("op", op).
		Str("collection", collection).
		Msg("document store call failed")
	return &common.StoreError{Op: op, Collection: collection, Err: err}
}

func itemNotFound(collection, id string) error {
	return fmt.Errorf("%s item %s: %w", collection, id, common.ErrNotFound)
}
