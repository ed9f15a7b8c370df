// Package identity is the email/password and OAuth identity backend.
// Each client session talks to it through a Provider that pushes session changes asynchronously.
package identity

import (
	"context"

	"github.com/colexalia/colexalia-backend/internal/domain"
)

// Listener receives session changes. user is nil when signed out.
type Listener func(user *domain.SessionUser)

// Change is one session state published by a provider. Seq grows with every publish,
// so a change with a lower Seq than one already seen is stale.
type Change struct {
	Seq  uint64
	User *domain.SessionUser
}

// ChangeListener receives provider notifications
type ChangeListener func(change Change)

// Provider is the identity provider as seen by one client session.
// Each successful call returns the change it published; the same change is also delivered
// to listeners later.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (Change, error)
	SignIn(ctx context.Context, email, password string) (Change, error)
	SignInWithOAuth(ctx context.Context, idToken string) (Change, error)
	SignOut(ctx context.Context) (Change, error)
	// OnAuthStateChanged registers listener. Notifications are delivered in order on the
	// provider's own goroutine; once the session is known the current state is replayed to
	// the new listener. The returned func unsubscribes.
	OnAuthStateChanged(listener ChangeListener) (unsubscribe func())
}
