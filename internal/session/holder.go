// Package session holds the signed-in user of one client session and republishes
// identity provider notifications to the stores that depend on it.
package session

import (
	"context"
	"sync"

	"github.com/colexalia/colexalia-backend/internal/common"
	"github.com/colexalia/colexalia-backend/internal/domain"
	"github.com/colexalia/colexalia-backend/internal/identity"
	"github.com/colexalia/colexalia-backend/pkg/logger"
)

// State is the observable state of the holder
type State int

const (
	// StateUnknown - provider has not reported a session yet
	StateUnknown State = iota
	// StateResolved - signed in or signed out
	StateResolved
)

func (s State) String() string {
	if s == StateResolved {
		return "resolved"
	}
	return "unknown"
}

// Holder tracks the current user as reported by an identity provider.
type Holder struct {
	provider identity.Provider

	// deliver serializes listener calls so a replay never races a broadcast
	deliver sync.Mutex

	mu      sync.RWMutex
	state   State
	user    *domain.SessionUser
	applied uint64 // seq of the newest provider change applied
	subs    map[int]identity.Listener
	nextID  int

	ready       chan struct{}
	readyOnce   sync.Once
	unsubscribe func()
}

// NewHolder registers with provider once. The holder stays StateUnknown until the provider
// delivers its first notification.
func NewHolder(provider identity.Provider) *Holder {
	h := &Holder{
		provider: provider,
		subs:     map[int]identity.Listener{},
		ready:    make(chan struct{}),
	}
	h.unsubscribe = provider.OnAuthStateChanged(h.apply)
	return h
}

// apply makes change the current session. Changes older than the last one applied are
// dropped, so a delayed echo of an earlier sign-in cannot undo a later sign-out.
// Repeated notifications for the same user are ignored.
func (h *Holder) apply(change identity.Change) {
	h.deliver.Lock()
	defer h.deliver.Unlock()

	user := change.User
	h.mu.Lock()
	if change.Seq <= h.applied {
		h.mu.Unlock()
		return
	}
	h.applied = change.Seq
	if h.state == StateResolved && sameUser(h.user, user) {
		h.mu.Unlock()
		return
	}
	h.state = StateResolved
	h.user = copyUser(user)
	listeners := make([]identity.Listener, 0, len(h.subs))
	for id := 1; id <= h.nextID; id++ {
		if l, ok := h.subs[id]; ok {
			listeners = append(listeners, l)
		}
	}
	h.mu.Unlock()

	for _, l := range listeners {
		l(copyUser(user))
	}
	h.readyOnce.Do(func() { close(h.ready) })
}

// Wait blocks until the session is resolved or ctx is done
func (h *Holder) Wait(ctx context.Context) error {
	select {
	case <-h.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the current state
func (h *Holder) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// CurrentUser returns a copy of the signed-in user, or nil
func (h *Holder) CurrentUser() *domain.SessionUser {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return copyUser(h.user)
}

// Subscribe registers listener for session changes. When the session is already resolved the
// current user is replayed to listener before Subscribe returns.
// Listeners must not call Subscribe themselves.
func (h *Holder) Subscribe(listener identity.Listener) (unsubscribe func()) {
	h.deliver.Lock()
	defer h.deliver.Unlock()

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs[id] = listener
	resolved := h.state == StateResolved
	user := copyUser(h.user)
	h.mu.Unlock()

	if resolved {
		listener(user)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

// SignUp creates an account and signs it in
func (h *Holder) SignUp(ctx context.Context, email, password string) (*domain.SessionUser, error) {
	change, err := h.provider.SignUp(ctx, email, password)
	if err != nil {
		return nil, h.providerError("sign up", err)
	}
	h.apply(change)
	return copyUser(change.User), nil
}

// LogIn signs in with email and password
func (h *Holder) LogIn(ctx context.Context, email, password string) (*domain.SessionUser, error) {
	change, err := h.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, h.providerError("log in", err)
	}
	h.apply(change)
	return copyUser(change.User), nil
}

// LogInWithGoogle signs in with a Google ID token
func (h *Holder) LogInWithGoogle(ctx context.Context, idToken string) (*domain.SessionUser, error) {
	change, err := h.provider.SignInWithOAuth(ctx, idToken)
	if err != nil {
		return nil, h.providerError("log in with google", err)
	}
	h.apply(change)
	return copyUser(change.User), nil
}

// LogOut signs out and clears the local user
func (h *Holder) LogOut(ctx context.Context) error {
	change, err := h.provider.SignOut(ctx)
	if err != nil {
		return h.providerError("log out", err)
	}
	h.apply(change)
	return nil
}

// UpdateDisplayName changes the display name of the local user view only.
// Nothing is sent to the identity provider.
func (h *Holder) UpdateDisplayName(displayName string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.user == nil {
		return &common.AuthRequiredError{Action: "update the display name"}
	}
	h.user.DisplayName = displayName
	h.warnLocalOnly("display_name")
	return nil
}

// UpdateEmail changes the email of the local user view only.
// Nothing is sent to the identity provider.
func (h *Holder) UpdateEmail(email string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.user == nil {
		return &common.AuthRequiredError{Action: "update the email"}
	}
	h.user.Email = email
	h.warnLocalOnly("email")
	return nil
}

// UpdatePassword accepts a new password and discards it.
func (h *Holder) UpdatePassword(_ string) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.user == nil {
		return &common.AuthRequiredError{Action: "update the password"}
	}
	h.warnLocalOnly("password")
	return nil
}

// Close stops listening to the provider
func (h *Holder) Close() {
	if h.unsubscribe != nil {
		h.unsubscribe()
	}
}

func (h *Holder) warnLocalOnly(field string) {
	logger.GetLogger().Warn().
		Str("user_id", h.user.ID).
		Str("field", field).
		Msg("profile change kept in session only; identity provider not updated")
}

func (h *Holder) providerError(op string, err error) error {
	logger.GetLogger().Warn().Err(err).Str("op", op).Msg("identity provider call failed")
	return &common.AuthProviderError{Op: op, Err: err}
}

func sameUser(a, b *domain.SessionUser) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID == b.ID
}

func copyUser(u *domain.SessionUser) *domain.SessionUser {
	if u == nil {
		return nil
	}
	c := *u
	c.Premium = false
	return &c
}
