package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/colexalia/colexalia-backend/internal/common"
	"github.com/colexalia/colexalia-backend/internal/domain"
	"github.com/colexalia/colexalia-backend/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProvider is a mock implementation of identity.Provider.
// Notifications are pushed synchronously through emit.
type MockProvider struct {
	mock.Mock
	listener identity.ChangeListener
	seq      uint64
}

func (m *MockProvider) SignUp(ctx context.Context, email, password string) (identity.Change, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(identity.Change), args.Error(1)
}

func (m *MockProvider) SignIn(ctx context.Context, email, password string) (identity.Change, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(identity.Change), args.Error(1)
}

func (m *MockProvider) SignInWithOAuth(ctx context.Context, idToken string) (identity.Change, error) {
	args := m.Called(ctx, idToken)
	return args.Get(0).(identity.Change), args.Error(1)
}

func (m *MockProvider) SignOut(ctx context.Context) (identity.Change, error) {
	args := m.Called(ctx)
	return args.Get(0).(identity.Change), args.Error(1)
}

func (m *MockProvider) OnAuthStateChanged(listener identity.ChangeListener) func() {
	m.listener = listener
	return func() { m.listener = nil }
}

// publish numbers a change the way a provider does without delivering it
func (m *MockProvider) publish(user *domain.SessionUser) identity.Change {
	m.seq++
	return identity.Change{Seq: m.seq, User: user}
}

func (m *MockProvider) deliver(change identity.Change) {
	if m.listener != nil {
		m.listener(change)
	}
}

func (m *MockProvider) emit(user *domain.SessionUser) {
	m.deliver(m.publish(user))
}

var alice = &domain.SessionUser{ID: "u-1", Email: "alice@example.com", Provider: domain.ProviderPassword}

func TestHolder_StartsUnknown(t *testing.T) {
	p := new(MockProvider)
	h := NewHolder(p)

	assert.Equal(t, StateUnknown, h.State())
	assert.Nil(t, h.CurrentUser())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, h.Wait(ctx), context.DeadlineExceeded)

	p.emit(nil)
	assert.Equal(t, StateResolved, h.State())
	assert.NoError(t, h.Wait(context.Background()))
	assert.Nil(t, h.CurrentUser())
}

func TestHolder_SubscribersRunBeforeResolved(t *testing.T) {
	p := new(MockProvider)
	h := NewHolder(p)

	var seen []*domain.SessionUser
	h.Subscribe(func(u *domain.SessionUser) {
		select {
		case <-h.ready:
			t.Error("holder resolved before subscriber ran")
		default:
		}
		seen = append(seen, u)
	})

	p.emit(alice)
	require.Len(t, seen, 1)
	assert.Equal(t, "u-1", seen[0].ID)
}

func TestHolder_SubscribeReplaysResolvedState(t *testing.T) {
	p := new(MockProvider)
	h := NewHolder(p)
	p.emit(alice)

	var seen []*domain.SessionUser
	unsubscribe := h.Subscribe(func(u *domain.SessionUser) { seen = append(seen, u) })
	require.Len(t, seen, 1)
	assert.Equal(t, "u-1", seen[0].ID)

	p.emit(nil)
	require.Len(t, seen, 2)
	assert.Nil(t, seen[1])

	unsubscribe()
	p.emit(alice)
	assert.Len(t, seen, 2)
}

func TestHolder_IgnoresRepeatedNotification(t *testing.T) {
	p := new(MockProvider)
	h := NewHolder(p)

	calls := 0
	h.Subscribe(func(*domain.SessionUser) { calls++ })
	p.emit(alice)
	p.emit(alice)
	assert.Equal(t, 1, calls)
}

func TestHolder_LogIn(t *testing.T) {
	p := new(MockProvider)
	h := NewHolder(p)
	p.emit(nil)

	p.On("SignIn", mock.Anything, "alice@example.com", "secret1").Return(p.publish(alice), nil)
	user, err := h.LogIn(context.Background(), "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, "u-1", h.CurrentUser().ID)
	p.AssertExpectations(t)
}

func TestHolder_ProviderErrorPassesMessageThrough(t *testing.T) {
	p := new(MockProvider)
	h := NewHolder(p)

	providerErr := &identity.Error{Code: identity.CodeWeakPassword, Message: "Password should be at least 6 characters."}
	p.On("SignUp", mock.Anything, "a@b.com", "123").Return(identity.Change{}, providerErr)

	_, err := h.SignUp(context.Background(), "a@b.com", "123")
	var authErr *common.AuthProviderError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, providerErr.Error(), authErr.Error())
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestHolder_LogInWithGoogle(t *testing.T) {
	p := new(MockProvider)
	h := NewHolder(p)

	google := &domain.SessionUser{ID: "u-2", Email: "g@example.com", Provider: domain.ProviderGoogle}
	p.On("SignInWithOAuth", mock.Anything, "id-token").Return(p.publish(google), nil)

	user, err := h.LogInWithGoogle(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderGoogle, user.Provider)
}

func TestHolder_LogOutClearsUser(t *testing.T) {
	p := new(MockProvider)
	h := NewHolder(p)
	p.emit(alice)

	p.On("SignOut", mock.Anything).Return(p.publish(nil), nil)
	require.NoError(t, h.LogOut(context.Background()))
	assert.Nil(t, h.CurrentUser())
	assert.Equal(t, StateResolved, h.State())

	p2 := new(MockProvider)
	h2 := NewHolder(p2)
	p2.emit(alice)
	p2.On("SignOut", mock.Anything).Return(identity.Change{}, errors.New("network down"))
	err := h2.LogOut(context.Background())
	assert.ErrorAs(t, err, new(*common.AuthProviderError))
	assert.NotNil(t, h2.CurrentUser())
}

func TestHolder_ProfileUpdatesAreLocalOnly(t *testing.T) {
	p := new(MockProvider)
	h := NewHolder(p)

	assert.ErrorIs(t, h.UpdateDisplayName("x"), common.ErrAuthRequired)
	assert.ErrorIs(t, h.UpdateEmail("x@y.com"), common.ErrAuthRequired)
	assert.ErrorIs(t, h.UpdatePassword("secret2"), common.ErrAuthRequired)

	p.emit(alice)
	require.NoError(t, h.UpdateDisplayName("Alice"))
	require.NoError(t, h.UpdateEmail("new@example.com"))
	require.NoError(t, h.UpdatePassword("secret2"))

	user := h.CurrentUser()
	assert.Equal(t, "Alice", user.DisplayName)
	assert.Equal(t, "new@example.com", user.Email)
	assert.False(t, user.Premium)

	// the provider was never asked to change anything
	p.AssertNotCalled(t, "SignUp", mock.Anything, mock.Anything, mock.Anything)
	p.AssertNotCalled(t, "SignIn", mock.Anything, mock.Anything, mock.Anything)
}

func TestHolder_CurrentUserIsACopy(t *testing.T) {
	p := new(MockProvider)
	h := NewHolder(p)
	p.emit(&domain.SessionUser{ID: "u-1", Premium: true})

	user := h.CurrentUser()
	assert.False(t, user.Premium)
	user.DisplayName = "mutated"
	assert.Empty(t, h.CurrentUser().DisplayName)
}

func TestHolder_CloseUnsubscribes(t *testing.T) {
	p := new(MockProvider)
	h := NewHolder(p)
	h.Close()
	p.emit(alice)
	assert.Equal(t, StateUnknown, h.State())
}

func TestHolder_IgnoresEchoOlderThanLastChange(t *testing.T) {
	p := new(MockProvider)
	h := NewHolder(p)
	p.emit(nil)

	login := p.publish(alice)
	p.On("SignIn", mock.Anything, "alice@example.com", "secret1").Return(login, nil)
	p.On("SignOut", mock.Anything).Return(p.publish(nil), nil)

	var seen []*domain.SessionUser
	h.Subscribe(func(u *domain.SessionUser) { seen = append(seen, u) })

	_, err := h.LogIn(context.Background(), "alice@example.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, h.LogOut(context.Background()))

	// the login echo shows up after the logout already applied
	p.deliver(login)
	assert.Nil(t, h.CurrentUser())
	assert.Len(t, seen, 3, "initial, login, logout")
}
