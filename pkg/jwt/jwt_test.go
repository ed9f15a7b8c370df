package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewManager("secret", 15*time.Minute, 24*time.Hour)

	token, err := m.GenerateAccessToken("u1", "a@b.com", "Alice")
	require.NoError(t, err)

	claims, err := m.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, "Alice", claims.DisplayName)
	assert.NotEmpty(t, claims.ID)
}

func TestRefreshTokenIsNotAnAccessToken(t *testing.T) {
	m := NewManager("secret", 15*time.Minute, 24*time.Hour)

	refresh, err := m.GenerateRefreshToken("u1", "a@b.com")
	require.NoError(t, err)

	_, err = m.VerifyToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err := m.VerifyRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
}

func TestIssuePair(t *testing.T) {
	m := NewManager("secret", 15*time.Minute, 24*time.Hour)

	pair, err := m.IssuePair("u1", "a@b.com", "Alice")
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessID, pair.RefreshID)
	assert.True(t, pair.RefreshExpiresAt.After(pair.AccessExpiresAt))

	access, err := m.VerifyToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, pair.AccessID, access.ID)

	refresh, err := m.VerifyRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshID, refresh.ID)
}

func TestExpiredToken(t *testing.T) {
	m := NewManager("secret", time.Minute, time.Hour)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := m.GenerateAccessToken("u1", "a@b.com", "")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.VerifyToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestWrongSecret(t *testing.T) {
	token, err := NewManager("one", time.Minute, time.Hour).GenerateAccessToken("u1", "a@b.com", "")
	require.NoError(t, err)

	_, err = NewManager("two", time.Minute, time.Hour).VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestFederatedIDToken(t *testing.T) {
	fm := NewFederatedManager("broker-secret", "https://accounts.google.com")

	token, err := fm.SignIDToken(&FederatedClaims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   "google-123",
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: "g@example.com",
		Name:  "Gamer",
	})
	require.NoError(t, err)

	claims, err := fm.VerifyIDToken(token)
	require.NoError(t, err)
	assert.Equal(t, "google-123", claims.Subject)
	assert.Equal(t, "g@example.com", claims.Email)

	other := NewFederatedManager("broker-secret", "https://other.example")
	_, err = other.VerifyIDToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestFederatedDisabled(t *testing.T) {
	fm := NewFederatedManager("", "")
	assert.False(t, fm.Enabled())

	_, err := fm.VerifyIDToken("anything")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
