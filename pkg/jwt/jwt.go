package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Token types carried in the "typ" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims - 액세스/리프레시 토큰 페이로드
type Claims struct {
	jwt.RegisteredClaims
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	Type        string `json:"typ"`
}

// Manager issues and verifies HS256 tokens for signed-in users.
type Manager struct {
	secretKey     []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	now           func() time.Time
}

// NewManager creates a JWT manager
func NewManager(secret string, accessExpiry, refreshExpiry time.Duration) *Manager {
	return &Manager{
		secretKey:     []byte(secret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
		now:           time.Now,
	}
}

// AccessExpiry returns the configured access token lifetime
func (m *Manager) AccessExpiry() time.Duration {
	return m.accessExpiry
}

// GenerateAccessToken issues a short-lived access token
func (m *Manager) GenerateAccessToken(userID, email, displayName string) (string, error) {
	return m.generate(userID, email, displayName, TokenTypeAccess, m.accessExpiry)
}

// GenerateRefreshToken issues a long-lived refresh token
func (m *Manager) GenerateRefreshToken(userID, email string) (string, error) {
	return m.generate(userID, email, "", TokenTypeRefresh, m.refreshExpiry)
}

// TokenPair is an access/refresh pair with the ids needed to revoke them
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessID         string
	RefreshID        string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// IssuePair generates an access token and a refresh token for one user
func (m *Manager) IssuePair(userID, email, displayName string) (*TokenPair, error) {
	access, accessClaims, err := m.sign(userID, email, displayName, TokenTypeAccess, m.accessExpiry)
	if err != nil {
		return nil, err
	}
	refresh, refreshClaims, err := m.sign(userID, email, "", TokenTypeRefresh, m.refreshExpiry)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessID:         accessClaims.ID,
		RefreshID:        refreshClaims.ID,
		AccessExpiresAt:  accessClaims.ExpiresAt.Time,
		RefreshExpiresAt: refreshClaims.ExpiresAt.Time,
	}, nil
}

func (m *Manager) generate(userID, email, displayName, typ string, ttl time.Duration) (string, error) {
	token, _, err := m.sign(userID, email, displayName, typ, ttl)
	return token, err
}

func (m *Manager) sign(userID, email, displayName, typ string, ttl time.Duration) (string, *Claims, error) {
	now := m.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:      userID,
		Email:       email,
		DisplayName: displayName,
		Type:        typ,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretKey)
	if err != nil {
		return "", nil, err
	}
	return token, claims, nil
}

// VerifyToken verifies an access token
func (m *Manager) VerifyToken(tokenString string) (*Claims, error) {
	return m.verify(tokenString, TokenTypeAccess)
}

// VerifyRefreshToken verifies a refresh token
func (m *Manager) VerifyRefreshToken(tokenString string) (*Claims, error) {
	return m.verify(tokenString, TokenTypeRefresh)
}

//nolint:dupl // JWT 검증 로직은 표준 패턴을 따르므로 유사함
func (m *Manager) verify(tokenString, typ string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secretKey, nil
	}, jwt.WithTimeFunc(m.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Type != typ {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
