package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/colexalia/colexalia-backend/internal/common"
	"github.com/colexalia/colexalia-backend/internal/domain"
	"github.com/colexalia/colexalia-backend/internal/repository"
	"github.com/colexalia/colexalia-backend/pkg/cache"
	"github.com/colexalia/colexalia-backend/pkg/jwt"
	"github.com/colexalia/colexalia-backend/pkg/logger"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// Service owns the shared identity backend: accounts, token issuance and revocation.
type Service struct {
	users     repository.UserRepository
	tokens    *jwt.Manager
	federated *jwt.FederatedManager
	revoked   cache.Service
	validate  *validator.Validate
}

// NewService creates the identity backend. federated and revoked may be nil.
func NewService(users repository.UserRepository, tokens *jwt.Manager, federated *jwt.FederatedManager, revoked cache.Service) *Service {
	if revoked == nil {
		revoked = cache.NewService(nil)
	}
	return &Service{
		users:     users,
		tokens:    tokens,
		federated: federated,
		revoked:   revoked,
		validate:  validator.New(),
	}
}

// OpenSession starts a client session. When accessToken is valid the session starts signed in
// as its user; otherwise it starts signed out. Either way the initial state is published once.
func (s *Service) OpenSession(ctx context.Context, accessToken string) *Session {
	sess := newSession(s)

	var user *domain.SessionUser
	if accessToken != "" {
		u, claims, err := s.resume(ctx, accessToken)
		if err != nil {
			logger.GetLogger().Debug().Err(err).Msg("session resume rejected")
		} else {
			user = u
			sess.access = &jwt.TokenPair{
				AccessToken:     accessToken,
				AccessID:        claims.ID,
				AccessExpiresAt: claims.ExpiresAt.Time,
			}
		}
	}

	sess.publish(user)
	return sess
}

func (s *Service) resume(ctx context.Context, accessToken string) (*domain.SessionUser, *jwt.Claims, error) {
	claims, err := s.tokens.VerifyToken(accessToken)
	if err != nil {
		return nil, nil, newError(CodeInvalidToken, "The access token is invalid or expired.", err)
	}
	if revoked, err := s.revoked.IsTokenRevoked(ctx, claims.ID); err != nil {
		logger.GetLogger().Warn().Err(err).Msg("token revocation check failed")
	} else if revoked {
		return nil, nil, newError(CodeInvalidToken, "The access token has been revoked.", nil)
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, nil, newError(CodeInvalidToken, "The token's user no longer exists.", err)
	}
	return user.ToSessionUser(), claims, nil
}

func (s *Service) signUp(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, newError(CodeInvalidEmail, "The email address is badly formatted.", err)
	}
	if len(password) < MinPasswordLength {
		return nil, newError(CodeWeakPassword, "Password should be at least 6 characters.", nil)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, newError(CodeEmailInUse, "The email address is already in use by another account.", nil)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, newError(CodeInternal, "An internal error has occurred.", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, newError(CodeInternal, "An internal error has occurred.", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Provider:     domain.ProviderPassword,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrUserAlreadyExists) {
			return nil, newError(CodeEmailInUse, "The email address is already in use by another account.", err)
		}
		return nil, newError(CodeInternal, "An internal error has occurred.", err)
	}
	return user, nil
}

func (s *Service) signIn(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, newError(CodeInvalidCredential, "The supplied credentials are incorrect.", nil)
		}
		return nil, newError(CodeInternal, "An internal error has occurred.", err)
	}
	if user.PasswordHash == "" {
		return nil, newError(CodeInvalidCredential, "The supplied credentials are incorrect.", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, newError(CodeInvalidCredential, "The supplied credentials are incorrect.", nil)
	}
	return user, nil
}

// signInWithOAuth finds or creates the account behind a federated ID token.
// An existing password account with the same email is linked to the federated subject
// only when the broker vouches for the email.
func (s *Service) signInWithOAuth(ctx context.Context, idToken string) (*domain.User, error) {
	if !s.federated.Enabled() {
		return nil, newError(CodeOperationNotAllowed, "Google sign-in is not enabled.", nil)
	}
	claims, err := s.federated.VerifyIDToken(idToken)
	if err != nil {
		return nil, newError(CodeInvalidCredential, "The supplied auth credential is malformed or has expired.", err)
	}

	user, err := s.users.FindByOAuthSubject(ctx, domain.ProviderGoogle, claims.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, newError(CodeInternal, "An internal error has occurred.", err)
	}

	email := normalizeEmail(claims.Email)
	user, err = s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if !claims.EmailVerified {
			return nil, newError(CodeAccountExists, "An account already exists with the same email address but different sign-in credentials.", nil)
		}
		if err := s.users.LinkOAuth(ctx, user.ID, domain.ProviderGoogle, claims.Subject); err != nil {
			return nil, newError(CodeInternal, "An internal error has occurred.", err)
		}
		user.Provider = domain.ProviderGoogle
		return user, nil
	case !errors.Is(err, common.ErrNotFound):
		return nil, newError(CodeInternal, "An internal error has occurred.", err)
	}

	subject := claims.Subject
	user = &domain.User{
		Email:        email,
		DisplayName:  claims.Name,
		Provider:     domain.ProviderGoogle,
		OAuthSubject: &subject,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, newError(CodeInternal, "An internal error has occurred.", err)
	}
	return user, nil
}

func (s *Service) revoke(ctx context.Context, id string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if id == "" || ttl <= 0 {
		return
	}
	if err := s.revoked.RevokeToken(ctx, id, ttl); err != nil {
		logger.GetLogger().Warn().Err(err).Msg("token revocation failed")
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
