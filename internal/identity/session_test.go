package identity

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/colexalia/colexalia-backend/internal/common"
	"github.com/colexalia/colexalia-backend/internal/domain"
	"github.com/colexalia/colexalia-backend/internal/repository"
	"github.com/colexalia/colexalia-backend/pkg/cache"
	"github.com/colexalia/colexalia-backend/pkg/jwt"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type IdentitySuite struct {
	suite.Suite
	svc       *Service
	users     repository.UserRepository
	federated *jwt.FederatedManager
}

func TestIdentitySuite(t *testing.T) {
	suite.Run(t, new(IdentitySuite))
}

func (s *IdentitySuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	s.Require().NoError(err)
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	s.Require().NoError(db.AutoMigrate(&domain.User{}))

	mr := miniredis.RunT(s.T())
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s.T().Cleanup(func() { _ = rdb.Close() })

	s.users = repository.NewUserRepository(db)
	s.federated = jwt.NewFederatedManager("broker-secret", "https://accounts.google.com")
	s.svc = NewService(s.users, jwt.NewManager("test-secret", 15*time.Minute, time.Hour), s.federated, cache.NewService(rdb))
}

// recorder collects notifications in delivery order
type recorder struct {
	ch chan Change
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan Change, 32)}
}

func (r *recorder) listen(c Change) { r.ch <- c }

func (r *recorder) next(t *testing.T) Change {
	t.Helper()
	select {
	case c := <-r.ch:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("no notification delivered")
		return Change{}
	}
}

func (s *IdentitySuite) open(token string) *Session {
	sess := s.svc.OpenSession(context.Background(), token)
	s.T().Cleanup(sess.Close)
	return sess
}

func (s *IdentitySuite) TestNotificationsAreOrdered() {
	sess := s.open("")
	rec := newRecorder()
	sess.OnAuthStateChanged(rec.listen)

	initial := rec.next(s.T())
	s.Nil(initial.User, "initial signed-out state is replayed")

	change, err := sess.SignUp(context.Background(), "Player@Example.com ", "secret1")
	s.Require().NoError(err)
	s.Equal("player@example.com", change.User.Email)
	s.False(change.User.Premium)
	s.Greater(change.Seq, initial.Seq)

	got := rec.next(s.T())
	s.Require().NotNil(got.User)
	s.Equal(change.User.ID, got.User.ID)
	s.Equal(change.Seq, got.Seq, "the echo carries the seq the call returned")

	out, err := sess.SignOut(context.Background())
	s.Require().NoError(err)
	s.Greater(out.Seq, change.Seq)
	last := rec.next(s.T())
	s.Nil(last.User)
	s.Equal(out.Seq, last.Seq)
}

func (s *IdentitySuite) TestUnsubscribeStopsDelivery() {
	sess := s.open("")
	rec := newRecorder()
	unsubscribe := sess.OnAuthStateChanged(rec.listen)
	s.Nil(rec.next(s.T()).User)

	unsubscribe()
	_, err := sess.SignUp(context.Background(), "a@b.com", "secret1")
	s.Require().NoError(err)

	select {
	case <-rec.ch:
		s.Fail("unsubscribed listener was notified")
	case <-time.After(100 * time.Millisecond):
	}
}

func (s *IdentitySuite) TestSignUpValidation() {
	sess := s.open("")
	ctx := context.Background()

	_, err := sess.SignUp(ctx, "not-an-email", "secret1")
	s.assertCode(err, CodeInvalidEmail)

	_, err = sess.SignUp(ctx, "a@b.com", "12345")
	s.assertCode(err, CodeWeakPassword)

	_, err = sess.SignUp(ctx, "a@b.com", "123456")
	s.Require().NoError(err)

	_, err = s.open("").SignUp(ctx, "A@B.com", "654321")
	s.assertCode(err, CodeEmailInUse)
	s.ErrorIs(err, common.ErrUserAlreadyExists)
}

func (s *IdentitySuite) TestSignIn() {
	ctx := context.Background()
	_, err := s.open("").SignUp(ctx, "a@b.com", "secret1")
	s.Require().NoError(err)

	sess := s.open("")
	_, err = sess.SignIn(ctx, "a@b.com", "wrong!!")
	s.assertCode(err, CodeInvalidCredential)
	s.ErrorIs(err, common.ErrInvalidCredentials)

	_, err = sess.SignIn(ctx, "nobody@b.com", "secret1")
	s.assertCode(err, CodeInvalidCredential)

	change, err := sess.SignIn(ctx, "a@b.com", "secret1")
	s.Require().NoError(err)
	s.Equal("a@b.com", change.User.Email)
	s.NotNil(sess.Tokens())
}

func (s *IdentitySuite) TestResumeAndRevocation() {
	ctx := context.Background()
	first := s.open("")
	change, err := first.SignUp(ctx, "a@b.com", "secret1")
	s.Require().NoError(err)
	token := first.Tokens().AccessToken

	resumed := s.open(token)
	s.Require().NotNil(resumed.CurrentUser())
	s.Equal(change.User.ID, resumed.CurrentUser().ID)

	s.Nil(s.open("garbage").CurrentUser())

	_, err = resumed.SignOut(ctx)
	s.Require().NoError(err)
	s.Nil(s.open(token).CurrentUser(), "signed-out token must not resume")
}

func (s *IdentitySuite) TestRefresh() {
	ctx := context.Background()
	sess := s.open("")
	_, err := sess.SignUp(ctx, "a@b.com", "secret1")
	s.Require().NoError(err)
	refresh := sess.Tokens().RefreshToken

	other := s.open("")
	pair, err := other.Refresh(ctx, refresh)
	s.Require().NoError(err)
	s.NotEmpty(pair.AccessToken)
	s.NotNil(other.CurrentUser())

	_, err = s.open("").Refresh(ctx, refresh)
	s.assertCode(err, CodeInvalidToken)
}

func (s *IdentitySuite) TestOAuthCreatesAndLinks() {
	ctx := context.Background()
	idToken := func(sub, email string, verified bool) string {
		tok, err := s.federated.SignIDToken(&jwt.FederatedClaims{
			RegisteredClaims: gojwt.RegisteredClaims{
				Subject:   sub,
				ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			Email:         email,
			EmailVerified: verified,
			Name:          "Gamer",
		})
		s.Require().NoError(err)
		return tok
	}

	created, err := s.open("").SignInWithOAuth(ctx, idToken("g-1", "new@b.com", true))
	s.Require().NoError(err)
	s.Equal(domain.ProviderGoogle, created.User.Provider)
	s.Equal("Gamer", created.User.DisplayName)

	again, err := s.open("").SignInWithOAuth(ctx, idToken("g-1", "new@b.com", true))
	s.Require().NoError(err)
	s.Equal(created.User.ID, again.User.ID)

	password, err := s.open("").SignUp(ctx, "old@b.com", "secret1")
	s.Require().NoError(err)

	// an unverified email never takes over the password account
	_, err = s.open("").SignInWithOAuth(ctx, idToken("g-attacker", "old@b.com", false))
	s.assertCode(err, CodeAccountExists)
	s.ErrorIs(err, common.ErrUserAlreadyExists)
	_, err = s.users.FindByOAuthSubject(ctx, domain.ProviderGoogle, "g-attacker")
	s.ErrorIs(err, common.ErrNotFound)

	linked, err := s.open("").SignInWithOAuth(ctx, idToken("g-2", "old@b.com", true))
	s.Require().NoError(err)
	s.Equal(password.User.ID, linked.User.ID)

	_, err = s.open("").SignInWithOAuth(ctx, "not-a-token")
	s.assertCode(err, CodeInvalidCredential)
}

func (s *IdentitySuite) assertCode(err error, code string) {
	var idErr *Error
	s.Require().ErrorAs(err, &idErr)
	s.Equal(code, idErr.Code)
}

func TestOAuthDisabled(t *testing.T) {
	svc := NewService(nil, jwt.NewManager("x", time.Minute, time.Hour), nil, nil)
	sess := svc.OpenSession(context.Background(), "")
	defer sess.Close()

	_, err := sess.SignInWithOAuth(context.Background(), "token")
	var idErr *Error
	require.ErrorAs(t, err, &idErr)
	assert.Equal(t, CodeOperationNotAllowed, idErr.Code)
}
