package identity

import (
	"context"
	"sync"

	"github.com/colexalia/colexalia-backend/internal/domain"
	"github.com/colexalia/colexalia-backend/pkg/jwt"
)

type notification struct {
	seq    uint64
	user   *domain.SessionUser
	target int // 0 delivers to every listener
}

type subscription struct {
	fn    ChangeListener
	since uint64 // broadcasts with seq <= since predate the subscription
}

// Session is one client's connection to the identity backend. It implements Provider.
type Session struct {
	svc *Service

	mu        sync.Mutex
	user      *domain.SessionUser
	resolved  bool
	access    *jwt.TokenPair
	listeners map[int]subscription
	nextID    int
	seq       uint64
	queue     []notification

	wake      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

var _ Provider = (*Session)(nil)

func newSession(svc *Service) *Session {
	s := &Session{
		svc:       svc,
		listeners: map[int]subscription{},
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	go s.dispatch()
	return s
}

// SignUp creates a password account and signs it in
func (s *Session) SignUp(ctx context.Context, email, password string) (Change, error) {
	user, err := s.svc.signUp(ctx, email, password)
	if err != nil {
		return Change{}, err
	}
	return s.signedIn(user)
}

// SignIn signs in with email and password
func (s *Session) SignIn(ctx context.Context, email, password string) (Change, error) {
	user, err := s.svc.signIn(ctx, email, password)
	if err != nil {
		return Change{}, err
	}
	return s.signedIn(user)
}

// SignInWithOAuth signs in with a federated Google ID token
func (s *Session) SignInWithOAuth(ctx context.Context, idToken string) (Change, error) {
	user, err := s.svc.signInWithOAuth(ctx, idToken)
	if err != nil {
		return Change{}, err
	}
	return s.signedIn(user)
}

// SignOut revokes the session's tokens and publishes the signed-out state
func (s *Session) SignOut(ctx context.Context) (Change, error) {
	s.mu.Lock()
	pair := s.access
	s.access = nil
	s.mu.Unlock()

	if pair != nil {
		s.svc.revoke(ctx, pair.AccessID, pair.AccessExpiresAt)
		s.svc.revoke(ctx, pair.RefreshID, pair.RefreshExpiresAt)
	}
	return Change{Seq: s.publish(nil)}, nil
}

// Refresh exchanges a refresh token for a new token pair. The old refresh token is revoked.
func (s *Session) Refresh(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := s.svc.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, newError(CodeInvalidToken, "The refresh token is invalid or expired.", err)
	}
	if revoked, err := s.svc.revoked.IsTokenRevoked(ctx, claims.ID); err == nil && revoked {
		return nil, newError(CodeInvalidToken, "The refresh token has been revoked.", nil)
	}
	user, err := s.svc.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, newError(CodeInvalidToken, "The token's user no longer exists.", err)
	}

	s.svc.revoke(ctx, claims.ID, claims.ExpiresAt.Time)
	if _, err := s.signedIn(user); err != nil {
		return nil, err
	}
	return s.Tokens(), nil
}

// Tokens returns the tokens issued in this session, or nil
func (s *Session) Tokens() *jwt.TokenPair {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.access == nil {
		return nil
	}
	pair := *s.access
	return &pair
}

// CurrentUser returns the provider's view of the signed-in user, or nil
func (s *Session) CurrentUser() *domain.SessionUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyUser(s.user)
}

// OnAuthStateChanged implements Provider
func (s *Session) OnAuthStateChanged(listener ChangeListener) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	// broadcasts still queued are superseded by the replay of the current state
	s.listeners[id] = subscription{fn: listener, since: s.seq}
	if s.resolved {
		s.enqueueLocked(notification{user: copyUser(s.user), target: id})
	}
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Close stops notification delivery. Pending notifications are dropped.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *Session) signedIn(user *domain.User) (Change, error) {
	pair, err := s.svc.tokens.IssuePair(user.ID, user.Email, user.DisplayName)
	if err != nil {
		return Change{}, newError(CodeInternal, "An internal error has occurred.", err)
	}
	s.mu.Lock()
	s.access = pair
	s.mu.Unlock()

	su := user.ToSessionUser()
	seq := s.publish(su)
	return Change{Seq: seq, User: copyUser(su)}, nil
}

// publish records user as the session state and queues the broadcast. It returns the broadcast's seq.
func (s *Session) publish(user *domain.SessionUser) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = copyUser(user)
	s.resolved = true
	return s.enqueueLocked(notification{user: copyUser(user)})
}

func (s *Session) enqueueLocked(n notification) uint64 {
	s.seq++
	n.seq = s.seq
	s.queue = append(s.queue, n)
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return n.seq
}

// dispatch delivers queued notifications one at a time, in order.
func (s *Session) dispatch() {
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}

		for {
			s.mu.Lock()
			if len(s.queue) == 0 {
				s.mu.Unlock()
				break
			}
			n := s.queue[0]
			s.queue = s.queue[1:]
			var targets []ChangeListener
			if n.target != 0 {
				if sub, ok := s.listeners[n.target]; ok {
					targets = append(targets, sub.fn)
				}
			} else {
				for id := 1; id <= s.nextID; id++ {
					if sub, ok := s.listeners[id]; ok && n.seq > sub.since {
						targets = append(targets, sub.fn)
					}
				}
			}
			s.mu.Unlock()

			for _, l := range targets {
				l(Change{Seq: n.seq, User: copyUser(n.user)})
			}

			select {
			case <-s.done:
				return
			default:
			}
		}
	}
}

func copyUser(u *domain.SessionUser) *domain.SessionUser {
	if u == nil {
		return nil
	}
	c := *u
	c.Premium = false
	return &c
}
