package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/apiclient"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

const defaultDisplayName = "User"

// Authenticator is the remote side of login and registration.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*apiclient.AuthResult, error)
	Register(ctx context.Context, name, email, password string) (*apiclient.AuthResult, error)
}

// Store owns the single active session. The token and the user are persisted
// together; the store never holds one without the other.
type Store struct {
	mu      sync.RWMutex
	storage storage.Storage
	auth    Authenticator
	log     *zap.Logger

	user  *domain.SessionUser
	token string
}

func NewStore(ctx context.Context, st storage.Storage, auth Authenticator, log *zap.Logger) *Store {
	s := &Store{storage: st, auth: auth, log: log}
	s.load(ctx)
	return s
}

// load restores a persisted session. A half-persisted or unparsable session
// is wiped so both keys are absent afterwards.
func (s *Store) load(ctx context.Context) {
	rawToken, tokenErr := s.storage.Get(ctx, storage.KeyToken)
	rawUser, userErr := s.storage.Get(ctx, storage.KeyUser)

	if errors.Is(tokenErr, storage.ErrNotFound) && errors.Is(userErr, storage.ErrNotFound) {
		return
	}
	if tokenErr != nil || userErr != nil || len(rawToken) == 0 {
		s.log.Warn("persisted session is incomplete, discarding",
			zap.NamedError("token_error", tokenErr), zap.NamedError("user_error", userErr))
		s.wipe(ctx)
		return
	}

	var u domain.SessionUser
	if err := json.Unmarshal(rawUser, &u); err != nil {
		s.log.Warn("persisted session user is malformed, discarding", zap.Error(err))
		s.wipe(ctx)
		return
	}
	if u.ID == "" {
		s.log.Warn("persisted session user has no id, discarding")
		s.wipe(ctx)
		return
	}
	if u.Role != domain.RoleAdmin {
		u.Role = domain.RoleUser
	}
	s.user = &u
	s.token = string(rawToken)
}

func (s *Store) wipe(ctx context.Context) {
	if err := s.storage.Delete(ctx, storage.KeyToken); err != nil {
		s.log.Warn("failed to delete persisted token", zap.Error(err))
	}
	if err := s.storage.Delete(ctx, storage.KeyUser); err != nil {
		s.log.Warn("failed to delete persisted user", zap.Error(err))
	}
}

// userFromRemote collapses the API's role and isAdmin flags into one Role.
func userFromRemote(r *apiclient.RemoteUser) domain.SessionUser {
	u := domain.SessionUser{
		ID:          r.ID,
		DisplayName: r.Name,
		Email:       r.Email,
		Role:        domain.RoleUser,
	}
	if u.DisplayName == "" {
		u.DisplayName = defaultDisplayName
	}
	if domain.Role(r.Role) == domain.RoleAdmin || (r.IsAdmin != nil && *r.IsAdmin) {
		u.Role = domain.RoleAdmin
	}
	return u
}

func (s *Store) Login(ctx context.Context, email, password string) (*domain.SessionUser, error) {
	res, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, &AuthError{Op: "login", Err: err}
	}
	return s.establish(ctx, "login", res)
}

// Register creates the account and leaves the new user logged in.
func (s *Store) Register(ctx context.Context, name, email, password string) (*domain.SessionUser, error) {
	res, err := s.auth.Register(ctx, name, email, password)
	if err != nil {
		return nil, &AuthError{Op: "register", Err: err}
	}
	return s.establish(ctx, "register", res)
}

func (s *Store) establish(ctx context.Context, op string, res *apiclient.AuthResult) (*domain.SessionUser, error) {
	if res == nil || res.User == nil || res.Token == "" {
		return nil, &AuthError{Op: op, Err: ErrIncompleteResponse}
	}
	u := userFromRemote(res.User)

	raw, err := json.Marshal(u)
	if err != nil {
		return nil, &AuthError{Op: op, Err: fmt.Errorf("marshal user: %w", err)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Set(ctx, storage.KeyToken, []byte(res.Token)); err != nil {
		return nil, &AuthError{Op: op, Err: fmt.Errorf("persist token: %w", err)}
	}
	if err := s.storage.Set(ctx, storage.KeyUser, raw); err != nil {
		s.wipe(ctx)
		s.user, s.token = nil, ""
		return nil, &AuthError{Op: op, Err: fmt.Errorf("persist user: %w", err)}
	}

	s.user = &u
	s.token = res.Token
	s.log.Info("session established", zap.String("op", op), zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	out := u
	return &out, nil
}

// Logout always succeeds; storage errors are only logged.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.wipe(ctx)
	s.user = nil
	s.token = ""
}

// User returns a copy of the active user, or nil when logged out.
func (s *Store) User() *domain.SessionUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) IsAuthenticated() bool {
	return s.User() != nil
}

func (s *Store) IsAdmin() bool {
	u := s.User()
	return u != nil && u.IsAdmin()
}

// ExpiresAt reads the exp claim of a JWT token without verifying it. The
// second result is false when there is no token, it is not a JWT, or it
// carries no expiry.
func (s *Store) ExpiresAt() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
