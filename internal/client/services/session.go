package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Johnwickx812/MediNutri/internal/client/client"
	"github.com/Johnwickx812/MediNutri/internal/client/models"
	"github.com/Johnwickx812/MediNutri/internal/client/repositories/session"
	"github.com/Johnwickx812/MediNutri/internal/common"
	"github.com/Johnwickx812/MediNutri/internal/logging"
)

// ErrNotAuthenticated is returned by operations that need a signed-in user.
var ErrNotAuthenticated = errors.New("not authenticated")

// SessionService is the auth gate: it owns the bearer token and the current
// user identity, and drives when the state store loads and clears data. No
// data from a previous user survives a session switch.
type SessionService struct {
	mu     sync.Mutex
	log    logging.Logger
	client client.Client
	store  session.Repository
	app    *AppService

	token string
	user  *models.User

	now func() time.Time
}

func NewSessionService(c client.Client, store session.Repository, app *AppService, log logging.Logger) *SessionService {
	return &SessionService{
		log:    log,
		client: c,
		store:  store,
		app:    app,
		now:    time.Now,
	}
}

// Login authenticates against the backend, caches the session locally and
// loads the state store for the authenticated user.
func (s *SessionService) Login(ctx context.Context, email, password string) (models.User, error) {
	token, user, err := s.client.Login(ctx, email, password)
	if err != nil {
		return models.User{}, fmt.Errorf("login error: %w", err)
	}

	s.saveSession(ctx, token, user)
	s.client.SetToken(token)

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()

	s.app.Load(ctx, user.ID)
	return user, nil
}

// Register creates a new account on the backend.
func (s *SessionService) Register(ctx context.Context, name, email, password string) error {
	if err := s.client.Register(ctx, name, email, password); err != nil {
		return fmt.Errorf("registration error: %w", err)
	}
	return nil
}

// Restore resumes a previously cached session. The token's expiry is
// checked locally first; live validity is then confirmed against the
// backend. Any failure clears the cached session.
func (s *SessionService) Restore(ctx context.Context) (bool, error) {
	raw, err := s.store.Get(ctx, session.KeyToken)
	if err != nil {
		return false, fmt.Errorf("failed to read cached session: %w", err)
	}
	if raw == nil {
		return false, nil
	}

	token := string(raw)
	if err := checkToken(token, s.now()); err != nil {
		s.log.Info(ctx, "cached token rejected, clearing session", "reason", err)
		s.clearSession(ctx)
		return false, nil
	}

	s.client.SetToken(token)
	user, err := s.client.Me(ctx)
	if err != nil {
		s.log.Warn(ctx, "session validation failed, clearing session", "error", err)
		s.client.SetToken("")
		s.clearSession(ctx)
		return false, nil
	}

	s.saveSession(ctx, token, user)

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()

	s.app.Load(ctx, user.ID)
	return true, nil
}

// Logout wipes the cached session and resets the state store, cancelling
// every armed reminder for the signed-out session.
func (s *SessionService) Logout(ctx context.Context) {
	s.clearSession(ctx)
	s.client.SetToken("")

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	s.app.Reset()
}

// UpdateProfile replaces the cached profile fields of the signed-in user.
// The user id is immutable.
func (s *SessionService) UpdateProfile(ctx context.Context, updated models.User) error {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	updated.ID = s.user.ID
	s.user = &updated
	token := s.token
	s.mu.Unlock()

	s.saveSession(ctx, token, updated)
	return nil
}

// CurrentUser returns a copy of the signed-in user, if any.
func (s *SessionService) CurrentUser() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

func (s *SessionService) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

// saveSession caches the token and profile. Failures degrade to a
// memory-only session and are logged, never surfaced.
func (s *SessionService) saveSession(ctx context.Context, token string, user models.User) {
	if err := s.store.Set(ctx, session.KeyToken, []byte(token)); err != nil {
		s.log.Error(ctx, "failed to cache token", "error", err)
	}
	data, err := json.Marshal(user)
	if err != nil {
		s.log.Error(ctx, "failed to encode user profile", "error", err)
		return
	}
	if err := s.store.Set(ctx, session.KeyUser, data); err != nil {
		s.log.Error(ctx, "failed to cache user profile", "error", err)
	}
}

func (s *SessionService) clearSession(ctx context.Context) {
	if err := s.store.Clear(ctx); err != nil {
		s.log.Error(ctx, "failed to clear cached session", "error", err)
	}
}

// checkToken inspects the token's exp claim without verifying the
// signature; verification is the backend's job. Unparseable tokens are
// rejected as invalid, tokens without an exp claim never expire locally.
func checkToken(token string, now time.Time) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	if exp.Before(now) {
		return fmt.Errorf("%w at %s", common.ErrTokenExpired, exp.Format(time.RFC3339))
	}
	return nil
}
