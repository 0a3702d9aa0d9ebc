package session

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"agroconnect/contract"
	"agroconnect/domain"
	"agroconnect/domain/event"
	"agroconnect/errors"
)

// Store owns the session for the app run: current user, bearer token
// and theme preference. It restores from the local repository on start
// and persists every change. All methods are safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	log     *slog.Logger
	repo    contract.ISessionRepository
	backend contract.IBackend
	sinks   []contract.EventSink

	session domain.Session
}

func NewStore(repo contract.ISessionRepository, log *slog.Logger) *Store {
	return &Store{
		repo: repo,
		log:  log,
		session: domain.Session{
			Theme: domain.ThemeLight,
		},
	}
}

// Bind wires the backend after construction; the backend itself needs
// this store as its token source, so neither can own the other.
func (s *Store) Bind(backend contract.IBackend, sinks ...contract.EventSink) {
	s.backend = backend
	s.sinks = append(s.sinks, sinks...)
}

// Restore loads the persisted session. An absent or expired token
// leaves the store unauthenticated without error: a cold start with no
// prior login is a normal state.
func (s *Store) Restore() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if theme, err := s.repo.LoadTheme(); err == nil && theme != "" {
		s.session.Theme = theme
	}

	token, err := s.repo.LoadToken()
	if err != nil {
		if !stderrors.Is(err, errors.ErrNothingStored) {
			s.log.Warn("Token restore failed", "err", err)
		}
		return
	}
	if tokenExpired(token) {
		s.log.Info("Persisted token expired, discarding credentials")
		s.clearLocked()
		return
	}

	user, err := s.repo.LoadUser()
	if err != nil {
		if !stderrors.Is(err, errors.ErrNothingStored) {
			s.log.Warn("User restore failed", "err", err)
		}
		return
	}

	s.session.Token = token
	s.session.User = user
	s.log.Info("Session restored", "user", user.ID, "role", user.Role)
}

func (s *Store) Login(ctx context.Context, email, password string) (domain.User, error) {
	user, token, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return domain.User{}, fmt.Errorf("login failed: %w", err)
	}

	s.mu.Lock()
	s.session.User = user
	s.session.Token = token
	s.mu.Unlock()

	if err := s.repo.SaveToken(token); err != nil {
		s.log.Error("Token persistence failed", "err", err)
	}
	if err := s.repo.SaveUser(user); err != nil {
		s.log.Error("User persistence failed", "err", err)
	}

	s.publish(event.SessionOpened{UserID: user.ID, Role: user.Role})
	return user, nil
}

// Logout is best-effort remote, unconditional local clear.
func (s *Store) Logout(ctx context.Context) {
	if err := s.backend.Logout(ctx); err != nil {
		s.log.Warn("Remote logout failed, clearing locally anyway", "err", err)
	}

	s.mu.Lock()
	s.clearLocked()
	s.mu.Unlock()

	s.publish(event.SessionClosed{})
}

// HandleUnauthorized is the process-wide 401 side effect: stored token
// and user are erased regardless of which call site hit the 401.
func (s *Store) HandleUnauthorized() {
	s.mu.Lock()
	alreadyOut := s.session.Token == ""
	s.clearLocked()
	s.mu.Unlock()

	if !alreadyOut {
		s.log.Info("Session expired, credentials erased")
		s.publish(event.SessionClosed{})
	}
}

func (s *Store) clearLocked() {
	s.session.User = domain.User{}
	s.session.Token = ""
	if err := s.repo.ClearCredentials(); err != nil {
		s.log.Error("Credential erase failed", "err", err)
	}
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Token
}

func (s *Store) User() domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.User
}

func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Authenticated()
}

func (s *Store) Theme() domain.ThemeMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Theme
}

func (s *Store) SetTheme(mode domain.ThemeMode) {
	s.mu.Lock()
	s.session.Theme = mode
	s.mu.Unlock()

	if err := s.repo.SaveTheme(mode); err != nil {
		s.log.Error("Theme persistence failed", "err", err)
	}
}

func (s *Store) publish(e event.DomainEvent) {
	for _, sink := range s.sinks {
		sink.Consume(e)
	}
}

// tokenExpired decodes the token claims without verifying the
// signature; the backend stays authoritative, this only avoids polling
// with a credential that is already dead.
func tokenExpired(token string) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		// Opaque non-JWT tokens are accepted as-is.
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(time.Now())
}
