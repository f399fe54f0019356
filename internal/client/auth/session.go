package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/cloudvault/internal/client/models"
	"github.com/dmitrijs2005/cloudvault/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/cloudvault/internal/common"
	"github.com/dmitrijs2005/cloudvault/internal/logging"
)

// AccountPurger removes the user's data from the backend.
type AccountPurger interface {
	DeleteUser(ctx context.Context, userEmail string) error
}

// Listener receives the new session, or nil after sign-out.
type Listener func(s *models.Session)

type subscription struct {
	id int
	fn Listener
}

// Manager owns the current session.
//
// Listeners run synchronously, in subscription order, on the goroutine that
// changed the session. They may call Current but must not change the session.
type Manager struct {
	provider Provider
	repo     metadata.Repository
	purger   AccountPurger
	logger   logging.Logger
	now      func() time.Time

	// notifyMu serializes change+notify so listeners observe changes in order.
	notifyMu sync.Mutex

	mu      sync.RWMutex
	current *models.Session
	subs    []subscription
	nextID  int
}

func NewManager(p Provider, repo metadata.Repository, purger AccountPurger, logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Manager{
		provider: p,
		repo:     repo,
		purger:   purger,
		logger:   logger.With("component", "auth"),
		now:      time.Now,
	}
}

// Current returns a copy of the session, or nil when signed out.
func (m *Manager) Current() *models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil
	}
	c := *m.current
	return &c
}

// Token returns the current ID token or "". It is the token source of the
// backend client.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}
	return m.current.IDToken
}

// Subscribe registers fn and returns a function that removes it.
func (m *Manager) Subscribe(fn Listener) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.subs = append(m.subs, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			for i, s := range m.subs {
				if s.id == id {
					m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Restore loads the persisted session. An expired session is refreshed once;
// if that fails the user starts signed out.
func (m *Manager) Restore(ctx context.Context) error {
	var s models.Session
	err := metadata.GetJSON(ctx, m.repo, common.SessionKey, &s)
	if errors.Is(err, common.ErrorNotFound) {
		return nil
	}
	if err != nil {
		m.logger.Warn(ctx, "dropping unreadable persisted session", "error", err)
		return m.repo.Delete(ctx, common.SessionKey)
	}

	restored := &s
	if tokenExpired(s.IDToken, m.now()) {
		restored, err = m.provider.Refresh(ctx, &s)
		if err != nil {
			m.logger.Info(ctx, "persisted session could not be refreshed", "error", err)
			return m.repo.Delete(ctx, common.SessionKey)
		}
	}
	m.set(ctx, restored)
	return nil
}

func (m *Manager) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	s, err := m.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	m.set(ctx, s)
	return m.Current(), nil
}

func (m *Manager) SignUp(ctx context.Context, displayName, email, password string) (*models.Session, error) {
	s, err := m.provider.SignUp(ctx, displayName, email, password)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	m.set(ctx, s)
	return m.Current(), nil
}

func (m *Manager) SignInWithGoogle(ctx context.Context, googleIDToken string) (*models.Session, error) {
	s, err := m.provider.SignInWithGoogle(ctx, googleIDToken)
	if err != nil {
		return nil, fmt.Errorf("google sign in: %w", err)
	}
	m.set(ctx, s)
	return m.Current(), nil
}

// SignOut clears the session locally. It never fails because of the provider.
func (m *Manager) SignOut(ctx context.Context) {
	m.set(ctx, nil)
}

// DeleteAccount removes the account in a fixed order: confirmation,
// re-authentication, backend data purge, provider account deletion, sign-out.
// The first failing step stops the sequence.
func (m *Manager) DeleteAccount(ctx context.Context, confirm func() bool, secret func(s *models.Session) (string, error)) error {
	s := m.Current()
	if s == nil {
		return ErrNotSignedIn
	}
	if confirm == nil || !confirm() {
		return ErrNotConfirmed
	}

	pw, err := secret(s)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReauthFailed, err)
	}
	fresh, err := m.provider.Reauthenticate(ctx, s, pw)
	if err != nil {
		if errors.Is(err, ErrReauthFailed) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrReauthFailed, err)
	}
	// the purge request goes out with the fresh token
	m.replaceTokens(ctx, fresh)

	if err := m.purger.DeleteUser(ctx, s.Email); err != nil {
		return fmt.Errorf("delete account data: %w", err)
	}
	if err := m.provider.DeleteAccount(ctx, fresh.IDToken); err != nil {
		return fmt.Errorf("delete provider account: %w", err)
	}

	m.logger.Info(ctx, "account deleted", "user_id", s.UserID)
	m.SignOut(ctx)
	return nil
}

// replaceTokens swaps credentials without notifying listeners, because the
// identity is unchanged.
func (m *Manager) replaceTokens(ctx context.Context, fresh *models.Session) {
	var cur *models.Session
	m.mu.Lock()
	if m.current != nil {
		m.current.IDToken = fresh.IDToken
		m.current.RefreshToken = fresh.RefreshToken
		c := *m.current
		cur = &c
	}
	m.mu.Unlock()
	if cur != nil {
		m.persist(ctx, cur)
	}
}

func (m *Manager) set(ctx context.Context, s *models.Session) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.mu.Lock()
	m.current = s
	subs := append([]subscription(nil), m.subs...)
	m.mu.Unlock()

	m.persist(ctx, s)

	for _, sub := range subs {
		sub.fn(m.Current())
	}
}

func (m *Manager) persist(ctx context.Context, s *models.Session) {
	var err error
	if s == nil {
		err = m.repo.Delete(ctx, common.SessionKey)
	} else {
		err = metadata.SetJSON(ctx, m.repo, common.SessionKey, s)
	}
	if err != nil {
		m.logger.Warn(ctx, "failed to persist session", "error", err)
	}
}
