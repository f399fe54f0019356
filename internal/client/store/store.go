package store

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/cloudvault/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/cloudvault/internal/common"
	"github.com/dmitrijs2005/cloudvault/internal/logging"
)

type Listener func(State)

type listener struct {
	id int
	fn Listener
}

type Store struct {
	repo   metadata.Repository
	logger logging.Logger

	dispatchMu sync.Mutex

	mu        sync.RWMutex
	state     State
	listeners []listener
	nextID    int
}

func New(repo metadata.Repository, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Store{repo: repo, logger: logger.With("component", "store")}
}

// LoadTheme reads the persisted theme preference. A missing value means light.
func (s *Store) LoadTheme(ctx context.Context) error {
	dark, err := metadata.GetBool(ctx, s.repo, common.ThemePreferenceKey, false)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.state.DarkMode = dark
	s.mu.Unlock()
	return nil
}

func (s *Store) Get() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch applies a, persists theme changes and notifies listeners with the
// new state. Dispatches are serialized.
func (s *Store) Dispatch(ctx context.Context, a Action) State {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	next := Reduce(s.state, a)
	s.state = next
	ls := append([]listener(nil), s.listeners...)
	s.mu.Unlock()

	switch a.(type) {
	case ThemeToggled, ThemeSet:
		if err := metadata.SetBool(ctx, s.repo, common.ThemePreferenceKey, next.DarkMode); err != nil {
			s.logger.Warn(ctx, "failed to persist theme", "error", err)
		}
	}

	for _, l := range ls {
		l.fn(next)
	}
	return next
}

// Subscribe registers fn for future dispatches and returns its remover.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listener{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}
