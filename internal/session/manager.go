package session

import (
	"context"

	"github.com/maxviazov/volleyball-scoreboard/internal/match"
)

// Manager serializes work on each session: one goroutine at a time may hold a
// given token, while different tokens proceed in parallel. With a shared Locker
// (WithLocker) the guarantee extends to every Manager using that Locker, e.g.
// replicas sharing a Redis store.
type Manager struct {
	store  Store
	local  *KeyedMutex
	shared Locker
}

// Option configures a Manager.
type Option func(*Manager)

// WithLocker adds a lock shared with other Managers. It is taken after the
// in-process lock.
func WithLocker(l Locker) Option {
	return func(m *Manager) { m.shared = l }
}

func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{store: store, local: NewKeyedMutex()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) lock(ctx context.Context, id string) (func(), error) {
	unlockLocal, _ := m.local.Lock(ctx, id)
	if m.shared == nil {
		return unlockLocal, nil
	}
	unlockShared, err := m.shared.Lock(ctx, id)
	if err != nil {
		unlockLocal()
		return nil, err
	}
	return func() {
		unlockShared()
		unlockLocal()
	}, nil
}

// Start replaces whatever session lives under token with a fresh one, runs fn on it
// and stores it if fn succeeds. A missing or malformed token is replaced by a new one.
// The token actually used is returned.
func (m *Manager) Start(ctx context.Context, token string, fn func(*match.Session) error) (string, error) {
	if !ValidToken(token) {
		token = NewToken()
	}
	unlock, err := m.lock(ctx, token)
	if err != nil {
		return "", err
	}
	defer unlock()

	s := match.NewSession(token)
	s.MatchKey = NewToken()
	if err := fn(s); err != nil {
		return "", err
	}
	if err := m.store.Save(ctx, s); err != nil {
		return "", err
	}
	return token, nil
}

// Update loads the session, applies fn and saves the result. When fn fails nothing
// is saved, so the stored session stays exactly as it was before the call.
// Each onSaved hook runs after a successful save while the session is still locked.
func (m *Manager) Update(ctx context.Context, token string, fn func(*match.Session) error, onSaved ...func(*match.Session)) error {
	if token == "" {
		return ErrNotFound
	}
	unlock, err := m.lock(ctx, token)
	if err != nil {
		return err
	}
	defer unlock()

	s, err := m.store.Load(ctx, token)
	if err != nil {
		return err
	}
	if err := fn(s); err != nil {
		return err
	}
	if err := m.store.Save(ctx, s); err != nil {
		return err
	}
	for _, hook := range onSaved {
		hook(s)
	}
	return nil
}

// Get returns a copy of the session.
func (m *Manager) Get(ctx context.Context, token string) (*match.Session, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	unlock, err := m.lock(ctx, token)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return m.store.Load(ctx, token)
}

// Discard drops the session unconditionally.
func (m *Manager) Discard(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	unlock, err := m.lock(ctx, token)
	if err != nil {
		return err
	}
	defer unlock()
	return m.store.Delete(ctx, token)
}
