// Package session tracks the signed-in user of a fleet workspace.
package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"fleetline/internal/domain"
	"fleetline/internal/kv"
	"fleetline/internal/logging"
	"fleetline/internal/metrics"
)

// Manager holds the current user and mirrors it under kv.KeyCurrentUser.
type Manager struct {
	mu      sync.RWMutex
	store   kv.Store
	roster  Roster
	logger  *zap.Logger
	current *domain.User
}

// New rehydrates the persisted user, if any. The stored user is trusted as-is
// and not re-checked against the roster. A malformed stored value, or one
// without a valid role, is treated as logged out.
func New(ctx context.Context, store kv.Store, roster Roster, logger *zap.Logger) (*Manager, error) {
	m := &Manager{store: store, roster: roster, logger: logging.OrNop(logger)}
	var u domain.User
	ok, err := kv.Load(ctx, store, kv.KeyCurrentUser, &u)
	switch {
	case errors.Is(err, kv.ErrMalformed):
		m.logger.Warn("ignoring malformed persisted session", zap.Error(err))
	case err != nil:
		return nil, err
	case ok && !u.Role.Valid():
		m.logger.Warn("ignoring persisted session without a valid role", zap.String("user_id", u.ID))
	case ok:
		m.current = &u
	}
	return m, nil
}

// Login signs in on an exact email and password match. A mismatch returns
// false and changes nothing; the error is reserved for storage failures.
func (m *Manager) Login(ctx context.Context, email, password string) (bool, error) {
	u, ok := m.roster.Authenticate(email, password)
	metrics.LoginAttempts.WithLabelValues(metrics.LoginResult(ok)).Inc()
	if !ok {
		m.logger.Warn("login rejected", zap.String("email", email))
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := kv.Save(ctx, m.store, kv.KeyCurrentUser, u); err != nil {
		return false, err
	}
	m.current = &u
	m.logger.Info("login", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	return true, nil
}

// Logout clears the current user from memory and storage.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Delete(ctx, kv.KeyCurrentUser); err != nil {
		return err
	}
	if m.current != nil {
		m.logger.Info("logout", zap.String("user_id", m.current.ID))
	}
	m.current = nil
	return nil
}

// Current returns a copy of the signed-in user.
func (m *Manager) Current() (domain.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return domain.User{}, false
	}
	return *m.current, true
}

// User returns the signed-in user or nil, the shape the guard expects.
func (m *Manager) User() *domain.User {
	u, ok := m.Current()
	if !ok {
		return nil
	}
	return &u
}

func (m *Manager) IsAuthenticated() bool {
	_, ok := m.Current()
	return ok
}

// Role returns the current user's role.
func (m *Manager) Role() (domain.Role, bool) {
	u, ok := m.Current()
	return u.Role, ok
}

func (m *Manager) Roster() Roster {
	return m.roster
}
