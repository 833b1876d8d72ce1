package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/evanhrs/budgetapp/internal/clock"
	"github.com/evanhrs/budgetapp/internal/store"
)

var (
	ErrInvalid = errors.New("session is invalid")
	ErrExpired = errors.New("session has expired")
)

const idBytes = 32

// Manager owns the session lifecycle. Sessions are server-held records;
// liveness is decided purely from persisted timestamps, so nothing is
// lost across a restart. Multiple concurrent sessions per user are
// permitted.
type Manager struct {
	sessions store.Sessions
	clk      clock.Clock
	log      *zap.Logger
	idle     time.Duration
	absolute time.Duration
}

func NewManager(sessions store.Sessions, clk clock.Clock, log *zap.Logger, idle, absolute time.Duration) *Manager {
	return &Manager{
		sessions: sessions,
		clk:      clk,
		log:      log,
		idle:     idle,
		absolute: absolute,
	}
}

func newID() (string, error) {
	buf := make([]byte, idBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Create mints a session bound to exactly one user.
func (m *Manager) Create(userID uint) (*store.Session, error) {
	id, err := newID()
	if err != nil {
		return nil, err
	}

	now := m.clk.Now()
	sess := &store.Session{
		Token:      id,
		UserID:     userID,
		CreatedAt:  now,
		LastSeenAt: now,
	}
	if err := m.sessions.Put(sess); err != nil {
		return nil, fmt.Errorf("storing session: %w", err)
	}

	m.log.Info("session created", zap.Uint("user_id", userID))
	return sess, nil
}

// expired is the pure liveness rule: a session is dead once idle time
// exceeds the idle timeout or age exceeds the absolute timeout,
// whichever triggers first.
func (m *Manager) expired(sess *store.Session, now time.Time) bool {
	if now.Sub(sess.LastSeenAt) > m.idle {
		return true
	}
	if now.Sub(sess.CreatedAt) > m.absolute {
		return true
	}
	return false
}

// Validate resolves a session id to its user. It never mutates state;
// extending liveness is Touch's job alone.
func (m *Manager) Validate(id string) (uint, error) {
	sess, err := m.sessions.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, ErrInvalid
		}
		return 0, err
	}

	if m.expired(sess, m.clk.Now()) {
		return 0, ErrExpired
	}
	return sess.UserID, nil
}

// Touch extends the idle window of a live session. Expired sessions are
// never revived.
func (m *Manager) Touch(id string) error {
	sess, err := m.sessions.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalid
		}
		return err
	}

	now := m.clk.Now()
	if m.expired(sess, now) {
		return ErrExpired
	}

	if err := m.sessions.UpdateLastSeen(id, now); err != nil {
		return fmt.Errorf("touching session: %w", err)
	}
	return nil
}

// Revoke destroys a session. Revoking an unknown id is a no-op.
func (m *Manager) Revoke(id string) error {
	return m.sessions.Delete(id)
}

// SweepExpired garbage-collects sessions past their idle window.
func (m *Manager) SweepExpired() error {
	return m.sessions.DeleteExpired(m.clk.Now().Add(-m.idle))
}
