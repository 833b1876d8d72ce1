package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/evanhrs/budgetapp/internal/clock"
	"github.com/evanhrs/budgetapp/internal/store"
)

const (
	testIdle     = 30 * time.Minute
	testAbsolute = 8 * time.Hour
)

func newTestManager() (*Manager, *clock.Fake) {
	clk := clock.NewFake(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	return NewManager(store.NewMemory().Sessions(), clk, zap.NewNop(), testIdle, testAbsolute), clk
}

func TestManager_CreateAndValidate(t *testing.T) {
	m, _ := newTestManager()

	sess, err := m.Create(42)
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)
	assert.Equal(t, uint(42), sess.UserID)

	userID, err := m.Validate(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestManager_SessionIDsAreUnique(t *testing.T) {
	m, _ := newTestManager()

	a, err := m.Create(1)
	require.NoError(t, err)
	b, err := m.Create(1)
	require.NoError(t, err)

	assert.NotEqual(t, a.Token, b.Token)

	// Both sessions resolve independently; multi-session is permitted.
	ua, err := m.Validate(a.Token)
	require.NoError(t, err)
	ub, err := m.Validate(b.Token)
	require.NoError(t, err)
	assert.Equal(t, ua, ub)
}

func TestManager_UnknownSession(t *testing.T) {
	m, _ := newTestManager()

	_, err := m.Validate("nope")
	assert.ErrorIs(t, err, ErrInvalid)
	assert.ErrorIs(t, m.Touch("nope"), ErrInvalid)
}

func TestManager_IdleTimeout(t *testing.T) {
	m, clk := newTestManager()

	sess, err := m.Create(42)
	require.NoError(t, err)

	clk.Advance(testIdle + time.Minute)

	_, err = m.Validate(sess.Token)
	assert.ErrorIs(t, err, ErrExpired)
	assert.ErrorIs(t, m.Touch(sess.Token), ErrExpired)
}

func TestManager_TouchExtendsIdleWindow(t *testing.T) {
	m, clk := newTestManager()

	sess, err := m.Create(42)
	require.NoError(t, err)

	// Touch every 20 minutes; idle never trips.
	for i := 0; i < 6; i++ {
		clk.Advance(20 * time.Minute)
		require.NoError(t, m.Touch(sess.Token))
	}

	_, err = m.Validate(sess.Token)
	assert.NoError(t, err)
}

func TestManager_AbsoluteTimeoutTrumpsTouch(t *testing.T) {
	m, clk := newTestManager()

	sess, err := m.Create(42)
	require.NoError(t, err)

	// Keep the session busy past the absolute limit.
	for i := 0; i < 24; i++ {
		clk.Advance(20 * time.Minute)
		if err := m.Touch(sess.Token); err != nil {
			break
		}
	}
	clk.Advance(time.Minute)

	_, err = m.Validate(sess.Token)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestManager_ValidateDoesNotExtendLiveness(t *testing.T) {
	m, clk := newTestManager()

	sess, err := m.Create(42)
	require.NoError(t, err)

	// Validate repeatedly without touching; idle still expires.
	for i := 0; i < 3; i++ {
		clk.Advance(10 * time.Minute)
		_, err := m.Validate(sess.Token)
		require.NoError(t, err)
	}
	clk.Advance(time.Minute)

	_, err = m.Validate(sess.Token)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestManager_Revoke(t *testing.T) {
	m, _ := newTestManager()

	sess, err := m.Create(42)
	require.NoError(t, err)

	require.NoError(t, m.Revoke(sess.Token))

	_, err = m.Validate(sess.Token)
	assert.ErrorIs(t, err, ErrInvalid)

	// Revoking again is a no-op.
	assert.NoError(t, m.Revoke(sess.Token))
}

func TestManager_SweepExpired(t *testing.T) {
	m, clk := newTestManager()

	stale, err := m.Create(1)
	require.NoError(t, err)

	clk.Advance(testIdle + time.Minute)
	fresh, err := m.Create(2)
	require.NoError(t, err)

	require.NoError(t, m.SweepExpired())

	_, err = m.Validate(stale.Token)
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = m.Validate(fresh.Token)
	assert.NoError(t, err)
}
