package resettoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/evanhrs/budgetapp/internal/clock"
	"github.com/evanhrs/budgetapp/internal/store"
)

const testTTL = 30 * time.Minute

func newTestManager() (*Manager, *clock.Fake) {
	clk := clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	return NewManager(store.NewMemory().ResetTokens(), clk, zap.NewNop(), testTTL), clk
}

func TestNewValue(t *testing.T) {
	a, err := NewValue()
	require.NoError(t, err)
	b, err := NewValue()
	require.NoError(t, err)

	// 32 bytes, base64 raw url: 43 characters, no padding.
	assert.Len(t, a, 43)
	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, "=")
	assert.NotContains(t, a, "+")
	assert.NotContains(t, a, "/")
}

func TestManager_IssueAndConsume(t *testing.T) {
	m, _ := newTestManager()

	token, err := m.Issue(7)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := m.Peek(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), userID)

	userID, err = m.Consume(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), userID)
}

func TestManager_ConsumeIsSingleUse(t *testing.T) {
	m, _ := newTestManager()

	token, err := m.Issue(7)
	require.NoError(t, err)

	_, err = m.Consume(token)
	require.NoError(t, err)

	// Still within TTL, but permanently dead.
	_, err = m.Consume(token)
	assert.ErrorIs(t, err, ErrAlreadyUsed)
	_, err = m.Peek(token)
	assert.ErrorIs(t, err, ErrAlreadyUsed)
}

func TestManager_Expiry(t *testing.T) {
	m, clk := newTestManager()

	token, err := m.Issue(7)
	require.NoError(t, err)

	clk.Advance(10 * time.Minute)
	_, err = m.Peek(token)
	assert.NoError(t, err)

	clk.Advance(21 * time.Minute)
	_, err = m.Consume(token)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestManager_ExpiryBoundary(t *testing.T) {
	m, clk := newTestManager()

	token, err := m.Issue(7)
	require.NoError(t, err)

	// Exactly at the expiry instant the token is no longer valid.
	clk.Advance(testTTL)
	_, err = m.Peek(token)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestManager_ReissueInvalidatesPrior(t *testing.T) {
	m, _ := newTestManager()

	first, err := m.Issue(7)
	require.NoError(t, err)
	second, err := m.Issue(7)
	require.NoError(t, err)

	_, err = m.Consume(first)
	assert.ErrorIs(t, err, ErrInvalid)

	userID, err := m.Consume(second)
	require.NoError(t, err)
	assert.Equal(t, uint(7), userID)
}

func TestManager_ReissueLeavesOtherUsersAlone(t *testing.T) {
	m, _ := newTestManager()

	mine, err := m.Issue(7)
	require.NoError(t, err)
	_, err = m.Issue(8)
	require.NoError(t, err)

	userID, err := m.Consume(mine)
	require.NoError(t, err)
	assert.Equal(t, uint(7), userID)
}

func TestManager_UnknownToken(t *testing.T) {
	m, _ := newTestManager()

	_, err := m.Peek("no-such-token")
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = m.Consume("no-such-token")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestManager_PeekDoesNotConsume(t *testing.T) {
	m, _ := newTestManager()

	token, err := m.Issue(7)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := m.Peek(token)
		require.NoError(t, err)
	}

	_, err = m.Consume(token)
	assert.NoError(t, err)
}

func TestManager_SweepExpired(t *testing.T) {
	m, clk := newTestManager()

	token, err := m.Issue(7)
	require.NoError(t, err)

	clk.Advance(testTTL + time.Minute)
	require.NoError(t, m.SweepExpired())

	// Swept rows read as invalid rather than expired; nothing remains
	// to date-check.
	_, err = m.Peek(token)
	assert.ErrorIs(t, err, ErrInvalid)
}
